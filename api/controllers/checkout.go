package controllers

import (
	"net/http"

	"github.com/wirebazaar/wirebazaar-backend/api/middleware"
	"github.com/wirebazaar/wirebazaar-backend/api/responses"
	"github.com/wirebazaar/wirebazaar-backend/api/validators"
	"github.com/wirebazaar/wirebazaar-backend/internal/orders"
	pkgerrors "github.com/wirebazaar/wirebazaar-backend/pkg/errors"
	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
)

type placeOrderRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Address string  `json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	Pincode string  `json:"pincode"`
}

// CheckoutQuote previews subtotal, shipping and delivery for a pincode.
func CheckoutQuote(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		quote, err := svc.Quote(r.Context(), middleware.ClientKeyFromContext(r.Context()), validators.QueryString(r, "pincode", 6))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// CheckoutPlace turns the caller's cart into an order. The customer details
// are validated by the orders service so that missing fields are reported
// together.
func CheckoutPlace(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Place(r.Context(), orders.PlaceInput{
			ClientKey: middleware.ClientKeyFromContext(r.Context()),
			UserID:    middleware.UserIDFromContext(r.Context()),
			Customer: orders.CustomerInfo{
				Name:    payload.Name,
				Email:   payload.Email,
				Phone:   payload.Phone,
				Address: payload.Address,
				City:    payload.City,
				State:   payload.State,
				Pincode: payload.Pincode,
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
