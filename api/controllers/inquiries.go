package controllers

import (
	"net/http"

	"github.com/wirebazaar/wirebazaar-backend/api/middleware"
	"github.com/wirebazaar/wirebazaar-backend/api/responses"
	"github.com/wirebazaar/wirebazaar-backend/api/validators"
	"github.com/wirebazaar/wirebazaar-backend/internal/inquiries"
	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
	pkgerrors "github.com/wirebazaar/wirebazaar-backend/pkg/errors"
	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
)

type submitInquiryRequest struct {
	UserType string `json:"user_type"`
	Phone    string `json:"phone"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Pincode  string `json:"pincode"`
	Brand    string `json:"brand"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
}

// InquirySubmit records a request-a-quote form. Signed-in callers get the
// inquiry linked to their account.
func InquirySubmit(svc inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inquiries service unavailable"))
			return
		}
		var payload submitInquiryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var caller *inquiries.Caller
		if userID := middleware.UserIDFromContext(r.Context()); userID != "" && middleware.RoleFromContext(r.Context()) == string(enums.ActorRoleCustomer) {
			caller = &inquiries.Caller{UserID: userID, Contact: middleware.ContactFromContext(r.Context())}
		}

		inquiry, err := svc.Submit(r.Context(), inquiries.SubmitInput{
			UserType: enums.BuyerType(payload.UserType),
			Phone:    payload.Phone,
			Name:     payload.Name,
			Email:    payload.Email,
			Address:  payload.Address,
			Pincode:  payload.Pincode,
			Brand:    payload.Brand,
			Color:    payload.Color,
			Quantity: payload.Quantity,
			Unit:     enums.UnitType(payload.Unit),
		}, caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, inquiry)
	}
}

// InquiriesMine lists the inquiries linked to the signed-in customer.
func InquiriesMine(svc inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inquiries service unavailable"))
			return
		}
		list, err := svc.ListForUser(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
