package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wirebazaar/wirebazaar-backend/api/responses"
	"github.com/wirebazaar/wirebazaar-backend/api/validators"
	"github.com/wirebazaar/wirebazaar-backend/internal/orders"
	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
	pkgerrors "github.com/wirebazaar/wirebazaar-backend/pkg/errors"
	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
)

type updateOrderStatusRequest struct {
	Status        string  `json:"status" validate:"required"`
	PaymentStatus *string `json:"payment_status"`
}

// AdminOrdersList pages through every order with optional status, payment
// status and free-text filters.
func AdminOrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := buildOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListAll(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, result.Orders, result.NextCursor)
	}
}

func buildOrderFilters(r *http.Request) (orders.ListFilters, error) {
	filters := orders.ListFilters{Search: validators.QueryString(r, "q", maxQueryLen)}
	if raw := validators.QueryString(r, "status", 32); raw != "" && raw != "all" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := validators.QueryString(r, "payment_status", 32); raw != "" && raw != "all" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status filter")
		}
		filters.PaymentStatus = &status
	}
	return filters, nil
}

func AdminOrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		order, err := svc.GetByID(r.Context(), chi.URLParam(r, "orderId"), "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminOrderUpdateStatus sets the fulfilment status and optionally the payment
// status. Any combination is accepted.
func AdminOrderUpdateStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var paymentStatus *enums.PaymentStatus
		if payload.PaymentStatus != nil {
			ps := enums.PaymentStatus(*payload.PaymentStatus)
			paymentStatus = &ps
		}
		order, err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "orderId"), enums.OrderStatus(payload.Status), paymentStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func AdminOrderStats(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
