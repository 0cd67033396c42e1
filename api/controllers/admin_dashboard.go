package controllers

import (
	"net/http"

	"github.com/wirebazaar/wirebazaar-backend/api/responses"
	"github.com/wirebazaar/wirebazaar-backend/internal/catalog"
	"github.com/wirebazaar/wirebazaar-backend/internal/inquiries"
	"github.com/wirebazaar/wirebazaar-backend/internal/orders"
	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
)

type dashboardResponse struct {
	Orders    *orders.Stats    `json:"orders"`
	Products  *catalog.Stats   `json:"products"`
	Inquiries *inquiries.Stats `json:"inquiries"`
}

// AdminDashboard returns the headline figures of every back-office tab.
func AdminDashboard(orderSvc orders.Service, catalogSvc catalog.Service, inquirySvc inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderStats, err := orderSvc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productStats, err := catalogSvc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		inquiryStats, err := inquirySvc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dashboardResponse{Orders: orderStats, Products: productStats, Inquiries: inquiryStats})
	}
}
