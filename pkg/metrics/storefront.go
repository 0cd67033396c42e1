package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics counts customer-facing outcomes.
type StorefrontMetrics struct {
	ordersPlaced     prometheus.Counter
	otpRequests      *prometheus.CounterVec
	otpVerifications *prometheus.CounterVec
	inquiries        *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront counters on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders placed through checkout.",
	})
	otpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "otp_requests_total",
		Help: "One-time codes issued, by delivery channel.",
	}, []string{"channel"})
	otpVerifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "otp_verifications_total",
		Help: "One-time code checks, by outcome.",
	}, []string{"outcome"})
	inquiries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inquiries_submitted_total",
		Help: "Bulk inquiries submitted, by verification state.",
	}, []string{"verified"})
	reg.MustRegister(ordersPlaced, otpRequests, otpVerifications, inquiries)
	return &StorefrontMetrics{
		ordersPlaced:     ordersPlaced,
		otpRequests:      otpRequests,
		otpVerifications: otpVerifications,
		inquiries:        inquiries,
	}
}

// IncOrdersPlaced records one placed order.
func (s *StorefrontMetrics) IncOrdersPlaced() {
	if s == nil || s.ordersPlaced == nil {
		return
	}
	s.ordersPlaced.Inc()
}

// IncOTPRequest records an issued code on the given channel.
func (s *StorefrontMetrics) IncOTPRequest(channel string) {
	if s == nil || s.otpRequests == nil {
		return
	}
	s.otpRequests.WithLabelValues(normalizeLabel(channel)).Inc()
}

// IncOTPVerification records a verification outcome such as "verified" or "expired".
func (s *StorefrontMetrics) IncOTPVerification(outcome string) {
	if s == nil || s.otpVerifications == nil {
		return
	}
	s.otpVerifications.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncInquiry records a submitted inquiry.
func (s *StorefrontMetrics) IncInquiry(verified bool) {
	if s == nil || s.inquiries == nil {
		return
	}
	label := "false"
	if verified {
		label = "true"
	}
	s.inquiries.WithLabelValues(label).Inc()
}
