package orders

import "github.com/wirebazaar/wirebazaar-backend/pkg/enums"

// Status and payment status are set independently by the owner and every pair
// is accepted. The pairs below are representable but do not describe a normal
// order and are logged when written:
//
//	delivered + pending    goods handed over before the UPI transfer was confirmed
//	delivered + failed     goods handed over although the transfer bounced
//	shipped + failed       dispatched although the transfer bounced
//	cancelled + completed  paid order cancelled, refund handled outside the system
//	pending + completed    payment confirmed before the owner acknowledged the order
var unusualCombinations = map[enums.OrderStatus][]enums.PaymentStatus{
	enums.OrderStatusDelivered: {enums.PaymentStatusPending, enums.PaymentStatusFailed},
	enums.OrderStatusShipped:   {enums.PaymentStatusFailed},
	enums.OrderStatusCancelled: {enums.PaymentStatusCompleted},
	enums.OrderStatusPending:   {enums.PaymentStatusCompleted},
}

// UnusualCombination reports whether the pair is one of the documented
// unusual-but-allowed states.
func UnusualCombination(status enums.OrderStatus, payment enums.PaymentStatus) bool {
	for _, candidate := range unusualCombinations[status] {
		if candidate == payment {
			return true
		}
	}
	return false
}
