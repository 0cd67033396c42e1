package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/wirebazaar/wirebazaar-backend/pkg/mail"
)

// MailNotifier sends the customer an order confirmation.
type MailNotifier struct {
	sender mail.Sender
}

// NewMailNotifier builds a notifier on sender.
func NewMailNotifier(sender mail.Sender) *MailNotifier {
	return &MailNotifier{sender: sender}
}

func (n *MailNotifier) OrderPlaced(ctx context.Context, order Order) error {
	if strings.TrimSpace(order.Customer.Email) == "" {
		return nil
	}
	return n.sender.Send(ctx, confirmationMessage(order))
}

func confirmationMessage(order Order) mail.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThanks for your order %s.\n\n", order.Customer.Name, order.OrderNumber)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %s (%s, %s) x %d %s @ Rs. %s\n",
			item.ProductName, item.Brand, item.Color, item.Quantity, item.UnitType, item.UnitPrice.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nSubtotal: Rs. %s\n", order.Subtotal.StringFixed(2))
	fmt.Fprintf(&b, "Shipping: Rs. %s\n", order.ShippingCost.StringFixed(2))
	fmt.Fprintf(&b, "Total: Rs. %s\n", order.TotalAmount.StringFixed(2))
	if order.EstimatedDelivery != nil {
		fmt.Fprintf(&b, "Estimated delivery: %s\n", order.EstimatedDelivery.Format("02 Jan 2006"))
	}
	if order.QRCodeData != nil {
		fmt.Fprintf(&b, "\nPay with any UPI app: %s\n", *order.QRCodeData)
	}
	return mail.Message{
		To:      order.Customer.Email,
		Subject: fmt.Sprintf("Order %s received", order.OrderNumber),
		Body:    b.String(),
	}
}
