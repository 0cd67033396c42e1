package enums

// PaymentMethod is how an order is settled. Checkout only offers a UPI QR code.
type PaymentMethod string

const (
	PaymentMethodQRCode PaymentMethod = "qr_code"
)

var validPaymentMethods = []PaymentMethod{PaymentMethodQRCode}

func (v PaymentMethod) String() string { return string(v) }

func (v PaymentMethod) IsValid() bool { return known(validPaymentMethods, v) }

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	return parse(validPaymentMethods, value, "payment method")
}
