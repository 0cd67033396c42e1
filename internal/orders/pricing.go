package orders

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wirebazaar/wirebazaar-backend/pkg/config"
)

// Pricing holds the delivery rules. A subtotal at or above FreeThreshold ships
// free; otherwise pincodes starting with LocalPrefix pay LocalCost and the rest
// pay DefaultCost. Delivery estimates follow the same prefix split.
type Pricing struct {
	FreeThreshold  decimal.Decimal
	LocalPrefix    string
	LocalCost      decimal.Decimal
	DefaultCost    decimal.Decimal
	LocalETADays   int
	DefaultETADays int
}

// DefaultPricing returns the standard storefront rules.
func DefaultPricing() Pricing {
	return Pricing{
		FreeThreshold:  decimal.NewFromInt(5000),
		LocalPrefix:    "4",
		LocalCost:      decimal.NewFromInt(50),
		DefaultCost:    decimal.NewFromInt(100),
		LocalETADays:   3,
		DefaultETADays: 5,
	}
}

// PricingFromConfig parses the configured shipping rules.
func PricingFromConfig(cfg config.ShippingConfig) (Pricing, error) {
	parse := func(name, raw string) (decimal.Decimal, error) {
		value, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return decimal.Zero, fmt.Errorf("shipping %s: %w", name, err)
		}
		return value, nil
	}
	free, err := parse("free threshold", cfg.FreeThreshold)
	if err != nil {
		return Pricing{}, err
	}
	local, err := parse("local cost", cfg.LocalCost)
	if err != nil {
		return Pricing{}, err
	}
	def, err := parse("default cost", cfg.DefaultCost)
	if err != nil {
		return Pricing{}, err
	}
	return Pricing{
		FreeThreshold:  free,
		LocalPrefix:    cfg.LocalPrefix,
		LocalCost:      local,
		DefaultCost:    def,
		LocalETADays:   cfg.LocalETADays,
		DefaultETADays: cfg.DefaultETADays,
	}, nil
}

func (p Pricing) isLocal(pincode string) bool {
	return p.LocalPrefix != "" && strings.HasPrefix(strings.TrimSpace(pincode), p.LocalPrefix)
}

// ShippingCost prices delivery of subtotal to pincode.
func (p Pricing) ShippingCost(pincode string, subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.FreeThreshold) {
		return decimal.Zero
	}
	if p.isLocal(pincode) {
		return p.LocalCost
	}
	return p.DefaultCost
}

// EstimatedDelivery is now plus the transit days for pincode.
func (p Pricing) EstimatedDelivery(pincode string, now time.Time) time.Time {
	days := p.DefaultETADays
	if p.isLocal(pincode) {
		days = p.LocalETADays
	}
	return now.AddDate(0, 0, days)
}

// GenerateOrderNumber builds "WB" + the last 8 digits of the epoch
// milliseconds + random zero-padded to 3 digits. random must be in [0, 1000).
func GenerateOrderNumber(now time.Time, random int) string {
	ms := fmt.Sprintf("%d", now.UnixMilli())
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return fmt.Sprintf("WB%s%03d", ms, random%1000)
}

// PaymentTarget identifies the UPI payee.
type PaymentTarget struct {
	VPA       string
	PayeeName string
	Currency  string
}

// PaymentTargetFromConfig maps the UPI settings.
func PaymentTargetFromConfig(cfg config.UPIConfig) PaymentTarget {
	return PaymentTarget{VPA: cfg.VPA, PayeeName: cfg.PayeeName, Currency: cfg.Currency}
}

// UPIPayload renders the upi://pay URI wallet apps scan to pay amount for the order.
func UPIPayload(target PaymentTarget, amount decimal.Decimal, orderNumber string) string {
	currency := target.Currency
	if currency == "" {
		currency = "INR"
	}
	return fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%s&cu=%s&tn=%s",
		target.VPA,
		encodeComponent(target.PayeeName),
		amount.StringFixed(2),
		currency,
		encodeComponent("Order "+orderNumber),
	)
}

// componentUnescape restores the characters encodeURIComponent leaves as-is
// but url.QueryEscape encodes.
var componentUnescape = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent percent-encodes value the way a browser's
// encodeURIComponent does.
func encodeComponent(value string) string {
	return componentUnescape.Replace(url.QueryEscape(value))
}
