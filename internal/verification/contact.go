package verification

import (
	"regexp"
	"strings"

	pkgerrors "github.com/wirebazaar/wirebazaar-backend/pkg/errors"
)

// Channel is the delivery route of a code.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

var (
	emailPattern = regexp.MustCompile("^(?:[a-zA-Z0-9_!#$%&'*+/=?`{|}~^.-]+)@(?:[a-zA-Z0-9-]+\\.)+[a-zA-Z]{2,}$")
	phonePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	phoneStrip   = strings.NewReplacer(" ", "", "-", "", "\t", "")
)

// Contact is a validated email address or Indian mobile number.
type Contact struct {
	// Value is the canonical form: lower-cased email or the bare 10 digits.
	Value   string
	Channel Channel
}

// ParseContact validates raw as an email address or a 10-digit mobile number
// starting with 6-9. Spaces and dashes in phone numbers are ignored.
func ParseContact(raw string) (Contact, error) {
	trimmed := strings.TrimSpace(raw)
	if emailPattern.MatchString(trimmed) {
		return Contact{Value: strings.ToLower(trimmed), Channel: ChannelEmail}, nil
	}
	if digits := phoneStrip.Replace(trimmed); phonePattern.MatchString(digits) {
		return Contact{Value: digits, Channel: ChannelPhone}, nil
	}
	return Contact{}, pkgerrors.New(pkgerrors.CodeValidation, "Enter a valid mobile number or email address.")
}

// IsValidEmail reports whether value is a well-formed email address.
func IsValidEmail(value string) bool {
	return emailPattern.MatchString(strings.TrimSpace(value))
}

// IsValidPhone reports whether value is a 10-digit mobile number starting with 6-9.
func IsValidPhone(value string) bool {
	return phonePattern.MatchString(phoneStrip.Replace(strings.TrimSpace(value)))
}
