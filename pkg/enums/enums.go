// Package enums holds the closed string sets stored in the database and sent
// over the API. Matching is exact: "Metres" is not a unit type.
package enums

import (
	"fmt"
	"slices"
)

func known[T ~string](set []T, v T) bool {
	return slices.Contains(set, v)
}

func parse[T ~string](set []T, value, label string) (T, error) {
	if v := T(value); known(set, v) {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", label, value)
}

// OrderStatuses and InquiryStatuses list the accepted values for validation
// error details.
func OrderStatuses() []OrderStatus     { return slices.Clone(validOrderStatuses) }
func InquiryStatuses() []InquiryStatus { return slices.Clone(validInquiryStatuses) }
