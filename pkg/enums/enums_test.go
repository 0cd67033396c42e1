package enums

import "testing"

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("shipped")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != OrderStatusShipped {
		t.Fatalf("expected shipped, got %s", status)
	}
	if _, err := ParseOrderStatus("lost"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestPaymentStatusValidity(t *testing.T) {
	for _, value := range []PaymentStatus{PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed} {
		if !value.IsValid() {
			t.Fatalf("expected %s to be valid", value)
		}
	}
	if PaymentStatus("refunded").IsValid() {
		t.Fatalf("refunded is not a payment status")
	}
}

func TestParseUnitType(t *testing.T) {
	if _, err := ParseUnitType("coils"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseUnitType("Metres"); err == nil {
		t.Fatalf("unit types are case sensitive")
	}
}

func TestBuyerTypeString(t *testing.T) {
	if BuyerTypeGovt.String() != "govt" {
		t.Fatalf("unexpected value %s", BuyerTypeGovt)
	}
}

func TestStatusListsAreCopies(t *testing.T) {
	statuses := OrderStatuses()
	if len(statuses) != 6 || statuses[0] != OrderStatusPending {
		t.Fatalf("unexpected order statuses %v", statuses)
	}
	statuses[0] = "lost"
	if OrderStatuses()[0] != OrderStatusPending {
		t.Fatalf("caller mutation leaked into the package set")
	}
	if len(InquiryStatuses()) != 4 {
		t.Fatalf("unexpected inquiry statuses %v", InquiryStatuses())
	}
	if _, err := ParseActorRole("admin"); err == nil || err.Error() != `invalid actor role "admin"` {
		t.Fatalf("unexpected error %v", err)
	}
}
