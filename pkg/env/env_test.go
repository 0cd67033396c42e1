package env

import "testing"

func TestFirstPrefersEarlierKeys(t *testing.T) {
	t.Setenv("WIREBAZAAR_LOG_FORMAT", "console")
	t.Setenv("LOG_FORMAT", "json")

	if got := First("text", "WIREBAZAAR_LOG_FORMAT", "LOG_FORMAT"); got != "console" {
		t.Fatalf("expected console got %q", got)
	}
	if got := First("text", "WIREBAZAAR_MISSING_KEY"); got != "text" {
		t.Fatalf("expected fallback got %q", got)
	}
	if got := Get("LOG_FORMAT", "text"); got != "json" {
		t.Fatalf("expected json got %q", got)
	}
}
