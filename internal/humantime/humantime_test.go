package humantime

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{250 * time.Millisecond, "250ms"},
		{42 * time.Second, "42 seconds"},
		{5 * time.Minute, "5 minutes"},
		{3 * time.Hour, "3.0 hours"},
		{49 * time.Hour, "2.0 days"},
		{900 * 24 * time.Hour, "900.0 days"},
	}

	for _, test := range tests {
		if actual := Duration(test.input); actual != test.expected {
			t.Errorf("Got: %q; Expected: %q", actual, test.expected)
		}
	}
}

func TestSince(t *testing.T) {
	if actual := Since(time.Now().Add(-5 * time.Minute)); actual != "5 minutes" {
		t.Errorf("Got: %q; Expected: %q", actual, "5 minutes")
	}
}
