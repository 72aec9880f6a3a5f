package log

import (
	"testing"

	"github.com/alexcesaro/log"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		verbose  int
		expected log.Level
	}{
		{0, log.Warning},
		{1, log.Info},
		{2, log.Debug},
		{3, log.Debug},
		{10, log.Debug},
	}

	for _, test := range tests {
		if actual := Level(test.verbose); actual != test.expected {
			t.Errorf("-v x%d: Got: %v; Expected: %v", test.verbose, actual, test.expected)
		}
	}
}
