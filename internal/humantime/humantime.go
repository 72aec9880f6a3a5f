// Package humantime formats connection lifetimes for log lines.
package humantime

import (
	"fmt"
	"time"
)

// Since formats the time elapsed since t.
func Since(t time.Time) string {
	return Duration(time.Since(t))
}

// Duration rounds d to the coarsest unit that keeps it readable.
func Duration(d time.Duration) string {
	switch {
	case d < 2*time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < 2*time.Minute:
		return fmt.Sprintf("%.0f seconds", d.Seconds())
	case d < 2*time.Hour:
		return fmt.Sprintf("%.0f minutes", d.Minutes())
	case d < 48*time.Hour:
		return fmt.Sprintf("%.1f hours", d.Hours())
	}
	return fmt.Sprintf("%.1f days", d.Hours()/24)
}
