package datemath

import "time"

// Range is a half-open [Start, End) window with a human-readable label.
type Range struct {
	Start time.Time
	End   time.Time
	Label string
}
