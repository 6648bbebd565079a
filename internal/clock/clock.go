package clock

import "time"

// Clock supplies the current time. It is injected wherever "now" matters
// (period filters, monthly quota resets, live durations) so behavior stays
// testable.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }
