package telemetry

import "time"

// Schedule gates a periodic action on elapsed time. It fires at most once
// per interval and never catches up on missed intervals.
type Schedule struct {
	interval time.Duration
	last     time.Time
}

// NewSchedule creates a schedule whose first firing is one interval after
// start.
func NewSchedule(interval time.Duration, start time.Time) *Schedule {
	return &Schedule{interval: interval, last: start}
}

// Due reports whether an interval has elapsed since the last firing and,
// if so, restarts the interval at now.
func (s *Schedule) Due(now time.Time) bool {
	if now.Sub(s.last) < s.interval {
		return false
	}
	s.last = now
	return true
}
