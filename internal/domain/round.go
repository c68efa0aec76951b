package domain

import "time"

// Status is the round status derived from the wall clock.
type Status string

const (
	StatusOpen    Status = "OPEN"
	StatusSettled Status = "SETTLED"
)

// Round is the fixed timing configuration of a season. It is not part of mutable state.
type Round struct {
	PublishTime time.Time
	Duration    time.Duration
}

// EndTime is the settlement deadline.
func (r Round) EndTime() time.Time {
	return r.PublishTime.Add(r.Duration)
}
