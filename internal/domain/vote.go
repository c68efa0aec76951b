package domain

import "strings"

// Side is the prediction a visitor makes about the box.
type Side string

const (
	SideAlive Side = "ALIVE"
	SideDead  Side = "DEAD"
)

// Valid reports whether s is one of the two representable sides.
func (s Side) Valid() bool {
	return s == SideAlive || s == SideDead
}

func (s Side) String() string {
	return string(s)
}

// ParseSide converts user input to a Side, ignoring case and surrounding whitespace.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(SideAlive):
		return SideAlive, nil
	case string(SideDead):
		return SideDead, nil
	default:
		return "", ErrInvalidSide
	}
}

// Vote is a single cast vote. Immutable once created.
type Vote struct {
	ID        string `json:"id"`
	Side      Side   `json:"side"`
	Timestamp int64  `json:"ts"` // milliseconds since epoch
}

// RoundState is the persisted aggregate of one device for one season.
type RoundState struct {
	Votes   []Vote `json:"votes"`
	Voted   bool   `json:"voted"`
	Settled bool   `json:"settled"`
	Outcome *Side  `json:"outcome"`
}

// NewRoundState returns the default state of a device that has never run the round.
func NewRoundState() RoundState {
	return RoundState{Votes: []Vote{}}
}

// Clone returns a deep copy so callers never share the votes slice or the outcome pointer.
func (s RoundState) Clone() RoundState {
	out := RoundState{
		Votes:   make([]Vote, len(s.Votes)),
		Voted:   s.Voted,
		Settled: s.Settled,
	}
	copy(out.Votes, s.Votes)
	if s.Outcome != nil {
		outcome := *s.Outcome
		out.Outcome = &outcome
	}
	return out
}

// OutcomeOrUnknown renders the outcome for display.
func (s RoundState) OutcomeOrUnknown() string {
	if s.Outcome == nil {
		return OutcomeUnknown
	}
	return s.Outcome.String()
}

// OutcomeUnknown is displayed while no outcome has been settled.
const OutcomeUnknown = "UNKNOWN"
