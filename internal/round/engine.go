package round

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/boxvote/internal/domain"
)

const DefaultLeaderboardSize = 12

type Engine struct {
	round           domain.Round
	clock           clockwork.Clock
	leaderboardSize int
	newID           func() string
}

func NewEngine(round domain.Round, clock clockwork.Clock, leaderboardSize int) *Engine {
	if leaderboardSize <= 0 {
		leaderboardSize = DefaultLeaderboardSize
	}
	return &Engine{
		round:           round,
		clock:           clock,
		leaderboardSize: leaderboardSize,
		newID:           NewVoteID,
	}
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// Round returns the fixed timing configuration.
func (e *Engine) Round() domain.Round {
	return e.round
}

// Status is OPEN strictly before the deadline and SETTLED from the deadline on.
func (e *Engine) Status(now time.Time) domain.Status {
	if now.Before(e.round.EndTime()) {
		return domain.StatusOpen
	}
	return domain.StatusSettled
}

// EnsureSettled freezes the outcome the first time it is called after the deadline.
// The returned bool is true only when the state changed and must be persisted.
// Once settled, the outcome is never recomputed, even if votes were appended afterwards.
func (e *Engine) EnsureSettled(state domain.RoundState, now time.Time) (domain.RoundState, bool) {
	if state.Settled || e.Status(now) != domain.StatusSettled {
		return state, false
	}

	next := state.Clone()
	totals := ComputeTotals(next.Votes)
	outcome := PickOutcome(totals.Alive, totals.Dead)
	next.Outcome = &outcome
	next.Settled = true
	return next, true
}

// CastVote records this device's single vote. Preconditions are checked in order:
// the round must be open, then the device must not have voted yet.
func (e *Engine) CastVote(state domain.RoundState, side domain.Side, now time.Time) (domain.RoundState, error) {
	if e.Status(now) != domain.StatusOpen {
		return state, domain.ErrRoundClosed
	}
	if state.Voted {
		return state, domain.ErrAlreadyVoted
	}
	if !side.Valid() {
		return state, fmt.Errorf("%w: %q", domain.ErrInvalidSide, side)
	}

	next := state.Clone()
	next.Votes = append(next.Votes, domain.Vote{
		ID:        e.newID(),
		Side:      side,
		Timestamp: now.UnixMilli(),
	})
	next.Voted = true
	return next, nil
}

// Evaluate runs one render pass: settle if due, then derive the view model.
// The returned bool reports whether the state changed and must be persisted.
func (e *Engine) Evaluate(state domain.RoundState, now time.Time) (domain.RoundState, domain.View, bool) {
	state, changed := e.EnsureSettled(state, now)
	return state, e.View(state, now), changed
}

// View derives the presentation model from an already-settled-if-due state.
func (e *Engine) View(state domain.RoundState, now time.Time) domain.View {
	status := e.Status(now)
	totals := ComputeTotals(state.Votes)
	board := Leaderboard(state.Votes, e.leaderboardSize)
	end := e.round.EndTime()

	view := domain.View{
		Status:      status,
		Outcome:     domain.OutcomeUnknown,
		RoundInfo:   "Round ends: " + end.UTC().Format(time.RFC1123),
		EndTimeMs:   end.UnixMilli(),
		CanVote:     status == domain.StatusOpen && !state.Voted,
		Voted:       state.Voted,
		Totals:      totals,
		Percentages: ComputePercentages(totals),
		Leaderboard: board,
		Empty:       len(board) == 0,
	}

	if status == domain.StatusSettled {
		view.Outcome = state.OutcomeOrUnknown()
	}

	if remaining := end.Sub(now); remaining > 0 {
		view.Countdown = "BOX OPENS IN " + FormatCountdown(remaining)
	} else {
		view.Countdown = "BOX OPENED: " + state.OutcomeOrUnknown()
	}

	return view
}
