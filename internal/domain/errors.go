package domain

import "errors"

var (
	ErrRoundClosed   = errors.New("round closed")
	ErrAlreadyVoted  = errors.New("already voted")
	ErrInvalidSide   = errors.New("invalid side")
	ErrStateConflict = errors.New("state changed concurrently")
)

// VoteErrorMessage maps a vote error to the dismissible message shown to the visitor.
// Returns "" for errors that are not user-facing.
func VoteErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrRoundClosed):
		return "Box is opening. Voting closed."
	case errors.Is(err, ErrAlreadyVoted):
		return "You already observed the box."
	case errors.Is(err, ErrInvalidSide):
		return "Pick ALIVE or DEAD."
	default:
		return ""
	}
}
