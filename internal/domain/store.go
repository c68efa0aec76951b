package domain

import "context"

// StateRepository loads and saves the round state of one season.
// Load never fails on malformed data; implementations repair it to the default state.
type StateRepository interface {
	Load(ctx context.Context) (RoundState, error)
	Save(ctx context.Context, state RoundState) error
}

// StateSwapper is the optional hardening of StateRepository against concurrent sessions
// sharing one store. CompareAndSwap writes next only if the stored state still equals prev,
// otherwise it returns ErrStateConflict.
type StateSwapper interface {
	CompareAndSwap(ctx context.Context, prev, next RoundState) error
}
