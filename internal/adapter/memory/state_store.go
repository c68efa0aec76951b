package memory

import (
	"context"
	"sync"

	"github.com/pscheid92/boxvote/internal/codec"
	"github.com/pscheid92/boxvote/internal/domain"
)

// StateStore keeps the round state in process memory. State is lost on restart.
// Used by tests and as the degraded-mode store when the device store is unusable.
type StateStore struct {
	mu    sync.Mutex
	state domain.RoundState
}

func NewStateStore() *StateStore {
	return &StateStore{state: domain.NewRoundState()}
}

// NewStateStoreWith seeds the store with an existing state.
func NewStateStoreWith(state domain.RoundState) *StateStore {
	return &StateStore{state: state.Clone()}
}

func (s *StateStore) Load(_ context.Context) (domain.RoundState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone(), nil
}

func (s *StateStore) Save(_ context.Context, state domain.RoundState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Clone()
	return nil
}

func (s *StateStore) CompareAndSwap(_ context.Context, prev, next domain.RoundState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !codec.Equal(s.state, prev) {
		return domain.ErrStateConflict
	}
	s.state = next.Clone()
	return nil
}
