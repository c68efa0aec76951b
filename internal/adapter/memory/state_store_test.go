package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/boxvote/internal/domain"
)

func TestStateStore_DefaultsAndSave(t *testing.T) {
	ctx := context.Background()
	s := NewStateStore()

	state, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.NewRoundState(), state)

	state.Votes = append(state.Votes, domain.Vote{ID: "a", Side: domain.SideAlive, Timestamp: 1})
	state.Voted = true
	require.NoError(t, s.Save(ctx, state))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, state, loaded)
}

func TestStateStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewStateStoreWith(domain.RoundState{Votes: []domain.Vote{{ID: "a", Side: domain.SideDead}}})

	state, err := s.Load(ctx)
	require.NoError(t, err)
	state.Votes[0].ID = "mutated"

	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Votes[0].ID)
}

func TestStateStore_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	s := NewStateStore()

	prev, err := s.Load(ctx)
	require.NoError(t, err)

	next := prev.Clone()
	next.Voted = true
	require.NoError(t, s.CompareAndSwap(ctx, prev, next))

	// A second writer holding the stale snapshot loses.
	other := prev.Clone()
	other.Votes = append(other.Votes, domain.Vote{ID: "b", Side: domain.SideAlive})
	err = s.CompareAndSwap(ctx, prev, other)
	require.ErrorIs(t, err, domain.ErrStateConflict)

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, loaded.Voted)
	assert.Empty(t, loaded.Votes)
}
