// Package fallback wraps the device state store with a circuit breaker and degrades to an
// in-memory-only session when the store keeps failing.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"

	"github.com/pscheid92/boxvote/internal/adapter/memory"
	"github.com/pscheid92/boxvote/internal/domain"
)

const defaultFailureThreshold = 3

type primaryStore interface {
	domain.StateRepository
	domain.StateSwapper
}

// StateStore never returns storage errors. Every successful read or write is mirrored in
// memory. A failed read is served from the mirror; a failed write lands only in the mirror
// and degrades the session at once, since the primary no longer holds the latest state.
// Repeated read failures trip the breaker with the same effect. A degraded session stays
// memory-only until the process exits, so a half-written device store is never resumed.
type StateStore struct {
	primary  primaryStore
	mirror   *memory.StateStore
	cb       circuitbreaker.CircuitBreaker[any]
	degraded atomic.Bool
	onChange func(degraded bool)
}

// NewStateStore wraps primary. failureThreshold consecutive failures trip the breaker;
// zero uses the default. onDegrade may be nil.
func NewStateStore(primary primaryStore, failureThreshold uint32, onDegrade func(degraded bool)) *StateStore {
	if failureThreshold == 0 {
		failureThreshold = defaultFailureThreshold
	}

	cb := circuitbreaker.NewBuilder[any]().
		WithFailureThreshold(uint(failureThreshold)).
		WithDelay(24 * time.Hour).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "state_store",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
		}).
		Build()

	return &StateStore{
		primary:  primary,
		mirror:   memory.NewStateStore(),
		cb:       cb,
		onChange: onDegrade,
	}
}

// Degraded reports whether the session has fallen back to memory only.
func (s *StateStore) Degraded() bool {
	return s.degraded.Load()
}

func (s *StateStore) Load(ctx context.Context) (domain.RoundState, error) {
	if s.Degraded() {
		return s.mirror.Load(ctx)
	}

	var state domain.RoundState
	err := s.guard(func() error {
		var err error
		state, err = s.primary.Load(ctx)
		return err
	})
	if err != nil {
		slog.WarnContext(ctx, "State load failed, serving in-memory copy", "error", err)
		return s.mirror.Load(ctx)
	}

	_ = s.mirror.Save(ctx, state)
	return state, nil
}

func (s *StateStore) Save(ctx context.Context, state domain.RoundState) error {
	_ = s.mirror.Save(ctx, state)
	if s.Degraded() {
		return nil
	}

	if err := s.guard(func() error { return s.primary.Save(ctx, state) }); err != nil {
		slog.WarnContext(ctx, "State save failed, keeping in-memory copy", "error", err)
		s.degrade()
	}
	return nil
}

// CompareAndSwap forwards to the primary store. Conflicts are returned to the caller;
// a storage failure swaps the in-memory mirror instead and degrades the session.
func (s *StateStore) CompareAndSwap(ctx context.Context, prev, next domain.RoundState) error {
	if s.Degraded() {
		return s.mirror.CompareAndSwap(ctx, prev, next)
	}

	err := s.guard(func() error { return s.primary.CompareAndSwap(ctx, prev, next) })
	switch {
	case err == nil:
		_ = s.mirror.Save(ctx, next)
		return nil
	case errors.Is(err, domain.ErrStateConflict):
		return err
	default:
		slog.WarnContext(ctx, "State swap failed, swapping in-memory copy", "error", err)
		if err := s.mirror.CompareAndSwap(ctx, prev, next); err != nil {
			return err
		}
		s.degrade()
		return nil
	}
}

// guard runs op under the breaker. Conflicts are answers from a healthy store and count
// as successes.
func (s *StateStore) guard(op func() error) error {
	if !s.cb.TryAcquirePermit() {
		s.degrade()
		return fmt.Errorf("state store breaker open: %w", circuitbreaker.ErrOpen)
	}

	err := op()
	if err != nil && !errors.Is(err, domain.ErrStateConflict) {
		s.cb.RecordError(err)
		if s.cb.IsOpen() {
			s.degrade()
		}
		return err
	}
	s.cb.RecordSuccess()
	return err
}

func (s *StateStore) degrade() {
	if s.degraded.CompareAndSwap(false, true) {
		slog.Error("State store unavailable, continuing with an in-memory session; votes will not survive a restart")
		if s.onChange != nil {
			s.onChange(true)
		}
	}
}
