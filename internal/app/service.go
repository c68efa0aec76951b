package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/boxvote/internal/adapter/metrics"
	"github.com/pscheid92/boxvote/internal/domain"
	"github.com/pscheid92/boxvote/internal/round"
)

// Service is the only component that touches both the state repository and the engine.
// It serializes load-modify-save so one process never interleaves two mutations.
type Service struct {
	repo      domain.StateRepository
	swapper   domain.StateSwapper
	engine    *round.Engine
	publisher domain.ViewPublisher
	votes     *metrics.VoteMetrics
	rounds    *metrics.RoundMetrics

	mu sync.Mutex
}

// NewService creates the application service. When repo also implements
// domain.StateSwapper, every write goes through compare-and-swap.
// publisher may be nil if nobody watches the box.
func NewService(repo domain.StateRepository, engine *round.Engine, publisher domain.ViewPublisher, votes *metrics.VoteMetrics, rounds *metrics.RoundMetrics) *Service {
	s := &Service{
		repo:      repo,
		engine:    engine,
		publisher: publisher,
		votes:     votes,
		rounds:    rounds,
	}
	if swapper, ok := repo.(domain.StateSwapper); ok {
		s.swapper = swapper
	}
	return s
}

// Render loads the state, settles the round if the deadline has passed and returns the view.
func (s *Service) Render(ctx context.Context) (domain.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; ; attempt++ {
		state, err := s.repo.Load(ctx)
		if err != nil {
			return domain.View{}, fmt.Errorf("load round state: %w", err)
		}

		next, view, settledNow := s.engine.Evaluate(state, s.engine.Now())
		if !settledNow {
			return view, nil
		}

		err = s.write(ctx, state, next)
		if errors.Is(err, domain.ErrStateConflict) && attempt == 0 {
			slog.DebugContext(ctx, "Settlement raced with another session, reloading")
			continue
		}
		if err != nil {
			return domain.View{}, fmt.Errorf("save settlement: %w", err)
		}

		s.rounds.Settlements.WithLabelValues(view.Outcome).Inc()
		slog.InfoContext(ctx, "Round settled", "outcome", view.Outcome, "alive", view.Totals.Alive, "dead", view.Totals.Dead)
		return view, nil
	}
}

// CastVote records the device's single vote and publishes the fresh view.
// Domain errors (closed round, already voted, invalid side) leave the state untouched.
func (s *Service) CastVote(ctx context.Context, side domain.Side) (domain.View, error) {
	timer := prometheus.NewTimer(s.votes.ProcessingDuration)

	s.mu.Lock()
	view, err := s.castVote(ctx, side)
	s.mu.Unlock()

	timer.ObserveDuration()
	s.votes.VotesProcessed.WithLabelValues(voteResult(err)).Inc()

	if err != nil {
		if domain.VoteErrorMessage(err) == "" {
			slog.ErrorContext(ctx, "Vote failed", "side", side, "error", err)
		} else {
			slog.DebugContext(ctx, "Vote rejected", "side", side, "error", err)
		}
		return domain.View{}, err
	}

	s.votes.VotesBySide.WithLabelValues(side.String()).Inc()
	slog.InfoContext(ctx, "Vote cast", "side", side, "alive", view.Totals.Alive, "dead", view.Totals.Dead)

	if s.publisher != nil {
		if err := s.publisher.PublishView(ctx, view); err != nil {
			slog.WarnContext(ctx, "Failed to publish view after vote", "error", err)
		}
	}
	return view, nil
}

func (s *Service) castVote(ctx context.Context, side domain.Side) (domain.View, error) {
	for attempt := 0; ; attempt++ {
		state, err := s.repo.Load(ctx)
		if err != nil {
			return domain.View{}, fmt.Errorf("load round state: %w", err)
		}

		now := s.engine.Now()
		next, err := s.engine.CastVote(state, side, now)
		if err != nil {
			return domain.View{}, err
		}

		err = s.write(ctx, state, next)
		if errors.Is(err, domain.ErrStateConflict) && attempt == 0 {
			slog.DebugContext(ctx, "Vote raced with another session, reloading")
			continue
		}
		if err != nil {
			return domain.View{}, fmt.Errorf("save vote: %w", err)
		}

		return s.engine.View(next, now), nil
	}
}

func (s *Service) write(ctx context.Context, prev, next domain.RoundState) error {
	if s.swapper != nil {
		return s.swapper.CompareAndSwap(ctx, prev, next)
	}
	return s.repo.Save(ctx, next)
}

func voteResult(err error) string {
	switch {
	case err == nil:
		return metrics.VoteResultCast
	case errors.Is(err, domain.ErrRoundClosed):
		return metrics.VoteResultRoundClosed
	case errors.Is(err, domain.ErrAlreadyVoted):
		return metrics.VoteResultAlreadyVoted
	case errors.Is(err, domain.ErrInvalidSide):
		return metrics.VoteResultInvalidSide
	default:
		return metrics.VoteResultError
	}
}
