package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/boxvote/internal/adapter/metrics"
	"github.com/pscheid92/boxvote/internal/domain"
	"github.com/pscheid92/boxvote/internal/platform/correlation"
)

const DefaultTickInterval = time.Second

// RenderTicker re-renders the box on a fixed cadence so the countdown advances and the
// round settles at the deadline even when nobody votes.
type RenderTicker struct {
	service   *Service
	publisher domain.ViewPublisher
	clock     clockwork.Clock
	interval  time.Duration
	metrics   *metrics.RoundMetrics
}

func NewRenderTicker(service *Service, publisher domain.ViewPublisher, clock clockwork.Clock, interval time.Duration, m *metrics.RoundMetrics) *RenderTicker {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &RenderTicker{
		service:   service,
		publisher: publisher,
		clock:     clock,
		interval:  interval,
		metrics:   m,
	}
}

// Run renders once immediately, then on every tick. It blocks until ctx is cancelled.
func (t *RenderTicker) Run(ctx context.Context) {
	ticker := t.clock.NewTicker(t.interval)
	defer ticker.Stop()

	t.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			t.tick(ctx)
		}
	}
}

func (t *RenderTicker) tick(ctx context.Context) {
	tickCtx := correlation.WithID(ctx, correlation.NewID())
	t.metrics.Ticks.Inc()

	timer := prometheus.NewTimer(t.metrics.RenderDuration)
	view, err := t.service.Render(tickCtx)
	timer.ObserveDuration()
	if err != nil {
		t.metrics.RenderErrors.Inc()
		slog.WarnContext(tickCtx, "Ticker: render failed", "error", err)
		return
	}

	if err := t.publisher.PublishView(tickCtx, view); err != nil {
		slog.WarnContext(tickCtx, "Ticker: publish failed", "error", err)
	}
}
