package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultPollInterval is the poll cadence used when none is configured.
const DefaultPollInterval = 10 * time.Second

var (
	runningPollers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "area_pollers_running",
		Help: "Number of areas with an active polling loop.",
	})
	pollTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "area_poll_ticks_total",
		Help: "Poll ticks executed, by outcome.",
	}, []string{"outcome"})
)

// TickFunc runs one full poll pass for an area: detect, and dispatch the
// reaction when the action fired. Errors are logged and counted; they never
// stop the loop.
type TickFunc func(ctx context.Context, areaID string) error

// Scheduler runs one polling goroutine per active area. A tick executes
// synchronously inside its loop, so a slow tick delays the next one instead
// of overlapping it.
type Scheduler struct {
	interval time.Duration
	tick     TickFunc
	logger   *slog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	closed  bool
	wg      sync.WaitGroup
}

// New creates a scheduler. A non-positive interval falls back to
// DefaultPollInterval.
func New(interval time.Duration, tick TickFunc, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Scheduler{
		interval: interval,
		tick:     tick,
		logger:   logger,
		cancels:  make(map[string]context.CancelFunc),
	}
}

// Start launches the polling loop for the area. Starting an already-running
// area is a no-op, so concurrent binds cannot double-poll.
func (s *Scheduler) Start(areaID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if _, ok := s.cancels[areaID]; ok {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancels[areaID] = cancel
	s.wg.Add(1)
	runningPollers.Inc()

	s.logger.Info("starting poller", slog.String("area_id", areaID), slog.Duration("interval", s.interval))
	go s.run(ctx, areaID)
}

// Stop cancels the area's polling loop. Stopping an unknown or
// already-stopped area is a no-op.
func (s *Scheduler) Stop(areaID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(areaID)
}

func (s *Scheduler) stopLocked(areaID string) {
	cancel, ok := s.cancels[areaID]
	if !ok {
		return
	}
	cancel()
	delete(s.cancels, areaID)
	runningPollers.Dec()
	s.logger.Info("stopped poller", slog.String("area_id", areaID))
}

// IsRunning reports whether the area currently has a polling loop.
func (s *Scheduler) IsRunning(areaID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cancels[areaID]
	return ok
}

// Running returns the number of active polling loops.
func (s *Scheduler) Running() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cancels)
}

// Shutdown stops every loop and waits for in-flight ticks to finish, or for
// ctx to expire.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	for areaID := range s.cancels {
		s.stopLocked(areaID)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) run(ctx context.Context, areaID string) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Stop cancels the loop, not an in-flight tick: an already-running
	// detect/dispatch must finish so detection state and the reaction are
	// never left half-done. Ticks therefore run on a context detached from
	// the loop's cancellation.
	tickCtx := context.WithoutCancel(ctx)

	// First tick fires immediately so a fresh bind polls without waiting a
	// full interval.
	s.tickOnce(ctx, tickCtx, areaID)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tickOnce(ctx, tickCtx, areaID)
		}
	}
}

func (s *Scheduler) tickOnce(loopCtx, ctx context.Context, areaID string) {
	if loopCtx.Err() != nil {
		return
	}
	if err := s.tick(ctx, areaID); err != nil {
		pollTicks.WithLabelValues("error").Inc()
		s.logger.Error("poll tick failed",
			slog.String("area_id", areaID),
			slog.String("error", err.Error()))
		return
	}
	pollTicks.WithLabelValues("ok").Inc()
}
