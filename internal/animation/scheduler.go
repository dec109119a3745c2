package animation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultInterval is the tick interval used when none is configured, about 30 frames per second
	DefaultInterval = 33 * time.Millisecond
)

// ErrAlreadyRunning is returned when starting a scheduler that is already running
var ErrAlreadyRunning = errors.New("scheduler is already running")

// StepFunc is invoked on every tick of the scheduler
type StepFunc func(ctx context.Context)

// WithSchedulerLogger sets the logger for the scheduler
func WithSchedulerLogger(logger *slog.Logger) func(s *Scheduler) {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithInterval sets the tick interval of the scheduler
func WithInterval(d time.Duration) func(s *Scheduler) {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// Scheduler invokes a step function at a fixed interval until it is stopped
// or its context is cancelled. Ticks never overlap.
type Scheduler struct {
	step     StepFunc
	interval time.Duration

	mu      sync.Mutex // serializes steps from the loop and TickOnce
	stateMu sync.Mutex // guards cancel and the start of the loop
	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	logger *slog.Logger
}

// NewScheduler creates a new Scheduler with a discard logger
func NewScheduler(step StepFunc, options ...func(s *Scheduler)) *Scheduler {
	s := Scheduler{
		step:     step,
		interval: DefaultInterval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&s)
	}

	return &s
}

// Interval returns the tick interval
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start begins ticking in a background goroutine. The returned channel is
// closed once the loop has exited.
func (s *Scheduler) Start(ctx context.Context) (<-chan struct{}, error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}

	ctx, s.cancel = context.WithCancel(ctx)
	done := make(chan struct{})

	s.wg.Add(1)
	go func() {
		defer func() {
			s.running.Store(false)
			close(done)
			s.wg.Done()
		}()

		s.logger.Info("animation started", slog.Duration("interval", s.interval))

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("animation stopped")
				return

			case <-ticker.C:
				s.TickOnce(ctx)
			}
		}
	}()

	return done, nil
}

// Stop cancels the loop and waits for the current tick to finish. It is
// safe to call Stop on a scheduler that is not running.
func (s *Scheduler) Stop() {
	s.stateMu.Lock()
	if !s.running.Load() {
		s.stateMu.Unlock()
		return // already stopped
	}
	cancel := s.cancel
	s.stateMu.Unlock()

	cancel()
	s.wg.Wait()
}

// IsRunning returns true if the loop is running
func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

// TickOnce runs a single step synchronously, so tests and exports can drive
// the animation without waiting for the clock.
func (s *Scheduler) TickOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.step(ctx)
}
