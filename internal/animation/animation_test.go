package animation

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/roman-kulish/spectrum-analyzer/internal/spectrum"
)

type panickingTicker struct {
	calls int
}

func (p *panickingTicker) Tick() spectrum.Frame {
	p.calls++
	if p.calls%2 == 1 {
		panic("index out of range")
	}
	return spectrum.Frame{Number: uint64(p.calls), Bars: []spectrum.Bar{{}}}
}

func newModel(t *testing.T) *spectrum.Model {
	t.Helper()

	m, err := spectrum.New(spectrum.DefaultOptions(), spectrum.WithRand(rand.New(rand.NewPCG(7, 7))))
	if err != nil {
		t.Fatalf("Failed to create model: %v", err)
	}
	return m
}

func TestDriver_StepForwardsFrames(t *testing.T) {
	m := newModel(t)

	var received []uint64
	d := NewDriver(m, WithSink(SinkFunc(func(_ context.Context, f spectrum.Frame) error {
		received = append(received, f.Number)
		return nil
	})))

	s := NewScheduler(d.Step)
	for range 3 {
		s.TickOnce(context.Background())
	}

	if len(received) != 3 || received[0] != 0 || received[2] != 2 {
		t.Fatalf("Expected frames 0..2, got %v", received)
	}
	if last, ok := d.Last(); !ok || last.Number != 2 {
		t.Errorf("Expected last frame 2, got %d (%v)", last.Number, ok)
	}
	if d.Frames() != 3 {
		t.Errorf("Expected 3 frames, got %d", d.Frames())
	}
}

func TestDriver_FaultsDoNotStopTheLoop(t *testing.T) {
	sinkErr := errors.New("sink is gone")

	var delivered int
	d := NewDriver(&panickingTicker{},
		WithSink(SinkFunc(func(context.Context, spectrum.Frame) error {
			return sinkErr
		})),
		WithSink(SinkFunc(func(context.Context, spectrum.Frame) error {
			delivered++
			return nil
		})),
	)

	for range 4 {
		d.Step(context.Background())
	}

	// Two ticks panic; the other two fail in the first sink only.
	if d.Frames() != 2 {
		t.Errorf("Expected 2 frames, got %d", d.Frames())
	}
	if d.Faults() != 4 {
		t.Errorf("Expected 4 faults, got %d", d.Faults())
	}
	if delivered != 2 {
		t.Errorf("Expected the second sink to receive 2 frames, got %d", delivered)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	var ticks atomic.Int64
	s := NewScheduler(func(context.Context) {
		ticks.Add(1)
	}, WithInterval(time.Millisecond))

	done, err := s.Start(context.Background())
	if err != nil {
		t.Fatalf("Failed to start scheduler: %v", err)
	}
	if _, err = s.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("Expected ErrAlreadyRunning, got %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for ticks.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if ticks.Load() < 3 {
		t.Fatalf("Expected at least 3 ticks, got %d", ticks.Load())
	}

	s.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected done channel to be closed after Stop")
	}
	if s.IsRunning() {
		t.Errorf("Expected scheduler to be stopped")
	}

	stopped := ticks.Load()
	time.Sleep(10 * time.Millisecond)
	if ticks.Load() != stopped {
		t.Errorf("Expected no ticks after Stop")
	}

	s.Stop() // no-op

	if _, err = s.Start(context.Background()); err != nil {
		t.Fatalf("Failed to restart scheduler: %v", err)
	}
	s.Stop()
}

func TestScheduler_ConcurrentStartStop(t *testing.T) {
	s := NewScheduler(func(context.Context) {}, WithInterval(time.Millisecond))

	for range 50 {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.Start(context.Background())
		}()
		go func() {
			defer wg.Done()
			s.Stop()
		}()
		wg.Wait()
	}

	s.Stop()
	if s.IsRunning() {
		t.Errorf("Expected scheduler to be stopped")
	}
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := NewScheduler(func(context.Context) {}, WithInterval(time.Millisecond))
	done, err := s.Start(ctx)
	if err != nil {
		t.Fatalf("Failed to start scheduler: %v", err)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected scheduler to stop on context cancel")
	}
}

func TestWithInterval_IgnoresNonPositive(t *testing.T) {
	s := NewScheduler(func(context.Context) {}, WithInterval(0))
	if s.Interval() != DefaultInterval {
		t.Errorf("Expected default interval, got %s", s.Interval())
	}
}
