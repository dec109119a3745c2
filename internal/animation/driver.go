// Package animation drives a spectrum model on a fixed schedule and forwards
// every rendered frame to the registered sinks.
package animation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roman-kulish/spectrum-analyzer/internal/spectrum"
)

// Ticker produces the next animation frame
type Ticker interface {
	Tick() spectrum.Frame
}

// FrameSink consumes rendered frames, e.g. a terminal view or a recorder
type FrameSink interface {
	Consume(ctx context.Context, frame spectrum.Frame) error
}

// SinkFunc adapts a function to the FrameSink interface
type SinkFunc func(ctx context.Context, frame spectrum.Frame) error

func (f SinkFunc) Consume(ctx context.Context, frame spectrum.Frame) error {
	return f(ctx, frame)
}

// WithLogger sets the logger for the driver
func WithLogger(logger *slog.Logger) func(d *Driver) {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithSink registers a frame sink with the driver
func WithSink(sink FrameSink) func(d *Driver) {
	return func(d *Driver) {
		d.sinks = append(d.sinks, sink)
	}
}

// Driver advances a Ticker one frame per step and fans the frame out to its
// sinks. A fault in a tick or a sink is logged and never aborts the loop.
type Driver struct {
	ticker Ticker
	sinks  []FrameSink

	mu   sync.RWMutex
	last *spectrum.Frame

	frames atomic.Uint64
	faults atomic.Uint64

	logger *slog.Logger
}

// NewDriver creates a new Driver with a discard logger
func NewDriver(t Ticker, options ...func(d *Driver)) *Driver {
	d := Driver{
		ticker: t,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&d)
	}

	return &d
}

// AddSink registers a frame sink after construction. It must not be called
// while a scheduler is stepping the driver.
func (d *Driver) AddSink(sink FrameSink) {
	d.sinks = append(d.sinks, sink)
}

// Step advances the animation by one frame. It matches StepFunc so a driver
// can be handed to a Scheduler directly.
func (d *Driver) Step(ctx context.Context) {
	frame, err := d.tick()
	if err != nil {
		d.faults.Add(1)
		d.logger.Error(err.Error())
		return
	}

	d.frames.Add(1)

	d.mu.Lock()
	d.last = &frame
	d.mu.Unlock()

	for _, sink := range d.sinks {
		if err = d.consume(ctx, sink, frame); err != nil {
			d.faults.Add(1)
			d.logger.Warn(err.Error(), slog.Uint64("frame", frame.Number))
		}
	}
}

// Last returns the most recent frame
func (d *Driver) Last() (spectrum.Frame, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.last == nil {
		return spectrum.Frame{}, false
	}
	return *d.last, true
}

// Frames returns the number of frames produced
func (d *Driver) Frames() uint64 {
	return d.frames.Load()
}

// Faults returns the number of failed ticks and sink deliveries
func (d *Driver) Faults() uint64 {
	return d.faults.Load()
}

func (d *Driver) tick() (frame spectrum.Frame, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tick panicked: %v", r)
		}
	}()

	return d.ticker.Tick(), nil
}

func (d *Driver) consume(ctx context.Context, sink FrameSink, frame spectrum.Frame) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("frame sink panicked: %v", r)
		}
	}()

	if err = sink.Consume(ctx, frame); err != nil {
		return fmt.Errorf("consuming frame: %w", err)
	}
	return nil
}
