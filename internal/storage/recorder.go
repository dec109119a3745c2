package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roman-kulish/spectrum-analyzer/internal/spectrum"
)

const (
	DefaultRecorderBuffer = 64
	DefaultRecordEvery    = 1
)

// ErrRecorderClosed is returned when consuming frames after Close
var ErrRecorderClosed = errors.New("recorder is closed")

type recordedFrame struct {
	ts    time.Time
	frame spectrum.Frame
}

// WithRecorderLogger sets the logger for the recorder
func WithRecorderLogger(logger *slog.Logger) func(*Recorder) {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithEvery records only frames whose number is a multiple of n
func WithEvery(n uint64) func(*Recorder) {
	return func(r *Recorder) {
		if n > 0 {
			r.every = n
		}
	}
}

// WithBufferSize sets the number of frames queued for writing
func WithBufferSize(n int) func(*Recorder) {
	return func(r *Recorder) {
		if n > 0 {
			r.bufferSize = n
		}
	}
}

// WithClock sets the time source used for frame timestamps
func WithClock(now func() time.Time) func(*Recorder) {
	return func(r *Recorder) {
		r.now = now
	}
}

// Recorder writes frames to a store session in a background goroutine. It
// never blocks the animation: frames arriving while the queue is full are
// dropped.
type Recorder struct {
	store     Store
	sessionID int64

	every      uint64
	bufferSize int
	now        func() time.Time

	queue     chan recordedFrame
	wg        sync.WaitGroup
	closeOnce sync.Once
	mu        sync.RWMutex // guards closed against concurrent Consume and Close
	closed    bool

	recorded atomic.Uint64
	dropped  atomic.Uint64
	failed   atomic.Uint64

	logger *slog.Logger
}

// NewRecorder creates a recorder for an existing session and starts its writer
func NewRecorder(store Store, sessionID int64, options ...func(*Recorder)) *Recorder {
	r := Recorder{
		store:      store,
		sessionID:  sessionID,
		every:      DefaultRecordEvery,
		bufferSize: DefaultRecorderBuffer,
		now:        time.Now,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&r)
	}

	r.queue = make(chan recordedFrame, r.bufferSize)

	r.wg.Add(1)
	go r.run()

	return &r
}

// Consume queues the frame for writing. It implements the animation frame sink.
func (r *Recorder) Consume(_ context.Context, frame spectrum.Frame) error {
	if frame.Number%r.every != 0 {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return ErrRecorderClosed
	}

	select {
	case r.queue <- recordedFrame{ts: r.now(), frame: frame}:
	default:
		r.dropped.Add(1)
		r.logger.Warn("recorder queue is full, frame dropped", slog.Uint64("frame", frame.Number))
	}
	return nil
}

func (r *Recorder) run() {
	defer r.wg.Done()

	for rf := range r.queue {
		// Writes are not tied to the animation context so queued frames are
		// flushed on shutdown.
		if err := r.store.StoreFrame(context.Background(), r.sessionID, rf.ts, &rf.frame); err != nil {
			r.failed.Add(1)
			r.logger.Error("failed to record frame", slog.Uint64("frame", rf.frame.Number), slog.Any("error", err))
			continue
		}
		r.recorded.Add(1)
	}
}

// Close flushes the queued frames and stops the writer. The store is not closed.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.queue)
		r.mu.Unlock()

		r.wg.Wait()

		r.logger.Info("recorder stopped",
			slog.Int64("session", r.sessionID),
			slog.Uint64("recorded", r.recorded.Load()),
			slog.Uint64("dropped", r.dropped.Load()),
			slog.Uint64("failed", r.failed.Load()))
	})
	return nil
}

// Recorded returns the number of frames written
func (r *Recorder) Recorded() uint64 {
	return r.recorded.Load()
}

// Dropped returns the number of frames dropped on a full queue
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Failed returns the number of frames the store failed to write
func (r *Recorder) Failed() uint64 {
	return r.failed.Load()
}
