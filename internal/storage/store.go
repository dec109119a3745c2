package storage

import (
	"context"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/roman-kulish/spectrum-analyzer/internal/spectrum"
)

// Store persists recorded analyzer sessions and their frames.
type Store interface {
	// CreateSession starts a new recording and returns its identifier. The
	// options are stored as JSON so the run can be reconstructed later.
	CreateSession(ctx context.Context, opts spectrum.Options) (sessionID int64, err error)

	// Session retrieves a recorded session by its ID.
	Session(ctx context.Context, id int64) (session *Session, err error)

	// Sessions returns all recorded sessions ordered by ID.
	Sessions(ctx context.Context) (sessions []*Session, err error)

	// StoreFrame saves every bar of the frame in a single transaction.
	StoreFrame(ctx context.Context, sessionID int64, ts time.Time, frame *spectrum.Frame) error

	// Close releases all database connections. It is safe to call Close
	// multiple times.
	Close() error
}
