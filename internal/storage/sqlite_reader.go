package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/roman-kulish/spectrum-analyzer/internal/spectrum"
)

// ErrNoData indicates that no frames exist for the given parameters
var ErrNoData = errors.New("no data available")

var (
	minTimestamp = time.Time{}
	maxTimestamp = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
)

// FrameReader provides an iterator-based interface for reading recorded
// frames in frame order.
type FrameReader interface {
	// Session returns the session the reader is accessing.
	Session() *Session

	// Next advances the iterator and returns true if there is another
	// frame, false when the iteration is complete or an error occurred.
	Next(context.Context) bool

	// Current returns the current frame. If called after Next() returns
	// false, the behavior is undefined.
	Current() *RecordedFrame

	// Error returns any error that occurred during iteration.
	Error() error

	// Close releases any resources associated with the reader.
	Close() error
}

// ReaderOption configures a frame reader with filtering criteria
type ReaderOption func(*SqliteFrameReader)

// WithFrameRange limits the reader to frame numbers within [from, to]
func WithFrameRange(from, to uint64) ReaderOption {
	return func(r *SqliteFrameReader) {
		r.fromFrame = &from
		r.toFrame = &to
	}
}

// WithTimeRange limits the reader to frames recorded within [start, end]
func WithTimeRange(start, end time.Time) ReaderOption {
	return func(r *SqliteFrameReader) {
		start, end = start.UTC(), end.UTC()
		r.startTime = &start
		r.endTime = &end
	}
}

// SqliteFrameReader implements FrameReader for the Sqlite database backend.
type SqliteFrameReader struct {
	db *sql.DB

	sessionID int64
	session   *Session

	fromFrame, toFrame *uint64
	startTime, endTime *time.Time

	current *RecordedFrame
	next    *sampleData // First sample of the next frame
	rows    *sql.Rows
	err     error
}

var _ FrameReader = (*SqliteFrameReader)(nil)

func newSqliteFrameReader(ctx context.Context, db *sql.DB, sessionID int64, opts ...ReaderOption) (*SqliteFrameReader, error) {
	fr := &SqliteFrameReader{
		db:        db,
		sessionID: sessionID,
	}
	for _, opt := range opts {
		opt(fr)
	}
	if err := fr.init(ctx); err != nil {
		return nil, fmt.Errorf("initializing reader: %w", err)
	}
	return fr, nil
}

func (fr *SqliteFrameReader) init(ctx context.Context) error {
	if fr.sessionID <= 0 {
		return errors.New("session ID required")
	}

	steps := []struct {
		msg string
		fn  func(context.Context) error
	}{
		{msg: "loading session", fn: fr.loadSession},
		{msg: "initializing filters", fn: fr.initFilters},
		{msg: "initializing query", fn: fr.initQuery},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.msg, err)
		}
	}
	return nil
}

func (fr *SqliteFrameReader) loadSession(ctx context.Context) (err error) {
	stmt, err := fr.db.PrepareContext(ctx, selectSessionSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	var data sessionData
	if err = stmt.QueryRowContext(ctx, fr.sessionID).Scan(&data.ID, &data.StartTime, &data.Options); err != nil {
		return fmt.Errorf("querying session: %w", err)
	}

	fr.session = data.toSession()
	return
}

func (fr *SqliteFrameReader) initFilters(ctx context.Context) (err error) {
	if fr.fromFrame == nil {
		fr.fromFrame = new(uint64)
	}
	if fr.toFrame == nil {
		to := uint64(math.MaxInt64)
		fr.toFrame = &to
	}
	if fr.startTime == nil {
		fr.startTime = &minTimestamp
	}
	if fr.endTime == nil {
		fr.endTime = &maxTimestamp
	}

	if *fr.fromFrame > *fr.toFrame {
		return fmt.Errorf("start frame %d is after end frame %d", *fr.fromFrame, *fr.toFrame)
	}
	if fr.startTime.After(*fr.endTime) {
		return fmt.Errorf("start time %s is after end time %s", fr.startTime, fr.endTime)
	}

	stmt, err := fr.db.PrepareContext(ctx, countSamplesSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	var count int64
	if err = stmt.QueryRowContext(ctx, fr.args()...).Scan(&count); err != nil {
		return fmt.Errorf("counting samples: %w", err)
	}
	if count == 0 {
		return ErrNoData
	}
	return nil
}

func (fr *SqliteFrameReader) initQuery(ctx context.Context) (err error) {
	stmt, err := fr.db.PrepareContext(ctx, selectSamplesSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	if fr.rows, err = stmt.QueryContext(ctx, fr.args()...); err != nil {
		return err
	}
	return nil
}

func (fr *SqliteFrameReader) args() []any {
	return []any{
		fr.sessionID,
		int64(min(*fr.fromFrame, math.MaxInt64)),
		int64(min(*fr.toFrame, math.MaxInt64)),
		*fr.startTime,
		*fr.endTime,
	}
}

func (fr *SqliteFrameReader) scanSample() (*sampleData, error) {
	var data sampleData
	err := fr.rows.Scan(
		&data.FrameNumber,
		&data.Timestamp,
		&data.Frequency,
		&data.Height,
		&data.Active,
		&data.Visible,
		&data.Selected,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning sample: %w", err)
	}
	return &data, nil
}

func (fr *SqliteFrameReader) Session() *Session {
	return fr.session
}

func (fr *SqliteFrameReader) Next(ctx context.Context) bool {
	if fr.err != nil || fr.rows == nil {
		return false
	}

	fr.current = nil
	if fr.next != nil {
		fr.startFrame(fr.next)
		fr.next = nil
	}

	for {
		select {
		case <-ctx.Done():
			fr.err = ctx.Err()
			return false
		default:
		}

		if !fr.rows.Next() {
			return fr.current != nil
		}

		sample, err := fr.scanSample()
		if err != nil {
			fr.err = err
			return false
		}

		if fr.current == nil {
			fr.startFrame(sample)
			continue
		}

		// Frame number changed, the current frame is complete
		if uint64(sample.FrameNumber) != fr.current.Frame.Number {
			fr.next = sample
			return true
		}

		fr.addSample(sample)
	}
}

func (fr *SqliteFrameReader) startFrame(sample *sampleData) {
	fr.current = &RecordedFrame{
		Timestamp: sample.Timestamp,
		Frame: spectrum.Frame{
			Number: uint64(sample.FrameNumber),
		},
	}
	fr.addSample(sample)
}

func (fr *SqliteFrameReader) addSample(sample *sampleData) {
	frame := &fr.current.Frame
	if sample.Selected {
		frame.Selected = len(frame.Bars)
		frame.Status = spectrum.StatusLabel(sample.Frequency, sample.Height)
	}
	frame.Bars = append(frame.Bars, toBar(sample))
}

func (fr *SqliteFrameReader) Current() *RecordedFrame {
	return fr.current
}

func (fr *SqliteFrameReader) Error() error {
	if fr.err != nil {
		return fr.err
	}
	if fr.rows != nil {
		return fr.rows.Err()
	}
	return nil
}

func (fr *SqliteFrameReader) Close() error {
	if fr.rows != nil {
		err := fr.rows.Close()
		fr.current = nil
		fr.next = nil
		fr.rows = nil
		return err
	}
	return nil
}
