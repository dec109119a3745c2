package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/roman-kulish/spectrum-analyzer/internal/spectrum"
)

// DefaultMaxBatchSize is the number of samples inserted by a single statement
const DefaultMaxBatchSize = 500

// WithMaxBatchSize limits the number of samples inserted by a single
// statement. Values below one are ignored.
func WithMaxBatchSize(n int) func(*SqliteStore) {
	return func(s *SqliteStore) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// SqliteStore handles database operations
type SqliteStore struct {
	dbPath       string
	maxBatchSize int

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

var _ Store = (*SqliteStore)(nil)

// NewSqliteStore creates a store backed by the Sqlite database at dbPath.
// Connections are opened lazily on first use.
func NewSqliteStore(dbPath string, options ...func(*SqliteStore)) *SqliteStore {
	s := SqliteStore{
		dbPath:       dbPath,
		maxBatchSize: DefaultMaxBatchSize,
	}

	for _, option := range options {
		option(&s)
	}

	return &s
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		// Sqlite allows a single writer
		db.SetMaxOpenConns(1)

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) CreateSession(ctx context.Context, opts spectrum.Options) (sessionID int64, err error) {
	p, err := json.Marshal(opts)
	if err != nil {
		err = fmt.Errorf("marshaling options: %w", err)
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, time.Now().UTC(), string(p))
	if err != nil {
		err = fmt.Errorf("inserting session: %w", err)
		return
	}

	sessionID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting session ID: %w", err)
	}
	return
}

func (s *SqliteStore) Session(ctx context.Context, id int64) (session *Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var data sessionData
	if err = stmt.QueryRowContext(ctx, id).Scan(&data.ID, &data.StartTime, &data.Options); err != nil {
		err = fmt.Errorf("scanning session: %w", err)
		return
	}

	return data.toSession(), nil
}

func (s *SqliteStore) Sessions(ctx context.Context) (sessions []*Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectSessionsSQL)
	if err != nil {
		err = fmt.Errorf("querying sessions: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var data sessionData
		if err = rows.Scan(&data.ID, &data.StartTime, &data.Options); err != nil {
			err = fmt.Errorf("scanning session: %w", err)
			return
		}
		sessions = append(sessions, data.toSession())
	}
	err = rows.Err()
	return
}

// ReadFrames creates a reader over the frames recorded in a session. It
// returns ErrNoData when nothing matches the filters. The reader must be
// closed after use.
func (s *SqliteStore) ReadFrames(ctx context.Context, sessionID int64, opts ...ReaderOption) (*SqliteFrameReader, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	return newSqliteFrameReader(ctx, db, sessionID, opts...)
}

func (s *SqliteStore) StoreFrame(ctx context.Context, sessionID int64, ts time.Time, frame *spectrum.Frame) (err error) {
	if len(frame.Bars) == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	indexes := make([]int, len(frame.Bars))
	for i := range indexes {
		indexes[i] = i
	}

	for batch := range slices.Chunk(indexes, s.maxBatchSize) {
		values := make([]any, 0, len(batch)*sampleColumns)

		var sb strings.Builder
		sb.WriteString(insertSampleSQL)

		for i, index := range batch {
			data := toSampleData(sessionID, ts, frame, index)
			values = append(values,
				data.SessionID,
				data.FrameNumber,
				data.Timestamp,
				data.BandIndex,
				data.Frequency,
				data.Height,
				data.Active,
				data.Visible,
				data.Selected,
			)

			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(sampleValuesPlaceholder)
		}

		if _, err = tx.ExecContext(ctx, sb.String(), values...); err != nil {
			return fmt.Errorf("batch inserting samples: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var errs []error

		if s.writeDB != nil {
			if err := runSQLCommand(s.writeDB, initIndexesSQL); err != nil {
				errs = append(errs, fmt.Errorf("creating indexes: %w", err))
			}
			if err := s.writeDB.Close(); err != nil {
				errs = append(errs, err)
			}
			s.writeDB = nil
		}

		if s.readDB != nil {
			if err := s.readDB.Close(); err != nil {
				errs = append(errs, err)
			}
			s.readDB = nil
		}

		s.closeErr = errors.Join(errs...)
	})

	return s.closeErr
}
