package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roman-kulish/spectrum-analyzer/internal/spectrum"
)

// Session is one recorded run of the analyzer
type Session struct {
	ID        int64
	StartTime time.Time
	Options   *string // Options JSON the run was started with
}

// SpectrumOptions decodes the options the session was recorded with
func (s *Session) SpectrumOptions() (spectrum.Options, error) {
	if s.Options == nil {
		return spectrum.Options{}, errors.New("session has no options")
	}

	var opts spectrum.Options
	if err := json.Unmarshal([]byte(*s.Options), &opts); err != nil {
		return spectrum.Options{}, fmt.Errorf("decoding session options: %w", err)
	}
	return opts, nil
}

// RecordedFrame is a frame read back from a session
type RecordedFrame struct {
	Timestamp time.Time
	Frame     spectrum.Frame
}

type sampleData struct {
	SessionID   int64
	FrameNumber int64
	Timestamp   time.Time
	BandIndex   int
	Frequency   float64
	Height      float64
	Active      bool
	Visible     bool
	Selected    bool
}

type sessionData struct {
	ID        int64
	StartTime time.Time
	Options   sql.NullString
}

func (d *sessionData) toSession() *Session {
	sess := Session{
		ID:        d.ID,
		StartTime: d.StartTime,
	}
	if d.Options.Valid {
		sess.Options = &d.Options.String
	}
	return &sess
}
