package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/roman-kulish/spectrum-analyzer/internal/spectrum"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

// rollbackWithError rolls back a transaction that was not committed
func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && !errors.Is(cErr, sql.ErrTxDone) && *err == nil {
		*err = cErr
	}
}

func toSampleData(sessionID int64, ts time.Time, frame *spectrum.Frame, index int) *sampleData {
	bar := frame.Bars[index]

	return &sampleData{
		SessionID:   sessionID,
		FrameNumber: int64(frame.Number),
		Timestamp:   ts.UTC(),
		BandIndex:   index,
		Frequency:   bar.Frequency,
		Height:      bar.Height,
		Active:      bar.Color == spectrum.ColorActive,
		Visible:     bar.Visible,
		Selected:    index == frame.Selected,
	}
}

func toBar(d *sampleData) spectrum.Bar {
	color := spectrum.ColorIdle
	if d.Active {
		color = spectrum.ColorActive
	}

	return spectrum.Bar{
		Frequency: d.Frequency,
		Height:    d.Height,
		Color:     color,
		Visible:   d.Visible,
		Selected:  d.Selected,
	}
}
