package storage

import (
	_ "embed"
)

//go:embed schema.sql
var initSchemaSQL string

const (
	// Indexes are built when the writer is closed so inserts stay cheap while recording
	initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_samples_session_frame ON samples (session_id, frame_number, band_index);
CREATE INDEX IF NOT EXISTS idx_samples_session_timestamp ON samples (session_id, timestamp);`

	insertSessionSQL = `
INSERT INTO sessions (
                      start_time,
                      options)
VALUES (?, ?)`

	selectSessionSQL = `
SELECT
    id,
    start_time,
    options
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    start_time,
    options
FROM sessions
ORDER BY id`

	insertSampleSQL = `
INSERT INTO samples (
                     session_id,
                     frame_number,
                     timestamp,
                     band_index,
                     frequency,
                     height,
                     active,
                     visible,
                     selected)
VALUES `

	sampleValuesPlaceholder = "(?, ?, ?, ?, ?, ?, ?, ?, ?)"
	sampleColumns           = 9

	countSamplesSQL = `
SELECT
    COUNT(*)
FROM samples
WHERE
    session_id = ?
    AND frame_number BETWEEN ? AND ?
    AND timestamp BETWEEN ? AND ?`

	selectSamplesSQL = `
SELECT
    frame_number,
    timestamp,
    frequency,
    height,
    active,
    visible,
    selected
FROM samples
WHERE
    session_id = ?
    AND frame_number BETWEEN ? AND ?
    AND timestamp BETWEEN ? AND ?
ORDER BY frame_number, band_index`
)
