package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/roman-kulish/spectrum-analyzer/internal/animation"
	"github.com/roman-kulish/spectrum-analyzer/internal/spectrum"
	"github.com/roman-kulish/spectrum-analyzer/internal/storage"
	"github.com/roman-kulish/spectrum-analyzer/internal/tui"
)

// Run starts the analyzer. With an export output configured it writes the
// animation to a GIF file, otherwise it runs the terminal UI until the user
// quits or the context is cancelled.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	model, err := spectrum.New(config.Spectrum, spectrum.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating spectrum: %w", err)
	}

	if config.Export.Output != "" {
		return runExport(ctx, model, &config.Export, logger)
	}
	return runUI(ctx, model, config, logger)
}

func runUI(ctx context.Context, model *spectrum.Model, config *Config, logger *slog.Logger) error {
	driver := animation.NewDriver(model, animation.WithLogger(logger))

	var options []func(*tui.Model)
	if interval := time.Duration(config.Animation.Interval); config.Animation.Smooth && interval > 0 {
		options = append(options, tui.WithSmoothing(int(time.Second/interval)))
	}

	program := tea.NewProgram(tui.New(model, options...), tea.WithAltScreen(), tea.WithContext(ctx))
	driver.AddSink(tui.NewSink(program))

	if config.Recording.Enabled {
		store, err := createStorage(&config.Recording)
		if err != nil {
			return fmt.Errorf("failed to create storage: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("failed to close storage", slog.Any("error", err))
			}
		}()

		sessionID, err := store.CreateSession(ctx, model.Options())
		if err != nil {
			return fmt.Errorf("creating session: %w", err)
		}

		recorder := storage.NewRecorder(store, sessionID,
			storage.WithEvery(config.Recording.Every),
			storage.WithRecorderLogger(logger))
		defer recorder.Close()

		driver.AddSink(recorder)
		logger.Info("recording session", slog.Int64("session", sessionID))
	}

	scheduler := animation.NewScheduler(driver.Step,
		animation.WithInterval(time.Duration(config.Animation.Interval)),
		animation.WithSchedulerLogger(logger))

	if _, err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("starting animation: %w", err)
	}
	defer scheduler.Stop()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running terminal UI: %w", err)
	}

	logger.Info("analyzer stopped",
		slog.Uint64("frames", driver.Frames()),
		slog.Uint64("faults", driver.Faults()))
	return nil
}

func createStorage(config *RecordingConfig) (*storage.SqliteStore, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	var dbPath string
	if config.DataDirectory != "" {
		dbPath = filepath.Join(wd, config.DataDirectory)
	} else {
		dbPath = filepath.Join(wd, defaultDataDirectory)
	}

	if err = os.MkdirAll(dbPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory '%s': %w", dbPath, err)
	}

	dbPath = filepath.Join(dbPath, fmt.Sprintf("analyzer_session_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	return storage.NewSqliteStore(dbPath, storage.WithMaxBatchSize(config.MaxBatchSize)), nil
}
