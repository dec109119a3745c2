package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/roman-kulish/spectrum-analyzer/cmd/analyzer/app"
)

func main() {
	var logLevel slog.LevelVar
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &logLevel}))

	var (
		configPath string
		exportPath string
		frames     int
		random     bool
		record     bool
	)
	flag.StringVar(&configPath, "c", "", "Path to the configuration file")
	flag.StringVar(&exportPath, "export", "", "Write the animation to a GIF file instead of running the terminal UI")
	flag.IntVar(&frames, "frames", 0, "Number of frames to export")
	flag.BoolVar(&random, "random", false, "Export random frames instead of the animation")
	flag.BoolVar(&record, "record", false, "Record the session to the data directory")
	flag.Parse()

	config, err := app.LoadConfig(configPath)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to load configuration file: %s", err.Error()), slog.String("path", configPath))
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "export":
			config.Export.Output = exportPath
		case "frames":
			config.Export.Frames = frames
		case "random":
			config.Export.Random = random
		case "record":
			config.Recording.Enabled = record
		}
	})

	if err = config.Validate(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	level, _ := config.Settings.Level()
	logLevel.Set(level)

	// The terminal UI owns stdout
	if config.Export.Output == "" {
		var w io.Writer = io.Discard
		if config.Settings.LogFile != "" {
			f, err := os.OpenFile(config.Settings.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				logger.Error(fmt.Sprintf("failed to open log file: %s", err.Error()), slog.String("path", config.Settings.LogFile))
				os.Exit(1)
			}
			defer f.Close()
			w = f
		}
		logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: &logLevel}))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err = app.Run(ctx, config, logger); err != nil {
		logger.Error(err.Error())
		fmt.Fprintln(os.Stderr, err.Error())

		cancel()
		os.Exit(1)
	}
}
