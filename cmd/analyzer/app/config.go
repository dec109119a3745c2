package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/roman-kulish/spectrum-analyzer/internal/animation"
	"github.com/roman-kulish/spectrum-analyzer/internal/spectrum"
	"github.com/roman-kulish/spectrum-analyzer/internal/storage"
	"gopkg.in/yaml.v3"
)

const (
	defaultDataDirectory = "data"
	defaultExportFrames  = 100
	defaultExportDelay   = 50 * time.Millisecond
)

// Config represents the main application configuration
type Config struct {
	Settings  Settings         `yaml:"settings"`
	Spectrum  spectrum.Options `yaml:"spectrum"`
	Animation AnimationConfig  `yaml:"animation"`
	Recording RecordingConfig  `yaml:"recording"`
	Export    ExportConfig     `yaml:"export"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
	LogFile  string `yaml:"logFile"` // the terminal UI owns stdout, logs go here
}

// AnimationConfig represents tick settings
type AnimationConfig struct {
	Interval Duration `yaml:"interval"`
	Smooth   bool     `yaml:"smooth"` // ease the terminal bars between frames
}

// RecordingConfig represents session recording settings
type RecordingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	DataDirectory string `yaml:"dataDirectory"`
	Every         uint64 `yaml:"every"`
	MaxBatchSize  int    `yaml:"maxBatchSize"`
}

// ExportConfig represents GIF export settings. An empty output runs the
// terminal UI instead.
type ExportConfig struct {
	Output string   `yaml:"output"`
	Frames int      `yaml:"frames"`
	Delay  Duration `yaml:"delay"`
	Random bool     `yaml:"random"`
}

// Duration is a time.Duration read from a string such as "33ms"
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	duration, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("app.Duration: failed to parse: %s", err)
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalJSON(bytes []byte) error {
	var v string
	if err := json.Unmarshal(bytes, &v); err != nil {
		return err
	}

	duration, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("app.Duration: failed to parse: %s", err)
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// NewConfig returns the configuration used when no file is given
func NewConfig() *Config {
	return &Config{
		Settings: Settings{
			LogLevel: slog.LevelInfo.String(),
		},
		Spectrum: spectrum.DefaultOptions(),
		Animation: AnimationConfig{
			Interval: Duration(animation.DefaultInterval),
		},
		Recording: RecordingConfig{
			DataDirectory: defaultDataDirectory,
			Every:         storage.DefaultRecordEvery,
			MaxBatchSize:  storage.DefaultMaxBatchSize,
		},
		Export: ExportConfig{
			Frames: defaultExportFrames,
			Delay:  Duration(defaultExportDelay),
		},
	}
}

// LoadConfig reads the configuration file over the defaults. A missing file
// yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := NewConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("reading configuration file: %w", err)
	}

	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing configuration file: %w", err)
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if _, err := c.Settings.Level(); err != nil {
		return err
	}
	if err := c.Spectrum.Validate(); err != nil {
		return fmt.Errorf("invalid spectrum options: %w", err)
	}
	if c.Animation.Interval <= 0 {
		return fmt.Errorf("invalid animation interval: %s", time.Duration(c.Animation.Interval))
	}
	if c.Recording.Every == 0 {
		return errors.New("recording.every must be positive")
	}
	if c.Recording.MaxBatchSize <= 0 {
		return errors.New("recording.maxBatchSize must be positive")
	}
	if c.Export.Frames <= 0 {
		return errors.New("export.frames must be positive")
	}
	if c.Export.Delay <= 0 {
		return fmt.Errorf("invalid export delay: %s", time.Duration(c.Export.Delay))
	}
	return nil
}

// Level parses the configured log level
func (s Settings) Level() (slog.Level, error) {
	var level slog.Level
	if s.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level '%s': %w", s.LogLevel, err)
	}
	return level, nil
}
