package app

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/roman-kulish/spectrum-analyzer/internal/spectrum"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Spectrum.NumBands != spectrum.DefaultOptions().NumBands {
		t.Errorf("Expected default spectrum options, got %+v", config.Spectrum)
	}
	if time.Duration(config.Animation.Interval) != 33*time.Millisecond {
		t.Errorf("Expected default interval, got %v", time.Duration(config.Animation.Interval))
	}
	if config.Recording.Enabled {
		t.Errorf("Expected recording to be disabled by default")
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
settings:
  logLevel: debug
  logFile: analyzer.log
spectrum:
  numBands: 50
  visibleBands: [100, 300]
animation:
  interval: 100ms
recording:
  enabled: true
  every: 5
export:
  output: out
  delay: 20ms
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Settings.LogFile != "analyzer.log" {
		t.Errorf("Expected log file analyzer.log, got %q", config.Settings.LogFile)
	}
	if level, _ := config.Settings.Level(); level.String() != "DEBUG" {
		t.Errorf("Expected level DEBUG, got %v", level)
	}
	if config.Spectrum.NumBands != 50 || !slices.Equal(config.Spectrum.VisibleBands, []int{100, 300}) {
		t.Errorf("Unexpected spectrum options %+v", config.Spectrum)
	}
	if config.Spectrum.NoiseFloor != 200 {
		t.Errorf("Expected keys missing from the file to keep their defaults, got noise floor %d", config.Spectrum.NoiseFloor)
	}
	if time.Duration(config.Animation.Interval) != 100*time.Millisecond {
		t.Errorf("Expected interval 100ms, got %v", time.Duration(config.Animation.Interval))
	}
	if !config.Recording.Enabled || config.Recording.Every != 5 {
		t.Errorf("Unexpected recording config %+v", config.Recording)
	}
	if config.Export.Output != "out" || time.Duration(config.Export.Delay) != 20*time.Millisecond {
		t.Errorf("Unexpected export config %+v", config.Export)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad duration", "animation:\n  interval: fast\n", "failed to parse"},
		{"bad log level", "settings:\n  logLevel: loud\n", "invalid log level"},
		{"bad spectrum", "spectrum:\n  numBands: 2\n", "invalid spectrum options"},
		{"zero every", "recording:\n  every: 0\n", "recording.every"},
		{"not yaml", "spectrum: [", "parsing configuration file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDuration_JSON(t *testing.T) {
	d := Duration(1500 * time.Millisecond)

	data, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if string(data) != `"1.5s"` {
		t.Errorf("Expected \"1.5s\", got %s", data)
	}

	var got Duration
	if err = got.UnmarshalJSON(data); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if got != d {
		t.Errorf("Expected %v, got %v", time.Duration(d), time.Duration(got))
	}
}
