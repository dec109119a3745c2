package app

import (
	"log/slog"
	"testing"
)

func TestNewConfigFromArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    Config
		wantErr bool
	}{
		{
			name: "defaults",
			want: Config{Addr: ":8080", Width: 640, Height: 480, LogLevel: slog.LevelInfo},
		},
		{
			name: "overrides",
			args: []string{"-addr", "127.0.0.1:9000", "-width", "800", "-height", "600", "-log-level", "debug"},
			want: Config{Addr: "127.0.0.1:9000", Width: 800, Height: 600, LogLevel: slog.LevelDebug},
		},
		{name: "empty addr", args: []string{"-addr", ""}, wantErr: true},
		{name: "too small", args: []string{"-width", "50"}, wantErr: true},
		{name: "bad level", args: []string{"-log-level", "loud"}, wantErr: true},
		{name: "unknown flag", args: []string{"-port", "1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewConfigFromArgs(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected an error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Failed to parse arguments: %v", err)
			}
			if *got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, *got)
			}
		})
	}
}
