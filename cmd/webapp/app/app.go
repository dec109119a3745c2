package app

import (
	"context"
	"log/slog"

	"github.com/roman-kulish/spectrum-analyzer/internal/render"
	"github.com/roman-kulish/spectrum-analyzer/internal/server"
)

// Run serves the options endpoint until the context is cancelled
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	srv := server.New(
		server.WithLogger(logger),
		server.WithAddr(config.Addr),
		server.WithChartConfig(render.ChartConfig{
			Width:      config.Width,
			Height:     config.Height,
			ShowStatus: true,
		}))

	return srv.Run(ctx)
}
