package app

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/roman-kulish/spectrum-analyzer/internal/render"
	"github.com/roman-kulish/spectrum-analyzer/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	return renderSession(ctx, store, config, logger)
}

func renderSession(ctx context.Context, store *storage.SqliteStore, config *Config, logger *slog.Logger) error {
	var opts []storage.ReaderOption
	var filters []any
	if config.FromFrame != nil || config.ToFrame != nil {
		from, to := uint64(0), uint64(math.MaxInt64)
		if config.FromFrame != nil {
			from = *config.FromFrame
		}
		if config.ToFrame != nil {
			to = *config.ToFrame
		}
		opts = append(opts, storage.WithFrameRange(from, to))
		filters = append(filters, slog.Uint64("fromFrame", from), slog.Uint64("toFrame", to))
	}

	logger.Info("reader configuration", append(filters, slog.Int64("session", config.SessionID))...)

	reader, err := store.ReadFrames(ctx, config.SessionID, opts...)
	if err != nil {
		return err
	}
	defer reader.Close()

	waterfall, err := readWaterfall(ctx, reader)
	if err != nil {
		return err
	}

	from, to := waterfall.TimeRange()
	bounds := waterfall.Bounds()
	logger.Info("finished reading frames",
		slog.Group("stats",
			slog.Int("frames", len(waterfall.Rows)),
			slog.Int("bands", len(waterfall.Frequencies)),
			slog.String("minTimestamp", from.In(config.TimeZone).Format(time.DateTime)),
			slog.String("maxTimestamp", to.In(config.TimeZone).Format(time.DateTime)),
			slog.String("minHeight", humanize.FtoaWithDigits(bounds.Min, 1)),
			slog.String("maxHeight", humanize.FtoaWithDigits(bounds.Max, 1)),
		))

	renderer := render.NewWaterfallRenderer(render.WaterfallConfig{
		Location:      config.TimeZone,
		Theme:         config.Theme,
		Bounds:        colorBounds(config, bounds),
		NoAnnotations: config.NoAnnotations,
	})

	img, err := renderer.Render(waterfall)
	if err != nil {
		return fmt.Errorf("rendering waterfall: %w", err)
	}

	logger.Info("writing heatmap",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.String("theme", string(config.Theme)),
			slog.Int("width", img.Bounds().Dx()),
			slog.Int("height", img.Bounds().Dy()),
		))

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	if err = render.Encode(out, img, config.Format); err != nil {
		return fmt.Errorf("encoding heatmap: %w", err)
	}
	return out.Close()
}

// readWaterfall lays out every frame of the reader as a waterfall row. The
// bands of the first frame define the columns.
func readWaterfall(ctx context.Context, reader storage.FrameReader) (*render.Waterfall, error) {
	var waterfall render.Waterfall
	for reader.Next(ctx) {
		rf := reader.Current()

		if waterfall.Frequencies == nil {
			for _, bar := range rf.Frame.Bars {
				waterfall.Frequencies = append(waterfall.Frequencies, bar.Frequency)
				waterfall.Visible = append(waterfall.Visible, bar.Visible)
			}
		}

		cells := make([]*float64, len(rf.Frame.Bars))
		for i := range rf.Frame.Bars {
			cells[i] = &rf.Frame.Bars[i].Height
		}
		waterfall.Append(rf.Timestamp, cells)
	}
	if err := reader.Error(); err != nil {
		return nil, err
	}
	return &waterfall, nil
}

// colorBounds applies the manual color scale limits over the sampled range
func colorBounds(config *Config, sampled render.AmplitudeBounds) *render.AmplitudeBounds {
	if config.MinAmplitude == nil && config.MaxAmplitude == nil {
		return nil
	}

	bounds := sampled
	if config.MinAmplitude != nil {
		bounds.Min = *config.MinAmplitude
	}
	if config.MaxAmplitude != nil {
		bounds.Max = *config.MaxAmplitude
	}
	return &bounds
}
