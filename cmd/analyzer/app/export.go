package app

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/roman-kulish/spectrum-analyzer/internal/animation"
	"github.com/roman-kulish/spectrum-analyzer/internal/render"
	"github.com/roman-kulish/spectrum-analyzer/internal/spectrum"
)

const gifExtension = ".gif"

func runExport(ctx context.Context, model *spectrum.Model, config *ExportConfig, logger *slog.Logger) error {
	output := config.Output
	if !strings.EqualFold(filepath.Ext(output), gifExtension) {
		output += gifExtension
	}

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	logger.Info("exporting animation",
		slog.Group("image",
			slog.String("destination", output),
			slog.Int("frames", config.Frames),
			slog.Duration("delay", time.Duration(config.Delay)),
			slog.Bool("random", config.Random),
		))

	if err = exportGIF(ctx, out, model, config, logger); err != nil {
		return err
	}

	if stat, err := out.Stat(); err == nil {
		logger.Info("animation exported", slog.String("size", humanize.Bytes(uint64(stat.Size()))))
	}
	return out.Close()
}

// exportGIF renders config.Frames frames and writes them as an animated GIF.
// Model-driven frames go through the same scheduler and driver as the live
// animation, stepped without the clock.
func exportGIF(ctx context.Context, w io.Writer, model *spectrum.Model, config *ExportConfig, logger *slog.Logger) error {
	chart := render.NewBarChart(model.Options(), render.ChartConfig{ShowStatus: true})

	images := make([]image.Image, 0, config.Frames)
	var renderErr error
	collect := func(frame spectrum.Frame) {
		if renderErr != nil {
			return
		}
		img, err := chart.Render(frame)
		if err != nil {
			renderErr = fmt.Errorf("rendering frame %d: %w", frame.Number, err)
			return
		}
		images = append(images, img)
	}

	if config.Random {
		r := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		for range config.Frames {
			collect(model.RandomFrame(r))
		}
	} else {
		driver := animation.NewDriver(model,
			animation.WithLogger(logger),
			animation.WithSink(animation.SinkFunc(func(_ context.Context, frame spectrum.Frame) error {
				collect(frame)
				return nil
			})))

		scheduler := animation.NewScheduler(driver.Step, animation.WithSchedulerLogger(logger))
		for range config.Frames {
			if err := ctx.Err(); err != nil {
				return err
			}
			scheduler.TickOnce(ctx)
		}
	}

	if renderErr != nil {
		return renderErr
	}

	if err := render.EncodeGIF(w, images, time.Duration(config.Delay)); err != nil {
		return fmt.Errorf("encoding animation: %w", err)
	}
	return nil
}
