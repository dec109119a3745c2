// Package render draws spectrum frames as raster images: bar charts for
// single frames and animations, and waterfall heatmaps for recorded sessions.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/roman-kulish/spectrum-analyzer/internal/spectrum"
)

const (
	defaultWidth  = 640
	defaultHeight = 480

	// Default border sizes in pixels
	defaultTopBorder    = 40
	defaultLeftBorder   = 60
	defaultBottomBorder = 60
	defaultRightBorder  = 20

	// Frequency padding on both sides of the plot in Hz
	frequencyMargin = 100.0

	// Bar width in Hz, converted to at least one pixel
	barWidthHz = 5.0

	amplitudeTicks = 5

	title       = "Spectrum Analyzer"
	xAxisLabel  = "Frequency (Hz)"
	yAxisLabel  = "Amplitude"
	statusLines = 3
)

var (
	// IdleColor is used for every bar but an active selected one
	IdleColor = color.RGBA{R: 0xff, A: 0xff}

	// ActiveColor is used for the selected bar at or above the transmit strength
	ActiveColor = color.RGBA{G: 0x80, A: 0xff}

	tickColor = color.RGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff}
	gridColor = color.RGBA{R: 0xe8, G: 0xe8, B: 0xe8, A: 0xff}
)

// BorderConfig defines the sizes of white space around the plot
type BorderConfig struct {
	Top    int // Space for the title
	Left   int // Space for the amplitude scale
	Bottom int // Space for the frequency scale and the status bar
	Right  int // Right padding
}

// ChartConfig holds all configuration options for bar chart rendering
type ChartConfig struct {
	Width, Height int     // Image size in pixels
	FontSize      float64 // Font size in points
	ShowStatus    bool    // Draw the status label under the plot
	BorderConfig  BorderConfig
}

// BarChart renders frames of one band layout as bar charts
type BarChart struct {
	config ChartConfig

	minFreq, maxFreq float64 // Plotted frequency range, margins included
	minAmp, maxAmp   float64 // Plotted amplitude range
}

// NewBarChart creates a bar chart renderer for the options the frames are
// produced from, applying defaults to zero config values.
func NewBarChart(opts spectrum.Options, config ChartConfig) *BarChart {
	if config.Width == 0 {
		config.Width = defaultWidth
	}
	if config.Height == 0 {
		config.Height = defaultHeight
	}
	if config.FontSize == 0 {
		config.FontSize = defaultFontSize
	}
	if config.BorderConfig.Top == 0 {
		config.BorderConfig.Top = defaultTopBorder
	}
	if config.BorderConfig.Left == 0 {
		config.BorderConfig.Left = defaultLeftBorder
	}
	if config.BorderConfig.Bottom == 0 {
		config.BorderConfig.Bottom = defaultBottomBorder
		if config.ShowStatus {
			config.BorderConfig.Bottom += statusLines * int(config.FontSize*1.4)
		}
	}
	if config.BorderConfig.Right == 0 {
		config.BorderConfig.Right = defaultRightBorder
	}

	minAmp := max(0, float64(opts.MinAmplitude))
	maxAmp := float64(opts.MaxAmplitude)
	if maxAmp <= minAmp {
		maxAmp = minAmp + 1
	}

	minFreq := float64(opts.MinFrequency) - frequencyMargin
	maxFreq := float64(opts.MaxFrequency) + frequencyMargin
	for _, f := range opts.VisibleBands {
		minFreq = min(minFreq, float64(f)-frequencyMargin)
		maxFreq = max(maxFreq, float64(f)+frequencyMargin)
	}

	return &BarChart{
		config:  config,
		minFreq: minFreq,
		maxFreq: maxFreq,
		minAmp:  minAmp,
		maxAmp:  maxAmp,
	}
}

// Bounds returns the size of the rendered images
func (c *BarChart) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.config.Width, c.config.Height)
}

// Render draws the frame with title, scales and optionally the status label
func (c *BarChart) Render(frame spectrum.Frame) (*image.RGBA, error) {
	img := image.NewRGBA(c.Bounds())
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	area, ok := c.plotArea()
	if !ok {
		return nil, fmt.Errorf("image %dx%d is too small for the borders", c.config.Width, c.config.Height)
	}

	ann, err := newAnnotator(c.config.FontSize, image.Black)
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}
	defer ann.Close()
	ann.bind(img)

	ops := []struct {
		msg string
		fn  func(*image.RGBA, image.Rectangle, *annotator, *spectrum.Frame) error
	}{
		{"drawing amplitude scale", c.drawAmplitudeScale},
		{"drawing bars", c.drawBars},
		{"drawing frequency scale", c.drawFrequencyScale},
		{"drawing labels", c.drawLabels},
	}
	for _, op := range ops {
		if err = op.fn(img, area, ann, &frame); err != nil {
			return nil, fmt.Errorf("%s: %w", op.msg, err)
		}
	}

	return img, nil
}

func (c *BarChart) plotArea() (image.Rectangle, bool) {
	b := c.config.BorderConfig
	area := image.Rectangle{
		Min: image.Pt(b.Left, b.Top),
		Max: image.Pt(c.config.Width-b.Right, c.config.Height-b.Bottom),
	}
	return area, !area.Empty()
}

func (c *BarChart) xOf(area image.Rectangle, freq float64) int {
	ratio := (freq - c.minFreq) / (c.maxFreq - c.minFreq)
	return area.Min.X + int(math.Round(ratio*float64(area.Dx())))
}

func (c *BarChart) yOf(area image.Rectangle, amp float64) int {
	ratio := (min(max(amp, c.minAmp), c.maxAmp) - c.minAmp) / (c.maxAmp - c.minAmp)
	return area.Max.Y - int(math.Round(ratio*float64(area.Dy())))
}

func (c *BarChart) drawAmplitudeScale(img *image.RGBA, area image.Rectangle, ann *annotator, _ *spectrum.Frame) error {
	step := (c.maxAmp - c.minAmp) / amplitudeTicks
	half := ann.textHeight() / 2

	for i := 0; i <= amplitudeTicks; i++ {
		amp := c.minAmp + float64(i)*step
		y := c.yOf(area, amp)

		// light guideline across the plot, tick mark on the left
		hline(img, area.Min.X, area.Max.X, y, gridColor)
		hline(img, area.Min.X-tickMarkLength, area.Min.X, y, tickColor)

		label := formatAmplitude(amp)
		x := area.Min.X - tickMarkLength - 3 - ann.textWidth(label)
		if err := ann.drawString(label, x, y+half/2); err != nil {
			return err
		}
	}
	return nil
}

func (c *BarChart) drawBars(img *image.RGBA, area image.Rectangle, _ *annotator, frame *spectrum.Frame) error {
	width := max(1, int(math.Round(barWidthHz*float64(area.Dx())/(c.maxFreq-c.minFreq))))

	fill := func(bar spectrum.Bar, col color.Color) {
		x := c.xOf(area, bar.Frequency) - width/2
		rect := image.Rect(x, c.yOf(area, bar.Height), x+width, area.Max.Y).Intersect(area)
		draw.Draw(img, rect, image.NewUniform(col), image.Point{}, draw.Src)
	}

	for i, bar := range frame.Bars {
		if i != frame.Selected {
			fill(bar, IdleColor)
		}
	}

	// The selected bar is drawn last so it stays on top of its neighbors.
	if frame.Selected >= 0 && frame.Selected < len(frame.Bars) {
		selected := frame.Bars[frame.Selected]
		col := IdleColor
		if selected.Color == spectrum.ColorActive {
			col = ActiveColor
		}
		fill(selected, col)
	}

	return nil
}

func (c *BarChart) drawFrequencyScale(img *image.RGBA, area image.Rectangle, ann *annotator, frame *spectrum.Frame) error {
	textY := area.Max.Y + tickMarkLength + ann.textHeight()

	for _, bar := range frame.Bars {
		if !bar.Visible {
			continue
		}

		x := c.xOf(area, bar.Frequency)
		vline(img, x, area.Max.Y, area.Max.Y+tickMarkLength, tickColor)

		if err := ann.drawCentered(formatFrequency(bar.Frequency), x, textY); err != nil {
			return err
		}
	}
	return nil
}

func (c *BarChart) drawLabels(img *image.RGBA, area image.Rectangle, ann *annotator, frame *spectrum.Frame) error {
	lineHeight := int(c.config.FontSize * 1.4)

	if err := ann.drawCentered(title, img.Bounds().Dx()/2, c.config.BorderConfig.Top/2+ann.textHeight()/2); err != nil {
		return err
	}
	if err := ann.drawString(yAxisLabel, 4, area.Min.Y-ann.textHeight()/2); err != nil {
		return err
	}

	xLabelY := area.Max.Y + tickMarkLength + ann.textHeight() + lineHeight + 4
	if err := ann.drawCentered(xAxisLabel, area.Min.X+area.Dx()/2, xLabelY); err != nil {
		return err
	}

	if !c.config.ShowStatus {
		return nil
	}

	y := xLabelY + lineHeight
	for _, line := range strings.Split(frame.Status, "\n") {
		y += lineHeight
		if err := ann.drawString(line, area.Min.X, y); err != nil {
			return err
		}
	}
	return nil
}

func hline(img *image.RGBA, x0, x1, y int, col color.Color) {
	for x := x0; x < x1; x++ {
		img.Set(x, y, col)
	}
}

func vline(img *image.RGBA, x, y0, y1 int, col color.Color) {
	for y := y0; y < y1; y++ {
		img.Set(x, y, col)
	}
}
