package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"time"
)

const (
	defaultCellWidth  = 4
	defaultCellHeight = 2

	// Minimum vertical distance between time labels in pixels
	pixelsPerTimeLabel = 40

	defaultTimeFormat     = "15:04:05"
	defaultDatetimeFormat = time.DateTime

	defaultWaterfallTop    = 40
	defaultWaterfallLeft   = 80
	defaultWaterfallBottom = 40
	defaultWaterfallRight  = 40
)

// ErrEmptyWaterfall is returned when rendering a waterfall without rows or bands
var ErrEmptyWaterfall = errors.New("waterfall has no data")

// WaterfallRow is one recorded frame, with a cell per band. A nil cell has
// no sample.
type WaterfallRow struct {
	Timestamp time.Time
	Cells     []*float64
}

// Waterfall is a recorded session laid out with time on the vertical axis
// and bands on the horizontal axis.
type Waterfall struct {
	Frequencies []float64 // Band frequencies in layout order
	Visible     []bool    // Visible bands are labeled on the frequency scale
	Rows        []WaterfallRow
}

// Append adds a row, growing it to the number of bands
func (w *Waterfall) Append(ts time.Time, cells []*float64) {
	if n := len(w.Frequencies); len(cells) < n {
		cells = append(cells, make([]*float64, n-len(cells))...)
	}
	w.Rows = append(w.Rows, WaterfallRow{Timestamp: ts, Cells: cells[:len(w.Frequencies)]})
}

// Bounds returns the smallest and largest sampled amplitude
func (w *Waterfall) Bounds() AmplitudeBounds {
	bounds := AmplitudeBounds{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, row := range w.Rows {
		for _, cell := range row.Cells {
			if cell == nil {
				continue
			}
			bounds.Min = min(bounds.Min, *cell)
			bounds.Max = max(bounds.Max, *cell)
		}
	}

	if math.IsInf(bounds.Min, 1) {
		return AmplitudeBounds{}
	}
	return bounds
}

// TimeRange returns the timestamps of the first and last rows
func (w *Waterfall) TimeRange() (time.Time, time.Time) {
	if len(w.Rows) == 0 {
		return time.Time{}, time.Time{}
	}
	return w.Rows[0].Timestamp, w.Rows[len(w.Rows)-1].Timestamp
}

// WaterfallConfig holds all configuration options for waterfall rendering
type WaterfallConfig struct {
	CellWidth, CellHeight int // Size of a single band sample in pixels

	TimeFormat     string         // Format string for time labels (e.g. "15:04:05")
	DatetimeFormat string         // Format string for the info bar
	Location       *time.Location // Timezone for time display

	FontSize      float64
	Theme         ColorTheme
	Bounds        *AmplitudeBounds // Fixed color scale, derived from the data when nil
	NoAnnotations bool

	BorderConfig BorderConfig
}

// WaterfallRenderer draws recorded sessions as heatmaps
type WaterfallRenderer struct {
	config WaterfallConfig
}

// NewWaterfallRenderer creates a waterfall renderer, applying defaults to
// zero config values.
func NewWaterfallRenderer(config WaterfallConfig) *WaterfallRenderer {
	if config.CellWidth <= 0 {
		config.CellWidth = defaultCellWidth
	}
	if config.CellHeight <= 0 {
		config.CellHeight = defaultCellHeight
	}
	if config.TimeFormat == "" {
		config.TimeFormat = defaultTimeFormat
	}
	if config.DatetimeFormat == "" {
		config.DatetimeFormat = defaultDatetimeFormat
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.FontSize == 0 {
		config.FontSize = defaultFontSize
	}
	if config.Theme == "" {
		config.Theme = EnhancedTheme
	}

	if config.NoAnnotations {
		config.BorderConfig = BorderConfig{}
	} else {
		if config.BorderConfig.Top == 0 {
			config.BorderConfig.Top = defaultWaterfallTop
		}
		if config.BorderConfig.Left == 0 {
			config.BorderConfig.Left = defaultWaterfallLeft
		}
		if config.BorderConfig.Bottom == 0 {
			config.BorderConfig.Bottom = defaultWaterfallBottom
		}
		if config.BorderConfig.Right == 0 {
			config.BorderConfig.Right = defaultWaterfallRight
		}
	}

	return &WaterfallRenderer{config: config}
}

// Render draws the waterfall and, unless disabled, its scales and info bar
func (r *WaterfallRenderer) Render(w *Waterfall) (*image.RGBA, error) {
	if len(w.Rows) == 0 || len(w.Frequencies) == 0 {
		return nil, ErrEmptyWaterfall
	}

	b := r.config.BorderConfig
	area := image.Rect(b.Left, b.Top,
		b.Left+len(w.Frequencies)*r.config.CellWidth,
		b.Top+len(w.Rows)*r.config.CellHeight)

	img := image.NewRGBA(image.Rect(0, 0, area.Max.X+b.Right, area.Max.Y+b.Bottom))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	bounds := w.Bounds()
	if r.config.Bounds != nil {
		bounds = *r.config.Bounds
	}
	mapper := NewColorMapper(r.config.Theme, bounds)

	for y, row := range w.Rows {
		for x, cell := range row.Cells {
			cellRect := image.Rect(
				area.Min.X+x*r.config.CellWidth, area.Min.Y+y*r.config.CellHeight,
				area.Min.X+(x+1)*r.config.CellWidth, area.Min.Y+(y+1)*r.config.CellHeight)
			draw.Draw(img, cellRect, image.NewUniform(mapper.Color(cell)), image.Point{}, draw.Src)
		}
	}

	if r.config.NoAnnotations {
		return img, nil
	}

	ann, err := newAnnotator(r.config.FontSize, image.Black)
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}
	defer ann.Close()
	ann.bind(img)

	if err = r.drawFrequencyScale(img, area, ann, w); err != nil {
		return nil, fmt.Errorf("drawing frequency scale: %w", err)
	}
	if err = r.drawTimeScale(img, area, ann, w); err != nil {
		return nil, fmt.Errorf("drawing time scale: %w", err)
	}
	if err = r.drawInfoBar(img, area, ann, w, bounds); err != nil {
		return nil, fmt.Errorf("drawing info bar: %w", err)
	}

	return img, nil
}

func (r *WaterfallRenderer) drawFrequencyScale(img *image.RGBA, area image.Rectangle, ann *annotator, w *Waterfall) error {
	textY := area.Min.Y - tickMarkLength - ann.textHeight()/2

	for i, freq := range w.Frequencies {
		if i >= len(w.Visible) || !w.Visible[i] {
			continue
		}

		x := area.Min.X + i*r.config.CellWidth + r.config.CellWidth/2
		vline(img, x, area.Min.Y-tickMarkLength, area.Min.Y, color.Black)

		if err := ann.drawCentered(formatFrequency(freq), x, textY); err != nil {
			return err
		}
	}
	return nil
}

func (r *WaterfallRenderer) drawTimeScale(img *image.RGBA, area image.Rectangle, ann *annotator, w *Waterfall) error {
	every := max(1, int(math.Ceil(float64(pixelsPerTimeLabel)/float64(r.config.CellHeight))))
	half := ann.textHeight() / 2

	for i := 0; i < len(w.Rows); i += every {
		y := area.Min.Y + i*r.config.CellHeight
		hline(img, area.Min.X-tickMarkLength, area.Min.X, y, color.Black)

		label := w.Rows[i].Timestamp.In(r.config.Location).Format(r.config.TimeFormat)
		x := area.Min.X - tickMarkLength - 3 - ann.textWidth(label)
		if err := ann.drawString(label, max(0, x), y+half/2); err != nil {
			return err
		}
	}
	return nil
}

func (r *WaterfallRenderer) drawInfoBar(img *image.RGBA, area image.Rectangle, ann *annotator, w *Waterfall, bounds AmplitudeBounds) error {
	start, end := w.TimeRange()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Freq: %s - %s", formatFrequency(w.Frequencies[0]), formatFrequency(w.Frequencies[len(w.Frequencies)-1]))
	fmt.Fprintf(&sb, "; Time: %s - %s",
		start.In(r.config.Location).Format(r.config.DatetimeFormat),
		end.In(r.config.Location).Format(r.config.DatetimeFormat))
	fmt.Fprintf(&sb, "; Amplitude: %s - %s", formatAmplitude(bounds.Min), formatAmplitude(bounds.Max))

	textY := area.Max.Y + (r.config.BorderConfig.Bottom+ann.textHeight())/2
	return ann.drawString(sb.String(), area.Min.X, textY)
}
