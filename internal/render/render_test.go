package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/roman-kulish/spectrum-analyzer/internal/spectrum"
)

func newFrame(t *testing.T, opts spectrum.Options, amplitude float64) spectrum.Frame {
	t.Helper()

	m, err := spectrum.New(opts, spectrum.WithRand(rand.New(rand.NewPCG(1, 2))))
	if err != nil {
		t.Fatalf("Failed to create model: %v", err)
	}
	if err = m.SetAmplitude(amplitude); err != nil {
		t.Fatalf("Failed to set amplitude: %v", err)
	}
	return m.Snapshot()
}

func sameColor(a, b color.Color) bool {
	r1, g1, b1, a1 := a.RGBA()
	r2, g2, b2, a2 := b.RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}

func findColor(img image.Image, col color.Color) bool {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if sameColor(img.At(x, y), col) {
				return true
			}
		}
	}
	return false
}

func TestBarChart_Render(t *testing.T) {
	opts := spectrum.DefaultOptions()

	tests := []struct {
		name       string
		amplitude  float64
		wantActive bool
	}{
		{"selected bar is active", 900, true},
		{"selected bar is idle", 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chart := NewBarChart(opts, ChartConfig{ShowStatus: true})
			img, err := chart.Render(newFrame(t, opts, tt.amplitude))
			if err != nil {
				t.Fatalf("Failed to render: %v", err)
			}

			if img.Bounds().Dx() != defaultWidth || img.Bounds().Dy() != defaultHeight {
				t.Errorf("Expected %dx%d image, got %v", defaultWidth, defaultHeight, img.Bounds())
			}
			if !findColor(img, IdleColor) {
				t.Errorf("Expected idle bars to be drawn")
			}
			if got := findColor(img, ActiveColor); got != tt.wantActive {
				t.Errorf("Expected active color present = %v, got %v", tt.wantActive, got)
			}
		})
	}
}

func TestBarChart_CustomSize(t *testing.T) {
	opts := spectrum.DefaultOptions()
	chart := NewBarChart(opts, ChartConfig{Width: 320, Height: 240})

	img, err := chart.Render(newFrame(t, opts, 500))
	if err != nil {
		t.Fatalf("Failed to render: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 320, 240) {
		t.Errorf("Expected 320x240 image, got %v", img.Bounds())
	}
}

func TestBarChart_TooSmall(t *testing.T) {
	opts := spectrum.DefaultOptions()
	chart := NewBarChart(opts, ChartConfig{Width: 10, Height: 10})

	if _, err := chart.Render(newFrame(t, opts, 500)); err == nil {
		t.Fatal("Expected an error for an image smaller than its borders")
	}
}

func TestEncode(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))

	for _, format := range []ImageFormat{ImagePNG, ImageJPEG} {
		var buf bytes.Buffer
		if err := Encode(&buf, img, format); err != nil {
			t.Errorf("Failed to encode %s: %v", format, err)
		}
		if _, decoded, err := image.Decode(&buf); err != nil || decoded != string(format) {
			t.Errorf("Expected decodable %s, got %q (%v)", format, decoded, err)
		}
	}

	if err := Encode(&bytes.Buffer{}, img, "bmp"); err == nil {
		t.Errorf("Expected an error for an unknown format")
	}
}

func TestParseImageFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ImageFormat
		wantErr bool
	}{
		{"png", ImagePNG, false},
		{"PNG", ImagePNG, false},
		{"jpg", ImageJPEG, false},
		{"jpeg", ImageJPEG, false},
		{"gif", "", true},
	}

	for _, tt := range tests {
		got, err := ParseImageFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseImageFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestEncodeGIF(t *testing.T) {
	opts := spectrum.DefaultOptions()
	chart := NewBarChart(opts, ChartConfig{Width: 200, Height: 150})

	var images []image.Image
	for _, amp := range []float64{100, 900, 500} {
		img, err := chart.Render(newFrame(t, opts, amp))
		if err != nil {
			t.Fatalf("Failed to render: %v", err)
		}
		images = append(images, img)
	}

	var buf bytes.Buffer
	if err := EncodeGIF(&buf, images, 50*time.Millisecond); err != nil {
		t.Fatalf("Failed to encode animation: %v", err)
	}

	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("Failed to decode animation: %v", err)
	}
	if len(anim.Image) != 3 {
		t.Fatalf("Expected 3 frames, got %d", len(anim.Image))
	}
	for i, d := range anim.Delay {
		if d != 5 {
			t.Errorf("Frame %d: expected delay of 5cs, got %d", i, d)
		}
	}
	if !findColor(anim.Image[1], ActiveColor) {
		t.Errorf("Expected the active bar color to survive quantization")
	}

	if err = EncodeGIF(&buf, nil, time.Second); !errors.Is(err, ErrNoFrames) {
		t.Errorf("Expected ErrNoFrames, got %v", err)
	}
}

func TestColorMapper(t *testing.T) {
	bounds := AmplitudeBounds{Min: 0, Max: 100}

	for _, theme := range themes {
		t.Run(string(theme), func(t *testing.T) {
			cm := NewColorMapper(theme, bounds)
			if cm.Size() != DefaultColorMapSize {
				t.Errorf("Expected %d colors, got %d", DefaultColorMapSize, cm.Size())
			}

			low, high, below, above := 0.0, 100.0, -50.0, 500.0
			if !sameColor(cm.Color(&below), cm.Color(&low)) {
				t.Errorf("Expected values below the bounds to clamp to the lowest color")
			}
			if !sameColor(cm.Color(&above), cm.Color(&high)) {
				t.Errorf("Expected values above the bounds to clamp to the highest color")
			}
			if sameColor(cm.Color(&low), cm.Color(&high)) {
				t.Errorf("Expected distinct colors at both ends of the scale")
			}
			if !sameColor(cm.Color(nil), NoDataColor) {
				t.Errorf("Expected NoDataColor for a missing sample")
			}
		})
	}
}

func TestParseTheme(t *testing.T) {
	if theme, err := ParseTheme("Thermal"); err != nil || theme != ThermalTheme {
		t.Errorf("Expected thermal theme, got %q (%v)", theme, err)
	}
	if _, err := ParseTheme("rainbow"); err == nil {
		t.Errorf("Expected an error for an unknown theme")
	}
}

func ptr(v float64) *float64 {
	return &v
}

func TestWaterfall_Render(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	w := Waterfall{
		Frequencies: []float64{100, 200, 300},
		Visible:     []bool{false, true, false},
	}
	for i := range 10 {
		w.Append(start.Add(time.Duration(i)*time.Second), []*float64{ptr(10), ptr(float64(i * 10)), nil})
	}

	if b := w.Bounds(); b.Min != 0 || b.Max != 90 {
		t.Errorf("Expected bounds [0, 90], got %+v", b)
	}
	if from, to := w.TimeRange(); !from.Equal(start) || !to.Equal(start.Add(9*time.Second)) {
		t.Errorf("Unexpected time range %s - %s", from, to)
	}

	t.Run("annotated", func(t *testing.T) {
		img, err := NewWaterfallRenderer(WaterfallConfig{Location: time.UTC}).Render(&w)
		if err != nil {
			t.Fatalf("Failed to render: %v", err)
		}
		wantW := defaultWaterfallLeft + 3*defaultCellWidth + defaultWaterfallRight
		wantH := defaultWaterfallTop + 10*defaultCellHeight + defaultWaterfallBottom
		if img.Bounds().Dx() != wantW || img.Bounds().Dy() != wantH {
			t.Errorf("Expected %dx%d image, got %v", wantW, wantH, img.Bounds())
		}
	})

	t.Run("plain", func(t *testing.T) {
		img, err := NewWaterfallRenderer(WaterfallConfig{NoAnnotations: true, CellWidth: 1, CellHeight: 1}).Render(&w)
		if err != nil {
			t.Fatalf("Failed to render: %v", err)
		}
		if img.Bounds() != image.Rect(0, 0, 3, 10) {
			t.Fatalf("Expected 3x10 image, got %v", img.Bounds())
		}
		if !sameColor(img.At(2, 0), NoDataColor) {
			t.Errorf("Expected missing samples to use NoDataColor")
		}

		var buf bytes.Buffer
		if err = png.Encode(&buf, img); err != nil {
			t.Errorf("Failed to encode: %v", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := NewWaterfallRenderer(WaterfallConfig{}).Render(&Waterfall{}); !errors.Is(err, ErrEmptyWaterfall) {
			t.Errorf("Expected ErrEmptyWaterfall, got %v", err)
		}
	})
}

func TestFormatFrequency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0 Hz"},
		{550, "550 Hz"},
		{1500, "1.5 kHz"},
	}

	for _, tt := range tests {
		if got := formatFrequency(tt.in); got != tt.want {
			t.Errorf("formatFrequency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
