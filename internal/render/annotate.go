package render

import (
	"fmt"
	"image"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	dpi             = 72.0
	defaultFontSize = 12.0
	tickMarkLength  = 5
)

var parseFont = sync.OnceValues(func() (*truetype.Font, error) {
	return freetype.ParseFont(goregular.TTF)
})

// annotator draws text on an image with a single font face
type annotator struct {
	context  *freetype.Context
	fontFace font.Face
}

func newAnnotator(size float64, src image.Image) (*annotator, error) {
	parsedFont, err := parseFont()
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(size)
	ctx.SetHinting(font.HintingFull)
	ctx.SetSrc(src)

	return &annotator{
		context: ctx,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    size,
			DPI:     dpi,
			Hinting: font.HintingFull,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) bind(img *image.RGBA) {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)
}

// textHeight returns the ascent plus descent of the face in pixels
func (a *annotator) textHeight() int {
	metrics := a.fontFace.Metrics()
	return (metrics.Ascent + metrics.Descent).Round()
}

func (a *annotator) textWidth(s string) int {
	return font.MeasureString(a.fontFace, s).Round()
}

// drawString draws s with its baseline at y
func (a *annotator) drawString(s string, x, y int) error {
	if _, err := a.context.DrawString(s, freetype.Pt(x, y)); err != nil {
		return fmt.Errorf("drawing %q: %w", s, err)
	}
	return nil
}

// drawCentered draws s horizontally centered on cx with its baseline at y
func (a *annotator) drawCentered(s string, cx, y int) error {
	return a.drawString(s, cx-a.textWidth(s)/2, y)
}

// formatFrequency renders a frequency with an SI prefix, e.g. "1.5 kHz"
func formatFrequency(freq float64) string {
	value, prefix := humanize.ComputeSI(freq)
	return humanize.FtoaWithDigits(value, 2) + " " + prefix + "Hz"
}

// formatAmplitude renders an amplitude tick label
func formatAmplitude(v float64) string {
	return humanize.FtoaWithDigits(v, 1)
}
