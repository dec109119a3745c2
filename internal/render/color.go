package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorTheme names a predefined amplitude-to-color scheme used by waterfalls
type ColorTheme string

const (
	ClassicTheme   ColorTheme = "classic"   // Blue to red transition
	GrayscaleTheme ColorTheme = "grayscale" // Black to white transition
	JungleTheme    ColorTheme = "jungle"    // Dark green to yellow transition
	ThermalTheme   ColorTheme = "thermal"   // Black to red to yellow to white
	MarineTheme    ColorTheme = "marine"    // Deep blue to cyan to white
	EnhancedTheme  ColorTheme = "enhanced"  // Multi-stage map with more contrast at low amplitudes

	DefaultColorMapSize = 256
)

var themes = []ColorTheme{ClassicTheme, GrayscaleTheme, JungleTheme, ThermalTheme, MarineTheme, EnhancedTheme}

// NoDataColor fills waterfall cells without a sample
var NoDataColor color.Color = color.Black

// ParseTheme returns the theme with the given case-insensitive name
func ParseTheme(name string) (ColorTheme, error) {
	theme := ColorTheme(strings.ToLower(name))
	for _, t := range themes {
		if t == theme {
			return theme, nil
		}
	}
	return "", fmt.Errorf("unknown color theme: %s", name)
}

// AmplitudeBounds is the amplitude range mapped onto the color scale
type AmplitudeBounds struct {
	Min, Max float64
}

// Span returns the width of the bounds, never less than one
func (b AmplitudeBounds) Span() float64 {
	return max(b.Max-b.Min, 1)
}

// ColorMapper maps amplitudes to colors through a pre-computed lookup table
type ColorMapper struct {
	colorMap []color.Color
	theme    ColorTheme
	bounds   AmplitudeBounds
}

// NewColorMapper creates a color mapper of DefaultColorMapSize colors
func NewColorMapper(theme ColorTheme, bounds AmplitudeBounds) *ColorMapper {
	return NewColorMapperWithSize(theme, bounds, DefaultColorMapSize)
}

// NewColorMapperWithSize creates a color mapper with the given number of
// colors. Sizes below two fall back to the default.
func NewColorMapperWithSize(theme ColorTheme, bounds AmplitudeBounds, size int) *ColorMapper {
	if size < 2 {
		size = DefaultColorMapSize
	}

	fn := themeFunc(theme)
	colorMap := make([]color.Color, size)
	for i := range colorMap {
		colorMap[i] = fn(float64(i) / float64(size-1))
	}

	return &ColorMapper{
		colorMap: colorMap,
		theme:    theme,
		bounds:   bounds,
	}
}

// Color returns the color of the amplitude. A nil amplitude is NoDataColor.
func (cm *ColorMapper) Color(amplitude *float64) color.Color {
	if amplitude == nil || math.IsNaN(*amplitude) {
		return NoDataColor
	}

	normalized := (*amplitude - cm.bounds.Min) / cm.bounds.Span()
	index := int(math.Round(normalized * float64(len(cm.colorMap)-1)))
	index = min(max(index, 0), len(cm.colorMap)-1)

	return cm.colorMap[index]
}

// Theme returns the theme of the mapper
func (cm *ColorMapper) Theme() ColorTheme {
	return cm.theme
}

// Size returns the number of colors in the lookup table
func (cm *ColorMapper) Size() int {
	return len(cm.colorMap)
}

func hsv(h, s, v float64) color.Color {
	c := colorful.Hsv(math.Mod(h+360, 360), clamp01(s), clamp01(v))
	return c.Clamped()
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}

func themeFunc(theme ColorTheme) func(float64) color.Color {
	switch theme {
	case ClassicTheme:
		return func(p float64) color.Color {
			return hsv(240-p*240, 0.9+p*0.1, math.Pow(p, 0.7))
		}

	case GrayscaleTheme:
		return func(p float64) color.Color {
			v := uint8(math.Pow(p, 0.7) * 255)
			return color.RGBA{R: v, G: v, B: v, A: 0xff}
		}

	case JungleTheme:
		return func(p float64) color.Color {
			return hsv(120-p*60, 1, 0.3+math.Pow(p, 0.6)*0.7)
		}

	case ThermalTheme:
		return func(p float64) color.Color {
			switch {
			case p < 1.0/3:
				return color.RGBA{R: uint8(p * 3 * 255), A: 0xff}
			case p < 2.0/3:
				return color.RGBA{R: 0xff, G: uint8((p - 1.0/3) * 3 * 255), A: 0xff}
			}
			return color.RGBA{R: 0xff, G: 0xff, B: uint8(clamp01((p-2.0/3)*3) * 255), A: 0xff}
		}

	case MarineTheme:
		return func(p float64) color.Color {
			return hsv(240-p*60, 1-p*0.8, 0.3+math.Pow(p, 0.6)*0.7)
		}

	default:
		return enhanced
	}
}

// enhanced runs black to blue to cyan to yellow to red
func enhanced(p float64) color.Color {
	e := math.Pow(p, 0.7)

	switch {
	case p < 0.25:
		return hsv(240, 1, e*4)
	case p < 0.5:
		return hsv(240-(p-0.25)*240, 1, e*1.5)
	case p < 0.75:
		return hsv(180-(p-0.5)*4*120, 1, e*1.5)
	default:
		return hsv(60-(p-0.75)*4*60, 1, 1)
	}
}
