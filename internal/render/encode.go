package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"time"
)

// ImageFormat is a still image encoding
type ImageFormat string

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"

	jpegQuality = 98
)

// ErrNoFrames is returned when encoding an animation without frames
var ErrNoFrames = errors.New("animation has no frames")

// ParseImageFormat returns the format with the given case-insensitive name
func ParseImageFormat(name string) (ImageFormat, error) {
	switch f := ImageFormat(strings.ToLower(name)); f {
	case ImagePNG, ImageJPEG:
		return f, nil
	case "jpg":
		return ImageJPEG, nil
	}
	return "", fmt.Errorf("invalid image format: %s", name)
}

// Encode writes img in the given format
func Encode(w io.Writer, img image.Image, format ImageFormat) error {
	switch format {
	case ImagePNG:
		return png.Encode(w, img)
	case ImageJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	}
	return fmt.Errorf("invalid image format: %s", format)
}

// EncodePNG writes img as a PNG
func EncodePNG(w io.Writer, img image.Image) error {
	return Encode(w, img, ImagePNG)
}

// gifPalette is the web-safe palette with the bar colors appended, so bars
// keep their exact color after quantization.
var gifPalette = func() color.Palette {
	p := make(color.Palette, 0, len(palette.WebSafe)+2)
	p = append(p, palette.WebSafe...)
	return append(p, IdleColor, ActiveColor)
}()

// EncodeGIF writes the images as a looping animation with the given delay
// between frames. The delay is rounded to GIF's 10ms resolution.
func EncodeGIF(w io.Writer, images []image.Image, delay time.Duration) error {
	if len(images) == 0 {
		return ErrNoFrames
	}

	centis := max(1, int(delay/(10*time.Millisecond)))
	anim := gif.GIF{
		Image: make([]*image.Paletted, 0, len(images)),
		Delay: make([]int, 0, len(images)),
	}

	for _, img := range images {
		paletted := image.NewPaletted(img.Bounds(), gifPalette)
		draw.Draw(paletted, paletted.Rect, img, img.Bounds().Min, draw.Src)

		anim.Image = append(anim.Image, paletted)
		anim.Delay = append(anim.Delay, centis)
	}

	if err := gif.EncodeAll(w, &anim); err != nil {
		return fmt.Errorf("encoding animation: %w", err)
	}
	return nil
}
