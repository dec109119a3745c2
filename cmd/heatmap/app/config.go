package app

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/roman-kulish/spectrum-analyzer/internal/render"
)

type Config struct {
	DBPath        string
	SessionID     int64
	OutputFile    string
	Format        render.ImageFormat
	Theme         render.ColorTheme
	TimeZone      *time.Location
	FromFrame     *uint64
	ToFrame       *uint64
	MinAmplitude  *float64
	MaxAmplitude  *float64
	Verbose       bool
	NoAnnotations bool
}

func NewConfig() *Config {
	return &Config{
		Format:   render.ImagePNG,
		Theme:    render.EnhancedTheme,
		TimeZone: time.Local,
	}
}

// NewConfigFromArgs parses the command line arguments, without the program name
func NewConfigFromArgs(args []string) (*Config, error) {
	c := NewConfig()

	fs := flag.NewFlagSet("heatmap", flag.ContinueOnError)

	var imageFormat, theme, timeZone string
	var fromFrame, toFrame uint64
	var minAmplitude, maxAmplitude float64
	fs.StringVar(&c.DBPath, "db", "", "Path to the database file")
	fs.Int64Var(&c.SessionID, "s", 1, "Session ID")
	fs.StringVar(&c.OutputFile, "o", "", "Path to the output file")
	fs.StringVar(&imageFormat, "f", string(render.ImagePNG), "Output image format. [png, jpeg]")
	fs.StringVar(&theme, "theme", string(render.EnhancedTheme), "Color theme. [classic, grayscale, jungle, thermal, marine, enhanced]")
	fs.StringVar(&timeZone, "tz", "Local", "Time zone of the time scale")
	fs.Uint64Var(&fromFrame, "from", 0, "First frame to render")
	fs.Uint64Var(&toFrame, "to", 0, "Last frame to render")
	fs.Float64Var(&minAmplitude, "min-amplitude", 0, "Define a manual minimum of the color scale")
	fs.Float64Var(&maxAmplitude, "max-amplitude", 0, "Define a manual maximum of the color scale")
	fs.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	fs.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disabled annotations such as time and frequency scales")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "from":
			c.FromFrame = &fromFrame
		case "to":
			c.ToFrame = &toFrame
		case "min-amplitude":
			c.MinAmplitude = &minAmplitude
		case "max-amplitude":
			c.MaxAmplitude = &maxAmplitude
		}
	})

	if err := c.parse(imageFormat, theme, timeZone); err != nil {
		fs.Usage()
		return nil, err
	}

	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}

func (c *Config) parse(imageFormat, theme, timeZone string) error {
	if c.DBPath == "" {
		return errors.New("db path is required")
	}
	if c.SessionID <= 0 {
		return errors.New("session id is required")
	}
	if c.OutputFile == "" {
		return errors.New("output file is required")
	}

	var err error
	if c.Format, err = render.ParseImageFormat(imageFormat); err != nil {
		return err
	}
	if c.Theme, err = render.ParseTheme(theme); err != nil {
		return err
	}
	if c.TimeZone, err = time.LoadLocation(timeZone); err != nil {
		return fmt.Errorf("invalid time zone: %s", timeZone)
	}

	if c.MinAmplitude != nil && c.MaxAmplitude != nil && *c.MinAmplitude >= *c.MaxAmplitude {
		return errors.New("min amplitude must be below max amplitude")
	}
	if c.FromFrame != nil && c.ToFrame != nil && *c.FromFrame > *c.ToFrame {
		return errors.New("first frame must not be after the last frame")
	}
	return nil
}
