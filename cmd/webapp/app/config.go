package app

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"

	"github.com/roman-kulish/spectrum-analyzer/internal/server"
)

const (
	defaultWidth  = 640
	defaultHeight = 480

	// Smallest image that still leaves room for the chart borders
	minImageSize = 200
)

// Config represents the web service configuration
type Config struct {
	Addr     string
	Width    int
	Height   int
	LogLevel slog.Level
}

func NewConfig() *Config {
	return &Config{
		Addr:     server.DefaultAddr,
		Width:    defaultWidth,
		Height:   defaultHeight,
		LogLevel: slog.LevelInfo,
	}
}

// NewConfigFromArgs parses the command line arguments, without the program name
func NewConfigFromArgs(args []string) (*Config, error) {
	c := NewConfig()

	fs := flag.NewFlagSet("webapp", flag.ContinueOnError)

	var logLevel string
	fs.StringVar(&c.Addr, "addr", c.Addr, "Address to listen on")
	fs.IntVar(&c.Width, "width", c.Width, "Width of the rendered image in pixels")
	fs.IntVar(&c.Height, "height", c.Height, "Height of the rendered image in pixels")
	fs.StringVar(&logLevel, "log-level", c.LogLevel.String(), "Log level. [debug, info, warn, error]")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var err error
	if c.Addr == "" {
		err = errors.New("listen address is required")
	} else if c.Width < minImageSize || c.Height < minImageSize {
		err = fmt.Errorf("image size %dx%d is below %dx%d", c.Width, c.Height, minImageSize, minImageSize)
	} else if e := c.LogLevel.UnmarshalText([]byte(logLevel)); e != nil {
		err = fmt.Errorf("invalid log level: %s", logLevel)
	}

	if err != nil {
		fs.Usage()
		return nil, err
	}
	return c, nil
}
