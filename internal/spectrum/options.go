package spectrum

import (
	"slices"
)

const (
	DefaultMinFrequency     = 0
	DefaultMaxFrequency     = 1000
	DefaultMinAmplitude     = 0
	DefaultMaxAmplitude     = 1000
	DefaultNumBands         = 100
	DefaultNoiseFloor       = 200
	DefaultTransmitStrength = 800
)

var defaultVisibleBands = []int{200, 400, 550, 800}

// Options is the configuration bundle a spectrum is constructed from. It is
// accepted as a JSON request body and as a section of the YAML configuration.
type Options struct {
	MinFrequency     int   `json:"minFrequency" yaml:"minFrequency"`         // Lower bound of the filler frequencies in Hz
	MaxFrequency     int   `json:"maxFrequency" yaml:"maxFrequency"`         // Upper bound (exclusive) of the filler frequencies in Hz
	MinAmplitude     int   `json:"minAmplitude" yaml:"minAmplitude"`         // Lower bound of the plotted amplitude range
	MaxAmplitude     int   `json:"maxAmplitude" yaml:"maxAmplitude"`         // Upper bound of the plotted amplitude range
	NumBands         int   `json:"numBands" yaml:"numBands"`                 // Total number of bands, visible bands included
	VisibleBands     []int `json:"visibleBands" yaml:"visibleBands"`         // Monitored frequencies in Hz, selectable by the user
	NoiseFloor       int   `json:"noiseFloor" yaml:"noiseFloor"`             // Initial amplitude and propagation floor
	TransmitStrength int   `json:"transmitStrength" yaml:"transmitStrength"` // Threshold at which the selected bar becomes active
}

// DefaultOptions returns the defaults of the options form.
func DefaultOptions() Options {
	return Options{
		MinFrequency:     DefaultMinFrequency,
		MaxFrequency:     DefaultMaxFrequency,
		MinAmplitude:     DefaultMinAmplitude,
		MaxAmplitude:     DefaultMaxAmplitude,
		NumBands:         DefaultNumBands,
		VisibleBands:     slices.Clone(defaultVisibleBands),
		NoiseFloor:       DefaultNoiseFloor,
		TransmitStrength: DefaultTransmitStrength,
	}
}

// Validate checks the options for values the band layout cannot be built from.
func (o *Options) Validate() error {
	switch {
	case o.NumBands <= 0:
		return newConfigError("numBands", "must be positive, %d given", o.NumBands)
	case len(o.VisibleBands) == 0:
		return newConfigError("visibleBands", "at least one band is required")
	case o.NumBands <= len(o.VisibleBands):
		return newConfigError("numBands", "must be greater than the number of visible bands (%d), %d given",
			len(o.VisibleBands), o.NumBands)
	case o.MaxFrequency <= o.MinFrequency:
		return newConfigError("maxFrequency", "must be greater than minFrequency (%d), %d given",
			o.MinFrequency, o.MaxFrequency)
	case o.MaxAmplitude < o.MinAmplitude:
		return newConfigError("maxAmplitude", "must not be less than minAmplitude (%d), %d given",
			o.MinAmplitude, o.MaxAmplitude)
	}

	seen := make(map[int]struct{}, len(o.VisibleBands))
	for _, f := range o.VisibleBands {
		if _, ok := seen[f]; ok {
			return newConfigError("visibleBands", "duplicate frequency %d", f)
		}
		seen[f] = struct{}{}
	}

	return nil
}

// Clone returns a deep copy of the options.
func (o Options) Clone() Options {
	o.VisibleBands = slices.Clone(o.VisibleBands)
	return o
}
