package spectrum

import (
	"errors"
	"testing"
)

func TestNewLayout_SplicesVisibleBands(t *testing.T) {
	opts := Options{
		MinFrequency: 0,
		MaxFrequency: 9,
		MaxAmplitude: 100,
		NumBands:     8,
		VisibleBands: []int{2, 5},
		NoiseFloor:   10,
	}

	bands, err := NewLayout(opts)
	if err != nil {
		t.Fatalf("Failed to create layout: %v", err)
	}

	// Fillers are 0, 1.5, 3, 4.5, 6, 7.5; 2 lands in front of 1.5 and 5 in front of 4.5
	expected := []float64{0, 2, 1.5, 3, 5, 4.5, 6, 7.5}
	if len(bands) != len(expected) {
		t.Fatalf("Expected %d bands, got %d", len(expected), len(bands))
	}
	for i, f := range expected {
		if bands[i].Frequency != f {
			t.Errorf("Band %d: expected frequency %g, got %g", i, f, bands[i].Frequency)
		}
		if bands[i].Amplitude != 10 {
			t.Errorf("Band %d: expected initial amplitude 10, got %g", i, bands[i].Amplitude)
		}
	}
	if !bands[1].Visible || !bands[4].Visible {
		t.Errorf("Expected bands 1 and 4 to be visible")
	}
	if bands[0].Visible || bands[2].Visible {
		t.Errorf("Expected filler bands not to be visible")
	}
}

func TestNewLayout_IgnoresVisibleBandOrder(t *testing.T) {
	opts := Options{
		MaxFrequency: 9,
		MaxAmplitude: 100,
		NumBands:     8,
		VisibleBands: []int{5, 2},
		NoiseFloor:   10,
	}

	bands, err := NewLayout(opts)
	if err != nil {
		t.Fatalf("Failed to create layout: %v", err)
	}

	expected := []float64{0, 2, 1.5, 3, 5, 4.5, 6, 7.5}
	for i, f := range expected {
		if bands[i].Frequency != f {
			t.Errorf("Band %d: expected frequency %g, got %g", i, f, bands[i].Frequency)
		}
	}
}

func TestNewLayout_LengthAndVisibleBands(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "defaults", opts: DefaultOptions()},
		{name: "unsorted visible bands", opts: Options{MaxFrequency: 1000, NumBands: 20, VisibleBands: []int{800, 120, 450}}},
		{name: "visible bands sharing a filler", opts: Options{MaxFrequency: 100, NumBands: 5, VisibleBands: []int{51, 52}}},
		{name: "visible bands outside the range", opts: Options{MinFrequency: 100, MaxFrequency: 200, NumBands: 6, VisibleBands: []int{10, 500}}},
		{name: "visible band on a filler", opts: Options{MaxFrequency: 1000, NumBands: 100, VisibleBands: []int{0, 500}}},
		{name: "single filler", opts: Options{MaxFrequency: 10, NumBands: 3, VisibleBands: []int{0, 7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bands, err := NewLayout(tt.opts)
			if err != nil {
				t.Fatalf("Failed to create layout: %v", err)
			}
			if len(bands) != tt.opts.NumBands {
				t.Fatalf("Expected %d bands, got %d", tt.opts.NumBands, len(bands))
			}

			for _, v := range tt.opts.VisibleBands {
				count := 0
				for _, b := range bands {
					if b.Frequency == float64(v) {
						count++
					}
				}
				if count != 1 {
					t.Errorf("Expected visible frequency %d exactly once, found %d times", v, count)
				}
			}
		})
	}
}

func TestNewLayout_NudgesCollidingFiller(t *testing.T) {
	// 96 fillers over [0, 1000) put one exactly on 500
	opts := DefaultOptions()
	opts.VisibleBands = []int{500}
	opts.NumBands = 97

	bands, err := NewLayout(opts)
	if err != nil {
		t.Fatalf("Failed to create layout: %v", err)
	}

	var visibleAt = -1
	for i, b := range bands {
		if b.Frequency == 500 {
			visibleAt = i
		}
	}
	if visibleAt < 0 || !bands[visibleAt].Visible {
		t.Fatalf("Expected visible band 500 in layout")
	}
	if next := bands[visibleAt+1].Frequency; next <= 500 || next >= 500+1000.0/96 {
		t.Errorf("Expected nudged filler between 500 and the next step, got %g", next)
	}
}

func TestNewLayout_InvalidOptions(t *testing.T) {
	tests := []struct {
		name  string
		field string
		opts  Options
	}{
		{name: "no bands", field: "numBands", opts: Options{MaxFrequency: 10, VisibleBands: []int{1}}},
		{name: "too few bands", field: "numBands", opts: Options{MaxFrequency: 10, NumBands: 2, VisibleBands: []int{1, 2}}},
		{name: "no visible bands", field: "visibleBands", opts: Options{MaxFrequency: 10, NumBands: 2}},
		{name: "empty frequency range", field: "maxFrequency", opts: Options{MinFrequency: 10, MaxFrequency: 10, NumBands: 4, VisibleBands: []int{10}}},
		{name: "inverted amplitude range", field: "maxAmplitude", opts: Options{MaxFrequency: 10, MinAmplitude: 5, NumBands: 4, VisibleBands: []int{1}}},
		{name: "duplicate visible bands", field: "visibleBands", opts: Options{MaxFrequency: 10, NumBands: 4, VisibleBands: []int{1, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLayout(tt.opts)

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Expected error on field %q, got %q", tt.field, cfgErr.Field)
			}
		})
	}
}
