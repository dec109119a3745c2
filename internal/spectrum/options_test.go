package spectrum

import (
	"encoding/json"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if err := opts.Validate(); err != nil {
		t.Fatalf("Expected default options to be valid: %v", err)
	}

	opts.VisibleBands[0] = 1
	if DefaultOptions().VisibleBands[0] != 200 {
		t.Errorf("Expected defaults not to share visible bands with callers")
	}
}

func TestOptions_JSONKeys(t *testing.T) {
	body := `{"minFrequency": 100, "maxFrequency": 2000, "minAmplitude": 0, "maxAmplitude": 500,
		"numBands": 50, "visibleBands": [300, 900], "noiseFloor": 20, "transmitStrength": 250}`

	var opts Options
	if err := json.Unmarshal([]byte(body), &opts); err != nil {
		t.Fatalf("Failed to decode options: %v", err)
	}

	want := Options{
		MinFrequency:     100,
		MaxFrequency:     2000,
		MaxAmplitude:     500,
		NumBands:         50,
		VisibleBands:     []int{300, 900},
		NoiseFloor:       20,
		TransmitStrength: 250,
	}
	if opts.MinFrequency != want.MinFrequency || opts.MaxFrequency != want.MaxFrequency ||
		opts.MaxAmplitude != want.MaxAmplitude || opts.NumBands != want.NumBands ||
		opts.NoiseFloor != want.NoiseFloor || opts.TransmitStrength != want.TransmitStrength {
		t.Errorf("Expected %+v, got %+v", want, opts)
	}
	if len(opts.VisibleBands) != 2 || opts.VisibleBands[0] != 300 || opts.VisibleBands[1] != 900 {
		t.Errorf("Unexpected visible bands %v", opts.VisibleBands)
	}
}
