package spectrum

import (
	"math"
	"slices"
)

// Band is a single entry of the band layout.
type Band struct {
	Frequency float64 `json:"frequency"` // Frequency in Hz, fixed at construction
	Amplitude float64 `json:"amplitude"` // Stored amplitude, mutated by input and propagation
	Visible   bool    `json:"visible"`   // Whether the frequency was requested by configuration
}

// NewLayout builds the band sequence for the options. Filler frequencies are
// spread evenly over [MinFrequency, MaxFrequency) and every visible frequency
// is spliced in front of its nearest filler, so the result always holds
// NumBands bands with each visible frequency present verbatim. Placement
// depends only on the nearest filler, not on the order of VisibleBands:
// [800, 200] yields the same layout as [200, 800]. Visible frequencies
// sharing a filler keep their configured order.
func NewLayout(opts Options) ([]Band, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	fillers := fillerFrequencies(float64(opts.MinFrequency), float64(opts.MaxFrequency),
		opts.NumBands-len(opts.VisibleBands))

	type splice struct {
		at   int
		freq float64
	}

	splices := make([]splice, len(opts.VisibleBands))
	for i, f := range opts.VisibleBands {
		freq := float64(f)
		at := nearestIndex(fillers, freq)
		if fillers[at] == freq {
			fillers[at] = nudge(fillers, at, float64(opts.MaxFrequency))
		}
		splices[i] = splice{at: at, freq: freq}
	}

	// Stable, so visible bands sharing a filler keep their configured order.
	slices.SortStableFunc(splices, func(a, b splice) int {
		return a.at - b.at
	})

	noiseFloor := float64(opts.NoiseFloor)
	bands := make([]Band, 0, opts.NumBands)

	next := 0
	for i, f := range fillers {
		for ; next < len(splices) && splices[next].at == i; next++ {
			bands = append(bands, Band{Frequency: splices[next].freq, Amplitude: noiseFloor, Visible: true})
		}
		bands = append(bands, Band{Frequency: f, Amplitude: noiseFloor})
	}

	seen := make(map[float64]struct{}, len(bands))
	for _, b := range bands {
		if _, ok := seen[b.Frequency]; ok {
			return nil, newConfigError("visibleBands", "frequency %g collides with the band layout", b.Frequency)
		}
		seen[b.Frequency] = struct{}{}
	}

	return bands, nil
}

func fillerFrequencies(lo, hi float64, n int) []float64 {
	freqs := make([]float64, n)
	for i := range freqs {
		freqs[i] = lo + float64(i)*(hi-lo)/float64(n)
	}
	return freqs
}

// nearestIndex returns the index of the value closest to f, the lowest one on ties.
func nearestIndex(values []float64, f float64) int {
	best, bestDiff := 0, math.Inf(1)
	for i, v := range values {
		if diff := math.Abs(v - f); diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return best
}

// nudge moves a filler that collides with a visible frequency halfway to its
// upper neighbor.
func nudge(fillers []float64, i int, upper float64) float64 {
	if i+1 < len(fillers) {
		upper = fillers[i+1]
	}
	return fillers[i] + (upper-fillers[i])/2
}
