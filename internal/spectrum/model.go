package spectrum

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"sync"
)

const (
	// PropagationDistance is how many neighbors on each side follow the selected band
	PropagationDistance = 4

	// WiggleRatio is the share of bands wiggled on every tick
	WiggleRatio = 0.1

	// WiggleAmplitude is the peak wiggle added to a displayed height
	WiggleAmplitude = 10.0

	// WigglePeriod is the period of the wiggle sine wave in frames
	WigglePeriod = 100.0
)

// DefaultFalloff is the propagation falloff table indexed by distance. The
// zeroth entry is unused, and so is the last one with the default distance.
var DefaultFalloff = []float64{0, 0.9, 0.95, 0.9, 0.8, 0.6}

const (
	// RejectInvalid keeps the prior amplitude when text input does not parse
	RejectInvalid InvalidInputPolicy = iota
	// ResetToZero sets the selected amplitude to zero when text input does not parse
	ResetToZero
)

// InvalidInputPolicy decides what unparseable amplitude text does to the model.
type InvalidInputPolicy uint8

// WithLogger sets the logger for the model
func WithLogger(logger *slog.Logger) func(*Model) {
	return func(m *Model) {
		m.logger = logger
	}
}

// WithRand sets the random source used to pick the wiggled bands
func WithRand(r *rand.Rand) func(*Model) {
	return func(m *Model) {
		m.rand = r
	}
}

// WithFalloff replaces the propagation falloff table. The table is indexed by
// distance and must hold at least PropagationDistance+1 entries.
func WithFalloff(table []float64) func(*Model) {
	return func(m *Model) {
		m.falloff = slices.Clone(table)
	}
}

// WithInvalidInputPolicy sets how SetAmplitudeText treats unparseable input
func WithInvalidInputPolicy(p InvalidInputPolicy) func(*Model) {
	return func(m *Model) {
		m.policy = p
	}
}

// Model holds the band layout, the selected band and the animation state.
// All methods are safe for concurrent use; mutations are serialized.
type Model struct {
	mu sync.Mutex

	opts     Options
	bands    []Band
	visible  []float64
	selected int
	frame    uint64
	override *string

	noiseFloor       float64
	transmitStrength float64
	falloff          []float64
	policy           InvalidInputPolicy

	rand   *rand.Rand
	logger *slog.Logger
}

// New creates a model from the options. The first visible band is selected.
func New(opts Options, options ...func(*Model)) (*Model, error) {
	bands, err := NewLayout(opts)
	if err != nil {
		return nil, err
	}

	m := Model{
		opts:             opts.Clone(),
		bands:            bands,
		noiseFloor:       float64(opts.NoiseFloor),
		transmitStrength: float64(opts.TransmitStrength),
		falloff:          slices.Clone(DefaultFalloff),
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&m)
	}

	if len(m.falloff) <= PropagationDistance {
		return nil, newConfigError("falloff", "table needs %d entries, %d given", PropagationDistance+1, len(m.falloff))
	}
	if m.rand == nil {
		m.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	m.visible = make([]float64, len(opts.VisibleBands))
	for i, f := range opts.VisibleBands {
		m.visible[i] = float64(f)
	}

	if err = m.selectBand(m.visible[0]); err != nil {
		return nil, fmt.Errorf("selecting initial band: %w", err)
	}

	return &m, nil
}

// Options returns the options the model was built from
func (m *Model) Options() Options {
	return m.opts.Clone()
}

// Bands returns a copy of the band layout with current amplitudes
func (m *Model) Bands() []Band {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.bands)
}

// VisibleBands returns the visible frequencies in configured order
func (m *Model) VisibleBands() []float64 {
	return slices.Clone(m.visible)
}

// Selected returns the index of the selected band
func (m *Model) Selected() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.selected
}

// SelectedBand returns the selected band
func (m *Model) SelectedBand() Band {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.bands[m.selected]
}

// SelectBand selects the band with exactly the given frequency. The selection
// is left unchanged when no such band exists.
func (m *Model) SelectBand(frequency float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.selectBand(frequency)
}

func (m *Model) selectBand(frequency float64) error {
	i := slices.IndexFunc(m.bands, func(b Band) bool {
		return b.Frequency == frequency
	})
	if i < 0 {
		return fmt.Errorf("%w: %s Hz", ErrBandNotFound, strconv.FormatFloat(frequency, 'f', -1, 64))
	}

	m.selected = i
	m.logger.Debug("band selected", slog.Int("index", i), slog.Float64("frequency", frequency))
	return nil
}

// SelectVisible selects the n-th visible band, counting from 1.
func (m *Model) SelectVisible(n int) error {
	if n < 1 || n > len(m.visible) {
		return fmt.Errorf("%w: visible band %d of %d", ErrBandNotFound, n, len(m.visible))
	}
	return m.SelectBand(m.visible[n-1])
}

// SetAmplitude sets the stored amplitude of the selected band.
func (m *Model) SetAmplitude(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidAmplitude, v)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.bands[m.selected].Amplitude = v
	return nil
}

// SetAmplitudeText parses the text and sets the selected amplitude. Input
// that does not parse is handled according to the invalid input policy and
// always reported as ErrInvalidAmplitude.
func (m *Model) SetAmplitudeText(text string) error {
	v, err := parseAmplitude(text)
	if err == nil {
		return m.SetAmplitude(v)
	}

	if m.policy == ResetToZero {
		m.mu.Lock()
		m.bands[m.selected].Amplitude = 0
		m.mu.Unlock()
	}
	return err
}

// SetOverride sets the text box value that overrides the selected amplitude
// on every tick. An empty text clears the override.
func (m *Model) SetOverride(text string) error {
	text = strings.TrimSpace(text)

	m.mu.Lock()
	defer m.mu.Unlock()

	if text == "" {
		m.override = nil
		return nil
	}
	if _, err := parseAmplitude(text); err != nil {
		return err
	}

	m.override = &text
	return nil
}

// ClearOverride removes the text box override
func (m *Model) ClearOverride() {
	m.mu.Lock()
	m.override = nil
	m.mu.Unlock()
}

// Override returns the current text box override, if any
func (m *Model) Override() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.override == nil {
		return "", false
	}
	return *m.override, true
}

// Tick advances the animation by one frame: it propagates the selected
// amplitude to the neighbors, applies the text box override, wiggles a random
// subset of bars and colors the selected bar.
func (m *Model) Tick() Frame {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.propagate()
	m.applyOverride()

	number := m.frame
	m.frame++

	wiggle := WiggleAmplitude * math.Sin(2*math.Pi*float64(number)/WigglePeriod)
	wiggled := m.pickWiggled()

	return m.buildFrame(number, wiggle, func(i int) bool {
		_, ok := wiggled[i]
		return ok
	})
}

// Snapshot returns a frame of the current state without advancing it.
func (m *Model) Snapshot() Frame {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.buildFrame(m.frame, 0, func(int) bool { return false })
}

// RandomFrame returns a frame with uniformly random heights within the
// amplitude range. The model state is not changed.
func (m *Model) RandomFrame(r *rand.Rand) Frame {
	m.mu.Lock()
	defer m.mu.Unlock()

	frame := m.buildFrame(m.frame, 0, func(int) bool { return false })

	lo, hi := float64(m.opts.MinAmplitude), float64(m.opts.MaxAmplitude)
	for i := range frame.Bars {
		frame.Bars[i].Height = max(0, lo+r.Float64()*(hi-lo))
	}
	frame.Bars[frame.Selected].Color = m.colorOf(frame.Bars[frame.Selected].Height)

	return frame
}

// WiggleCount returns the number of bars wiggled on every tick.
func (m *Model) WiggleCount() int {
	return int(math.Round(float64(len(m.bands)) * WiggleRatio))
}

func (m *Model) propagate() {
	amplitude := m.bands[m.selected].Amplitude

	for d := 1; d <= PropagationDistance; d++ {
		decayed := amplitude * m.falloff[d]
		if math.IsNaN(decayed) || math.IsInf(decayed, 0) {
			m.logger.Debug("skipping propagation", slog.Int("distance", d), slog.Float64("amplitude", amplitude))
			continue
		}

		for _, n := range [2]int{m.selected - d, m.selected + d} {
			if n < 0 || n >= len(m.bands) {
				continue
			}

			// Both checks apply, in this order.
			if decayed >= m.noiseFloor {
				m.bands[n].Amplitude = decayed
			}
			if amplitude <= m.noiseFloor {
				m.bands[n].Amplitude = m.noiseFloor
			}
		}
	}
}

func (m *Model) applyOverride() {
	if m.override == nil {
		return
	}

	v, err := parseAmplitude(*m.override)
	if err != nil {
		m.logger.Warn("ignoring amplitude override", slog.String("error", err.Error()))
		return
	}
	m.bands[m.selected].Amplitude = v
}

func (m *Model) pickWiggled() map[int]struct{} {
	n := m.WiggleCount()

	picked := make(map[int]struct{}, n)
	for _, i := range m.rand.Perm(len(m.bands))[:n] {
		picked[i] = struct{}{}
	}
	return picked
}

func (m *Model) buildFrame(number uint64, wiggle float64, wiggled func(int) bool) Frame {
	bars := make([]Bar, len(m.bands))
	for i, b := range m.bands {
		height := b.Amplitude
		if wiggled(i) {
			height += wiggle
		}

		bars[i] = Bar{
			Frequency: b.Frequency,
			Height:    max(0, height),
			Color:     ColorIdle,
			Visible:   b.Visible,
			Selected:  i == m.selected,
		}
	}

	selected := &bars[m.selected]
	selected.Color = m.colorOf(selected.Height)

	return Frame{
		Number:   number,
		Wiggle:   wiggle,
		Selected: m.selected,
		Status:   StatusLabel(m.bands[m.selected].Frequency, m.bands[m.selected].Amplitude),
		Bars:     bars,
	}
}

func (m *Model) colorOf(height float64) ColorState {
	if height >= m.transmitStrength {
		return ColorActive
	}
	return ColorIdle
}

func parseAmplitude(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidAmplitude)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmplitude, text)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmplitude, text)
	}
	return v, nil
}
