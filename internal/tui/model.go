// Package tui is the interactive terminal front end of the analyzer: it
// draws the frames produced by the animation and turns key presses into
// band selection and amplitude changes.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/roman-kulish/spectrum-analyzer/internal/spectrum"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	minChartRows = 4

	// Lines taken by everything but the chart
	chromeLines = 13
)

var barChars = []rune(" ▁▂▃▄▅▆▇█")

// Controller is the part of the spectrum model the UI drives
type Controller interface {
	Options() spectrum.Options
	VisibleBands() []float64
	SelectedBand() spectrum.Band
	SelectVisible(n int) error
	SetAmplitude(v float64) error
	SetOverride(text string) error
	ClearOverride()
	Override() (string, bool)
	Snapshot() spectrum.Frame
}

// Model is the Bubbletea model for the analyzer TUI.
type Model struct {
	spectrum Controller
	opts     spectrum.Options

	frame   spectrum.Frame
	springs *springField // nil unless smoothing is enabled
	heights []float64    // displayed heights, eased when smoothing
	input   textinput.Model
	editing bool

	width, height int
	message       string // last input error
	quitting      bool
}

// WithSmoothing eases the displayed bars towards each new frame with a
// spring animated at fps frames per second.
func WithSmoothing(fps int) func(*Model) {
	return func(m *Model) {
		if fps > 0 {
			m.springs = newSpringField(fps)
		}
	}
}

// New creates a new Model showing the current state of the spectrum until
// the first animation frame arrives.
func New(c Controller, options ...func(*Model)) Model {
	ti := textinput.New()
	ti.Placeholder = "amplitude"
	ti.CharLimit = 16
	ti.Width = 16
	ti.Prompt = "override> "

	m := Model{
		spectrum: c,
		opts:     c.Options(),
		input:    ti,
	}
	for _, option := range options {
		option(&m)
	}

	m.setFrame(c.Snapshot())
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("Spectrum Analyzer")
}

// Frame returns the frame currently displayed
func (m Model) Frame() spectrum.Frame {
	return m.frame
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.setFrame(spectrum.Frame(msg))
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if isQuit(msg) {
		m.quitting = true
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}

	if n, ok := visibleIndex(msg); ok {
		m.setMessage(m.spectrum.SelectVisible(n))
		return m, nil
	}

	if step, ok := amplitudeStep(msg); ok {
		m.setMessage(m.nudgeAmplitude(step))
		return m, nil
	}

	switch msg.String() {
	case "t":
		m.editing = true
		if text, ok := m.spectrum.Override(); ok {
			m.input.SetValue(text)
		}
		return m, tea.Batch(m.input.Focus(), textinput.Blink)

	case "esc":
		m.spectrum.ClearOverride()
		m.message = ""
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.setMessage(m.spectrum.SetOverride(m.input.Value()))
		m.editing = false
		m.input.Reset()
		m.input.Blur()
		return m, nil

	case "esc":
		m.editing = false
		m.input.Reset()
		m.input.Blur()
		return m, nil

	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// nudgeAmplitude moves the slider of the selected band within the amplitude range
func (m *Model) nudgeAmplitude(step float64) error {
	a := m.spectrum.SelectedBand().Amplitude + step
	a = min(max(a, float64(m.opts.MinAmplitude)), float64(m.opts.MaxAmplitude))
	return m.spectrum.SetAmplitude(a)
}

func (m *Model) setFrame(frame spectrum.Frame) {
	m.frame = frame
	m.heights = frame.Heights()

	if m.springs == nil {
		return
	}

	m.springs.resize(len(m.heights))
	for i, h := range m.heights {
		m.heights[i] = m.springs.step(i, h)
	}
}

func (m *Model) setMessage(err error) {
	if err != nil {
		m.message = err.Error()
		return
	}
	m.message = ""
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := m.width
	if w < 30 {
		w = defaultWidth
	}
	h := m.height
	if h <= 0 {
		h = defaultHeight
	}

	cols := min(len(m.frame.Bars), w-4)
	rows := max(minChartRows, h-chromeLines)

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString("  " + headerStyle.Render("Spectrum Analyzer") + "\n")
	sb.WriteString("\n")

	for _, line := range m.chartLines(cols, rows) {
		sb.WriteString("  " + line + "\n")
	}
	sb.WriteString("  " + axisStyle.Render(strings.Repeat("─", cols)) + "\n")
	sb.WriteString("  " + axisStyle.Render(m.frequencyAxis(cols)) + "\n")
	sb.WriteString("\n")

	for _, line := range strings.Split(m.frame.Status, "\n") {
		sb.WriteString("  " + statusStyle.Render(line) + "\n")
	}

	sb.WriteString("\n")
	switch {
	case m.editing:
		sb.WriteString("  " + m.input.View() + "\n")
	default:
		if text, ok := m.spectrum.Override(); ok {
			sb.WriteString("  " + statusStyle.Render(fmt.Sprintf("override: %s", text)) + "\n")
		} else {
			sb.WriteString("\n")
		}
	}
	if m.message != "" {
		sb.WriteString("  " + errorStyle.Render(m.message) + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString("  " + helpStyle.Render(helpText(m.editing)) + "\n")

	return sb.String()
}

type column struct {
	height float64
	active bool
}

// columns folds the bars into cols columns, keeping the tallest bar of each
// group. The column holding the selected bar takes its color.
func (m Model) columns(cols int) []column {
	bars := m.frame.Bars
	if cols <= 0 || len(bars) == 0 {
		return nil
	}

	out := make([]column, cols)
	for i, bar := range bars {
		c := i * cols / len(bars)
		out[c].height = max(out[c].height, m.barHeight(i))
		if i == m.frame.Selected && bar.Color == spectrum.ColorActive {
			out[c].active = true
		}
	}
	return out
}

// barHeight returns the displayed height of bar i
func (m Model) barHeight(i int) float64 {
	if i < len(m.heights) {
		return m.heights[i]
	}
	return m.frame.Bars[i].Height
}

func (m Model) chartLines(cols, rows int) []string {
	columns := m.columns(cols)
	lo, hi := float64(max(0, m.opts.MinAmplitude)), float64(m.opts.MaxAmplitude)
	span := max(hi-lo, 1)

	lines := make([]string, rows)
	for row := range rows {
		var line strings.Builder
		rowFromBottom := float64(rows - 1 - row)

		for _, col := range columns {
			level := (min(col.height, hi) - lo) / span * float64(rows)

			idx := 0
			switch {
			case level >= rowFromBottom+1:
				idx = len(barChars) - 1
			case level > rowFromBottom:
				idx = int((level - rowFromBottom) * float64(len(barChars)-1))
			}

			ch := string(barChars[idx])
			if col.active {
				line.WriteString(activeBarStyle.Render(ch))
			} else {
				line.WriteString(idleBarStyle.Render(ch))
			}
		}
		lines[row] = line.String()
	}
	return lines
}

// frequencyAxis labels the column of every visible band that has room for it
func (m Model) frequencyAxis(cols int) string {
	if cols <= 0 || len(m.frame.Bars) == 0 {
		return ""
	}

	axis := []rune(strings.Repeat(" ", cols))
	next := 0 // first free column
	for i, bar := range m.frame.Bars {
		if !bar.Visible {
			continue
		}

		c := i * cols / len(m.frame.Bars)
		label := []rune(fmt.Sprintf("^%g", bar.Frequency))
		if c < next || c+len(label) > cols {
			continue
		}

		copy(axis[c:], label)
		next = c + len(label) + 1
	}
	return string(axis)
}
