package spectrum

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

const (
	// ColorIdle is the state of every bar except the selected one above the transmit strength
	ColorIdle ColorState = iota
	// ColorActive marks the selected bar at or above the transmit strength
	ColorActive
)

// ColorState is the render state of a single bar.
type ColorState uint8

func (c ColorState) String() string {
	if c == ColorActive {
		return "active"
	}
	return "idle"
}

// Bar is what a renderer draws for one band in a frame.
type Bar struct {
	Frequency float64    `json:"frequency"` // Band frequency in Hz
	Height    float64    `json:"height"`    // Displayed amplitude, never negative
	Color     ColorState `json:"color"`     // Active or idle
	Visible   bool       `json:"visible"`   // Visible (monitored) band, drawn with a tick mark
	Selected  bool       `json:"selected"`  // Band under user control
}

// Frame is the rendered output of a single tick.
type Frame struct {
	Number   uint64  `json:"number"`   // Value of the frame counter the frame was produced with
	Wiggle   float64 `json:"wiggle"`   // Wiggle amount applied to the wiggled subset
	Selected int     `json:"selected"` // Index of the selected bar
	Status   string  `json:"status"`   // Status label text
	Bars     []Bar   `json:"bars"`
}

// SelectedBar returns the bar under user control.
func (f Frame) SelectedBar() Bar {
	return f.Bars[f.Selected]
}

// Heights returns the displayed heights of all bars in order.
func (f Frame) Heights() []float64 {
	heights := make([]float64, len(f.Bars))
	for i, b := range f.Bars {
		heights[i] = b.Height
	}
	return heights
}

// StatusLabel formats the label refreshed on every tick.
func StatusLabel(frequency, amplitude float64) string {
	return fmt.Sprintf("Selected Band\nFrequency: %s Hz\nAmplitude: %s",
		humanize.Ftoa(frequency), humanize.FtoaWithDigits(amplitude, 2))
}
