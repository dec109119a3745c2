package tui

import tea "github.com/charmbracelet/bubbletea"

const (
	smallStep = 10.0
	largeStep = 100.0
)

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "ctrl+c":
		return true
	}
	return false
}

// amplitudeStep returns the slider step of an arrow key
func amplitudeStep(msg tea.KeyMsg) (float64, bool) {
	switch msg.String() {
	case "left", "h":
		return -smallStep, true
	case "right", "l":
		return smallStep, true
	case "shift+left", "H":
		return -largeStep, true
	case "shift+right", "L":
		return largeStep, true
	}
	return 0, false
}

// visibleIndex returns the 1-based visible band of a digit key
func visibleIndex(msg tea.KeyMsg) (int, bool) {
	s := msg.String()
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return int(s[0] - '0'), true
	}
	return 0, false
}

func helpText(editing bool) string {
	if editing {
		return "enter apply  esc cancel"
	}
	return "1-9 band  ←/→ ±10  shift+←/→ ±100  t override  esc clear  q quit"
}
