package tui

import "github.com/charmbracelet/harmonica"

const (
	springFrequency = 6.0
	springDamping   = 0.7
)

// springField eases every bar towards the height of the latest frame
type springField struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
}

func newSpringField(fps int) *springField {
	return &springField{spring: harmonica.NewSpring(harmonica.FPS(fps), springFrequency, springDamping)}
}

func (s *springField) resize(n int) {
	if len(s.pos) == n {
		return
	}
	s.pos = make([]float64, n)
	s.vel = make([]float64, n)
}

func (s *springField) step(i int, target float64) float64 {
	p, v := s.spring.Update(s.pos[i], s.vel[i], target)
	if p < 0 {
		p, v = 0, 0
	}
	s.pos[i] = p
	s.vel[i] = v
	return p
}
