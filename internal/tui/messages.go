package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/roman-kulish/spectrum-analyzer/internal/spectrum"
)

// ErrNoProgram is returned by a sink that is not attached to a program
var ErrNoProgram = errors.New("sink is not attached to a program")

type frameMsg spectrum.Frame

// Sender delivers messages to a running program, e.g. a *tea.Program
type Sender interface {
	Send(msg tea.Msg)
}

// Sink forwards animation frames to the terminal UI. It is registered with
// the animation driver, which runs on its own goroutine.
type Sink struct {
	sender Sender
}

// NewSink creates a sink delivering frames to the sender
func NewSink(sender Sender) *Sink {
	return &Sink{sender: sender}
}

func (s *Sink) Consume(ctx context.Context, frame spectrum.Frame) error {
	if s.sender == nil {
		return ErrNoProgram
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.sender.Send(frameMsg(frame))
	return nil
}
