package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/pnlcast/internal/chart"
)

// PayloadMsg tells the app that a newer payload was rendered by the session.
type PayloadMsg struct {
	Payload chart.Payload
}

// Sink is the chart.Renderer the app subscribes to. It keeps only the most
// recent payload, so a slow UI never blocks the session.
type Sink struct {
	ch chan chart.Payload
}

// NewSink returns an empty sink.
func NewSink() *Sink {
	return &Sink{ch: make(chan chart.Payload, 1)}
}

// Render implements chart.Renderer. A payload still waiting to be picked up
// is replaced.
func (s *Sink) Render(p chart.Payload) error {
	for {
		select {
		case s.ch <- p:
			return nil
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

// wait blocks until the next payload arrives.
func (s *Sink) wait() tea.Cmd {
	return func() tea.Msg {
		return PayloadMsg{Payload: <-s.ch}
	}
}
