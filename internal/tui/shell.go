package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kjannette/quotegraph/internal/graph"
)

type graphMsg struct{ drawing *graph.Drawing }

type optionsMsg struct{ names []string }

type errorMsg struct{ text string }

// Shell forwards controller output into a running bubbletea program as
// messages. Output before Attach is dropped.
type Shell struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// Attach sets the message sink, usually (*tea.Program).Send.
func (s *Shell) Attach(send func(tea.Msg)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.send = send
}

func (s *Shell) emit(msg tea.Msg) {
	s.mu.Lock()
	send := s.send
	s.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

func (s *Shell) SetGraph(d *graph.Drawing) { s.emit(graphMsg{d}) }

func (s *Shell) SetSourceOptions(names []string) {
	s.emit(optionsMsg{append([]string(nil), names...)})
}

func (s *Shell) ShowError(msg string) { s.emit(errorMsg{msg}) }
