package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kjannette/quotegraph/internal/graph"
)

// Controller is the part of controller.Controller the terminal shell drives.
type Controller interface {
	Start(ctx context.Context, options []string, defaultSource string) error
	OnSourceSelected(ctx context.Context, name string) error
	SetRenderer(k graph.Kind) error
	Resize(vp graph.Viewport) error
}

// doneMsg ends a controller call started from Update.
type doneMsg struct {
	source string
	err    error
}

const (
	listWidth   = 20
	chromeLines = 5
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	listStyle     = lipgloss.NewStyle().Width(listWidth).PaddingRight(2)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	emptyTextArea = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

var kindKeys = map[string]graph.Kind{
	"l": graph.KindLine,
	"c": graph.KindColumn,
	"k": graph.KindCandlestick,
}

type Model struct {
	ctx           context.Context
	ctrl          Controller
	defaultSource string

	options []string
	cursor  int
	active  string
	drawing *graph.Drawing
	status  string
	isError bool
	busy    bool

	width, height int
}

func New(ctx context.Context, ctrl Controller, options []string, defaultSource string) *Model {
	return &Model{
		ctx:           ctx,
		ctrl:          ctrl,
		defaultSource: defaultSource,
		options:       append([]string(nil), options...),
		width:         100,
		height:        30,
	}
}

func (m *Model) Init() tea.Cmd {
	m.busy = true
	return m.call(m.defaultSource, func() error {
		return m.ctrl.Start(m.ctx, m.options, m.defaultSource)
	})
}

// call runs a controller operation off the event loop; the shell delivers
// its output while the call is in flight.
func (m *Model) call(source string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{source: source, err: fn()}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w, h := m.chartSize()
		vp := graph.Viewport{Width: float64(w * 2), Height: float64(h * 4)}
		return m, m.call("", func() error { return m.ctrl.Resize(vp) })
	case graphMsg:
		m.drawing = msg.drawing
	case optionsMsg:
		m.options = msg.names
		if m.cursor >= len(m.options) {
			m.cursor = 0
		}
		for i, name := range m.options {
			if name == m.defaultSource {
				m.cursor = i
			}
		}
	case errorMsg:
		m.status, m.isError = msg.text, true
	case doneMsg:
		m.busy = false
		if msg.err == nil && msg.source != "" {
			m.active = msg.source
			m.status, m.isError = "", false
		}
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter", " ":
		if m.busy || len(m.options) == 0 {
			return m, nil
		}
		name := m.options[m.cursor]
		m.busy = true
		m.status, m.isError = "loading "+name+" ...", false
		return m, m.call(name, func() error {
			return m.ctrl.OnSourceSelected(m.ctx, name)
		})
	default:
		if k, ok := kindKeys[msg.String()]; ok {
			return m, m.call("", func() error { return m.ctrl.SetRenderer(k) })
		}
	}
	return m, nil
}

func (m *Model) chartSize() (w, h int) {
	w = m.width - listWidth - 2
	h = m.height - chromeLines
	if w < 20 {
		w = 20
	}
	if h < 6 {
		h = 6
	}
	return w, h
}

func (m *Model) View() string {
	var list strings.Builder
	list.WriteString("Sources\n\n")
	for i, name := range m.options {
		line := "  " + name
		if name == m.active {
			line = activeStyle.Render("* " + name)
		}
		if i == m.cursor {
			line = cursorStyle.Render("> ") + strings.TrimLeft(line, " ")
		}
		list.WriteString(line + "\n")
	}

	w, h := m.chartSize()
	chart := emptyTextArea.Render("no graph")
	if m.drawing != nil {
		chart = renderChart(m.drawing, w, h)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, listStyle.Render(list.String()), chart)

	status := ""
	switch {
	case m.isError:
		status = errorStyle.Render(m.status)
	case m.status != "":
		status = m.status
	case m.drawing != nil:
		status = fmt.Sprintf("%s · %s · %d records", m.active, m.drawing.Kind, len(m.drawing.Points))
	}

	return strings.Join([]string{
		titleStyle.Render("Quote Graph"),
		body,
		status,
		helpStyle.Render("↑/↓ select · enter load · l/c/k line/column/candlestick · q quit"),
	}, "\n")
}
