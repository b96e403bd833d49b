package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicklesworthstone/cpugrid/internal/loop"
	"github.com/Dicklesworthstone/cpugrid/internal/render"
)

// Model drives the gauge grid from Bubble Tea instead of the raw loop.
// Bubble Tea owns the terminal (alternate screen, raw mode, cursor) and the
// loop only supplies frames.
type Model struct {
	ctx    context.Context
	loop   *loop.Loop
	frame  render.Frame
	drawn  bool
	err    error
	width  int
	height int
}

func New(ctx context.Context, l *loop.Loop) *Model {
	return &Model{
		ctx:    ctx,
		loop:   l,
		width:  120,
		height: 40,
	}
}

// Messages
type tickMsg struct{}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.loop.PollTimeout(), func(time.Time) tea.Msg { return tickMsg{} })
}

func (m *Model) Init() tea.Cmd {
	// First frame right away, then one per poll timeout.
	return func() tea.Msg { return tickMsg{} }
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "Q", "ctrl+c":
			m.loop.Stop()
			return m, tea.Quit
		}
	case tickMsg:
		if err := m.loop.Step(m.ctx, m); err != nil {
			m.err = err
			m.loop.Stop()
			return m, tea.Quit
		}
		return m, m.tickCmd()
	}
	return m, nil
}

// Draw keeps the latest frame for View.
func (m *Model) Draw(f render.Frame) error {
	m.frame = f
	m.drawn = true
	return nil
}

func (m *Model) View() string {
	if !m.drawn {
		return ""
	}
	return render.Compose(m.frame, m.width, m.height)
}

// Err is the error that stopped the program, if any.
func (m *Model) Err() error { return m.err }

// RunTUI starts the Bubble Tea program.
func RunTUI(ctx context.Context, l *loop.Loop) error {
	m := New(ctx, l)
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return m.Err()
}
