package sink

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type frameMsg struct{ Text string }
type deviceMsg struct{ Name string }
type clearMsg struct{}

type tuiModel struct {
	text          string
	device        string
	frames        int
	width, height int
}

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Foreground(lipgloss.Color("212")).
			Padding(0, 2)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
)

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case frameMsg:
		m.text = msg.Text
		m.frames++

	case clearMsg:
		m.text = ""

	case deviceMsg:
		m.device = msg.Name
	}
	return m, nil
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	text := m.text
	if text == "" {
		text = " "
	}
	body := frameStyle.Render(text)

	footer := footerStyle.Render(fmt.Sprintf("%s · %d frames", deviceLabel(m.device), m.frames))
	help := helpStyle.Render("q to quit")
	block := lipgloss.JoinVertical(lipgloss.Center, body, footer, help)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, block)
}

func deviceLabel(name string) string {
	if name == "" {
		return "no device"
	}
	return name
}

// Term is a full-screen sink. Quitting the program cancels the context the
// render loop runs under.
type Term struct {
	program *tea.Program
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
	err     error
}

func NewTUI(cancel context.CancelFunc, opts ...tea.ProgramOption) *Term {
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	return &Term{
		program: tea.NewProgram(tuiModel{}, opts...),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

func (t *Term) Start() {
	go func() {
		defer close(t.done)
		_, t.err = t.program.Run()
		t.cancel()
	}()
}

func (t *Term) Emit(text string) error {
	t.program.Send(frameMsg{Text: text})
	return nil
}

func (t *Term) Clear() error {
	t.program.Send(clearMsg{})
	return nil
}

func (t *Term) SetDevice(name string) {
	t.program.Send(deviceMsg{Name: name})
}

// Close stops the program and waits for the terminal to be restored.
func (t *Term) Close() error {
	t.once.Do(t.program.Quit)
	<-t.done
	return t.err
}
