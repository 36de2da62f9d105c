// Package ui provides terminal presentation helpers shared by the
// commands.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Progress animates a message on stderr while a slow scan runs, keeping
// stdout free for the scan's result.
type Progress struct {
	program  *tea.Program
	finished chan struct{}
}

type doneMsg struct{}

type progressModel struct {
	spinner spinner.Model
	message string
	done    bool
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.message)
}

// ShowProgress starts the animation in the background.
func ShowProgress(message string) *Progress {
	model := progressModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		message: message,
	}
	p := &Progress{
		program:  tea.NewProgram(model, tea.WithOutput(os.Stderr)),
		finished: make(chan struct{}),
	}
	go func() {
		p.program.Run()
		close(p.finished)
	}()
	return p
}

// Done clears the line and waits for the terminal to be restored. Call
// it before writing any command output.
func (p *Progress) Done() {
	p.program.Send(doneMsg{})
	<-p.finished
}
