package main

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mpkocher/almond/errors"
	"github.com/mpkocher/almond/interp"
	"github.com/mpkocher/almond/kernel"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	inputEchoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD27F"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type replModel struct {
	k      *kernel.Kernel
	ti     textinput.Model
	source *chanSource

	transcript   []string
	displayLines map[string]int
	continued    []string
	running      bool
	awaitInput   bool
	prompt       string
	width        int
}

type execDoneMsg struct {
	res *kernel.Result
	err error
}

type outputMsg struct {
	text  string
	isErr bool
}

type promptMsg struct {
	prompt string
}

type displayMsg struct {
	payload kernel.DisplayPayload
}

// teaSink forwards captured output into the event loop.
type teaSink struct {
	send func(tea.Msg)
}

func (s teaSink) Stdout(text string) { s.send(outputMsg{text: text}) }
func (s teaSink) Stderr(text string) { s.send(outputMsg{text: text, isErr: true}) }

// teaComm is the durable update channel: it outlives submissions and routes
// display replacements straight into the event loop.
type teaComm struct {
	send func(tea.Msg)
}

func (c teaComm) UpdateDisplay(p kernel.DisplayPayload) error {
	c.send(displayMsg{payload: p})
	return nil
}

// chanSource feeds readLine from lines typed while a submission runs.
type chanSource struct {
	ch   chan string
	send func(tea.Msg)
}

func (s *chanSource) ReadInput(prompt string, password bool) (string, error) {
	s.send(promptMsg{prompt: prompt})
	line, ok := <-s.ch
	if !ok {
		return "", errors.EndOfInput()
	}
	return line, nil
}

func runInteractive() error {
	k, err := kernel.New(interp.New(), kernel.WithComm(teaComm{send: deferredSend}))
	if err != nil {
		return err
	}

	ti := textinput.New()
	ti.Prompt = "@ "
	ti.Placeholder = "val x = 1 + 2"
	ti.Focus()

	m := &replModel{
		k:            k,
		ti:           ti,
		source:       &chanSource{ch: make(chan string), send: deferredSend},
		displayLines: make(map[string]int),
	}

	p := tea.NewProgram(m)
	bindSend(p.Send)
	defer close(m.source.ch)

	_, err = p.Run()
	return err
}

// The kernel and its background tasks need a send func before the program
// exists; deferredSend drops messages until bindSend publishes the real one.
// Background goroutines read it while the main goroutine binds, so the slot
// is atomic.
var programSend atomic.Pointer[func(tea.Msg)]

func deferredSend(msg tea.Msg) {
	if send := programSend.Load(); send != nil {
		(*send)(msg)
	}
}

func bindSend(send func(tea.Msg)) {
	programSend.Store(&send)
}

func (m *replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.running {
				m.k.Interrupt()
				return m, nil
			}
			return m, tea.Quit

		case "ctrl+d":
			return m, tea.Quit

		case "enter":
			line := m.ti.Value()
			m.ti.SetValue("")

			if m.running {
				if m.awaitInput {
					m.awaitInput = false
					m.appendLine(inputEchoStyle.Render("? " + line))
					select {
					case m.source.ch <- line:
					default:
					}
				}
				return m, nil
			}

			m.continued = append(m.continued, line)
			code := strings.Join(m.continued, "\n")
			if m.k.IsComplete(code) == kernel.CodeIncomplete {
				m.ti.Prompt = "| "
				return m, nil
			}
			m.continued = nil
			m.ti.Prompt = "@ "
			m.appendLine(inputEchoStyle.Render("@ " + code))
			m.running = true
			return m, m.execCmd(code)

		case "tab":
			if !m.running {
				m.complete()
				return m, nil
			}
		}

	case outputMsg:
		style := resultStyle
		if msg.isErr {
			style = errorStyle
		}
		for _, line := range strings.Split(strings.TrimRight(msg.text, "\n"), "\n") {
			m.appendLine(style.Render(line))
		}
		return m, nil

	case promptMsg:
		m.awaitInput = true
		m.prompt = msg.prompt
		m.ti.Prompt = "? "
		return m, nil

	case displayMsg:
		rendered := pendingStyle.Render(msg.payload.Data.Data)
		if idx, ok := m.displayLines[msg.payload.ID]; ok {
			m.transcript[idx] = rendered
		} else {
			m.displayLines[msg.payload.ID] = len(m.transcript)
			m.appendLine(rendered)
		}
		return m, nil

	case execDoneMsg:
		m.running = false
		m.awaitInput = false
		m.ti.Prompt = "@ "
		if msg.err != nil {
			m.appendLine(errorStyle.Render("fatal: " + msg.err.Error()))
			return m, tea.Quit
		}
		m.renderResult(msg.res)
		return m, nil
	}

	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *replModel) execCmd(code string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.k.Execute(context.Background(), code,
			kernel.WithInput(m.source),
			kernel.WithOutput(teaSink{send: deferredSend}))
		return execDoneMsg{res: res, err: err}
	}
}

func (m *replModel) renderResult(res *kernel.Result) {
	switch res.Payload.Kind {
	case kernel.PayloadEmpty:
	case kernel.PayloadText, kernel.PayloadDisplay:
		if res.Payload.Text != "" {
			for _, line := range strings.Split(res.Payload.Text, "\n") {
				m.appendLine(resultStyle.Render(line))
			}
		}
	case kernel.PayloadError, kernel.PayloadInterrupted:
		for _, line := range strings.Split(res.Payload.Text, "\n") {
			m.appendLine(errorStyle.Render(line))
		}
	}

	for _, d := range res.Displays {
		rendered := pendingStyle.Render(d.Data().Data)
		m.displayLines[d.ID()] = len(m.transcript)
		m.appendLine(rendered)
	}
}

func (m *replModel) complete() {
	code := m.ti.Value()
	c := m.k.CompleteAt(code, len(code))
	switch len(c.Candidates) {
	case 0:
	case 1:
		m.ti.SetValue(code[:c.From] + c.Candidates[0])
		m.ti.CursorEnd()
	default:
		m.appendLine(helpStyle.Render(strings.Join(c.Candidates, "  ")))
	}
}

func (m *replModel) appendLine(line string) {
	m.transcript = append(m.transcript, line)
	const maxLines = 500
	if len(m.transcript) > maxLines {
		drop := len(m.transcript) - maxLines
		m.transcript = m.transcript[drop:]
		for id, idx := range m.displayLines {
			if idx < drop {
				delete(m.displayLines, id)
			} else {
				m.displayLines[id] = idx - drop
			}
		}
	}
}

func (m *replModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("almond"))
	b.WriteString(helpStyle.Render("  line " + strconv.Itoa(m.k.CurrentLine())))
	b.WriteString("\n\n")
	for _, line := range m.transcript {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(m.ti.View())
	b.WriteString("\n")
	if m.running {
		b.WriteString(helpStyle.Render("running... ctrl+c interrupts"))
	} else {
		b.WriteString(helpStyle.Render("enter runs • tab completes • ctrl+d quits"))
	}
	b.WriteString("\n")
	return b.String()
}
