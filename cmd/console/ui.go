package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/dialogue-engine/pkg/dice"
	"github.com/jwebster45206/dialogue-engine/pkg/runner"
	"github.com/jwebster45206/dialogue-engine/pkg/tags"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// barkExpiredMsg clears a bark once its duration is up
type barkExpiredMsg struct{ seq int }

// ConsoleUI plays a dialogue graph in the terminal
type ConsoleUI struct {
	runner  *runner.Runner
	session *session
	checker *dice.Checker
	barks   *tags.Player
	logger  *slog.Logger

	title    string
	viewport viewport.Model
	width    int
	height   int
	ready    bool
	status   string
	copyFunc func(string) error
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 2)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	rollStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	barkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")). // green
			Italic(true)

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 3).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var speakerCaser = cases.Title(language.English)

func NewConsoleUI(title string, r *runner.Runner, s *session, checker *dice.Checker, barks *tags.Player, logger *slog.Logger) ConsoleUI {
	vp := viewport.New(60, 20)
	vp.MouseWheelEnabled = true

	return ConsoleUI{
		runner:   r,
		session:  s,
		checker:  checker,
		barks:    barks,
		logger:   logger,
		title:    title,
		viewport: vp,
		copyFunc: clipboard.WriteAll,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return nil
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-6, 20)
		m.viewport.Height = max(msg.Height-(8+len(m.session.options)), 5)
		m.ready = true
		m.writeContent()

	case barkExpiredMsg:
		m.session.expireBark(msg.seq)

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			m.writeContent()
			return m, cmd
		}
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, vpCmd)
	return m, tea.Batch(cmds...)
}

// handleKey applies a key press; unhandled keys go to the viewport for
// scrolling
func (m *ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	key := msg.String()
	if key == "ctrl+c" || key == "q" {
		return tea.Quit, true
	}

	if m.session.roll != nil {
		switch key {
		case "r", " ":
			if res := m.session.rollDice(m.checker); res != nil {
				m.logger.Debug("Dice rolled", "natural", res.Natural, "modifier", res.Modifier, "target", res.Target)
			}
		case "enter":
			m.session.acceptRoll()
		}
		return nil, true
	}

	switch key {
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.choose(int(key[0] - '1'))
		return nil, true
	case "enter":
		if m.session.ended {
			return tea.Quit, true
		}
		if m.runner.IsRunning() && len(m.session.options) == 0 {
			if err := m.runner.ContinueTo(""); err != nil {
				m.status = err.Error()
			}
		}
		return nil, true
	case "b":
		return m.playBark(), true
	case "y":
		m.copyLine()
		return nil, true
	}
	return nil, false
}

func (m *ConsoleUI) choose(index int) {
	m.status = ""
	if !m.runner.IsRunning() {
		return
	}
	if index < len(m.session.options) {
		m.session.add(entryChoice, "", m.session.options[index])
	}
	err := m.runner.ChooseOption(index)
	switch {
	case errors.Is(err, runner.ErrInvalidOptionIndex):
		m.status = fmt.Sprintf("No option %d here.", index+1)
	case err != nil:
		m.status = err.Error()
	}
}

func (m *ConsoleUI) playBark() tea.Cmd {
	if m.barks == nil {
		m.status = "No barks loaded."
		return nil
	}
	shown, err := m.barks.PlayDefault()
	if err != nil {
		m.logger.Warn("Bark failed", "error", err)
		m.status = err.Error()
		return nil
	}
	if !shown {
		m.status = "Nothing left to say."
		return nil
	}
	seq, d, ok := m.session.takeBark()
	if !ok {
		return nil
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return barkExpiredMsg{seq: seq} })
}

func (m *ConsoleUI) copyLine() {
	line := m.session.currentLine()
	if line == "" {
		return
	}
	if err := m.copyFunc(line); err != nil {
		m.logger.Warn("Failed to copy line", "error", err)
		m.status = "Clipboard unavailable."
		return
	}
	m.status = "Line copied."
}

// writeContent rebuilds the transcript for the current viewport width
func (m *ConsoleUI) writeContent() {
	width := m.viewport.Width - 2
	var content strings.Builder

	for _, e := range m.session.transcript {
		switch e.kind {
		case entryLine:
			if e.speaker != "" {
				content.WriteString(speakerStyle.Render(speakerCaser.String(e.speaker)) + "\n")
			}
			content.WriteString(wordwrap.String(e.text, width) + "\n\n")
		case entryChoice:
			content.WriteString(choiceStyle.Render(wordwrap.String("> "+e.text, width)) + "\n\n")
		case entryRoll:
			content.WriteString(rollStyle.Render(wordwrap.String(e.text, width)) + "\n\n")
		case entryBark:
			content.WriteString(barkStyle.Render(wordwrap.String("\""+e.text+"\"", width)) + "\n\n")
		default:
			content.WriteString(systemStyle.Render(wordwrap.String(e.text, width)) + "\n\n")
		}
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	if m.session.roll != nil {
		return m.renderDiceModal()
	}

	var footer strings.Builder
	switch {
	case m.session.ended && m.session.action != "":
		footer.WriteString(titleStyle.Render("~ "+strings.ToUpper(m.session.action)+" ~") + "\n")
		footer.WriteString(systemStyle.Render("enter/q: quit"))
	case m.session.ended:
		footer.WriteString(systemStyle.Render("enter/q: quit"))
	case len(m.session.options) == 0:
		footer.WriteString(optionStyle.Render("[enter] Close") + "\n")
		footer.WriteString(systemStyle.Render("b: bark • y: copy line • q: quit"))
	default:
		for i, label := range m.session.options {
			footer.WriteString(optionStyle.Render(fmt.Sprintf("%d. %s", i+1, label)) + "\n")
		}
		footer.WriteString(systemStyle.Render("1-9: choose • b: bark • y: copy line • q: quit"))
	}

	if m.session.bark != "" {
		footer.WriteString("\n" + barkStyle.Render(m.session.bark))
	}
	if m.status != "" {
		footer.WriteString("\n" + errorStyle.Render(m.status))
	}

	return panelStyle.Width(max(m.width-2, 20)).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(m.title),
			"",
			m.viewport.View(),
			systemStyle.Render(strings.Repeat("─", max(m.viewport.Width-2, 1))),
			footer.String(),
		),
	)
}

func (m ConsoleUI) renderDiceModal() string {
	roll := m.session.roll
	var body strings.Builder
	body.WriteString(modalTitleStyle.Render("DICE CHECK") + "\n\n")
	body.WriteString(roll.prompt + "\n")
	body.WriteString(fmt.Sprintf("Target: %d\n\n", roll.target))

	if roll.result == nil {
		body.WriteString(systemStyle.Render("r: roll the d20"))
	} else {
		body.WriteString(rollStyle.Render(formatRoll(roll.prompt, *roll.result)) + "\n\n")
		body.WriteString(systemStyle.Render("enter: continue"))
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		modalStyle.Render(body.String()))
}

func formatRoll(prompt string, res dice.Result) string {
	outcome := "Failure"
	if res.Success {
		outcome = "Success"
	}
	if res.Modifier == 0 {
		return fmt.Sprintf("%s: rolled %d vs %d. %s", prompt, res.Natural, res.Target, outcome)
	}
	return fmt.Sprintf("%s: rolled %d %+d (%s) = %d vs %d. %s",
		prompt, res.Natural, res.Modifier, res.Attribute, res.Total, res.Target, outcome)
}
