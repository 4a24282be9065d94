// Package tui provides the Bubble Tea quiz interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/tuiquiz/internal/model"
	"github.com/verte-zerg/tuiquiz/internal/quiz"
)

type initMsg struct{}

type questionsLoadedMsg struct {
	questions []model.Question
	err       error
}

// Model implements the Bubble Tea quiz UI.
type Model struct {
	ctrl   *quiz.Controller
	clock  *teaClock
	screen *screenGateway
	keys   keyMap
	help   help.Model
	log    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	width  int
	height int

	cursor       int
	lastQuestion int
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	textStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	optionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#1A1A1A")).Background(lipgloss.Color("#C89A3A")).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	timerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	modalStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs the quiz UI. The controller is wired to the model's
// own clock and screen so every transition runs inside Update.
func NewModel(provider quiz.Provider, kv quiz.KV, opts quiz.Options) *Model {
	m := &Model{
		clock:  newTeaClock(),
		screen: newScreenGateway(),
		keys:   newKeyMap(),
		help:   help.New(),
		log:    opts.Logger,
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	if m.log == nil {
		m.log = zap.NewNop()
	}
	m.help.Styles.ShortKey = mutedStyle
	m.help.Styles.ShortDesc = footerStyle
	m.ctrl = quiz.New(provider, kv, m.clock, m.screen, opts)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return func() tea.Msg { return initMsg{} }
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case initMsg:
		return m, m.loadQuestions()
	case questionsLoadedMsg:
		// Load errors are logged by the controller and shown on screen.
		_ = m.ctrl.ApplyQuestions(m.ctx, msg.questions, msg.err)
	case timerMsg:
		m.clock.fire(msg.id)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.screen.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.cancel()
			m.ctrl.Close()
			return m, tea.Quit
		}
		m.handleKey(msg)
	}
	return m, m.flush()
}

// loadQuestions runs the provider off the event loop.
func (m *Model) loadQuestions() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		qs, err := ctrl.LoadQuestions(ctx)
		return questionsLoadedMsg{questions: qs, err: err}
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	v := m.ctrl.ViewModel()
	switch v.Phase {
	case model.PhaseNotStarted, model.PhaseCompleted:
		switch {
		case key.Matches(msg, m.keys.Start):
			m.cursor = 0
			m.ctrl.StartQuiz()
		case v.Phase == model.PhaseCompleted && key.Matches(msg, m.keys.Restart):
			m.ctrl.RestartQuiz()
		}
	case model.PhaseActive:
		if key.Matches(msg, m.keys.Restart) {
			m.ctrl.RestartQuiz()
			return
		}
		if v.NeedsFullscreen {
			if key.Matches(msg, m.keys.Fullscreen) {
				m.screen.RequestEnter()
			}
			return
		}
		m.handleAnswerKey(msg, v)
	}
}

func (m *Model) handleAnswerKey(msg tea.KeyMsg, v quiz.View) {
	if len(v.Options) == 0 {
		return
	}
	switch {
	case key.Matches(msg, m.keys.Leave):
		m.screen.exit()
	case key.Matches(msg, m.keys.Option):
		m.ctrl.SelectAnswer(int(msg.String()[0] - '1'))
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(v.Options)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Choose):
		m.ctrl.SelectAnswer(m.cursor)
	}
}

// flush reports fullscreen changes to the controller and collects the
// commands queued by the clock and the screen.
func (m *Model) flush() tea.Cmd {
	m.screen.sync()
	if v := m.ctrl.ViewModel(); v.QuestionNumber != m.lastQuestion {
		m.lastQuestion = v.QuestionNumber
		m.cursor = 0
	}
	cmds := append(m.clock.drain(), m.screen.drain()...)
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// View implements tea.Model.
func (m *Model) View() string {
	v := m.ctrl.ViewModel()
	content := m.renderContent(v)
	footer := footerStyle.Render(m.help.ShortHelpView(m.keys.bindingsFor(v)))
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 72
	}
	w := int(float64(m.width) * 0.70)
	if w < 1 {
		w = 1
	}
	return w
}

func (m *Model) renderContent(v quiz.View) string {
	switch v.Phase {
	case model.PhaseCompleted:
		return renderCompleted(v)
	case model.PhaseActive:
		if v.NeedsFullscreen {
			return renderFullscreenPrompt()
		}
		if v.Loading {
			return renderLoading(v)
		}
		return m.renderQuestion(v)
	default:
		return renderWelcome(v)
	}
}

func renderWelcome(v quiz.View) string {
	lines := []string{titleStyle.Render("Welcome to the Quiz")}
	switch {
	case v.LoadError != "":
		lines = append(lines, "", warningStyle.Render("Could not load questions: "+v.LoadError))
	case v.Loading:
		lines = append(lines, "", mutedStyle.Render("Loading questions..."))
	default:
		lines = append(lines, "", mutedStyle.Render(fmt.Sprintf("%d questions · %s", v.QuestionCount, v.TimeLeft)))
	}
	lines = append(lines, "", textStyle.Render("Press enter to start the quiz."))
	return strings.Join(lines, "\n")
}

func renderLoading(v quiz.View) string {
	if v.LoadError != "" {
		return warningStyle.Render("Could not load questions: " + v.LoadError)
	}
	return mutedStyle.Render("Loading questions...")
}

func renderFullscreenPrompt() string {
	text := warningStyle.Render("Please return to fullscreen mode to continue the quiz.") +
		"\n\n" + textStyle.Render("Press f to go fullscreen.")
	return modalStyle.Render(text)
}

func renderCompleted(v quiz.View) string {
	lines := []string{titleStyle.Render("Quiz Completed!"), ""}
	if v.Reason != model.ReasonTimeExpired {
		lines = append(lines, textStyle.Render(fmt.Sprintf("Your score: %d/%d", v.Score, v.QuestionCount)))
	}
	lines = append(lines, textStyle.Render(v.Feedback))
	return strings.Join(lines, "\n")
}

func (m *Model) renderQuestion(v quiz.View) string {
	width := m.contentWidth()
	lines := []string{
		timerStyle.Render("Time left: " + v.TimeLeft),
		"",
		mutedStyle.Render(fmt.Sprintf("Question %d/%d", v.QuestionNumber, v.QuestionCount)),
	}
	for _, line := range wrapText(v.Question, width) {
		lines = append(lines, titleStyle.Render(line))
	}
	lines = append(lines, "")
	for i, opt := range v.Options {
		style := optionStyle
		marker := "  "
		switch {
		case i == v.Selected:
			style = selectedStyle
		case v.Selected < 0 && i == m.cursor:
			style = cursorStyle
			marker = "› "
		}
		for _, line := range hangingIndent(fmt.Sprintf("%s%d. ", marker, i+1), opt, width) {
			lines = append(lines, style.Render(line))
		}
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}
