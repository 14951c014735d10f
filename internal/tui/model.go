// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/verte-zerg/adaptype/internal/model"
)

const (
	lessonAdaptive = "adaptive"
	lessonBalanced = "balanced"
)

// Coach is the application service the screen reports sessions to.
type Coach interface {
	Complete(ctx context.Context, in model.SessionInput) (model.SessionSummary, error)
	PracticeText(length int, adaptive bool) string
	Recommendation() model.Recommendation
	AdaptiveAvailable() bool
	WeakChars() []string
	Aggregate() *model.Aggregate
}

type keyMap struct {
	Quit           key.Binding
	Restart        key.Binding
	ToggleAdaptive key.Binding
}

var keys = keyMap{
	Quit:           key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Restart:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "new text")),
	ToggleAdaptive: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "toggle adaptive")),
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	config model.Config
	coach  Coach
	logger *log.Logger
	now    func() time.Time

	width  int
	height int

	targetRunes []rune
	inputRunes  []rune
	keystrokes  []model.Keystroke
	pressed     int
	adaptive    bool
	focus       map[rune]struct{}

	started   bool
	startedAt time.Time

	last    model.SessionSummary
	hasLast bool
	status  string

	allWPM float64
	allAcc float64
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	focusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFD7"))
	cursorStyle      = pendingStyle.Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a typing TUI model.
func NewModel(cfg model.Config, coach Coach, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := &Model{
		config: cfg,
		coach:  coach,
		logger: logger,
		now:    time.Now,
	}
	m.adaptive = cfg.Adaptive && coach.AdaptiveAvailable()
	if cfg.Adaptive && !m.adaptive {
		m.status = "adaptive mode unlocks after more practice"
	}
	m.loadFooterStats()
	m.resetSession()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Restart):
			m.resetSession()
			return m, nil
		case key.Matches(msg, keys.ToggleAdaptive):
			m.toggleAdaptive()
			return m, nil
		}
		switch msg.Type {
		case tea.KeyBackspace, tea.KeyDelete:
			m.handleBackspace()
		case tea.KeySpace:
			m.handleRunes([]rune{' '})
		case tea.KeyRunes:
			m.handleRunes(msg.Runes)
		}
		return m, nil
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if len(m.targetRunes) == 0 {
		return ""
	}
	cursorIndex := -1
	if len(m.inputRunes) < len(m.targetRunes) {
		cursorIndex = len(m.inputRunes)
	}
	styledRunes := buildStyledRunes(m.targetRunes, m.inputRunes, cursorIndex, m.focus)
	if m.width == 0 || m.height == 0 {
		return renderStyledRunes(styledRunes)
	}
	contentWidth := max(int(float64(m.width)*0.70), 1)
	wrapped := wrapStyledRunes(styledRunes, contentWidth)
	content := lipgloss.NewStyle().Width(contentWidth).Render(wrapped)
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) handleBackspace() {
	if len(m.inputRunes) == 0 {
		return
	}
	m.inputRunes = m.inputRunes[:len(m.inputRunes)-1]
	m.keystrokes = m.keystrokes[:len(m.keystrokes)-1]
}

func (m *Model) handleRunes(runes []rune) {
	for _, r := range runes {
		if len(m.inputRunes) >= len(m.targetRunes) {
			return
		}
		now := m.now()
		if !m.started {
			m.started = true
			m.startedAt = now
		}
		expected := m.targetRunes[len(m.inputRunes)]
		m.inputRunes = append(m.inputRunes, r)
		m.keystrokes = append(m.keystrokes, model.NewKeystroke(expected, r, now.Sub(m.startedAt)))
		m.pressed++
		if len(m.inputRunes) == len(m.targetRunes) {
			m.finishSession(now)
			m.resetSession()
		}
	}
}

func (m *Model) toggleAdaptive() {
	if !m.adaptive && !m.coach.AdaptiveAvailable() {
		m.status = "adaptive mode unlocks after more practice"
		return
	}
	m.adaptive = !m.adaptive
	m.status = ""
	m.resetSession()
}

func (m *Model) loadFooterStats() {
	agg := m.coach.Aggregate()
	if agg == nil || len(agg.History) == 0 {
		return
	}
	m.last = agg.History[len(agg.History)-1]
	m.hasLast = true
	m.recomputeAllTime(agg.History)
}

func (m *Model) recomputeAllTime(history []model.SessionSummary) {
	if len(history) == 0 {
		return
	}
	var wpm, acc float64
	for _, s := range history {
		wpm += s.WPM
		acc += s.Accuracy
	}
	m.allWPM = wpm / float64(len(history))
	m.allAcc = acc / float64(len(history))
}

func (m *Model) renderFooter() string {
	if len(m.targetRunes) == 0 {
		return ""
	}
	progress := int(float64(len(m.inputRunes)) / float64(len(m.targetRunes)) * 100)
	segments := []string{fmt.Sprintf("Progress %d%%", progress)}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f WPM · %.1f%%", m.last.WPM, m.last.Accuracy))
		segments = append(segments, fmt.Sprintf("All-time %.1f WPM · %.1f%%", m.allWPM, m.allAcc))
	}
	mode := "off"
	if m.adaptive {
		mode = "on"
	}
	segments = append(segments, "Adaptive "+mode)
	rec := m.coach.Recommendation()
	segments = append(segments, fmt.Sprintf("Next: %s", rec.Lesson))
	if m.status != "" {
		segments = append(segments, m.status)
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) resetSession() {
	m.inputRunes = nil
	m.keystrokes = nil
	m.pressed = 0
	m.started = false
	m.startedAt = time.Time{}

	m.focus = map[rune]struct{}{}
	if m.adaptive {
		for _, ch := range m.coach.WeakChars() {
			for _, r := range ch {
				m.focus[r] = struct{}{}
			}
		}
	}
	length := m.config.Length
	if length <= 0 {
		length = model.DefaultLength
	}
	m.targetRunes = []rune(m.coach.PracticeText(length, m.adaptive))
}

func (m *Model) finishSession(endedAt time.Time) {
	if !m.started {
		return
	}
	lesson := lessonBalanced
	if m.adaptive {
		lesson = lessonAdaptive
	}
	in := model.SessionInput{
		ID:              uuid.NewString(),
		Lesson:          lesson,
		StartedAt:       m.startedAt,
		EndedAt:         endedAt,
		Keystrokes:      m.keystrokes,
		TotalKeystrokes: m.pressed,
	}
	summary, err := m.coach.Complete(context.Background(), in)
	if err != nil {
		m.logger.Error("failed to save session", "err", err)
		m.status = "stats not saved"
	} else if m.status == "stats not saved" {
		m.status = ""
	}
	m.last = summary
	m.hasLast = true
	if agg := m.coach.Aggregate(); agg != nil {
		m.recomputeAllTime(agg.History)
	}
	if !m.adaptive && m.config.Adaptive && m.coach.AdaptiveAvailable() {
		m.adaptive = true
		m.status = "adaptive mode unlocked"
	}
}
