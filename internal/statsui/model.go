// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/adaptype/internal/model"
	"github.com/verte-zerg/adaptype/internal/stats"
)

const (
	tabOverview = iota
	tabCharTable
	tabFocus
)

const (
	defaultWindow   = 5
	trendLabelWidth = 16
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	agg    *model.Aggregate
	rec    model.Recommendation
	now    func() time.Time
	window int

	tabs      []string
	activeTab int
	viewports []viewport.Model
	charTable table.Model

	width  int
	height int

	charSelection []string
	charInputMode bool
	charInput     textinput.Model
}

// NewModel constructs a stats UI model over a loaded aggregate.
func NewModel(agg *model.Aggregate, rec model.Recommendation, window int) *Model {
	if agg == nil {
		agg = model.NewAggregate()
	}
	if window < 1 {
		window = defaultWindow
	}
	m := &Model{
		agg:    agg,
		rec:    rec,
		now:    time.Now,
		window: window,
		tabs:   []string{"Overview", "Characters", "Focus"},
	}
	m.initCharInput()
	m.initViewports()
	m.charTable = table.New(table.WithHeight(1))
	m.charTable.SetStyles(charTableStyles())
	m.refresh()
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
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.charInputMode {
			return m.updateCharInput(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.window++
			m.refresh()
			return m, nil
		case "-":
			if m.window > 1 {
				m.window--
			}
			m.refresh()
			return m, nil
		case "enter":
			if m.activeTab == tabCharTable {
				return m.startCharInput()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabCharTable {
				m.charTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabCharTable {
				m.charTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabCharTable {
				var cmd tea.Cmd
				m.charTable, cmd = m.charTable.Update(msg)
				return m, cmd
			}
			var cmd tea.Cmd
			m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.charInputMode {
		return fitLines(m.renderCharModal(), m.width, m.height)
	}
	headerHeight, bodyHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(headerStyle.Render(m.helpLine()), m.width, 1)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initCharInput() {
	input := textinput.New()
	input.Prompt = "Chars: "
	input.Placeholder = "asdfjkl;"
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	m.charInput = input
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	headerHeight = tabsHeight + 1
	bodyHeight = maxInt(1, m.height-headerHeight-1)
	return headerHeight, bodyHeight
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	if m.activeTab == tabCharTable {
		m.charTable.Focus()
	} else {
		m.charTable.Blur()
	}
}

func (m *Model) refresh() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = width
		m.viewports[i].Height = bodyHeight
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.agg, m.window, width))
	m.viewports[tabFocus].SetContent(renderFocus(m.agg, m.rec, m.now()))

	cols, rows := charTableData(m.selectedAggregate(), m.now())
	m.charTable.SetRows(nil)
	m.charTable.SetColumns(cols)
	m.charTable.SetRows(rows)
	m.charTable.SetWidth(width)
	m.charTable.SetHeight(maxInt(1, bodyHeight-1))

	promptWidth := lipgloss.Width(m.charInput.Prompt)
	m.charInput.Width = maxInt(10, modalInnerWidth(width)-promptWidth)
}

// selectedAggregate narrows the character table to the chosen characters.
func (m *Model) selectedAggregate() *model.Aggregate {
	if len(m.charSelection) == 0 {
		return m.agg
	}
	sub := model.NewAggregate()
	for _, ch := range m.charSelection {
		if c, ok := m.agg.Chars[ch]; ok {
			sub.Chars[ch] = c
		}
	}
	return sub
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	chars := "all"
	if len(m.charSelection) > 0 {
		chars = strings.Join(m.charSelection, "")
	}
	summary := fmt.Sprintf("Trend window=%d  chars=%s  next=%s", m.window, chars, m.rec.Lesson)
	return m.renderTabs() + "\n" + headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) helpLine() string {
	if m.activeTab == tabCharTable {
		return "Nav: left/right  Scroll: up/down  Filter chars: enter  Window: -/=  Quit: q"
	}
	return "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Quit: q"
}

func (m *Model) renderBody() string {
	if m.activeTab == tabCharTable {
		if len(m.charTable.Rows()) == 0 {
			return "No character stats found."
		}
		return tableMutedStyle.Render(m.charTable.View())
	}
	return m.viewports[m.activeTab].View()
}

func renderOverview(agg *model.Aggregate, window, width int) string {
	if len(agg.History) == 0 {
		return "No sessions found."
	}
	var totalWPM, totalAcc, bestWPM float64
	for _, s := range agg.History {
		totalWPM += s.WPM
		totalAcc += s.Accuracy
		bestWPM = max(bestWPM, s.WPM)
	}
	count := float64(len(agg.History))
	cards := []string{
		metricCard("Sessions", humanize.Comma(int64(agg.TotalSessions))),
		metricCard("Keystrokes", humanize.Comma(int64(agg.TotalKeystrokes))),
		metricCard("Avg WPM", fmt.Sprintf("%.1f", totalWPM/count)),
		metricCard("Best WPM", fmt.Sprintf("%.1f", bestWPM)),
		metricCard("Avg Acc", fmt.Sprintf("%.1f%%", totalAcc/count)),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
		summary = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}

	trend := stats.HistoryTrend(agg.History, window, maxInt(1, width-trendLabelWidth))
	lines := []string{
		summary,
		"",
		"WPM trend:      " + stats.Sparkline(trend.WPM),
		"Accuracy trend: " + stats.Sparkline(trend.Accuracy),
		"",
		"Mastery: " + masteryDistribution(agg),
	}
	return strings.Join(lines, "\n")
}

func masteryDistribution(agg *model.Aggregate) string {
	counts := make(map[model.MasteryLevel]int, len(model.MasteryLevels))
	for _, c := range agg.Chars {
		counts[c.Mastery]++
	}
	parts := make([]string, 0, len(model.MasteryLevels))
	for _, level := range model.MasteryLevels {
		parts = append(parts, fmt.Sprintf("%s %d", level, counts[level]))
	}
	return strings.Join(parts, "  ")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderFocus(agg *model.Aggregate, rec model.Recommendation, now time.Time) string {
	var buf bytes.Buffer
	if err := stats.RenderFocus(&buf, agg, now); err != nil {
		return fmt.Sprintf("Failed to render focus: %v", err)
	}
	fmt.Fprintf(&buf, "Next lesson: %s (%.0f%% confidence)\n%s", rec.Lesson, rec.Confidence*100, rec.Reason)
	return buf.String()
}

func charTableData(agg *model.Aggregate, now time.Time) ([]table.Column, []table.Row) {
	raw := stats.CharTableRows(agg, now, 0)
	columns := make([]table.Column, len(stats.CharTableHeaders))
	for i, title := range stats.CharTableHeaders {
		width := lipgloss.Width(title)
		for _, row := range raw {
			width = maxInt(width, lipgloss.Width(row[i]))
		}
		columns[i] = table.Column{Title: title, Width: width}
	}
	rows := make([]table.Row, len(raw))
	for i, row := range raw {
		rows[i] = table.Row(row)
	}
	return columns, rows
}

func charTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) startCharInput() (tea.Model, tea.Cmd) {
	m.charInputMode = true
	m.charInput.SetValue(strings.Join(m.charSelection, ""))
	return m, m.charInput.Focus()
}

func (m *Model) updateCharInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.charInputMode = false
		return m, nil
	case tea.KeyEnter:
		m.charSelection = parseRawChars(normalizeCharInput(m.charInput.Value()))
		m.charInputMode = false
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.charInput, cmd = m.charInput.Update(msg)
	normalized := normalizeCharInput(m.charInput.Value())
	if normalized != m.charInput.Value() {
		m.charInput.SetValue(normalized)
	}
	return m, cmd
}

func (m *Model) renderCharModal() string {
	body := []string{
		cardValueStyle.Render("Select Characters"),
		m.charInput.View(),
		headerStyle.Render("Type characters (no commas). Leave empty for all."),
		headerStyle.Render("Enter to apply / Esc to cancel"),
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func parseRawChars(input string) []string {
	out := make([]string, 0, len([]rune(input)))
	seen := make(map[rune]bool)
	for _, r := range input {
		if unicode.IsSpace(r) || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, string(r))
	}
	return out
}

func normalizeCharInput(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r == ',' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func modalWidth(width int) int {
	return maxInt(40, min(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width)
	w -= 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
