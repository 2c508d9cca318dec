// Package statsui provides the Bubble Tea progress dashboard.
package statsui

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/courtgram/internal/content"
	"github.com/verte-zerg/courtgram/internal/model"
	"github.com/verte-zerg/courtgram/internal/stats"
)

const (
	tabOverview = iota
	tabActivity
	tabTrends
)

const (
	plotHeight    = 8
	activityLimit = 50
	maxWindow     = 20
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
	barFullStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	barEmptyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
)

// Source yields the current progress record.
type Source interface {
	Snapshot() model.UserProgress
}

// Model implements the Bubble Tea progress dashboard.
type Model struct {
	src    Source
	cat    *content.Catalog
	now    func() time.Time
	window int

	progress model.UserProgress

	tabs      []string
	activeTab int
	viewports []viewport.Model
	activity  table.Model

	width  int
	height int
}

// NewModel constructs a dashboard over src. window is the moving-average
// size of the trend plot.
func NewModel(src Source, cat *content.Catalog, window int) *Model {
	if window < 1 {
		window = 1
	}
	m := &Model{
		src:    src,
		cat:    cat,
		now:    time.Now,
		window: window,
		tabs:   []string{"Overview", "Activity", "Trends"},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.activity = table.New(
		table.WithColumns(activityColumns(80)),
		table.WithStyles(activityTableStyles()),
	)
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
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h", "shift+tab":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=", "+":
			if m.window < maxWindow {
				m.window++
				m.renderTabContents()
			}
			return m, nil
		case "-":
			if m.window > 1 {
				m.window--
				m.renderTabContents()
			}
			return m, nil
		case "r":
			m.refresh()
			return m, nil
		case "g", "home":
			if m.activeTab == tabActivity {
				m.activity.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabActivity {
				m.activity.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		}
		if m.activeTab == tabActivity {
			var cmd tea.Cmd
			m.activity, cmd = m.activity.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(headerStyle.Render(m.renderHelp()), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) refresh() {
	m.progress = m.src.Snapshot()
	m.activity.SetRows(activityRows(stats.RecentActivity(m.progress, activityLimit)))
	m.renderTabContents()
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.activity.SetColumns(activityColumns(m.width))
	m.activity.SetWidth(m.width)
	m.activity.SetHeight(maxInt(1, bodyHeight-1))
}

func (m *Model) moveTab(delta int) {
	next := (m.activeTab + delta + len(m.tabs)) % len(m.tabs)
	m.activeTab = next
	if m.activeTab == tabActivity {
		m.activity.Focus()
	} else {
		m.activity.Blur()
	}
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
	p := m.progress
	line := fmt.Sprintf("%s  ·  %s  ·  preferred difficulty %s  ·  trend window %d", p.Name, p.Level, p.Preferences.Difficulty, m.window)
	return padLines(m.renderTabs(), m.width) + "\n" + headerStyle.Render(truncateLine(line, m.width))
}

func (m *Model) renderHelp() string {
	return "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Reload: r  Quit: q"
}

func (m *Model) renderBody() string {
	if m.activeTab == tabActivity {
		if len(m.activity.Rows()) == 0 {
			return "No quiz or practice results yet."
		}
		return tableMutedStyle.Render(m.activity.View())
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) renderTabContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.progress, m.cat, m.now(), width))
	m.viewports[tabTrends].SetContent(renderTrends(m.progress, m.window, width))
}

func renderOverview(p model.UserProgress, cat *content.Catalog, now time.Time, width int) string {
	s := stats.Summarize(p, cat, now)
	cards := []string{
		metricCard("Lessons", fmt.Sprintf("%d/%d", s.LessonsCompleted, s.LessonsTotal)),
		metricCard("Quizzes", fmt.Sprintf("%d", s.QuizCount)),
		metricCard("Quiz Avg", fmt.Sprintf("%d%%", s.QuizAverage)),
		metricCard("Practice Avg", fmt.Sprintf("%d%%", s.PracticeStats.AverageScore)),
		metricCard("Exercises", fmt.Sprintf("%d", s.PracticeStats.TotalExercises)),
		metricCard("Streak", fmt.Sprintf("%d day(s)", s.Streak)),
	}
	var top string
	if width < 80 {
		top = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
		top = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}
	return top + "\n\n" + renderSkillBars(stats.SkillAreas(p, cat), width)
}

func renderSkillBars(areas []stats.SkillArea, width int) string {
	if len(areas) == 0 {
		return ""
	}
	labelWidth := 0
	for _, a := range areas {
		labelWidth = maxInt(labelWidth, lipgloss.Width(a.Title))
	}
	barWidth := minInt(30, maxInt(10, width-labelWidth-12))
	lines := []string{cardTitleStyle.Render("Skill Areas")}
	for _, a := range areas {
		filled := model.ScaleRound(a.Percent(), barWidth)
		bar := barFullStyle.Render(strings.Repeat("█", filled)) + barEmptyStyle.Render(strings.Repeat("░", barWidth-filled))
		lines = append(lines, fmt.Sprintf("%-*s %s %3d%%", labelWidth, a.Title, bar, a.Percent()))
	}
	return strings.Join(lines, "\n")
}

func metricCard(label, value string) string {
	body := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(body)
}

func renderTrends(p model.UserProgress, window, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderTrends(&buf, p, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render trends: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func activityColumns(width int) []table.Column {
	detail := maxInt(20, width-16-10-6-4)
	return []table.Column{
		{Title: "When", Width: 16},
		{Title: "Kind", Width: 8},
		{Title: "Detail", Width: detail},
		{Title: "Score", Width: 6},
	}
}

func activityRows(items []stats.Activity) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, a := range items {
		rows = append(rows, table.Row{
			a.Timestamp.Local().Format("2006-01-02 15:04"),
			a.Kind,
			a.Label,
			fmt.Sprintf("%5d%%", a.Score),
		})
	}
	return rows
}

func activityTableStyles() table.Styles {
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

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
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
