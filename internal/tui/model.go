// Package tui provides the Bubble Tea practice, quiz and scenario screens.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/courtgram/internal/assess"
	"github.com/verte-zerg/courtgram/internal/logger"
	"github.com/verte-zerg/courtgram/internal/model"
	statsPkg "github.com/verte-zerg/courtgram/internal/stats"
)

// Progress is the part of the progress store the screens use.
type Progress interface {
	assess.Recorder
	Snapshot() model.UserProgress
}

type screen int

const (
	screenAnswering screen = iota
	screenResults
)

// Model implements the Bubble Tea multiple-choice UI for quiz and practice runs.
type Model struct {
	ctx      context.Context
	kind     assess.Kind
	bank     []model.Question
	cfg      model.QuizConfig
	sel      *assess.Selector
	progress Progress
	log      *logger.Logger

	run     *assess.Run
	current int
	cursor  int
	screen  screen
	notice  string
	review  viewport.Model

	width  int
	height int

	lastScore int
	hasLast   bool
	allAvg    int
	allCount  int
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	optionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	chosenStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	midStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAAD14"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAAD14"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewQuizModel starts a quiz drawn from bank with cfg. Each retry draws a
// fresh selection.
func NewQuizModel(ctx context.Context, bank []model.Question, cfg model.QuizConfig, sel *assess.Selector, progress Progress, log *logger.Logger) *Model {
	m := newModel(ctx, assess.KindQuiz, bank, progress, log)
	m.cfg = cfg
	m.sel = sel
	m.startRun()
	return m
}

// NewPracticeModel starts a run over the fixed practice set.
func NewPracticeModel(ctx context.Context, exercises []model.Question, progress Progress, log *logger.Logger) *Model {
	m := newModel(ctx, assess.KindPractice, exercises, progress, log)
	m.startRun()
	return m
}

func newModel(ctx context.Context, kind assess.Kind, bank []model.Question, progress Progress, log *logger.Logger) *Model {
	if log == nil {
		log = logger.Nop()
	}
	m := &Model{
		ctx:      ctx,
		kind:     kind,
		bank:     bank,
		progress: progress,
		log:      log,
		review:   viewport.New(72, 12),
	}
	m.loadFooterStats()
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
		m.resizeReview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.screen == screenResults {
			return m.updateResults(msg)
		}
		m.updateAnswering(msg)
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) updateAnswering(msg tea.KeyMsg) {
	questions := m.run.Questions()
	if len(questions) == 0 {
		if msg.String() == "r" {
			m.startRun()
		}
		return
	}
	m.notice = ""
	q := questions[m.current]
	switch key := msg.String(); key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(q.Options)-1 {
			m.cursor++
		}
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		opt := int(key[0] - '1')
		if opt < len(q.Options) {
			m.cursor = opt
			m.choose(q.ID, opt)
		}
	case "enter", " ":
		m.choose(q.ID, m.cursor)
		if m.current < len(questions)-1 {
			m.move(1)
		}
	case "left", "h", "p":
		m.move(-1)
	case "right", "l", "n", "tab":
		m.move(1)
	case "s":
		m.submit()
	}
}

func (m *Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "r" {
		m.startRun()
		return m, nil
	}
	var cmd tea.Cmd
	m.review, cmd = m.review.Update(msg)
	return m, cmd
}

func (m *Model) choose(id, option int) {
	if err := m.run.Answer(id, option); err != nil {
		m.log.Debug("answer rejected", "question", id, "option", option, "error", err)
	}
}

func (m *Model) move(delta int) {
	next := m.current + delta
	if next < 0 || next >= len(m.run.Questions()) {
		return
	}
	m.current = next
	m.cursor = 0
	if chosen, ok := m.run.Choice(m.run.Questions()[next].ID); ok {
		m.cursor = chosen
	}
}

func (m *Model) submit() {
	total := len(m.run.Questions())
	if !m.run.Complete() {
		m.notice = fmt.Sprintf("Answer every question before submitting (%d/%d answered).", m.run.Answered(), total)
		return
	}
	score, err := m.run.Submit(m.ctx, m.progress)
	if err != nil {
		m.log.Warn("result not saved", "kind", m.kind.String(), "error", err)
		m.notice = "Your result is shown but could not be saved."
	}
	m.log.Info("run submitted", "kind", m.kind.String(), "score", score.Percentage, "questions", score.Total)
	m.screen = screenResults
	m.lastScore = score.Percentage
	m.hasLast = true
	m.loadFooterStats()
	m.review.SetContent(m.renderReview())
	m.review.GotoTop()
}

// startRun begins a new attempt. Quizzes reselect from the bank.
func (m *Model) startRun() {
	if m.kind == assess.KindQuiz {
		m.run = assess.NewQuizRun(m.cfg, m.sel.Select(m.bank, m.cfg))
	} else {
		m.run = assess.NewPracticeRun(m.bank)
	}
	m.current = 0
	m.cursor = 0
	m.screen = screenAnswering
	m.notice = ""
}

func (m *Model) loadFooterStats() {
	if m.progress == nil {
		return
	}
	snap := m.progress.Snapshot()
	scores := statsPkg.PracticeScores(snap)
	if m.kind == assess.KindQuiz {
		scores = statsPkg.QuizScores(snap)
	}
	m.allCount = len(scores)
	m.allAvg = statsPkg.AverageScore(scores)
	if !m.hasLast && len(scores) > 0 {
		m.lastScore = scores[len(scores)-1]
		m.hasLast = true
	}
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 72
	}
	w := int(float64(m.width) * 0.70)
	if w < 20 {
		w = m.width
	}
	return w
}

func (m *Model) resizeReview() {
	m.review.Width = m.contentWidth()
	h := m.height - 6
	if h < 3 {
		h = 3
	}
	m.review.Height = h
	if m.screen == screenResults {
		m.review.SetContent(m.renderReview())
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	if m.screen == screenResults {
		body = m.viewResults()
	} else {
		body = m.viewQuestion()
	}
	if m.width == 0 || m.height == 0 {
		return body + "\n" + m.renderFooter()
	}
	content := lipgloss.NewStyle().Width(m.contentWidth()).Render(body)
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	main := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return main + "\n" + footerLine
}

func (m *Model) title() string {
	if m.kind == assess.KindQuiz {
		return fmt.Sprintf("Quiz · %s · %s", categoryLabel(m.cfg.Category), difficultyLabel(m.cfg.Difficulty))
	}
	return "Grammar Practice"
}

func (m *Model) viewQuestion() string {
	questions := m.run.Questions()
	width := m.contentWidth()
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title()))
	b.WriteString("\n\n")
	if len(questions) == 0 {
		b.WriteString(noticeStyle.Render(wrapText("No questions match this category and difficulty. Try `all` or `mixed`.", width)))
		b.WriteString("\n\n")
		b.WriteString(footerStyle.Render("q quit"))
		return b.String()
	}
	q := questions[m.current]
	fmt.Fprintf(&b, "Question %d of %d  ·  %s  ·  %s\n\n", m.current+1, len(questions), q.Category, q.Difficulty)
	b.WriteString(promptStyle.Render(wrapText(q.Prompt, width)))
	b.WriteString("\n\n")
	chosen, answered := m.run.Choice(q.ID)
	for i, opt := range q.Options {
		marker := "  "
		style := optionStyle
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}
		box := "( )"
		if answered && chosen == i {
			box = "(•)"
			style = chosenStyle
		}
		text := indentTail(wrapText(opt, width-8), "        ")
		fmt.Fprintf(&b, "%s%s %d. %s\n", marker, box, i+1, style.Render(text))
	}
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(wrapText(m.notice, width)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("↑/↓ move  1-4 choose  enter choose+next  ←/→ prev/next  s submit  q quit"))
	return b.String()
}

func (m *Model) viewResults() string {
	var b strings.Builder
	res := m.run.Result()
	heading := "Practice Complete!"
	if m.kind == assess.KindQuiz {
		heading = "Quiz Complete!"
	}
	b.WriteString(titleStyle.Render(heading))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Your Score: %s  (%d out of %d correct)\n", bandStyle(assess.Grade(m.kind, res.Percentage)).Render(fmt.Sprintf("%d%%", res.Percentage)), res.Correct, res.Total)
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.review.View())
	b.WriteString("\n\n")
	again := "r practice again"
	if m.kind == assess.KindQuiz {
		again = "r take another quiz"
	}
	b.WriteString(footerStyle.Render("↑/↓ scroll  " + again + "  q quit"))
	return b.String()
}

func (m *Model) renderReview() string {
	width := m.contentWidth() - 3
	var b strings.Builder
	for i, item := range m.run.Review() {
		mark := correctStyle.Render("✓")
		answerStyle := correctStyle
		if !item.Correct {
			mark = incorrectStyle.Render("✗")
			answerStyle = incorrectStyle
		}
		fmt.Fprintf(&b, "%s %s\n", mark, indentTail(wrapText(fmt.Sprintf("%d. %s", i+1, item.Question.Prompt), width), "  "))
		chosen := item.ChosenText()
		if chosen == "" {
			chosen = "(no answer)"
		}
		b.WriteString(answerStyle.Render(indent(wrapText("Your answer: "+chosen, width), "  ")))
		b.WriteString("\n")
		if !item.Correct {
			b.WriteString(correctStyle.Render(indent(wrapText("Correct answer: "+item.CorrectText(), width), "  ")))
			b.WriteString("\n")
		}
		if item.Question.Explanation != "" {
			b.WriteString(optionStyle.Render(indent(wrapText(item.Question.Explanation, width), "  ")))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if n := len(m.run.Questions()); n > 0 && m.screen == screenAnswering {
		segments = append(segments, fmt.Sprintf("Answered %d/%d", m.run.Answered(), n))
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %d%%", m.lastScore))
	}
	segments = append(segments, fmt.Sprintf("All-time %d%% over %d %s", m.allAvg, m.allCount, plural(m.allCount, m.kindNoun())))
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) kindNoun() string {
	if m.kind == assess.KindQuiz {
		return "quiz"
	}
	return "set"
}

func plural(n int, noun string) string {
	if n == 1 {
		return noun
	}
	if strings.HasSuffix(noun, "z") {
		return noun + "zes"
	}
	return noun + "s"
}

func bandStyle(b assess.Band) lipgloss.Style {
	switch b {
	case assess.BandHigh:
		return correctStyle.Bold(true)
	case assess.BandMid:
		return midStyle.Bold(true)
	default:
		return incorrectStyle.Bold(true)
	}
}

func categoryLabel(c string) string {
	if c == "" {
		return model.CategoryAll
	}
	return c
}

func difficultyLabel(d model.Difficulty) string {
	if d == "" {
		return string(model.DifficultyMixed)
	}
	return string(d)
}

// indentTail indents every line after the first.
func indentTail(s, pad string) string {
	return strings.ReplaceAll(s, "\n", "\n"+pad)
}
