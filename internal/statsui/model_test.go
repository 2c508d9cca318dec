package statsui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/courtgram/internal/content"
	"github.com/verte-zerg/courtgram/internal/model"
)

type fakeSource struct {
	p model.UserProgress
}

func (f *fakeSource) Snapshot() model.UserProgress { return f.p.Clone() }

func sampleSource() *fakeSource {
	p := model.DefaultProgress()
	p.CompletedLessons = []string{"gram-1"}
	p.QuizResults = []model.QuizResult{
		{Score: 50, Category: "punctuation", Difficulty: "beginner", QuestionCount: 2, CorrectAnswers: 1, Timestamp: time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)},
		{Score: 100, Category: "grammar", Difficulty: "mixed", QuestionCount: 3, CorrectAnswers: 3, Timestamp: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)},
	}
	return &fakeSource{p: p}
}

func newSized(t *testing.T, src Source) *Model {
	t.Helper()
	cat, err := content.Default()
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	m := NewModel(src, cat, 3)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func TestOverviewShowsSummary(t *testing.T) {
	m := newSized(t, sampleSource())
	view := m.View()
	for _, want := range []string{"Overview", "Court Reporter", "Lessons", "1/4", "Quiz Avg", "75%", "Skill Areas"} {
		if !strings.Contains(view, want) {
			t.Fatalf("overview missing %q:\n%s", want, view)
		}
	}
	if lines := strings.Split(view, "\n"); len(lines) != 40 {
		t.Fatalf("expected view to fill 40 lines, got %d", len(lines))
	}
}

func TestActivityTabListsNewestFirst(t *testing.T) {
	m := newSized(t, sampleSource())
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabActivity {
		t.Fatalf("expected activity tab, got %d", m.activeTab)
	}
	rows := m.activity.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !strings.HasPrefix(rows[0][2], "grammar") {
		t.Fatalf("expected newest first, got %v", rows[0])
	}
}

func TestTabsWrapAround(t *testing.T) {
	m := newSized(t, sampleSource())
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabTrends {
		t.Fatalf("expected wrap to trends, got %d", m.activeTab)
	}
	if !strings.Contains(m.View(), "Trends") {
		t.Fatalf("expected trends content")
	}
}

func TestWindowKeysClamp(t *testing.T) {
	m := newSized(t, sampleSource())
	for i := 0; i < 5; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	}
	if m.window != 1 {
		t.Fatalf("expected window clamp at 1, got %d", m.window)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("=")})
	if m.window != 2 {
		t.Fatalf("expected window 2, got %d", m.window)
	}
}

func TestReloadPicksUpNewResults(t *testing.T) {
	src := sampleSource()
	m := newSized(t, src)
	src.p.PracticeScores = append(src.p.PracticeScores, model.PracticeResult{Score: 80, ExerciseCount: 5, Timestamp: time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if got := len(m.activity.Rows()); got != 3 {
		t.Fatalf("expected 3 rows after reload, got %d", got)
	}
}

func TestEmptyProgress(t *testing.T) {
	m := newSized(t, &fakeSource{p: model.DefaultProgress()})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if !strings.Contains(m.View(), "No quiz or practice results yet.") {
		t.Fatalf("expected empty activity message")
	}
}
