package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/courtgram/internal/content"
	"github.com/verte-zerg/courtgram/internal/model"
)

var base = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func sampleProgress() model.UserProgress {
	p := model.DefaultProgress()
	p.CompletedLessons = []string{"punct-1", "gram-1"}
	p.QuizResults = []model.QuizResult{
		{Score: 75, Category: "all", Difficulty: "mixed", QuestionCount: 4, CorrectAnswers: 3, Timestamp: base.AddDate(0, 0, -2)},
		{Score: 100, Category: "grammar", Difficulty: "beginner", QuestionCount: 2, CorrectAnswers: 2, Timestamp: base},
	}
	p.PracticeScores = []model.PracticeResult{
		{Score: 80, ExerciseCount: 5, Timestamp: base.AddDate(0, 0, -1)},
	}
	p.PracticeStats = model.PracticeStats{TotalExercises: 5, CorrectAnswers: 4, AverageScore: 80}
	return p
}

func TestAverageScore(t *testing.T) {
	require.Zero(t, AverageScore(nil))
	require.Equal(t, 88, AverageScore([]int{75, 100}))
	require.Equal(t, 67, AverageScore([]int{100, 100, 0}))
}

func TestRecentActivityNewestFirst(t *testing.T) {
	items := RecentActivity(sampleProgress(), 10)
	require.Len(t, items, 3)
	require.Equal(t, []string{"quiz", "practice", "quiz"}, []string{items[0].Kind, items[1].Kind, items[2].Kind})
	require.Equal(t, 100, items[0].Score)
	require.Equal(t, "grammar / beginner (2/2)", items[0].Label)

	require.Len(t, RecentActivity(sampleProgress(), 1), 1)
	require.Empty(t, RecentActivity(model.DefaultProgress(), 5))
}

func TestSkillAreas(t *testing.T) {
	cat, err := content.Default()
	require.NoError(t, err)
	areas := SkillAreas(sampleProgress(), cat)
	require.Len(t, areas, 3)
	require.Equal(t, SkillArea{ID: "punctuation", Title: areas[0].Title, Completed: 1, Total: 2}, areas[0])
	require.Equal(t, 50, areas[0].Percent())
	require.Equal(t, 100, areas[1].Percent())
	require.Zero(t, areas[2].Completed)
}

func TestStreak(t *testing.T) {
	p := sampleProgress()
	require.Equal(t, 3, Streak(p, base.Add(time.Hour)))
	// Nothing today yet: the streak through yesterday still counts.
	require.Equal(t, 3, Streak(p, base.AddDate(0, 0, 1)))
	require.Zero(t, Streak(p, base.AddDate(0, 0, 2)))
	require.Zero(t, Streak(model.DefaultProgress(), base))

	p.PracticeScores = nil
	require.Equal(t, 1, Streak(p, base))
}

func TestSummarize(t *testing.T) {
	cat, err := content.Default()
	require.NoError(t, err)
	s := Summarize(sampleProgress(), cat, base)
	require.Equal(t, 2, s.LessonsCompleted)
	require.Equal(t, 4, s.LessonsTotal)
	require.Equal(t, 2, s.QuizCount)
	require.Equal(t, 88, s.QuizAverage)
	require.Equal(t, 100, s.BestQuiz)
	require.Equal(t, 80, s.PracticeAverage)
	require.Equal(t, 3, s.Streak)
}

func TestSparklineFixedScale(t *testing.T) {
	require.Equal(t, "", Sparkline(nil))
	require.Equal(t, " @", Sparkline([]float64{0, 100}))
	require.Equal(t, "@@", Sparkline([]float64{100, 120}))
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{10, 20, 30, 40}, 2)
	require.Equal(t, []float64{10, 15, 25, 35}, got)
	require.Equal(t, []float64{1, 2}, MovingAverage([]float64{1, 2}, 1))
}

func TestRenderers(t *testing.T) {
	cat, err := content.Default()
	require.NoError(t, err)
	p := sampleProgress()

	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, Summarize(p, cat, base)))
	require.NoError(t, RenderActivity(&buf, RecentActivity(p, 5)))
	require.NoError(t, RenderSkills(&buf, SkillAreas(p, cat)))
	require.NoError(t, RenderTrends(&buf, p, 2, 60, 4, false))
	out := buf.String()
	for _, want := range []string{"Summary", "Lessons       2/4", "Recent Activity", "Skill Areas", "##########..........", "Trends", "Legend:"} {
		require.True(t, strings.Contains(out, want), "missing %q in\n%s", want, out)
	}

	buf.Reset()
	require.NoError(t, RenderActivity(&buf, nil))
	require.NoError(t, RenderTrends(&buf, model.DefaultProgress(), 2, 60, 4, false))
	require.Equal(t, "Recent Activity\nNo activity yet.\n\nTrends\nNo scores recorded yet.\n\n", buf.String())
}
