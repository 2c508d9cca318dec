// Package stats contains progress calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/courtgram/internal/content"
	"github.com/verte-zerg/courtgram/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary is the headline block of the progress report.
type Summary struct {
	Name             string
	Level            model.Level
	LessonsCompleted int
	LessonsTotal     int
	QuizCount        int
	QuizAverage      int
	BestQuiz         int
	PracticeSets     int
	PracticeAverage  int
	PracticeStats    model.PracticeStats
	Streak           int
}

// Summarize builds the report header from a progress snapshot.
func Summarize(p model.UserProgress, cat *content.Catalog, now time.Time) Summary {
	quiz := QuizScores(p)
	s := Summary{
		Name:             p.Name,
		Level:            p.Level,
		LessonsCompleted: len(p.CompletedLessons),
		QuizCount:        len(quiz),
		QuizAverage:      AverageScore(quiz),
		PracticeSets:     len(p.PracticeScores),
		PracticeAverage:  AverageScore(PracticeScores(p)),
		PracticeStats:    p.PracticeStats,
		Streak:           Streak(p, now),
	}
	for _, v := range quiz {
		if v > s.BestQuiz {
			s.BestQuiz = v
		}
	}
	if cat != nil {
		s.LessonsTotal = cat.LessonCount()
	}
	return s
}

// QuizScores returns quiz percentages in submission order.
func QuizScores(p model.UserProgress) []int {
	out := make([]int, len(p.QuizResults))
	for i, r := range p.QuizResults {
		out[i] = r.Score
	}
	return out
}

// PracticeScores returns practice percentages in submission order.
func PracticeScores(p model.UserProgress) []int {
	out := make([]int, len(p.PracticeScores))
	for i, r := range p.PracticeScores {
		out[i] = r.Score
	}
	return out
}

// AverageScore returns the rounded mean of scores, or 0 for none.
func AverageScore(scores []int) int {
	sum := 0
	for _, v := range scores {
		sum += v
	}
	return model.Percent(sum, len(scores)*100)
}

// Activity is one entry of the recent activity feed.
type Activity struct {
	Kind      string
	Label     string
	Score     int
	Timestamp time.Time
}

// RecentActivity merges quiz and practice results newest first and keeps at
// most n of them. Lessons carry no timestamp and are not listed.
func RecentActivity(p model.UserProgress, n int) []Activity {
	out := make([]Activity, 0, len(p.QuizResults)+len(p.PracticeScores))
	for _, r := range p.QuizResults {
		out = append(out, Activity{
			Kind:      "quiz",
			Label:     fmt.Sprintf("%s / %s (%d/%d)", r.Category, r.Difficulty, r.CorrectAnswers, r.QuestionCount),
			Score:     r.Score,
			Timestamp: r.Timestamp,
		})
	}
	for _, r := range p.PracticeScores {
		out = append(out, Activity{
			Kind:      "practice",
			Label:     fmt.Sprintf("%d exercises", r.ExerciseCount),
			Score:     r.Score,
			Timestamp: r.Timestamp,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// SkillArea is lesson completion for one lesson category.
type SkillArea struct {
	ID        string
	Title     string
	Completed int
	Total     int
}

// Percent returns the completion percentage of the area.
func (s SkillArea) Percent() int {
	return model.Percent(s.Completed, s.Total)
}

// SkillAreas reports completion per lesson category in catalog order.
func SkillAreas(p model.UserProgress, cat *content.Catalog) []SkillArea {
	if cat == nil {
		return nil
	}
	out := make([]SkillArea, 0, len(cat.LessonCategories))
	for _, c := range cat.LessonCategories {
		area := SkillArea{ID: c.ID, Title: c.Title, Total: len(c.Lessons)}
		for _, l := range c.Lessons {
			if p.HasCompleted(l.ID) {
				area.Completed++
			}
		}
		out = append(out, area)
	}
	return out
}

// Streak counts consecutive days, in now's location, with at least one quiz
// or practice result. The run must end today or yesterday.
func Streak(p model.UserProgress, now time.Time) int {
	days := map[string]struct{}{}
	mark := func(ts time.Time) {
		if ts.IsZero() {
			return
		}
		days[ts.In(now.Location()).Format(time.DateOnly)] = struct{}{}
	}
	for _, r := range p.QuizResults {
		mark(r.Timestamp)
	}
	for _, r := range p.PracticeScores {
		mark(r.Timestamp)
	}

	day := now
	if _, ok := days[day.Format(time.DateOnly)]; !ok {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for {
		if _, ok := days[day.Format(time.DateOnly)]; !ok {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for percentages. The
// scale is fixed at 0-100 so lines from different runs compare.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round(clampPct(v) / 100 * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func clampPct(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

func toFloats(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

// RenderSummary prints the headline block.
func RenderSummary(w io.Writer, s Summary) error {
	rows := [][]string{
		{"Name", s.Name},
		{"Level", string(s.Level)},
		{"Lessons", fmt.Sprintf("%d/%d", s.LessonsCompleted, s.LessonsTotal)},
		{"Quizzes", fmt.Sprintf("%d (avg %d%%, best %d%%)", s.QuizCount, s.QuizAverage, s.BestQuiz)},
		{"Practice sets", fmt.Sprintf("%d (avg %d%%)", s.PracticeSets, s.PracticeAverage)},
		{"Exercises", fmt.Sprintf("%d/%d correct (%d%%)", s.PracticeStats.CorrectAnswers, s.PracticeStats.TotalExercises, s.PracticeStats.AverageScore)},
		{"Streak", fmt.Sprintf("%d day(s)", s.Streak)},
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	return writeLines(w, formatTable(nil, rows, nil))
}

// RenderActivity prints the activity feed.
func RenderActivity(w io.Writer, items []Activity) error {
	if _, err := fmt.Fprintln(w, "Recent Activity"); err != nil {
		return err
	}
	if len(items) == 0 {
		_, err := fmt.Fprint(w, "No activity yet.\n\n")
		return err
	}
	rows := make([][]string, 0, len(items))
	for _, a := range items {
		rows = append(rows, []string{
			a.Timestamp.Local().Format("2006-01-02 15:04"),
			a.Kind,
			a.Label,
			fmt.Sprintf("%d%%", a.Score),
		})
	}
	return writeLines(w, formatTable([]string{"When", "Kind", "Detail", "Score"}, rows, map[int]bool{3: true}))
}

// RenderSkills prints lesson completion per category.
func RenderSkills(w io.Writer, areas []SkillArea) error {
	if _, err := fmt.Fprintln(w, "Skill Areas"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(areas))
	for _, a := range areas {
		rows = append(rows, []string{
			a.Title,
			fmt.Sprintf("%d/%d", a.Completed, a.Total),
			fmt.Sprintf("%d%%", a.Percent()),
			progressBar(a.Percent(), 20),
		})
	}
	return writeLines(w, formatTable([]string{"Area", "Lessons", "Done", ""}, rows, map[int]bool{1: true, 2: true}))
}

// RenderTrends prints score sparklines and, when there is enough history, a
// braille plot of the smoothed scores.
func RenderTrends(w io.Writer, p model.UserProgress, window, totalWidth, height int, useColor bool) error {
	quiz := toFloats(QuizScores(p))
	practice := toFloats(PracticeScores(p))
	if _, err := fmt.Fprintln(w, "Trends"); err != nil {
		return err
	}
	if len(quiz) == 0 && len(practice) == 0 {
		_, err := fmt.Fprint(w, "No scores recorded yet.\n\n")
		return err
	}
	rows := [][]string{
		{"Quiz", "[" + Sparkline(quiz) + "]"},
		{"Practice", "[" + Sparkline(practice) + "]"},
	}
	if err := writeLines(w, formatTable(nil, rows, nil)); err != nil {
		return err
	}
	if len(quiz) < 2 && len(practice) < 2 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeries(w, "Scores", []Series{
		{Name: "Quiz", Values: MovingAverage(quiz, window)},
		{Name: "Practice", Values: MovingAverage(practice, window)},
	}, width, height, useColor)
}

func progressBar(pct, width int) string {
	filled := model.ScaleRound(pct, width)
	if filled > width {
		filled = width
	}
	return strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
