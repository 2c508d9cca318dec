// Package model defines shared data structures.
package model

import "time"

// Level is the self-reported profile level.
type Level string

// Profile levels.
const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Difficulty tags content and preferences.
type Difficulty string

// Content difficulties. DifficultyMixed is only meaningful as a quiz filter.
const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyMixed        Difficulty = "mixed"
)

// Valid reports whether d is a concrete difficulty (not mixed).
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// CategoryAll disables the category filter of a quiz.
const CategoryAll = "all"

// UserProgress is the single persisted record of a learner's history.
type UserProgress struct {
	Name             string           `json:"name"`
	Level            Level            `json:"level"`
	CompletedLessons []string         `json:"completedLessons"`
	QuizResults      []QuizResult     `json:"quizResults"`
	PracticeScores   []PracticeResult `json:"practiceScores"`
	PracticeStats    PracticeStats    `json:"practiceStats"`
	Preferences      Preferences      `json:"preferences"`
}

// QuizResult records one submitted quiz.
type QuizResult struct {
	Score          int       `json:"score"`
	Category       string    `json:"category"`
	Difficulty     string    `json:"difficulty"`
	QuestionCount  int       `json:"questionCount"`
	CorrectAnswers int       `json:"correctAnswers"`
	Timestamp      time.Time `json:"timestamp"`
}

// PracticeResult records one submitted practice set.
type PracticeResult struct {
	Score         int       `json:"score"`
	Timestamp     time.Time `json:"timestamp"`
	ExerciseCount int       `json:"exerciseCount"`
}

// PracticeStats is the rollup over every practice submission.
type PracticeStats struct {
	TotalExercises int `json:"totalExercises"`
	CorrectAnswers int `json:"correctAnswers"`
	AverageScore   int `json:"averageScore"`
}

// Preferences holds learner preferences.
type Preferences struct {
	Difficulty Difficulty `json:"difficulty"`
	FocusAreas []string   `json:"focusAreas"`
}

// DefaultProgress returns the record used when nothing usable is persisted.
func DefaultProgress() UserProgress {
	return UserProgress{
		Name:             "Court Reporter",
		Level:            LevelIntermediate,
		CompletedLessons: []string{},
		QuizResults:      []QuizResult{},
		PracticeScores:   []PracticeResult{},
		Preferences: Preferences{
			Difficulty: DifficultyIntermediate,
			FocusAreas: []string{"punctuation", "grammar"},
		},
	}
}

// Clone returns a deep copy of p.
func (p UserProgress) Clone() UserProgress {
	out := p
	out.CompletedLessons = append([]string{}, p.CompletedLessons...)
	out.QuizResults = append([]QuizResult{}, p.QuizResults...)
	out.PracticeScores = append([]PracticeResult{}, p.PracticeScores...)
	out.Preferences.FocusAreas = append([]string{}, p.Preferences.FocusAreas...)
	return out
}

// HasCompleted reports whether lessonID is in the completed set.
func (p UserProgress) HasCompleted(lessonID string) bool {
	for _, id := range p.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// Question is one multiple-choice item from the practice set or quiz bank.
type Question struct {
	ID          int        `toml:"id"`
	Category    string     `toml:"category"`
	Difficulty  Difficulty `toml:"difficulty"`
	Prompt      string     `toml:"prompt"`
	Options     []string   `toml:"options"`
	Correct     int        `toml:"correct"`
	Explanation string     `toml:"explanation"`
}

// QuizConfig selects questions for a quiz run.
type QuizConfig struct {
	Category   string
	Difficulty Difficulty
	Count      int
}

// Attempt maps question ids to the chosen option index.
type Attempt map[int]int

// Score is the outcome of scoring an attempt.
type Score struct {
	Percentage int
	Correct    int
	Total      int
}

// Percent returns round(100*part/whole) with halves rounded up, or 0 when whole is 0.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}

// ScaleRound returns round(pct/100*n) with halves rounded up.
func ScaleRound(pct, n int) int {
	return (2*pct*n + 100) / 200
}
