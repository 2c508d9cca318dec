// Package progress owns the persisted user-progress record.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/verte-zerg/courtgram/internal/logger"
	"github.com/verte-zerg/courtgram/internal/model"
)

// Key is the medium key holding the JSON record.
const Key = "courtReportingUser"

var (
	// ErrPersist marks a failed write. The in-memory record was still updated.
	ErrPersist = errors.New("progress not saved")
	// ErrInvalidResult marks a result rejected before any mutation.
	ErrInvalidResult = errors.New("invalid result")
)

var requiredFields = []string{
	"name",
	"level",
	"completedLessons",
	"quizResults",
	"practiceScores",
	"practiceStats",
	"preferences",
}

// Medium is the key-value storage the record is written to.
type Medium interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for fail-soft warnings.
func WithLogger(log *logger.Logger) Option {
	return func(s *Store) { s.log = log }
}

// Store is the sole owner of the UserProgress record.
type Store struct {
	mu     sync.Mutex
	medium Medium
	now    func() time.Time
	log    *logger.Logger
	cur    model.UserProgress
}

// Open builds a Store and loads the persisted record.
func Open(ctx context.Context, medium Medium, opts ...Option) *Store {
	s := &Store{
		medium: medium,
		now:    time.Now,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Load(ctx)
	return s
}

// Load re-reads the record from the medium. Anything unusable yields the defaults.
func (s *Store) Load(ctx context.Context) model.UserProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = s.read(ctx)
	return s.cur.Clone()
}

// Snapshot returns a copy of the current record.
func (s *Store) Snapshot() model.UserProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.Clone()
}

// MarkLessonComplete adds lessonID to the completed set.
func (s *Store) MarkLessonComplete(ctx context.Context, lessonID string) (model.UserProgress, error) {
	return s.mutate(ctx, func(p *model.UserProgress) error {
		if !p.HasCompleted(lessonID) {
			p.CompletedLessons = append(p.CompletedLessons, lessonID)
		}
		return nil
	})
}

// RecordPracticeResult appends a practice result and updates the rollup.
func (s *Store) RecordPracticeResult(ctx context.Context, score, exerciseCount int) (model.UserProgress, error) {
	if !validScore(score) {
		return s.Snapshot(), fmt.Errorf("%w: practice score %d outside 0-100", ErrInvalidResult, score)
	}
	if exerciseCount <= 0 {
		return s.Snapshot(), fmt.Errorf("%w: exercise count must be > 0", ErrInvalidResult)
	}
	return s.mutate(ctx, func(p *model.UserProgress) error {
		p.PracticeScores = append(p.PracticeScores, model.PracticeResult{
			Score:         score,
			Timestamp:     s.now().UTC(),
			ExerciseCount: exerciseCount,
		})
		p.PracticeStats = addPractice(p.PracticeStats, score, exerciseCount)
		return nil
	})
}

// RecordQuizResult appends result. A zero timestamp is filled from the clock.
func (s *Store) RecordQuizResult(ctx context.Context, result model.QuizResult) (model.UserProgress, error) {
	if !validScore(result.Score) {
		return s.Snapshot(), fmt.Errorf("%w: quiz score %d outside 0-100", ErrInvalidResult, result.Score)
	}
	if result.QuestionCount <= 0 {
		return s.Snapshot(), fmt.Errorf("%w: question count must be > 0", ErrInvalidResult)
	}
	if result.Timestamp.IsZero() {
		result.Timestamp = s.now().UTC()
	}
	return s.mutate(ctx, func(p *model.UserProgress) error {
		p.QuizResults = append(p.QuizResults, result)
		return nil
	})
}

// ProfileUpdate lists the profile fields to replace. Nil fields are kept.
type ProfileUpdate struct {
	Name        *string
	Level       *model.Level
	Preferences *model.Preferences
}

// UpdateProfile shallow-merges the update into the record.
func (s *Store) UpdateProfile(ctx context.Context, upd ProfileUpdate) (model.UserProgress, error) {
	return s.mutate(ctx, func(p *model.UserProgress) error {
		if upd.Name != nil {
			p.Name = *upd.Name
		}
		if upd.Level != nil {
			p.Level = *upd.Level
		}
		if upd.Preferences != nil {
			p.Preferences = model.Preferences{
				Difficulty: upd.Preferences.Difficulty,
				FocusAreas: dedupe(upd.Preferences.FocusAreas),
			}
		}
		return nil
	})
}

// mutate derives the next record, persists it and swaps it in. A write
// failure keeps the new value in memory and is reported as ErrPersist.
func (s *Store) mutate(ctx context.Context, fn func(*model.UserProgress) error) (model.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cur.Clone()
	if err := fn(&next); err != nil {
		return s.cur.Clone(), err
	}
	werr := s.write(ctx, next)
	s.cur = next
	if werr != nil {
		s.log.Warn("progress write failed; keeping in-memory record", "key", Key, "error", werr)
		return next.Clone(), fmt.Errorf("%w: %w", ErrPersist, werr)
	}
	return next.Clone(), nil
}

func (s *Store) write(ctx context.Context, p model.UserProgress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	return s.medium.Set(ctx, Key, string(data))
}

func (s *Store) read(ctx context.Context) model.UserProgress {
	raw, ok, err := s.medium.Get(ctx, Key)
	if err != nil {
		s.log.Warn("progress read failed; using defaults", "key", Key, "error", err)
		return model.DefaultProgress()
	}
	if !ok {
		s.log.Debug("no saved progress; using defaults", "key", Key)
		return model.DefaultProgress()
	}
	p, err := decode(raw)
	if err != nil {
		s.log.Warn("saved progress is malformed; using defaults", "key", Key, "error", err)
		return model.DefaultProgress()
	}
	return p
}

func decode(raw string) (model.UserProgress, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return model.UserProgress{}, err
	}
	for _, name := range requiredFields {
		if v, ok := fields[name]; !ok || string(v) == "null" {
			return model.UserProgress{}, fmt.Errorf("missing field %q", name)
		}
	}
	var p model.UserProgress
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return model.UserProgress{}, err
	}
	if err := validate(p); err != nil {
		return model.UserProgress{}, err
	}
	p.PracticeStats.AverageScore = model.Percent(p.PracticeStats.CorrectAnswers, p.PracticeStats.TotalExercises)
	p.CompletedLessons = dedupe(p.CompletedLessons)
	p.Preferences.FocusAreas = dedupe(p.Preferences.FocusAreas)
	if p.QuizResults == nil {
		p.QuizResults = []model.QuizResult{}
	}
	if p.PracticeScores == nil {
		p.PracticeScores = []model.PracticeResult{}
	}
	return p, nil
}

// validate checks the invariants a saved record must hold to be trusted.
func validate(p model.UserProgress) error {
	if !p.Level.Valid() {
		return fmt.Errorf("unknown level %q", p.Level)
	}
	if !p.Preferences.Difficulty.Valid() {
		return fmt.Errorf("unknown preferred difficulty %q", p.Preferences.Difficulty)
	}
	st := p.PracticeStats
	if st.TotalExercises < 0 || st.CorrectAnswers < 0 || st.CorrectAnswers > st.TotalExercises {
		return fmt.Errorf("inconsistent practice stats %+v", st)
	}
	if !validScore(st.AverageScore) {
		return fmt.Errorf("practice average %d out of range", st.AverageScore)
	}
	for i, r := range p.QuizResults {
		if !validScore(r.Score) || r.QuestionCount <= 0 {
			return fmt.Errorf("quiz result %d: score %d over %d questions", i, r.Score, r.QuestionCount)
		}
	}
	for i, r := range p.PracticeScores {
		if !validScore(r.Score) || r.ExerciseCount <= 0 {
			return fmt.Errorf("practice result %d: score %d over %d exercises", i, r.Score, r.ExerciseCount)
		}
	}
	return nil
}

func validScore(score int) bool {
	return score >= 0 && score <= 100
}

func addPractice(st model.PracticeStats, score, count int) model.PracticeStats {
	st.TotalExercises += count
	st.CorrectAnswers += model.ScaleRound(score, count)
	st.AverageScore = model.Percent(st.CorrectAnswers, st.TotalExercises)
	return st
}

// PracticeStatsFromHistory recomputes the rollup from the practice history.
func PracticeStatsFromHistory(history []model.PracticeResult) model.PracticeStats {
	var st model.PracticeStats
	for _, r := range history {
		st.TotalExercises += r.ExerciseCount
		st.CorrectAnswers += model.ScaleRound(r.Score, r.ExerciseCount)
	}
	st.AverageScore = model.Percent(st.CorrectAnswers, st.TotalExercises)
	return st
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
