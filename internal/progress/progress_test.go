package progress

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/courtgram/internal/model"
	"github.com/verte-zerg/courtgram/internal/store"
)

type memMedium struct {
	values  map[string]string
	getErr  error
	setErr  error
	setCall int
}

func newMemMedium() *memMedium {
	return &memMedium{values: map[string]string{}}
}

func (m *memMedium) Get(_ context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memMedium) Set(_ context.Context, key, value string) error {
	m.setCall++
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

var fixedNow = time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)

func openMem(t *testing.T, medium Medium) *Store {
	t.Helper()
	return Open(context.Background(), medium, WithClock(func() time.Time { return fixedNow }))
}

func TestFreshStoreHasDefaults(t *testing.T) {
	st := openMem(t, newMemMedium())
	p := st.Load(context.Background())

	require.Empty(t, p.CompletedLessons)
	require.Equal(t, 0, p.PracticeStats.AverageScore)
	require.Equal(t, model.DefaultProgress(), p)
}

func TestMarkLessonCompleteIsSetLike(t *testing.T) {
	st := openMem(t, newMemMedium())
	ctx := context.Background()
	ids := []string{"gram-1", "punct-1", "gram-1", "legal-1", "punct-1", "punct-1"}
	for _, id := range ids {
		_, err := st.MarkLessonComplete(ctx, id)
		require.NoError(t, err)
	}
	got := st.Snapshot().CompletedLessons
	sort.Strings(got)
	require.Equal(t, []string{"gram-1", "legal-1", "punct-1"}, got)
}

func TestPracticeScenario(t *testing.T) {
	st := openMem(t, newMemMedium())
	ctx := context.Background()

	p, err := st.RecordPracticeResult(ctx, 80, 5)
	require.NoError(t, err)
	require.Equal(t, model.PracticeStats{TotalExercises: 5, CorrectAnswers: 4, AverageScore: 80}, p.PracticeStats)

	p, err = st.RecordPracticeResult(ctx, 60, 5)
	require.NoError(t, err)
	require.Equal(t, model.PracticeStats{TotalExercises: 10, CorrectAnswers: 7, AverageScore: 70}, p.PracticeStats)
	require.Len(t, p.PracticeScores, 2)
	require.Equal(t, model.PracticeResult{Score: 60, Timestamp: fixedNow, ExerciseCount: 5}, p.PracticeScores[1])
}

func TestPracticeRollupMatchesClosedForm(t *testing.T) {
	runs := []struct{ score, count int }{
		{80, 5}, {60, 5}, {33, 3}, {50, 1}, {100, 7}, {0, 4}, {67, 3}, {45, 11},
	}
	st := openMem(t, newMemMedium())
	ctx := context.Background()
	correct, total := 0, 0
	for _, r := range runs {
		p, err := st.RecordPracticeResult(ctx, r.score, r.count)
		require.NoError(t, err)
		correct += model.ScaleRound(r.score, r.count)
		total += r.count
		require.Equal(t, model.Percent(correct, total), p.PracticeStats.AverageScore)
		require.Equal(t, PracticeStatsFromHistory(p.PracticeScores), p.PracticeStats)
	}
}

func TestPracticeRollupAssociative(t *testing.T) {
	for s1 := 0; s1 <= 100; s1 += 7 {
		for s2 := 0; s2 <= 100; s2 += 13 {
			st := openMem(t, newMemMedium())
			ctx := context.Background()
			_, err := st.RecordPracticeResult(ctx, s1, 3)
			require.NoError(t, err)
			p, err := st.RecordPracticeResult(ctx, s2, 6)
			require.NoError(t, err)

			correct := model.ScaleRound(s1, 3) + model.ScaleRound(s2, 6)
			require.Equal(t, model.Percent(correct, 9), p.PracticeStats.AverageScore, "s1=%d s2=%d", s1, s2)
		}
	}
}

func TestRecordPracticeRejectsInvalidInput(t *testing.T) {
	medium := newMemMedium()
	st := openMem(t, medium)
	ctx := context.Background()

	_, err := st.RecordPracticeResult(ctx, 101, 5)
	require.ErrorIs(t, err, ErrInvalidResult)
	_, err = st.RecordPracticeResult(ctx, 50, 0)
	require.ErrorIs(t, err, ErrInvalidResult)
	require.Empty(t, st.Snapshot().PracticeScores)
	require.Zero(t, medium.setCall)
}

func TestQuizResultRoundTrip(t *testing.T) {
	medium := newMemMedium()
	st := openMem(t, medium)
	ctx := context.Background()
	result := model.QuizResult{
		Score:          75,
		Category:       "punctuation",
		Difficulty:     "mixed",
		QuestionCount:  4,
		CorrectAnswers: 3,
	}
	_, err := st.RecordQuizResult(ctx, result)
	require.NoError(t, err)

	reopened := openMem(t, medium)
	p := reopened.Load(ctx)
	require.NotEmpty(t, p.QuizResults)
	want := result
	want.Timestamp = fixedNow
	require.Equal(t, want, p.QuizResults[len(p.QuizResults)-1])
}

func TestQuizResultKeepsProvidedTimestamp(t *testing.T) {
	st := openMem(t, newMemMedium())
	stamp := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	p, err := st.RecordQuizResult(context.Background(), model.QuizResult{Score: 10, QuestionCount: 10, CorrectAnswers: 1, Timestamp: stamp})
	require.NoError(t, err)
	require.Equal(t, stamp, p.QuizResults[0].Timestamp)
}

func TestUpdateProfileMergesOnlyGivenFields(t *testing.T) {
	st := openMem(t, newMemMedium())
	ctx := context.Background()
	_, err := st.MarkLessonComplete(ctx, "punct-1")
	require.NoError(t, err)

	name := "Dana"
	p, err := st.UpdateProfile(ctx, ProfileUpdate{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Dana", p.Name)
	require.Equal(t, model.LevelIntermediate, p.Level)
	require.Equal(t, []string{"punct-1"}, p.CompletedLessons)

	level := model.LevelAdvanced
	p, err = st.UpdateProfile(ctx, ProfileUpdate{
		Level:       &level,
		Preferences: &model.Preferences{Difficulty: model.DifficultyAdvanced, FocusAreas: []string{"grammar", "grammar", "legal-style"}},
	})
	require.NoError(t, err)
	require.Equal(t, "Dana", p.Name)
	require.Equal(t, model.LevelAdvanced, p.Level)
	require.Equal(t, []string{"grammar", "legal-style"}, p.Preferences.FocusAreas)
}

func TestWriteFailureIsSoft(t *testing.T) {
	medium := newMemMedium()
	st := openMem(t, medium)
	medium.setErr = errors.New("disk full")

	p, err := st.MarkLessonComplete(context.Background(), "gram-1")
	require.ErrorIs(t, err, ErrPersist)
	require.Equal(t, []string{"gram-1"}, p.CompletedLessons)
	require.Equal(t, []string{"gram-1"}, st.Snapshot().CompletedLessons)
}

func TestLoadFallsBackOnBadData(t *testing.T) {
	cases := map[string]string{
		"not json":       "{nope",
		"missing fields": `{"name":"x","level":"Beginner"}`,
		"wrong types":    `{"name":1,"level":"Beginner","completedLessons":[],"quizResults":[],"practiceScores":[],"practiceStats":{},"preferences":{}}`,
		"bad stats":      `{"name":"x","level":"Beginner","completedLessons":[],"quizResults":[],"practiceScores":[],"practiceStats":{"totalExercises":1,"correctAnswers":5,"averageScore":500},"preferences":{}}`,
		"null fields":    `{"name":null,"level":"Beginner","completedLessons":[],"quizResults":[],"practiceScores":[],"practiceStats":{},"preferences":null}`,
		"unknown level":  record(`"level":"Expert"`, `"preferences":{"difficulty":"beginner","focusAreas":[]}`),
		"no difficulty":  record(`"level":"Beginner"`, `"preferences":{"focusAreas":["grammar"]}`),
		"average range":  record(`"level":"Beginner"`, `"preferences":{"difficulty":"beginner","focusAreas":[]}`, `"practiceStats":{"totalExercises":10,"correctAnswers":7,"averageScore":250}`),
		"quiz score":     record(`"level":"Beginner"`, `"preferences":{"difficulty":"beginner","focusAreas":[]}`, `"quizResults":[{"score":150,"category":"all","difficulty":"mixed","questionCount":5,"correctAnswers":5}]`),
		"practice score": record(`"level":"Beginner"`, `"preferences":{"difficulty":"beginner","focusAreas":[]}`, `"practiceScores":[{"score":-1,"exerciseCount":5}]`),
		"zero count":     record(`"level":"Beginner"`, `"preferences":{"difficulty":"beginner","focusAreas":[]}`, `"practiceScores":[{"score":80,"exerciseCount":0}]`),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			medium := newMemMedium()
			medium.values[Key] = raw
			st := openMem(t, medium)
			require.Equal(t, model.DefaultProgress(), st.Snapshot())
		})
	}
}

// record builds a saved record from valid defaults with the given
// top-level fields replaced.
func record(overrides ...string) string {
	fields := map[string]string{
		"name":             `"name":"x"`,
		"level":            `"level":"Beginner"`,
		"completedLessons": `"completedLessons":[]`,
		"quizResults":      `"quizResults":[]`,
		"practiceScores":   `"practiceScores":[]`,
		"practiceStats":    `"practiceStats":{"totalExercises":0,"correctAnswers":0,"averageScore":0}`,
		"preferences":      `"preferences":{"difficulty":"beginner","focusAreas":[]}`,
	}
	for _, o := range overrides {
		name := strings.Trim(strings.SplitN(o, ":", 2)[0], `"`)
		fields[name] = o
	}
	parts := make([]string, 0, len(requiredFields))
	for _, name := range requiredFields {
		parts = append(parts, fields[name])
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func TestLoadRecomputesPracticeAverage(t *testing.T) {
	medium := newMemMedium()
	medium.values[Key] = record(`"practiceStats":{"totalExercises":10,"correctAnswers":7,"averageScore":90}`)
	st := openMem(t, medium)
	require.Equal(t, model.PracticeStats{TotalExercises: 10, CorrectAnswers: 7, AverageScore: 70}, st.Snapshot().PracticeStats)
	require.Equal(t, "x", st.Snapshot().Name)
}

func TestLoadFallsBackOnReadError(t *testing.T) {
	medium := newMemMedium()
	medium.getErr = errors.New("locked")
	st := openMem(t, medium)
	require.Equal(t, model.DefaultProgress(), st.Snapshot())
}

func TestLoadDedupesStoredLessons(t *testing.T) {
	medium := newMemMedium()
	medium.values[Key] = `{"name":"x","level":"Beginner","completedLessons":["a","b","a"],"quizResults":[],"practiceScores":[],"practiceStats":{"totalExercises":0,"correctAnswers":0,"averageScore":0},"preferences":{"difficulty":"beginner","focusAreas":null}}`
	st := openMem(t, medium)
	p := st.Snapshot()
	require.Equal(t, []string{"a", "b"}, p.CompletedLessons)
	require.NotNil(t, p.Preferences.FocusAreas)
}

func TestSnapshotIsReadOnlyCopy(t *testing.T) {
	st := openMem(t, newMemMedium())
	_, err := st.MarkLessonComplete(context.Background(), "punct-1")
	require.NoError(t, err)
	snap := st.Snapshot()
	snap.CompletedLessons[0] = "tampered"
	require.Equal(t, []string{"punct-1"}, st.Snapshot().CompletedLessons)
}

func TestSQLiteMediumRoundTrip(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "courtgram.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	ctx := context.Background()
	st := openMem(t, db)
	_, err = st.RecordPracticeResult(ctx, 80, 5)
	require.NoError(t, err)
	_, err = st.MarkLessonComplete(ctx, "punct-2")
	require.NoError(t, err)

	reopened := openMem(t, db)
	p := reopened.Snapshot()
	require.Equal(t, []string{"punct-2"}, p.CompletedLessons)
	require.Equal(t, 80, p.PracticeStats.AverageScore)
}
