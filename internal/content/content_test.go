package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/courtgram/internal/model"
)

func TestDefaultCatalog(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)
	require.Len(t, cat.Practice, 5)
	require.Len(t, cat.Questions, 8)
	require.Len(t, cat.Scenarios, 3)
	require.Len(t, cat.ReferenceCategories, 4)
	require.Equal(t, 4, cat.LessonCount())
	require.Equal(t, []string{"punctuation", "grammar", "legal-style"}, cat.Categories())
}

func TestLessonLookup(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	lesson, category, err := cat.Lesson("gram-1")
	require.NoError(t, err)
	require.Equal(t, "grammar", category.ID)
	require.NotEmpty(t, lesson.Body)

	_, _, err = cat.Lesson("nope")
	require.ErrorIs(t, err, ErrUnknownLesson)
	require.Equal(t, []string{"punct-1", "punct-2", "gram-1", "legal-1"}, cat.LessonIDs())
}

func TestScenarioLookup(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	s, err := cat.Scenario("deposition")
	require.NoError(t, err)
	require.NotEmpty(t, s.Steps)

	_, err = cat.Scenario("moot-court")
	require.ErrorIs(t, err, ErrUnknownScenario)
}

func TestSearchReference(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	all := cat.SearchReference("", model.CategoryAll)
	require.Len(t, all, 8)

	grammar := cat.SearchReference("", "grammar")
	require.Len(t, grammar, 2)
	for _, m := range grammar {
		require.Equal(t, "grammar", m.CategoryID)
	}

	hits := cat.SearchReference("PRONOUN usage", "")
	titles := make([]string, 0, len(hits))
	for _, m := range hits {
		titles = append(titles, m.Item.Title)
	}
	require.Contains(t, titles, "Pronoun Usage")

	require.Empty(t, cat.SearchReference("pronoun usage", "procedures"))
	require.Empty(t, cat.SearchReference("zzzz-no-match", ""))
}

func TestLoadDirOverridesQuestions(t *testing.T) {
	dir := t.TempDir()
	data := `
[[practice]]
id = 1
category = "grammar"
difficulty = "beginner"
prompt = "p"
options = ["a", "b", "c", "d"]
correct = 2

[[question]]
id = 10
category = "grammar"
difficulty = "advanced"
prompt = "q"
options = ["a", "b", "c", "d"]
correct = 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "questions.toml"), []byte(data), 0o644))

	cat, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, cat.Practice, 1)
	require.Len(t, cat.Questions, 1)
	require.Equal(t, 10, cat.Questions[0].ID)
	// Untouched tables come from the built-in data.
	require.Len(t, cat.Scenarios, 3)
}

func TestLoadDirRejectsBadQuestion(t *testing.T) {
	dir := t.TempDir()
	data := `
[[question]]
id = 1
category = "grammar"
difficulty = "beginner"
prompt = "q"
options = ["a", "b", "c", "d"]
correct = 4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "questions.toml"), []byte(data), 0o644))
	_, err := LoadDir(dir)
	require.ErrorContains(t, err, "out of range")
}

func TestLoadDirMissing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	q := model.Question{ID: 1, Difficulty: model.DifficultyBeginner, Options: []string{"a", "b", "c", "d"}}
	require.NoError(t, (&Catalog{Questions: []model.Question{q}}).Validate())

	require.ErrorContains(t, (&Catalog{Questions: []model.Question{q, q}}).Validate(), "duplicate")

	three := q
	three.Options = []string{"a", "b", "c"}
	require.ErrorContains(t, (&Catalog{Practice: []model.Question{three}}).Validate(), "expected 4 options")

	mixed := q
	mixed.Difficulty = model.DifficultyMixed
	require.ErrorContains(t, (&Catalog{Questions: []model.Question{mixed}}).Validate(), "difficulty")

	lessons := []LessonCategory{{ID: "x", Lessons: []Lesson{{ID: "a"}, {ID: "a"}}}}
	require.ErrorContains(t, (&Catalog{LessonCategories: lessons}).Validate(), "duplicate lesson")
}
