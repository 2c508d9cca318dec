// Package content loads the static lesson, reference, scenario and question tables.
package content

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/courtgram/internal/model"
)

//go:embed data/*.toml
var embedded embed.FS

const (
	lessonsFile   = "lessons.toml"
	referenceFile = "reference.toml"
	scenariosFile = "scenarios.toml"
	questionsFile = "questions.toml"
)

var (
	// ErrUnknownLesson is returned for a lesson id missing from the catalog.
	ErrUnknownLesson = errors.New("unknown lesson")
	// ErrUnknownScenario is returned for a scenario id missing from the catalog.
	ErrUnknownScenario = errors.New("unknown scenario")
)

// LessonCategory groups lessons under a skill area.
type LessonCategory struct {
	ID          string   `toml:"id"`
	Title       string   `toml:"title"`
	Description string   `toml:"description"`
	Lessons     []Lesson `toml:"lesson"`
}

// Lesson is one static instructional unit.
type Lesson struct {
	ID         string           `toml:"id"`
	Title      string           `toml:"title"`
	Duration   string           `toml:"duration"`
	Difficulty model.Difficulty `toml:"difficulty"`
	Body       string           `toml:"body"`
}

// ReferenceCategory groups reference items.
type ReferenceCategory struct {
	ID    string          `toml:"id"`
	Title string          `toml:"title"`
	Items []ReferenceItem `toml:"item"`
}

// ReferenceItem is one entry of the reference guide.
type ReferenceItem struct {
	Title string `toml:"title"`
	Body  string `toml:"body"`
}

// Scenario is a scripted transcription role-play.
type Scenario struct {
	ID           string           `toml:"id"`
	Title        string           `toml:"title"`
	Description  string           `toml:"description"`
	Difficulty   model.Difficulty `toml:"difficulty"`
	Duration     string           `toml:"duration"`
	Participants []string         `toml:"participants"`
	Steps        []ScenarioStep   `toml:"step"`
}

// ScenarioStep is one scripted utterance.
type ScenarioStep struct {
	Speaker    string   `toml:"speaker"`
	Text       string   `toml:"text"`
	Challenges []string `toml:"challenges"`
}

// Catalog holds every static table.
type Catalog struct {
	LessonCategories    []LessonCategory
	ReferenceCategories []ReferenceCategory
	Scenarios           []Scenario
	Practice            []model.Question
	Questions           []model.Question
}

type lessonsDoc struct {
	Categories []LessonCategory `toml:"category"`
}

type referenceDoc struct {
	Categories []ReferenceCategory `toml:"category"`
}

type scenariosDoc struct {
	Scenarios []Scenario `toml:"scenario"`
}

type questionsDoc struct {
	Practice  []model.Question `toml:"practice"`
	Questions []model.Question `toml:"question"`
}

// Default loads the catalog compiled into the binary.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return load(sub)
}

// LoadDir loads the catalog from dir. Files missing from dir fall back to
// the built-in tables.
func LoadDir(dir string) (*Catalog, error) {
	if dir == "" {
		return Default()
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content dir %s is not a directory", dir)
	}
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return load(overlayFS{primary: os.DirFS(dir), fallback: sub})
}

func load(fsys fs.FS) (*Catalog, error) {
	var lessons lessonsDoc
	var reference referenceDoc
	var scenarios scenariosDoc
	var questions questionsDoc
	docs := []struct {
		name string
		dst  any
	}{
		{lessonsFile, &lessons},
		{referenceFile, &reference},
		{scenariosFile, &scenarios},
		{questionsFile, &questions},
	}
	for _, doc := range docs {
		if _, err := toml.DecodeFS(fsys, doc.name, doc.dst); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", doc.name, err)
		}
	}
	cat := &Catalog{
		LessonCategories:    lessons.Categories,
		ReferenceCategories: reference.Categories,
		Scenarios:           scenarios.Scenarios,
		Practice:            questions.Practice,
		Questions:           questions.Questions,
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

// Validate checks ids are unique and every question's answer indexes its options.
func (c *Catalog) Validate() error {
	lessonIDs := map[string]struct{}{}
	for _, cat := range c.LessonCategories {
		for _, l := range cat.Lessons {
			if l.ID == "" {
				return fmt.Errorf("lesson %q in %s has no id", l.Title, cat.ID)
			}
			if _, dup := lessonIDs[l.ID]; dup {
				return fmt.Errorf("duplicate lesson id %q", l.ID)
			}
			lessonIDs[l.ID] = struct{}{}
		}
	}
	scenarioIDs := map[string]struct{}{}
	for _, s := range c.Scenarios {
		if _, dup := scenarioIDs[s.ID]; dup {
			return fmt.Errorf("duplicate scenario id %q", s.ID)
		}
		scenarioIDs[s.ID] = struct{}{}
		if len(s.Steps) == 0 {
			return fmt.Errorf("scenario %q has no steps", s.ID)
		}
	}
	if err := validateQuestions("practice", c.Practice); err != nil {
		return err
	}
	return validateQuestions("question", c.Questions)
}

func validateQuestions(table string, qs []model.Question) error {
	seen := map[int]struct{}{}
	for _, q := range qs {
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("duplicate %s id %d", table, q.ID)
		}
		seen[q.ID] = struct{}{}
		if len(q.Options) != 4 {
			return fmt.Errorf("%s %d: expected 4 options, got %d", table, q.ID, len(q.Options))
		}
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			return fmt.Errorf("%s %d: correct index %d out of range", table, q.ID, q.Correct)
		}
		if !q.Difficulty.Valid() {
			return fmt.Errorf("%s %d: unknown difficulty %q", table, q.ID, q.Difficulty)
		}
	}
	return nil
}

// Lesson returns the lesson with id and its category.
func (c *Catalog) Lesson(id string) (Lesson, LessonCategory, error) {
	for _, cat := range c.LessonCategories {
		for _, l := range cat.Lessons {
			if l.ID == id {
				return l, cat, nil
			}
		}
	}
	return Lesson{}, LessonCategory{}, fmt.Errorf("%w: %q", ErrUnknownLesson, id)
}

// LessonCount returns the number of lessons across categories.
func (c *Catalog) LessonCount() int {
	n := 0
	for _, cat := range c.LessonCategories {
		n += len(cat.Lessons)
	}
	return n
}

// Scenario returns the scenario with id.
func (c *Catalog) Scenario(id string) (Scenario, error) {
	for _, s := range c.Scenarios {
		if s.ID == id {
			return s, nil
		}
	}
	return Scenario{}, fmt.Errorf("%w: %q", ErrUnknownScenario, id)
}

// LessonIDs returns every lesson id in catalog order.
func (c *Catalog) LessonIDs() []string {
	var out []string
	for _, cat := range c.LessonCategories {
		for _, l := range cat.Lessons {
			out = append(out, l.ID)
		}
	}
	return out
}

// Categories returns the distinct quiz bank categories in bank order.
func (c *Catalog) Categories() []string {
	var out []string
	seen := map[string]struct{}{}
	for _, q := range c.Questions {
		if _, ok := seen[q.Category]; ok {
			continue
		}
		seen[q.Category] = struct{}{}
		out = append(out, q.Category)
	}
	return out
}

// ReferenceMatch is a reference item with its category.
type ReferenceMatch struct {
	CategoryID    string
	CategoryTitle string
	Item          ReferenceItem
}

// SearchReference returns items whose title or body contains term, ignoring
// case, restricted to category unless it is empty or "all".
func (c *Catalog) SearchReference(term, category string) []ReferenceMatch {
	needle := strings.ToLower(strings.TrimSpace(term))
	var out []ReferenceMatch
	for _, cat := range c.ReferenceCategories {
		if category != "" && category != model.CategoryAll && cat.ID != category {
			continue
		}
		for _, item := range cat.Items {
			if needle != "" &&
				!strings.Contains(strings.ToLower(item.Title), needle) &&
				!strings.Contains(strings.ToLower(item.Body), needle) {
				continue
			}
			out = append(out, ReferenceMatch{CategoryID: cat.ID, CategoryTitle: cat.Title, Item: item})
		}
	}
	return out
}

type overlayFS struct {
	primary  fs.FS
	fallback fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(path.Clean(name))
	if err == nil {
		return f, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return o.fallback.Open(name)
	}
	return nil, err
}
