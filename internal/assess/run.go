package assess

import (
	"context"
	"errors"
	"fmt"

	"github.com/verte-zerg/courtgram/internal/model"
)

var (
	// ErrSubmitted is returned when a submitted run is changed or submitted again.
	ErrSubmitted = errors.New("run already submitted")
	// ErrUnknownQuestion is returned for an answer to a question not in the run.
	ErrUnknownQuestion = errors.New("unknown question")
	// ErrOptionRange is returned for an option index outside the question's options.
	ErrOptionRange = errors.New("option out of range")
)

// Kind distinguishes quiz runs from practice runs.
type Kind int

const (
	KindPractice Kind = iota
	KindQuiz
)

func (k Kind) String() string {
	if k == KindQuiz {
		return "quiz"
	}
	return "practice"
}

// Recorder persists finished runs. The progress store implements it.
type Recorder interface {
	RecordQuizResult(ctx context.Context, result model.QuizResult) (model.UserProgress, error)
	RecordPracticeResult(ctx context.Context, score, exerciseCount int) (model.UserProgress, error)
}

// Run is one attempt over a fixed question list. It moves from in progress
// to submitted exactly once; a retry is a new Run.
type Run struct {
	kind      Kind
	cfg       model.QuizConfig
	questions []model.Question
	answers   model.Attempt
	submitted bool
	result    model.Score
}

// NewQuizRun starts a quiz over questions selected with cfg.
func NewQuizRun(cfg model.QuizConfig, questions []model.Question) *Run {
	return newRun(KindQuiz, cfg, questions)
}

// NewPracticeRun starts a practice run over the fixed exercise set.
func NewPracticeRun(exercises []model.Question) *Run {
	return newRun(KindPractice, model.QuizConfig{}, exercises)
}

func newRun(kind Kind, cfg model.QuizConfig, questions []model.Question) *Run {
	return &Run{
		kind:      kind,
		cfg:       cfg,
		questions: append([]model.Question(nil), questions...),
		answers:   model.Attempt{},
	}
}

// Kind reports whether this is a quiz or practice run.
func (r *Run) Kind() Kind { return r.kind }

// Config returns the selection config of a quiz run.
func (r *Run) Config() model.QuizConfig { return r.cfg }

// Questions returns the run's questions in presentation order.
func (r *Run) Questions() []model.Question { return r.questions }

// Submitted reports whether the run has been submitted.
func (r *Run) Submitted() bool { return r.submitted }

// Result returns the score of a submitted run.
func (r *Run) Result() model.Score { return r.result }

// Answer records the chosen option for question id, replacing any earlier choice.
func (r *Run) Answer(id, option int) error {
	if r.submitted {
		return ErrSubmitted
	}
	for _, q := range r.questions {
		if q.ID != id {
			continue
		}
		if option < 0 || option >= len(q.Options) {
			return fmt.Errorf("%w: %d for question %d", ErrOptionRange, option, id)
		}
		r.answers[id] = option
		return nil
	}
	return fmt.Errorf("%w: %d", ErrUnknownQuestion, id)
}

// Choice returns the recorded option for question id.
func (r *Run) Choice(id int) (int, bool) {
	option, ok := r.answers[id]
	return option, ok
}

// Answered returns how many questions have a choice.
func (r *Run) Answered() int { return len(r.answers) }

// Complete reports whether every question has a choice.
func (r *Run) Complete() bool { return len(r.answers) == len(r.questions) }

// Review lists the run's questions with the learner's choices.
func (r *Run) Review() []ReviewItem { return Review(r.answers, r.questions) }

// Submit scores the run and hands the result to rec. The score is returned
// even when rec reports an error, since the run is submitted either way.
func (r *Run) Submit(ctx context.Context, rec Recorder) (model.Score, error) {
	if r.submitted {
		return r.result, ErrSubmitted
	}
	r.result = Score(r.answers, r.questions)
	r.submitted = true
	if len(r.questions) == 0 || rec == nil {
		return r.result, nil
	}

	var err error
	switch r.kind {
	case KindQuiz:
		_, err = rec.RecordQuizResult(ctx, model.QuizResult{
			Score:          r.result.Percentage,
			Category:       categoryLabel(r.cfg.Category),
			Difficulty:     difficultyLabel(r.cfg.Difficulty),
			QuestionCount:  r.result.Total,
			CorrectAnswers: r.result.Correct,
		})
	default:
		_, err = rec.RecordPracticeResult(ctx, r.result.Percentage, r.result.Total)
	}
	if err != nil {
		return r.result, fmt.Errorf("record %s result: %w", r.kind, err)
	}
	return r.result, nil
}

func categoryLabel(category string) string {
	if category == "" {
		return model.CategoryAll
	}
	return category
}

func difficultyLabel(d model.Difficulty) string {
	if d == "" {
		return string(model.DifficultyMixed)
	}
	return string(d)
}
