package assess

import "github.com/verte-zerg/courtgram/internal/model"

// Score grades attempt against questions. Unanswered questions count as
// incorrect and answers for unknown ids are ignored.
func Score(attempt model.Attempt, questions []model.Question) model.Score {
	correct := 0
	for _, q := range questions {
		if chosen, ok := attempt[q.ID]; ok && chosen == q.Correct {
			correct++
		}
	}
	return model.Score{
		Percentage: model.Percent(correct, len(questions)),
		Correct:    correct,
		Total:      len(questions),
	}
}

// ReviewItem describes one question on the results screen.
type ReviewItem struct {
	Question model.Question
	Chosen   int // -1 when unanswered
	Correct  bool
}

// ChosenText returns the chosen option, or "" when unanswered.
func (r ReviewItem) ChosenText() string {
	if r.Chosen < 0 || r.Chosen >= len(r.Question.Options) {
		return ""
	}
	return r.Question.Options[r.Chosen]
}

// CorrectText returns the correct option.
func (r ReviewItem) CorrectText() string {
	return r.Question.Options[r.Question.Correct]
}

// Review lists every question with the learner's choice.
func Review(attempt model.Attempt, questions []model.Question) []ReviewItem {
	items := make([]ReviewItem, 0, len(questions))
	for _, q := range questions {
		chosen, ok := attempt[q.ID]
		if !ok {
			chosen = -1
		}
		items = append(items, ReviewItem{
			Question: q,
			Chosen:   chosen,
			Correct:  ok && chosen == q.Correct,
		})
	}
	return items
}

// Band is a coarse result grade.
type Band int

const (
	BandLow Band = iota
	BandMid
	BandHigh
)

// Grade maps a percentage to a band. Quizzes use 90/70 cutoffs and
// practice sets 80/60.
func Grade(kind Kind, percentage int) Band {
	high, mid := 90, 70
	if kind == KindPractice {
		high, mid = 80, 60
	}
	switch {
	case percentage >= high:
		return BandHigh
	case percentage >= mid:
		return BandMid
	default:
		return BandLow
	}
}
