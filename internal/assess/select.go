// Package assess selects and scores multiple-choice runs.
package assess

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/courtgram/internal/model"
)

// Selector draws randomly ordered question subsets.
type Selector struct {
	rnd *rand.Rand
}

// NewSelector returns a Selector seeded with the current time.
func NewSelector() *Selector {
	return NewSelectorWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewSelectorWithSource returns a Selector drawing from src.
func NewSelectorWithSource(src rand.Source) *Selector {
	return &Selector{rnd: rand.New(src)}
}

// Select filters bank by cfg, shuffles the matches uniformly and keeps at
// most cfg.Count of them. A small pool yields a short result.
func (s *Selector) Select(bank []model.Question, cfg model.QuizConfig) []model.Question {
	pool := Filter(bank, cfg.Category, cfg.Difficulty)
	s.shuffle(pool)
	if cfg.Count < len(pool) {
		if cfg.Count < 0 {
			return pool[:0]
		}
		pool = pool[:cfg.Count]
	}
	return pool
}

// Filter returns the questions matching category and difficulty in bank
// order. "all" and "mixed" (or empty) disable the respective filter.
func Filter(bank []model.Question, category string, difficulty model.Difficulty) []model.Question {
	out := make([]model.Question, 0, len(bank))
	for _, q := range bank {
		if category != "" && category != model.CategoryAll && q.Category != category {
			continue
		}
		if difficulty != "" && difficulty != model.DifficultyMixed && q.Difficulty != difficulty {
			continue
		}
		out = append(out, q)
	}
	return out
}

// shuffle is a Fisher-Yates pass: each position swaps with a uniformly
// chosen index at or below it.
func (s *Selector) shuffle(qs []model.Question) {
	for i := len(qs) - 1; i > 0; i-- {
		j := s.rnd.Intn(i + 1)
		qs[i], qs[j] = qs[j], qs[i]
	}
}
