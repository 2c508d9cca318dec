package model

import "testing"

func TestPercentRoundsHalfUp(t *testing.T) {
	cases := []struct {
		part, whole, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 5, 0},
		{4, 5, 80},
		{7, 10, 70},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{5, 5, 100},
	}
	for _, tc := range cases {
		if got := Percent(tc.part, tc.whole); got != tc.want {
			t.Fatalf("Percent(%d, %d) = %d, want %d", tc.part, tc.whole, got, tc.want)
		}
	}
}

func TestScaleRound(t *testing.T) {
	cases := []struct {
		pct, n, want int
	}{
		{80, 5, 4},
		{60, 5, 3},
		{50, 1, 1},
		{0, 5, 0},
		{100, 7, 7},
		{33, 3, 1},
	}
	for _, tc := range cases {
		if got := ScaleRound(tc.pct, tc.n); got != tc.want {
			t.Fatalf("ScaleRound(%d, %d) = %d, want %d", tc.pct, tc.n, got, tc.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := DefaultProgress()
	p.CompletedLessons = append(p.CompletedLessons, "punct-1")
	c := p.Clone()
	c.CompletedLessons[0] = "changed"
	c.Preferences.FocusAreas[0] = "changed"
	if p.CompletedLessons[0] != "punct-1" {
		t.Fatalf("clone shares completed lessons")
	}
	if p.Preferences.FocusAreas[0] != "punctuation" {
		t.Fatalf("clone shares focus areas")
	}
}

func TestLevelAndDifficultyValid(t *testing.T) {
	if !LevelAdvanced.Valid() || Level("expert").Valid() {
		t.Fatalf("unexpected level validity")
	}
	if DifficultyMixed.Valid() || !DifficultyBeginner.Valid() {
		t.Fatalf("unexpected difficulty validity")
	}
}
