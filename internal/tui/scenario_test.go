package tui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/courtgram/internal/content"
)

func testScenario() content.Scenario {
	return content.Scenario{
		ID:    "hearing",
		Title: "Motion Hearing",
		Steps: []content.ScenarioStep{
			{Speaker: "THE COURT", Text: "Be seated.", Challenges: []string{"Speaker identification"}},
			{Speaker: "MR. SMITH", Text: "Thank you, Your Honor."},
		},
	}
}

func typeText(m *ScenarioModel, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestScenarioStepsAndTranscript(t *testing.T) {
	m := NewScenarioModel(testScenario())
	if !strings.Contains(m.View(), "Step 1 of 2") || !strings.Contains(m.View(), "Speaker identification") {
		t.Fatalf("unexpected first step view:\n%s", m.View())
	}

	typeText(m, "THE COURT:")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "Be seated")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.step != 1 || m.speaker.Value() != "" {
		t.Fatalf("expected empty second step, got step %d %q", m.step, m.speaker.Value())
	}

	// Going back restores what was typed.
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	if m.step != 0 || m.speaker.Value() != "THE COURT:" || m.text.Value() != "Be seated" {
		t.Fatalf("expected first step restored, got %q / %q", m.speaker.Value(), m.text.Value())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Finished() {
		t.Fatalf("expected finished after last step")
	}
	entries := m.Entries()
	if entries[0] != (Entry{Speaker: "THE COURT:", Text: "Be seated"}) || entries[1] != (Entry{}) {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if !strings.Contains(m.View(), "(skipped)") {
		t.Fatalf("expected skipped marker in summary")
	}

	var buf bytes.Buffer
	if err := m.WriteTranscript(&buf); err != nil {
		t.Fatalf("WriteTranscript: %v", err)
	}
	want := "Motion Hearing\n==============\n\n" +
		"[1] THE COURT: Be seated.\n    transcribed: THE COURT: Be seated\n" +
		"[2] MR. SMITH: Thank you, Your Honor.\n    transcribed: \n"
	if buf.String() != want {
		t.Fatalf("unexpected transcript:\n%q", buf.String())
	}
}

func TestScenarioLettersAreTyped(t *testing.T) {
	m := NewScenarioModel(testScenario())
	typeText(m, "q")
	if m.speaker.Value() != "q" {
		t.Fatalf("expected q to be typed, got %q", m.speaker.Value())
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("expected quit command on esc")
	}
}
