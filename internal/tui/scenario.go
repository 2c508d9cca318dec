package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/courtgram/internal/content"
)

var (
	speakerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	challengeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#69B1FF"))
)

// Entry is the learner's transcription of one scenario step. It is kept as
// typed and never scored.
type Entry struct {
	Speaker string
	Text    string
}

// ScenarioModel steps through a scripted scenario with free-text transcription.
type ScenarioModel struct {
	scenario content.Scenario
	step     int
	entries  []Entry
	speaker  textinput.Model
	text     textinput.Model
	finished bool

	width  int
	height int
}

// NewScenarioModel starts sc at its first step.
func NewScenarioModel(sc content.Scenario) *ScenarioModel {
	speaker := textinput.New()
	speaker.Placeholder = "e.g., THE COURT:"
	speaker.Prompt = "Speaker › "
	speaker.CharLimit = 64

	text := textinput.New()
	text.Placeholder = "Type what you hear..."
	text.Prompt = "Statement › "

	m := &ScenarioModel{
		scenario: sc,
		entries:  make([]Entry, len(sc.Steps)),
		speaker:  speaker,
		text:     text,
	}
	m.speaker.Focus()
	return m
}

// Init implements tea.Model.
func (m *ScenarioModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *ScenarioModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.text.Width = m.contentWidth() - len(m.text.Prompt) - 1
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.save()
			return m, tea.Quit
		}
		if m.finished {
			if msg.String() == "q" || msg.Type == tea.KeyEnter {
				return m, tea.Quit
			}
			return m, nil
		}
		switch msg.Type {
		case tea.KeyTab, tea.KeyShiftTab:
			m.toggleFocus()
			return m, nil
		case tea.KeyEnter:
			m.save()
			if m.step == len(m.scenario.Steps)-1 {
				m.finished = true
				return m, nil
			}
			m.goTo(m.step + 1)
			return m, nil
		case tea.KeyCtrlP:
			m.save()
			m.goTo(m.step - 1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	if m.speaker.Focused() {
		m.speaker, cmd = m.speaker.Update(msg)
	} else {
		m.text, cmd = m.text.Update(msg)
	}
	return m, cmd
}

// Finished reports whether every step was passed.
func (m *ScenarioModel) Finished() bool { return m.finished }

// Entries returns the learner's transcription per step.
func (m *ScenarioModel) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

func (m *ScenarioModel) save() {
	if m.step < 0 || m.step >= len(m.entries) {
		return
	}
	m.entries[m.step] = Entry{
		Speaker: strings.TrimSpace(m.speaker.Value()),
		Text:    strings.TrimSpace(m.text.Value()),
	}
}

func (m *ScenarioModel) goTo(step int) {
	if step < 0 || step >= len(m.scenario.Steps) {
		return
	}
	m.step = step
	m.speaker.SetValue(m.entries[step].Speaker)
	m.text.SetValue(m.entries[step].Text)
	m.text.Blur()
	m.speaker.Focus()
}

func (m *ScenarioModel) toggleFocus() {
	if m.speaker.Focused() {
		m.speaker.Blur()
		m.text.Focus()
		return
	}
	m.text.Blur()
	m.speaker.Focus()
}

func (m *ScenarioModel) contentWidth() int {
	if m.width == 0 {
		return 72
	}
	w := int(float64(m.width) * 0.80)
	if w < 20 {
		w = m.width
	}
	return w
}

// View implements tea.Model.
func (m *ScenarioModel) View() string {
	width := m.contentWidth()
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.scenario.Title))
	b.WriteString("\n")
	if m.finished {
		b.WriteString("\n")
		b.WriteString(correctStyle.Render("Scenario complete."))
		b.WriteString("\n\n")
		b.WriteString(m.renderComparison(width))
		b.WriteString(footerStyle.Render("enter/q quit"))
		return m.place(b.String())
	}

	fmt.Fprintf(&b, "Step %d of %d\n\n", m.step+1, len(m.scenario.Steps))
	b.WriteString(promptStyle.Render("Current Transcript"))
	b.WriteString("\n")
	for _, st := range m.scenario.Steps[:m.step+1] {
		line := wrapText(st.Speaker+": "+st.Text, width)
		b.WriteString(speakerStyle.Render(st.Speaker+":") + strings.TrimPrefix(line, st.Speaker+":"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.speaker.View())
	b.WriteString("\n")
	b.WriteString(m.text.View())
	b.WriteString("\n\n")
	if ch := m.scenario.Steps[m.step].Challenges; len(ch) > 0 {
		b.WriteString(promptStyle.Render("Key Challenges:"))
		b.WriteString("\n")
		for _, c := range ch {
			b.WriteString(challengeStyle.Render("• " + c))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(footerStyle.Render("tab switch field  enter next step  ctrl+p previous step  esc quit"))
	return m.place(b.String())
}

func (m *ScenarioModel) renderComparison(width int) string {
	var b strings.Builder
	for i, st := range m.scenario.Steps {
		e := m.entries[i]
		b.WriteString(optionStyle.Render(wrapText(fmt.Sprintf("%d. %s: %s", i+1, st.Speaker, st.Text), width)))
		b.WriteString("\n")
		mine := strings.TrimSpace(e.Speaker + " " + e.Text)
		if mine == "" {
			mine = "(skipped)"
		}
		b.WriteString(indent(wrapText("You: "+mine, width-3), "   "))
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m *ScenarioModel) place(s string) string {
	if m.width == 0 || m.height == 0 {
		return s
	}
	body := lipgloss.NewStyle().Width(m.contentWidth()).Render(s)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

// WriteTranscript writes the script alongside the learner's entries as plain text.
func (m *ScenarioModel) WriteTranscript(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s\n%s\n\n", m.scenario.Title, strings.Repeat("=", len(m.scenario.Title))); err != nil {
		return err
	}
	for i, st := range m.scenario.Steps {
		e := m.entries[i]
		mine := strings.TrimSpace(e.Speaker + " " + e.Text)
		if _, err := fmt.Fprintf(w, "[%d] %s: %s\n    transcribed: %s\n", i+1, st.Speaker, st.Text, mine); err != nil {
			return err
		}
	}
	return nil
}
