package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/courtgram/internal/content"
	"github.com/verte-zerg/courtgram/internal/model"
	"github.com/verte-zerg/courtgram/internal/progress"
	"github.com/verte-zerg/courtgram/internal/stats"
	"github.com/verte-zerg/courtgram/internal/statsui"
	"github.com/verte-zerg/courtgram/internal/tui"
)

const recentActivityLimit = 10

var (
	referenceCategory string
	scenarioOut       string
	progressPlain     bool
	progressWindow    int

	profileName       string
	profileLevel      string
	profileDifficulty string
	profileFocus      []string
)

func newLessonsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lessons",
		Short: "List lessons and completion",
		Args:  cobra.NoArgs,
		RunE:  runLessonsListCmd,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List lessons and completion",
		Args:  cobra.NoArgs,
		RunE:  runLessonsListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Read a lesson",
		Args:  cobra.ExactArgs(1),
		RunE:  runLessonsShowCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a lesson complete",
		Args:  cobra.ExactArgs(1),
		RunE:  runLessonsCompleteCmd,
	})
	return cmd
}

func runLessonsListCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	return writeLessonList(cmd.OutOrStdout(), a.catalog, a.progress.Snapshot())
}

func runLessonsShowCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	lesson, category, err := a.catalog.Lesson(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	done := a.progress.Snapshot().HasCompleted(lesson.ID)
	return writeLesson(out, lesson, category, done, textWidth(out))
}

func runLessonsCompleteCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	lesson, _, err := a.catalog.Lesson(args[0])
	if err != nil {
		return err
	}
	p, err := a.progress.MarkLessonComplete(ctx, lesson.ID)
	if err := warnPersist(a, err); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Marked %q complete (%d/%d lessons)\n",
		lesson.Title, completedInCatalog(p, a.catalog), a.catalog.LessonCount())
	return err
}

func completedInCatalog(p model.UserProgress, cat *content.Catalog) int {
	n := 0
	for _, id := range cat.LessonIDs() {
		if p.HasCompleted(id) {
			n++
		}
	}
	return n
}

func writeLessonList(w io.Writer, cat *content.Catalog, p model.UserProgress) error {
	for _, c := range cat.LessonCategories {
		if _, err := fmt.Fprintf(w, "%s\n", c.Title); err != nil {
			return err
		}
		for _, l := range c.Lessons {
			mark := " "
			if p.HasCompleted(l.ID) {
				mark = "x"
			}
			if _, err := fmt.Fprintf(w, "  [%s] %-10s %s (%s, %s)\n", mark, l.ID, l.Title, l.Duration, l.Difficulty); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d/%d lessons completed\n", completedInCatalog(p, cat), cat.LessonCount())
	return err
}

func writeLesson(w io.Writer, l content.Lesson, c content.LessonCategory, done bool, width int) error {
	status := "not completed"
	if done {
		status = "completed"
	}
	header := fmt.Sprintf("%s\n%s · %s · %s · %s\n\n", l.Title, c.Title, l.Duration, l.Difficulty, status)
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	body := lipgloss.NewStyle().Width(width).Render(strings.TrimSpace(l.Body))
	if _, err := fmt.Fprint(w, body, "\n\n"); err != nil {
		return err
	}
	if done {
		return nil
	}
	_, err := fmt.Fprintf(w, "Run `courtgram lessons complete %s` when you are done.\n", l.ID)
	return err
}

func newReferenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reference [term]",
		Short: "Search the punctuation and grammar reference",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runReferenceCmd,
	}
	cmd.Flags().StringVar(&referenceCategory, "category", model.CategoryAll, "reference category id or 'all'")
	return cmd
}

func runReferenceCmd(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog(cmd)
	if err != nil {
		return err
	}
	term := ""
	if len(args) == 1 {
		term = args[0]
	}
	if err := validateReferenceCategory(cat, referenceCategory); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	return writeReference(out, cat.SearchReference(term, referenceCategory), term, textWidth(out))
}

// loadCatalog reads only the content, for commands that never touch progress.
func loadCatalog(cmd *cobra.Command) (*content.Catalog, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	s.log.Sync()
	return s.catalog, nil
}

func validateReferenceCategory(cat *content.Catalog, id string) error {
	if id == "" || id == model.CategoryAll {
		return nil
	}
	ids := make([]string, 0, len(cat.ReferenceCategories))
	for _, c := range cat.ReferenceCategories {
		if c.ID == id {
			return nil
		}
		ids = append(ids, c.ID)
	}
	return fmt.Errorf("unknown --category %q (available: all, %s)", id, strings.Join(ids, ", "))
}

func writeReference(w io.Writer, matches []content.ReferenceMatch, term string, width int) error {
	if len(matches) == 0 {
		_, err := fmt.Fprintf(w, "No reference entries match %q.\n", term)
		return err
	}
	body := lipgloss.NewStyle().Width(width - 4).PaddingLeft(4)
	current := ""
	for _, m := range matches {
		if m.CategoryID != current {
			current = m.CategoryID
			if _, err := fmt.Fprintf(w, "== %s ==\n\n", m.CategoryTitle); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(w, m.Item.Title, "\n", body.Render(strings.TrimSpace(m.Item.Body)), "\n\n"); err != nil {
			return err
		}
	}
	return nil
}

func newScenariosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List practice scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			return writeScenarioList(cmd.OutOrStdout(), cat.Scenarios)
		},
	}
	run := &cobra.Command{
		Use:   "run <id>",
		Short: "Step through a scenario and transcribe it",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenarioCmd,
	}
	run.Flags().StringVar(&scenarioOut, "out", "", "write the script and your transcription to this file")
	cmd.AddCommand(run)
	return cmd
}

func writeScenarioList(w io.Writer, scenarios []content.Scenario) error {
	for _, sc := range scenarios {
		_, err := fmt.Fprintf(w, "%-16s %s (%s, %s, %d steps)\n    %s\n    Participants: %s\n",
			sc.ID, sc.Title, sc.Difficulty, sc.Duration, len(sc.Steps), sc.Description, strings.Join(sc.Participants, ", "))
		if err != nil {
			return err
		}
	}
	return nil
}

func runScenarioCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	sc, err := a.catalog.Scenario(args[0])
	if err != nil {
		return err
	}
	m := tui.NewScenarioModel(sc)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to run scenario TUI: %w", err)
	}
	a.log.Info("scenario closed", "id", sc.ID, "finished", m.Finished())
	if scenarioOut == "" {
		return nil
	}
	return writeTranscriptFile(m, scenarioOut)
}

func writeTranscriptFile(m *tui.ScenarioModel, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create transcript: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return m.WriteTranscript(f)
}

func newProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show the progress dashboard",
		Args:  cobra.NoArgs,
		RunE:  runProgressCmd,
	}
	cmd.Flags().BoolVar(&progressPlain, "plain", false, "print a plain text report instead of the dashboard")
	cmd.Flags().IntVar(&progressWindow, "window", defaultCurveWindow, "moving average window for trends")
	return cmd
}

func runProgressCmd(cmd *cobra.Command, _ []string) error {
	if progressWindow <= 0 {
		return fmt.Errorf("--window must be > 0")
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	if progressPlain || !isTerminal(out) {
		return writePlainProgress(out, a.progress.Snapshot(), a.catalog, time.Now(), progressWindow, textWidth(out))
	}
	m := statsui.NewModel(a.progress, a.catalog, progressWindow)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to run progress TUI: %w", err)
	}
	return nil
}

func writePlainProgress(w io.Writer, p model.UserProgress, cat *content.Catalog, now time.Time, window, width int) error {
	if err := stats.RenderSummary(w, stats.Summarize(p, cat, now)); err != nil {
		return err
	}
	if err := stats.RenderSkills(w, stats.SkillAreas(p, cat)); err != nil {
		return err
	}
	if err := stats.RenderActivity(w, stats.RecentActivity(p, recentActivityLimit)); err != nil {
		return err
	}
	return stats.RenderTrends(w, p, window, width, 0, false)
}

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the learner profile",
		Args:  cobra.NoArgs,
		RunE:  runProfileCmd,
	}
	cmd.Flags().StringVar(&profileName, "name", "", "display name")
	cmd.Flags().StringVar(&profileLevel, "level", "", "Beginner, Intermediate or Advanced")
	cmd.Flags().StringVar(&profileDifficulty, "difficulty", "", "preferred difficulty: beginner, intermediate or advanced")
	cmd.Flags().StringSliceVar(&profileFocus, "focus", nil, "focus areas, comma separated")
	return cmd
}

func runProfileCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	upd, changed, err := profileUpdateFromFlags(cmd)
	if err != nil {
		return err
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	p := a.progress.Snapshot()
	if changed {
		if upd.Preferences != nil {
			prefs := *upd.Preferences
			if prefs.Difficulty == "" {
				prefs.Difficulty = p.Preferences.Difficulty
			}
			if prefs.FocusAreas == nil {
				prefs.FocusAreas = p.Preferences.FocusAreas
			}
			upd.Preferences = &prefs
		}
		p, err = a.progress.UpdateProfile(ctx, upd)
		if err := warnPersist(a, err); err != nil {
			return err
		}
	}

	saved, ok, err := a.db.UpdatedAt(ctx, progress.Key)
	if err != nil {
		a.log.Warn("failed to read last save time", "error", err)
		ok = false
	}
	if !ok {
		saved = time.Time{}
	}
	return writeProfile(cmd.OutOrStdout(), p, saved)
}

// profileUpdateFromFlags builds an update from the flags the user set.
// Preferences carry zero fields for the halves that were not set.
func profileUpdateFromFlags(cmd *cobra.Command) (progress.ProfileUpdate, bool, error) {
	var upd progress.ProfileUpdate
	flags := cmd.Flags()
	changed := false
	if flags.Changed("name") {
		name := strings.TrimSpace(profileName)
		if name == "" {
			return upd, false, fmt.Errorf("--name must not be empty")
		}
		upd.Name = &name
		changed = true
	}
	if flags.Changed("level") {
		level, err := parseLevel(profileLevel)
		if err != nil {
			return upd, false, err
		}
		upd.Level = &level
		changed = true
	}
	var prefs model.Preferences
	prefsChanged := false
	if flags.Changed("difficulty") {
		d := model.Difficulty(strings.ToLower(strings.TrimSpace(profileDifficulty)))
		if !d.Valid() {
			return upd, false, fmt.Errorf("--difficulty must be one of beginner, intermediate, advanced (got %q)", profileDifficulty)
		}
		prefs.Difficulty = d
		prefsChanged = true
	}
	if flags.Changed("focus") {
		prefs.FocusAreas = []string{}
		for _, f := range profileFocus {
			if f = strings.TrimSpace(f); f != "" {
				prefs.FocusAreas = append(prefs.FocusAreas, f)
			}
		}
		prefsChanged = true
	}
	if prefsChanged {
		upd.Preferences = &prefs
		changed = true
	}
	return upd, changed, nil
}

func parseLevel(s string) (model.Level, error) {
	for _, l := range []model.Level{model.LevelBeginner, model.LevelIntermediate, model.LevelAdvanced} {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("--level must be one of Beginner, Intermediate, Advanced (got %q)", s)
}

func writeProfile(w io.Writer, p model.UserProgress, saved time.Time) error {
	focus := strings.Join(p.Preferences.FocusAreas, ", ")
	if focus == "" {
		focus = "-"
	}
	last := "never"
	if !saved.IsZero() {
		last = saved.Local().Format("2006-01-02 15:04")
	}
	_, err := fmt.Fprintf(w, "Name         %s\nLevel        %s\nDifficulty   %s\nFocus areas  %s\nLast saved   %s\n",
		p.Name, p.Level, p.Preferences.Difficulty, focus, last)
	return err
}
