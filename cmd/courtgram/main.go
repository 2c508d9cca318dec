// Package main provides the CLI entrypoint for courtgram.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/courtgram/internal/assess"
	"github.com/verte-zerg/courtgram/internal/config"
	"github.com/verte-zerg/courtgram/internal/content"
	"github.com/verte-zerg/courtgram/internal/logger"
	"github.com/verte-zerg/courtgram/internal/model"
	"github.com/verte-zerg/courtgram/internal/progress"
	"github.com/verte-zerg/courtgram/internal/store"
	"github.com/verte-zerg/courtgram/internal/tui"
)

const (
	defaultQuizCount   = 5
	defaultCurveWindow = 3
	defaultTextWidth   = 80
	logToStderr        = "stderr"
)

var (
	quizCategory   string
	quizDifficulty string
	quizCount      int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "courtgram",
		Short:         "Grammar and punctuation trainer for court reporters",
		Long:          "Runs the grammar practice set when called without a subcommand.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.AddCommand(newQuizCmd())
	rootCmd.AddCommand(newLessonsCmd())
	rootCmd.AddCommand(newReferenceCmd())
	rootCmd.AddCommand(newScenariosCmd())
	rootCmd.AddCommand(newProgressCmd())
	rootCmd.AddCommand(newProfileCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// settings is what every command reads before doing any work.
type settings struct {
	cfg     config.FileConfig
	log     *logger.Logger
	catalog *content.Catalog
}

// app adds the progress store to settings.
type app struct {
	settings
	db       *store.Store
	progress *progress.Store
}

// loadSettings reads the config file, builds a logger tagged with the
// command path and loads the content catalog.
func loadSettings(cmd *cobra.Command) (settings, error) {
	cfgPath := config.DefaultConfigPath()
	fileCfg, unknown, err := config.LoadConfig(cfgPath)
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	base, err := newLogger(fileCfg.Log)
	if err != nil {
		return settings{}, err
	}
	log := base.With("cmd", cmd.CommandPath())
	for _, key := range unknown {
		log.Warn("unknown config key ignored", "key", key, "path", cfgPath)
	}

	catalog, err := content.LoadDir(config.ExpandHome(deref(fileCfg.Content.Dir)))
	if err != nil {
		log.Error("failed to load content", "dir", deref(fileCfg.Content.Dir), "error", err)
		log.Sync()
		return settings{}, fmt.Errorf("failed to load content: %w", err)
	}
	return settings{cfg: fileCfg, log: log, catalog: catalog}, nil
}

func openApp(cmd *cobra.Command) (*app, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}

	dbPath := config.DefaultDBPath()
	if p := deref(s.cfg.Storage.DB); p != "" {
		dbPath = config.ExpandHome(p)
	}
	db, err := store.Open(dbPath)
	if err != nil {
		s.log.Error("failed to open db", "path", dbPath, "error", err)
		s.log.Sync()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	s.log.Debug("opened store", "path", dbPath)

	return &app{
		settings: s,
		db:       db,
		progress: progress.Open(cmd.Context(), db, progress.WithLogger(s.log)),
	}, nil
}

func (a *app) close() {
	if cerr := a.db.Close(); cerr != nil {
		a.log.Error("failed to close db", "error", cerr)
		logErrf("failed to close db: %v\n", cerr)
	}
	a.log.Sync()
}

func newLogger(cfg config.LogConfig) (*logger.Logger, error) {
	file := deref(cfg.File)
	switch file {
	case "":
		file = config.DefaultLogPath()
	case logToStderr:
		file = ""
	default:
		file = config.ExpandHome(file)
	}
	log, err := logger.New(logger.Config{
		Mode:  deref(cfg.Mode),
		Level: deref(cfg.Level),
		File:  file,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return log, nil
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	m := tui.NewPracticeModel(ctx, a.catalog.Practice, a.progress, a.log)
	return runProgram(m, "practice")
}

func newQuizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Take a quiz drawn from the question bank",
		Args:  cobra.NoArgs,
		RunE:  runQuizCmd,
	}
	cmd.Flags().StringVar(&quizCategory, "category", model.CategoryAll, "question category or 'all'")
	cmd.Flags().StringVar(&quizDifficulty, "difficulty", string(model.DifficultyMixed), "beginner, intermediate, advanced or 'mixed'")
	cmd.Flags().IntVar(&quizCount, "count", defaultQuizCount, "number of questions")
	return cmd
}

func runQuizCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	applyStringConfig(cmd, "category", &quizCategory, a.cfg.Quiz.Category)
	applyStringConfig(cmd, "difficulty", &quizDifficulty, a.cfg.Quiz.Difficulty)
	applyIntConfig(cmd, "count", &quizCount, a.cfg.Quiz.Count)
	if a.cfg.Quiz.Timed != nil && *a.cfg.Quiz.Timed {
		a.log.Warn("quiz.timed is reserved and has no effect")
		logErrln("note: timed quizzes are not available yet; quiz.timed is ignored")
	}

	cfg := model.QuizConfig{
		Category:   strings.TrimSpace(quizCategory),
		Difficulty: model.Difficulty(strings.ToLower(strings.TrimSpace(quizDifficulty))),
		Count:      quizCount,
	}
	if err := validateQuizConfig(cfg, a.catalog.Categories()); err != nil {
		return err
	}

	m := tui.NewQuizModel(ctx, a.catalog.Questions, cfg, assess.NewSelector(), a.progress, a.log)
	return runProgram(m, "quiz")
}

func validateQuizConfig(cfg model.QuizConfig, categories []string) error {
	if cfg.Count <= 0 {
		return fmt.Errorf("--count must be > 0")
	}
	if cfg.Difficulty != model.DifficultyMixed && !cfg.Difficulty.Valid() {
		return fmt.Errorf("--difficulty must be one of beginner, intermediate, advanced, mixed (got %q)", cfg.Difficulty)
	}
	if cfg.Category == model.CategoryAll {
		return nil
	}
	for _, c := range categories {
		if c == cfg.Category {
			return nil
		}
	}
	return fmt.Errorf("unknown --category %q (available: all, %s)", cfg.Category, strings.Join(categories, ", "))
}

func runProgram(m tea.Model, name string) error {
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run %s TUI: %w", name, err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if _, err := config.WriteTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// warnPersist reports a fail-soft save error and swallows it; any other
// error is returned.
func warnPersist(a *app, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, progress.ErrPersist) {
		a.log.Warn("progress not saved", "error", err)
		logErrf("warning: %v\n", err)
		return nil
	}
	return err
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func textWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return defaultTextWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultTextWidth
	}
	return width
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
