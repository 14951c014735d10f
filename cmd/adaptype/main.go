// Package main provides the CLI entrypoint for adaptype.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/adaptype/internal/coach"
	"github.com/verte-zerg/adaptype/internal/config"
	"github.com/verte-zerg/adaptype/internal/generator"
	"github.com/verte-zerg/adaptype/internal/model"
	"github.com/verte-zerg/adaptype/internal/stats"
	"github.com/verte-zerg/adaptype/internal/statsui"
	"github.com/verte-zerg/adaptype/internal/store"
	"github.com/verte-zerg/adaptype/internal/tui"
)

const (
	defaultLength      = model.DefaultLength
	defaultLogLevel    = "warn"
	defaultTrendWindow = 5
	trendLabelWidth    = len("Accuracy trend: ")
)

var (
	dbPath string

	practiceLength   int
	practiceAdaptive bool
	practiceSeed     int64

	statsTop    int
	statsWindow int
	statsTUI    bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "adaptype",
		Short:         "Adaptive TUI typing trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (overrides ADAPTYPE_DB)")
	addPracticeFlags(rootCmd)

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newRecommendCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newRestoreCmd())

	return rootCmd
}

func addPracticeFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&practiceLength, "length", defaultLength, "characters per practice text")
	cmd.Flags().BoolVar(&practiceAdaptive, "adaptive", false, "drill weak characters once enough data exists")
	cmd.Flags().Int64Var(&practiceSeed, "seed", 0, "seed for reproducible adaptive text (0 uses the clock)")
}

// app bundles what every command needs after config resolution.
type app struct {
	file   config.FileConfig
	logger *log.Logger
	store  *store.Store
}

func setup(cmd *cobra.Command) (*app, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	fileCfg, err := config.LoadConfig(env.ResolveConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := newLogger(config.ResolveLogLevel(env, fileCfg, defaultLogLevel))
	if err != nil {
		return nil, err
	}
	path := config.ResolveDBPath(dbPath, env, fileCfg)
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	logger.Debug("store opened", "path", path, "command", cmd.Name())
	return &app{file: fileCfg, logger: logger, store: st}, nil
}

func (a *app) close() {
	if cerr := a.store.Close(); cerr != nil {
		a.logger.Error("failed to close db", "err", cerr)
	}
}

func (a *app) newCoach(ctx context.Context, seed int64) (*coach.Coach, error) {
	gen := generator.New()
	if seed != 0 {
		gen = generator.NewWithSeed(seed)
	}
	return coach.New(ctx, a.store, gen, a.logger)
}

func newLogger(level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{Prefix: "adaptype", Level: lvl}), nil
}

func practiceConfig(cmd *cobra.Command, fileCfg config.FileConfig) (model.Config, error) {
	applyIntConfig(cmd, "length", &practiceLength, fileCfg.Practice.Length)
	applyBoolConfig(cmd, "adaptive", &practiceAdaptive, fileCfg.Practice.Adaptive)
	applyInt64Config(cmd, "seed", &practiceSeed, fileCfg.Practice.Seed)
	cfg := model.Config{
		Length:   practiceLength,
		Adaptive: practiceAdaptive,
		Seed:     practiceSeed,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	cfg, err := practiceConfig(cmd, a.file)
	if err != nil {
		return err
	}
	ctx := context.Background()
	c, err := a.newCoach(ctx, cfg.Seed)
	if err != nil {
		return err
	}
	if cfg.Adaptive && !c.AdaptiveAvailable() {
		a.logger.Warn("not enough practice data for adaptive mode yet; using balanced text")
	}

	m := tui.NewModel(cfg, c, a.logger)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
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
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	path := env.ResolveConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsTop, "top", 0, "limit the table to the N most practiced characters")
	cmd.Flags().IntVar(&statsWindow, "window", defaultTrendWindow, "moving average window for trends")
	cmd.Flags().BoolVar(&statsTUI, "tui", false, "browse stats interactively")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsTop < 0 {
		return fmt.Errorf("--top must be >= 0")
	}
	if statsWindow < 1 {
		return fmt.Errorf("--window must be >= 1")
	}
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	c, err := a.newCoach(context.Background(), 0)
	if err != nil {
		return err
	}
	rec := c.Recommendation()
	if statsTUI {
		program := tea.NewProgram(statsui.NewModel(c.Aggregate(), rec, statsWindow), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats TUI: %w", err)
		}
		return nil
	}
	opts := stats.ReportOptions{
		Now:            time.Now(),
		MaxChars:       statsTop,
		TrendWindow:    statsWindow,
		TrendWidth:     trendWidth(cmd.OutOrStdout()),
		Recommendation: &rec,
	}
	if err := stats.RenderReport(cmd.OutOrStdout(), c.Aggregate(), opts); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// trendWidth fits sparklines to the terminal; 0 keeps the report default.
func trendWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= trendLabelWidth {
		return 0
	}
	return width - trendLabelWidth
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a practice text",
		Args:  cobra.NoArgs,
		RunE:  runGenerateCmd,
	}
	addPracticeFlags(cmd)
	return cmd
}

func runGenerateCmd(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	cfg, err := practiceConfig(cmd, a.file)
	if err != nil {
		return err
	}
	c, err := a.newCoach(context.Background(), cfg.Seed)
	if err != nil {
		return err
	}
	if cfg.Adaptive && !c.AdaptiveAvailable() {
		a.logger.Warn("not enough practice data for adaptive mode yet; using balanced text")
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), c.PracticeText(cfg.Length, cfg.Adaptive)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newRecommendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Recommend the next lesson",
		Args:  cobra.NoArgs,
		RunE:  runRecommendCmd,
	}
}

func runRecommendCmd(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	c, err := a.newCoach(context.Background(), 0)
	if err != nil {
		return err
	}
	rec := c.Recommendation()
	lines := []string{
		fmt.Sprintf("Lesson: %s", rec.Lesson),
		fmt.Sprintf("Confidence: %.0f%%", rec.Confidence*100),
		fmt.Sprintf("Reason: %s", rec.Reason),
	}
	if len(rec.Focus) > 0 {
		lines = append(lines, fmt.Sprintf("Focus: %s", strings.Join(rec.Focus, " ")))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge recorded sessions (JSON keystroke logs, - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open sessions: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				logErrf("failed to close %s: %v\n", args[0], cerr)
			}
		}()
		r = f
	}
	sessions, err := store.ReadSessions(r)
	if err != nil {
		return err
	}

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	c, err := a.newCoach(ctx, 0)
	if err != nil {
		return err
	}
	for _, in := range sessions {
		if in.ID == "" {
			in.ID = uuid.NewString()
		}
		if in.Lesson == "" {
			in.Lesson = "imported"
		}
		summary, err := c.Complete(ctx, in)
		if err != nil {
			return fmt.Errorf("failed to import session %s: %w", in.ID, err)
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %.1f WPM, %.1f%% accuracy\n", summary.ID, summary.WPM, summary.Accuracy); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write stats as JSON (stdout by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExportCmd,
	}
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	agg, err := a.store.LoadAggregate(context.Background())
	if err != nil {
		return err
	}
	if len(args) == 0 || args[0] == "-" {
		return store.WriteJSON(cmd.OutOrStdout(), agg)
	}
	if err := store.SaveJSONFile(args[0], agg); err != nil {
		return fmt.Errorf("failed to write %s: %w", args[0], err)
	}
	a.logger.Info("stats exported", "path", args[0], "chars", len(agg.Chars))
	return nil
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace stats with a JSON export (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE:  runRestoreCmd,
	}
}

func runRestoreCmd(cmd *cobra.Command, args []string) error {
	agg, err := readExport(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.store.SaveAggregate(context.Background(), agg); err != nil {
		return fmt.Errorf("failed to restore stats: %w", err)
	}
	a.logger.Info("stats restored", "sessions", agg.TotalSessions, "chars", len(agg.Chars))
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Restored %d sessions, %d characters\n", agg.TotalSessions, len(agg.Chars))
	return err
}

func readExport(stdin io.Reader, path string) (*model.Aggregate, error) {
	if path == "-" {
		return store.ReadJSON(stdin)
	}
	// A missing export must never restore as empty stats.
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	agg, err := store.LoadJSONFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return agg, nil
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

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# adaptype configuration
# Uncomment a value to enable it. CLI flags and ADAPTYPE_* variables override config values.

[practice]
# length = %d            # Characters per practice text
# adaptive = false        # Drill weak characters once enough data exists
# seed = 0                # Seed for reproducible adaptive text (0 uses the clock)

[store]
# path = %q

[log]
# level = %q           # debug, info, warn, error
`,
		defaultLength,
		config.DefaultDBPath(),
		defaultLogLevel,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Length <= 0 {
		return fmt.Errorf("--length must be > 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
