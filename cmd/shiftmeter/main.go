// Package main provides the CLI entrypoint for shiftmeter.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/shiftmeter/internal/clock"
	"github.com/verte-zerg/shiftmeter/internal/config"
	"github.com/verte-zerg/shiftmeter/internal/format"
	"github.com/verte-zerg/shiftmeter/internal/history"
	"github.com/verte-zerg/shiftmeter/internal/model"
	"github.com/verte-zerg/shiftmeter/internal/session"
	"github.com/verte-zerg/shiftmeter/internal/stats"
	"github.com/verte-zerg/shiftmeter/internal/store"
	"github.com/verte-zerg/shiftmeter/internal/tui"
)

const (
	defaultRefresh = 250 * time.Millisecond
	defaultBackend = store.KindSQLite
	minRefresh     = 10 * time.Millisecond
)

var (
	rootWage    string
	rootRefresh time.Duration

	storageBackend string
	storagePath    string

	exportOut string
	clearYes  bool
)

// stdinIsTerminal reports whether stdin can answer a confirmation prompt.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func main() {
	if err := config.LoadEnv(); err != nil {
		logErrf("failed to load .env: %v\n", err)
	}
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "shiftmeter",
		Short:         "Work-shift timer with earnings history",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTimerCmd,
	}

	rootCmd.Flags().StringVar(&rootWage, "wage", "", "hourly wage to save before starting")
	rootCmd.Flags().DurationVar(&rootRefresh, "refresh", defaultRefresh, "display refresh interval")
	rootCmd.PersistentFlags().StringVar(&storageBackend, "backend", defaultBackend, "storage backend (sqlite or yaml)")
	rootCmd.PersistentFlags().StringVar(&storagePath, "db", "", "storage file path")

	rootCmd.AddCommand(newWageCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// resolvedConfig applies the config file beneath CLI flags.
func resolvedConfig(cmd *cobra.Command) (model.Config, model.StorageConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, model.StorageConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "backend", &storageBackend, fileCfg.Storage.Backend)
	applyStringConfig(cmd, "db", &storagePath, fileCfg.Storage.Path)
	applyStringConfig(cmd, "out", &exportOut, fileCfg.Export.Path)
	if fileCfg.Timer.RefreshMs != nil && !cmd.Flags().Changed("refresh") {
		rootRefresh = time.Duration(*fileCfg.Timer.RefreshMs) * time.Millisecond
	}

	cfg := model.Config{
		RefreshInterval: rootRefresh,
		ExportPath:      exportOut,
	}
	if cfg.ExportPath == "" {
		cfg.ExportPath = history.DefaultExportName
	}
	storageCfg := model.StorageConfig{
		Backend: storageBackend,
		Path:    storagePath,
	}
	if storageCfg.Path == "" {
		storageCfg.Path = config.DefaultStatePath(store.Ext(storageCfg.Backend))
	}
	if err := validateConfig(cfg, storageCfg); err != nil {
		return model.Config{}, model.StorageConfig{}, err
	}
	return cfg, storageCfg, nil
}

func validateConfig(cfg model.Config, storageCfg model.StorageConfig) error {
	if cfg.RefreshInterval < minRefresh {
		return fmt.Errorf("--refresh must be >= %s", minRefresh)
	}
	switch strings.ToLower(storageCfg.Backend) {
	case store.KindSQLite, store.KindYAML:
	default:
		return fmt.Errorf("--backend must be %s or %s", store.KindSQLite, store.KindYAML)
	}
	return nil
}

func openSession(ctx context.Context, storageCfg model.StorageConfig) (*session.Session, func(), error) {
	backend, err := store.Open(storageCfg.Backend, storageCfg.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	closeFn := func() {
		if cerr := backend.Close(); cerr != nil {
			logErrf("failed to close store: %v\n", cerr)
		}
	}
	sess, err := session.New(ctx, clock.System, backend)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return sess, closeFn, nil
}

func runTimerCmd(cmd *cobra.Command, _ []string) error {
	cfg, storageCfg, err := resolvedConfig(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	sess, closeFn, err := openSession(ctx, storageCfg)
	if err != nil {
		return err
	}
	defer closeFn()

	if cmd.Flags().Changed("wage") {
		if err := sess.SaveWage(ctx, rootWage); err != nil {
			return err
		}
	}

	m := tui.NewModel(cfg, sess)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newWageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wage [amount]",
		Short: "Show or set the hourly wage",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runWageCmd,
	}
}

func runWageCmd(cmd *cobra.Command, args []string) error {
	_, storageCfg, err := resolvedConfig(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	sess, closeFn, err := openSession(ctx, storageCfg)
	if err != nil {
		return err
	}
	defer closeFn()

	if len(args) == 1 {
		if err := sess.SaveWage(ctx, args[0]); err != nil {
			return err
		}
	}
	out := "Hourly wage not set"
	if sess.Wage() > 0 {
		out = fmt.Sprintf("$%s/hr", format.Fixed2(sess.Wage()))
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List completed shifts",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	_, storageCfg, err := resolvedConfig(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	sess, closeFn, err := openSession(ctx, storageCfg)
	if err != nil {
		return err
	}
	defer closeFn()

	records, err := sess.History().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	w := cmd.OutOrStdout()
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No shifts recorded yet.")
		return err
	}
	lines := stats.Truncate(stats.HistoryTable(records), outputWidth())
	lines = append(lines, "", stats.SummaryLine(stats.Summarize(records)))
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export shift history as CSV (use --out - for stdout)",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportOut, "out", "", "export file path (default: shifts.csv)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	cfg, storageCfg, err := resolvedConfig(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	sess, closeFn, err := openSession(ctx, storageCfg)
	if err != nil {
		return err
	}
	defer closeFn()

	if cfg.ExportPath == "-" {
		out, err := sess.History().ExportDelimited(ctx)
		if err != nil {
			return exportError(err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
		return err
	}
	if err := sess.History().WriteExport(ctx, cfg.ExportPath); err != nil {
		return exportError(err)
	}
	logErrf("Wrote %s\n", cfg.ExportPath)
	return nil
}

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all saved shifts",
		Args:  cobra.NoArgs,
		RunE:  runClearCmd,
	}
	cmd.Flags().BoolVar(&clearYes, "yes", false, "skip the confirmation prompt")
	return cmd
}

func runClearCmd(cmd *cobra.Command, _ []string) error {
	_, storageCfg, err := resolvedConfig(cmd)
	if err != nil {
		return err
	}
	if !clearYes {
		if !stdinIsTerminal() {
			return fmt.Errorf("refusing to clear history without confirmation (use --yes)")
		}
		ok, err := confirm(cmd, "Clear all saved shifts? [y/N] ")
		if err != nil {
			return err
		}
		if !ok {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return err
		}
	}

	ctx := context.Background()
	sess, closeFn, err := openSession(ctx, storageCfg)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := sess.History().Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
	return err
}

func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	if _, err := fmt.Fprint(cmd.OutOrStdout(), prompt); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false, nil
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
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

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# shiftmeter configuration
# Uncomment a value to enable it. CLI flags override config values.

[timer]
# refresh-ms = %d         # Display refresh interval while a shift runs

[storage]
# backend = %q       # sqlite or yaml
# path = ""               # Defaults to $XDG_DATA_HOME/shiftmeter/shiftmeter.<db|yaml>

[export]
# path = %q       # CSV export destination
`,
		defaultRefresh.Milliseconds(),
		defaultBackend,
		history.DefaultExportName,
	)
}

func outputWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}

func exportError(err error) error {
	if errors.Is(err, history.ErrEmptyHistory) {
		return err
	}
	return fmt.Errorf("failed to export: %w", err)
}

func logErrf(msg string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, msg, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
