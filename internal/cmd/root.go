// Package cmd implements the grepl command-line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/runger/grepl/internal/config"
	"github.com/runger/grepl/internal/logging"
	"github.com/runger/grepl/internal/store"
)

var (
	flagLocal bool
	flagDB    string
)

var rootCmd = &cobra.Command{
	Use:   "grepl",
	Short: "grep-driven search and replace",
	Long: `grepl - grep-driven search and replace
  - search: run an external grep and keep the matches
  - pick:   prune the match list interactively
  - replace: substitute across every matched file`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagLocal, "local", false, "operate on the per-directory list instead of the global one")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "path to the match database (default: per-user data dir)")
}

// loadConfig loads the user configuration, with env overrides applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openStore opens the match database, honoring the --db override.
func openStore() (*store.Store, error) {
	path := flagDB
	if path == "" {
		path = store.DefaultPath()
	}
	return store.Open(path)
}

// scopeKey resolves the list scope for this invocation. The local list is
// keyed by working directory so each project keeps its own.
func scopeKey(cfg *config.Config) string {
	local := flagLocal || cfg.Search.Scope == "local"
	if !local {
		return "global"
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "global"
	}
	return "local:" + cwd
}

// patternKey is the state key the last captured pattern is stored under,
// per scope.
func patternKey(scope string) string {
	return "pattern:" + scope
}

// newLogger builds the structured logger from config. The returned func
// closes the log file, if any; callers defer it so a configured file is
// flushed before exit.
func newLogger(cfg *config.Config) (*slog.Logger, func()) {
	logger, closer, err := logging.Open(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		// A broken log file must not block the actual work.
		fmt.Fprintf(os.Stderr, "grepl: %v\n", err)
		return logging.NewFromEnv(), func() {}
	}
	closeLog := func() {}
	if closer != nil {
		closeLog = func() { closer.Close() }
	}
	return logger, closeLog
}
