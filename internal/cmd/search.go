package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/runger/grepl/internal/compile"
	"github.com/runger/grepl/internal/dispatch"
	"github.com/runger/grepl/internal/highlight"
	"github.com/runger/grepl/internal/store"
)

var (
	searchAsync   bool
	searchProgram string
	searchDryRun  bool
	searchPick    bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Run the external search and keep the matches",
	Long: `Run the configured search program and store the matches.

The query is compiled before dispatch: tokens starting with "-" pass
through as options, the first remaining token is the pattern, and later
tokens are treated as paths and glob-expanded. Backslash-escaped spaces
keep a phrase together as a single pattern.

Examples:
  grepl search TODO                    # Search for TODO everywhere
  grepl search -i 'needle' pkg/**/*.go # Case-insensitive, scoped to paths
  grepl search that\'s\ nice           # Pattern with spaces
  grepl search --async slowpattern     # Run in the background`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchAsync, "async", false, "run the search as a background job")
	searchCmd.Flags().StringVar(&searchProgram, "program", "", "override the configured search program")
	searchCmd.Flags().BoolVar(&searchDryRun, "dry-run", false, "print the command line without running it")
	searchCmd.Flags().BoolVar(&searchPick, "pick", false, "open the match list in the TUI after the search")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog := newLogger(cfg)
	defer closeLog()

	raw := strings.Join(args, " ")
	compiled, err := compile.Compile(raw)
	if err != nil {
		return err
	}

	program := searchProgram
	if program == "" {
		program = cfg.ResolveProgram()
	}
	if program == "" {
		return fmt.Errorf("no search program available (set search.program or install rg)")
	}

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open match database: %w", err)
	}
	defer st.Close()

	var runner dispatch.Runner
	async := searchAsync || cfg.Search.Async
	jobs := dispatch.NewJobRunner(logger)
	if async {
		runner = jobs
	} else {
		runner = dispatch.NewSyncRunner()
	}

	hl := &highlight.State{}
	d := dispatch.New(dispatch.Config{
		Program:   program,
		Highlight: cfg.Search.Highlight,
	}, runner, st, hl, logger)

	if searchDryRun {
		fmt.Println(d.CommandLine(compiled))
		return nil
	}

	scope := scopeKey(cfg)
	if err := d.Dispatch(cmd.Context(), compiled, scope); err != nil {
		return err
	}
	if async {
		// One-shot process: the job must finish before we exit.
		jobs.Wait()
	}

	if err := st.RecordSearch(store.SearchRecord{
		ID:      uuid.NewString(),
		Raw:     raw,
		Pattern: compiled.Pattern,
		At:      time.Now(),
	}); err != nil {
		logger.Warn("failed to record search", "error", err)
	}
	if pat, ok := hl.Pattern(); ok {
		if err := st.SetState(patternKey(scope), pat); err != nil {
			logger.Warn("failed to store pattern", "error", err)
		}
	}

	list, err := st.List(scope)
	if err != nil {
		return err
	}
	if list.Live() == 0 {
		fmt.Println("No matches.")
		return nil
	}
	if searchPick {
		return runPickSession(cfg, logger, st, scope)
	}
	fmt.Printf("%s%d matches%s stored; run %sgrepl list%s or %sgrepl pick%s\n",
		colorBold, list.Live(), colorReset, colorCyan, colorReset, colorCyan, colorReset)
	return nil
}
