package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runger/grepl/internal/subst"
)

var replaceCmd = &cobra.Command{
	Use:   "replace </pattern/replacement/flags>",
	Short: "Substitute across every file in the match list",
	Long: `Apply a substitution to every file the match list covers.

The expression uses a delimiter of your choice (any non-word,
non-backslash character): /pattern/replacement/flags. The pattern is a
regular expression; $1, $2 reference capture groups in the replacement.

Flags: i (ignore case) is honored; other flags are accepted and ignored.
Replacement is always global per line and missing matches are never an
error.

Examples:
  grepl replace /old_name/new_name/
  grepl replace '#path/to/x#path/to/y#'
  grepl replace '/fix(\d+)/bug$1/i'`,
	Args: cobra.ExactArgs(1),
	RunE: runReplace,
}

func init() {
	rootCmd.AddCommand(replaceCmd)
}

func runReplace(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog := newLogger(cfg)
	defer closeLog()

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open match database: %w", err)
	}
	defer st.Close()

	list, err := st.List(scopeKey(cfg))
	if err != nil {
		return err
	}

	o := subst.New(logger)
	changed, err := o.Run(list, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Changed %d file(s).\n", changed)
	return nil
}
