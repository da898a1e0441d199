package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/runger/grepl/internal/matchlist"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <first> [last]",
	Short: "Delete entries from the match list",
	Long: `Delete an entry or an inclusive range of entries from the match list.

Deleted entries become placeholders: the remaining entries keep their
numbers, so a second delete against the same listing still hits the rows
you meant. The range may be given in either order.

Examples:
  grepl delete 3         # Delete entry 3
  grepl delete 3 7       # Delete entries 3 through 7
  grepl delete 7 3       # Same range, reversed`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	first, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid entry number %q", args[0])
	}
	last := first
	if len(args) == 2 {
		last, err = strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid entry number %q", args[1])
		}
	}
	first, last = matchlist.NormalizeRange(first, last)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open match database: %w", err)
	}
	defer st.Close()

	scope := scopeKey(cfg)
	list, err := st.List(scope)
	if err != nil {
		return err
	}

	pruned, err := matchlist.DeleteRange(list, first, last)
	if err != nil {
		return err
	}
	if err := st.Replace(scope, pruned); err != nil {
		return err
	}

	n := last - first + 1
	fmt.Printf("Deleted %d of %d entries; %d remain.\n", n, len(pruned), pruned.Live())
	return nil
}
