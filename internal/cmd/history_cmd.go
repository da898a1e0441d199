package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent searches",
	Long: `Show recent searches from the grepl database, newest first.

Examples:
  grepl history               # Show last 20 searches
  grepl history --limit=50    # Show last 50 searches`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of searches to show")
	historyCmd.Flags().StringVar(&colorMode, "color", "auto", "color output: auto, always, or never")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	applyColorMode()

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open match database: %w", err)
	}
	defer st.Close()

	records, err := st.History(historyLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No searches yet.")
		return nil
	}

	for _, r := range records {
		fmt.Printf("%s%s%s  %s\n",
			colorDim, r.At.Format("2006-01-02 15:04"), colorReset, r.Raw)
	}
	return nil
}
