package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runger/grepl/internal/matchlist"
)

var filesNul bool

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Print the files the match list covers",
	Long: `Print every file the match list touches, once, in first-match order.

Different spellings of the same path (relative, with "..", etc.)
collapse to a single entry. Useful for feeding other tools:

  grepl files | xargs sed -i 's/old/new/g'
  grepl files -0 | xargs -0 code`,
	Args: cobra.NoArgs,
	RunE: runFiles,
}

func init() {
	filesCmd.Flags().BoolVarP(&filesNul, "null", "0", false, "separate file names with NUL instead of newline")

	rootCmd.AddCommand(filesCmd)
}

func runFiles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open match database: %w", err)
	}
	defer st.Close()

	list, err := st.List(scopeKey(cfg))
	if err != nil {
		return err
	}

	files, err := matchlist.Files(list)
	if errors.Is(err, matchlist.ErrNoFiles) {
		return fmt.Errorf("match list is empty")
	}
	if err != nil {
		return err
	}

	sep := "\n"
	if filesNul {
		sep = "\x00"
	}
	for _, f := range files {
		fmt.Print(f, sep)
	}
	return nil
}
