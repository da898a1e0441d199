package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the stored match list",
	Long: `Print the stored match list, one entry per line.

Entries are numbered from 1 and deleted entries print as "~" so the
numbering stays stable across deletions.

Examples:
  grepl list              # Print the global list
  grepl list --local      # Print this directory's list
  grepl list --json       # Machine-readable output`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output entries as JSON")
	listCmd.Flags().StringVar(&colorMode, "color", "auto", "color output: auto, always, or never")

	rootCmd.AddCommand(listCmd)
}

type listEntry struct {
	Index int    `json:"index"`
	File  string `json:"file,omitempty"`
	Line  int    `json:"line,omitempty"`
	Col   int    `json:"col,omitempty"`
	Text  string `json:"text,omitempty"`
	Dead  bool   `json:"dead,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	applyColorMode()

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

	if listJSON {
		entries := make([]listEntry, len(list))
		for i, e := range list {
			entries[i] = listEntry{
				Index: i + 1,
				File:  e.File,
				Line:  e.Line,
				Col:   e.Col,
				Text:  e.Text,
				Dead:  e.IsTombstone(),
			}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		return enc.Encode(entries)
	}

	if len(list) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	for i, e := range list {
		if e.IsTombstone() {
			fmt.Printf("%s%4d: ~%s\n", colorDim, i+1, colorReset)
			continue
		}
		loc := fmt.Sprintf("%s:%d", e.File, e.Line)
		if e.Col > 0 {
			loc = fmt.Sprintf("%s:%d", loc, e.Col)
		}
		fmt.Printf("%4d: %s%s%s: %s\n", i+1, colorCyan, loc, colorReset, e.Text)
	}
	return nil
}
