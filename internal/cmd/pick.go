package cmd

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/runger/grepl/internal/config"
	"github.com/runger/grepl/internal/picker"
	"github.com/runger/grepl/internal/store"
	"github.com/runger/grepl/internal/subst"
)

// minPickWidth is the narrowest terminal the list renders usefully in.
const minPickWidth = 20

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Prune the match list interactively",
	Long: `Open the match list in a terminal UI.

Keys:
  j/k, arrows   move
  x             delete the current entry
  v             anchor a range; d deletes it
  s             enter a substitution to run on exit
  enter, q      save the edited list
  esc, ctrl+c   discard edits

Deletions keep entry numbers stable, so the list shown by "grepl list"
afterwards lines up with what was on screen.`,
	Args: cobra.NoArgs,
	RunE: runPick,
}

func init() {
	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
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

	return runPickSession(cfg, logger, st, scopeKey(cfg))
}

// runPickSession opens the stored list in the TUI, persists the edited list,
// and runs any substitution entered at the prompt. Shared by "pick" and
// "search --pick".
func runPickSession(cfg *config.Config, logger *slog.Logger, st *store.Store, scope string) error {
	if os.Getenv("TERM") == "dumb" {
		return fmt.Errorf("interactive mode needs a capable terminal (TERM=dumb)")
	}
	if w := getTermWidth(); w < minPickWidth {
		return fmt.Errorf("terminal too narrow for interactive mode (%d columns, need %d)", w, minPickWidth)
	}

	list, err := st.List(scope)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No matches; run a search first.")
		return nil
	}

	pattern := ""
	if cfg.Search.Highlight {
		pattern, _ = st.State(patternKey(scope))
	}

	model := picker.NewModel(list, pattern, cfg.Picker.PageSize)

	// Open /dev/tty for TUI input/output so stdout stays usable for data.
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("cannot open /dev/tty: %w", err)
	}
	defer tty.Close()

	// Detect color profile from the tty and apply it to the default renderer.
	// When stdout is a pipe lipgloss defaults to Ascii; detect from the real
	// tty instead. SetColorProfile modifies the default renderer in-place so
	// the package-level styles in the picker pick it up.
	lipgloss.SetColorProfile(termenv.NewOutput(tty).ColorProfile())

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithInput(tty),
		tea.WithOutput(tty),
	)

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	m, ok := finalModel.(picker.Model)
	if !ok {
		return fmt.Errorf("unexpected model type")
	}

	if m.IsCancelled() {
		fmt.Println("Cancelled; list unchanged.")
		return nil
	}

	edited := m.List()
	if err := st.Replace(scope, edited); err != nil {
		return err
	}

	if expr := m.Expression(); expr != "" {
		o := subst.New(logger)
		changed, err := o.Run(edited, expr)
		if err != nil {
			return err
		}
		fmt.Printf("Changed %d file(s).\n", changed)
		return nil
	}

	fmt.Printf("Saved list: %d of %d entries remain.\n", edited.Live(), len(edited))
	return nil
}
