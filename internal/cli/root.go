// Package cli wires the cobra commands of gitdiffview.
package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cj3636/gitdiffview/internal/tui"
)

// Global flags shared across commands.
var (
	flagRepo     string
	flagBranch   string
	flagEncoding string
	flagConfig   string
	flagDebug    bool
)

// rootCmd opens the interactive viewer.
var rootCmd = &cobra.Command{
	Use:   "gitdiffview",
	Short: "Browse the diff between two commits of a git repository",
	Long: `gitdiffview lists the branches and commits of a repository, shows the files
changed between two selected commits and renders the colourised diff of a
file. Selected lines can be copied as plain text and HTML.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagRepo, "repo", "r", "", "path to the git repository (default: last used)")
	rootCmd.PersistentFlags().StringVarP(&flagBranch, "branch", "b", "", "branch to list commits from (default: master, main or first)")
	rootCmd.PersistentFlags().StringVarP(&flagEncoding, "encoding", "e", "", "text encoding of the repository files (default: last used)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default: user config dir)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "write debug logs to gitdiffview.log")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runTUI(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	s := a.session
	var openErr error
	if repo := s.InitialRepository(flagRepo); repo != "" {
		if openErr = s.Open(ctx, repo); openErr != nil {
			a.log.Warn("could not open repository", "repo", repo, "err", openErr)
		} else if flagBranch != "" {
			s.SelectBranch(flagBranch)
		}
	}

	model := tui.NewModel(ctx, s, a.cfg)
	if openErr != nil {
		model.SetError(openErr)
	} else if w := s.TakeWarnings(); w != nil {
		model.SetError(w)
	}
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	if err := s.Close(); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}
