package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cj3636/gitdiffview/internal/history"
)

const (
	listRepos     = "repos"
	listEncodings = "encodings"
)

var historyCmd = &cobra.Command{
	Use:       "history [repos|encodings]",
	Short:     "Show remembered repositories or encodings, most recent first",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{listRepos, listEncodings},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		name := listRepos
		if len(args) == 1 {
			name = args[0]
		}
		for _, e := range historyStore(a, name).Load() {
			fmt.Fprintln(cmd.OutOrStdout(), e)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:       "clear [repos|encodings]",
	Short:     "Forget remembered repositories or encodings (default: both)",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{listRepos, listEncodings},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		names := []string{listRepos, listEncodings}
		if len(args) == 1 {
			names = args
		}
		for _, name := range names {
			if err := historyStore(a, name).Save(nil, ""); err != nil {
				return fmt.Errorf("clearing %s history: %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s history.\n", name)
		}
		return nil
	},
}

func historyStore(a *app, name string) *history.Store {
	if name == listEncodings {
		return a.session.Encodings
	}
	return a.session.Repos
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
