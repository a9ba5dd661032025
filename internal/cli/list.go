package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagLimit int

var filesCmd = &cobra.Command{
	Use:   "files <from> <to>",
	Short: "List the files changed between two revisions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if err := a.openRepo(ctx); err != nil {
			return err
		}
		files, err := a.session.Query.ChangedFiles(ctx, a.session.Repo, args[0], args[1])
		if err != nil {
			return fmt.Errorf("listing changed files: %w", err)
		}
		for _, f := range files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return nil
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "List the commits of a branch, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if err := a.openRepo(ctx); err != nil {
			return err
		}
		if err := a.session.LoadCommits(ctx); err != nil {
			return err
		}
		for i, c := range a.session.Commits {
			if flagLimit > 0 && i >= flagLimit {
				break
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.Label())
		}
		return nil
	},
}

var branchesCmd = &cobra.Command{
	Use:   "branches",
	Short: "List local branches; the default branch is marked with *",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.openRepo(cmd.Context()); err != nil {
			return err
		}
		for _, b := range a.session.Branches {
			mark := " "
			if b == a.session.Branch {
				mark = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, b)
		}
		return nil
	},
}

func init() {
	logCmd.Flags().IntVarP(&flagLimit, "limit", "n", 0, "show at most this many commits (0 for all)")
	rootCmd.AddCommand(filesCmd, logCmd, branchesCmd)
}
