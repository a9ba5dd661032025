package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cj3636/gitdiffview/internal/config"
	"github.com/cj3636/gitdiffview/internal/diff"
	"github.com/cj3636/gitdiffview/internal/export"
)

var (
	flagFormat string
	flagOutput string
	flagCopy   bool
	flagScheme string
)

var diffCmd = &cobra.Command{
	Use:   "diff <from> <to> <file>",
	Short: "Print the colourised diff of a file between two revisions",
	Long: `Print the diff of a file between two revisions, classified into header,
added and removed lines. Use --format to choose ANSI, HTML or Markdown output,
--output to write it to a file and --copy to put it on the clipboard.`,
	Args: cobra.ExactArgs(3),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringVarP(&flagFormat, "format", "f", "ansi", "output format: ansi, html or markdown")
	diffCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "write the rendered diff to this file")
	diffCmd.Flags().BoolVar(&flagCopy, "copy", false, "copy the diff to the clipboard as text and HTML")
	diffCmd.Flags().StringVar(&flagScheme, "scheme", "", "colour preset: default, classic, solarized or dracula")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(flagFormat)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	s := a.session
	if flagScheme != "" {
		preset, err := config.ParsePreset(flagScheme)
		if err != nil {
			return err
		}
		if err := s.SetScheme(config.SchemeForPreset(preset, a.cfg.HighContrast)); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	if err := a.openRepo(ctx); err != nil {
		return err
	}
	from, to, file := args[0], args[1], args[2]
	if err := s.ShowRevisions(ctx, from, to, file); err != nil {
		return err
	}

	doc := s.Document
	if !diff.GetStats(doc.Lines()).HasChanges() {
		fmt.Fprintf(cmd.ErrOrStderr(), "No differences in %s between %s and %s\n", file, from, to)
		return nil
	}

	rendered, err := export.Render(doc, format, export.Options{
		Title: fmt.Sprintf("%s: %s..%s", filepath.Base(file), from, to),
	})
	if err != nil {
		return fmt.Errorf("exporting diff: %w", err)
	}

	if flagOutput != "" {
		if err := os.WriteFile(flagOutput, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Diff saved to %s\n", flagOutput)
	}

	if flagCopy {
		if _, err := s.Copy(0, doc.Len()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Diff copied to clipboard.")
	}

	if flagOutput == "" && !flagCopy {
		fmt.Fprint(cmd.OutOrStdout(), rendered)
	}
	return nil
}
