package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cj3636/gitdiffview/internal/config"
	"github.com/cj3636/gitdiffview/internal/diff"
)

// Painter draws document runs for the terminal.
type Painter struct {
	styles map[diff.Role]lipgloss.Style
	tab    string
}

// NewPainter builds lipgloss styles from scheme. Plain lines keep the
// terminal's default foreground.
func NewPainter(scheme config.ColorScheme, tabSize int) *Painter {
	if tabSize <= 0 {
		tabSize = 4
	}
	bold := lipgloss.NewStyle().Bold(true)
	return &Painter{
		styles: map[diff.Role]lipgloss.Style{
			diff.Plain:   lipgloss.NewStyle(),
			diff.Added:   bold.Foreground(scheme.Added.Lipgloss()),
			diff.Removed: bold.Foreground(scheme.Removed.Lipgloss()),
			diff.Header:  bold.Foreground(scheme.Header.Lipgloss()),
		},
		tab: strings.Repeat(" ", tabSize),
	}
}

// Paint renders one run without its terminator.
func (p *Painter) Paint(r Run) string {
	text := strings.ReplaceAll(strings.TrimSuffix(r.Text, "\n"), "\t", p.tab)
	text = strings.TrimSuffix(text, "\r")
	return p.styles[r.Role].Render(text)
}

// Lines paints every line of doc.
func (p *Painter) Lines(doc *Document) []string {
	runs := doc.Runs()
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = p.Paint(r)
	}
	return out
}
