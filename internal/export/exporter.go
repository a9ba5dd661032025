package export

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/cj3636/gitdiffview/internal/diff"
	"github.com/cj3636/gitdiffview/internal/render"
)

// Format represents the desired export format.
type Format string

const (
	// FormatHTML emits an HTML document for the diff.
	FormatHTML Format = "html"
	// FormatMarkdown emits a Markdown diff code block.
	FormatMarkdown Format = "markdown"
	// FormatANSI emits an ANSI-colored string.
	FormatANSI Format = "ansi"
)

// Options control how a diff is exported.
type Options struct {
	// Title will be shown in HTML/Markdown outputs when provided.
	Title string
}

// ParseFormat resolves a format name and its aliases.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(raw) {
	case "", string(FormatANSI), "text":
		return FormatANSI, nil
	case string(FormatHTML), "htm":
		return FormatHTML, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", raw)
	}
}

// Render returns the whole document in the requested format.
func Render(doc *render.Document, format Format, opts Options) (string, error) {
	if doc == nil {
		return "", errors.New("document is nil")
	}

	switch format {
	case FormatHTML:
		return renderHTML(doc, opts), nil
	case FormatMarkdown:
		return renderMarkdown(doc, opts), nil
	case FormatANSI:
		return renderANSI(doc, opts), nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
}

func renderHTML(doc *render.Document, opts Options) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">")
	b.WriteString("<style>body{background:#ffffff;font-family:Menlo,Consolas,monospace;}" +
		"h1{font-size:18px;margin-bottom:12px;}" +
		"</style></head><body>")

	if opts.Title != "" {
		fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(opts.Title))
	}
	b.WriteString(HTMLFragment(doc.Fragments(0, doc.Len())))
	b.WriteString("</body></html>")
	return b.String()
}

func renderMarkdown(doc *render.Document, opts Options) string {
	var b strings.Builder

	if opts.Title != "" {
		b.WriteString("# ")
		b.WriteString(opts.Title)
		b.WriteString("\n\n")
	}

	b.WriteString("```diff\n")
	b.WriteString(doc.Text())
	b.WriteString("```\n")
	return b.String()
}

func renderANSI(doc *render.Document, opts Options) string {
	var b strings.Builder
	if opts.Title != "" {
		fmt.Fprintf(&b, "%s\n\n", opts.Title)
	}

	for _, r := range doc.Runs() {
		if r.Role == diff.Plain {
			fmt.Fprintf(&b, "%s\n", r.Text)
			continue
		}
		fmt.Fprintf(&b, "%s%s\u001b[0m\n", ansiStyle(r), r.Text)
	}
	return b.String()
}

// ansiStyle uses a 24-bit foreground so the export matches the scheme.
func ansiStyle(r render.Run) string {
	weight := ""
	if r.Bold {
		weight = "1;"
	}
	return fmt.Sprintf("\u001b[%s38;2;%d;%d;%dm", weight, r.Color.R, r.Color.G, r.Color.B)
}
