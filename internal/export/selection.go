package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/cj3636/gitdiffview/internal/render"
)

// Payload carries both clipboard flavours of one copy.
type Payload struct {
	Plain string
	HTML  string
}

// Selection derives the plain and HTML text of [start, end) from the
// document's runs. An empty range reports false.
func Selection(doc *render.Document, start, end int) (Payload, bool) {
	if doc == nil || start == end {
		return Payload{}, false
	}
	frags := doc.Fragments(start, end)
	if len(frags) == 0 {
		return Payload{}, false
	}

	var plain strings.Builder
	for _, f := range frags {
		plain.WriteString(f.Text)
	}
	return Payload{Plain: plain.String(), HTML: HTMLFragment(frags)}, true
}

// HTMLFragment wraps one span per run in a monospace pre block.
func HTMLFragment(runs []render.Run) string {
	var b strings.Builder
	b.WriteString(`<pre style="font-family:monospace">`)
	for _, r := range runs {
		style := "color:" + r.Color.Hex()
		if r.Bold {
			style += ";font-weight:bold"
		}
		fmt.Fprintf(&b, `<span style="%s">%s</span>`, style, html.EscapeString(r.Text))
	}
	b.WriteString("</pre>")
	return b.String()
}

// CopySelection writes the selection to w as a single payload. It reports
// whether anything was written; an empty range is a no-op.
func CopySelection(w ClipboardWriter, doc *render.Document, start, end int) (bool, error) {
	p, ok := Selection(doc, start, end)
	if !ok {
		return false, nil
	}
	if err := w.Write(p); err != nil {
		return false, fmt.Errorf("writing clipboard: %w", err)
	}
	return true, nil
}
