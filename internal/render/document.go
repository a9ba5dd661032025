// Package render turns classified diff lines into styled runs and paints them.
package render

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/cj3636/gitdiffview/internal/config"
	"github.com/cj3636/gitdiffview/internal/diff"
)

// PlainColor is the foreground of unclassified lines.
var PlainColor = config.Black

// Run is a contiguous span of text sharing one colour and weight.
type Run struct {
	Text  string
	Color config.Color
	Bold  bool
	Role  diff.Role
}

// Document is an immutable rendering of styled lines. Its text is the
// concatenation of every run followed by a newline.
type Document struct {
	lines   []diff.StyledLine
	runs    []Run
	offsets []int // byte offset of each run's first character
	text    string
	scheme  config.ColorScheme
}

// Render builds a fresh document from lines using scheme.
func Render(lines []diff.StyledLine, scheme config.ColorScheme) *Document {
	d := &Document{
		lines:   append([]diff.StyledLine(nil), lines...),
		runs:    make([]Run, 0, len(lines)),
		offsets: make([]int, 0, len(lines)),
		scheme:  scheme,
	}

	var b strings.Builder
	for _, l := range lines {
		d.offsets = append(d.offsets, b.Len())
		d.runs = append(d.runs, runFor(l, scheme))
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	d.text = b.String()
	return d
}

// Message renders text as plain lines, used for errors shown in place of a
// diff.
func Message(text string) *Document {
	lines := diff.NewClassifier(diff.Rule{Match: func(string) bool { return true }, Role: diff.Plain}).Classify(text)
	return Render(lines, config.ColorScheme{})
}

func runFor(l diff.StyledLine, scheme config.ColorScheme) Run {
	r := Run{Text: l.Text, Role: l.Role, Color: PlainColor}
	switch l.Role {
	case diff.Added:
		r.Color, r.Bold = scheme.Added, true
	case diff.Removed:
		r.Color, r.Bold = scheme.Removed, true
	case diff.Header:
		r.Color, r.Bold = scheme.Header, true
	}
	return r
}

// Restyle renders the same lines with another scheme.
func (d *Document) Restyle(scheme config.ColorScheme) *Document {
	return Render(d.lines, scheme)
}

// Scheme is the colour scheme the document was rendered with.
func (d *Document) Scheme() config.ColorScheme {
	return d.scheme
}

// Lines returns the styled lines the document was built from.
func (d *Document) Lines() []diff.StyledLine {
	return append([]diff.StyledLine(nil), d.lines...)
}

// Runs returns one run per line, without terminators.
func (d *Document) Runs() []Run {
	return append([]Run(nil), d.runs...)
}

// Text is the full document text.
func (d *Document) Text() string {
	return d.text
}

// Len is the length of Text in bytes.
func (d *Document) Len() int {
	return len(d.text)
}

// LineCount is the number of lines.
func (d *Document) LineCount() int {
	return len(d.runs)
}

// Fragments returns the runs touching [start, end), clipped to the range.
// Each run carries its newline terminator. Offsets are clamped to the
// document, a reversed range is swapped and an offset inside a multi-byte
// character is widened to include the whole character.
func (d *Document) Fragments(start, end int) []Run {
	start, end = d.clamp(start, end)
	if start == end {
		return nil
	}

	first := sort.Search(len(d.offsets), func(i int) bool {
		return d.offsets[i]+len(d.runs[i].Text)+1 > start
	})

	var out []Run
	for i := first; i < len(d.runs) && d.offsets[i] < end; i++ {
		r := d.runs[i]
		full := r.Text + "\n"
		lo := max(start-d.offsets[i], 0)
		hi := min(end-d.offsets[i], len(full))
		r.Text = full[lo:hi]
		out = append(out, r)
	}
	return out
}

// LineOffsets maps the inclusive line range [first, last] to byte offsets
// [start, end) including the last line's terminator.
func (d *Document) LineOffsets(first, last int) (int, int) {
	if len(d.runs) == 0 {
		return 0, 0
	}
	if first > last {
		first, last = last, first
	}
	first = min(max(first, 0), len(d.runs)-1)
	last = min(max(last, 0), len(d.runs)-1)
	return d.offsets[first], d.offsets[last] + len(d.runs[last].Text) + 1
}

func (d *Document) clamp(start, end int) (int, int) {
	if start > end {
		start, end = end, start
	}
	start = min(max(start, 0), len(d.text))
	end = min(max(end, 0), len(d.text))
	// widen to whole runes so no fragment splits a multi-byte character
	for start > 0 && start < len(d.text) && !utf8.RuneStart(d.text[start]) {
		start--
	}
	for end < len(d.text) && !utf8.RuneStart(d.text[end]) {
		end++
	}
	return start, end
}
