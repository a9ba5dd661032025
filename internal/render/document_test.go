package render

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cj3636/gitdiffview/internal/config"
	"github.com/cj3636/gitdiffview/internal/diff"
)

const sample = "diff --git a/x b/x\n--- a/x\n+++ b/x\n@@ -1 +1 @@\n-old\n+new\n ctx\n"

func TestRenderRuns(t *testing.T) {
	scheme := config.DefaultScheme()
	doc := Render(diff.Classify(sample), scheme)

	runs := doc.Runs()
	require.Len(t, runs, 7)
	assert.Equal(t, Run{Text: "diff --git a/x b/x", Color: scheme.Header, Bold: true, Role: diff.Header}, runs[0])
	assert.Equal(t, Run{Text: "-old", Color: scheme.Removed, Bold: true, Role: diff.Removed}, runs[4])
	assert.Equal(t, Run{Text: "+new", Color: scheme.Added, Bold: true, Role: diff.Added}, runs[5])
	assert.Equal(t, Run{Text: " ctx", Color: PlainColor, Bold: false, Role: diff.Plain}, runs[6])
	assert.Equal(t, sample, doc.Text())
	assert.Equal(t, len(sample), doc.Len())
	assert.Equal(t, 7, doc.LineCount())
}

func TestRenderIsIdempotent(t *testing.T) {
	lines := diff.Classify(sample)
	scheme := config.DefaultScheme()

	a := Render(lines, scheme)
	b := Render(lines, scheme)
	assert.Equal(t, a.Runs(), b.Runs())
	assert.Equal(t, a.Text(), b.Text())
}

func TestRestyleDoesNotAccumulate(t *testing.T) {
	doc := Render(diff.Classify(sample), config.DefaultScheme())
	classic := config.SchemeForPreset(config.PresetClassic, false)

	restyled := doc.Restyle(classic).Restyle(config.DefaultScheme()).Restyle(classic)
	assert.Equal(t, Render(diff.Classify(sample), classic).Runs(), restyled.Runs())
	assert.Equal(t, classic, restyled.Scheme())
	assert.Equal(t, doc.Lines(), restyled.Lines())
}

func TestRenderEmpty(t *testing.T) {
	doc := Render(diff.Classify(""), config.DefaultScheme())
	assert.Equal(t, 0, doc.Len())
	assert.Empty(t, doc.Fragments(0, 10))
	s, e := doc.LineOffsets(0, 3)
	assert.Equal(t, 0, s)
	assert.Equal(t, 0, e)
}

func concat(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

func TestFragmentsFullRangeRoundTrips(t *testing.T) {
	doc := Render(diff.Classify(sample), config.DefaultScheme())
	frags := doc.Fragments(0, doc.Len())
	require.Len(t, frags, 7)
	assert.Equal(t, sample, concat(frags))
}

func TestFragmentsSplitAtBoundaries(t *testing.T) {
	doc := Render(diff.Classify("-old\n+new\n"), config.DefaultScheme())
	// "-old\n" is [0,5), "+new\n" is [5,10).
	frags := doc.Fragments(2, 7)
	require.Len(t, frags, 2)
	assert.Equal(t, "ld\n", frags[0].Text)
	assert.Equal(t, diff.Removed, frags[0].Role)
	assert.Equal(t, "+n", frags[1].Text)
	assert.Equal(t, diff.Added, frags[1].Role)

	frags = doc.Fragments(4, 5)
	require.Len(t, frags, 1)
	assert.Equal(t, "\n", frags[0].Text)

	frags = doc.Fragments(5, 6)
	require.Len(t, frags, 1)
	assert.Equal(t, "+", frags[0].Text)
}

func TestFragmentsClampAndSwap(t *testing.T) {
	doc := Render(diff.Classify("-old\n+new\n"), config.DefaultScheme())
	assert.Equal(t, doc.Text(), concat(doc.Fragments(-10, 1000)))
	assert.Equal(t, concat(doc.Fragments(2, 7)), concat(doc.Fragments(7, 2)))
	assert.Empty(t, doc.Fragments(3, 3))
	assert.Empty(t, doc.Fragments(50, 60))
}

func TestFragmentsKeepWholeRunes(t *testing.T) {
	doc := Render(diff.Classify("+héllo\n"), config.DefaultScheme())

	got := concat(doc.Fragments(0, 3))
	assert.Equal(t, "+hé", got)
	assert.True(t, utf8.ValidString(got))

	got = concat(doc.Fragments(3, 5))
	assert.Equal(t, "él", got)
	assert.True(t, utf8.ValidString(got))
}

func TestLineOffsets(t *testing.T) {
	doc := Render(diff.Classify("-old\n+new\n ctx\n"), config.DefaultScheme())

	s, e := doc.LineOffsets(1, 1)
	assert.Equal(t, "+new\n", doc.Text()[s:e])

	s, e = doc.LineOffsets(2, 0)
	assert.Equal(t, doc.Text(), doc.Text()[s:e])

	s, e = doc.LineOffsets(-4, 99)
	assert.Equal(t, 0, s)
	assert.Equal(t, doc.Len(), e)
}

func TestMessage(t *testing.T) {
	doc := Message("Failed to load diff: boom\n+not an addition")
	for _, r := range doc.Runs() {
		assert.Equal(t, diff.Plain, r.Role)
		assert.False(t, r.Bold)
	}
	assert.Equal(t, "Failed to load diff: boom\n+not an addition\n", doc.Text())
}

func TestPainterLines(t *testing.T) {
	doc := Render(diff.Classify("+\tx\r\n ctx\n"), config.DefaultScheme())
	lines := NewPainter(config.DefaultScheme(), 2).Lines(doc)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "+  x")
	assert.NotContains(t, lines[0], "\r")
	assert.Contains(t, lines[1], " ctx")
}
