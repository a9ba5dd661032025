package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cj3636/gitdiffview/internal/config"
	"github.com/cj3636/gitdiffview/internal/export"
	"github.com/cj3636/gitdiffview/internal/gitquery"
	"github.com/cj3636/gitdiffview/internal/history"
	"github.com/cj3636/gitdiffview/internal/session"
)

const sampleDiff = "diff --git a/f b/f\n--- a/f\n+++ b/f\n@@ -1,2 +1,2 @@\n ctx\n-old\n+new\n"

type recordingClipboard struct {
	payloads []export.Payload
	err      error
}

func (c *recordingClipboard) Write(p export.Payload) error {
	if c.err != nil {
		return c.err
	}
	c.payloads = append(c.payloads, p)
	return nil
}

type harness struct {
	t    *testing.T
	dir  string
	m    Model
	clip *recordingClipboard
	sess *session.Session
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	q := &gitquery.MockQuery{
		BranchesFunc: func(string) ([]string, error) { return []string{"dev", "main"}, nil },
		CommitsFunc: func(string, string) ([]gitquery.Commit, error) {
			return []gitquery.Commit{{ID: "cccccccc", Subject: "third"}, {ID: "bbbbbbbb", Subject: "second"}, {ID: "aaaaaaaa", Subject: "first"}}, nil
		},
		ChangedFilesFunc: func(string, string, string) ([]string, error) { return []string{"f", "g"}, nil },
		DiffFunc:         func(string, string, string, string, string) (string, error) { return sampleDiff, nil },
	}

	cfg, s := newSession(dir, filepath.Join(dir, "hist"), q)
	clip := &recordingClipboard{}
	s.Clipboard = clip

	m := NewModel(context.Background(), s, cfg)
	h := &harness{t: t, dir: dir, m: m, clip: clip, sess: s}
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

func newSession(dir, histPath string, q gitquery.Query) (*config.Config, *session.Session) {
	cfg := config.DefaultConfig()
	prefs := config.LoadPreferences(filepath.Join(dir, "prefs.yaml"))
	repos := history.New(history.FileBackend{Path: histPath}, history.IsGitRepo)
	encs := history.New(history.PrefsBackend{Store: prefs, Key: config.KeyEncodingHistory}, history.NonEmpty)
	return cfg, session.New(cfg, prefs, q, repos, encs, nil)
}

func (h *harness) repo(name string) string {
	h.t.Helper()
	dir := filepath.Join(h.dir, name)
	require.NoError(h.t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	return dir
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func (h *harness) keys(keys ...string) {
	h.t.Helper()
	for _, k := range keys {
		switch k {
		case "enter":
			h.send(tea.KeyMsg{Type: tea.KeyEnter})
		case "esc":
			h.send(tea.KeyMsg{Type: tea.KeyEsc})
		case "tab":
			h.send(tea.KeyMsg{Type: tea.KeyTab})
		default:
			h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
		}
	}
}

func (h *harness) typeText(s string) {
	h.t.Helper()
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// openDiff walks from an empty model to a rendered diff of "f".
func (h *harness) openDiff() {
	h.t.Helper()
	h.keys("o")
	h.m.input.SetValue("")
	h.typeText(h.repo("repo"))
	h.keys("enter", "enter", "F", "enter")
}

func TestNewModelWithoutRepository(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.m.status, "open a repository")
	assert.Contains(t, h.m.View(), "No diff to display")
}

func TestQuit(t *testing.T) {
	h := newHarness(t)
	cmd := h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestOpenRepositoryThroughInput(t *testing.T) {
	h := newHarness(t)
	repo := h.repo("repo")

	h.keys("o")
	assert.Equal(t, inputRepo, h.m.inputMode)
	h.m.input.SetValue("")
	h.typeText(repo)
	h.keys("enter")

	assert.Equal(t, inputNone, h.m.inputMode)
	assert.Equal(t, repo, h.sess.Repo)
	assert.Equal(t, []string{"dev", "main"}, h.sess.Branches)
	assert.Equal(t, 1, h.m.cursor[paneBranches], "cursor starts on the default branch")
	assert.Equal(t, paneBranches, h.m.focus)
}

func TestInputEscapeCancels(t *testing.T) {
	h := newHarness(t)
	h.keys("o")
	h.typeText("/somewhere")
	h.keys("esc")
	assert.Equal(t, inputNone, h.m.inputMode)
	assert.Empty(t, h.sess.Repo)
}

func TestFullFlowShowsDiff(t *testing.T) {
	h := newHarness(t)
	h.openDiff()

	require.NotNil(t, h.sess.Document)
	assert.Equal(t, 0, h.sess.First)
	assert.Equal(t, 1, h.sess.Second)
	assert.Equal(t, []string{"f", "g"}, h.sess.Files)
	assert.Equal(t, "f", h.sess.File)
	assert.Equal(t, paneDiff, h.m.focus)
	assert.Len(t, h.m.lines, 7)
	assert.Contains(t, h.m.View(), "Lines: +1 -1 @4")
}

func TestMarkCommits(t *testing.T) {
	h := newHarness(t)
	h.keys("o")
	h.m.input.SetValue(h.repo("repo"))
	h.keys("enter", "enter")
	require.Equal(t, paneCommits, h.m.focus)

	h.keys("j", "j", "2")
	assert.Equal(t, 0, h.sess.First)
	assert.Equal(t, 2, h.sess.Second)

	h.keys("k", "1")
	assert.Equal(t, 1, h.sess.First)

	h.keys("F")
	assert.Equal(t, paneFiles, h.m.focus)
}

func TestShowFilesNeedsTwoCommits(t *testing.T) {
	h := newHarness(t)
	h.keys("F")
	assert.ErrorIs(t, h.m.err, session.ErrNoSelection)
}

func TestVisualSelectionCopiesLines(t *testing.T) {
	h := newHarness(t)
	h.openDiff()

	h.keys("j", "j", "j", "j", "v", "j", "j", "y")
	require.Len(t, h.clip.payloads, 1)
	assert.Equal(t, " ctx\n-old\n+new\n", h.clip.payloads[0].Plain)
	assert.False(t, h.m.visual)
	assert.Contains(t, h.m.status, "copied 3 line(s)")
}

func TestCopyCurrentLine(t *testing.T) {
	h := newHarness(t)
	h.openDiff()

	h.keys("G", "y")
	require.Len(t, h.clip.payloads, 1)
	assert.Equal(t, "+new\n", h.clip.payloads[0].Plain)
}

func TestCopyAll(t *testing.T) {
	h := newHarness(t)
	h.openDiff()

	h.keys("Y")
	require.Len(t, h.clip.payloads, 1)
	assert.Equal(t, sampleDiff, h.clip.payloads[0].Plain)
}

func TestCopyFailureIsShown(t *testing.T) {
	h := newHarness(t)
	h.openDiff()
	h.clip.err = errors.New("no display")

	h.keys("y")
	require.Error(t, h.m.err)
	assert.Contains(t, h.m.View(), "no display")
}

func TestCycleSchemeRestyles(t *testing.T) {
	h := newHarness(t)
	h.openDiff()

	h.keys("c")
	assert.Equal(t, config.PresetClassic, h.m.preset)
	assert.Equal(t, config.SchemeForPreset(config.PresetClassic, false), h.sess.Document.Scheme())

	for range config.Presets[1:] {
		h.keys("c")
	}
	assert.Equal(t, config.PresetDefault, h.m.preset)
}

func TestEncodingInputRejectsUnknown(t *testing.T) {
	h := newHarness(t)
	h.openDiff()

	h.keys("e")
	h.m.input.SetValue("")
	h.typeText("klingon-8")
	h.keys("enter")

	assert.ErrorIs(t, h.m.err, gitquery.ErrUnsupportedEncoding)
	assert.Equal(t, "UTF-8", h.sess.Encoding)
}

func TestEncodingPicker(t *testing.T) {
	h := newHarness(t)
	h.openDiff()

	h.keys("E")
	require.True(t, h.m.picker.Visible)
	assert.Equal(t, pickEncoding, h.m.picker.Kind)

	h.keys("j", "enter")
	assert.False(t, h.m.picker.Visible)
	assert.Equal(t, "Shift_JIS", h.sess.Encoding)
	assert.Equal(t, "Shift_JIS", h.sess.EncodingOptions()[0])
}

func TestRepositoryPicker(t *testing.T) {
	h := newHarness(t)
	a, b := h.repo("a"), h.repo("b")
	require.NoError(t, h.sess.Repos.Save([]string{a}, b))

	h.keys("r")
	require.True(t, h.m.picker.Visible)
	assert.Equal(t, []string{b, a}, h.m.picker.Entries)
	assert.Contains(t, h.m.View(), "Recent repositories")

	h.keys("j", "enter")
	assert.Equal(t, a, h.sess.Repo)

	h.keys("r", "esc")
	assert.False(t, h.m.picker.Visible)
}

func TestPaneCycling(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, paneBranches, h.m.focus)
	h.keys("tab", "tab", "tab")
	assert.Equal(t, paneDiff, h.m.focus)
	h.keys("tab")
	assert.Equal(t, paneBranches, h.m.focus)
}

func TestHelpToggleShrinksViewport(t *testing.T) {
	h := newHarness(t)
	before := h.m.viewport.Height
	h.keys("?")
	assert.True(t, h.m.showHelp)
	assert.Equal(t, before-h.m.helpPanelHeight, h.m.viewport.Height)
	assert.Contains(t, h.m.View(), "copy selection")
}

func TestCustomKeybindings(t *testing.T) {
	kb := config.MergeKeybindings(config.Keybindings{"quit": {"x"}})
	keys := newKeyMap(kb)
	assert.Equal(t, []string{"x"}, keys.Quit.Keys())
	assert.Equal(t, "x", keys.Quit.Help().Key)
}

func TestStartupOpenFailureIsShown(t *testing.T) {
	ctx := context.Background()
	q := &gitquery.MockQuery{
		BranchesFunc: func(string) ([]string, error) { return nil, errors.New("fatal: not a git repository") },
	}
	dir := t.TempDir()
	cfg, s := newSession(dir, filepath.Join(dir, "hist"), q)

	err := s.Open(ctx, "/nonexistent/repo")
	require.Error(t, err)

	m := NewModel(ctx, s, cfg)
	m.SetError(err)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 200, Height: 40})
	m = next.(Model)

	require.Error(t, m.err)
	assert.Contains(t, m.err.Error(), "not a git repository")
	assert.Contains(t, m.View(), "fatal: not a git repository")
}

func TestHistoryWriteFailureIsShown(t *testing.T) {
	h := newHarness(t)
	blocker := filepath.Join(h.dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	q := h.sess.Query
	_, s := newSession(h.dir, filepath.Join(blocker, "hist"), q)
	h.sess = s
	h.m = NewModel(context.Background(), s, config.DefaultConfig())
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})

	h.keys("o")
	h.m.input.SetValue("")
	h.typeText(h.repo("repo"))
	h.keys("enter")

	assert.Equal(t, h.repo("repo"), s.Repo)
	require.Error(t, h.m.err)
	assert.Contains(t, h.m.err.Error(), "saving repository history")
}

func TestPresetFollowsRestoredScheme(t *testing.T) {
	dir := t.TempDir()
	prefs := config.LoadPreferences(filepath.Join(dir, "prefs.yaml"))
	prefs.SetScheme(config.SchemeForPreset(config.PresetDracula, false))
	require.NoError(t, prefs.Save())

	cfg, s := newSession(dir, filepath.Join(dir, "hist"), &gitquery.MockQuery{})
	m := NewModel(context.Background(), s, cfg)
	assert.Equal(t, config.PresetDracula, m.preset)
	assert.Contains(t, m.View(), "dracula")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	m = next.(Model)
	assert.Equal(t, config.NextPreset(config.PresetDracula), m.preset)
	assert.Equal(t, config.SchemeForPreset(m.preset, false), s.Scheme)
}

func TestCustomSchemeIsLabelled(t *testing.T) {
	dir := t.TempDir()
	prefs := config.LoadPreferences(filepath.Join(dir, "prefs.yaml"))
	prefs.SetScheme(config.ColorScheme{Added: config.RGB(1, 2, 3), Removed: config.RGB(4, 5, 6), Header: config.RGB(7, 8, 9)})
	require.NoError(t, prefs.Save())

	cfg, s := newSession(dir, filepath.Join(dir, "hist"), &gitquery.MockQuery{})
	m := NewModel(context.Background(), s, cfg)
	assert.True(t, m.customScheme)
	assert.Contains(t, m.View(), "custom")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	m = next.(Model)
	assert.False(t, m.customScheme)
	assert.Equal(t, config.Presets[0], m.preset)
}
