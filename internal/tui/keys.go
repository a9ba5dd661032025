package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/cj3636/gitdiffview/internal/config"
)

// keyMap holds the bindings resolved from the configured keybindings.
type keyMap struct {
	Quit         key.Binding
	Help         key.Binding
	NextPane     key.Binding
	PrevPane     key.Binding
	Select       key.Binding
	MarkFirst    key.Binding
	MarkSecond   key.Binding
	LoadCommits  key.Binding
	ShowFiles    key.Binding
	EditRepo     key.Binding
	RepoHistory  key.Binding
	EditEncoding key.Binding
	PickEncoding key.Binding
	CycleScheme  key.Binding
	Visual       key.Binding
	Copy         key.Binding
	CopyAll      key.Binding
	Cancel       key.Binding
	Down         key.Binding
	Up           key.Binding
	PageDown     key.Binding
	PageUp       key.Binding
	Top          key.Binding
	Bottom       key.Binding
}

func newKeyMap(kb config.Keybindings) keyMap {
	bind := func(action, desc string) key.Binding {
		keys := kb[action]
		label := ""
		if len(keys) > 0 {
			label = keys[0]
		}
		return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
	}
	return keyMap{
		Quit:         bind("quit", "quit"),
		Help:         bind("toggle_help", "toggle help"),
		NextPane:     bind("next_pane", "next pane"),
		PrevPane:     bind("prev_pane", "previous pane"),
		Select:       bind("select", "select"),
		MarkFirst:    bind("mark_first", "mark commit 1"),
		MarkSecond:   bind("mark_second", "mark commit 2"),
		LoadCommits:  bind("load_commits", "load commits"),
		ShowFiles:    bind("show_files", "show files"),
		EditRepo:     bind("edit_repo", "open repository"),
		RepoHistory:  bind("repo_history", "recent repositories"),
		EditEncoding: bind("edit_encoding", "type encoding"),
		PickEncoding: bind("pick_encoding", "pick encoding"),
		CycleScheme:  bind("cycle_scheme", "cycle colours"),
		Visual:       bind("visual", "visual select"),
		Copy:         bind("copy", "copy selection"),
		CopyAll:      bind("copy_all", "copy whole diff"),
		Cancel:       bind("cancel", "cancel"),
		Down:         bind("scroll_down", "down"),
		Up:           bind("scroll_up", "up"),
		PageDown:     bind("page_down", "half page down"),
		PageUp:       bind("page_up", "half page up"),
		Top:          bind("go_top", "top"),
		Bottom:       bind("go_bottom", "bottom"),
	}
}

// helpColumns groups bindings for the help panel.
func (k keyMap) helpColumns() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.Up, k.PageDown, k.PageUp, k.Top, k.Bottom},
		{k.NextPane, k.PrevPane, k.Select, k.MarkFirst, k.MarkSecond, k.LoadCommits},
		{k.ShowFiles, k.EditRepo, k.RepoHistory, k.EditEncoding, k.PickEncoding, k.CycleScheme},
		{k.Visual, k.Copy, k.CopyAll, k.Cancel, k.Help, k.Quit},
	}
}
