package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/cj3636/gitdiffview/internal/diff"
)

// View renders the UI
func (m Model) View() string {
	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, m.renderLists(), m.renderDiffPane()))

	if m.inputMode != inputNone {
		sections = append(sections, m.input.View())
	}
	if m.showHelp {
		sections = append(sections, m.renderHelpPanel())
	}
	sections = append(sections, m.renderStatusBar())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if m.picker.Visible {
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.renderPicker())
	}
	return content
}

// renderTitle renders the title bar
func (m Model) renderTitle() string {
	s := m.session
	repo := "(no repository)"
	if s.Repo != "" {
		repo = truncate(s.Repo, 50)
	}
	title := fmt.Sprintf("gitdiffview: %s", repo)
	if s.Branch != "" {
		title += " [" + s.Branch + "]"
	}
	if s.File != "" {
		title += " " + filepath.Base(s.File)
	}
	scheme := string(m.preset)
	if m.customScheme {
		scheme = "custom"
	}
	title += fmt.Sprintf(" | %s | %s", s.Encoding, scheme)
	return m.styles.title.Width(max(m.width, lipgloss.Width(title))).Render(title)
}

// renderLists stacks the branch, commit and file panes.
func (m Model) renderLists() string {
	rows := max(1, m.viewport.Height/3-2)
	s := m.session

	commits := make([]string, len(s.Commits))
	for i, c := range s.Commits {
		mark := " "
		switch i {
		case s.First:
			mark = "1"
		case s.Second:
			mark = "2"
		}
		commits[i] = m.styles.marker.Render(mark) + " " + c.ShortID() + " " + c.Subject
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderList(paneBranches, s.Branches, rows),
		m.renderList(paneCommits, commits, rows),
		m.renderList(paneFiles, s.Files, rows),
	)
}

func (m Model) renderList(p pane, items []string, rows int) string {
	width := m.listWidth
	lines := []string{m.styles.help.Render(p.String())}

	cur := m.cursor[p]
	start := 0
	if cur >= rows {
		start = cur - rows + 1
	}
	end := min(len(items), start+rows)
	for i := start; i < end; i++ {
		line := ansi.Truncate(items[i], width-2, "…")
		if i == cur && m.focus == p {
			line = m.styles.cursor.Render(line)
		}
		lines = append(lines, line)
	}
	for len(lines) < rows+1 {
		lines = append(lines, "")
	}

	style := m.styles.border
	if m.focus == p {
		style = m.styles.focused
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderDiffPane() string {
	style := m.styles.border
	if m.focus == paneDiff {
		style = m.styles.focused
	}
	return style.Render(m.viewport.View())
}

// renderDiffContent draws every painted line with its number and a marker
// for the selected range.
func (m Model) renderDiffContent() string {
	if len(m.lines) == 0 {
		return m.styles.help.Render("No diff to display")
	}

	first, last, selecting := m.selection()
	width := max(1, m.viewport.Width-8)
	out := make([]string, len(m.lines))
	for i, line := range m.lines {
		mark := " "
		if selecting && i >= first && i <= last {
			mark = m.styles.marker.Render("┃")
		}
		out[i] = m.styles.lineNumber.Render(fmt.Sprintf("%d", i+1)) + mark + " " + ansi.Truncate(line, width, "…")
	}
	return strings.Join(out, "\n")
}

// renderStatusBar renders the status bar
func (m Model) renderStatusBar() string {
	var stats diff.Stats
	if doc := m.session.Document; doc != nil {
		stats = diff.GetStats(doc.Lines())
	}

	pos := "-"
	if len(m.lines) > 0 {
		pos = fmt.Sprintf("%d/%d", m.diffCursor+1, len(m.lines))
	}
	mode := ""
	if m.visual {
		mode = " | VISUAL"
	}

	status := fmt.Sprintf("Lines: +%d -%d @%d | Pos: %s%s | %s",
		stats.Added, stats.Removed, stats.Header, pos, mode, m.focus)
	if m.err != nil {
		status += " | " + m.styles.errorText.Render("Error: "+m.err.Error())
	} else if m.status != "" {
		status += " | " + m.status
	}
	status += " | ?:help q:quit"

	return m.styles.statusBar.Width(max(m.width, 1)).Render(status)
}

// renderHelpPanel renders the help panel below the main view
func (m Model) renderHelpPanel() string {
	columns := m.keys.helpColumns()
	var rows []string
	for r := 0; ; r++ {
		var cells []string
		done := true
		for _, col := range columns {
			if r >= len(col) {
				cells = append(cells, fmt.Sprintf("%-28s", ""))
				continue
			}
			done = false
			h := col[r].Help()
			cells = append(cells, fmt.Sprintf("  %-10s %-15s", h.Key, h.Desc))
		}
		if done {
			break
		}
		rows = append(rows, strings.Join(cells, "│"))
	}

	helpStyle := m.styles.help.
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(m.config.Theme.BorderFg).
		Padding(0, 1).
		Width(max(m.width-2, 10))

	return helpStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) renderPicker() string {
	header := "Recent repositories"
	if m.picker.Kind == pickEncoding {
		header = "Encodings"
	}

	lines := []string{m.styles.title.Render(header + " (enter to open, esc to close)")}
	if len(m.picker.Entries) == 0 {
		lines = append(lines, m.styles.help.Render("nothing here yet"))
	}
	for i, e := range m.picker.Entries {
		prefix := "  "
		if i == m.picker.Cursor {
			prefix = "➜ "
			e = m.styles.cursor.Render(e)
		}
		lines = append(lines, prefix+e)
	}
	return m.styles.modal.Width(max(m.width-4, 20)).Render(strings.Join(lines, "\n"))
}

func truncate(s string, maxLen int) string {
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	return "…" + ansi.TruncateLeft(s, lipgloss.Width(s)-maxLen+1, "")
}
