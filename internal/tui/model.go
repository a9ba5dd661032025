package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cj3636/gitdiffview/internal/config"
	"github.com/cj3636/gitdiffview/internal/render"
	"github.com/cj3636/gitdiffview/internal/session"
)

type pane int

const (
	paneBranches pane = iota
	paneCommits
	paneFiles
	paneDiff
	paneCount
)

func (p pane) String() string {
	switch p {
	case paneBranches:
		return "Branches"
	case paneCommits:
		return "Commits"
	case paneFiles:
		return "Files"
	default:
		return "Diff"
	}
}

type inputMode int

const (
	inputNone inputMode = iota
	inputRepo
	inputEncoding
)

type pickerKind int

const (
	pickRepo pickerKind = iota
	pickEncoding
)

// Picker is a modal list of recent repositories or encodings.
type Picker struct {
	Visible bool
	Kind    pickerKind
	Entries []string
	Cursor  int
}

// Model represents the application state
type Model struct {
	ctx             context.Context
	session         *session.Session
	config          *config.Config
	keys            keyMap
	styles          *Styles
	painter         *render.Painter
	preset          config.ThemePreset
	customScheme    bool
	focus           pane
	cursor          [paneCount]int
	viewport        viewport.Model
	lines           []string
	diffCursor      int
	visual          bool
	anchor          int
	input           textinput.Model
	inputMode       inputMode
	picker          Picker
	width           int
	height          int
	listWidth       int
	showHelp        bool
	status          string
	err             error
	helpPanelHeight int
}

// Styles holds all the lipgloss styles
type Styles struct {
	lineNumber lipgloss.Style
	border     lipgloss.Style
	focused    lipgloss.Style
	title      lipgloss.Style
	help       lipgloss.Style
	statusBar  lipgloss.Style
	errorText  lipgloss.Style
	cursor     lipgloss.Style
	marker     lipgloss.Style
	modal      lipgloss.Style
}

// NewModel creates a TUI over an already constructed session.
func NewModel(ctx context.Context, s *session.Session, cfg *config.Config) Model {
	ti := textinput.New()
	ti.CharLimit = 4096

	vp := viewport.New(80, 20)

	m := Model{
		ctx:             ctx,
		session:         s,
		config:          cfg,
		keys:            newKeyMap(cfg.Keybindings),
		styles:          createStyles(cfg.Theme),
		painter:         render.NewPainter(s.Scheme, cfg.TabSize),
		preset:          cfg.ThemePreset,
		viewport:        vp,
		input:           ti,
		listWidth:       36,
		helpPanelHeight: 9,
	}
	if p, ok := config.PresetForScheme(s.Scheme, cfg.HighContrast); ok {
		m.preset = p
		m.styles = createStyles(config.ThemeForPreset(p, cfg.HighContrast))
	} else {
		m.customScheme = true
	}
	m.syncBranchCursor()
	m.refreshDiff()
	if s.Repo == "" {
		m.status = "press " + m.keys.EditRepo.Help().Key + " to open a repository"
	}
	return m
}

// createStyles initializes all lipgloss styles based on theme
func createStyles(theme config.Theme) *Styles {
	return &Styles{
		lineNumber: lipgloss.NewStyle().
			Foreground(theme.LineNumberFg).
			Width(5).
			Align(lipgloss.Right),
		border: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(theme.BorderFg),
		focused: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(theme.FocusFg),
		title: lipgloss.NewStyle().
			Foreground(theme.TitleFg).
			Background(theme.TitleBg).
			Bold(true).
			Padding(0, 1),
		help: lipgloss.NewStyle().
			Foreground(theme.HelpFg).
			Italic(true),
		statusBar: lipgloss.NewStyle().
			Foreground(theme.TitleFg).
			Background(theme.TitleBg).
			Padding(0, 1),
		errorText: lipgloss.NewStyle().
			Foreground(theme.ErrorFg).
			Bold(true),
		cursor: lipgloss.NewStyle().
			Background(theme.SelectionBg).
			Bold(true),
		marker: lipgloss.NewStyle().
			Foreground(theme.FocusFg).
			Bold(true),
		modal: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.BorderFg).
			Padding(1, 2),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	nm, ok := next.(Model)
	if !ok {
		return next, cmd
	}
	if w := nm.session.TakeWarnings(); w != nil && nm.err == nil {
		nm.err = w
	}
	return nm, cmd
}

func (m Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.inputMode != inputNone {
			return m.handleInputKey(msg)
		}
		if m.picker.Visible {
			return m.handlePickerKey(msg)
		}

		m.err = nil
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			m.updateLayout()
		case key.Matches(msg, m.keys.NextPane):
			m.focus = (m.focus + 1) % paneCount
			m.syncViewport()
		case key.Matches(msg, m.keys.PrevPane):
			m.focus = (m.focus - 1 + paneCount) % paneCount
			m.syncViewport()
		case key.Matches(msg, m.keys.EditRepo):
			return m, m.openInput(inputRepo, "repository: ", m.session.Repo)
		case key.Matches(msg, m.keys.EditEncoding):
			return m, m.openInput(inputEncoding, "encoding: ", m.session.Encoding)
		case key.Matches(msg, m.keys.RepoHistory):
			m.openPicker(pickRepo, m.session.RepositoryHistory())
		case key.Matches(msg, m.keys.PickEncoding):
			m.openPicker(pickEncoding, m.session.EncodingOptions())
		case key.Matches(msg, m.keys.CycleScheme):
			m.cycleScheme()
		case key.Matches(msg, m.keys.LoadCommits):
			m.loadCommits()
		case key.Matches(msg, m.keys.ShowFiles):
			m.loadFiles()
		case key.Matches(msg, m.keys.CopyAll):
			m.copyAll()
		default:
			if m.focus == paneDiff {
				m.handleDiffKey(msg)
			} else {
				m.handleListKey(msg)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
	}

	return m, nil
}

func (m *Model) handleListKey(msg tea.KeyMsg) {
	n := m.listLen(m.focus)
	c := &m.cursor[m.focus]
	switch {
	case key.Matches(msg, m.keys.Down):
		if *c < n-1 {
			*c++
		}
	case key.Matches(msg, m.keys.Up):
		if *c > 0 {
			*c--
		}
	case key.Matches(msg, m.keys.Top):
		*c = 0
	case key.Matches(msg, m.keys.Bottom):
		*c = max(0, n-1)
	case key.Matches(msg, m.keys.MarkFirst):
		if m.focus == paneCommits && n > 0 {
			m.session.SelectCommits(*c, m.session.Second)
			m.refreshDiff()
		}
	case key.Matches(msg, m.keys.MarkSecond):
		if m.focus == paneCommits && n > 0 {
			m.session.SelectCommits(m.session.First, *c)
			m.refreshDiff()
		}
	case key.Matches(msg, m.keys.Select):
		if n == 0 {
			return
		}
		switch m.focus {
		case paneBranches:
			m.session.SelectBranch(m.session.Branches[*c])
			m.loadCommits()
		case paneCommits:
			m.session.SelectCommits(*c, m.session.Second)
			m.refreshDiff()
		case paneFiles:
			m.showDiff(m.session.Files[*c])
		}
	}
}

func (m *Model) handleDiffKey(msg tea.KeyMsg) {
	n := len(m.lines)
	half := max(1, m.viewport.Height/2)
	switch {
	case key.Matches(msg, m.keys.Down):
		m.moveDiffCursor(1)
	case key.Matches(msg, m.keys.Up):
		m.moveDiffCursor(-1)
	case key.Matches(msg, m.keys.PageDown):
		m.moveDiffCursor(half)
	case key.Matches(msg, m.keys.PageUp):
		m.moveDiffCursor(-half)
	case key.Matches(msg, m.keys.Top):
		m.moveDiffCursor(-n)
	case key.Matches(msg, m.keys.Bottom):
		m.moveDiffCursor(n)
	case key.Matches(msg, m.keys.Visual):
		if n == 0 {
			return
		}
		m.visual = !m.visual
		m.anchor = m.diffCursor
		m.syncViewport()
	case key.Matches(msg, m.keys.Cancel):
		m.visual = false
		m.syncViewport()
	case key.Matches(msg, m.keys.Copy):
		m.copySelection()
	}
}

func (m *Model) moveDiffCursor(delta int) {
	if len(m.lines) == 0 {
		return
	}
	m.diffCursor = min(max(m.diffCursor+delta, 0), len(m.lines)-1)
	m.syncViewport()
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeInput()
		return *m, nil
	case tea.KeyEnter:
		mode, value := m.inputMode, m.input.Value()
		m.closeInput()
		switch mode {
		case inputRepo:
			m.openRepo(value)
		case inputEncoding:
			m.selectEncoding(value)
		}
		return *m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return *m, cmd
}

func (m *Model) openInput(mode inputMode, prompt, value string) tea.Cmd {
	m.inputMode = mode
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.updateLayout()
	return m.input.Focus()
}

func (m *Model) closeInput() {
	m.inputMode = inputNone
	m.input.Blur()
	m.updateLayout()
}

func (m *Model) openPicker(kind pickerKind, entries []string) {
	m.picker = Picker{Visible: true, Kind: kind, Entries: entries}
}

func (m *Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.picker.Visible = false
	case key.Matches(msg, m.keys.Up):
		if m.picker.Cursor > 0 {
			m.picker.Cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.picker.Cursor < len(m.picker.Entries)-1 {
			m.picker.Cursor++
		}
	case key.Matches(msg, m.keys.Select):
		m.picker.Visible = false
		if len(m.picker.Entries) == 0 {
			return *m, nil
		}
		entry := m.picker.Entries[m.picker.Cursor]
		switch m.picker.Kind {
		case pickRepo:
			m.openRepo(entry)
		case pickEncoding:
			m.selectEncoding(entry)
		}
	}
	return *m, nil
}

func (m *Model) openRepo(path string) {
	err := m.session.Open(m.ctx, path)
	m.cursor = [paneCount]int{}
	m.syncBranchCursor()
	m.refreshDiff()
	if err != nil {
		m.err = err
		return
	}
	m.focus = paneBranches
	m.status = fmt.Sprintf("opened %s (%d branches)", m.session.Repo, len(m.session.Branches))
}

func (m *Model) syncBranchCursor() {
	for i, b := range m.session.Branches {
		if b == m.session.Branch {
			m.cursor[paneBranches] = i
		}
	}
}

func (m *Model) loadCommits() {
	err := m.session.LoadCommits(m.ctx)
	m.cursor[paneCommits] = 0
	m.cursor[paneFiles] = 0
	m.refreshDiff()
	if err != nil {
		m.err = err
		return
	}
	m.focus = paneCommits
	m.status = fmt.Sprintf("%d commits on %s", len(m.session.Commits), m.session.Branch)
}

func (m *Model) loadFiles() {
	if !m.session.HasSelection() {
		m.err = session.ErrNoSelection
		return
	}
	err := m.session.LoadFiles(m.ctx, m.session.First, m.session.Second)
	m.cursor[paneFiles] = 0
	if err != nil {
		m.err = err
		return
	}
	m.focus = paneFiles
	m.status = fmt.Sprintf("%d changed files", len(m.session.Files))
}

func (m *Model) showDiff(file string) {
	err := m.session.ShowDiff(m.ctx, file)
	m.refreshDiff()
	m.focus = paneDiff
	m.syncViewport()
	if err != nil {
		m.err = err
	}
}

func (m *Model) selectEncoding(name string) {
	if err := m.session.SelectEncoding(m.ctx, name); err != nil {
		m.err = err
		return
	}
	m.refreshDiff()
	m.status = "encoding " + m.session.Encoding
}

// SetError shows err in the status bar, for failures that happened before
// the program started.
func (m *Model) SetError(err error) {
	m.err = err
}

func (m *Model) cycleScheme() {
	next := config.NextPreset(m.preset)
	if m.customScheme {
		next = config.Presets[0]
	}
	scheme := config.SchemeForPreset(next, m.config.HighContrast)
	if err := m.session.SetScheme(scheme); err != nil {
		m.err = err
		return
	}
	m.preset = next
	m.customScheme = false
	m.styles = createStyles(config.ThemeForPreset(next, m.config.HighContrast))
	m.painter = render.NewPainter(scheme, m.config.TabSize)
	m.repaint()
	m.status = "colours: " + string(next)
}

func (m *Model) copySelection() {
	first, last := m.diffCursor, m.diffCursor
	if m.visual {
		first = m.anchor
	}
	ok, err := m.session.CopyLines(first, last)
	if err != nil {
		m.err = err
		return
	}
	if ok {
		m.status = fmt.Sprintf("copied %d line(s)", abs(last-first)+1)
		m.visual = false
		m.syncViewport()
	}
}

func (m *Model) copyAll() {
	doc := m.session.Document
	if doc == nil {
		return
	}
	ok, err := m.session.Copy(0, doc.Len())
	if err != nil {
		m.err = err
		return
	}
	if ok {
		m.status = fmt.Sprintf("copied %d line(s)", doc.LineCount())
	}
}

// refreshDiff repaints the session document and scrolls to the top.
func (m *Model) refreshDiff() {
	m.diffCursor = 0
	m.visual = false
	m.repaint()
	m.viewport.GotoTop()
}

func (m *Model) repaint() {
	m.lines = nil
	if doc := m.session.Document; doc != nil {
		m.lines = m.painter.Lines(doc)
	}
	if m.diffCursor >= len(m.lines) {
		m.diffCursor = max(0, len(m.lines)-1)
	}
	m.syncViewport()
}

// syncViewport redraws the diff pane and keeps the cursor visible.
func (m *Model) syncViewport() {
	m.viewport.SetContent(m.renderDiffContent())
	if m.diffCursor < m.viewport.YOffset {
		m.viewport.SetYOffset(m.diffCursor)
	} else if h := m.viewport.Height; h > 0 && m.diffCursor >= m.viewport.YOffset+h {
		m.viewport.SetYOffset(m.diffCursor - h + 1)
	}
}

func (m *Model) listLen(p pane) int {
	switch p {
	case paneBranches:
		return len(m.session.Branches)
	case paneCommits:
		return len(m.session.Commits)
	case paneFiles:
		return len(m.session.Files)
	default:
		return len(m.lines)
	}
}

// selection returns the highlighted diff line range, or ok=false when the
// diff pane is not focused.
func (m Model) selection() (first, last int, ok bool) {
	if m.focus != paneDiff || len(m.lines) == 0 {
		return 0, 0, false
	}
	first, last = m.diffCursor, m.diffCursor
	if m.visual {
		first = m.anchor
	}
	if first > last {
		first, last = last, first
	}
	return first, last, true
}

// updateLayout calculates pane sizes based on screen size and open panels
func (m *Model) updateLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	m.listWidth = min(40, max(20, m.width/3))

	// title + status bar + pane borders
	body := m.height - 4
	if m.inputMode != inputNone {
		body--
	}
	if m.showHelp {
		body -= m.helpPanelHeight
	}
	body = max(body, 5)

	m.viewport.Width = max(10, m.width-m.listWidth-4)
	m.viewport.Height = body
	m.syncViewport()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
