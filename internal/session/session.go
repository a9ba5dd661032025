// Package session holds the state of one viewing session: the open
// repository, the two selected commits, the changed files and the rendered
// diff of the selected file.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cj3636/gitdiffview/internal/config"
	"github.com/cj3636/gitdiffview/internal/diff"
	"github.com/cj3636/gitdiffview/internal/export"
	"github.com/cj3636/gitdiffview/internal/gitquery"
	"github.com/cj3636/gitdiffview/internal/history"
	"github.com/cj3636/gitdiffview/internal/render"
)

var (
	// ErrNoRepository is returned when an operation needs an open repository.
	ErrNoRepository = errors.New("no repository selected")
	// ErrNoSelection is returned when two distinct commits are not selected.
	ErrNoSelection = errors.New("select two different commits")
)

// Session is the state shared by the TUI and the CLI commands. It is not
// safe for concurrent use.
type Session struct {
	Config     *config.Config
	Prefs      *config.Preferences
	Repos      *history.Store
	Encodings  *history.Store
	Query      gitquery.Query
	Clipboard  export.ClipboardWriter
	Classifier *diff.Classifier

	Scheme   config.ColorScheme
	Encoding string
	Repo     string
	Branch   string
	Branches []string
	Commits  []gitquery.Commit
	First    int
	Second   int
	Files    []string
	File     string
	Document *render.Document

	encodingOptions []string
	warnings        []error
	log             *slog.Logger
}

// New builds a session. The colour scheme comes from the preferences, the
// current encoding is the most recently used one.
func New(cfg *config.Config, prefs *config.Preferences, q gitquery.Query, repos, encodings *history.Store, log *slog.Logger) *Session {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Session{
		Config:     cfg,
		Prefs:      prefs,
		Repos:      repos,
		Encodings:  encodings,
		Query:      q,
		Classifier: diff.NewClassifier(),
		First:      -1,
		Second:     -1,
		log:        log,
	}

	s.Scheme = prefs.Scheme(cfg.Scheme)
	if err := s.Scheme.Validate(); err != nil {
		log.Warn("ignoring saved colour scheme", "err", err)
		s.Scheme = cfg.Scheme
	}

	s.encodingOptions = mergeEncodings(cfg.Encodings, encodings.Load())
	s.Encoding = s.encodingOptions[0]
	return s
}

// mergeEncodings puts the last used encoding first, then the built-in list,
// then the rest of the history. Names the decoder does not support are
// dropped.
func mergeEncodings(builtin, hist []string) []string {
	var out []string
	seen := map[string]struct{}{}
	add := func(e string) {
		if e == "" || !gitquery.IsSupported(e) {
			return
		}
		if _, dup := seen[e]; dup {
			return
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	for _, e := range hist {
		if gitquery.IsSupported(e) {
			add(e)
			break
		}
	}
	for _, e := range builtin {
		add(e)
	}
	for _, e := range hist {
		add(e)
	}
	if len(out) == 0 {
		out = append(out, "UTF-8")
	}
	return out
}

// EncodingOptions lists the encodings offered to the user, last used first.
func (s *Session) EncodingOptions() []string {
	return append([]string(nil), s.encodingOptions...)
}

// InitialRepository picks the repository to open at startup: the explicit
// path, else the last repository used, else the newest history entry.
func (s *Session) InitialRepository(explicit string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	if last := s.Prefs.LastRepository; last != "" && history.IsGitRepo(last) {
		return last
	}
	if repos := s.Repos.Load(); len(repos) > 0 {
		return repos[0]
	}
	return ""
}

// RepositoryHistory returns the remembered repositories, newest first.
func (s *Session) RepositoryHistory() []string {
	return s.Repos.Load()
}

// Open switches to repo and loads its branches. When switching away from a
// valid repository it is remembered first.
func (s *Session) Open(ctx context.Context, repo string) error {
	repo = strings.TrimSpace(repo)
	if repo == "" {
		return ErrNoRepository
	}

	if prev := s.Repo; prev != "" && prev != repo && history.IsGitRepo(prev) {
		s.warn("saving repository history", s.Repos.Touch(prev))
	}

	s.Repo = repo
	s.Branch = ""
	s.Branches = nil
	s.clearCommits()

	branches, err := s.Query.Branches(ctx, repo)
	if err != nil {
		return fmt.Errorf("loading branches of %s: %w", repo, err)
	}
	s.Branches = branches
	s.Branch = gitquery.DefaultBranch(branches)
	if s.Prefs.LastRepository == repo && s.Prefs.LastBranch != "" {
		for _, b := range branches {
			if b == s.Prefs.LastBranch {
				s.Branch = b
			}
		}
	}
	s.log.Info("opened repository", "repo", repo, "branches", len(branches))

	if history.IsGitRepo(repo) {
		s.warn("saving repository history", s.Repos.Touch(repo))
	}
	return nil
}

// SelectBranch changes the branch whose history LoadCommits lists.
func (s *Session) SelectBranch(branch string) {
	if branch == s.Branch {
		return
	}
	s.Branch = branch
	s.clearCommits()
}

// LoadCommits lists the history of the selected branch and preselects the
// two newest commits.
func (s *Session) LoadCommits(ctx context.Context) error {
	if s.Repo == "" {
		return ErrNoRepository
	}
	s.clearCommits()

	commits, err := s.Query.Commits(ctx, s.Repo, s.Branch)
	if err != nil {
		return fmt.Errorf("loading commits: %w", err)
	}
	s.Commits = commits
	if len(commits) > 0 {
		s.First = 0
	}
	if len(commits) > 1 {
		s.Second = 1
	}
	return nil
}

// SelectCommits marks the two commits to compare. The file list and the
// diff are cleared because they belong to the previous pair.
func (s *Session) SelectCommits(first, second int) {
	if first == s.First && second == s.Second {
		return
	}
	s.First, s.Second = first, second
	s.Files = nil
	s.File = ""
	s.Document = nil
}

// HasSelection reports whether two distinct, in-range commits are selected.
func (s *Session) HasSelection() bool {
	return validPair(len(s.Commits), s.First, s.Second)
}

func validPair(n, first, second int) bool {
	return first >= 0 && second >= 0 && first < n && second < n && first != second
}

// LoadFiles lists the files changed from the second commit to the first.
// An invalid pair of indices leaves everything untouched.
func (s *Session) LoadFiles(ctx context.Context, first, second int) error {
	if !validPair(len(s.Commits), first, second) {
		return nil
	}
	s.SelectCommits(first, second)
	s.Files = nil

	from, to := s.Commits[second].ID, s.Commits[first].ID
	files, err := s.Query.ChangedFiles(ctx, s.Repo, from, to)
	if err != nil {
		return fmt.Errorf("loading changed files: %w", err)
	}
	s.Files = files
	return nil
}

// ShowDiff renders the diff of file between the selected commits. On failure
// the document holds the error message.
func (s *Session) ShowDiff(ctx context.Context, file string) error {
	if file == "" || !s.HasSelection() {
		return nil
	}
	s.File = file
	return s.renderDiff(ctx, s.Commits[s.Second].ID, s.Commits[s.First].ID, file)
}

// ShowRevisions renders the diff of file between two arbitrary revisions
// without touching the commit selection.
func (s *Session) ShowRevisions(ctx context.Context, from, to, file string) error {
	if s.Repo == "" {
		return ErrNoRepository
	}
	return s.renderDiff(ctx, from, to, file)
}

func (s *Session) renderDiff(ctx context.Context, from, to, file string) error {
	text, err := s.Query.Diff(ctx, s.Repo, from, to, file, s.Encoding)
	if err != nil {
		s.Document = render.Message("Failed to load diff: " + err.Error())
		return fmt.Errorf("loading diff of %s: %w", file, err)
	}
	s.Document = render.Render(s.Classifier.Classify(text), s.Scheme)
	s.log.Debug("rendered diff", "file", file, "lines", s.Document.LineCount())
	return nil
}

// Refresh re-renders the current file, if any.
func (s *Session) Refresh(ctx context.Context) error {
	if s.File == "" {
		return nil
	}
	return s.ShowDiff(ctx, s.File)
}

// SelectEncoding switches the text encoding used to decode diffs. An unknown
// name keeps the current encoding.
func (s *Session) SelectEncoding(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || name == s.Encoding {
		return nil
	}
	if _, err := gitquery.LookupEncoding(name); err != nil {
		return err
	}

	opts := make([]string, 0, len(s.encodingOptions)+1)
	opts = append(opts, name)
	for _, e := range s.encodingOptions {
		if e != name {
			opts = append(opts, e)
		}
	}
	s.encodingOptions = opts
	s.Encoding = name
	s.warn("saving encoding history", s.Encodings.Save(opts, name))

	return s.Refresh(ctx)
}

// SetScheme changes the diff colours and restyles the current document.
func (s *Session) SetScheme(scheme config.ColorScheme) error {
	if err := scheme.Validate(); err != nil {
		return err
	}
	s.Scheme = scheme
	if s.Document != nil {
		s.Document = s.Document.Restyle(scheme)
	}
	return nil
}

// Copy writes the [start, end) character range of the current document to
// the clipboard. It reports whether anything was written.
func (s *Session) Copy(start, end int) (bool, error) {
	if s.Clipboard == nil {
		return false, export.ErrClipboardUnavailable
	}
	return export.CopySelection(s.Clipboard, s.Document, start, end)
}

// CopyLines copies whole lines first through last of the current document.
func (s *Session) CopyLines(first, last int) (bool, error) {
	if s.Document == nil {
		return false, nil
	}
	start, end := s.Document.LineOffsets(first, last)
	return s.Copy(start, end)
}

// Close persists the last repository, the encoding history and the colour
// scheme.
func (s *Session) Close() error {
	var errs []error
	if s.Repo != "" {
		s.Prefs.LastRepository = s.Repo
		s.Prefs.LastBranch = s.Branch
	}
	s.Prefs.SetScheme(s.Scheme)
	if err := s.Encodings.Save(s.encodingOptions, s.Encoding); err != nil {
		errs = append(errs, fmt.Errorf("saving encoding history: %w", err))
	}
	if err := s.Prefs.Save(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// TakeWarnings returns the failures that did not stop an operation, such as
// history writes, and forgets them.
func (s *Session) TakeWarnings() error {
	err := errors.Join(s.warnings...)
	s.warnings = nil
	return err
}

func (s *Session) warn(msg string, err error) {
	if err == nil {
		return
	}
	err = fmt.Errorf("%s: %w", msg, err)
	s.log.Warn(msg, "err", err)
	s.warnings = append(s.warnings, err)
}

func (s *Session) clearCommits() {
	s.Commits = nil
	s.First, s.Second = -1, -1
	s.Files = nil
	s.File = ""
	s.Document = nil
}
