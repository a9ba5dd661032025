// Package history keeps small most-recently-used lists, such as repository
// paths and text encodings, in persistent storage.
package history

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// MaxEntries is the default cap of a history list.
const MaxEntries = 10

// Backend persists an ordered list of strings.
type Backend interface {
	Read() ([]string, error)
	Write(entries []string) error
}

// Predicate reports whether an entry may be kept.
type Predicate func(entry string) bool

// NonEmpty accepts every non-empty entry.
func NonEmpty(entry string) bool {
	return entry != ""
}

// IsGitRepo accepts directories that contain a .git directory.
func IsGitRepo(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && info.IsDir()
}

// Store applies the bounded, deduplicated, most-recent-first policy on top of
// a Backend.
type Store struct {
	backend Backend
	valid   Predicate
	max     int
	log     *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithMax overrides MaxEntries.
func WithMax(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.max = n
		}
	}
}

// WithLogger sets the logger used for swallowed backend errors.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a Store. A nil predicate accepts every non-empty entry.
func New(backend Backend, valid Predicate, opts ...Option) *Store {
	if valid == nil {
		valid = NonEmpty
	}
	s := &Store{
		backend: backend,
		valid:   valid,
		max:     MaxEntries,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Max is the cap applied by Save.
func (s *Store) Max() int {
	return s.max
}

// Load returns the stored entries that pass the predicate, in stored order.
// Unreadable storage yields an empty list.
func (s *Store) Load() []string {
	entries, err := s.backend.Read()
	if err != nil {
		s.log.Warn("failed to load history", "err", err)
		return []string{}
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if s.accept(e) {
			out = append(out, e)
		}
	}
	return out
}

// Save replaces the stored list with mostRecent (when valid) followed by the
// unique valid candidates in pool order, capped at Max.
func (s *Store) Save(candidates []string, mostRecent string) error {
	entries := s.Merge(candidates, mostRecent)
	if err := s.backend.Write(entries); err != nil {
		s.log.Warn("failed to save history", "err", err)
		return err
	}
	return nil
}

// Touch saves mostRecent in front of the currently stored entries.
func (s *Store) Touch(mostRecent string) error {
	return s.Save(s.Load(), mostRecent)
}

// Merge computes the list Save would write.
func (s *Store) Merge(candidates []string, mostRecent string) []string {
	seen := make(map[string]struct{}, s.max)
	out := make([]string, 0, s.max)
	add := func(e string) {
		if len(out) >= s.max || !s.accept(e) {
			return
		}
		if _, dup := seen[e]; dup {
			return
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	add(mostRecent)
	for _, c := range candidates {
		add(c)
	}
	return out
}

// accept rejects line breaks because the file format is one entry per line.
func (s *Store) accept(e string) bool {
	if strings.ContainsAny(e, "\r\n") {
		return false
	}
	return s.valid(e)
}
