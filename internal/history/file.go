package history

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend stores one entry per line, most recent first. There is no
// header and no escaping.
type FileBackend struct {
	Path string
}

// Read returns the trimmed non-empty lines. A missing file is empty.
func (b FileBackend) Read() ([]string, error) {
	f, err := os.Open(b.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	var entries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			entries = append(entries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading history file: %w", err)
	}
	return entries, nil
}

// Write replaces the file contents.
func (b FileBackend) Write(entries []string) error {
	if err := os.MkdirAll(filepath.Dir(b.Path), 0o755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(b.Path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing history file: %w", err)
	}
	return nil
}

// ListStore is a key-value store holding string lists, such as the
// preferences file.
type ListStore interface {
	List(key string) ([]string, error)
	SetList(key string, values []string) error
}

// PrefsBackend keeps the list under one key of a ListStore.
type PrefsBackend struct {
	Store ListStore
	Key   string
}

func (b PrefsBackend) Read() ([]string, error) {
	return b.Store.List(b.Key)
}

func (b PrefsBackend) Write(entries []string) error {
	return b.Store.SetList(b.Key, entries)
}
