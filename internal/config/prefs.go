package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Preference keys.
const (
	KeyEncodingHistory = "encodingHistory"
)

// Preferences is the key-value state persisted between runs.
type Preferences struct {
	LastRepository  string   `yaml:"lastRepository,omitempty"`
	LastBranch      string   `yaml:"lastBranch,omitempty"`
	EncodingHistory []string `yaml:"encodingHistory,omitempty"`
	DiffAddColor    string   `yaml:"diffAddColor,omitempty"`
	DiffDelColor    string   `yaml:"diffDelColor,omitempty"`
	DiffHeadColor   string   `yaml:"diffHeadColor,omitempty"`

	path string
}

// LoadPreferences reads path. A missing or malformed file yields empty
// preferences bound to the same path.
func LoadPreferences(path string) *Preferences {
	prefs := &Preferences{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return prefs
	}
	if err := yaml.Unmarshal(data, prefs); err != nil {
		return &Preferences{path: path}
	}
	return prefs
}

// Path returns the backing file.
func (p *Preferences) Path() string {
	return p.path
}

// Save writes the preferences, creating the directory when needed.
func (p *Preferences) Save() error {
	if p.path == "" {
		return nil
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("creating preferences dir: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	return nil
}

// Scheme returns the persisted colour scheme. Unset roles take the fallback's
// colour; unparseable ones become black.
func (p *Preferences) Scheme(fallback ColorScheme) ColorScheme {
	pick := func(raw string, def Color) Color {
		if raw == "" {
			return def
		}
		return ParseColor(raw)
	}
	return ColorScheme{
		Added:   pick(p.DiffAddColor, fallback.Added),
		Removed: pick(p.DiffDelColor, fallback.Removed),
		Header:  pick(p.DiffHeadColor, fallback.Header),
	}
}

// SetScheme stores the scheme in "r,g,b" form.
func (p *Preferences) SetScheme(s ColorScheme) {
	p.DiffAddColor = s.Added.String()
	p.DiffDelColor = s.Removed.String()
	p.DiffHeadColor = s.Header.String()
}

// List returns the list stored under key.
func (p *Preferences) List(key string) ([]string, error) {
	switch key {
	case KeyEncodingHistory:
		return append([]string(nil), p.EncodingHistory...), nil
	default:
		return nil, fmt.Errorf("unknown preference list: %s", key)
	}
}

// SetList replaces the list under key and saves the file.
func (p *Preferences) SetList(key string, values []string) error {
	switch key {
	case KeyEncodingHistory:
		p.EncodingHistory = append([]string(nil), values...)
	default:
		return fmt.Errorf("unknown preference list: %s", key)
	}
	return p.Save()
}
