package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Theme          Theme
	ThemePreset    ThemePreset
	HighContrast   bool
	Scheme         ColorScheme
	Clipboard      ClipboardMode
	GitBackend     GitBackend
	HistoryBackend HistoryBackend
	HistoryFile    string
	PrefsFile      string
	Encodings      []string
	TabSize        int
	Keybindings    Keybindings
}

// ThemePreset describes a named theme configuration.
type ThemePreset string

const (
	PresetDefault  ThemePreset = "default"
	PresetClassic  ThemePreset = "classic"
	PresetSolarize ThemePreset = "solarized"
	PresetDracula  ThemePreset = "dracula"
)

// Presets lists the presets in cycling order.
var Presets = []ThemePreset{PresetDefault, PresetClassic, PresetSolarize, PresetDracula}

// ClipboardMode selects how copied selections reach the clipboard.
type ClipboardMode string

const (
	ClipboardAuto   ClipboardMode = "auto"
	ClipboardSystem ClipboardMode = "system"
	ClipboardOSC52  ClipboardMode = "osc52"
)

// GitBackend selects the git query implementation.
type GitBackend string

const (
	GitAuto  GitBackend = "auto"
	GitExec  GitBackend = "exec"
	GitGoGit GitBackend = "gogit"
)

// HistoryBackend selects where repository history is kept.
type HistoryBackend string

const (
	HistoryFileBackend   HistoryBackend = "file"
	HistorySQLiteBackend HistoryBackend = "sqlite"
)

// Keybindings maps semantic actions to one or more key sequences.
type Keybindings map[string][]string

// Theme defines the chrome colours around the diff
type Theme struct {
	LineNumberFg lipgloss.Color
	BorderFg     lipgloss.Color
	FocusFg      lipgloss.Color
	TitleFg      lipgloss.Color
	TitleBg      lipgloss.Color
	HelpFg       lipgloss.Color
	SelectionBg  lipgloss.Color
	ErrorFg      lipgloss.Color
}

// DefaultEncodings are always offered in the encoding selector.
var DefaultEncodings = []string{"UTF-8", "Shift_JIS", "EUC-JP", "ISO-8859-1", "US-ASCII"}

const appDirName = "gitdiffview"

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	dir := DefaultDir()
	return &Config{
		ThemePreset:    PresetDefault,
		Theme:          ThemeForPreset(PresetDefault, false),
		Scheme:         SchemeForPreset(PresetDefault, false),
		Clipboard:      ClipboardAuto,
		GitBackend:     GitAuto,
		HistoryBackend: HistoryFileBackend,
		HistoryFile:    DefaultHistoryFile(),
		PrefsFile:      filepath.Join(dir, "prefs.yaml"),
		Encodings:      append([]string(nil), DefaultEncodings...),
		TabSize:        4,
		Keybindings:    DefaultKeybindings(),
	}
}

// DefaultDir is the per-user configuration directory.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, appDirName)
}

// DefaultHistoryFile is the repository history file in the user's home.
func DefaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".gitdiffview_repo_history")
}

// fileConfig is the on-disk shape of config.yaml. Every field is optional.
type fileConfig struct {
	Theme        string      `yaml:"theme"`
	HighContrast *bool       `yaml:"highContrast"`
	Clipboard    string      `yaml:"clipboard"`
	TabSize      int         `yaml:"tabSize"`
	Encodings    []string    `yaml:"encodings"`
	Keybindings  Keybindings `yaml:"keybindings"`
	Git          struct {
		Backend string `yaml:"backend"`
	} `yaml:"git"`
	History struct {
		Backend string `yaml:"backend"`
		File    string `yaml:"file"`
	} `yaml:"history"`
	Prefs struct {
		File string `yaml:"file"`
	} `yaml:"prefs"`
}

// LoadFile overlays a YAML config file onto the defaults. A missing file is
// not an error.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := cfg.apply(data); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadBytes overlays raw YAML onto the defaults.
func LoadBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.apply(data); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) apply(data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	if fc.HighContrast != nil {
		c.HighContrast = *fc.HighContrast
	}
	if fc.Theme != "" {
		preset, err := ParsePreset(fc.Theme)
		if err != nil {
			return err
		}
		c.ThemePreset = preset
	}
	c.Theme = ThemeForPreset(c.ThemePreset, c.HighContrast)
	c.Scheme = SchemeForPreset(c.ThemePreset, c.HighContrast)

	switch mode := ClipboardMode(strings.ToLower(fc.Clipboard)); mode {
	case "":
	case ClipboardAuto, ClipboardSystem, ClipboardOSC52:
		c.Clipboard = mode
	default:
		return fmt.Errorf("unsupported clipboard mode: %s", fc.Clipboard)
	}

	switch backend := GitBackend(strings.ToLower(fc.Git.Backend)); backend {
	case "":
	case GitAuto, GitExec, GitGoGit:
		c.GitBackend = backend
	default:
		return fmt.Errorf("unsupported git backend: %s", fc.Git.Backend)
	}

	switch backend := HistoryBackend(strings.ToLower(fc.History.Backend)); backend {
	case "":
	case HistoryFileBackend, HistorySQLiteBackend:
		c.HistoryBackend = backend
	default:
		return fmt.Errorf("unsupported history backend: %s", fc.History.Backend)
	}

	if fc.History.File != "" {
		c.HistoryFile = fc.History.File
	}
	if fc.Prefs.File != "" {
		c.PrefsFile = fc.Prefs.File
	}
	if fc.TabSize > 0 {
		c.TabSize = fc.TabSize
	}
	if len(fc.Encodings) > 0 {
		c.Encodings = fc.Encodings
	}
	c.Keybindings = MergeKeybindings(fc.Keybindings)
	return nil
}

// ParsePreset resolves a preset name.
func ParsePreset(name string) (ThemePreset, error) {
	for _, p := range Presets {
		if strings.EqualFold(name, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown theme preset: %s", name)
}

// NextPreset returns the preset after p in cycling order.
func NextPreset(p ThemePreset) ThemePreset {
	for i, candidate := range Presets {
		if candidate == p {
			return Presets[(i+1)%len(Presets)]
		}
	}
	return PresetDefault
}

// DefaultTheme returns the default chrome theme
func DefaultTheme() Theme {
	return Theme{
		LineNumberFg: lipgloss.Color("#666666"),
		BorderFg:     lipgloss.Color("#3A3A3A"),
		FocusFg:      lipgloss.Color("#5F5FAF"),
		TitleFg:      lipgloss.Color("#FFFFFF"),
		TitleBg:      lipgloss.Color("#5F5FAF"),
		HelpFg:       lipgloss.Color("#888888"),
		SelectionBg:  lipgloss.Color("#3A3A5A"),
		ErrorFg:      lipgloss.Color("#E6A3A3"),
	}
}

// ThemeForPreset resolves a preset name to a concrete Theme, optionally
// applying a high-contrast variation.
func ThemeForPreset(preset ThemePreset, highContrast bool) Theme {
	switch preset {
	case PresetSolarize:
		return applyContrast(Theme{
			LineNumberFg: lipgloss.Color("#586E75"),
			BorderFg:     lipgloss.Color("#657B83"),
			FocusFg:      lipgloss.Color("#268BD2"),
			TitleFg:      lipgloss.Color("#EEE8D5"),
			TitleBg:      lipgloss.Color("#586E75"),
			HelpFg:       lipgloss.Color("#93A1A1"),
			SelectionBg:  lipgloss.Color("#073642"),
			ErrorFg:      lipgloss.Color("#DC322F"),
		}, highContrast)
	case PresetDracula:
		return applyContrast(Theme{
			LineNumberFg: lipgloss.Color("#6272A4"),
			BorderFg:     lipgloss.Color("#44475A"),
			FocusFg:      lipgloss.Color("#BD93F9"),
			TitleFg:      lipgloss.Color("#F8F8F2"),
			TitleBg:      lipgloss.Color("#6272A4"),
			HelpFg:       lipgloss.Color("#BD93F9"),
			SelectionBg:  lipgloss.Color("#44475A"),
			ErrorFg:      lipgloss.Color("#FF5555"),
		}, highContrast)
	default:
		return applyContrast(DefaultTheme(), highContrast)
	}
}

// SchemeForPreset resolves the diff colours of a preset. The classic preset
// is the red-added/blue-removed/black-header palette.
func SchemeForPreset(preset ThemePreset, highContrast bool) ColorScheme {
	var s ColorScheme
	switch preset {
	case PresetClassic:
		s = ColorScheme{Added: RGB(255, 0, 0), Removed: RGB(0, 0, 255), Header: Black}
	case PresetSolarize:
		s = ColorScheme{Added: RGB(0x85, 0x99, 0x00), Removed: RGB(0xDC, 0x32, 0x2F), Header: RGB(0x26, 0x8B, 0xD2)}
	case PresetDracula:
		s = ColorScheme{Added: RGB(0x50, 0xFA, 0x7B), Removed: RGB(0xFF, 0x79, 0xC6), Header: RGB(0xBD, 0x93, 0xF9)}
	default:
		s = DefaultScheme()
	}
	if highContrast {
		s = s.Brighten(0.25)
	}
	return s
}

// PresetForScheme finds the preset whose colours are scheme. Hand-picked
// colours match no preset.
func PresetForScheme(scheme ColorScheme, highContrast bool) (ThemePreset, bool) {
	for _, p := range Presets {
		if SchemeForPreset(p, highContrast).Equal(scheme) {
			return p, true
		}
	}
	return "", false
}

// DefaultKeybindings returns the built-in keybinding map.
func DefaultKeybindings() Keybindings {
	return Keybindings{
		"quit":          {"ctrl+c", "q"},
		"toggle_help":   {"?"},
		"next_pane":     {"tab"},
		"prev_pane":     {"shift+tab"},
		"select":        {"enter"},
		"mark_first":    {"1"},
		"mark_second":   {"2"},
		"load_commits":  {"L"},
		"show_files":    {"F"},
		"edit_repo":     {"o"},
		"repo_history":  {"r"},
		"edit_encoding": {"e"},
		"pick_encoding": {"E"},
		"cycle_scheme":  {"c"},
		"visual":        {"v"},
		"copy":          {"y"},
		"copy_all":      {"Y"},
		"cancel":        {"esc"},
		"scroll_down":   {"j", "down"},
		"scroll_up":     {"k", "up"},
		"page_down":     {"d", "pgdown"},
		"page_up":       {"u", "pgup"},
		"go_top":        {"g", "home"},
		"go_bottom":     {"G", "end"},
	}
}

// MergeKeybindings overlays user overrides onto defaults.
func MergeKeybindings(overrides Keybindings) Keybindings {
	defaults := DefaultKeybindings()
	for action, keys := range overrides {
		if len(keys) == 0 {
			continue
		}
		defaults[action] = keys
	}
	return defaults
}

func applyContrast(theme Theme, highContrast bool) Theme {
	if !highContrast {
		return theme
	}

	return Theme{
		LineNumberFg: lipgloss.Color(adjustBrightness(string(theme.LineNumberFg), 0.2)),
		BorderFg:     lipgloss.Color(adjustBrightness(string(theme.BorderFg), 0.2)),
		FocusFg:      lipgloss.Color(adjustBrightness(string(theme.FocusFg), 0.2)),
		TitleFg:      lipgloss.Color(adjustBrightness(string(theme.TitleFg), 0.2)),
		TitleBg:      lipgloss.Color(adjustBrightness(string(theme.TitleBg), 0.2)),
		HelpFg:       lipgloss.Color(adjustBrightness(string(theme.HelpFg), 0.2)),
		SelectionBg:  lipgloss.Color(adjustBrightness(string(theme.SelectionBg), 0.15)),
		ErrorFg:      lipgloss.Color(adjustBrightness(string(theme.ErrorFg), 0.2)),
	}
}

func adjustBrightness(hex string, factor float64) string {
	c, err := parseColor(hex)
	if err != nil {
		return hex
	}
	return c.Brighten(factor).Hex()
}
