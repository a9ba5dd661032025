package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// ErrSchemeConflict is returned when the added and removed colours of a
// scheme are the same, which makes the two roles indistinguishable.
var ErrSchemeConflict = errors.New("added and removed colours are identical")

// Color is an sRGB triple.
type Color struct {
	R, G, B uint8
}

// Black is the fallback for colours that cannot be parsed.
var Black = Color{}

// RGB builds a Color, clamping every channel into [0,255].
func RGB(r, g, b int) Color {
	return Color{R: clampChannel(r), G: clampChannel(g), B: clampChannel(b)}
}

func clampChannel(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}

// Equal reports whether both colours have identical channels.
func (c Color) Equal(other Color) bool {
	return c == other
}

// Hex returns the colour as #rrggbb.
func (c Color) Hex() string {
	return c.colorful().Hex()
}

// String returns the persisted "r,g,b" form.
func (c Color) String() string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}

// Lipgloss converts the colour for terminal styling.
func (c Color) Lipgloss() lipgloss.Color {
	return lipgloss.Color(c.Hex())
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Brighten scales every channel by (1 + factor), saturating at 255.
func (c Color) Brighten(factor float64) Color {
	boost := func(v uint8) int {
		return int(float64(v) * (1 + factor))
	}
	return RGB(boost(c.R), boost(c.G), boost(c.B))
}

// ParseColor parses a persisted colour. Malformed input yields Black.
func ParseColor(s string) Color {
	c, err := parseColor(s)
	if err != nil {
		return Black
	}
	return c
}

// parseColor accepts "r,g,b" where each component is a decimal, 0x/# hex or
// leading-zero octal integer, and also a bare "#rrggbb".
func parseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") && !strings.Contains(s, ",") {
		c, err := colorful.Hex(s)
		if err != nil {
			return Black, fmt.Errorf("parsing colour %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return Color{R: r, G: g, B: b}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Black, fmt.Errorf("parsing colour %q: want 3 components, got %d", s, len(parts))
	}

	var channels [3]int
	for i, part := range parts {
		v, err := decodeInt(strings.TrimSpace(part))
		if err != nil {
			return Black, fmt.Errorf("parsing colour %q: %w", s, err)
		}
		channels[i] = v
	}
	return RGB(channels[0], channels[1], channels[2]), nil
}

func decodeInt(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty component")
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	// Decimal, 0x or # hex, and leading-zero octal. Explicit bases keep
	// Go literal forms such as 0b, 0o and digit separators out.
	base := 10
	switch {
	case strings.HasPrefix(s, "#"):
		base, s = 16, s[1:]
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		base, s = 16, s[2:]
	case len(s) > 1 && s[0] == '0':
		base, s = 8, s[1:]
	}
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, errors.New("malformed component")
	}
	v, err := strconv.ParseInt(s, base, 32)
	if err != nil {
		return 0, err
	}
	if neg {
		v = -v
	}
	return int(v), nil
}

// ColorScheme holds the three colours applied to classified diff lines.
type ColorScheme struct {
	Added   Color
	Removed Color
	Header  Color
}

// DefaultScheme returns green/red/blue.
func DefaultScheme() ColorScheme {
	return ColorScheme{
		Added:   RGB(0, 128, 0),
		Removed: RGB(255, 0, 0),
		Header:  RGB(0, 0, 255),
	}
}

// Validate returns ErrSchemeConflict when added and removed share a colour.
func (s ColorScheme) Validate() error {
	if s.Added.Equal(s.Removed) {
		return ErrSchemeConflict
	}
	return nil
}

// Equal compares every role.
func (s ColorScheme) Equal(other ColorScheme) bool {
	return s.Added.Equal(other.Added) && s.Removed.Equal(other.Removed) && s.Header.Equal(other.Header)
}

// Brighten applies Color.Brighten to every role.
func (s ColorScheme) Brighten(factor float64) ColorScheme {
	return ColorScheme{
		Added:   s.Added.Brighten(factor),
		Removed: s.Removed.Brighten(factor),
		Header:  s.Header.Brighten(factor),
	}
}
