// Package diff classifies the lines of unified diff text by role.
package diff

import "strings"

// Role is the semantic role of a diff line.
type Role int

const (
	Plain Role = iota
	Added
	Removed
	Header
)

func (r Role) String() string {
	switch r {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Header:
		return "header"
	default:
		return "plain"
	}
}

// StyledLine is one line of diff text (without its newline) and its role.
type StyledLine struct {
	Text string
	Role Role
}

// Rule assigns Role to lines accepted by Match.
type Rule struct {
	Match func(line string) bool
	Role  Role
}

// HasPrefix returns a Rule matching lines that start with any of prefixes.
func HasPrefix(role Role, prefixes ...string) Rule {
	return Rule{
		Role: role,
		Match: func(line string) bool {
			for _, p := range prefixes {
				if strings.HasPrefix(line, p) {
					return true
				}
			}
			return false
		},
	}
}

// DefaultRules returns the unified diff rules. Header markers come before the
// bare +/- rules so "+++" and "---" file markers are headers.
func DefaultRules() []Rule {
	return []Rule{
		HasPrefix(Header, "@@", "diff", "index", "---", "+++"),
		HasPrefix(Added, "+"),
		HasPrefix(Removed, "-"),
	}
}

// Classifier evaluates its rules top-down; the first match wins and lines
// matching nothing are Plain.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier. With no rules it uses DefaultRules.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// RoleOf classifies a single line.
func (c *Classifier) RoleOf(line string) Role {
	for _, r := range c.rules {
		if r.Match(line) {
			return r.Role
		}
	}
	return Plain
}

// Classify splits text on '\n' and classifies every line. A trailing newline
// does not produce an extra empty line and empty input yields no lines.
func (c *Classifier) Classify(text string) []StyledLine {
	if text == "" {
		return []StyledLine{}
	}
	raw := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	lines := make([]StyledLine, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, StyledLine{Text: l, Role: c.RoleOf(l)})
	}
	return lines
}

var defaultClassifier = NewClassifier()

// Classify classifies text with DefaultRules.
func Classify(text string) []StyledLine {
	return defaultClassifier.Classify(text)
}

// Stats counts lines per role.
type Stats struct {
	Added   int
	Removed int
	Header  int
	Plain   int
}

// Total is the number of counted lines.
func (s Stats) Total() int {
	return s.Added + s.Removed + s.Header + s.Plain
}

// HasChanges reports whether any line was added or removed.
func (s Stats) HasChanges() bool {
	return s.Added+s.Removed > 0
}

// GetStats returns statistics about the classified lines
func GetStats(lines []StyledLine) Stats {
	var s Stats
	for _, l := range lines {
		switch l.Role {
		case Added:
			s.Added++
		case Removed:
			s.Removed++
		case Header:
			s.Header++
		default:
			s.Plain++
		}
	}
	return s
}
