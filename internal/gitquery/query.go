// Package gitquery answers the four questions the viewer asks a repository:
// branch history, branch names, changed files and the diff of one file.
package gitquery

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/cj3636/gitdiffview/internal/config"
)

// Commit is one entry of a branch's history.
type Commit struct {
	ID      string
	Subject string
}

// Label is the "<id> <subject>" form shown in selectors.
func (c Commit) Label() string {
	if c.Subject == "" {
		return c.ID
	}
	return c.ID + " " + c.Subject
}

// ShortID returns the first 7 characters of the ID.
func (c Commit) ShortID() string {
	if len(c.ID) >= 7 {
		return c.ID[:7]
	}
	return c.ID
}

// Query is the blocking boundary to git. Every method is synchronous.
type Query interface {
	// Commits lists the history of branch, newest first. An empty branch
	// means HEAD.
	Commits(ctx context.Context, repo, branch string) ([]Commit, error)

	// Branches lists local branch names.
	Branches(ctx context.Context, repo string) ([]string, error)

	// ChangedFiles lists paths that differ between from and to.
	ChangedFiles(ctx context.Context, repo, from, to string) ([]string, error)

	// Diff returns the unified diff of path between from and to, decoded
	// with the named text encoding.
	Diff(ctx context.Context, repo, from, to, path, encoding string) (string, error)
}

// New returns the Query for backend. Auto uses the git binary when it is on
// PATH and go-git otherwise.
func New(backend config.GitBackend, log *slog.Logger) Query {
	switch backend {
	case config.GitGoGit:
		return NewGoGitQuery(log)
	case config.GitExec:
		return NewExecQuery(log)
	default:
		if _, err := exec.LookPath("git"); err != nil {
			return NewGoGitQuery(log)
		}
		return NewExecQuery(log)
	}
}

// DefaultBranch picks master, then main, then the first branch.
func DefaultBranch(branches []string) string {
	for _, want := range []string{"master", "main"} {
		for _, b := range branches {
			if b == want {
				return b
			}
		}
	}
	if len(branches) > 0 {
		return branches[0]
	}
	return ""
}

func subject(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(line)
}

func orDiscard(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return log
}
