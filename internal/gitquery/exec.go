package gitquery

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Compile-time check that ExecQuery implements Query.
var _ Query = (*ExecQuery)(nil)

// ExecQuery runs the git binary.
type ExecQuery struct {
	Binary string
	log    *slog.Logger
}

// NewExecQuery returns an ExecQuery using "git" from PATH.
func NewExecQuery(log *slog.Logger) *ExecQuery {
	return &ExecQuery{Binary: "git", log: orDiscard(log)}
}

func (q *ExecQuery) Commits(ctx context.Context, repo, branch string) ([]Commit, error) {
	args := []string{"log"}
	if branch != "" {
		args = append(args, branch)
	}
	args = append(args, "--pretty=format:%H %s", "--")
	lines, err := q.lines(ctx, repo, args...)
	if err != nil {
		return nil, fmt.Errorf("listing commits: %w", err)
	}

	commits := make([]Commit, 0, len(lines))
	for _, line := range lines {
		id, subj, _ := strings.Cut(line, " ")
		if id == "" {
			continue
		}
		commits = append(commits, Commit{ID: id, Subject: subj})
	}
	return commits, nil
}

func (q *ExecQuery) Branches(ctx context.Context, repo string) ([]string, error) {
	lines, err := q.lines(ctx, repo, "branch", "--list", "--format", "%(refname:short)")
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	var branches []string
	for _, line := range lines {
		line = strings.TrimSpace(strings.ReplaceAll(line, "*", ""))
		if line != "" {
			branches = append(branches, line)
		}
	}
	return branches, nil
}

func (q *ExecQuery) ChangedFiles(ctx context.Context, repo, from, to string) ([]string, error) {
	lines, err := q.lines(ctx, repo, "diff", "--name-only", from, to, "--")
	if err != nil {
		return nil, fmt.Errorf("listing changed files: %w", err)
	}
	return lines, nil
}

func (q *ExecQuery) Diff(ctx context.Context, repo, from, to, path, enc string) (string, error) {
	if _, err := LookupEncoding(enc); err != nil {
		return "", err
	}
	out, err := q.run(ctx, repo, "diff", from, to, "--", path)
	if err != nil {
		return "", fmt.Errorf("loading diff of %s: %w", path, err)
	}
	return Decode(out, enc)
}

func (q *ExecQuery) lines(ctx context.Context, repo string, args ...string) ([]string, error) {
	out, err := q.run(ctx, repo, args...)
	if err != nil {
		return nil, err
	}
	text := strings.TrimRight(string(out), "\n")
	if text == "" {
		return []string{}, nil
	}
	return strings.Split(text, "\n"), nil
}

func (q *ExecQuery) run(ctx context.Context, repo string, args ...string) ([]byte, error) {
	full := append([]string{"-C", repo}, args...)
	q.log.Debug("running git", "args", full)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, q.Binary, full...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", err, msg)
	}
	return out, nil
}
