package gitquery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pmezard/go-difflib/difflib"
)

// Compile-time check that GoGitQuery implements Query.
var _ Query = (*GoGitQuery)(nil)

const (
	devNull     = "/dev/null"
	diffContext = 3
)

// GoGitQuery answers queries in-process with go-git. Diff text is produced
// from the two blob versions with a unified line diff.
type GoGitQuery struct {
	log *slog.Logger
}

// NewGoGitQuery returns a GoGitQuery.
func NewGoGitQuery(log *slog.Logger) *GoGitQuery {
	return &GoGitQuery{log: orDiscard(log)}
}

func (q *GoGitQuery) open(path string) (*gogit.Repository, error) {
	r, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening git repository at %s: %w", path, err)
	}
	return r, nil
}

func (q *GoGitQuery) Commits(ctx context.Context, repo, branch string) ([]Commit, error) {
	r, err := q.open(repo)
	if err != nil {
		return nil, err
	}

	var from plumbing.Hash
	if branch == "" {
		head, err := r.Head()
		if err != nil {
			return nil, fmt.Errorf("getting HEAD: %w", err)
		}
		from = head.Hash()
	} else {
		h, err := r.ResolveRevision(plumbing.Revision(branch))
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", branch, err)
		}
		from = *h
	}

	iter, err := r.Log(&gogit.LogOptions{From: from})
	if err != nil {
		return nil, fmt.Errorf("getting commit log: %w", err)
	}
	defer iter.Close()

	var commits []Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		commits = append(commits, Commit{ID: c.Hash.String(), Subject: subject(c.Message)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating commits: %w", err)
	}
	return commits, nil
}

func (q *GoGitQuery) Branches(ctx context.Context, repo string) ([]string, error) {
	r, err := q.open(repo)
	if err != nil {
		return nil, err
	}
	iter, err := r.Branches()
	if err != nil {
		return nil, fmt.Errorf("listing local branches: %w", err)
	}

	var branches []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		branches = append(branches, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating local branches: %w", err)
	}
	sort.Strings(branches)
	return branches, nil
}

func (q *GoGitQuery) ChangedFiles(ctx context.Context, repo, from, to string) ([]string, error) {
	r, err := q.open(repo)
	if err != nil {
		return nil, err
	}
	fromTree, err := treeAt(r, from)
	if err != nil {
		return nil, err
	}
	toTree, err := treeAt(r, to)
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTreeWithOptions(ctx, fromTree, toTree, nil)
	if err != nil {
		return nil, fmt.Errorf("comparing trees: %w", err)
	}

	seen := make(map[string]struct{}, len(changes))
	files := make([]string, 0, len(changes))
	for _, c := range changes {
		for _, name := range []string{c.From.Name, c.To.Name} {
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			files = append(files, name)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (q *GoGitQuery) Diff(ctx context.Context, repo, from, to, path, enc string) (string, error) {
	if _, err := LookupEncoding(enc); err != nil {
		return "", err
	}
	r, err := q.open(repo)
	if err != nil {
		return "", err
	}

	before, hadBefore, err := fileAt(r, from, path)
	if err != nil {
		return "", err
	}
	after, hadAfter, err := fileAt(r, to, path)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	a, err := Decode(before, enc)
	if err != nil {
		return "", err
	}
	b, err := Decode(after, enc)
	if err != nil {
		return "", err
	}

	fromFile, toFile := "a/"+path, "b/"+path
	if !hadBefore {
		fromFile = devNull
	}
	if !hadAfter {
		toFile = devNull
	}

	body, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(a),
		B:        splitLines(b),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  diffContext,
	})
	if err != nil {
		return "", fmt.Errorf("building diff of %s: %w", path, err)
	}
	if body == "" {
		return "", nil
	}
	q.log.Debug("built diff", "path", path, "from", from, "to", to)
	return fmt.Sprintf("diff --git a/%s b/%s\n%s", path, path, body), nil
}

func commitAt(r *gogit.Repository, rev string) (*object.Commit, error) {
	h, err := r.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", rev, err)
	}
	c, err := r.CommitObject(*h)
	if err != nil {
		return nil, fmt.Errorf("loading commit %s: %w", rev, err)
	}
	return c, nil
}

func treeAt(r *gogit.Repository, rev string) (*object.Tree, error) {
	c, err := commitAt(r, rev)
	if err != nil {
		return nil, err
	}
	t, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("loading tree of %s: %w", rev, err)
	}
	return t, nil
}

// fileAt returns the raw content of path at rev and whether it exists there.
func fileAt(r *gogit.Repository, rev, path string) ([]byte, bool, error) {
	c, err := commitAt(r, rev)
	if err != nil {
		return nil, false, err
	}
	f, err := c.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading %s at %s: %w", path, rev, err)
	}
	rd, err := f.Reader()
	if err != nil {
		return nil, false, fmt.Errorf("reading %s at %s: %w", path, rev, err)
	}
	defer rd.Close()
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, false, fmt.Errorf("reading %s at %s: %w", path, rev, err)
	}
	return data, true, nil
}

// splitLines keeps line terminators and never adds a phantom last line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] += "\n"
	}
	return lines
}
