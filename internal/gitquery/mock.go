package gitquery

import "context"

// Compile-time check that MockQuery implements Query.
var _ Query = (*MockQuery)(nil)

// MockQuery is a configurable Query for tests. Each method is backed by a
// function field; a nil field returns zero values.
type MockQuery struct {
	CommitsFunc      func(repo, branch string) ([]Commit, error)
	BranchesFunc     func(repo string) ([]string, error)
	ChangedFilesFunc func(repo, from, to string) ([]string, error)
	DiffFunc         func(repo, from, to, path, encoding string) (string, error)
}

func (m *MockQuery) Commits(_ context.Context, repo, branch string) ([]Commit, error) {
	if m.CommitsFunc != nil {
		return m.CommitsFunc(repo, branch)
	}
	return nil, nil
}

func (m *MockQuery) Branches(_ context.Context, repo string) ([]string, error) {
	if m.BranchesFunc != nil {
		return m.BranchesFunc(repo)
	}
	return nil, nil
}

func (m *MockQuery) ChangedFiles(_ context.Context, repo, from, to string) ([]string, error) {
	if m.ChangedFilesFunc != nil {
		return m.ChangedFilesFunc(repo, from, to)
	}
	return nil, nil
}

func (m *MockQuery) Diff(_ context.Context, repo, from, to, path, encoding string) (string, error) {
	if m.DiffFunc != nil {
		return m.DiffFunc(repo, from, to, path, encoding)
	}
	return "", nil
}
