package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_HasExpectedFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	require.NotNil(t, flags.Lookup("repo"))
	require.NotNil(t, flags.Lookup("branch"))
	require.NotNil(t, flags.Lookup("encoding"))
	require.NotNil(t, flags.Lookup("config"))
	require.NotNil(t, flags.Lookup("debug"))

	require.NotNil(t, diffCmd.Flags().Lookup("format"))
	require.NotNil(t, diffCmd.Flags().Lookup("output"))
	require.NotNil(t, diffCmd.Flags().Lookup("copy"))
	require.NotNil(t, diffCmd.Flags().Lookup("scheme"))
	require.NotNil(t, logCmd.Flags().Lookup("limit"))
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"diff", "files", "log", "branches", "history", "version"} {
		assert.True(t, names[want], "%s subcommand should be registered", want)
	}
}

func TestVersionCmd_Output(t *testing.T) {
	Version = "1.0.0-test"
	defer func() { Version = "dev" }()

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	require.Equal(t, "gitdiffview 1.0.0-test\n", buf.String())
}

// resetFlags restores every flag to its default so package-level flag
// variables do not leak between command runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

type cliEnv struct {
	repo   string
	config string
	dir    string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	repo := filepath.Join(dir, "repo")

	r, err := gogit.PlainInitWithOptions(repo, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	require.NoError(t, err)
	w, err := r.Worktree()
	require.NoError(t, err)

	var hashes []plumbing.Hash
	for i, content := range []string{"one\ntwo\nthree\n", "one\n2\nthree\n"} {
		require.NoError(t, os.WriteFile(filepath.Join(repo, "a.txt"), []byte(content), 0o644))
		_, err := w.Add("a.txt")
		require.NoError(t, err)
		sig := &object.Signature{Name: "Test", Email: "test@example.com", When: time.Unix(int64(1700000000+i), 0)}
		h, err := w.Commit(fmt.Sprintf("commit %d", i+1), &gogit.CommitOptions{Author: sig, Committer: sig})
		require.NoError(t, err)
		hashes = append(hashes, h)
	}
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName("feature"), hashes[0])
	require.NoError(t, r.Storer.SetReference(ref))

	cfg := filepath.Join(dir, "config.yaml")
	yaml := fmt.Sprintf("git:\n  backend: gogit\nhistory:\n  file: %s\nprefs:\n  file: %s\n",
		filepath.Join(dir, "history"), filepath.Join(dir, "prefs.yaml"))
	require.NoError(t, os.WriteFile(cfg, []byte(yaml), 0o644))

	return &cliEnv{repo: repo, config: cfg, dir: dir}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--config", e.config, "--repo", e.repo))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestDiffCmd_Markdown(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run(t, "diff", "HEAD~1", "HEAD", "a.txt", "--format", "md")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# a.txt: HEAD~1..HEAD\n\n```diff\n"), out)
	assert.Contains(t, out, "-two\n")
	assert.Contains(t, out, "+2\n")
	assert.True(t, strings.HasSuffix(out, "```\n"))
}

func TestDiffCmd_HTMLToFile(t *testing.T) {
	env := newCLIEnv(t)
	path := filepath.Join(env.dir, "out.html")

	out, _, err := env.run(t, "diff", "HEAD~1", "HEAD", "a.txt", "-f", "html", "-o", path, "--scheme", "dracula")
	require.NoError(t, err)
	assert.Equal(t, "Diff saved to "+path+"\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<!DOCTYPE html>")
	assert.Contains(t, string(data), "+2")
}

func TestDiffCmd_NoDifferences(t *testing.T) {
	env := newCLIEnv(t)

	out, errOut, err := env.run(t, "diff", "HEAD", "HEAD", "a.txt")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "No differences in a.txt")
}

func TestDiffCmd_BadFormat(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run(t, "diff", "HEAD~1", "HEAD", "a.txt", "--format", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}

func TestDiffCmd_UnknownEncoding(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run(t, "diff", "HEAD~1", "HEAD", "a.txt", "--encoding", "klingon")
	require.Error(t, err)
}

func TestFilesCmd(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run(t, "files", "HEAD~1", "HEAD")
	require.NoError(t, err)
	assert.Equal(t, "a.txt\n", out)
}

func TestLogCmd(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run(t, "log")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], " commit 2"))
	assert.True(t, strings.HasSuffix(lines[1], " commit 1"))

	out, _, err = env.run(t, "log", "--branch", "feature")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), " commit 1"))

	out, _, err = env.run(t, "log", "-n", "1")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 1)
}

func TestBranchesCmd(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run(t, "branches")
	require.NoError(t, err)
	assert.Equal(t, "  feature\n* main\n", out)
}

func TestHistoryCmd(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run(t, "branches", "--encoding", "Shift_JIS")
	require.NoError(t, err)

	out, _, err := env.run(t, "history")
	require.NoError(t, err)
	assert.Equal(t, env.repo+"\n", out)

	out, _, err = env.run(t, "history", "encodings")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Shift_JIS\n"), out)

	out, _, err = env.run(t, "history", "clear", "repos")
	require.NoError(t, err)
	assert.Equal(t, "Cleared repos history.\n", out)

	out, _, err = env.run(t, "history", "repos")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, _, err = env.run(t, "history", "bookmarks")
	require.Error(t, err)
}
