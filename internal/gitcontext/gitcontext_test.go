package gitcontext_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hotspots-dev/hotspots/internal/gitcontext"
)

func initRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	runGit(t, dir, "init", "-q", "-b", "main")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "test")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one"), 0o644))
	runGit(t, dir, "add", "a.txt")
	runGit(t, dir, "commit", "-q", "-m", "initial")

	return dir
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return string(out)
}

func TestExtractOnSingleCommitRepo(t *testing.T) {
	dir := initRepo(t)
	client := gitcontext.New(dir)

	ctx, err := client.Extract()

	require.NoError(t, err)
	require.NotEmpty(t, ctx.HeadSHA)
	require.Empty(t, ctx.Parents)
	require.Equal(t, "main", ctx.Branch)
	require.False(t, ctx.IsDetached)
}

func TestExtractReportsParent(t *testing.T) {
	dir := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("two"), 0o644))
	runGit(t, dir, "add", "b.txt")
	runGit(t, dir, "commit", "-q", "-m", "second")

	client := gitcontext.New(dir)
	ctx, err := client.Extract()

	require.NoError(t, err)
	require.Len(t, ctx.Parents, 1)
}

func TestExtractDetachedHead(t *testing.T) {
	dir := initRepo(t)
	sha := runGitTrimmed(t, dir, "rev-parse", "HEAD")
	runGit(t, dir, "checkout", "-q", sha)

	client := gitcontext.New(dir)
	ctx, err := client.Extract()

	require.NoError(t, err)
	require.True(t, ctx.IsDetached)
	require.Empty(t, ctx.Branch)
}

func TestExtractOnInvalidRepository(t *testing.T) {
	dir := t.TempDir()
	client := gitcontext.New(dir)

	_, err := client.Extract()

	require.Error(t, err)
}

func TestMergeBase(t *testing.T) {
	dir := initRepo(t)
	base := runGitTrimmed(t, dir, "rev-parse", "HEAD")

	runGit(t, dir, "checkout", "-q", "-b", "feature")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte("three"), 0o644))
	runGit(t, dir, "add", "c.txt")
	runGit(t, dir, "commit", "-q", "-m", "on feature")
	head := runGitTrimmed(t, dir, "rev-parse", "HEAD")

	client := gitcontext.New(dir)
	mb, err := client.MergeBase(head, "main")

	require.NoError(t, err)
	require.Equal(t, base, mb)
}

func TestReachableFromRefs(t *testing.T) {
	dir := initRepo(t)
	head := runGitTrimmed(t, dir, "rev-parse", "HEAD")

	client := gitcontext.New(dir)
	reachable, err := client.ReachableFromRefs()

	require.NoError(t, err)
	require.True(t, reachable[head])
}

func runGitTrimmed(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out := runGit(t, dir, args...)
	for len(out) > 0 && (out[len(out)-1] == '\n' || out[len(out)-1] == '\r') {
		out = out[:len(out)-1]
	}
	return out
}
