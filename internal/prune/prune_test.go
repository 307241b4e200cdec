package prune_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hotspots-dev/hotspots/internal/gitcontext"
	"github.com/hotspots-dev/hotspots/internal/prune"
	"github.com/hotspots-dev/hotspots/internal/snapshot"
)

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return string(out)
}

func trimmed(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func initRepoWithOneCommit(t *testing.T) (dir, sha string) {
	t.Helper()
	dir = t.TempDir()
	runGit(t, dir, "init", "-q", "-b", "main")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "test")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one"), 0o644))
	runGit(t, dir, "add", "a.txt")
	runGit(t, dir, "commit", "-q", "-m", "initial")
	sha = trimmed(runGit(t, dir, "rev-parse", "HEAD"))
	return dir, sha
}

func writeSnapshot(t *testing.T, store *snapshot.Store, sha string, timestamp int64) {
	t.Helper()
	snap := &snapshot.Snapshot{
		SchemaVersion: snapshot.SchemaVersion,
		Commit:        snapshot.Commit{SHA: sha, Timestamp: timestamp},
	}
	require.NoError(t, store.Write(snap))
}

func TestRunPrunesUnreachableSnapshot(t *testing.T) {
	dir, reachableSHA := initRepoWithOneCommit(t)
	git := gitcontext.New(dir)
	store := snapshot.New(dir)

	writeSnapshot(t, store, reachableSHA, 1000)
	writeSnapshot(t, store, "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef", 1000)

	plan, err := prune.Run(git, store, prune.Options{})

	require.NoError(t, err)
	require.Equal(t, []string{"deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"}, plan.ToPrune)
	require.False(t, store.Has("deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"))
	require.True(t, store.Has(reachableSHA))
}

func TestDryRunDeletesNothing(t *testing.T) {
	dir, reachableSHA := initRepoWithOneCommit(t)
	git := gitcontext.New(dir)
	store := snapshot.New(dir)

	writeSnapshot(t, store, reachableSHA, 1000)
	writeSnapshot(t, store, "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef", 1000)

	plan, err := prune.Run(git, store, prune.Options{DryRun: true})

	require.NoError(t, err)
	require.Equal(t, []string{"deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"}, plan.ToPrune)
	require.True(t, store.Has("deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"))
}

func TestAgeGateKeepsRecentUnreachableSnapshots(t *testing.T) {
	dir, reachableSHA := initRepoWithOneCommit(t)
	git := gitcontext.New(dir)
	store := snapshot.New(dir)

	writeSnapshot(t, store, reachableSHA, 1000)
	writeSnapshot(t, store, "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef", 9999999999)

	plan, err := prune.Run(git, store, prune.Options{HasMaxAge: true, MaxAgeDays: 30})

	require.NoError(t, err)
	require.Empty(t, plan.ToPrune)
	require.True(t, store.Has("deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"))
}

func TestRunNeverPrunesReachableCommit(t *testing.T) {
	dir, reachableSHA := initRepoWithOneCommit(t)
	git := gitcontext.New(dir)
	store := snapshot.New(dir)

	writeSnapshot(t, store, reachableSHA, 1000)

	plan, err := prune.Run(git, store, prune.Options{})

	require.NoError(t, err)
	require.Empty(t, plan.ToPrune)
}
