package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hotspots-dev/hotspots/cmd/hotspots/commands"
	"github.com/hotspots-dev/hotspots/internal/snapshot"
)

func TestPruneDryRunReportsWithoutDeleting(t *testing.T) {
	dir := initRepoWithGoFile(t)

	store := snapshot.New(dir)
	require.NoError(t, store.Write(&snapshot.Snapshot{
		SchemaVersion: snapshot.SchemaVersion,
		Commit:        snapshot.Commit{SHA: "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef", Timestamp: 1000},
	}))

	cmd := commands.NewPruneCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--dry-run", dir})

	err := cmd.Execute()

	require.NoError(t, err)
	require.Contains(t, out.String(), "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef")
	require.True(t, store.Has("deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"))
}

func TestPruneDeletesUnreachableSnapshot(t *testing.T) {
	dir := initRepoWithGoFile(t)

	store := snapshot.New(dir)
	require.NoError(t, store.Write(&snapshot.Snapshot{
		SchemaVersion: snapshot.SchemaVersion,
		Commit:        snapshot.Commit{SHA: "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef", Timestamp: 1000},
	}))

	cmd := commands.NewPruneCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()

	require.NoError(t, err)
	require.False(t, store.Has("deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"))
}

func TestPruneOnPathWithNoSnapshotsSucceeds(t *testing.T) {
	dir := initRepoWithGoFile(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".hotspots"), 0o750))

	cmd := commands.NewPruneCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()

	require.NoError(t, err)
}
