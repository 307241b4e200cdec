package snapshot_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hotspots-dev/hotspots/internal/herrors"
	"github.com/hotspots-dev/hotspots/internal/report"
	"github.com/hotspots-dev/hotspots/internal/snapshot"
)

func sampleSnapshot(sha string) *snapshot.Snapshot {
	return &snapshot.Snapshot{
		SchemaVersion: snapshot.SchemaVersion,
		Commit:        snapshot.Commit{SHA: sha, Parents: []string{"p1"}, Timestamp: 1000},
		Analysis:      snapshot.Analysis{Scope: ".", ToolVersion: "dev", ConfigDigest: "digest"},
		Functions: []report.FunctionRecord{
			{FunctionID: "a.go::f", File: "a.go", Line: 1},
		},
	}
}

func TestWriteThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	store := snapshot.New(dir)

	require.NoError(t, store.Write(sampleSnapshot("sha1")))

	loaded, err := store.Load("sha1")
	require.NoError(t, err)
	require.Equal(t, "sha1", loaded.Commit.SHA)
	require.Len(t, loaded.Functions, 1)
}

func TestWriteIsIdempotentForIdenticalBytes(t *testing.T) {
	dir := t.TempDir()
	store := snapshot.New(dir)

	snap := sampleSnapshot("sha1")
	require.NoError(t, store.Write(snap))
	require.NoError(t, store.Write(snap))
}

func TestWriteRejectsConflictingBytes(t *testing.T) {
	dir := t.TempDir()
	store := snapshot.New(dir)

	require.NoError(t, store.Write(sampleSnapshot("sha1")))

	conflicting := sampleSnapshot("sha1")
	conflicting.Analysis.ToolVersion = "different"

	err := store.Write(conflicting)

	require.Error(t, err)
	var conflict *herrors.SnapshotConflict
	require.ErrorAs(t, err, &conflict)
}

func TestHasReportsExistence(t *testing.T) {
	dir := t.TempDir()
	store := snapshot.New(dir)

	require.False(t, store.Has("sha1"))
	require.NoError(t, store.Write(sampleSnapshot("sha1")))
	require.True(t, store.Has("sha1"))
}

func TestIndexSelfHealsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	store := snapshot.New(dir)

	require.NoError(t, store.Write(sampleSnapshot("sha1")))
	require.NoError(t, store.Write(sampleSnapshot("sha2")))

	require.NoError(t, os.Remove(filepath.Join(dir, ".hotspots", "index.json")))

	idx, err := store.RebuildIndex()
	require.NoError(t, err)
	require.Len(t, idx.Commits, 2)
}

func TestIndexSelfHealsWhenCorrupt(t *testing.T) {
	dir := t.TempDir()
	store := snapshot.New(dir)

	require.NoError(t, store.Write(sampleSnapshot("sha1")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hotspots", "index.json"), []byte("not json"), 0o600))

	require.NoError(t, store.Write(sampleSnapshot("sha2")))

	idx, err := store.RebuildIndex()
	require.NoError(t, err)
	require.Len(t, idx.Commits, 2)
}

func TestSetCompactionLevelSurvivesIndexRebuild(t *testing.T) {
	dir := t.TempDir()
	store := snapshot.New(dir)

	require.NoError(t, store.Write(sampleSnapshot("sha1")))
	require.NoError(t, store.SetCompactionLevel(2))

	idx, err := store.RebuildIndex()
	require.NoError(t, err)
	require.Equal(t, 2, idx.CompactionLevel)
}

func TestDeleteAndReindexRemovesSnapshotAndIndexEntry(t *testing.T) {
	dir := t.TempDir()
	store := snapshot.New(dir)

	require.NoError(t, store.Write(sampleSnapshot("sha1")))
	require.NoError(t, store.Write(sampleSnapshot("sha2")))

	require.NoError(t, store.DeleteAndReindex([]string{"sha1"}))

	require.False(t, store.Has("sha1"))
	require.True(t, store.Has("sha2"))

	idx, err := store.RebuildIndex()
	require.NoError(t, err)
	require.Len(t, idx.Commits, 1)
	require.Equal(t, "sha2", idx.Commits[0].SHA)
}

func TestValidateRejectsUnsortedOrDuplicateFunctions(t *testing.T) {
	snap := &snapshot.Snapshot{
		Functions: []report.FunctionRecord{
			{FunctionID: "b"},
			{FunctionID: "a"},
		},
	}

	require.Error(t, snap.Validate())
}

func TestMarshalSortsFunctionsCanonically(t *testing.T) {
	snap := sampleSnapshot("sha1")
	snap.Functions = []report.FunctionRecord{
		{FunctionID: "z.go::f"},
		{FunctionID: "a.go::f"},
	}

	data, err := snapshot.Marshal(snap)

	require.NoError(t, err)
	require.Equal(t, "a.go::f", snap.Functions[0].FunctionID)
	require.NotEmpty(t, data)
}

func TestNormalizeBranch(t *testing.T) {
	require.Nil(t, snapshot.NormalizeBranch("", false))
	require.Nil(t, snapshot.NormalizeBranch("main", true))

	branch := snapshot.NormalizeBranch("main", false)
	require.NotNil(t, branch)
	require.Equal(t, "main", *branch)
}
