// Package snapshot is the atomic, immutable on-disk persistence layer
// of §4.J: one JSON file per commit sha under snapshots/, plus a
// self-healing index. Grounded on the teacher's file-backed report
// store (temp-file-plus-rename discipline, mutex-serialized writer,
// manifest self-heal from directory contents) but re-targeted from gob
// to the canonical JSON wire format §6 specifies.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/hotspots-dev/hotspots/internal/herrors"
	"github.com/hotspots-dev/hotspots/internal/report"
)

const (
	dirName      = ".hotspots"
	snapshotsDir = "snapshots"
	indexFile    = "index.json"
	dirPerm      = 0o750
	filePerm     = 0o600
	tmpExtension = ".tmp"

	SchemaVersion = 2
)

// Commit mirrors §3's Commit record.
type Commit struct {
	SHA       string   `json:"sha"`
	Parents   []string `json:"parents"`
	Timestamp int64    `json:"timestamp"`
	Branch    *string  `json:"branch"`
}

// Analysis stamps the scope and the tool/config identity a snapshot
// was computed with. ConfigDigest resolves §9's open question in favor
// of (b): reconciling two snapshots computed under different
// weights/thresholds is detected, not merely assumed absent.
type Analysis struct {
	Scope        string `json:"scope"`
	ToolVersion  string `json:"tool_version"`
	ConfigDigest string `json:"config_digest"`
}

// Snapshot mirrors §3/§6's canonical snapshot document.
type Snapshot struct {
	SchemaVersion int                     `json:"schema_version"`
	Commit        Commit                  `json:"commit"`
	Analysis      Analysis                `json:"analysis"`
	Functions     []report.FunctionRecord `json:"functions"`
}

// Validate enforces the snapshot invariants of §3 that are cheap to
// check before writing: sorted, deduplicated function_id list.
func (s *Snapshot) Validate() error {
	for i := 1; i < len(s.Functions); i++ {
		if s.Functions[i-1].FunctionID >= s.Functions[i].FunctionID {
			return fmt.Errorf("snapshot: functions not strictly ascending or duplicate at %q", s.Functions[i].FunctionID)
		}
	}
	return nil
}

// Marshal renders canonical JSON bytes: sorted struct field order
// (fixed by Go's encoding/json, which always emits struct fields in
// declaration order) plus a trailing newline for diff-friendliness.
func Marshal(s *Snapshot) ([]byte, error) {
	report.SortCanonical(s.Functions)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	buf, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal: %w", err)
	}
	return append(buf, '\n'), nil
}

// indexEntry is one commit's index record.
type indexEntry struct {
	SHA       string   `json:"sha"`
	Parents   []string `json:"parents"`
	Timestamp int64    `json:"timestamp"`
}

// Index mirrors §3's Index record.
type Index struct {
	SchemaVersion   int          `json:"schema_version"`
	CompactionLevel int          `json:"compaction_level"`
	Commits         []indexEntry `json:"commits"`
}

// Store is the snapshot store rooted at a repository's working tree.
// One Store serializes writes for its process via mu; cross-process
// coordination is unnecessary because the index self-heals (§4.J).
type Store struct {
	repoRoot string
	mu       sync.Mutex
	counter  int64
}

// New returns a Store rooted at repoRoot. The .hotspots directory is
// created lazily on first write.
func New(repoRoot string) *Store {
	return &Store{repoRoot: repoRoot}
}

func (s *Store) hotspotsDir() string    { return filepath.Join(s.repoRoot, dirName) }
func (s *Store) snapshotsDir() string   { return filepath.Join(s.hotspotsDir(), snapshotsDir) }
func (s *Store) indexPath() string      { return filepath.Join(s.hotspotsDir(), indexFile) }
func (s *Store) snapshotPath(sha string) string {
	return filepath.Join(s.snapshotsDir(), sha+".json")
}

// atomicWrite writes data to path via a temp-file-plus-rename, per
// §4.J: never a partial file is observable at path.
func (s *Store) atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return &herrors.IOError{Path: dir, Operation: "mkdir", Err: err}
	}

	n := atomic.AddInt64(&s.counter, 1)
	tmpPath := path + tmpExtension + "." + strconv.Itoa(os.Getpid()) + "." + strconv.FormatInt(n, 10)

	if err := os.WriteFile(tmpPath, data, filePerm); err != nil {
		return &herrors.IOError{Path: tmpPath, Operation: "write", Err: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &herrors.IOError{Path: path, Operation: "rename", Err: err}
	}

	return nil
}

// Has reports whether a snapshot file already exists for sha.
func (s *Store) Has(sha string) bool {
	_, err := os.Stat(s.snapshotPath(sha))
	return err == nil
}

// Load reads and parses the snapshot for sha.
func (s *Store) Load(sha string) (*Snapshot, error) {
	data, err := os.ReadFile(s.snapshotPath(sha))
	if err != nil {
		return nil, &herrors.IOError{Path: s.snapshotPath(sha), Operation: "read", Err: err}
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &herrors.IOError{Path: s.snapshotPath(sha), Operation: "unmarshal", Err: err}
	}
	return &snap, nil
}

// Write persists a snapshot, per §4.J's immutability rule: identical
// bytes on a repeat write are a no-op; differing bytes fail with
// SnapshotConflict. The index is updated only after the snapshot file
// is durable.
func (s *Store) Write(snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := Marshal(snap)
	if err != nil {
		return err
	}

	path := s.snapshotPath(snap.Commit.SHA)

	if existing, err := os.ReadFile(path); err == nil {
		if bytes.Equal(existing, data) {
			return nil
		}
		return &herrors.SnapshotConflict{Sha: snap.Commit.SHA}
	}

	if err := s.atomicWrite(path, data); err != nil {
		return err
	}

	return s.upsertIndex(indexEntry{
		SHA:       snap.Commit.SHA,
		Parents:   snap.Commit.Parents,
		Timestamp: snap.Commit.Timestamp,
	})
}

// upsertIndex loads (or self-heals) the index, upserts entry, and
// rewrites it atomically.
func (s *Store) upsertIndex(entry indexEntry) error {
	idx, err := s.loadOrHealIndexLocked()
	if err != nil {
		return err
	}

	found := false
	for i := range idx.Commits {
		if idx.Commits[i].SHA == entry.SHA {
			idx.Commits[i] = entry
			found = true
			break
		}
	}
	if !found {
		idx.Commits = append(idx.Commits, entry)
	}

	sortIndex(idx)

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: marshal index: %w", err)
	}
	data = append(data, '\n')

	return s.atomicWrite(s.indexPath(), data)
}

func sortIndex(idx *Index) {
	sort.Slice(idx.Commits, func(i, j int) bool {
		a, b := idx.Commits[i], idx.Commits[j]
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		return a.SHA < b.SHA
	})
}

// loadOrHealIndexLocked returns the current index, rebuilding it from
// the snapshot directory if it is missing or fails to parse. Caller
// holds s.mu.
func (s *Store) loadOrHealIndexLocked() (*Index, error) {
	data, err := os.ReadFile(s.indexPath())
	if err == nil {
		var idx Index
		if jerr := json.Unmarshal(data, &idx); jerr == nil {
			return &idx, nil
		}
	}
	return s.rebuildIndexLocked()
}

// RebuildIndex self-heals the index by scanning snapshots/, exported
// for the CLI and for tests that want to verify invariant 5 directly.
func (s *Store) RebuildIndex() (*Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.rebuildIndexLocked()
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal index: %w", err)
	}
	data = append(data, '\n')
	if err := s.atomicWrite(s.indexPath(), data); err != nil {
		return nil, err
	}
	return idx, nil
}

func (s *Store) rebuildIndexLocked() (*Index, error) {
	idx := &Index{SchemaVersion: SchemaVersion, CompactionLevel: s.existingCompactionLevelLocked()}

	entries, err := os.ReadDir(s.snapshotsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, &herrors.IOError{Path: s.snapshotsDir(), Operation: "readdir", Err: err}
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) != ".json" {
			continue
		}
		sha := name[:len(name)-len(".json")]

		data, err := os.ReadFile(filepath.Join(s.snapshotsDir(), name))
		if err != nil {
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			continue
		}

		idx.Commits = append(idx.Commits, indexEntry{
			SHA:       sha,
			Parents:   snap.Commit.Parents,
			Timestamp: snap.Commit.Timestamp,
		})
	}

	sortIndex(idx)

	return idx, nil
}

// DeleteAndReindex removes the named snapshot files and rewrites the
// index to omit them atomically, per §4.M's prune algorithm.
func (s *Store) DeleteAndReindex(shas []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sha := range shas {
		if err := os.Remove(s.snapshotPath(sha)); err != nil && !os.IsNotExist(err) {
			return &herrors.IOError{Path: s.snapshotPath(sha), Operation: "remove", Err: err}
		}
	}

	idx, err := s.rebuildIndexLocked()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: marshal index: %w", err)
	}
	data = append(data, '\n')

	return s.atomicWrite(s.indexPath(), data)
}

// existingCompactionLevelLocked reads the on-disk index's
// compaction_level so a rebuild never silently resets it to 0; returns
// 0 when no index file exists yet. Caller holds s.mu.
func (s *Store) existingCompactionLevelLocked() int {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		return 0
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return 0
	}
	return idx.CompactionLevel
}

// SetCompactionLevel stamps the index's compaction_level field. Per
// §6, level 0 is the only level with a distinct on-disk form today;
// levels 1 and 2 are metadata-only markers that a future compactor can
// act on, so this only rewrites the index, never the snapshot files.
func (s *Store) SetCompactionLevel(level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.loadOrHealIndexLocked()
	if err != nil {
		return err
	}
	idx.CompactionLevel = level

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: marshal index: %w", err)
	}
	data = append(data, '\n')

	return s.atomicWrite(s.indexPath(), data)
}

// NormalizeBranch builds the Commit.Branch pointer: nil when detached
// or unnamed, the branch name otherwise.
func NormalizeBranch(branch string, detached bool) *string {
	if detached || branch == "" {
		return nil
	}
	return &branch
}
