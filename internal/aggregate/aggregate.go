// Package aggregate computes file- and directory-level rollups over a
// snapshot (§4.N): sum_lrs, max_lrs, and high_plus_count per file, with
// directories aggregating recursively by path prefix.
package aggregate

import (
	"sort"
	"strings"

	"github.com/hotspots-dev/hotspots/internal/report"
)

// Entry is one file's or directory's rollup.
type Entry struct {
	Path          string  `json:"path"`
	SumLRS        float64 `json:"sum_lrs"`
	MaxLRS        float64 `json:"max_lrs"`
	HighPlusCount int     `json:"high_plus_count"`
}

// Result bundles the file-level and directory-level rollups.
type Result struct {
	Files       []Entry `json:"files"`
	Directories []Entry `json:"directories"`
}

func isHighPlus(band string) bool {
	return band == "high" || band == "critical"
}

// Compute builds both rollups from a snapshot's function list.
func Compute(records []report.FunctionRecord) Result {
	fileAgg := map[string]*Entry{}
	var fileOrder []string

	for _, fr := range records {
		e, ok := fileAgg[fr.File]
		if !ok {
			e = &Entry{Path: fr.File}
			fileAgg[fr.File] = e
			fileOrder = append(fileOrder, fr.File)
		}
		e.SumLRS += fr.LRS
		if fr.LRS > e.MaxLRS {
			e.MaxLRS = fr.LRS
		}
		if isHighPlus(fr.Band) {
			e.HighPlusCount++
		}
	}

	sort.Strings(fileOrder)
	files := make([]Entry, 0, len(fileOrder))
	for _, p := range fileOrder {
		files = append(files, *fileAgg[p])
	}

	dirs := computeDirectories(files)

	return Result{Files: files, Directories: dirs}
}

// computeDirectories folds every file entry into each of its ancestor
// directories' rollups, recursively by path prefix.
func computeDirectories(files []Entry) []Entry {
	dirAgg := map[string]*Entry{}
	var dirOrder []string

	for _, f := range files {
		for _, dir := range ancestorDirs(f.Path) {
			e, ok := dirAgg[dir]
			if !ok {
				e = &Entry{Path: dir}
				dirAgg[dir] = e
				dirOrder = append(dirOrder, dir)
			}
			e.SumLRS += f.SumLRS
			if f.MaxLRS > e.MaxLRS {
				e.MaxLRS = f.MaxLRS
			}
			e.HighPlusCount += f.HighPlusCount
		}
	}

	sort.Strings(dirOrder)
	dirs := make([]Entry, 0, len(dirOrder))
	for _, d := range dirOrder {
		dirs = append(dirs, *dirAgg[d])
	}
	return dirs
}

// ancestorDirs returns every directory prefix of a forward-slash path,
// shallowest first (e.g. "a/b/c.go" -> ["a", "a/b"]).
func ancestorDirs(path string) []string {
	parts := strings.Split(path, "/")
	if len(parts) <= 1 {
		return nil
	}

	var dirs []string
	for i := 1; i < len(parts); i++ {
		dirs = append(dirs, strings.Join(parts[:i], "/"))
	}
	return dirs
}
