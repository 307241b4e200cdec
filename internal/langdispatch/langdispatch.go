// Package langdispatch maps file extensions to language frontends and
// enumerates source files under a root (§4.B), walking the tree the
// way the teacher's own discovery layer does: recursive descent, no
// symlink following, a fixed default-exclude set, then config
// include/exclude globs, sorted by normalized relative path.
package langdispatch

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hotspots-dev/hotspots/internal/determinism"
	"github.com/hotspots-dev/hotspots/internal/frontend"
	"github.com/hotspots-dev/hotspots/internal/frontend/golang"
	"github.com/hotspots-dev/hotspots/internal/frontend/java"
	"github.com/hotspots-dev/hotspots/internal/frontend/javascript"
	"github.com/hotspots-dev/hotspots/internal/frontend/python"
	"github.com/hotspots-dev/hotspots/internal/frontend/rust"
)

// defaultExcludeDirs are always skipped during enumeration, per §4.B.
var defaultExcludeDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
	"out":          true,
	"coverage":     true,
	"target":       true,
	"__pycache__":  true,
}

// Registry resolves an extension to a frontend instance. Frontends are
// stateless value types (or cheap closures over one), so one shared
// instance per language is safe to reuse across files and goroutines.
type Registry struct {
	byExt map[string]frontend.Frontend
}

// NewRegistry builds the fixed extension table of §4.B.
func NewRegistry() *Registry {
	ecma := javascript.NewECMAScript()
	ts := javascript.NewTypeScript()
	tsx := javascript.NewTSX()
	goFront := golang.New()
	rustFront := rust.New()
	pyFront := python.New()
	javaFront := java.New()

	return &Registry{byExt: map[string]frontend.Frontend{
		".js":  ecma,
		".jsx": ecma,
		".mjs": ecma,
		".cjs": ecma,
		".ts":  ts,
		".mts": ts,
		".cts": ts,
		".tsx": tsx,
		".go":  goFront,
		".rs":  rustFront,
		".py":  pyFront,
		".java": javaFront,
	}}
}

// Resolve returns the frontend for a file's extension, or ok=false for
// an unrecognized or explicitly-excluded extension.
func (r *Registry) Resolve(path string) (frontend.Frontend, bool) {
	if hasSuffixFold(path, ".d.ts") {
		return nil, false
	}
	ext := filepath.Ext(path)
	fe, ok := r.byExt[ext]
	return fe, ok
}

func hasSuffixFold(path, suffix string) bool {
	if len(path) < len(suffix) {
		return false
	}
	return path[len(path)-len(suffix):] == suffix
}

// Filters holds the include/exclude glob configuration of §6.
type Filters struct {
	Include []string
	Exclude []string
}

// Discover walks root and returns the sorted list of repo-root-relative
// paths this registry recognizes and the filters admit. Symlinks are
// never followed; default-excluded directory names and hidden
// directories (dot-prefixed) are pruned outright.
func Discover(root string, r *Registry, f Filters) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = determinism.NormalizePath(rel)

		if d.IsDir() {
			name := d.Name()
			if defaultExcludeDirs[name] || isHiddenDir(name) {
				return filepath.SkipDir
			}
			if matchesAny(rel, f.Exclude) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if _, ok := r.Resolve(rel); !ok {
			return nil
		}

		if len(f.Include) > 0 && !matchesAny(rel, f.Include) {
			return nil
		}
		if matchesAny(rel, f.Exclude) {
			return nil
		}

		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	determinism.SortStringsASCII(paths)
	return paths, nil
}

func isHiddenDir(name string) bool {
	return len(name) > 1 && name[0] == '.'
}

func matchesAny(path string, globs []string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, path); err == nil && ok {
			return true
		}
	}
	return false
}

// ReadFile is a tiny indirection kept so the engine need not import
// os directly when wiring a Discover result into per-file parsing.
func ReadFile(root, relPath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(root, filepath.FromSlash(relPath)))
}
