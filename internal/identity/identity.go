// Package identity assigns the stable function_id of §3/§4.G and
// provides a fast duplicate-detection set for large repositories using
// xxhash, grounded on the teacher's use of the same hash family for
// identity interning.
package identity

import (
	"fmt"
	"path"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Anonymous renders the synthesized identity for an anonymous function
// form: <anonymous>@<file>:<line>.
func Anonymous(file string, line int) string {
	return fmt.Sprintf("<anonymous>@%s:%d", file, line)
}

// FunctionID builds the canonical function_id: <relative_path>::<symbol>.
// relativePath is normalized to forward slashes before joining.
func FunctionID(relativePath, symbol string) string {
	return Normalize(relativePath) + "::" + symbol
}

// Normalize converts a path to forward slashes and strips any leading
// "./" so identical files are identified the same way regardless of
// how the caller's path arrived.
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")

	return path.Clean(p)
}

// Set is a memory-light membership set for function_id strings, used by
// the engine to detect accidental duplicate identities within a single
// snapshot build in O(1) rather than re-scanning the slice.
type Set struct {
	seen map[uint64]string
}

// NewSet creates an empty identity set.
func NewSet() *Set {
	return &Set{seen: make(map[uint64]string)}
}

// AddIfAbsent inserts id if not already present and reports whether it
// was newly inserted. The stored id string is compared, so a hash
// collision between two distinct ids (vanishingly unlikely with
// xxhash64 at realistic function counts) is never reported as a
// duplicate; the new id then replaces the earlier one in the set, and
// the earlier id is no longer recognised.
func (s *Set) AddIfAbsent(id string) bool {
	h := xxhash.Sum64String(id)
	if existing, ok := s.seen[h]; ok && existing == id {
		return false
	}

	s.seen[h] = id

	return true
}
