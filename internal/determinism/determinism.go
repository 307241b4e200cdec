// Package determinism centralizes the formatting and ordering rules
// §4.P requires everywhere output is produced: forward-slash paths,
// ASCII-lexical sorting, and a fixed float rendering so the same input
// bytes always produce the same output bytes regardless of platform,
// locale, or directory iteration order.
package determinism

import (
	"path"
	"sort"
	"strconv"
	"strings"
)

// NormalizePath converts p to a forward-slash, repo-root-relative path
// with no leading "./".
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	return path.Clean(p)
}

// LessASCII orders two strings byte-by-byte, ignoring locale.
func LessASCII(a, b string) bool { return a < b }

// SortStringsASCII sorts a slice of strings ASCII-lexically in place.
func SortStringsASCII(s []string) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}

// FormatFloat renders an f64 with full precision for JSON embedding:
// the shortest decimal string that round-trips exactly, matching
// encoding/json's own float64 behavior so serialization stays
// consistent whether written through json.Marshal or by hand.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// TruncateOneDecimal renders v truncated (not rounded) to one decimal
// place, for human-facing text output only — never for JSON.
func TruncateOneDecimal(v float64) string {
	scaled := float64(int64(v*10)) / 10
	return strconv.FormatFloat(scaled, 'f', 1, 64)
}
