// Package frontend defines the language frontend contract of §4.C: a
// frontend parses source into an ordered list of FunctionViews, each
// carrying its own CFG and ancillary measurements. The rest of the
// engine never re-interprets AST details — it only consumes this
// contract.
package frontend

import (
	"github.com/hotspots-dev/hotspots/internal/cfg"
)

// FunctionView is everything the engine needs about one discovered
// function, produced by a language frontend.
type FunctionView struct {
	// Symbol is the source-declared name, or a synthesized
	// <anonymous>@<file>:<line> for anonymous forms.
	Symbol string

	// DeclarationLine is the 1-based line the function begins.
	DeclarationLine int

	// CFG is this function's own control-flow graph; nested functions
	// get an independent CFG and fresh nesting depth at 0.
	CFG *cfg.Graph

	// MaxNestingDepth is the maximum simultaneously-open count of
	// nesting constructs (§4.C's ND rule).
	MaxNestingDepth int

	// DistinctCallees is the deduplicated set of canonical callee
	// strings for the FO metric.
	DistinctCallees []string

	// NonStructuredExits is the NS count (§4.C's NS rule).
	NonStructuredExits int

	// CCIncrement is the language-specific addition to cc_base (§4.C).
	CCIncrement int
}

// ParsedModule is one parsed source file: its normalized path, the
// FunctionViews discovered in it, and its source lines for suppression
// scanning.
type ParsedModule struct {
	// RelativePath is the forward-slash, repo-root-relative path of
	// the parsed file.
	RelativePath string

	// Functions is ordered by source position ascending, stable.
	Functions []FunctionView

	// Lines is the source split by '\n', used by the suppression
	// scanner to look at the line immediately preceding a declaration.
	Lines []string
}

// Frontend is satisfied by every language implementation.
type Frontend interface {
	// Language returns the frontend's display name (e.g. "Go").
	Language() string

	// CommentMarkers returns the single-line comment prefixes this
	// language recognizes for suppression scanning (e.g. "//" for Go
	// and ECMAScript, "#" for Python).
	CommentMarkers() []string

	// Parse parses source and discovers functions. Returns a
	// *herrors.ParseError on malformed or rejected input, or a
	// *herrors.CfgConstructionError when a function's CFG fails
	// validation.
	Parse(relativePath string, source []byte) (*ParsedModule, error)
}
