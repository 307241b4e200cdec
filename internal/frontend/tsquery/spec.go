// Package tsquery is the generic tree-sitter-backed traversal engine
// shared by every language frontend. It generalizes the teacher's
// single DSL-mapping parser (one engine driving many .uastmap files)
// into a Go-native table: each language supplies a LanguageSpec that
// classifies tree-sitter node types, and this package does the actual
// CFG construction and metric extraction once, correctly, for all of
// them.
package tsquery

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// NodeClass is what a statement-level tree-sitter node means to the
// CFG builder. Frontends map their grammar's node type strings onto
// this fixed vocabulary.
type NodeClass int

const (
	ClassOther NodeClass = iota
	ClassIf
	ClassLoop
	ClassSwitch
	ClassCase
	ClassDefaultCase
	ClassTry
	ClassCatch
	ClassFinally
	ClassFunction
	ClassReturn
	ClassThrow
	ClassBreak
	ClassContinue
	ClassFallthrough
	ClassGoStatement  // Go's "go f()" statement.
	ClassDeferStatement
)

// FunctionKind distinguishes how a function's name should be resolved.
type FunctionKind int

const (
	FuncNamed FunctionKind = iota
	FuncAnonymous
)

// LanguageSpec is the per-language classification table the generic
// walker is parameterized by.
type LanguageSpec interface {
	// Name is the frontend's display name, e.g. "Go".
	Name() string

	// Language returns the tree-sitter grammar to parse with.
	Language() *sitter.Language

	// CommentMarkers returns this language's single-line comment
	// prefixes for suppression scanning.
	CommentMarkers() []string

	// Classify maps a node to the CFG vocabulary above.
	Classify(n sitter.Node) NodeClass

	// The accessors below return the relevant children of a compound
	// construct in the order the CFG builder should treat them:
	// IfBranches for ClassIf: then-block and optional else-clause
	// (which itself may be another If for else-if chains, or a block);
	// LoopBody for ClassLoop (a loop's label comes from LabelOf);
	// SwitchCases for ClassSwitch: the case/default clauses in source
	// order, each unpacked by CaseBody; TryParts for ClassTry:
	// try-block, catch clauses, optional finally block, each catch
	// unpacked by CatchBody.
	IfBranches(n sitter.Node) (thenBlock sitter.Node, elseClause sitter.Node, hasElse bool)
	LoopBody(n sitter.Node) sitter.Node
	SwitchCases(n sitter.Node) []sitter.Node
	CaseBody(n sitter.Node) []sitter.Node
	TryParts(n sitter.Node) (tryBlock sitter.Node, catches []sitter.Node, finallyBlock sitter.Node, hasFinally bool)
	CatchBody(n sitter.Node) []sitter.Node

	// BlockStatements returns the direct statement children of a
	// block/body node, in source order.
	BlockStatements(n sitter.Node) []sitter.Node

	// FunctionBody returns the block/body node a function-like
	// declaration's statements live in, ready to pass to
	// BlockStatements. n is a node for which IsFunction reports true.
	FunctionBody(n sitter.Node) sitter.Node

	// IsBooleanShortCircuit reports whether n is a &&/||/and/or
	// expression (a CC increment per §4.C).
	IsBooleanShortCircuit(n sitter.Node) bool

	// IsSynchronizedBlock reports a Java "synchronized (x) { ... }"
	// block (a CC increment).
	IsSynchronizedBlock(n sitter.Node) bool

	// IsComprehensionFilter reports a Python comprehension's "if"
	// clause (a CC increment, distinct from a statement-level if).
	IsComprehensionFilter(n sitter.Node) bool

	// IsQuestionOperator reports a Rust "?" postfix try-operator
	// (counts as one NS, no CC/CFG effect).
	IsQuestionOperator(n sitter.Node) bool

	// IsCall reports whether n is a call expression and, if so,
	// returns its canonical callee string per §4.C's chained-call
	// rule (computed/indexed callees render as "<computed>").
	IsCall(n sitter.Node, src []byte) (callee string, ok bool)

	// IsFunction reports whether n is a function-like declaration;
	// FunctionName returns its declared name, with ok false for
	// anonymous forms (the caller then synthesizes a symbol).
	IsFunction(n sitter.Node) bool
	FunctionName(n sitter.Node, src []byte) (name string, ok bool)

	// LabelOf returns the label attached to a labeled loop/break/
	// continue statement, or "" if unlabeled.
	LabelOf(n sitter.Node) string

	// BreakLabel / ContinueLabel return the target label referenced
	// by a labeled break/continue, or "" if unlabeled.
	BreakLabel(n sitter.Node) string
	ContinueLabel(n sitter.Node) string
}
