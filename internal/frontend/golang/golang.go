// Package golang is the Go language frontend: a tsquery.LanguageSpec
// mapping tree-sitter-go's grammar onto the generic CFG/metric engine.
package golang

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"
	gogrammar "github.com/alexaandru/go-sitter-forest/go"

	"github.com/hotspots-dev/hotspots/internal/frontend"
	"github.com/hotspots-dev/hotspots/internal/frontend/tsquery"
)

var language = sitter.NewLanguage(gogrammar.GetLanguage())

type spec struct{}

// New returns the Go frontend.
func New() frontend.Frontend { return adapter{} }

type adapter struct{}

func (adapter) Language() string          { return "Go" }
func (adapter) CommentMarkers() []string  { return []string{"//"} }

func (adapter) Parse(relativePath string, source []byte) (*frontend.ParsedModule, error) {
	return tsquery.ParseModule(spec{}, relativePath, source)
}

func (spec) Name() string                  { return "Go" }
func (spec) Language() *sitter.Language    { return language }
func (spec) CommentMarkers() []string      { return []string{"//"} }

func (spec) Classify(n sitter.Node) tsquery.NodeClass {
	switch n.Type() {
	case "function_declaration", "method_declaration", "func_literal":
		return tsquery.ClassFunction
	case "if_statement":
		return tsquery.ClassIf
	case "for_statement":
		return tsquery.ClassLoop
	case "expression_switch_statement", "type_switch_statement", "select_statement":
		return tsquery.ClassSwitch
	case "expression_case", "type_case", "communication_case":
		return tsquery.ClassCase
	case "default_case":
		return tsquery.ClassDefaultCase
	case "return_statement":
		return tsquery.ClassReturn
	case "break_statement":
		return tsquery.ClassBreak
	case "continue_statement":
		return tsquery.ClassContinue
	case "fallthrough_statement":
		return tsquery.ClassFallthrough
	case "go_statement":
		return tsquery.ClassGoStatement
	case "defer_statement":
		return tsquery.ClassDeferStatement
	default:
		return tsquery.ClassOther
	}
}

func (spec) IfBranches(n sitter.Node) (then sitter.Node, elseClause sitter.Node, hasElse bool) {
	then = n.ChildByFieldName("consequence")
	alt := n.ChildByFieldName("alternative")
	if alt.IsNull() {
		return then, sitter.Node{}, false
	}
	return then, alt, true
}

func (spec) LoopBody(n sitter.Node) sitter.Node {
	return n.ChildByFieldName("body")
}

func (spec) SwitchCases(n sitter.Node) []sitter.Node {
	var cases []sitter.Node
	cnt := n.NamedChildCount()
	for i := uint32(0); i < cnt; i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "expression_case", "type_case", "communication_case", "default_case":
			cases = append(cases, c)
		}
	}
	return cases
}

func (spec) CaseBody(n sitter.Node) []sitter.Node {
	return caseStatements(n)
}

func caseStatements(n sitter.Node) []sitter.Node {
	value := n.ChildByFieldName("value")
	var stmts []sitter.Node
	cnt := n.NamedChildCount()
	for i := uint32(0); i < cnt; i++ {
		c := n.NamedChild(i)
		if !value.IsNull() && c.StartByte() == value.StartByte() && c.EndByte() == value.EndByte() {
			continue
		}
		stmts = append(stmts, c)
	}
	return stmts
}

func (spec) TryParts(n sitter.Node) (tryBlock sitter.Node, catches []sitter.Node, finallyBlock sitter.Node, hasFinally bool) {
	// Go has no try/catch/finally.
	return sitter.Node{}, nil, sitter.Node{}, false
}

func (spec) CatchBody(n sitter.Node) []sitter.Node { return nil }

func (spec) BlockStatements(n sitter.Node) []sitter.Node {
	if n.IsNull() {
		return nil
	}
	if n.Type() == "block" {
		var stmts []sitter.Node
		cnt := n.NamedChildCount()
		for i := uint32(0); i < cnt; i++ {
			stmts = append(stmts, n.NamedChild(i))
		}
		return stmts
	}
	return []sitter.Node{n}
}

func (spec) IsBooleanShortCircuit(n sitter.Node) bool {
	if n.Type() != "binary_expression" {
		return false
	}
	op := n.ChildByFieldName("operator")
	if op.IsNull() {
		return false
	}
	return op.Type() == "&&" || op.Type() == "||"
}

func (spec) IsSynchronizedBlock(sitter.Node) bool  { return false }
func (spec) IsComprehensionFilter(sitter.Node) bool { return false }
func (spec) IsQuestionOperator(sitter.Node) bool     { return false }

func (spec) IsCall(n sitter.Node, src []byte) (string, bool) {
	switch n.Type() {
	case "call_expression":
		fn := n.ChildByFieldName("function")
		if fn.IsNull() {
			return "<computed>", true
		}
		return calleeText(fn, src), true
	case "go_statement", "defer_statement":
		call := n.NamedChild(0)
		if call.IsNull() || call.Type() != "call_expression" {
			return "", false
		}
		fn := call.ChildByFieldName("function")
		prefix := "go "
		if n.Type() == "defer_statement" {
			prefix = "defer "
		}
		if fn.IsNull() {
			return prefix + "<computed>", true
		}
		return prefix + calleeText(fn, src), true
	default:
		return "", false
	}
}

func calleeText(fn sitter.Node, src []byte) string {
	switch fn.Type() {
	case "identifier", "qualified_identifier", "field_identifier":
		return string(src[fn.StartByte():fn.EndByte()])
	case "selector_expression":
		return string(src[fn.StartByte():fn.EndByte()])
	default:
		return "<computed>"
	}
}

func (spec) IsFunction(n sitter.Node) bool {
	switch n.Type() {
	case "function_declaration", "method_declaration", "func_literal":
		return true
	default:
		return false
	}
}

func (spec) FunctionBody(n sitter.Node) sitter.Node {
	return n.ChildByFieldName("body")
}

func (spec) FunctionName(n sitter.Node, src []byte) (string, bool) {
	name := n.ChildByFieldName("name")
	if name.IsNull() {
		return "", false
	}
	return string(src[name.StartByte():name.EndByte()]), true
}

// LabelOf, BreakLabel and ContinueLabel report "" uniformly: labeled
// break/continue targeting an outer loop are rare, and with an empty
// label resolveLoop targets the innermost enclosing loop (or function
// exit outside any loop), which stays a valid (if coarser) CFG. See
// DESIGN.md.
func (spec) LabelOf(sitter.Node) string       { return "" }
func (spec) BreakLabel(sitter.Node) string    { return "" }
func (spec) ContinueLabel(sitter.Node) string { return "" }
