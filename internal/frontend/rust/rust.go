// Package rust is the Rust language frontend: a tsquery.LanguageSpec
// mapping tree-sitter-rust's grammar onto the generic CFG/metric engine.
package rust

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"
	rustgrammar "github.com/alexaandru/go-sitter-forest/rust"

	"github.com/hotspots-dev/hotspots/internal/frontend"
	"github.com/hotspots-dev/hotspots/internal/frontend/tsquery"
)

var language = sitter.NewLanguage(rustgrammar.GetLanguage())

type spec struct{}

// New returns the Rust frontend.
func New() frontend.Frontend { return adapter{} }

type adapter struct{}

func (adapter) Language() string         { return "Rust" }
func (adapter) CommentMarkers() []string { return []string{"//"} }

func (adapter) Parse(relativePath string, source []byte) (*frontend.ParsedModule, error) {
	return tsquery.ParseModule(spec{}, relativePath, source)
}

func (spec) Name() string               { return "Rust" }
func (spec) Language() *sitter.Language { return language }
func (spec) CommentMarkers() []string   { return []string{"//"} }

func (spec) Classify(n sitter.Node) tsquery.NodeClass {
	switch n.Type() {
	case "function_item", "closure_expression":
		return tsquery.ClassFunction
	case "if_expression", "if_let_expression":
		return tsquery.ClassIf
	case "loop_expression", "while_expression", "while_let_expression", "for_expression":
		return tsquery.ClassLoop
	case "match_expression":
		return tsquery.ClassSwitch
	case "match_arm":
		return tsquery.ClassCase
	case "return_expression":
		return tsquery.ClassReturn
	case "break_expression":
		return tsquery.ClassBreak
	case "continue_expression":
		return tsquery.ClassContinue
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

func (spec) LoopBody(n sitter.Node) sitter.Node { return n.ChildByFieldName("body") }

func (spec) SwitchCases(n sitter.Node) []sitter.Node {
	body := n.ChildByFieldName("body")
	if body.IsNull() {
		body = n
	}
	var cases []sitter.Node
	cnt := body.NamedChildCount()
	for i := uint32(0); i < cnt; i++ {
		if c := body.NamedChild(i); c.Type() == "match_arm" {
			cases = append(cases, c)
		}
	}
	return cases
}

func (spec) CaseBody(n sitter.Node) []sitter.Node {
	value := n.ChildByFieldName("value")
	if value.IsNull() {
		return nil
	}
	if value.Type() == "block" {
		return spec{}.BlockStatements(value)
	}
	return []sitter.Node{value}
}

func (spec) TryParts(n sitter.Node) (sitter.Node, []sitter.Node, sitter.Node, bool) {
	return sitter.Node{}, nil, sitter.Node{}, false
}

func (spec) CatchBody(sitter.Node) []sitter.Node { return nil }

func (spec) BlockStatements(n sitter.Node) []sitter.Node {
	if n.IsNull() {
		return nil
	}
	if n.Type() == "block" {
		var stmts []sitter.Node
		cnt := n.NamedChildCount()
		for i := uint32(0); i < cnt; i++ {
			c := n.NamedChild(i)
			// `if`, `return`, `match`, loops etc. in statement position
			// are wrapped in an expression_statement; unwrap it so
			// Classify sees the construct itself.
			if c.Type() == "expression_statement" && c.NamedChildCount() == 1 {
				c = c.NamedChild(0)
			}
			stmts = append(stmts, c)
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
	if !op.IsNull() {
		return op.Type() == "&&" || op.Type() == "||"
	}
	cnt := n.ChildCount()
	for i := uint32(0); i < cnt; i++ {
		t := n.Child(i).Type()
		if t == "&&" || t == "||" {
			return true
		}
	}
	return false
}

func (spec) IsSynchronizedBlock(sitter.Node) bool  { return false }
func (spec) IsComprehensionFilter(sitter.Node) bool { return false }

func (spec) IsQuestionOperator(n sitter.Node) bool {
	return n.Type() == "try_expression"
}

func (spec) IsCall(n sitter.Node, src []byte) (string, bool) {
	if n.Type() != "call_expression" {
		return "", false
	}
	fn := n.ChildByFieldName("function")
	if fn.IsNull() {
		return "<computed>", true
	}
	switch fn.Type() {
	case "identifier", "scoped_identifier", "field_expression":
		return string(src[fn.StartByte():fn.EndByte()]), true
	default:
		return "<computed>", true
	}
}

func (spec) IsFunction(n sitter.Node) bool {
	return n.Type() == "function_item" || n.Type() == "closure_expression"
}

func (spec) FunctionName(n sitter.Node, src []byte) (string, bool) {
	name := n.ChildByFieldName("name")
	if name.IsNull() {
		return "", false
	}
	return string(src[name.StartByte():name.EndByte()]), true
}

func (spec) LabelOf(sitter.Node) string       { return "" }
func (spec) BreakLabel(sitter.Node) string    { return "" }
func (spec) ContinueLabel(sitter.Node) string { return "" }

func (spec) FunctionBody(n sitter.Node) sitter.Node {
	return n.ChildByFieldName("body")
}
