// Package java is the Java language frontend: a tsquery.LanguageSpec
// mapping tree-sitter-java's grammar onto the generic CFG/metric engine.
package java

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"
	javagrammar "github.com/alexaandru/go-sitter-forest/java"

	"github.com/hotspots-dev/hotspots/internal/frontend"
	"github.com/hotspots-dev/hotspots/internal/frontend/tsquery"
)

var language = sitter.NewLanguage(javagrammar.GetLanguage())

type spec struct{}

// New returns the Java frontend.
func New() frontend.Frontend { return adapter{} }

type adapter struct{}

func (adapter) Language() string         { return "Java" }
func (adapter) CommentMarkers() []string { return []string{"//"} }

func (adapter) Parse(relativePath string, source []byte) (*frontend.ParsedModule, error) {
	return tsquery.ParseModule(spec{}, relativePath, source)
}

func (spec) Name() string               { return "Java" }
func (spec) Language() *sitter.Language { return language }
func (spec) CommentMarkers() []string   { return []string{"//"} }

func (spec) Classify(n sitter.Node) tsquery.NodeClass {
	switch n.Type() {
	case "method_declaration", "constructor_declaration", "lambda_expression":
		return tsquery.ClassFunction
	case "if_statement":
		return tsquery.ClassIf
	case "for_statement", "enhanced_for_statement", "while_statement", "do_statement":
		return tsquery.ClassLoop
	case "switch_expression", "switch_statement":
		return tsquery.ClassSwitch
	case "switch_block_statement_group", "switch_rule":
		if isDefaultLabel(n) {
			return tsquery.ClassDefaultCase
		}
		return tsquery.ClassCase
	case "try_statement":
		return tsquery.ClassTry
	case "catch_clause":
		return tsquery.ClassCatch
	case "finally_clause":
		return tsquery.ClassFinally
	case "return_statement":
		return tsquery.ClassReturn
	case "throw_statement":
		return tsquery.ClassThrow
	case "break_statement":
		return tsquery.ClassBreak
	case "continue_statement":
		return tsquery.ClassContinue
	default:
		return tsquery.ClassOther
	}
}

func isDefaultLabel(n sitter.Node) bool {
	cnt := n.NamedChildCount()
	for i := uint32(0); i < cnt; i++ {
		c := n.NamedChild(i)
		if c.Type() != "switch_label" {
			continue
		}
		// The "default" keyword is an unnamed child of switch_label,
		// present in both group and arrow forms.
		full := c.ChildCount()
		for j := uint32(0); j < full; j++ {
			if c.Child(j).Type() == "default" {
				return true
			}
		}
	}
	return false
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
		c := body.NamedChild(i)
		if c.Type() == "switch_block_statement_group" || c.Type() == "switch_rule" {
			cases = append(cases, c)
		}
	}
	return cases
}

func (spec) CaseBody(n sitter.Node) []sitter.Node {
	var stmts []sitter.Node
	cnt := n.NamedChildCount()
	for i := uint32(0); i < cnt; i++ {
		c := n.NamedChild(i)
		if c.Type() == "switch_label" {
			continue
		}
		stmts = append(stmts, c)
	}
	return stmts
}

func (spec) TryParts(n sitter.Node) (tryBlock sitter.Node, catches []sitter.Node, finallyBlock sitter.Node, hasFinally bool) {
	tryBlock = n.ChildByFieldName("body")
	cnt := n.NamedChildCount()
	for i := uint32(0); i < cnt; i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "catch_clause":
			catches = append(catches, c)
		case "finally_clause":
			finallyBlock = c.ChildByFieldName("body")
			if finallyBlock.IsNull() {
				finallyBlock = c
			}
			hasFinally = true
		}
	}
	return tryBlock, catches, finallyBlock, hasFinally
}

func (spec) CatchBody(n sitter.Node) []sitter.Node {
	body := n.ChildByFieldName("body")
	if body.IsNull() {
		return nil
	}
	return blockStatements(body)
}

func (spec) BlockStatements(n sitter.Node) []sitter.Node { return blockStatements(n) }

func blockStatements(n sitter.Node) []sitter.Node {
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

func (spec) IsSynchronizedBlock(n sitter.Node) bool { return n.Type() == "synchronized_statement" }
func (spec) IsComprehensionFilter(sitter.Node) bool { return false }
func (spec) IsQuestionOperator(sitter.Node) bool    { return false }

func (spec) IsCall(n sitter.Node, src []byte) (string, bool) {
	if n.Type() != "method_invocation" {
		return "", false
	}
	name := n.ChildByFieldName("name")
	if name.IsNull() {
		return "<computed>", true
	}
	object := n.ChildByFieldName("object")
	if object.IsNull() {
		return string(src[name.StartByte():name.EndByte()]), true
	}
	if object.Type() == "identifier" || object.Type() == "this" || object.Type() == "field_access" {
		return string(src[object.StartByte():object.EndByte()]) + "." + string(src[name.StartByte():name.EndByte()]), true
	}
	return "<computed>." + string(src[name.StartByte():name.EndByte()]), true
}

func (spec) IsFunction(n sitter.Node) bool {
	switch n.Type() {
	case "method_declaration", "constructor_declaration", "lambda_expression":
		return true
	default:
		return false
	}
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
