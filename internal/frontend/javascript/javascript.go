// Package javascript is the shared ECMAScript/TypeScript/TSX frontend:
// a tsquery.LanguageSpec mapping tree-sitter-javascript's grammar (and
// the near-identical tree-sitter-typescript/tsx grammars, which reuse
// the same statement-level node names) onto the generic CFG/metric
// engine. §4.B routes .js/.jsx/.mjs/.cjs to ECMAScript, .ts to
// TypeScript, and .tsx to TSX; all three share this one implementation
// parameterized only by which grammar to load.
package javascript

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"
	esgrammar "github.com/alexaandru/go-sitter-forest/javascript"
	tsxgrammar "github.com/alexaandru/go-sitter-forest/tsx"
	tsgrammar "github.com/alexaandru/go-sitter-forest/typescript"

	"github.com/hotspots-dev/hotspots/internal/frontend"
	"github.com/hotspots-dev/hotspots/internal/frontend/tsquery"
)

var (
	ecmaScript = sitter.NewLanguage(esgrammar.GetLanguage())
	typeScript = sitter.NewLanguage(tsgrammar.GetLanguage())
	tsx        = sitter.NewLanguage(tsxgrammar.GetLanguage())
)

// NewECMAScript returns the frontend for .js/.jsx/.mjs/.cjs.
func NewECMAScript() frontend.Frontend { return adapter{name: "JavaScript", lang: ecmaScript} }

// NewTypeScript returns the frontend for .ts.
func NewTypeScript() frontend.Frontend { return adapter{name: "TypeScript", lang: typeScript} }

// NewTSX returns the frontend for .tsx.
func NewTSX() frontend.Frontend { return adapter{name: "TSX", lang: tsx} }

type adapter struct {
	name string
	lang *sitter.Language
}

func (a adapter) Language() string         { return a.name }
func (adapter) CommentMarkers() []string   { return []string{"//"} }

func (a adapter) Parse(relativePath string, source []byte) (*frontend.ParsedModule, error) {
	return tsquery.ParseModule(spec{name: a.name, lang: a.lang}, relativePath, source)
}

type spec struct {
	name string
	lang *sitter.Language
}

func (s spec) Name() string               { return s.name }
func (s spec) Language() *sitter.Language { return s.lang }
func (spec) CommentMarkers() []string     { return []string{"//"} }

func (spec) Classify(n sitter.Node) tsquery.NodeClass {
	switch n.Type() {
	case "function_declaration", "function", "function_expression", "arrow_function",
		"generator_function_declaration", "generator_function", "method_definition":
		return tsquery.ClassFunction
	case "if_statement":
		return tsquery.ClassIf
	case "for_statement", "for_in_statement", "while_statement", "do_statement":
		return tsquery.ClassLoop
	case "switch_statement":
		return tsquery.ClassSwitch
	case "switch_case":
		return tsquery.ClassCase
	case "switch_default":
		return tsquery.ClassDefaultCase
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
		if c.Type() == "switch_case" || c.Type() == "switch_default" {
			cases = append(cases, c)
		}
	}
	return cases
}

func (spec) CaseBody(n sitter.Node) []sitter.Node {
	value := n.ChildByFieldName("value")
	var stmts []sitter.Node
	cnt := n.NamedChildCount()
	for i := uint32(0); i < cnt; i++ {
		c := n.NamedChild(i)
		if !value.IsNull() && c.StartByte() == value.StartByte() {
			continue
		}
		stmts = append(stmts, c)
	}
	return stmts
}

func (spec) TryParts(n sitter.Node) (tryBlock sitter.Node, catches []sitter.Node, finallyBlock sitter.Node, hasFinally bool) {
	tryBlock = n.ChildByFieldName("body")
	handler := n.ChildByFieldName("handler")
	if !handler.IsNull() {
		catches = append(catches, handler)
	}
	finalizer := n.ChildByFieldName("finalizer")
	if !finalizer.IsNull() {
		finallyBlock = finalizer
		hasFinally = true
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
	switch n.Type() {
	case "statement_block":
		var stmts []sitter.Node
		cnt := n.NamedChildCount()
		for i := uint32(0); i < cnt; i++ {
			stmts = append(stmts, n.NamedChild(i))
		}
		return stmts
	default:
		return []sitter.Node{n}
	}
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
	if n.Type() != "call_expression" {
		return "", false
	}
	fn := n.ChildByFieldName("function")
	if fn.IsNull() {
		return "<computed>", true
	}
	switch fn.Type() {
	case "identifier", "member_expression":
		return string(src[fn.StartByte():fn.EndByte()]), true
	default:
		return "<computed>", true
	}
}

func (spec) IsFunction(n sitter.Node) bool {
	switch n.Type() {
	case "function_declaration", "function", "function_expression", "arrow_function",
		"generator_function_declaration", "generator_function", "method_definition":
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
