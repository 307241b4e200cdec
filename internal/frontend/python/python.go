// Package python is the Python language frontend: a tsquery.LanguageSpec
// mapping tree-sitter-python's grammar onto the generic CFG/metric
// engine. elif chains are represented as tree-sitter-python actually
// encodes them: elif_clause/else_clause are direct children of the
// enclosing if_statement, not nested inside one another, so a small
// per-parse cache threads "what comes after this clause" through the
// generic single-elseClause LanguageSpec contract.
package python

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"
	pygrammar "github.com/alexaandru/go-sitter-forest/python"

	"github.com/hotspots-dev/hotspots/internal/frontend"
	"github.com/hotspots-dev/hotspots/internal/frontend/tsquery"
)

var language = sitter.NewLanguage(pygrammar.GetLanguage())

type spec struct {
	nextClause map[uint32]sitter.Node
	chained    map[uint32]bool
}

func newSpec() *spec {
	return &spec{nextClause: map[uint32]sitter.Node{}, chained: map[uint32]bool{}}
}

// New returns the Python frontend.
func New() frontend.Frontend { return adapter{} }

type adapter struct{}

func (adapter) Language() string         { return "Python" }
func (adapter) CommentMarkers() []string { return []string{"#"} }

func (adapter) Parse(relativePath string, source []byte) (*frontend.ParsedModule, error) {
	return tsquery.ParseModule(newSpec(), relativePath, source)
}

func (*spec) Name() string               { return "Python" }
func (*spec) Language() *sitter.Language { return language }
func (*spec) CommentMarkers() []string   { return []string{"#"} }

func (s *spec) Classify(n sitter.Node) tsquery.NodeClass {
	switch n.Type() {
	case "function_definition", "lambda":
		return tsquery.ClassFunction
	case "if_statement":
		return tsquery.ClassIf
	case "elif_clause":
		return tsquery.ClassIf
	case "for_statement", "while_statement":
		return tsquery.ClassLoop
	case "match_statement":
		return tsquery.ClassSwitch
	case "case_clause":
		return tsquery.ClassCase
	case "try_statement":
		return tsquery.ClassTry
	case "except_clause", "except_group_clause":
		return tsquery.ClassCatch
	case "finally_clause":
		return tsquery.ClassFinally
	case "return_statement":
		return tsquery.ClassReturn
	case "raise_statement":
		return tsquery.ClassThrow
	case "break_statement":
		return tsquery.ClassBreak
	case "continue_statement":
		return tsquery.ClassContinue
	default:
		return tsquery.ClassOther
	}
}

func (s *spec) ensureChain(n sitter.Node) {
	if s.chained[n.StartByte()] {
		return
	}
	s.chained[n.StartByte()] = true

	var chain []sitter.Node
	cnt := n.NamedChildCount()
	for i := uint32(0); i < cnt; i++ {
		c := n.NamedChild(i)
		if c.Type() == "elif_clause" || c.Type() == "else_clause" {
			chain = append(chain, c)
		}
	}
	if len(chain) == 0 {
		return
	}
	s.nextClause[n.StartByte()] = chain[0]
	for i := 0; i+1 < len(chain); i++ {
		s.nextClause[chain[i].StartByte()] = chain[i+1]
	}
}

func (s *spec) IfBranches(n sitter.Node) (then sitter.Node, elseClause sitter.Node, hasElse bool) {
	if n.Type() == "else_clause" {
		return n.ChildByFieldName("body"), sitter.Node{}, false
	}

	then = n.ChildByFieldName("consequence")
	s.ensureChain(n)

	next, ok := s.nextClause[n.StartByte()]
	if !ok {
		return then, sitter.Node{}, false
	}
	return then, next, true
}

func (s *spec) LoopBody(n sitter.Node) sitter.Node { return n.ChildByFieldName("body") }

func (s *spec) SwitchCases(n sitter.Node) []sitter.Node {
	var cases []sitter.Node
	cnt := n.NamedChildCount()
	for i := uint32(0); i < cnt; i++ {
		if c := n.NamedChild(i); c.Type() == "case_clause" {
			cases = append(cases, c)
		}
	}
	return cases
}

func (s *spec) CaseBody(n sitter.Node) []sitter.Node {
	consequence := n.ChildByFieldName("consequence")
	if consequence.IsNull() {
		return nil
	}
	return s.BlockStatements(consequence)
}

func (s *spec) TryParts(n sitter.Node) (tryBlock sitter.Node, catches []sitter.Node, finallyBlock sitter.Node, hasFinally bool) {
	tryBlock = n.ChildByFieldName("body")
	cnt := n.NamedChildCount()
	for i := uint32(0); i < cnt; i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "except_clause", "except_group_clause":
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

func (s *spec) CatchBody(n sitter.Node) []sitter.Node {
	body := n.ChildByFieldName("body")
	if body.IsNull() {
		return nil
	}
	return s.BlockStatements(body)
}

func (s *spec) BlockStatements(n sitter.Node) []sitter.Node {
	if n.IsNull() {
		return nil
	}
	switch n.Type() {
	case "block", "suite":
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

func (s *spec) IsBooleanShortCircuit(n sitter.Node) bool {
	if n.Type() != "boolean_operator" {
		return false
	}
	op := n.ChildByFieldName("operator")
	if op.IsNull() {
		return false
	}
	return op.Type() == "and" || op.Type() == "or"
}

func (s *spec) IsSynchronizedBlock(sitter.Node) bool { return false }

func (s *spec) IsComprehensionFilter(n sitter.Node) bool {
	return n.Type() == "if_clause"
}

func (s *spec) IsQuestionOperator(sitter.Node) bool { return false }

func (s *spec) IsCall(n sitter.Node, src []byte) (string, bool) {
	if n.Type() != "call" {
		return "", false
	}
	fn := n.ChildByFieldName("function")
	if fn.IsNull() {
		return "<computed>", true
	}
	switch fn.Type() {
	case "identifier", "attribute":
		return string(src[fn.StartByte():fn.EndByte()]), true
	default:
		return "<computed>", true
	}
}

func (s *spec) IsFunction(n sitter.Node) bool {
	return n.Type() == "function_definition" || n.Type() == "lambda"
}

func (s *spec) FunctionName(n sitter.Node, src []byte) (string, bool) {
	name := n.ChildByFieldName("name")
	if name.IsNull() {
		return "", false
	}
	return string(src[name.StartByte():name.EndByte()]), true
}

func (s *spec) FunctionBody(n sitter.Node) sitter.Node {
	return n.ChildByFieldName("body")
}

func (s *spec) LabelOf(sitter.Node) string       { return "" }
func (s *spec) BreakLabel(sitter.Node) string    { return "" }
func (s *spec) ContinueLabel(sitter.Node) string { return "" }
