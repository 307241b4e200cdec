package tsquery

import (
	"context"
	"fmt"
	"sort"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/hotspots-dev/hotspots/internal/cfg"
	"github.com/hotspots-dev/hotspots/internal/frontend"
	"github.com/hotspots-dev/hotspots/internal/herrors"
	"github.com/hotspots-dev/hotspots/internal/identity"
)

// ParseModule parses source with spec's grammar and returns every
// function discovered anywhere in the file (including nested ones,
// which receive their own independent CFG starting at nesting depth
// zero), ordered by declaration line.
func ParseModule(spec LanguageSpec, relativePath string, source []byte) (*frontend.ParsedModule, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(spec.Language())

	tree, err := parser.ParseString(context.Background(), nil, source)
	if err != nil {
		return nil, &herrors.ParseError{File: relativePath, Line: 0, Message: err.Error()}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, &herrors.ParseError{File: relativePath, Line: 0, Message: "empty parse tree"}
	}

	if containsErrorNode(root) {
		return nil, &herrors.ParseError{File: relativePath, Line: 0, Message: "syntax error"}
	}

	var funcs []sitter.Node

	var discover func(n sitter.Node)
	discover = func(n sitter.Node) {
		if spec.IsFunction(n) {
			funcs = append(funcs, n)
		}
		cnt := n.NamedChildCount()
		for i := uint32(0); i < cnt; i++ {
			discover(n.NamedChild(i))
		}
	}
	discover(root)

	sort.SliceStable(funcs, func(i, j int) bool {
		return funcs[i].StartByte() < funcs[j].StartByte()
	})

	views := make([]frontend.FunctionView, 0, len(funcs))
	for _, fn := range funcs {
		view, err := buildFunctionView(spec, source, relativePath, fn)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	lines := splitLines(source)

	return &frontend.ParsedModule{
		RelativePath: identity.Normalize(relativePath),
		Functions:    views,
		Lines:        lines,
	}, nil
}

func containsErrorNode(n sitter.Node) bool {
	if n.Type() == "ERROR" {
		return true
	}
	cnt := n.NamedChildCount()
	for i := uint32(0); i < cnt; i++ {
		if containsErrorNode(n.NamedChild(i)) {
			return true
		}
	}
	return false
}

func splitLines(src []byte) []string {
	var lines []string
	start := 0
	for i, b := range src {
		if b == '\n' {
			lines = append(lines, string(src[start:i]))
			start = i + 1
		}
	}
	lines = append(lines, string(src[start:]))
	return lines
}

func buildFunctionView(spec LanguageSpec, src []byte, relativePath string, fn sitter.Node) (frontend.FunctionView, error) {
	name, ok := spec.FunctionName(fn, src)
	line := int(fn.StartPoint().Row) + 1
	if !ok || name == "" {
		name = identity.Anonymous(relativePath, line)
	}

	v := &visitor{spec: spec, src: src, b: cfg.NewBuilder(), fanout: map[string]bool{}}

	body := spec.FunctionBody(fn)
	stmts := spec.BlockStatements(body)

	cur, terminated := v.block(v.b.Entry(), stmts, 1, true)
	if !terminated {
		v.b.AddEdge(cur, v.b.Exit())
	}

	graph := v.b.Build()
	if err := graph.Validate(); err != nil {
		return frontend.FunctionView{}, &herrors.CfgConstructionError{
			File:       relativePath,
			FunctionID: name,
			Reason:     err.Error(),
		}
	}

	callees := make([]string, 0, len(v.fanout))
	for c := range v.fanout {
		callees = append(callees, c)
	}
	sort.Strings(callees)

	return frontend.FunctionView{
		Symbol:             name,
		DeclarationLine:    line,
		CFG:                graph,
		MaxNestingDepth:    v.maxDepth,
		DistinctCallees:    callees,
		NonStructuredExits: v.ns,
		CCIncrement:        v.ccIncrement,
	}, nil
}

type loopFrame struct {
	header, exit cfg.NodeID
	label        string
}

type visitor struct {
	spec        LanguageSpec
	src         []byte
	b           *cfg.Builder
	fanout      map[string]bool
	ns          int
	ccIncrement int
	maxDepth    int
	loopStack   []loopFrame
}

func (v *visitor) track(depth int) {
	if depth > v.maxDepth {
		v.maxDepth = depth
	}
}

// block walks a statement list in sequence, wiring each into the CFG.
// isTop marks the function's own outermost body: its last statement,
// if a plain return, is the tail return excluded from NS (§4.C).
func (v *visitor) block(cur cfg.NodeID, stmts []sitter.Node, depth int, isTop bool) (cfg.NodeID, bool) {
	for i, s := range stmts {
		isTail := isTop && i == len(stmts)-1
		next, terminated := v.stmt(cur, s, depth, isTail)
		cur = next
		if terminated {
			return cur, true
		}
	}
	return cur, false
}

func (v *visitor) stmt(cur cfg.NodeID, n sitter.Node, depth int, isTail bool) (cfg.NodeID, bool) {
	switch v.spec.Classify(n) {
	case ClassFunction:
		// Nested function/class member: independent top-level unit,
		// not part of this function's control flow.
		return cur, false

	case ClassIf:
		return v.ifStmt(cur, n, depth)

	case ClassLoop:
		return v.loopStmt(cur, n, depth, v.spec.LabelOf(n))

	case ClassSwitch:
		return v.switchStmt(cur, n, depth)

	case ClassTry:
		return v.tryStmt(cur, n, depth)

	case ClassReturn:
		v.scanExpr(n, depth)
		sink := v.b.AddNode(cfg.KindSink)
		v.b.AddEdge(cur, sink)
		v.b.AddEdge(sink, v.b.Exit())
		if !isTail {
			v.ns++
		}
		return sink, true

	case ClassThrow:
		v.scanExpr(n, depth)
		sink := v.b.AddNode(cfg.KindSink)
		v.b.AddEdge(cur, sink)
		v.b.AddEdge(sink, v.b.Exit())
		v.ns++
		return sink, true

	case ClassBreak:
		sink := v.b.AddNode(cfg.KindSink)
		v.b.AddEdge(cur, sink)
		target, found := v.resolveLoop(v.spec.BreakLabel(n))
		if found {
			v.b.AddEdge(sink, target.exit)
		} else {
			v.b.AddEdge(sink, v.b.Exit())
		}
		v.ns++
		return sink, true

	case ClassContinue:
		sink := v.b.AddNode(cfg.KindSink)
		v.b.AddEdge(cur, sink)
		target, found := v.resolveLoop(v.spec.ContinueLabel(n))
		if found {
			v.b.AddEdge(sink, target.header)
		} else {
			v.b.AddEdge(sink, v.b.Exit())
		}
		v.ns++
		return sink, true

	case ClassGoStatement, ClassDeferStatement:
		v.scanExpr(n, depth)
		node := v.b.AddNode(cfg.KindStatement)
		v.b.AddEdge(cur, node)
		v.ns++
		return node, false

	default:
		v.scanExpr(n, depth)
		node := v.b.AddNode(cfg.KindStatement)
		v.b.AddEdge(cur, node)
		return node, false
	}
}

func (v *visitor) resolveLoop(label string) (loopFrame, bool) {
	if len(v.loopStack) == 0 {
		return loopFrame{}, false
	}
	if label == "" {
		return v.loopStack[len(v.loopStack)-1], true
	}
	for i := len(v.loopStack) - 1; i >= 0; i-- {
		if v.loopStack[i].label == label {
			return v.loopStack[i], true
		}
	}
	return loopFrame{}, false
}

func (v *visitor) ifStmt(cur cfg.NodeID, n sitter.Node, depth int) (cfg.NodeID, bool) {
	v.track(depth)
	then, elseClause, hasElse := v.spec.IfBranches(n)

	branch := v.b.AddNode(cfg.KindBranch)
	v.b.AddEdge(cur, branch)

	thenHead := v.b.AddNode(cfg.KindStatement)
	v.b.AddEdge(branch, thenHead)
	thenEnd, thenTerm := v.block(thenHead, v.spec.BlockStatements(then), depth+1, false)

	var fallthroughs []cfg.NodeID
	if !thenTerm {
		fallthroughs = append(fallthroughs, thenEnd)
	}

	if hasElse {
		if v.spec.Classify(elseClause) == ClassIf {
			elseEnd, elseTerm := v.ifStmt(branch, elseClause, depth)
			if !elseTerm {
				fallthroughs = append(fallthroughs, elseEnd)
			}
		} else {
			elseHead := v.b.AddNode(cfg.KindStatement)
			v.b.AddEdge(branch, elseHead)
			elseEnd, elseTerm := v.block(elseHead, v.spec.BlockStatements(elseClause), depth+1, false)
			if !elseTerm {
				fallthroughs = append(fallthroughs, elseEnd)
			}
		}
	} else {
		fallthroughs = append(fallthroughs, branch)
	}

	if len(fallthroughs) == 0 {
		return branch, true
	}

	merge := v.b.AddNode(cfg.KindMerge)
	for _, f := range fallthroughs {
		v.b.AddEdge(f, merge)
	}
	return merge, false
}

func (v *visitor) loopStmt(cur cfg.NodeID, n sitter.Node, depth int, label string) (cfg.NodeID, bool) {
	v.track(depth)
	header := v.b.AddNode(cfg.KindBranch)
	v.b.AddEdge(cur, header)

	exit := v.b.AddNode(cfg.KindMerge)
	v.b.AddEdge(header, exit)

	bodyHead := v.b.AddNode(cfg.KindStatement)
	v.b.AddEdge(header, bodyHead)

	v.loopStack = append(v.loopStack, loopFrame{header: header, exit: exit, label: label})
	bodyEnd, bodyTerm := v.block(bodyHead, v.spec.BlockStatements(v.spec.LoopBody(n)), depth+1, false)
	v.loopStack = v.loopStack[:len(v.loopStack)-1]

	if !bodyTerm {
		v.b.AddEdge(bodyEnd, header)
	}

	return exit, false
}

func (v *visitor) switchStmt(cur cfg.NodeID, n sitter.Node, depth int) (cfg.NodeID, bool) {
	v.track(depth)
	header := v.b.AddNode(cfg.KindBranch)
	v.b.AddEdge(cur, header)

	cases := v.spec.SwitchCases(n)

	caseHeads := make([]cfg.NodeID, len(cases))
	for i := range cases {
		caseHeads[i] = v.b.AddNode(cfg.KindStatement)
		v.b.AddEdge(header, caseHeads[i])
	}

	hasDefault := false
	var fallthroughs []cfg.NodeID

	for i, c := range cases {
		isDefault := v.spec.Classify(c) == ClassDefaultCase
		if isDefault {
			hasDefault = true
		} else {
			v.ccIncrement++
		}

		body := v.spec.CaseBody(c)
		end, term := v.block(caseHeads[i], body, depth+1, false)
		if term {
			continue
		}

		if endsWithFallthrough(v.spec, body) && i+1 < len(caseHeads) {
			v.b.AddEdge(end, caseHeads[i+1])
			continue
		}

		fallthroughs = append(fallthroughs, end)
	}

	if !hasDefault {
		fallthroughs = append(fallthroughs, header)
	}

	if len(fallthroughs) == 0 {
		return header, true
	}

	merge := v.b.AddNode(cfg.KindMerge)
	for _, f := range fallthroughs {
		v.b.AddEdge(f, merge)
	}
	return merge, false
}

func endsWithFallthrough(spec LanguageSpec, body []sitter.Node) bool {
	if len(body) == 0 {
		return false
	}
	return spec.Classify(body[len(body)-1]) == ClassFallthrough
}

func (v *visitor) tryStmt(cur cfg.NodeID, n sitter.Node, depth int) (cfg.NodeID, bool) {
	v.track(depth)
	tryBlock, catches, finallyBlock, hasFinally := v.spec.TryParts(n)

	tryHead := v.b.AddNode(cfg.KindStatement)
	v.b.AddEdge(cur, tryHead)
	tryEnd, tryTerm := v.block(tryHead, v.spec.BlockStatements(tryBlock), depth+1, false)

	var joins []cfg.NodeID
	if !tryTerm {
		joins = append(joins, tryEnd)
	}

	for _, c := range catches {
		v.ccIncrement++
		catchHead := v.b.AddNode(cfg.KindStatement)
		v.b.AddEdge(cur, catchHead)
		end, term := v.block(catchHead, v.spec.CatchBody(c), depth+1, false)
		if !term {
			joins = append(joins, end)
		}
	}

	if hasFinally {
		preFinally := v.b.AddNode(cfg.KindMerge)
		if len(joins) == 0 {
			// Every path through try/catch terminates; finally still
			// always runs, so it is reachable straight from entry of
			// the construct.
			v.b.AddEdge(cur, preFinally)
		}
		for _, j := range joins {
			v.b.AddEdge(j, preFinally)
		}
		finallyHead := v.b.AddNode(cfg.KindStatement)
		v.b.AddEdge(preFinally, finallyHead)
		return v.block(finallyHead, v.spec.BlockStatements(finallyBlock), depth+1, false)
	}

	if len(joins) == 0 {
		return cur, true
	}

	merge := v.b.AddNode(cfg.KindMerge)
	for _, j := range joins {
		v.b.AddEdge(j, merge)
	}
	return merge, false
}

// scanExpr walks n (excluding any nested function literal, which is
// its own independent unit) collecting callees, boolean short-circuit
// CC increments, comprehension-filter CC increments, synchronized-block
// CC increments, and Rust "?" NS increments.
func (v *visitor) scanExpr(n sitter.Node, depth int) {
	if v.spec.IsFunction(n) {
		return
	}
	if callee, ok := v.spec.IsCall(n, v.src); ok {
		v.fanout[callee] = true
	}
	if v.spec.IsBooleanShortCircuit(n) {
		v.ccIncrement++
	}
	if v.spec.IsComprehensionFilter(n) {
		v.ccIncrement++
	}
	if v.spec.IsSynchronizedBlock(n) {
		v.ccIncrement++
		v.track(depth + 1)
	}
	if v.spec.IsQuestionOperator(n) {
		v.ns++
	}

	cnt := n.NamedChildCount()
	for i := uint32(0); i < cnt; i++ {
		v.scanExpr(n.NamedChild(i), depth)
	}
}
