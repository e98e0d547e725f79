package interp

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/mpkocher/almond/kernel"
)

// Interp implements kernel.Evaluator.
type Interp struct {
	frameSeq atomic.Int64
}

var _ kernel.Evaluator = (*Interp)(nil)

// New creates the reference evaluator.
func New() *Interp {
	return &Interp{}
}

// InitialFrame returns the base frame all sessions start from.
func (in *Interp) InitialFrame() (kernel.Frame, error) {
	return newFrame("predef", nil), nil
}

// NewChildFrame creates an isolated child that sees everything parent
// accumulated.
func (in *Interp) NewChildFrame(parent kernel.Frame) (kernel.Frame, error) {
	p, ok := parent.(*Frame)
	if !ok {
		return nil, fmt.Errorf("foreign frame %T", parent)
	}
	id := fmt.Sprintf("frame%d", in.frameSeq.Add(1))
	return newFrame(id, p), nil
}

// Split tokenizes and parses code into statements. Lines that declare
// imports or dependencies are captured verbatim; everything else is lexed
// and grouped on separators outside parentheses. Unfinished constructs
// report incomplete input; garbage reports a parse error.
func (in *Interp) Split(code string) ([]kernel.Statement, error) {
	var stmts []kernel.Statement
	var rest []string

	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "import ") || strings.Contains(trimmed, "$ivy.") {
			stmts = append(stmts, importStmt{raw: trimmed})
			continue
		}
		rest = append(rest, line)
	}

	toks, err := lex(strings.Join(rest, "\n"))
	if err != nil {
		return nil, err
	}

	for _, group := range groupStatements(toks) {
		if len(group) == 1 { // bare EOF
			continue
		}
		stmt, err := parseStatement(group)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// groupStatements splits the token stream on separators at parenthesis
// depth zero. Separators inside an open call are soft line breaks.
func groupStatements(toks []token) [][]token {
	var groups [][]token
	var cur []token
	depth := 0

	flush := func(end int) {
		if len(cur) > 0 {
			cur = append(cur, token{kind: tokEOF, pos: end})
			groups = append(groups, cur)
			cur = nil
		}
	}

	for _, t := range toks {
		switch t.kind {
		case tokLParen:
			depth++
			cur = append(cur, t)
		case tokRParen:
			depth--
			cur = append(cur, t)
		case tokSep:
			if depth == 0 {
				flush(t.pos)
			}
		case tokEOF:
			flush(t.pos)
		default:
			cur = append(cur, t)
		}
	}
	return groups
}

// Evaluate runs statements against frame. The line counter advances exactly
// once per executed group, after every statement succeeded.
func (in *Interp) Evaluate(ctx context.Context, stmts []kernel.Statement, frame kernel.Frame, line int, run *kernel.Run) kernel.Outcome {
	f, ok := frame.(*Frame)
	if !ok {
		return kernel.Failure{Message: fmt.Sprintf("foreign frame %T", frame)}
	}
	if len(stmts) == 0 {
		return kernel.Skip{}
	}

	var rendered []string
	for _, s := range stmts {
		switch n := s.(type) {
		case importStmt:
			f.recordImport(n.raw)
			rendered = append(rendered, n.raw)

		case valDecl:
			v, err := in.evalNode(ctx, n.expr, f, run)
			if err != nil {
				return outcomeOf(err)
			}
			f.bind(n.name, v)
			if v.tag == tagPending {
				in.schedulePending(n.name, v, f, run)
				run.AddPendingVariable(n.name, fmt.Sprintf("%s: Pending = <pending>", n.name))
				continue
			}
			rendered = append(rendered, renderBinding(n.name, v))

		default:
			v, err := in.evalNode(ctx, s.(node), f, run)
			if err != nil {
				return outcomeOf(err)
			}
			if v.tag == tagPending {
				name := fmt.Sprintf("res%d", line)
				f.bind(name, v)
				in.schedulePending(name, v, f, run)
				run.AddPendingVariable(name, fmt.Sprintf("%s: Pending = <pending>", name))
				continue
			}
			if v.tag != tagUnit {
				name := fmt.Sprintf("res%d", line)
				f.bind(name, v)
				rendered = append(rendered, renderBinding(name, v))
			}
		}
	}

	run.AdvanceLine()
	return kernel.Success{Value: strings.Join(rendered, "\n")}
}

func renderBinding(name string, v value) string {
	return fmt.Sprintf("%s: %s = %s", name, v.typeName(), v.render())
}

// Complete returns the anchor position and candidates for the identifier
// under the cursor: visible bindings plus builtins.
func (in *Interp) Complete(frame kernel.Frame, code string, pos int) (int, []string) {
	if pos > len(code) {
		pos = len(code)
	}
	start := pos
	for start > 0 && isIdentPart(rune(code[start-1])) {
		start--
	}
	prefix := code[start:pos]

	var pool []string
	if f, ok := frame.(*Frame); ok {
		pool = f.names()
	}
	pool = append(pool, builtinNames()...)

	var candidates []string
	seen := make(map[string]bool)
	for _, name := range pool {
		if strings.HasPrefix(name, prefix) && !seen[name] {
			seen[name] = true
			candidates = append(candidates, name)
		}
	}
	sort.Strings(candidates)
	return start, candidates
}
