package interp

import (
	"github.com/mpkocher/almond/errors"
)

// AST nodes. Statements are valDecl, importStmt, or a bare expression node.
type node interface{}

type litNode struct {
	val value
}

type identNode struct {
	name string
	pos  int
}

type binNode struct {
	op    string
	left  node
	right node
}

type callNode struct {
	name string
	args []node
}

type valDecl struct {
	name string
	expr node
}

// importStmt records an import declaration verbatim into the frame. Imports
// are bookkeeping only in this language; the preprocessor and dependency
// declarations still flow through them.
type importStmt struct {
	raw string
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// parseStatement parses one statement from a separator-free token group.
func parseStatement(toks []token) (node, error) {
	p := &parser{toks: toks}

	if t := p.peek(); t.kind == tokIdent && t.text == "val" {
		p.next()
		name := p.next()
		if name.kind == tokEOF {
			return nil, errors.Incomplete("expected name after val")
		}
		if name.kind != tokIdent {
			return nil, errors.ParseError("expected name after val, got " + name.text)
		}
		eq := p.next()
		if eq.kind == tokEOF {
			return nil, errors.Incomplete("expected = after val " + name.text)
		}
		if eq.kind != tokOp || eq.text != "=" {
			return nil, errors.ParseError("expected = after val " + name.text)
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectEnd(); err != nil {
			return nil, err
		}
		return valDecl{name: name.text, expr: expr}, nil
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *parser) expectEnd() error {
	if t := p.peek(); t.kind != tokEOF {
		return errors.ParseError("unexpected token " + t.text)
	}
	return nil
}

// parseExpr handles comparison, the lowest precedence level.
func (p *parser) parseExpr() (node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || !isCompareOp(t.text) {
			return left, nil
		}
		p.next()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = binNode{op: t.text, left: left, right: right}
	}
}

func (p *parser) parseAdditive() (node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = binNode{op: t.text, left: left, right: right}
	}
}

func (p *parser) parseMultiplicative() (node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "*" && t.text != "/") {
			return left, nil
		}
		p.next()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = binNode{op: t.text, left: left, right: right}
	}
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokEOF:
		return nil, errors.Incomplete("unexpected end of input")
	case tokInt:
		return litNode{val: parseIntValue(t.text)}, nil
	case tokFloat:
		return litNode{val: parseFloatValue(t.text)}, nil
	case tokStr:
		return litNode{val: strValue(t.text)}, nil
	case tokOp:
		if t.text == "-" {
			inner, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			return binNode{op: "-", left: litNode{val: intValue(0)}, right: inner}, nil
		}
		return nil, errors.ParseError("unexpected operator " + t.text)
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		closing := p.next()
		if closing.kind == tokEOF {
			return nil, errors.Incomplete("expected )")
		}
		if closing.kind != tokRParen {
			return nil, errors.ParseError("expected ), got " + closing.text)
		}
		return inner, nil
	case tokIdent:
		switch t.text {
		case "true":
			return litNode{val: boolValue(true)}, nil
		case "false":
			return litNode{val: boolValue(false)}, nil
		}
		if p.peek().kind == tokLParen {
			p.next()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return callNode{name: t.text, args: args}, nil
		}
		return identNode{name: t.text, pos: t.pos}, nil
	default:
		return nil, errors.ParseError("unexpected token " + t.text)
	}
}

func (p *parser) parseArgs() ([]node, error) {
	var args []node
	if p.peek().kind == tokRParen {
		p.next()
		return args, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		t := p.next()
		switch t.kind {
		case tokRParen:
			return args, nil
		case tokComma:
			continue
		case tokEOF:
			return nil, errors.Incomplete("expected ) in call")
		default:
			return nil, errors.ParseError("expected , or ) in call, got " + t.text)
		}
	}
}

func isCompareOp(op string) bool {
	switch op {
	case "==", "!=", "<", ">", "<=", ">=":
		return true
	}
	return false
}
