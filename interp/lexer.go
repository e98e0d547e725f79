package interp

import (
	"strings"
	"unicode"

	"github.com/mpkocher/almond/errors"
)

type tokKind int

const (
	tokIdent tokKind = iota
	tokInt
	tokFloat
	tokStr
	tokOp
	tokLParen
	tokRParen
	tokComma
	tokSep // statement separator: newline or semicolon
	tokEOF
)

type token struct {
	kind tokKind
	text string
	pos  int
}

// lex tokenizes src. Unterminated strings report incomplete input; a
// character outside the language's alphabet reports a parse error that no
// further input can repair.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	n := len(src)

	for i < n {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '\n' || c == ';':
			toks = append(toks, token{kind: tokSep, text: string(c), pos: i})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++
		case c == '"':
			j := i + 1
			for j < n && src[j] != '"' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			if j >= n {
				return nil, errors.Incomplete("unterminated string literal")
			}
			text := strings.ReplaceAll(src[i+1:j], `\"`, `"`)
			text = strings.ReplaceAll(text, `\n`, "\n")
			toks = append(toks, token{kind: tokStr, text: text, pos: i})
			i = j + 1
		case strings.ContainsRune("+-*/=<>!", rune(c)):
			j := i + 1
			if j < n && src[j] == '=' {
				j++
			}
			toks = append(toks, token{kind: tokOp, text: src[i:j], pos: i})
			i = j
		case c >= '0' && c <= '9':
			j := i
			isFloat := false
			for j < n && (src[j] >= '0' && src[j] <= '9' || src[j] == '.') {
				if src[j] == '.' {
					isFloat = true
				}
				j++
			}
			kind := tokInt
			if isFloat {
				kind = tokFloat
			}
			toks = append(toks, token{kind: kind, text: src[i:j], pos: i})
			i = j
		case isIdentStart(rune(c)):
			j := i
			for j < n && isIdentPart(rune(src[j])) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: src[i:j], pos: i})
			i = j
		default:
			return nil, errors.ParseError("illegal character " + string(c))
		}
	}

	toks = append(toks, token{kind: tokEOF, pos: n})
	return toks, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
