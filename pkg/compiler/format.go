package compiler

import (
	"strings"

	"github.com/pkg/errors"
)

// Format rewrites src in canonical layout: one indentation level (two
// spaces) per open bracket, single spaces between tokens that were
// separated, no space inside brackets or before "," and ";", at most one
// blank line in a row. Comments are kept. Formatting formatted output is a
// no-op.
//
// Source the lexer cannot tokenize is returned untouched with an error.
func Format(src string) (string, error) {
	tokens := LexWithComments(src)
	for _, tok := range tokens {
		if tok.Type == UNKNOWN {
			return src, errors.Errorf("line %d, column %d: cannot format %q", tok.Line, tok.Column, tok.Lexeme)
		}
	}

	runes := []rune(src)
	var (
		out     strings.Builder
		line    []Token
		depth   int
		blanks  int
		started bool
	)

	flush := func() {
		if len(line) == 0 {
			if started {
				blanks++
			}
			return
		}
		if blanks > 0 {
			out.WriteByte('\n')
		}
		blanks = 0
		started = true

		indent := depth
		for _, tok := range line {
			if !tok.Type.closes() {
				break
			}
			indent--
		}
		if indent < 0 {
			indent = 0
		}
		out.WriteString(strings.Repeat(indentUnit, indent))

		for i, tok := range line {
			if i > 0 && spaced(line[i-1], tok) {
				out.WriteByte(' ')
			}
			out.WriteString(string(runes[tok.Offset:tok.End]))
			switch {
			case tok.Type.opens():
				depth++
			case tok.Type.closes() && depth > 0:
				depth--
			}
		}
		out.WriteByte('\n')
		line = line[:0]
	}

	for _, tok := range tokens {
		switch tok.Type {
		case EOF:
			flush()
		case NEWLINE:
			flush()
		default:
			line = append(line, tok)
		}
	}
	return out.String(), nil
}

func (tt TokenType) opens() bool {
	return tt == LBRACE || tt == LPAREN || tt == LBRACKET
}

func (tt TokenType) closes() bool {
	return tt == RBRACE || tt == RPAREN || tt == RBRACKET
}

// spaced decides whether a single space separates two adjacent tokens.
func spaced(prev, next Token) bool {
	switch {
	case prev.Type == COMMA:
		return true
	case prev.Type == LPAREN || prev.Type == LBRACKET || prev.Type == DOT:
		return false
	case next.Type == COMMA || next.Type == SEMICOLON || next.Type == DOT ||
		next.Type == RPAREN || next.Type == RBRACKET:
		return false
	case next.Type == LBRACE || next.Type == COMMENT:
		return true
	}
	return next.Offset > prev.End
}
