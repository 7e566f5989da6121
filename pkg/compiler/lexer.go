package compiler

import (
	"unicode"
)

// keywords maps source text to its keyword TokenType. Property words such as
// "at", "size" or "color" and the move directions are not listed: they lex as
// identifiers and the parser matches them by text where the grammar wants them.
var keywords = map[string]TokenType{
	"let":      LET,
	"fn":       FN,
	"return":   RETURN,
	"if":       IF,
	"else":     ELSE,
	"repeat":   REPEAT,
	"while":    WHILE,
	"for":      FOR,
	"animate":  ANIMATE,
	"scene":    SCENE,
	"import":   IMPORT,
	"true":     TRUE,
	"false":    FALSE,
	"null":     NULL,
	"circle":   CIRCLE,
	"rect":     RECT,
	"line":     LINE,
	"triangle": TRIANGLE,
	"polygon":  POLYGON,
	"ellipse":  ELLIPSE,
	"arc":      ARC,
	"text":     TEXT,
	"move":     MOVE,
	"rotate":   ROTATE,
	"scale":    SCALE,
	"fade":     FADE,
	"bounce":   BOUNCE,
	"wave":     WAVE,
	"orbit":    ORBIT,
	"pulse":    PULSE,
	"wobble":   WOBBLE,
	"spring":   SPRING,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src          []rune
	pos          int // index of the next rune to consume
	line         int // current 1-based source line
	col          int // current 1-based column
	keepComments bool
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1, col: 1}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

// skipBlanks discards spaces, tabs and carriage returns. Newlines are tokens.
func (l *Lexer) skipBlanks() {
	for !l.atEnd() {
		r := l.peek()
		if r == '\n' || !unicode.IsSpace(r) {
			return
		}
		l.advance()
	}
}

// start returns a token positioned at the current rune.
func (l *Lexer) start(tt TokenType) Token {
	return Token{Type: tt, Line: l.line, Column: l.col, Offset: l.pos}
}

// finish fills in the end offset and, if lexeme is empty, the raw source text.
func (l *Lexer) finish(tok Token) Token {
	tok.End = l.pos
	if tok.Lexeme == "" && tok.Type != EOF && tok.Type != STRING {
		tok.Lexeme = string(l.src[tok.Offset:l.pos])
	}
	return tok
}

// scanLineComment collects everything from "//" up to end-of-line.
func (l *Lexer) scanLineComment() Token {
	tok := l.start(COMMENT)
	for !l.atEnd() && l.peek() != '\n' {
		l.advance()
	}
	return l.finish(tok)
}

// scanBlockComment collects everything up to and including the closing "*/".
// An unterminated comment becomes an UNKNOWN token spanning the rest of input.
func (l *Lexer) scanBlockComment() Token {
	tok := l.start(COMMENT)
	l.advance() // /
	l.advance() // *
	for !l.atEnd() {
		if l.peek() == '*' && l.peek2() == '/' {
			l.advance()
			l.advance()
			return l.finish(tok)
		}
		l.advance()
	}
	tok.Type = UNKNOWN
	return l.finish(tok)
}

// scanIdent collects a full identifier or keyword token.
// The first character (letter or '_') must still be at l.peek().
func (l *Lexer) scanIdent() Token {
	tok := l.start(IDENTIFIER)
	for !l.atEnd() {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	tok = l.finish(tok)
	if kw, ok := keywords[tok.Lexeme]; ok {
		tok.Type = kw
	}
	return tok
}

// scanNumber collects digits with an optional fractional part.
func (l *Lexer) scanNumber() Token {
	tok := l.start(NUMBER)
	for !l.atEnd() && isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peek2()) {
		l.advance() // .
		for !l.atEnd() && isDigit(l.peek()) {
			l.advance()
		}
	}
	return l.finish(tok)
}

// scanString collects a double-quoted literal. Only \" is unescaped; every
// other backslash sequence is kept as written so it reaches the output intact.
// A string cut off by a newline or end of input is returned as UNKNOWN.
func (l *Lexer) scanString() Token {
	tok := l.start(STRING)
	l.advance() // opening "
	var val []rune
	for {
		if l.atEnd() || l.peek() == '\n' {
			tok.Type = UNKNOWN
			tok.Lexeme = string(l.src[tok.Offset:l.pos])
			return l.finish(tok)
		}
		r := l.advance()
		switch r {
		case '"':
			tok.Lexeme = string(val)
			return l.finish(tok)
		case '\\':
			if l.atEnd() || l.peek() == '\n' {
				val = append(val, r)
				continue
			}
			next := l.advance()
			if next == '"' {
				val = append(val, '"')
			} else {
				val = append(val, '\\', next)
			}
		default:
			val = append(val, r)
		}
	}
}

// scanColor collects '#' followed by letters and digits.
func (l *Lexer) scanColor() Token {
	tok := l.start(COLOR)
	l.advance() // #
	for !l.atEnd() && (isDigit(l.peek()) || unicode.IsLetter(l.peek())) {
		l.advance()
	}
	if l.pos-tok.Offset == 1 {
		tok.Type = UNKNOWN
	}
	return l.finish(tok)
}

// single maps one-rune punctuation to its token type.
var single = map[rune]TokenType{
	'{': LBRACE,
	'}': RBRACE,
	'(': LPAREN,
	')': RPAREN,
	'[': LBRACKET,
	']': RBRACKET,
	'.': DOT,
	',': COMMA,
	':': COLON,
	';': SEMICOLON,
	'+': PLUS,
	'-': MINUS,
	'*': STAR,
	'/': SLASH,
	'%': PERCENT,
}

// nextToken scans and returns the next token, skipping blanks and, unless
// keepComments is set, comments.
func (l *Lexer) nextToken() Token {
	for {
		l.skipBlanks()
		if l.atEnd() {
			return l.finish(l.start(EOF))
		}

		r := l.peek()
		switch {
		case r == '\n':
			tok := l.start(NEWLINE)
			l.advance()
			tok = l.finish(tok)
			tok.Lexeme = "\\n"
			return tok
		case r == '/' && l.peek2() == '/':
			tok := l.scanLineComment()
			if l.keepComments {
				return tok
			}
			continue
		case r == '/' && l.peek2() == '*':
			tok := l.scanBlockComment()
			if l.keepComments || tok.Type == UNKNOWN {
				return tok
			}
			continue
		case unicode.IsLetter(r) || r == '_':
			return l.scanIdent()
		case isDigit(r):
			return l.scanNumber()
		case r == '"':
			return l.scanString()
		case r == '#':
			return l.scanColor()
		}

		tok := l.start(UNKNOWN)
		l.advance()
		next := l.peek()
		switch r {
		case '=':
			tok.Type = ASSIGN
			if next == '=' {
				l.advance()
				tok.Type = EQUALS
			}
		case '!':
			if next == '=' {
				l.advance()
				tok.Type = NOT_EQ
			}
		case '<':
			tok.Type = LESS
			if next == '=' {
				l.advance()
				tok.Type = LESS_EQ
			}
		case '>':
			tok.Type = GREATER
			if next == '=' {
				l.advance()
				tok.Type = GREATER_EQ
			}
		default:
			if tt, ok := single[r]; ok {
				tok.Type = tt
			}
		}
		return l.finish(tok)
	}
}

func (l *Lexer) run() []Token {
	var tokens []Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}

// Lex converts MFlow source text into a slice of tokens terminated by EOF.
// It never fails: characters it cannot classify become UNKNOWN tokens that
// the parser reports with their position.
func Lex(src string) []Token {
	return newLexer(src).run()
}

// LexWithComments is Lex but keeps comments as COMMENT tokens.
func LexWithComments(src string) []Token {
	l := newLexer(src)
	l.keepComments = true
	return l.run()
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
