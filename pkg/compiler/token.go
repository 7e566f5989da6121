package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER // variable / function name, also soft keywords such as "at" or "size"
	NUMBER     // decimal literal 12 or 3.5
	STRING     // string literal "..."
	COLOR      // hex color literal #F5A623

	// Statement keywords
	LET     // "let"
	FN      // "fn"
	RETURN  // "return"
	IF      // "if"
	ELSE    // "else"
	REPEAT  // "repeat"
	WHILE   // "while"
	FOR     // "for"
	ANIMATE // "animate"
	SCENE   // "scene"
	IMPORT  // "import"

	// Literal keywords
	TRUE  // "true"
	FALSE // "false"
	NULL  // "null"

	// Shapes
	CIRCLE   // "circle"
	RECT     // "rect"
	LINE     // "line"
	TRIANGLE // "triangle"
	POLYGON  // "polygon"
	ELLIPSE  // "ellipse"
	ARC      // "arc"
	TEXT     // "text"

	// Animation commands
	MOVE   // "move"
	ROTATE // "rotate"
	SCALE  // "scale"
	FADE   // "fade"
	BOUNCE // "bounce"
	WAVE   // "wave"
	ORBIT  // "orbit"
	PULSE  // "pulse"
	WOBBLE // "wobble"
	SPRING // "spring"

	// Paired delimiters
	LBRACE   // {
	RBRACE   // }
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]

	// Punctuation
	DOT       // .
	COMMA     // ,
	COLON     // :
	SEMICOLON // ;

	// Arithmetic operators
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %

	// Assignment / comparison
	ASSIGN     // =
	EQUALS     // ==
	NOT_EQ     // !=
	LESS       // <
	LESS_EQ    // <=
	GREATER    // >
	GREATER_EQ // >=

	NEWLINE // end of a source line; only meaningful to error recovery
	COMMENT // "// ..." or "/* ... */", produced only by LexWithComments
	UNKNOWN // unrecognized character or unterminated literal
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:        "EOF",
	IDENTIFIER: "IDENTIFIER",
	NUMBER:     "NUMBER",
	STRING:     "STRING",
	COLOR:      "COLOR",
	LET:        "LET",
	FN:         "FN",
	RETURN:     "RETURN",
	IF:         "IF",
	ELSE:       "ELSE",
	REPEAT:     "REPEAT",
	WHILE:      "WHILE",
	FOR:        "FOR",
	ANIMATE:    "ANIMATE",
	SCENE:      "SCENE",
	IMPORT:     "IMPORT",
	TRUE:       "TRUE",
	FALSE:      "FALSE",
	NULL:       "NULL",
	CIRCLE:     "CIRCLE",
	RECT:       "RECT",
	LINE:       "LINE",
	TRIANGLE:   "TRIANGLE",
	POLYGON:    "POLYGON",
	ELLIPSE:    "ELLIPSE",
	ARC:        "ARC",
	TEXT:       "TEXT",
	MOVE:       "MOVE",
	ROTATE:     "ROTATE",
	SCALE:      "SCALE",
	FADE:       "FADE",
	BOUNCE:     "BOUNCE",
	WAVE:       "WAVE",
	ORBIT:      "ORBIT",
	PULSE:      "PULSE",
	WOBBLE:     "WOBBLE",
	SPRING:     "SPRING",
	LBRACE:     "LBRACE",
	RBRACE:     "RBRACE",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	LBRACKET:   "LBRACKET",
	RBRACKET:   "RBRACKET",
	DOT:        "DOT",
	COMMA:      "COMMA",
	COLON:      "COLON",
	SEMICOLON:  "SEMICOLON",
	PLUS:       "PLUS",
	MINUS:      "MINUS",
	STAR:       "STAR",
	SLASH:      "SLASH",
	PERCENT:    "PERCENT",
	ASSIGN:     "ASSIGN",
	EQUALS:     "EQUALS",
	NOT_EQ:     "NOT_EQ",
	LESS:       "LESS",
	LESS_EQ:    "LESS_EQ",
	GREATER:    "GREATER",
	GREATER_EQ: "GREATER_EQ",
	NEWLINE:    "NEWLINE",
	COMMENT:    "COMMENT",
	UNKNOWN:    "UNKNOWN",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// operatorText maps operator token types to their source spelling.
var operatorText = map[TokenType]string{
	PLUS:       "+",
	MINUS:      "-",
	STAR:       "*",
	SLASH:      "/",
	PERCENT:    "%",
	ASSIGN:     "=",
	EQUALS:     "==",
	NOT_EQ:     "!=",
	LESS:       "<",
	LESS_EQ:    "<=",
	GREATER:    ">",
	GREATER_EQ: ">=",
}

// isAnimationCommand reports whether tt starts a command inside an animate block.
func (tt TokenType) isAnimationCommand() bool {
	return tt >= MOVE && tt <= SPRING
}

// isShape reports whether tt starts a shape literal.
func (tt TokenType) isShape() bool {
	return tt >= CIRCLE && tt <= TEXT
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // matched text; strings hold their unescaped value
	Line   int    // 1-based source line
	Column int    // 1-based column of the first rune
	Offset int    // rune offset of the first rune in the source
	End    int    // rune offset one past the last rune
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d col %d", t.Type, t.Lexeme, t.Line, t.Column)
}
