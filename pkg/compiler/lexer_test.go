package compiler

import (
	"reflect"
	"testing"
)

// lexed is the part of a token most tests care about.
type lexed struct {
	Type   TokenType
	Lexeme string
}

func kinds(tokens []Token) []lexed {
	out := make([]lexed, len(tokens))
	for i, tok := range tokens {
		out[i] = lexed{tok.Type, tok.Lexeme}
	}
	return out
}

func TestLex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []lexed
	}{
		{
			name:     "Empty",
			input:    "",
			expected: []lexed{{EOF, ""}},
		},
		{
			name:  "Operators and Punctuation",
			input: "+ - * / % = == != < <= > >= , . : ; ( ) [ ] { }",
			expected: []lexed{
				{PLUS, "+"}, {MINUS, "-"}, {STAR, "*"}, {SLASH, "/"}, {PERCENT, "%"},
				{ASSIGN, "="}, {EQUALS, "=="}, {NOT_EQ, "!="},
				{LESS, "<"}, {LESS_EQ, "<="}, {GREATER, ">"}, {GREATER_EQ, ">="},
				{COMMA, ","}, {DOT, "."}, {COLON, ":"}, {SEMICOLON, ";"},
				{LPAREN, "("}, {RPAREN, ")"}, {LBRACKET, "["}, {RBRACKET, "]"},
				{LBRACE, "{"}, {RBRACE, "}"},
				{EOF, ""},
			},
		},
		{
			name:  "Keywords and Soft Words",
			input: "let fn circle at size color move right",
			expected: []lexed{
				{LET, "let"}, {FN, "fn"}, {CIRCLE, "circle"},
				{IDENTIFIER, "at"}, {IDENTIFIER, "size"}, {IDENTIFIER, "color"},
				{MOVE, "move"}, {IDENTIFIER, "right"},
				{EOF, ""},
			},
		},
		{
			name:  "Literals",
			input: `42 3.14 "hi" #F5A623 true false null`,
			expected: []lexed{
				{NUMBER, "42"}, {NUMBER, "3.14"}, {STRING, "hi"}, {COLOR, "#F5A623"},
				{TRUE, "true"}, {FALSE, "false"}, {NULL, "null"},
				{EOF, ""},
			},
		},
		{
			name:  "Trailing Dot Is Not Fraction",
			input: "5.x",
			expected: []lexed{
				{NUMBER, "5"}, {DOT, "."}, {IDENTIFIER, "x"}, {EOF, ""},
			},
		},
		{
			name:  "Escaped Quote",
			input: `"say \"hi\"\n"`,
			expected: []lexed{
				{STRING, `say "hi"\n`}, {EOF, ""},
			},
		},
		{
			name:  "Comments Skipped",
			input: "x // trailing\n/* block\ncomment */ y",
			expected: []lexed{
				{IDENTIFIER, "x"}, {NEWLINE, "\\n"}, {IDENTIFIER, "y"}, {EOF, ""},
			},
		},
		{
			name:  "Unknown Characters",
			input: "@ ! & #",
			expected: []lexed{
				{UNKNOWN, "@"}, {UNKNOWN, "!"}, {UNKNOWN, "&"}, {UNKNOWN, "#"}, {EOF, ""},
			},
		},
		{
			name:  "Unterminated String",
			input: "\"abc\nx",
			expected: []lexed{
				{UNKNOWN, `"abc`}, {NEWLINE, "\\n"}, {IDENTIFIER, "x"}, {EOF, ""},
			},
		},
		{
			name:  "Unterminated Block Comment",
			input: "a /* never closed",
			expected: []lexed{
				{IDENTIFIER, "a"}, {UNKNOWN, "/* never closed"}, {EOF, ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kinds(Lex(tt.input))
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Lex(%q)\n got: %v\nwant: %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLexPositions(t *testing.T) {
	src := "let x = 1\n  circle"
	tokens := Lex(src)

	expected := []Token{
		{Type: LET, Lexeme: "let", Line: 1, Column: 1, Offset: 0, End: 3},
		{Type: IDENTIFIER, Lexeme: "x", Line: 1, Column: 5, Offset: 4, End: 5},
		{Type: ASSIGN, Lexeme: "=", Line: 1, Column: 7, Offset: 6, End: 7},
		{Type: NUMBER, Lexeme: "1", Line: 1, Column: 9, Offset: 8, End: 9},
		{Type: NEWLINE, Lexeme: "\\n", Line: 1, Column: 10, Offset: 9, End: 10},
		{Type: CIRCLE, Lexeme: "circle", Line: 2, Column: 3, Offset: 12, End: 18},
		{Type: EOF, Lexeme: "", Line: 2, Column: 9, Offset: 18, End: 18},
	}
	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("positions mismatch\n got: %v\nwant: %v", tokens, expected)
	}
}

func TestLexAlwaysTerminates(t *testing.T) {
	inputs := []string{"", "\n\n", "@@@", `"`, "/*", "#", "let x = ", "}}}}"}
	for _, in := range inputs {
		tokens := Lex(in)
		if len(tokens) == 0 || tokens[len(tokens)-1].Type != EOF {
			t.Errorf("Lex(%q) did not end with EOF: %v", in, tokens)
		}
		for _, tok := range tokens[:len(tokens)-1] {
			if tok.Type == EOF {
				t.Errorf("Lex(%q) produced EOF before the end", in)
			}
		}
	}
}

func TestLexWithComments(t *testing.T) {
	got := kinds(LexWithComments("x // note\n/* b */"))
	expected := []lexed{
		{IDENTIFIER, "x"}, {COMMENT, "// note"}, {NEWLINE, "\\n"}, {COMMENT, "/* b */"}, {EOF, ""},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("got %v, want %v", got, expected)
	}
}
