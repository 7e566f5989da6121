package compiler

import (
	"reflect"
	"strings"
	"testing"

	"github.com/sanity-io/litter"
)

func parseSource(t *testing.T, src string) (*Program, []Diagnostic) {
	t.Helper()
	return Parse(Lex(src), src)
}

// TestParse verifies the tree built for valid inputs through its String form.
func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Let With Precedence",
			input:    "let x = 1 + 2 * 3",
			expected: "Program[LetStmt(x = (1 + (2 * 3)))]",
		},
		{
			name:     "Parenthesized Grouping",
			input:    "let x = (1 + 2) * 3",
			expected: "Program[LetStmt(x = ((1 + 2) * 3))]",
		},
		{
			name:     "Comparison Does Not Chain",
			input:    "let b = 1 < 2 < 3",
			expected: "Program[LetStmt(b = ((1 < 2) < 3))]",
		},
		{
			name:     "Unary Minus",
			input:    "let n = -x * 2",
			expected: "Program[LetStmt(n = ((-x) * 2))]",
		},
		{
			name:     "Assignment Is Right Associative",
			input:    "a = b = 3",
			expected: "Program[ExprStmt((a = (b = 3)))]",
		},
		{
			name:     "Postfix Chain",
			input:    "obj.items[0].draw(1, 2)",
			expected: "Program[ExprStmt(obj.items[0].draw(1, 2))]",
		},
		{
			name:     "Array And Object",
			input:    `let a = [1, "two", #fff, true, null, {k: 1}]`,
			expected: `Program[LetStmt(a = [1, "two", #fff, true, null, {k: 1}])]`,
		},
		{
			name:     "Circle",
			input:    "circle at (150, 200) size 60 color #F5A623",
			expected: "Program[ExprStmt(Circle(at (150, 200) size 60 color #F5A623))]",
		},
		{
			name:     "Rect",
			input:    "rect at (0, 0) width 10 height 20 color #000",
			expected: "Program[ExprStmt(Rect(at (0, 0) width 10 height 20 color #000))]",
		},
		{
			name:     "Line",
			input:    "line (0, 0) (10, 10) color #fff",
			expected: "Program[ExprStmt(Line((0, 0) (10, 10) color #fff))]",
		},
		{
			name:     "Triangle",
			input:    "triangle (0, 0) (10, 0) (5, 8) color #f00",
			expected: "Program[ExprStmt(Triangle((0, 0) (10, 0) (5, 8) color #f00))]",
		},
		{
			name:     "Polygon With Rotation",
			input:    "polygon at (50, 50) sides 6 radius 20 color #0f0 rotate 30",
			expected: "Program[ExprStmt(Polygon(at (50, 50) sides 6 radius 20 color #0f0 rotate 30))]",
		},
		{
			name:     "Ellipse",
			input:    "ellipse at (5, 5) 10 20 color #00f",
			expected: "Program[ExprStmt(Ellipse(at (5, 5) 10 20 color #00f))]",
		},
		{
			name:     "Arc",
			input:    "arc at (5, 5) radius 10 startAngle 0 endAngle 90 color #abc",
			expected: "Program[ExprStmt(Arc(at (5, 5) radius 10 startAngle 0 endAngle 90 color #abc))]",
		},
		{
			name:     "Text With Font And Size",
			input:    `text at (10, 20) "Hello" color #fff font "serif" size 24`,
			expected: `Program[ExprStmt(Text(at (10, 20) "Hello" color #fff font "serif" size 24))]`,
		},
		{
			name:     "Text Drops Non String Font",
			input:    `text at (10, 20) label color #fff font 12`,
			expected: `Program[ExprStmt(Text(at (10, 20) label color #fff))]`,
		},
		{
			name:     "Function",
			input:    "fn area(w, h) {\n  return w * h\n}",
			expected: "Program[FunctionDecl(area(w, h) [ReturnStmt((w * h))])]",
		},
		{
			name:     "Bare Return Before Brace",
			input:    "fn f() { return }",
			expected: "Program[FunctionDecl(f() [ReturnStmt()])]",
		},
		{
			name:     "If Else If",
			input:    "if x > 1 { a() } else if x < 0 { b() } else { c() }",
			expected: "Program[IfStmt(if (x > 1) then [ExprStmt(a())] else [IfStmt(if (x < 0) then [ExprStmt(b())] else [ExprStmt(c())])])]",
		},
		{
			name:     "Repeat",
			input:    "repeat 5 { circle at (0, 0) size 1 color #fff }",
			expected: "Program[RepeatStmt(5 [ExprStmt(Circle(at (0, 0) size 1 color #fff))])]",
		},
		{
			name:     "While",
			input:    "while i < 3 { i = i + 1 }",
			expected: "Program[WhileStmt(while (i < 3) do [ExprStmt((i = (i + 1)))])]",
		},
		{
			name:     "For",
			input:    "for (let i = 0; i < 10; i = i + 1) { f(i) }",
			expected: "Program[ForStmt(init=LetStmt(i = 0), cond=(i < 10), update=(i = (i + 1)), body=[ExprStmt(f(i))])]",
		},
		{
			name:     "For Without Init Or Update",
			input:    "for (; go; ) { }",
			expected: "Program[ForStmt(init=nil, cond=go, update=nil, body=[])]",
		},
		{
			name:     "Imports",
			input:    "import \"lib/shapes.mflow\"\nimport star, heart from \"lib/extra.mflow\"",
			expected: `Program[ImportStmt("lib/shapes.mflow"); ImportStmt(star, heart from "lib/extra.mflow")]`,
		},
		{
			name:     "Scene",
			input:    "scene intro { let a = 1 }",
			expected: "Program[SceneBlock(intro [LetStmt(a = 1)])]",
		},
		{
			name:     "Animate",
			input:    "animate {\n  move 3 left\n  rotate 2\n  bounce\n  pulse 0.5 1.5\n  spring 10 20 0.2 0.9\n}",
			expected: "Program[AnimateBlock[move 3 left; rotate 2; bounce; pulse 0.5 1.5; spring 10 20 0.2 0.9]]",
		},
		{
			name:     "Move Defaults Right",
			input:    "animate { move -2 }",
			expected: "Program[AnimateBlock[move (-2) right]]",
		},
		{
			name:     "Soft Keywords As Names",
			input:    "let size = 10\nlet color = #fff\ncircle at (0, 0) size size color color",
			expected: "Program[LetStmt(size = 10); LetStmt(color = #fff); ExprStmt(Circle(at (0, 0) size size color color))]",
		},
		{
			name:     "Semicolons Separate Statements",
			input:    "let a = 1; let b = 2",
			expected: "Program[LetStmt(a = 1); LetStmt(b = 2)]",
		},
		{
			name:     "Newline Ends Expression",
			input:    "let a = b\n(c)",
			expected: "Program[LetStmt(a = b); ExprStmt(c)]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, diags := parseSource(t, tt.input)
			if len(diags) != 0 {
				t.Fatalf("unexpected diagnostics: %v", Strings(diags))
			}
			if got := prog.String(); got != tt.expected {
				t.Errorf("Parse(%q)\n got: %s\nwant: %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseTree(t *testing.T) {
	prog, diags := parseSource(t, "let x = 5")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", Strings(diags))
	}
	expected := &Program{Body: []Stmt{
		&LetStmt{
			Position: Position{Line: 1, Column: 1},
			Name:     &Identifier{Position: Position{Line: 1, Column: 5}, Name: "x"},
			Value:    &NumberLiteral{Position: Position{Line: 1, Column: 9}, Value: 5},
		},
	}}
	if !reflect.DeepEqual(prog, expected) {
		t.Errorf("tree mismatch\n got: %s\nwant: %s", litter.Sdump(prog), litter.Sdump(expected))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
		line    int
		column  int
	}{
		{"Missing Comma", "circle at (150 200) size 60 color #fff", "Expected , in position, found '200'", 1, 16},
		{"Missing At", "circle (1, 2) size 3 color #fff", `Expected "at" after circle, found '('`, 1, 8},
		{"Let Without Name", "let = 4", "Expected variable name, found '='", 1, 5},
		{"Unterminated String", `let s = "abc`, "Unterminated string", 1, 9},
		{"Unexpected Character", "let s = @", "Unexpected character '@'", 1, 9},
		{"End Of Input", "let s =", "Unexpected end of input", 1, 8},
		{"Invalid Assignment Target", "1 = 2", "Invalid assignment target", 1, 3},
		{"Unknown Animation Command", "animate { jump 3 }", "Unknown animation command 'jump'", 1, 11},
		{"Unclosed Block", "fn f() {\n  let a = 1\n", "Expected } after function body, found end of input", 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := parseSource(t, tt.input)
			if len(diags) == 0 {
				t.Fatalf("expected a diagnostic for %q", tt.input)
			}
			d := diags[0]
			if d.Message != tt.message || d.Line != tt.line || d.Column != tt.column {
				t.Errorf("got %q at %d:%d, want %q at %d:%d", d.Message, d.Line, d.Column, tt.message, tt.line, tt.column)
			}
			if d.Kind != ParseError {
				t.Errorf("kind = %v, want Parse", d.Kind)
			}
		})
	}
}

func TestParseRecovery(t *testing.T) {
	src := strings.Join([]string{
		"circle at (10, 10) size 5 color #fff",
		"circle at (20 20) size 5 color #000",
		"rect at (0, 0) width 5 height 5 color #111",
	}, "\n")

	prog, diags := parseSource(t, src)
	if len(diags) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %v", Strings(diags))
	}
	if diags[0].Line != 2 {
		t.Errorf("diagnostic on line %d, want 2", diags[0].Line)
	}
	if len(prog.Body) != 2 {
		t.Fatalf("expected 2 recovered statements, got %d: %s", len(prog.Body), prog)
	}
	if _, ok := prog.Body[1].(*ExprStmt).Expr.(*Rect); !ok {
		t.Errorf("second statement should be the rect, got %s", prog.Body[1])
	}
}

// A statement that fails on the first token of its line is reported once and
// the statements around it still translate.
func TestParseRecoveryAtLineStart(t *testing.T) {
	tests := []struct {
		name     string
		bad      string
		expected string
	}{
		{"Illegal character", "@", "Parse error at line 2, column 1: Unexpected character '@'"},
		{"Stray paren", ")", "Parse error at line 2, column 1: Unexpected token: )"},
		{"Lone else", "else", "Parse error at line 2, column 1: Unexpected token: else"},
		{"Indented", "  @", "Parse error at line 2, column 3: Unexpected character '@'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "let a = 1\n" + tt.bad + "\nlet b = 2\n"
			prog, diags := parseSource(t, src)
			got := Strings(diags)
			if !reflect.DeepEqual(got, []string{tt.expected}) {
				t.Fatalf("got %q, want [%q]", got, tt.expected)
			}
			if s := prog.String(); s != "Program[LetStmt(a = 1); LetStmt(b = 2)]" {
				t.Errorf("recovered tree %s", s)
			}
			code := Generate(prog, Options{})
			assertContains(t, code, "  let a = 1;\n")
			assertContains(t, code, "  let b = 2;\n")
		})
	}
}

func TestParseRecoveryInsideBlock(t *testing.T) {
	src := "fn f() {\n  let = 1\n  let b = 2\n}\nlet c = 3"
	prog, diags := parseSource(t, src)
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %v", Strings(diags))
	}
	expected := "Program[FunctionDecl(f() [LetStmt(b = 2)]); LetStmt(c = 3)]"
	if got := prog.String(); got != expected {
		t.Errorf("got %s, want %s", got, expected)
	}
}

func TestParseRecoveryInsideAnimate(t *testing.T) {
	prog, diags := parseSource(t, "animate {\n  move 2 up\n  jump 4\n  rotate 1\n}")
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %v", Strings(diags))
	}
	expected := "Program[AnimateBlock[move 2 up; rotate 1]]"
	if got := prog.String(); got != expected {
		t.Errorf("got %s, want %s", got, expected)
	}
}

func TestParseCollectsAllErrors(t *testing.T) {
	src := "let = 1\nlet y 2\ncircle at 5\nlet ok = 1"
	prog, diags := parseSource(t, src)
	if len(diags) != 3 {
		t.Fatalf("expected 3 diagnostics, got %v", Strings(diags))
	}
	for i, d := range diags {
		if d.Line != i+1 {
			t.Errorf("diagnostic %d on line %d, want %d", i, d.Line, i+1)
		}
	}
	if got := prog.String(); got != "Program[LetStmt(ok = 1)]" {
		t.Errorf("got %s", got)
	}
}

func TestParseSnippet(t *testing.T) {
	_, diags := parseSource(t, "let a = 1\n   let = 2   \n")
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %v", Strings(diags))
	}
	if diags[0].Snippet != "let = 2" {
		t.Errorf("snippet = %q", diags[0].Snippet)
	}
}
