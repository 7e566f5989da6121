package compiler

import (
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Empty",
			input:    "",
			expected: "",
		},
		{
			name:     "Collapses Spacing",
			input:    "let  x   =  1",
			expected: "let x = 1\n",
		},
		{
			name:     "Keeps Tight Operators Tight",
			input:    "let x=1+2",
			expected: "let x=1+2\n",
		},
		{
			name:     "Brackets And Commas",
			input:    "circle at ( 1 ,2 ) size 3 color #fff",
			expected: "circle at (1, 2) size 3 color #fff\n",
		},
		{
			name:     "Indents Blocks",
			input:    "fn f( a,b ){\nreturn a + b\n}",
			expected: "fn f(a, b) {\n  return a + b\n}\n",
		},
		{
			name:     "Nested Blocks",
			input:    "repeat 2 {\nif x {\nf()\n} else {\ng()\n}\n}",
			expected: "repeat 2 {\n  if x {\n    f()\n  } else {\n    g()\n  }\n}\n",
		},
		{
			name:     "Collapses Blank Lines",
			input:    "\n\nlet a = 1\n\n\n\nlet b = 2\n\n\n",
			expected: "let a = 1\n\nlet b = 2\n",
		},
		{
			name:     "Keeps Comments",
			input:    "animate {\n// spin\n  rotate 2   // degrees\n}",
			expected: "animate {\n  // spin\n  rotate 2 // degrees\n}\n",
		},
		{
			name:     "Member Access",
			input:    "let v = o . items [ 0 ]",
			expected: "let v = o.items [0]\n",
		},
		{
			name:     "Multi Line Array",
			input:    "let a = [\n1,\n2\n]",
			expected: "let a = [\n  1,\n  2\n]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.input)
			if err != nil {
				t.Fatalf("Format error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Format(%q)\n got: %q\nwant: %q", tt.input, got, tt.expected)
			}
			again, err := Format(got)
			if err != nil {
				t.Fatalf("second Format error: %v", err)
			}
			if again != got {
				t.Errorf("Format is not idempotent\nfirst:  %q\nsecond: %q", got, again)
			}
		})
	}
}

func TestFormatRefusesUnknownTokens(t *testing.T) {
	for _, src := range []string{"let a = @", `let s = "open`, "/* open"} {
		out, err := Format(src)
		if err == nil {
			t.Errorf("Format(%q) succeeded, want error", src)
		}
		if out != src {
			t.Errorf("Format(%q) changed the source on error: %q", src, out)
		}
	}
}

func TestFormatPreservesMeaning(t *testing.T) {
	formatted, err := Format(sampleProgram)
	if err != nil {
		t.Fatal(err)
	}
	before := Compile(sampleProgram)
	after := Compile(formatted)
	if !after.Success {
		t.Fatalf("formatted program does not compile: %v\n%s", after.Messages(), formatted)
	}
	if stripSpace(before.Output) != stripSpace(after.Output) {
		t.Errorf("formatting changed the generated code")
	}
}

func stripSpace(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r != ' ' && r != '\n' {
			out = append(out, r)
		}
	}
	return string(out)
}
