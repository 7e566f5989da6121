package compiler

import (
	"strings"
	"testing"
)

// assertContains checks if the generated code contains the expected substring.
func assertContains(t *testing.T, code, expected string) {
	t.Helper()
	if !strings.Contains(code, expected) {
		t.Errorf("Expected code to contain %q, but it didn't.\nCode:\n%s", expected, code)
	}
}

func assertNotContains(t *testing.T, code, unexpected string) {
	t.Helper()
	if strings.Contains(code, unexpected) {
		t.Errorf("Expected code NOT to contain %q, but it did.\nCode:\n%s", unexpected, code)
	}
}

// generate parses src and translates it without running analysis.
func generate(t *testing.T, src string, opts Options) string {
	t.Helper()
	prog, diags := Parse(Lex(src), src)
	if len(diags) != 0 {
		t.Fatalf("unexpected parse errors: %v", Strings(diags))
	}
	return Generate(prog, opts)
}

func TestGenerate_Prelude(t *testing.T) {
	code := generate(t, "", Options{})

	if !strings.HasPrefix(code, "// MFlow compiled output - Enhanced Version\n") {
		t.Errorf("output does not start with the header:\n%s", code)
	}
	assertContains(t, code, `const canvas = document.getElementById("mflow-canvas");`)
	assertContains(t, code, `if (!canvas) { console.error("Canvas not found: mflow-canvas"); }`)
	assertContains(t, code, "  function updateTime() { mflow.time += 0.016; mflow.frameCount++; requestAnimationFrame(updateTime); }")
	assertContains(t, code, "const random = (min, max) => max === undefined ? Math.random() * min : Math.random() * (max - min) + min;")
	assertContains(t, code, "const lerp = (a, b, t) => a + (b - a) * t;")
	assertContains(t, code, "let animationState = {\n  x: 0,\n  y: 0,\n  rotation: 0,\n  scale: 1,\n  opacity: 1\n};")
	assertContains(t, code, "function applyTransform(x, y) {\n  ctx.translate(x + animationState.x, y + animationState.y);")
	if !strings.HasSuffix(code, "// Main program\n(function main() {\n})();\n") {
		t.Errorf("output does not end with an empty main:\n%s", code)
	}
}

func TestGenerate_Circle(t *testing.T) {
	code := generate(t, "circle at (150, 200) size 60 color #F5A623", Options{})
	assertContains(t, code, `(function main() {
  (function() {
    ctx.save();
    const x = 150;
    const y = 200;
    const size = 60;
    const color = "#F5A623";
    applyTransform(x, y);
    ctx.beginPath();
    ctx.arc(0, 0, size, 0, Math.PI * 2);
    ctx.fillStyle = color;
    ctx.fill();
    ctx.restore();
  })();
})();
`)
}

func TestGenerate_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:  "Rect",
			input: "rect at (10, 20) width 30 height 40 color #000",
			expected: []string{
				"const w = 30;", "const h = 40;", "ctx.fillRect(-w/2, -h/2, w, h);",
			},
		},
		{
			name:  "Line",
			input: "line (0, 1) (2, 3) color #fff",
			expected: []string{
				"ctx.strokeStyle = color;", "ctx.moveTo(0, 1);", "ctx.lineTo(2, 3);", "ctx.stroke();",
			},
		},
		{
			name:  "Triangle",
			input: "triangle (0, 0) (10, 0) (5, 8) color #f00",
			expected: []string{
				"ctx.moveTo(0, 0);\n    ctx.lineTo(10, 0);\n    ctx.lineTo(5, 8);\n    ctx.closePath();",
			},
		},
		{
			name:  "Polygon Without Rotation",
			input: "polygon at (50, 50) sides 6 radius 20 color #0f0",
			expected: []string{
				"const rotation = 0;",
				"const angle = (i * TWO_PI / sides) + (rotation || 0);",
				"if (i === 0) ctx.moveTo(px, py);",
			},
		},
		{
			name:     "Polygon With Rotation",
			input:    "polygon at (50, 50) sides 6 radius 20 color #0f0 rotate 45",
			expected: []string{"const rotation = 45;"},
		},
		{
			name:     "Ellipse",
			input:    "ellipse at (5, 6) 10 20 color #00f",
			expected: []string{"const radiusX = 10;", "const radiusY = 20;", "ctx.ellipse(x, y, radiusX, radiusY, 0, 0, TWO_PI);"},
		},
		{
			name:  "Arc",
			input: "arc at (5, 5) radius 10 startAngle 0 endAngle 90 color #abc",
			expected: []string{
				"const startAngle = 0 * Math.PI / 180;",
				"const endAngle = 90 * Math.PI / 180;",
				"ctx.arc(x, y, radius, startAngle, endAngle, false);",
			},
		},
		{
			name:  "Text",
			input: `text at (10, 20) "Hi \"you\"" color #fff font "serif" size 24`,
			expected: []string{
				`const text = "Hi \"you\"";`,
				`ctx.font = "serif";`,
				"const fontSize = 24;",
				`ctx.font = (fontSize || 16) + "px sans-serif";`,
				"ctx.fillText(String(text), x, y);",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := generate(t, tt.input, Options{})
			for _, want := range tt.expected {
				assertContains(t, code, want)
			}
			assertContains(t, code, "ctx.save();")
			assertContains(t, code, "ctx.restore();\n  })();")
		})
	}
}

func TestGenerate_MoveDirections(t *testing.T) {
	tests := map[string]string{
		"up":    "animationState.y -= 3;",
		"down":  "animationState.y += 3;",
		"left":  "animationState.x -= 3;",
		"right": "animationState.x += 3;",
	}
	for dir, want := range tests {
		code := generate(t, "animate { move 3 "+dir+" }", Options{})
		assertContains(t, code, want)
	}
}

func TestGenerate_AnimationCommands(t *testing.T) {
	src := `animate {
  rotate 2
  scale 1.01
  fade 0.01
  bounce
  bounce 40
  wave 10 2
  orbit 100 100 50 1
  pulse 0.5 1.5
  wobble 15
  spring 200 150 0.2 0.9
}`
	code := generate(t, src, Options{})

	assertContains(t, code, "  // Animation loop\n  function animate() {\n    clear();\n")
	assertContains(t, code, "    animationState.rotation += 2;")
	assertContains(t, code, "    animationState.scale *= 1.01;")
	assertContains(t, code, "    animationState.opacity -= 0.01;")
	assertContains(t, code, "    // Bounce animation\n    animationState.y = Math.abs(Math.sin(time() * 2)) * 100;")
	assertContains(t, code, "animationState.y = Math.abs(Math.sin(time() * 2)) * 40;")
	assertContains(t, code, "    animationState.x = Math.sin(time() * 2) * 10;")
	assertContains(t, code, "    {\n      const orbitAngle = time() * 1;\n      animationState.x = 100 + Math.cos(orbitAngle) * 50;\n      animationState.y = 100 + Math.sin(orbitAngle) * 50;\n    }")
	assertContains(t, code, "const pulseValue = (Math.sin(time() * 1) + 1) / 2;")
	assertContains(t, code, "animationState.scale = 0.5 + (1.5 - 0.5) * pulseValue;")
	assertContains(t, code, "    animationState.rotation = Math.sin(time() * 5) * 15;")
	assertContains(t, code, "const springStiffness = 0.2 * 0.9;")
	assertContains(t, code, "const dx = 200 - animationState.x;")
	assertContains(t, code, "      animationState.y += dy * springStiffness;\n    }")
	assertContains(t, code, "    requestAnimationFrame(animate);\n  }\n  animate();\n")
}

func TestGenerate_SpringDefaults(t *testing.T) {
	code := generate(t, "animate { spring 1 2 }", Options{})
	assertContains(t, code, "const springStiffness = 0.1;")
}

func TestGenerate_SecondAnimateBlockIsRenamed(t *testing.T) {
	code := generate(t, "animate { rotate 1 }\nanimate { rotate 2 }", Options{})
	assertContains(t, code, "function animate() {")
	assertContains(t, code, "function animate2() {")
	assertContains(t, code, "requestAnimationFrame(animate2);")
	assertContains(t, code, "  animate2();\n")
}

func TestGenerate_RepeatedSceneNameIsRenamed(t *testing.T) {
	code := generate(t, "scene a { f() }\nscene a { g() }\nscene a2 { h() }", Options{})
	assertContains(t, code, "  function scene_a() {\n    f();\n  }\n  scene_a();\n")
	assertContains(t, code, "  function scene_a2() {\n    g();\n  }\n  scene_a2();\n")
	assertContains(t, code, "  function scene_a22() {\n    h();\n  }\n  scene_a22();\n")
	if n := strings.Count(code, "function scene_a() {"); n != 1 {
		t.Errorf("scene_a declared %d times", n)
	}
}

func TestGenerate_Statements(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Let", "let a = 1 + 2 * 3", "  let a = (1 + (2 * 3));\n"},
		{"Unary", "let n = -x", "  let n = -x;\n"},
		{"Double Negation", "let n = - -x", "  let n = -(-x);\n"},
		{"Assignment Statement", "a = b = 2", "  a = b = 2;\n"},
		{"Nested Assignment", "let v = 1 + (a = 2)", "  let v = (1 + (a = 2));\n"},
		{"Function", "fn add(a, b) {\n  return a + b\n}", "  function add(a, b) {\n    return (a + b);\n  }\n"},
		{"Bare Return", "fn f() { return }", "    return;\n"},
		{"If Else", "if x > 1 { f() } else { g() }", "  if ((x > 1)) {\n    f();\n  } else {\n    g();\n  }\n"},
		{"Repeat", "repeat 5 { f() }", "  for (let __i = 0; __i < 5; __i++) {\n    f();\n  }\n"},
		{"While", "while i < 3 { i = i + 1 }", "  while ((i < 3)) {\n    i = (i + 1);\n  }\n"},
		{"For", "for (let i = 0; i < 10; i = i + 1) { f(i) }", "  for (let i = 0; (i < 10); i = (i + 1)) {\n    f(i);\n  }\n"},
		{"For Expression Init", "for (i = 0; i < 2; ) { }", "  for (i = 0; (i < 2); ) {\n  }\n"},
		{"Scene", "scene intro { f() }", "  // Scene: intro\n  function scene_intro() {\n    f();\n  }\n  scene_intro();\n"},
		{"Import", `import "lib.mflow"`, "  // import \"lib.mflow\"\n"},
		{"Named Import", `import a, b from "lib.mflow"`, "  // import a, b from \"lib.mflow\"\n"},
		{"Literals", `let l = [1.5, "s", #fff, true, false, null]`, `  let l = [1.5, "s", "#fff", true, false, null];` + "\n"},
		{"Object", "let o = {a: 1, b: x}", `  let o = {"a": 1, "b": x};` + "\n"},
		{"Postfix", "o.items[2].draw(1)", "  o.items[2].draw(1);\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertContains(t, generate(t, tt.input, Options{}), tt.expected)
		})
	}
}

func TestGenerate_ShapeCapturesCollidingNames(t *testing.T) {
	code := generate(t, "let x = 10\nlet size = 4\ncircle at (x, 20) size size * 2 color #fff", Options{})
	assertContains(t, code, "  (function(size$, x$) {\n")
	assertContains(t, code, "    const x = x$;\n")
	assertContains(t, code, "    const size = (size$ * 2);\n")
	assertContains(t, code, "  })(size, x);\n")
}

func TestGenerate_NestedCaptureUsesOuterParameter(t *testing.T) {
	code := generate(t, "let color = #fff\nlet c = circle at (1, 2) size 3 color color", Options{})
	assertContains(t, code, "  let c = (function(color$) {\n")
	assertContains(t, code, "    const color = color$;\n")
	assertContains(t, code, "  })(color);\n")
	assertNotContains(t, code, "const color = color;")
}

func TestGenerate_Minify(t *testing.T) {
	code := generate(t, "fn f() {\n  circle at (1, 2) size 3 color #fff\n}\nanimate { bounce }", Options{Minify: true})

	for _, line := range strings.Split(strings.TrimSuffix(code, "\n"), "\n") {
		if line == "" {
			t.Errorf("minified output has a blank line:\n%s", code)
			break
		}
		if strings.HasPrefix(line, " ") {
			t.Errorf("minified line is indented: %q", line)
		}
		if strings.HasPrefix(line, "//") {
			t.Errorf("minified output kept comment %q", line)
		}
	}
	assertContains(t, code, "function updateTime() {")
	assertContains(t, code, "animationState.y = Math.abs(Math.sin(time() * 2)) * 100;")
}

func TestGenerate_Options(t *testing.T) {
	code := generate(t, "", Options{CanvasID: "stage", FPS: 60})
	assertContains(t, code, `document.getElementById("stage")`)
	assertContains(t, code, `console.error("Canvas not found: stage")`)
	assertContains(t, code, "mflow.time += 0.0167;")

	code = generate(t, "", Options{FPS: 30})
	assertContains(t, code, "mflow.time += 0.0333;")
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{42, "42"},
		{3.14, "3.14"},
		{0.1, "0.1"},
		{1.01, "1.01"},
		{123456789012, "123456789012"},
		{0.000001, "0.000001"},
		{1.5e-7, "1.5e-7"},
		{1e21, "1e+21"},
		{-2.5, "-2.5"},
	}
	for _, tt := range tests {
		if got := formatNumber(tt.in); got != tt.want {
			t.Errorf("formatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
