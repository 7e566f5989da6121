package e2e_tests

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"mflow/pkg/cli"
	"mflow/pkg/compiler"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func mflow(t *testing.T, dir string, args ...string) (int, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := &cli.App{
		Dir:    dir,
		Stdout: &stdout,
		Stderr: &stderr,
		Open:   func(string) error { return nil },
	}
	code := app.Run(context.Background(), args)
	return code, stdout.String() + stderr.String()
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	code, out := mflow(t, dir, args...)
	if code != 0 {
		t.Fatalf("mflow %s: exit %d\n%s", strings.Join(args, " "), code, out)
	}
	return out
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// TestProjectWorkflow drives a project from init through format, check,
// compile and run.
func TestProjectWorkflow(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "init")

	custom := filepath.Join(dir, "src", "shapes", "custom.mflow")
	if err := os.WriteFile(custom, []byte("fn star( x,y,r ){\npolygon at (x, y) sides 5 radius r color #FFD166\n}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := mustRun(t, dir, "format", "-w", "src/shapes/custom.mflow")
	if !strings.Contains(out, "formatted") {
		t.Errorf("format did not report the rewrite:\n%s", out)
	}
	if got, want := read(t, custom), "fn star(x, y, r) {\n  polygon at (x, y) sides 5 radius r color #FFD166\n}\n"; got != want {
		t.Errorf("formatted file = %q, want %q", got, want)
	}

	mustRun(t, dir, "check")
	mustRun(t, dir, "compile", "-s")

	js := read(t, filepath.Join(dir, "dist", "main.js"))
	for _, want := range []string{
		`document.getElementById("mflow-canvas")`,
		`// import star from "shapes/custom.mflow"`,
		"function drawSun(x, y) {",
		"star(200, 150, 40);",
		"//# sourceMappingURL=main.js.map",
	} {
		if !strings.Contains(js, want) {
			t.Errorf("dist/main.js missing %q", want)
		}
	}
	sm, err := compiler.ParseSourceMap([]byte(read(t, filepath.Join(dir, "dist", "main.js.map"))))
	if err != nil {
		t.Fatal(err)
	}
	lines, err := sm.Lines()
	if err != nil || len(lines) == 0 {
		t.Errorf("source map has no mapped lines: %v", err)
	}

	mustRun(t, dir, "run", "--no-open")
	page := read(t, filepath.Join(dir, "dist", "index.html"))
	if !strings.Contains(page, `<canvas id="mflow-canvas" width="800" height="600">`) {
		t.Errorf("unexpected page:\n%s", page)
	}
}

func TestTutorialPrograms(t *testing.T) {
	programs := map[string]string{
		"first_circle": "// Draw a circle at position (100, 100) with size 50\ncircle at (100, 100) size 50 color #F5A623",
		"shapes": `circle at (100, 150) size 40 color #F5A623
rect at (250, 150) width 80 height 60 color #E67E22
triangle (400, 100) (350, 200) (450, 200) color #D35400`,
		"variables": `let centerX = 250
let centerY = 200
let radius = 60

circle at (centerX, centerY) size radius color #F5A623`,
		"move": "circle at (50, 200) size 40 color #F5A623\n\nanimate {\n  move 2 right\n}",
		"rotate": "rect at (250, 200) width 80 height 80 color #E67E22\n\nanimate {\n  rotate 3\n}",
		"repeat": "repeat 5 {\n  circle at (250, 200) size 30 color #F5A623\n}",
		"scenes": `scene background {
  rect at (250, 250) width 500 height 500 color #1A1512
}

scene shapes {
  circle at (250, 200) size 50 color #F5A623
}`,
	}

	dir := t.TempDir()
	var names []string
	for name, src := range programs {
		file := name + ".mflow"
		if err := os.WriteFile(filepath.Join(dir, file), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
		names = append(names, file)
	}

	mustRun(t, dir, append([]string{"compile"}, names...)...)
	for name, src := range programs {
		got := read(t, filepath.Join(dir, name+".js"))
		if want := compiler.Compile(src).Output; got != want {
			t.Errorf("%s: CLI output differs from Compile", name)
		}
	}
}

func TestBrokenProgramReportsEveryError(t *testing.T) {
	dir := t.TempDir()
	src := "circle at (1 2) size 3 color #fff\nrect at (1, 1) width color #000\nlet ok = 1\n"
	if err := os.WriteFile(filepath.Join(dir, "broken.mflow"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	code, out := mflow(t, dir, "compile", "broken.mflow")
	if code != 1 {
		t.Fatalf("exit %d, want 1\n%s", code, out)
	}
	for _, want := range []string{"broken.mflow:1:14:", "broken.mflow:2:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "broken.js")); !os.IsNotExist(err) {
		t.Error("failed compile wrote output")
	}
}
