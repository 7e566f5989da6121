package compiler

import (
	"strings"
)

// runtimeBindings are the names a program may use without declaring them:
// everything the generated prelude defines plus the browser globals the
// output runs against.
var runtimeBindings = []string{
	// math
	"sin", "cos", "tan", "sqrt", "pow", "abs", "floor", "ceil", "round",
	"min", "max", "random", "noise", "PI", "TWO_PI", "HALF_PI",
	// runtime state
	"mouseX", "mouseY", "time", "frameCount",
	// helpers
	"lerp", "map", "constrain", "dist", "radians", "degrees",
	"rgb", "rgba", "hsl", "hsla",
	"ctx", "canvas", "animationState", "clear", "resetTransform", "applyTransform",
	// host
	"console", "Math", "String", "Number", "Array", "Object", "JSON", "window", "document",
}

// IsBuiltin reports whether name resolves in the universe scope.
func IsBuiltin(name string) bool {
	for _, b := range runtimeBindings {
		if b == name {
			return true
		}
	}
	return false
}

// preludeSource is written verbatim ahead of every program. Two spaces of
// leading indentation mark one nesting level. @CANVAS@ and @TICK@ are
// substituted from the compile options.
const preludeSource = `// MFlow compiled output - Enhanced Version
const canvas = document.getElementById("@CANVAS@");
if (!canvas) { console.error("Canvas not found: @CANVAS@"); }
const ctx = canvas.getContext("2d");
if (!ctx) { console.error("Cannot get 2D context"); }

// Initialize MFlow runtime
(function() {
  const mflow = {
    mouseX: 0,
    mouseY: 0,
    time: 0,
    frameCount: 0,
    keys: {},
    canvas: canvas,
    ctx: ctx
  };
  window.mflow = mflow;
  document.addEventListener("mousemove", (e) => {
    const rect = canvas.getBoundingClientRect();
    mflow.mouseX = e.clientX - rect.left;
    mflow.mouseY = e.clientY - rect.top;
  });
  document.addEventListener("keydown", (e) => { mflow.keys[e.key] = true; });
  document.addEventListener("keyup", (e) => { mflow.keys[e.key] = false; });
  function updateTime() { mflow.time += @TICK@; mflow.frameCount++; requestAnimationFrame(updateTime); }
  updateTime();
})();

// Math functions (built-in)
const sin = Math.sin, cos = Math.cos, tan = Math.tan;
const sqrt = Math.sqrt, pow = Math.pow, abs = Math.abs;
const floor = Math.floor, ceil = Math.ceil, round = Math.round;
const min = Math.min, max = Math.max;
const random = (min, max) => max === undefined ? Math.random() * min : Math.random() * (max - min) + min;
const noise = (x, y, z) => { const n = x * 12.9898 + y * 78.233 + (z || 0) * 37.719; return ((Math.sin(n) * 43758.5453123) % 1 + 1) / 2; };
const PI = Math.PI, TWO_PI = Math.PI * 2, HALF_PI = Math.PI / 2;
const mouseX = () => window.mflow.mouseX;
const mouseY = () => window.mflow.mouseY;
const time = () => window.mflow.time;
const frameCount = () => window.mflow.frameCount;

// Interpolation and color helpers
const lerp = (a, b, t) => a + (b - a) * t;
const map = (value, start1, stop1, start2, stop2) => start2 + (stop2 - start2) * ((value - start1) / (stop1 - start1));
const constrain = (value, lo, hi) => Math.min(Math.max(value, lo), hi);
const dist = (x1, y1, x2, y2) => Math.sqrt((x2 - x1) ** 2 + (y2 - y1) ** 2);
const radians = (deg) => deg * Math.PI / 180;
const degrees = (rad) => rad * 180 / Math.PI;
const rgb = (r, g, b) => "rgb(" + Math.round(r) + ", " + Math.round(g) + ", " + Math.round(b) + ")";
const rgba = (r, g, b, a) => "rgba(" + Math.round(r) + ", " + Math.round(g) + ", " + Math.round(b) + ", " + a + ")";
const hsl = (h, s, l) => "hsl(" + h + ", " + s + "%, " + l + "%)";
const hsla = (h, s, l, a) => "hsla(" + h + ", " + s + "%, " + l + "%, " + a + ")";

// Animation state
let animationState = {
  x: 0,
  y: 0,
  rotation: 0,
  scale: 1,
  opacity: 1
};

// Helper functions
function resetTransform() {
  ctx.setTransform(1, 0, 0, 1, 0, 0);
}

function applyTransform(x, y) {
  ctx.translate(x + animationState.x, y + animationState.y);
  ctx.rotate(animationState.rotation * Math.PI / 180);
  ctx.scale(animationState.scale, animationState.scale);
  ctx.globalAlpha = animationState.opacity;
}

// Clear canvas
function clear() {
  ctx.clearRect(0, 0, canvas.width, canvas.height);
}
`

// prelude renders the runtime header for one canvas and frame tick.
func prelude(canvasID, tick string) string {
	return strings.NewReplacer("@CANVAS@", canvasID, "@TICK@", tick).Replace(preludeSource)
}
