package compiler

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// CodeGen walks a Program and emits JavaScript for an HTML5 canvas. It does
// not require an error-free tree: it translates whatever nodes it is given.
//
// Every shape literal becomes an immediately invoked function that computes
// its fields into local consts and draws inside ctx.save()/ctx.restore().
// When a field expression reads a name that the drawing function also
// declares, that name is passed in as a parameter so the local const does
// not shadow the outer binding.
type CodeGen struct {
	e        *Emitter
	canvasID string
	tick     string

	renames  map[string]string // identifier -> spelling inside the current shape function
	bare     bool              // statement emitted without ";" and newline (for headers)
	animates int
	scenes   map[string]bool // scene function names already emitted
}

func newCodeGen(opts Options) *CodeGen {
	return &CodeGen{
		e:        newEmitter(opts.Minify),
		canvasID: opts.canvasID(),
		tick:     opts.tick(),
		scenes:   make(map[string]bool),
	}
}

// Generate translates prog using opts.
func Generate(prog *Program, opts Options) string {
	cg := newCodeGen(opts)
	cg.program(prog)
	return cg.e.String()
}

func (cg *CodeGen) program(prog *Program) {
	cg.e.block(prelude(strings.ReplaceAll(cg.canvasID, `"`, `\"`), cg.tick))
	cg.e.blank()
	cg.e.comment("Main program")
	cg.e.emitLine("(function main() {")
	cg.e.indented(func() { cg.stmts(prog.Body) })
	cg.e.emitLine("})();")
}

func (cg *CodeGen) stmts(list []Stmt) {
	for _, s := range list {
		cg.e.at(s.Pos(), func() { s.Accept(cg) })
	}
}

func (cg *CodeGen) expr(e Expr) { e.Accept(cg) }

// exprOr emits e, or fallback when e is absent.
func (cg *CodeGen) exprOr(e Expr, fallback string) {
	if e == nil {
		cg.e.emit(fallback)
		return
	}
	e.Accept(cg)
}

// topExpr emits e in a position where an assignment needs no parentheses.
func (cg *CodeGen) topExpr(e Expr) {
	if a, ok := e.(*AssignExpr); ok {
		cg.assign(a)
		return
	}
	e.Accept(cg)
}

func (cg *CodeGen) assign(a *AssignExpr) {
	cg.expr(a.Target)
	cg.e.emit(" = ")
	cg.topExpr(a.Value)
}

// terminate ends a simple statement.
func (cg *CodeGen) terminate() {
	if cg.bare {
		return
	}
	cg.e.emit(";")
	cg.e.newline()
}

// clause emits a simple statement without its terminator.
func (cg *CodeGen) clause(s Stmt) {
	cg.bare = true
	defer func() { cg.bare = false }()
	s.Accept(cg)
}

func (cg *CodeGen) body(list []Stmt) {
	cg.e.emit(" {")
	cg.e.newline()
	cg.e.indented(func() { cg.stmts(list) })
	cg.e.emitLine("}")
}

//  Statements

func (cg *CodeGen) VisitLet(s *LetStmt) {
	cg.e.emitf("let %s = ", s.Name.Name)
	cg.topExpr(s.Value)
	cg.terminate()
}

func (cg *CodeGen) VisitFunction(s *FunctionDecl) {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.Name
	}
	cg.e.emitf("function %s(%s)", s.Name.Name, strings.Join(params, ", "))
	cg.body(s.Body)
}

func (cg *CodeGen) VisitReturn(s *ReturnStmt) {
	cg.e.emit("return")
	if s.Value != nil {
		cg.e.emit(" ")
		cg.topExpr(s.Value)
	}
	cg.terminate()
}

func (cg *CodeGen) VisitIf(s *IfStmt) {
	cg.e.emit("if (")
	cg.expr(s.Cond)
	cg.e.emit(") {")
	cg.e.newline()
	cg.e.indented(func() { cg.stmts(s.Then) })
	if s.Else != nil {
		cg.e.emitLine("} else {")
		cg.e.indented(func() { cg.stmts(s.Else) })
	}
	cg.e.emitLine("}")
}

func (cg *CodeGen) VisitRepeat(s *RepeatStmt) {
	cg.e.emit("for (let __i = 0; __i < ")
	cg.expr(s.Times)
	cg.e.emit("; __i++)")
	cg.body(s.Body)
}

func (cg *CodeGen) VisitWhile(s *WhileStmt) {
	cg.e.emit("while (")
	cg.expr(s.Cond)
	cg.e.emit(")")
	cg.body(s.Body)
}

func (cg *CodeGen) VisitFor(s *ForStmt) {
	cg.e.emit("for (")
	if s.Init != nil {
		cg.clause(s.Init)
	}
	cg.e.emit("; ")
	if s.Cond != nil {
		cg.expr(s.Cond)
	}
	cg.e.emit("; ")
	if s.Update != nil {
		cg.topExpr(s.Update)
	}
	cg.e.emit(")")
	cg.body(s.Body)
}

func (cg *CodeGen) VisitImport(s *ImportStmt) {
	if len(s.Names) == 0 {
		cg.e.comment("import %s", strconv.Quote(s.Path))
		return
	}
	names := make([]string, len(s.Names))
	for i, n := range s.Names {
		names[i] = n.Name
	}
	cg.e.comment("import %s from %s", strings.Join(names, ", "), strconv.Quote(s.Path))
}

// VisitScene emits a scene as a function and calls it in place. A repeated
// scene name gets the same numeric suffix scheme as animate blocks.
func (cg *CodeGen) VisitScene(s *SceneBlock) {
	name := "scene_" + s.Name
	for n := 2; cg.scenes[name]; n++ {
		name = "scene_" + s.Name + strconv.Itoa(n)
	}
	cg.scenes[name] = true
	cg.e.comment("Scene: %s", s.Name)
	cg.e.emitf("function %s()", name)
	cg.body(s.Body)
	cg.e.emitLine("%s();", name)
}

// VisitAnimate emits a self-scheduling frame function. The first block in a
// program is named animate; later ones get a numeric suffix so that hoisting
// does not make every call site run the last block.
func (cg *CodeGen) VisitAnimate(s *AnimateBlock) {
	cg.animates++
	name := "animate"
	if cg.animates > 1 {
		name += strconv.Itoa(cg.animates)
	}
	cg.e.comment("Animation loop")
	cg.e.emitLine("function %s() {", name)
	cg.e.indented(func() {
		cg.e.emitLine("clear();")
		for _, c := range s.Commands {
			cg.e.at(c.Pos(), func() { c.Accept(cg) })
		}
		cg.e.emitLine("requestAnimationFrame(%s);", name)
	})
	cg.e.emitLine("}")
	cg.e.emitLine("%s();", name)
}

func (cg *CodeGen) VisitExprStmt(s *ExprStmt) {
	cg.topExpr(s.Expr)
	cg.terminate()
}

//  Animation commands

// update emits  animationState.<field> <op> <value>;
func (cg *CodeGen) update(field, op string, value Expr) {
	cg.e.emitf("animationState.%s %s ", field, op)
	cg.expr(value)
	cg.e.emit(";")
	cg.e.newline()
}

func (cg *CodeGen) VisitMove(c *Move) {
	axis, op := "x", "+="
	switch c.Direction {
	case "up":
		axis, op = "y", "-="
	case "down":
		axis = "y"
	case "left":
		op = "-="
	}
	cg.update(axis, op, c.Amount)
}

func (cg *CodeGen) VisitRotate(c *Rotate) { cg.update("rotation", "+=", c.Angle) }
func (cg *CodeGen) VisitScale(c *Scale)   { cg.update("scale", "*=", c.Factor) }
func (cg *CodeGen) VisitFade(c *Fade)     { cg.update("opacity", "-=", c.Amount) }

func (cg *CodeGen) VisitBounce(c *Bounce) {
	cg.e.comment("Bounce animation")
	cg.e.emit("animationState.y = Math.abs(Math.sin(time() * 2)) * ")
	cg.exprOr(c.Height, "100")
	cg.e.emit(";")
	cg.e.newline()
}

func (cg *CodeGen) VisitWave(c *Wave) {
	cg.e.emit("animationState.x = Math.sin(time() * ")
	cg.expr(c.Frequency)
	cg.e.emit(") * ")
	cg.expr(c.Amplitude)
	cg.e.emit(";")
	cg.e.newline()
}

// Orbit, pulse and spring declare consts, so each gets its own block.

func (cg *CodeGen) VisitOrbit(c *Orbit) {
	cg.e.emitLine("{")
	cg.e.indented(func() {
		cg.e.emit("const orbitAngle = time() * ")
		cg.expr(c.Speed)
		cg.e.emit(";")
		cg.e.newline()
		cg.e.emit("animationState.x = ")
		cg.expr(c.CenterX)
		cg.e.emit(" + Math.cos(orbitAngle) * ")
		cg.expr(c.Radius)
		cg.e.emit(";")
		cg.e.newline()
		cg.e.emit("animationState.y = ")
		cg.expr(c.CenterY)
		cg.e.emit(" + Math.sin(orbitAngle) * ")
		cg.expr(c.Radius)
		cg.e.emit(";")
		cg.e.newline()
	})
	cg.e.emitLine("}")
}

func (cg *CodeGen) VisitPulse(c *Pulse) {
	cg.e.emitLine("{")
	cg.e.indented(func() {
		cg.e.emit("const pulseValue = (Math.sin(time() * ")
		cg.exprOr(c.Speed, "1")
		cg.e.emit(") + 1) / 2;")
		cg.e.newline()
		cg.e.emit("animationState.scale = ")
		cg.expr(c.MinScale)
		cg.e.emit(" + (")
		cg.expr(c.MaxScale)
		cg.e.emit(" - ")
		cg.expr(c.MinScale)
		cg.e.emit(") * pulseValue;")
		cg.e.newline()
	})
	cg.e.emitLine("}")
}

func (cg *CodeGen) VisitWobble(c *Wobble) {
	cg.e.emit("animationState.rotation = Math.sin(time() * ")
	cg.exprOr(c.Speed, "5")
	cg.e.emit(") * ")
	cg.expr(c.Amount)
	cg.e.emit(";")
	cg.e.newline()
}

func (cg *CodeGen) VisitSpring(c *Spring) {
	cg.e.comment("Spring animation")
	cg.e.emitLine("{")
	cg.e.indented(func() {
		cg.e.emit("const springStiffness = ")
		cg.exprOr(c.Stiffness, "0.1")
		if c.Damping != nil {
			cg.e.emit(" * ")
			cg.expr(c.Damping)
		}
		cg.e.emit(";")
		cg.e.newline()
		cg.e.emit("const dx = ")
		cg.expr(c.TargetX)
		cg.e.emit(" - animationState.x;")
		cg.e.newline()
		cg.e.emit("const dy = ")
		cg.expr(c.TargetY)
		cg.e.emit(" - animationState.y;")
		cg.e.newline()
		cg.e.emitLine("animationState.x += dx * springStiffness;")
		cg.e.emitLine("animationState.y += dy * springStiffness;")
	})
	cg.e.emitLine("}")
}

//  Expressions

func (cg *CodeGen) VisitIdentifier(e *Identifier) {
	if name, ok := cg.renames[e.Name]; ok {
		cg.e.emit(name)
		return
	}
	cg.e.emit(e.Name)
}

func (cg *CodeGen) VisitNumber(e *NumberLiteral) { cg.e.emit(formatNumber(e.Value)) }

func (cg *CodeGen) VisitString(e *StringLiteral) {
	cg.e.emit(`"` + strings.ReplaceAll(e.Value, `"`, `\"`) + `"`)
}

func (cg *CodeGen) VisitColor(e *ColorLiteral) { cg.e.emit(`"` + e.Value + `"`) }

func (cg *CodeGen) VisitBoolean(e *BooleanLiteral) { cg.e.emit(strconv.FormatBool(e.Value)) }

func (cg *CodeGen) VisitNull(*NullLiteral) { cg.e.emit("null") }

func (cg *CodeGen) list(exprs []Expr) {
	for i, x := range exprs {
		if i > 0 {
			cg.e.emit(", ")
		}
		cg.expr(x)
	}
}

func (cg *CodeGen) VisitArray(e *ArrayLiteral) {
	cg.e.emit("[")
	cg.list(e.Elements)
	cg.e.emit("]")
}

func (cg *CodeGen) VisitObject(e *ObjectLiteral) {
	cg.e.emit("{")
	for i, p := range e.Properties {
		if i > 0 {
			cg.e.emit(", ")
		}
		cg.e.emitf("%q: ", p.Key)
		cg.expr(p.Value)
	}
	cg.e.emit("}")
}

// VisitUnary keeps nested negations apart so "- -x" never becomes "--x".
func (cg *CodeGen) VisitUnary(e *UnaryExpr) {
	cg.e.emit(operatorText[e.Op])
	if _, nested := e.Operand.(*UnaryExpr); nested {
		cg.e.emit("(")
		cg.expr(e.Operand)
		cg.e.emit(")")
		return
	}
	cg.expr(e.Operand)
}

func (cg *CodeGen) VisitBinary(e *BinaryExpr) {
	cg.e.emit("(")
	cg.expr(e.Left)
	cg.e.emitf(" %s ", operatorText[e.Op])
	cg.expr(e.Right)
	cg.e.emit(")")
}

// VisitAssign is reached only for assignments nested inside a larger
// expression; those need parentheses.
func (cg *CodeGen) VisitAssign(e *AssignExpr) {
	cg.e.emit("(")
	cg.assign(e)
	cg.e.emit(")")
}

func (cg *CodeGen) VisitCall(e *CallExpr) {
	cg.expr(e.Callee)
	cg.e.emit("(")
	cg.list(e.Args)
	cg.e.emit(")")
}

func (cg *CodeGen) VisitMember(e *MemberExpr) {
	cg.expr(e.Object)
	cg.e.emit("." + e.Property.Name)
}

func (cg *CodeGen) VisitIndex(e *IndexExpr) {
	cg.expr(e.Object)
	cg.e.emit("[")
	cg.expr(e.Index)
	cg.e.emit("]")
}

//  Shapes

// shapeLocals lists every const a shape's drawing function may declare.
var shapeLocals = map[string]bool{
	"x": true, "y": true, "size": true, "color": true, "w": true, "h": true,
	"sides": true, "radius": true, "rotation": true, "radiusX": true, "radiusY": true,
	"startAngle": true, "endAngle": true, "text": true, "fontSize": true,
}

// shape wraps draw in an immediately invoked function. Names read by fields
// that collide with the drawing locals are captured as "name$" parameters.
func (cg *CodeGen) shape(fields []Expr, draw func()) {
	var captured []string
	for name := range freeNames(fields...) {
		if shapeLocals[name] {
			captured = append(captured, name)
		}
	}
	sort.Strings(captured)

	outer := cg.renames
	inner := make(map[string]string, len(outer)+len(captured))
	for k, v := range outer {
		inner[k] = v
	}
	params := make([]string, len(captured))
	for i, name := range captured {
		params[i] = name + "$"
		inner[name] = params[i]
	}

	cg.e.emitf("(function(%s) {", strings.Join(params, ", "))
	cg.e.newline()
	cg.renames = inner
	cg.e.indented(func() {
		cg.e.emitLine("ctx.save();")
		draw()
		cg.e.emitLine("ctx.restore();")
	})
	cg.renames = outer
	cg.e.emit("})(")
	for i, name := range captured {
		if i > 0 {
			cg.e.emit(", ")
		}
		cg.VisitIdentifier(&Identifier{Name: name})
	}
	cg.e.emit(")")
}

// local emits  const name = value;
func (cg *CodeGen) local(name string, value Expr) {
	cg.e.emitf("const %s = ", name)
	cg.expr(value)
	cg.e.emit(";")
	cg.e.newline()
}

func (cg *CodeGen) position(at Point) {
	cg.local("x", at.X)
	cg.local("y", at.Y)
}

// pathPoint emits  ctx.<op>(x, y);
func (cg *CodeGen) pathPoint(op string, pt Point) {
	cg.e.emitf("ctx.%s(", op)
	cg.expr(pt.X)
	cg.e.emit(", ")
	cg.expr(pt.Y)
	cg.e.emit(");")
	cg.e.newline()
}

func (cg *CodeGen) VisitCircle(s *Circle) {
	cg.shape([]Expr{s.At.X, s.At.Y, s.Size, s.Color}, func() {
		cg.position(s.At)
		cg.local("size", s.Size)
		cg.local("color", s.Color)
		cg.e.emitLine("applyTransform(x, y);")
		cg.e.emitLine("ctx.beginPath();")
		cg.e.emitLine("ctx.arc(0, 0, size, 0, Math.PI * 2);")
		cg.e.emitLine("ctx.fillStyle = color;")
		cg.e.emitLine("ctx.fill();")
	})
}

func (cg *CodeGen) VisitRect(s *Rect) {
	cg.shape([]Expr{s.At.X, s.At.Y, s.Width, s.Height, s.Color}, func() {
		cg.position(s.At)
		cg.local("w", s.Width)
		cg.local("h", s.Height)
		cg.local("color", s.Color)
		cg.e.emitLine("applyTransform(x, y);")
		cg.e.emitLine("ctx.fillStyle = color;")
		cg.e.emitLine("ctx.fillRect(-w/2, -h/2, w, h);")
	})
}

func (cg *CodeGen) VisitLine(s *Line) {
	cg.shape([]Expr{s.Start.X, s.Start.Y, s.End.X, s.End.Y, s.Color}, func() {
		cg.local("color", s.Color)
		cg.e.emitLine("ctx.strokeStyle = color;")
		cg.e.emitLine("ctx.beginPath();")
		cg.pathPoint("moveTo", s.Start)
		cg.pathPoint("lineTo", s.End)
		cg.e.emitLine("ctx.stroke();")
	})
}

func (cg *CodeGen) VisitTriangle(s *Triangle) {
	fields := []Expr{s.Color}
	for _, pt := range s.Points {
		fields = append(fields, pt.X, pt.Y)
	}
	cg.shape(fields, func() {
		cg.local("color", s.Color)
		cg.e.emitLine("ctx.fillStyle = color;")
		cg.e.emitLine("ctx.beginPath();")
		for i, pt := range s.Points {
			op := "lineTo"
			if i == 0 {
				op = "moveTo"
			}
			cg.pathPoint(op, pt)
		}
		cg.e.emitLine("ctx.closePath();")
		cg.e.emitLine("ctx.fill();")
	})
}

func (cg *CodeGen) VisitPolygon(s *Polygon) {
	cg.shape([]Expr{s.At.X, s.At.Y, s.Sides, s.Radius, s.Color, s.Rotation}, func() {
		cg.position(s.At)
		cg.local("sides", s.Sides)
		cg.local("radius", s.Radius)
		cg.local("color", s.Color)
		cg.e.emit("const rotation = ")
		cg.exprOr(s.Rotation, "0")
		cg.e.emit(";")
		cg.e.newline()
		cg.e.emitLine("ctx.fillStyle = color;")
		cg.e.emitLine("ctx.beginPath();")
		cg.e.emitLine("for (let i = 0; i < sides; i++) {")
		cg.e.indented(func() {
			cg.e.emitLine("const angle = (i * TWO_PI / sides) + (rotation || 0);")
			cg.e.emitLine("const px = x + Math.cos(angle) * radius;")
			cg.e.emitLine("const py = y + Math.sin(angle) * radius;")
			cg.e.emitLine("if (i === 0) ctx.moveTo(px, py);")
			cg.e.emitLine("else ctx.lineTo(px, py);")
		})
		cg.e.emitLine("}")
		cg.e.emitLine("ctx.closePath();")
		cg.e.emitLine("ctx.fill();")
	})
}

// VisitEllipse draws axis-aligned; a parsed rotation is not applied.
func (cg *CodeGen) VisitEllipse(s *Ellipse) {
	cg.shape([]Expr{s.At.X, s.At.Y, s.RadiusX, s.RadiusY, s.Color}, func() {
		cg.position(s.At)
		cg.local("radiusX", s.RadiusX)
		cg.local("radiusY", s.RadiusY)
		cg.local("color", s.Color)
		cg.e.emitLine("ctx.fillStyle = color;")
		cg.e.emitLine("ctx.beginPath();")
		cg.e.emitLine("ctx.ellipse(x, y, radiusX, radiusY, 0, 0, TWO_PI);")
		cg.e.emitLine("ctx.fill();")
	})
}

func (cg *CodeGen) VisitArc(s *Arc) {
	cg.shape([]Expr{s.At.X, s.At.Y, s.Radius, s.StartAngle, s.EndAngle, s.Color}, func() {
		cg.position(s.At)
		cg.local("radius", s.Radius)
		cg.e.emit("const startAngle = ")
		cg.expr(s.StartAngle)
		cg.e.emit(" * Math.PI / 180;")
		cg.e.newline()
		cg.e.emit("const endAngle = ")
		cg.expr(s.EndAngle)
		cg.e.emit(" * Math.PI / 180;")
		cg.e.newline()
		cg.local("color", s.Color)
		cg.e.emitLine("ctx.strokeStyle = color;")
		cg.e.emitLine("ctx.beginPath();")
		cg.e.emitLine("ctx.arc(x, y, radius, startAngle, endAngle, %t);", s.Counterclockwise)
		cg.e.emitLine("ctx.stroke();")
	})
}

func (cg *CodeGen) VisitText(s *Text) {
	cg.shape([]Expr{s.At.X, s.At.Y, s.Content, s.Color, s.Font, s.Size}, func() {
		cg.position(s.At)
		cg.local("text", s.Content)
		cg.local("color", s.Color)
		if s.Font != nil {
			cg.e.emit("ctx.font = ")
			cg.expr(s.Font)
			cg.e.emit(";")
			cg.e.newline()
		}
		if s.Size != nil {
			cg.local("fontSize", s.Size)
			cg.e.emitLine(`ctx.font = (fontSize || 16) + "px sans-serif";`)
		}
		cg.e.emitLine("ctx.fillStyle = color;")
		if s.Align != "" {
			cg.e.emitLine(`ctx.textAlign = %q;`, s.Align)
		}
		cg.e.emitLine("ctx.fillText(String(text), x, y);")
	})
}

// formatNumber renders v the way a JavaScript engine prints a number:
// plain decimal between 1e-6 and 1e21, exponent form outside that range.
func formatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		digits := strings.TrimLeft(exp[1:], "0")
		return mant + "e" + exp[:1] + digits
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var (
	_ ExprVisitor    = (*CodeGen)(nil)
	_ StmtVisitor    = (*CodeGen)(nil)
	_ CommandVisitor = (*CodeGen)(nil)
)
