package compiler

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Analyzer walks a Program checking that every identifier resolves and that
// no name is declared twice in one scope. It never mutates the tree and never
// stops early: all diagnostics for the program are collected in one pass.
//
// Function bodies and scene bodies open a scope; if, repeat, while and for
// bodies do not.
type Analyzer struct {
	syms  *SymbolTable
	diags []Diagnostic
	log   zerolog.Logger
}

func NewAnalyzer(log zerolog.Logger) *Analyzer {
	return &Analyzer{log: log}
}

// Analyze checks prog and returns its semantic diagnostics in visit order.
func (a *Analyzer) Analyze(prog *Program) []Diagnostic {
	a.syms = NewSymbolTable()
	a.diags = nil
	a.stmts(prog.Body)
	return a.diags
}

// Symbols returns the table left behind by the last Analyze call.
func (a *Analyzer) Symbols() *SymbolTable { return a.syms }

// Analyze is a convenience wrapper around a silent Analyzer.
func Analyze(prog *Program) []Diagnostic {
	return NewAnalyzer(zerolog.Nop()).Analyze(prog)
}

func (a *Analyzer) errorf(pos Position, format string, args ...any) {
	d := Diagnostic{Kind: SemanticError, Message: fmt.Sprintf(format, args...), Line: pos.Line, Column: pos.Column}
	a.log.Debug().Int("line", d.Line).Int("column", d.Column).Msg(d.Message)
	a.diags = append(a.diags, d)
}

func (a *Analyzer) declare(id *Identifier, kind SymbolKind) {
	sym := Symbol{Name: id.Name, Kind: kind, Line: id.Line, Column: id.Column}
	if _, ok := a.syms.Declare(sym); !ok {
		a.errorf(id.Pos(), "Variable '%s' is already declared in this scope", id.Name)
	}
}

func (a *Analyzer) stmts(list []Stmt) {
	for _, s := range list {
		s.Accept(a)
	}
}

// expr visits e, which may be nil for an absent optional field.
func (a *Analyzer) expr(e Expr) {
	if e != nil {
		e.Accept(a)
	}
}

func (a *Analyzer) point(pt Point) {
	a.expr(pt.X)
	a.expr(pt.Y)
}

//  Statements

func (a *Analyzer) VisitLet(s *LetStmt) {
	a.expr(s.Value)
	a.declare(s.Name, SymVariable)
}

func (a *Analyzer) VisitFunction(s *FunctionDecl) {
	a.declare(s.Name, SymFunction)
	a.syms.WithScope(func() {
		for _, param := range s.Params {
			a.declare(param, SymParameter)
		}
		a.stmts(s.Body)
	})
}

func (a *Analyzer) VisitReturn(s *ReturnStmt) { a.expr(s.Value) }

func (a *Analyzer) VisitIf(s *IfStmt) {
	a.expr(s.Cond)
	a.stmts(s.Then)
	a.stmts(s.Else)
}

func (a *Analyzer) VisitRepeat(s *RepeatStmt) {
	a.expr(s.Times)
	a.stmts(s.Body)
}

func (a *Analyzer) VisitWhile(s *WhileStmt) {
	a.expr(s.Cond)
	a.stmts(s.Body)
}

func (a *Analyzer) VisitFor(s *ForStmt) {
	if s.Init != nil {
		s.Init.Accept(a)
	}
	a.expr(s.Cond)
	a.expr(s.Update)
	a.stmts(s.Body)
}

func (a *Analyzer) VisitImport(s *ImportStmt) {
	for _, name := range s.Names {
		a.declare(name, SymImport)
	}
}

func (a *Analyzer) VisitScene(s *SceneBlock) {
	a.syms.WithScope(func() { a.stmts(s.Body) })
}

func (a *Analyzer) VisitAnimate(s *AnimateBlock) {
	for _, cmd := range s.Commands {
		cmd.Accept(a)
	}
}

func (a *Analyzer) VisitExprStmt(s *ExprStmt) { a.expr(s.Expr) }

//  Expressions

func (a *Analyzer) VisitIdentifier(e *Identifier) {
	if _, ok := a.syms.Lookup(e.Name); !ok {
		a.errorf(e.Pos(), "Undefined variable '%s'", e.Name)
	}
}

func (a *Analyzer) VisitNumber(*NumberLiteral)   {}
func (a *Analyzer) VisitString(*StringLiteral)   {}
func (a *Analyzer) VisitColor(*ColorLiteral)     {}
func (a *Analyzer) VisitBoolean(*BooleanLiteral) {}
func (a *Analyzer) VisitNull(*NullLiteral)       {}

func (a *Analyzer) VisitArray(e *ArrayLiteral) {
	for _, el := range e.Elements {
		a.expr(el)
	}
}

func (a *Analyzer) VisitObject(e *ObjectLiteral) {
	for _, p := range e.Properties {
		a.expr(p.Value)
	}
}

func (a *Analyzer) VisitUnary(e *UnaryExpr) { a.expr(e.Operand) }

func (a *Analyzer) VisitBinary(e *BinaryExpr) {
	a.expr(e.Left)
	a.expr(e.Right)
}

func (a *Analyzer) VisitAssign(e *AssignExpr) {
	a.expr(e.Target)
	a.expr(e.Value)
}

func (a *Analyzer) VisitCall(e *CallExpr) {
	a.expr(e.Callee)
	for _, arg := range e.Args {
		a.expr(arg)
	}
}

// VisitMember checks only the object; property names are not bindings.
func (a *Analyzer) VisitMember(e *MemberExpr) { a.expr(e.Object) }

func (a *Analyzer) VisitIndex(e *IndexExpr) {
	a.expr(e.Object)
	a.expr(e.Index)
}

func (a *Analyzer) VisitCircle(e *Circle) {
	a.point(e.At)
	a.expr(e.Size)
	a.expr(e.Color)
}

func (a *Analyzer) VisitRect(e *Rect) {
	a.point(e.At)
	a.expr(e.Width)
	a.expr(e.Height)
	a.expr(e.Color)
}

func (a *Analyzer) VisitLine(e *Line) {
	a.point(e.Start)
	a.point(e.End)
	a.expr(e.Color)
}

func (a *Analyzer) VisitTriangle(e *Triangle) {
	for _, pt := range e.Points {
		a.point(pt)
	}
	a.expr(e.Color)
}

func (a *Analyzer) VisitPolygon(e *Polygon) {
	a.point(e.At)
	a.expr(e.Sides)
	a.expr(e.Radius)
	a.expr(e.Color)
	a.expr(e.Rotation)
}

func (a *Analyzer) VisitEllipse(e *Ellipse) {
	a.point(e.At)
	a.expr(e.RadiusX)
	a.expr(e.RadiusY)
	a.expr(e.Color)
	a.expr(e.Rotation)
}

func (a *Analyzer) VisitArc(e *Arc) {
	a.point(e.At)
	a.expr(e.Radius)
	a.expr(e.StartAngle)
	a.expr(e.EndAngle)
	a.expr(e.Color)
}

func (a *Analyzer) VisitText(e *Text) {
	a.point(e.At)
	a.expr(e.Content)
	a.expr(e.Color)
	a.expr(e.Font)
	a.expr(e.Size)
}

//  Animation commands: arguments get identifier resolution only.

func (a *Analyzer) VisitMove(c *Move)     { a.expr(c.Amount) }
func (a *Analyzer) VisitRotate(c *Rotate) { a.expr(c.Angle) }
func (a *Analyzer) VisitScale(c *Scale)   { a.expr(c.Factor) }
func (a *Analyzer) VisitFade(c *Fade)     { a.expr(c.Amount) }
func (a *Analyzer) VisitBounce(c *Bounce) { a.expr(c.Height) }

func (a *Analyzer) VisitWave(c *Wave) {
	a.expr(c.Amplitude)
	a.expr(c.Frequency)
}

func (a *Analyzer) VisitOrbit(c *Orbit) {
	a.expr(c.CenterX)
	a.expr(c.CenterY)
	a.expr(c.Radius)
	a.expr(c.Speed)
}

func (a *Analyzer) VisitPulse(c *Pulse) {
	a.expr(c.MinScale)
	a.expr(c.MaxScale)
	a.expr(c.Speed)
}

func (a *Analyzer) VisitWobble(c *Wobble) {
	a.expr(c.Amount)
	a.expr(c.Speed)
}

func (a *Analyzer) VisitSpring(c *Spring) {
	a.expr(c.TargetX)
	a.expr(c.TargetY)
	a.expr(c.Stiffness)
	a.expr(c.Damping)
}

var (
	_ ExprVisitor    = (*Analyzer)(nil)
	_ StmtVisitor    = (*Analyzer)(nil)
	_ CommandVisitor = (*Analyzer)(nil)
)
