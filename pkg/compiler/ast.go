package compiler

import (
	"fmt"
	"strings"
)

// Position is the 1-based source location a node was parsed from.
type Position struct {
	Line   int
	Column int
}

// Pos returns the position itself so embedding structs satisfy Node.
func (p Position) Pos() Position { return p }

func posOf(tok Token) Position { return Position{Line: tok.Line, Column: tok.Column} }

// Node is implemented by every AST node.
type Node interface {
	Pos() Position
	String() string
}

// Every consumer of the tree implements one of the visitor interfaces below.
// Adding a node type means adding a method here, which breaks every walker
// until it handles the new node.

// ExprVisitor has one method per expression and shape node.
type ExprVisitor interface {
	VisitIdentifier(*Identifier)
	VisitNumber(*NumberLiteral)
	VisitString(*StringLiteral)
	VisitColor(*ColorLiteral)
	VisitBoolean(*BooleanLiteral)
	VisitNull(*NullLiteral)
	VisitArray(*ArrayLiteral)
	VisitObject(*ObjectLiteral)
	VisitUnary(*UnaryExpr)
	VisitBinary(*BinaryExpr)
	VisitAssign(*AssignExpr)
	VisitCall(*CallExpr)
	VisitMember(*MemberExpr)
	VisitIndex(*IndexExpr)
	VisitCircle(*Circle)
	VisitRect(*Rect)
	VisitLine(*Line)
	VisitTriangle(*Triangle)
	VisitPolygon(*Polygon)
	VisitEllipse(*Ellipse)
	VisitArc(*Arc)
	VisitText(*Text)
}

// StmtVisitor has one method per statement node.
type StmtVisitor interface {
	VisitLet(*LetStmt)
	VisitFunction(*FunctionDecl)
	VisitReturn(*ReturnStmt)
	VisitIf(*IfStmt)
	VisitRepeat(*RepeatStmt)
	VisitWhile(*WhileStmt)
	VisitFor(*ForStmt)
	VisitImport(*ImportStmt)
	VisitScene(*SceneBlock)
	VisitAnimate(*AnimateBlock)
	VisitExprStmt(*ExprStmt)
}

// CommandVisitor has one method per animation command.
type CommandVisitor interface {
	VisitMove(*Move)
	VisitRotate(*Rotate)
	VisitScale(*Scale)
	VisitFade(*Fade)
	VisitBounce(*Bounce)
	VisitWave(*Wave)
	VisitOrbit(*Orbit)
	VisitPulse(*Pulse)
	VisitWobble(*Wobble)
	VisitSpring(*Spring)
}

//  Expression nodes

// Expr is implemented by every node that produces a value.
type Expr interface {
	Node
	Accept(ExprVisitor)
	exprNode()
}

// Identifier is a reference to a named binding.
type Identifier struct {
	Position
	Name string
}

// NumberLiteral is a decimal constant.
type NumberLiteral struct {
	Position
	Value float64
}

// StringLiteral holds the unescaped string value.
type StringLiteral struct {
	Position
	Value string
}

// ColorLiteral holds the color text including its leading '#'.
type ColorLiteral struct {
	Position
	Value string
}

type BooleanLiteral struct {
	Position
	Value bool
}

type NullLiteral struct {
	Position
}

// ArrayLiteral represents [a, b, c].
type ArrayLiteral struct {
	Position
	Elements []Expr
}

// Property is one key: value entry of an object literal.
type Property struct {
	Key   string
	Value Expr
}

// ObjectLiteral represents {key: value, ...}. Keys keep source order.
type ObjectLiteral struct {
	Position
	Properties []Property
}

// UnaryExpr represents -Operand.
type UnaryExpr struct {
	Position
	Op      TokenType
	Operand Expr
}

// BinaryExpr represents a binary operation: Left Op Right.
//
//	x + 1
//	^ ^ ^
//	| | |
//	| | Right
//	| Op
//	Left
type BinaryExpr struct {
	Position
	Op    TokenType
	Left  Expr
	Right Expr
}

// AssignExpr represents Target = Value. Target is an Identifier,
// MemberExpr or IndexExpr.
type AssignExpr struct {
	Position
	Target Expr
	Value  Expr
}

// CallExpr represents Callee(Args...).
type CallExpr struct {
	Position
	Callee Expr
	Args   []Expr
}

// MemberExpr represents Object.Property.
type MemberExpr struct {
	Position
	Object   Expr
	Property *Identifier
}

// IndexExpr represents Object[Index].
type IndexExpr struct {
	Position
	Object Expr
	Index  Expr
}

//  Shape nodes

// Point is an (x, y) pair inside a shape literal.
type Point struct {
	X Expr
	Y Expr
}

func (p Point) String() string { return fmt.Sprintf("(%s, %s)", p.X, p.Y) }

// Circle is  circle at (x, y) size s color c
type Circle struct {
	Position
	At    Point
	Size  Expr
	Color Expr
}

// Rect is  rect at (x, y) width w height h color c
type Rect struct {
	Position
	At     Point
	Width  Expr
	Height Expr
	Color  Expr
}

// Line is  line (x1, y1) (x2, y2) color c
type Line struct {
	Position
	Start Point
	End   Point
	Color Expr
}

// Triangle is  triangle (x, y) (x, y) (x, y) color c
type Triangle struct {
	Position
	Points [3]Point
	Color  Expr
}

// Polygon is  polygon at (x, y) sides n radius r color c [rotate e]
type Polygon struct {
	Position
	At       Point
	Sides    Expr
	Radius   Expr
	Color    Expr
	Rotation Expr // nil when absent
}

// Ellipse is  ellipse at (x, y) rx ry color c [rotate e]
// Rotation is parsed and analyzed but the drawing template always uses 0.
type Ellipse struct {
	Position
	At       Point
	RadiusX  Expr
	RadiusY  Expr
	Color    Expr
	Rotation Expr // nil when absent
}

// Arc is  arc at (x, y) radius r startAngle a endAngle b color c
// The parser never sets Counterclockwise.
type Arc struct {
	Position
	At               Point
	Radius           Expr
	StartAngle       Expr
	EndAngle         Expr
	Color            Expr
	Counterclockwise bool
}

// Text is  text at (x, y) content color c [font "f"] [size s]
// Font is kept only when it is a string literal. Align is never set by the parser.
type Text struct {
	Position
	At      Point
	Content Expr
	Color   Expr
	Font    Expr // nil when absent
	Size    Expr // nil when absent
	Align   string
}

func (*Identifier) exprNode()     {}
func (*NumberLiteral) exprNode()  {}
func (*StringLiteral) exprNode()  {}
func (*ColorLiteral) exprNode()   {}
func (*BooleanLiteral) exprNode() {}
func (*NullLiteral) exprNode()    {}
func (*ArrayLiteral) exprNode()   {}
func (*ObjectLiteral) exprNode()  {}
func (*UnaryExpr) exprNode()      {}
func (*BinaryExpr) exprNode()     {}
func (*AssignExpr) exprNode()     {}
func (*CallExpr) exprNode()       {}
func (*MemberExpr) exprNode()     {}
func (*IndexExpr) exprNode()      {}
func (*Circle) exprNode()         {}
func (*Rect) exprNode()           {}
func (*Line) exprNode()           {}
func (*Triangle) exprNode()       {}
func (*Polygon) exprNode()        {}
func (*Ellipse) exprNode()        {}
func (*Arc) exprNode()            {}
func (*Text) exprNode()           {}

func (e *Identifier) Accept(v ExprVisitor)     { v.VisitIdentifier(e) }
func (e *NumberLiteral) Accept(v ExprVisitor)  { v.VisitNumber(e) }
func (e *StringLiteral) Accept(v ExprVisitor)  { v.VisitString(e) }
func (e *ColorLiteral) Accept(v ExprVisitor)   { v.VisitColor(e) }
func (e *BooleanLiteral) Accept(v ExprVisitor) { v.VisitBoolean(e) }
func (e *NullLiteral) Accept(v ExprVisitor)    { v.VisitNull(e) }
func (e *ArrayLiteral) Accept(v ExprVisitor)   { v.VisitArray(e) }
func (e *ObjectLiteral) Accept(v ExprVisitor)  { v.VisitObject(e) }
func (e *UnaryExpr) Accept(v ExprVisitor)      { v.VisitUnary(e) }
func (e *BinaryExpr) Accept(v ExprVisitor)     { v.VisitBinary(e) }
func (e *AssignExpr) Accept(v ExprVisitor)     { v.VisitAssign(e) }
func (e *CallExpr) Accept(v ExprVisitor)       { v.VisitCall(e) }
func (e *MemberExpr) Accept(v ExprVisitor)     { v.VisitMember(e) }
func (e *IndexExpr) Accept(v ExprVisitor)      { v.VisitIndex(e) }
func (e *Circle) Accept(v ExprVisitor)         { v.VisitCircle(e) }
func (e *Rect) Accept(v ExprVisitor)           { v.VisitRect(e) }
func (e *Line) Accept(v ExprVisitor)           { v.VisitLine(e) }
func (e *Triangle) Accept(v ExprVisitor)       { v.VisitTriangle(e) }
func (e *Polygon) Accept(v ExprVisitor)        { v.VisitPolygon(e) }
func (e *Ellipse) Accept(v ExprVisitor)        { v.VisitEllipse(e) }
func (e *Arc) Accept(v ExprVisitor)            { v.VisitArc(e) }
func (e *Text) Accept(v ExprVisitor)           { v.VisitText(e) }

func (e *Identifier) String() string    { return e.Name }
func (e *NumberLiteral) String() string { return formatNumber(e.Value) }
func (e *StringLiteral) String() string { return fmt.Sprintf("%q", e.Value) }
func (e *ColorLiteral) String() string  { return e.Value }
func (e *BooleanLiteral) String() string {
	if e.Value {
		return "true"
	}
	return "false"
}
func (e *NullLiteral) String() string  { return "null" }
func (e *ArrayLiteral) String() string { return "[" + joinExprs(e.Elements) + "]" }
func (e *ObjectLiteral) String() string {
	parts := make([]string, len(e.Properties))
	for i, p := range e.Properties {
		parts[i] = fmt.Sprintf("%s: %s", p.Key, p.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (e *UnaryExpr) String() string { return fmt.Sprintf("(%s%s)", operatorText[e.Op], e.Operand) }
func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, operatorText[e.Op], e.Right)
}
func (e *AssignExpr) String() string { return fmt.Sprintf("(%s = %s)", e.Target, e.Value) }
func (e *CallExpr) String() string   { return fmt.Sprintf("%s(%s)", e.Callee, joinExprs(e.Args)) }
func (e *MemberExpr) String() string { return fmt.Sprintf("%s.%s", e.Object, e.Property) }
func (e *IndexExpr) String() string  { return fmt.Sprintf("%s[%s]", e.Object, e.Index) }

func (s *Circle) String() string {
	return fmt.Sprintf("Circle(at %s size %s color %s)", s.At, s.Size, s.Color)
}
func (s *Rect) String() string {
	return fmt.Sprintf("Rect(at %s width %s height %s color %s)", s.At, s.Width, s.Height, s.Color)
}
func (s *Line) String() string {
	return fmt.Sprintf("Line(%s %s color %s)", s.Start, s.End, s.Color)
}
func (s *Triangle) String() string {
	return fmt.Sprintf("Triangle(%s %s %s color %s)", s.Points[0], s.Points[1], s.Points[2], s.Color)
}
func (s *Polygon) String() string {
	out := fmt.Sprintf("Polygon(at %s sides %s radius %s color %s", s.At, s.Sides, s.Radius, s.Color)
	if s.Rotation != nil {
		out += fmt.Sprintf(" rotate %s", s.Rotation)
	}
	return out + ")"
}
func (s *Ellipse) String() string {
	out := fmt.Sprintf("Ellipse(at %s %s %s color %s", s.At, s.RadiusX, s.RadiusY, s.Color)
	if s.Rotation != nil {
		out += fmt.Sprintf(" rotate %s", s.Rotation)
	}
	return out + ")"
}
func (s *Arc) String() string {
	return fmt.Sprintf("Arc(at %s radius %s startAngle %s endAngle %s color %s)",
		s.At, s.Radius, s.StartAngle, s.EndAngle, s.Color)
}
func (s *Text) String() string {
	out := fmt.Sprintf("Text(at %s %s color %s", s.At, s.Content, s.Color)
	if s.Font != nil {
		out += fmt.Sprintf(" font %s", s.Font)
	}
	if s.Size != nil {
		out += fmt.Sprintf(" size %s", s.Size)
	}
	return out + ")"
}

//  Statement nodes

// Stmt is implemented by every node that does not produce a value.
type Stmt interface {
	Node
	Accept(StmtVisitor)
	stmtNode()
}

// LetStmt represents  let name = value
type LetStmt struct {
	Position
	Name  *Identifier
	Value Expr
}

// FunctionDecl represents  fn name(params) { body }
type FunctionDecl struct {
	Position
	Name   *Identifier
	Params []*Identifier
	Body   []Stmt
}

// ReturnStmt represents  return [value]
type ReturnStmt struct {
	Position
	Value Expr // nil for a bare return
}

// IfStmt represents  if cond { then } [else { else }]
type IfStmt struct {
	Position
	Cond Expr
	Then []Stmt
	Else []Stmt // nil when there is no else branch
}

// RepeatStmt represents  repeat times { body }
type RepeatStmt struct {
	Position
	Times Expr
	Body  []Stmt
}

// WhileStmt represents  while cond { body }
type WhileStmt struct {
	Position
	Cond Expr
	Body []Stmt
}

// ForStmt represents  for (init; cond; update) { body }
// Init is a *LetStmt, an *ExprStmt or nil; Update may be nil.
type ForStmt struct {
	Position
	Init   Stmt
	Cond   Expr
	Update Expr
	Body   []Stmt
}

// ImportStmt represents  import "path"  or  import a, b from "path"
type ImportStmt struct {
	Position
	Names []*Identifier
	Path  string
}

// SceneBlock represents  scene name { body }
type SceneBlock struct {
	Position
	Name string
	Body []Stmt
}

// AnimateBlock represents  animate { commands }
type AnimateBlock struct {
	Position
	Commands []Command
}

// ExprStmt represents an expression evaluated for its side effects,
// usually a shape literal or a call.
type ExprStmt struct {
	Position
	Expr Expr
}

func (*LetStmt) stmtNode()      {}
func (*FunctionDecl) stmtNode() {}
func (*ReturnStmt) stmtNode()   {}
func (*IfStmt) stmtNode()       {}
func (*RepeatStmt) stmtNode()   {}
func (*WhileStmt) stmtNode()    {}
func (*ForStmt) stmtNode()      {}
func (*ImportStmt) stmtNode()   {}
func (*SceneBlock) stmtNode()   {}
func (*AnimateBlock) stmtNode() {}
func (*ExprStmt) stmtNode()     {}

func (s *LetStmt) Accept(v StmtVisitor)      { v.VisitLet(s) }
func (s *FunctionDecl) Accept(v StmtVisitor) { v.VisitFunction(s) }
func (s *ReturnStmt) Accept(v StmtVisitor)   { v.VisitReturn(s) }
func (s *IfStmt) Accept(v StmtVisitor)       { v.VisitIf(s) }
func (s *RepeatStmt) Accept(v StmtVisitor)   { v.VisitRepeat(s) }
func (s *WhileStmt) Accept(v StmtVisitor)    { v.VisitWhile(s) }
func (s *ForStmt) Accept(v StmtVisitor)      { v.VisitFor(s) }
func (s *ImportStmt) Accept(v StmtVisitor)   { v.VisitImport(s) }
func (s *SceneBlock) Accept(v StmtVisitor)   { v.VisitScene(s) }
func (s *AnimateBlock) Accept(v StmtVisitor) { v.VisitAnimate(s) }
func (s *ExprStmt) Accept(v StmtVisitor)     { v.VisitExprStmt(s) }

func (s *LetStmt) String() string { return fmt.Sprintf("LetStmt(%s = %s)", s.Name, s.Value) }
func (s *FunctionDecl) String() string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Name
	}
	return fmt.Sprintf("FunctionDecl(%s(%s) %s)", s.Name, strings.Join(names, ", "), blockString(s.Body))
}
func (s *ReturnStmt) String() string {
	if s.Value == nil {
		return "ReturnStmt()"
	}
	return fmt.Sprintf("ReturnStmt(%s)", s.Value)
}
func (s *IfStmt) String() string {
	if s.Else != nil {
		return fmt.Sprintf("IfStmt(if %s then %s else %s)", s.Cond, blockString(s.Then), blockString(s.Else))
	}
	return fmt.Sprintf("IfStmt(if %s then %s)", s.Cond, blockString(s.Then))
}
func (s *RepeatStmt) String() string {
	return fmt.Sprintf("RepeatStmt(%s %s)", s.Times, blockString(s.Body))
}
func (s *WhileStmt) String() string {
	return fmt.Sprintf("WhileStmt(while %s do %s)", s.Cond, blockString(s.Body))
}
func (s *ForStmt) String() string {
	return fmt.Sprintf("ForStmt(init=%v, cond=%s, update=%v, body=%s)",
		nodeOrNil(s.Init), s.Cond, nodeOrNil(s.Update), blockString(s.Body))
}
func (s *ImportStmt) String() string {
	if len(s.Names) == 0 {
		return fmt.Sprintf("ImportStmt(%q)", s.Path)
	}
	names := make([]string, len(s.Names))
	for i, n := range s.Names {
		names[i] = n.Name
	}
	return fmt.Sprintf("ImportStmt(%s from %q)", strings.Join(names, ", "), s.Path)
}
func (s *SceneBlock) String() string {
	return fmt.Sprintf("SceneBlock(%s %s)", s.Name, blockString(s.Body))
}
func (s *AnimateBlock) String() string {
	parts := make([]string, len(s.Commands))
	for i, c := range s.Commands {
		parts[i] = c.String()
	}
	return "AnimateBlock[" + strings.Join(parts, "; ") + "]"
}
func (s *ExprStmt) String() string { return fmt.Sprintf("ExprStmt(%s)", s.Expr) }

//  Animation command nodes

// Command is implemented by the statements allowed inside animate { }.
type Command interface {
	Node
	Accept(CommandVisitor)
	commandNode()
}

// Move shifts the shared offset. Direction is "up", "down", "left" or "right".
type Move struct {
	Position
	Amount    Expr
	Direction string
}

type Rotate struct {
	Position
	Angle Expr
}

type Scale struct {
	Position
	Factor Expr
}

type Fade struct {
	Position
	Amount Expr
}

// Bounce drives the y offset; Height defaults to 100 when nil.
type Bounce struct {
	Position
	Height Expr
}

type Wave struct {
	Position
	Amplitude Expr
	Frequency Expr
}

type Orbit struct {
	Position
	CenterX Expr
	CenterY Expr
	Radius  Expr
	Speed   Expr
}

type Pulse struct {
	Position
	MinScale Expr
	MaxScale Expr
	Speed    Expr // nil means 1
}

type Wobble struct {
	Position
	Amount Expr
	Speed  Expr // nil means 5
}

type Spring struct {
	Position
	TargetX   Expr
	TargetY   Expr
	Stiffness Expr // nil means 0.1
	Damping   Expr // nil means undamped
}

func (*Move) commandNode()   {}
func (*Rotate) commandNode() {}
func (*Scale) commandNode()  {}
func (*Fade) commandNode()   {}
func (*Bounce) commandNode() {}
func (*Wave) commandNode()   {}
func (*Orbit) commandNode()  {}
func (*Pulse) commandNode()  {}
func (*Wobble) commandNode() {}
func (*Spring) commandNode() {}

func (c *Move) Accept(v CommandVisitor)   { v.VisitMove(c) }
func (c *Rotate) Accept(v CommandVisitor) { v.VisitRotate(c) }
func (c *Scale) Accept(v CommandVisitor)  { v.VisitScale(c) }
func (c *Fade) Accept(v CommandVisitor)   { v.VisitFade(c) }
func (c *Bounce) Accept(v CommandVisitor) { v.VisitBounce(c) }
func (c *Wave) Accept(v CommandVisitor)   { v.VisitWave(c) }
func (c *Orbit) Accept(v CommandVisitor)  { v.VisitOrbit(c) }
func (c *Pulse) Accept(v CommandVisitor)  { v.VisitPulse(c) }
func (c *Wobble) Accept(v CommandVisitor) { v.VisitWobble(c) }
func (c *Spring) Accept(v CommandVisitor) { v.VisitSpring(c) }

func (c *Move) String() string   { return fmt.Sprintf("move %s %s", c.Amount, c.Direction) }
func (c *Rotate) String() string { return fmt.Sprintf("rotate %s", c.Angle) }
func (c *Scale) String() string  { return fmt.Sprintf("scale %s", c.Factor) }
func (c *Fade) String() string   { return fmt.Sprintf("fade %s", c.Amount) }
func (c *Bounce) String() string { return strings.TrimSpace("bounce " + exprsString(c.Height)) }
func (c *Wave) String() string   { return fmt.Sprintf("wave %s %s", c.Amplitude, c.Frequency) }
func (c *Orbit) String() string {
	return fmt.Sprintf("orbit %s %s %s %s", c.CenterX, c.CenterY, c.Radius, c.Speed)
}
func (c *Pulse) String() string  { return "pulse " + exprsString(c.MinScale, c.MaxScale, c.Speed) }
func (c *Wobble) String() string { return "wobble " + exprsString(c.Amount, c.Speed) }
func (c *Spring) String() string {
	return "spring " + exprsString(c.TargetX, c.TargetY, c.Stiffness, c.Damping)
}

// Program is the root of the tree.
type Program struct {
	Body []Stmt
}

func (p *Program) Pos() Position   { return Position{Line: 1, Column: 1} }
func (p *Program) String() string { return "Program" + blockString(p.Body) }

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// exprsString joins the non-nil expressions with spaces.
func exprsString(exprs ...Expr) string {
	var parts []string
	for _, e := range exprs {
		if e != nil {
			parts = append(parts, e.String())
		}
	}
	return strings.Join(parts, " ")
}

func blockString(stmts []Stmt) string {
	parts := make([]string, len(stmts))
	for i, s := range stmts {
		parts[i] = s.String()
	}
	return "[" + strings.Join(parts, "; ") + "]"
}

func nodeOrNil(n Node) string {
	if n == nil {
		return "nil"
	}
	return n.String()
}
