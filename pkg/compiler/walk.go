package compiler

// identCollector records every identifier an expression reads. Member
// property names are not reads and are skipped.
type identCollector struct {
	seen map[string]bool
}

// freeNames returns the set of identifiers referenced by exprs.
func freeNames(exprs ...Expr) map[string]bool {
	c := &identCollector{seen: make(map[string]bool)}
	for _, e := range exprs {
		c.walk(e)
	}
	return c.seen
}

func (c *identCollector) walk(e Expr) {
	if e != nil {
		e.Accept(c)
	}
}

func (c *identCollector) walkPoint(pt Point) {
	c.walk(pt.X)
	c.walk(pt.Y)
}

func (c *identCollector) VisitIdentifier(e *Identifier) { c.seen[e.Name] = true }
func (c *identCollector) VisitNumber(*NumberLiteral)    {}
func (c *identCollector) VisitString(*StringLiteral)    {}
func (c *identCollector) VisitColor(*ColorLiteral)      {}
func (c *identCollector) VisitBoolean(*BooleanLiteral)  {}
func (c *identCollector) VisitNull(*NullLiteral)        {}

func (c *identCollector) VisitArray(e *ArrayLiteral) {
	for _, el := range e.Elements {
		c.walk(el)
	}
}

func (c *identCollector) VisitObject(e *ObjectLiteral) {
	for _, p := range e.Properties {
		c.walk(p.Value)
	}
}

func (c *identCollector) VisitUnary(e *UnaryExpr) { c.walk(e.Operand) }

func (c *identCollector) VisitBinary(e *BinaryExpr) {
	c.walk(e.Left)
	c.walk(e.Right)
}

func (c *identCollector) VisitAssign(e *AssignExpr) {
	c.walk(e.Target)
	c.walk(e.Value)
}

func (c *identCollector) VisitCall(e *CallExpr) {
	c.walk(e.Callee)
	for _, a := range e.Args {
		c.walk(a)
	}
}

func (c *identCollector) VisitMember(e *MemberExpr) { c.walk(e.Object) }

func (c *identCollector) VisitIndex(e *IndexExpr) {
	c.walk(e.Object)
	c.walk(e.Index)
}

func (c *identCollector) VisitCircle(e *Circle) {
	c.walkPoint(e.At)
	c.walk(e.Size)
	c.walk(e.Color)
}

func (c *identCollector) VisitRect(e *Rect) {
	c.walkPoint(e.At)
	c.walk(e.Width)
	c.walk(e.Height)
	c.walk(e.Color)
}

func (c *identCollector) VisitLine(e *Line) {
	c.walkPoint(e.Start)
	c.walkPoint(e.End)
	c.walk(e.Color)
}

func (c *identCollector) VisitTriangle(e *Triangle) {
	for _, pt := range e.Points {
		c.walkPoint(pt)
	}
	c.walk(e.Color)
}

func (c *identCollector) VisitPolygon(e *Polygon) {
	c.walkPoint(e.At)
	c.walk(e.Sides)
	c.walk(e.Radius)
	c.walk(e.Color)
	c.walk(e.Rotation)
}

func (c *identCollector) VisitEllipse(e *Ellipse) {
	c.walkPoint(e.At)
	c.walk(e.RadiusX)
	c.walk(e.RadiusY)
	c.walk(e.Color)
	c.walk(e.Rotation)
}

func (c *identCollector) VisitArc(e *Arc) {
	c.walkPoint(e.At)
	c.walk(e.Radius)
	c.walk(e.StartAngle)
	c.walk(e.EndAngle)
	c.walk(e.Color)
}

func (c *identCollector) VisitText(e *Text) {
	c.walkPoint(e.At)
	c.walk(e.Content)
	c.walk(e.Color)
	c.walk(e.Font)
	c.walk(e.Size)
}
