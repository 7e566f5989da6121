package compiler

// Shape literals sit between postfix operators and primaries. Each one has a
// fixed sequence of keyword-introduced fields; optional trailing fields must
// start on the same line as the field before them.

func (p *Parser) parseShape() (Expr, error) {
	switch p.peek().Type {
	case CIRCLE:
		return p.parseCircle()
	case RECT:
		return p.parseRect()
	case LINE:
		return p.parseLine()
	case TRIANGLE:
		return p.parseTriangle()
	case POLYGON:
		return p.parsePolygon()
	case ELLIPSE:
		return p.parseEllipse()
	case ARC:
		return p.parseArc()
	case TEXT:
		return p.parseText()
	}
	return p.parsePrimary()
}

// parsePoint parses  "(" expression "," expression ")"
func (p *Parser) parsePoint(openMsg, closeMsg string) (Point, error) {
	if _, err := p.expect(LPAREN, openMsg); err != nil {
		return Point{}, err
	}
	x, err := p.parseExpression()
	if err != nil {
		return Point{}, err
	}
	if _, err := p.expect(COMMA, "Expected , in position"); err != nil {
		return Point{}, err
	}
	y, err := p.parseExpression()
	if err != nil {
		return Point{}, err
	}
	if _, err := p.expect(RPAREN, closeMsg); err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y}, nil
}

// parseAt parses  "at" point  for the named shape.
func (p *Parser) parseAt(shape string) (Point, error) {
	if err := p.expectWord("at", `Expected "at" after `+shape); err != nil {
		return Point{}, err
	}
	return p.parsePoint("Expected ( for position", "Expected ) after position")
}

// parseField parses  word expression
func (p *Parser) parseField(word string) (Expr, error) {
	if err := p.expectWord(word, `Expected "`+word+`" keyword`); err != nil {
		return nil, err
	}
	return p.parseExpression()
}

// parseFields parses several keyword-introduced fields in order.
func (p *Parser) parseFields(words ...string) ([]Expr, error) {
	out := make([]Expr, len(words))
	for i, w := range words {
		e, err := p.parseField(w)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (p *Parser) parseCircle() (Expr, error) {
	tok := p.advance()
	at, err := p.parseAt("circle")
	if err != nil {
		return nil, err
	}
	f, err := p.parseFields("size", "color")
	if err != nil {
		return nil, err
	}
	return &Circle{Position: posOf(tok), At: at, Size: f[0], Color: f[1]}, nil
}

func (p *Parser) parseRect() (Expr, error) {
	tok := p.advance()
	at, err := p.parseAt("rect")
	if err != nil {
		return nil, err
	}
	f, err := p.parseFields("width", "height", "color")
	if err != nil {
		return nil, err
	}
	return &Rect{Position: posOf(tok), At: at, Width: f[0], Height: f[1], Color: f[2]}, nil
}

func (p *Parser) parseLine() (Expr, error) {
	tok := p.advance()
	start, err := p.parsePoint("Expected ( for start position", "Expected ) after start position")
	if err != nil {
		return nil, err
	}
	end, err := p.parsePoint("Expected ( for end position", "Expected ) after end position")
	if err != nil {
		return nil, err
	}
	color, err := p.parseField("color")
	if err != nil {
		return nil, err
	}
	return &Line{Position: posOf(tok), Start: start, End: end, Color: color}, nil
}

func (p *Parser) parseTriangle() (Expr, error) {
	tok := p.advance()
	tri := &Triangle{Position: posOf(tok)}
	for i := range tri.Points {
		pt, err := p.parsePoint("Expected ( for point", "Expected ) after point")
		if err != nil {
			return nil, err
		}
		tri.Points[i] = pt
	}
	color, err := p.parseField("color")
	if err != nil {
		return nil, err
	}
	tri.Color = color
	return tri, nil
}

// parseRotation parses an optional trailing  rotate expression
func (p *Parser) parseRotation() (Expr, error) {
	if !p.sameLine(ROTATE) {
		return nil, nil
	}
	p.advance()
	return p.parseExpression()
}

func (p *Parser) parsePolygon() (Expr, error) {
	tok := p.advance()
	at, err := p.parseAt("polygon")
	if err != nil {
		return nil, err
	}
	f, err := p.parseFields("sides", "radius", "color")
	if err != nil {
		return nil, err
	}
	rotation, err := p.parseRotation()
	if err != nil {
		return nil, err
	}
	return &Polygon{Position: posOf(tok), At: at, Sides: f[0], Radius: f[1], Color: f[2], Rotation: rotation}, nil
}

func (p *Parser) parseEllipse() (Expr, error) {
	tok := p.advance()
	at, err := p.parseAt("ellipse")
	if err != nil {
		return nil, err
	}
	rx, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	ry, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	color, err := p.parseField("color")
	if err != nil {
		return nil, err
	}
	rotation, err := p.parseRotation()
	if err != nil {
		return nil, err
	}
	return &Ellipse{Position: posOf(tok), At: at, RadiusX: rx, RadiusY: ry, Color: color, Rotation: rotation}, nil
}

func (p *Parser) parseArc() (Expr, error) {
	tok := p.advance()
	at, err := p.parseAt("arc")
	if err != nil {
		return nil, err
	}
	f, err := p.parseFields("radius", "startAngle", "endAngle", "color")
	if err != nil {
		return nil, err
	}
	return &Arc{Position: posOf(tok), At: at, Radius: f[0], StartAngle: f[1], EndAngle: f[2], Color: f[3]}, nil
}

func (p *Parser) parseText() (Expr, error) {
	tok := p.advance()
	at, err := p.parseAt("text")
	if err != nil {
		return nil, err
	}
	if tt := p.peek().Type; tt != STRING && tt != IDENTIFIER {
		next := p.peek()
		return nil, p.fmtError(next, "Expected text content, found %s", describe(next))
	}
	content, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	color, err := p.parseField("color")
	if err != nil {
		return nil, err
	}
	text := &Text{Position: posOf(tok), At: at, Content: content, Color: color}

	if p.sameLineWord("font") {
		p.advance()
		font, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, ok := font.(*StringLiteral); ok {
			text.Font = font
		}
	}
	if p.sameLineWord("size") {
		p.advance()
		size, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		text.Size = size
	}
	return text, nil
}
