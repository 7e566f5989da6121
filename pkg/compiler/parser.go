package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Parser consumes the token slice produced by the Lexer and builds an AST.
//
// Grammar:
//
//	program     = statement* EOF
//	statement   = (let | fn | return | if | repeat | while | for | import
//	               | scene | animate | expression) [";"]
//	let         = "let" IDENTIFIER "=" expression
//	fn          = "fn" IDENTIFIER "(" [IDENTIFIER ("," IDENTIFIER)*] ")" block
//	return      = "return" [expression]            value only on the same line
//	if          = "if" expression block ["else" (block | if)]
//	repeat      = "repeat" expression block
//	while       = "while" expression block
//	for         = "for" "(" [let | expression] ";" expression ";" [expression] ")" block
//	import      = "import" [IDENTIFIER ("," IDENTIFIER)* "from"] STRING
//	scene       = "scene" IDENTIFIER block
//	animate     = "animate" "{" command* "}"
//	command     = "move" arg [direction] | "rotate" arg | "scale" arg | "fade" arg
//	            | "bounce" [arg] | "wave" arg arg | "orbit" arg arg arg arg
//	            | "pulse" arg arg [arg] | "wobble" arg [arg] | "spring" arg arg [arg] [arg]
//	arg         = "-" arg | primary
//	expression  = assignment
//	assignment  = comparison ["=" assignment]
//	comparison  = additive (("<"|"<="|">"|">="|"=="|"!=") additive)*
//	additive    = multiplicative (("+"|"-") multiplicative)*
//	multiplicative = unary (("*"|"/"|"%") unary)*
//	unary       = "-" unary | postfix
//	postfix     = (shape | primary) ("(" args ")" | "." IDENTIFIER | "[" expression "]")*
//	primary     = NUMBER | STRING | COLOR | "true" | "false" | "null" | IDENTIFIER
//	            | "[" elements "]" | "{" properties "}" | "(" expression ")"
//
// Newlines are skipped between tokens, except that infix operators, postfix
// operators and optional trailing parts of commands and shapes must start on
// the same line as the token before them. A newline therefore ends a statement.
type Parser struct {
	tokens      []Token
	pos         int
	depth       int // open braces of blocks being parsed
	sourceLines []string
	log         zerolog.Logger
	diags       []Diagnostic
}

func NewParser(tokens []Token, rawSource string, log zerolog.Logger) *Parser {
	return &Parser{tokens: tokens, sourceLines: strings.Split(rawSource, "\n"), log: log}
}

// fmtError builds a parse diagnostic for tok carrying the source line it sits on.
func (p *Parser) fmtError(tok Token, format string, args ...any) error {
	snippet := ""
	if idx := tok.Line - 1; idx >= 0 && idx < len(p.sourceLines) {
		snippet = strings.TrimSpace(p.sourceLines[idx])
	}
	return &Diagnostic{
		Kind:    ParseError,
		Message: fmt.Sprintf(format, args...),
		Line:    tok.Line,
		Column:  tok.Column,
		Snippet: snippet,
	}
}

// report logs a diagnostic the moment it is raised and keeps it.
func (p *Parser) report(err error) {
	d, ok := err.(*Diagnostic)
	if !ok {
		d = &Diagnostic{Kind: ParseError, Message: err.Error()}
	}
	p.log.Warn().Int("line", d.Line).Int("column", d.Column).Msg(d.Message)
	p.diags = append(p.diags, *d)
}

// Diagnostics returns every parse error raised so far, in source order.
func (p *Parser) Diagnostics() []Diagnostic { return p.diags }

// rawPeek returns the token at pos, which may be a NEWLINE.
func (p *Parser) rawPeek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

// peek returns the next significant token without consuming it.
func (p *Parser) peek() Token {
	return p.peekAt(0)
}

// peekAt returns the significant token at the given offset from the current one.
func (p *Parser) peekAt(offset int) Token {
	for i := p.pos; i < len(p.tokens); i++ {
		if p.tokens[i].Type == NEWLINE {
			continue
		}
		if offset == 0 {
			return p.tokens[i]
		}
		offset--
	}
	return Token{Type: EOF}
}

func (p *Parser) skipNewlines() {
	for p.pos < len(p.tokens) && p.tokens[p.pos].Type == NEWLINE {
		p.pos++
	}
}

// advance consumes and returns the next significant token.
func (p *Parser) advance() Token {
	p.skipNewlines()
	tok := p.rawPeek()
	if p.pos < len(p.tokens) && tok.Type != EOF {
		p.pos++
	}
	return tok
}

// sameLine reports whether the very next token, without crossing a newline,
// has one of the given types.
func (p *Parser) sameLine(types ...TokenType) bool {
	tt := p.rawPeek().Type
	for _, t := range types {
		if tt == t {
			return true
		}
	}
	return false
}

// sameLineWord reports whether the next token on this line is the identifier word.
func (p *Parser) sameLineWord(word string) bool {
	tok := p.rawPeek()
	return tok.Type == IDENTIFIER && tok.Lexeme == word
}

// expect consumes the next token if it matches tt, otherwise returns an error
// built from msg and leaves the token in place.
func (p *Parser) expect(tt TokenType, msg string) (Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return tok, p.fmtError(tok, "%s, found %s", msg, describe(tok))
	}
	return p.advance(), nil
}

// expectWord consumes a soft keyword such as "at" or "size".
func (p *Parser) expectWord(word, msg string) error {
	tok := p.peek()
	if tok.Type != IDENTIFIER || tok.Lexeme != word {
		return p.fmtError(tok, "%s, found %s", msg, describe(tok))
	}
	p.advance()
	return nil
}

func describe(tok Token) string {
	switch tok.Type {
	case EOF:
		return "end of input"
	case STRING:
		return strconv.Quote(tok.Lexeme)
	}
	return "'" + tok.Lexeme + "'"
}

// statementStarts are the keywords error recovery may resume at.
var statementStarts = map[TokenType]bool{
	LET: true, FN: true, IF: true, REPEAT: true, WHILE: true, FOR: true,
	ANIMATE: true, SCENE: true, RETURN: true, IMPORT: true,
}

// synchronize skips tokens after a parse error until a safe restart point:
// just past a newline, or at a statement keyword, or at the closing brace
// of the block being parsed. Recovery is best effort.
func (p *Parser) synchronize() {
	if p.rawPeek().Type == NEWLINE {
		// the offending token starts a new line; restart there
		p.skipNewlines()
		return
	}
	switch tok := p.rawPeek(); {
	case tok.Type == EOF:
		return
	case tok.Type == RBRACE && p.depth > 0:
		return
	}
	p.pos++
	for {
		tok := p.rawPeek()
		switch {
		case tok.Type == EOF:
			return
		case tok.Type == NEWLINE:
			p.skipNewlines()
			return
		case tok.Type == RBRACE && p.depth > 0:
			return
		case statementStarts[tok.Type]:
			return
		}
		p.pos++
	}
}

//  Statements

// parseStatements parses statements up to (not including) a closing brace or
// EOF, recovering from errors statement by statement.
func (p *Parser) parseStatements() []Stmt {
	var stmts []Stmt
	for {
		tt := p.peek().Type
		if tt == EOF || (tt == RBRACE && p.depth > 0) {
			return stmts
		}
		// start on the statement's first token so a failure there is
		// stepped over by synchronize instead of being parsed again
		p.skipNewlines()
		stmt, err := p.parseStatement()
		if err != nil {
			p.report(err)
			p.synchronize()
			continue
		}
		stmts = append(stmts, stmt)
	}
}

// parseBlock parses  "{" statement* "}"
func (p *Parser) parseBlock(openMsg, closeMsg string) ([]Stmt, error) {
	if _, err := p.expect(LBRACE, openMsg); err != nil {
		return nil, err
	}
	p.depth++
	body := p.parseStatements()
	p.depth--
	if _, err := p.expect(RBRACE, closeMsg); err != nil {
		return nil, err
	}
	if body == nil {
		body = []Stmt{}
	}
	return body, nil
}

func (p *Parser) parseStatement() (Stmt, error) {
	var stmt Stmt
	var err error
	switch p.peek().Type {
	case LET:
		stmt, err = p.parseLet()
	case FN:
		stmt, err = p.parseFunction()
	case RETURN:
		stmt, err = p.parseReturn()
	case IF:
		stmt, err = p.parseIf()
	case REPEAT:
		stmt, err = p.parseRepeat()
	case WHILE:
		stmt, err = p.parseWhile()
	case FOR:
		stmt, err = p.parseFor()
	case IMPORT:
		stmt, err = p.parseImport()
	case SCENE:
		stmt, err = p.parseScene()
	case ANIMATE:
		stmt, err = p.parseAnimate()
	default:
		var expr Expr
		expr, err = p.parseExpression()
		if err == nil {
			stmt = &ExprStmt{Position: expr.Pos(), Expr: expr}
		}
	}
	if err != nil {
		return nil, err
	}
	if p.peek().Type == SEMICOLON {
		p.advance()
	}
	return stmt, nil
}

func (p *Parser) parseLet() (*LetStmt, error) {
	letTok := p.advance() // let
	name, err := p.expect(IDENTIFIER, "Expected variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ASSIGN, "Expected = after variable name"); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &LetStmt{
		Position: posOf(letTok),
		Name:     &Identifier{Position: posOf(name), Name: name.Lexeme},
		Value:    value,
	}, nil
}

func (p *Parser) parseFunction() (Stmt, error) {
	fnTok := p.advance() // fn
	name, err := p.expect(IDENTIFIER, "Expected function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LPAREN, "Expected ( after function name"); err != nil {
		return nil, err
	}
	params := []*Identifier{}
	if p.peek().Type != RPAREN {
		for {
			param, err := p.expect(IDENTIFIER, "Expected parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, &Identifier{Position: posOf(param), Name: param.Lexeme})
			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(RPAREN, "Expected ) after parameters"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock("Expected { before function body", "Expected } after function body")
	if err != nil {
		return nil, err
	}
	return &FunctionDecl{
		Position: posOf(fnTok),
		Name:     &Identifier{Position: posOf(name), Name: name.Lexeme},
		Params:   params,
		Body:     body,
	}, nil
}

func (p *Parser) parseReturn() (Stmt, error) {
	retTok := p.advance() // return
	stmt := &ReturnStmt{Position: posOf(retTok)}
	if p.sameLine(NEWLINE, RBRACE, SEMICOLON, EOF) {
		return stmt, nil
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	stmt.Value = value
	return stmt, nil
}

func (p *Parser) parseIf() (*IfStmt, error) {
	ifTok := p.advance() // if
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock("Expected { after if condition", "Expected } after if body")
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{Position: posOf(ifTok), Cond: cond, Then: then}
	if p.peek().Type != ELSE {
		return stmt, nil
	}
	p.advance() // else
	if p.peek().Type == IF {
		nested, err := p.parseIf()
		if err != nil {
			return nil, err
		}
		stmt.Else = []Stmt{nested}
		return stmt, nil
	}
	stmt.Else, err = p.parseBlock("Expected { after else", "Expected } after else body")
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseRepeat() (Stmt, error) {
	repTok := p.advance() // repeat
	times, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock("Expected { after repeat count", "Expected } after repeat body")
	if err != nil {
		return nil, err
	}
	return &RepeatStmt{Position: posOf(repTok), Times: times, Body: body}, nil
}

func (p *Parser) parseWhile() (Stmt, error) {
	whileTok := p.advance() // while
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock("Expected { after while condition", "Expected } after while body")
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Position: posOf(whileTok), Cond: cond, Body: body}, nil
}

func (p *Parser) parseFor() (Stmt, error) {
	forTok := p.advance() // for
	if _, err := p.expect(LPAREN, "Expected ( after for"); err != nil {
		return nil, err
	}
	stmt := &ForStmt{Position: posOf(forTok)}

	switch p.peek().Type {
	case SEMICOLON:
	case LET:
		init, err := p.parseLet()
		if err != nil {
			return nil, err
		}
		stmt.Init = init
	default:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Init = &ExprStmt{Position: expr.Pos(), Expr: expr}
	}
	if _, err := p.expect(SEMICOLON, "Expected ; after for initializer"); err != nil {
		return nil, err
	}

	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	stmt.Cond = cond
	if _, err := p.expect(SEMICOLON, "Expected ; after for condition"); err != nil {
		return nil, err
	}

	if p.peek().Type != RPAREN {
		update, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Update = update
	}
	if _, err := p.expect(RPAREN, "Expected ) after for clauses"); err != nil {
		return nil, err
	}

	stmt.Body, err = p.parseBlock("Expected { after for", "Expected } after for body")
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseImport() (Stmt, error) {
	impTok := p.advance() // import
	stmt := &ImportStmt{Position: posOf(impTok)}
	if p.peek().Type != STRING {
		for {
			name, err := p.expect(IDENTIFIER, "Expected imported name")
			if err != nil {
				return nil, err
			}
			stmt.Names = append(stmt.Names, &Identifier{Position: posOf(name), Name: name.Lexeme})
			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
		if err := p.expectWord("from", `Expected "from" after imported names`); err != nil {
			return nil, err
		}
	}
	path, err := p.expect(STRING, "Expected module path string")
	if err != nil {
		return nil, err
	}
	stmt.Path = path.Lexeme
	return stmt, nil
}

func (p *Parser) parseScene() (Stmt, error) {
	sceneTok := p.advance() // scene
	name, err := p.expect(IDENTIFIER, "Expected scene name")
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock("Expected { after scene name", "Expected } after scene body")
	if err != nil {
		return nil, err
	}
	return &SceneBlock{Position: posOf(sceneTok), Name: name.Lexeme, Body: body}, nil
}

// parseAnimate parses an animate block. Anything that is not a command is
// reported and skipped up to the next command or the closing brace.
func (p *Parser) parseAnimate() (Stmt, error) {
	animTok := p.advance() // animate
	if _, err := p.expect(LBRACE, "Expected { after animate"); err != nil {
		return nil, err
	}
	p.depth++
	block := &AnimateBlock{Position: posOf(animTok), Commands: []Command{}}
	for {
		tok := p.peek()
		if tok.Type == RBRACE || tok.Type == EOF {
			break
		}
		if !tok.Type.isAnimationCommand() {
			p.report(p.fmtError(tok, "Unknown animation command %s", describe(tok)))
			p.advance()
			p.skipToCommand()
			continue
		}
		cmd, err := p.parseCommand()
		if err != nil {
			p.report(err)
			p.skipToCommand()
			continue
		}
		block.Commands = append(block.Commands, cmd)
		if p.peek().Type == SEMICOLON {
			p.advance()
		}
	}
	p.depth--
	if _, err := p.expect(RBRACE, "Expected } after animate block"); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) skipToCommand() {
	for {
		tt := p.peek().Type
		if tt == RBRACE || tt == EOF || tt.isAnimationCommand() {
			return
		}
		p.advance()
	}
}

//  Animation commands

var directions = map[string]bool{"up": true, "down": true, "left": true, "right": true}

func (p *Parser) parseCommand() (Command, error) {
	tok := p.advance()
	pos := posOf(tok)
	switch tok.Type {
	case MOVE:
		amount, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		cmd := &Move{Position: pos, Amount: amount, Direction: "right"}
		if next := p.rawPeek(); next.Type == IDENTIFIER && directions[next.Lexeme] {
			cmd.Direction = p.advance().Lexeme
		}
		return cmd, nil
	case ROTATE:
		angle, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		return &Rotate{Position: pos, Angle: angle}, nil
	case SCALE:
		factor, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		return &Scale{Position: pos, Factor: factor}, nil
	case FADE:
		amount, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		return &Fade{Position: pos, Amount: amount}, nil
	case BOUNCE:
		height, err := p.parseOptionalArg()
		if err != nil {
			return nil, err
		}
		return &Bounce{Position: pos, Height: height}, nil
	case WAVE:
		args, err := p.parseArgs(2)
		if err != nil {
			return nil, err
		}
		return &Wave{Position: pos, Amplitude: args[0], Frequency: args[1]}, nil
	case ORBIT:
		args, err := p.parseArgs(4)
		if err != nil {
			return nil, err
		}
		return &Orbit{Position: pos, CenterX: args[0], CenterY: args[1], Radius: args[2], Speed: args[3]}, nil
	case PULSE:
		args, err := p.parseArgs(2)
		if err != nil {
			return nil, err
		}
		speed, err := p.parseOptionalArg()
		if err != nil {
			return nil, err
		}
		return &Pulse{Position: pos, MinScale: args[0], MaxScale: args[1], Speed: speed}, nil
	case WOBBLE:
		amount, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		speed, err := p.parseOptionalArg()
		if err != nil {
			return nil, err
		}
		return &Wobble{Position: pos, Amount: amount, Speed: speed}, nil
	case SPRING:
		args, err := p.parseArgs(2)
		if err != nil {
			return nil, err
		}
		stiffness, err := p.parseOptionalArg()
		if err != nil {
			return nil, err
		}
		var damping Expr
		if stiffness != nil {
			if damping, err = p.parseOptionalArg(); err != nil {
				return nil, err
			}
		}
		return &Spring{Position: pos, TargetX: args[0], TargetY: args[1], Stiffness: stiffness, Damping: damping}, nil
	}
	return nil, p.fmtError(tok, "Unknown animation command %s", describe(tok))
}

// parseArg parses one command argument: a primary with optional leading minus.
func (p *Parser) parseArg() (Expr, error) {
	if tok := p.peek(); tok.Type == MINUS {
		p.advance()
		operand, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Position: posOf(tok), Op: MINUS, Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parseArgs(n int) ([]Expr, error) {
	args := make([]Expr, n)
	for i := range args {
		arg, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return args, nil
}

// argStarts are the tokens that can begin a command argument.
var argStarts = map[TokenType]bool{
	NUMBER: true, IDENTIFIER: true, STRING: true, COLOR: true, TRUE: true,
	FALSE: true, NULL: true, LPAREN: true, LBRACKET: true, MINUS: true,
}

// parseOptionalArg parses a trailing argument if one starts on this line.
func (p *Parser) parseOptionalArg() (Expr, error) {
	if !argStarts[p.rawPeek().Type] {
		return nil, nil
	}
	return p.parseArg()
}

//  Expressions

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (Expr, error) {
	return p.parseAssignment()
}

// parseAssignment handles  target = value  (right associative).
func (p *Parser) parseAssignment() (Expr, error) {
	target, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if !p.sameLine(ASSIGN) {
		return target, nil
	}
	eq := p.advance()
	switch target.(type) {
	case *Identifier, *MemberExpr, *IndexExpr:
	default:
		return nil, p.fmtError(eq, "Invalid assignment target")
	}
	value, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return &AssignExpr{Position: target.Pos(), Target: target, Value: value}, nil
}

// parseComparison handles < <= > >= == != without chaining semantics:
// a < b < c is (a < b) < c.
func (p *Parser) parseComparison() (Expr, error) {
	expr, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.sameLine(LESS, LESS_EQ, GREATER, GREATER_EQ, EQUALS, NOT_EQ) {
		op := p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Position: posOf(op), Op: op.Type, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseAdditive() (Expr, error) {
	expr, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.sameLine(PLUS, MINUS) {
		op := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Position: posOf(op), Op: op.Type, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	expr, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.sameLine(STAR, SLASH, PERCENT) {
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Position: posOf(op), Op: op.Type, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if tok := p.peek(); tok.Type == MINUS {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Position: posOf(tok), Op: MINUS, Operand: operand}, nil
	}
	return p.parsePostfix()
}

// parsePostfix handles calls, member access and indexing on a shape or primary.
func (p *Parser) parsePostfix() (Expr, error) {
	expr, err := p.parseShape()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.sameLine(LPAREN):
			p.advance()
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			expr = &CallExpr{Position: expr.Pos(), Callee: expr, Args: args}
		case p.sameLine(DOT):
			p.advance()
			prop, err := p.expect(IDENTIFIER, "Expected property name after .")
			if err != nil {
				return nil, err
			}
			expr = &MemberExpr{
				Position: expr.Pos(),
				Object:   expr,
				Property: &Identifier{Position: posOf(prop), Name: prop.Lexeme},
			}
		case p.sameLine(LBRACKET):
			p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RBRACKET, "Expected ] after index"); err != nil {
				return nil, err
			}
			expr = &IndexExpr{Position: expr.Pos(), Object: expr, Index: index}
		default:
			return expr, nil
		}
	}
}

// parseCallArgs parses the arguments after an opening parenthesis.
func (p *Parser) parseCallArgs() ([]Expr, error) {
	args := []Expr{}
	if p.peek().Type != RPAREN {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(RPAREN, "Expected ) after arguments"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	pos := posOf(tok)
	switch tok.Type {
	case NUMBER:
		p.advance()
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.fmtError(tok, "Invalid number %s", tok.Lexeme)
		}
		return &NumberLiteral{Position: pos, Value: v}, nil
	case STRING:
		p.advance()
		return &StringLiteral{Position: pos, Value: tok.Lexeme}, nil
	case COLOR:
		p.advance()
		return &ColorLiteral{Position: pos, Value: tok.Lexeme}, nil
	case TRUE, FALSE:
		p.advance()
		return &BooleanLiteral{Position: pos, Value: tok.Type == TRUE}, nil
	case NULL:
		p.advance()
		return &NullLiteral{Position: pos}, nil
	case IDENTIFIER:
		p.advance()
		return &Identifier{Position: pos, Name: tok.Lexeme}, nil
	case LBRACKET:
		return p.parseArray()
	case LBRACE:
		return p.parseObject()
	case LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, "Expected ) after expression"); err != nil {
			return nil, err
		}
		return expr, nil
	case UNKNOWN:
		switch {
		case strings.HasPrefix(tok.Lexeme, `"`):
			return nil, p.fmtError(tok, "Unterminated string")
		case strings.HasPrefix(tok.Lexeme, "/*"):
			return nil, p.fmtError(tok, "Unterminated block comment")
		}
		return nil, p.fmtError(tok, "Unexpected character '%s'", tok.Lexeme)
	case EOF:
		return nil, p.fmtError(tok, "Unexpected end of input")
	}
	return nil, p.fmtError(tok, "Unexpected token: %s", tok.Lexeme)
}

func (p *Parser) parseArray() (Expr, error) {
	open := p.advance() // [
	arr := &ArrayLiteral{Position: posOf(open), Elements: []Expr{}}
	if p.peek().Type != RBRACKET {
		for {
			elem, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			arr.Elements = append(arr.Elements, elem)
			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(RBRACKET, "Expected ] after array elements"); err != nil {
		return nil, err
	}
	return arr, nil
}

func (p *Parser) parseObject() (Expr, error) {
	open := p.advance() // {
	obj := &ObjectLiteral{Position: posOf(open), Properties: []Property{}}
	if p.peek().Type != RBRACE {
		for {
			key, err := p.expect(IDENTIFIER, "Expected property name")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(COLON, "Expected : after property name"); err != nil {
				return nil, err
			}
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			obj.Properties = append(obj.Properties, Property{Key: key.Lexeme, Value: value})
			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(RBRACE, "Expected } after object properties"); err != nil {
		return nil, err
	}
	return obj, nil
}

// Parse builds a Program from tokens. Parse errors are recovered from and
// returned alongside the (possibly partial) tree.
func Parse(tokens []Token, rawSource string) (*Program, []Diagnostic) {
	p := NewParser(tokens, rawSource, zerolog.Nop())
	prog := p.ParseProgram()
	return prog, p.Diagnostics()
}

// ParseProgram parses the whole token stream.
func (p *Parser) ParseProgram() *Program {
	body := p.parseStatements()
	if body == nil {
		body = []Stmt{}
	}
	return &Program{Body: body}
}
