// Package parser is a small recursive-descent/Pratt parser that turns a
// Grace token stream into the typed AST defined by package ast. It exists
// so the rest of the pipeline (symbol table, semantic analysis, codegen)
// has something to drive end to end, built in the same
// error-accumulating style the rest of the compiler uses.
package parser

import (
	"fmt"

	"github.com/cwbudde/go-dws/internal/ast"
	"github.com/cwbudde/go-dws/internal/lexer"
	"github.com/cwbudde/go-dws/internal/types"
)

// ParseError is a single parser diagnostic.
type ParseError struct {
	Message string
	Pos     lexer.Position
}

func (e ParseError) Error() string { return fmt.Sprintf("%s at %s", e.Message, e.Pos) }

// precedence levels, lowest to highest.
const (
	lowest = iota
	orPrec
	andPrec
	relational
	additive
	multiplicative
	unary
)

var binPrecedence = map[lexer.TokenType]int{
	lexer.OR:     orPrec,
	lexer.AND:    andPrec,
	lexer.EQ:     relational,
	lexer.NOT_EQ: relational,
	lexer.LT:     relational,
	lexer.GT:     relational,
	lexer.LE:     relational,
	lexer.GE:     relational,
	lexer.PLUS:   additive,
	lexer.MINUS:  additive,
	lexer.STAR:   multiplicative,
	lexer.DIV:    multiplicative,
	lexer.MOD:    multiplicative,
}

// Parser consumes a Lexer's token stream one token of lookahead at a time.
type Parser struct {
	l *lexer.Lexer

	cur  lexer.Token
	peek lexer.Token

	errors []ParseError
}

// New creates a Parser over l, priming the first two lookahead tokens.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

// Errors returns every parse error accumulated so far.
func (p *Parser) Errors() []ParseError { return p.errors }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) errorf(pos lexer.Position, format string, args ...interface{}) {
	p.errors = append(p.errors, ParseError{Message: fmt.Sprintf(format, args...), Pos: pos})
}

func (p *Parser) expect(tt lexer.TokenType) lexer.Token {
	tok := p.cur
	if p.cur.Type != tt {
		p.errorf(p.cur.Pos, "expected %v, got %v (%q)", tt, p.cur.Type, p.cur.Literal)
	} else {
		p.next()
	}
	return tok
}

// ParseProgram parses a full Grace compilation unit: one outermost
// function definition.
func (p *Parser) ParseProgram() *ast.Program {
	main := p.parseFuncDecl()
	return &ast.Program{Main: main}
}

func (p *Parser) parseType() types.Primitive {
	switch p.cur.Type {
	case lexer.INT_TYPE:
		p.next()
		return types.Int
	case lexer.CHAR_TYPE:
		p.next()
		return types.Char
	case lexer.NOTHING_TYPE:
		p.next()
		return types.Nothing
	default:
		p.errorf(p.cur.Pos, "expected a type, got %v", p.cur.Type)
		p.next()
		return types.Unknown
	}
}

// parseShape parses zero or more bracket groups. An empty "[]" group marks
// an open leading dimension and is only legal as the first group, in
// parameter position; openAllowed controls whether it is accepted here.
func (p *Parser) parseShape(openAllowed bool) types.Shape {
	var shape types.Shape
	for p.cur.Type == lexer.LBRACKET {
		pos := p.cur.Pos
		p.next()
		if p.cur.Type == lexer.RBRACKET {
			if len(shape.Dims) != 0 {
				p.errorf(pos, "open dimension marker '[]' must be the leading dimension")
			} else if !openAllowed {
				p.errorf(pos, "open array dimension is only allowed on by-reference parameters")
			} else {
				shape.Open = true
			}
			shape.Dims = append(shape.Dims, 0)
			p.next()
			continue
		}
		tok := p.expect(lexer.INT_CONST)
		shape.Dims = append(shape.Dims, parseIntLiteral(tok.Literal))
		p.expect(lexer.RBRACKET)
	}
	return shape
}

func parseIntLiteral(lit string) int {
	n := 0
	for i := 0; i < len(lit); i++ {
		n = n*10 + int(lit[i]-'0')
	}
	return n
}

// parseFuncDecl parses `fun name(params) : type` followed either by `;`
// (a forward declaration) or `{ locals... body }` (a full definition).
func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	pos := p.cur.Pos
	p.expect(lexer.FUN)
	name := p.expect(lexer.IDENT).Literal
	p.expect(lexer.LPAREN)

	var params []*ast.ParamDecl
	if p.cur.Type != lexer.RPAREN {
		params = append(params, p.parseParamGroup()...)
		for p.cur.Type == lexer.SEMI {
			p.next()
			params = append(params, p.parseParamGroup()...)
		}
	}
	p.expect(lexer.RPAREN)
	p.expect(lexer.COLON)
	retType := p.parseType()

	header := &ast.FuncHeader{Name: name, ReturnType: retType, Params: params, Pos: pos}

	if p.cur.Type == lexer.SEMI {
		p.next()
		return &ast.FuncDecl{Header: header, Pos: pos}
	}

	p.expect(lexer.LBRACE)
	var locals []*ast.LocalDecl
	for p.cur.Type == lexer.VAR || p.cur.Type == lexer.FUN {
		locals = append(locals, p.parseLocalDecl())
	}
	body := p.parseBlockBody(pos)
	p.expect(lexer.RBRACE)

	return &ast.FuncDecl{Header: header, Locals: locals, Body: body, Pos: pos}
}

func (p *Parser) parseLocalDecl() *ast.LocalDecl {
	if p.cur.Type == lexer.VAR {
		return &ast.LocalDecl{Var: p.parseVarDecl()}
	}
	return &ast.LocalDecl{Func: p.parseFuncDecl()}
}

func (p *Parser) parseVarDecl() *ast.VarDecl {
	pos := p.cur.Pos
	p.expect(lexer.VAR)
	name := p.expect(lexer.IDENT).Literal
	p.expect(lexer.COLON)
	elem := p.parseType()
	shape := p.parseShape(false)
	p.expect(lexer.SEMI)
	return &ast.VarDecl{Name: name, Elem: elem, Shape: shape, Pos: pos}
}

// parseParamGroup parses `ref? id (, id)* : type shape`, expanding to one
// ParamDecl per name since every name in the group shares type/shape/mode.
func (p *Parser) parseParamGroup() []*ast.ParamDecl {
	pos := p.cur.Pos
	mode := types.ByValue
	if p.cur.Type == lexer.REF {
		mode = types.ByReference
		p.next()
	}

	var names []string
	names = append(names, p.expect(lexer.IDENT).Literal)
	for p.cur.Type == lexer.COMMA {
		p.next()
		names = append(names, p.expect(lexer.IDENT).Literal)
	}
	p.expect(lexer.COLON)
	elem := p.parseType()
	shape := p.parseShape(mode == types.ByReference)

	params := make([]*ast.ParamDecl, 0, len(names))
	for _, n := range names {
		params = append(params, &ast.ParamDecl{Name: n, Elem: elem, Shape: shape, Mode: mode, Pos: pos})
	}
	return params
}

func (p *Parser) parseBlockBody(pos lexer.Position) *ast.Stmt {
	var stmts []*ast.Stmt
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		stmts = append(stmts, p.parseStmt())
	}
	return &ast.Stmt{Kind: ast.StmtBlock, Stmts: stmts, Pos: pos}
}

func (p *Parser) parseStmt() *ast.Stmt {
	pos := p.cur.Pos
	switch p.cur.Type {
	case lexer.LBRACE:
		p.next()
		block := p.parseBlockBody(pos)
		p.expect(lexer.RBRACE)
		return block
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.SEMI:
		p.next()
		return &ast.Stmt{Kind: ast.StmtEmpty, Pos: pos}
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseIfStmt() *ast.Stmt {
	pos := p.cur.Pos
	p.expect(lexer.IF)
	cond := p.parseExpr(lowest)
	p.expect(lexer.THEN)
	thenStmt := p.parseStmt()
	var elseStmt *ast.Stmt
	if p.cur.Type == lexer.ELSE {
		p.next()
		elseStmt = p.parseStmt()
	}
	return &ast.Stmt{Kind: ast.StmtIf, CondExpr: cond, Then: thenStmt, Else: elseStmt, Pos: pos}
}

func (p *Parser) parseWhileStmt() *ast.Stmt {
	pos := p.cur.Pos
	p.expect(lexer.WHILE)
	cond := p.parseExpr(lowest)
	p.expect(lexer.DO)
	body := p.parseStmt()
	return &ast.Stmt{Kind: ast.StmtWhile, CondExpr: cond, Then: body, Pos: pos}
}

func (p *Parser) parseReturnStmt() *ast.Stmt {
	pos := p.cur.Pos
	p.expect(lexer.RETURN)
	var value *ast.Expr
	if p.cur.Type != lexer.SEMI {
		value = p.parseExpr(lowest)
	}
	p.expect(lexer.SEMI)
	return &ast.Stmt{Kind: ast.StmtReturn, Value: value, Pos: pos}
}

// parseExprStmt parses either an assignment `lvalue <- expr;` or a bare
// call used as a statement `name(args);`.
func (p *Parser) parseExprStmt() *ast.Stmt {
	pos := p.cur.Pos
	target := p.parseExpr(lowest)
	if p.cur.Type == lexer.ASSIGN {
		p.next()
		value := p.parseExpr(lowest)
		p.expect(lexer.SEMI)
		return &ast.Stmt{Kind: ast.StmtAssign, Target: target, Value: value, Pos: pos}
	}
	p.expect(lexer.SEMI)
	return &ast.Stmt{Kind: ast.StmtCall, Call: target, Pos: pos}
}

func (p *Parser) parseExpr(prec int) *ast.Expr {
	left := p.parsePrefix()
	for {
		opPrec, ok := binPrecedence[p.cur.Type]
		if !ok || opPrec <= prec {
			break
		}
		left = p.parseInfix(left)
	}
	return left
}

func (p *Parser) parsePrefix() *ast.Expr {
	pos := p.cur.Pos
	switch p.cur.Type {
	case lexer.INT_CONST:
		tok := p.cur
		p.next()
		return &ast.Expr{Kind: ast.ExprIntLit, IntValue: int32(parseIntLiteral(tok.Literal)), Pos: pos}
	case lexer.CHAR_CONST:
		tok := p.cur
		p.next()
		return &ast.Expr{Kind: ast.ExprCharLit, CharValue: tok.Literal[0], Pos: pos}
	case lexer.STRING_CONST:
		tok := p.cur
		p.next()
		return &ast.Expr{Kind: ast.ExprStringLit, StrValue: tok.Literal, Pos: pos}
	case lexer.IDENT:
		return p.parseIdentOrCallOrIndex()
	case lexer.MINUS:
		p.next()
		operand := p.parseExpr(unary)
		return &ast.Expr{Kind: ast.ExprUnaryMinus, Right: operand, Pos: pos}
	case lexer.NOT:
		p.next()
		operand := p.parseExpr(unary)
		return &ast.Expr{Kind: ast.ExprNot, Right: operand, Pos: pos}
	case lexer.LPAREN:
		p.next()
		inner := p.parseExpr(lowest)
		p.expect(lexer.RPAREN)
		return inner
	default:
		p.errorf(pos, "unexpected token %v (%q) in expression", p.cur.Type, p.cur.Literal)
		p.next()
		return &ast.Expr{Kind: ast.ExprIntLit, Pos: pos}
	}
}

func (p *Parser) parseIdentOrCallOrIndex() *ast.Expr {
	pos := p.cur.Pos
	name := p.cur.Literal
	p.next()

	if p.cur.Type == lexer.LPAREN {
		p.next()
		var args []*ast.Expr
		if p.cur.Type != lexer.RPAREN {
			args = append(args, p.parseExpr(lowest))
			for p.cur.Type == lexer.COMMA {
				p.next()
				args = append(args, p.parseExpr(lowest))
			}
		}
		p.expect(lexer.RPAREN)
		return &ast.Expr{Kind: ast.ExprCall, Name: name, Args: args, Pos: pos}
	}

	expr := &ast.Expr{Kind: ast.ExprIdent, Name: name, Pos: pos}
	for p.cur.Type == lexer.LBRACKET {
		p.next()
		idx := p.parseExpr(lowest)
		p.expect(lexer.RBRACKET)
		expr = &ast.Expr{Kind: ast.ExprIndex, Base: expr, Index: idx, Pos: pos}
	}
	return expr
}

func (p *Parser) parseInfix(left *ast.Expr) *ast.Expr {
	pos := p.cur.Pos
	op := p.cur.Literal
	opType := p.cur.Type
	prec := binPrecedence[opType]
	p.next()
	right := p.parseExpr(prec)
	return &ast.Expr{Kind: ast.ExprBinary, Left: left, Right: right, Op: op, Pos: pos}
}
