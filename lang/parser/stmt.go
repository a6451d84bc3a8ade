package parser

import (
	"github.com/mna/lotus/lang/ast"
	"github.com/mna/lotus/lang/token"
)

// definition parses a declaration or statement. It returns nil for a
// statement that failed to parse, after synchronizing.
func (p *parser) definition() (stmt ast.Stmt) {
	defer func() {
		if err := recover(); err != nil {
			if err == errPanicMode {
				p.synchronize()
				stmt = nil
				return
			}
			panic(err)
		}
	}()

	switch {
	case p.match(token.VAR):
		return p.varDecl()
	case p.matchTwo(token.FUN, token.IDENT):
		return p.funcDecl()
	case p.match(token.CLASS):
		return p.classDecl()
	default:
		return p.statement()
	}
}

func (p *parser) statement() ast.Stmt {
	switch {
	case p.match(token.PRINT):
		return p.printStmt()
	case p.match(token.LBRACE):
		return &ast.Block{Stmts: p.blockList()}
	case p.match(token.IF):
		return p.ifStmt()
	case p.match(token.WHILE):
		return p.whileStmt()
	case p.match(token.FOR):
		return p.forStmt()
	case p.match(token.BREAK, token.CONTINUE):
		return p.loopFlowStmt()
	case p.match(token.RETURN):
		return p.returnStmt()
	default:
		return p.exprStmt()
	}
}

func (p *parser) printStmt() ast.Stmt {
	e := p.expression()
	p.consume(token.SEMICOLON, "expected ';' after expression")
	return &ast.PrintStmt{Expr: e}
}

func (p *parser) exprStmt() ast.Stmt {
	e := p.expression()
	p.consume(token.SEMICOLON, "expected ';' after expression")
	return &ast.ExprStmt{Expr: e}
}

func (p *parser) varDecl() ast.Stmt {
	name := p.consume(token.IDENT, "expected identifier")

	var init ast.Expr
	if p.match(token.EQ) {
		init = p.expression()
	}
	p.consume(token.SEMICOLON, "expected terminating ';'")
	return &ast.VarStmt{Name: name, Init: init}
}

// blockList parses statements until the closing brace, which is consumed.
func (p *parser) blockList() []ast.Stmt {
	var list []ast.Stmt
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		if stmt := p.definition(); stmt != nil {
			list = append(list, stmt)
		}
	}
	p.consume(token.RBRACE, "expected '}' for list")
	return list
}

func (p *parser) ifStmt() ast.Stmt {
	p.consume(token.LPAREN, "expected '(' after 'if'")
	cond := p.expression()
	p.consume(token.RPAREN, "expected ')' after expression")
	then := p.statement()

	var els ast.Stmt
	if p.match(token.ELSE) {
		els = p.statement()
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: els}
}

func (p *parser) whileStmt() ast.Stmt {
	p.consume(token.LPAREN, "expected '(' after while")
	cond := p.expression()
	p.consume(token.RPAREN, "expected ')'")
	body := p.statement()
	return &ast.LoopStmt{Cond: cond, Body: body}
}

// forStmt desugars `for (init; cond; post) body` into a block containing the
// initializer followed by a loop. The post expression is stored out-of-band
// on the loop node, not appended to the body, because continue must still
// execute it.
func (p *parser) forStmt() ast.Stmt {
	p.consume(token.LPAREN, "expected '(' after 'for'")

	var init ast.Stmt
	switch {
	case p.match(token.SEMICOLON):
		// no initializer
	case p.match(token.VAR):
		init = p.varDecl()
	default:
		init = p.exprStmt()
	}

	var cond ast.Expr
	if p.match(token.SEMICOLON) {
		cond = &ast.LiteralExpr{Tok: token.MakeValue(token.TRUE, p.previous().Line)}
	} else {
		cond = p.expression()
		p.consume(token.SEMICOLON, "expected ';' after expression")
	}

	var post ast.Expr
	if !p.match(token.RPAREN) {
		post = p.expression()
		p.consume(token.RPAREN, "expected ')'")
	}

	body := p.statement()
	loop := &ast.LoopStmt{Cond: cond, Post: post, Body: &ast.Block{Stmts: []ast.Stmt{body}}}
	if init != nil {
		return &ast.Block{Stmts: []ast.Stmt{init, loop}}
	}
	return loop
}

func (p *parser) loopFlowStmt() ast.Stmt {
	tok := p.previous()
	p.consume(token.SEMICOLON, "expected ';'")
	return &ast.LoopFlowStmt{Tok: tok}
}

func (p *parser) returnStmt() ast.Stmt {
	tok := p.previous()

	var e ast.Expr
	if p.peek().Type != token.SEMICOLON {
		e = p.expression()
	}
	p.consume(token.SEMICOLON, "expected ';'")
	return &ast.ReturnStmt{Return: tok, Expr: e}
}

// funcDecl parses a named function declaration. The fun keyword has been
// consumed and the current token is the name.
func (p *parser) funcDecl() *ast.FuncStmt {
	name := p.consume(token.IDENT, "expected identifier after 'fun' for function definition")
	p.consume(token.LPAREN, "expected '(' after '"+name.Raw+"' for function definition")
	return &ast.FuncStmt{Name: name, Fn: p.funcRest()}
}

func (p *parser) classDecl() ast.Stmt {
	name := p.consume(token.IDENT, "expected identifier after 'class'")

	var super *ast.IdentExpr
	if p.match(token.LT) {
		p.consume(token.IDENT, "expected class name after '<'")
		super = &ast.IdentExpr{Name: p.previous()}
	}
	p.consume(token.LBRACE, "expected '{' before class body")

	var (
		ctor    *ast.FuncStmt
		methods []*ast.FuncStmt
		statics []*ast.FuncStmt
	)
	for p.match(token.FUN, token.CLASS) {
		if p.previous().Type == token.FUN {
			fn := p.funcDecl()
			if fn.Name.Raw == name.Raw {
				// the method sharing the class name is the constructor
				ctor = fn
			} else {
				methods = append(methods, fn)
			}
		} else {
			p.consume(token.FUN, "expected 'fun' after 'class' for static method")
			// a static method may share the class name, the resolver
			// reports it
			statics = append(statics, p.funcDecl())
		}
	}

	p.consume(token.RBRACE, "expected '}' after class body")
	return &ast.ClassStmt{Name: name, Super: super, Ctor: ctor, Methods: methods, Statics: statics}
}
