package parser

import (
	"strconv"

	"github.com/mna/lotus/lang/ast"
	"github.com/mna/lotus/lang/token"
)

func (p *parser) expression() ast.Expr {
	return p.comma()
}

// binary parses a left-associative sequence of operand exprs separated by
// any of the provided operator tokens, combining them with newNode.
func (p *parser) binary(operand func() ast.Expr,
	newNode func(left ast.Expr, op token.Value, right ast.Expr) ast.Expr,
	tts ...token.Token) ast.Expr {

	e := operand()
	for p.match(tts...) {
		op := p.previous()
		right := operand()
		e = newNode(e, op, right)
	}
	return e
}

func newBinOp(left ast.Expr, op token.Value, right ast.Expr) ast.Expr {
	return &ast.BinOpExpr{Left: left, Op: op, Right: right}
}

func newLogical(left ast.Expr, op token.Value, right ast.Expr) ast.Expr {
	return &ast.LogicalExpr{Left: left, Op: op, Right: right}
}

func newComma(left ast.Expr, _ token.Value, right ast.Expr) ast.Expr {
	return &ast.CommaExpr{Left: left, Right: right}
}

func (p *parser) comma() ast.Expr {
	return p.binary(p.assignment, newComma, token.COMMA)
}

func (p *parser) assignment() ast.Expr {
	e := p.conditional()

	if p.match(token.EQ) {
		eq := p.previous()
		value := p.assignment()

		switch target := e.(type) {
		case *ast.IdentExpr:
			return &ast.AssignExpr{Name: target.Name, Right: value}
		case *ast.DotExpr:
			return &ast.SetExpr{Get: target, Name: target.Name, Right: value}
		}
		p.error(eq, "invalid assignment target")
	}
	return e
}

// a == a ? b : (c ? d : e)
func (p *parser) conditional() ast.Expr {
	e := p.logicalOr()
	for p.match(token.QUESTION) {
		then := p.expression()
		p.consume(token.COLON, "expected ':' after '?'")
		els := p.conditional()
		e = &ast.CondExpr{Cond: e, Then: then, Else: els}
	}
	return e
}

func (p *parser) logicalOr() ast.Expr {
	return p.binary(p.logicalAnd, newLogical, token.OR)
}

func (p *parser) logicalAnd() ast.Expr {
	return p.binary(p.equality, newLogical, token.AND)
}

func (p *parser) equality() ast.Expr {
	return p.binary(p.comparison, newBinOp, token.BANGEQ, token.EQEQ)
}

func (p *parser) comparison() ast.Expr {
	return p.binary(p.term, newBinOp, token.GT, token.GE, token.LT, token.LE)
}

func (p *parser) term() ast.Expr {
	return p.binary(p.factor, newBinOp, token.MINUS, token.PLUS)
}

func (p *parser) factor() ast.Expr {
	return p.binary(p.unary, newBinOp, token.SLASH, token.STAR, token.PERCENT)
}

func (p *parser) unary() ast.Expr {
	if p.match(token.BANG, token.MINUS) {
		op := p.previous()
		right := p.unary()
		return &ast.UnaryOpExpr{Op: op, Right: right}
	}
	return p.call()
}

func (p *parser) call() ast.Expr {
	e := p.primary()

	for {
		if p.match(token.LPAREN) {
			e = p.finishCall(e)
		} else if p.match(token.DOT) {
			name := p.consume(token.IDENT, "expected identifier after '.'")
			e = &ast.DotExpr{Left: e, Name: name}
		} else {
			break
		}
	}
	return e
}

func (p *parser) finishCall(fn ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RPAREN) {
		for {
			// not expression, because expression is the comma operator
			args = append(args, p.assignment())
			if len(args) > MaxArgs {
				p.error(p.peek(), "the maximum arguments amount is "+strconv.Itoa(MaxArgs))
			}
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	rparen := p.consume(token.RPAREN, "expected ')' after arguments")
	return &ast.CallExpr{Fn: fn, Rparen: rparen, Args: args}
}

func (p *parser) primary() ast.Expr {
	switch {
	case p.match(token.FALSE), p.match(token.TRUE), p.match(token.NIL),
		p.match(token.NUMBER), p.match(token.STRING):
		return &ast.LiteralExpr{Tok: p.previous()}

	case p.match(token.LPAREN):
		e := p.expression()
		p.consume(token.RPAREN, "expected ')' after expression")
		return &ast.ParenExpr{Expr: e}

	case p.match(token.IDENT):
		return &ast.IdentExpr{Name: p.previous()}

	case p.match(token.THIS):
		return &ast.ThisExpr{This: p.previous()}

	case p.match(token.SUPER):
		super := p.previous()
		p.consume(token.DOT, "expected '.' after 'super'")
		method := p.consume(token.IDENT, "expected identifier after '.'")
		return &ast.SuperExpr{Super: super, Method: method}

	case p.match(token.FUN):
		return p.funcExpr()

	// error productions: a binary operator with no left operand consumes
	// the right-hand expression at its own precedence
	case p.match(token.EQEQ, token.BANGEQ):
		p.errorProduction(p.equality)
	case p.match(token.GT, token.GE, token.LT, token.LE):
		p.errorProduction(p.comparison)
	case p.match(token.MINUS, token.PLUS):
		p.errorProduction(p.term)
	case p.match(token.SLASH, token.STAR, token.PERCENT):
		p.errorProduction(p.factor)
	}

	p.fail(p.peek(), "expected expression")
	panic("unreachable")
}

func (p *parser) errorProduction(f func() ast.Expr) {
	f()
	p.error(p.peek(), "expected expression before the operator")
	panic(errPanicMode)
}

func (p *parser) funcExpr() *ast.FuncExpr {
	fun := p.previous()
	p.consume(token.LPAREN, "expected '(' for function expression")
	return &ast.FuncExpr{Fun: fun, Fn: p.funcRest()}
}

// funcRest parses the parameter list (after the opening paren) and the
// braced body shared by function declarations and literals.
func (p *parser) funcRest() *ast.Function {
	var params []token.Value
	if !p.check(token.RPAREN) {
		for {
			params = append(params, p.consume(token.IDENT, "expected parameter name"))
			if len(params) > MaxArgs {
				p.error(p.peek(), "the maximum parameter amount is "+strconv.Itoa(MaxArgs))
			}
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	p.consume(token.RPAREN, "expected ')' after parameters")
	p.consume(token.LBRACE, "expected '{' at the start of function body")
	return &ast.Function{Params: params, Body: &ast.Block{Stmts: p.blockList()}}
}
