package ast

import (
	"fmt"

	"github.com/mna/lotus/lang/token"
)

// Unwrap the expression inside the parens. It unwraps multiple ParenExpr
// recursively until it reaches a non-ParenExpr.
func Unwrap(e Expr) Expr {
	if pe, ok := e.(*ParenExpr); ok {
		return Unwrap(pe.Expr)
	}
	return e
}

type (
	// AssignExpr represents an assignment to a named variable, e.g. x = y.
	AssignExpr struct {
		Name  token.Value
		Right Expr
	}

	// BinOpExpr represents an arithmetic, comparison or equality binary
	// expression, e.g. x + y.
	BinOpExpr struct {
		Left  Expr
		Op    token.Value
		Right Expr
	}

	// CallExpr represents a call, e.g. x(y, z). Rparen is kept for error
	// reporting at the call site.
	CallExpr struct {
		Fn     Expr
		Rparen token.Value
		Args   []Expr
	}

	// CommaExpr represents the comma operator: the left side is evaluated and
	// discarded, the right side is the value of the expression.
	CommaExpr struct {
		Left  Expr
		Right Expr
	}

	// CondExpr represents a ternary conditional, e.g. c ? x : y.
	CondExpr struct {
		Cond Expr
		Then Expr
		Else Expr
	}

	// DotExpr represents a property access, e.g. x.y.
	DotExpr struct {
		Left Expr
		Name token.Value
	}

	// FuncExpr represents an anonymous function literal.
	FuncExpr struct {
		Fun token.Value // the 'fun' keyword
		Fn  *Function
	}

	// IdentExpr represents a reference to a named variable.
	IdentExpr struct {
		Name token.Value
	}

	// LiteralExpr represents a literal value: a number, a string, true,
	// false or nil.
	LiteralExpr struct {
		Tok token.Value
	}

	// LogicalExpr represents a short-circuiting 'or' or 'and' expression.
	LogicalExpr struct {
		Left  Expr
		Op    token.Value
		Right Expr
	}

	// ParenExpr represents a parenthesized expression.
	ParenExpr struct {
		Expr Expr
	}

	// SetExpr represents a property assignment, e.g. x.y = z. It carries the
	// DotExpr that parsed as its target.
	SetExpr struct {
		Get   *DotExpr
		Name  token.Value
		Right Expr
	}

	// SuperExpr represents a superclass method access, e.g. super.m.
	SuperExpr struct {
		Super  token.Value
		Method token.Value
	}

	// ThisExpr represents the 'this' keyword.
	ThisExpr struct {
		This token.Value
	}

	// UnaryOpExpr represents a unary expression, e.g. -x or !x.
	UnaryOpExpr struct {
		Op    token.Value
		Right Expr
	}
)

func (n *AssignExpr) expr()  {}
func (n *BinOpExpr) expr()   {}
func (n *CallExpr) expr()    {}
func (n *CommaExpr) expr()   {}
func (n *CondExpr) expr()    {}
func (n *DotExpr) expr()     {}
func (n *FuncExpr) expr()    {}
func (n *IdentExpr) expr()   {}
func (n *LiteralExpr) expr() {}
func (n *LogicalExpr) expr() {}
func (n *ParenExpr) expr()   {}
func (n *SetExpr) expr()     {}
func (n *SuperExpr) expr()   {}
func (n *ThisExpr) expr()    {}
func (n *UnaryOpExpr) expr() {}

func (n *AssignExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "assign "+n.Name.Raw, nil) }
func (n *AssignExpr) Walk(v Visitor)                { Walk(v, n.Right) }

func (n *BinOpExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "binop "+n.Op.Raw, nil) }
func (n *BinOpExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}

func (n *CallExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call", map[string]int{"args": len(n.Args)})
}
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Fn)
	for _, a := range n.Args {
		Walk(v, a)
	}
}

func (n *CommaExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "comma", nil) }
func (n *CommaExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}

func (n *CondExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "ternary", nil) }
func (n *CondExpr) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	Walk(v, n.Else)
}

func (n *DotExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "get "+n.Name.Raw, nil) }
func (n *DotExpr) Walk(v Visitor)                { Walk(v, n.Left) }

func (n *FuncExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "funexpr", map[string]int{"params": len(n.Fn.Params)})
}
func (n *FuncExpr) Walk(v Visitor) { Walk(v, n.Fn.Body) }

func (n *IdentExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "ident "+n.Name.Raw, nil) }
func (n *IdentExpr) Walk(_ Visitor)                {}

func (n *LiteralExpr) Format(f fmt.State, verb rune) {
	lbl := "lit " + n.Tok.Raw
	if n.Tok.Type == token.STRING {
		lbl = "lit " + n.Tok.Literal()
	}
	format(f, verb, n, lbl, nil)
}
func (n *LiteralExpr) Walk(_ Visitor) {}

func (n *LogicalExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "logical "+n.Op.Raw, nil) }
func (n *LogicalExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}

func (n *ParenExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "paren", nil) }
func (n *ParenExpr) Walk(v Visitor)                { Walk(v, n.Expr) }

func (n *SetExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "set "+n.Name.Raw, nil) }
func (n *SetExpr) Walk(v Visitor) {
	Walk(v, n.Get)
	Walk(v, n.Right)
}

func (n *SuperExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "super."+n.Method.Raw, nil)
}
func (n *SuperExpr) Walk(_ Visitor) {}

func (n *ThisExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "this", nil) }
func (n *ThisExpr) Walk(_ Visitor)                {}

func (n *UnaryOpExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "unop "+n.Op.Raw, nil) }
func (n *UnaryOpExpr) Walk(v Visitor)                { Walk(v, n.Right) }
