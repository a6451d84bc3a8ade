package ast_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/mna/lotus/lang/ast"
	"github.com/mna/lotus/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tok(tt token.Token, raw string) token.Value {
	return token.Value{Type: tt, Raw: raw, Line: 1}
}

func sumExpr() *ast.BinOpExpr {
	return &ast.BinOpExpr{
		Left:  &ast.LiteralExpr{Tok: tok(token.NUMBER, "1")},
		Op:    tok(token.PLUS, "+"),
		Right: &ast.IdentExpr{Name: tok(token.IDENT, "x")},
	}
}

func TestFormat(t *testing.T) {
	bin := sumExpr()
	assert.Equal(t, "binop +", fmt.Sprintf("%v", bin))
	assert.Equal(t, "     binop +", fmt.Sprintf("%12v", bin))
	assert.Equal(t, "binop +     ", fmt.Sprintf("%-12v", bin))
	assert.Equal(t, "bin", fmt.Sprintf("%3v", bin))

	call := &ast.CallExpr{Fn: bin, Args: []ast.Expr{bin.Left, bin.Right}}
	assert.Equal(t, "call {args=2}", fmt.Sprintf("%#v", call))
}

func TestWalkOrder(t *testing.T) {
	stmt := &ast.PrintStmt{Expr: sumExpr()}

	var enters, exits []string
	var v ast.Visitor
	v = ast.VisitorFunc(func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir == ast.VisitEnter {
			enters = append(enters, fmt.Sprintf("%v", n))
		} else {
			exits = append(exits, fmt.Sprintf("%v", n))
		}
		return v
	})
	ast.Walk(v, stmt)

	require.Equal(t, []string{"print", "binop +", "lit 1", "ident x"}, enters)
	require.Equal(t, []string{"lit 1", "ident x", "binop +", "print"}, exits)
}

func TestWalkSkipChildren(t *testing.T) {
	stmt := &ast.PrintStmt{Expr: sumExpr()}

	var enters []string
	ast.Walk(ast.VisitorFunc(func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir == ast.VisitEnter {
			enters = append(enters, fmt.Sprintf("%v", n))
		}
		return nil
	}), stmt)

	// a nil visitor skips the children
	require.Equal(t, []string{"print"}, enters)
}

func TestPrinter(t *testing.T) {
	stmts := []ast.Stmt{&ast.PrintStmt{Expr: sumExpr()}}

	var buf bytes.Buffer
	p := ast.Printer{Output: &buf}
	require.NoError(t, p.Print(stmts))
	assert.Equal(t, "print\n  binop +\n    lit 1\n    ident x\n", buf.String())
}

func TestPrinterDepths(t *testing.T) {
	id := &ast.IdentExpr{Name: tok(token.IDENT, "x")}
	stmts := []ast.Stmt{&ast.ExprStmt{Expr: id}}

	var buf bytes.Buffer
	p := ast.Printer{Output: &buf, Depths: map[ast.Expr]int{id: 2}}
	require.NoError(t, p.Print(stmts))
	assert.Equal(t, "expr\n  ident x @2\n", buf.String())
}

func TestUnwrap(t *testing.T) {
	inner := &ast.IdentExpr{Name: tok(token.IDENT, "x")}
	wrapped := &ast.ParenExpr{Expr: &ast.ParenExpr{Expr: inner}}
	assert.Same(t, inner, ast.Unwrap(wrapped))
	assert.Same(t, inner, ast.Unwrap(ast.Expr(inner)))
}
