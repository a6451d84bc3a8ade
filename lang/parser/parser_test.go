package parser_test

import (
	"testing"

	"github.com/mna/lotus/lang/ast"
	"github.com/mna/lotus/lang/parser"
	"github.com/mna/lotus/lang/scanner"
	"github.com/mna/lotus/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type parseErr struct {
	tok token.Value
	msg string
}

func parse(t *testing.T, src string) ([]ast.Stmt, []parseErr) {
	t.Helper()

	toks := scanner.ScanTokens([]byte(src), func(line int, msg string) {
		t.Fatalf("scan error line %d: %s", line, msg)
	})

	var errs []parseErr
	stmts := parser.Parse(toks, func(tok token.Value, msg string) {
		errs = append(errs, parseErr{tok, msg})
	})
	return stmts, errs
}

func TestParsePrecedence(t *testing.T) {
	stmts, errs := parse(t, "print 1 + 2 * 3 == 7 and true;")
	require.Empty(t, errs)
	require.Len(t, stmts, 1)

	pr, ok := stmts[0].(*ast.PrintStmt)
	require.True(t, ok)
	and, ok := pr.Expr.(*ast.LogicalExpr)
	require.True(t, ok)
	require.Equal(t, token.AND, and.Op.Type)

	eq, ok := and.Left.(*ast.BinOpExpr)
	require.True(t, ok)
	require.Equal(t, token.EQEQ, eq.Op.Type)

	sum, ok := eq.Left.(*ast.BinOpExpr)
	require.True(t, ok)
	require.Equal(t, token.PLUS, sum.Op.Type)

	mul, ok := sum.Right.(*ast.BinOpExpr)
	require.True(t, ok)
	require.Equal(t, token.STAR, mul.Op.Type)
}

func TestParseCommaAndTernary(t *testing.T) {
	stmts, errs := parse(t, "x = a ? b : c, d;")
	require.Empty(t, errs)
	require.Len(t, stmts, 1)

	es := stmts[0].(*ast.ExprStmt)
	comma, ok := es.Expr.(*ast.CommaExpr)
	require.True(t, ok)

	asg, ok := comma.Left.(*ast.AssignExpr)
	require.True(t, ok)
	_, ok = asg.Right.(*ast.CondExpr)
	require.True(t, ok)

	_, ok = comma.Right.(*ast.IdentExpr)
	require.True(t, ok)
}

func TestParseAssignRewrite(t *testing.T) {
	stmts, errs := parse(t, "a.b = 1; a = 2; 1 = 2;")
	require.Len(t, stmts, 3)

	set, ok := stmts[0].(*ast.ExprStmt).Expr.(*ast.SetExpr)
	require.True(t, ok)
	assert.Equal(t, "b", set.Name.Raw)
	require.NotNil(t, set.Get)

	_, ok = stmts[1].(*ast.ExprStmt).Expr.(*ast.AssignExpr)
	require.True(t, ok)

	// invalid target is reported but parsing continues
	require.Len(t, errs, 1)
	assert.Equal(t, "invalid assignment target", errs[0].msg)
}

func TestParseForDesugar(t *testing.T) {
	stmts, errs := parse(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	require.Empty(t, errs)
	require.Len(t, stmts, 1)

	wrap, ok := stmts[0].(*ast.Block)
	require.True(t, ok)
	require.Len(t, wrap.Stmts, 2)

	_, ok = wrap.Stmts[0].(*ast.VarStmt)
	require.True(t, ok)

	loop, ok := wrap.Stmts[1].(*ast.LoopStmt)
	require.True(t, ok)
	require.NotNil(t, loop.Post)
	body, ok := loop.Body.(*ast.Block)
	require.True(t, ok)
	require.Len(t, body.Stmts, 1)
}

func TestParseForEmptyClauses(t *testing.T) {
	stmts, errs := parse(t, "for (;;) break;")
	require.Empty(t, errs)
	require.Len(t, stmts, 1)

	loop, ok := stmts[0].(*ast.LoopStmt)
	require.True(t, ok)
	lit, ok := loop.Cond.(*ast.LiteralExpr)
	require.True(t, ok)
	assert.Equal(t, token.TRUE, lit.Tok.Type)
	assert.Nil(t, loop.Post)
}

func TestParseWhile(t *testing.T) {
	stmts, errs := parse(t, "while (x) { x = x - 1; }")
	require.Empty(t, errs)
	require.Len(t, stmts, 1)

	loop, ok := stmts[0].(*ast.LoopStmt)
	require.True(t, ok)
	assert.Nil(t, loop.Post)
	_, ok = loop.Body.(*ast.Block)
	require.True(t, ok)
}

func TestParseClass(t *testing.T) {
	stmts, errs := parse(t, `class B < A {
		fun B(x) { this.x = x; }
		fun m() { return 1; }
		class fun s() { return 2; }
	}`)
	require.Empty(t, errs)
	require.Len(t, stmts, 1)

	cls, ok := stmts[0].(*ast.ClassStmt)
	require.True(t, ok)
	assert.Equal(t, "B", cls.Name.Raw)
	require.NotNil(t, cls.Super)
	assert.Equal(t, "A", cls.Super.Name.Raw)
	require.NotNil(t, cls.Ctor)
	require.Len(t, cls.Methods, 1)
	assert.Equal(t, "m", cls.Methods[0].Name.Raw)
	require.Len(t, cls.Statics, 1)
	assert.Equal(t, "s", cls.Statics[0].Name.Raw)
}

func TestParseFuncExprAndDecl(t *testing.T) {
	stmts, errs := parse(t, "fun f(a, b) { return a; } var g = fun (x) { return x; };")
	require.Empty(t, errs)
	require.Len(t, stmts, 2)

	fd, ok := stmts[0].(*ast.FuncStmt)
	require.True(t, ok)
	require.Len(t, fd.Fn.Params, 2)

	vd, ok := stmts[1].(*ast.VarStmt)
	require.True(t, ok)
	fe, ok := vd.Init.(*ast.FuncExpr)
	require.True(t, ok)
	require.Len(t, fe.Fn.Params, 1)
}

func TestParseSuperAndThis(t *testing.T) {
	stmts, errs := parse(t, "super.m(); this.f = 1;")
	require.Empty(t, errs)
	require.Len(t, stmts, 2)

	call, ok := stmts[0].(*ast.ExprStmt).Expr.(*ast.CallExpr)
	require.True(t, ok)
	sup, ok := call.Fn.(*ast.SuperExpr)
	require.True(t, ok)
	assert.Equal(t, "m", sup.Method.Raw)

	set, ok := stmts[1].(*ast.ExprStmt).Expr.(*ast.SetExpr)
	require.True(t, ok)
	_, ok = set.Get.Left.(*ast.ThisExpr)
	require.True(t, ok)
}

func TestParseErrorProduction(t *testing.T) {
	stmts, errs := parse(t, "* 1 + 2; print 3;")
	require.Len(t, stmts, 1)
	require.NotEmpty(t, errs)
	assert.Equal(t, "expected expression before the operator", errs[0].msg)
}

func TestParseSynchronize(t *testing.T) {
	stmts, errs := parse(t, "var = 1; print 2;")
	// the bad declaration is dropped, the print survives
	require.Len(t, stmts, 1)
	_, ok := stmts[0].(*ast.PrintStmt)
	require.True(t, ok)
	require.NotEmpty(t, errs)
	assert.Equal(t, "expected identifier", errs[0].msg)
}

func TestParseErrorAtEOF(t *testing.T) {
	_, errs := parse(t, "print 1")
	require.NotEmpty(t, errs)
	assert.Equal(t, token.EOF, errs[0].tok.Type)
	assert.Equal(t, "expected ';' after expression", errs[0].msg)
}

func TestParseUnaryNesting(t *testing.T) {
	stmts, errs := parse(t, "print !!x; print --1;")
	require.Empty(t, errs)
	require.Len(t, stmts, 2)

	u1, ok := stmts[0].(*ast.PrintStmt).Expr.(*ast.UnaryOpExpr)
	require.True(t, ok)
	u2, ok := u1.Right.(*ast.UnaryOpExpr)
	require.True(t, ok)
	_, ok = u2.Right.(*ast.IdentExpr)
	require.True(t, ok)
}
