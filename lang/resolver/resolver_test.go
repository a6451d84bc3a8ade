package resolver_test

import (
	"testing"

	"github.com/mna/lotus/lang/ast"
	"github.com/mna/lotus/lang/parser"
	"github.com/mna/lotus/lang/resolver"
	"github.com/mna/lotus/lang/scanner"
	"github.com/mna/lotus/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type diag struct {
	tok token.Value
	msg string
}

func resolve(t *testing.T, src string) (map[ast.Expr]int, []diag, []diag) {
	t.Helper()

	toks := scanner.ScanTokens([]byte(src), func(line int, msg string) {
		t.Fatalf("scan error line %d: %s", line, msg)
	})
	stmts := parser.Parse(toks, func(tok token.Value, msg string) {
		t.Fatalf("parse error line %d: %s", tok.Line, msg)
	})

	locals := make(map[ast.Expr]int)
	var errs, warns []diag
	resolver.Resolve(stmts, locals,
		func(tok token.Value, msg string) { errs = append(errs, diag{tok, msg}) },
		func(tok token.Value, msg string) { warns = append(warns, diag{tok, msg}) })
	return locals, errs, warns
}

func errMsgs(diags []diag) []string {
	msgs := make([]string, len(diags))
	for i, d := range diags {
		msgs[i] = d.msg
	}
	return msgs
}

func TestResolveGlobalUnannotated(t *testing.T) {
	locals, errs, _ := resolve(t, "var a = 1; print a;")
	require.Empty(t, errs)
	// globals are looked up at runtime, never annotated
	require.Empty(t, locals)
}

func TestResolveBlockDepths(t *testing.T) {
	locals, errs, _ := resolve(t, `var a = 1;
{
	var b = a;
	{
		print b;
		print a;
	}
	print b;
}`)
	require.Empty(t, errs)

	byDepth := map[int]int{}
	for _, d := range locals {
		byDepth[d]++
	}
	// the two prints of b: the inner one at depth 1, the outer one at depth
	// 0; a misses every scope both times (global)
	assert.Equal(t, 1, byDepth[0])
	assert.Equal(t, 1, byDepth[1])
	assert.Len(t, locals, 2)
}

func TestResolveClosureDepth(t *testing.T) {
	locals, errs, _ := resolve(t, `fun make() {
	var i = 0;
	fun inc() {
		i = i + 1;
		return i;
	}
	return inc;
}`)
	require.Empty(t, errs)

	// inside inc: the assign and both reads of i are one function scope
	// away (params+body share one scope per function)
	var ones int
	for _, d := range locals {
		if d == 1 {
			ones++
		}
	}
	assert.Equal(t, 3, ones)
}

func TestResolveSelfInitialize(t *testing.T) {
	_, errs, _ := resolve(t, "{ var x = x; }")
	require.Contains(t, errMsgs(errs), "static: uninitialized variable")
}

func TestResolveRedeclaration(t *testing.T) {
	_, errs, _ := resolve(t, "{ var x = 1; var x = 2; print x; }")
	msgs := errMsgs(errs)
	require.Contains(t, msgs, "static: redeclaration in non-global scope")
	require.Contains(t, msgs, "static: previously declared here")
}

func TestResolveGlobalRedeclarationAllowed(t *testing.T) {
	_, errs, _ := resolve(t, "var x = 1; var x = 2; print x;")
	require.Empty(t, errs)
}

func TestResolveUnusedDiagnostics(t *testing.T) {
	_, errs, warns := resolve(t, `{
	var unused;
	var set = 1;
	set = 2;
}`)
	require.Empty(t, errs)
	msgs := errMsgs(warns)
	require.Contains(t, msgs, "declared but not used")
	require.Contains(t, msgs, "set but never used")
}

func TestResolveLoopFlowOutsideLoop(t *testing.T) {
	_, errs, _ := resolve(t, "break;")
	require.Equal(t, []string{"outside loop scope"}, errMsgs(errs))

	_, errs, _ = resolve(t, "continue;")
	require.Equal(t, []string{"outside loop scope"}, errMsgs(errs))

	_, errs, _ = resolve(t, "while (true) { break; }")
	require.Empty(t, errs)
}

func TestResolveReturnOutsideFunction(t *testing.T) {
	_, errs, _ := resolve(t, "return 1;")
	require.Equal(t, []string{"outside function scope"}, errMsgs(errs))
}

func TestResolveReturnValueInCtor(t *testing.T) {
	_, errs, _ := resolve(t, `class P {
	fun P() { return 1; }
}`)
	require.Equal(t, []string{"returning a value inside constructor"}, errMsgs(errs))

	// a bare return is fine
	_, errs, _ = resolve(t, `class P {
	fun P() { return; }
}`)
	require.Empty(t, errs)
}

func TestResolveThisPlacement(t *testing.T) {
	_, errs, _ := resolve(t, "print this;")
	require.Equal(t, []string{"outside method scope"}, errMsgs(errs))

	_, errs, _ = resolve(t, `class C {
	class fun s() { return this; }
}`)
	require.Equal(t, []string{"in static method"}, errMsgs(errs))

	_, errs, _ = resolve(t, `class C {
	fun m() { return this; }
}`)
	require.Empty(t, errs)
}

func TestResolveSuperPlacement(t *testing.T) {
	_, errs, _ := resolve(t, "super.m();")
	require.Equal(t, []string{"outside method scope"}, errMsgs(errs))

	_, errs, _ = resolve(t, `class C {
	fun m() { return super.m; }
}`)
	require.Equal(t, []string{"class does not have an ancestor"}, errMsgs(errs))

	_, errs, _ = resolve(t, `class A { fun m() { return 1; } }
class B < A {
	fun m() { return super.m; }
}`)
	require.Empty(t, errs)
}

func TestResolveInheritFromSelf(t *testing.T) {
	_, errs, _ := resolve(t, "class A < A { }")
	require.Equal(t, []string{"inherits from itself"}, errMsgs(errs))
}

func TestResolveStaticCtor(t *testing.T) {
	_, errs, _ := resolve(t, `class A {
	class fun A() { return 1; }
}`)
	require.Equal(t, []string{"constructor defined as a static method"}, errMsgs(errs))
}

func TestResolveThisDepth(t *testing.T) {
	locals, errs, _ := resolve(t, `class C {
	fun m() { return this; }
}`)
	require.Empty(t, errs)

	// this resolves one hop out of the method scope
	var found bool
	for e, d := range locals {
		if _, ok := e.(*ast.ThisExpr); ok {
			found = true
			assert.Equal(t, 1, d)
		}
	}
	require.True(t, found)
}

func TestResolveSuperDepth(t *testing.T) {
	locals, errs, _ := resolve(t, `class A { fun g() { return 1; } }
class B < A {
	fun m() { return super.g; }
}`)
	require.Empty(t, errs)

	// super sits one scope above this: method -> this-scope -> super-scope
	var found bool
	for e, d := range locals {
		if _, ok := e.(*ast.SuperExpr); ok {
			found = true
			assert.Equal(t, 2, d)
		}
	}
	require.True(t, found)
}
