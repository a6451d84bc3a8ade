// Package resolver implements the static resolution pass that binds variable
// references to their declarations and validates the scope-sensitive rules
// of the language.
//
// # Scopes
//
// The resolver maintains a stack of lexical scopes, one per block, keyed by
// lexeme. Each entry tracks the use state of the name: declared, set or
// read. Names that miss every scope are assumed global and left to the
// runtime to validate. On scope exit, names still in the declared or set
// state produce "declared but not used" / "set but never used" diagnostics,
// which do not fail the pipeline.
//
// # Hop distances
//
// For every reference that hits a scope, the resolver records the number of
// enclosing hops between the reference and its declaration in the locals
// map owned by the interpreter. The evaluator fetches resolved references
// from exactly that ancestor frame, and falls back to the global frame for
// unresolved ones.
//
// # Scope kinds
//
// A bit set tracks which construct kinds enclose the current node (loop,
// function, class, method, constructor, static method, subclass); several
// may hold at once. It validates the placement rules: this and super only
// inside methods (super additionally requiring a subclass), return only
// inside functions and without a value inside constructors, break and
// continue only inside loops.
package resolver

import (
	"github.com/mna/lotus/lang/ast"
	"github.com/mna/lotus/lang/token"
)

// VarState is the use state of a name inside a scope.
type VarState uint8

// List of use states. A name starts declared, becomes set when assigned a
// value, and read when referenced.
const (
	VarDecl VarState = iota
	VarSet
	VarRead
)

// ScopeType is a bit set of the construct kinds enclosing the current node.
type ScopeType uint

// List of scope kinds, combined with bitwise or.
const (
	Loop ScopeType = 1 << iota
	Func
	Class
	Method
	Ctor
	StaticMethod
	Subclass
)

// Resolve walks the statement list, validating scope rules and recording
// hop distances for resolved references into locals (keyed by expression
// identity). Errors are reported through errh, non-fatal diagnostics
// through warnh; both receive the offending token and a message.
func Resolve(stmts []ast.Stmt, locals map[ast.Expr]int, errh, warnh func(tok token.Value, msg string)) {
	r := resolver{locals: locals, errh: errh, warnh: warnh}
	for _, s := range stmts {
		r.stmt(s)
	}
}

type binding struct {
	tok   token.Value
	state VarState
}

type scope map[string]*binding

type resolver struct {
	scopes []scope
	cur    ScopeType
	locals map[ast.Expr]int
	errh   func(tok token.Value, msg string)
	warnh  func(tok token.Value, msg string)
}

func (r *resolver) error(tok token.Value, msg string) {
	if r.errh != nil {
		r.errh(tok, msg)
	}
}

func (r *resolver) warn(tok token.Value, msg string) {
	if r.warnh != nil {
		r.warnh(tok, msg)
	}
}

func (r *resolver) is(st ScopeType) bool { return r.cur&st != 0 }

func (r *resolver) beginScope() {
	r.scopes = append(r.scopes, scope{})
}

func (r *resolver) endScope() {
	top := r.scopes[len(r.scopes)-1]
	for _, b := range top {
		switch b.state {
		case VarDecl:
			r.warn(b.tok, "declared but not used")
		case VarSet:
			r.warn(b.tok, "set but never used")
		}
	}
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *resolver) declare(tok token.Value) {
	// names in the global scope are left to the runtime
	if len(r.scopes) == 0 {
		return
	}
	top := r.scopes[len(r.scopes)-1]
	if prev, ok := top[tok.Raw]; ok {
		r.error(tok, "static: redeclaration in non-global scope")
		r.error(prev.tok, "static: previously declared here")
	}
	top[tok.Raw] = &binding{tok: tok, state: VarDecl}
}

func (r *resolver) initialize(tok token.Value) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][tok.Raw] = &binding{tok: tok, state: VarSet}
}

// resolveLocal looks the name up innermost-outwards and, on a hit, records
// the hop distance for e and returns the binding. Names that miss every
// scope are assumed global.
func (r *resolver) resolveLocal(e ast.Expr, tok token.Value) *binding {
	for count, i := 0, len(r.scopes)-1; i >= 0; count, i = count+1, i-1 {
		if b, ok := r.scopes[i][tok.Raw]; ok {
			r.locals[e] = count
			return b
		}
	}
	return nil
}

func (r *resolver) stmt(stmt ast.Stmt) {
	switch stmt := stmt.(type) {
	case *ast.ExprStmt:
		r.expr(stmt.Expr)

	case *ast.PrintStmt:
		r.expr(stmt.Expr)

	case *ast.VarStmt:
		r.declare(stmt.Name)
		if stmt.Init != nil {
			r.expr(stmt.Init)
			r.initialize(stmt.Name)
		}

	case *ast.Block:
		r.beginScope()
		for _, s := range stmt.Stmts {
			r.stmt(s)
		}
		r.endScope()

	case *ast.IfStmt:
		r.expr(stmt.Cond)
		r.stmt(stmt.Then)
		if stmt.Else != nil {
			r.stmt(stmt.Else)
		}

	case *ast.LoopStmt:
		save := r.cur
		r.cur |= Loop
		// the body is resolved first, then the post expression and the
		// condition; the order only shows in the order of the diagnostics
		r.stmt(stmt.Body)
		if stmt.Post != nil {
			r.expr(stmt.Post)
		}
		r.expr(stmt.Cond)
		r.cur = save

	case *ast.LoopFlowStmt:
		if !r.is(Loop) {
			r.error(stmt.Tok, "outside loop scope")
		}

	case *ast.ReturnStmt:
		if !r.is(Func) {
			r.error(stmt.Return, "outside function scope")
		}
		if r.is(Ctor) && stmt.Expr != nil {
			r.error(stmt.Return, "returning a value inside constructor")
		}
		if stmt.Expr != nil {
			r.expr(stmt.Expr)
		}

	case *ast.FuncStmt:
		r.declare(stmt.Name)
		r.initialize(stmt.Name)
		r.function(stmt.Fn)

	case *ast.ClassStmt:
		r.class(stmt)
	}
}

func (r *resolver) class(stmt *ast.ClassStmt) {
	save := r.cur
	defer func() { r.cur = save }()

	r.declare(stmt.Name)
	r.initialize(stmt.Name)

	if stmt.Super != nil {
		if stmt.Super.Name.Raw == stmt.Name.Raw {
			r.error(stmt.Super.Name, "inherits from itself")
		} else {
			r.expr(stmt.Super)
		}
	}

	r.cur |= Func | Method | Class
	if stmt.Super != nil {
		r.cur |= Subclass
		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = &binding{
			tok: token.MakeValue(token.SUPER, stmt.Name.Line), state: VarRead,
		}
	}
	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = &binding{
		tok: token.MakeValue(token.THIS, stmt.Name.Line), state: VarRead,
	}

	if stmt.Ctor != nil {
		ctorSave := r.cur
		r.cur |= Ctor
		r.function(stmt.Ctor.Fn)
		r.cur = ctorSave
	}
	for _, m := range stmt.Methods {
		r.function(m.Fn)
	}
	r.endScope()

	r.cur |= StaticMethod
	for _, m := range stmt.Statics {
		if m.Name.Raw == stmt.Name.Raw {
			r.error(m.Name, "constructor defined as a static method")
		}
		r.function(m.Fn)
	}
	if stmt.Super != nil {
		r.endScope()
	}
}

// function resolves the shared functional aspect: parameters and body share
// a single new scope, with the function kind set.
func (r *resolver) function(fn *ast.Function) {
	save := r.cur
	r.cur |= Func
	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.initialize(param)
	}
	for _, s := range fn.Body.Stmts {
		r.stmt(s)
	}
	r.endScope()
	r.cur = save
}

func (r *resolver) expr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.LiteralExpr:
		// nothing to resolve

	case *ast.ParenExpr:
		r.expr(e.Expr)

	case *ast.BinOpExpr:
		r.expr(e.Left)
		r.expr(e.Right)

	case *ast.LogicalExpr:
		r.expr(e.Left)
		r.expr(e.Right)

	case *ast.CommaExpr:
		r.expr(e.Left)
		r.expr(e.Right)

	case *ast.UnaryOpExpr:
		r.expr(e.Right)

	case *ast.CondExpr:
		r.expr(e.Cond)
		r.expr(e.Then)
		r.expr(e.Else)

	case *ast.IdentExpr:
		b := r.resolveLocal(e, e.Name)
		if len(r.scopes) > 0 && b != nil && b.state == VarDecl {
			// e.g. var x = x;
			r.error(e.Name, "static: uninitialized variable")
		}
		if b != nil && b.state == VarSet {
			b.state = VarRead
		}
		// on a miss, assume the name is defined and global even though it
		// might not be, leaving the check to the interpreter

	case *ast.AssignExpr:
		r.expr(e.Right)
		if b := r.resolveLocal(e, e.Name); b != nil && b.state != VarRead {
			b.state = VarSet
		}

	case *ast.CallExpr:
		r.expr(e.Fn)
		for _, a := range e.Args {
			r.expr(a)
		}

	case *ast.DotExpr:
		r.expr(e.Left)

	case *ast.SetExpr:
		r.expr(e.Get)
		r.expr(e.Right)

	case *ast.ThisExpr:
		if !r.is(Method) {
			r.error(e.This, "outside method scope")
		}
		if r.is(StaticMethod) {
			r.error(e.This, "in static method")
		}
		r.resolveLocal(e, e.This)

	case *ast.SuperExpr:
		if !r.is(Method) {
			r.error(e.Super, "outside method scope")
		} else if !r.is(Subclass) {
			r.error(e.Super, "class does not have an ancestor")
		}
		r.resolveLocal(e, e.Super)

	case *ast.FuncExpr:
		r.function(e.Fn)
	}
}
