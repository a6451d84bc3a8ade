package interp

import (
	"fmt"
	"math"

	"github.com/mna/lotus/lang/ast"
	"github.com/mna/lotus/lang/token"
	"github.com/mna/lotus/lang/types"
)

// eval evaluates an expression to a value. Expressions are evaluated
// strictly left to right; intermediate heap values are pinned so a
// collection triggered mid-expression cannot reclaim them.
func (it *Interp) eval(e ast.Expr) (Value, error) {
	switch e := e.(type) {
	case *ast.LiteralExpr:
		return literalValue(e.Tok), nil

	case *ast.ParenExpr:
		return it.eval(e.Expr)

	case *ast.BinOpExpr:
		return it.evalBinOp(e)

	case *ast.LogicalExpr:
		return it.evalLogical(e)

	case *ast.CommaExpr:
		if _, err := it.eval(e.Left); err != nil {
			return nil, err
		}
		return it.eval(e.Right)

	case *ast.UnaryOpExpr:
		return it.evalUnaryOp(e)

	case *ast.CondExpr:
		return it.evalCond(e)

	case *ast.IdentExpr:
		return it.lookupVariable(e.Name, e)

	case *ast.AssignExpr:
		return it.evalAssign(e)

	case *ast.CallExpr:
		return it.evalCall(e)

	case *ast.DotExpr:
		return it.evalGet(e)

	case *ast.SetExpr:
		return it.evalSet(e)

	case *ast.ThisExpr:
		return it.lookupVariable(e.This, e)

	case *ast.SuperExpr:
		return it.evalSuper(e)

	case *ast.FuncExpr:
		ctx := it.pin()
		defer ctx.release()
		return it.allocFunc(ctx, e.Fn, it.envp, false)
	}

	panic(fmt.Sprintf("unhandled expression node %T", e))
}

func literalValue(tok token.Value) Value {
	switch tok.Type {
	case token.TRUE:
		return types.True
	case token.FALSE:
		return types.False
	case token.NIL:
		return types.Nil
	case token.NUMBER:
		return types.Number(tok.Float)
	case token.STRING:
		return types.String(tok.String)
	}
	panic(fmt.Sprintf("unhandled literal token %v", tok.Type))
}

// lookupVariable fetches a resolved reference from the recorded ancestor
// frame, or from the global frame when the resolver left it unannotated.
func (it *Interp) lookupVariable(tok token.Value, e ast.Expr) (Value, error) {
	if d, ok := it.locals[e]; ok {
		return it.envp.getAt(tok, d)
	}
	return it.global.get(tok)
}

func checkNumber(op token.Value, v Value) (types.Number, error) {
	n, ok := v.(types.Number)
	if !ok {
		return 0, rtErr(op, "operand must be a number, got: "+v.Type())
	}
	return n, nil
}

func checkNumbers(op token.Value, left, right Value) (types.Number, types.Number, error) {
	l, lok := left.(types.Number)
	r, rok := right.(types.Number)
	if !lok || !rok {
		return 0, 0, rtErr(op, "operands must be numbers, got: "+left.Type()+", "+right.Type())
	}
	return l, r, nil
}

func (it *Interp) evalBinOp(e *ast.BinOpExpr) (Value, error) {
	ctx := it.pin()
	defer ctx.release()

	left, err := it.eval(e.Left)
	if err != nil {
		return nil, err
	}
	ctx.add(left)
	right, err := it.eval(e.Right)
	if err != nil {
		return nil, err
	}
	ctx.add(right)

	switch e.Op.Type {
	case token.MINUS:
		l, r, err := checkNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return l - r, nil

	case token.STAR:
		l, r, err := checkNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return l * r, nil

	case token.SLASH:
		l, r, err := checkNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		if types.NumEqual(float64(r), 0) {
			return nil, rtErr(e.Op, "division by zero")
		}
		return l / r, nil

	case token.PERCENT:
		l, r, err := checkNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		if types.NumEqual(float64(r), 0) {
			return nil, rtErr(e.Op, "division by zero")
		}
		return types.Number(math.Mod(float64(l), float64(r))), nil

	case token.PLUS:
		if l, lok := left.(types.Number); lok {
			if r, rok := right.(types.Number); rok {
				return l + r, nil
			}
		}
		if l, lok := left.(types.String); lok {
			if r, rok := right.(types.String); rok {
				return l + r, nil
			}
		}
		return nil, rtErr(e.Op, "operands must be numbers or strings, got: "+
			left.Type()+", "+right.Type())

	case token.EQEQ:
		return types.Bool(types.Equal(left, right)), nil

	case token.BANGEQ:
		return types.Bool(!types.Equal(left, right)), nil

	case token.LT:
		l, r, err := checkNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return types.Bool(l < r), nil

	case token.LE:
		l, r, err := checkNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return types.Bool(l <= r), nil

	case token.GT:
		l, r, err := checkNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return types.Bool(l > r), nil

	case token.GE:
		l, r, err := checkNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return types.Bool(l >= r), nil
	}

	panic(fmt.Sprintf("unhandled binary operator %v", e.Op.Type))
}

// evalLogical short-circuits: or yields the left operand if truthful, and
// yields it if falsy; otherwise the right operand, unevaluated until here.
func (it *Interp) evalLogical(e *ast.LogicalExpr) (Value, error) {
	ctx := it.pin()
	defer ctx.release()

	left, err := it.eval(e.Left)
	if err != nil {
		return nil, err
	}
	ctx.add(left)

	switch e.Op.Type {
	case token.OR:
		if types.Truth(left) {
			return left, nil
		}
		return it.eval(e.Right)
	case token.AND:
		if !types.Truth(left) {
			return left, nil
		}
		return it.eval(e.Right)
	}

	panic(fmt.Sprintf("unhandled logical operator %v", e.Op.Type))
}

func (it *Interp) evalUnaryOp(e *ast.UnaryOpExpr) (Value, error) {
	right, err := it.eval(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op.Type {
	case token.MINUS:
		n, err := checkNumber(e.Op, right)
		if err != nil {
			return nil, err
		}
		return -n, nil
	case token.BANG:
		return types.Bool(!types.Truth(right)), nil
	}

	panic(fmt.Sprintf("unhandled unary operator %v", e.Op.Type))
}

// evalCond evaluates the condition, then exactly one branch.
func (it *Interp) evalCond(e *ast.CondExpr) (Value, error) {
	ctx := it.pin()
	defer ctx.release()

	cond, err := it.eval(e.Cond)
	if err != nil {
		return nil, err
	}
	ctx.add(cond)

	if types.Truth(cond) {
		return it.eval(e.Then)
	}
	return it.eval(e.Else)
}

func (it *Interp) evalAssign(e *ast.AssignExpr) (Value, error) {
	v, err := it.eval(e.Right)
	if err != nil {
		return nil, err
	}
	if d, ok := it.locals[e]; ok {
		if err := it.envp.assignAt(e.Name, v, d); err != nil {
			return nil, err
		}
	} else if err := it.global.assign(e.Name, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (it *Interp) evalCall(e *ast.CallExpr) (Value, error) {
	ctx := it.pin()
	defer ctx.release()

	callee, err := it.eval(e.Fn)
	if err != nil {
		return nil, err
	}
	ctx.add(callee)

	fn, ok := callee.(Callable)
	if !ok {
		return nil, rtErr(e.Rparen, "call to "+callee.Type()+
			": can only call functions and constructors")
	}
	if fn.Arity() != len(e.Args) {
		return nil, rtErr(e.Rparen, fmt.Sprintf("expected %d arguments, got %d",
			fn.Arity(), len(e.Args)))
	}

	args := make([]Value, 0, len(e.Args))
	for _, a := range e.Args {
		v, err := it.eval(a)
		if err != nil {
			return nil, err
		}
		args = append(args, ctx.add(v))
	}
	return fn.Call(it, args)
}

func (it *Interp) evalGet(e *ast.DotExpr) (Value, error) {
	ctx := it.pin()
	defer ctx.release()

	obj, err := it.eval(e.Left)
	if err != nil {
		return nil, err
	}
	ctx.add(obj)

	switch obj := obj.(type) {
	case *Instance:
		v, found, err := obj.get(it, e.Name.Raw)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, rtErr(e.Name, "undefined property")
		}
		return v, nil

	case *Class:
		// on a class value, only static methods are visible
		if m := obj.getStatic(e.Name.Raw); m != nil {
			return m, nil
		}
		return nil, rtErr(e.Name, "undefined property")

	default:
		return nil, rtErr(e.Name, "property access on a non-class object")
	}
}

func (it *Interp) evalSet(e *ast.SetExpr) (Value, error) {
	ctx := it.pin()
	defer ctx.release()

	obj, err := it.eval(e.Get.Left)
	if err != nil {
		return nil, err
	}
	ctx.add(obj)

	inst, ok := obj.(*Instance)
	if !ok {
		return nil, rtErr(e.Name, "only class instances have fields")
	}

	rvalue, err := it.eval(e.Right)
	if err != nil {
		return nil, err
	}
	ctx.add(rvalue)
	inst.set(e.Name.Raw, rvalue)
	return rvalue, nil
}

// evalSuper searches the superclass method chain, instance methods first,
// and rebinds this from the frame one hop below the super frame.
func (it *Interp) evalSuper(e *ast.SuperExpr) (Value, error) {
	distance := it.locals[e]
	sv, err := it.envp.getAt(e.Super, distance)
	if err != nil {
		return nil, err
	}
	super, ok := sv.(*Class)
	if !ok {
		panic(fmt.Sprintf("super resolved to a %s value", sv.Type()))
	}

	if m := super.getMethod(e.Method.Raw); m != nil {
		tv, err := it.envp.getAt(token.MakeValue(token.THIS, e.Super.Line), distance-1)
		if err != nil {
			return nil, err
		}
		return m.bind(it, tv.(*Instance))
	}
	if m := super.getStatic(e.Method.Raw); m != nil {
		return m, nil
	}
	return nil, rtErr(e.Method, "undefined property")
}
