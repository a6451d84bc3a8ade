package interp

import (
	"fmt"

	"github.com/mna/lotus/lang/ast"
	"github.com/mna/lotus/lang/token"
	"github.com/mna/lotus/lang/types"
)

// exec executes a statement. Control flow signals and runtime errors unwind
// through the returned error.
func (it *Interp) exec(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.ExprStmt:
		_, err := it.eval(s.Expr)
		return err

	case *ast.PrintStmt:
		v, err := it.eval(s.Expr)
		if err != nil {
			return err
		}
		fmt.Fprintf(it.stdout, "%s\n", v.String())
		return nil

	case *ast.VarStmt:
		// define as uninitialized first so that the initializer sees the
		// name as declared but unset (var x = x; fails)
		if err := it.envp.def(s.Name, nil, false); err != nil {
			return err
		}
		if s.Init != nil {
			v, err := it.eval(s.Init)
			if err != nil {
				return err
			}
			return it.envp.def(s.Name, v, true)
		}
		return nil

	case *ast.Block:
		ctx := it.pin()
		defer ctx.release()
		env, err := it.allocEnv(ctx, it.envp)
		if err != nil {
			return err
		}
		return it.execBlock(s, env)

	case *ast.IfStmt:
		return it.execIf(s)

	case *ast.LoopStmt:
		return it.execLoop(s)

	case *ast.LoopFlowStmt:
		switch s.Tok.Type {
		case token.BREAK:
			return errBreak
		case token.CONTINUE:
			return errContinue
		}
		panic(fmt.Sprintf("unhandled loop flow token %v", s.Tok.Type))

	case *ast.ReturnStmt:
		// implicitly return nil by default
		ret := Value(types.Nil)
		if s.Expr != nil {
			v, err := it.eval(s.Expr)
			if err != nil {
				return err
			}
			ret = v
		}
		return &returnSignal{value: ret}

	case *ast.FuncStmt:
		ctx := it.pin()
		defer ctx.release()
		f, err := it.allocFunc(ctx, s.Fn, it.envp, false)
		if err != nil {
			return err
		}
		return it.envp.def(s.Name, f, true)

	case *ast.ClassStmt:
		return it.execClass(s)
	}

	panic(fmt.Sprintf("unhandled statement node %T", s))
}

// execBlock executes the statements with env as the current environment,
// restoring the previous one on the way out, error or not.
func (it *Interp) execBlock(b *ast.Block, env *Environment) error {
	save := it.envp
	it.envp = env
	defer func() { it.envp = save }()

	for _, s := range b.Stmts {
		if err := it.exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (it *Interp) execIf(s *ast.IfStmt) error {
	ctx := it.pin()
	defer ctx.release()

	cond, err := it.eval(s.Cond)
	if err != nil {
		return err
	}
	ctx.add(cond)

	if types.Truth(cond) {
		return it.exec(s.Then)
	}
	if s.Else != nil {
		return it.exec(s.Else)
	}
	return nil
}

// execLoop runs the loop, catching break and continue. The post expression
// of a desugared for loop runs after each body pass and after continue, but
// not after break.
func (it *Interp) execLoop(s *ast.LoopStmt) error {
	ctx := it.pin()
	defer ctx.release()

	for {
		cond, err := it.eval(s.Cond)
		if err != nil {
			return err
		}
		ctx.add(cond)
		if !types.Truth(cond) {
			return nil
		}

		if err := it.exec(s.Body); err != nil {
			if err == errBreak {
				return nil
			}
			if err != errContinue {
				return err
			}
		}
		if s.Post != nil {
			if _, err := it.eval(s.Post); err != nil {
				return err
			}
		}
	}
}

func (it *Interp) execClass(s *ast.ClassStmt) error {
	cls, err := it.classValue(s)
	if err != nil {
		return err
	}
	return it.envp.def(s.Name, cls, true)
}

// classValue evaluates the superclass reference, builds the method tables
// closing over the (possibly super-augmented) environment and constructs
// the class value.
func (it *Interp) classValue(s *ast.ClassStmt) (*Class, error) {
	ctx := it.pin()
	defer ctx.release()

	var (
		super    *Class
		superEnv *Environment
	)
	if s.Super != nil {
		sv, err := it.eval(s.Super)
		if err != nil {
			return nil, err
		}
		ctx.add(sv)

		cls, ok := sv.(*Class)
		if !ok {
			return nil, rtErr(s.Super.Name, "expected class, got "+sv.Type())
		}
		super = cls

		superEnv, err = it.allocEnv(ctx, it.envp)
		if err != nil {
			return nil, err
		}
		if err := superEnv.def(token.MakeValue(token.SUPER, s.Name.Line), super, true); err != nil {
			return nil, err
		}

		save := it.envp
		it.envp = superEnv
		defer func() { it.envp = save }()
	}

	methods := make(map[string]*UserFunc, len(s.Methods)+1)
	for _, m := range s.Methods {
		f, err := it.allocFunc(ctx, m.Fn, it.envp, false)
		if err != nil {
			return nil, err
		}
		methods[m.Name.Raw] = f
	}
	statics := make(map[string]*UserFunc, len(s.Statics))
	for _, m := range s.Statics {
		f, err := it.allocFunc(ctx, m.Fn, it.envp, false)
		if err != nil {
			return nil, err
		}
		statics[m.Name.Raw] = f
	}

	var ctorArity int
	if s.Ctor != nil {
		ctorArity = len(s.Ctor.Fn.Params)
		f, err := it.allocFunc(ctx, s.Ctor.Fn, it.envp, true)
		if err != nil {
			return nil, err
		}
		methods[s.Name.Raw] = f
	}

	return it.allocClass(ctx, s.Name.Raw, ctorArity, methods, statics, super, superEnv)
}
