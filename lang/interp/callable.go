package interp

import (
	"time"

	"github.com/dolthub/swiss"
	"github.com/mna/lotus/lang/ast"
	"github.com/mna/lotus/lang/token"
	"github.com/mna/lotus/lang/types"
)

// Value is the runtime value interface; scalar values are defined in the
// types package, reference values below.
type Value = types.Value

// A Callable value may be the operand of a call expression: functions,
// native built-ins and classes (called as constructors).
type Callable interface {
	Value

	// Arity returns the exact number of arguments the callable accepts.
	Arity() int

	// Call invokes the callable with the evaluated argument list. The
	// caller has verified arity and keeps the arguments pinned.
	Call(it *Interp, args []Value) (Value, error)
}

// NativeFunc is a built-in function. Native functions are static values,
// not heap objects: the reclaimer never traces them.
type NativeFunc struct {
	name  string
	arity int
	fn    func(it *Interp, args []Value) (Value, error)
}

var (
	_ Value    = (*NativeFunc)(nil)
	_ Callable = (*NativeFunc)(nil)
)

func (f *NativeFunc) String() string { return "function" }
func (f *NativeFunc) Type() string   { return "function" }
func (f *NativeFunc) Arity() int     { return f.arity }
func (f *NativeFunc) Call(it *Interp, args []Value) (Value, error) {
	return f.fn(it, args)
}

// clock() returns wall-clock seconds as a number.
var clockFunc = &NativeFunc{
	name: "clock",
	fn: func(*Interp, []Value) (Value, error) {
		return types.Number(float64(time.Now().UnixNano()) / 1e9), nil
	},
}

// UserFunc is a function defined by a function declaration, method or
// function literal, closing over the environment in which it was defined.
type UserFunc struct {
	fn        *ast.Function
	enclosing *Environment
	isCtor    bool
	reach     bool
}

var (
	_ Value    = (*UserFunc)(nil)
	_ Callable = (*UserFunc)(nil)
)

func (f *UserFunc) String() string { return "function" }
func (f *UserFunc) Type() string   { return "function" }
func (f *UserFunc) Arity() int     { return len(f.fn.Params) }

func (f *UserFunc) Call(it *Interp, args []Value) (Value, error) {
	ctx := it.pin()
	defer ctx.release()

	env, err := it.allocEnv(ctx, f.enclosing)
	if err != nil {
		return nil, err
	}
	for i, param := range f.fn.Params {
		if err := env.def(param, args[i], true); err != nil {
			return nil, err
		}
	}

	// implicitly return nil by default, in case of no return statement
	ret := Value(types.Nil)
	if err := it.execBlock(f.fn.Body, env); err != nil {
		rs, ok := err.(*returnSignal)
		if !ok {
			return nil, err
		}
		ret = rs.value
	}

	if f.isCtor {
		// a constructor yields this regardless of the return payload
		return f.enclosing.getAt(token.MakeValue(token.THIS, 0), 0)
	}
	return ret, nil
}

// bind returns a fresh function whose closure is a new frame, enclosing the
// original closure, that binds this to the instance. The constructor flag is
// preserved.
func (f *UserFunc) bind(it *Interp, inst *Instance) (*UserFunc, error) {
	ctx := it.pin()
	defer ctx.release()

	env, err := it.allocEnv(ctx, f.enclosing)
	if err != nil {
		return nil, err
	}
	bound, err := it.allocFunc(ctx, f.fn, env, f.isCtor)
	if err != nil {
		return nil, err
	}
	if err := env.def(token.MakeValue(token.THIS, 0), inst, true); err != nil {
		return nil, err
	}
	return bound, nil
}

// Class is a class value. Calling it constructs an instance; its arity is
// the constructor's (zero if the class has none).
type Class struct {
	name      string
	ctorArity int
	methods   map[string]*UserFunc
	statics   map[string]*UserFunc
	base      *Class
	superEnv  *Environment // frame binding super; nil without a superclass
	reach     bool
}

var (
	_ Value    = (*Class)(nil)
	_ Callable = (*Class)(nil)
)

func (c *Class) String() string { return "class" }
func (c *Class) Type() string   { return "class" }
func (c *Class) Arity() int     { return c.ctorArity }

func (c *Class) Call(it *Interp, args []Value) (Value, error) {
	ctx := it.pin()
	defer ctx.release()

	inst, err := it.allocInstance(ctx, c)
	if err != nil {
		return nil, err
	}
	if _, ok := c.methods[c.name]; ok {
		bound, err := c.methods[c.name].bind(it, inst)
		if err != nil {
			return nil, err
		}
		ctx.add(bound)
		// the constructor's return payload is ignored
		if _, err := bound.Call(it, args); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// getMethod looks the name up in this class's table, then recurses into the
// superclass. It returns nil if the method is not found.
func (c *Class) getMethod(name string) *UserFunc {
	if m, ok := c.methods[name]; ok {
		return m
	}
	if c.base != nil {
		return c.base.getMethod(name)
	}
	return nil
}

// getStatic is the symmetric lookup on the static method table.
func (c *Class) getStatic(name string) *UserFunc {
	if m, ok := c.statics[name]; ok {
		return m
	}
	if c.base != nil {
		return c.base.getStatic(name)
	}
	return nil
}

func newFields() *swiss.Map[string, Value] {
	return swiss.NewMap[string, Value](8)
}

// Instance is an instance of a class, holding its fields.
type Instance struct {
	class  *Class
	fields *swiss.Map[string, Value]
	reach  bool
}

var _ Value = (*Instance)(nil)

func (o *Instance) String() string { return "object" }
func (o *Instance) Type() string   { return "object" }

// get looks up a field first, then falls back to the class method chain,
// producing a bound method. It reports found == false for a missing
// property.
func (o *Instance) get(it *Interp, name string) (v Value, found bool, err error) {
	if v, ok := o.fields.Get(name); ok {
		return v, true, nil
	}
	if m := o.class.getMethod(name); m != nil {
		bound, err := m.bind(it, o)
		if err != nil {
			return nil, false, err
		}
		return bound, true, nil
	}
	return nil, false, nil
}

// set creates the field if absent, assigns it otherwise.
func (o *Instance) set(name string, v Value) {
	o.fields.Put(name, v)
}
