package interp

import (
	"unsafe"

	"github.com/mna/lotus/lang/ast"
)

// The reclaimer's universe: environments, functions, classes and instances
// are heap objects, tracked in the interpreter's traced list and accounted
// against the configured heap limit by their in-memory struct size. Marking
// starts from the roots (the pin stack and the current environment); sweep
// drops every traced object left unmarked, which releases it.

var (
	envSize      = int(unsafe.Sizeof(Environment{}))
	funcSize     = int(unsafe.Sizeof(UserFunc{}))
	classSize    = int(unsafe.Sizeof(Class{}))
	instanceSize = int(unsafe.Sizeof(Instance{}))
)

// heapObject is implemented by every reclaimable runtime object.
type heapObject interface {
	reachable() bool
	unmark()
	size() int
}

func (e *Environment) reachable() bool { return e.reach }
func (e *Environment) unmark()         { e.reach = false }
func (e *Environment) size() int       { return envSize }

func (f *UserFunc) reachable() bool { return f.reach }
func (f *UserFunc) unmark()         { f.reach = false }
func (f *UserFunc) size() int       { return funcSize }

func (c *Class) reachable() bool { return c.reach }
func (c *Class) unmark()         { c.reach = false }
func (c *Class) size() int       { return classSize }

func (o *Instance) reachable() bool { return o.reach }
func (o *Instance) unmark()         { o.reach = false }
func (o *Instance) size() int       { return instanceSize }

// pinCtx is the scoped allocation handle, the only supported way to
// allocate. Every value added is pushed onto the interpreter's root stack
// and counted; release pops exactly that many entries. This is how the
// evaluator keeps intermediate values alive against a collection triggered
// mid-expression.
type pinCtx struct {
	it    *Interp
	count int
}

func (it *Interp) pin() *pinCtx { return &pinCtx{it: it} }

// add pins a value and returns it unchanged.
func (c *pinCtx) add(v Value) Value {
	c.it.stack = append(c.it.stack, v)
	c.count++
	return v
}

func (c *pinCtx) addEnv(e *Environment) {
	c.it.stack = append(c.it.stack, e)
	c.count++
}

func (c *pinCtx) release() {
	c.it.stack = c.it.stack[:len(c.it.stack)-c.count]
	c.count = 0
}

// reserve accounts for an allocation of the given size, collecting first if
// the limit would be reached and failing with out of memory if collecting
// did not make room.
func (it *Interp) reserve(size int) error {
	if it.heapSize+size >= it.cfg.HeapLimit {
		it.collect()
	}
	if it.heapSize+size >= it.cfg.HeapLimit {
		return &RuntimeError{Msg: "out of memory"}
	}
	it.heapSize += size
	return nil
}

func (it *Interp) allocEnv(ctx *pinCtx, enclosing *Environment) (*Environment, error) {
	if err := it.reserve(envSize); err != nil {
		return nil, err
	}
	env := newEnvironment(enclosing)
	it.traced = append(it.traced, env)
	ctx.addEnv(env)
	return env, nil
}

func (it *Interp) allocFunc(ctx *pinCtx, fn *ast.Function, enclosing *Environment, isCtor bool) (*UserFunc, error) {
	if err := it.reserve(funcSize); err != nil {
		return nil, err
	}
	f := &UserFunc{fn: fn, enclosing: enclosing, isCtor: isCtor}
	it.traced = append(it.traced, f)
	ctx.add(f)
	return f, nil
}

func (it *Interp) allocClass(ctx *pinCtx, name string, ctorArity int,
	methods, statics map[string]*UserFunc, base *Class, superEnv *Environment) (*Class, error) {

	if err := it.reserve(classSize); err != nil {
		return nil, err
	}
	c := &Class{
		name: name, ctorArity: ctorArity,
		methods: methods, statics: statics,
		base: base, superEnv: superEnv,
	}
	it.traced = append(it.traced, c)
	ctx.add(c)
	return c, nil
}

func (it *Interp) allocInstance(ctx *pinCtx, class *Class) (*Instance, error) {
	if err := it.reserve(instanceSize); err != nil {
		return nil, err
	}
	o := &Instance{class: class, fields: newFields()}
	it.traced = append(it.traced, o)
	ctx.add(o)
	return o, nil
}

// collect runs a full mark-and-sweep: mark from every root, sweep the
// traced list, then clear the mark on survivors.
func (it *Interp) collect() {
	for _, root := range it.stack {
		switch r := root.(type) {
		case *Environment:
			it.markEnv(r)
		case Value:
			it.markValue(r)
		}
	}
	it.markEnv(it.envp)

	it.sweep()
	it.unmarkAll()
}

// markValue marks a heap value not yet reached; scalars and native
// functions are ignored.
func (it *Interp) markValue(v Value) {
	switch v := v.(type) {
	case *UserFunc:
		if !v.reach {
			it.markFunc(v)
		}
	case *Class:
		if !v.reach {
			it.markClass(v)
		}
	case *Instance:
		if !v.reach {
			it.markInstance(v)
		}
	}
}

// markEnv marks the environment, its bound values and its enclosing chain.
// The chain is walked unconditionally: cycles only form through bound
// values, which markValue guards.
func (it *Interp) markEnv(env *Environment) {
	env.reach = true
	env.m.Iter(func(_ string, b binding) bool {
		if b.set {
			it.markValue(b.v)
		}
		return false
	})
	if env.enclosing != nil {
		it.markEnv(env.enclosing)
	}
}

func (it *Interp) markFunc(f *UserFunc) {
	f.reach = true
	it.markEnv(f.enclosing)
}

func (it *Interp) markClass(c *Class) {
	c.reach = true
	for _, m := range c.methods {
		it.markFunc(m)
	}
	for _, m := range c.statics {
		it.markFunc(m)
	}
	if c.base != nil {
		it.markClass(c.base)
		it.markEnv(c.superEnv)
	}
}

func (it *Interp) markInstance(o *Instance) {
	o.reach = true
	o.fields.Iter(func(_ string, v Value) bool {
		it.markValue(v)
		return false
	})
	it.markClass(o.class)
}

// sweep drops every traced object left unmarked and gives back its size.
func (it *Interp) sweep() {
	kept := it.traced[:0]
	for _, obj := range it.traced {
		if obj.reachable() {
			kept = append(kept, obj)
		} else {
			it.heapSize -= obj.size()
		}
	}
	// clear the tail so dropped objects are released
	for i := len(kept); i < len(it.traced); i++ {
		it.traced[i] = nil
	}
	it.traced = kept
}

func (it *Interp) unmarkAll() {
	for _, obj := range it.traced {
		obj.unmark()
	}
}
