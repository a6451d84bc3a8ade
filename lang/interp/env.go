package interp

import (
	"github.com/dolthub/swiss"
	"github.com/mna/lotus/lang/token"
)

// binding is an environment entry. A declared but not yet initialized name
// has set == false; reading it is a runtime error.
type binding struct {
	v   Value
	set bool
}

// Environment is one frame of the chained environment model: a mapping of
// names to bindings plus a pointer to the enclosing frame, nil at global.
type Environment struct {
	enclosing *Environment
	m         *swiss.Map[string, binding]
	reach     bool
}

func newEnvironment(enclosing *Environment) *Environment {
	return &Environment{
		enclosing: enclosing,
		m:         swiss.NewMap[string, binding](8),
	}
}

// def declares tok in this frame, with a value if init is true. Redeclaring
// is allowed in the global frame (for the REPL); elsewhere it is an error
// unless the existing binding is uninitialized and the new definition
// provides a value, which is how the two-step var protocol initializes.
func (e *Environment) def(tok token.Value, v Value, init bool) error {
	if e.enclosing != nil {
		if b, ok := e.m.Get(tok.Raw); ok && (b.set || !init) {
			return rtErr(tok, "redeclaration")
		}
	}
	e.m.Put(tok.Raw, binding{v: v, set: init})
	return nil
}

func (e *Environment) get(tok token.Value) (Value, error) {
	if b, ok := e.m.Get(tok.Raw); ok {
		if !b.set {
			return nil, rtErr(tok, "uninitialized variable")
		}
		return b.v, nil
	}
	if e.enclosing != nil {
		return e.enclosing.get(tok)
	}
	return nil, rtErr(tok, "undeclared variable")
}

func (e *Environment) getAt(tok token.Value, distance int) (Value, error) {
	return e.ancestor(distance).get(tok)
}

// ancestor returns the frame distance enclosing-hops away. The resolver
// guarantees the chain is long enough for every distance it records.
func (e *Environment) ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.enclosing
	}
	return env
}

func (e *Environment) assign(tok token.Value, v Value) error {
	if _, ok := e.m.Get(tok.Raw); !ok {
		if e.enclosing != nil {
			return e.enclosing.assign(tok, v)
		}
		return rtErr(tok, "undeclared variable")
	}
	e.m.Put(tok.Raw, binding{v: v, set: true})
	return nil
}

func (e *Environment) assignAt(tok token.Value, v Value, distance int) error {
	return e.ancestor(distance).assign(tok, v)
}
