package interp

import (
	"testing"

	"github.com/mna/lotus/lang/token"
	"github.com/mna/lotus/lang/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ident(name string) token.Value {
	return token.Value{Type: token.IDENT, Raw: name, Line: 1}
}

func TestEnvDefGet(t *testing.T) {
	g := newEnvironment(nil)

	require.NoError(t, g.def(ident("x"), types.Number(1), true))
	v, err := g.get(ident("x"))
	require.NoError(t, err)
	assert.Equal(t, types.Number(1), v)

	_, err = g.get(ident("y"))
	require.EqualError(t, err, "undeclared variable")
}

func TestEnvUninitialized(t *testing.T) {
	g := newEnvironment(nil)

	require.NoError(t, g.def(ident("x"), nil, false))
	_, err := g.get(ident("x"))
	require.EqualError(t, err, "uninitialized variable")
}

func TestEnvRedeclaration(t *testing.T) {
	g := newEnvironment(nil)
	e := newEnvironment(g)

	// redeclaring in the global frame is allowed (REPL)
	require.NoError(t, g.def(ident("x"), types.Number(1), true))
	require.NoError(t, g.def(ident("x"), types.Number(2), true))

	// two uninitialized declarations of the same local is an error
	require.NoError(t, e.def(ident("a"), nil, false))
	require.EqualError(t, e.def(ident("a"), nil, false), "redeclaration")

	// the two-step var protocol: uninitialized then initialized is fine
	require.NoError(t, e.def(ident("b"), nil, false))
	require.NoError(t, e.def(ident("b"), types.Number(5), true))

	// but an initialized local cannot be redeclared
	require.EqualError(t, e.def(ident("b"), types.Number(6), true), "redeclaration")
}

func TestEnvAssign(t *testing.T) {
	g := newEnvironment(nil)
	e := newEnvironment(g)

	require.NoError(t, g.def(ident("x"), types.Number(1), true))

	// assigning walks up to the declaring frame
	require.NoError(t, e.assign(ident("x"), types.Number(2)))
	v, err := g.get(ident("x"))
	require.NoError(t, err)
	assert.Equal(t, types.Number(2), v)

	require.EqualError(t, e.assign(ident("nope"), types.Nil), "undeclared variable")
}

func TestEnvAncestor(t *testing.T) {
	g := newEnvironment(nil)
	e1 := newEnvironment(g)
	e2 := newEnvironment(e1)

	require.Same(t, e2, e2.ancestor(0))
	require.Same(t, e1, e2.ancestor(1))
	require.Same(t, g, e2.ancestor(2))

	require.NoError(t, g.def(ident("x"), types.String("deep"), true))
	v, err := e2.getAt(ident("x"), 2)
	require.NoError(t, err)
	assert.Equal(t, types.String("deep"), v)

	// shadowing: the distance picks the right frame
	require.NoError(t, e1.def(ident("x"), types.String("mid"), true))
	v, err = e2.getAt(ident("x"), 1)
	require.NoError(t, err)
	assert.Equal(t, types.String("mid"), v)

	require.NoError(t, e2.assignAt(ident("x"), types.String("mid2"), 1))
	v, err = e1.get(ident("x"))
	require.NoError(t, err)
	assert.Equal(t, types.String("mid2"), v)
}
