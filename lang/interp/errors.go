package interp

import (
	"errors"

	"github.com/mna/lotus/lang/token"
)

// RuntimeError is an error raised during execution. It carries the offending
// token when one is available; an out of memory error raised by the
// allocator has none.
type RuntimeError struct {
	Tok token.Value
	Msg string
}

func (e *RuntimeError) Error() string { return e.Msg }

func rtErr(tok token.Value, msg string) *RuntimeError {
	return &RuntimeError{Tok: tok, Msg: msg}
}

// Control flow signals propagate up the evaluator as errors distinct from
// runtime errors: break and continue are caught at the enclosing loop,
// return at the enclosing call frame. Anything else rethrows them.
var (
	errBreak    = errors.New("break")
	errContinue = errors.New("continue")
)

// returnSignal unwinds up to the innermost call site, carrying the value.
type returnSignal struct {
	value Value
}

func (r *returnSignal) Error() string { return "return" }
