// Package parser implements the parser that transforms a token sequence
// into an abstract syntax tree (AST).
package parser

import (
	"errors"

	"github.com/mna/lotus/lang/ast"
	"github.com/mna/lotus/lang/token"
)

// MaxArgs is the maximum number of arguments and parameters of a function.
const MaxArgs = 255

// Parse parses the token sequence into a list of top-level statements. The
// sequence must be terminated by an EOF token, as produced by the scanner.
// Syntax errors are reported through errh with the offending token and a
// message; the parser synchronizes to the next statement boundary and keeps
// going, dropping the statement that failed to parse.
func Parse(toks []token.Value, errh func(tok token.Value, msg string)) []ast.Stmt {
	if len(toks) == 0 {
		return nil
	}

	p := parser{toks: toks, errh: errh}

	var stmts []ast.Stmt
	for !p.isAtEnd() {
		if stmt := p.definition(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

var errPanicMode = errors.New("panic")

// parser parses a token sequence and generates an AST.
type parser struct {
	toks []token.Value
	errh func(tok token.Value, msg string)

	cur  int // index of the current (unconsumed) token
	prev int // index of the most recently consumed token
}

func (p *parser) peek() token.Value     { return p.toks[p.cur] }
func (p *parser) previous() token.Value { return p.toks[p.prev] }
func (p *parser) isAtEnd() bool         { return p.peek().Type == token.EOF }

func (p *parser) advance() token.Value {
	if !p.isAtEnd() {
		p.prev = p.cur
		p.cur++
	} else {
		p.prev = p.cur
	}
	return p.previous()
}

// back rewinds the most recent advance. Only one step of lookbehind is
// available; used by matchTwo.
func (p *parser) back() {
	if p.prev > 0 {
		p.cur = p.prev
		p.prev--
	} else {
		p.cur = p.prev
	}
}

func (p *parser) check(tt token.Token) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == tt
}

func (p *parser) match(tts ...token.Token) bool {
	for _, tt := range tts {
		if p.check(tt) {
			p.advance()
			return true
		}
	}
	return false
}

// matchTwo consumes the first token only if it is immediately followed by
// the second, which is left unconsumed.
func (p *parser) matchTwo(first, second token.Token) bool {
	if p.check(first) {
		p.advance()
		if p.check(second) {
			return true
		}
		p.back()
	}
	return false
}

// error reports a syntax error at tok and keeps parsing.
func (p *parser) error(tok token.Value, msg string) {
	if p.errh != nil {
		p.errh(tok, msg)
	}
}

// fail reports a syntax error at tok and panics with errPanicMode, which is
// recovered at the statement level where the parser synchronizes.
func (p *parser) fail(tok token.Value, msg string) {
	p.error(tok, msg)
	panic(errPanicMode)
}

// consume the current token if it is of type tt, otherwise fail.
func (p *parser) consume(tt token.Token, msg string) token.Value {
	if !p.check(tt) {
		p.fail(p.peek(), msg)
	}
	return p.advance()
}

// synchronize discards tokens up to and including the next semicolon, or up
// to (but not including) the next definition-starting keyword.
func (p *parser) synchronize() {
	p.advance()

	for !p.isAtEnd() {
		if p.previous().Type == token.SEMICOLON {
			return
		}
		switch p.peek().Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF,
			token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}
