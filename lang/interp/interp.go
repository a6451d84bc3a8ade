// Package interp implements the tree-walking evaluator, its chained
// environment model and the mark-and-sweep reclaimer over the runtime heap
// objects.
//
// The interpreter owns the whole pipeline for a run: scanning, parsing,
// resolving and executing, with all diagnostics funneled through its
// reporter methods. An Interp is single-threaded and not reentrant; create
// one per run or reuse it serially (the REPL does).
package interp

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/mna/lotus/lang/ast"
	"github.com/mna/lotus/lang/parser"
	"github.com/mna/lotus/lang/resolver"
	"github.com/mna/lotus/lang/scanner"
	"github.com/mna/lotus/lang/token"
)

// Interp is the interpreter. The zero value is not usable, use New.
type Interp struct {
	// Stdout, Stderr and Stdin are the standard I/O abstractions of the
	// interpreter. If nil, os.Stdout, os.Stderr and os.Stdin are used.
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	cfg Config

	// environments: global is owned by the interpreter and never reclaimed,
	// envp is the current frame and always a GC root.
	global *Environment
	envp   *Environment

	// locals maps expression identity to its hop distance. It is written
	// only by the resolver and read only by the evaluator; it is not
	// traced.
	locals map[ast.Expr]int

	// reclaimer state: the canonical list of live heap objects, the
	// explicit root stack of pinned values and environments, and the byte
	// account against cfg.HeapLimit.
	traced   []heapObject
	stack    []any
	heapSize int

	hadError        bool
	hadRuntimeError bool

	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
}

// New creates an interpreter with the given configuration and a global
// frame holding the native functions.
func New(cfg Config) *Interp {
	if cfg.HeapLimit <= 0 {
		cfg.HeapLimit = DefaultHeapLimit
	}
	it := &Interp{
		cfg:    cfg,
		locals: make(map[ast.Expr]int),
	}
	it.global = newEnvironment(nil)
	it.envp = it.global

	// native functions are static values, defining them cannot fail in the
	// global frame
	_ = it.global.def(token.Value{Type: token.IDENT, Raw: clockFunc.name}, clockFunc, true)
	return it
}

// HadError reports whether a scan, parse or resolve error was seen since
// the last reset.
func (it *Interp) HadError() bool { return it.hadError }

// HadRuntimeError reports whether execution raised a runtime error. The
// REPL never resets it.
func (it *Interp) HadRuntimeError() bool { return it.hadRuntimeError }

func (it *Interp) init() {
	it.stdout = it.Stdout
	if it.stdout == nil {
		it.stdout = os.Stdout
	}
	it.stderr = it.Stderr
	if it.stderr == nil {
		it.stderr = os.Stderr
	}
	it.stdin = it.Stdin
	if it.stdin == nil {
		it.stdin = os.Stdin
	}
}

// Run executes a source text through the full pipeline. Any error at a
// pipeline boundary aborts the later stages for this run.
func (it *Interp) Run(src []byte) {
	it.init()

	toks := scanner.ScanTokens(src, it.scanError)
	if it.hadError {
		return
	}
	stmts := parser.Parse(toks, it.tokenError)
	if it.hadError {
		return
	}
	resolver.Resolve(stmts, it.locals, it.tokenError, it.tokenWarn)
	if it.hadError {
		return
	}
	it.interpret(stmts)
}

// RunFile executes the script at path.
func (it *Interp) RunFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	it.Run(b)
	return nil
}

// RunPrompt runs the REPL: it prompts with "> ", executes each line and
// exits on an empty line. Scan/parse/resolve errors are cleared between
// lines; a runtime error leaves its mark.
func (it *Interp) RunPrompt() {
	it.init()

	prompt := func() { fmt.Fprint(it.stdout, "> ") }
	if f, ok := it.stdin.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		c := color.New(color.FgGreen, color.Bold)
		prompt = func() { c.Fprint(it.stdout, "> ") }
	}

	scan := bufio.NewScanner(it.stdin)
	for {
		prompt()
		if !scan.Scan() {
			fmt.Fprintln(it.stdout)
			return
		}
		line := scan.Text()
		if line == "" {
			fmt.Fprintln(it.stdout)
			return
		}
		it.Run([]byte(line))
		it.hadError = false
	}
}

// interpret executes the resolved top-level statements. A runtime error
// aborts the rest of the list; a control flow signal reaching the top is an
// interpreter bug, the resolver rejects such programs.
func (it *Interp) interpret(stmts []ast.Stmt) {
	for _, s := range stmts {
		if err := it.exec(s); err != nil {
			re, ok := err.(*RuntimeError)
			if !ok {
				panic(fmt.Sprintf("unhandled signal at top level: %v", err))
			}
			it.handleRuntimeError(re)
			return
		}
	}
}

func (it *Interp) handleRuntimeError(e *RuntimeError) {
	if e.Tok.Raw == "" && e.Tok.Type != token.EOF {
		// no token available (e.g. out of memory at an allocation site)
		it.report(e.Tok.Line, "", e.Msg)
	} else {
		it.reportTok(e.Tok, e.Msg)
	}
	it.hadRuntimeError = true
}

func (it *Interp) scanError(line int, msg string) {
	it.report(line, "", msg)
	it.hadError = true
}

func (it *Interp) tokenError(tok token.Value, msg string) {
	it.reportTok(tok, msg)
	it.hadError = true
}

// tokenWarn reports a diagnostic without failing the pipeline.
func (it *Interp) tokenWarn(tok token.Value, msg string) {
	it.reportTok(tok, msg)
}

func (it *Interp) reportTok(tok token.Value, msg string) {
	if tok.Type == token.EOF {
		it.report(tok.Line, "at end", msg)
	} else {
		it.report(tok.Line, "at '"+tok.Raw+"'", msg)
	}
}

func (it *Interp) report(line int, location, msg string) {
	fmt.Fprintf(it.stderr, "line %d: location: %s: %s\n", line, location, msg)
}
