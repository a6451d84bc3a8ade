package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/lotus/lang/ast"
	"github.com/mna/lotus/lang/parser"
	"github.com/mna/lotus/lang/resolver"
	"github.com/mna/lotus/lang/scanner"
	"github.com/mna/lotus/lang/token"
	"github.com/mna/mainer"
)

// The phase commands print diagnostics in the same format as the
// interpreter's reporter.

func report(stdio mainer.Stdio, line int, location, msg string) {
	fmt.Fprintf(stdio.Stderr, "line %d: location: %s: %s\n", line, location, msg)
}

func reportTok(stdio mainer.Stdio, tok token.Value, msg string) {
	if tok.Type == token.EOF {
		report(stdio, tok.Line, "at end", msg)
	} else {
		report(stdio, tok.Line, "at '"+tok.Raw+"'", msg)
	}
}

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(ctx, stdio, args...)
}

// TokenizeFiles tokenizes the source files and prints one token per line
// with its line number and literal, when it carries one.
func TokenizeFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	var failed bool
	for _, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}

		toks := scanner.ScanTokens(b, func(line int, msg string) {
			report(stdio, line, "", msg)
			failed = true
		})
		for _, tok := range toks {
			fmt.Fprintf(stdio.Stdout, "%d: %s", tok.Line, tok.Type)
			if lit := tok.Literal(); lit != "" {
				fmt.Fprintf(stdio.Stdout, " %s", lit)
			}
			fmt.Fprintln(stdio.Stdout)
		}
	}
	if failed {
		return errFailed
	}
	return nil
}

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(ctx, stdio, args...)
}

// ParseFiles parses the source files and prints the resulting ASTs.
func ParseFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	_, err := parsePhase(ctx, stdio, nil, files...)
	return err
}

func (c *Cmd) Resolve(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ResolveFiles(ctx, stdio, args...)
}

// ResolveFiles parses and resolves the source files and prints the ASTs
// annotated with the resolved hop distances.
func ResolveFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	locals := make(map[ast.Expr]int)
	chunks, err := parsePhase(ctx, stdio, locals, files...)
	if err != nil {
		return err
	}

	var failed bool
	for _, stmts := range chunks {
		resolver.Resolve(stmts, locals,
			func(tok token.Value, msg string) {
				reportTok(stdio, tok, msg)
				failed = true
			},
			func(tok token.Value, msg string) {
				reportTok(stdio, tok, msg)
			})
	}

	printer := ast.Printer{Output: stdio.Stdout, Depths: locals}
	for _, stmts := range chunks {
		if err := printer.Print(stmts); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	}
	if failed {
		return errFailed
	}
	return nil
}

// parsePhase scans and parses the files. When locals is nil the ASTs are
// printed as they are parsed, otherwise they are returned for the resolve
// phase to annotate first.
func parsePhase(ctx context.Context, stdio mainer.Stdio, locals map[ast.Expr]int, files ...string) ([][]ast.Stmt, error) {
	var failed bool
	chunks := make([][]ast.Stmt, 0, len(files))

	for _, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return nil, err
		}

		toks := scanner.ScanTokens(b, func(line int, msg string) {
			report(stdio, line, "", msg)
			failed = true
		})
		stmts := parser.Parse(toks, func(tok token.Value, msg string) {
			reportTok(stdio, tok, msg)
			failed = true
		})
		chunks = append(chunks, stmts)
	}
	if failed {
		return nil, errFailed
	}

	if locals == nil {
		printer := ast.Printer{Output: stdio.Stdout}
		for _, stmts := range chunks {
			if err := printer.Print(stmts); err != nil {
				fmt.Fprintln(stdio.Stderr, err)
				return nil, err
			}
		}
	}
	return chunks, nil
}
