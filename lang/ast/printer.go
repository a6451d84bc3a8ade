package ast

import (
	"fmt"
	"io"
	"strings"
)

// Printer controls pretty-printing of the AST nodes.
type Printer struct {
	// Output is the io.Writer to print to.
	Output io.Writer

	// NodeFmt is the format string to use to print the nodes. The verb must
	// be either `s` or `v`, a width can be set, and the `#` and `-` flags
	// are supported. Defaults to `%v`.
	NodeFmt string

	// Depths optionally maps resolved expressions to their hop distance;
	// when set, resolved references are annotated with `@<depth>`.
	Depths map[Expr]int
}

// Print pretty-prints the statement list as an indented tree.
func (p *Printer) Print(stmts []Stmt) error {
	pp := &printer{
		w:       p.Output,
		nodeFmt: p.NodeFmt,
		depths:  p.Depths,
	}
	if pp.nodeFmt == "" {
		pp.nodeFmt = "%v"
	}

	for _, s := range stmts {
		Walk(pp, s)
		if pp.err != nil {
			break
		}
	}
	return pp.err
}

type printer struct {
	w       io.Writer
	nodeFmt string
	depths  map[Expr]int
	depth   int
	err     error
}

func (p *printer) Visit(n Node, dir VisitDirection) Visitor {
	if dir == VisitExit {
		p.depth--
		return nil
	}
	if p.err != nil {
		return nil
	}

	lbl := fmt.Sprintf(p.nodeFmt, n)
	if p.depths != nil {
		if e, ok := n.(Expr); ok {
			if d, ok := p.depths[e]; ok {
				lbl += fmt.Sprintf(" @%d", d)
			}
		}
	}
	_, p.err = fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", p.depth), lbl)
	if p.err != nil {
		return nil
	}
	p.depth++
	return p
}
