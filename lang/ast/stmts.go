package ast

import (
	"fmt"

	"github.com/mna/lotus/lang/token"
)

type (
	// Block represents a braced list of statements executed in a new
	// environment frame.
	Block struct {
		Stmts []Stmt
	}

	// ClassStmt represents a class declaration: a name, an optional
	// superclass reference, an optional constructor (the method sharing the
	// class name), instance methods and static methods.
	ClassStmt struct {
		Name    token.Value
		Super   *IdentExpr // nil if no superclass
		Ctor    *FuncStmt  // nil if no constructor
		Methods []*FuncStmt
		Statics []*FuncStmt
	}

	// ExprStmt represents an expression used as a statement.
	ExprStmt struct {
		Expr Expr
	}

	// FuncStmt represents a named function declaration, also used for
	// methods inside a class body.
	FuncStmt struct {
		Name token.Value
		Fn   *Function
	}

	// IfStmt represents an if statement with an optional else branch.
	IfStmt struct {
		Cond Expr
		Then Stmt
		Else Stmt // nil if absent
	}

	// LoopFlowStmt represents a break or continue statement.
	LoopFlowStmt struct {
		Tok token.Value
	}

	// LoopStmt represents a while loop or a desugared for loop. Post is the
	// for loop's post expression, kept out of the body so that continue
	// still executes it; nil for while loops.
	LoopStmt struct {
		Cond Expr
		Post Expr // nil if absent
		Body Stmt
	}

	// PrintStmt represents a print statement.
	PrintStmt struct {
		Expr Expr
	}

	// ReturnStmt represents a return statement with an optional value.
	ReturnStmt struct {
		Return token.Value
		Expr   Expr // nil for a bare return
	}

	// VarStmt represents a variable declaration with an optional
	// initializer.
	VarStmt struct {
		Name token.Value
		Init Expr // nil if absent
	}
)

func (n *Block) stmt()        {}
func (n *ClassStmt) stmt()    {}
func (n *ExprStmt) stmt()     {}
func (n *FuncStmt) stmt()     {}
func (n *IfStmt) stmt()       {}
func (n *LoopFlowStmt) stmt() {}
func (n *LoopStmt) stmt()     {}
func (n *PrintStmt) stmt()    {}
func (n *ReturnStmt) stmt()   {}
func (n *VarStmt) stmt()      {}

func (n *Block) Format(f fmt.State, verb rune) {
	format(f, verb, n, "block", map[string]int{"stmts": len(n.Stmts)})
}
func (n *Block) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
}

func (n *ClassStmt) Format(f fmt.State, verb rune) {
	lbl := "class " + n.Name.Raw
	if n.Super != nil {
		lbl += " < " + n.Super.Name.Raw
	}
	format(f, verb, n, lbl, map[string]int{
		"methods": len(n.Methods), "statics": len(n.Statics),
	})
}
func (n *ClassStmt) Walk(v Visitor) {
	if n.Super != nil {
		Walk(v, n.Super)
	}
	if n.Ctor != nil {
		Walk(v, n.Ctor)
	}
	for _, m := range n.Methods {
		Walk(v, m)
	}
	for _, m := range n.Statics {
		Walk(v, m)
	}
}

func (n *ExprStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "expr", nil) }
func (n *ExprStmt) Walk(v Visitor)                { Walk(v, n.Expr) }

func (n *FuncStmt) Format(f fmt.State, verb rune) {
	format(f, verb, n, "fun "+n.Name.Raw, map[string]int{"params": len(n.Fn.Params)})
}
func (n *FuncStmt) Walk(v Visitor) { Walk(v, n.Fn.Body) }

func (n *IfStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "if", nil) }
func (n *IfStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	if n.Else != nil {
		Walk(v, n.Else)
	}
}

func (n *LoopFlowStmt) Format(f fmt.State, verb rune) { format(f, verb, n, n.Tok.Raw, nil) }
func (n *LoopFlowStmt) Walk(_ Visitor)                {}

func (n *LoopStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "loop", nil) }
func (n *LoopStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	if n.Post != nil {
		Walk(v, n.Post)
	}
	Walk(v, n.Body)
}

func (n *PrintStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "print", nil) }
func (n *PrintStmt) Walk(v Visitor)                { Walk(v, n.Expr) }

func (n *ReturnStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "return", nil) }
func (n *ReturnStmt) Walk(v Visitor) {
	if n.Expr != nil {
		Walk(v, n.Expr)
	}
}

func (n *VarStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "var "+n.Name.Raw, nil) }
func (n *VarStmt) Walk(v Visitor) {
	if n.Init != nil {
		Walk(v, n.Init)
	}
}
