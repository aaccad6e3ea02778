// Package parser turns a lexer.Token stream into the Lox abstract syntax
// tree via recursive descent.
package parser

import (
	"fmt"
	"strings"

	"github.com/nsavchenko/loxwalk/internal/lexer"
)

// Expr is any Lox expression node. Each concrete type is a distinct pointer
// type so two textually identical expressions parsed at different source
// positions are distinct map keys in the resolver's side table.
type Expr interface {
	exprNode()
	String() string
}

// Stmt is any Lox statement node.
type Stmt interface {
	stmtNode()
	String() string
}

type Literal struct{ Value interface{} }

type Grouping struct{ Expression Expr }

type Unary struct {
	Operator lexer.Token
	Right    Expr
}

type Binary struct {
	Left     Expr
	Operator lexer.Token
	Right    Expr
}

type Logical struct {
	Left     Expr
	Operator lexer.Token
	Right    Expr
}

type Variable struct{ Name lexer.Token }

type Assign struct {
	Name  lexer.Token
	Value Expr
}

type Call struct {
	Callee    Expr
	Paren     lexer.Token // closing ')' , used for error line numbers
	Arguments []Expr
}

type Get struct {
	Object Expr
	Name   lexer.Token
}

type Set struct {
	Object Expr
	Name   lexer.Token
	Value  Expr
}

type This struct{ Keyword lexer.Token }

type Super struct {
	Keyword lexer.Token
	Method  lexer.Token
}

func (*Literal) exprNode()  {}
func (*Grouping) exprNode() {}
func (*Unary) exprNode()    {}
func (*Binary) exprNode()   {}
func (*Logical) exprNode()  {}
func (*Variable) exprNode() {}
func (*Assign) exprNode()   {}
func (*Call) exprNode()     {}
func (*Get) exprNode()      {}
func (*Set) exprNode()      {}
func (*This) exprNode()     {}
func (*Super) exprNode()    {}

func (l *Literal) String() string {
	if l.Value == nil {
		return "nil"
	}
	return fmt.Sprintf("%v", l.Value)
}
func (g *Grouping) String() string { return "(group " + g.Expression.String() + ")" }
func (u *Unary) String() string    { return "(" + u.Operator.Lexeme + " " + u.Right.String() + ")" }
func (b *Binary) String() string {
	return "(" + b.Operator.Lexeme + " " + b.Left.String() + " " + b.Right.String() + ")"
}
func (l *Logical) String() string {
	return "(" + l.Operator.Lexeme + " " + l.Left.String() + " " + l.Right.String() + ")"
}
func (v *Variable) String() string { return v.Name.Lexeme }
func (a *Assign) String() string   { return "(= " + a.Name.Lexeme + " " + a.Value.String() + ")" }
func (c *Call) String() string {
	args := make([]string, len(c.Arguments))
	for i, a := range c.Arguments {
		args[i] = a.String()
	}
	return "(call " + c.Callee.String() + " " + strings.Join(args, " ") + ")"
}
func (g *Get) String() string { return "(. " + g.Object.String() + " " + g.Name.Lexeme + ")" }
func (s *Set) String() string {
	return "(.= " + s.Object.String() + " " + s.Name.Lexeme + " " + s.Value.String() + ")"
}
func (*This) String() string  { return "this" }
func (s *Super) String() string { return "(super " + s.Method.Lexeme + ")" }

type ExpressionStmt struct{ Expression Expr }

type PrintStmt struct{ Expression Expr }

type VarStmt struct {
	Name        lexer.Token
	Initializer Expr // nil if there is no initializer
}

type BlockStmt struct{ Statements []Stmt }

type IfStmt struct {
	Condition Expr
	Then      Stmt
	Else      Stmt // nil if absent
}

type WhileStmt struct {
	Condition Expr
	Body      Stmt
}

type BreakStmt struct{ Keyword lexer.Token }

type FunctionStmt struct {
	Name   lexer.Token
	Params []lexer.Token
	Body   []Stmt
}

type ReturnStmt struct {
	Keyword lexer.Token
	Value   Expr // nil if bare `return;`
}

type ClassStmt struct {
	Name       lexer.Token
	Superclass *Variable // nil if no superclass
	Methods    []*FunctionStmt
}

func (*ExpressionStmt) stmtNode() {}
func (*PrintStmt) stmtNode()      {}
func (*VarStmt) stmtNode()        {}
func (*BlockStmt) stmtNode()      {}
func (*IfStmt) stmtNode()         {}
func (*WhileStmt) stmtNode()      {}
func (*BreakStmt) stmtNode()      {}
func (*FunctionStmt) stmtNode()   {}
func (*ReturnStmt) stmtNode()     {}
func (*ClassStmt) stmtNode()      {}

func (e *ExpressionStmt) String() string { return e.Expression.String() + ";" }
func (p *PrintStmt) String() string      { return "(print " + p.Expression.String() + ")" }
func (v *VarStmt) String() string {
	if v.Initializer == nil {
		return "(var " + v.Name.Lexeme + ")"
	}
	return "(var " + v.Name.Lexeme + " " + v.Initializer.String() + ")"
}
func (b *BlockStmt) String() string {
	parts := make([]string, len(b.Statements))
	for i, s := range b.Statements {
		parts[i] = s.String()
	}
	return "(block " + strings.Join(parts, " ") + ")"
}
func (i *IfStmt) String() string {
	if i.Else == nil {
		return "(if " + i.Condition.String() + " " + i.Then.String() + ")"
	}
	return "(if " + i.Condition.String() + " " + i.Then.String() + " " + i.Else.String() + ")"
}
func (w *WhileStmt) String() string { return "(while " + w.Condition.String() + " " + w.Body.String() + ")" }
func (*BreakStmt) String() string   { return "(break)" }
func (f *FunctionStmt) String() string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Lexeme
	}
	return "(fun " + f.Name.Lexeme + " (" + strings.Join(names, " ") + "))"
}
func (r *ReturnStmt) String() string {
	if r.Value == nil {
		return "(return)"
	}
	return "(return " + r.Value.String() + ")"
}
func (c *ClassStmt) String() string {
	if c.Superclass == nil {
		return "(class " + c.Name.Lexeme + ")"
	}
	return "(class " + c.Name.Lexeme + " < " + c.Superclass.Name.Lexeme + ")"
}
