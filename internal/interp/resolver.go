package interp

import (
	"github.com/nsavchenko/loxwalk/internal/lexer"
	"github.com/nsavchenko/loxwalk/internal/parser"
)

type functionType int

const (
	funcNone functionType = iota
	funcFunction
	funcMethod
	funcInitializer
)

type classType int

const (
	classNone classType = iota
	classClass
	classSubclass
)

type loopType int

const (
	loopNone loopType = iota
	loopLoop
)

// Resolver performs the static pre-pass that computes, for every local
// variable reference, how many environment links separate it from its
// binding. The Interpreter consults this side table instead of walking the
// environment chain at every lookup.
type Resolver struct {
	interp          *Interpreter
	scopes          []map[string]bool
	currentFunction functionType
	currentClass    classType
	currentLoop     loopType
	reporter        lexer.CompileReporter
	hadError        bool
}

func NewResolver(i *Interpreter, r lexer.CompileReporter) *Resolver {
	return &Resolver{interp: i, reporter: r}
}

func (r *Resolver) HadError() bool { return r.hadError }

func (r *Resolver) Resolve(stmts []parser.Stmt) {
	r.resolveStmts(stmts)
}

func (r *Resolver) resolveStmts(stmts []parser.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) beginScope() { r.scopes = append(r.scopes, map[string]bool{}) }
func (r *Resolver) endScope()   { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *Resolver) declare(name lexer.Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, ok := scope[name.Lexeme]; ok {
		r.error(name, "Already a variable with this name in this scope.")
	}
	scope[name.Lexeme] = false
}

func (r *Resolver) define(name lexer.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}

func (r *Resolver) resolveLocal(expr parser.Expr, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.interp.resolve(expr, len(r.scopes)-1-i)
			return
		}
	}
	// not found in any scope: treat as global, no side-table entry
}

func (r *Resolver) resolveFunction(decl *parser.FunctionStmt, kind functionType) {
	enclosing := r.currentFunction
	enclosingLoop := r.currentLoop
	r.currentFunction = kind
	r.currentLoop = loopNone
	r.beginScope()
	for _, p := range decl.Params {
		r.declare(p)
		r.define(p)
	}
	r.resolveStmts(decl.Body)
	r.endScope()
	r.currentFunction = enclosing
	r.currentLoop = enclosingLoop
}

func (r *Resolver) resolveStmt(stmt parser.Stmt) {
	switch s := stmt.(type) {
	case *parser.BlockStmt:
		r.beginScope()
		r.resolveStmts(s.Statements)
		r.endScope()
	case *parser.VarStmt:
		r.declare(s.Name)
		if s.Initializer != nil {
			r.resolveExpr(s.Initializer)
		}
		r.define(s.Name)
	case *parser.FunctionStmt:
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, funcFunction)
	case *parser.ExpressionStmt:
		r.resolveExpr(s.Expression)
	case *parser.IfStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}
	case *parser.PrintStmt:
		r.resolveExpr(s.Expression)
	case *parser.ReturnStmt:
		if r.currentFunction == funcNone {
			r.error(s.Keyword, "Can't return from top-level code.")
		}
		if s.Value != nil {
			if r.currentFunction == funcInitializer {
				r.error(s.Keyword, "Can't return a value from an initializer.")
			}
			r.resolveExpr(s.Value)
		}
	case *parser.WhileStmt:
		enclosingLoop := r.currentLoop
		r.currentLoop = loopLoop
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Body)
		r.currentLoop = enclosingLoop
	case *parser.BreakStmt:
		if r.currentLoop == loopNone {
			r.error(s.Keyword, "Can't break outside of a loop.")
		}
	case *parser.ClassStmt:
		r.resolveClass(s)
	}
}

func (r *Resolver) resolveClass(s *parser.ClassStmt) {
	enclosingClass := r.currentClass
	r.currentClass = classClass
	r.declare(s.Name)
	r.define(s.Name)

	if s.Superclass != nil {
		if s.Superclass.Name.Lexeme == s.Name.Lexeme {
			r.error(s.Superclass.Name, "A class can't inherit from itself.")
		}
		r.currentClass = classSubclass
		r.resolveExpr(s.Superclass)
		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = true
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true

	for _, m := range s.Methods {
		kind := funcMethod
		if m.Name.Lexeme == "init" {
			kind = funcInitializer
		}
		r.resolveFunction(m, kind)
	}

	r.endScope() // this
	if s.Superclass != nil {
		r.endScope() // super
	}
	r.currentClass = enclosingClass
}

func (r *Resolver) resolveExpr(expr parser.Expr) {
	switch e := expr.(type) {
	case *parser.Variable:
		if len(r.scopes) > 0 {
			if defined, ok := r.scopes[len(r.scopes)-1][e.Name.Lexeme]; ok && !defined {
				r.error(e.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(e, e.Name.Lexeme)
	case *parser.Assign:
		r.resolveExpr(e.Value)
		r.resolveLocal(e, e.Name.Lexeme)
	case *parser.Binary:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *parser.Call:
		r.resolveExpr(e.Callee)
		for _, a := range e.Arguments {
			r.resolveExpr(a)
		}
	case *parser.Get:
		r.resolveExpr(e.Object)
	case *parser.Set:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)
	case *parser.Grouping:
		r.resolveExpr(e.Expression)
	case *parser.Literal:
		// nothing to resolve
	case *parser.Logical:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *parser.Unary:
		r.resolveExpr(e.Right)
	case *parser.This:
		if r.currentClass == classNone {
			r.error(e.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(e, "this")
	case *parser.Super:
		switch r.currentClass {
		case classNone:
			r.error(e.Keyword, "Can't use 'super' outside of a class.")
		case classClass:
			r.error(e.Keyword, "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(e, "super")
	}
}

func (r *Resolver) error(tok lexer.Token, message string) {
	r.hadError = true
	if r.reporter != nil {
		where := " at '" + tok.Lexeme + "'"
		if tok.Type == lexer.EOF {
			where = " at end"
		}
		r.reporter.Report(tok.Line, where, message)
	}
}
