package interp

import (
	"io"

	"github.com/nsavchenko/loxwalk/internal/lexer"
	"github.com/nsavchenko/loxwalk/internal/parser"
)

// Session owns the interpreter state that must persist across multiple
// Run calls in the REPL (globals, declared functions and classes).
type Session struct {
	interpreter *Interpreter
}

func NewSession(stdout io.Writer) *Session {
	return &Session{interpreter: NewInterpreter(stdout)}
}

// Outcome reports which, if either, of the two error sinks fired during Run.
type Outcome struct {
	HadCompileError bool
	HadRuntimeError bool
}

// Run scans, parses, resolves, and evaluates one chunk of source against
// the session's persistent global state. replMode additionally rewrites a
// trailing bare expression statement into a print, matching the REPL's
// convenience behavior.
func (sess *Session) Run(source string, compile lexer.CompileReporter, runtime RuntimeReporter, replMode bool) Outcome {
	scanner := lexer.NewScanner(source, compile)
	tokens := scanner.ScanTokens()
	if scanner.HadError() {
		return Outcome{HadCompileError: true}
	}

	p := parser.NewParser(tokens, compile)
	stmts := p.Parse()
	if p.HadError() {
		return Outcome{HadCompileError: true}
	}

	if replMode {
		rewriteTrailingExpressionAsPrint(stmts)
	}

	resolver := NewResolver(sess.interpreter, compile)
	resolver.Resolve(stmts)
	if resolver.HadError() {
		return Outcome{HadCompileError: true}
	}

	if err := sess.interpreter.Interpret(stmts); err != nil {
		if rerr, ok := err.(*RuntimeError); ok {
			if runtime != nil {
				runtime.Report(rerr)
			}
			return Outcome{HadRuntimeError: true}
		}
	}
	return Outcome{}
}

// rewriteTrailingExpressionAsPrint turns the last top-level expression
// statement, if any, into a print statement so the REPL echoes values.
func rewriteTrailingExpressionAsPrint(stmts []parser.Stmt) {
	if len(stmts) == 0 {
		return
	}
	last := len(stmts) - 1
	if exprStmt, ok := stmts[last].(*parser.ExpressionStmt); ok {
		stmts[last] = &parser.PrintStmt{Expression: exprStmt.Expression}
	}
}
