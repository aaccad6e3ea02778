package interp

import (
	"fmt"

	"github.com/nsavchenko/loxwalk/internal/lexer"
)

// RuntimeError is the one kind of error the driver ever prints to the user
// after evaluation starts. It always carries the token responsible so the
// reporter can print a line number — earlier code in this lineage sometimes
// built these without a token; the constructor here makes that impossible.
type RuntimeError struct {
	Token   lexer.Token
	Message string
}

func NewRuntimeError(tok lexer.Token, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Token: tok, Message: fmt.Sprintf(format, args...)}
}

func (e *RuntimeError) Error() string { return e.Message }

// RuntimeReporter receives the single runtime error that terminated a run.
type RuntimeReporter interface {
	Report(err *RuntimeError)
}

// returnSignal and breakSignal are non-local control flow, not failures.
// They satisfy error only so they can travel the same Execute/Evaluate
// return channel as a *RuntimeError; callers must type-switch before
// treating a non-nil error as a reportable failure.
type returnSignal struct{ value Object }

func (*returnSignal) Error() string { return "return outside function" }

type breakSignal struct{}

func (*breakSignal) Error() string { return "break outside loop" }
