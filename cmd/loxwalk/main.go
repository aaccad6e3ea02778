// Command loxwalk runs the Lox tree-walking interpreter, either against a
// source file or as an interactive REPL.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/nsavchenko/loxwalk/internal/interp"
	"github.com/nsavchenko/loxwalk/internal/repl"
)

const (
	exitOK           = 0
	exitCompileError = 65
	exitRuntimeError = 70
)

var errColor = color.New(color.FgRed)

type stderrReporter struct{}

func (stderrReporter) Report(line int, where, message string) {
	errColor.Fprintf(os.Stderr, "[line %d] Error%s: %s\n", line, where, message)
}

type stderrRuntimeReporter struct{}

func (stderrRuntimeReporter) Report(err *interp.RuntimeError) {
	errColor.Fprintf(os.Stderr, "%s\n[line %d]\n", err.Message, err.Token.Line)
}

func main() {
	os.Exit(run())
}

func run() int {
	filename := flag.String("filename", "", "path to a .lox source file; omit to start the REPL")
	flag.Parse()

	if *filename == "" {
		if err := repl.Run(os.Stdout, os.Stderr); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitRuntimeError
		}
		return exitOK
	}

	source, err := os.ReadFile(*filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read file %q: %v\n", *filename, err)
		return exitRuntimeError
	}

	sess := interp.NewSession(os.Stdout)
	outcome := sess.Run(string(source), stderrReporter{}, stderrRuntimeReporter{}, false)
	switch {
	case outcome.HadCompileError:
		return exitCompileError
	case outcome.HadRuntimeError:
		return exitRuntimeError
	default:
		return exitOK
	}
}
