// Package repl implements the interactive line loop for the interpreter.
package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/nsavchenko/loxwalk/internal/interp"
)

var (
	redColor  = color.New(color.FgRed)
	cyanColor = color.New(color.FgCyan)
)

const banner = "Lox 0.1. Type quit() to exit."

// consoleReporter prints compile-time diagnostics to writer in red.
type consoleReporter struct {
	writer io.Writer
}

func (r consoleReporter) Report(line int, where, message string) {
	redColor.Fprintf(r.writer, "[line %d] Error%s: %s\n", line, where, message)
}

type runtimeConsoleReporter struct {
	writer io.Writer
}

func (r runtimeConsoleReporter) Report(err *interp.RuntimeError) {
	redColor.Fprintf(r.writer, "%s\n[line %d]\n", err.Message, err.Token.Line)
}

// Run starts the interactive prompt. It never returns a non-nil error for
// ordinary EOF (Ctrl+D) or the "quit()" command; both end the loop cleanly.
func Run(stdout, stderr io.Writer) error {
	fmt.Fprintln(stdout, banner)

	rl, err := readline.NewEx(&readline.Config{
		Prompt: "> ",
		Stdout: stdout,
		Stderr: stderr,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	sess := interp.NewSession(stdout)
	compile := consoleReporter{writer: stderr}
	runtime := runtimeConsoleReporter{writer: stderr}

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF on Ctrl+D, readline.ErrInterrupt on Ctrl+C
			cyanColor.Fprintln(stdout, "Goodbye.")
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit()" {
			cyanColor.Fprintln(stdout, "Goodbye.")
			return nil
		}

		sess.Run(line, compile, runtime, true)
	}
}
