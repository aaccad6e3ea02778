package interp

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsavchenko/loxwalk/internal/lexer"
)

type recordingReporter struct {
	compile []string
	runtime []string
}

func (r *recordingReporter) Report(line int, where, message string) {
	r.compile = append(r.compile, fmt.Sprintf("[line %d] Error%s: %s", line, where, message))
}

func (r *recordingReporter) ReportRuntime(err *RuntimeError) {
	r.runtime = append(r.runtime, fmt.Sprintf("%s\n[line %d]", err.Message, err.Token.Line))
}

// runtimeSink adapts recordingReporter to the RuntimeReporter interface
// without its Report method colliding with the CompileReporter one.
type runtimeSink struct{ rec *recordingReporter }

func (s runtimeSink) Report(err *RuntimeError) { s.rec.ReportRuntime(err) }

func run(t *testing.T, source string) (string, *recordingReporter, Outcome) {
	t.Helper()
	var out bytes.Buffer
	rec := &recordingReporter{}
	sess := NewSession(&out)
	outcome := sess.Run(source, rec, runtimeSink{rec}, false)
	return out.String(), rec, outcome
}

func TestInterpret_ArithmeticPrecedence(t *testing.T) {
	out, rec, outcome := run(t, "print 1 + 2 * 3;")
	require.False(t, outcome.HadCompileError || outcome.HadRuntimeError, "%v %v", rec.compile, rec.runtime)
	assert.Equal(t, "7\n", out)
}

func TestInterpret_BlockScopingShadowsThenRestores(t *testing.T) {
	out, _, outcome := run(t, `var a = 1; { var a = 2; print a; } print a;`)
	require.False(t, outcome.HadCompileError || outcome.HadRuntimeError)
	assert.Equal(t, "2\n1\n", out)
}

func TestInterpret_ClosureCapturesDefiningEnvironment(t *testing.T) {
	out, _, outcome := run(t, `fun c(x){ fun i(){ return x; } return i; } print c(42)();`)
	require.False(t, outcome.HadCompileError || outcome.HadRuntimeError)
	assert.Equal(t, "42\n", out)
}

func TestInterpret_ClosuresInForLoopCapturePerIteration(t *testing.T) {
	out, _, outcome := run(t, `
		var fns = nil;
		var first = nil;
		var second = nil;
		for (var i = 0; i < 2; i = i + 1) {
			fun capture() { return i; }
			if (i == 0) { first = capture; } else { second = capture; }
		}
		print first();
		print second();
	`)
	require.False(t, outcome.HadCompileError || outcome.HadRuntimeError)
	assert.Equal(t, "0\n1\n", out)
}

func TestInterpret_SuperCallsBaseThenOverride(t *testing.T) {
	out, _, outcome := run(t, `
		class A { f() { print "A"; } }
		class B < A { f() { super.f(); print "B"; } }
		B().f();
	`)
	require.False(t, outcome.HadCompileError || outcome.HadRuntimeError)
	assert.Equal(t, "A\nB\n", out)
}

func TestInterpret_InitializerAlwaysReturnsThis(t *testing.T) {
	out, _, outcome := run(t, `
		class P { init(n){ this.n = n; } }
		var p = P(7);
		print p.n;
	`)
	require.False(t, outcome.HadCompileError || outcome.HadRuntimeError)
	assert.Equal(t, "7\n", out)
}

func TestInterpret_BareReturnInInitializerYieldsInstance(t *testing.T) {
	out, _, outcome := run(t, `
		class P {
			init(n) {
				this.n = n;
				if (n < 0) return;
			}
		}
		print P(5);
	`)
	require.False(t, outcome.HadCompileError || outcome.HadRuntimeError)
	assert.Equal(t, "P instance\n", out)
}

func TestInterpret_ForLoopPrintsEachIteration(t *testing.T) {
	out, _, outcome := run(t, `for (var i=0;i<3;i=i+1) print i;`)
	require.False(t, outcome.HadCompileError || outcome.HadRuntimeError)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestInterpret_StringPlusNumberIsRuntimeError(t *testing.T) {
	_, rec, outcome := run(t, `print "a" + 1;`)
	require.True(t, outcome.HadRuntimeError)
	require.Len(t, rec.runtime, 1)
	assert.Contains(t, rec.runtime[0], "Operands must be two numbers or two strings.")
}

func TestInterpret_DivisionByZeroIsRuntimeError(t *testing.T) {
	_, rec, outcome := run(t, `print 1/0;`)
	require.True(t, outcome.HadRuntimeError)
	require.Len(t, rec.runtime, 1)
	assert.Contains(t, rec.runtime[0], "Cannot divide by zero.")
}

func TestInterpret_ReadOwnInitializerIsCompileError(t *testing.T) {
	_, rec, outcome := run(t, `{ fun f() { var a = a; } }`)
	require.True(t, outcome.HadCompileError)
	require.NotEmpty(t, rec.compile)
	assert.Contains(t, rec.compile[0], "Can't read local variable in its own initializer.")
}

func TestInterpret_UninitializedVariableIsRuntimeError(t *testing.T) {
	_, rec, outcome := run(t, `var a; print a;`)
	require.True(t, outcome.HadRuntimeError)
	require.Len(t, rec.runtime, 1)
	assert.Contains(t, rec.runtime[0], "Uninitialized variable 'a'.")
}

func TestInterpret_BreakExitsLoopWithoutRunningRest(t *testing.T) {
	out, _, outcome := run(t, `while (true) { break; } print "after";`)
	require.False(t, outcome.HadCompileError || outcome.HadRuntimeError)
	assert.Equal(t, "after\n", out)
}

func TestInterpret_BreakOutsideLoopIsCompileError(t *testing.T) {
	_, rec, outcome := run(t, `break;`)
	require.True(t, outcome.HadCompileError)
	require.NotEmpty(t, rec.compile)
	assert.Contains(t, rec.compile[0], "break")
}

func TestInterpret_UndefinedPropertyRuntimeErrorCarriesLine(t *testing.T) {
	_, rec, outcome := run(t, "class A {}\nvar a = A();\nprint a.missing;")
	require.True(t, outcome.HadRuntimeError)
	require.Len(t, rec.runtime, 1)
	assert.True(t, strings.Contains(rec.runtime[0], "Undefined property 'missing'."))
	assert.True(t, strings.Contains(rec.runtime[0], "[line 3]"))
}

func TestInterpret_NumberStringificationStripsTrailingZero(t *testing.T) {
	out, _, outcome := run(t, `print 1.0; print 1.5;`)
	require.False(t, outcome.HadCompileError || outcome.HadRuntimeError)
	assert.Equal(t, "1\n1.5\n", out)
}

func TestInterpret_ReplRewritesTrailingExpressionToPrint(t *testing.T) {
	var out bytes.Buffer
	rec := &recordingReporter{}
	sess := NewSession(&out)
	outcome := sess.Run(`1 + 1;`, rec, runtimeSink{rec}, true)
	require.False(t, outcome.HadCompileError || outcome.HadRuntimeError)
	assert.Equal(t, "2\n", out.String())
}

func TestInterpret_ClockIsSeededGlobal(t *testing.T) {
	_, _, outcome := run(t, `var t = clock(); print t > 0;`)
	require.False(t, outcome.HadCompileError || outcome.HadRuntimeError)
}

var _ lexer.CompileReporter = (*recordingReporter)(nil)
