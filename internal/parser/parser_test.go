package parser

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsavchenko/loxwalk/internal/lexer"
)

type collectingReporter struct {
	errs []string
}

func (c *collectingReporter) Report(line int, where, message string) {
	c.errs = append(c.errs, fmt.Sprintf("[line %d] Error%s: %s", line, where, message))
}

func parse(t *testing.T, src string) ([]Stmt, *collectingReporter) {
	t.Helper()
	r := &collectingReporter{}
	sc := lexer.NewScanner(src, r)
	tokens := sc.ScanTokens()
	require.False(t, sc.HadError(), "unexpected scan error: %v", r.errs)
	p := NewParser(tokens, r)
	stmts := p.Parse()
	return stmts, r
}

func TestParse_ArithmeticPrecedence(t *testing.T) {
	stmts, r := parse(t, "print 1 + 2 * 3;")
	require.Empty(t, r.errs)
	require.Len(t, stmts, 1)
	print := stmts[0].(*PrintStmt)
	assert.Equal(t, "(+ 1 (* 2 3))", print.Expression.String())
}

func TestParse_ForDesugarsToWhile(t *testing.T) {
	stmts, r := parse(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	require.Empty(t, r.errs)
	require.Len(t, stmts, 1)
	block, ok := stmts[0].(*BlockStmt)
	require.True(t, ok)
	require.Len(t, block.Statements, 2)
	_, isVar := block.Statements[0].(*VarStmt)
	assert.True(t, isVar)
	loop, isWhile := block.Statements[1].(*WhileStmt)
	require.True(t, isWhile)
	// body = { perIteration; increment }
	outer, isBlock := loop.Body.(*BlockStmt)
	require.True(t, isBlock)
	require.Len(t, outer.Statements, 2)
	perIteration, isBlock := outer.Statements[0].(*BlockStmt)
	require.True(t, isBlock)
	// perIteration = { var for$i = i; var i = for$i; print i; }
	require.Len(t, perIteration.Statements, 3)
	tempDecl := perIteration.Statements[0].(*VarStmt)
	assert.Equal(t, "for$i", tempDecl.Name.Lexeme)
	shadowDecl := perIteration.Statements[1].(*VarStmt)
	assert.Equal(t, "i", shadowDecl.Name.Lexeme)
}

func TestParse_ForWithoutConditionDefaultsTrue(t *testing.T) {
	stmts, r := parse(t, "for (;;) break;")
	require.Empty(t, r.errs)
	loop := stmts[0].(*WhileStmt)
	lit, ok := loop.Condition.(*Literal)
	require.True(t, ok)
	assert.Equal(t, true, lit.Value)
}

func TestParse_ClassWithSuperclassAndMethods(t *testing.T) {
	stmts, r := parse(t, `class B < A { f() { super.f(); print "B"; } }`)
	require.Empty(t, r.errs)
	require.Len(t, stmts, 1)
	class := stmts[0].(*ClassStmt)
	assert.Equal(t, "B", class.Name.Lexeme)
	require.NotNil(t, class.Superclass)
	assert.Equal(t, "A", class.Superclass.Name.Lexeme)
	require.Len(t, class.Methods, 1)
	assert.Equal(t, "f", class.Methods[0].Name.Lexeme)
}

func TestParse_GetAndSetExpressions(t *testing.T) {
	stmts, r := parse(t, "a.b.c = 1;")
	require.Empty(t, r.errs)
	exprStmt := stmts[0].(*ExpressionStmt)
	set, ok := exprStmt.Expression.(*Set)
	require.True(t, ok)
	assert.Equal(t, "c", set.Name.Lexeme)
	_, ok = set.Object.(*Get)
	assert.True(t, ok)
}

func TestParse_InvalidAssignmentTargetReportsError(t *testing.T) {
	_, r := parse(t, "1 + 2 = 3;")
	require.NotEmpty(t, r.errs)
	assert.Contains(t, r.errs[0], "Invalid assignment target.")
}

func TestParse_MissingSemicolonRecoversAtNextStatement(t *testing.T) {
	stmts, r := parse(t, "var a = 1 var b = 2;")
	require.NotEmpty(t, r.errs)
	// the first declaration failed to parse and was dropped, but the
	// second one after synchronize() still produced a statement.
	require.Len(t, stmts, 1)
	v := stmts[0].(*VarStmt)
	assert.Equal(t, "b", v.Name.Lexeme)
}

func TestParse_BreakStatement(t *testing.T) {
	stmts, r := parse(t, "while (true) { break; }")
	require.Empty(t, r.errs)
	loop := stmts[0].(*WhileStmt)
	body := loop.Body.(*BlockStmt)
	_, ok := body.Statements[0].(*BreakStmt)
	assert.True(t, ok)
}

func TestParse_ArgumentLimitReportsError(t *testing.T) {
	args := ""
	for i := 0; i < 256; i++ {
		if i > 0 {
			args += ", "
		}
		args += "1"
	}
	_, r := parse(t, fmt.Sprintf("f(%s);", args))
	require.NotEmpty(t, r.errs)
	assert.Contains(t, r.errs[0], "Can't have more than 255 arguments.")
}
