package lexer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectingReporter struct {
	errs []string
}

func (c *collectingReporter) Report(line int, where, message string) {
	c.errs = append(c.errs, fmt.Sprintf("[line %d] Error%s: %s", line, where, message))
}

func tokenTypes(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, t := range tokens {
		out[i] = t.Type
	}
	return out
}

func TestScanTokens_Punctuation(t *testing.T) {
	r := &collectingReporter{}
	s := NewScanner("(){},.-+;*/", r)
	tokens := s.ScanTokens()
	require.False(t, s.HadError())
	assert.Equal(t, []TokenType{
		LEFT_PAREN, RIGHT_PAREN, LEFT_BRACE, RIGHT_BRACE, COMMA, DOT,
		MINUS, PLUS, SEMICOLON, STAR, SLASH, EOF,
	}, tokenTypes(tokens))
}

func TestScanTokens_TwoCharOperators(t *testing.T) {
	r := &collectingReporter{}
	s := NewScanner("! != = == < <= > >=", r)
	tokens := s.ScanTokens()
	require.False(t, s.HadError())
	assert.Equal(t, []TokenType{
		BANG, BANG_EQUAL, EQUAL, EQUAL_EQUAL, LESS, LESS_EQUAL, GREATER, GREATER_EQUAL, EOF,
	}, tokenTypes(tokens))
}

func TestScanTokens_LineComment(t *testing.T) {
	r := &collectingReporter{}
	s := NewScanner("// a whole comment line\nprint 1;", r)
	tokens := s.ScanTokens()
	require.False(t, s.HadError())
	assert.Equal(t, []TokenType{PRINT, NUMBER, SEMICOLON, EOF}, tokenTypes(tokens))
	assert.Equal(t, 2, tokens[0].Line)
}

func TestScanTokens_StringLiteral(t *testing.T) {
	r := &collectingReporter{}
	s := NewScanner(`"hello"`, r)
	tokens := s.ScanTokens()
	require.False(t, s.HadError())
	require.Len(t, tokens, 2)
	assert.Equal(t, STRING, tokens[0].Type)
	assert.Equal(t, "hello", tokens[0].Literal)
}

func TestScanTokens_UnterminatedString(t *testing.T) {
	r := &collectingReporter{}
	s := NewScanner(`"oops`, r)
	s.ScanTokens()
	assert.True(t, s.HadError())
	require.Len(t, r.errs, 1)
	assert.Contains(t, r.errs[0], "Unterminated string.")
}

func TestScanTokens_Number(t *testing.T) {
	r := &collectingReporter{}
	s := NewScanner("123 45.67", r)
	tokens := s.ScanTokens()
	require.False(t, s.HadError())
	assert.Equal(t, 123.0, tokens[0].Literal)
	assert.Equal(t, 45.67, tokens[1].Literal)
}

func TestScanTokens_IdentifiersAndKeywords(t *testing.T) {
	r := &collectingReporter{}
	s := NewScanner("and break class orchid _x1", r)
	tokens := s.ScanTokens()
	require.False(t, s.HadError())
	assert.Equal(t, []TokenType{AND, BREAK, CLASS, IDENTIFIER, IDENTIFIER, EOF}, tokenTypes(tokens))
}

func TestScanTokens_UppercaseIdentifierIsNotMisclassified(t *testing.T) {
	// isAlpha checks 'a'..'z' and 'A'..'Z' as separate bands; uppercase
	// letters must still start and continue identifiers. The punctuation
	// between 'Z' and 'a' is not part of this input.
	r := &collectingReporter{}
	s := NewScanner("Foo BAR", r)
	tokens := s.ScanTokens()
	require.False(t, s.HadError())
	assert.Equal(t, []TokenType{IDENTIFIER, IDENTIFIER, EOF}, tokenTypes(tokens))
}

func TestScanTokens_UnexpectedCharacterContinuesScanning(t *testing.T) {
	r := &collectingReporter{}
	s := NewScanner("@ 1;", r)
	tokens := s.ScanTokens()
	assert.True(t, s.HadError())
	assert.Equal(t, []TokenType{NUMBER, SEMICOLON, EOF}, tokenTypes(tokens))
}
