package parser

import (
	"errors"

	"github.com/nsavchenko/loxwalk/internal/lexer"
)

const maxArgs = 255

// errParse marks a recoverable syntax error; declaration() catches it and
// resynchronizes at the next statement boundary instead of aborting parsing.
var errParse = errors.New("parse error")

// Parser is a recursive-descent parser over a fixed token slice.
type Parser struct {
	tokens   []lexer.Token
	current  int
	reporter lexer.CompileReporter
	hadError bool
}

// NewParser prepares a parser over tokens, reporting through r.
func NewParser(tokens []lexer.Token, r lexer.CompileReporter) *Parser {
	return &Parser{tokens: tokens, reporter: r}
}

// HadError reports whether any syntax error was seen.
func (p *Parser) HadError() bool { return p.hadError }

// Parse consumes the whole token stream and returns the program's statements.
// Statements that failed to parse are omitted; callers must still check
// HadError before evaluating.
func (p *Parser) Parse() []Stmt {
	var stmts []Stmt
	for !p.isAtEnd() {
		if s := p.declaration(); s != nil {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

func (p *Parser) declaration() Stmt {
	var s Stmt
	var err error
	switch {
	case p.match(lexer.CLASS):
		s, err = p.classDeclaration()
	case p.match(lexer.FUN):
		s, err = p.function("function")
	case p.match(lexer.VAR):
		s, err = p.varDeclaration()
	default:
		s, err = p.statement()
	}
	if err != nil {
		p.synchronize()
		return nil
	}
	return s
}

func (p *Parser) classDeclaration() (Stmt, error) {
	name, err := p.consume(lexer.IDENTIFIER, "Expect class name.")
	if err != nil {
		return nil, err
	}

	var superclass *Variable
	if p.match(lexer.LESS) {
		if _, err := p.consume(lexer.IDENTIFIER, "Expect superclass name."); err != nil {
			return nil, err
		}
		superclass = &Variable{Name: p.previous()}
	}

	if _, err := p.consume(lexer.LEFT_BRACE, "Expect '{' before class body."); err != nil {
		return nil, err
	}

	var methods []*FunctionStmt
	for !p.check(lexer.RIGHT_BRACE) && !p.isAtEnd() {
		m, err := p.function("method")
		if err != nil {
			return nil, err
		}
		methods = append(methods, m.(*FunctionStmt))
	}
	if _, err := p.consume(lexer.RIGHT_BRACE, "Expect '}' after class body."); err != nil {
		return nil, err
	}
	return &ClassStmt{Name: name, Superclass: superclass, Methods: methods}, nil
}

func (p *Parser) function(kind string) (Stmt, error) {
	name, err := p.consume(lexer.IDENTIFIER, "Expect "+kind+" name.")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.LEFT_PAREN, "Expect '(' after "+kind+" name."); err != nil {
		return nil, err
	}
	var params []lexer.Token
	if !p.check(lexer.RIGHT_PAREN) {
		for {
			if len(params) >= maxArgs {
				p.error(p.peek(), "Can't have more than 255 parameters.")
			}
			param, err := p.consume(lexer.IDENTIFIER, "Expect parameter name.")
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(lexer.RIGHT_PAREN, "Expect ')' after parameters."); err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.LEFT_BRACE, "Expect '{' before "+kind+" body."); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &FunctionStmt{Name: name, Params: params, Body: body}, nil
}

func (p *Parser) varDeclaration() (Stmt, error) {
	name, err := p.consume(lexer.IDENTIFIER, "Expect variable name.")
	if err != nil {
		return nil, err
	}
	var initializer Expr
	if p.match(lexer.EQUAL) {
		initializer, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.SEMICOLON, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}
	return &VarStmt{Name: name, Initializer: initializer}, nil
}

func (p *Parser) statement() (Stmt, error) {
	switch {
	case p.match(lexer.FOR):
		return p.forStatement()
	case p.match(lexer.IF):
		return p.ifStatement()
	case p.match(lexer.PRINT):
		return p.printStatement()
	case p.match(lexer.RETURN):
		return p.returnStatement()
	case p.match(lexer.BREAK):
		return p.breakStatement()
	case p.match(lexer.WHILE):
		return p.whileStatement()
	case p.match(lexer.LEFT_BRACE):
		stmts, err := p.block()
		if err != nil {
			return nil, err
		}
		return &BlockStmt{Statements: stmts}, nil
	default:
		return p.expressionStatement()
	}
}

func (p *Parser) forStatement() (Stmt, error) {
	if _, err := p.consume(lexer.LEFT_PAREN, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}

	var initializer Stmt
	var err error
	switch {
	case p.match(lexer.SEMICOLON):
		initializer = nil
	case p.match(lexer.VAR):
		initializer, err = p.varDeclaration()
	default:
		initializer, err = p.expressionStatement()
	}
	if err != nil {
		return nil, err
	}

	var condition Expr
	if !p.check(lexer.SEMICOLON) {
		condition, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.SEMICOLON, "Expect ';' after loop condition."); err != nil {
		return nil, err
	}

	var increment Expr
	if !p.check(lexer.RIGHT_PAREN) {
		increment, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.RIGHT_PAREN, "Expect ')' after for clauses."); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return forToWhile(initializer, condition, increment, body), nil
}

// forToWhile desugars the C-style for clauses into the equivalent
// block-wrapped while loop.
func forToWhile(initializer Stmt, condition Expr, increment Expr, body Stmt) Stmt {
	if varInit, ok := initializer.(*VarStmt); ok {
		return desugarForWithLoopVariable(varInit, condition, increment, body)
	}
	if increment != nil {
		body = &BlockStmt{Statements: []Stmt{body, &ExpressionStmt{Expression: increment}}}
	}
	if condition == nil {
		condition = &Literal{Value: true}
	}
	body = &WhileStmt{Condition: condition, Body: body}
	if initializer != nil {
		body = &BlockStmt{Statements: []Stmt{initializer, body}}
	}
	return body
}

// desugarForWithLoopVariable handles the common `for (var x = ...; ...; ...)`
// shape. Plain desugaring into a while loop would leave a single shared
// binding for x, so every closure the body creates across iterations would
// alias the same slot and observe only its final value. Each iteration
// instead gets a private copy of x (via a synthetic intermediate name a Lox
// program could never type, so it can't collide with user code) that the
// body closes over; the condition and increment keep driving one persistent
// counter in the enclosing scope.
func desugarForWithLoopVariable(varInit *VarStmt, condition Expr, increment Expr, body Stmt) Stmt {
	name := varInit.Name
	temp := lexer.Token{Type: lexer.IDENTIFIER, Lexeme: "for$" + name.Lexeme, Line: name.Line}

	perIteration := &BlockStmt{Statements: []Stmt{
		&VarStmt{Name: temp, Initializer: &Variable{Name: name}},
		&VarStmt{Name: name, Initializer: &Variable{Name: temp}},
		body,
	}}

	loopBody := Stmt(perIteration)
	if increment != nil {
		loopBody = &BlockStmt{Statements: []Stmt{loopBody, &ExpressionStmt{Expression: increment}}}
	}
	if condition == nil {
		condition = &Literal{Value: true}
	}
	loop := &WhileStmt{Condition: condition, Body: loopBody}
	return &BlockStmt{Statements: []Stmt{varInit, loop}}
}

func (p *Parser) ifStatement() (Stmt, error) {
	if _, err := p.consume(lexer.LEFT_PAREN, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.RIGHT_PAREN, "Expect ')' after if condition."); err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	var elseBranch Stmt
	if p.match(lexer.ELSE) {
		elseBranch, err = p.statement()
		if err != nil {
			return nil, err
		}
	}
	return &IfStmt{Condition: cond, Then: then, Else: elseBranch}, nil
}

func (p *Parser) printStatement() (Stmt, error) {
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.SEMICOLON, "Expect ';' after value."); err != nil {
		return nil, err
	}
	return &PrintStmt{Expression: value}, nil
}

func (p *Parser) returnStatement() (Stmt, error) {
	keyword := p.previous()
	var value Expr
	var err error
	if !p.check(lexer.SEMICOLON) {
		value, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.SEMICOLON, "Expect ';' after return value."); err != nil {
		return nil, err
	}
	return &ReturnStmt{Keyword: keyword, Value: value}, nil
}

func (p *Parser) breakStatement() (Stmt, error) {
	keyword := p.previous()
	if _, err := p.consume(lexer.SEMICOLON, "Expect ';' after 'break'."); err != nil {
		return nil, err
	}
	return &BreakStmt{Keyword: keyword}, nil
}

func (p *Parser) whileStatement() (Stmt, error) {
	if _, err := p.consume(lexer.LEFT_PAREN, "Expect '(' after 'while'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.RIGHT_PAREN, "Expect ')' after condition."); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Condition: cond, Body: body}, nil
}

func (p *Parser) block() ([]Stmt, error) {
	var stmts []Stmt
	for !p.check(lexer.RIGHT_BRACE) && !p.isAtEnd() {
		s := p.declaration()
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	if _, err := p.consume(lexer.RIGHT_BRACE, "Expect '}' after block."); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) expressionStatement() (Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.SEMICOLON, "Expect ';' after expression."); err != nil {
		return nil, err
	}
	return &ExpressionStmt{Expression: expr}, nil
}

func (p *Parser) expression() (Expr, error) { return p.assignment() }

func (p *Parser) assignment() (Expr, error) {
	expr, err := p.or()
	if err != nil {
		return nil, err
	}

	if p.match(lexer.EQUAL) {
		equals := p.previous()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		switch e := expr.(type) {
		case *Variable:
			return &Assign{Name: e.Name, Value: value}, nil
		case *Get:
			return &Set{Object: e.Object, Name: e.Name, Value: value}, nil
		}
		p.error(equals, "Invalid assignment target.")
		return expr, nil
	}
	return expr, nil
}

func (p *Parser) or() (Expr, error) {
	expr, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.OR) {
		op := p.previous()
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		expr = &Logical{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) and() (Expr, error) {
	expr, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.AND) {
		op := p.previous()
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		expr = &Logical{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) equality() (Expr, error) {
	return p.binaryLevel(p.comparison, lexer.BANG_EQUAL, lexer.EQUAL_EQUAL)
}

func (p *Parser) comparison() (Expr, error) {
	return p.binaryLevel(p.term, lexer.GREATER, lexer.GREATER_EQUAL, lexer.LESS, lexer.LESS_EQUAL)
}

func (p *Parser) term() (Expr, error) {
	return p.binaryLevel(p.factor, lexer.MINUS, lexer.PLUS)
}

func (p *Parser) factor() (Expr, error) {
	return p.binaryLevel(p.unary, lexer.SLASH, lexer.STAR)
}

// binaryLevel implements one left-associative precedence level shared by
// equality/comparison/term/factor.
func (p *Parser) binaryLevel(next func() (Expr, error), types ...lexer.TokenType) (Expr, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for p.match(types...) {
		op := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &Binary{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) unary() (Expr, error) {
	if p.match(lexer.BANG, lexer.MINUS) {
		op := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Unary{Operator: op, Right: right}, nil
	}
	return p.call()
}

func (p *Parser) call() (Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(lexer.LEFT_PAREN):
			expr, err = p.finishCall(expr)
			if err != nil {
				return nil, err
			}
		case p.match(lexer.DOT):
			name, err := p.consume(lexer.IDENTIFIER, "Expect property name after '.'.")
			if err != nil {
				return nil, err
			}
			expr = &Get{Object: expr, Name: name}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) finishCall(callee Expr) (Expr, error) {
	var args []Expr
	if !p.check(lexer.RIGHT_PAREN) {
		for {
			if len(args) >= maxArgs {
				p.error(p.peek(), "Can't have more than 255 arguments.")
			}
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}
	paren, err := p.consume(lexer.RIGHT_PAREN, "Expect ')' after arguments.")
	if err != nil {
		return nil, err
	}
	return &Call{Callee: callee, Paren: paren, Arguments: args}, nil
}

func (p *Parser) primary() (Expr, error) {
	switch {
	case p.match(lexer.FALSE):
		return &Literal{Value: false}, nil
	case p.match(lexer.TRUE):
		return &Literal{Value: true}, nil
	case p.match(lexer.NIL):
		return &Literal{Value: nil}, nil
	case p.match(lexer.NUMBER, lexer.STRING):
		return &Literal{Value: p.previous().Literal}, nil
	case p.match(lexer.SUPER):
		keyword := p.previous()
		if _, err := p.consume(lexer.DOT, "Expect '.' after 'super'."); err != nil {
			return nil, err
		}
		method, err := p.consume(lexer.IDENTIFIER, "Expect superclass method name.")
		if err != nil {
			return nil, err
		}
		return &Super{Keyword: keyword, Method: method}, nil
	case p.match(lexer.THIS):
		return &This{Keyword: p.previous()}, nil
	case p.match(lexer.IDENTIFIER):
		return &Variable{Name: p.previous()}, nil
	case p.match(lexer.LEFT_PAREN):
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.RIGHT_PAREN, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return &Grouping{Expression: expr}, nil
	}
	return nil, p.error(p.peek(), "Expect expression.")
}

func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(t lexer.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == t
}

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) isAtEnd() bool { return p.peek().Type == lexer.EOF }

func (p *Parser) peek() lexer.Token { return p.tokens[p.current] }

func (p *Parser) previous() lexer.Token { return p.tokens[p.current-1] }

func (p *Parser) consume(t lexer.TokenType, message string) (lexer.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	return lexer.Token{}, p.error(p.peek(), message)
}

func (p *Parser) error(tok lexer.Token, message string) error {
	p.hadError = true
	if p.reporter != nil {
		where := " at '" + tok.Lexeme + "'"
		if tok.Type == lexer.EOF {
			where = " at end"
		}
		p.reporter.Report(tok.Line, where, message)
	}
	return errParse
}

// synchronize discards tokens until it reaches a likely statement boundary,
// so one syntax error does not prevent finding the rest.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		switch p.peek().Type {
		case lexer.CLASS, lexer.FUN, lexer.VAR, lexer.FOR, lexer.IF, lexer.WHILE, lexer.PRINT, lexer.RETURN:
			return
		}
		if p.advance().Type == lexer.SEMICOLON {
			return
		}
	}
}
