package interp

import (
	"fmt"
	"io"

	"github.com/nsavchenko/loxwalk/internal/lexer"
	"github.com/nsavchenko/loxwalk/internal/parser"
)

// Interpreter walks a resolved statement list, executing each for effect.
type Interpreter struct {
	globals *Environment
	env     *Environment
	locals  map[parser.Expr]int
	stdout  io.Writer
}

func NewInterpreter(stdout io.Writer) *Interpreter {
	globals := NewEnvironment(nil)
	globals.Define("clock", clockBuiltin{})
	return &Interpreter{
		globals: globals,
		env:     globals,
		locals:  make(map[parser.Expr]int),
		stdout:  stdout,
	}
}

// resolve records the hop distance the Resolver computed for expr.
func (i *Interpreter) resolve(expr parser.Expr, depth int) {
	i.locals[expr] = depth
}

// Interpret executes every statement in order, stopping and returning the
// first runtime error. Returns nil on a clean run.
func (i *Interpreter) Interpret(stmts []parser.Stmt) error {
	for _, s := range stmts {
		if err := i.execute(s); err != nil {
			if rerr, ok := err.(*RuntimeError); ok {
				return rerr
			}
			// a bare return/break reaching the top level means the
			// resolver's checks were bypassed; treat it as a no-op
			// rather than letting it escape Interpret's error contract.
			continue
		}
	}
	return nil
}

func (i *Interpreter) execute(stmt parser.Stmt) error {
	switch s := stmt.(type) {
	case *parser.ExpressionStmt:
		_, err := i.evaluate(s.Expression)
		return err

	case *parser.PrintStmt:
		v, err := i.evaluate(s.Expression)
		if err != nil {
			return err
		}
		fmt.Fprintln(i.stdout, stringify(v))
		return nil

	case *parser.VarStmt:
		if s.Initializer != nil {
			v, err := i.evaluate(s.Initializer)
			if err != nil {
				return err
			}
			i.env.Define(s.Name.Lexeme, v)
		} else {
			i.env.DefineUninitialized(s.Name.Lexeme)
		}
		return nil

	case *parser.BlockStmt:
		return i.executeBlock(s.Statements, NewEnvironment(i.env))

	case *parser.IfStmt:
		cond, err := i.evaluate(s.Condition)
		if err != nil {
			return err
		}
		if IsTruthy(cond) {
			return i.execute(s.Then)
		} else if s.Else != nil {
			return i.execute(s.Else)
		}
		return nil

	case *parser.WhileStmt:
		for {
			cond, err := i.evaluate(s.Condition)
			if err != nil {
				return err
			}
			if !IsTruthy(cond) {
				return nil
			}
			if err := i.execute(s.Body); err != nil {
				if _, ok := err.(*breakSignal); ok {
					return nil
				}
				return err
			}
		}

	case *parser.BreakStmt:
		return &breakSignal{}

	case *parser.FunctionStmt:
		fn := NewLoxFunction(s, i.env, false)
		i.env.Define(s.Name.Lexeme, fn)
		return nil

	case *parser.ReturnStmt:
		var value Object = Nil
		if s.Value != nil {
			v, err := i.evaluate(s.Value)
			if err != nil {
				return err
			}
			value = v
		}
		return &returnSignal{value: value}

	case *parser.ClassStmt:
		return i.executeClass(s)
	}
	return nil
}

func (i *Interpreter) executeClass(s *parser.ClassStmt) error {
	var superclass *LoxClass
	if s.Superclass != nil {
		sc, err := i.evaluate(s.Superclass)
		if err != nil {
			return err
		}
		class, ok := sc.(*LoxClass)
		if !ok {
			return NewRuntimeError(s.Superclass.Name, "Superclass must be a class.")
		}
		superclass = class
	}

	i.env.Define(s.Name.Lexeme, Nil)

	if s.Superclass != nil {
		i.env = NewEnvironment(i.env)
		i.env.Define("super", superclass)
	}

	methods := make(map[string]*LoxFunction, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name.Lexeme] = NewLoxFunction(m, i.env, m.Name.Lexeme == "init")
	}

	class := NewLoxClass(s.Name.Lexeme, superclass, methods)

	if s.Superclass != nil {
		i.env = i.env.enclosing
	}

	return i.env.Assign(s.Name, class)
}

// executeBlock runs stmts with env as the active environment, always
// restoring the caller's environment on the way out.
func (i *Interpreter) executeBlock(stmts []parser.Stmt, env *Environment) error {
	previous := i.env
	i.env = env
	defer func() { i.env = previous }()

	for _, s := range stmts {
		if err := i.execute(s); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) evaluate(expr parser.Expr) (Object, error) {
	switch e := expr.(type) {
	case *parser.Literal:
		return literalObject(e.Value), nil

	case *parser.Grouping:
		return i.evaluate(e.Expression)

	case *parser.Unary:
		right, err := i.evaluate(e.Right)
		if err != nil {
			return nil, err
		}
		switch e.Operator.Type {
		case lexer.MINUS:
			n, err := i.checkNumber(e.Operator, right)
			if err != nil {
				return nil, err
			}
			return -n, nil
		case lexer.BANG:
			return LoxBool(!IsTruthy(right)), nil
		}
		return nil, NewRuntimeError(e.Operator, "Unknown unary operator.")

	case *parser.Binary:
		return i.evalBinary(e)

	case *parser.Logical:
		left, err := i.evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		if e.Operator.Type == lexer.OR {
			if IsTruthy(left) {
				return left, nil
			}
		} else {
			if !IsTruthy(left) {
				return left, nil
			}
		}
		return i.evaluate(e.Right)

	case *parser.Variable:
		return i.lookupVariable(e.Name, e)

	case *parser.Assign:
		value, err := i.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		if dist, ok := i.locals[e]; ok {
			i.env.AssignAt(dist, e.Name, value)
		} else if err := i.globals.Assign(e.Name, value); err != nil {
			return nil, err
		}
		return value, nil

	case *parser.Call:
		return i.evalCall(e)

	case *parser.Get:
		obj, err := i.evaluate(e.Object)
		if err != nil {
			return nil, err
		}
		instance, ok := obj.(*LoxInstance)
		if !ok {
			return nil, NewRuntimeError(e.Name, "Only instances have properties.")
		}
		return instance.Get(e.Name)

	case *parser.Set:
		obj, err := i.evaluate(e.Object)
		if err != nil {
			return nil, err
		}
		instance, ok := obj.(*LoxInstance)
		if !ok {
			return nil, NewRuntimeError(e.Name, "Only instances have fields.")
		}
		value, err := i.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		instance.Set(e.Name, value)
		return value, nil

	case *parser.This:
		return i.lookupVariable(e.Keyword, e)

	case *parser.Super:
		return i.evalSuper(e)
	}
	return nil, fmt.Errorf("unhandled expression type %T", expr)
}

func (i *Interpreter) lookupVariable(name lexer.Token, expr parser.Expr) (Object, error) {
	if dist, ok := i.locals[expr]; ok {
		return i.env.GetAt(dist, name)
	}
	return i.globals.Get(name)
}

func (i *Interpreter) evalSuper(e *parser.Super) (Object, error) {
	dist := i.locals[e]
	superclass, _ := i.env.GetAtName(dist, "super").(*LoxClass)
	instance, _ := i.env.GetAtName(dist-1, "this").(*LoxInstance)

	method := superclass.FindMethod(e.Method.Lexeme)
	if method == nil {
		return nil, NewRuntimeError(e.Method, "Undefined property '%s'.", e.Method.Lexeme)
	}
	return method.Bind(instance), nil
}

func (i *Interpreter) evalCall(e *parser.Call) (Object, error) {
	callee, err := i.evaluate(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Object, len(e.Arguments))
	for idx, a := range e.Arguments {
		v, err := i.evaluate(a)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}

	callable, ok := callee.(Callable)
	if !ok {
		return nil, NewRuntimeError(e.Paren, "Can only call functions and classes.")
	}
	if len(args) != callable.Arity() {
		return nil, NewRuntimeError(e.Paren, "Expected %d arguments but got %d.", callable.Arity(), len(args))
	}
	return callable.Call(i, args)
}

func (i *Interpreter) evalBinary(e *parser.Binary) (Object, error) {
	left, err := i.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Operator.Type {
	case lexer.PLUS:
		ln, lok := left.(LoxNumber)
		rn, rok := right.(LoxNumber)
		if lok && rok {
			return ln + rn, nil
		}
		ls, lok := left.(LoxString)
		rs, rok := right.(LoxString)
		if lok && rok {
			return ls + rs, nil
		}
		return nil, NewRuntimeError(e.Operator, "Operands must be two numbers or two strings.")

	case lexer.MINUS:
		ln, rn, err := i.checkNumbers(e.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return ln - rn, nil

	case lexer.STAR:
		ln, rn, err := i.checkNumbers(e.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return ln * rn, nil

	case lexer.SLASH:
		ln, rn, err := i.checkNumbers(e.Operator, left, right)
		if err != nil {
			return nil, err
		}
		if rn == 0 {
			return nil, NewRuntimeError(e.Operator, "Cannot divide by zero.")
		}
		return ln / rn, nil

	case lexer.GREATER:
		ln, rn, err := i.checkNumbers(e.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return LoxBool(ln > rn), nil

	case lexer.GREATER_EQUAL:
		ln, rn, err := i.checkNumbers(e.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return LoxBool(ln >= rn), nil

	case lexer.LESS:
		ln, rn, err := i.checkNumbers(e.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return LoxBool(ln < rn), nil

	case lexer.LESS_EQUAL:
		ln, rn, err := i.checkNumbers(e.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return LoxBool(ln <= rn), nil

	case lexer.EQUAL_EQUAL:
		return LoxBool(IsEqual(left, right)), nil

	case lexer.BANG_EQUAL:
		return LoxBool(!IsEqual(left, right)), nil
	}
	return nil, NewRuntimeError(e.Operator, "Unknown binary operator.")
}

func (i *Interpreter) checkNumber(tok lexer.Token, o Object) (LoxNumber, error) {
	if n, ok := o.(LoxNumber); ok {
		return n, nil
	}
	return 0, NewRuntimeError(tok, "Operand must be a number.")
}

func (i *Interpreter) checkNumbers(tok lexer.Token, a, b Object) (LoxNumber, LoxNumber, error) {
	an, aok := a.(LoxNumber)
	bn, bok := b.(LoxNumber)
	if !aok || !bok {
		return 0, 0, NewRuntimeError(tok, "Operands must be numbers.")
	}
	return an, bn, nil
}

func literalObject(v interface{}) Object {
	switch val := v.(type) {
	case nil:
		return Nil
	case bool:
		return LoxBool(val)
	case float64:
		return LoxNumber(val)
	case string:
		return LoxString(val)
	default:
		return Nil
	}
}

// stringify renders any Object the way `print` does.
func stringify(o Object) string {
	if o == nil {
		return "nil"
	}
	return o.String()
}
