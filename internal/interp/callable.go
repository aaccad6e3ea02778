package interp

import (
	"time"

	"github.com/nsavchenko/loxwalk/internal/lexer"
	"github.com/nsavchenko/loxwalk/internal/parser"
)

// LoxFunction is a user-defined function or method, closing over the
// environment active where it was declared.
type LoxFunction struct {
	declaration   *parser.FunctionStmt
	closure       *Environment
	isInitializer bool
}

func NewLoxFunction(decl *parser.FunctionStmt, closure *Environment, isInitializer bool) *LoxFunction {
	return &LoxFunction{declaration: decl, closure: closure, isInitializer: isInitializer}
}

func (*LoxFunction) Type() ObjectType { return TypeFunction }
func (f *LoxFunction) String() string { return "<fn " + f.declaration.Name.Lexeme + ">" }
func (f *LoxFunction) Arity() int     { return len(f.declaration.Params) }

// Bind returns a copy of f whose closure is extended with "this" bound to
// instance, turning an unbound method into a bound one.
func (f *LoxFunction) Bind(instance *LoxInstance) *LoxFunction {
	env := NewEnvironment(f.closure)
	env.Define("this", instance)
	return NewLoxFunction(f.declaration, env, f.isInitializer)
}

func (f *LoxFunction) Call(i *Interpreter, args []Object) (Object, error) {
	env := NewEnvironment(f.closure)
	for idx, param := range f.declaration.Params {
		env.Define(param.Lexeme, args[idx])
	}

	err := i.executeBlock(f.declaration.Body, env)
	if ret, ok := err.(*returnSignal); ok {
		if f.isInitializer {
			return f.closure.GetAtName(0, "this"), nil
		}
		return ret.value, nil
	}
	if err != nil {
		return nil, err
	}
	if f.isInitializer {
		return f.closure.GetAtName(0, "this"), nil
	}
	return Nil, nil
}

// LoxClass is a class value: callable to construct a new instance.
type LoxClass struct {
	Name       string
	Superclass *LoxClass
	Methods    map[string]*LoxFunction
}

func NewLoxClass(name string, superclass *LoxClass, methods map[string]*LoxFunction) *LoxClass {
	return &LoxClass{Name: name, Superclass: superclass, Methods: methods}
}

func (*LoxClass) Type() ObjectType { return TypeClass }
func (c *LoxClass) String() string { return c.Name }

func (c *LoxClass) FindMethod(name string) *LoxFunction {
	if m, ok := c.Methods[name]; ok {
		return m
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil
}

func (c *LoxClass) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

func (c *LoxClass) Call(i *Interpreter, args []Object) (Object, error) {
	instance := NewLoxInstance(c)
	if init := c.FindMethod("init"); init != nil {
		if _, err := init.Bind(instance).Call(i, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// LoxInstance is an object of a LoxClass, holding its own field overrides.
type LoxInstance struct {
	class  *LoxClass
	fields map[string]Object
}

func NewLoxInstance(class *LoxClass) *LoxInstance {
	return &LoxInstance{class: class, fields: make(map[string]Object)}
}

func (*LoxInstance) Type() ObjectType { return TypeInstance }
func (in *LoxInstance) String() string { return in.class.Name + " instance" }

func (in *LoxInstance) Get(name lexer.Token) (Object, error) {
	if v, ok := in.fields[name.Lexeme]; ok {
		return v, nil
	}
	if m := in.class.FindMethod(name.Lexeme); m != nil {
		return m.Bind(in), nil
	}
	return nil, NewRuntimeError(name, "Undefined property '%s'.", name.Lexeme)
}

func (in *LoxInstance) Set(name lexer.Token, value Object) {
	in.fields[name.Lexeme] = value
}

// clockBuiltin is the single global function seeded into every run.
type clockBuiltin struct{}

func (clockBuiltin) Type() ObjectType { return TypeFunction }
func (clockBuiltin) String() string   { return "<native fn>" }
func (clockBuiltin) Arity() int       { return 0 }
func (clockBuiltin) Call(*Interpreter, []Object) (Object, error) {
	return LoxNumber(float64(time.Now().UnixNano()) / 1e9), nil
}
