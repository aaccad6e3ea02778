package interp

import "github.com/nsavchenko/loxwalk/internal/lexer"

// uninitialized is the sentinel slot value left by `var a;` with no
// initializer. Reading it is a runtime error distinct from Lox nil.
type uninitialized struct{}

func (uninitialized) Type() ObjectType { return TypeNil }
func (uninitialized) String() string   { return "uninitialized" }

var uninitializedValue = uninitialized{}

// Environment is one link in the lexical scope chain.
type Environment struct {
	enclosing *Environment
	values    map[string]Object
}

// NewEnvironment creates a child scope; enclosing may be nil for globals.
func NewEnvironment(enclosing *Environment) *Environment {
	return &Environment{enclosing: enclosing, values: make(map[string]Object)}
}

// Define binds name in this scope. Re-declaring an existing name overwrites
// it, which is what lets the REPL redefine globals across lines.
func (e *Environment) Define(name string, value Object) {
	e.values[name] = value
}

// DefineUninitialized binds name to the uninitialized sentinel, as produced
// by `var name;`.
func (e *Environment) DefineUninitialized(name string) {
	e.values[name] = uninitializedValue
}

func (e *Environment) Get(name lexer.Token) (Object, error) {
	if v, ok := e.values[name.Lexeme]; ok {
		if _, isUninit := v.(uninitialized); isUninit {
			return nil, NewRuntimeError(name, "Uninitialized variable '%s'.", name.Lexeme)
		}
		return v, nil
	}
	if e.enclosing != nil {
		return e.enclosing.Get(name)
	}
	return nil, NewRuntimeError(name, "Undefined variable '%s'.", name.Lexeme)
}

func (e *Environment) Assign(name lexer.Token, value Object) error {
	if _, ok := e.values[name.Lexeme]; ok {
		e.values[name.Lexeme] = value
		return nil
	}
	if e.enclosing != nil {
		return e.enclosing.Assign(name, value)
	}
	return NewRuntimeError(name, "Undefined variable '%s'.", name.Lexeme)
}

// Ancestor walks exactly distance links up the chain with no safety net;
// the resolver guarantees distance is always in range for the expression it
// was computed for.
func (e *Environment) Ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.enclosing
	}
	return env
}

// GetAt reads the slot for name.Lexeme exactly distance hops up, using
// name's token for error reporting if the slot is still uninitialized.
func (e *Environment) GetAt(distance int, name lexer.Token) (Object, error) {
	v := e.Ancestor(distance).values[name.Lexeme]
	if _, isUninit := v.(uninitialized); isUninit {
		return nil, NewRuntimeError(name, "Uninitialized variable '%s'.", name.Lexeme)
	}
	return v, nil
}

// GetAtName is GetAt for call sites that only have a bare name (no token),
// such as binding "this"/"super" during method lookup.
func (e *Environment) GetAtName(distance int, name string) Object {
	return e.Ancestor(distance).values[name]
}

func (e *Environment) AssignAt(distance int, name lexer.Token, value Object) {
	e.Ancestor(distance).values[name.Lexeme] = value
}
