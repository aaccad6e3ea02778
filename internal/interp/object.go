package interp

import (
	"fmt"
	"strconv"
	"strings"
)

// ObjectType tags the dynamic type of a Lox runtime value.
type ObjectType int

const (
	TypeNil ObjectType = iota
	TypeBool
	TypeNumber
	TypeString
	TypeFunction
	TypeClass
	TypeInstance
)

// Object is any Lox runtime value.
type Object interface {
	Type() ObjectType
	String() string
}

type LoxNil struct{}

func (LoxNil) Type() ObjectType { return TypeNil }
func (LoxNil) String() string   { return "nil" }

// Nil is the single shared nil value.
var Nil = LoxNil{}

type LoxBool bool

func (LoxBool) Type() ObjectType  { return TypeBool }
func (b LoxBool) String() string {
	if b {
		return "true"
	}
	return "false"
}

type LoxNumber float64

func (LoxNumber) Type() ObjectType { return TypeNumber }

// String renders a Lox number: integral values print without a decimal
// point, everything else uses Go's shortest round-tripping representation.
func (n LoxNumber) String() string {
	f := float64(n)
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	return strings.Replace(s, "e+", "e", 1)
}

type LoxString string

func (LoxString) Type() ObjectType { return TypeString }
func (s LoxString) String() string { return string(s) }

// Callable is any Object that can be invoked: builtins, user functions, and
// classes (whose call constructs and initializes an instance).
type Callable interface {
	Object
	Call(i *Interpreter, args []Object) (Object, error)
	Arity() int
}

// IsTruthy implements Lox truthiness: nil and false are falsey, everything
// else (including 0 and "") is truthy.
func IsTruthy(o Object) bool {
	switch v := o.(type) {
	case LoxNil:
		return false
	case nil:
		return false
	case LoxBool:
		return bool(v)
	default:
		return true
	}
}

// IsEqual implements Lox equality: same type and same payload, or both nil.
// Cross-type comparisons are always false.
func IsEqual(a, b Object) bool {
	_, aNil := a.(LoxNil)
	_, bNil := b.(LoxNil)
	if aNil || bNil {
		return aNil && bNil
	}
	switch av := a.(type) {
	case LoxBool:
		bv, ok := b.(LoxBool)
		return ok && av == bv
	case LoxNumber:
		bv, ok := b.(LoxNumber)
		return ok && av == bv
	case LoxString:
		bv, ok := b.(LoxString)
		return ok && av == bv
	default:
		return a == b
	}
}

func typeName(o Object) string {
	return fmt.Sprintf("%T", o)
}
