// Package value implements the runtime value model: the four classic
// scalars plus shared, mutably updatable function values.
package value

import (
	"fmt"
	"strconv"

	"github.com/loxmix/loxmix/ast"
)

// Value is the sealed set of runtime value kinds.
type Value interface {
	value()
}

// Nil is the absence of a value.
type Nil struct{}

// Bool is a boolean scalar.
type Bool struct{ Value bool }

// Number is a numeric scalar. Text is kept as a decimal string rather than
// only a float64 so a literal's original source formatting survives
// unmodified until it is printed, per the canonical-rendering contract.
type Number struct{ Text string }

// String is a string scalar.
type String struct{ Value string }

// Func is a function value: a reference to a shared Function plus whatever
// FunctionObject wraps it (carrying an optional closure capture).
type Func struct{ Object *FunctionObject }

func (Nil) value()    {}
func (Bool) value()   {}
func (Number) value() {}
func (String) value() {}
func (Func) value()   {}

// NumberFromFloat builds a Number from a computed float64 result using Go's
// shortest round-tripping decimal representation.
func NumberFromFloat(f float64) Number {
	return Number{Text: strconv.FormatFloat(f, 'g', -1, 64)}
}

// Float parses a Number's text back into a float64. Callers only ever hold
// a Number that was produced either from a lexer NUMBER token or from
// NumberFromFloat, both of which are always valid decimals.
func (n Number) Float() float64 {
	f, _ := strconv.ParseFloat(n.Text, 64)
	return f
}

// Function is the shared, name-addressable callable: user-defined (Body
// set, Builtin nil) or native (Builtin set, Body nil). Multiple
// FunctionObjects may reference the same Function.
type Function struct {
	Name    string
	Params  []string
	Body    ast.Node
	Builtin BuiltinFunc
}

// BuiltinFunc implements a native function. It receives the call's raw
// argument ASTs rather than evaluated values: a builtin that ignores its
// arguments (the only kind this language has today) never forces
// evaluation of expressions it will not use.
type BuiltinFunc func(args []ast.Node) (Value, error)

// FunctionObject pairs a shared Function with an optional closure capture:
// a name->value snapshot taken when the function was declared inside
// another call, refreshed at the end of every call so later calls observe
// accumulated mutations. Capture is nil for functions declared at the top
// level (including builtins), which are not closures.
type FunctionObject struct {
	Fn      *Function
	Capture map[string]Value
}

// Truthy implements the language's truthiness rules: false and nil are
// falsy, numbers are truthy iff nonzero, strings are truthy iff non-empty,
// functions are always truthy.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case Nil:
		return false
	case Bool:
		return t.Value
	case Number:
		return t.Float() != 0
	case String:
		return t.Value != ""
	case Func:
		return true
	default:
		return false
	}
}

// Equal implements structural equality by kind and payload; values of
// different kinds are never equal (Nil != false, "1" != 1).
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av.Value == bv.Value
	case Number:
		bv, ok := b.(Number)
		return ok && av.Float() == bv.Float()
	case String:
		bv, ok := b.(String)
		return ok && av.Value == bv.Value
	case Func:
		bv, ok := b.(Func)
		return ok && av.Object == bv.Object
	default:
		return false
	}
}

// Render formats a value for `print` and for the `evaluate` command's
// output, the single rendering path every value kind flows through
// regardless of whether it came from a literal, a variable, or a call
// result.
func Render(v Value) string {
	switch t := v.(type) {
	case Nil:
		return "nil"
	case Bool:
		if t.Value {
			return "true"
		}
		return "false"
	case Number:
		return strconv.FormatFloat(t.Float(), 'g', -1, 64)
	case String:
		return t.Value
	case Func:
		return fmt.Sprintf("<fn %s>", t.Object.Fn.Name)
	default:
		return ""
	}
}

// TypeName names a value's kind ("nil", "bool", "number", "string",
// "function").
func TypeName(v Value) string {
	switch v.(type) {
	case Nil:
		return "nil"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Func:
		return "function"
	default:
		return "unknown"
	}
}
