// Package eval implements the tree-walking evaluator: operator semantics,
// lexically scoped variables, control flow, and first-class functions
// with closures.
package eval

import (
	"fmt"
	"io"

	"github.com/loxmix/loxmix/ast"
	"github.com/loxmix/loxmix/env"
	"github.com/loxmix/loxmix/lexer"
	"github.com/loxmix/loxmix/value"
)

// RuntimeError is a failure raised while executing an already-parsed tree.
// Unlike lexical and syntax errors, a runtime error carries no line number:
// the evaluator has no active position to attach one to.
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string {
	return e.Message
}

func runtimeErrorf(format string, args ...any) error {
	return &RuntimeError{Message: fmt.Sprintf(format, args...)}
}

// Evaluator walks an AST against an Env, writing `print` output to Writer.
type Evaluator struct {
	Env    *env.Env
	Writer io.Writer

	// captureStack tracks the closure capture map (if any) active for the
	// call currently executing, so a call's body can sync mutations back
	// into it when the call returns. nil means the current call (or the
	// top level) is not a closure.
	captureStack []map[string]value.Value
}

// New creates an evaluator over env, registering the single `clock`
// builtin.
func New(e *env.Env, w io.Writer) *Evaluator {
	ev := &Evaluator{Env: e, Writer: w}
	e.Registry["clock"] = clockFunction()
	return ev
}

// Eval walks node, returning its value, whether a `return` is actively
// unwinding through the result (the dedicated Return sentinel modeled as a
// tagged result rather than a host exception or panic), and any error.
func (ev *Evaluator) Eval(node ast.Node) (value.Value, bool, error) {
	switch n := node.(type) {
	case *ast.BoolNode:
		return value.Bool{Value: n.Value}, false, nil
	case *ast.NumberNode:
		return value.Number{Text: n.Lexeme}, false, nil
	case *ast.StringNode:
		return value.String{Value: n.Value}, false, nil
	case *ast.NilNode:
		return value.Nil{}, false, nil
	case *ast.IdentifierNode:
		return ev.evalIdentifier(n)
	case *ast.NegativeNode:
		return ev.evalNegative(n)
	case *ast.UnaryNode:
		return ev.evalUnary(n)
	case *ast.BinaryNode:
		return ev.evalBinary(n)
	case *ast.ParenNode:
		return ev.Eval(n.Inner)
	case *ast.AssignNode:
		return ev.evalAssign(n)
	case *ast.VarDeclNode:
		return ev.evalVarDecl(n)
	case *ast.IfNode:
		return ev.evalIf(n)
	case *ast.WhileNode:
		return ev.evalWhile(n)
	case *ast.ForNode:
		return ev.evalFor(n)
	case *ast.PrintNode:
		return ev.evalPrint(n)
	case *ast.BlockNode:
		return ev.evalBlock(n)
	case *ast.FnDeclNode:
		return ev.evalFnDecl(n)
	case *ast.FnCallNode:
		return ev.evalFnCall(n)
	case *ast.ReturnNode:
		return ev.evalReturn(n)
	default:
		return nil, false, runtimeErrorf("cannot evaluate node of this kind")
	}
}

func (ev *Evaluator) currentCapture() map[string]value.Value {
	if len(ev.captureStack) == 0 {
		return nil
	}
	return ev.captureStack[len(ev.captureStack)-1]
}

func (ev *Evaluator) evalIdentifier(n *ast.IdentifierNode) (value.Value, bool, error) {
	v, ok := ev.Env.Lookup(n.Name, ev.currentCapture())
	if !ok {
		return nil, false, runtimeErrorf("var not found %s", n.Name)
	}
	return v, false, nil
}

func (ev *Evaluator) evalNegative(n *ast.NegativeNode) (value.Value, bool, error) {
	v, isRet, err := ev.Eval(n.Rhs)
	if err != nil || isRet {
		return v, isRet, err
	}
	num, ok := v.(value.Number)
	if !ok {
		return nil, false, runtimeErrorf("Operands must be numbers.")
	}
	return value.NumberFromFloat(-num.Float()), false, nil
}

func (ev *Evaluator) evalUnary(n *ast.UnaryNode) (value.Value, bool, error) {
	v, isRet, err := ev.Eval(n.Rhs)
	if err != nil || isRet {
		return v, isRet, err
	}
	switch n.Op.Type {
	case lexer.BANG:
		return value.Bool{Value: !value.Truthy(v)}, false, nil
	default:
		return nil, false, runtimeErrorf("Operands must be numbers.")
	}
}

func (ev *Evaluator) evalBinary(n *ast.BinaryNode) (value.Value, bool, error) {
	// `and`/`or` short-circuit and return whichever operand decided the
	// result, never a synthesized boolean.
	switch n.Op.Type {
	case lexer.AND:
		lhs, isRet, err := ev.Eval(n.Lhs)
		if err != nil || isRet {
			return lhs, isRet, err
		}
		if !value.Truthy(lhs) {
			return lhs, false, nil
		}
		return ev.Eval(n.Rhs)
	case lexer.OR:
		lhs, isRet, err := ev.Eval(n.Lhs)
		if err != nil || isRet {
			return lhs, isRet, err
		}
		if value.Truthy(lhs) {
			return lhs, false, nil
		}
		return ev.Eval(n.Rhs)
	}

	lhs, isRet, err := ev.Eval(n.Lhs)
	if err != nil || isRet {
		return lhs, isRet, err
	}
	rhs, isRet, err := ev.Eval(n.Rhs)
	if err != nil || isRet {
		return rhs, isRet, err
	}

	switch n.Op.Type {
	case lexer.EQUAL_EQUAL:
		return value.Bool{Value: value.Equal(lhs, rhs)}, false, nil
	case lexer.BANG_EQUAL:
		return value.Bool{Value: !value.Equal(lhs, rhs)}, false, nil
	case lexer.PLUS:
		return evalPlus(lhs, rhs)
	case lexer.MINUS, lexer.STAR, lexer.SLASH,
		lexer.LESS, lexer.LESS_EQUAL, lexer.GREATER, lexer.GREATER_EQUAL:
		ln, lok := lhs.(value.Number)
		rn, rok := rhs.(value.Number)
		if !lok || !rok {
			return nil, false, runtimeErrorf("Operands must be numbers.")
		}
		return evalNumeric(n.Op.Type, ln, rn)
	default:
		return nil, false, runtimeErrorf("Operands must be numbers.")
	}
}

func evalPlus(lhs, rhs value.Value) (value.Value, bool, error) {
	ln, lok := lhs.(value.Number)
	rn, rok := rhs.(value.Number)
	if lok && rok {
		return value.NumberFromFloat(ln.Float() + rn.Float()), false, nil
	}
	ls, lsok := lhs.(value.String)
	rs, rsok := rhs.(value.String)
	if lsok && rsok {
		return value.String{Value: ls.Value + rs.Value}, false, nil
	}
	return nil, false, runtimeErrorf("Operands must be two numbers or two strings.")
}

func evalNumeric(op lexer.TokenType, l, r value.Number) (value.Value, bool, error) {
	a, b := l.Float(), r.Float()
	switch op {
	case lexer.MINUS:
		return value.NumberFromFloat(a - b), false, nil
	case lexer.STAR:
		return value.NumberFromFloat(a * b), false, nil
	case lexer.SLASH:
		return value.NumberFromFloat(a / b), false, nil
	case lexer.LESS:
		return value.Bool{Value: a < b}, false, nil
	case lexer.LESS_EQUAL:
		return value.Bool{Value: a <= b}, false, nil
	case lexer.GREATER:
		return value.Bool{Value: a > b}, false, nil
	case lexer.GREATER_EQUAL:
		return value.Bool{Value: a >= b}, false, nil
	default:
		return nil, false, runtimeErrorf("Operands must be numbers.")
	}
}

func (ev *Evaluator) evalAssign(n *ast.AssignNode) (value.Value, bool, error) {
	ident, ok := n.Lhs.(*ast.IdentifierNode)
	if !ok {
		return nil, false, runtimeErrorf("invalid assignment target")
	}
	v, isRet, err := ev.Eval(n.Rhs)
	if err != nil || isRet {
		return v, isRet, err
	}
	if !ev.Env.Assign(ident.Name, v) {
		return nil, false, runtimeErrorf("var not found %s", ident.Name)
	}
	return v, false, nil
}

func (ev *Evaluator) evalVarDecl(n *ast.VarDeclNode) (value.Value, bool, error) {
	var v value.Value = value.Nil{}
	if n.Value != nil {
		var isRet bool
		var err error
		v, isRet, err = ev.Eval(n.Value)
		if err != nil || isRet {
			return v, isRet, err
		}
	}
	ev.Env.Declare(n.Name, v)
	return v, false, nil
}

func (ev *Evaluator) evalIf(n *ast.IfNode) (value.Value, bool, error) {
	cond, isRet, err := ev.Eval(n.Cond)
	if err != nil || isRet {
		return cond, isRet, err
	}
	if value.Truthy(cond) {
		return ev.Eval(n.Then)
	}
	if n.Else != nil {
		return ev.Eval(n.Else)
	}
	return value.Nil{}, false, nil
}

func (ev *Evaluator) evalWhile(n *ast.WhileNode) (value.Value, bool, error) {
	for {
		cond, isRet, err := ev.Eval(n.Cond)
		if err != nil || isRet {
			return cond, isRet, err
		}
		if !value.Truthy(cond) {
			return value.Nil{}, false, nil
		}
		v, isRet, err := ev.Eval(n.Body)
		if err != nil || isRet {
			return v, isRet, err
		}
	}
}

func (ev *Evaluator) evalFor(n *ast.ForNode) (value.Value, bool, error) {
	if n.Init != nil {
		_, isRet, err := ev.Eval(n.Init)
		if err != nil || isRet {
			return nil, isRet, err
		}
	}
	for {
		if n.Cond != nil {
			cond, isRet, err := ev.Eval(n.Cond)
			if err != nil || isRet {
				return cond, isRet, err
			}
			if !value.Truthy(cond) {
				return value.Nil{}, false, nil
			}
		}
		v, isRet, err := ev.Eval(n.Body)
		if err != nil || isRet {
			return v, isRet, err
		}
		if n.Step != nil {
			_, isRet, err := ev.Eval(n.Step)
			if err != nil || isRet {
				return nil, isRet, err
			}
		}
	}
}

func (ev *Evaluator) evalPrint(n *ast.PrintNode) (value.Value, bool, error) {
	v, isRet, err := ev.Eval(n.Expr)
	if err != nil || isRet {
		return v, isRet, err
	}
	fmt.Fprintln(ev.Writer, value.Render(v))
	return value.Nil{}, false, nil
}

func (ev *Evaluator) evalBlock(n *ast.BlockNode) (value.Value, bool, error) {
	ev.Env.Current().Push()
	defer ev.Env.Current().Pop()

	var result value.Value = value.Nil{}
	for _, stmt := range n.Statements {
		v, isRet, err := ev.Eval(stmt)
		if err != nil {
			return nil, false, err
		}
		if isRet {
			return v, true, nil
		}
		result = v
	}
	return result, false, nil
}

func (ev *Evaluator) evalFnDecl(n *ast.FnDeclNode) (value.Value, bool, error) {
	fn := &value.Function{Name: n.Name, Params: n.Params, Body: n.Body}
	ev.Env.DeclareFunction(fn)
	return value.Nil{}, false, nil
}

func (ev *Evaluator) evalFnCall(n *ast.FnCallNode) (value.Value, bool, error) {
	callee, isRet, err := ev.Eval(n.Callee)
	if err != nil || isRet {
		return callee, isRet, err
	}
	fv, ok := callee.(value.Func)
	if !ok {
		return nil, false, runtimeErrorf("can only call functions")
	}

	fn := fv.Object.Fn
	if len(n.Args) != len(fn.Params) {
		return nil, false, runtimeErrorf("Expected %d arguments but got %d.", len(fn.Params), len(n.Args))
	}

	if fn.Builtin != nil {
		v, err := fn.Builtin(n.Args)
		return v, false, err
	}

	args := make([]value.Value, 0, len(n.Args))
	for _, a := range n.Args {
		v, isRet, err := ev.Eval(a)
		if err != nil || isRet {
			return v, isRet, err
		}
		args = append(args, v)
	}

	capture := fv.Object.Capture
	frame := ev.Env.PushCall(capture)
	for i, param := range fn.Params {
		frame.Blocks[0][param] = args[i]
	}
	ev.captureStack = append(ev.captureStack, capture)

	result, _, err := ev.Eval(fn.Body)

	if capture != nil {
		ev.Env.SyncCapture(capture)
	}
	ev.captureStack = ev.captureStack[:len(ev.captureStack)-1]
	ev.Env.PopCall()

	if err != nil {
		return nil, false, err
	}
	if result == nil {
		result = value.Nil{}
	}
	return result, false, nil
}

func (ev *Evaluator) evalReturn(n *ast.ReturnNode) (value.Value, bool, error) {
	if n.Expr == nil {
		return value.Nil{}, true, nil
	}
	v, isRet, err := ev.Eval(n.Expr)
	if err != nil || isRet {
		return v, true, err
	}
	return v, true, nil
}
