// Package ast defines the tagged-variant syntax tree produced by the
// parser: one small struct per node kind, following the one-struct-per-node
// convention of a hand-written recursive-descent front end, and a single
// Debug renderer that reproduces the parenthesized debug form.
package ast

import (
	"strings"

	"github.com/loxmix/loxmix/lexer"
)

// Node is the sealed set of AST node kinds. Implementations live only in
// this package; the interface exists purely to let the parser and
// evaluator hold a node of any kind.
type Node interface {
	node()
}

// BoolNode is a `true`/`false` literal.
type BoolNode struct{ Value bool }

// NumberNode is a numeric literal. Lexeme is kept verbatim from the token
// that produced it (never reparsed into the struct) so the canonical
// rendering can be derived on demand without losing source formatting.
type NumberNode struct{ Lexeme string }

// StringNode is a string literal with surrounding quotes already stripped.
type StringNode struct{ Value string }

// NilNode is the `nil` literal.
type NilNode struct{}

// IdentifierNode references a variable or function by name.
type IdentifierNode struct{ Name string }

// NegativeNode is a prefix `-` applied to Rhs.
type NegativeNode struct{ Rhs Node }

// UnaryNode is a prefix operator other than `-` (namely `!`) applied to Rhs.
type UnaryNode struct {
	Op  lexer.Token
	Rhs Node
}

// BinaryNode is an infix operator applied to Lhs and Rhs.
type BinaryNode struct {
	Op       lexer.Token
	Lhs, Rhs Node
}

// ParenNode is a parenthesized sub-expression, kept distinct from its inner
// node so debug rendering can show the grouping.
type ParenNode struct{ Inner Node }

// AssignNode is `lhs = rhs`; Lhs is always an IdentifierNode in practice but
// carried as a Node to mirror the parser's uniform expression handling.
type AssignNode struct{ Lhs, Rhs Node }

// VarDeclNode is `var name = value;` (Value is nil for a bare `var name;`).
type VarDeclNode struct {
	Name  string
	Value Node
}

// IfNode is `if (cond) then [else elseBranch]`; the parser fills Else with
// an empty BlockNode when the source has no else branch.
type IfNode struct {
	Cond, Then, Else Node
}

// WhileNode is `while (cond) body`.
type WhileNode struct{ Cond, Body Node }

// ForNode keeps the `for` loop structural rather than desugaring it to a
// `while`: Init, Cond and Step may each be nil (an omitted clause).
type ForNode struct {
	Init, Cond, Step, Body Node
}

// PrintNode is `print expr;`.
type PrintNode struct{ Expr Node }

// BlockNode is a `{ ... }` region; each entry is a statement in sequence.
type BlockNode struct{ Statements []Node }

// FnDeclNode is `fun name(params) { body }`.
type FnDeclNode struct {
	Name   string
	Params []string
	Body   Node
}

// FnCallNode is `callee(args...)`, including chained calls like `f()()`
// where Callee is itself a FnCallNode.
type FnCallNode struct {
	Callee Node
	Args   []Node
}

// ReturnNode is `return [expr];`; Expr is nil for a bare `return;`.
type ReturnNode struct{ Expr Node }

// OperatorNode is a transient wrapper around a raw operator token, used only
// while the parser is climbing precedence levels; it never appears in a
// finished tree handed to the evaluator.
type OperatorNode struct{ Token lexer.Token }

func (*BoolNode) node()       {}
func (*NumberNode) node()     {}
func (*StringNode) node()     {}
func (*NilNode) node()        {}
func (*IdentifierNode) node() {}
func (*NegativeNode) node()   {}
func (*UnaryNode) node()      {}
func (*BinaryNode) node()     {}
func (*ParenNode) node()      {}
func (*AssignNode) node()     {}
func (*VarDeclNode) node()    {}
func (*IfNode) node()         {}
func (*WhileNode) node()      {}
func (*ForNode) node()        {}
func (*PrintNode) node()      {}
func (*BlockNode) node()      {}
func (*FnDeclNode) node()     {}
func (*FnCallNode) node()     {}
func (*ReturnNode) node()     {}
func (*OperatorNode) node()   {}

// Debug renders a node in the parenthesized debug form used by the `parse`
// command: literals print as themselves, unary/binary operators as
// `(op operand...)`, parenthesized groups as `(group inner)`.
func Debug(n Node) string {
	switch v := n.(type) {
	case *BoolNode:
		if v.Value {
			return "true"
		}
		return "false"
	case *NumberNode:
		if strings.HasPrefix(v.Lexeme, "-") {
			return "(- " + lexer.CanonicalNumber(v.Lexeme[1:]) + ")"
		}
		return lexer.CanonicalNumber(v.Lexeme)
	case *StringNode:
		return v.Value
	case *NilNode:
		return "nil"
	case *IdentifierNode:
		return v.Name
	case *NegativeNode:
		return "(- " + Debug(v.Rhs) + ")"
	case *UnaryNode:
		return "(" + v.Op.Lexeme + " " + Debug(v.Rhs) + ")"
	case *BinaryNode:
		return "(" + v.Op.Lexeme + " " + Debug(v.Lhs) + " " + Debug(v.Rhs) + ")"
	case *ParenNode:
		return "(group " + Debug(v.Inner) + ")"
	case *AssignNode:
		return "(= " + Debug(v.Lhs) + " " + Debug(v.Rhs) + ")"
	case *FnCallNode:
		var b strings.Builder
		b.WriteString("(")
		b.WriteString(Debug(v.Callee))
		for _, arg := range v.Args {
			b.WriteString(" ")
			b.WriteString(Debug(arg))
		}
		b.WriteString(")")
		return b.String()
	default:
		return ""
	}
}
