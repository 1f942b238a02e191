package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loxmix/loxmix/ast"
	"github.com/loxmix/loxmix/lexer"
)

func parseAll(t *testing.T, src string) []ast.Node {
	t.Helper()
	tokens, hadErr, depth := lexer.NewLexer(src).Scan()
	require.False(t, hadErr)
	require.Equal(t, 0, depth)
	nodes, err := New(tokens).Parse()
	require.NoError(t, err)
	return nodes
}

func TestParsePrecedenceClimbing(t *testing.T) {
	nodes := parseAll(t, "1 + 2 * 3;")
	require.Len(t, nodes, 1)
	assert.Equal(t, "(+ 1.0 (* 2.0 3.0))", ast.Debug(nodes[0]))
}

func TestParseLeftAssociativity(t *testing.T) {
	nodes := parseAll(t, "1 - 2 - 3;")
	assert.Equal(t, "(- (- 1.0 2.0) 3.0)", ast.Debug(nodes[0]))
}

func TestParseGrouping(t *testing.T) {
	nodes := parseAll(t, "(1 + 2) * 3;")
	assert.Equal(t, "(* (group (+ 1.0 2.0)) 3.0)", ast.Debug(nodes[0]))
}

func TestParseChainedAssignmentIsRightAssociative(t *testing.T) {
	nodes := parseAll(t, "a = b = c;")
	assert.Equal(t, "(= a (= b c))", ast.Debug(nodes[0]))
}

func TestParseUnaryChain(t *testing.T) {
	nodes := parseAll(t, "!!true;")
	assert.Equal(t, "(! (! true))", ast.Debug(nodes[0]))
}

func TestParseCallChain(t *testing.T) {
	nodes := parseAll(t, "f()();")
	require.Len(t, nodes, 1)
	outer, ok := nodes[0].(*ast.FnCallNode)
	require.True(t, ok)
	assert.Empty(t, outer.Args)
	inner, ok := outer.Callee.(*ast.FnCallNode)
	require.True(t, ok)
	callee, ok := inner.Callee.(*ast.IdentifierNode)
	require.True(t, ok)
	assert.Equal(t, "f", callee.Name)
}

func TestParseForLoopStructural(t *testing.T) {
	nodes := parseAll(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	require.Len(t, nodes, 1)
	forNode, ok := nodes[0].(*ast.ForNode)
	require.True(t, ok)
	assert.IsType(t, &ast.VarDeclNode{}, forNode.Init)
	assert.IsType(t, &ast.BinaryNode{}, forNode.Cond)
	assert.IsType(t, &ast.AssignNode{}, forNode.Step)
	assert.IsType(t, &ast.PrintNode{}, forNode.Body)
}

func TestParseForLoopOmittedClauses(t *testing.T) {
	nodes := parseAll(t, "for (;;) print 1;")
	forNode, ok := nodes[0].(*ast.ForNode)
	require.True(t, ok)
	assert.Nil(t, forNode.Init)
	assert.Nil(t, forNode.Cond)
	assert.Nil(t, forNode.Step)
}

func TestParseIfElse(t *testing.T) {
	nodes := parseAll(t, "if (true) print 1; else print 2;")
	ifNode, ok := nodes[0].(*ast.IfNode)
	require.True(t, ok)
	assert.IsType(t, &ast.PrintNode{}, ifNode.Then)
	assert.IsType(t, &ast.PrintNode{}, ifNode.Else)
}

func TestParseIfWithoutElseDefaultsToEmptyBlock(t *testing.T) {
	nodes := parseAll(t, "if (true) print 1;")
	ifNode, ok := nodes[0].(*ast.IfNode)
	require.True(t, ok)
	block, ok := ifNode.Else.(*ast.BlockNode)
	require.True(t, ok)
	assert.Empty(t, block.Statements)
}

func TestParseFnDecl(t *testing.T) {
	nodes := parseAll(t, "fun add(a, b) { return a + b; }")
	fn, ok := nodes[0].(*ast.FnDeclNode)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	assert.Equal(t, []string{"a", "b"}, fn.Params)
	body, ok := fn.Body.(*ast.BlockNode)
	require.True(t, ok)
	require.Len(t, body.Statements, 1)
	assert.IsType(t, &ast.ReturnNode{}, body.Statements[0])
}

func TestParseVarDeclWithoutInitializer(t *testing.T) {
	nodes := parseAll(t, "var x;")
	decl, ok := nodes[0].(*ast.VarDeclNode)
	require.True(t, ok)
	assert.Equal(t, "x", decl.Name)
	assert.Nil(t, decl.Value)
}

func TestParseMissingRightParenIsFatal(t *testing.T) {
	tokens, _, _ := lexer.NewLexer("(1 + 2;").Scan()
	_, err := New(tokens).Parse()
	require.Error(t, err)
	assert.Equal(t, "Missing right parenthesis", err.Error())
}

func TestParseUnexpectedTokenReportsLineAndLexeme(t *testing.T) {
	tokens, _, _ := lexer.NewLexer("1 + ;").Scan()
	_, err := New(tokens).Parse()
	require.Error(t, err)
	assert.Equal(t, "[line 1] Error at ';': Expect expression.", err.Error())
}

func TestParseVarForbiddenAsBareIfBody(t *testing.T) {
	tokens, _, _ := lexer.NewLexer("if (true) var x;").Scan()
	_, err := New(tokens).Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expect expression.")
}

func TestParseNegativeWrapsTrailingExpression(t *testing.T) {
	nodes := parseAll(t, "-a + b;")
	assert.Equal(t, "(- (+ a b))", ast.Debug(nodes[0]))
}
