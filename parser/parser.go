// Package parser implements a Pratt-style recursive-descent parser: a
// primary-form dispatcher plus precedence climbing for binary operators,
// building the tagged syntax tree defined by package ast.
package parser

import (
	"fmt"

	"github.com/loxmix/loxmix/ast"
	"github.com/loxmix/loxmix/lexer"
)

// precedence gives a binary operator's climbing level, or ok=false when tok
// is not a binary operator. The levels mirror the grammar table: or/and
// bind loosest, then comparisons, then +/-, then the tightest */.
func precedence(typ lexer.TokenType) (int, bool) {
	switch typ {
	case lexer.OR, lexer.AND:
		return 5, true
	case lexer.LESS, lexer.LESS_EQUAL, lexer.GREATER, lexer.GREATER_EQUAL,
		lexer.EQUAL_EQUAL, lexer.BANG_EQUAL:
		return 10, true
	case lexer.PLUS, lexer.MINUS:
		return 20, true
	case lexer.STAR, lexer.SLASH:
		return 40, true
	default:
		return 0, false
	}
}

// Error is a parse-time failure: a line number (zero when not applicable,
// as with a mismatched parenthesis) and the rendered message.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("[line %d] Error %s", e.Line, e.Message)
}

// Parser consumes a flat token stream with one token of lookahead.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// New creates a parser over tokens, which must end in an EOF token (as
// produced by lexer.Lexer.Scan).
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse reads top-level statements until EOF, returning the ordered list of
// top-level AST nodes.
func (p *Parser) Parse() ([]ast.Node, error) {
	var stmts []ast.Node
	for !p.check(lexer.EOF) {
		n, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, n)
		p.skipSemicolon()
	}
	return stmts, nil
}

func (p *Parser) cur() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) check(typ lexer.TokenType) bool {
	return p.cur().Type == typ
}

func (p *Parser) advance() lexer.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) skipSemicolon() {
	if p.check(lexer.SEMICOLON) {
		p.advance()
	}
}

func (p *Parser) tokenText(t lexer.Token) string {
	if t.Type == lexer.EOF {
		return "EOF"
	}
	return t.Lexeme
}

func (p *Parser) errorAt(t lexer.Token, message string) error {
	return &Error{Line: t.Line, Message: fmt.Sprintf("at '%s': %s", p.tokenText(t), message)}
}

func (p *Parser) expect(typ lexer.TokenType, what string) (lexer.Token, error) {
	if !p.check(typ) {
		return lexer.Token{}, p.errorAt(p.cur(), what)
	}
	return p.advance(), nil
}

// parseExpression parses one full expression/statement form: a primary,
// then either an `if` passed through unchanged, a chain of prefix unary
// operators followed by a climb over trailing binary operators, a
// right-associative assignment, or a climb over trailing binary operators.
func (p *Parser) parseExpression() (ast.Node, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	switch v := lhs.(type) {
	case *ast.IfNode:
		return v, nil
	case *ast.OperatorNode:
		unary, err := p.parseUnary(v.Token)
		if err != nil {
			return nil, err
		}
		return p.parseBinaryRHS(0, unary)
	}
	if p.check(lexer.EQUAL) {
		return p.parseAssignment(lhs)
	}
	return p.parseBinaryRHS(0, lhs)
}

// parseUnary builds a (possibly chained, e.g. `!!true`) prefix-unary node
// rooted at opTok, whose operand is parsed as a bare primary so that `!`
// binds tighter than any following binary operator.
func (p *Parser) parseUnary(opTok lexer.Token) (ast.Node, error) {
	operand, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if next, ok := operand.(*ast.OperatorNode); ok {
		operand, err = p.parseUnary(next.Token)
		if err != nil {
			return nil, err
		}
	}
	return &ast.UnaryNode{Op: opTok, Rhs: operand}, nil
}

// parseAssignment parses `lhs = rhs`, recursing on the right so that
// `a = b = c` builds Assign(a, Assign(b, c)).
func (p *Parser) parseAssignment(lhs ast.Node) (ast.Node, error) {
	p.advance() // '='
	rhs, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.AssignNode{Lhs: lhs, Rhs: rhs}, nil
}

// parseBinaryRHS is standard precedence climbing: each loop iteration
// consumes one operator at or above minPrec, parses its right operand as a
// bare primary, and recurses first when a tighter-binding operator follows.
func (p *Parser) parseBinaryRHS(minPrec int, lhs ast.Node) (ast.Node, error) {
	for {
		prec, ok := precedence(p.cur().Type)
		if !ok || prec < minPrec {
			return lhs, nil
		}
		opTok := p.advance()

		if p.check(lexer.SEMICOLON) {
			return nil, p.errorAt(p.cur(), "Expect expression.")
		}
		rhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		if opNode, ok := rhs.(*ast.OperatorNode); ok {
			rhs, err = p.parseUnary(opNode.Token)
			if err != nil {
				return nil, err
			}
		}

		nextPrec, nextOk := precedence(p.cur().Type)
		if nextOk && nextPrec > prec {
			rhs, err = p.parseBinaryRHS(prec+1, rhs)
			if err != nil {
				return nil, err
			}
		}

		lhs = &ast.BinaryNode{Op: opTok, Lhs: lhs, Rhs: rhs}
	}
}

// rejectControlForm rejects an `if` condition or a `for` initializer or
// condition being filled by a statement form (`if`, `while`, `for`,
// `print`, or a block) rather than a plain expression. A `var` declaration
// passes this check; bare declarations in body position are caught by
// rejectVarHere instead.
func (p *Parser) rejectControlForm(n ast.Node, at lexer.Token) error {
	switch n.(type) {
	case *ast.OperatorNode, *ast.IfNode, *ast.WhileNode, *ast.ForNode,
		*ast.PrintNode, *ast.BlockNode:
		return p.errorAt(at, "Expect expression.")
	}
	return nil
}

func (p *Parser) rejectVarHere() error {
	if p.check(lexer.VAR) {
		return p.errorAt(p.cur(), "Expect expression.")
	}
	return nil
}

// parsePrimary dispatches on the current token's kind to build one AST
// node, then applies any trailing call suffix (`(...)`, possibly chained).
func (p *Parser) parsePrimary() (ast.Node, error) {
	tok := p.advance()
	var node ast.Node
	var err error

	switch tok.Type {
	case lexer.TRUE:
		node = &ast.BoolNode{Value: true}
	case lexer.FALSE:
		node = &ast.BoolNode{Value: false}
	case lexer.NIL:
		node = &ast.NilNode{}
	case lexer.NUMBER:
		node = &ast.NumberNode{Lexeme: tok.Lexeme}
	case lexer.STRING:
		node = &ast.StringNode{Value: tok.Literal()}
	case lexer.IDENTIFIER:
		node = &ast.IdentifierNode{Name: tok.Lexeme}
	case lexer.SEMICOLON:
		return p.parsePrimary()
	case lexer.MINUS:
		node, err = p.parseNegative()
	case lexer.LEFT_PAREN:
		node, err = p.parseGroup()
	case lexer.LEFT_BRACE:
		node, err = p.parseBlock()
	case lexer.BANG:
		node = &ast.OperatorNode{Token: tok}
	case lexer.IF:
		node, err = p.parseIf()
	case lexer.WHILE:
		node, err = p.parseWhile()
	case lexer.FOR:
		node, err = p.parseFor()
	case lexer.PRINT:
		node, err = p.parsePrint()
	case lexer.RETURN:
		node, err = p.parseReturn()
	case lexer.VAR:
		node, err = p.parseVarDecl()
	case lexer.FUN:
		node, err = p.parseFnDecl()
	default:
		return nil, p.errorAt(tok, "Expect expression.")
	}
	if err != nil {
		return nil, err
	}

	if _, isOp := node.(*ast.OperatorNode); isOp {
		return node, nil
	}
	return p.parseCallSuffix(node)
}

// parseCallSuffix wraps node in FnCall nodes for as many immediately
// following `(...)` argument lists as appear, so `f()()` parses as a call
// whose callee is itself a call.
func (p *Parser) parseCallSuffix(node ast.Node) (ast.Node, error) {
	for p.check(lexer.LEFT_PAREN) {
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		node = &ast.FnCallNode{Callee: node, Args: args}
	}
	return node, nil
}

// parseArgs parses a parenthesized, comma-separated expression list; the
// opening paren must be the current token.
func (p *Parser) parseArgs() ([]ast.Node, error) {
	p.advance() // '('
	var args []ast.Node
	if p.check(lexer.RIGHT_PAREN) {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		switch {
		case p.check(lexer.COMMA):
			p.advance()
		case p.check(lexer.RIGHT_PAREN):
			p.advance()
			return args, nil
		default:
			return nil, p.errorAt(p.cur(), "Expect expression.")
		}
	}
}

// parseNegative implements the `-` prefix form: the operand is a full
// expression (not just a bare primary), so `-a + b` folds the whole
// trailing expression under the negation.
func (p *Parser) parseNegative() (ast.Node, error) {
	rhs, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.NegativeNode{Rhs: rhs}, nil
}

func (p *Parser) parseGroup() (ast.Node, error) {
	inner, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.check(lexer.RIGHT_PAREN) {
		return nil, &Error{Message: "Missing right parenthesis"}
	}
	p.advance()
	return &ast.ParenNode{Inner: inner}, nil
}

// parseBlock parses statements up to a closing `}`, assuming the opening
// `{` has already been consumed by parsePrimary's dispatch.
func (p *Parser) parseBlock() (ast.Node, error) {
	var stmts []ast.Node
	for {
		switch {
		case p.check(lexer.SEMICOLON):
			p.advance()
		case p.check(lexer.RIGHT_BRACE):
			p.advance()
			return &ast.BlockNode{Statements: stmts}, nil
		case p.check(lexer.EOF):
			return &ast.BlockNode{Statements: stmts}, nil
		default:
			n, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, n)
		}
	}
}

func (p *Parser) parseIf() (ast.Node, error) {
	if _, err := p.expect(lexer.LEFT_PAREN, "Expect expression."); err != nil {
		return nil, err
	}
	condTok := p.cur()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.rejectControlForm(cond, condTok); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RIGHT_PAREN, "Expect expression."); err != nil {
		return nil, err
	}
	if err := p.rejectVarHere(); err != nil {
		return nil, err
	}
	then, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipSemicolon()

	var elseBranch ast.Node = &ast.BlockNode{}
	if p.check(lexer.ELSE) {
		p.advance()
		elseBranch, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfNode{Cond: cond, Then: then, Else: elseBranch}, nil
}

func (p *Parser) parseWhile() (ast.Node, error) {
	if _, err := p.expect(lexer.LEFT_PAREN, "Expect expression."); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RIGHT_PAREN, "Expect expression."); err != nil {
		return nil, err
	}
	if err := p.rejectVarHere(); err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipSemicolon()
	return &ast.WhileNode{Cond: cond, Body: body}, nil
}

func (p *Parser) parseFor() (ast.Node, error) {
	if _, err := p.expect(lexer.LEFT_PAREN, "Expect expression."); err != nil {
		return nil, err
	}

	var init ast.Node
	if p.check(lexer.SEMICOLON) {
		p.advance()
	} else {
		initTok := p.cur()
		n, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.rejectControlForm(n, initTok); err != nil {
			return nil, err
		}
		init = n
		p.skipSemicolon()
	}

	var cond ast.Node
	if p.check(lexer.SEMICOLON) {
		p.advance()
	} else {
		condTok := p.cur()
		n, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.rejectControlForm(n, condTok); err != nil {
			return nil, err
		}
		cond = n
		p.skipSemicolon()
	}

	var step ast.Node
	if p.check(lexer.RIGHT_PAREN) {
		p.advance()
	} else {
		n, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		step = n
		if _, err := p.expect(lexer.RIGHT_PAREN, "Expect expression."); err != nil {
			return nil, err
		}
	}

	if err := p.rejectVarHere(); err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipSemicolon()
	return &ast.ForNode{Init: init, Cond: cond, Step: step, Body: body}, nil
}

func (p *Parser) parsePrint() (ast.Node, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.PrintNode{Expr: expr}, nil
}

func (p *Parser) parseReturn() (ast.Node, error) {
	if p.check(lexer.SEMICOLON) || p.check(lexer.RIGHT_BRACE) || p.check(lexer.EOF) {
		return &ast.ReturnNode{}, nil
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ReturnNode{Expr: expr}, nil
}

func (p *Parser) parseVarDecl() (ast.Node, error) {
	nameTok, err := p.expect(lexer.IDENTIFIER, "Expect expression.")
	if err != nil {
		return nil, err
	}
	var value ast.Node
	if p.check(lexer.EQUAL) {
		p.advance()
		value, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	return &ast.VarDeclNode{Name: nameTok.Lexeme, Value: value}, nil
}

func (p *Parser) parseFnDecl() (ast.Node, error) {
	nameTok, err := p.expect(lexer.IDENTIFIER, "Expect expression.")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LEFT_PAREN, "Expect expression."); err != nil {
		return nil, err
	}
	var params []string
	if !p.check(lexer.RIGHT_PAREN) {
		for {
			paramTok, err := p.expect(lexer.IDENTIFIER, "Expect expression.")
			if err != nil {
				return nil, err
			}
			params = append(params, paramTok.Lexeme)
			if p.check(lexer.COMMA) {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(lexer.RIGHT_PAREN, "Expect expression."); err != nil {
		return nil, err
	}
	bodyTok := p.cur()
	if !p.check(lexer.LEFT_BRACE) {
		return nil, p.errorAt(bodyTok, "Expect expression.")
	}
	p.advance()
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FnDeclNode{Name: nameTok.Lexeme, Params: params, Body: body}, nil
}
