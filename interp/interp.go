// Package interp wires the lexer, parser, and evaluator into the four CLI
// entry points (tokenize/parse/evaluate/run) and maps every error kind that
// can escape them onto the documented exit codes.
package interp

import (
	"fmt"
	"io"
	"strings"

	"github.com/juju/errors"

	"github.com/loxmix/loxmix/ast"
	"github.com/loxmix/loxmix/env"
	"github.com/loxmix/loxmix/eval"
	"github.com/loxmix/loxmix/lexer"
	"github.com/loxmix/loxmix/parser"
	"github.com/loxmix/loxmix/value"
)

// LexError wraps a lexical failure (bad character, unterminated string, or
// an imbalanced brace count) detected by the scanner.
type LexError struct {
	cause error
}

func (e *LexError) Error() string { return e.cause.Error() }
func (e *LexError) Unwrap() error { return e.cause }

// ParseError wraps a syntactic failure from package parser.
type ParseError struct {
	cause error
}

func (e *ParseError) Error() string { return e.cause.Error() }
func (e *ParseError) Unwrap() error { return e.cause }

// RuntimeError wraps a failure raised while evaluating an already-parsed
// tree.
type RuntimeError struct {
	cause error
}

func (e *RuntimeError) Error() string { return e.cause.Error() }
func (e *RuntimeError) Unwrap() error { return e.cause }

// NewRuntimeError wraps err as a RuntimeError, for callers (the CLI's
// env-preserving evaluate/run paths) that evaluate nodes themselves instead
// of going through Evaluate/Run.
func NewRuntimeError(err error) error {
	if err == nil {
		return nil
	}
	return &RuntimeError{cause: errors.Trace(err)}
}

// ExitCode maps an error returned by Tokenize/Parse/Evaluate/Run to the
// process exit code documented for the CLI: 0 for a nil error, 65 for a
// lexical or syntactic error, 70 for a runtime error.
func ExitCode(err error) int {
	switch err.(type) {
	case nil:
		return 0
	case *LexError, *ParseError:
		return 65
	case *RuntimeError:
		return 70
	default:
		return 70
	}
}

func scan(source string) ([]lexer.Token, error) {
	tokens, hadErr, braceDepth := lexer.NewLexer(source).Scan()
	if hadErr || braceDepth != 0 {
		return nil, &LexError{cause: errors.New("lexical error")}
	}
	return tokens, nil
}

// Tokenize scans source and writes one `KIND lexeme literal` line per
// token to w.
func Tokenize(source string, w io.Writer) error {
	tokens, err := scan(source)
	if err != nil {
		return err
	}
	for _, t := range tokens {
		fmt.Fprintln(w, t.Print())
	}
	return nil
}

func parseAll(source string) ([]ast.Node, error) {
	tokens, err := scan(source)
	if err != nil {
		return nil, err
	}
	nodes, err := parser.New(tokens).Parse()
	if err != nil {
		return nil, &ParseError{cause: errors.Trace(err)}
	}
	return nodes, nil
}

// ParseLine scans and parses one line of input, returning its top-level
// nodes for a caller (the REPL) that evaluates incrementally against a
// long-lived Env rather than through Run's fresh one.
func ParseLine(source string) ([]ast.Node, error) {
	return parseAll(source)
}

// Parse parses source and writes the parenthesized debug form of each
// top-level node to w, one per line.
func Parse(source string, w io.Writer) error {
	nodes, err := parseAll(source)
	if err != nil {
		return err
	}
	var lines []string
	for _, n := range nodes {
		lines = append(lines, ast.Debug(n))
	}
	fmt.Fprintln(w, strings.Join(lines, "\n"))
	return nil
}

// Evaluate parses source and evaluates each top-level node, writing the
// rendered value of each to w, one per line.
func Evaluate(source string, w io.Writer) error {
	nodes, err := parseAll(source)
	if err != nil {
		return err
	}
	e := env.New()
	ev := eval.New(e, w)
	for _, n := range nodes {
		v, _, err := ev.Eval(n)
		if err != nil {
			return &RuntimeError{cause: errors.Trace(err)}
		}
		fmt.Fprintln(w, value.Render(v))
	}
	return nil
}

// Run parses source and executes each top-level statement for effect,
// sending any `print` output to w.
func Run(source string, w io.Writer) error {
	nodes, err := parseAll(source)
	if err != nil {
		return err
	}
	e := env.New()
	ev := eval.New(e, w)
	for _, n := range nodes {
		if _, _, err := ev.Eval(n); err != nil {
			return &RuntimeError{cause: errors.Trace(err)}
		}
	}
	return nil
}
