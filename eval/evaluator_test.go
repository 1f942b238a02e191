package eval

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loxmix/loxmix/env"
	"github.com/loxmix/loxmix/lexer"
	"github.com/loxmix/loxmix/parser"
)

func run(t *testing.T, src string) string {
	t.Helper()
	tokens, hadErr, depth := lexer.NewLexer(src).Scan()
	require.False(t, hadErr)
	require.Equal(t, 0, depth)
	nodes, err := parser.New(tokens).Parse()
	require.NoError(t, err)

	var buf bytes.Buffer
	e := env.New()
	ev := New(e, &buf)
	for _, n := range nodes {
		_, _, err := ev.Eval(n)
		require.NoError(t, err)
	}
	return buf.String()
}

// runErr behaves like run but returns the first evaluation error instead of
// asserting success, for tests that exercise a failure path.
func runErr(t *testing.T, src string) error {
	t.Helper()
	tokens, hadErr, depth := lexer.NewLexer(src).Scan()
	require.False(t, hadErr)
	require.Equal(t, 0, depth)
	nodes, err := parser.New(tokens).Parse()
	require.NoError(t, err)

	var buf bytes.Buffer
	e := env.New()
	ev := New(e, &buf)
	for _, n := range nodes {
		if _, _, err := ev.Eval(n); err != nil {
			return err
		}
	}
	return nil
}

func TestArithmeticPrecedence(t *testing.T) {
	assert.Equal(t, "7\n", run(t, "print 1 + 2 * 3;"))
}

func TestStringConcatenation(t *testing.T) {
	assert.Equal(t, "ab\n", run(t, `print "a" + "b";`))
}

func TestAndReturnsLastTruthyOperand(t *testing.T) {
	assert.Equal(t, "2\n", run(t, "print 1 and 2;"))
}

func TestAndReturnsFirstFalsyOperand(t *testing.T) {
	assert.Equal(t, "false\n", run(t, "print false and 2;"))
}

func TestOrReturnsFirstTruthyOperand(t *testing.T) {
	assert.Equal(t, "1\n", run(t, "print 1 or 2;"))
}

func TestOrReturnsLastFalsyOperand(t *testing.T) {
	assert.Equal(t, "nil\n", run(t, "print false or nil;"))
}

func TestComparisonResolvesIdentifierBeforeNumericCheck(t *testing.T) {
	assert.Equal(t, "true\n", run(t, "var x = 5; print x > 3;"))
}

func TestEqualityIsStructuralAndCrossKindIsUnequal(t *testing.T) {
	assert.Equal(t, "true\nfalse\n", run(t, `print "a" == "a"; print nil == false;`))
}

func TestVariableAssignmentAndBlockScoping(t *testing.T) {
	out := run(t, `
		var x = 1;
		{
			var x = 2;
			print x;
		}
		print x;
	`)
	assert.Equal(t, "2\n1\n", out)
}

func TestWhileLoop(t *testing.T) {
	assert.Equal(t, "0\n1\n2\n", run(t, `
		var i = 0;
		while (i < 3) {
			print i;
			i = i + 1;
		}
	`))
}

func TestForLoopWithOmittedCondIsTruthy(t *testing.T) {
	out := run(t, `
		var i = 0;
		for (;;) {
			if (i >= 2) return;
			print i;
			i = i + 1;
		}
	`)
	assert.Equal(t, "0\n1\n", out)
}

func TestFunctionCallAndReturn(t *testing.T) {
	assert.Equal(t, "3\n", run(t, `
		fun add(a, b) { return a + b; }
		print add(1, 2);
	`))
}

func TestFunctionArityError(t *testing.T) {
	tokens, _, _ := lexer.NewLexer("fun f(a) { return a; } f(1, 2);").Scan()
	nodes, err := parser.New(tokens).Parse()
	require.NoError(t, err)
	var buf bytes.Buffer
	e := env.New()
	ev := New(e, &buf)
	var lastErr error
	for _, n := range nodes {
		if _, _, err := ev.Eval(n); err != nil {
			lastErr = err
		}
	}
	require.Error(t, lastErr)
	assert.Equal(t, "Expected 1 arguments but got 2.", lastErr.Error())
}

func TestClosureCapturesAndAccumulatesAcrossCalls(t *testing.T) {
	out := run(t, `
		fun makeCounter() {
			var count = 0;
			fun increment() {
				count = count + 1;
				print count;
			}
			return increment;
		}
		var counter = makeCounter();
		counter();
		counter();
		counter();
	`)
	assert.Equal(t, "1\n2\n3\n", out)
}

func TestClockBuiltinPrintsFnName(t *testing.T) {
	assert.Equal(t, "<fn clock>\n", run(t, "print clock;"))
}

func TestClockBuiltinRejectsWrongArity(t *testing.T) {
	err := runErr(t, "clock(1, 2, 3);")
	require.Error(t, err)
	assert.Equal(t, "Expected 0 arguments but got 3.", err.Error())
}

func TestClockBuiltinNeverEvaluatesItsArguments(t *testing.T) {
	// clock declares zero params, so a call with one argument is always an
	// arity error; the arity check runs before any argument is evaluated, so
	// the undefined identifier below never produces a lookup error.
	err := runErr(t, "clock(undefined_var);")
	require.Error(t, err)
	assert.Equal(t, "Expected 0 arguments but got 1.", err.Error())
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	tokens, _, _ := lexer.NewLexer("print missing;").Scan()
	nodes, err := parser.New(tokens).Parse()
	require.NoError(t, err)
	var buf bytes.Buffer
	e := env.New()
	ev := New(e, &buf)
	_, _, err = ev.Eval(nodes[0])
	require.Error(t, err)
	assert.Equal(t, "var not found missing", err.Error())
}
