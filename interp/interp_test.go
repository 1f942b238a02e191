package interp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeEmptySourceProducesEOFOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Tokenize("", &buf))
	assert.Equal(t, "EOF  null\n", buf.String())
}

func TestTokenizeLexErrorMapsToExit65(t *testing.T) {
	var buf bytes.Buffer
	err := Tokenize("@", &buf)
	require.Error(t, err)
	assert.Equal(t, 65, ExitCode(err))
}

func TestParseRendersDebugForm(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Parse("1 + 2 * 3;", &buf))
	assert.Equal(t, "(+ 1.0 (* 2.0 3.0))\n", buf.String())
}

func TestParseSyntaxErrorMapsToExit65(t *testing.T) {
	var buf bytes.Buffer
	err := Parse("1 +;", &buf)
	require.Error(t, err)
	assert.Equal(t, 65, ExitCode(err))
}

func TestEvaluateRendersEachTopLevelValue(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Evaluate(`"a" + "b";`, &buf))
	assert.Equal(t, "ab\n", buf.String())
}

func TestEvaluateRuntimeErrorMapsToExit70(t *testing.T) {
	var buf bytes.Buffer
	err := Evaluate("1 + true;", &buf)
	require.Error(t, err)
	assert.Equal(t, 70, ExitCode(err))
}

func TestRunScenarioArithmeticPrecedence(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Run("print 1 + 2 * 3;", &buf))
	assert.Equal(t, "7\n", buf.String())
}

func TestRunScenarioStringConcatenation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Run(`var a = "foo"; var b = "bar"; print a + b;`, &buf))
	assert.Equal(t, "foobar\n", buf.String())
}

func TestRunScenarioForLoopAccumulates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Run("var x = 0; for (var i = 0; i < 3; i = i + 1) { x = x + i; } print x;", &buf))
	assert.Equal(t, "3\n", buf.String())
}

func TestRunScenarioClosureAccumulatesAcrossCalls(t *testing.T) {
	var buf bytes.Buffer
	src := `fun make() { var n = 0; fun inc() { n = n + 1; return n; } return inc; } var c = make(); print c(); print c(); print c();`
	require.NoError(t, Run(src, &buf))
	assert.Equal(t, "1\n2\n3\n", buf.String())
}

func TestRunScenarioOrShortCircuitsToTruthyOperand(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Run(`if (nil or "hi") print "ok"; else print "no";`, &buf))
	assert.Equal(t, "ok\n", buf.String())
}

func TestRunScenarioClockBuiltin(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Run("print clock;", &buf))
	assert.Equal(t, "<fn clock>\n", buf.String())
}

func TestRunArityErrorMapsToExit70(t *testing.T) {
	var buf bytes.Buffer
	err := Run("fun f(a) {} f();", &buf)
	require.Error(t, err)
	assert.Equal(t, 70, ExitCode(err))
}

func TestExitCodeSuccess(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
}
