package interp_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mna/lotus/internal/filetest"
	"github.com/mna/lotus/lang/interp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScripts runs every script in testdata/scripts and compares the
// combined stdout+stderr, line for line, against the script's
// "// expect:" markers.
func TestScripts(t *testing.T) {
	srcDir := filepath.Join("testdata", "scripts")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".lt") {
		t.Run(fi.Name(), func(t *testing.T) {
			path := filepath.Join(srcDir, fi.Name())

			var buf bytes.Buffer
			it := interp.New(interp.Config{})
			it.Stdout, it.Stderr = &buf, &buf

			require.NoError(t, it.RunFile(path))
			filetest.DiffExpectations(t, path, buf.String())
		})
	}
}

func run(t *testing.T, src string) (*interp.Interp, string, string) {
	t.Helper()

	var out, errOut bytes.Buffer
	it := interp.New(interp.Config{})
	it.Stdout, it.Stderr = &out, &errOut
	it.Run([]byte(src))
	return it, out.String(), errOut.String()
}

func TestRunStopsAtRuntimeError(t *testing.T) {
	it, out, errOut := run(t, "print 1; print 1 / 0; print 2;")
	assert.Equal(t, "1\n", out)
	assert.Equal(t, "line 1: location: at '/': division by zero\n", errOut)
	assert.True(t, it.HadRuntimeError())
	assert.False(t, it.HadError())
}

func TestRunStaticErrorSkipsExecution(t *testing.T) {
	it, out, errOut := run(t, "break; print 1;")
	assert.Empty(t, out)
	assert.Equal(t, "line 1: location: at 'break': outside loop scope\n", errOut)
	assert.True(t, it.HadError())
	assert.False(t, it.HadRuntimeError())
}

func TestRunScanErrorSkipsParse(t *testing.T) {
	it, out, errOut := run(t, "print 1; @")
	assert.Empty(t, out)
	assert.Equal(t, "line 1: location: : unexpected character: '@'\n", errOut)
	assert.True(t, it.HadError())
}

func TestRunParseErrorAtEnd(t *testing.T) {
	_, _, errOut := run(t, "print 1")
	assert.Equal(t, "line 1: location: at end: expected ';' after expression\n", errOut)
}

func TestGCUnderPressure(t *testing.T) {
	// the original's test-time limit: tiny, forcing frequent collections
	var out, errOut bytes.Buffer
	it := interp.New(interp.Config{HeapLimit: 2500})
	it.Stdout, it.Stderr = &out, &errOut

	it.Run([]byte(`
var keep = 0;
for (var i = 0; i < 50; i = i + 1) {
	var f = fun (x) {
		return x + 1;
	};
	keep = f(keep);
}
print keep;
`))
	assert.Empty(t, errOut.String())
	assert.Equal(t, "50\n", out.String())
	assert.False(t, it.HadRuntimeError())
}

func TestGCKeepsClosures(t *testing.T) {
	// closures captured early must survive the garbage churn that follows
	var out, errOut bytes.Buffer
	it := interp.New(interp.Config{HeapLimit: 2500})
	it.Stdout, it.Stderr = &out, &errOut

	it.Run([]byte(`
fun make() {
	var n = 100;
	fun get() {
		return n;
	}
	return get;
}
var g = make();
for (var i = 0; i < 60; i = i + 1) {
	var waste = fun (x) {
		return x;
	};
	waste(i);
}
print g();
`))
	assert.Empty(t, errOut.String())
	assert.Equal(t, "100\n", out.String())
}

func TestReplClearsStaticErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	it := interp.New(interp.Config{})
	it.Stdin = strings.NewReader("var;\nprint 42;\n\n")
	it.Stdout, it.Stderr = &out, &errOut

	it.RunPrompt()

	assert.Contains(t, errOut.String(), "expected identifier")
	// the second line still executes: hadError cleared between lines
	assert.Contains(t, out.String(), "42\n")
	assert.False(t, it.HadError())
}

func TestReplKeepsRuntimeErrorFlag(t *testing.T) {
	var out, errOut bytes.Buffer
	it := interp.New(interp.Config{})
	it.Stdin = strings.NewReader("print 1 / 0;\nprint 2;\n\n")
	it.Stdout, it.Stderr = &out, &errOut

	it.RunPrompt()

	assert.Contains(t, errOut.String(), "division by zero")
	assert.Contains(t, out.String(), "2\n")
	assert.True(t, it.HadRuntimeError())
}

func TestReplPromptAndExit(t *testing.T) {
	var out bytes.Buffer
	it := interp.New(interp.Config{})
	it.Stdin = strings.NewReader("print 1;\n\n")
	it.Stdout, it.Stderr = &out, &out

	it.RunPrompt()
	assert.Equal(t, "> 1\n> \n", out.String())
}

func TestReplGlobalsPersistAcrossLines(t *testing.T) {
	var out, errOut bytes.Buffer
	it := interp.New(interp.Config{})
	it.Stdin = strings.NewReader("var x = 3;\nprint x * x;\n\n")
	it.Stdout, it.Stderr = &out, &errOut

	it.RunPrompt()
	assert.Empty(t, errOut.String())
	assert.Contains(t, out.String(), "9\n")
}

func TestClock(t *testing.T) {
	_, out, errOut := run(t, "print clock() > 0;")
	assert.Empty(t, errOut)
	assert.Equal(t, "true\n", out)
}

func TestCallArityMessage(t *testing.T) {
	_, _, errOut := run(t, "fun f(a) { return a; }\nprint f(1, 2);")
	assert.Equal(t, "line 2: location: at ')': expected 1 arguments, got 2\n", errOut)
}

func TestCallNonCallable(t *testing.T) {
	_, _, errOut := run(t, `var x = "s"; x();`)
	assert.Equal(t, "line 1: location: at ')': call to string: can only call functions and constructors\n", errOut)
}

func TestSuperclassMustBeClass(t *testing.T) {
	_, _, errOut := run(t, "var A = 1;\nclass B < A { }")
	assert.Equal(t, "line 2: location: at 'A': expected class, got number\n", errOut)
}
