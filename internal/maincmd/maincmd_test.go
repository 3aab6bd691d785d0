package maincmd

import (
	"bytes"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmattp/bang/internal/filetest"
)

var testUpdateScriptTests = flag.Bool("test.update-script-tests", false, "If set, replace expected script test results with actual results.")

func TestRunScripts(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, name := range filetest.SourceFiles(t, srcDir, ".bang") {
		t.Run(name, func(t *testing.T) {
			var out, errb bytes.Buffer
			stdio := mainer.Stdio{
				Stdin:  strings.NewReader(""),
				Stdout: &out,
				Stderr: &errb,
			}

			// error is ignored, failures are part of the golden output
			var c Cmd
			_ = c.run(stdio, filepath.Join(srcDir, name))

			filetest.DiffOutput(t, name, out.String(), resultDir, testUpdateScriptTests)
			filetest.DiffErrors(t, name, errb.String(), resultDir, testUpdateScriptTests)
		})
	}
}

func TestReplBindingsPersist(t *testing.T) {
	var out, errb bytes.Buffer
	stdio := mainer.Stdio{
		Stdin:  strings.NewReader("def :sq x = x x * ;\n5 sq !\n"),
		Stdout: &out,
		Stderr: &errb,
	}

	c := Cmd{conf: config{Prompt: "Bang! "}}
	require.NoError(t, c.run(stdio, ""))

	// a prompt per line, one more for the final empty read, then the stack
	assert.Equal(t, "Bang! Bang! Bang! 25\n", out.String())
	assert.Empty(t, errb.String())
}

func TestReplRuntimeErrorReprompts(t *testing.T) {
	var out, errb bytes.Buffer
	stdio := mainer.Stdio{
		Stdin:  strings.NewReader("1 2 and\n3\n"),
		Stdout: &out,
		Stderr: &errb,
	}

	c := Cmd{conf: config{Prompt: "> "}}
	require.NoError(t, c.run(stdio, ""))

	assert.Contains(t, errb.String(), "Error:")
	assert.Contains(t, errb.String(), "logical operator")
	assert.True(t, strings.HasSuffix(out.String(), "3\n"), "the loop recovers and runs the next line, got %q", out.String())
}

func TestReplParseErrorReprompts(t *testing.T) {
	var out, errb bytes.Buffer
	stdio := mainer.Stdio{
		Stdin:  strings.NewReader("fluffle\n7\n"),
		Stdout: &out,
		Stderr: &errb,
	}

	c := Cmd{conf: config{Prompt: "> "}}
	require.NoError(t, c.run(stdio, ""))

	assert.Contains(t, errb.String(), "REPL Error:")
	assert.Contains(t, errb.String(), `unbound identifier "fluffle"`)
	assert.True(t, strings.HasSuffix(out.String(), "7\n"), "got %q", out.String())
}

func TestFindModule(t *testing.T) {
	c := Cmd{conf: config{Path: []string{filepath.Join("testdata", "in")}}}

	path, err := c.findModule("arith.bang")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "in", "arith.bang"), path)

	path, err = c.findModule("arith")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "in", "arith.bang"), path)

	_, err = c.findModule("zork")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no library or source file for "zork"`)
}

func TestLoaderPrefersRegisteredLibraries(t *testing.T) {
	var c Cmd
	v, err := c.loader(nil, "math")
	require.NoError(t, err)
	assert.Equal(t, "function", v.Type())
}
