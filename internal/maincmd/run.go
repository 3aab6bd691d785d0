package maincmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mna/mainer"

	"github.com/dmattp/bang/lang/ast"
	"github.com/dmattp/bang/lang/interp"
	"github.com/dmattp/bang/lang/lib"
	"github.com/dmattp/bang/lang/parser"
	"github.com/dmattp/bang/lang/stream"
	"github.com/dmattp/bang/lang/value"
)

// run executes the source file when fname is non-empty, then enters the
// REPL when requested (or when there was no file at all). The final operand
// stack is dumped to stdout.
func (c *Cmd) run(stdio mainer.Stdio, fname string) error {
	th := interp.NewThread()
	th.Stdout = stdio.Stdout
	th.Load = c.loader

	if fname != "" {
		if err := c.runFile(th, stdio, fname); err != nil {
			return err
		}
		if !c.Repl {
			th.Stack.Dump(stdio.Stdout)
			return nil
		}
	}

	c.runRepl(th, stdio)
	th.Stack.Dump(stdio.Stdout)
	return nil
}

func (c *Cmd) runFile(th *interp.Thread, stdio mainer.Stdio, fname string) error {
	prog, err := c.parseFile(fname)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "Error: %s\n", err)
		return err
	}
	if c.Dump {
		prog.Dump(stdio.Stderr)
	}
	if err := interp.RunProgram(th, prog, nil); err != nil {
		fmt.Fprintf(stdio.Stderr, "Error: %s\n", err)
		return err
	}
	return nil
}

// runRepl drives the interactive loop. The run loop itself re-prompts
// through the EofMarker at the end of each line's program; control comes
// back here only on a runtime failure, which resets the binding chain, or
// when input is exhausted.
func (c *Cmd) runRepl(th *interp.Thread, stdio mainer.Stdio) {
	repl := &replContext{
		stdio:  stdio,
		prompt: c.conf.Prompt,
		dump:   c.Dump,
		src:    stream.NewReplLine(stdio.Stdin),
	}
	for {
		prog, err := repl.NextProgram(nil)
		if err != nil {
			return // no more input
		}
		if rerr := interp.RunProgram(th, prog, nil); rerr != nil {
			fmt.Fprintf(stdio.Stderr, "Error: %s\n", rerr)
			continue
		}
		return // the run loop only returns cleanly once input is exhausted
	}
}

// replContext solicits one program per line of interactive input. It serves
// both as the parser's end-of-input context, appending the marker that calls
// back into it, and as that marker's program source.
type replContext struct {
	stdio  mainer.Stdio
	prompt string
	dump   bool
	src    *stream.ReplLine
	used   bool
}

var (
	_ parser.Context   = (*replContext)(nil)
	_ ast.ParseContext = (*replContext)(nil)
)

func (r *replContext) HitEOF(_ *ast.CloseValue, where string) ast.Instr {
	return ast.NewEofMarker(r, where)
}

func (r *replContext) NextProgram(chain *ast.CloseValue) (*ast.Program, error) {
	for {
		if r.used {
			r.src.Rearm()
		}
		r.used = true
		if r.src.Closed() {
			return nil, stream.ErrEOF
		}
		fmt.Fprint(r.stdio.Stdout, r.prompt)

		prog, err := parser.ParseProgram(r, r.src, chain)
		if err != nil {
			fmt.Fprintf(r.stdio.Stderr, "REPL Error: %s\n", err)
			continue
		}
		if r.dump {
			prog.Dump(r.stdio.Stderr)
		}
		return prog, nil
	}
}

func (c *Cmd) parseFile(fname string) (*ast.Program, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parser.ParseProgram(parser.FileContext{}, stream.New(fname, f), nil)
}

// loader resolves require names: registered libraries first, then source
// files looked up directly and along BANG_PATH, with and without the .bang
// extension.
func (c *Cmd) loader(_ *interp.Thread, name string) (value.Value, error) {
	if m, ok := lib.Module(name); ok {
		return m, nil
	}

	path, err := c.findModule(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	prog, err := parser.ParseProgram(parser.FileContext{}, stream.New(path, f), nil)
	if err != nil {
		return nil, err
	}
	return interp.NewModule(prog), nil
}

func (c *Cmd) findModule(name string) (string, error) {
	var candidates []string
	for _, n := range []string{name, name + ".bang"} {
		candidates = append(candidates, n)
		for _, dir := range c.conf.Path {
			candidates = append(candidates, filepath.Join(dir, n))
		}
	}
	for _, cand := range candidates {
		if fi, err := os.Stat(cand); err == nil && fi.Mode().IsRegular() {
			return cand, nil
		}
	}
	return "", fmt.Errorf("no library or source file for %q (libraries: %v)", name, lib.Names())
}
