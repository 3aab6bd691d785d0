package interp

import (
	"io"
	"os"

	"github.com/dmattp/bang/lang/ast"
	"github.com/dmattp/bang/lang/value"
)

// Thread is a coroutine context: its own operand stack, an alternative stack
// used as scratch while values move between threads during a switch, the
// chain of run frames, and a link to the thread that resumed it. The main
// thread is one of these, with no caller.
type Thread struct {
	Stack value.Stack
	Alt   value.Stack

	// Stdout is where printing primitives write. If nil, os.Stdout.
	Stdout io.Writer

	// Load resolves a module name for the require instruction. The host
	// installs a loader that consults the library registry and the module
	// search path; require fails if no loader is set.
	Load func(th *Thread, name string) (value.Value, error)

	// MaxFrames bounds the run-frame chain depth. A value <= 0 means no
	// limit. Tail calls reuse their frame and do not count against it.
	MaxFrames int

	frame      *RunContext
	caller     *Thread
	prog       *BoundProg
	started    bool
	done       bool
	depth      int
	peakFrames int
}

var _ value.Value = (*Thread)(nil)

// NewThread returns a fresh main thread.
func NewThread() *Thread { return &Thread{} }

// NewCoroutine returns a suspended thread that will run bp when first
// applied.
func NewCoroutine(bp *BoundProg) *Thread {
	return &Thread{prog: bp}
}

func (th *Thread) String() string { return "(thread)" }
func (th *Thread) Type() string   { return "thread" }
func (th *Thread) Truth() bool    { return true }

// Done reports whether a coroutine thread has run to completion.
func (th *Thread) Done() bool { return th.done }

// PeakFrames reports the deepest run-frame chain this thread reached; tests
// use it to verify tail calls keep the depth constant.
func (th *Thread) PeakFrames() int { return th.peakFrames }

func (th *Thread) stdout() io.Writer {
	if th.Stdout != nil {
		return th.Stdout
	}
	return os.Stdout
}

func (th *Thread) pushFrame(prog *ast.Program, uv *Upvalue) *RunContext {
	cur := &RunContext{th: th, prev: th.frame, prog: prog, upvals: uv}
	th.frame = cur
	th.depth++
	if th.depth > th.peakFrames {
		th.peakFrames = th.depth
	}
	return cur
}

func (th *Thread) popFrame() {
	th.frame = th.frame.prev
	th.depth--
}
