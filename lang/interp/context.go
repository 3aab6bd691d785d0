package interp

import (
	"errors"
	"io"

	"github.com/dmattp/bang/lang/ast"
	"github.com/dmattp/bang/lang/value"
)

// RunContext is one frame of a thread's run chain: the program being
// executed, the instruction cursor, and the upvalue chain in effect. A tail
// apply rebinds the frame in place instead of pushing a new one.
type RunContext struct {
	th     *Thread
	prev   *RunContext
	prog   *ast.Program
	pc     int
	upvals *Upvalue
}

var _ value.Context = (*RunContext)(nil)

// rebind re-points the frame at the start of prog with the given chain; this
// is the only place interpreter state changes non-monotonically.
func (rc *RunContext) rebind(prog *ast.Program, uv *Upvalue) {
	rc.prog = prog
	rc.pc = 0
	rc.upvals = uv
}

func (rc *RunContext) GetUpval(k int) (value.Value, error) {
	if rc.upvals == nil {
		return nil, errors.New("no upvalues in scope")
	}
	return rc.upvals.GetUpval(k)
}

func (rc *RunContext) GetUpvalByName(name string) (value.Value, error) {
	if rc.upvals == nil {
		return nil, errors.New("no upvalues in scope")
	}
	return rc.upvals.GetUpvalByName(name)
}

func (rc *RunContext) Stdout() io.Writer { return rc.th.stdout() }
