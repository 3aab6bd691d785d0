package interp

import (
	"github.com/dmattp/bang/lang/ast"
	"github.com/dmattp/bang/lang/value"
)

// BoundProg pairs an AST program with the upvalue chain captured at the
// instant the program was lexically pushed onto the stack. This is what user
// code calls a closure. Immutable after construction.
type BoundProg struct {
	Prog   *ast.Program
	Upvals *Upvalue
}

var _ value.Value = (*BoundProg)(nil)

// NewModule wraps a freshly parsed top-level program in a bound program with
// an empty upvalue chain, as require does for source modules.
func NewModule(p *ast.Program) *BoundProg {
	return &BoundProg{Prog: p}
}

func (bp *BoundProg) String() string { return "(function)" }
func (bp *BoundProg) Type() string   { return "function" }
func (bp *BoundProg) Truth() bool    { return true }
