package interp

import (
	"fmt"

	"github.com/dmattp/bang/lang/ast"
)

// ExecError wraps a runtime failure with the where marker of the instruction
// at which it occurred, for host-side reporting.
type ExecError struct {
	Where string
	Err   error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s: %s", e.Where, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// execErr attaches the failing instruction to err, unless an inner frame
// already did.
func execErr(in ast.Instr, err error) error {
	if _, ok := err.(*ExecError); ok {
		return err
	}
	return &ExecError{Where: in.Where(), Err: err}
}
