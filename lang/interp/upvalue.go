package interp

import (
	"fmt"

	"github.com/dmattp/bang/lang/ast"
	"github.com/dmattp/bang/lang/value"
)

// Upvalue is one frame of the lexical environment captured by a closure:
// the binder that introduced it, the bound value, and the enclosing chain.
// Frames are immutable after construction and prefix-shared across sibling
// closures; a chain is never deep-copied.
type Upvalue struct {
	closer *ast.CloseValue
	v      value.Value
	parent *Upvalue
}

// Closer returns the CloseValue binder this frame was created by, which the
// REPL uses to resume parsing against the accumulated chain.
func (uv *Upvalue) Closer() *ast.CloseValue { return uv.closer }

// GetUpval returns the value bound k frames up the chain.
func (uv *Upvalue) GetUpval(k int) (value.Value, error) {
	for n := k; uv != nil; uv = uv.parent {
		if n == 0 {
			return uv.v, nil
		}
		n--
	}
	return nil, fmt.Errorf("no upvalue bound %d frames up", k)
}

// GetUpvalByName walks the chain toward the root looking for a binder
// matching name. Lookup by name is expensive next to positional lookup; it
// backs the lookup keyword.
func (uv *Upvalue) GetUpvalByName(name string) (value.Value, error) {
	for ; uv != nil; uv = uv.parent {
		if uv.closer != nil && uv.closer.Name == name {
			return uv.v, nil
		}
	}
	return nil, fmt.Errorf("could not find upvalue %q", name)
}
