package lib

import (
	"fmt"

	"github.com/dmattp/bang/lang/value"
)

func init() {
	Register("array", openArray)
}

func openArray(st *value.Stack, _ value.Context) error {
	st.Push(lookupTable("Array", arrayPrims))
	return nil
}

var arrayPrims = map[string]value.Primitive{
	"from-stack": func(st *value.Stack, _ value.Context) error {
		st.Push(&Array{vals: st.GiveTo()})
		return nil
	},
	"new": func(st *value.Stack, _ value.Context) error {
		st.Push(&Array{})
		return nil
	},
}

// Array is a mutable box of values. Applied with a number it indexes;
// applied with a message string it answers #, set, swap, insert, erase,
// append, push and dequeue. The same operations are reachable through the
// /op custom operators. Mutation is deliberately looser than the rest of
// the language; arrays are not coordinated across threads.
type Array struct {
	vals []value.Value
}

var (
	_ value.Fun          = (*Array)(nil)
	_ value.HasCustomOps = (*Array)(nil)
)

func (a *Array) String() string { return "(function)" }
func (a *Array) Type() string   { return "function" }
func (a *Array) Truth() bool    { return true }

// Len returns the current element count.
func (a *Array) Len() int { return len(a.vals) }

// Index returns the i-th element.
func (a *Array) Index(i int) (value.Value, error) {
	if i < 0 || i >= len(a.vals) {
		return nil, fmt.Errorf("array index %d out of range", i)
	}
	return a.vals[i], nil
}

func (a *Array) Apply(st *value.Stack) error {
	msg, err := st.Pop()
	if err != nil {
		return err
	}
	switch msg := msg.(type) {
	case value.Num:
		v, err := a.Index(int(msg))
		if err != nil {
			return err
		}
		st.Push(v)
		return nil
	case *value.Str:
		return a.Custom(msg.Text(), st)
	default:
		return fmt.Errorf("array expects number or message, found %s", msg.Type())
	}
}

func (a *Array) Custom(name string, st *value.Stack) error {
	switch name {
	case "#":
		st.Push(value.Num(len(a.vals)))
		return nil

	case "set":
		i, err := a.popIndex(st, 0)
		if err != nil {
			return err
		}
		v, err := st.Pop()
		if err != nil {
			return err
		}
		a.vals[i] = v
		return nil

	case "swap":
		i, err := a.popIndex(st, 0)
		if err != nil {
			return err
		}
		j, err := a.popIndex(st, 0)
		if err != nil {
			return err
		}
		a.vals[i], a.vals[j] = a.vals[j], a.vals[i]
		return nil

	case "insert":
		// the index may be one past the end
		i, err := a.popIndex(st, 1)
		if err != nil {
			return err
		}
		v, err := st.Pop()
		if err != nil {
			return err
		}
		a.vals = append(a.vals, nil)
		copy(a.vals[i+1:], a.vals[i:])
		a.vals[i] = v
		return nil

	case "erase":
		i, err := a.popIndex(st, 0)
		if err != nil {
			return err
		}
		a.vals = append(a.vals[:i], a.vals[i+1:]...)
		return nil

	case "append":
		a.vals = append(a.vals, st.GiveTo()...)
		return nil

	case "push":
		vals := make([]value.Value, len(a.vals))
		copy(vals, a.vals)
		st.Push(&restore{vals: vals})
		return nil

	case "dequeue":
		if len(a.vals) == 0 {
			return fmt.Errorf("dequeue of empty array")
		}
		v := a.vals[0]
		a.vals = a.vals[1:]
		st.Push(v)
		return nil
	}
	return &ErrNotImplemented{Lib: "Array", Name: name}
}

func (a *Array) popIndex(st *value.Stack, slack int) (int, error) {
	n, err := st.PopNum()
	if err != nil {
		return 0, err
	}
	i := int(n)
	if i < 0 || i >= len(a.vals)+slack {
		return 0, fmt.Errorf("array index %d out of range", i)
	}
	return i, nil
}

// restore pushes a captured snapshot back onto the stack when applied.
type restore struct {
	vals []value.Value
}

var _ value.Fun = (*restore)(nil)

func (r *restore) String() string { return "(function)" }
func (r *restore) Type() string   { return "function" }
func (r *restore) Truth() bool    { return true }

func (r *restore) Apply(st *value.Stack) error {
	st.PushAll(r.vals)
	return nil
}
