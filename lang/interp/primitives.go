package interp

import (
	"errors"
	"fmt"

	"github.com/dmattp/bang/lang/value"
)

// The arithmetic and comparison primitives operate on the top two stack
// slots in place: the second-from-top slot is rewritten with the result and
// the stack shrinks by one. The top is the rightmost source-textually
// written operand.

func binNums(st *value.Stack) (float64, float64, error) {
	v2, err := st.Nth(0)
	if err != nil {
		return 0, 0, err
	}
	v1, err := st.Nth(1)
	if err != nil {
		return 0, 0, err
	}
	n1, ok1 := v1.(value.Num)
	n2, ok2 := v2.(value.Num)
	if !ok1 || !ok2 {
		return 0, 0, errors.New("binary operator incompatible types")
	}
	return float64(n1), float64(n2), nil
}

func numOp(op func(a, b float64) (float64, error)) value.Primitive {
	return func(st *value.Stack, _ value.Context) error {
		a, b, err := binNums(st)
		if err != nil {
			return err
		}
		r, err := op(a, b)
		if err != nil {
			return err
		}
		st.SetNth(1, value.Num(r))
		_, err = st.Pop()
		return err
	}
}

func cmpOp(op func(a, b float64) bool) value.Primitive {
	return func(st *value.Stack, _ value.Context) error {
		a, b, err := binNums(st)
		if err != nil {
			return err
		}
		st.SetNth(1, value.Bool(op(a, b)))
		_, err = st.Pop()
		return err
	}
}

var (
	primAdd = numOp(func(a, b float64) (float64, error) { return a + b, nil })
	primSub = numOp(func(a, b float64) (float64, error) { return a - b, nil })
	primMul = numOp(func(a, b float64) (float64, error) { return a * b, nil })
	primDiv = numOp(func(a, b float64) (float64, error) { return a / b, nil })
	primMod = numOp(func(a, b float64) (float64, error) {
		if int(b) == 0 {
			return 0, errors.New("modulo by zero")
		}
		return float64(int(a) % int(b)), nil
	})

	primLt = cmpOp(func(a, b float64) bool { return a < b })
	primGt = cmpOp(func(a, b float64) bool { return a > b })
)

// primEq compares two numbers or two strings; string equality compares
// length and hash before bytes.
func primEq(st *value.Stack, _ value.Context) error {
	v2, err := st.Nth(0)
	if err != nil {
		return err
	}
	v1, err := st.Nth(1)
	if err != nil {
		return err
	}
	var eq bool
	switch a := v1.(type) {
	case value.Num:
		b, ok := v2.(value.Num)
		if !ok {
			return errors.New("binary operator incompatible types")
		}
		eq = a == b
	case *value.Str:
		b, ok := v2.(*value.Str)
		if !ok {
			return errors.New("binary operator incompatible types")
		}
		eq = a.Equal(b)
	default:
		return errors.New("binary operator incompatible types")
	}
	st.SetNth(1, value.Bool(eq))
	_, err = st.Pop()
	return err
}

func primNot(st *value.Stack, _ value.Context) error {
	v, err := st.Top()
	if err != nil {
		return err
	}
	b, ok := v.(value.Bool)
	if !ok {
		return errors.New("logical NOT operator incompatible type")
	}
	st.SetTop(!b)
	return nil
}

func boolOp(op func(a, b bool) bool) value.Primitive {
	return func(st *value.Stack, _ value.Context) error {
		b2, err := st.PopBool()
		if err != nil {
			return fmt.Errorf("logical operator: %w", err)
		}
		b1, err := st.PopBool()
		if err != nil {
			return fmt.Errorf("logical operator: %w", err)
		}
		st.Push(value.Bool(op(b1, b2)))
		return nil
	}
}

var (
	primAnd = boolOp(func(a, b bool) bool { return a && b })
	primOr  = boolOp(func(a, b bool) bool { return a || b })
)

func primDrop(st *value.Stack, _ value.Context) error {
	_, err := st.Pop()
	return err
}

func primSwap(st *value.Stack, _ value.Context) error {
	v1, err := st.Pop()
	if err != nil {
		return err
	}
	v2, err := st.Pop()
	if err != nil {
		return err
	}
	st.Push(v1)
	st.Push(v2)
	return nil
}

func primDup(st *value.Stack, _ value.Context) error {
	v, err := st.Top()
	if err != nil {
		return err
	}
	st.Push(v)
	return nil
}

func primNth(st *value.Stack, _ value.Context) error {
	k, err := st.PopNum()
	if err != nil {
		return fmt.Errorf("nth: %w", err)
	}
	v, err := st.Nth(int(k))
	if err != nil {
		return err
	}
	st.Push(v)
	return nil
}

// primStackLen pushes the visible stack depth; with a string on top it
// instead replaces it with the string's byte length.
func primStackLen(st *value.Stack, _ value.Context) error {
	if v, err := st.Top(); err == nil {
		if s, ok := v.(*value.Str); ok {
			st.SetTop(value.Num(s.Len()))
			return nil
		}
	}
	st.Push(value.Num(st.Size()))
	return nil
}

func primBeginBound(st *value.Stack, _ value.Context) error {
	st.BeginBound()
	return nil
}

func primEndBound(st *value.Stack, _ value.Context) error {
	st.EndBound()
	return nil
}

func primPrint(st *value.Stack, ctx value.Context) error {
	v, err := st.Pop()
	if err != nil {
		return err
	}
	if v == nil {
		_, err = fmt.Fprintln(ctx.Stdout(), "(uninitialized)")
		return err
	}
	_, err = fmt.Fprintln(ctx.Stdout(), v.String())
	return err
}

// restoreStack is the callable produced by save-stack: applying it pushes
// the captured values back, in their original order.
type restoreStack struct {
	vals []value.Value
}

var _ value.Fun = (*restoreStack)(nil)

func (r *restoreStack) String() string { return "(function)" }
func (r *restoreStack) Type() string   { return "function" }
func (r *restoreStack) Truth() bool    { return true }

func (r *restoreStack) Apply(st *value.Stack) error {
	st.PushAll(r.vals)
	return nil
}

func primSaveStack(st *value.Stack, _ value.Context) error {
	st.Push(&restoreStack{vals: st.GiveTo()})
	return nil
}

// stackArray is the accessor produced by stack-to-array: applied with a
// number it indexes the captured values, with "#" it answers the count, and
// with "push" it hands out a restore function over the same values.
type stackArray struct {
	vals []value.Value
}

var _ value.Fun = (*stackArray)(nil)

func (a *stackArray) String() string { return "(function)" }
func (a *stackArray) Type() string   { return "function" }
func (a *stackArray) Truth() bool    { return true }

func (a *stackArray) Apply(st *value.Stack) error {
	msg, err := st.Pop()
	if err != nil {
		return err
	}
	switch msg := msg.(type) {
	case value.Num:
		i := int(msg)
		if i < 0 || i >= len(a.vals) {
			return fmt.Errorf("stack array index %d out of range", i)
		}
		st.Push(a.vals[i])
		return nil
	case *value.Str:
		switch msg.Text() {
		case "#":
			st.Push(value.Num(len(a.vals)))
			return nil
		case "push":
			st.Push(&restoreStack{vals: a.vals})
			return nil
		}
		return fmt.Errorf("stack array does not implement %s", msg.Text())
	default:
		return fmt.Errorf("stack array expects number or string, found %s", msg.Type())
	}
}

func primStackToArray(st *value.Stack, _ value.Context) error {
	st.Push(&stackArray{vals: st.GiveTo()})
	return nil
}

// ForChar returns the primitive bound to a single-character operator.
func ForChar(c byte) (value.Primitive, bool) {
	switch c {
	case '+':
		return primAdd, true
	case '-':
		return primSub, true
	case '*':
		return primMul, true
	case '/':
		return primDiv, true
	case '%':
		return primMod, true
	case '<':
		return primLt, true
	case '>':
		return primGt, true
	case '=':
		return primEq, true
	case '#':
		return primStackLen, true
	case '(':
		return primBeginBound, true
	case ')':
		return primEndBound, true
	}
	return nil, false
}

// ForWord returns the primitive bound to a reserved word.
func ForWord(name string) (value.Primitive, bool) {
	switch name {
	case "not":
		return primNot, true
	case "and":
		return primAnd, true
	case "or":
		return primOr, true
	case "drop":
		return primDrop, true
	case "swap":
		return primSwap, true
	case "dup":
		return primDup, true
	case "nth":
		return primNth, true
	case "save-stack":
		return primSaveStack, true
	case "stack-to-array":
		return primStackToArray, true
	case "print":
		return primPrint, true
	}
	return nil, false
}

// Swap exposes the swap primitive to the parser's method-call sugar.
func Swap() value.Primitive { return primSwap }
