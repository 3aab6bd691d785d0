package ast

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmattp/bang/lang/value"
)

func nopPrim(st *value.Stack, ctx value.Context) error { return nil }

func TestOptimizeFusesPrimitiveApply(t *testing.T) {
	var p Program
	p.Add(
		NewPushLiteral(value.Num(1), "t:1"),
		NewPushPrimitive(nopPrim, "+", "t:1"),
		NewApply("t:1"),
		NewPushLiteral(value.Num(2), "t:1"),
	)
	Optimize(&p)

	require.Len(t, p.Instrs, 3)
	ap, ok := p.Instrs[1].(*ApplyPrimitive)
	require.True(t, ok, "PushPrimitive+Apply fused")
	assert.Equal(t, "+", ap.Name)
	assert.Equal(t, "t:1", ap.Where())
}

func TestOptimizeFusesUpvalApply(t *testing.T) {
	var p Program
	p.Add(
		NewPushUpval("f", 2, "t:1"),
		NewApply("t:1"),
	)
	Optimize(&p)

	require.Len(t, p.Instrs, 1)
	au, ok := p.Instrs[0].(*ApplyUpval)
	require.True(t, ok)
	assert.Equal(t, 2, au.Nth)
	assert.True(t, au.Tail(), "last apply-shaped instruction is tail-marked")
}

func TestOptimizeMarksTail(t *testing.T) {
	var p Program
	p.Add(
		NewPushLiteral(value.Num(1), "t:1"),
		NewApply("t:1"),
	)
	Optimize(&p)
	assert.True(t, p.Instrs[len(p.Instrs)-1].Tail())

	var q Program
	q.Add(
		NewApply("t:1"),
		NewPushLiteral(value.Num(1), "t:1"),
	)
	Optimize(&q)
	assert.False(t, q.Instrs[0].Tail(), "non-final apply stays untouched")
	assert.False(t, q.Instrs[1].Tail(), "push literal is not tail-eligible")
}

func TestOptimizeBreakProgNotTailable(t *testing.T) {
	var p Program
	p.Add(NewBreakProg("t:1"))
	Optimize(&p)
	assert.False(t, p.Instrs[0].Tail())
}

func TestFindBinding(t *testing.T) {
	outer := NewCloseValue("x", nil, nil, "t:1")
	mid := NewCloseValue("y", outer, nil, "t:1")
	inner := NewCloseValue("z", mid, nil, "t:1")

	n, ok := inner.FindBinding("z")
	require.True(t, ok)
	assert.Equal(t, 0, n)

	n, ok = inner.FindBinding("x")
	require.True(t, ok)
	assert.Equal(t, 2, n)

	_, ok = inner.FindBinding("nope")
	assert.False(t, ok)
}

func TestDump(t *testing.T) {
	body := &Program{}
	body.Add(NewPushUpval("x", 0, "t:1"))
	var p Program
	p.Add(
		NewPushLiteral(value.NewStr("hi"), "t:1"),
		NewPushFun(body, "x", "t:1"),
		NewApply("t:1"),
	)

	var buf bytes.Buffer
	p.Dump(&buf)
	out := buf.String()
	assert.Contains(t, out, `PushLiteral v="hi"`)
	assert.Contains(t, out, "PushFun(x):")
	assert.Contains(t, out, "PushUpval #0 name='x'")
	assert.Contains(t, out, "Apply")
}
