package lib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmattp/bang/lang/value"
)

// open pushes a library's lookup function onto a fresh stack and returns
// both.
func open(t *testing.T, name string) (*value.Stack, value.Primitive) {
	t.Helper()
	m, ok := Module(name)
	require.True(t, ok, "library %s must be registered", name)

	var st value.Stack
	require.NoError(t, m.Apply(&st))
	require.Equal(t, 1, st.Size(), "open pushes exactly one value")

	v, err := st.Pop()
	require.NoError(t, err)
	lookup, ok := v.(value.Primitive)
	require.True(t, ok)
	return &st, lookup
}

// fetch resolves a named primitive through a library's lookup function.
func fetch(t *testing.T, st *value.Stack, lookup value.Primitive, name string) value.Primitive {
	t.Helper()
	st.Push(value.NewStr(name))
	require.NoError(t, lookup(st, nil))
	v, err := st.Pop()
	require.NoError(t, err)
	p, ok := v.(value.Primitive)
	require.True(t, ok)
	return p
}

func popNum(t *testing.T, st *value.Stack) float64 {
	t.Helper()
	n, err := st.PopNum()
	require.NoError(t, err)
	return n
}

func TestRegistryNames(t *testing.T) {
	assert.Equal(t, []string{"array", "hash", "io", "math", "string"}, Names())

	_, ok := Module("nope")
	assert.False(t, ok)
}

func TestLookupMiss(t *testing.T) {
	st, lookup := open(t, "math")
	st.Push(value.NewStr("zork"))
	err := lookup(st, nil)
	require.Error(t, err)
	var nie *ErrNotImplemented
	require.ErrorAs(t, err, &nie)
	assert.Equal(t, "Math library does not implement zork", err.Error())
}

func TestMathPrimitives(t *testing.T) {
	st, lookup := open(t, "math")

	st.Push(value.Num(9))
	require.NoError(t, fetch(t, st, lookup, "sqrt")(st, nil))
	assert.Equal(t, 3.0, popNum(t, st))

	st.Push(value.Num(2.7))
	require.NoError(t, fetch(t, st, lookup, "floor")(st, nil))
	assert.Equal(t, 2.0, popNum(t, st))

	st.Push(value.Num(2))
	st.Push(value.Num(10))
	require.NoError(t, fetch(t, st, lookup, "pow")(st, nil))
	assert.Equal(t, 1024.0, popNum(t, st))

	// type mismatch
	st.Push(value.NewStr("x"))
	err := fetch(t, st, lookup, "sin")(st, nil)
	assert.ErrorContains(t, err, "Math lib incompatible type")
	_, _ = st.Pop()

	require.NoError(t, fetch(t, st, lookup, "random")(st, nil))
	n := popNum(t, st)
	assert.GreaterOrEqual(t, n, 0.0)
	assert.Less(t, n, 1.0)
}

func TestStringPrimitives(t *testing.T) {
	st, lookup := open(t, "string")

	st.Push(value.NewStr("hello"))
	require.NoError(t, fetch(t, st, lookup, "len")(st, nil))
	assert.Equal(t, 5.0, popNum(t, st))

	// sub pops inclusive begin/end
	st.Push(value.NewStr("hello"))
	st.Push(value.Num(1))
	st.Push(value.Num(3))
	require.NoError(t, fetch(t, st, lookup, "sub")(st, nil))
	v, err := st.Pop()
	require.NoError(t, err)
	assert.Equal(t, "ell", v.(*value.Str).Text())

	st.Push(value.NewStr("abc"))
	st.Push(value.Num(0))
	st.Push(value.Num(9))
	err = fetch(t, st, lookup, "sub")(st, nil)
	assert.ErrorContains(t, err, "out of bounds")

	st.Push(value.NewStr("a"))
	st.Push(value.NewStr("b"))
	require.NoError(t, fetch(t, st, lookup, "lt")(st, nil))
	b, err := st.PopBool()
	require.NoError(t, err)
	assert.True(t, b)

	st.Push(value.NewStr("hi"))
	require.NoError(t, fetch(t, st, lookup, "upper")(st, nil))
	v, err = st.Pop()
	require.NoError(t, err)
	assert.Equal(t, "HI", v.(*value.Str).Text())
}

func TestStringBytesRoundTrip(t *testing.T) {
	st, lookup := open(t, "string")

	st.Push(value.NewStr("ab"))
	require.NoError(t, fetch(t, st, lookup, "to-bytes")(st, nil))
	assert.Equal(t, 2, st.Size())

	require.NoError(t, fetch(t, st, lookup, "from-bytes")(st, nil))
	v, err := st.Pop()
	require.NoError(t, err)
	assert.Equal(t, "ab", v.(*value.Str).Text())
	assert.Equal(t, 0, st.Size())
}

func arrayOf(t *testing.T, nums ...float64) (*value.Stack, *Array) {
	t.Helper()
	st, lookup := open(t, "array")
	for _, n := range nums {
		st.Push(value.Num(n))
	}
	require.NoError(t, fetch(t, st, lookup, "from-stack")(st, nil))
	v, err := st.Pop()
	require.NoError(t, err)
	arr, ok := v.(*Array)
	require.True(t, ok)
	return st, arr
}

func TestArrayIndexAndLen(t *testing.T) {
	st, arr := arrayOf(t, 10, 20, 30)
	require.Equal(t, 3, arr.Len())

	st.Push(value.Num(1))
	require.NoError(t, arr.Apply(st))
	assert.Equal(t, 20.0, popNum(t, st))

	st.Push(value.NewStr("#"))
	require.NoError(t, arr.Apply(st))
	assert.Equal(t, 3.0, popNum(t, st))

	st.Push(value.Num(9))
	assert.ErrorContains(t, arr.Apply(st), "out of range")
}

func TestArrayMutation(t *testing.T) {
	st, arr := arrayOf(t, 1, 2, 3)

	// value then index, as the message dispatch pops them
	st.Push(value.Num(99))
	st.Push(value.Num(0))
	require.NoError(t, arr.Custom("set", st))
	v, err := arr.Index(0)
	require.NoError(t, err)
	assert.Equal(t, value.Num(99), v)

	st.Push(value.Num(50))
	st.Push(value.Num(1))
	require.NoError(t, arr.Custom("insert", st))
	require.Equal(t, 4, arr.Len())
	v, _ = arr.Index(1)
	assert.Equal(t, value.Num(50), v)

	st.Push(value.Num(1))
	require.NoError(t, arr.Custom("erase", st))
	require.Equal(t, 3, arr.Len())

	require.NoError(t, arr.Custom("dequeue", st))
	assert.Equal(t, 99.0, popNum(t, st))
	assert.Equal(t, 2, arr.Len())

	st.Push(value.Num(0))
	st.Push(value.Num(1))
	require.NoError(t, arr.Custom("swap", st))

	st.Push(value.Num(7))
	require.NoError(t, arr.Custom("append", st))
	assert.Equal(t, 3, arr.Len())

	assert.ErrorContains(t, arr.Custom("zork", st), "Array library does not implement")
}

func TestArrayPushSnapshot(t *testing.T) {
	st, arr := arrayOf(t, 1, 2)

	require.NoError(t, arr.Custom("push", st))
	v, err := st.Pop()
	require.NoError(t, err)
	restoreFn, ok := v.(value.Fun)
	require.True(t, ok)

	// mutating the array later must not affect the snapshot
	st.Push(value.Num(42))
	st.Push(value.Num(0))
	require.NoError(t, arr.Custom("set", st))

	require.NoError(t, restoreFn.Apply(st))
	assert.Equal(t, 2.0, popNum(t, st))
	assert.Equal(t, 1.0, popNum(t, st))
}

func TestHashObject(t *testing.T) {
	st, lookup := open(t, "hash")
	require.NoError(t, fetch(t, st, lookup, "new")(st, nil))
	v, err := st.Pop()
	require.NoError(t, err)
	h, ok := v.(*Hash)
	require.True(t, ok)

	// the set message hands back a bound method
	st.Push(value.NewStr("set"))
	require.NoError(t, h.Apply(st))
	setFn, err := st.Pop()
	require.NoError(t, err)

	st.Push(value.Num(5))
	st.Push(value.NewStr("five"))
	require.NoError(t, setFn.(value.Fun).Apply(st))
	require.Equal(t, 1, h.Len())

	// a plain key message looks the value up
	st.Push(value.NewStr("five"))
	require.NoError(t, h.Apply(st))
	assert.Equal(t, 5.0, popNum(t, st))

	// a missing key pushes nothing
	st.Push(value.NewStr("nope"))
	require.NoError(t, h.Apply(st))
	assert.Equal(t, 0, st.Size())

	st.Push(value.NewStr("five"))
	require.NoError(t, h.Custom("has", st))
	b, err := st.PopBool()
	require.NoError(t, err)
	assert.True(t, b)

	// keys enumerate sorted
	st.Push(value.Num(1))
	st.Push(value.NewStr("a"))
	require.NoError(t, h.Custom("set", st))
	require.NoError(t, h.Custom("keys", st))
	k1, _ := st.Pop()
	k0, _ := st.Pop()
	assert.Equal(t, "five", k1.(*value.Str).Text())
	assert.Equal(t, "a", k0.(*value.Str).Text())

	st.Push(value.NewStr("a"))
	require.NoError(t, h.Custom("erase", st))
	assert.Equal(t, 1, h.Len())
}

func TestHashOfString(t *testing.T) {
	st, lookup := open(t, "hash")
	st.Push(value.NewStr("abc"))
	require.NoError(t, fetch(t, st, lookup, "of-string")(st, nil))
	assert.Equal(t, float64(value.NewStr("abc").Hash()), popNum(t, st))
}

func TestIOOpenMissing(t *testing.T) {
	st, lookup := open(t, "io")
	st.Push(value.NewStr("no/such/file.txt"))
	err := fetch(t, st, lookup, "open")(st, nil)
	require.Error(t, err)
}
