package lib

import (
	"fmt"

	"github.com/dolthub/swiss"
	"golang.org/x/exp/slices"

	"github.com/dmattp/bang/lang/value"
)

func init() {
	Register("hash", openHash)
}

func openHash(st *value.Stack, _ value.Context) error {
	st.Push(lookupTable("Hash", hashPrims))
	return nil
}

var hashPrims = map[string]value.Primitive{
	"new": func(st *value.Stack, _ value.Context) error {
		st.Push(NewHash())
		return nil
	},
	"of-string": func(st *value.Stack, _ value.Context) error {
		s, err := st.PopStr()
		if err != nil {
			return err
		}
		st.Push(value.Num(s.Hash()))
		return nil
	},
}

// Hash is a mutable string-keyed table backed by a swiss map. Applied with a
// method name (has, keys, set) it pushes the bound method; applied with any
// other string it looks the key up and pushes the value when present.
// Mutation also runs through the /set, /insert and /erase custom operators.
type Hash struct {
	m *swiss.Map[string, value.Value]
}

var (
	_ value.Fun          = (*Hash)(nil)
	_ value.HasCustomOps = (*Hash)(nil)
)

// NewHash returns an empty hash object.
func NewHash() *Hash {
	return &Hash{m: swiss.NewMap[string, value.Value](8)}
}

func (h *Hash) String() string { return "(function)" }
func (h *Hash) Type() string   { return "function" }
func (h *Hash) Truth() bool    { return true }

// Set binds key to v, for host code convenience.
func (h *Hash) Set(key string, v value.Value) { h.m.Put(key, v) }

// Get returns the value bound to key.
func (h *Hash) Get(key string) (value.Value, bool) { return h.m.Get(key) }

// Len returns the number of entries.
func (h *Hash) Len() int { return h.m.Count() }

func (h *Hash) Apply(st *value.Stack) error {
	msg, err := st.PopStr()
	if err != nil {
		return fmt.Errorf("hash expects a message or key: %w", err)
	}
	switch msg.Text() {
	case "has":
		st.Push(method(h.has))
	case "keys":
		st.Push(method(h.keys))
	case "set":
		st.Push(method(h.set))
	default:
		if v, ok := h.m.Get(msg.Text()); ok {
			st.Push(v)
		}
	}
	return nil
}

func (h *Hash) Custom(name string, st *value.Stack) error {
	switch name {
	case "set", "insert":
		return h.set(st)
	case "erase":
		key, err := st.PopStr()
		if err != nil {
			return err
		}
		h.m.Delete(key.Text())
		return nil
	case "has":
		return h.has(st)
	case "keys":
		return h.keys(st)
	}
	return &ErrNotImplemented{Lib: "Hash", Name: name}
}

func (h *Hash) set(st *value.Stack) error {
	key, err := st.PopStr()
	if err != nil {
		return err
	}
	v, err := st.Pop()
	if err != nil {
		return err
	}
	h.m.Put(key.Text(), v)
	return nil
}

func (h *Hash) has(st *value.Stack) error {
	key, err := st.Pop()
	if err != nil {
		return err
	}
	s, ok := key.(*value.Str)
	if !ok {
		st.Push(value.Bool(false))
		return nil
	}
	st.Push(value.Bool(h.m.Has(s.Text())))
	return nil
}

// keys pushes every key, sorted so enumeration is deterministic.
func (h *Hash) keys(st *value.Stack) error {
	keys := make([]string, 0, h.m.Count())
	h.m.Iter(func(k string, _ value.Value) bool {
		keys = append(keys, k)
		return false
	})
	slices.Sort(keys)
	for _, k := range keys {
		st.Push(value.NewStr(k))
	}
	return nil
}

// method adapts a bound method to a stack callable.
type method func(st *value.Stack) error

var _ value.Fun = (method)(nil)

func (method) String() string { return "(function)" }
func (method) Type() string   { return "function" }
func (method) Truth() bool    { return true }

func (m method) Apply(st *value.Stack) error { return m(st) }
