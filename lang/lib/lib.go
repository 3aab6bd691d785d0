// Package lib holds the standard library modules and the registry the
// require loader consults before touching the filesystem. A library is a
// table of host primitives behind a lookup function; the open contract
// mirrors the shared-object interface of the dynamic loader: push exactly
// one value, typically the lookup function, onto the provided stack.
package lib

import (
	"github.com/dmattp/bang/lang/value"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// OpenFunc is the entry point a library exports. It must push exactly one
// value onto the stack.
type OpenFunc func(st *value.Stack, ctx value.Context) error

var registry = map[string]OpenFunc{}

// Register installs a library under the given module name. Standard
// libraries register themselves at init time.
func Register(name string, open OpenFunc) {
	registry[name] = open
}

// Names returns the registered module names, sorted.
func Names() []string {
	names := maps.Keys(registry)
	slices.Sort(names)
	return names
}

// Module returns the callable that require pushes for a registered library:
// applying it invokes the library's open function, leaving the lookup
// function on the stack.
func Module(name string) (value.Fun, bool) {
	open, ok := registry[name]
	if !ok {
		return nil, false
	}
	return &module{name: name, open: open}, true
}

type module struct {
	name string
	open OpenFunc
}

var _ value.Fun = (*module)(nil)

func (m *module) String() string { return "(function)" }
func (m *module) Type() string   { return "function" }
func (m *module) Truth() bool    { return true }

func (m *module) Apply(st *value.Stack) error { return m.open(st, nil) }

// lookupTable builds the conventional lookup function over a primitive
// table: applied with a name on top of the stack, it pushes the named
// primitive or fails with "<lib> library does not implement <name>".
func lookupTable(libName string, prims map[string]value.Primitive) value.Primitive {
	return func(st *value.Stack, _ value.Context) error {
		name, err := st.PopStr()
		if err != nil {
			return err
		}
		p, ok := prims[name.Text()]
		if !ok {
			return &ErrNotImplemented{Lib: libName, Name: name.Text()}
		}
		st.Push(p)
		return nil
	}
}

// ErrNotImplemented is the failure for a lookup of an operation a library
// does not provide.
type ErrNotImplemented struct {
	Lib  string
	Name string
}

func (e *ErrNotImplemented) Error() string {
	return e.Lib + " library does not implement " + e.Name
}
