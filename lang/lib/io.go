package lib

import (
	"fmt"
	"io"
	"os"

	"github.com/dmattp/bang/lang/value"
)

func init() {
	Register("io", openIO)
}

func openIO(st *value.Stack, _ value.Context) error {
	st.Push(lookupTable("IO", ioPrims))
	return nil
}

var ioPrims = map[string]value.Primitive{
	"open": ioOpen,
	"print": func(st *value.Stack, ctx value.Context) error {
		v, err := st.Pop()
		if err != nil {
			return err
		}
		out := v.String()
		if s, ok := v.(*value.Str); ok {
			out = s.Text()
		}
		_, err = fmt.Fprint(ctx.Stdout(), out)
		return err
	},
	"println": func(st *value.Stack, ctx value.Context) error {
		v, err := st.Pop()
		if err != nil {
			return err
		}
		out := v.String()
		if s, ok := v.(*value.Str); ok {
			out = s.Text()
		}
		_, err = fmt.Fprintln(ctx.Stdout(), out)
		return err
	},
}

func ioOpen(st *value.Stack, _ value.Context) error {
	name, err := st.PopStr()
	if err != nil {
		return fmt.Errorf("IO open expects a filename: %w", err)
	}
	f, err := os.Open(name.Text())
	if err != nil {
		return err
	}
	st.Push(&file{f: f, name: name.Text()})
	return nil
}

// file answers the /read-all and /close custom operators.
type file struct {
	f    *os.File
	name string
}

var (
	_ value.Fun          = (*file)(nil)
	_ value.HasCustomOps = (*file)(nil)
)

func (f *file) String() string { return "(function)" }
func (f *file) Type() string   { return "function" }
func (f *file) Truth() bool    { return true }

func (f *file) Apply(st *value.Stack) error {
	msg, err := st.PopStr()
	if err != nil {
		return err
	}
	return f.Custom(msg.Text(), st)
}

func (f *file) Custom(name string, st *value.Stack) error {
	switch name {
	case "read-all":
		if f.f == nil {
			return fmt.Errorf("file %s is closed", f.name)
		}
		b, err := io.ReadAll(f.f)
		if err != nil {
			return err
		}
		st.Push(value.NewStr(string(b)))
		return nil
	case "close":
		if f.f != nil {
			err := f.f.Close()
			f.f = nil
			return err
		}
		return nil
	}
	return &ErrNotImplemented{Lib: "IO", Name: name}
}
