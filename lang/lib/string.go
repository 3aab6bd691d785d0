package lib

import (
	"fmt"
	"strings"

	"github.com/dmattp/bang/lang/value"
)

func init() {
	Register("string", openString)
}

func openString(st *value.Stack, _ value.Context) error {
	st.Push(lookupTable("String", stringPrims))
	return nil
}

var stringPrims = map[string]value.Primitive{
	"len":        strLen,
	"sub":        strSub,
	"lt":         strLt,
	"upper":      strMap(strings.ToUpper),
	"lower":      strMap(strings.ToLower),
	"to-bytes":   strToBytes,
	"from-bytes": strFromBytes,
}

func strLen(st *value.Stack, _ value.Context) error {
	s, err := st.PopStr()
	if err != nil {
		return fmt.Errorf("String lib incompatible type: %w", err)
	}
	st.Push(value.Num(s.Len()))
	return nil
}

// strSub pops the inclusive end and begin indices and replaces the string
// beneath with the substring.
func strSub(st *value.Stack, _ value.Context) error {
	end, err := st.PopNum()
	if err != nil {
		return fmt.Errorf("String lib incompatible type: %w", err)
	}
	beg, err := st.PopNum()
	if err != nil {
		return fmt.Errorf("String lib incompatible type: %w", err)
	}
	s, err := st.PopStr()
	if err != nil {
		return fmt.Errorf("String lib incompatible type: %w", err)
	}
	b, e := int(beg), int(end)
	if b < 0 || b > s.Len() || e < b-1 || e >= s.Len() {
		return fmt.Errorf("String sub range [%d,%d] out of bounds for length %d", b, e, s.Len())
	}
	st.Push(value.NewStr(s.Text()[b : e+1]))
	return nil
}

func strLt(st *value.Stack, _ value.Context) error {
	rt, err := st.PopStr()
	if err != nil {
		return fmt.Errorf("String lib incompatible type: %w", err)
	}
	lt, err := st.PopStr()
	if err != nil {
		return fmt.Errorf("String lib incompatible type: %w", err)
	}
	st.Push(value.Bool(lt.Text() < rt.Text()))
	return nil
}

func strMap(f func(string) string) value.Primitive {
	return func(st *value.Stack, _ value.Context) error {
		s, err := st.PopStr()
		if err != nil {
			return fmt.Errorf("String lib incompatible type: %w", err)
		}
		st.Push(value.NewStr(f(s.Text())))
		return nil
	}
}

// strToBytes explodes the string into one number per byte.
func strToBytes(st *value.Stack, _ value.Context) error {
	s, err := st.PopStr()
	if err != nil {
		return fmt.Errorf("String lib incompatible type: %w", err)
	}
	for i := 0; i < s.Len(); i++ {
		st.Push(value.Num(s.Text()[i]))
	}
	return nil
}

// strFromBytes collapses every visible stack value, which must all be
// numbers, into a string, bottom of the stack first.
func strFromBytes(st *value.Stack, _ value.Context) error {
	vals := st.GiveTo()
	b := make([]byte, 0, len(vals))
	for _, v := range vals {
		n, ok := v.(value.Num)
		if !ok {
			return fmt.Errorf("String from-bytes expects numbers, found %s", v.Type())
		}
		b = append(b, byte(int(n)))
	}
	st.Push(value.NewStr(string(b)))
	return nil
}
