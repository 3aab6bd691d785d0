package lib

import (
	"errors"
	"math"
	"math/rand"

	"github.com/dmattp/bang/lang/value"
)

func init() {
	Register("math", openMath)
}

func openMath(st *value.Stack, _ value.Context) error {
	st.Push(lookupTable("Math", mathPrims))
	return nil
}

// unary operators rewrite the top slot in place.
func math1(op func(float64) float64) value.Primitive {
	return func(st *value.Stack, _ value.Context) error {
		v, err := st.Top()
		if err != nil {
			return err
		}
		n, ok := v.(value.Num)
		if !ok {
			return errors.New("Math lib incompatible type")
		}
		st.SetTop(value.Num(op(float64(n))))
		return nil
	}
}

// binary operators rewrite the second slot and shrink the stack by one.
func math2(op func(a, b float64) float64) value.Primitive {
	return func(st *value.Stack, _ value.Context) error {
		v2, err := st.Nth(0)
		if err != nil {
			return err
		}
		v1, err := st.Nth(1)
		if err != nil {
			return err
		}
		n1, ok1 := v1.(value.Num)
		n2, ok2 := v2.(value.Num)
		if !ok1 || !ok2 {
			return errors.New("Math lib incompatible type")
		}
		st.SetNth(1, value.Num(op(float64(n1), float64(n2))))
		_, err = st.Pop()
		return err
	}
}

var mathPrims = map[string]value.Primitive{
	"abs":   math1(math.Abs),
	"acos":  math1(math.Acos),
	"asin":  math1(math.Asin),
	"atan":  math1(math.Atan),
	"ceil":  math1(math.Ceil),
	"cos":   math1(math.Cos),
	"exp":   math1(math.Exp),
	"floor": math1(math.Floor),
	"fmod":  math2(math.Mod),
	"log":   math1(math.Log),
	"pow":   math2(math.Pow),
	"sin":   math1(math.Sin),
	"sqrt":  math1(math.Sqrt),
	"random": func(st *value.Stack, _ value.Context) error {
		st.Push(value.Num(rand.Float64()))
		return nil
	},
}
