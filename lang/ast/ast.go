// Package ast defines the instruction nodes produced by the parser and
// executed by the interpreter loop. A program is an ordered sequence of
// instructions; there is no separate bytecode form.
package ast

import "github.com/dmattp/bang/lang/value"

// Instr is one instruction node. Every node carries a one-line where marker
// for error reporting and a tail flag set by the optimizer on the last,
// tail-eligible instruction of a program.
type Instr interface {
	// Where reports the source location marker recorded at parse time.
	Where() string

	// Tailable reports whether the instruction may be rewritten into its
	// tail-call form when it ends a program.
	Tailable() bool

	// Tail reports whether the optimizer marked this instruction for
	// in-place frame reuse.
	Tail() bool

	markTail()
}

// ParseContext is how an EofMarker solicits more input in REPL mode. It is
// implemented by the interactive driver.
type ParseContext interface {
	// NextProgram prompts for and parses the next program, resolving
	// identifiers against the given binder chain. It reports parse errors
	// itself and re-prompts; it returns an error only when input is finally
	// exhausted.
	NextProgram(chain *CloseValue) (*Program, error)
}

type base struct {
	where string
	tail  bool
}

func (b *base) Where() string  { return b.where }
func (b *base) Tail() bool     { return b.tail }
func (b *base) Tailable() bool { return false }
func (b *base) markTail()      { b.tail = true }

// PushLiteral pushes its payload value.
type PushLiteral struct {
	base
	V value.Value
}

// PushPrimitive pushes a primitive as a value.
type PushPrimitive struct {
	base
	Fn   value.Primitive
	Name string
}

// ApplyPrimitive invokes a primitive inline. Produced by the optimizer from
// an adjacent (PushPrimitive, Apply) pair.
type ApplyPrimitive struct {
	base
	Fn   value.Primitive
	Name string
}

// PushUpval pushes the value bound Nth frames up the upvalue chain.
type PushUpval struct {
	base
	Name string
	Nth  int
}

// ApplyUpval fetches an upvalue and applies it as a function. Produced by
// the optimizer from an adjacent (PushUpval, Apply) pair.
type ApplyUpval struct {
	base
	Name string
	Nth  int
}

func (*ApplyUpval) Tailable() bool { return true }

// PushUpvalByName pops a string and pushes the value it names in the upvalue
// chain.
type PushUpvalByName struct {
	base
}

// PushFun binds the current upvalue chain into a bound program and pushes
// it. Param is the optional single parameter name; when present, Prog begins
// with the corresponding CloseValue instruction.
type PushFun struct {
	base
	Prog  *Program
	Param string
}

// PushFunRec is like PushFun but reuses the defining function's node for
// name-based recursion, avoiding an owning cycle between a closure and
// itself.
type PushFunRec struct {
	base
	Target *PushFun
}

// Apply pops the top value and calls it with the current stack.
type Apply struct {
	base
}

func (*Apply) Tailable() bool { return true }

// ConditionalApply pops a boolean, always pops the callable beneath it, and
// invokes the callable only if the boolean is true.
type ConditionalApply struct {
	base
}

func (*ConditionalApply) Tailable() bool { return true }

// IfElse pops the else-function, the then-function and a boolean, and pushes
// back the selected function. Emitted for the `? { then } { else }` form.
type IfElse struct {
	base
}

// Require pops a module name, loads the named module through the thread's
// loader and pushes its top-level program as a bound function.
type Require struct {
	base
}

// CloseValue pops the top value and prepends an upvalue frame binding it to
// Name; the binding scopes to the end of the enclosing program. CloseValue
// nodes double as the parse-time lexical scope: Prev links to the enclosing
// binder and Owner to the function that introduced this one.
type CloseValue struct {
	base
	Name  string
	Prev  *CloseValue
	Owner *PushFun
}

// FindBinding walks the binder chain from cv toward the root and returns the
// NthParent depth of the binder matching name.
func (cv *CloseValue) FindBinding(name string) (int, bool) {
	n := 0
	for c := cv; c != nil; c = c.Prev {
		if c.Name == name {
			return n, true
		}
		n++
	}
	return 0, false
}

// ApplyCustom pops a value and dispatches the /Name custom operator on it.
type ApplyCustom struct {
	base
	Name string
}

// MakeCoroutine pops a bound program and pushes a suspended thread built
// around it.
type MakeCoroutine struct {
	base
}

// Yield suspends the running thread, transferring the values above the
// innermost stack bound to the calling thread.
type Yield struct {
	base
}

// BreakProg ends the program it appears in. The RunProgram invocation
// returns to the host once the frame chain unwinds, so a break at the end of
// a required module hands control back to the requiring program.
type BreakProg struct {
	base
}

// EofMarker ends a REPL program: it solicits the next program from its parse
// context and tail-jumps into it, preserving the current upvalue chain, or
// breaks when input is finally exhausted.
type EofMarker struct {
	base
	Ctx ParseContext
}

// NoOp has no effect. The optimizer substitutes it for fused instructions
// before stripping it out.
type NoOp struct {
	base
}

// Constructors. Each records the where marker of the production that created
// the node.

func NewPushLiteral(v value.Value, where string) *PushLiteral {
	return &PushLiteral{base: base{where: where}, V: v}
}

func NewPushPrimitive(fn value.Primitive, name, where string) *PushPrimitive {
	return &PushPrimitive{base: base{where: where}, Fn: fn, Name: name}
}

func NewPushUpval(name string, nth int, where string) *PushUpval {
	return &PushUpval{base: base{where: where}, Name: name, Nth: nth}
}

func NewPushUpvalByName(where string) *PushUpvalByName {
	return &PushUpvalByName{base: base{where: where}}
}

func NewPushFun(prog *Program, param, where string) *PushFun {
	return &PushFun{base: base{where: where}, Prog: prog, Param: param}
}

func NewPushFunRec(target *PushFun, where string) *PushFunRec {
	return &PushFunRec{base: base{where: where}, Target: target}
}

func NewApply(where string) *Apply { return &Apply{base: base{where: where}} }

func NewConditionalApply(where string) *ConditionalApply {
	return &ConditionalApply{base: base{where: where}}
}

func NewIfElse(where string) *IfElse { return &IfElse{base: base{where: where}} }

func NewRequire(where string) *Require { return &Require{base: base{where: where}} }

func NewCloseValue(name string, prev *CloseValue, owner *PushFun, where string) *CloseValue {
	return &CloseValue{base: base{where: where}, Name: name, Prev: prev, Owner: owner}
}

func NewApplyCustom(name, where string) *ApplyCustom {
	return &ApplyCustom{base: base{where: where}, Name: name}
}

func NewMakeCoroutine(where string) *MakeCoroutine {
	return &MakeCoroutine{base: base{where: where}}
}

func NewYield(where string) *Yield { return &Yield{base: base{where: where}} }

func NewBreakProg(where string) *BreakProg { return &BreakProg{base: base{where: where}} }

func NewEofMarker(ctx ParseContext, where string) *EofMarker {
	return &EofMarker{base: base{where: where}, Ctx: ctx}
}
