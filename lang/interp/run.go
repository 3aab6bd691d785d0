package interp

import (
	"errors"
	"fmt"

	"github.com/dmattp/bang/lang/ast"
	"github.com/dmattp/bang/lang/value"
)

// RunProgram installs a run frame for prog on the thread and iterates
// instructions until the program chain is exhausted or a break instruction
// returns control to the host. Applying a bound program pushes a frame onto
// the chain rather than recursing, so the host stack depth stays constant;
// tail-marked applies rebind the current frame in place.
func RunProgram(th *Thread, prog *ast.Program, upvals *Upvalue) error {
	entryFrame, entryDepth := th.frame, th.depth
	err := run(th, prog, upvals)
	// whether control returned cleanly or unwound on a runtime failure, the
	// thread's frame chain is restored; abandoned coroutine frames stay with
	// their threads
	th.frame, th.depth = entryFrame, entryDepth
	return err
}

func run(th *Thread, prog *ast.Program, upvals *Upvalue) error {
	cur := th.pushFrame(prog, upvals)
	var err error

	for {
		if cur.pc >= len(cur.prog.Instrs) {
			th.popFrame()
			cur = th.frame
			if cur != nil {
				continue
			}
			if th.caller == nil {
				return nil
			}
			// a coroutine ran to completion: hand its remaining values to
			// the caller and resume it
			th.done = true
			caller := th.caller
			th.caller = nil
			transfer(th, caller)
			th = caller
			cur = th.frame
			continue
		}

		in := cur.prog.Instrs[cur.pc]
		cur.pc++

		switch in := in.(type) {
		case *ast.PushLiteral:
			th.Stack.Push(in.V)

		case *ast.PushPrimitive:
			th.Stack.Push(in.Fn)

		case *ast.ApplyPrimitive:
			if perr := in.Fn(&th.Stack, cur); perr != nil {
				return execErr(in, perr)
			}

		case *ast.PushUpval:
			v, uerr := cur.GetUpval(in.Nth)
			if uerr != nil {
				return execErr(in, uerr)
			}
			th.Stack.Push(v)

		case *ast.ApplyUpval:
			v, uerr := cur.GetUpval(in.Nth)
			if uerr != nil {
				return execErr(in, uerr)
			}
			th, cur, err = applyValue(th, cur, v, in.Tail())
			if err != nil {
				return execErr(in, err)
			}

		case *ast.PushUpvalByName:
			name, perr := th.Stack.PopStr()
			if perr != nil {
				return execErr(in, fmt.Errorf("lookup: %w", perr))
			}
			v, uerr := cur.GetUpvalByName(name.Text())
			if uerr != nil {
				return execErr(in, uerr)
			}
			th.Stack.Push(v)

		case *ast.PushFun:
			th.Stack.Push(&BoundProg{Prog: in.Prog, Upvals: cur.upvals})

		case *ast.PushFunRec:
			th.Stack.Push(&BoundProg{Prog: in.Target.Prog, Upvals: recChain(cur.upvals, in.Target)})

		case *ast.Apply:
			v, perr := th.Stack.Pop()
			if perr != nil {
				return execErr(in, perr)
			}
			th, cur, err = applyValue(th, cur, v, in.Tail())
			if err != nil {
				return execErr(in, err)
			}

		case *ast.ConditionalApply:
			test, perr := th.Stack.PopBool()
			if perr != nil {
				return execErr(in, fmt.Errorf("conditional apply: %w", perr))
			}
			// always pop the callable, taken or not
			v, perr := th.Stack.Pop()
			if perr != nil {
				return execErr(in, perr)
			}
			if test {
				th, cur, err = applyValue(th, cur, v, in.Tail())
				if err != nil {
					return execErr(in, err)
				}
			}

		case *ast.IfElse:
			elseV, perr := th.Stack.Pop()
			if perr != nil {
				return execErr(in, perr)
			}
			thenV, perr := th.Stack.Pop()
			if perr != nil {
				return execErr(in, perr)
			}
			test, perr := th.Stack.PopBool()
			if perr != nil {
				return execErr(in, fmt.Errorf("if-else: %w", perr))
			}
			if test {
				th.Stack.Push(thenV)
			} else {
				th.Stack.Push(elseV)
			}

		case *ast.CloseValue:
			v, perr := th.Stack.Pop()
			if perr != nil {
				return execErr(in, perr)
			}
			cur.upvals = &Upvalue{closer: in, v: v, parent: cur.upvals}

		case *ast.Require:
			name, perr := th.Stack.PopStr()
			if perr != nil {
				return execErr(in, fmt.Errorf("require: %w", perr))
			}
			if th.Load == nil {
				return execErr(in, errors.New("require not available: no module loader installed"))
			}
			v, lerr := th.Load(th, name.Text())
			if lerr != nil {
				return execErr(in, fmt.Errorf("cannot load %q: %w", name.Text(), lerr))
			}
			th.Stack.Push(v)

		case *ast.ApplyCustom:
			v, perr := th.Stack.Pop()
			if perr != nil {
				return execErr(in, perr)
			}
			co, ok := v.(value.HasCustomOps)
			if !ok {
				return execErr(in, fmt.Errorf("%s value has no /%s operator", typeName(v), in.Name))
			}
			if cerr := co.Custom(in.Name, &th.Stack); cerr != nil {
				return execErr(in, cerr)
			}

		case *ast.MakeCoroutine:
			v, perr := th.Stack.Pop()
			if perr != nil {
				return execErr(in, perr)
			}
			bp, ok := v.(*BoundProg)
			if !ok {
				return execErr(in, fmt.Errorf("coroutine requires a function, found %s", typeName(v)))
			}
			th.Stack.Push(NewCoroutine(bp))

		case *ast.Yield:
			if th.caller == nil {
				return execErr(in, errors.New("yield outside a coroutine"))
			}
			caller := th.caller
			transfer(th, caller)
			th = caller
			cur = th.frame

		case *ast.BreakProg:
			// ends this program: the host regains control once the chain
			// unwinds, so a required module's break hands back to its
			// requiring program rather than aborting it
			cur.pc = len(cur.prog.Instrs)

		case *ast.EofMarker:
			var chain *ast.CloseValue
			if cur.upvals != nil {
				chain = cur.upvals.Closer()
			}
			next, nerr := in.Ctx.NextProgram(chain)
			if nerr != nil {
				// input finally exhausted
				return nil
			}
			// tail-jump into the next program, preserving the chain
			cur.rebind(next, cur.upvals)

		case *ast.NoOp:
			// nothing

		default:
			return execErr(in, fmt.Errorf("unimplemented instruction %T", in))
		}
	}
}

// applyValue dispatches an apply to v. It returns the (possibly switched)
// running thread and frame.
func applyValue(th *Thread, cur *RunContext, v value.Value, tail bool) (*Thread, *RunContext, error) {
	switch f := v.(type) {
	case value.Primitive:
		return th, cur, f(&th.Stack, cur)

	case *BoundProg:
		if tail {
			cur.rebind(f.Prog, f.Upvals)
			return th, cur, nil
		}
		ncur := th.pushFrame(f.Prog, f.Upvals)
		if th.MaxFrames > 0 && th.depth > th.MaxFrames {
			return th, ncur, fmt.Errorf("run frame depth limit exceeded (%d)", th.MaxFrames)
		}
		return th, ncur, nil

	case *Thread:
		return resume(th, f)

	case value.Fun:
		return th, cur, f.Apply(&th.Stack)

	case nil:
		return th, cur, errors.New("apply of uninitialized value")

	default:
		return th, cur, fmt.Errorf("apply of non-callable %s value", v.Type())
	}
}

// resume switches execution into a suspended coroutine thread, transferring
// the caller's visible values as arguments.
func resume(caller *Thread, t *Thread) (*Thread, *RunContext, error) {
	if t == caller {
		return caller, caller.frame, errors.New("thread cannot resume itself")
	}
	if t.done {
		return caller, caller.frame, errors.New("apply of completed thread")
	}
	if t.prog == nil {
		return caller, caller.frame, errors.New("thread has no program")
	}
	if t.Load == nil {
		t.Load = caller.Load
	}
	if t.Stdout == nil {
		t.Stdout = caller.Stdout
	}
	t.caller = caller
	transfer(caller, t)
	if !t.started {
		t.started = true
		t.pushFrame(t.prog.Prog, t.prog.Upvals)
	}
	return t, t.frame, nil
}

// transfer moves the values above from's innermost stack bound to to's
// stack, staging them through the alternative stack.
func transfer(from, to *Thread) {
	to.Alt.PushAll(from.Stack.GiveTo())
	to.Stack.PushAll(to.Alt.GiveTo())
}

// recChain climbs the chain for the deepest frame bound inside the target
// function and roots the recursive closure at that frame's parent, so that
// name-based recursion does not deepen the chain. Falls back to the current
// chain when the target is not on it.
func recChain(uv *Upvalue, target *ast.PushFun) *Upvalue {
	var match *Upvalue
	for u := uv; u != nil; u = u.parent {
		if u.closer != nil && u.closer.Owner == target {
			match = u
		}
	}
	if match != nil {
		return match.parent
	}
	return uv
}

func typeName(v value.Value) string {
	if v == nil {
		return "uninitialized"
	}
	return v.Type()
}
