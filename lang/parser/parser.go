// Package parser implements the backtracking recursive-descent parser that
// turns Bang source text into instruction programs. Each production takes a
// stream mark, tries to match, and either accepts the consumed characters or
// lets the mark unwind them for the next production to try.
package parser

import (
	"errors"
	"fmt"

	"github.com/dmattp/bang/lang/ast"
	"github.com/dmattp/bang/lang/interp"
	"github.com/dmattp/bang/lang/stream"
	"github.com/dmattp/bang/lang/value"
)

// Context decides how a top-level program ends when the source is exhausted:
// file parsing appends a break back to the host, the REPL appends a marker
// that solicits the next program.
type Context interface {
	HitEOF(chain *ast.CloseValue, where string) ast.Instr
}

// FileContext is the Context for non-interactive sources.
type FileContext struct{}

func (FileContext) HitEOF(_ *ast.CloseValue, where string) ast.Instr {
	return ast.NewBreakProg(where)
}

// Error is a parse failure, including unbound identifier references.
type Error struct {
	Where string
	Msg   string
}

func (e *Error) Error() string { return e.Where + ": " + e.Msg }

func failf(s stream.Stream, format string, args ...any) error {
	return &Error{Where: s.Where(), Msg: fmt.Sprintf(format, args...)}
}

// ParseProgram parses one top-level program from src, resolving identifiers
// against the given binder chain (nil for a standalone module). The
// context's EOF instruction lands in the innermost program being parsed when
// the source runs out, so that a REPL continuation sees every binding
// accumulated by def forms; the peephole pass runs over each finished
// program.
func ParseProgram(ctx Context, src stream.Stream, chain *ast.CloseValue) (*ast.Program, error) {
	p := parser{ctx: ctx}
	m := stream.NewMark(src)
	defer m.Close()

	prog, err := p.program(m, chain, nil)
	if err != nil {
		return nil, err
	}
	m.Accept()

	ast.Optimize(prog)
	return prog, nil
}

type parser struct {
	ctx Context

	// eofDone is set once the end-of-input instruction has been emitted;
	// enclosing programs unwinding from the same end of input must not emit
	// their own.
	eofDone bool
}

// recFrame is one link of the list of recursive parse contexts threaded
// through def bodies: an identifier matching name resolves to a recursive
// push of the defining function rather than an upvalue lookup.
type recFrame struct {
	prev *recFrame
	fun  *ast.PushFun
	name string
}

func (r *recFrame) find(name string) *ast.PushFun {
	for ; r != nil; r = r.prev {
		if r.name == name {
			return r.fun
		}
	}
	return nil
}

// program parses instructions until a terminating ';' (consumed), a '}'
// (left in the stream for its opener) or end of input. The returned program
// is not optimized; callers run the peephole pass once the program is
// complete.
func (p *parser) program(s stream.Stream, chain *ast.CloseValue, rec *recFrame) (*ast.Program, error) {
	prog := &ast.Program{}

	for {
		eatWhitespace(s)

		if p.comment(s) {
			continue
		}

		lit, ok, err := p.literal(s)
		if err != nil {
			if errors.Is(err, stream.ErrEOF) {
				break
			}
			return nil, err
		}
		if ok {
			prog.Add(lit)
			continue
		}

		pf, postApply, ok, err := p.fundef(s, chain, rec)
		if err != nil {
			if errors.Is(err, stream.ErrEOF) {
				break
			}
			return nil, err
		}
		if ok {
			prog.Add(pf)
			if postApply {
				prog.Add(ast.NewApply(pf.Where()))
			}
			continue
		}

		ok, err = p.defdef(s, chain, rec, prog)
		if err != nil {
			if errors.Is(err, stream.ErrEOF) {
				break
			}
			return nil, err
		}
		if ok {
			continue
		}

		where := s.Where()
		c, err := s.Getc()
		if err != nil {
			break // end of input ends the program
		}

		switch {
		case c == ';':
			return prog, nil

		case c == '}':
			// not ours to consume; the opener closes all scopes up to it
			s.Regurg(c)
			return prog, nil

		case c == '{':
			pf, err := p.blockFun(s, chain, rec, where)
			if err != nil {
				return nil, err
			}
			prog.Add(pf)
			continue

		case c == '!':
			prog.Add(ast.NewApply(where))
			continue

		case c == '?':
			if err := p.conditional(s, chain, rec, prog, where); err != nil {
				return nil, err
			}
			continue

		case c == '.':
			// object message: swap the method name and the object so that
			// applying the object sees the name as its first parameter
			name, ok := tryIdentifier(s)
			if !ok {
				return nil, failf(s, "method operator (.) must be followed by an identifier")
			}
			prog.Add(
				ast.NewPushLiteral(value.NewStr(name), where),
				ast.NewPushPrimitive(interp.Swap(), "swap", where),
				ast.NewApply(where),
				ast.NewApply(where),
			)
			continue

		case c == '/':
			// a custom operator when an identifier follows, division
			// otherwise
			if name, ok := tryIdentifier(s); ok {
				prog.Add(ast.NewApplyCustom(name, where))
				continue
			}
		}

		if prim, ok := interp.ForChar(c); ok {
			prog.Add(
				ast.NewPushPrimitive(prim, string(c), where),
				ast.NewApply(where),
			)
			continue
		}

		s.Regurg(c)

		// identifiers are the catch-all after everything else fails
		name, ok := tryIdentifier(s)
		if !ok {
			return nil, failf(s, "cannot parse at %q", string(c))
		}

		switch name {
		case "lookup":
			prog.Add(ast.NewPushUpvalByName(where))
			continue
		case "require":
			prog.Add(ast.NewRequire(where))
			continue
		case "coroutine":
			prog.Add(ast.NewMakeCoroutine(where))
			continue
		case "yield":
			prog.Add(ast.NewYield(where))
			continue
		}

		if prim, ok := interp.ForWord(name); ok {
			prog.Add(
				ast.NewPushPrimitive(prim, name, where),
				ast.NewApply(where),
			)
			continue
		}

		if target := rec.find(name); target != nil {
			prog.Add(ast.NewPushFunRec(target, where))
			continue
		}

		nth, found := chain.FindBinding(name)
		if !found {
			return nil, failf(s, "unbound identifier %q", name)
		}
		prog.Add(ast.NewPushUpval(name, nth, where))
	}

	// end of input: the innermost program gets the context's EOF
	// instruction, against the binder chain in scope right here
	if !p.eofDone {
		p.eofDone = true
		prog.Add(p.ctx.HitEOF(chain, s.Where()))
	}
	return prog, nil
}

// comment consumes a -- line comment.
func (p *parser) comment(s stream.Stream) bool {
	m := stream.NewMark(s)
	defer m.Close()

	for i := 0; i < 2; i++ {
		c, err := m.Getc()
		if err != nil || c != '-' {
			return false
		}
	}
	m.Accept()
	for {
		c, err := m.Getc()
		if err != nil || c == '\n' {
			m.Accept()
			return true
		}
		m.Accept()
	}
}

// literal tries string, number and boolean literals, in that order.
func (p *parser) literal(s stream.Stream) (ast.Instr, bool, error) {
	where := s.Where()

	if str, ok, err := tryString(s); err != nil {
		return nil, false, err
	} else if ok {
		return ast.NewPushLiteral(value.NewStr(str), where), true, nil
	}

	if n, ok := tryNumber(s); ok {
		return ast.NewPushLiteral(value.Num(n), where), true, nil
	}

	if eatWord(s, "true") {
		return ast.NewPushLiteral(value.Bool(true), where), true, nil
	}
	if eatWord(s, "false") {
		return ast.NewPushLiteral(value.Bool(false), where), true, nil
	}
	return nil, false, nil
}

// fundef parses the fun / fun! / as function literal forms. It reports
// whether the definition carries a post-apply (fun! and as forms).
func (p *parser) fundef(s stream.Stream, chain *ast.CloseValue, rec *recFrame) (pf *ast.PushFun, postApply, ok bool, err error) {
	m := stream.NewMark(s)
	defer m.Close()

	eatWhitespace(m)
	where := m.Where()

	isAs := false
	switch {
	case eatWord(m, "fun"):
		if c, gerr := m.Getc(); gerr == nil {
			if c == '!' {
				postApply = true
			} else {
				m.Regurg(c)
			}
		}
	case eatWord(m, "as"):
		if !eatWhitespace(m) {
			return nil, false, false, nil // whitespace required after 'as'
		}
		isAs = true
		postApply = true
	default:
		return nil, false, false, nil
	}

	eatWhitespace(m)
	param, _ := tryIdentifier(m) // parameter is optional
	eatWhitespace(m)

	if !isAs {
		c, gerr := m.Getc()
		if gerr != nil {
			return nil, false, false, gerr
		}
		if c != '=' {
			return nil, false, false, failf(m, "function def must be followed by '=', got %q", string(c))
		}
	}

	pf = ast.NewPushFun(nil, param, where)
	bodyChain := chain
	var cv *ast.CloseValue
	if param != "" {
		cv = ast.NewCloseValue(param, chain, pf, where)
		bodyChain = cv
	}

	body, perr := p.program(m, bodyChain, rec)
	if perr != nil {
		return nil, false, false, perr
	}
	pf.Prog = bindParam(cv, body)

	m.Accept()
	return pf, postApply, true, nil
}

// defdef parses def :name [arg] = body ; rest — the named-recursion form.
// It appends the defining function, the rest-of-program function that binds
// it, and the apply joining them.
func (p *parser) defdef(s stream.Stream, chain *ast.CloseValue, rec *recFrame, prog *ast.Program) (bool, error) {
	m := stream.NewMark(s)
	defer m.Close()

	eatWhitespace(m)
	where := m.Where()

	if !eatWord(m, "def") {
		return false, nil
	}
	eatWhitespace(m)

	c, err := m.Getc()
	if err != nil {
		return false, err
	}
	if c != ':' {
		return false, failf(m, "def name must start with ':', got %q", string(c))
	}

	defName, ok := tryIdentifier(m)
	if !ok {
		return false, failf(m, `identifier must follow "def :"`)
	}
	eatWhitespace(m)

	param, _ := tryIdentifier(m) // parameter is optional
	eatWhitespace(m)

	c, err = m.Getc()
	if err != nil {
		return false, err
	}
	if c != '=' {
		return false, failf(m, "function def must be followed by '=', got %q", string(c))
	}

	defFun := ast.NewPushFun(nil, param, where)
	withFun := ast.NewPushFun(nil, defName, where)

	// inside the body, the def's own name resolves recursively
	frames := &recFrame{prev: rec, fun: defFun, name: defName}
	bodyChain := chain
	var cv *ast.CloseValue
	if param != "" {
		cv = ast.NewCloseValue(param, chain, defFun, where)
		bodyChain = cv
	}
	body, err := p.program(m, bodyChain, frames)
	if err != nil {
		return false, err
	}
	defFun.Prog = bindParam(cv, body)

	// the rest of the enclosing program becomes the function that binds the
	// definition to its name
	restCv := ast.NewCloseValue(defName, chain, withFun, where)
	rest, err := p.program(m, restCv, rec)
	if err != nil {
		return false, err
	}
	withFun.Prog = bindParam(restCv, rest)

	prog.Add(
		defFun,
		withFun,
		ast.NewApply(where),
	)
	m.Accept()
	return true, nil
}

// blockFun parses a { ... } block as an anonymous parameterless function
// literal. The opening brace has been consumed.
func (p *parser) blockFun(s stream.Stream, chain *ast.CloseValue, rec *recFrame, where string) (*ast.PushFun, error) {
	body := &ast.Program{}
	for {
		seg, err := p.program(s, chain, rec)
		if err != nil {
			return nil, err
		}
		body.Add(seg.Instrs...)

		eatWhitespace(s)
		c, err := s.Getc()
		if err != nil {
			return nil, failf(s, "unterminated block, expected '}'")
		}
		if c == '}' {
			break
		}
		s.Regurg(c)
	}
	ast.Optimize(body)
	return ast.NewPushFun(body, "", where), nil
}

// conditional parses the forms of '?': followed by two blocks it selects
// between them, followed by one block it applies it when the test holds, and
// bare it is a plain conditional apply.
func (p *parser) conditional(s stream.Stream, chain *ast.CloseValue, rec *recFrame, prog *ast.Program, where string) error {
	eatWhitespace(s)
	c, err := s.Getc()
	if err != nil || c != '{' {
		if err == nil {
			s.Regurg(c)
		}
		prog.Add(ast.NewConditionalApply(where))
		return nil
	}

	thenFun, err := p.blockFun(s, chain, rec, s.Where())
	if err != nil {
		return err
	}

	eatWhitespace(s)
	c, err = s.Getc()
	if err == nil && c == '{' {
		elseFun, berr := p.blockFun(s, chain, rec, s.Where())
		if berr != nil {
			return berr
		}
		prog.Add(thenFun, elseFun, ast.NewIfElse(where))
		return nil
	}
	if err == nil {
		s.Regurg(c)
	}

	// single-branch form: swap the pushed branch under the test so the
	// conditional apply finds the boolean on top
	prog.Add(
		thenFun,
		ast.NewPushPrimitive(interp.Swap(), "swap", where),
		ast.NewApply(where),
		ast.NewConditionalApply(where),
	)
	return nil
}

// bindParam prepends the parameter binder, when there is one, and runs the
// peephole pass over the finished function body.
func bindParam(cv *ast.CloseValue, body *ast.Program) *ast.Program {
	if cv != nil {
		prog := &ast.Program{}
		prog.Add(cv)
		prog.Add(body.Instrs...)
		body = prog
	}
	ast.Optimize(body)
	return body
}
