package ast

// Optimize runs the peephole pass over a program: adjacent (PushPrimitive,
// Apply) pairs fuse into ApplyPrimitive and (PushUpval, Apply) pairs into
// ApplyUpval, the consumed Apply becoming a NoOp stripped by a second pass.
// Finally the last instruction, if tail-eligible, is marked for in-place
// frame reuse. Correctness does not depend on this pass running; only
// steady-state performance does.
func Optimize(p *Program) {
	instrs := p.Instrs
	for i := 0; i+1 < len(instrs); i++ {
		if _, ok := instrs[i+1].(*Apply); !ok {
			continue
		}
		switch in := instrs[i].(type) {
		case *PushPrimitive:
			instrs[i] = &ApplyPrimitive{base: in.base, Fn: in.Fn, Name: in.Name}
			instrs[i+1] = &NoOp{}
		case *PushUpval:
			instrs[i] = &ApplyUpval{base: in.base, Name: in.Name, Nth: in.Nth}
			instrs[i+1] = &NoOp{}
		}
	}

	kept := instrs[:0]
	for _, in := range instrs {
		if _, ok := in.(*NoOp); ok {
			continue
		}
		kept = append(kept, in)
	}
	p.Instrs = kept

	if n := len(kept); n > 0 && kept[n-1].Tailable() {
		kept[n-1].markTail()
	}
}
