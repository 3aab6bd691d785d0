package ast

import (
	"fmt"
	"io"
	"strings"
)

// Program is an ordered sequence of instructions.
type Program struct {
	Instrs []Instr
}

// Add appends an instruction.
func (p *Program) Add(in ...Instr) {
	p.Instrs = append(p.Instrs, in...)
}

// Dump pretty-prints the program tree, one instruction per line, nesting
// function bodies under their PushFun.
func (p *Program) Dump(w io.Writer) {
	p.dump(w, 0)
}

func (p *Program) dump(w io.Writer, level int) {
	indent := strings.Repeat("  ", level)
	fmt.Fprintf(w, "%sProgram\n", indent)
	indent += "  "
	for _, in := range p.Instrs {
		tail := ""
		if in.Tail() {
			tail = " (tail)"
		}
		switch in := in.(type) {
		case *PushLiteral:
			fmt.Fprintf(w, "%sPushLiteral v=%s\n", indent, in.V.String())
		case *PushPrimitive:
			fmt.Fprintf(w, "%sPushPrimitive op='%s'\n", indent, in.Name)
		case *ApplyPrimitive:
			fmt.Fprintf(w, "%sApplyPrimitive op='%s'\n", indent, in.Name)
		case *PushUpval:
			fmt.Fprintf(w, "%sPushUpval #%d name='%s'\n", indent, in.Nth, in.Name)
		case *ApplyUpval:
			fmt.Fprintf(w, "%sApplyUpval #%d name='%s'%s\n", indent, in.Nth, in.Name, tail)
		case *PushUpvalByName:
			fmt.Fprintf(w, "%sPushUpvalByName\n", indent)
		case *PushFun:
			param := "--"
			if in.Param != "" {
				param = in.Param
			}
			fmt.Fprintf(w, "%sPushFun(%s):\n", indent, param)
			in.Prog.dump(w, level+2)
		case *PushFunRec:
			fmt.Fprintf(w, "%sPushFunRec(%s)\n", indent, in.Target.Param)
		case *Apply:
			fmt.Fprintf(w, "%sApply%s\n", indent, tail)
		case *ConditionalApply:
			fmt.Fprintf(w, "%sConditionalApply%s\n", indent, tail)
		case *IfElse:
			fmt.Fprintf(w, "%sIfElse\n", indent)
		case *Require:
			fmt.Fprintf(w, "%sRequire\n", indent)
		case *CloseValue:
			fmt.Fprintf(w, "%sCloseValue name='%s'\n", indent, in.Name)
		case *ApplyCustom:
			fmt.Fprintf(w, "%sApplyCustom op='/%s'\n", indent, in.Name)
		case *MakeCoroutine:
			fmt.Fprintf(w, "%sMakeCoroutine\n", indent)
		case *Yield:
			fmt.Fprintf(w, "%sYield\n", indent)
		case *BreakProg:
			fmt.Fprintf(w, "%sBreakProg\n", indent)
		case *EofMarker:
			fmt.Fprintf(w, "%sEofMarker\n", indent)
		case *NoOp:
			fmt.Fprintf(w, "%sNoOp\n", indent)
		default:
			fmt.Fprintf(w, "%s%T\n", indent, in)
		}
	}
}
