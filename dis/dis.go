// Package dis disassembles a bytecode.Code into a human-readable listing,
// used by the "dusk dis" CLI subcommand and by any embedder debugging a
// compiler's output.
package dis

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dusklang/dusk/bytecode"
	"github.com/dusklang/dusk/object"
	"github.com/dusklang/dusk/op"
)

// Instruction is one decoded row of a disassembly listing.
type Instruction struct {
	Offset     int
	Name       string
	Arg        int
	Block      int
	Annotation string
}

// Disassemble walks every instruction in code, annotating operands that
// index into co_consts/co_names with the value or name they resolve to.
func Disassemble(code *bytecode.Code) []Instruction {
	out := make([]Instruction, 0, code.InstructionCount())
	for i := 0; i < code.InstructionCount(); i++ {
		instr := code.InstructionAt(i)
		info := op.GetInfo(instr.Op)
		row := Instruction{Offset: i, Name: info.Name, Arg: instr.Arg, Block: instr.Block}

		switch instr.Op {
		case op.LoadConst, op.LoadLambda:
			if instr.Arg < code.ConstantCount() {
				row.Annotation = stringify(code.ConstantAt(instr.Arg))
			}
		case op.LoadName, op.LoadNameRef, op.StoreNameRef, op.BuildAttrRef, op.ImportName, op.BuildClass:
			if instr.Arg < code.NameCount() {
				n := code.NameAt(instr.Arg)
				row.Annotation = n.Name
			}
		case op.BinaryOp, op.BitwiseOp:
			row.Annotation = op.BinaryOpType(instr.Arg).String()
		case op.CompareOp:
			row.Annotation = op.CompareOpType(instr.Arg).String()
		case op.Call:
			argc := instr.Arg & 0xFFFF
			kwargc := (instr.Arg >> 16) & 0xFFFF
			row.Annotation = fmt.Sprintf("argc=%d kwargc=%d", argc, kwargc)
		}
		out = append(out, row)
	}
	return out
}

// Print renders a disassembly listing as an aligned table.
func Print(instructions []Instruction, w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "OFFSET\tOPCODE\tARG\tBLOCK\tINFO")
	for _, instr := range instructions {
		block := ""
		if instr.Block >= 0 {
			block = fmt.Sprintf("%d", instr.Block)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", instr.Offset, instr.Name, instr.Arg, block, instr.Annotation)
	}
	tw.Flush()
}

// stringify keeps constant formatting consistent whether a constant is a
// runtime object.Object or a *bytecode.Function template.
func stringify(v any) string {
	switch c := v.(type) {
	case object.Object:
		return c.Repr()
	case *bytecode.Function:
		if c.Name() != "" {
			return "func:" + c.Name()
		}
		return "func:<anonymous>"
	default:
		return fmt.Sprintf("%v", v)
	}
}
