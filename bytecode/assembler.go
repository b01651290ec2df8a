package bytecode

import "github.com/dusklang/dusk/op"

// Assembler builds a Code object one instruction at a time. It exists
// because this module ships no compiler: this package's own tests, and any
// embedder that wants to construct code without parsing source text, use
// this the way the teacher's tests build *compiler.Code via the compiler
// package.
type Assembler struct {
	name        string
	filename    string
	source      string
	mode        Mode
	instrs      []Instruction
	consts      []any
	names       []Name
	blocks      []Block
	labels      map[string]int
	locations   []SourceLocation
	localCount  int
	globalCount int
	globalNames []string
	localNames  []string
}

// NewAssembler starts building a code object with the given name.
func NewAssembler(name string) *Assembler {
	return &Assembler{
		name:   name,
		labels: make(map[string]int),
	}
}

func (a *Assembler) Filename(f string) *Assembler { a.filename = f; return a }
func (a *Assembler) Source(s string) *Assembler   { a.source = s; return a }
func (a *Assembler) Mode(m Mode) *Assembler       { a.mode = m; return a }

// Const appends a constant and returns its index.
func (a *Assembler) Const(v any) int {
	a.consts = append(a.consts, v)
	return len(a.consts) - 1
}

// NameRef appends a name (with scope) and returns its index.
func (a *Assembler) NameRef(name string, scope Scope) int {
	a.names = append(a.names, Name{Name: name, Scope: scope})
	return len(a.names) - 1
}

// Emit appends an instruction and returns its instruction index, which
// callers use as a jump target for later Patch calls.
func (a *Assembler) Emit(code op.Code, arg int) int {
	a.instrs = append(a.instrs, Instruction{Op: code, Arg: arg, Block: -1})
	a.locations = append(a.locations, SourceLocation{})
	return len(a.instrs) - 1
}

// EmitAt emits an instruction tagged with a source location, for tests that
// assert on frame snapshots.
func (a *Assembler) EmitAt(code op.Code, arg int, line, column int) int {
	a.instrs = append(a.instrs, Instruction{Op: code, Arg: arg, Block: -1})
	a.locations = append(a.locations, SourceLocation{Line: line, Column: column})
	return len(a.instrs) - 1
}

// EmitInBlock appends an instruction tagged with the given block index, for
// opcodes (FOR_ITER, LOOP_BREAK, LOOP_CONTINUE, WITH_EXIT) that need to
// find their enclosing loop/with block.
func (a *Assembler) EmitInBlock(code op.Code, arg int, block int) int {
	a.instrs = append(a.instrs, Instruction{Op: code, Arg: arg, Block: block})
	a.locations = append(a.locations, SourceLocation{})
	return len(a.instrs) - 1
}

// Patch overwrites the operand of a previously emitted instruction, used to
// back-patch forward jumps once the target offset is known.
func (a *Assembler) Patch(ip int, arg int) {
	a.instrs[ip].Arg = arg
}

// Label records a named jump target at the current end of the instruction
// stream.
func (a *Assembler) Label(name string) {
	a.labels[name] = len(a.instrs)
}

// OpenBlock begins a loop or with block starting at the current
// instruction; the returned index is passed to CloseBlock.
func (a *Assembler) OpenBlock(kind op.BlockKind) int {
	a.blocks = append(a.blocks, Block{Start: len(a.instrs), Kind: kind})
	return len(a.blocks) - 1
}

// CloseBlock sets the end instruction index of a previously opened block.
func (a *Assembler) CloseBlock(index int) {
	a.blocks[index].End = len(a.instrs)
}

// AddGlobal declares a global variable slot and returns its index.
func (a *Assembler) AddGlobal(name string) int {
	a.globalNames = append(a.globalNames, name)
	a.globalCount++
	return a.globalCount - 1
}

// AddLocal declares a local variable slot and returns its index.
func (a *Assembler) AddLocal(name string) int {
	a.localNames = append(a.localNames, name)
	a.localCount++
	return a.localCount - 1
}

// Code finalizes the assembled instructions into an immutable Code object.
func (a *Assembler) Code() *Code {
	return NewCode(CodeParams{
		Name:        a.name,
		Mode:        a.mode,
		Instructions: a.instrs,
		Constants:   a.consts,
		Names:       a.names,
		Blocks:      a.blocks,
		Labels:      a.labels,
		Source:      a.source,
		Filename:    a.filename,
		Locations:   a.locations,
		LocalCount:  a.localCount,
		GlobalCount: a.globalCount,
		GlobalNames: a.globalNames,
		LocalNames:  a.localNames,
	})
}
