package bytecode

import "github.com/dusklang/dusk/op"

// Instruction is a single decoded bytecode instruction: an opcode plus its
// operand. Most opcodes use the operand as an index into co_consts/co_names;
// jump opcodes use it as an absolute instruction index. Block indexes into
// the code's block table (-1 if the instruction is not inside a loop/with).
type Instruction struct {
	Op    op.Code
	Arg   int
	Block int
}

// Scope tells LOAD_NAME_REF/STORE_NAME_REF where to resolve a name: the
// current frame's locals, or the module/builtins chain.
type Scope uint8

const (
	ScopeLocal Scope = iota
	ScopeGlobal
)

// Name is an entry in co_names: an identifier referenced by LOAD_NAME_REF,
// STORE_NAME_REF, BUILD_ATTR_REF, IMPORT_NAME, or BUILD_CLASS, tagged with
// the scope it should resolve against.
type Name struct {
	Name  string
	Scope Scope
}

// Block describes a lexical block the VM must track for break/continue,
// FOR_ITER cleanup, or WITH_ENTER/WITH_EXIT balancing.
type Block struct {
	Start int
	End   int
	Kind  op.BlockKind
}
