// Package op defines the opcodes understood by the dusk virtual machine.
//
// Opcode names here are a contract between the external compiler that
// produces a bytecode.Code and the VM's dispatcher (vm.eval), which
// switches on exactly this set.
package op

// Code is an integer opcode that indicates an operation to execute.
type Code uint16

const (
	Invalid Code = 0

	// Stack
	NoOp   Code = 1
	PopTop Code = 2
	DupTop Code = 3

	// Constants & locals
	LoadConst    Code = 10
	LoadNone     Code = 11
	LoadTrue     Code = 12
	LoadFalse    Code = 13
	LoadEllipsis Code = 14
	LoadName     Code = 15
	LoadNameRef  Code = 16
	StoreNameRef Code = 17
	LoadLambda   Code = 18
	LoadEvalFn   Code = 19

	// Attribute / index references
	BuildAttrRef  Code = 20
	BuildIndexRef Code = 21
	StoreRef      Code = 22
	DeleteRef     Code = 23

	// Aggregates
	BuildList       Code = 30
	BuildMap        Code = 31
	BuildSet        Code = 32
	BuildSlice      Code = 33
	BuildSmartTuple Code = 34
	BuildString     Code = 35

	// Operators
	BinaryOp      Code = 40
	CompareOp     Code = 41
	BitwiseOp     Code = 42
	IsOp          Code = 43
	ContainsOp    Code = 44
	UnaryNegative Code = 45
	UnaryNot      Code = 46

	// Control flow
	PopJumpIfFalse   Code = 50
	JumpAbsolute     Code = 51
	SafeJumpAbsolute Code = 52
	JumpIfTrueOrPop  Code = 53
	JumpIfFalseOrPop Code = 54
	Goto             Code = 55

	// Calls
	Call Code = 60

	// Blocks / loops
	LoopContinue Code = 70
	LoopBreak    Code = 71
	ForIter      Code = 72
	WithEnter    Code = 73
	WithExit     Code = 74

	// Functions / classes
	StoreFunction Code = 80
	BuildClass    Code = 81

	// Return / raise / assert
	ReturnValue Code = 90
	RaiseError  Code = 91
	Assert      Code = 92

	// Iteration
	GetIter Code = 100

	// Import
	ImportName Code = 110

	// Print
	PrintExpr Code = 120

	// Cooperative channel VM
	StringChannelCall Code = 130

	Halt Code = 140
)

// BinaryOpType names the special method a BINARY_OP/BITWISE_OP opcode maps
// to. The interpreter looks this up and dispatches through the object
// protocol's MRO walk rather than switching on Go types.
type BinaryOpType uint16

const (
	Add BinaryOpType = iota + 1
	Subtract
	Multiply
	Divide
	FloorDivide
	Modulo
	Power
	BitAnd
	BitOr
	BitXor
	LShift
	RShift
)

// SpecialMethod returns the dunder method name this binary operation
// dispatches to, mirroring the BINARY_SPECIAL_METHODS / BITWISE_SPECIAL_METHODS
// table in the original VM.
func (b BinaryOpType) SpecialMethod() string {
	switch b {
	case Add:
		return "__add__"
	case Subtract:
		return "__sub__"
	case Multiply:
		return "__mul__"
	case Divide:
		return "__truediv__"
	case FloorDivide:
		return "__floordiv__"
	case Modulo:
		return "__mod__"
	case Power:
		return "__pow__"
	case BitAnd:
		return "__and__"
	case BitOr:
		return "__or__"
	case BitXor:
		return "__xor__"
	case LShift:
		return "__lshift__"
	case RShift:
		return "__rshift__"
	default:
		return ""
	}
}

// String returns a string representation of the binary operation, for
// example "+" for Add.
func (b BinaryOpType) String() string {
	switch b {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	case FloorDivide:
		return "//"
	case Modulo:
		return "%"
	case Power:
		return "**"
	case BitAnd:
		return "&"
	case BitOr:
		return "|"
	case BitXor:
		return "^"
	case LShift:
		return "<<"
	case RShift:
		return ">>"
	default:
		return "?"
	}
}

// CompareOpType names a comparison operation. NotEqual is always lowered by
// the interpreter to the negation of Equal: a user override of __ne__ is
// never consulted, matching the original VM's behavior.
type CompareOpType uint16

const (
	LessThan CompareOpType = iota
	LessThanOrEqual
	Equal
	NotEqual
	GreaterThan
	GreaterThanOrEqual
)

// SpecialMethod returns the dunder method used to evaluate the comparison.
// NotEqual reuses __eq__; the caller negates the result.
func (c CompareOpType) SpecialMethod() string {
	switch c {
	case LessThan:
		return "__lt__"
	case LessThanOrEqual:
		return "__le__"
	case Equal, NotEqual:
		return "__eq__"
	case GreaterThan:
		return "__gt__"
	case GreaterThanOrEqual:
		return "__ge__"
	default:
		return ""
	}
}

// String returns a string representation of the comparison operation, for
// example "<" for LessThan.
func (c CompareOpType) String() string {
	switch c {
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	case GreaterThan:
		return ">"
	case GreaterThanOrEqual:
		return ">="
	default:
		return "?"
	}
}

// BlockKind distinguishes the two kinds of lexical block the VM tracks for
// break/continue/for-iter/with cleanup.
type BlockKind uint8

const (
	BlockLoop BlockKind = iota
	BlockWith
)

// Info contains information about an opcode, used for disassembly/tracing.
type Info struct {
	Code         Code
	Name         string
	OperandCount int
}

var infos = make([]Info, 256)

func init() {
	type opInfo struct {
		op    Code
		name  string
		count int
	}
	ops := []opInfo{
		{NoOp, "NO_OP", 0},
		{PopTop, "POP_TOP", 0},
		{DupTop, "DUP_TOP", 0},
		{LoadConst, "LOAD_CONST", 1},
		{LoadNone, "LOAD_NONE", 0},
		{LoadTrue, "LOAD_TRUE", 0},
		{LoadFalse, "LOAD_FALSE", 0},
		{LoadEllipsis, "LOAD_ELLIPSIS", 0},
		{LoadName, "LOAD_NAME", 1},
		{LoadNameRef, "LOAD_NAME_REF", 1},
		{StoreNameRef, "STORE_NAME_REF", 1},
		{LoadLambda, "LOAD_LAMBDA", 1},
		{LoadEvalFn, "LOAD_EVAL_FN", 0},
		{BuildAttrRef, "BUILD_ATTR_REF", 1},
		{BuildIndexRef, "BUILD_INDEX_REF", 0},
		{StoreRef, "STORE_REF", 0},
		{DeleteRef, "DELETE_REF", 0},
		{BuildList, "BUILD_LIST", 1},
		{BuildMap, "BUILD_MAP", 1},
		{BuildSet, "BUILD_SET", 1},
		{BuildSlice, "BUILD_SLICE", 0},
		{BuildSmartTuple, "BUILD_SMART_TUPLE", 1},
		{BuildString, "BUILD_STRING", 1},
		{BinaryOp, "BINARY_OP", 1},
		{CompareOp, "COMPARE_OP", 1},
		{BitwiseOp, "BITWISE_OP", 1},
		{IsOp, "IS_OP", 1},
		{ContainsOp, "CONTAINS_OP", 1},
		{UnaryNegative, "UNARY_NEGATIVE", 0},
		{UnaryNot, "UNARY_NOT", 0},
		{PopJumpIfFalse, "POP_JUMP_IF_FALSE", 1},
		{JumpAbsolute, "JUMP_ABSOLUTE", 1},
		{SafeJumpAbsolute, "SAFE_JUMP_ABSOLUTE", 1},
		{JumpIfTrueOrPop, "JUMP_IF_TRUE_OR_POP", 1},
		{JumpIfFalseOrPop, "JUMP_IF_FALSE_OR_POP", 1},
		{Goto, "GOTO", 0},
		{Call, "CALL", 1},
		{LoopContinue, "LOOP_CONTINUE", 0},
		{LoopBreak, "LOOP_BREAK", 0},
		{ForIter, "FOR_ITER", 0},
		{WithEnter, "WITH_ENTER", 0},
		{WithExit, "WITH_EXIT", 0},
		{StoreFunction, "STORE_FUNCTION", 0},
		{BuildClass, "BUILD_CLASS", 1},
		{ReturnValue, "RETURN_VALUE", 0},
		{RaiseError, "RAISE_ERROR", 0},
		{Assert, "ASSERT", 0},
		{GetIter, "GET_ITER", 0},
		{ImportName, "IMPORT_NAME", 1},
		{PrintExpr, "PRINT_EXPR", 0},
		{StringChannelCall, "STRING_CHANNEL_CALL", 0},
		{Halt, "HALT", 0},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Name:         o.name,
			Code:         o.op,
			OperandCount: o.count,
		}
	}
}

// GetInfo returns information about the given opcode.
func GetInfo(op Code) Info {
	return infos[op]
}
