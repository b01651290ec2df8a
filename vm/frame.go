package vm

import (
	"github.com/dusklang/dusk/bytecode"
	"github.com/dusklang/dusk/errz"
	"github.com/dusklang/dusk/object"
)

// blockState tracks one active with block so WITH_EXIT and unwindBlock know
// what cleanup to run. Loop blocks are not pushed here: LOOP_BREAK,
// LOOP_CONTINUE, and FOR_ITER read their jump targets from the code's block
// table directly.
type blockState struct {
	block     bytecode.Block
	withValue object.Object // receiver for WITH_EXIT, set only for BlockWith
}

// frame is one activation record: spec §4.1's frame/call-stack component.
// Locals are a name-keyed map rather than a fixed array, matching the
// reference protocol's requirement that a NameRef be resolvable purely from
// a name and a scope tag (spec §4.2) without also threading a compiled
// local-slot index through every reference value.
type frame struct {
	code   *bytecode.Code
	ip     int
	locals map[string]object.Object
	module *object.Module // globals this frame's LOAD_NAME_REF falls back to
	blocks []blockState

	// base is len(machine.stack) at the moment this frame was pushed, used
	// to validate the end-of-frame stack-shape invariant (spec §4.3) on a
	// flat, frame-shared value stack and to truncate the stack back to that
	// length when the frame finishes — not for addressing.
	base int

	// self is non-nil when this frame is executing a user-defined method
	// body (bound-method dispatch, a dunder override resolved off a
	// class, or __init__), recording the receiver so a no-argument
	// super() call inside the body has something to wrap (spec §4.4
	// step 1).
	self object.Object
}

func newFrame(code *bytecode.Code, module *object.Module) *frame {
	return &frame{
		code:   code,
		module: module,
		locals: make(map[string]object.Object, code.LocalCount()),
	}
}

// snapshot captures this frame's current source location for the error
// model's stack-snapshot mechanism (spec §4.6).
func (f *frame) snapshot() errz.Snapshot {
	loc := f.code.LocationAt(f.ip)
	return errz.Snapshot{
		Filename: f.code.Filename(),
		Line:     loc.Line,
		Source:   f.code.GetSourceLine(loc.Line),
	}
}

func (f *frame) pushBlock(b bytecode.Block) int {
	f.blocks = append(f.blocks, blockState{block: b})
	return len(f.blocks) - 1
}

func (f *frame) popBlock() {
	f.blocks = f.blocks[:len(f.blocks)-1]
}

func (f *frame) currentBlock() (*blockState, bool) {
	if len(f.blocks) == 0 {
		return nil, false
	}
	return &f.blocks[len(f.blocks)-1], true
}

// MaxFrameDepth bounds call-stack depth; exceeding it raises RecursionError
// before the host Go stack itself is at risk, per spec §4.6 and §8's
// "recursion depth: a pathological recursive call raises RecursionError
// before the host stack is exhausted" boundary scenario.
const MaxFrameDepth = 1024

// MaxStackDepth bounds the per-VM-call value stack, shared across all
// frames the way the original interpreter's `s_data` operand stack is a
// single flat array rather than one stack per frame.
const MaxStackDepth = 65536
