package vm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusklang/dusk/bytecode"
	"github.com/dusklang/dusk/errz"
	"github.com/dusklang/dusk/object"
	"github.com/dusklang/dusk/op"
)

// TestArithmeticCallReturn exercises the trampoline's CALL/RETURN_VALUE
// round trip: the top-level frame calls a user function, which itself adds
// its two arguments and returns, popping back to the caller with no Go
// recursion in eval's dispatch loop.
func TestArithmeticCallReturn(t *testing.T) {
	addCode := bytecode.NewCode(bytecode.CodeParams{
		Name: "add",
		Mode: bytecode.Eval,
		Instructions: []bytecode.Instruction{
			{Op: op.LoadNameRef, Arg: 0, Block: -1},
			{Op: op.LoadNameRef, Arg: 1, Block: -1},
			{Op: op.BinaryOp, Arg: int(op.Add), Block: -1},
			{Op: op.ReturnValue, Block: -1},
		},
		Names: []bytecode.Name{
			{Name: "a", Scope: bytecode.ScopeLocal},
			{Name: "b", Scope: bytecode.ScopeLocal},
		},
		LocalCount: 2,
	})
	addTmpl := bytecode.NewFunction(bytecode.FunctionParams{
		Name:       "add",
		Code:       addCode,
		Parameters: []string{"a", "b"},
	})

	top := bytecode.NewCode(bytecode.CodeParams{
		Name: "top",
		Mode: bytecode.Eval,
		Instructions: []bytecode.Instruction{
			{Op: op.LoadLambda, Arg: 0, Block: -1},
			{Op: op.LoadConst, Arg: 1, Block: -1},
			{Op: op.LoadConst, Arg: 2, Block: -1},
			{Op: op.Call, Arg: 2, Block: -1},
			{Op: op.ReturnValue, Block: -1},
		},
		Constants: []any{addTmpl, object.NewInt(2), object.NewInt(3)},
	})

	m := New()
	mod := m.NewModule("__main__")
	result, err := m.Run(context.Background(), top, mod)
	require.NoError(t, err)
	require.Equal(t, int64(5), result.(*object.Int).Value())
}

// TestForLoopSum exercises GET_ITER/FOR_ITER/LOOP_CONTINUE over a Range,
// summing 0..4 via the reference protocol's loop-variable binding.
func TestForLoopSum(t *testing.T) {
	top := bytecode.NewCode(bytecode.CodeParams{
		Name: "top",
		Mode: bytecode.Eval,
		Instructions: []bytecode.Instruction{
			{Op: op.LoadConst, Arg: 0, Block: -1},        // 0: push 0
			{Op: op.StoreNameRef, Arg: 0, Block: -1},      // 1: sum = 0
			{Op: op.LoadNameRef, Arg: 1, Block: -1},       // 2: push &i
			{Op: op.LoadConst, Arg: 1, Block: -1},        // 3: push range(0,5)
			{Op: op.GetIter, Block: 0},                    // 4: iterState(range, &i)
			{Op: op.ForIter, Block: 0},                    // 5: loop head
			{Op: op.LoadName, Arg: 0, Block: -1},          // 6: push sum
			{Op: op.LoadName, Arg: 1, Block: -1},          // 7: push i
			{Op: op.BinaryOp, Arg: int(op.Add), Block: -1}, // 8: sum + i
			{Op: op.StoreNameRef, Arg: 0, Block: -1},      // 9: sum = sum + i
			{Op: op.LoopContinue, Block: 0},               // 10: back to FOR_ITER
			{Op: op.LoadName, Arg: 0, Block: -1},          // 11: push sum
			{Op: op.ReturnValue, Block: -1},               // 12
		},
		Constants: []any{object.NewInt(0), object.NewRange(0, 5, 1)},
		Names: []bytecode.Name{
			{Name: "sum", Scope: bytecode.ScopeLocal},
			{Name: "i", Scope: bytecode.ScopeLocal},
		},
		Blocks:     []bytecode.Block{{Start: 5, End: 11, Kind: op.BlockLoop}},
		LocalCount: 2,
	})

	m := New()
	mod := m.NewModule("__main__")
	result, err := m.Run(context.Background(), top, mod)
	require.NoError(t, err)
	require.Equal(t, int64(10), result.(*object.Int).Value())
}

// TestRecursionDepthError confirms CALL raises RecursionError rather
// than growing the Go call stack, since eval's trampoline never recurses
// per guest call.
func TestRecursionDepthError(t *testing.T) {
	// loop() { return loop() }
	loopCode := bytecode.NewCode(bytecode.CodeParams{
		Name: "loop",
		Mode: bytecode.Eval,
		Instructions: []bytecode.Instruction{
			{Op: op.LoadNameRef, Arg: 0, Block: -1},
			{Op: op.Call, Arg: 0, Block: -1},
			{Op: op.ReturnValue, Block: -1},
		},
		Names: []bytecode.Name{{Name: "loop", Scope: bytecode.ScopeGlobal}},
	})
	loopTmpl := bytecode.NewFunction(bytecode.FunctionParams{
		Name: "loop",
		Code: loopCode,
	})

	top := bytecode.NewCode(bytecode.CodeParams{
		Name: "top",
		Mode: bytecode.Eval,
		Instructions: []bytecode.Instruction{
			{Op: op.LoadLambda, Arg: 0, Block: -1},
			{Op: op.StoreNameRef, Arg: 0, Block: -1},
			{Op: op.LoadNameRef, Arg: 0, Block: -1},
			{Op: op.Call, Arg: 0, Block: -1},
			{Op: op.ReturnValue, Block: -1},
		},
		Constants: []any{loopTmpl},
		Names:     []bytecode.Name{{Name: "loop", Scope: bytecode.ScopeGlobal}},
	})

	m := New()
	mod := m.NewModule("__main__")
	_, err := m.Run(context.Background(), top, mod)
	require.Error(t, err)
	se, ok := err.(*errz.StructuredError)
	require.True(t, ok)
	require.Equal(t, errz.RecursionError, se.Kind)
	require.NotEmpty(t, se.CorrelationID)
}

// TestSuperCall exercises spec.md's MRO/super() scenario directly: a base
// class B with a method f returning 1, a derived class D(B) whose own f
// returns super().f()+1. Building D with BUILD_CLASS's base slot set to B
// and calling D().f() must resolve super() through frame.self and walk one
// step up the MRO to B.f, producing 2.
func TestSuperCall(t *testing.T) {
	// B.f(self): return 1
	bFCode := bytecode.NewCode(bytecode.CodeParams{
		Name: "f",
		Mode: bytecode.Eval,
		Instructions: []bytecode.Instruction{
			{Op: op.LoadConst, Arg: 0, Block: -1},
			{Op: op.ReturnValue, Block: -1},
		},
		Constants:  []any{object.NewInt(1)},
		LocalCount: 1,
	})
	bFTmpl := bytecode.NewFunction(bytecode.FunctionParams{
		Name:       "f",
		Parameters: []string{"self"},
		Code:       bFCode,
	})

	// D.f(self): return super().f() + 1
	dFCode := bytecode.NewCode(bytecode.CodeParams{
		Name: "f",
		Mode: bytecode.Eval,
		Instructions: []bytecode.Instruction{
			{Op: op.LoadName, Arg: 0, Block: -1},      // super
			{Op: op.Call, Arg: 0, Block: -1},           // super()
			{Op: op.BuildAttrRef, Arg: 1, Block: -1},   // .f
			{Op: op.Call, Arg: 0, Block: -1},           // super().f()
			{Op: op.LoadConst, Arg: 0, Block: -1},      // 1
			{Op: op.BinaryOp, Arg: int(op.Add), Block: -1},
			{Op: op.ReturnValue, Block: -1},
		},
		Constants: []any{object.NewInt(1)},
		Names: []bytecode.Name{
			{Name: "super", Scope: bytecode.ScopeGlobal},
			{Name: "f", Scope: bytecode.ScopeLocal},
		},
		LocalCount: 1,
	})
	dFTmpl := bytecode.NewFunction(bytecode.FunctionParams{
		Name:       "f",
		Parameters: []string{"self"},
		Code:       dFCode,
	})

	top := bytecode.NewCode(bytecode.CodeParams{
		Name: "top",
		Mode: bytecode.Eval,
		Instructions: []bytecode.Instruction{
			{Op: op.LoadNone, Block: -1},                // sentinel
			{Op: op.LoadLambda, Arg: 0, Block: -1},       // B.f
			{Op: op.LoadNone, Block: -1},                 // base: none
			{Op: op.BuildClass, Arg: 0, Block: -1},        // class B
			{Op: op.StoreNameRef, Arg: 0, Block: -1},      // B = ...

			{Op: op.LoadNone, Block: -1},                 // sentinel
			{Op: op.LoadLambda, Arg: 1, Block: -1},        // D.f
			{Op: op.LoadName, Arg: 0, Block: -1},          // base: B
			{Op: op.BuildClass, Arg: 1, Block: -1},        // class D
			{Op: op.StoreNameRef, Arg: 1, Block: -1},      // D = ...

			{Op: op.LoadName, Arg: 1, Block: -1},          // D
			{Op: op.Call, Arg: 0, Block: -1},               // D()
			{Op: op.BuildAttrRef, Arg: 2, Block: -1},       // .f
			{Op: op.Call, Arg: 0, Block: -1},                // .f()
			{Op: op.ReturnValue, Block: -1},
		},
		Constants: []any{bFTmpl, dFTmpl},
		Names: []bytecode.Name{
			{Name: "B", Scope: bytecode.ScopeGlobal},
			{Name: "D", Scope: bytecode.ScopeGlobal},
			{Name: "f", Scope: bytecode.ScopeLocal},
		},
	})

	m := New()
	mod := m.NewModule("__main__")
	result, err := m.Run(context.Background(), top, mod)
	require.NoError(t, err)
	require.Equal(t, int64(2), result.(*object.Int).Value())
}

// TestBuildStringGuestStr exercises BUILD_STRING's trampoline path for an
// interpolated operand whose __str__ is a user-defined (non-native) method:
// the call must suspend into a pushed frame and resume the concatenation
// once it returns, rather than calling the bare Go Str() that would only
// produce the instance's default "<__main__.Box object>" rendering.
func TestBuildStringGuestStr(t *testing.T) {
	strCode := bytecode.NewCode(bytecode.CodeParams{
		Name: "__str__",
		Mode: bytecode.Eval,
		Instructions: []bytecode.Instruction{
			{Op: op.LoadConst, Arg: 0, Block: -1},
			{Op: op.ReturnValue, Block: -1},
		},
		Constants:  []any{object.NewStr("box")},
		LocalCount: 1,
	})
	strTmpl := bytecode.NewFunction(bytecode.FunctionParams{
		Name:       "__str__",
		Parameters: []string{"self"},
		Code:       strCode,
	})

	top := bytecode.NewCode(bytecode.CodeParams{
		Name: "top",
		Mode: bytecode.Eval,
		Instructions: []bytecode.Instruction{
			{Op: op.LoadNone, Block: -1},             // sentinel
			{Op: op.LoadLambda, Arg: 0, Block: -1},    // __str__
			{Op: op.LoadNone, Block: -1},              // base: none
			{Op: op.BuildClass, Arg: 0, Block: -1},     // class Box
			{Op: op.StoreNameRef, Arg: 0, Block: -1},   // Box = ...

			{Op: op.LoadConst, Arg: 1, Block: -1},      // "a="
			{Op: op.LoadName, Arg: 0, Block: -1},       // Box
			{Op: op.Call, Arg: 0, Block: -1},            // Box()
			{Op: op.BuildString, Arg: 2, Block: -1},
			{Op: op.ReturnValue, Block: -1},
		},
		Constants: []any{strTmpl, object.NewStr("a=")},
		Names: []bytecode.Name{
			{Name: "Box", Scope: bytecode.ScopeGlobal},
		},
	})

	m := New()
	mod := m.NewModule("__main__")
	result, err := m.Run(context.Background(), top, mod)
	require.NoError(t, err)
	require.Equal(t, "a=box", result.(*object.Str).Value())
}

// TestWithExitStackBalance is a regression test for a stack leak in
// WITH_EXIT: when __exit__ is a user-defined method (so its RETURN_VALUE
// is driven through the trampoline rather than resolved synchronously),
// the with-block's own cleanup value must never be pushed onto the
// enclosing frame's stack. The top-level frame never issues an explicit
// RETURN_VALUE, so it falls off the end of its instructions and
// finishFrame's implicit-return path enforces Eval mode's "exactly one
// value contributed" invariant — a leaked slot from __exit__ would trip it.
func TestWithExitStackBalance(t *testing.T) {
	exitCode := bytecode.NewCode(bytecode.CodeParams{
		Name: "__exit__",
		Mode: bytecode.Eval,
		Instructions: []bytecode.Instruction{
			{Op: op.LoadNone, Block: -1},
			{Op: op.ReturnValue, Block: -1},
		},
		LocalCount: 1,
	})
	exitTmpl := bytecode.NewFunction(bytecode.FunctionParams{
		Name:       "__exit__",
		Parameters: []string{"self"},
		Code:       exitCode,
	})

	m := New()
	mod := m.NewModule("__main__")

	ctxCls := object.NewClass("Ctx", nil)
	ctxCls.Attribs["__enter__"] = object.NewNativeFunction("__enter__", func(args []object.Object) (object.Object, error) {
		return args[0], nil
	})
	ctxCls.Attribs["__exit__"] = object.NewFunction(exitTmpl, mod)
	inst := object.NewInstance(ctxCls)

	top := bytecode.NewCode(bytecode.CodeParams{
		Name: "top",
		Mode: bytecode.Eval,
		Instructions: []bytecode.Instruction{
			{Op: op.LoadConst, Arg: 0, Block: -1},
			{Op: op.WithEnter, Block: 0},
			{Op: op.PopTop, Block: -1},
			{Op: op.WithExit, Block: -1},
			{Op: op.LoadConst, Arg: 1, Block: -1},
		},
		Constants: []any{inst, object.NewInt(42)},
		Blocks:    []bytecode.Block{{Start: 1, End: 3, Kind: op.BlockWith}},
	})

	result, err := m.Run(context.Background(), top, mod)
	require.NoError(t, err)
	require.Equal(t, int64(42), result.(*object.Int).Value())
}

// TestJSONModeGuestJSON exercises asJson's __json__ dispatch (SPEC_FULL.md
// §3): running a code object compiled in JSON mode whose value is a user
// instance with a __json__ override must re-serialize the override's
// result rather than falling back to the instance's bare Repr().
func TestJSONModeGuestJSON(t *testing.T) {
	jsonCode := bytecode.NewCode(bytecode.CodeParams{
		Name: "__json__",
		Mode: bytecode.Eval,
		Instructions: []bytecode.Instruction{
			{Op: op.LoadConst, Arg: 0, Block: -1},
			{Op: op.ReturnValue, Block: -1},
		},
		Constants:  []any{object.NewStr("hi")},
		LocalCount: 1,
	})
	jsonTmpl := bytecode.NewFunction(bytecode.FunctionParams{
		Name:       "__json__",
		Parameters: []string{"self"},
		Code:       jsonCode,
	})

	m := New()
	mod := m.NewModule("__main__")

	pointCls := object.NewClass("Point", nil)
	pointCls.Attribs["__json__"] = object.NewFunction(jsonTmpl, mod)
	inst := object.NewInstance(pointCls)

	top := bytecode.NewCode(bytecode.CodeParams{
		Name: "top",
		Mode: bytecode.JSON,
		Instructions: []bytecode.Instruction{
			{Op: op.LoadConst, Arg: 0, Block: -1},
			{Op: op.ReturnValue, Block: -1},
		},
		Constants: []any{inst},
	})

	result, err := m.Run(context.Background(), top, mod)
	require.NoError(t, err)
	require.Equal(t, `"hi"`, result.(*object.Str).Value())
}
