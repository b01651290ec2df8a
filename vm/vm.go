// Package vm implements the dusk bytecode interpreter: the stack-based
// virtual machine that evaluates a compiled bytecode.Code against the
// object value model.
package vm

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/dusklang/dusk/builtins"
	"github.com/dusklang/dusk/bytecode"
	"github.com/dusklang/dusk/errz"
	"github.com/dusklang/dusk/object"
	"github.com/dusklang/dusk/op"
)

// Compiler is the external collaborator that turns source text into a
// bytecode.Code. No implementation ships in this module (spec Non-goals);
// an embedder wires one in via WithCompiler to enable IMPORT_NAME's lazy
// module materialization and ExecSource.
type Compiler interface {
	Compile(source, filename string, mode bytecode.Mode) (*bytecode.Code, error)
}

// machine is the virtual machine. Unexported: embedders interact through
// VM, the public facade in vm.go's constructor and methods below.
type machine struct {
	ctx context.Context

	stack []object.Object

	frames []frame

	builtins     *object.Module
	eagerModules map[string]*object.Module
	lazyModules  map[string]string

	// returnOverride substitutes a RETURN_VALUE's result for specific
	// frames, used by the Type-call case (spec §4.4) so a user-defined
	// __init__'s own return value never replaces the instance CALL is
	// supposed to produce.
	returnOverride map[*frame]object.Object

	// discardReturn marks a trampolined frame whose eventual return value
	// must not be pushed onto the caller's stack at all, used by
	// WITH_EXIT's __exit__ call: unlike WITH_ENTER's __enter__, nothing
	// downstream wants __exit__'s result.
	discardReturn map[*frame]bool

	// resumptions holds per-frame continuations for a trampolined asStr/
	// asRepr coercion whose caller needs to do more than "push the result
	// where it belongs" once the call returns — BUILD_STRING's
	// concatenation loop and PRINT_EXPR's write, see coerce.go.
	resumptions map[*frame]resumption

	stdout   io.Writer
	observer Observer
	compiler Compiler

	halt atomic.Bool

	// topLevelDone/topLevelResult let RETURN_VALUE and HALT (handled inside
	// step, which only returns an error) tell eval's loop that the outermost
	// frame has completed and what value it produced.
	topLevelDone   bool
	topLevelResult object.Object

	// channel VM state, see channel.go
	state          atomic.Int32
	sharedString   chan string
	responseString chan string
	stopCh         chan struct{}
}

// VM is the embedder-facing handle to a virtual machine instance.
type VM struct {
	m *machine
}

// Option configures a VM at construction time.
type Option func(*machine)

// WithStdout redirects PRINT_EXPR output away from os.Stdout, matching the
// original interpreter's non-stdio embedding mode.
func WithStdout(w io.Writer) Option {
	return func(m *machine) { m.stdout = w }
}

// WithObserver attaches a step/call/return observer for tracing or
// debugging tooling.
func WithObserver(o Observer) Option {
	return func(m *machine) { m.observer = o }
}

// WithCompiler wires in the external compiler used for lazy module
// materialization and ExecSource.
func WithCompiler(c Compiler) Option {
	return func(m *machine) { m.compiler = c }
}

// New creates a virtual machine with a fresh, always-present "builtins"
// module (spec §4.7) and empty eager/lazy module tables.
func New(opts ...Option) *VM {
	m := &machine{
		stack:        make([]object.Object, 0, MaxStackDepth),
		frames:       make([]frame, 0, MaxFrameDepth),
		builtins:       object.NewModule("builtins"),
		eagerModules:   make(map[string]*object.Module),
		lazyModules:    make(map[string]string),
		returnOverride: make(map[*frame]object.Object),
		discardReturn:  make(map[*frame]bool),
		resumptions:    make(map[*frame]resumption),
		stdout:         os.Stdout,
	}
	m.state.Store(int32(StateReady))
	for _, opt := range opts {
		opt(m)
	}
	builtins.Register(m.builtins, m.stdout)
	m.builtins.SetAttr("super", m.superBuiltin())
	return &VM{m: m}
}

// Builtins returns the VM's always-present builtins module, so an embedder
// can add its own native functions via BindBuiltinFunc-style attribute
// assignment.
func (vm *VM) Builtins() *object.Module { return vm.m.builtins }

// NewModule creates and registers an eager module under name.
func (vm *VM) NewModule(name string) *object.Module {
	mod := object.NewModule(name)
	mod.SetAttr("__name__", object.NewStr(name))
	vm.m.eagerModules[name] = mod
	return mod
}

// AddLazyModule registers source text to be compiled and executed the
// first time it is imported.
func (vm *VM) AddLazyModule(name, source string) {
	vm.m.lazyModules[name] = source
}

// BindFunc registers a native function as an attribute of module.
func (vm *VM) BindFunc(module *object.Module, name string, fn object.NativeFunc) {
	module.SetAttr(name, object.NewNativeFunction(name, fn))
}

// BindBuiltinFunc registers a native function in the builtins module,
// visible to every frame's NameRef third lookup tier.
func (vm *VM) BindBuiltinFunc(name string, fn object.NativeFunc) {
	vm.m.builtins.SetAttr(name, object.NewNativeFunction(name, fn))
}

// BindMethod attaches a native method to a Class's attribute bag.
func (vm *VM) BindMethod(cls *object.Class, name string, fn object.NativeFunc) {
	cls.Attribs[name] = object.NewNativeFunction(name, fn)
}

// Run executes a pre-compiled code object to completion in the code
// object's own mode and returns its result (None in EXEC mode, the
// expression's value in EVAL mode, per spec §4.3's end-of-frame contract).
func (vm *VM) Run(ctx context.Context, code *bytecode.Code, module *object.Module) (object.Object, error) {
	if module == nil {
		module = vm.NewModule("__main__")
	}
	return vm.m.run(ctx, code, module)
}

// ExecSource compiles source via the configured Compiler and runs it.
func (vm *VM) ExecSource(ctx context.Context, source, filename string, mode bytecode.Mode, module *object.Module) (object.Object, error) {
	if vm.m.compiler == nil {
		return nil, errz.New(errz.UnexpectedError, "no compiler configured")
	}
	code, err := vm.m.compiler.Compile(source, filename, mode)
	if err != nil {
		return nil, err
	}
	return vm.Run(ctx, code, module)
}

// run drives the top-level call, recovering from any unexpected Go panic
// and wrapping it as UnexpectedError, matching the original interpreter's
// single catch-point at Exec.
func (m *machine) run(ctx context.Context, code *bytecode.Code, module *object.Module) (result object.Object, err error) {
	defer func() {
		if r := recover(); r != nil {
			m.frames = m.frames[:0]
			m.stack = m.stack[:0]
			se := errz.Newf(errz.UnexpectedError, "%v", r)
			result, err = nil, se
		}
	}()

	m.ctx = ctx
	if perr := m.pushFrame(code, module); perr != nil {
		return nil, perr
	}
	val, rerr := m.eval()
	if rerr != nil {
		m.frames = m.frames[:0]
		m.stack = m.stack[:0]
		return nil, rerr
	}
	return val, nil
}

// pushFrame activates a new frame. Exceeding MaxFrameDepth raises
// RecursionError rather than growing the Go call stack, since the
// interpreter never recurses per guest call (see the trampoline in eval).
func (m *machine) pushFrame(code *bytecode.Code, module *object.Module) error {
	if len(m.frames) >= MaxFrameDepth {
		return m.runtimeError(errz.New(errz.RecursionError, "maximum recursion depth exceeded"))
	}
	f := newFrame(code, module)
	f.base = len(m.stack)
	m.frames = append(m.frames, *f)
	return nil
}

func (m *machine) popFrame() {
	m.frames = m.frames[:len(m.frames)-1]
}

func (m *machine) currentFrame() *frame {
	return &m.frames[len(m.frames)-1]
}

func (m *machine) push(v object.Object) error {
	if len(m.stack) >= MaxStackDepth {
		return m.runtimeError(errz.New(errz.UnexpectedError, "value stack overflow"))
	}
	m.stack = append(m.stack, v)
	return nil
}

func (m *machine) pop() object.Object {
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v
}

func (m *machine) popDeref() (object.Object, error) {
	return Deref(m.pop())
}

func (m *machine) top() object.Object {
	return m.stack[len(m.stack)-1]
}

// popN returns the top n stack entries in original source (push) order,
// removing them from the stack, per spec §4.1's pop_n_reversed.
func (m *machine) popN(n int) []object.Object {
	start := len(m.stack) - n
	out := make([]object.Object, n)
	copy(out, m.stack[start:])
	m.stack = m.stack[:start]
	return out
}

// popNDeref is pop_n_values_reversed: popN with every entry dereferenced.
func (m *machine) popNDeref(n int) ([]object.Object, error) {
	items := m.popN(n)
	for i, v := range items {
		dv, err := Deref(v)
		if err != nil {
			return nil, err
		}
		items[i] = dv
	}
	return items, nil
}

// runtimeError attaches the current call stack's snapshots (innermost
// first, capped at errz.MaxSnapshots) to a *errz.StructuredError before
// it unwinds past the interpreter loop, per spec §4.6.
func (m *machine) runtimeError(err error) error {
	se, ok := err.(*errz.StructuredError)
	if !ok {
		se = errz.Newf(errz.UnexpectedError, "%v", err)
	}
	for i := len(m.frames) - 1; i >= 0; i-- {
		se.PushSnapshot(m.frames[i].snapshot())
	}
	return se
}

func opError(code op.Code) error {
	return fmt.Errorf("unhandled opcode %s", op.GetInfo(code).Name)
}
