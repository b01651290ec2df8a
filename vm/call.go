package vm

import (
	"errors"

	"github.com/dusklang/dusk/object"
)

// errNeedsTrampoline is returned by operator/subscript helpers (operators.go)
// when resolving a user-defined dunder method pushed a new frame instead of
// returning an immediate value. The eval loop treats it as "a frame is now on
// top, keep dispatching" rather than a real error; RETURN_VALUE will push the
// dunder's result exactly where the operator's result belongs, since the
// operands were already popped before the dunder call was attempted.
var errNeedsTrampoline = errors.New("vm: operation requires trampoline dispatch")

// callResult tells eval's CALL handler what happened: either an immediate
// value is ready to push (Type construction, bound/native dispatch), or a
// new frame was pushed and the trampoline should keep dispatching on it
// instead of recursing the host Go stack (spec §4.4 Trampoline).
type callResult struct {
	value       object.Object
	framePushed bool
}

// call implements the four-case calling convention of spec §4.4: Type,
// Bound method, Native function, User function.
func (m *machine) call(callee object.Object, args []object.Object, kwargs map[string]object.Object) (callResult, error) {
	switch fn := callee.(type) {
	case *object.Class:
		return m.callClass(fn, args, kwargs)

	case *object.BoundMethod:
		newArgs := make([]object.Object, 0, len(args)+1)
		newArgs = append(newArgs, fn.Receiver)
		newArgs = append(newArgs, args...)
		return m.callMethod(fn.Func, fn.Receiver, newArgs, kwargs)

	case *object.NativeFunction:
		if len(kwargs) != 0 {
			return callResult{}, object.NewTypeError("native function %s takes no keyword arguments", fn.Name())
		}
		v, err := fn.Call(args)
		if err != nil {
			return callResult{}, err
		}
		return callResult{value: v}, nil

	case *object.Function:
		return m.callUserFunction(fn, nil, args, kwargs)

	default:
		return callResult{}, object.NewTypeError("'%s' object is not callable", callee.Type())
	}
}

// callMethod invokes fn with self recorded as the executing frame's
// receiver, so a user-defined method body can call super() with no
// explicit argument (spec §4.4 step 1). It's the entry point used by
// every call site that already knows it is dispatching a method off a
// resolved receiver — BoundMethod dispatch above, callClass's __init__
// call, and the dunder-operator helpers in operators.go/eval.go — since
// those call sites hold a bare *object.Function (lookupMethod doesn't
// wrap it in a BoundMethod) and would otherwise lose the receiver.
func (m *machine) callMethod(fn object.Callable, self object.Object, args []object.Object, kwargs map[string]object.Object) (callResult, error) {
	if userFn, ok := fn.(*object.Function); ok {
		return m.callUserFunction(userFn, self, args, kwargs)
	}
	return m.call(fn, args, kwargs)
}

// callClass implements the Type case: __new__ if declared, else a bare
// allocation followed by __init__ if declared.
func (m *machine) callClass(cls *object.Class, args []object.Object, kwargs map[string]object.Object) (callResult, error) {
	if newFn, ok := cls.Attribs["__new__"]; ok {
		return m.call(newFn, args, kwargs)
	}
	inst := object.NewInstance(cls)
	if initFn, ok := lookupMethod(cls, "__init__"); ok {
		initArgs := make([]object.Object, 0, len(args)+1)
		initArgs = append(initArgs, inst)
		initArgs = append(initArgs, args...)
		res, err := m.callMethod(initFn, inst, initArgs, kwargs)
		if err != nil {
			return callResult{}, err
		}
		if res.framePushed {
			// __init__ is a user function: the pushed frame's return value
			// (discarded by callers of __init__) must not replace the
			// instance as CALL's ultimate result, so it's recorded as an
			// override keyed to that frame and substituted in at
			// RETURN_VALUE.
			m.returnOverride[m.currentFrame()] = inst
			return res, nil
		}
	}
	return callResult{value: inst}, nil
}

func lookupMethod(cls *object.Class, name string) (object.Callable, bool) {
	for c := cls; c != nil; c = c.Base {
		if v, ok := c.Attribs[name]; ok {
			if callable, ok := v.(object.Callable); ok {
				return callable, true
			}
		}
	}
	return nil, false
}

// callUserFunction binds arguments per spec §4.4's positional/rest/keyword
// rules and pushes a new frame rather than recursing into eval. self is
// the method receiver when fn is being dispatched as a method (nil for a
// plain function call), recorded on the new frame for super().
func (m *machine) callUserFunction(fn *object.Function, self object.Object, args []object.Object, kwargs map[string]object.Object) (callResult, error) {
	tmpl := fn.Template()
	locals := make(map[string]object.Object, tmpl.LocalCount())

	filled := make(map[string]bool, tmpl.ParameterCount())
	paramCount := tmpl.ParameterCount()

	// Positional parameters, including ones with declared defaults, are all
	// bound positionally in order first (spec §4.4: "overflow may fall into
	// declared keyword parameters in their declared order").
	bound := 0
	for ; bound < len(args) && bound < paramCount; bound++ {
		name := tmpl.Parameter(bound)
		locals[name] = args[bound]
		filled[name] = true
	}

	if bound < len(args) {
		if !tmpl.HasRestParam() {
			return callResult{}, object.NewTypeError("%s() takes at most %d positional arguments (%d given)", fn.Name(), paramCount, len(args))
		}
		rest := make([]object.Object, len(args)-bound)
		copy(rest, args[bound:])
		locals[tmpl.RestParam()] = object.NewTuple(rest)
	} else if tmpl.HasRestParam() {
		locals[tmpl.RestParam()] = object.NewTuple(nil)
	}

	for name, value := range kwargs {
		if filled[name] {
			return callResult{}, object.NewTypeError("%s() got multiple values for argument '%s'", fn.Name(), name)
		}
		found := false
		for p := 0; p < paramCount; p++ {
			if tmpl.Parameter(p) == name {
				found = true
				break
			}
		}
		if !found {
			return callResult{}, object.NewTypeError("%s() got an unexpected keyword argument '%s'", fn.Name(), name)
		}
		locals[name] = value
		filled[name] = true
	}

	for p := 0; p < paramCount; p++ {
		name := tmpl.Parameter(p)
		if filled[name] {
			continue
		}
		if def, ok := tmpl.Default(name); ok {
			locals[name] = def.(object.Object)
			continue
		}
		return callResult{}, object.NewTypeError("%s() missing positional argument '%s'", fn.Name(), name)
	}

	if len(m.frames) >= MaxFrameDepth {
		return callResult{}, m.runtimeError(object.NewRecursionError("maximum recursion depth exceeded"))
	}

	code := tmpl.Code()
	module := fn.Module()
	// __module__ override for globals resolution: a function always
	// resolves module-scope names against the module it was defined in,
	// never the caller's module.
	newFrame := frame{
		code:   code,
		module: module,
		locals: locals,
		base:   len(m.stack),
		self:   self,
	}
	m.frames = append(m.frames, newFrame)
	return callResult{framePushed: true}, nil
}

// superBuiltin implements the `super()` builtin (spec §4.4 step 1, grounded
// on object.NewSuper/Super.Resolve): with no arguments it wraps the
// currently executing method's receiver (frame.self); with one argument it
// wraps that value directly, letting a nested super(super(x)) (spec §9's
// chain requirement) unwrap via NewSuper's existing Super-receiver case.
// It needs frame context the stdlib-only builtins package has no access
// to, so it's synthesized here and bound into the builtins module by New,
// the same way LOAD_EVAL_FN's eval() builtin is synthesized in eval.go.
func (m *machine) superBuiltin() *object.NativeFunction {
	return object.NewNativeFunction("super", func(args []object.Object) (object.Object, error) {
		switch len(args) {
		case 0:
			self := m.currentFrame().self
			if self == nil {
				return nil, object.NewTypeError("super(): no current instance, call with an explicit argument outside a method")
			}
			return object.NewSuper(self, 0), nil
		case 1:
			return object.NewSuper(args[0], 0), nil
		default:
			return nil, object.NewTypeError("super() takes at most 1 argument (%d given)", len(args))
		}
	})
}
