package vm

import (
	"github.com/dusklang/dusk/bytecode"
	"github.com/dusklang/dusk/errz"
	"github.com/dusklang/dusk/object"
	"github.com/dusklang/dusk/op"
)

// eval is the trampoline-style dispatch loop (spec §4.3): it always
// operates on the current top frame and never recurses into itself for a
// guest call. CALL, the Type-call case, and a user dunder override all push
// a frame onto m.frames and let this same loop pick up dispatch there;
// RETURN_VALUE (or falling off the end of a frame) pops it back off and
// resumes the caller exactly where it left off.
func (m *machine) eval() (object.Object, error) {
	for {
		f := m.currentFrame()

		if f.ip >= f.code.InstructionCount() {
			done, result, err := m.finishFrame(nil, true)
			if err != nil {
				return nil, m.runtimeError(err)
			}
			if done {
				return result, nil
			}
			continue
		}

		if m.halt.Load() {
			return nil, m.runtimeError(errz.New(errz.KeyboardInterrupt, "interrupted"))
		}
		if m.ctx != nil {
			select {
			case <-m.ctx.Done():
				return nil, m.runtimeError(errz.New(errz.KeyboardInterrupt, "interrupted"))
			default:
			}
		}

		instr := f.code.InstructionAt(f.ip)
		if m.observer != nil {
			cfg := m.observer.Config()
			if cfg.StepMode != StepNone {
				ev := StepEvent{
					IP:         f.ip,
					Opcode:     instr.Op,
					OpcodeName: op.GetInfo(instr.Op).Name,
					Location:   f.code.LocationAt(f.ip),
					StackDepth: len(m.stack),
					FrameDepth: len(m.frames),
				}
				if !m.observer.OnStep(ev) {
					return nil, m.runtimeError(errz.New(errz.KeyboardInterrupt, "halted by observer"))
				}
			}
		}
		f.ip++

		if err := m.step(f, instr); err != nil {
			if err == errNeedsTrampoline {
				continue
			}
			return nil, m.runtimeError(err)
		}
		if m.topLevelDone {
			m.topLevelDone = false
			result := m.topLevelResult
			m.topLevelResult = nil
			return result, nil
		}
	}
}

// step executes a single instruction against f, the frame that was current
// when it was decoded (eval re-fetches m.currentFrame() for anything that
// depends on a frame pushed mid-instruction, e.g. CALL).
func (m *machine) step(f *frame, instr bytecode.Instruction) error {
	switch instr.Op {

	case op.NoOp:
		return nil

	case op.PopTop:
		m.pop()
		return nil

	case op.DupTop:
		return m.push(m.top())

	case op.LoadConst:
		v, ok := f.code.ConstantAt(instr.Arg).(object.Object)
		if !ok {
			return errz.New(errz.UnexpectedError, "constant is not a runtime value")
		}
		return m.push(v)

	case op.LoadNone:
		return m.push(object.None)

	case op.LoadTrue:
		return m.push(object.True)

	case op.LoadFalse:
		return m.push(object.False)

	case op.LoadEllipsis:
		return m.push(object.Ellipsis)

	case op.LoadName:
		n := f.code.NameAt(instr.Arg)
		ref := newNameRef(n.Name, n.Scope, f, m)
		v, err := ref.Get()
		if err != nil {
			return err
		}
		return m.push(v)

	case op.LoadNameRef:
		n := f.code.NameAt(instr.Arg)
		return m.push(newNameRef(n.Name, n.Scope, f, m))

	case op.StoreNameRef:
		n := f.code.NameAt(instr.Arg)
		val, err := m.popDeref()
		if err != nil {
			return err
		}
		return newNameRef(n.Name, n.Scope, f, m).Set(val)

	case op.LoadLambda:
		tmpl, ok := f.code.ConstantAt(instr.Arg).(*bytecode.Function)
		if !ok {
			return errz.New(errz.UnexpectedError, "LOAD_LAMBDA constant is not a function template")
		}
		return m.push(object.NewFunction(tmpl, f.module))

	case op.LoadEvalFn:
		return m.push(m.evalBuiltin())

	case op.BuildAttrRef:
		n := f.code.NameAt(instr.Arg)
		obj, err := m.popDeref()
		if err != nil {
			return err
		}
		return m.push(newAttrRef(obj, n.Name))

	case op.BuildIndexRef:
		key, err := m.popDeref()
		if err != nil {
			return err
		}
		obj, err := m.popDeref()
		if err != nil {
			return err
		}
		return m.push(newIndexRef(obj, key, m))

	case op.StoreRef:
		val, err := m.popDeref()
		if err != nil {
			return err
		}
		refv := m.pop()
		ref, ok := refv.(Reference)
		if !ok {
			return errz.New(errz.UnexpectedError, "STORE_REF target is not a reference")
		}
		return ref.Set(val)

	case op.DeleteRef:
		refv := m.pop()
		ref, ok := refv.(Reference)
		if !ok {
			return errz.New(errz.UnexpectedError, "DELETE_REF target is not a reference")
		}
		return ref.Del()

	case op.BuildList:
		items, err := m.popNDeref(instr.Arg)
		if err != nil {
			return err
		}
		return m.push(object.NewList(items))

	case op.BuildMap:
		items, err := m.popNDeref(2 * instr.Arg)
		if err != nil {
			return err
		}
		d := object.NewDict()
		for i := 0; i < instr.Arg; i++ {
			if err := d.Set(items[2*i], items[2*i+1]); err != nil {
				return object.NewTypeError("%v", err)
			}
		}
		return m.push(d)

	case op.BuildSet:
		items, err := m.popNDeref(instr.Arg)
		if err != nil {
			return err
		}
		s := object.NewSet()
		for _, it := range items {
			if _, err := s.Add(it); err != nil {
				return object.NewTypeError("%v", err)
			}
		}
		return m.push(s)

	case op.BuildSlice:
		parts, err := m.popNDeref(2)
		if err != nil {
			return err
		}
		return m.push(object.NewSlice(parts[0], parts[1], object.None))

	case op.BuildSmartTuple:
		return m.buildSmartTuple(instr.Arg)

	case op.BuildString:
		items, err := m.popNDeref(instr.Arg)
		if err != nil {
			return err
		}
		return m.continueBuildString(&buildStringResumption{remaining: items})

	case op.BinaryOp, op.BitwiseOp:
		rhs, err := m.popDeref()
		if err != nil {
			return err
		}
		lhs, err := m.popDeref()
		if err != nil {
			return err
		}
		res, err := m.binaryOp(op.BinaryOpType(instr.Arg), lhs, rhs)
		if err != nil {
			return err
		}
		return m.push(res)

	case op.CompareOp:
		rhs, err := m.popDeref()
		if err != nil {
			return err
		}
		lhs, err := m.popDeref()
		if err != nil {
			return err
		}
		res, err := m.compareOp(op.CompareOpType(instr.Arg), lhs, rhs)
		if err != nil {
			return err
		}
		return m.push(res)

	case op.IsOp:
		rhs, err := m.popDeref()
		if err != nil {
			return err
		}
		lhs, err := m.popDeref()
		if err != nil {
			return err
		}
		same := lhs == rhs
		if instr.Arg == 1 {
			same = !same
		}
		return m.push(object.NewBool(same))

	case op.ContainsOp:
		container, err := m.popDeref()
		if err != nil {
			return err
		}
		item, err := m.popDeref()
		if err != nil {
			return err
		}
		res, err := m.containsOp(item, container)
		if err != nil {
			return err
		}
		if instr.Arg == 1 {
			res = object.NewBool(!object.Truthy(res))
		}
		return m.push(res)

	case op.UnaryNegative:
		v, err := m.popDeref()
		if err != nil {
			return err
		}
		neg, err := m.unaryNegative(v)
		if err != nil {
			return err
		}
		return m.push(neg)

	case op.UnaryNot:
		v, err := m.popDeref()
		if err != nil {
			return err
		}
		return m.push(object.NewBool(!object.Truthy(v)))

	case op.PopJumpIfFalse:
		v, err := m.popDeref()
		if err != nil {
			return err
		}
		if !object.Truthy(v) {
			f.ip = instr.Arg
		}
		return nil

	case op.JumpAbsolute:
		f.ip = instr.Arg
		return nil

	case op.SafeJumpAbsolute:
		m.unwindBlock(f, instr.Block)
		f.ip = instr.Arg
		return nil

	case op.JumpIfTrueOrPop:
		if object.Truthy(m.top()) {
			f.ip = instr.Arg
			return nil
		}
		m.pop()
		return nil

	case op.JumpIfFalseOrPop:
		if !object.Truthy(m.top()) {
			f.ip = instr.Arg
			return nil
		}
		m.pop()
		return nil

	case op.Goto:
		label, err := m.popDeref()
		if err != nil {
			return err
		}
		ls, ok := label.(*object.Str)
		if !ok {
			return object.NewTypeError("GOTO label must be a string")
		}
		target, ok := f.code.Label(ls.Value())
		if !ok {
			return object.NewKeyError("no such label '%s'", ls.Value())
		}
		m.unwindBlock(f, instr.Block)
		f.ip = target
		return nil

	case op.Call:
		return m.doCall(instr.Arg)

	case op.LoopContinue:
		f.ip = f.code.BlockAt(instr.Block).Start
		return nil

	case op.LoopBreak:
		if _, ok := m.top().(*iterState); ok {
			m.pop()
		}
		f.ip = f.code.BlockAt(instr.Block).End
		return nil

	case op.ForIter:
		return m.forIter(f, instr)

	case op.WithEnter:
		return m.withEnter(f, instr)

	case op.WithExit:
		return m.withExit(f)

	case op.StoreFunction:
		popped, ok := m.pop().(*object.Function)
		if !ok {
			return errz.New(errz.UnexpectedError, "STORE_FUNCTION operand is not a function")
		}
		fn := object.NewFunction(popped.Template(), f.module)
		return f.module.SetAttr(fn.Name(), fn)

	case op.BuildClass:
		return m.buildClass(f, instr)

	case op.ReturnValue:
		val, err := m.popDeref()
		if err != nil {
			return err
		}
		done, result, ferr := m.finishFrame(val, false)
		if ferr != nil {
			return ferr
		}
		if done {
			m.topLevelResult = result
			m.topLevelDone = true
		}
		return nil

	case op.RaiseError:
		val, err := m.popDeref()
		if err != nil {
			return err
		}
		kindVal, err := m.popDeref()
		if err != nil {
			return err
		}
		kindStr, _ := kindVal.(*object.Str)
		name := ""
		if kindStr != nil {
			name = kindStr.Value()
		}
		repr, rerr := Repr(val)
		if rerr != nil {
			return rerr
		}
		return errz.New(errorKindFromName(name), repr)

	case op.Assert:
		v, err := m.popDeref()
		if err != nil {
			return err
		}
		if !object.Truthy(v) {
			return object.NewAssertionError("assertion failed")
		}
		return nil

	case op.GetIter:
		iterable, err := m.popDeref()
		if err != nil {
			return err
		}
		targetv := m.pop()
		target, ok := targetv.(Reference)
		if !ok {
			return errz.New(errz.UnexpectedError, "GET_ITER target is not a reference")
		}
		it, err := m.iteratorFor(iterable)
		if err != nil {
			return err
		}
		return m.push(&iterState{iter: it, target: target})

	case op.ImportName:
		n := f.code.NameAt(instr.Arg)
		mod, err := m.importModule(n.Name)
		if err != nil {
			return err
		}
		return m.push(mod)

	case op.PrintExpr:
		v, err := m.popDeref()
		if err != nil {
			return err
		}
		if v == object.None {
			return nil
		}
		return m.continuePrintExpr(v)

	case op.StringChannelCall:
		arg, err := m.popDeref()
		if err != nil {
			return err
		}
		res, err := m.stringChannelCall([]object.Object{arg})
		if err != nil {
			return err
		}
		return m.push(res)

	case op.Halt:
		m.topLevelResult = object.None
		m.topLevelDone = true
		return nil

	default:
		return opError(instr.Op)
	}
}

// finishFrame pops the current frame, applying any returnOverride recorded
// for it (the Type-call __init__ case), resets the shared value stack to
// that frame's base, and either reports the interpreter is completely done
// (no caller frame left) or routes the result to wherever it belongs: a
// queued resumption (coerce.go, for a trampolined asStr/asRepr call),
// discarded entirely (WITH_EXIT's __exit__ call, see discardReturn), or
// the common case of pushing it onto the caller's now-exposed stack so the
// trampoline can resume it.
//
// implicit is true when the frame fell off the end of its instructions
// without an explicit RETURN_VALUE; in that case the result is computed
// from the frame's mode per spec §4.3's end-of-frame contract rather than
// the popped value passed in. A JSON-mode frame's popped value is always
// re-serialized through jsonEncode before it becomes the result, whether
// the frame ended implicitly or via an explicit RETURN_VALUE.
func (m *machine) finishFrame(val object.Object, implicit bool) (done bool, result object.Object, err error) {
	finished := m.currentFrame()
	mode := finished.code.Mode()
	base := finished.base

	if implicit {
		contributed := len(m.stack) - base
		switch mode {
		case bytecode.Eval, bytecode.JSON:
			if contributed != 1 {
				return false, nil, errz.New(errz.UnexpectedError, "frame ended with an unbalanced stack")
			}
			val, err = m.popDeref()
			if err != nil {
				return false, nil, err
			}
		default:
			if contributed != 0 {
				return false, nil, errz.New(errz.UnexpectedError, "frame ended with an unbalanced stack")
			}
			val = object.None
		}
	}

	m.popFrame()
	if override, ok := m.returnOverride[finished]; ok {
		val = override
		delete(m.returnOverride, finished)
	}
	discard := m.discardReturn[finished]
	if discard {
		delete(m.discardReturn, finished)
	}

	m.stack = m.stack[:base]

	if mode == bytecode.JSON {
		s, jerr := m.jsonEncode(val)
		if jerr != nil {
			return false, nil, jerr
		}
		val = object.NewStr(s)
	}

	if m.observer != nil && m.observer.Config().ObserveReturns {
		if !m.observer.OnReturn(ReturnEvent{FrameDepth: len(m.frames)}) {
			return false, nil, errz.New(errz.KeyboardInterrupt, "halted by observer")
		}
	}

	if len(m.frames) == 0 {
		return true, val, nil
	}

	if res, ok := m.resumptions[finished]; ok {
		delete(m.resumptions, finished)
		if rerr := res.resume(m, val); rerr != nil {
			return false, nil, rerr
		}
		return false, nil, nil
	}

	if discard {
		return false, nil, nil
	}

	if perr := m.push(val); perr != nil {
		return false, nil, perr
	}
	return false, nil, nil
}

// unwindBlock runs WITH_EXIT cleanup and pops the frame's own block-state
// bookkeeping when a jump leaves a `with` block early. It does not run for
// plain loop blocks, which only need their iterState (if any) popped by
// LOOP_BREAK itself.
func (m *machine) unwindBlock(f *frame, blockIdx int) {
	if blockIdx < 0 {
		return
	}
	bs, ok := f.currentBlock()
	if !ok || bs.block != f.code.BlockAt(blockIdx) {
		return
	}
	if bs.block.Kind == op.BlockWith && bs.withValue != nil {
		if fn, ok := lookupMethod(classOfInstance(bs.withValue), "__exit__"); ok {
			_, _ = callImmediate(fn, []object.Object{bs.withValue})
		}
	}
	f.popBlock()
}

func classOfInstance(v object.Object) *object.Class {
	if inst, ok := v.(*object.Instance); ok {
		return inst.Class
	}
	return nil
}

func (m *machine) forIter(f *frame, instr bytecode.Instruction) error {
	top := m.top()
	it, ok := top.(*iterState)
	if !ok {
		return errz.New(errz.UnexpectedError, "FOR_ITER operates on a non-iterator stack slot")
	}
	if !it.iter.HasNext() {
		m.pop()
		f.ip = f.code.BlockAt(instr.Block).End
		return nil
	}
	v, _ := it.iter.Next()
	return it.target.Set(v)
}

func (m *machine) withEnter(f *frame, instr bytecode.Instruction) error {
	ctxVal, err := m.popDeref()
	if err != nil {
		return err
	}
	f.pushBlock(f.code.BlockAt(instr.Block))
	bs, _ := f.currentBlock()
	bs.withValue = ctxVal

	inst, ok := ctxVal.(*object.Instance)
	if !ok {
		return object.NewTypeError("'%s' object does not support the context manager protocol", ctxVal.Type())
	}
	fn, ok := lookupMethod(inst.Class, "__enter__")
	if !ok {
		return object.NewAttributeError("'%s' object has no attribute '__enter__'", ctxVal.Type())
	}
	res, err := m.callMethod(fn, inst, []object.Object{inst}, nil)
	if err != nil {
		return err
	}
	if res.framePushed {
		return errNeedsTrampoline
	}
	return m.push(res.value)
}

// withExit runs a with-block's __exit__ on normal block exit. Its return
// value is never visible to the script (unlike __enter__'s), so a
// trampolined call is marked via discardReturn: finishFrame will drop the
// eventual RETURN_VALUE instead of pushing it onto the caller's stack,
// which would otherwise leak one stack slot per with-statement whose
// __exit__ is a guest method.
func (m *machine) withExit(f *frame) error {
	bs, ok := f.currentBlock()
	if !ok {
		return errz.New(errz.UnexpectedError, "WITH_EXIT outside a with block")
	}
	withValue := bs.withValue
	f.popBlock()

	inst, ok := withValue.(*object.Instance)
	if !ok {
		return nil
	}
	fn, ok := lookupMethod(inst.Class, "__exit__")
	if !ok {
		return nil
	}
	res, err := m.callMethod(fn, inst, []object.Object{inst}, nil)
	if err != nil {
		return err
	}
	if res.framePushed {
		m.discardReturn[m.currentFrame()] = true
		return errNeedsTrampoline
	}
	return nil
}

// buildSmartTuple implements spec §4.2's reference-aware tuple packing: if
// every popped slot is itself a Reference, the result is a TupleRef so a
// subsequent STORE_REF can unpack element-wise into each target; otherwise
// every slot is dereferenced and a plain value Tuple is built.
func (m *machine) buildSmartTuple(n int) error {
	items := m.popN(n)
	refs := make([]Reference, n)
	allRefs := true
	for i, v := range items {
		ref, ok := v.(Reference)
		if !ok {
			allRefs = false
			break
		}
		refs[i] = ref
	}
	if allRefs {
		return m.push(newTupleRef(refs))
	}
	values := make([]object.Object, n)
	for i, v := range items {
		dv, err := Deref(v)
		if err != nil {
			return err
		}
		values[i] = dv
	}
	return m.push(object.NewTuple(values))
}

func (m *machine) unaryNegative(v object.Object) (object.Object, error) {
	switch n := v.(type) {
	case *object.Int:
		return object.NewInt(-n.Value()), nil
	case *object.Float:
		return object.NewFloat(-n.Value()), nil
	case *object.Instance:
		if fn, ok := lookupMethod(n.Class, "__neg__"); ok {
			res, err := callImmediate(fn, []object.Object{n})
			if err != nil {
				return nil, err
			}
			return res, nil
		}
	}
	return nil, object.NewTypeError("bad operand type for unary -: '%s'", v.Type())
}

// doCall decodes argspec's packed (ARGC, KWARGC) per spec §4.3's CALL
// opcode, pops operands in the order they were pushed, and dispatches
// through the four-case calling convention.
func (m *machine) doCall(argspec int) error {
	argc := argspec & 0xFFFF
	kwargc := (argspec >> 16) & 0xFFFF

	kwItems, err := m.popNDeref(2 * kwargc)
	if err != nil {
		return err
	}
	kwargs := make(map[string]object.Object, kwargc)
	for i := 0; i < kwargc; i++ {
		name, ok := kwItems[2*i].(*object.Str)
		if !ok {
			return errz.New(errz.UnexpectedError, "CALL keyword name is not a string")
		}
		kwargs[name.Value()] = kwItems[2*i+1]
	}

	args, err := m.popNDeref(argc)
	if err != nil {
		return err
	}

	callee, err := m.popDeref()
	if err != nil {
		return err
	}

	if m.observer != nil && m.observer.Config().ObserveCalls {
		if !m.observer.OnCall(CallEvent{ArgCount: argc, FrameDepth: len(m.frames)}) {
			return errz.New(errz.KeyboardInterrupt, "halted by observer")
		}
	}

	res, err := m.call(callee, args, kwargs)
	if err != nil {
		return err
	}
	if res.framePushed {
		return nil
	}
	return m.push(res.value)
}

// buildClass implements BUILD_CLASS per SPEC_FULL.md §4.4, grounded on
// original_source/src/vm.h's new_user_type_object: pop a base (None or a
// Class), then pop callables until a None sentinel, registering each under
// its own declared name.
func (m *machine) buildClass(f *frame, instr bytecode.Instruction) error {
	n := f.code.NameAt(instr.Arg)

	baseVal, err := m.popDeref()
	if err != nil {
		return err
	}
	var base *object.Class
	if b, ok := baseVal.(*object.Class); ok {
		base = b
	}

	qualified := n.Name
	if f.module.Name() != "" {
		qualified = f.module.Name() + "." + n.Name
	}
	cls := object.NewClass(qualified, base)

	for {
		v := m.pop()
		if v == object.None {
			break
		}
		callable, ok := v.(object.Callable)
		if !ok {
			return errz.New(errz.UnexpectedError, "BUILD_CLASS member is not callable")
		}
		memberName := callableName(callable)
		cls.Attribs[memberName] = callable
	}

	return m.push(cls)
}

func callableName(c object.Callable) string {
	switch v := c.(type) {
	case *object.Function:
		return v.Name()
	case *object.NativeFunction:
		return v.Name()
	case *object.Class:
		if i := lastDot(v.Name); i >= 0 {
			return v.Name[i+1:]
		}
		return v.Name
	default:
		return ""
	}
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

func errorKindFromName(name string) errz.ErrorKind {
	switch name {
	case "TypeError":
		return errz.TypeError
	case "NameError":
		return errz.NameError
	case "IndexError":
		return errz.IndexError
	case "ValueError":
		return errz.ValueError
	case "ZeroDivisionError":
		return errz.ZeroDivisionError
	case "AttributeError":
		return errz.AttributeError
	case "ImportError":
		return errz.ImportError
	case "AssertionError":
		return errz.AssertionError
	case "KeyError":
		return errz.KeyError
	case "RecursionError":
		return errz.RecursionError
	default:
		return errz.UnexpectedError
	}
}

// evalBuiltin implements LOAD_EVAL_FN: a native function that compiles and
// evaluates a string expression in EVAL mode against the calling frame's
// module, the way the original interpreter's builtin `eval` works. It needs
// the machine's compiler and current-module context, so it is synthesized
// here rather than registered in the stdlib-only builtins package.
func (m *machine) evalBuiltin() *object.NativeFunction {
	return object.NewNativeFunction("eval", func(args []object.Object) (object.Object, error) {
		if len(args) != 1 {
			return nil, object.NewTypeError("eval() takes exactly one argument")
		}
		src, ok := args[0].(*object.Str)
		if !ok {
			return nil, object.NewTypeError("eval() argument must be str")
		}
		if m.compiler == nil {
			return nil, errz.New(errz.UnexpectedError, "eval() requires a compiler, none configured")
		}
		code, err := m.compiler.Compile(src.Value(), "<eval>", bytecode.Eval)
		if err != nil {
			return nil, errz.Newf(errz.ValueError, "%v", err)
		}
		module := m.currentFrame().module
		if perr := m.pushFrame(code, module); perr != nil {
			return nil, perr
		}
		return m.eval()
	})
}
