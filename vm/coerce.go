package vm

import (
	"bufio"

	"github.com/dusklang/dusk/object"
)

// resumption is work to run on the calling frame once a trampolined
// asStr/asRepr coercion call returns. binaryOp and friends can get away
// with "push the dunder's result where the operator's result belongs"
// (errNeedsTrampoline), but BUILD_STRING's per-item concatenation loop and
// PRINT_EXPR's single write need to do something else with the coerced
// value, so their continuations are recorded here, keyed by the pushed
// frame the way returnOverride keys a Type-call's __init__ frame.
type resumption interface {
	resume(m *machine, val object.Object) error
}

// strTrampoline resolves asStr(item): the Go-level Str() immediately for
// anything that isn't a user instance, or for an instance with no
// __str__ override; otherwise it dispatches the override through
// callMethod and reports needsTrampoline if that pushed a frame instead
// of resolving synchronously.
func (m *machine) strTrampoline(item object.Object) (s string, needsTrampoline bool, err error) {
	inst, ok := item.(*object.Instance)
	if !ok {
		return item.Str(), false, nil
	}
	fn, ok := lookupMethod(inst.Class, "__str__")
	if !ok {
		return item.Str(), false, nil
	}
	res, err := m.callMethod(fn, inst, []object.Object{inst}, nil)
	if err != nil {
		return "", false, err
	}
	if res.framePushed {
		return "", true, nil
	}
	return res.value.Str(), false, nil
}

// reprTrampoline is strTrampoline's __repr__ counterpart.
func (m *machine) reprTrampoline(item object.Object) (s string, needsTrampoline bool, err error) {
	inst, ok := item.(*object.Instance)
	if !ok {
		return item.Repr(), false, nil
	}
	fn, ok := lookupMethod(inst.Class, "__repr__")
	if !ok {
		return item.Repr(), false, nil
	}
	res, err := m.callMethod(fn, inst, []object.Object{inst}, nil)
	if err != nil {
		return "", false, err
	}
	if res.framePushed {
		return "", true, nil
	}
	return res.value.Str(), false, nil
}

// buildStringResumption drives BUILD_STRING's per-item concatenation
// across however many of its operands need a trampolined __str__ call.
type buildStringResumption struct {
	remaining []object.Object
	acc       string
}

func (r *buildStringResumption) resume(m *machine, val object.Object) error {
	r.acc += val.Str()
	return m.continueBuildString(r)
}

// continueBuildString resolves items left in r.remaining one at a time,
// suspending (via a resumption registered on the newly pushed frame) the
// moment one needs a guest __str__ call, and pushes the finished string
// once every item has been resolved.
func (m *machine) continueBuildString(r *buildStringResumption) error {
	for len(r.remaining) > 0 {
		item := r.remaining[0]
		r.remaining = r.remaining[1:]
		s, needsTrampoline, err := m.strTrampoline(item)
		if err != nil {
			return err
		}
		if needsTrampoline {
			m.resumptions[m.currentFrame()] = r
			return nil
		}
		r.acc += s
	}
	return m.push(object.NewStr(r.acc))
}

// printExprResumption finishes PRINT_EXPR once a trampolined __repr__
// call returns.
type printExprResumption struct{}

func (printExprResumption) resume(m *machine, val object.Object) error {
	return m.writeLine(val.Str())
}

func (m *machine) continuePrintExpr(v object.Object) error {
	s, needsTrampoline, err := m.reprTrampoline(v)
	if err != nil {
		return err
	}
	if needsTrampoline {
		m.resumptions[m.currentFrame()] = printExprResumption{}
		return nil
	}
	return m.writeLine(s)
}

func (m *machine) writeLine(s string) error {
	w := bufio.NewWriter(m.stdout)
	w.WriteString(s)
	w.WriteByte('\n')
	return w.Flush()
}

// jsonEncode implements asJson (SPEC_FULL.md §3, grounded on
// original_source/src/vm.h's asJson: "return call(obj, __json__)"): a
// structural encoding that dispatches to a user instance's __json__
// override when declared. JSON-mode re-serialization happens in
// finishFrame after that frame has already been popped, outside the
// opcode loop a CALL's trampoline resumes on, so a __json__ call that
// pushes a frame is driven to completion with a nested eval() instead —
// the same pattern LOAD_EVAL_FN's eval() builtin already uses.
func (m *machine) jsonEncode(obj object.Object) (string, error) {
	switch v := obj.(type) {
	case object.NoneValue:
		return "null", nil
	case object.Bool:
		if v {
			return "true", nil
		}
		return "false", nil
	case *object.Int:
		return v.Str(), nil
	case *object.Float:
		return v.Str(), nil
	case *object.Str:
		return v.Repr(), nil
	case *object.List:
		return m.jsonSequence(v.Items)
	case *object.Tuple:
		return m.jsonSequence(v.Items)
	case *object.Instance:
		fn, ok := lookupMethod(v.Class, "__json__")
		if !ok {
			return v.Repr(), nil
		}
		res, err := m.callMethod(fn, v, []object.Object{v}, nil)
		if err != nil {
			return "", err
		}
		result := res.value
		if res.framePushed {
			result, err = m.eval()
			if err != nil {
				return "", err
			}
		}
		return m.jsonEncode(result)
	default:
		return obj.Repr(), nil
	}
}

func (m *machine) jsonSequence(items []object.Object) (string, error) {
	out := "["
	for i, item := range items {
		if i > 0 {
			out += ", "
		}
		s, err := m.jsonEncode(item)
		if err != nil {
			return "", err
		}
		out += s
	}
	return out + "]", nil
}
