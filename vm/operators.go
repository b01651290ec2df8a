package vm

import (
	"github.com/dusklang/dusk/object"
	"github.com/dusklang/dusk/op"
)

// Repr implements asRepr for contexts outside the main eval loop that need
// a synchronous result and cannot suspend into the trampoline — currently
// only RaiseError's error-message formatting, where a raised value's
// __repr__ is expected to be cheap and pushing another frame mid-raise
// isn't supported. BUILD_STRING and PRINT_EXPR, which run inside eval's
// loop and can afford to suspend, use the trampoline-aware
// machine.strTrampoline/reprTrampoline in coerce.go instead.
func Repr(obj object.Object) (string, error) {
	if inst, ok := obj.(*object.Instance); ok {
		if fn, ok := lookupMethod(inst.Class, "__repr__"); ok {
			v, err := callImmediate(fn, []object.Object{inst})
			if err != nil {
				return "", err
			}
			return v.Str(), nil
		}
	}
	return obj.Repr(), nil
}

// IsInstance implements isinstance(obj, type), walking the __base__ chain.
func IsInstance(obj object.Object, cls *object.Class) bool {
	inst, ok := obj.(*object.Instance)
	if !ok {
		return false
	}
	return inst.Class.IsSubclass(cls)
}

// callImmediate invokes a callable that must resolve without the
// trampoline: only a native function is accepted, anything else is a
// TypeError. Used by __neg__, the instance-iterator protocol, unwindBlock's
// __exit__, and Repr's __repr__ call.
func callImmediate(fn object.Callable, args []object.Object) (object.Object, error) {
	switch f := fn.(type) {
	case *object.NativeFunction:
		return f.Call(args)
	default:
		return nil, object.NewTypeError("dunder method dispatch requires a native function in this context")
	}
}

// binaryOp implements BINARY_OP/BITWISE_OP: user instances dispatch through
// their class's special method (spec §4.4's MRO walk); the remaining
// built-in types implement arithmetic/concatenation directly.
func (m *machine) binaryOp(kind op.BinaryOpType, lhs, rhs object.Object) (object.Object, error) {
	if inst, ok := lhs.(*object.Instance); ok {
		if fn, ok := lookupMethod(inst.Class, kind.SpecialMethod()); ok {
			res, err := m.callMethod(fn, inst, []object.Object{inst, rhs}, nil)
			if err != nil {
				return nil, err
			}
			if res.framePushed {
				return nil, errNeedsTrampoline
			}
			return res.value, nil
		}
	}

	li, lIsInt := lhs.(*object.Int)
	ri, rIsInt := rhs.(*object.Int)
	if lIsInt && rIsInt {
		return intBinaryOp(kind, li.Value(), ri.Value())
	}

	lf, lok := asFloat(lhs)
	rf, rok := asFloat(rhs)
	if lok && rok {
		return floatBinaryOp(kind, lf, rf)
	}

	ls, lIsStr := lhs.(*object.Str)
	rs, rIsStr := rhs.(*object.Str)
	if kind == op.Add && lIsStr && rIsStr {
		return object.NewStr(ls.Value() + rs.Value()), nil
	}
	if kind == op.Multiply && lIsStr && rIsInt {
		return object.NewStr(repeatStr(ls.Value(), int(ri.Value()))), nil
	}

	ll, lIsList := lhs.(*object.List)
	rl, rIsList := rhs.(*object.List)
	if kind == op.Add && lIsList && rIsList {
		items := make([]object.Object, 0, len(ll.Items)+len(rl.Items))
		items = append(items, ll.Items...)
		items = append(items, rl.Items...)
		return object.NewList(items), nil
	}

	return nil, object.NewTypeError("unsupported operand type(s) for %s: '%s' and '%s'", kind.String(), lhs.Type(), rhs.Type())
}

func repeatStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

func asFloat(v object.Object) (float64, bool) {
	switch n := v.(type) {
	case *object.Float:
		return n.Value(), true
	case *object.Int:
		return float64(n.Value()), true
	}
	return 0, false
}

func intBinaryOp(kind op.BinaryOpType, a, b int64) (object.Object, error) {
	switch kind {
	case op.Add:
		return object.NewInt(a + b), nil
	case op.Subtract:
		return object.NewInt(a - b), nil
	case op.Multiply:
		return object.NewInt(a * b), nil
	case op.Divide:
		if b == 0 {
			return nil, object.NewZeroDivisionError("division by zero")
		}
		return object.NewFloat(float64(a) / float64(b)), nil
	case op.FloorDivide:
		if b == 0 {
			return nil, object.NewZeroDivisionError("integer division or modulo by zero")
		}
		q := a / b
		if (a%b != 0) && ((a < 0) != (b < 0)) {
			q--
		}
		return object.NewInt(q), nil
	case op.Modulo:
		if b == 0 {
			return nil, object.NewZeroDivisionError("integer division or modulo by zero")
		}
		r := a % b
		if r != 0 && ((r < 0) != (b < 0)) {
			r += b
		}
		return object.NewInt(r), nil
	case op.Power:
		return object.NewFloat(intPow(a, b)), nil
	case op.BitAnd:
		return object.NewInt(a & b), nil
	case op.BitOr:
		return object.NewInt(a | b), nil
	case op.BitXor:
		return object.NewInt(a ^ b), nil
	case op.LShift:
		return object.NewInt(a << uint(b)), nil
	case op.RShift:
		return object.NewInt(a >> uint(b)), nil
	}
	return nil, object.NewTypeError("unsupported binary operation %s", kind.String())
}

func intPow(a, b int64) float64 {
	result := 1.0
	base := float64(a)
	neg := b < 0
	if neg {
		b = -b
	}
	for i := int64(0); i < b; i++ {
		result *= base
	}
	if neg {
		return 1.0 / result
	}
	return result
}

func floatBinaryOp(kind op.BinaryOpType, a, b float64) (object.Object, error) {
	switch kind {
	case op.Add:
		return object.NewFloat(a + b), nil
	case op.Subtract:
		return object.NewFloat(a - b), nil
	case op.Multiply:
		return object.NewFloat(a * b), nil
	case op.Divide:
		if b == 0 {
			return nil, object.NewZeroDivisionError("division by zero")
		}
		return object.NewFloat(a / b), nil
	case op.FloorDivide:
		if b == 0 {
			return nil, object.NewZeroDivisionError("division by zero")
		}
		return object.NewFloat(floorDiv(a, b)), nil
	case op.Power:
		return object.NewFloat(powFloat(a, b)), nil
	default:
		return nil, object.NewTypeError("unsupported binary operation %s for float", kind.String())
	}
}

func floorDiv(a, b float64) float64 {
	q := a / b
	if q < 0 {
		return float64(int64(q) - 1)
	}
	return float64(int64(q))
}

func powFloat(a, b float64) float64 {
	result := 1.0
	for i := 0; i < int(b); i++ {
		result *= a
	}
	return result
}

// compareOp implements COMPARE_OP. NotEqual is always computed as the
// negation of __eq__/structural equality, never a user __ne__ override
// (spec §9 Open Question, resolved in op.CompareOpType.SpecialMethod).
func (m *machine) compareOp(kind op.CompareOpType, lhs, rhs object.Object) (object.Object, error) {
	if inst, ok := lhs.(*object.Instance); ok {
		if fn, ok := lookupMethod(inst.Class, kind.SpecialMethod()); ok {
			res, err := m.callMethod(fn, inst, []object.Object{inst, rhs}, nil)
			if err != nil {
				return nil, err
			}
			if res.framePushed {
				return nil, errNeedsTrampoline
			}
			if kind == op.NotEqual {
				return object.NewBool(!object.Truthy(res.value)), nil
			}
			return res.value, nil
		}
	}

	if kind == op.Equal {
		return object.NewBool(object.Equal(lhs, rhs)), nil
	}
	if kind == op.NotEqual {
		return object.NewBool(!object.Equal(lhs, rhs)), nil
	}

	lf, lok := asFloat(lhs)
	rf, rok := asFloat(rhs)
	if lok && rok {
		return object.NewBool(compareFloat(kind, lf, rf)), nil
	}
	if ls, ok := lhs.(*object.Str); ok {
		if rs, ok := rhs.(*object.Str); ok {
			return object.NewBool(compareStr(kind, ls.Value(), rs.Value())), nil
		}
	}
	return nil, object.NewTypeError("'%s' not supported between instances of '%s' and '%s'", kind.String(), lhs.Type(), rhs.Type())
}

func compareFloat(kind op.CompareOpType, a, b float64) bool {
	switch kind {
	case op.LessThan:
		return a < b
	case op.LessThanOrEqual:
		return a <= b
	case op.GreaterThan:
		return a > b
	case op.GreaterThanOrEqual:
		return a >= b
	}
	return false
}

func compareStr(kind op.CompareOpType, a, b string) bool {
	switch kind {
	case op.LessThan:
		return a < b
	case op.LessThanOrEqual:
		return a <= b
	case op.GreaterThan:
		return a > b
	case op.GreaterThanOrEqual:
		return a >= b
	}
	return false
}

// containsOp implements CONTAINS_OP: `item in container`.
func (m *machine) containsOp(item, container object.Object) (object.Object, error) {
	if inst, ok := container.(*object.Instance); ok {
		if fn, ok := lookupMethod(inst.Class, "__contains__"); ok {
			res, err := m.callMethod(fn, inst, []object.Object{inst, item}, nil)
			if err != nil {
				return nil, err
			}
			if res.framePushed {
				return nil, errNeedsTrampoline
			}
			return object.NewBool(object.Truthy(res.value)), nil
		}
	}
	c, ok := container.(object.Container)
	if !ok {
		return nil, object.NewTypeError("argument of type '%s' is not iterable", container.Type())
	}
	return object.NewBool(c.Contains(item)), nil
}

// getItem/setItem/delItem implement IndexRef's delegation to
// __getitem__/__setitem__/__delitem__, per spec §4.2.
func (m *machine) getItem(obj, key object.Object) (object.Object, error) {
	switch container := obj.(type) {
	case *object.List:
		if sl, ok := key.(*object.Slice); ok {
			start, stop, step := sl.Resolve(len(container.Items))
			return sliceList(container.Items, start, stop, step), nil
		}
		idx, err := indexOf(key)
		if err != nil {
			return nil, err
		}
		v, ok := container.At(idx)
		if !ok {
			return nil, object.NewIndexError("list index out of range")
		}
		return v, nil
	case *object.Tuple:
		idx, err := indexOf(key)
		if err != nil {
			return nil, err
		}
		v, ok := container.At(idx)
		if !ok {
			return nil, object.NewIndexError("tuple index out of range")
		}
		return v, nil
	case *object.Str:
		if sl, ok := key.(*object.Slice); ok {
			start, stop, _ := sl.Resolve(container.Len())
			return container.Slice(start, stop), nil
		}
		idx, err := indexOf(key)
		if err != nil {
			return nil, err
		}
		v, ok := container.At(idx)
		if !ok {
			return nil, object.NewIndexError("string index out of range")
		}
		return v, nil
	case *object.Dict:
		v, ok, err := container.Get(key)
		if err != nil {
			return nil, object.NewTypeError("%v", err)
		}
		if !ok {
			return nil, object.NewKeyError("%s", key.Repr())
		}
		return v, nil
	case *object.Instance:
		if fn, ok := lookupMethod(container.Class, "__getitem__"); ok {
			res, err := m.callMethod(fn, container, []object.Object{container, key}, nil)
			if err != nil {
				return nil, err
			}
			if res.framePushed {
				return nil, errNeedsTrampoline
			}
			return res.value, nil
		}
	}
	return nil, object.NewTypeError("'%s' object is not subscriptable", obj.Type())
}

func (m *machine) setItem(obj, key, value object.Object) error {
	switch container := obj.(type) {
	case *object.List:
		idx, err := indexOf(key)
		if err != nil {
			return err
		}
		if !container.SetAt(idx, value) {
			return object.NewIndexError("list assignment index out of range")
		}
		return nil
	case *object.Dict:
		return container.Set(key, value)
	case *object.Instance:
		if fn, ok := lookupMethod(container.Class, "__setitem__"); ok {
			res, err := m.callMethod(fn, container, []object.Object{container, key, value}, nil)
			if err != nil {
				return err
			}
			if res.framePushed {
				return errNeedsTrampoline
			}
			return nil
		}
	}
	return object.NewTypeError("'%s' object does not support item assignment", obj.Type())
}

func (m *machine) delItem(obj, key object.Object) error {
	switch container := obj.(type) {
	case *object.Dict:
		ok, err := container.Delete(key)
		if err != nil {
			return object.NewTypeError("%v", err)
		}
		if !ok {
			return object.NewKeyError("%s", key.Repr())
		}
		return nil
	case *object.Instance:
		if fn, ok := lookupMethod(container.Class, "__delitem__"); ok {
			res, err := m.callMethod(fn, container, []object.Object{container, key}, nil)
			if err != nil {
				return err
			}
			if res.framePushed {
				return errNeedsTrampoline
			}
			return nil
		}
	}
	return object.NewTypeError("'%s' object does not support item deletion", obj.Type())
}

func indexOf(key object.Object) (int, error) {
	i, ok := key.(*object.Int)
	if !ok {
		return 0, object.NewTypeError("indices must be integers, not %s", key.Type())
	}
	return int(i.Value()), nil
}

func sliceList(items []object.Object, start, stop, step int) *object.List {
	var out []object.Object
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, items[i])
		}
	} else if step < 0 {
		for i := start; i > stop; i += step {
			out = append(out, items[i])
		}
	}
	return object.NewList(out)
}
