package vm

import (
	"github.com/dusklang/dusk/object"
)

// iterState is the stack-resident value GET_ITER pushes and FOR_ITER
// repeatedly peeks: an iterator paired with the reference FOR_ITER rebinds
// on each step (spec §4.5: "iterators carry a single writable reference
// (var) set by GET_ITER").
type iterState struct {
	iter   object.Iterator
	target Reference
}

func (s *iterState) Type() object.Type { return object.ITERATOR }
func (s *iterState) Str() string       { return "iterator" }
func (s *iterState) Repr() string      { return s.Str() }

// sliceIterator walks a pre-materialized slice of values, used for Tuple,
// Dict (keys), and Set, none of which expose their own Iterator the way
// List/Range/Str do.
type sliceIterator struct {
	items []object.Object
	pos   int
}

func (it *sliceIterator) Type() object.Type { return object.ITERATOR }
func (it *sliceIterator) Str() string       { return "iterator" }
func (it *sliceIterator) Repr() string      { return it.Str() }

func (it *sliceIterator) HasNext() bool { return it.pos < len(it.items) }

func (it *sliceIterator) Next() (object.Object, bool) {
	if it.pos >= len(it.items) {
		return nil, false
	}
	v := it.items[it.pos]
	it.pos++
	return v, true
}

// instanceIterator adapts a user-defined class implementing has_next/next
// (spec §4.5's iterator protocol) to the object.Iterator interface. Only
// native-function implementations of has_next/next are supported inline;
// a user-function override would itself need the trampoline, which the
// synchronous HasNext/Next signature has no way to request (documented
// limitation, see DESIGN.md).
type instanceIterator struct {
	inst *object.Instance
}

func (it *instanceIterator) Type() object.Type { return object.ITERATOR }
func (it *instanceIterator) Str() string       { return "iterator" }
func (it *instanceIterator) Repr() string      { return it.Str() }

func (it *instanceIterator) HasNext() bool {
	fn, ok := lookupMethod(it.inst.Class, "has_next")
	if !ok {
		return false
	}
	v, err := callImmediate(fn, []object.Object{it.inst})
	if err != nil {
		return false
	}
	return object.Truthy(v)
}

func (it *instanceIterator) Next() (object.Object, bool) {
	fn, ok := lookupMethod(it.inst.Class, "next")
	if !ok {
		return nil, false
	}
	v, err := callImmediate(fn, []object.Object{it.inst})
	if err != nil {
		return nil, false
	}
	return v, true
}

// iteratorFor implements GET_ITER's "calls __iter__ on top-of-stack": it
// resolves the built-in iterator for list/tuple/str/range/dict/set values
// directly, and for a user Instance calls its __iter__ method (expected to
// return either the instance itself, when it implements has_next/next, or
// another iterable).
func (m *machine) iteratorFor(v object.Object) (object.Iterator, error) {
	switch val := v.(type) {
	case *object.List:
		return object.NewListIterator(val), nil
	case *object.Tuple:
		items := make([]object.Object, len(val.Items))
		copy(items, val.Items)
		return &sliceIterator{items: items}, nil
	case *object.Str:
		return object.NewStringIterator(val), nil
	case *object.Range:
		return val.Iter(), nil
	case *object.Dict:
		return &sliceIterator{items: val.Keys()}, nil
	case *object.Set:
		return &sliceIterator{items: val.Items()}, nil
	case object.Iterator:
		return val, nil
	case *object.Instance:
		if fn, ok := lookupMethod(val.Class, "__iter__"); ok {
			res, err := callImmediate(fn, []object.Object{val})
			if err != nil {
				return nil, err
			}
			if it, ok := res.(object.Iterator); ok {
				return it, nil
			}
			if resInst, ok := res.(*object.Instance); ok {
				return &instanceIterator{inst: resInst}, nil
			}
		}
		if _, ok := lookupMethod(val.Class, "has_next"); ok {
			return &instanceIterator{inst: val}, nil
		}
		return nil, object.NewTypeError("'%s' object is not iterable", val.Type())
	default:
		return nil, object.NewTypeError("'%s' object is not iterable", v.Type())
	}
}
