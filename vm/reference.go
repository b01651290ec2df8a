package vm

import (
	"github.com/dusklang/dusk/bytecode"
	"github.com/dusklang/dusk/object"
)

// Reference is the l-value protocol of spec §4.2: an assignment target or
// iteration variable materialized as a first-class value the interpreter
// can push, pop, and pass around before finally getting, setting, or
// deleting through it.
//
// Reference values satisfy object.Object (so they share the same stack as
// plain values) but are never something a script can observe directly: the
// interpreter dereferences every operand before it reaches a builtin,
// user function, or container, except the handful of opcodes that work
// with references explicitly (STORE_REF, DELETE_REF, FOR_ITER's loop
// variable binding, smart tuple packing).
type Reference interface {
	object.Object
	Get() (object.Object, error)
	Set(value object.Object) error
	Del() error
}

// Deref returns v.Get() if v is a Reference, otherwise v unchanged. This is
// the "dereference" operation spec §4.2 requires before consuming an
// operand as a value.
func Deref(v object.Object) (object.Object, error) {
	if ref, ok := v.(Reference); ok {
		return ref.Get()
	}
	return v, nil
}

// NameRef resolves a name against a frame's locals, then its module's
// globals, then the VM's builtins module. scope comes straight from the
// bytecode.Name entry LOAD_NAME_REF/STORE_NAME_REF decode from co_names.
type NameRef struct {
	name  string
	scope bytecode.Scope
	f     *frame
	m     *machine
}

func newNameRef(name string, scope bytecode.Scope, f *frame, m *machine) *NameRef {
	return &NameRef{name: name, scope: scope, f: f, m: m}
}

func (r *NameRef) Type() object.Type { return "name_ref" }
func (r *NameRef) Str() string       { return "<name_ref " + r.name + ">" }
func (r *NameRef) Repr() string      { return r.Str() }

func (r *NameRef) Get() (object.Object, error) {
	if v, ok := r.f.locals[r.name]; ok {
		return v, nil
	}
	if v, ok := r.f.module.GetAttr(r.name); ok {
		return v, nil
	}
	if v, ok := r.m.builtins.GetAttr(r.name); ok {
		return v, nil
	}
	return nil, object.NewNameError("name '%s' is not defined", r.name)
}

func (r *NameRef) Set(value object.Object) error {
	if r.scope == bytecode.ScopeLocal {
		r.f.locals[r.name] = value
		return nil
	}
	if _, ok := r.f.locals[r.name]; ok {
		r.f.locals[r.name] = value
		return nil
	}
	return r.f.module.SetAttr(r.name, value)
}

func (r *NameRef) Del() error {
	if _, ok := r.f.locals[r.name]; ok {
		delete(r.f.locals, r.name)
		return nil
	}
	if _, ok := r.f.module.GetAttr(r.name); ok {
		return object.NewTypeError("cannot delete attribute '%s'", r.name)
	}
	return object.NewNameError("name '%s' is not defined", r.name)
}

// AttrRef targets an attribute of an object via the object protocol's
// GetAttr/SetAttr machinery (spec §4.4).
type AttrRef struct {
	obj  object.Object
	name string
}

func newAttrRef(obj object.Object, name string) *AttrRef {
	return &AttrRef{obj: obj, name: name}
}

func (r *AttrRef) Type() object.Type { return "attr_ref" }
func (r *AttrRef) Str() string       { return "<attr_ref ." + r.name + ">" }
func (r *AttrRef) Repr() string      { return r.Str() }

func (r *AttrRef) Get() (object.Object, error) {
	if v, ok := object.GetAttr(r.obj, r.name); ok {
		return v, nil
	}
	return nil, object.NewAttributeError("'%s' object has no attribute '%s'", r.obj.Type(), r.name)
}

func (r *AttrRef) Set(value object.Object) error {
	return object.SetAttr(r.obj, r.name, value)
}

func (r *AttrRef) Del() error {
	return object.NewTypeError("cannot delete attribute")
}

// IndexRef targets obj[key], delegating to __getitem__/__setitem__/
// __delitem__ via the machine's subscript helpers.
type IndexRef struct {
	obj object.Object
	key object.Object
	m   *machine
}

func newIndexRef(obj, key object.Object, m *machine) *IndexRef {
	return &IndexRef{obj: obj, key: key, m: m}
}

func (r *IndexRef) Type() object.Type { return "index_ref" }
func (r *IndexRef) Str() string       { return "<index_ref>" }
func (r *IndexRef) Repr() string      { return r.Str() }

func (r *IndexRef) Get() (object.Object, error) {
	return r.m.getItem(r.obj, r.key)
}

func (r *IndexRef) Set(value object.Object) error {
	return r.m.setItem(r.obj, r.key, value)
}

func (r *IndexRef) Del() error {
	return r.m.delItem(r.obj, r.key)
}

// TupleRef is an ordered sequence of references, produced by smart tuple
// packing (spec §4.2) when every packed element is itself a reference.
type TupleRef struct {
	refs []Reference
}

func newTupleRef(refs []Reference) *TupleRef {
	return &TupleRef{refs: refs}
}

func (r *TupleRef) Type() object.Type { return "tuple_ref" }
func (r *TupleRef) Str() string       { return "<tuple_ref>" }
func (r *TupleRef) Repr() string      { return r.Str() }

func (r *TupleRef) Get() (object.Object, error) {
	values := make([]object.Object, len(r.refs))
	for i, ref := range r.refs {
		v, err := ref.Get()
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return object.NewTuple(values), nil
}

// Set unpacks a list or tuple of the same length element-wise. Per spec
// §4.2: length mismatches raise ValueError; a non-sequence raises
// TypeError.
func (r *TupleRef) Set(value object.Object) error {
	items, err := sequenceItems(value)
	if err != nil {
		return err
	}
	if len(items) < len(r.refs) {
		return object.NewValueError("not enough values to unpack (expected %d, got %d)", len(r.refs), len(items))
	}
	if len(items) > len(r.refs) {
		return object.NewValueError("too many values to unpack (expected %d)", len(r.refs))
	}
	for i, ref := range r.refs {
		if err := ref.Set(items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *TupleRef) Del() error {
	for _, ref := range r.refs {
		if err := ref.Del(); err != nil {
			return err
		}
	}
	return nil
}

func sequenceItems(value object.Object) ([]object.Object, error) {
	switch v := value.(type) {
	case *object.List:
		return v.Items, nil
	case *object.Tuple:
		return v.Items, nil
	default:
		return nil, object.NewTypeError("cannot unpack non-sequence %s", value.Type())
	}
}
