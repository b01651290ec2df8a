// Package object defines the dusk value model: the closed set of runtime
// values an interpreter frame can push, pop, store, and pass as arguments.
//
// Every value implements Object. The set of concrete types is closed by
// design (spec §3): None, Ellipsis, Bool, Int, Float, Str, List, Tuple,
// Dict, Set, Range, Slice, Function, NativeFunction, BoundMethod, Module,
// Class, Instance, Super, Error, and the iterator types. Reference values
// (NameRef, AttrRef, IndexRef, TupleRef) are a separate, VM-internal kind of
// stack slot — see package vm — that satisfy Object only so they can share
// the value stack: a reference is something the interpreter dereferences
// before it can reach user code, never a value a script can hold onto.
package object

// Type names a value's runtime type for error messages, isinstance checks,
// and class `__base__` bootstrapping.
type Type string

const (
	NONE            Type = "NoneType"
	ELLIPSIS        Type = "ellipsis"
	BOOL            Type = "bool"
	INT             Type = "int"
	FLOAT           Type = "float"
	STR             Type = "str"
	LIST            Type = "list"
	TUPLE           Type = "tuple"
	DICT            Type = "dict"
	SET             Type = "set"
	RANGE           Type = "range"
	SLICE           Type = "slice"
	FUNCTION        Type = "function"
	NATIVE_FUNCTION Type = "native_function"
	BOUND_METHOD    Type = "bound_method"
	MODULE          Type = "module"
	CLASS           Type = "type"
	SUPER           Type = "super"
	ITERATOR        Type = "iterator"
	ERROR           Type = "error"
)

// Object is implemented by every dusk runtime value.
type Object interface {
	// Type returns the runtime type of the value.
	Type() Type

	// Str returns the value's str() rendering, used by BUILD_STRING/print.
	Str() string

	// Repr returns the value's repr() rendering, used by the REPL and by
	// containers rendering their elements.
	Repr() string
}

// Hashable is implemented by values usable as dict keys or set members.
type Hashable interface {
	HashKey() any
}

// Container is implemented by values CONTAINS_OP can test membership in.
type Container interface {
	Contains(item Object) bool
}

// Lengthable is implemented by values with a __len__, consulted by
// asBool's truthiness fallback.
type Lengthable interface {
	Len() int
}

// AttrGetter is implemented by any value that exposes attributes via
// BUILD_ATTR_REF / LOAD_ATTR: Module and Error. Classes, instances, and
// super proxies are resolved directly in attribute.go.
type AttrGetter interface {
	GetAttr(name string) (Object, bool)
}

// AttrSetter is implemented by values that support STORE_REF targeting an
// AttrRef: Module. Instance and class assignment is handled directly in
// attribute.go; other types raise
// AttributeError on assignment, matching immutable builtins like Int.
type AttrSetter interface {
	SetAttr(name string, value Object) error
}

// Callable is implemented by anything CALL can invoke: Function,
// NativeFunction, BoundMethod, and Class (instantiation).
type Callable interface {
	Object
	callableMarker()
}
