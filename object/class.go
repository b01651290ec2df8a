package object

import "fmt"

// Class is a type object: spec §3's "attribute bag containing __name__,
// __base__ ... and members." Base is nil exactly at the root of the chain
// (the sentinel spec §4.4 calls "None" terminated); Attribs holds the
// class's own methods, looked up by the MRO walk in GetAttr.
type Class struct {
	Name    string
	Base    *Class
	Attribs map[string]Object
}

// NewClass registers a new type under name as given. Per spec §4.4's
// STORE_FUNCTION/BUILD_CLASS note and the original interpreter's
// new_user_type_object, the VM's BUILD_CLASS passes the qualified name
// "<module>.<name>" when the defining module has a name.
func NewClass(name string, base *Class) *Class {
	return &Class{Name: name, Base: base, Attribs: make(map[string]Object)}
}

func (c *Class) Type() Type   { return CLASS }
func (c *Class) Str() string  { return fmt.Sprintf("<class '%s'>", c.Name) }
func (c *Class) Repr() string { return c.Str() }
func (c *Class) callableMarker() {}

// IsSubclass reports whether c is other, or a descendant of other along the
// __base__ chain.
func (c *Class) IsSubclass(other *Class) bool {
	for cur := c; cur != nil; cur = cur.Base {
		if cur == other {
			return true
		}
	}
	return false
}

// Instance is an object whose type is a user Class. Per spec §3, there is
// no separate class/instance split beyond this: Attribs holds per-instance
// data, while Class.Attribs holds methods shared across all instances.
type Instance struct {
	Class   *Class
	Attribs map[string]Object
}

// NewInstance allocates a bare instance of cls with no attributes set; the
// caller (the VM's callClass, CALL's "construct an Instance" case) is responsible for
// invoking __init__ afterward.
func NewInstance(cls *Class) *Instance {
	return &Instance{Class: cls, Attribs: make(map[string]Object)}
}

func (i *Instance) Type() Type   { return Type(i.Class.Name) }
func (i *Instance) Str() string  { return fmt.Sprintf("<%s object>", i.Class.Name) }
func (i *Instance) Repr() string { return i.Str() }

// Super is the proxy produced by a `super()` call: attribute lookup on it
// starts one hop above the receiver's __base__ chain rather than at the
// receiver's own type, so an overriding method can reach the shadowed
// parent implementation. Depth tracks how many supers deep this proxy sits,
// since `super(super(x))` must walk past that many extra hops (spec §9
// Open Question / Design Notes: nested super is supported).
type Super struct {
	Receiver Object
	Depth    int
}

func NewSuper(receiver Object, depth int) *Super {
	if s, ok := receiver.(*Super); ok {
		return &Super{Receiver: s.Receiver, Depth: s.Depth + depth + 1}
	}
	return &Super{Receiver: receiver, Depth: depth}
}

func (s *Super) Type() Type   { return SUPER }
func (s *Super) Str() string  { return "<super>" }
func (s *Super) Repr() string { return s.Str() }

// Resolve walks down through nested supers to find the real receiver and
// the total depth to skip when starting the MRO search, per spec §4.4 step
// 1.
func (s *Super) Resolve() (receiver Object, depth int) {
	return s.Receiver, s.Depth
}
