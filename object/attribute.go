package object

// classOf returns the Class whose Attribs chain attribute lookup should
// walk for obj: an Instance's own class, or a Class itself (so looking up
// a class attribute, e.g. for a classmethod-style call, walks the class's
// own __base__ chain without requiring an instance).
func classOf(obj Object) *Class {
	switch v := obj.(type) {
	case *Instance:
		return v.Class
	case *Class:
		return v
	default:
		return nil
	}
}

// GetAttr implements the attribute/method resolution algorithm of spec
// §4.4: super-chain unwrapping, instance-attribute shadowing, then an MRO
// walk up the __base__ chain with on-the-fly bound-method wrapping. Module
// and other AttrGetter values (which have no class chain) are consulted
// directly. Reports false if no attribute is found anywhere.
func GetAttr(obj Object, name string) (Object, bool) {
	receiver := obj
	searchClass := classOf(obj)

	if s, ok := obj.(*Super); ok {
		realReceiver, depth := s.Resolve()
		receiver = realReceiver
		searchClass = classOf(realReceiver)
		for i := 0; i <= depth && searchClass != nil; i++ {
			searchClass = searchClass.Base
		}
	} else if inst, ok := obj.(*Instance); ok {
		if v, ok := inst.Attribs[name]; ok {
			return v, true
		}
	} else if searchClass == nil {
		if getter, ok := obj.(AttrGetter); ok {
			return getter.GetAttr(name)
		}
	}

	for cls := searchClass; cls != nil; cls = cls.Base {
		if v, ok := cls.Attribs[name]; ok {
			if callable, ok := v.(Callable); ok {
				return NewBoundMethod(receiver, callable), true
			}
			return v, true
		}
	}
	return nil, false
}

// SetAttr implements attribute assignment: instances and modules hold a
// mutable attribute bag; classes hold their own (used by BUILD_CLASS to
// attach methods); anything else rejects the assignment.
func SetAttr(obj Object, name string, value Object) error {
	switch v := obj.(type) {
	case *Instance:
		v.Attribs[name] = value
		return nil
	case *Class:
		v.Attribs[name] = value
		return nil
	case AttrSetter:
		return v.SetAttr(name, value)
	default:
		return NewAttributeError("'%s' object has no attribute '%s'", obj.Type(), name)
	}
}
