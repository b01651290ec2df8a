package object

// Equal implements value equality for the builtin types, used by list/tuple
// Contains and by COMPARE_OP's ==/!= for builtin values; dict and set keys
// are matched by HashKey instead. User-defined __eq__ overrides
// on Class instances are consulted by the VM's COMPARE_OP handling, not
// here: this is the fallback used when comparing builtin container elements
// outside of an explicit COMPARE_OP dispatch.
func Equal(a, b Object) bool {
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case *Int:
		return av.value == b.(*Int).value
	case *Float:
		return av.value == b.(*Float).value
	case *Str:
		return av.value == b.(*Str).value
	case Bool:
		return av == b.(Bool)
	case NoneValue:
		return true
	case EllipsisValue:
		return true
	case *Tuple:
		bv := b.(*Tuple)
		if len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !Equal(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case *List:
		bv := b.(*List)
		if len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !Equal(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
