package object

// Truthy implements the asBool coercion supplemented from
// original_source/src/vm.h: None is false, a Bool is itself, numeric types
// are nonzero, anything with a length is nonzero-length, everything else is
// true.
func Truthy(v Object) bool {
	switch val := v.(type) {
	case NoneValue:
		return false
	case Bool:
		return bool(val)
	case *Int:
		return val.Value() != 0
	case *Float:
		return val.Value() != 0
	case Lengthable:
		return val.Len() != 0
	default:
		return true
	}
}
