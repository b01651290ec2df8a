package object

// NoneValue is the unique value of type NoneType, analogous to null.
type NoneValue struct{}

func (NoneValue) Type() Type   { return NONE }
func (NoneValue) Str() string  { return "None" }
func (NoneValue) Repr() string { return "None" }

// None is the sole instance of NoneValue.
var None = NoneValue{}

// EllipsisValue is the unique value of type ellipsis, used as a slice
// placeholder and a "not yet implemented" marker.
type EllipsisValue struct{}

func (EllipsisValue) Type() Type   { return ELLIPSIS }
func (EllipsisValue) Str() string  { return "Ellipsis" }
func (EllipsisValue) Repr() string { return "Ellipsis" }

// Ellipsis is the sole instance of EllipsisValue.
var Ellipsis = EllipsisValue{}

// Bool wraps a Go bool. True and False below are the only two instances
// ever constructed; NewBool returns one of them rather than allocating.
type Bool bool

func (b Bool) Type() Type  { return BOOL }
func (b Bool) Str() string { return b.Repr() }
func (b Bool) Repr() string {
	if b {
		return "True"
	}
	return "False"
}
func (b Bool) HashKey() any { return bool(b) }

// True and False are the two singleton boolean values.
var (
	True  = Bool(true)
	False = Bool(false)
)

// NewBool returns the canonical True or False singleton for v.
func NewBool(v bool) Bool {
	if v {
		return True
	}
	return False
}
