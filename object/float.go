package object

import "strconv"

// Float is a 64-bit IEEE-754 floating point value.
type Float struct {
	value float64
}

func (f *Float) Type() Type   { return FLOAT }
func (f *Float) Value() float64 { return f.value }
func (f *Float) Str() string  { return strconv.FormatFloat(f.value, 'g', -1, 64) }
func (f *Float) Repr() string { return f.Str() }
func (f *Float) HashKey() any { return f.value }

// NewFloat constructs a Float. Unlike Int there is no interning pool:
// floats are not cached by the original interpreter either.
func NewFloat(v float64) *Float {
	return &Float{value: v}
}
