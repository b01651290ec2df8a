package object

// Iterator is the runtime iterator protocol (spec §4.5): has_next reports
// whether another value is available without consuming it, and next
// produces the value and advances. Both RangeIterator and StringIterator
// implement this directly; a user-defined class becomes an Iterator by
// having its `__iter__`, `has_next`, and `next` methods delegated to by the
// VM's GET_ITER/FOR_ITER handling (see the vm package's iteratorFor), not by
// implementing this Go interface.
type Iterator interface {
	Object
	HasNext() bool
	Next() (Object, bool)
}

// StringIterator walks a Str's codepoints one at a time, so `for c in s`
// yields single-character strings rather than byte values.
type StringIterator struct {
	s   *Str
	pos int
}

// NewStringIterator returns a fresh iterator over s's codepoints.
func NewStringIterator(s *Str) *StringIterator {
	return &StringIterator{s: s}
}

func (it *StringIterator) Type() Type   { return ITERATOR }
func (it *StringIterator) Str() string  { return "str_iterator" }
func (it *StringIterator) Repr() string { return it.Str() }

func (it *StringIterator) HasNext() bool {
	return it.pos < len(it.s.runeSlice())
}

func (it *StringIterator) Next() (Object, bool) {
	runes := it.s.runeSlice()
	if it.pos >= len(runes) {
		return nil, false
	}
	r := runes[it.pos]
	it.pos++
	return NewStr(string(r)), true
}

// ListIterator walks a List's elements, snapshotting length at creation so
// appends during iteration do not extend the loop (matches Python-like
// list iteration semantics, a reasonable default the distilled spec leaves
// unspecified).
type ListIterator struct {
	items []Object
	pos   int
}

func NewListIterator(l *List) *ListIterator {
	return &ListIterator{items: l.Items}
}

func (it *ListIterator) Type() Type   { return ITERATOR }
func (it *ListIterator) Str() string  { return "list_iterator" }
func (it *ListIterator) Repr() string { return it.Str() }

func (it *ListIterator) HasNext() bool { return it.pos < len(it.items) }

func (it *ListIterator) Next() (Object, bool) {
	if it.pos >= len(it.items) {
		return nil, false
	}
	v := it.items[it.pos]
	it.pos++
	return v, true
}
