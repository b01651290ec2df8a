package object

import "strings"

// List is a mutable ordered sequence.
type List struct {
	Items []Object
}

func NewList(items []Object) *List {
	return &List{Items: items}
}

func (l *List) Type() Type { return LIST }
func (l *List) Len() int   { return len(l.Items) }

func (l *List) Str() string  { return l.render() }
func (l *List) Repr() string { return l.render() }

func (l *List) render() string {
	parts := make([]string, len(l.Items))
	for i, item := range l.Items {
		parts[i] = item.Repr()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (l *List) Contains(item Object) bool {
	for _, v := range l.Items {
		if Equal(v, item) {
			return true
		}
	}
	return false
}

// At returns the element at index, supporting negative indices.
func (l *List) At(index int) (Object, bool) {
	n := len(l.Items)
	if index < 0 {
		index += n
	}
	if index < 0 || index >= n {
		return nil, false
	}
	return l.Items[index], true
}

// SetAt assigns the element at index, supporting negative indices.
func (l *List) SetAt(index int, value Object) bool {
	n := len(l.Items)
	if index < 0 {
		index += n
	}
	if index < 0 || index >= n {
		return false
	}
	l.Items[index] = value
	return true
}

func (l *List) Append(item Object) {
	l.Items = append(l.Items, item)
}

// Tuple is an immutable ordered sequence, distinct from List the way the
// reference protocol's "smart tuple packing" (spec §4.2) distinguishes a
// plain multi-value result from a tuple of references.
type Tuple struct {
	Items []Object
}

func NewTuple(items []Object) *Tuple {
	return &Tuple{Items: items}
}

func (t *Tuple) Type() Type { return TUPLE }
func (t *Tuple) Len() int   { return len(t.Items) }

func (t *Tuple) Str() string  { return t.render() }
func (t *Tuple) Repr() string { return t.render() }

func (t *Tuple) render() string {
	parts := make([]string, len(t.Items))
	for i, item := range t.Items {
		parts[i] = item.Repr()
	}
	s := "(" + strings.Join(parts, ", ")
	if len(t.Items) == 1 {
		s += ","
	}
	return s + ")"
}

func (t *Tuple) Contains(item Object) bool {
	for _, v := range t.Items {
		if Equal(v, item) {
			return true
		}
	}
	return false
}

func (t *Tuple) At(index int) (Object, bool) {
	n := len(t.Items)
	if index < 0 {
		index += n
	}
	if index < 0 || index >= n {
		return nil, false
	}
	return t.Items[index], true
}
