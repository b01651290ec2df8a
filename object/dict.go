package object

import (
	"fmt"
	"strings"
)

type dictEntry struct {
	key   Object
	value Object
}

// Dict is an insertion-ordered mapping from hashable keys to values. Keys
// are compared by their Hashable.HashKey(), so two distinct *Int pointers
// holding the same int64 (outside the small-int pool) still collide
// correctly as the same key.
type Dict struct {
	index   map[any]int
	entries []dictEntry
}

func NewDict() *Dict {
	return &Dict{index: make(map[any]int)}
}

func (d *Dict) Type() Type { return DICT }
func (d *Dict) Len() int   { return len(d.entries) }

func (d *Dict) Str() string  { return d.render() }
func (d *Dict) Repr() string { return d.render() }

func (d *Dict) render() string {
	parts := make([]string, len(d.entries))
	for i, e := range d.entries {
		parts[i] = fmt.Sprintf("%s: %s", e.key.Repr(), e.value.Repr())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func hashKeyOf(key Object) (any, error) {
	h, ok := key.(Hashable)
	if !ok {
		return nil, fmt.Errorf("unhashable type: %s", key.Type())
	}
	return h.HashKey(), nil
}

// Get returns the value stored for key, and whether it was present.
func (d *Dict) Get(key Object) (Object, bool, error) {
	hk, err := hashKeyOf(key)
	if err != nil {
		return nil, false, err
	}
	i, ok := d.index[hk]
	if !ok {
		return nil, false, nil
	}
	return d.entries[i].value, true, nil
}

// Set stores value under key, replacing any existing entry for that key
// in place so iteration order reflects first-insertion order.
func (d *Dict) Set(key, value Object) error {
	hk, err := hashKeyOf(key)
	if err != nil {
		return err
	}
	if i, ok := d.index[hk]; ok {
		d.entries[i].value = value
		return nil
	}
	d.index[hk] = len(d.entries)
	d.entries = append(d.entries, dictEntry{key: key, value: value})
	return nil
}

// Delete removes key, reporting whether it was present.
func (d *Dict) Delete(key Object) (bool, error) {
	hk, err := hashKeyOf(key)
	if err != nil {
		return false, err
	}
	i, ok := d.index[hk]
	if !ok {
		return false, nil
	}
	d.entries = append(d.entries[:i], d.entries[i+1:]...)
	delete(d.index, hk)
	for k, idx := range d.index {
		if idx > i {
			d.index[k] = idx - 1
		}
	}
	return true, nil
}

func (d *Dict) Contains(item Object) bool {
	hk, err := hashKeyOf(item)
	if err != nil {
		return false
	}
	_, ok := d.index[hk]
	return ok
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []Object {
	keys := make([]Object, len(d.entries))
	for i, e := range d.entries {
		keys[i] = e.key
	}
	return keys
}

// Values returns the values in insertion order.
func (d *Dict) Values() []Object {
	values := make([]Object, len(d.entries))
	for i, e := range d.entries {
		values[i] = e.value
	}
	return values
}

// Items returns the (key, value) pairs in insertion order.
func (d *Dict) Items() [][2]Object {
	items := make([][2]Object, len(d.entries))
	for i, e := range d.entries {
		items[i] = [2]Object{e.key, e.value}
	}
	return items
}
