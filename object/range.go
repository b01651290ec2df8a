package object

import "fmt"

// Range is a lazy arithmetic sequence, produced by the `range(...)`
// builtin and consumed by GET_ITER/FOR_ITER.
type Range struct {
	Start, Stop, Step int64
}

func NewRange(start, stop, step int64) *Range {
	if step == 0 {
		step = 1
	}
	return &Range{Start: start, Stop: stop, Step: step}
}

func (r *Range) Type() Type { return RANGE }
func (r *Range) Str() string {
	return fmt.Sprintf("range(%d, %d, %d)", r.Start, r.Stop, r.Step)
}
func (r *Range) Repr() string { return r.Str() }

// Len computes the number of elements without materializing them.
func (r *Range) Len() int {
	if r.Step > 0 {
		if r.Stop <= r.Start {
			return 0
		}
		return int((r.Stop - r.Start + r.Step - 1) / r.Step)
	}
	if r.Step < 0 {
		if r.Stop >= r.Start {
			return 0
		}
		return int((r.Start - r.Stop - r.Step - 1) / -r.Step)
	}
	return 0
}

func (r *Range) Contains(item Object) bool {
	i, ok := item.(*Int)
	if !ok {
		return false
	}
	v := i.Value()
	if r.Step > 0 {
		return v >= r.Start && v < r.Stop && (v-r.Start)%r.Step == 0
	}
	return v <= r.Start && v > r.Stop && (r.Start-v)%(-r.Step) == 0
}

// Iter returns a fresh iterator over this range, implementing the iterator
// protocol's has_next/next pair (spec §4.5).
func (r *Range) Iter() Iterator {
	return &RangeIterator{r: r, cur: r.Start}
}

// RangeIterator walks a Range's values lazily, one step at a time.
type RangeIterator struct {
	r   *Range
	cur int64
}

func (it *RangeIterator) Type() Type  { return ITERATOR }
func (it *RangeIterator) Str() string { return "range_iterator" }
func (it *RangeIterator) Repr() string { return it.Str() }

func (it *RangeIterator) HasNext() bool {
	if it.r.Step > 0 {
		return it.cur < it.r.Stop
	}
	return it.cur > it.r.Stop
}

func (it *RangeIterator) Next() (Object, bool) {
	if !it.HasNext() {
		return nil, false
	}
	v := it.cur
	it.cur += it.r.Step
	return NewInt(v), true
}

// Slice describes a [start:stop:step] descriptor, the BUILD_SLICE result.
// Any of its fields may be None, meaning "use the default" the way Python's
// slice objects work; the Open Question of what default step BUILD_SLICE
// assumes when the step operand is omitted is resolved in favor of 1 (see
// DESIGN.md).
type Slice struct {
	Start, Stop, Step Object
}

func NewSlice(start, stop, step Object) *Slice {
	if step == nil {
		step = None
	}
	return &Slice{Start: start, Stop: stop, Step: step}
}

func (s *Slice) Type() Type  { return SLICE }
func (s *Slice) Str() string { return fmt.Sprintf("slice(%s, %s, %s)", s.Start.Repr(), s.Stop.Repr(), s.Step.Repr()) }
func (s *Slice) Repr() string { return s.Str() }

// Resolve computes concrete [start:stop:step) bounds against a sequence of
// the given length, applying Python-style defaults and negative-index
// wraparound.
func (s *Slice) Resolve(length int) (start, stop, step int) {
	step = 1
	if si, ok := s.Step.(*Int); ok {
		step = int(si.Value())
		if step == 0 {
			step = 1
		}
	}
	if step > 0 {
		start, stop = 0, length
	} else {
		start, stop = length-1, -1
	}
	if si, ok := s.Start.(*Int); ok {
		start = normalizeIndex(int(si.Value()), length)
	}
	if si, ok := s.Stop.(*Int); ok {
		stop = normalizeIndex(int(si.Value()), length)
	}
	return start, stop, step
}

func normalizeIndex(i, length int) int {
	if i < 0 {
		i += length
	}
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}
