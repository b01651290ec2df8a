package object

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Str is an immutable UTF-8 string. Indexing and length operate on Unicode
// codepoints, not bytes, matching the original interpreter's `Str::u8_index`
// / `Str::u8_length` convention rather than Go's byte-oriented string type.
type Str struct {
	value  string
	runes  []rune // lazily populated on first codepoint access
}

func NewStr(v string) *Str {
	return &Str{value: v}
}

func (s *Str) Type() Type   { return STR }
func (s *Str) Value() string { return s.value }
func (s *Str) Str() string  { return s.value }
func (s *Str) Repr() string { return strconv_quote(s.value) }
func (s *Str) HashKey() any { return s.value }
func (s *Str) Len() int     { return utf8.RuneCountInString(s.value) }

func (s *Str) runeSlice() []rune {
	if s.runes == nil {
		s.runes = []rune(s.value)
	}
	return s.runes
}

// At returns the codepoint at the given 0-based index as a single-rune Str,
// supporting Python-style negative indices.
func (s *Str) At(index int) (*Str, bool) {
	runes := s.runeSlice()
	n := len(runes)
	if index < 0 {
		index += n
	}
	if index < 0 || index >= n {
		return nil, false
	}
	return NewStr(string(runes[index])), true
}

// Slice returns the substring [start:stop) by codepoint index.
func (s *Str) Slice(start, stop int) *Str {
	runes := s.runeSlice()
	n := len(runes)
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop > n {
		stop = n
	}
	if start >= stop {
		return NewStr("")
	}
	return NewStr(string(runes[start:stop]))
}

func (s *Str) Contains(item Object) bool {
	other, ok := item.(*Str)
	if !ok {
		return false
	}
	return strings.Contains(s.value, other.value)
}

func strconv_quote(s string) string {
	return fmt.Sprintf("%q", s)
}
