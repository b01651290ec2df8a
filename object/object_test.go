package object

import "testing"

func TestSmallIntInterning(t *testing.T) {
	a := NewInt(5)
	b := NewInt(5)
	if a != b {
		t.Fatalf("expected interned pointers to match for small ints")
	}
	big1 := NewInt(1000)
	big2 := NewInt(1000)
	if big1 == big2 {
		t.Fatalf("expected non-interned ints to have distinct pointers")
	}
	if !Equal(big1, big2) {
		t.Fatalf("expected value equality regardless of interning")
	}
}

func TestStrCodepointIndexing(t *testing.T) {
	s := NewStr("héllo")
	if s.Len() != 5 {
		t.Fatalf("expected 5 codepoints, got %d", s.Len())
	}
	c, ok := s.At(1)
	if !ok || c.Str() != "é" {
		t.Fatalf("expected codepoint 1 to be 'é', got %q (ok=%v)", c, ok)
	}
}

func TestClassMROAndSuper(t *testing.T) {
	base := NewClass("B", nil)
	base.Attribs["f"] = NewNativeFunction("f", func(args []Object) (Object, error) {
		return NewInt(1), nil
	})
	derived := NewClass("D", base)

	inst := NewInstance(derived)
	v, ok := GetAttr(inst, "f")
	if !ok {
		t.Fatalf("expected to find inherited method f")
	}
	bm, ok := v.(*BoundMethod)
	if !ok {
		t.Fatalf("expected bound method, got %T", v)
	}
	if bm.Receiver != Object(inst) {
		t.Fatalf("expected bound method receiver to be the instance")
	}

	sup := NewSuper(inst, 0)
	_, ok = GetAttr(sup, "f")
	if !ok {
		t.Fatalf("expected super lookup to find base method")
	}
}

func TestInstanceAttributeShadowing(t *testing.T) {
	cls := NewClass("C", nil)
	cls.Attribs["x"] = NewInt(1)
	inst := NewInstance(cls)
	inst.Attribs["x"] = NewInt(2)

	v, ok := GetAttr(inst, "x")
	if !ok || v.(*Int).Value() != 2 {
		t.Fatalf("expected instance attribute to shadow class attribute")
	}
}
