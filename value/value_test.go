package value

import (
	"math/big"
	"testing"
)

func TestConstructorsAndAccessors(t *testing.T) {
	if !Bool(true).Bool() {
		t.Errorf("Bool(true).Bool() = false")
	}
	if Int(42).Int64() != 42 {
		t.Errorf("Int(42).Int64() = %d, want 42", Int(42).Int64())
	}
	if BigInt(big.NewInt(9999)).Int64() != 9999 {
		t.Errorf("BigInt round-trip failed")
	}
	if Float(1.5).Float() != 1.5 {
		t.Errorf("Float(1.5).Float() = %v", Float(1.5).Float())
	}
	if string(Bytes([]byte("hi")).Bytes()) != "hi" {
		t.Errorf("Bytes round-trip failed")
	}
	if Text("hello").Text() != "hello" {
		t.Errorf("Text round-trip failed")
	}
	if string(Opaque([]byte{1, 2, 3}).Opaque()) != "\x01\x02\x03" {
		t.Errorf("Opaque round-trip failed")
	}
}

func TestFieldLookup(t *testing.T) {
	v := Map(Field{Name: "b", Value: Int(2)}, Field{Name: "a", Value: Int(1)})
	if fv, ok := v.Field("a"); !ok || fv.Int64() != 1 {
		t.Errorf("Field(a) = %v, %v", fv, ok)
	}
	if _, ok := v.Field("missing"); ok {
		t.Errorf("Field(missing) unexpectedly found")
	}
	sorted := v.SortedFields()
	if sorted[0].Name != "a" || sorted[1].Name != "b" {
		t.Errorf("SortedFields() = %+v, want a before b", sorted)
	}
}

func TestChoice(t *testing.T) {
	v := Tagged("alt1", Int(7))
	ch := v.Choice()
	if ch == nil || ch.Alternative != "alt1" || ch.Inner.Int64() != 7 {
		t.Errorf("Tagged/Choice round-trip failed: %+v", ch)
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"null", Null(), Null(), true},
		{"bool-eq", Bool(true), Bool(true), true},
		{"bool-ne", Bool(true), Bool(false), false},
		{"int-eq", Int(5), BigInt(big.NewInt(5)), true},
		{"text-ne", Text("a"), Text("b"), false},
		{"list-eq", List(Int(1), Int(2)), List(Int(1), Int(2)), true},
		{"list-ne-len", List(Int(1)), List(Int(1), Int(2)), false},
		{"map-order-insensitive", Map(Field{"a", Int(1)}, Field{"b", Int(2)}), Map(Field{"b", Int(2)}, Field{"a", Int(1)}), true},
		{"choice-eq", Tagged("x", Int(1)), Tagged("x", Int(1)), true},
		{"choice-ne-alt", Tagged("x", Int(1)), Tagged("y", Int(1)), false},
		{"kind-mismatch", Int(1), Text("1"), false},
	}
	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: Equal() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestBitStringEqualIgnoresPadding(t *testing.T) {
	a := Bits([]byte{0xA0}, 4) // 1010 significant, low nibble is padding
	b := Bits([]byte{0xAF}, 4) // same significant bits, differing pad
	if !Equal(a, b) {
		t.Errorf("BIT STRING values with differing pad bits should compare equal")
	}
	c := Bits([]byte{0xB0}, 4)
	if Equal(a, c) {
		t.Errorf("BIT STRING values with differing significant bits should not compare equal")
	}
}

func TestKindString(t *testing.T) {
	if KindInt.String() != "INTEGER" {
		t.Errorf("KindInt.String() = %q", KindInt.String())
	}
	if Kind(255).String() != "UNKNOWN" {
		t.Errorf("unknown Kind.String() = %q, want UNKNOWN", Kind(255).String())
	}
}
