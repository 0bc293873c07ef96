package gser

import (
	"testing"

	"github.com/JesseCoretta/go-asn1kit/ir"
	"github.com/JesseCoretta/go-asn1kit/value"
)

func TestEncodeBoolean(t *testing.T) {
	a := ir.NewArena()
	ref := a.New(&ir.Type{Kind: ir.KindBoolean})
	typ := a.Get(ref)
	g := &Graph{Arena: a}

	for _, tc := range []struct {
		in   bool
		want string
	}{{true, "TRUE"}, {false, "FALSE"}} {
		enc, err := Encode(g, typ, value.Bool(tc.in))
		if err != nil {
			t.Fatalf("Encode(%v) error: %v", tc.in, err)
		}
		if string(enc) != tc.want {
			t.Errorf("Encode(%v) = %s, want %s", tc.in, enc, tc.want)
		}
	}
}

func TestEncodeInteger(t *testing.T) {
	a := ir.NewArena()
	ref := a.New(&ir.Type{Kind: ir.KindInteger})
	typ := a.Get(ref)
	g := &Graph{Arena: a}

	enc, err := Encode(g, typ, value.Int(-42))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if string(enc) != "-42" {
		t.Errorf("Encode() = %s, want -42", enc)
	}
}

func TestEncodeOctetStringHexQuoted(t *testing.T) {
	a := ir.NewArena()
	ref := a.New(&ir.Type{Kind: ir.KindOctetString})
	typ := a.Get(ref)
	g := &Graph{Arena: a}

	enc, err := Encode(g, typ, value.Bytes([]byte{0xDE, 0xAD, 0xBE, 0xEF}))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if string(enc) != "'DEADBEEF'H" {
		t.Errorf("Encode() = %s, want 'DEADBEEF'H", enc)
	}
}

func TestEncodeBitString(t *testing.T) {
	a := ir.NewArena()
	ref := a.New(&ir.Type{Kind: ir.KindBitString})
	typ := a.Get(ref)
	g := &Graph{Arena: a}

	enc, err := Encode(g, typ, value.Bits([]byte{0b10100000}, 4))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if string(enc) != "'1010'B" {
		t.Errorf("Encode() = %s, want '1010'B", enc)
	}
}

func TestEncodeQuotedStringWithEmbeddedQuote(t *testing.T) {
	a := ir.NewArena()
	ref := a.New(&ir.Type{Kind: ir.KindCharString})
	typ := a.Get(ref)
	g := &Graph{Arena: a}

	enc, err := Encode(g, typ, value.Text(`he said "hi"`))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	want := `"he said ""hi"""`
	if string(enc) != want {
		t.Errorf("Encode() = %s, want %s", enc, want)
	}
}

func TestEncodeSequence(t *testing.T) {
	a := ir.NewArena()
	intRef := a.New(&ir.Type{Kind: ir.KindInteger})
	boolRef := a.New(&ir.Type{Kind: ir.KindBoolean})
	seqRef := a.New(&ir.Type{
		Kind: ir.KindSequence,
		Components: []ir.Component{
			{Name: "id", Type: intRef},
			{Name: "flag", Type: boolRef},
		},
	})
	seqType := a.Get(seqRef)
	g := &Graph{Arena: a}

	v := value.Map(
		value.Field{Name: "id", Value: value.Int(7)},
		value.Field{Name: "flag", Value: value.Bool(true)},
	)
	enc, err := Encode(g, seqType, v)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	want := "{ id 7, flag TRUE }"
	if string(enc) != want {
		t.Errorf("Encode() = %s, want %s", enc, want)
	}
}

func TestEncodeSequenceOf(t *testing.T) {
	a := ir.NewArena()
	intRef := a.New(&ir.Type{Kind: ir.KindInteger})
	listRef := a.New(&ir.Type{Kind: ir.KindSequenceOf, Element: intRef})
	listType := a.Get(listRef)
	g := &Graph{Arena: a}

	enc, err := Encode(g, listType, value.List(value.Int(1), value.Int(2)))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	want := "{ 1, 2 }"
	if string(enc) != want {
		t.Errorf("Encode() = %s, want %s", enc, want)
	}
}

func TestEncodeChoice(t *testing.T) {
	a := ir.NewArena()
	intRef := a.New(&ir.Type{Kind: ir.KindInteger})
	choiceRef := a.New(&ir.Type{
		Kind: ir.KindChoice,
		Components: []ir.Component{
			{Name: "asInt", Type: intRef},
		},
	})
	choiceType := a.Get(choiceRef)
	g := &Graph{Arena: a}

	enc, err := Encode(g, choiceType, value.Tagged("asInt", value.Int(3)))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if string(enc) != "asInt 3" {
		t.Errorf("Encode() = %s, want \"asInt 3\"", enc)
	}
}
