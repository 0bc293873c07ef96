package jer

import (
	"testing"

	"github.com/JesseCoretta/go-asn1kit/ir"
	"github.com/JesseCoretta/go-asn1kit/value"
)

func TestEncodeDecodeInteger(t *testing.T) {
	a := ir.NewArena()
	ref := a.New(&ir.Type{Kind: ir.KindInteger})
	typ := a.Get(ref)
	g := &Graph{Arena: a}

	enc, err := Encode(g, typ, value.Int(42))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if string(enc) != "42" {
		t.Errorf("Encode() = %s, want 42", enc)
	}
	dec, err := Decode(g, typ, enc)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if dec.Int64() != 42 {
		t.Errorf("round-trip INTEGER = %d, want 42", dec.Int64())
	}
}

func TestEncodeDecodeBoolean(t *testing.T) {
	a := ir.NewArena()
	ref := a.New(&ir.Type{Kind: ir.KindBoolean})
	typ := a.Get(ref)
	g := &Graph{Arena: a}

	enc, err := Encode(g, typ, value.Bool(true))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if string(enc) != "true" {
		t.Errorf("Encode() = %s, want true", enc)
	}
	dec, err := Decode(g, typ, enc)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !dec.Bool() {
		t.Errorf("round-trip BOOLEAN = false, want true")
	}
}

func TestEncodeDecodeOctetStringHex(t *testing.T) {
	a := ir.NewArena()
	ref := a.New(&ir.Type{Kind: ir.KindOctetString})
	typ := a.Get(ref)
	g := &Graph{Arena: a}

	enc, err := Encode(g, typ, value.Bytes([]byte{0xDE, 0xAD}))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if string(enc) != `"DEAD"` {
		t.Errorf("Encode() = %s, want \"DEAD\"", enc)
	}
	dec, err := Decode(g, typ, enc)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if string(dec.Bytes()) != string([]byte{0xDE, 0xAD}) {
		t.Errorf("round-trip OCTET STRING = % X", dec.Bytes())
	}
}

func TestEncodeDecodeSequenceMemberOrder(t *testing.T) {
	a := ir.NewArena()
	intRef := a.New(&ir.Type{Kind: ir.KindInteger})
	boolRef := a.New(&ir.Type{Kind: ir.KindBoolean})

	seqRef := a.New(&ir.Type{
		Kind: ir.KindSequence,
		Components: []ir.Component{
			{Name: "zebra", Type: boolRef},
			{Name: "apple", Type: intRef},
		},
	})
	seqType := a.Get(seqRef)
	g := &Graph{Arena: a}

	v := value.Map(
		value.Field{Name: "zebra", Value: value.Bool(true)},
		value.Field{Name: "apple", Value: value.Int(1)},
	)
	enc, err := Encode(g, seqType, v)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	want := `{"apple":1,"zebra":true}`
	if string(enc) != want {
		t.Errorf("Encode() = %s, want %s (ASCII-ascending member order)", enc, want)
	}
	dec, err := Decode(g, seqType, enc)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !value.Equal(v, dec) {
		t.Errorf("round-trip SEQUENCE = %+v, want %+v", dec, v)
	}
}

func TestEncodeDecodeSequenceOptionalAbsent(t *testing.T) {
	a := ir.NewArena()
	intRef := a.New(&ir.Type{Kind: ir.KindInteger})
	seqRef := a.New(&ir.Type{
		Kind: ir.KindSequence,
		Components: []ir.Component{
			{Name: "mandatory", Type: intRef},
			{Name: "optional", Type: intRef, Optional: true},
		},
	})
	seqType := a.Get(seqRef)
	g := &Graph{Arena: a}

	v := value.Map(value.Field{Name: "mandatory", Value: value.Int(5)})
	enc, err := Encode(g, seqType, v)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	dec, err := Decode(g, seqType, enc)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !value.Equal(v, dec) {
		t.Errorf("round-trip SEQUENCE = %+v, want %+v", dec, v)
	}
}

func TestEncodeDecodeChoice(t *testing.T) {
	a := ir.NewArena()
	intRef := a.New(&ir.Type{Kind: ir.KindInteger})
	boolRef := a.New(&ir.Type{Kind: ir.KindBoolean})
	choiceRef := a.New(&ir.Type{
		Kind: ir.KindChoice,
		Components: []ir.Component{
			{Name: "asInt", Type: intRef},
			{Name: "asBool", Type: boolRef},
		},
	})
	choiceType := a.Get(choiceRef)
	g := &Graph{Arena: a}

	v := value.Tagged("asInt", value.Int(7))
	enc, err := Encode(g, choiceType, v)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if string(enc) != `{"asInt":7}` {
		t.Errorf("Encode() = %s", enc)
	}
	dec, err := Decode(g, choiceType, enc)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !value.Equal(v, dec) {
		t.Errorf("round-trip CHOICE = %+v, want %+v", dec, v)
	}
}

func TestEncodeDecodeSequenceOf(t *testing.T) {
	a := ir.NewArena()
	intRef := a.New(&ir.Type{Kind: ir.KindInteger})
	listRef := a.New(&ir.Type{Kind: ir.KindSequenceOf, Element: intRef})
	listType := a.Get(listRef)
	g := &Graph{Arena: a}

	v := value.List(value.Int(1), value.Int(2), value.Int(3))
	enc, err := Encode(g, listType, v)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if string(enc) != "[1,2,3]" {
		t.Errorf("Encode() = %s, want [1,2,3]", enc)
	}
	dec, err := Decode(g, listType, enc)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !value.Equal(v, dec) {
		t.Errorf("round-trip SEQUENCE OF = %+v, want %+v", dec, v)
	}
}

func TestEncodeIndent(t *testing.T) {
	a := ir.NewArena()
	ref := a.New(&ir.Type{Kind: ir.KindInteger})
	typ := a.Get(ref)
	g := &Graph{Arena: a, Indent: "  "}

	enc, err := Encode(g, typ, value.Int(1))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if string(enc) != "1" {
		t.Errorf("Encode() with indent on a scalar = %s, want 1", enc)
	}
}
