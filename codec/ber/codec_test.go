package ber

import (
	"math/big"
	"testing"

	"github.com/JesseCoretta/go-asn1kit/ir"
	"github.com/JesseCoretta/go-asn1kit/value"
)

func newArenaGraph(rule Rule) (*ir.Arena, *Graph) {
	a := ir.NewArena()
	return a, &Graph{Arena: a, Rule: rule}
}

func finalize(a *ir.Arena, t *ir.Type) *ir.Type {
	ref := a.New(t)
	got := a.Get(ref)
	// mirror ir/tagging.go's attachBERInfo for a standalone node, since
	// these tests build Type graphs directly rather than through the
	// full Compile pipeline.
	class, num := int(ir.ClassUniversal), universalTagForTest(got.Kind)
	compound := isCompoundKind(got.Kind)
	got.BER = &ir.BERInfo{TagBytes: ir.EncodeIdentifierOctets(class, num, compound), Compound: compound}
	return got
}

func universalTagForTest(k ir.Kind) int {
	switch k {
	case ir.KindBoolean:
		return 1
	case ir.KindInteger:
		return 2
	case ir.KindOctetString:
		return 4
	case ir.KindNull:
		return 5
	case ir.KindSequence, ir.KindSequenceOf:
		return 16
	}
	return 0
}

func TestEncodeDecodeBoolean(t *testing.T) {
	a, g := newArenaGraph(DER)
	typ := finalize(a, &ir.Type{Kind: ir.KindBoolean})

	for _, b := range []bool{true, false} {
		enc, err := Encode(g, typ, value.Bool(b))
		if err != nil {
			t.Fatalf("Encode(%v) error: %v", b, err)
		}
		dec, err := Decode(g, typ, enc)
		if err != nil {
			t.Fatalf("Decode() error: %v", err)
		}
		if dec.Bool() != b {
			t.Errorf("round-trip BOOLEAN = %v, want %v", dec.Bool(), b)
		}
	}
	encTrue, _ := Encode(g, typ, value.Bool(true))
	if len(encTrue) != 3 || encTrue[2] != 0xFF {
		t.Errorf("DER TRUE encoding = % X, want content byte 0xFF", encTrue)
	}
}

func TestEncodeDecodeInteger(t *testing.T) {
	a, g := newArenaGraph(DER)
	typ := finalize(a, &ir.Type{Kind: ir.KindInteger})

	for _, n := range []int64{0, 1, -1, 127, 128, -128, -129, 1000000} {
		enc, err := Encode(g, typ, value.Int(n))
		if err != nil {
			t.Fatalf("Encode(%d) error: %v", n, err)
		}
		dec, err := Decode(g, typ, enc)
		if err != nil {
			t.Fatalf("Decode() error: %v", err)
		}
		if dec.Int64() != n {
			t.Errorf("round-trip INTEGER = %d, want %d", dec.Int64(), n)
		}
	}
}

func TestEncodeIntegerMinimalAtPowerOfTwoBoundary(t *testing.T) {
	a, g := newArenaGraph(DER)
	typ := finalize(a, &ir.Type{Kind: ir.KindInteger})

	cases := []struct {
		n    int64
		want []byte
	}{
		{-128, []byte{0x02, 0x01, 0x80}},
		{-32768, []byte{0x02, 0x02, 0x80, 0x00}},
		{-8388608, []byte{0x02, 0x03, 0x80, 0x00, 0x00}},     // -2^23
		{-2147483648, []byte{0x02, 0x04, 0x80, 0x00, 0x00, 0x00}}, // INT32_MIN
	}
	for _, tc := range cases {
		enc, err := Encode(g, typ, value.Int(tc.n))
		if err != nil {
			t.Fatalf("Encode(%d) error: %v", tc.n, err)
		}
		if string(enc) != string(tc.want) {
			t.Errorf("Encode(%d) = % X, want % X", tc.n, enc, tc.want)
		}
		dec, err := Decode(g, typ, enc)
		if err != nil {
			t.Fatalf("Decode() error: %v", err)
		}
		if dec.Int64() != tc.n {
			t.Errorf("round-trip INTEGER = %d, want %d", dec.Int64(), tc.n)
		}
	}
}

func TestEncodeDecodeOctetString(t *testing.T) {
	a, g := newArenaGraph(BER)
	typ := finalize(a, &ir.Type{Kind: ir.KindOctetString})

	enc, err := Encode(g, typ, value.Bytes([]byte("hello")))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	dec, err := Decode(g, typ, enc)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if string(dec.Bytes()) != "hello" {
		t.Errorf("round-trip OCTET STRING = %q, want %q", dec.Bytes(), "hello")
	}
}

func TestEncodeDecodeSequence(t *testing.T) {
	a := ir.NewArena()
	g := &Graph{Arena: a, Rule: DER}

	intRef := a.New(&ir.Type{Kind: ir.KindInteger})
	a.Get(intRef).BER = &ir.BERInfo{TagBytes: ir.EncodeIdentifierOctets(int(ir.ClassUniversal), 2, false)}
	boolRef := a.New(&ir.Type{Kind: ir.KindBoolean})
	a.Get(boolRef).BER = &ir.BERInfo{TagBytes: ir.EncodeIdentifierOctets(int(ir.ClassUniversal), 1, false)}

	seqRef := a.New(&ir.Type{
		Kind: ir.KindSequence,
		Components: []ir.Component{
			{Name: "id", Type: intRef},
			{Name: "flag", Type: boolRef},
		},
	})
	seqType := a.Get(seqRef)
	seqType.BER = &ir.BERInfo{TagBytes: ir.EncodeIdentifierOctets(int(ir.ClassUniversal), 16, true), Compound: true}

	v := value.Map(
		value.Field{Name: "id", Value: value.Int(7)},
		value.Field{Name: "flag", Value: value.Bool(true)},
	)

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

func TestEncodeDecodeSetCanonicalOrderDiffersFromDeclared(t *testing.T) {
	a := ir.NewArena()
	g := &Graph{Arena: a, Rule: DER}

	// Declared member order is id (tag 2) then flag (tag 1), the
	// reverse of DER's canonical by-tag order, so a decoder that
	// assumes wire order mirrors declaration order gets this wrong.
	intRef := a.New(&ir.Type{Kind: ir.KindInteger})
	a.Get(intRef).BER = &ir.BERInfo{TagBytes: ir.EncodeIdentifierOctets(int(ir.ClassUniversal), 2, false)}
	boolRef := a.New(&ir.Type{Kind: ir.KindBoolean})
	a.Get(boolRef).BER = &ir.BERInfo{TagBytes: ir.EncodeIdentifierOctets(int(ir.ClassUniversal), 1, false)}

	setRef := a.New(&ir.Type{
		Kind: ir.KindSet,
		Components: []ir.Component{
			{Name: "id", Type: intRef},
			{Name: "flag", Type: boolRef},
		},
	})
	setType := a.Get(setRef)
	setType.BER = &ir.BERInfo{TagBytes: ir.EncodeIdentifierOctets(int(ir.ClassUniversal), 17, true), Compound: true}

	v := value.Map(
		value.Field{Name: "id", Value: value.Int(7)},
		value.Field{Name: "flag", Value: value.Bool(true)},
	)

	enc, err := Encode(g, setType, v)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	// DER canonically sorts SET components by encoded tag, so the
	// BOOLEAN (universal tag 1) must precede the INTEGER (tag 2) on
	// the wire despite "id" being declared first.
	if enc[2] != 0x01 {
		t.Fatalf("Encode() wire order = % X, want BOOLEAN (tag 1) first", enc)
	}

	dec, err := Decode(g, setType, enc)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !value.Equal(v, dec) {
		t.Errorf("round-trip SET = %+v, want %+v", dec, v)
	}
}

func TestEncodeDecodeExtensibleSequence(t *testing.T) {
	a := ir.NewArena()
	g := &Graph{Arena: a, Rule: DER}

	intRef := a.New(&ir.Type{Kind: ir.KindInteger})
	a.Get(intRef).BER = &ir.BERInfo{TagBytes: ir.EncodeIdentifierOctets(int(ir.ClassUniversal), 2, false)}
	boolRef := a.New(&ir.Type{Kind: ir.KindBoolean})
	a.Get(boolRef).BER = &ir.BERInfo{TagBytes: ir.EncodeIdentifierOctets(int(ir.ClassUniversal), 1, false)}

	seqRef := a.New(&ir.Type{
		Kind: ir.KindSequence,
		Components: []ir.Component{
			{Name: "id", Type: intRef, ExtGroup: -1},
			{Name: "flag", Type: boolRef, ExtGroup: 0},
		},
		Extensible: true,
	})
	seqType := a.Get(seqRef)
	seqType.BER = &ir.BERInfo{TagBytes: ir.EncodeIdentifierOctets(int(ir.ClassUniversal), 16, true), Compound: true}

	// Extension addition present: round-trips as an ordinary field since
	// BER's self-describing TLVs need no presence bitmap.
	withExt := value.Map(
		value.Field{Name: "id", Value: value.Int(7)},
		value.Field{Name: "flag", Value: value.Bool(true)},
	)
	enc, err := Encode(g, seqType, withExt)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	dec, err := Decode(g, seqType, enc)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !value.Equal(withExt, dec) {
		t.Errorf("round-trip extensible SEQUENCE = %+v, want %+v", dec, withExt)
	}

	// Extension addition absent: implicitly optional per X.680 §25.2.
	withoutExt := value.Map(value.Field{Name: "id", Value: value.Int(7)})
	enc, err = Encode(g, seqType, withoutExt)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	dec, err = Decode(g, seqType, enc)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !value.Equal(withoutExt, dec) {
		t.Errorf("round-trip extensible SEQUENCE (no ext) = %+v, want %+v", dec, withoutExt)
	}

	// A future extension addition this graph doesn't know about: an
	// unrecognized trailing OCTET STRING TLV must survive a decode then
	// re-encode verbatim via the unknown-extensions blob.
	wc := NewWriteCursor(DER)
	wc.WriteTLV(TLV{Class: int(ir.ClassUniversal), Tag: 2, Value: encodeIntegerContent(big.NewInt(7))})
	unknownTLV := TLV{Class: int(ir.ClassUniversal), Tag: 4, Value: []byte("future")}
	wcUnknown := NewWriteCursor(DER)
	wcUnknown.WriteTLV(unknownTLV)
	wire := append(append([]byte{}, wc.Bytes()...), wcUnknown.Bytes()...)
	outer := NewWriteCursor(DER)
	outer.WriteTLV(TLV{Class: int(ir.ClassUniversal), Tag: 16, Compound: true, Value: wire})

	dec, err = Decode(g, seqType, outer.Bytes())
	if err != nil {
		t.Fatalf("Decode() with unknown extension error: %v", err)
	}
	if _, ok := dec.Field(unknownExtensionsField); !ok {
		t.Fatalf("Decode() with unknown extension did not preserve it under %q: %+v", unknownExtensionsField, dec)
	}
	reenc, err := Encode(g, seqType, dec)
	if err != nil {
		t.Fatalf("re-encode of preserved-extension value error: %v", err)
	}
	if string(reenc) != string(outer.Bytes()) {
		t.Errorf("re-encode with preserved unknown extension = % X, want % X", reenc, outer.Bytes())
	}
}

func TestEncodeDecodeExtensibleChoicePreservesUnknownAlternative(t *testing.T) {
	a := ir.NewArena()
	g := &Graph{Arena: a, Rule: DER}

	intRef := a.New(&ir.Type{Kind: ir.KindInteger})
	a.Get(intRef).BER = &ir.BERInfo{TagBytes: ir.EncodeIdentifierOctets(int(ir.ClassUniversal), 2, false)}

	choiceRef := a.New(&ir.Type{
		Kind: ir.KindChoice,
		Components: []ir.Component{
			{Name: "id", Type: intRef, ExtGroup: -1},
		},
		Extensible: true,
	})
	choiceType := a.Get(choiceRef)

	// Known alternative round-trips normally.
	known := value.Tagged("id", value.Int(42))
	enc, err := Encode(g, choiceType, known)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	dec, err := Decode(g, choiceType, enc)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !value.Equal(known, dec) {
		t.Errorf("round-trip CHOICE = %+v, want %+v", dec, known)
	}

	// A future CHOICE alternative this graph doesn't know (BOOLEAN, tag
	// 1): decode must preserve it, and re-encoding the preserved value
	// must reproduce the same wire bytes.
	wc := NewWriteCursor(DER)
	wc.WriteTLV(TLV{Class: int(ir.ClassUniversal), Tag: 1, Value: []byte{0xFF}})
	unknownWire := wc.Bytes()

	dec, err = Decode(g, choiceType, unknownWire)
	if err != nil {
		t.Fatalf("Decode() of unknown CHOICE alternative error: %v", err)
	}
	ch := dec.Choice()
	if ch == nil || ch.Alternative != unknownExtensionsField {
		t.Fatalf("Decode() of unknown CHOICE alternative = %+v, want alternative %q", dec, unknownExtensionsField)
	}
	reenc, err := Encode(g, choiceType, dec)
	if err != nil {
		t.Fatalf("re-encode of preserved CHOICE alternative error: %v", err)
	}
	if string(reenc) != string(unknownWire) {
		t.Errorf("re-encode of preserved CHOICE alternative = % X, want % X", reenc, unknownWire)
	}
}

func TestDERRejectsIndefiniteLength(t *testing.T) {
	c := NewCursor(DER, []byte{0x30, 0x80, 0x00, 0x00})
	if _, err := c.ReadTLV(); err == nil {
		t.Errorf("ReadTLV() under DER should reject indefinite length")
	}
}

func TestBERAcceptsIndefiniteLength(t *testing.T) {
	c := NewCursor(BER, []byte{0x30, 0x80, 0x02, 0x01, 0x05, 0x00, 0x00})
	tlv, err := c.ReadTLV()
	if err != nil {
		t.Fatalf("ReadTLV() error: %v", err)
	}
	if !tlv.Compound || tlv.Class != 0 || tlv.Tag != 16 {
		t.Errorf("ReadTLV() = %+v, want compound SEQUENCE", tlv)
	}
}

func TestOIDRoundTrip(t *testing.T) {
	enc := encodeOID("2.100.3")
	got := decodeOID(enc)
	if got != "2.100.3" {
		t.Errorf("OID round-trip = %q, want %q", got, "2.100.3")
	}
}

func TestRealRoundTrip(t *testing.T) {
	for _, f := range []float64{0, 1.5, -1.5, 3.14159} {
		enc := encodeReal(f)
		got := decodeReal(enc)
		if got != f {
			t.Errorf("REAL round-trip(%v) = %v", f, got)
		}
	}
}
