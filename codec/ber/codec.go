package ber

import (
	"fmt"
	"math"
	"math/big"
	"sort"

	"github.com/JesseCoretta/go-asn1kit/ir"
	"github.com/JesseCoretta/go-asn1kit/value"
)

/*
codec.go walks a compiled ir.Type node against a value.Value to
encode, or against a Cursor to decode, dispatching on ir.Kind the way
spec.md §9's Design Note asks for ("encode/decode are free functions
that dispatch on the variant") instead of the teacher's one-Go-method-
per-primitive-type shape.

INTEGER two's-complement encode/decode is grounded on the teacher's
int.go encodeIntegerContent/decodeIntegerContent; OBJECT IDENTIFIER arc
encoding reuses the same base-128 VLQ as BER tag numbers, grounded on
the teacher's oid.go encodeVLQ; REAL uses a Frexp-based binary encoding
rather than porting every teacher REAL helper verbatim, since
math.Frexp gives us the mantissa/exponent decomposition X.690 §8.5
wants without hand-rolled bit-twiddling.

DER canonicalizations (spec.md §4.4) are applied only when g.Rule ==
DER: SET components sorted by encoded tag, SET OF elements sorted by
encoded octets, and default-valued components are omitted on encode.
BOOLEAN TRUE is encoded as 0xFF under both rules.
*/

// unknownExtensionsField is the reserved SEQUENCE/SET field name under
// which decodeStructured/decodeSet stash trailing TLV octets belonging
// to extension additions this graph has never seen, so a plain
// re-encode of the decoded value reproduces them verbatim (spec.md
// §4.8's extensibility-tolerance requirement). "..." can never collide
// with a real ASN.1 identifier.
const unknownExtensionsField = "..."

// Graph pairs an ir.Arena with the encoding rule in force, so Encode
// and Decode can resolve nested TypeRefs without threading the arena
// through every call.
type Graph struct {
	Arena *ir.Arena
	Rule  Rule
}

func (g *Graph) t(ref ir.TypeRef) *ir.Type { return g.Arena.Get(ref) }

// Encode renders v as t's BER/DER encoding.
func Encode(g *Graph, t *ir.Type, v value.Value) ([]byte, error) {
	c := NewWriteCursor(g.Rule)
	tlv, err := encodeValue(g, t, v)
	if err != nil {
		return nil, err
	}
	c.WriteTLV(tlv)
	return c.Bytes(), nil
}

// Decode parses octets as a value conforming to t.
func Decode(g *Graph, t *ir.Type, octets []byte) (value.Value, error) {
	c := NewCursor(g.Rule, octets)
	tlv, err := c.ReadTLV()
	if err != nil {
		return value.Value{}, err
	}
	return decodeValue(g, t, tlv)
}

func tagOf(t *ir.Type) (class, num int, compound bool) {
	if t.BER != nil {
		class0, num0, compound0, ok := decodeIdentifier(t.BER.TagBytes)
		if ok {
			return class0, num0, compound0
		}
	}
	return int(t.Tag.Class), t.Tag.Number, false
}

func decodeIdentifier(b []byte) (class, tag int, compound, ok bool) {
	c, comp, n, _, err := parseIdentifier(b)
	if err != nil {
		return 0, 0, false, false
	}
	return c, n, comp, true
}

func encodeValue(g *Graph, t *ir.Type, v value.Value) (TLV, error) {
	if t.Kind == ir.KindTaggedAlias {
		inner := g.t(t.Aliased)
		tlv, err := encodeValue(g, inner, v)
		if err != nil {
			return TLV{}, err
		}
		return wrapTag(t, tlv), nil
	}

	if t.Kind == ir.KindChoice {
		// CHOICE has no envelope of its own (X.680 §29): the wire
		// identifier is whichever alternative (or preserved extension
		// TLV) got selected, already framed by encodeChoice.
		return encodeUntaggedChoice(g, t, v)
	}

	content, compound, err := encodeContent(g, t, v)
	if err != nil {
		return TLV{}, err
	}
	class, num, tagCompound := tagOf(t)
	if t.BER == nil {
		tagCompound = compound
	} else {
		tagCompound = t.BER.Compound
	}
	return TLV{Class: class, Tag: num, Compound: tagCompound, Value: content, Length: len(content)}, nil
}

func wrapTag(t *ir.Type, inner TLV) TLV {
	if !t.Tag.Explicit {
		class, num, _ := tagOf(t)
		inner.Class, inner.Tag = class, num
		return inner
	}
	c := NewWriteCursor(BER)
	c.WriteTLV(inner)
	class, num, _ := tagOf(t)
	return TLV{Class: class, Tag: num, Compound: true, Value: c.Bytes(), Length: len(c.Bytes())}
}

func encodeContent(g *Graph, t *ir.Type, v value.Value) ([]byte, bool, error) {
	switch t.Kind {
	case ir.KindBoolean:
		if v.Bool() {
			if g.Rule == DER {
				return []byte{0xff}, false, nil
			}
			return []byte{0xff}, false, nil
		}
		return []byte{0x00}, false, nil

	case ir.KindInteger, ir.KindEnumerated:
		if err := checkConstraint(t, v); err != nil {
			return nil, false, err
		}
		return encodeIntegerContent(v.Int()), false, nil

	case ir.KindReal:
		return encodeReal(v.Float()), false, nil

	case ir.KindNull:
		return nil, false, nil

	case ir.KindOctetString:
		if err := checkConstraint(t, v); err != nil {
			return nil, false, err
		}
		return v.Bytes(), false, nil

	case ir.KindCharString:
		if err := checkConstraint(t, v); err != nil {
			return nil, false, err
		}
		return []byte(v.Text()), false, nil

	case ir.KindBitString:
		bs := v.BitString()
		unused := (8 - bs.Bits%8) % 8
		out := make([]byte, 0, 1+len(bs.Bytes))
		out = append(out, byte(unused))
		out = append(out, bs.Bytes...)
		return out, false, nil

	case ir.KindOID:
		return encodeOID(v.Text()), false, nil

	case ir.KindRelativeOID:
		return encodeRelativeOID(v.Text()), false, nil

	case ir.KindUTCTime, ir.KindGeneralizedTime:
		return []byte(v.Text()), false, nil

	case ir.KindSequence, ir.KindSet:
		return encodeStructured(g, t, v)

	case ir.KindSequenceOf, ir.KindSetOf:
		return encodeList(g, t, v)

	case ir.KindChoice:
		return encodeChoice(g, t, v)

	case ir.KindAny:
		return v.Opaque(), false, nil
	}
	return nil, false, fmt.Errorf("ber: unsupported kind %v", t.Kind)
}

func checkConstraint(t *ir.Type, v value.Value) error {
	if t.Constraints == nil {
		return nil
	}
	return t.Constraints.Check(v)
}

func encodeStructured(g *Graph, t *ir.Type, v value.Value) ([]byte, bool, error) {
	type enc struct {
		tlv  TLV
		name string
	}
	var parts []enc
	for _, comp := range t.Components {
		isExtension := t.Extensible && comp.ExtGroup >= 0
		fv, ok := v.Field(comp.Name)
		if !ok {
			if comp.Default != nil {
				if g.Rule == DER {
					continue // DER omits default-valued components entirely
				}
				fv = *comp.Default
			} else if comp.Optional || isExtension {
				continue // extension additions are implicitly optional (X.680 §25.2)
			} else {
				return nil, false, fmt.Errorf("ber: missing mandatory component %q", comp.Name)
			}
		} else if comp.Default != nil && value.Equal(fv, *comp.Default) && g.Rule == DER {
			continue
		}

		ct := g.t(comp.Type)
		tlv, err := encodeValueTagged(g, ct, comp.Tag, fv)
		if err != nil {
			return nil, false, err
		}
		parts = append(parts, enc{tlv: tlv, name: comp.Name})
	}

	if t.Kind == ir.KindSet && g.Rule == DER {
		sort.SliceStable(parts, func(i, j int) bool {
			return tlvSortKey(parts[i].tlv) < tlvSortKey(parts[j].tlv)
		})
	}

	wc := NewWriteCursor(g.Rule)
	for _, p := range parts {
		wc.WriteTLV(p.tlv)
	}
	if t.Extensible {
		if blob, ok := v.Field(unknownExtensionsField); ok {
			wc.Append(blob.Opaque()...)
		}
	}
	return wc.Bytes(), true, nil
}

// encodeValueTagged encodes a component whose effective tag may have
// been overridden by AUTOMATIC/EXPLICIT/IMPLICIT resolution
// (ir.Component.Tag), independent of its declared ir.Type's own tag.
func encodeValueTagged(g *Graph, t *ir.Type, tag ir.TagSpec, v value.Value) (TLV, error) {
	if t.Kind == ir.KindChoice && !tag.Explicit && tag.Number == 0 && tag.Class == ir.ClassUniversal {
		return encodeUntaggedChoice(g, t, v)
	}
	content, compound, err := encodeContent(g, t, v)
	if err != nil {
		return TLV{}, err
	}
	class, num := int(tag.Class), tag.Number
	if tag.Number == 0 && tag.Class == ir.ClassUniversal {
		class, num, _ = tagOf(t)
	}
	if tag.Explicit {
		inner := TLV{Class: int(ir.ClassUniversal), Tag: universalTagOf(t), Compound: isCompoundKind(t.Kind), Value: content}
		wc := NewWriteCursor(g.Rule)
		wc.WriteTLV(inner)
		return TLV{Class: class, Tag: num, Compound: true, Value: wc.Bytes(), Length: len(wc.Bytes())}, nil
	}
	return TLV{Class: class, Tag: num, Compound: compound || isCompoundKind(t.Kind), Value: content, Length: len(content)}, nil
}

func universalTagOf(t *ir.Type) int {
	class, num, _ := tagOf(t)
	if class == int(ir.ClassUniversal) {
		return num
	}
	return num
}

func isCompoundKind(k ir.Kind) bool {
	switch k {
	case ir.KindSequence, ir.KindSet, ir.KindSequenceOf, ir.KindSetOf, ir.KindChoice:
		return true
	}
	return false
}

func tlvSortKey(t TLV) string {
	c := NewWriteCursor(BER)
	c.WriteTLV(t)
	return string(c.Bytes())
}

func encodeList(g *Graph, t *ir.Type, v value.Value) ([]byte, bool, error) {
	if err := checkConstraint(t, v); err != nil {
		return nil, false, err
	}
	elemT := g.t(t.Element)
	var encoded [][]byte
	for _, ev := range v.List() {
		tlv, err := encodeValue(g, elemT, ev)
		if err != nil {
			return nil, false, err
		}
		wc := NewWriteCursor(g.Rule)
		wc.WriteTLV(tlv)
		encoded = append(encoded, wc.Bytes())
	}
	if t.Kind == ir.KindSetOf && g.Rule == DER {
		sort.Slice(encoded, func(i, j int) bool { return string(encoded[i]) < string(encoded[j]) })
	}
	var out []byte
	for _, e := range encoded {
		out = append(out, e...)
	}
	return out, true, nil
}

func encodeChoice(g *Graph, t *ir.Type, v value.Value) ([]byte, bool, error) {
	ch := v.Choice()
	if ch == nil {
		return nil, false, fmt.Errorf("ber: CHOICE value has no selected alternative")
	}
	if ch.Alternative == unknownExtensionsField {
		if !t.Extensible {
			return nil, false, fmt.Errorf("ber: preserved unknown CHOICE alternative requires an extensible type")
		}
		return ch.Inner.Opaque(), true, nil
	}
	for _, comp := range t.Components {
		if comp.Name != ch.Alternative {
			continue
		}
		ct := g.t(comp.Type)
		tlv, err := encodeValueTagged(g, ct, comp.Tag, ch.Inner)
		if err != nil {
			return nil, false, err
		}
		wc := NewWriteCursor(g.Rule)
		wc.WriteTLV(tlv)
		return wc.Bytes(), true, nil
	}
	return nil, false, fmt.Errorf("ber: unknown CHOICE alternative %q", ch.Alternative)
}

// encodeUntaggedChoice encodes a CHOICE value into the plain TLV struct
// callers elsewhere expect, by re-parsing encodeChoice's already-framed
// bytes rather than wrapping them in a second identifier octet (a CHOICE
// carries no tag of its own when untagged).
func encodeUntaggedChoice(g *Graph, t *ir.Type, v value.Value) (TLV, error) {
	content, _, err := encodeContent(g, t, v)
	if err != nil {
		return TLV{}, err
	}
	cur := NewCursor(g.Rule, content)
	return cur.ReadTLV()
}

func decodeValue(g *Graph, t *ir.Type, tlv TLV) (value.Value, error) {
	if t.Kind == ir.KindTaggedAlias {
		inner := g.t(t.Aliased)
		return decodeValue(g, inner, tlv)
	}

	switch t.Kind {
	case ir.KindBoolean:
		return value.Bool(len(tlv.Value) > 0 && tlv.Value[0] != 0x00), nil

	case ir.KindInteger, ir.KindEnumerated:
		n := decodeIntegerContent(tlv.Value)
		v := value.BigInt(n)
		if err := checkConstraint(t, v); err != nil {
			return value.Value{}, err
		}
		return v, nil

	case ir.KindReal:
		return value.Float(decodeReal(tlv.Value)), nil

	case ir.KindNull:
		return value.Null(), nil

	case ir.KindOctetString:
		v := value.Bytes(tlv.Value)
		if err := checkConstraint(t, v); err != nil {
			return value.Value{}, err
		}
		return v, nil

	case ir.KindCharString:
		v := value.Text(string(tlv.Value))
		if err := checkConstraint(t, v); err != nil {
			return value.Value{}, err
		}
		return v, nil

	case ir.KindBitString:
		if len(tlv.Value) == 0 {
			return value.Bits(nil, 0), nil
		}
		unused := int(tlv.Value[0])
		payload := tlv.Value[1:]
		bits := len(payload)*8 - unused
		return value.Bits(payload, bits), nil

	case ir.KindOID:
		return value.Text(decodeOID(tlv.Value)), nil

	case ir.KindRelativeOID:
		return value.Text(decodeRelativeOID(tlv.Value)), nil

	case ir.KindUTCTime, ir.KindGeneralizedTime:
		return value.Text(string(tlv.Value)), nil

	case ir.KindSequence, ir.KindSet:
		return decodeStructured(g, t, tlv)

	case ir.KindSequenceOf, ir.KindSetOf:
		return decodeList(g, t, tlv)

	case ir.KindChoice:
		return decodeChoice(g, t, tlv)

	case ir.KindAny:
		return value.Opaque(tlv.Value), nil
	}
	return value.Value{}, fmt.Errorf("ber: unsupported kind %v", t.Kind)
}

func decodeStructured(g *Graph, t *ir.Type, tlv TLV) (value.Value, error) {
	if t.Kind == ir.KindSet {
		return decodeSet(g, t, tlv)
	}

	cur := NewCursor(g.Rule, tlv.Value)
	var fields []value.Field
	for _, comp := range t.Components {
		isExtension := t.Extensible && comp.ExtGroup >= 0
		if isExtension {
			continue // matched by tag below, not positionally
		}
		if !cur.HasMore() {
			if comp.Optional || comp.Default != nil {
				continue
			}
			return value.Value{}, fmt.Errorf("ber: missing mandatory component %q", comp.Name)
		}
		inner, err := cur.ReadTLV()
		if err != nil {
			return value.Value{}, err
		}
		ct := g.t(comp.Type)
		fv, err := decodeValueTagged(g, ct, comp.Tag, inner)
		if err != nil {
			return value.Value{}, err
		}
		fields = append(fields, value.Field{Name: comp.Name, Value: fv})
	}

	if t.Extensible {
		// Extension additions follow the last root component in
		// declaration order (X.680 §25), but a decoder must tolerate
		// unrecognized future additions interleaved among the ones it
		// knows, so match whatever TLVs remain by tag rather than by
		// position (mirrors decodeSet below).
		var tlvs []TLV
		for cur.HasMore() {
			inner, err := cur.ReadTLV()
			if err != nil {
				return value.Value{}, err
			}
			tlvs = append(tlvs, inner)
		}
		used := make([]bool, len(tlvs))
		for _, comp := range t.Components {
			if comp.ExtGroup < 0 {
				continue
			}
			ct := g.t(comp.Type)
			class, num := componentTag(ct, comp.Tag)
			idx := -1
			for i, inner := range tlvs {
				if !used[i] && inner.Class == class && inner.Tag == num {
					idx = i
					break
				}
			}
			if idx == -1 {
				continue // extension additions are implicitly optional
			}
			used[idx] = true
			fv, err := decodeValueTagged(g, ct, comp.Tag, tlvs[idx])
			if err != nil {
				return value.Value{}, err
			}
			fields = append(fields, value.Field{Name: comp.Name, Value: fv})
		}
		var blob []byte
		for i, inner := range tlvs {
			if used[i] {
				continue
			}
			wc := NewWriteCursor(g.Rule)
			wc.WriteTLV(inner)
			blob = append(blob, wc.Bytes()...)
		}
		if blob != nil {
			fields = append(fields, value.Field{Name: unknownExtensionsField, Value: value.Opaque(blob)})
		}
	}
	return value.Map(fields...), nil
}

// decodeSet reads every encoded TLV up front and matches each to its
// declared component by tag rather than by wire position, since DER
// canonically re-sorts SET components by encoded tag on encode
// (encodeStructured above) and BER never guarantees declaration order
// either (X.690 §8.12.2: "the order of data values is not significant").
func decodeSet(g *Graph, t *ir.Type, tlv TLV) (value.Value, error) {
	cur := NewCursor(g.Rule, tlv.Value)
	var tlvs []TLV
	for cur.HasMore() {
		inner, err := cur.ReadTLV()
		if err != nil {
			return value.Value{}, err
		}
		tlvs = append(tlvs, inner)
	}

	used := make([]bool, len(tlvs))
	fields := make([]value.Field, 0, len(t.Components))
	for _, comp := range t.Components {
		isExtension := t.Extensible && comp.ExtGroup >= 0
		ct := g.t(comp.Type)
		class, num := componentTag(ct, comp.Tag)

		idx := -1
		for i, inner := range tlvs {
			if !used[i] && inner.Class == class && inner.Tag == num {
				idx = i
				break
			}
		}
		if idx == -1 {
			if comp.Optional || comp.Default != nil || isExtension {
				continue
			}
			return value.Value{}, fmt.Errorf("ber: missing mandatory component %q", comp.Name)
		}
		used[idx] = true
		fv, err := decodeValueTagged(g, ct, comp.Tag, tlvs[idx])
		if err != nil {
			return value.Value{}, err
		}
		fields = append(fields, value.Field{Name: comp.Name, Value: fv})
	}

	if t.Extensible {
		var blob []byte
		for i, inner := range tlvs {
			if used[i] {
				continue
			}
			wc := NewWriteCursor(g.Rule)
			wc.WriteTLV(inner)
			blob = append(blob, wc.Bytes()...)
		}
		if blob != nil {
			fields = append(fields, value.Field{Name: unknownExtensionsField, Value: value.Opaque(blob)})
		}
	}
	return value.Map(fields...), nil
}

// componentTag returns the effective wire (class, number) a component
// is expected to carry, the same resolution decodeChoice already
// performs: an explicitly resolved Tag overrides the declared type's
// own universal tag.
func componentTag(ct *ir.Type, tag ir.TagSpec) (class, num int) {
	class, num, _ = tagOf(ct)
	if tag.Number != 0 || tag.Class != ir.ClassUniversal {
		class, num = int(tag.Class), tag.Number
	}
	return class, num
}

func decodeValueTagged(g *Graph, t *ir.Type, tag ir.TagSpec, tlv TLV) (value.Value, error) {
	if tag.Explicit {
		inner := NewCursor(g.Rule, tlv.Value)
		innerTLV, err := inner.ReadTLV()
		if err != nil {
			return value.Value{}, err
		}
		return decodeValue(g, t, innerTLV)
	}
	return decodeValue(g, t, tlv)
}

func decodeList(g *Graph, t *ir.Type, tlv TLV) (value.Value, error) {
	elemT := g.t(t.Element)
	cur := NewCursor(g.Rule, tlv.Value)
	var items []value.Value
	for cur.HasMore() {
		inner, err := cur.ReadTLV()
		if err != nil {
			return value.Value{}, err
		}
		v, err := decodeValue(g, elemT, inner)
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, v)
	}
	v := value.List(items...)
	if err := checkConstraint(t, v); err != nil {
		return value.Value{}, err
	}
	return v, nil
}

func decodeChoice(g *Graph, t *ir.Type, tlv TLV) (value.Value, error) {
	for _, comp := range t.Components {
		ct := g.t(comp.Type)
		class, num, _ := tagOf(ct)
		if comp.Tag.Number != 0 || comp.Tag.Class != ir.ClassUniversal {
			class, num = int(comp.Tag.Class), comp.Tag.Number
		}
		if tlv.Class == class && tlv.Tag == num {
			inner, err := decodeValueTagged(g, ct, comp.Tag, tlv)
			if err != nil {
				return value.Value{}, err
			}
			return value.Tagged(comp.Name, inner), nil
		}
	}
	if t.Extensible {
		// An extension alternative this graph has never seen: preserve
		// the full TLV octets so a plain re-encode reproduces them.
		wc := NewWriteCursor(g.Rule)
		wc.WriteTLV(tlv)
		return value.Tagged(unknownExtensionsField, value.Opaque(wc.Bytes())), nil
	}
	return value.Value{}, fmt.Errorf("ber: no CHOICE alternative matches tag [%d,%d]", tlv.Class, tlv.Tag)
}

// encodeIntegerContent is the minimal-length two's-complement encoding
// of an arbitrary-precision integer, grounded on the teacher's int.go
// encodeIntegerContent.
func encodeIntegerContent(n *big.Int) []byte {
	if n.Sign() == 0 {
		return []byte{0x00}
	}
	if n.Sign() > 0 {
		b := n.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0x00}, b...)
		}
		return b
	}
	// negative: two's complement over the minimal byte length
	abs := new(big.Int).Abs(n)
	nbytes := (abs.BitLen() + 7) / 8

	// n must be chosen so that the value fits: i >= -(1 << (8*nbytes - 1)).
	min := new(big.Int).Lsh(big.NewInt(1), uint(8*nbytes-1))
	min.Neg(min)
	if n.Cmp(min) < 0 {
		nbytes++
	}

	m := new(big.Int).Lsh(big.NewInt(1), uint(nbytes*8))
	m.Add(m, n)
	b := m.Bytes()
	for len(b) < nbytes {
		b = append([]byte{0x00}, b...)
	}
	return b
}

func decodeIntegerContent(enc []byte) *big.Int {
	if len(enc) == 0 {
		return big.NewInt(0)
	}
	n := new(big.Int).SetBytes(enc)
	if enc[0]&0x80 != 0 {
		m := new(big.Int).Lsh(big.NewInt(1), uint(len(enc)*8))
		n.Sub(n, m)
	}
	return n
}

// encodeOID / encodeRelativeOID / decodeOID / decodeRelativeOID
// implement the per-arc base-128 VLQ encoding X.690 §8.19 describes,
// grounded on the teacher's oid.go encodeVLQ (same bit layout as the
// BER high-tag-number form, reused here via cursor.go's encodeBase128;
// decodeArcs below is the inverse).
func encodeOID(dotted string) []byte {
	arcs := splitDotted(dotted)
	if len(arcs) < 2 {
		return nil
	}
	first := arcs[0]*40 + arcs[1]
	out := encodeBase128(first)
	for _, a := range arcs[2:] {
		out = append(out, encodeBase128(a)...)
	}
	return out
}

func encodeRelativeOID(dotted string) []byte {
	arcs := splitDotted(dotted)
	var out []byte
	for _, a := range arcs {
		out = append(out, encodeBase128(a)...)
	}
	return out
}

func decodeOID(b []byte) string {
	arcs := decodeArcs(b)
	if len(arcs) == 0 {
		return ""
	}
	first, second := arcs[0]/40, arcs[0]%40
	if arcs[0] >= 80 {
		first, second = 2, arcs[0]-80
	}
	out := fmt.Sprintf("%d.%d", first, second)
	for _, a := range arcs[1:] {
		out += fmt.Sprintf(".%d", a)
	}
	return out
}

func decodeRelativeOID(b []byte) string {
	arcs := decodeArcs(b)
	out := ""
	for i, a := range arcs {
		if i > 0 {
			out += "."
		}
		out += fmt.Sprintf("%d", a)
	}
	return out
}

func decodeArcs(b []byte) []int {
	var arcs []int
	v := 0
	for _, bb := range b {
		v = (v << 7) | int(bb&0x7f)
		if bb&0x80 == 0 {
			arcs = append(arcs, v)
			v = 0
		}
	}
	return arcs
}

func splitDotted(s string) []int {
	var out []int
	n := 0
	has := false
	for _, c := range s {
		if c == '.' {
			out = append(out, n)
			n, has = 0, false
			continue
		}
		n = n*10 + int(c-'0')
		has = true
	}
	if has {
		out = append(out, n)
	}
	return out
}

// encodeReal / decodeReal implement X.690 §8.5's binary REAL encoding
// via math.Frexp's mantissa/exponent decomposition rather than porting
// the teacher's hand-rolled real.go bit-twiddling helpers verbatim.
func encodeReal(f float64) []byte {
	if f == 0 {
		return nil
	}
	if math.IsInf(f, 1) {
		return []byte{0x40}
	}
	if math.IsInf(f, -1) {
		return []byte{0x41}
	}
	if math.IsNaN(f) {
		return []byte{0x42}
	}

	neg := f < 0
	if neg {
		f = -f
	}
	frac, exp := math.Frexp(f) // f == frac * 2^exp, 0.5 <= frac < 1
	mantissa := int64(frac * (1 << 53))
	exp -= 53
	for mantissa != 0 && mantissa%2 == 0 {
		mantissa /= 2
		exp++
	}

	expBytes := encodeRealExponent(exp)
	first := byte(0x80) // binary encoding, base 2
	if neg {
		first |= 0x40
	}
	lenExp := len(expBytes)
	if lenExp <= 3 {
		first |= byte(lenExp - 1)
	} else {
		first |= 0x03
	}

	out := []byte{first}
	if lenExp > 3 {
		out = append(out, byte(lenExp))
	}
	out = append(out, expBytes...)
	out = append(out, big.NewInt(mantissa).Bytes()...)
	return out
}

func encodeRealExponent(exp int) []byte {
	return encodeIntegerContent(big.NewInt(int64(exp)))
}

func decodeReal(b []byte) float64 {
	if len(b) == 0 {
		return 0
	}
	switch b[0] {
	case 0x40:
		return math.Inf(1)
	case 0x41:
		return math.Inf(-1)
	case 0x42:
		return math.NaN()
	}
	first := b[0]
	if first&0x80 == 0 {
		return 0 // decimal (ISO 6093) form not implemented; not produced by encodeReal
	}
	neg := first&0x40 != 0
	expLenForm := first & 0x03
	i := 1
	var expLen int
	if expLenForm == 0x03 {
		expLen = int(b[i])
		i++
	} else {
		expLen = int(expLenForm) + 1
	}
	exp := int(decodeIntegerContent(b[i : i+expLen]).Int64())
	i += expLen
	mantissa := new(big.Int).SetBytes(b[i:]).Int64()
	f := float64(mantissa) * math.Pow(2, float64(exp))
	if neg {
		f = -f
	}
	return f
}
