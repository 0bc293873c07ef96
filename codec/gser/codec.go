/*
Package gser implements RFC 3641 Generic String Encoding Rules
(spec.md §4.6, §6.3): an output-only textual rendering, hand-rolled the
way the teacher hand-rolls every primitive's own String() method
(bool.go, oct.go, bs.go each format their own GSER-ish text form) rather
than going through encoding/json or encoding/xml, since GSER's grammar
(bare TRUE/FALSE, quoted C-strings, 'hh'H octet strings, braced
SEQUENCE/SET component lists) has no structural overlap with either.
*/
package gser

import (
	"fmt"
	"strings"

	"github.com/JesseCoretta/go-asn1kit/ir"
	"github.com/JesseCoretta/go-asn1kit/value"
)

type Graph struct {
	Arena *ir.Arena
}

func (g *Graph) t(ref ir.TypeRef) *ir.Type { return g.Arena.Get(ref) }

// Encode renders v against t as a GSER string. GSER has no defined
// decode direction in this toolkit (spec.md §6.3), so there is no
// Decode function in this package.
func Encode(g *Graph, t *ir.Type, v value.Value) ([]byte, error) {
	var b strings.Builder
	if err := write(&b, g, t, v); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func write(b *strings.Builder, g *Graph, t *ir.Type, v value.Value) error {
	if t.Kind == ir.KindTaggedAlias {
		return write(b, g, g.t(t.Aliased), v)
	}
	switch t.Kind {
	case ir.KindBoolean:
		if v.Bool() {
			b.WriteString("TRUE")
		} else {
			b.WriteString("FALSE")
		}
		return nil
	case ir.KindInteger, ir.KindEnumerated:
		b.WriteString(v.Int().String())
		return nil
	case ir.KindReal:
		fmt.Fprintf(b, "%g", v.Float())
		return nil
	case ir.KindNull:
		b.WriteString("NULL")
		return nil
	case ir.KindOctetString:
		writeHexQuoted(b, v.Bytes())
		return nil
	case ir.KindBitString:
		writeBitString(b, v.BitString())
		return nil
	case ir.KindOID, ir.KindRelativeOID:
		b.WriteString(v.Text())
		return nil
	case ir.KindCharString, ir.KindUTCTime, ir.KindGeneralizedTime:
		writeQuoted(b, v.Text())
		return nil
	case ir.KindSequence, ir.KindSet:
		return writeStruct(b, g, t, v)
	case ir.KindSequenceOf, ir.KindSetOf:
		return writeList(b, g, t, v)
	case ir.KindChoice:
		return writeChoice(b, g, t, v)
	case ir.KindAny:
		writeHexQuoted(b, v.Opaque())
		return nil
	}
	return fmt.Errorf("gser: unsupported kind %v", t.Kind)
}

func writeStruct(b *strings.Builder, g *Graph, t *ir.Type, v value.Value) error {
	b.WriteString("{ ")
	first := true
	for _, comp := range t.Components {
		fv, ok := v.Field(comp.Name)
		if !ok {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(comp.Name)
		b.WriteString(" ")
		if err := write(b, g, g.t(comp.Type), fv); err != nil {
			return err
		}
	}
	b.WriteString(" }")
	return nil
}

func writeList(b *strings.Builder, g *Graph, t *ir.Type, v value.Value) error {
	b.WriteString("{ ")
	elemT := g.t(t.Element)
	items := v.List()
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		if err := write(b, g, elemT, item); err != nil {
			return err
		}
	}
	b.WriteString(" }")
	return nil
}

func writeChoice(b *strings.Builder, g *Graph, t *ir.Type, v value.Value) error {
	ch := v.Choice()
	if ch == nil {
		return fmt.Errorf("gser: CHOICE value has no selected alternative")
	}
	for _, comp := range t.Components {
		if comp.Name == ch.Alternative {
			b.WriteString(ch.Alternative)
			b.WriteString(" ")
			return write(b, g, g.t(comp.Type), ch.Inner)
		}
	}
	return fmt.Errorf("gser: unknown CHOICE alternative %q", ch.Alternative)
}

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' {
			b.WriteString(`""`)
		} else {
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}

func writeHexQuoted(b *strings.Builder, octets []byte) {
	const digits = "0123456789ABCDEF"
	b.WriteByte('\'')
	for _, bb := range octets {
		b.WriteByte(digits[bb>>4])
		b.WriteByte(digits[bb&0xf])
	}
	b.WriteString("'H")
}

func writeBitString(b *strings.Builder, bs value.BitString) {
	b.WriteByte('\'')
	for i := 0; i < bs.Bits; i++ {
		byteIdx, bitIdx := i/8, i%8
		if (bs.Bytes[byteIdx]>>uint(7-bitIdx))&1 != 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	b.WriteString("'B")
}
