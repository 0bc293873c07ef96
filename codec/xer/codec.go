/*
Package xer implements the XER XML encoding (spec.md §4.6) over the
compiled ir.Type graph, using encoding/xml's token-level Encoder/Decoder
rather than struct-tag marshaling — exactly as package jer uses
encoding/json at the value level instead of struct marshaling, for the
same reason: there is no static Go type per ASN.1 type, only a dynamic
value.Value tree.

X.693-shaped element names: a type assignment's own name tags its
outermost element; SEQUENCE/SET components are named by their component
identifier; SEQUENCE OF/SET OF repeats the element's own type name per
item.
*/
package xer

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math/big"

	"github.com/JesseCoretta/go-asn1kit/ir"
	"github.com/JesseCoretta/go-asn1kit/value"
)

type Graph struct {
	Arena  *ir.Arena
	Indent string
}

func (g *Graph) t(ref ir.TypeRef) *ir.Type { return g.Arena.Get(ref) }

func Encode(g *Graph, t *ir.Type, v value.Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	if g.Indent != "" {
		enc.Indent("", g.Indent)
	}
	name := elementName(t)
	if err := encodeElement(g, enc, name, t, v); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Decode(g *Graph, t *ir.Type, octets []byte) (value.Value, error) {
	dec := xml.NewDecoder(bytes.NewReader(octets))
	for {
		tok, err := dec.Token()
		if err != nil {
			return value.Value{}, fmt.Errorf("xer: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			return decodeElement(g, dec, t, start)
		}
	}
}

func elementName(t *ir.Type) string {
	if t.Name != "" {
		return localPart(t.Name)
	}
	return kindName(t.Kind)
}

func localPart(qualified string) string {
	for i := len(qualified) - 1; i >= 0; i-- {
		if qualified[i] == '.' {
			return qualified[i+1:]
		}
	}
	return qualified
}

func kindName(k ir.Kind) string {
	switch k {
	case ir.KindBoolean:
		return "BOOLEAN"
	case ir.KindInteger:
		return "INTEGER"
	case ir.KindEnumerated:
		return "ENUMERATED"
	case ir.KindReal:
		return "REAL"
	case ir.KindBitString:
		return "BIT-STRING"
	case ir.KindOctetString:
		return "OCTET-STRING"
	case ir.KindNull:
		return "NULL"
	case ir.KindOID:
		return "OBJECT-IDENTIFIER"
	case ir.KindRelativeOID:
		return "RELATIVE-OID"
	case ir.KindCharString:
		return "STRING"
	case ir.KindUTCTime:
		return "UTCTime"
	case ir.KindGeneralizedTime:
		return "GeneralizedTime"
	case ir.KindSequence:
		return "SEQUENCE"
	case ir.KindSet:
		return "SET"
	case ir.KindSequenceOf:
		return "SEQUENCE-OF"
	case ir.KindSetOf:
		return "SET-OF"
	case ir.KindChoice:
		return "CHOICE"
	case ir.KindAny:
		return "OPEN-TYPE"
	}
	return "VALUE"
}

func encodeElement(g *Graph, enc *xml.Encoder, name string, t *ir.Type, v value.Value) error {
	if t.Kind == ir.KindTaggedAlias {
		return encodeElement(g, enc, name, g.t(t.Aliased), v)
	}
	start := xml.StartElement{Name: xml.Name{Local: name}}

	switch t.Kind {
	case ir.KindBoolean:
		return writeTextElement(enc, start, boolText(v.Bool()))
	case ir.KindInteger, ir.KindEnumerated:
		return writeTextElement(enc, start, v.Int().String())
	case ir.KindReal:
		return writeTextElement(enc, start, fmt.Sprintf("%g", v.Float()))
	case ir.KindNull:
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		return enc.EncodeToken(start.End())
	case ir.KindOctetString:
		return writeTextElement(enc, start, hexString(v.Bytes()))
	case ir.KindBitString:
		bs := v.BitString()
		return writeTextElement(enc, start, bitsToBinaryString(bs))
	case ir.KindCharString, ir.KindOID, ir.KindRelativeOID, ir.KindUTCTime, ir.KindGeneralizedTime:
		return writeTextElement(enc, start, v.Text())
	case ir.KindSequence, ir.KindSet:
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		for _, comp := range t.Components {
			fv, ok := v.Field(comp.Name)
			if !ok {
				continue
			}
			if err := encodeElement(g, enc, comp.Name, g.t(comp.Type), fv); err != nil {
				return err
			}
		}
		return enc.EncodeToken(start.End())
	case ir.KindSequenceOf, ir.KindSetOf:
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		elemT := g.t(t.Element)
		elemName := elementName(elemT)
		for _, item := range v.List() {
			if err := encodeElement(g, enc, elemName, elemT, item); err != nil {
				return err
			}
		}
		return enc.EncodeToken(start.End())
	case ir.KindChoice:
		ch := v.Choice()
		if ch == nil {
			return fmt.Errorf("xer: CHOICE value has no selected alternative")
		}
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		for _, comp := range t.Components {
			if comp.Name == ch.Alternative {
				if err := encodeElement(g, enc, comp.Name, g.t(comp.Type), ch.Inner); err != nil {
					return err
				}
				return enc.EncodeToken(start.End())
			}
		}
		return fmt.Errorf("xer: unknown CHOICE alternative %q", ch.Alternative)
	case ir.KindAny:
		return writeTextElement(enc, start, hexString(v.Opaque()))
	}
	return fmt.Errorf("xer: unsupported kind %v", t.Kind)
}

func writeTextElement(enc *xml.Encoder, start xml.StartElement, text string) error {
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if text != "" {
		if err := enc.EncodeToken(xml.CharData([]byte(text))); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func decodeElement(g *Graph, dec *xml.Decoder, t *ir.Type, start xml.StartElement) (value.Value, error) {
	if t.Kind == ir.KindTaggedAlias {
		return decodeElement(g, dec, g.t(t.Aliased), start)
	}
	switch t.Kind {
	case ir.KindSequence, ir.KindSet:
		return decodeStruct(g, dec, t)
	case ir.KindSequenceOf, ir.KindSetOf:
		return decodeList(g, dec, t)
	case ir.KindChoice:
		return decodeChoice(g, dec, t)
	default:
		text, err := readText(dec)
		if err != nil {
			return value.Value{}, err
		}
		return textToValue(t, text)
	}
}

func textToValue(t *ir.Type, text string) (value.Value, error) {
	switch t.Kind {
	case ir.KindBoolean:
		return value.Bool(text == "true" || text == "1"), nil
	case ir.KindInteger, ir.KindEnumerated:
		n, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return value.Value{}, fmt.Errorf("xer: invalid integer literal %q", text)
		}
		return value.BigInt(n), nil
	case ir.KindReal:
		var f float64
		_, err := fmt.Sscanf(text, "%g", &f)
		if err != nil {
			return value.Value{}, err
		}
		return value.Float(f), nil
	case ir.KindNull:
		return value.Null(), nil
	case ir.KindOctetString:
		return value.Bytes(unhexString(text)), nil
	case ir.KindBitString:
		return value.Bits(binaryStringToBits(text), len(text)), nil
	case ir.KindAny:
		return value.Opaque(unhexString(text)), nil
	default:
		return value.Text(text), nil
	}
}

func decodeStruct(g *Graph, dec *xml.Decoder, t *ir.Type) (value.Value, error) {
	var fields []value.Field
	for {
		tok, err := dec.Token()
		if err != nil {
			return value.Value{}, err
		}
		switch tt := tok.(type) {
		case xml.StartElement:
			for _, comp := range t.Components {
				if comp.Name == tt.Name.Local {
					fv, err := decodeElement(g, dec, g.t(comp.Type), tt)
					if err != nil {
						return value.Value{}, err
					}
					fields = append(fields, value.Field{Name: comp.Name, Value: fv})
					break
				}
			}
		case xml.EndElement:
			return value.Map(fields...), nil
		}
	}
}

func decodeList(g *Graph, dec *xml.Decoder, t *ir.Type) (value.Value, error) {
	elemT := g.t(t.Element)
	var items []value.Value
	for {
		tok, err := dec.Token()
		if err != nil {
			return value.Value{}, err
		}
		switch tt := tok.(type) {
		case xml.StartElement:
			iv, err := decodeElement(g, dec, elemT, tt)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, iv)
		case xml.EndElement:
			return value.List(items...), nil
		}
	}
}

func decodeChoice(g *Graph, dec *xml.Decoder, t *ir.Type) (value.Value, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return value.Value{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			for _, comp := range t.Components {
				if comp.Name == start.Name.Local {
					inner, err := decodeElement(g, dec, g.t(comp.Type), start)
					if err != nil {
						return value.Value{}, err
					}
					// consume the CHOICE's own closing tag
					if _, err := dec.Token(); err != nil {
						return value.Value{}, err
					}
					return value.Tagged(comp.Name, inner), nil
				}
			}
			return value.Value{}, fmt.Errorf("xer: unknown CHOICE alternative %q", start.Name.Local)
		}
	}
}

func readText(dec *xml.Decoder) (string, error) {
	var out string
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch tt := tok.(type) {
		case xml.CharData:
			out += string(tt)
		case xml.EndElement:
			return out, nil
		}
	}
}

func boolText(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func bitsToBinaryString(bs value.BitString) string {
	out := make([]byte, bs.Bits)
	for i := 0; i < bs.Bits; i++ {
		byteIdx, bitIdx := i/8, i%8
		if (bs.Bytes[byteIdx]>>uint(7-bitIdx))&1 != 0 {
			out[i] = '1'
		} else {
			out[i] = '0'
		}
	}
	return string(out)
}

func binaryStringToBits(s string) []byte {
	out := make([]byte, (len(s)+7)/8)
	for i, c := range s {
		if c == '1' {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}

func hexString(b []byte) string {
	const digits = "0123456789ABCDEF"
	out := make([]byte, len(b)*2)
	for i, bb := range b {
		out[i*2] = digits[bb>>4]
		out[i*2+1] = digits[bb&0xf]
	}
	return string(out)
}

func unhexString(s string) []byte {
	out := make([]byte, len(s)/2)
	for i := range out {
		out[i] = hexNibble(s[i*2])<<4 | hexNibble(s[i*2+1])
	}
	return out
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	}
	return 0
}
