/*
Package jer implements the JER JSON encoding (spec.md §4.6) over the
compiled ir.Type graph and the dynamic value.Value tree, rather than
reflecting over tagged Go structs the way encoding/json normally works
(this module's value model is dynamic, not struct-based, so there is no
static Go type to hand json.Marshal).

SEQUENCE/SET members are walked in ASCII-ascending name order on
encode, by building a map[string]any, which encoding/json already
sorts by key when marshaling — the one built-in behavior of the
standard library that happens to give this package the ordering
spec.md §4.6 requires for free.
*/
package jer

import (
	"bytes"
	"encoding/json"
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
	any, err := toJSON(g, t, v)
	if err != nil {
		return nil, err
	}
	if g.Indent != "" {
		return json.MarshalIndent(any, "", g.Indent)
	}
	return json.Marshal(any)
}

func Decode(g *Graph, t *ir.Type, octets []byte) (value.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(octets))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return value.Value{}, fmt.Errorf("jer: %w", err)
	}
	return fromJSON(g, t, raw)
}

func toJSON(g *Graph, t *ir.Type, v value.Value) (any, error) {
	if t.Kind == ir.KindTaggedAlias {
		return toJSON(g, g.t(t.Aliased), v)
	}
	switch t.Kind {
	case ir.KindBoolean:
		return v.Bool(), nil
	case ir.KindInteger, ir.KindEnumerated:
		return json.Number(v.Int().String()), nil
	case ir.KindReal:
		return v.Float(), nil
	case ir.KindNull:
		return nil, nil
	case ir.KindOctetString:
		return hexString(v.Bytes()), nil
	case ir.KindBitString:
		bs := v.BitString()
		return map[string]any{"value": hexString(bs.Bytes), "length": bs.Bits}, nil
	case ir.KindCharString, ir.KindOID, ir.KindRelativeOID, ir.KindUTCTime, ir.KindGeneralizedTime:
		return v.Text(), nil
	case ir.KindSequence, ir.KindSet:
		return structToJSON(g, t, v)
	case ir.KindSequenceOf, ir.KindSetOf:
		elemT := g.t(t.Element)
		items := v.List()
		out := make([]any, 0, len(items))
		for _, item := range items {
			jv, err := toJSON(g, elemT, item)
			if err != nil {
				return nil, err
			}
			out = append(out, jv)
		}
		return out, nil
	case ir.KindChoice:
		ch := v.Choice()
		if ch == nil {
			return nil, fmt.Errorf("jer: CHOICE value has no selected alternative")
		}
		for _, comp := range t.Components {
			if comp.Name == ch.Alternative {
				inner, err := toJSON(g, g.t(comp.Type), ch.Inner)
				if err != nil {
					return nil, err
				}
				return map[string]any{ch.Alternative: inner}, nil
			}
		}
		return nil, fmt.Errorf("jer: unknown CHOICE alternative %q", ch.Alternative)
	case ir.KindAny:
		return hexString(v.Opaque()), nil
	}
	return nil, fmt.Errorf("jer: unsupported kind %v", t.Kind)
}

func structToJSON(g *Graph, t *ir.Type, v value.Value) (any, error) {
	out := make(map[string]any, len(t.Components))
	for _, comp := range t.Components {
		fv, ok := v.Field(comp.Name)
		if !ok {
			continue
		}
		jv, err := toJSON(g, g.t(comp.Type), fv)
		if err != nil {
			return nil, err
		}
		out[comp.Name] = jv
	}
	return out, nil
}

func fromJSON(g *Graph, t *ir.Type, raw any) (value.Value, error) {
	if t.Kind == ir.KindTaggedAlias {
		return fromJSON(g, g.t(t.Aliased), raw)
	}
	switch t.Kind {
	case ir.KindBoolean:
		b, _ := raw.(bool)
		return value.Bool(b), nil
	case ir.KindInteger, ir.KindEnumerated:
		n, ok := raw.(json.Number)
		if !ok {
			return value.Value{}, fmt.Errorf("jer: expected number")
		}
		bi, ok := new(big.Int).SetString(string(n), 10)
		if !ok {
			return value.Value{}, fmt.Errorf("jer: invalid integer literal %q", n)
		}
		return value.BigInt(bi), nil
	case ir.KindReal:
		n, ok := raw.(json.Number)
		if !ok {
			return value.Value{}, fmt.Errorf("jer: expected number")
		}
		f, err := n.Float64()
		if err != nil {
			return value.Value{}, err
		}
		return value.Float(f), nil
	case ir.KindNull:
		return value.Null(), nil
	case ir.KindOctetString:
		s, _ := raw.(string)
		return value.Bytes(unhexString(s)), nil
	case ir.KindBitString:
		m, ok := raw.(map[string]any)
		if !ok {
			return value.Value{}, fmt.Errorf("jer: expected BIT STRING object")
		}
		hexv, _ := m["value"].(string)
		lenv, _ := m["length"].(json.Number)
		n, _ := lenv.Int64()
		return value.Bits(unhexString(hexv), int(n)), nil
	case ir.KindCharString, ir.KindOID, ir.KindRelativeOID, ir.KindUTCTime, ir.KindGeneralizedTime:
		s, _ := raw.(string)
		return value.Text(s), nil
	case ir.KindSequence, ir.KindSet:
		return jsonToStruct(g, t, raw)
	case ir.KindSequenceOf, ir.KindSetOf:
		arr, ok := raw.([]any)
		if !ok {
			return value.Value{}, fmt.Errorf("jer: expected array")
		}
		elemT := g.t(t.Element)
		items := make([]value.Value, 0, len(arr))
		for _, item := range arr {
			iv, err := fromJSON(g, elemT, item)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, iv)
		}
		return value.List(items...), nil
	case ir.KindChoice:
		m, ok := raw.(map[string]any)
		if !ok || len(m) != 1 {
			return value.Value{}, fmt.Errorf("jer: expected single-key CHOICE object")
		}
		for alt, inner := range m {
			for _, comp := range t.Components {
				if comp.Name == alt {
					iv, err := fromJSON(g, g.t(comp.Type), inner)
					if err != nil {
						return value.Value{}, err
					}
					return value.Tagged(alt, iv), nil
				}
			}
			return value.Value{}, fmt.Errorf("jer: unknown CHOICE alternative %q", alt)
		}
	case ir.KindAny:
		s, _ := raw.(string)
		return value.Opaque(unhexString(s)), nil
	}
	return value.Value{}, fmt.Errorf("jer: unsupported kind %v", t.Kind)
}

func jsonToStruct(g *Graph, t *ir.Type, raw any) (value.Value, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return value.Value{}, fmt.Errorf("jer: expected object")
	}
	var fields []value.Field
	for _, comp := range t.Components {
		rv, present := m[comp.Name]
		if !present {
			if comp.Default != nil {
				fields = append(fields, value.Field{Name: comp.Name, Value: *comp.Default})
			} else if !comp.Optional {
				return value.Value{}, fmt.Errorf("jer: missing mandatory component %q", comp.Name)
			}
			continue
		}
		fv, err := fromJSON(g, g.t(comp.Type), rv)
		if err != nil {
			return value.Value{}, err
		}
		fields = append(fields, value.Field{Name: comp.Name, Value: fv})
	}
	return value.Map(fields...), nil
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
