package per

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/JesseCoretta/go-asn1kit/ir"
	"github.com/JesseCoretta/go-asn1kit/value"
)

// unknownExtensionsField is the reserved SEQUENCE/SET field name under
// which decodeStructured stashes extension-addition open-type octets
// it could not match to a known ir.Component, so a plain re-encode of
// the decoded value reproduces them verbatim (spec.md §4.8's
// extensibility-tolerance requirement). "..." can never collide with a
// real ASN.1 identifier.
const unknownExtensionsField = "..."

// unknownExtAltPrefix tags a CHOICE alternative name decodeChoice
// invents when the wire selects an extension-addition index beyond
// every known alternative, carrying the original index so encodeChoice
// can reproduce the same open-type selection on re-encode.
const unknownExtAltPrefix = "...ext:"

/*
codec.go walks an ir.Type against a value.Value (Encode) or a bit
Cursor (Decode), dispatching on ir.Kind, exactly as codec/ber does.
Constrained whole numbers use the PERInfo bounds the ir pre-processor
attaches (spec.md §4.3); unconstrained integers fall back to a
length-prefixed two's-complement octet encoding the way X.691 §12.1
describes for the unbounded case.
*/

type Graph struct {
	Arena   *ir.Arena
	Aligned bool
}

func (g *Graph) t(ref ir.TypeRef) *ir.Type { return g.Arena.Get(ref) }

func Encode(g *Graph, t *ir.Type, v value.Value) ([]byte, error) {
	c := NewWriteCursor(g.Aligned)
	if err := encodeValue(g, c, t, v); err != nil {
		return nil, err
	}
	return c.Bytes(), nil
}

func Decode(g *Graph, t *ir.Type, octets []byte) (value.Value, error) {
	c := NewCursor(g.Aligned, octets)
	return decodeValue(g, c, t)
}

// effectiveRange/effectiveSize read the PERInfo the ir pre-processor
// already attached (ir/tagging.go's attachPERInfo) rather than
// re-walking the constraint chain on every call.
func effectiveRange(t *ir.Type) (lo, hi int64, bounded bool) {
	if t.PER == nil || !t.PER.Bounded {
		return 0, 0, false
	}
	return t.PER.Lower, t.PER.Upper, true
}

func effectiveSize(t *ir.Type) (lo, hi int64, bounded bool) {
	if t.PER == nil || !t.PER.Bounded {
		return 0, 0, false
	}
	return t.PER.Lower, t.PER.Upper, true
}

func encodeValue(g *Graph, c *Cursor, t *ir.Type, v value.Value) error {
	if t.Kind == ir.KindTaggedAlias {
		return encodeValue(g, c, g.t(t.Aliased), v)
	}
	switch t.Kind {
	case ir.KindBoolean:
		if v.Bool() {
			c.WriteBits(1, 1)
		} else {
			c.WriteBits(0, 1)
		}
		return nil

	case ir.KindInteger, ir.KindEnumerated:
		return encodeInteger(c, t, v.Int())

	case ir.KindReal:
		enc := encodeRealOctets(v.Float())
		c.WriteLengthDeterminant(len(enc))
		c.WriteBytes(enc)
		return nil

	case ir.KindNull:
		return nil

	case ir.KindOctetString, ir.KindBitString, ir.KindCharString:
		return encodeStringlike(g, c, t, v)

	case ir.KindOID, ir.KindRelativeOID:
		b := []byte(v.Text())
		c.WriteLengthDeterminant(len(b))
		c.WriteBytes(b)
		return nil

	case ir.KindUTCTime, ir.KindGeneralizedTime:
		b := []byte(v.Text())
		c.WriteLengthDeterminant(len(b))
		c.WriteBytes(b)
		return nil

	case ir.KindSequence, ir.KindSet:
		return encodeStructured(g, c, t, v)

	case ir.KindSequenceOf, ir.KindSetOf:
		return encodeList(g, c, t, v)

	case ir.KindChoice:
		return encodeChoice(g, c, t, v)

	case ir.KindAny:
		b := v.Opaque()
		c.WriteLengthDeterminant(len(b))
		c.WriteBytes(b)
		return nil
	}
	return fmt.Errorf("per: unsupported kind %v", t.Kind)
}

func encodeInteger(c *Cursor, t *ir.Type, n *big.Int) error {
	lo, _, bounded := effectiveRange(t)
	if bounded {
		c.WriteBits(uint64(n.Int64()-lo), t.PER.Bits)
		return nil
	}
	enc := twosComplementMinimal(n)
	c.WriteLengthDeterminant(len(enc))
	c.WriteBytes(enc)
	return nil
}

func twosComplementMinimal(n *big.Int) []byte {
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
	abs := new(big.Int).Abs(n)
	nbytes := (abs.BitLen() + 7) / 8

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

func undoTwosComplement(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}
	n := new(big.Int).SetBytes(b)
	if b[0]&0x80 != 0 {
		m := new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8))
		n.Sub(n, m)
	}
	return n
}

// encodeRealOctets/decodeRealOctets render a REAL as a raw IEEE 754
// double inside PER's octet-aligned length-prefixed container, rather
// than porting codec/ber's X.690 §8.5 base-2 binary-REAL bit layout —
// PER has no equivalent fixed format to match, so the container just
// needs a stable round-trippable representation.
func encodeRealOctets(f float64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(f))
	return b
}

func decodeRealOctets(b []byte) float64 {
	if len(b) < 8 {
		padded := make([]byte, 8)
		copy(padded[8-len(b):], b)
		b = padded
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b))
}

func encodeStringlike(g *Graph, c *Cursor, t *ir.Type, v value.Value) error {
	switch t.Kind {
	case ir.KindBitString:
		bs := v.BitString()
		_, hi, bounded := effectiveSize(t)
		if !bounded || hi != int64(len(bs.Bytes)*8) {
			c.WriteLengthDeterminant(bs.Bits)
		}
		for i := 0; i < bs.Bits; i++ {
			byteIdx, bitIdx := i/8, i%8
			bit := (bs.Bytes[byteIdx] >> uint(7-bitIdx)) & 1
			c.WriteBits(uint64(bit), 1)
		}
		return nil
	case ir.KindCharString:
		b := []byte(v.Text())
		c.WriteLengthDeterminant(len(b))
		for _, bb := range b {
			c.WriteBits(uint64(bb), 8)
		}
		return nil
	default: // OctetString
		b := v.Bytes()
		_, hi, bounded := effectiveSize(t)
		if !bounded || int64(len(b)) != hi {
			c.WriteLengthDeterminant(len(b))
		}
		c.WriteBytes(b)
		return nil
	}
}

func encodeStructured(g *Graph, c *Cursor, t *ir.Type, v value.Value) error {
	root, ext := splitComponents(t)

	if t.Extensible {
		if extensionsPresent(v, ext) {
			c.WriteBits(1, 1)
		} else {
			c.WriteBits(0, 1)
		}
	}

	var optional []ir.Component
	for _, comp := range root {
		if comp.Optional || comp.Default != nil {
			optional = append(optional, comp)
		}
	}
	presence := make(map[string]bool, len(optional))
	for _, comp := range optional {
		_, ok := v.Field(comp.Name)
		presence[comp.Name] = ok
		if ok {
			c.WriteBits(1, 1)
		} else {
			c.WriteBits(0, 1)
		}
	}
	for _, comp := range root {
		if comp.Optional || comp.Default != nil {
			if !presence[comp.Name] {
				continue
			}
		}
		fv, ok := v.Field(comp.Name)
		if !ok {
			return fmt.Errorf("per: missing mandatory component %q", comp.Name)
		}
		if err := encodeValue(g, c, g.t(comp.Type), fv); err != nil {
			return err
		}
	}

	if t.Extensible && extensionsPresent(v, ext) {
		return encodeExtensionAdditions(g, c, ext, v)
	}
	return nil
}

// splitComponents separates a SEQUENCE/SET/CHOICE's root component
// list from its extension additions (ir.Component.ExtGroup >= 0),
// preserving declared order within each group (spec.md §5's "extension
// additions in declared order"). Non-extensible types never split —
// ExtGroup is meaningless noise on a type with no "..." marker, and
// hand-built ir.Type graphs (as in this package's tests) leave it at
// its int zero value rather than the compiler's -1 "root" sentinel.
func splitComponents(t *ir.Type) (root, ext []ir.Component) {
	if !t.Extensible {
		return t.Components, nil
	}
	for _, comp := range t.Components {
		if comp.ExtGroup >= 0 {
			ext = append(ext, comp)
		} else {
			root = append(root, comp)
		}
	}
	return root, ext
}

func extensionsPresent(v value.Value, ext []ir.Component) bool {
	for _, comp := range ext {
		if _, ok := v.Field(comp.Name); ok {
			return true
		}
	}
	_, ok := v.Field(unknownExtensionsField)
	return ok
}

// encodeExtensionAdditions writes the extension-addition bitmap
// (length-prefixed as a normally-small non-negative whole number, then
// one presence bit per addition) followed by each present addition's
// open-type encoding, per spec.md §4.5. Any extension octets this
// graph couldn't attribute to a known component on decode (stashed
// under unknownExtensionsField) are re-emitted after the known
// additions, with their presence bits also set, so a decode-then-
// re-encode round trip reproduces the original wire bytes.
func encodeExtensionAdditions(g *Graph, c *Cursor, ext []ir.Component, v value.Value) error {
	var unknownBlocks [][]byte
	if blob, ok := v.Field(unknownExtensionsField); ok {
		unknownBlocks = splitOpenTypeBlocks(blob.Opaque())
	}

	present := make([]bool, len(ext))
	for i, comp := range ext {
		_, ok := v.Field(comp.Name)
		present[i] = ok
	}

	c.WriteNormallySmallNumber(len(ext) + len(unknownBlocks))
	for _, ok := range present {
		if ok {
			c.WriteBits(1, 1)
		} else {
			c.WriteBits(0, 1)
		}
	}
	for range unknownBlocks {
		c.WriteBits(1, 1)
	}

	for i, comp := range ext {
		if !present[i] {
			continue
		}
		fv, _ := v.Field(comp.Name)
		if err := writeOpenType(g, c, g.t(comp.Type), fv); err != nil {
			return err
		}
	}
	for _, blk := range unknownBlocks {
		c.WriteLengthDeterminant(len(blk))
		c.WriteBytes(blk)
	}
	return nil
}

// writeOpenType renders v to its own octet-aligned buffer and emits it
// as length || payload (spec.md §4.5's "open type" rule).
func writeOpenType(g *Graph, c *Cursor, t *ir.Type, v value.Value) error {
	inner := NewWriteCursor(g.Aligned)
	if err := encodeValue(g, inner, t, v); err != nil {
		return err
	}
	b := inner.Bytes()
	c.WriteLengthDeterminant(len(b))
	c.WriteBytes(b)
	return nil
}

func readOpenType(g *Graph, c *Cursor, t *ir.Type) (value.Value, error) {
	raw, err := readOpenTypeRaw(c)
	if err != nil {
		return value.Value{}, err
	}
	return decodeValue(g, NewCursor(g.Aligned, raw), t)
}

func readOpenTypeRaw(c *Cursor) ([]byte, error) {
	n, err := c.ReadLengthDeterminant()
	if err != nil {
		return nil, err
	}
	return c.ReadBytes(n)
}

// joinOpenTypeBlocks/splitOpenTypeBlocks give unknownExtensionsField a
// stable self-delimiting representation for one or more preserved
// open-type payloads.
func joinOpenTypeBlocks(blocks [][]byte) []byte {
	var out []byte
	for _, b := range blocks {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
		out = append(out, lenBuf[:]...)
		out = append(out, b...)
	}
	return out
}

func splitOpenTypeBlocks(raw []byte) [][]byte {
	var out [][]byte
	for len(raw) >= 4 {
		n := binary.BigEndian.Uint32(raw[:4])
		raw = raw[4:]
		if uint32(len(raw)) < n {
			break
		}
		out = append(out, raw[:n])
		raw = raw[n:]
	}
	return out
}

func encodeList(g *Graph, c *Cursor, t *ir.Type, v value.Value) error {
	items := v.List()
	_, hi, bounded := effectiveSize(t)
	if !bounded || int64(len(items)) != hi {
		c.WriteLengthDeterminant(len(items))
	}
	elemT := g.t(t.Element)
	for _, item := range items {
		if err := encodeValue(g, c, elemT, item); err != nil {
			return err
		}
	}
	return nil
}

func encodeChoice(g *Graph, c *Cursor, t *ir.Type, v value.Value) error {
	ch := v.Choice()
	if ch == nil {
		return fmt.Errorf("per: CHOICE value has no selected alternative")
	}
	root, ext := splitComponents(t)

	if idxStr, ok := strings.CutPrefix(ch.Alternative, unknownExtAltPrefix); ok {
		if !t.Extensible {
			return fmt.Errorf("per: CHOICE alternative %q requires an extensible type", ch.Alternative)
		}
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			return fmt.Errorf("per: malformed preserved CHOICE extension index %q", ch.Alternative)
		}
		c.WriteBits(1, 1)
		c.WriteNormallySmallNumber(idx)
		raw := ch.Inner.Opaque()
		c.WriteLengthDeterminant(len(raw))
		c.WriteBytes(raw)
		return nil
	}

	for i, comp := range root {
		if comp.Name == ch.Alternative {
			if t.Extensible {
				c.WriteBits(0, 1)
			}
			c.WriteBits(uint64(i), bitsFor(int64(len(root))))
			return encodeValue(g, c, g.t(comp.Type), ch.Inner)
		}
	}
	for i, comp := range ext {
		if comp.Name == ch.Alternative {
			if !t.Extensible {
				return fmt.Errorf("per: CHOICE alternative %q is an extension addition on a non-extensible type", ch.Alternative)
			}
			c.WriteBits(1, 1)
			c.WriteNormallySmallNumber(i)
			return writeOpenType(g, c, g.t(comp.Type), ch.Inner)
		}
	}
	return fmt.Errorf("per: unknown CHOICE alternative %q", ch.Alternative)
}

func decodeValue(g *Graph, c *Cursor, t *ir.Type) (value.Value, error) {
	if t.Kind == ir.KindTaggedAlias {
		return decodeValue(g, c, g.t(t.Aliased))
	}
	switch t.Kind {
	case ir.KindBoolean:
		b, err := c.ReadBits(1)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(b == 1), nil

	case ir.KindInteger, ir.KindEnumerated:
		return decodeInteger(c, t)

	case ir.KindReal:
		n, err := c.ReadLengthDeterminant()
		if err != nil {
			return value.Value{}, err
		}
		b, err := c.ReadBytes(n)
		if err != nil {
			return value.Value{}, err
		}
		return value.Float(decodeRealOctets(b)), nil

	case ir.KindNull:
		return value.Null(), nil

	case ir.KindOctetString, ir.KindBitString, ir.KindCharString:
		return decodeStringlike(c, t)

	case ir.KindOID, ir.KindRelativeOID, ir.KindUTCTime, ir.KindGeneralizedTime:
		n, err := c.ReadLengthDeterminant()
		if err != nil {
			return value.Value{}, err
		}
		b, err := c.ReadBytes(n)
		if err != nil {
			return value.Value{}, err
		}
		return value.Text(string(b)), nil

	case ir.KindSequence, ir.KindSet:
		return decodeStructured(g, c, t)

	case ir.KindSequenceOf, ir.KindSetOf:
		return decodeList(g, c, t)

	case ir.KindChoice:
		return decodeChoice(g, c, t)

	case ir.KindAny:
		n, err := c.ReadLengthDeterminant()
		if err != nil {
			return value.Value{}, err
		}
		b, err := c.ReadBytes(n)
		if err != nil {
			return value.Value{}, err
		}
		return value.Opaque(b), nil
	}
	return value.Value{}, fmt.Errorf("per: unsupported kind %v", t.Kind)
}

func decodeInteger(c *Cursor, t *ir.Type) (value.Value, error) {
	lo, _, bounded := effectiveRange(t)
	if bounded {
		v, err := c.ReadBits(t.PER.Bits)
		if err != nil {
			return value.Value{}, err
		}
		n := big.NewInt(int64(v) + lo)
		return value.BigInt(n), nil
	}
	n, err := c.ReadLengthDeterminant()
	if err != nil {
		return value.Value{}, err
	}
	b, err := c.ReadBytes(n)
	if err != nil {
		return value.Value{}, err
	}
	return value.BigInt(undoTwosComplement(b)), nil
}

func decodeStringlike(c *Cursor, t *ir.Type) (value.Value, error) {
	switch t.Kind {
	case ir.KindBitString:
		_, hi, bounded := effectiveSize(t)
		var bits int
		var err error
		if bounded {
			bits = int(hi)
		} else {
			bits, err = c.ReadLengthDeterminant()
			if err != nil {
				return value.Value{}, err
			}
		}
		nbytes := (bits + 7) / 8
		out := make([]byte, nbytes)
		for i := 0; i < bits; i++ {
			b, err := c.ReadBits(1)
			if err != nil {
				return value.Value{}, err
			}
			if b != 0 {
				out[i/8] |= 1 << uint(7-i%8)
			}
		}
		return value.Bits(out, bits), nil
	case ir.KindCharString:
		n, err := c.ReadLengthDeterminant()
		if err != nil {
			return value.Value{}, err
		}
		buf := make([]byte, n)
		for i := 0; i < n; i++ {
			b, err := c.ReadBits(8)
			if err != nil {
				return value.Value{}, err
			}
			buf[i] = byte(b)
		}
		return value.Text(string(buf)), nil
	default:
		_, hi, bounded := effectiveSize(t)
		var n int
		var err error
		if bounded {
			n = int(hi)
		} else {
			n, err = c.ReadLengthDeterminant()
			if err != nil {
				return value.Value{}, err
			}
		}
		b, err := c.ReadBytes(n)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bytes(b), nil
	}
}

func decodeStructured(g *Graph, c *Cursor, t *ir.Type) (value.Value, error) {
	root, ext := splitComponents(t)

	extended := false
	if t.Extensible {
		b, err := c.ReadBits(1)
		if err != nil {
			return value.Value{}, err
		}
		extended = b == 1
	}

	var optional []ir.Component
	for _, comp := range root {
		if comp.Optional || comp.Default != nil {
			optional = append(optional, comp)
		}
	}
	presence := make(map[string]bool, len(optional))
	for _, comp := range optional {
		b, err := c.ReadBits(1)
		if err != nil {
			return value.Value{}, err
		}
		presence[comp.Name] = b == 1
	}
	var fields []value.Field
	for _, comp := range root {
		if comp.Optional || comp.Default != nil {
			if !presence[comp.Name] {
				if comp.Default != nil {
					fields = append(fields, value.Field{Name: comp.Name, Value: *comp.Default})
				}
				continue
			}
		}
		fv, err := decodeValue(g, c, g.t(comp.Type))
		if err != nil {
			return value.Value{}, err
		}
		fields = append(fields, value.Field{Name: comp.Name, Value: fv})
	}

	if extended {
		extFields, unknown, err := decodeExtensionAdditions(g, c, ext)
		if err != nil {
			return value.Value{}, err
		}
		fields = append(fields, extFields...)
		if len(unknown) > 0 {
			fields = append(fields, value.Field{Name: unknownExtensionsField, Value: value.Opaque(joinOpenTypeBlocks(unknown))})
		}
	}
	return value.Map(fields...), nil
}

// decodeExtensionAdditions is the inverse of encodeExtensionAdditions:
// it reads the bitmap length and presence bits, decodes each addition
// this graph knows about, and preserves any trailing open-type octets
// belonging to additions beyond len(ext) — extensions a newer schema
// version added that this compiled graph has never seen — verbatim,
// satisfying spec.md §4.8's extensibility-tolerance requirement.
func decodeExtensionAdditions(g *Graph, c *Cursor, ext []ir.Component) ([]value.Field, [][]byte, error) {
	n, err := c.ReadNormallySmallNumber()
	if err != nil {
		return nil, nil, err
	}
	present := make([]bool, n)
	for i := range present {
		b, err := c.ReadBits(1)
		if err != nil {
			return nil, nil, err
		}
		present[i] = b == 1
	}

	var fields []value.Field
	var unknown [][]byte
	for i := 0; i < n; i++ {
		if !present[i] {
			continue
		}
		if i < len(ext) {
			fv, err := readOpenType(g, c, g.t(ext[i].Type))
			if err != nil {
				return nil, nil, err
			}
			fields = append(fields, value.Field{Name: ext[i].Name, Value: fv})
			continue
		}
		raw, err := readOpenTypeRaw(c)
		if err != nil {
			return nil, nil, err
		}
		unknown = append(unknown, raw)
	}
	return fields, unknown, nil
}

func decodeList(g *Graph, c *Cursor, t *ir.Type) (value.Value, error) {
	_, hi, bounded := effectiveSize(t)
	var n int
	var err error
	if bounded {
		n = int(hi)
	} else {
		n, err = c.ReadLengthDeterminant()
		if err != nil {
			return value.Value{}, err
		}
	}
	elemT := g.t(t.Element)
	items := make([]value.Value, 0, n)
	for i := 0; i < n; i++ {
		v, err := decodeValue(g, c, elemT)
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, v)
	}
	return value.List(items...), nil
}

func decodeChoice(g *Graph, c *Cursor, t *ir.Type) (value.Value, error) {
	root, ext := splitComponents(t)

	extended := false
	if t.Extensible {
		b, err := c.ReadBits(1)
		if err != nil {
			return value.Value{}, err
		}
		extended = b == 1
	}

	if !extended {
		idx, err := c.ReadBits(bitsFor(int64(len(root))))
		if err != nil {
			return value.Value{}, err
		}
		if int(idx) >= len(root) {
			return value.Value{}, fmt.Errorf("per: CHOICE index %d out of range", idx)
		}
		comp := root[idx]
		inner, err := decodeValue(g, c, g.t(comp.Type))
		if err != nil {
			return value.Value{}, err
		}
		return value.Tagged(comp.Name, inner), nil
	}

	idx, err := c.ReadNormallySmallNumber()
	if err != nil {
		return value.Value{}, err
	}
	if idx < len(ext) {
		comp := ext[idx]
		inner, err := readOpenType(g, c, g.t(comp.Type))
		if err != nil {
			return value.Value{}, err
		}
		return value.Tagged(comp.Name, inner), nil
	}

	// An extension alternative beyond every addition this graph knows
	// about: preserve the raw open-type octets and the index so
	// re-encoding reproduces the same selection verbatim.
	raw, err := readOpenTypeRaw(c)
	if err != nil {
		return value.Value{}, err
	}
	return value.Tagged(unknownExtAltPrefix+strconv.Itoa(idx), value.Opaque(raw)), nil
}
