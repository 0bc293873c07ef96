package asn1kit

/*
codec.go declares the Codec identifiers accepted on the wire and CLI
(spec.md §6.3), grounded on the teacher's er.go EncodingRule type.
*/

/*
Codec identifies one of the wire encodings (or, for GSER, the one
textual representation) this toolkit can produce or consume.
*/
type Codec int

const (
	invalidCodec Codec = iota
	BER
	DER
	PER
	UPER
	JER
	XER
	GSER // output-only
)

var codecNames = map[Codec]string{
	invalidCodec: "invalid",
	BER:          "ber",
	DER:          "der",
	PER:          "per",
	UPER:         "uper",
	JER:          "jer",
	XER:          "xer",
	GSER:         "gser",
}

func (c Codec) String() string {
	if s, ok := codecNames[c]; ok {
		return s
	}
	return "invalid"
}

/*
ParseCodec maps a CLI/wire codec identifier (case-insensitive) to a
Codec value.
*/
func ParseCodec(s string) (Codec, error) {
	s = lc(trimS(s))
	for c, name := range codecNames {
		if name == s && c != invalidCodec {
			return c, nil
		}
	}
	return invalidCodec, mkerrf("unrecognized codec identifier: ", s)
}

/*
Aligned returns true for PER (aligned variant); UPER and every other
codec are unaligned/not bit-aligned by definition.
*/
func (c Codec) Aligned() bool { return c == PER }

/*
IsBER reports whether c belongs to the BER/DER TLV family.
*/
func (c Codec) IsBER() bool { return c == BER || c == DER }

/*
IsPER reports whether c belongs to the packed-encoding family.
*/
func (c Codec) IsPER() bool { return c == PER || c == UPER }

/*
OutputOnly reports whether c may only be used for Encode (GSER has no
defined decode direction in this toolkit, per spec.md §6.3).
*/
func (c Codec) OutputOnly() bool { return c == GSER }
