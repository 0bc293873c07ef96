package asn1kit

/*
spec.go implements the Specification facade (spec.md §6.1): Parse turns
module text into an *ast.Module, Compile lowers a module set into an
immutable compiled type graph keyed by the requested Codec, and
Specification.Encode/Decode dispatch into the codec/* package matching
that Codec. This mirrors the teacher's own top-level entry points
(New.../Marshal/Unmarshal helpers in runtime.go) generalized from a
single BER/DER pair to the full codec family spec.md §6.3 names.
*/

import (
	"github.com/JesseCoretta/go-asn1kit/ast"
	"github.com/JesseCoretta/go-asn1kit/codec/ber"
	"github.com/JesseCoretta/go-asn1kit/codec/gser"
	"github.com/JesseCoretta/go-asn1kit/codec/jer"
	"github.com/JesseCoretta/go-asn1kit/codec/per"
	"github.com/JesseCoretta/go-asn1kit/codec/xer"
	"github.com/JesseCoretta/go-asn1kit/ir"
	"github.com/JesseCoretta/go-asn1kit/parser"
	"github.com/JesseCoretta/go-asn1kit/value"
	"github.com/JesseCoretta/go-asn1kit/internal/trace"
)

/*
Source is one unit of ASN.1 module text handed to Parse: either a named
file (for diagnostics) or anonymous in-memory text.
*/
type Source struct {
	Path string
	Text string
}

// SourceFile builds a Source carrying a diagnostic path.
func SourceFile(path, text string) Source { return Source{Path: path, Text: text} }

// SourceText builds a Source with no path, for inline module text.
func SourceText(text string) Source { return Source{Text: text} }

/*
Parse lexes and parses every given Source independently, returning one
*ast.Module per source in the same order. A single module per Source is
the ASN.1 convention this toolkit follows (a ModuleDefinition occupies
one file in every example module set this toolkit was grounded on).
*/
func Parse(files ...Source) ([]*ast.Module, error) {
	trace.Enter(trace.EventParse, len(files))
	defer trace.Exit(trace.EventParse)

	mods := make([]*ast.Module, 0, len(files))
	for _, f := range files {
		m, err := parser.Parse(f.Text, f.Path)
		if err != nil {
			if pe, ok := err.(*parser.ParseError); ok {
				return nil, &ParseError{Path: pe.Path, Line: pe.Line, Column: pe.Column, Message: pe.Message}
			}
			return nil, err
		}
		mods = append(mods, m)
	}
	return mods, nil
}

/*
Specification is the immutable compiled object spec.md §3.5 describes:
once Compile returns, neither the type graph nor the Codec it was
compiled for changes for the lifetime of the value.
*/
type Specification struct {
	graph *ir.Graph
	opts  Options
}

/*
Compile runs the pre-processor and type compiler over mods (spec.md
§4.2/§4.3) and returns an immutable Specification ready for
Encode/Decode against the given Codec.
*/
func Compile(mods []*ast.Module, codec Codec, opts ...Options) (*Specification, error) {
	trace.Enter(trace.EventCompile, len(mods))
	defer trace.Exit(trace.EventCompile)

	g, err := ir.Compile(mods)
	if err != nil {
		if ce, ok := err.(*ir.CompileError); ok {
			return nil, &CompileError{Module: ce.Module, Symbol: ce.Symbol, Message: ce.Message}
		}
		return nil, err
	}

	o := defaultOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	o = o.With(codec)

	return &Specification{graph: g, opts: o}, nil
}

// Types lists every exported type-assignment name the Specification can
// Encode/Decode.
func (s *Specification) Types() []string { return s.graph.Names() }

func (s *Specification) resolve(typeName string) (*ir.Type, error) {
	t, ok := s.graph.Type(typeName)
	if !ok {
		return nil, mkerrf("unknown type name: ", typeName)
	}
	return t, nil
}

/*
Encode renders v against typeName using the Codec this Specification
was compiled for.
*/
func (s *Specification) Encode(typeName string, v value.Value) ([]byte, error) {
	trace.Enter(trace.EventEncode, typeName)
	defer trace.Exit(trace.EventEncode)

	t, err := s.resolve(typeName)
	if err != nil {
		return nil, err
	}

	var out []byte
	var err2 error
	switch {
	case s.opts.Codec.IsBER():
		rule := ber.BER
		if s.opts.effectiveStrict() {
			rule = ber.DER
		}
		out, err2 = ber.Encode(&ber.Graph{Arena: s.graph.Arena, Rule: rule}, t, v)
	case s.opts.Codec.IsPER():
		out, err2 = per.Encode(&per.Graph{Arena: s.graph.Arena, Aligned: s.opts.Aligned}, t, v)
	case s.opts.Codec == JER:
		out, err2 = jer.Encode(&jer.Graph{Arena: s.graph.Arena, Indent: s.opts.Indent}, t, v)
	case s.opts.Codec == XER:
		out, err2 = xer.Encode(&xer.Graph{Arena: s.graph.Arena, Indent: s.opts.Indent}, t, v)
	case s.opts.Codec == GSER:
		out, err2 = gser.Encode(&gser.Graph{Arena: s.graph.Arena}, t, v)
	default:
		return nil, newEncodeError(typeName, "unsupported codec: "+s.opts.Codec.String())
	}
	if err2 != nil {
		return nil, newEncodeError(typeName, err2.Error(), constraintKindOf(err2))
	}
	return out, nil
}

/*
ParseLiteral decodes a JER (JSON) literal into a value.Value shaped for
typeName, independent of the Specification's own compiled Codec. This is
what cmd/asn1kit's `convert -value` flag and shell `:encode` command use
to turn a human-typed literal into a value before re-encoding it under
whatever codec was actually requested, since JER is the one codec in
this package's family with both a human-writable text form and a full
Decode direction.
*/
func (s *Specification) ParseLiteral(typeName string, literal []byte) (value.Value, error) {
	t, err := s.resolve(typeName)
	if err != nil {
		return value.Value{}, err
	}
	v, err := jer.Decode(&jer.Graph{Arena: s.graph.Arena}, t, literal)
	if err != nil {
		return value.Value{}, newDecodeError(typeName, err.Error())
	}
	return v, nil
}

/*
Decode parses octets against typeName using the Codec this Specification
was compiled for. GSER has no decode direction (spec.md §6.3).
*/
func (s *Specification) Decode(typeName string, octets []byte) (value.Value, error) {
	trace.Enter(trace.EventDecode, typeName)
	defer trace.Exit(trace.EventDecode)

	t, err := s.resolve(typeName)
	if err != nil {
		return value.Value{}, err
	}

	var out value.Value
	var err2 error
	switch {
	case s.opts.Codec.IsBER():
		rule := ber.BER
		if s.opts.effectiveStrict() {
			rule = ber.DER
		}
		out, err2 = ber.Decode(&ber.Graph{Arena: s.graph.Arena, Rule: rule}, t, octets)
	case s.opts.Codec.IsPER():
		out, err2 = per.Decode(&per.Graph{Arena: s.graph.Arena, Aligned: s.opts.Aligned}, t, octets)
	case s.opts.Codec == JER:
		out, err2 = jer.Decode(&jer.Graph{Arena: s.graph.Arena}, t, octets)
	case s.opts.Codec == XER:
		out, err2 = xer.Decode(&xer.Graph{Arena: s.graph.Arena}, t, octets)
	case s.opts.Codec.OutputOnly():
		return value.Value{}, newDecodeError(typeName, "codec has no decode direction: "+s.opts.Codec.String())
	default:
		return value.Value{}, newDecodeError(typeName, "unsupported codec: "+s.opts.Codec.String())
	}
	if err2 != nil {
		return value.Value{}, newDecodeError(typeName, err2.Error(), constraintKindOf(err2))
	}
	return out, nil
}
