/*
Package asn1kit compiles ASN.1 module text into a Specification and
runs encode/decode against it over BER, DER, PER, UPER, JER, XER, and
GSER (output-only). Parse produces one *ast.Module per source; Compile lowers a
module set into a Specification backed by an immutable compiled type
graph (package ir); Specification.Encode/Decode render or consume
octets for a named type against a package value runtime value.

	mods, err := asn1kit.Parse(asn1kit.SourceFile("schema.asn1", text))
	spec, err := asn1kit.Compile(mods, asn1kit.DER)
	octets, err := spec.Encode("Certificate", v)
	v, err := spec.Decode("Certificate", octets)

See SPEC_FULL.md for the full module layout this package's satellite
packages (token, lexer, ast, parser, ir, codec/*) implement.
*/
package asn1kit
