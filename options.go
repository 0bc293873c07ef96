package asn1kit

/*
options.go is the generalization of the teacher's opts.go: a plain
struct with copy-returning With helpers, repurposed to carry codec
choice, alignment policy (PER vs UPER), DER strictness, and output
indentation instead of struct-tag-parsed per-field instructions — there are no Go
structs being reflected over in this toolkit's dynamic value model, so
the struct-tag parser (extractOptions in the teacher) has no analogue
here.
*/

// Options carries the knobs Specification.Encode/Decode consult. They
// are passed once, as Compile's optional trailing argument, and stay
// fixed for the Specification; Encode/Decode take no Options.
type Options struct {
	Codec Codec

	// Strict enables DER-level strictness for a BER-family codec
	// (minimal-length checks, SET/SET OF canonical ordering) even when
	// Codec == BER; it is always true when Codec == DER.
	Strict bool

	// Aligned selects aligned PER framing; consulted only when Codec is
	// PER or UPER. With(PER) sets it; for UPER it keeps the value the
	// caller passed to Compile.
	Aligned bool

	// Indent, when non-empty, pretty-prints JER/XER output using this
	// string per indent level; empty means compact output. GSER output
	// does not use it.
	Indent string
}

// defaultOptions mirrors the teacher's defaultOptions: a zero-value
// Options is already meaningful (BER, non-strict, unaligned, compact),
// so this exists mainly as a documented construction point for
// defaults that may grow non-zero fields later.
func defaultOptions() Options {
	return Options{Codec: BER}
}

// With returns a copy of r with codec set to c.
func (r Options) With(c Codec) Options {
	r.Codec = c
	if c == DER {
		r.Strict = true
	}
	if c == PER {
		r.Aligned = true
	}
	return r
}

// WithIndent returns a copy of r with Indent set, for pretty-printed
// JER/XER output.
func (r Options) WithIndent(indent string) Options {
	r.Indent = indent
	return r
}

// effectiveStrict reports whether this Options implies the DER rule for
// the codec/ber package, since DER-strictness can be requested either via
// Codec == DER or via Strict == true on a BER call.
func (r Options) effectiveStrict() bool {
	return r.Codec == DER || r.Strict
}
