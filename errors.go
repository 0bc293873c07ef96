package asn1kit

/*
errors.go implements the error taxonomy described by this package's
specification: ParseError, CompileError, EncodeError, DecodeError and
the distinguished ConstraintsError sub-kind of EncodeError/DecodeError.

The shape follows the teacher's err.go: sentinel-style constructors, a
string-interning cache for the high-frequency formatted messages, and
helpers that build a contextual message from a small set of recognized
argument shapes rather than fmt.Sprintf fan-out everywhere.
*/

import (
	"errors"
	"strings"
	"sync"
)

var mkerr func(string) error = errors.New

/*
ParseError is returned by Parse when the lexer or parser rejects the
input module text. It carries source coordinates so a caller can point
a user at the offending line.
*/
type ParseError struct {
	Path    string // source file path, or "" for in-memory text
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	b := newStrBuilder()
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(":")
	}
	b.WriteString(itoa(e.Line))
	b.WriteString(":")
	b.WriteString(itoa(e.Column))
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

/*
CompileError is returned by Compile when the pre-processor or type
compiler finds a semantic defect after a successful parse: a missing
import, an undefined reference, an unresolvable constraint, a duplicate
tag, or an illegal parameterization.
*/
type CompileError struct {
	Module  string
	Symbol  string
	Message string
}

func (e *CompileError) Error() string {
	b := newStrBuilder()
	if e.Module != "" {
		b.WriteString(e.Module)
		b.WriteString(": ")
	}
	if e.Symbol != "" {
		b.WriteString(e.Symbol)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

/*
ConstraintKind distinguishes a value-conformance failure (range, size,
permitted alphabet, ...) from other encode/decode failures. Callers may
downgrade a ConstraintsError to a warning, per this package's
specification.
*/
type ConstraintKind uint8

const (
	ConstraintNone ConstraintKind = iota
	ConstraintValueRange
	ConstraintSize
	ConstraintAlphabet
	ConstraintValueSet
	ConstraintTable
)

/*
EncodeError is returned by Specification.Encode when a runtime value
does not conform to its declared type: wrong CHOICE alternative, a
missing mandatory field, a value outside its effective constraint, or a
bit-string longer than its size bound.
*/
type EncodeError struct {
	Path       string // location path; Specification.Encode sets it to the type name
	Reason     string
	Constraint ConstraintKind
}

func (e *EncodeError) Error() string {
	return mkPathErr("encode", e.Path, e.Reason)
}

/*
DecodeError is returned by Specification.Decode when wire input does
not conform to its declared type: a truncated buffer, an illegal tag, a
length overrun, an out-of-range constrained integer, or an unknown
CHOICE alternative with no extension marker.
*/
type DecodeError struct {
	Path       string
	Reason     string
	Constraint ConstraintKind
}

func (e *DecodeError) Error() string {
	return mkPathErr("decode", e.Path, e.Reason)
}

/*
ConstraintsError wraps an EncodeError or DecodeError whose Constraint
field is non-zero, so callers that want to special-case constraint
failures (e.g.: downgrade to a warning) can type-assert for it without
inspecting the Constraint field on every error kind by hand.
*/
type ConstraintsError struct {
	Err error
}

func (e *ConstraintsError) Error() string { return e.Err.Error() }
func (e *ConstraintsError) Unwrap() error { return e.Err }

func mkPathErr(op, path, reason string) string {
	b := newStrBuilder()
	b.WriteString(op)
	if path != "" {
		b.WriteString(" ")
		b.WriteString(path)
	}
	b.WriteString(": ")
	b.WriteString(reason)
	return b.String()
}

/*
newEncodeError and newDecodeError build the respective error types,
wrapping as ConstraintsError when a constraint kind is supplied.
*/
func newEncodeError(path, reason string, ck ...ConstraintKind) error {
	e := &EncodeError{Path: path, Reason: reason}
	if len(ck) > 0 && ck[0] != ConstraintNone {
		e.Constraint = ck[0]
		return &ConstraintsError{Err: e}
	}
	return e
}

func newDecodeError(path, reason string, ck ...ConstraintKind) error {
	e := &DecodeError{Path: path, Reason: reason}
	if len(ck) > 0 && ck[0] != ConstraintNone {
		e.Constraint = ck[0]
		return &ConstraintsError{Err: e}
	}
	return e
}

/*
constraintKindOf recognizes the message shapes ir/errors.go's
errOutOfRange/errSizeOutOfRange/errNotInValueSet produce, so
Specification.Encode/Decode can tag a codec failure caused by a
constraint violation without codec/* needing to import this package's
ConstraintKind type (it would create an import cycle: codec/* is
imported by this package, not the reverse).
*/
func constraintKindOf(err error) ConstraintKind {
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "value ") && strings.Contains(msg, "outside permitted range"):
		return ConstraintValueRange
	case strings.HasPrefix(msg, "size ") && strings.Contains(msg, "outside permitted range"):
		return ConstraintSize
	case strings.Contains(msg, "not a member of the permitted value set"):
		return ConstraintValueSet
	}
	return ConstraintNone
}

/*
Frequently-returned sentinels, in the teacher's err.go style.
*/
var (
	errorNilInput             error = mkerr("nil input instance")
	errorOutOfBounds          error = mkerr("content and offset out of bounds")
	errorIndefiniteProhibited error = mkerr("indefinite lengths not supported by this encoding rule")
	errorTruncatedContent     error = mkerr("packet content is truncated")
	errorTruncatedLength      error = mkerr("packet length is truncated")
	errorLengthTooLarge       error = mkerr("length bytes too large (>4 octets)")
	errorTagTooLarge          error = mkerr("tag too large (>= 2^28)")
	errorUnknownType          error = mkerr("unknown or unregistered type name")
)

var errCache sync.Map

/*
mkerrf builds (and interns) an error from a small sequence of string and
int parts, avoiding a fmt.Sprintf allocation for the common case of a
handful of concatenated fields.
*/
func mkerrf(parts ...any) error {
	if len(parts) == 1 {
		if s, ok := parts[0].(string); ok {
			if v, hit := errCache.Load(s); hit {
				return v.(error)
			}
		}
	}

	b := newStrBuilder()
	for _, p := range parts {
		switch v := p.(type) {
		case string:
			b.WriteString(v)
		case int:
			b.WriteString(itoa(v))
		default:
			b.WriteString("<not supported>")
		}
	}
	msg := b.String()

	if v, hit := errCache.Load(msg); hit {
		return v.(error)
	}
	e := mkerr(msg)
	errCache.Store(msg, e)
	return e
}
