package ir

import (
	"golang.org/x/exp/constraints"

	"github.com/JesseCoretta/go-asn1kit/value"
)

/*
constraints.go implements the constraint tree spec.md §3.2/§4.2
describes: value-range, size, permitted-alphabet, value-set and table
constraints, intersected across every layer applied to a type into one
effective Constraint before compilation finishes.

The teacher's constr.go represents a constraint as a registered
validating closure (Constraint func(any) error) looked up by name out
of a struct-tag string. That registry model doesn't fit a compiled,
codec-agnostic graph: PER needs the numeric bounds themselves (not just
a pass/fail predicate) to compute a bit width, so a constraint has to
stay structured data here rather than collapse into a closure early.
The effective tree keeps the teacher's "evaluate a sequence, short
circuit on first failure" Constrain shape, just over a typed tree
instead of an opaque registry.
*/

type ConstraintKind uint8

const (
	ConstraintValueRange ConstraintKind = iota
	ConstraintSize
	ConstraintAlphabet
	ConstraintValueSet
	ConstraintTable
)

// Constraint is one node of the intersected constraint tree attached
// to a Type. Lower/Upper apply to ConstraintValueRange and
// ConstraintSize (size range reuses the same int64 bounds); Alphabet
// applies to ConstraintAlphabet; Values applies to ConstraintValueSet;
// TableRef names the object-set governing a table constraint
// (resolved to a component path by the pre-processor, spec.md §4.2).
type Constraint struct {
	Kind ConstraintKind

	Lower, Upper int64
	Unbounded    bool // true if no finite bound applies on that side

	Alphabet string // the permitted-alphabet character set, as resolved ranges

	Values []value.Value // ConstraintValueSet enumeration

	TableRef string

	Extensible bool // "(...)" extension marker present on this constraint

	Next *Constraint // the other constraints intersected with this one (AND)
}

// Intersect combines two constraints of compatible kinds into the
// narrower of the two, per spec.md §4.2's "effective constraint
// intersection" step. Constraints of differing kinds are chained via
// Next rather than merged, since e.g. a size constraint and a table
// constraint on the same type are independent checks, not a single
// numeric range.
func Intersect(a, b *Constraint) *Constraint {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.Kind != b.Kind {
		out := *a
		out.Next = Intersect(a.Next, b)
		return &out
	}
	out := *a
	switch a.Kind {
	case ConstraintValueRange, ConstraintSize:
		if !a.Unbounded && !b.Unbounded {
			out.Lower = narrowerLower(out.Lower, b.Lower)
			out.Upper = narrowerUpper(out.Upper, b.Upper)
		} else if a.Unbounded {
			out.Lower, out.Upper, out.Unbounded = b.Lower, b.Upper, b.Unbounded
		}
		out.Extensible = a.Extensible && b.Extensible
	case ConstraintValueSet:
		out.Values = intersectValues(a.Values, b.Values)
	}
	out.Next = Intersect(a.Next, b.Next)
	return &out
}

// narrowerLower/narrowerUpper pick the tighter of two range bounds when
// intersecting a value-range or size constraint with an outer one
// (spec.md §4.2's "effective constraint intersection" narrows, never
// widens). Generic over constraints.Integer so the same two functions
// serve both the int64 bounds Constraint carries and any narrower
// integer width a future caller intersects directly, the way the
// teacher's own constr.go kept its range comparison generic over Go's
// builtin integer kinds rather than one copy per width.
func narrowerLower[T constraints.Integer](a, b T) T {
	if b > a {
		return b
	}
	return a
}

func narrowerUpper[T constraints.Integer](a, b T) T {
	if b < a {
		return b
	}
	return a
}

func intersectValues(a, b []value.Value) []value.Value {
	var out []value.Value
	for _, av := range a {
		for _, bv := range b {
			if value.Equal(av, bv) {
				out = append(out, av)
				break
			}
		}
	}
	return out
}

// Check evaluates every chained constraint against v, short-circuiting
// on the first failure, in the teacher's ConstraintGroup.Constrain
// style.
func (c *Constraint) Check(v value.Value) error {
	for n := c; n != nil; n = n.Next {
		if err := n.checkOne(v); err != nil {
			return err
		}
	}
	return nil
}

func (c *Constraint) checkOne(v value.Value) error {
	switch c.Kind {
	case ConstraintValueRange:
		if c.Unbounded {
			return nil
		}
		n := v.Int64()
		if n < c.Lower || n > c.Upper {
			return errOutOfRange(n, c.Lower, c.Upper)
		}
	case ConstraintSize:
		if c.Unbounded {
			return nil
		}
		n := int64(sizeOf(v))
		if n < c.Lower || n > c.Upper {
			return errSizeOutOfRange(n, c.Lower, c.Upper)
		}
	case ConstraintValueSet:
		for _, allowed := range c.Values {
			if value.Equal(v, allowed) {
				return nil
			}
		}
		return errNotInValueSet()
	}
	return nil
}

func sizeOf(v value.Value) int {
	switch v.Kind {
	case value.KindBytes:
		return len(v.Bytes())
	case value.KindText:
		return len([]rune(v.Text()))
	case value.KindList:
		return len(v.List())
	case value.KindBitString:
		return v.BitString().Bits
	}
	return 0
}
