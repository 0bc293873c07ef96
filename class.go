package asn1kit

/*
class.go contains the ASN.1 tag-class constants, grounded on the
teacher's var.go (same constant block, same naming), and ClassNames for
diagnostic formatting.

The teacher's separate notion of a CLASS "template" (information object
class) lives in ir.Class instead: it is compile-time schema metadata
produced by the pre-processor (spec.md §4.2 step 2), not a runtime tag
constant, so it belongs with the rest of the compiled type graph.
*/

const (
	invalidClass int = iota - 1
	ClassUniversal
	ClassApplication
	ClassContextSpecific
	ClassPrivate
)

/*
ClassNames facilitates access to string ASN.1 class names.
*/
var ClassNames = map[int]string{
	invalidClass:         "INVALID CLASS",
	ClassUniversal:       "UNIVERSAL",
	ClassApplication:     "APPLICATION",
	ClassContextSpecific: "CONTEXT SPECIFIC",
	ClassPrivate:         "PRIVATE",
}

func validClass(class int) bool {
	return ClassUniversal <= class && class <= ClassPrivate
}
