/*
Package ast declares the parse-tree node types the parser produces, one
per X.680 production this toolkit supports (spec.md §4.1). Nodes are
plain data — the pre-processor and type compiler in package ir do all
semantic work; the parser itself performs no resolution, matching
spec.md §4.1's division of labor.
*/
package ast

// Module is one parsed ASN.1 module (a "Foo-Module DEFINITIONS ::=
// BEGIN ... END" unit).
type Module struct {
	Name            string
	OID             *ObjectID // module identifier, if present
	TagDefault      TagDefault
	ExtensibilityImplied bool
	Imports         []Import
	Exports         []string // exported symbol names, nil means export-all
	Assignments     []Assignment
}

type TagDefault uint8

const (
	TagsExplicit TagDefault = iota
	TagsImplicit
	TagsAutomatic
)

// Import names the symbols imported FROM one other module.
type Import struct {
	Symbols []string
	Module  string
	OID     *ObjectID
}

// ObjectID is a parsed "{ iso(1) member-body(2) ... }" OID value, kept
// as parallel name/number slices since an arc may carry either or both.
type ObjectID struct {
	Names   []string
	Numbers []int // -1 where the arc gave only a name
}

// Assignment is either a TypeAssignment, a ValueAssignment, or a
// ClassAssignment (CLASS definitions), distinguished by which pointer
// field is non-nil.
type Assignment struct {
	Type  *TypeAssignment
	Value *ValueAssignment
	Class *ClassAssignment
}

type TypeAssignment struct {
	Name       string
	Params     []string // formal parameters, for parameterized type assignments
	Type       Type
}

type ValueAssignment struct {
	Name string
	Type Type
	Val  Value
}

// ClassAssignment is an information object CLASS definition (X.681):
// "ERROR ::= CLASS { &code INTEGER UNIQUE, &message OCTET STRING }".
type ClassAssignment struct {
	Name   string
	Fields []ClassField
	Syntax *Syntax // WITH SYNTAX clause, if present
}

type ClassField struct {
	Reference string // "&code", "&Type", "&id"
	Type      Type   // field's governing type, if a value/value-set field
	IsType    bool   // true if this is a type field ("&Type") rather than a value field
	Optional  bool
	Default   Value
	Unique    bool
}

// Syntax is a WITH SYNTAX clause's token layout, kept as a flat token
// sequence; the pre-processor matches an object's field list against
// it when flattening an object set.
type Syntax struct {
	Tokens []string
}

// Type is the tagged union of every X.680 type production the parser
// recognizes. Exactly one of the typed fields is populated per
// instance, selected by Kind.
type Type struct {
	Kind TypeKind

	// Tag, for "[n] IMPLICIT/EXPLICIT T" wrappers.
	Tag *Tag

	Ref       string   // TypeReference for KindReference, possibly "Module.Type"
	Component *Type    // element type for KindSequenceOf/KindSetOf; aliased type for KindTaggedAlias
	Members   []Member // KindSequence/KindSet/KindChoice components
	Enum      []NamedNumber // KindEnumerated / named-number INTEGER list

	Constraints []Constraint

	ClassRef string // for an object-set/object type built from a CLASS, e.g. "ERROR"
	Params   []Type // actual parameters, for a parameterized-type instantiation
}

type TypeKind uint8

const (
	KindBoolean TypeKind = iota
	KindInteger
	KindEnumerated
	KindReal
	KindBitString
	KindOctetString
	KindNull
	KindOID
	KindRelativeOID
	KindUTF8String
	KindNumericString
	KindPrintableString
	KindT61String
	KindVideotexString
	KindIA5String
	KindGraphicString
	KindVisibleString
	KindGeneralString
	KindUniversalString
	KindBMPString
	KindCharacterString
	KindUTCTime
	KindGeneralizedTime
	KindObjectDescriptor
	KindExternal
	KindEmbeddedPDV
	KindSequence
	KindSet
	KindSequenceOf
	KindSetOf
	KindChoice
	KindAny
	KindAnyDefinedBy
	KindReference // a named TypeReference used elsewhere
	KindObjectClassField // "ERROR.&Type" style field reference
)

// Tag is a parsed "[class number]" prefix plus its explicit/implicit
// override keyword, if any (resolution against the module TagDefault
// happens in the pre-processor, spec.md §4.2 step 4).
type Tag struct {
	Class    string // "", "APPLICATION", "UNIVERSAL", "PRIVATE" ("" means context-specific)
	Number   int
	Explicit bool
	Implicit bool
}

// Member is one SEQUENCE/SET/CHOICE component as written in source.
type Member struct {
	Name       string
	Type       Type
	Optional   bool
	Default    *Value
	ExtMarker  bool // true for the "..." placeholder member itself
	ExtGroupID int  // >=0 if this member is inside an extension addition group "[[ ... ]]"
	ComponentsOf *Type // non-nil for "COMPONENTS OF T"
}

type NamedNumber struct {
	Name   string
	Number int
}

// Constraint is a parsed subtype constraint, kept unresolved
// (ir.Constraint is the resolved/intersected form built from this).
type Constraint struct {
	Kind ConstraintKind

	Lower, Upper *ConstraintBound // ConstraintKindValueRange / ConstraintKindSize
	Alphabet     string           // ConstraintKindAlphabet
	Values       []Value          // ConstraintKindValueSet
	TableRef     string           // ConstraintKindTable: "{ObjectSet}"
	Extensible   bool
}

type ConstraintKind uint8

const (
	ConstraintKindValueRange ConstraintKind = iota
	ConstraintKindSize
	ConstraintKindAlphabet
	ConstraintKindValueSet
	ConstraintKindTable
)

// ConstraintBound is one side of a range constraint: either MIN/MAX or
// a literal integer.
type ConstraintBound struct {
	Min, Max bool
	Value    int64
}

// Value is the tagged union of parsed ASN.1 value literals.
type Value struct {
	Kind    ValueKind
	Bool    bool
	Int     int64
	Text    string // CString / identifier-as-value
	Bits    string // BString raw digits
	Hex     string // HString raw digits
	OID     *ObjectID
	List    []Value // SEQUENCE OF / SET OF value literal
	ChoiceAlt string
	ChoiceVal *Value
	Ref     string // reference to another value assignment
}

type ValueKind uint8

const (
	ValBoolean ValueKind = iota
	ValInteger
	ValCString
	ValBString
	ValHString
	ValNull
	ValOID
	ValList
	ValChoice
	ValReference
)
