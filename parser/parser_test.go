package parser

import (
	"testing"

	"github.com/JesseCoretta/go-asn1kit/ast"
)

func TestParseSimpleModuleHeader(t *testing.T) {
	src := `Foo-Module DEFINITIONS ::= BEGIN END`
	m, err := Parse(src, "")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if m.Name != "Foo-Module" {
		t.Errorf("Name = %q, want Foo-Module", m.Name)
	}
}

func TestParseModuleWithOIDAndTagDefault(t *testing.T) {
	src := `Foo-Module { iso(1) member-body(2) } DEFINITIONS IMPLICIT TAGS EXTENSIBILITY IMPLIED ::= BEGIN END`
	m, err := Parse(src, "")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if m.OID == nil || len(m.OID.Names) != 2 {
		t.Fatalf("OID = %+v, want 2 arcs", m.OID)
	}
	if m.TagDefault != ast.TagsImplicit {
		t.Errorf("TagDefault = %v, want TagsImplicit", m.TagDefault)
	}
	if !m.ExtensibilityImplied {
		t.Errorf("ExtensibilityImplied = false, want true")
	}
}

func TestParseExportsAndImports(t *testing.T) {
	src := `Foo-Module DEFINITIONS ::= BEGIN
EXPORTS Widget, gadget;
IMPORTS Base FROM Bar-Module;
END`
	m, err := Parse(src, "")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(m.Exports) != 2 || m.Exports[0] != "Widget" || m.Exports[1] != "gadget" {
		t.Errorf("Exports = %v, want [Widget gadget]", m.Exports)
	}
	if len(m.Imports) != 1 || m.Imports[0].Module != "Bar-Module" || len(m.Imports[0].Symbols) != 1 {
		t.Errorf("Imports = %+v", m.Imports)
	}
}

func TestParseTypeAssignmentSequence(t *testing.T) {
	src := `Foo-Module DEFINITIONS ::= BEGIN
Widget ::= SEQUENCE {
    id INTEGER,
    label OCTET STRING OPTIONAL,
    ...
}
END`
	m, err := Parse(src, "")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(m.Assignments) != 1 || m.Assignments[0].Type == nil {
		t.Fatalf("Assignments = %+v, want 1 TypeAssignment", m.Assignments)
	}
	ta := m.Assignments[0].Type
	if ta.Name != "Widget" || ta.Type.Kind != ast.KindSequence {
		t.Fatalf("TypeAssignment = %+v", ta)
	}
	if len(ta.Type.Members) != 3 {
		t.Fatalf("Members = %+v, want 3 (id, label, ext-marker)", ta.Type.Members)
	}
	if !ta.Type.Members[1].Optional {
		t.Errorf("label member Optional = false, want true")
	}
	if !ta.Type.Members[2].ExtMarker {
		t.Errorf("third member should be the extension marker")
	}
}

func TestParseValueAssignment(t *testing.T) {
	src := `Foo-Module DEFINITIONS ::= BEGIN
maxWidgets INTEGER ::= 100
END`
	m, err := Parse(src, "")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(m.Assignments) != 1 || m.Assignments[0].Value == nil {
		t.Fatalf("Assignments = %+v, want 1 ValueAssignment", m.Assignments)
	}
	va := m.Assignments[0].Value
	if va.Name != "maxWidgets" || va.Val.Int != 100 {
		t.Errorf("ValueAssignment = %+v", va)
	}
}

func TestParseChoiceAndExtensionAdditionGroup(t *testing.T) {
	src := `Foo-Module DEFINITIONS ::= BEGIN
Pick ::= CHOICE {
    asInt INTEGER,
    asBool BOOLEAN,
    ...,
    [[ asText UTF8String ]]
}
END`
	m, err := Parse(src, "")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	ta := m.Assignments[0].Type
	if ta.Type.Kind != ast.KindChoice {
		t.Fatalf("Kind = %v, want KindChoice", ta.Type.Kind)
	}
	members := ta.Type.Members
	if len(members) != 4 {
		t.Fatalf("Members = %+v, want 4", members)
	}
	last := members[3]
	if last.Name != "asText" || last.ExtGroupID != 0 {
		t.Errorf("extension-addition-group member = %+v, want ExtGroupID 0", last)
	}
}

func TestParseConstraintsValueRangeAndSize(t *testing.T) {
	src := `Foo-Module DEFINITIONS ::= BEGIN
Count ::= INTEGER (0..255)
Label ::= OCTET STRING (SIZE (1..20))
END`
	m, err := Parse(src, "")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	countT := m.Assignments[0].Type.Type
	if len(countT.Constraints) != 1 || countT.Constraints[0].Kind != ast.ConstraintKindValueRange {
		t.Fatalf("Count constraints = %+v", countT.Constraints)
	}
	if countT.Constraints[0].Lower.Value != 0 || countT.Constraints[0].Upper.Value != 255 {
		t.Errorf("Count range = %+v", countT.Constraints[0])
	}

	labelT := m.Assignments[1].Type.Type
	if len(labelT.Constraints) != 1 || labelT.Constraints[0].Kind != ast.ConstraintKindSize {
		t.Fatalf("Label constraints = %+v", labelT.Constraints)
	}
}

func TestParseTaggedTypeExplicitAndImplicit(t *testing.T) {
	src := `Foo-Module DEFINITIONS ::= BEGIN
Tagged ::= [3] EXPLICIT INTEGER
Plain ::= [APPLICATION 1] IMPLICIT OCTET STRING
END`
	m, err := Parse(src, "")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	taggedT := m.Assignments[0].Type.Type
	if taggedT.Tag == nil || taggedT.Tag.Number != 3 || !taggedT.Tag.Explicit {
		t.Fatalf("Tagged.Tag = %+v", taggedT.Tag)
	}
	plainT := m.Assignments[1].Type.Type
	if plainT.Tag == nil || plainT.Tag.Class != "APPLICATION" || !plainT.Tag.Implicit {
		t.Fatalf("Plain.Tag = %+v", plainT.Tag)
	}
}

func TestParseBitStringOctetStringWordSplit(t *testing.T) {
	src := `Foo-Module DEFINITIONS ::= BEGIN
Flags ::= BIT STRING
Raw ::= OCTET STRING
Oid ::= OBJECT IDENTIFIER
END`
	m, err := Parse(src, "")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if m.Assignments[0].Type.Type.Kind != ast.KindBitString {
		t.Errorf("Flags.Kind = %v, want KindBitString", m.Assignments[0].Type.Type.Kind)
	}
	if m.Assignments[1].Type.Type.Kind != ast.KindOctetString {
		t.Errorf("Raw.Kind = %v, want KindOctetString", m.Assignments[1].Type.Type.Kind)
	}
	if m.Assignments[2].Type.Type.Kind != ast.KindOID {
		t.Errorf("Oid.Kind = %v, want KindOID", m.Assignments[2].Type.Type.Kind)
	}
}

func TestParseSequenceOf(t *testing.T) {
	src := `Foo-Module DEFINITIONS ::= BEGIN
Widgets ::= SEQUENCE OF INTEGER
END`
	m, err := Parse(src, "")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	ta := m.Assignments[0].Type.Type
	if ta.Kind != ast.KindSequenceOf || ta.Component == nil || ta.Component.Kind != ast.KindInteger {
		t.Fatalf("Widgets = %+v", ta)
	}
}

func TestParseErrorOnMissingEnd(t *testing.T) {
	src := `Foo-Module DEFINITIONS ::= BEGIN`
	if _, err := Parse(src, ""); err == nil {
		t.Errorf("Parse() expected error for missing END")
	}
}

func TestParseErrorReportsPath(t *testing.T) {
	src := `Foo-Module DEFINITIONS ::= BEGIN`
	_, err := Parse(src, "mod.asn1")
	if err == nil {
		t.Fatalf("Parse() expected error")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if pe.Path != "mod.asn1" {
		t.Errorf("ParseError.Path = %q, want mod.asn1", pe.Path)
	}
}
