package asn1kit

import (
	"errors"
	"testing"

	"github.com/JesseCoretta/go-asn1kit/value"
)

const widgetModule = `Test-Module DEFINITIONS ::= BEGIN
Widget ::= SEQUENCE {
    id INTEGER,
    active BOOLEAN,
    label OCTET STRING OPTIONAL
}
END`

func compileWidget(t *testing.T, codec Codec) *Specification {
	t.Helper()
	mods, err := Parse(SourceText(widgetModule))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	spec, err := Compile(mods, codec)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	return spec
}

func widgetValue() value.Value {
	return value.Map(
		value.Field{Name: "id", Value: value.Int(7)},
		value.Field{Name: "active", Value: value.Bool(true)},
	)
}

func TestEndToEndDER(t *testing.T) {
	spec := compileWidget(t, DER)
	v := widgetValue()

	enc, err := spec.Encode("Widget", v)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	dec, err := spec.Decode("Widget", enc)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !value.Equal(v, dec) {
		t.Errorf("round-trip Widget = %+v, want %+v", dec, v)
	}
}

func TestEndToEndUPER(t *testing.T) {
	spec := compileWidget(t, UPER)
	v := widgetValue()

	enc, err := spec.Encode("Widget", v)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	dec, err := spec.Decode("Widget", enc)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !value.Equal(v, dec) {
		t.Errorf("round-trip Widget = %+v, want %+v", dec, v)
	}
}

func TestEndToEndJER(t *testing.T) {
	spec := compileWidget(t, JER)
	v := widgetValue()

	enc, err := spec.Encode("Widget", v)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	dec, err := spec.Decode("Widget", enc)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !value.Equal(v, dec) {
		t.Errorf("round-trip Widget = %+v, want %+v", dec, v)
	}
}

func TestEndToEndXER(t *testing.T) {
	spec := compileWidget(t, XER)
	v := widgetValue()

	enc, err := spec.Encode("Widget", v)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	dec, err := spec.Decode("Widget", enc)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !value.Equal(v, dec) {
		t.Errorf("round-trip Widget = %+v, want %+v", dec, v)
	}
}

func TestEndToEndGSEREncodeOnly(t *testing.T) {
	spec := compileWidget(t, GSER)
	v := widgetValue()

	enc, err := spec.Encode("Widget", v)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	want := "{ id 7, active TRUE }"
	if string(enc) != want {
		t.Errorf("Encode() = %s, want %s", enc, want)
	}
	if _, err := spec.Decode("Widget", enc); err == nil {
		t.Errorf("Decode() under GSER should report no decode direction")
	}
}

func TestCompileUnknownTypeNameErrors(t *testing.T) {
	spec := compileWidget(t, DER)
	if _, err := spec.Encode("NoSuchType", value.Null()); err == nil {
		t.Errorf("Encode() with an unknown type name should error")
	}
}

const boundedModule = `Test-Module DEFINITIONS ::= BEGIN
Percent ::= INTEGER (0..100)
END`

func TestEncodeConstraintViolationReportsEncodeError(t *testing.T) {
	mods, err := Parse(SourceText(boundedModule))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	spec, err := Compile(mods, DER)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	_, err = spec.Encode("Percent", value.Int(200))
	if err == nil {
		t.Fatalf("Encode() with an out-of-range INTEGER should error")
	}
	var encErr *EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("Encode() error = %T, want *EncodeError (directly or via *ConstraintsError)", err)
	}
	var constraintErr *ConstraintsError
	if !errors.As(err, &constraintErr) {
		t.Errorf("Encode() error = %v, want it to unwrap to *ConstraintsError", err)
	}
}

func TestDecodeTruncatedInputReportsDecodeError(t *testing.T) {
	spec := compileWidget(t, DER)
	_, err := spec.Decode("Widget", []byte{0x30, 0x7f, 0x02, 0x01})
	if err == nil {
		t.Fatalf("Decode() of truncated input should error")
	}
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("Decode() error = %T, want *DecodeError", err)
	}
}

func TestTypesListsWidget(t *testing.T) {
	spec := compileWidget(t, DER)
	found := false
	for _, name := range spec.Types() {
		if name == "Widget" {
			found = true
		}
	}
	if !found {
		t.Errorf("Types() = %v, want it to include Widget", spec.Types())
	}
}
