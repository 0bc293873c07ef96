package token

import "testing"

func TestLookupKeyword(t *testing.T) {
	if k := Lookup("SEQUENCE"); k != KwSEQUENCE {
		t.Errorf("Lookup(SEQUENCE) = %v, want KwSEQUENCE", k)
	}
}

func TestLookupTypeReference(t *testing.T) {
	if k := Lookup("MyType"); k != TypeReference {
		t.Errorf("Lookup(MyType) = %v, want TypeReference", k)
	}
}

func TestLookupIdentifier(t *testing.T) {
	if k := Lookup("myValue"); k != Identifier {
		t.Errorf("Lookup(myValue) = %v, want Identifier", k)
	}
}
