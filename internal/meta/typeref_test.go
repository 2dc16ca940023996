package meta

import "testing"

func TestParseTypeRefRoundTrip(t *testing.T) {
	for _, s := range []string{
		"System.Int32",
		"Roles.Does<Acme.RGreet<Acme.Greeter>>",
		"System.Collections.Generic.Dictionary<!0,System.Collections.Generic.List<!!1>>",
		"!0",
		"!!2",
	} {
		ref, err := ParseTypeRef(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if got := ref.String(); got != s {
			t.Fatalf("round trip: want %q, got %q", s, got)
		}
	}
}

func TestParseTypeRefErrors(t *testing.T) {
	for _, s := range []string{"A<", "A<B", "A<B;C>", "!x", "<A>"} {
		if _, err := ParseTypeRef(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
	void, err := ParseTypeRef("void")
	if err != nil || !void.IsZero() {
		t.Fatalf("void must parse to the zero reference")
	}
}

func TestSubstituteBindsTypeParamsOnly(t *testing.T) {
	ref := MustParseTypeRef("Acme.Pair<!0,!!0>")
	got := ref.Substitute([]TypeRef{Named("Acme.Target")})
	if got.String() != "Acme.Pair<Acme.Target,!!0>" {
		t.Fatalf("unexpected substitution %s", got)
	}
	if ref.String() != "Acme.Pair<!0,!!0>" {
		t.Fatalf("substitution must not mutate the source reference")
	}
	// out of range parameters survive
	if p := TypeParam(3).Substitute([]TypeRef{Named("X")}); p.Kind != RefTypeParam || p.Index != 3 {
		t.Fatalf("out of range parameter must be kept, got %s", p)
	}
}

func TestSelfRef(t *testing.T) {
	decl := &TypeDecl{Name: "Acme.Box", GenericParams: []GenericParam{{Name: "T"}, {Name: "U"}}}
	if got := SelfRef(decl).String(); got != "Acme.Box<!0,!1>" {
		t.Fatalf("SelfRef() = %s", got)
	}
}
