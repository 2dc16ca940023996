package meta

import (
	"strconv"
	"strings"
)

// RefKind tags the shape of a TypeRef.
type RefKind uint8

const (
	RefNone        RefKind = iota
	RefNamed               // Ns.Name or Ns.Name<Args...>
	RefTypeParam           // !N, positional type-level generic parameter
	RefMethodParam         // !!N, positional method-level generic parameter
)

// TypeRef references a type by name, optionally instantiated with generic
// arguments, or a generic parameter by position.
type TypeRef struct {
	Kind  RefKind
	Name  string
	Args  []TypeRef
	Index int
}

// Named returns a reference to a (possibly generic) named type.
func Named(name string, args ...TypeRef) TypeRef {
	return TypeRef{Kind: RefNamed, Name: name, Args: args}
}

// TypeParam returns a reference to the i-th generic parameter of the enclosing type.
func TypeParam(i int) TypeRef { return TypeRef{Kind: RefTypeParam, Index: i} }

// MethodParam returns a reference to the i-th generic parameter of the enclosing method.
func MethodParam(i int) TypeRef { return TypeRef{Kind: RefMethodParam, Index: i} }

// IsZero reports whether the reference is absent.
func (r TypeRef) IsZero() bool { return r.Kind == RefNone }

func (r TypeRef) String() string {
	var b strings.Builder
	r.write(&b)
	return b.String()
}

func (r TypeRef) write(b *strings.Builder) {
	switch r.Kind {
	case RefNone:
		b.WriteString("void")
	case RefTypeParam:
		b.WriteString("!")
		b.WriteString(strconv.Itoa(r.Index))
	case RefMethodParam:
		b.WriteString("!!")
		b.WriteString(strconv.Itoa(r.Index))
	case RefNamed:
		b.WriteString(r.Name)
		if len(r.Args) == 0 {
			return
		}
		b.WriteByte('<')
		for i, a := range r.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			a.write(b)
		}
		b.WriteByte('>')
	}
}

// Equal compares references structurally.
func (r TypeRef) Equal(o TypeRef) bool {
	if r.Kind != o.Kind || r.Name != o.Name || r.Index != o.Index || len(r.Args) != len(o.Args) {
		return false
	}
	for i := range r.Args {
		if !r.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (r TypeRef) Clone() TypeRef {
	if len(r.Args) == 0 {
		r.Args = nil
		return r
	}
	args := make([]TypeRef, len(r.Args))
	for i, a := range r.Args {
		args[i] = a.Clone()
	}
	r.Args = args
	return r
}

// Substitute replaces type-level generic parameters with args. Parameters
// outside the range of args are kept as they are.
func (r TypeRef) Substitute(args []TypeRef) TypeRef {
	switch r.Kind {
	case RefTypeParam:
		if r.Index >= 0 && r.Index < len(args) {
			return args[r.Index].Clone()
		}
		return r
	case RefNamed:
		if len(r.Args) == 0 {
			return r
		}
		out := TypeRef{Kind: RefNamed, Name: r.Name, Args: make([]TypeRef, len(r.Args))}
		for i, a := range r.Args {
			out.Args[i] = a.Substitute(args)
		}
		return out
	}
	return r
}

// MentionsTypeParam reports whether the type-level parameter idx occurs anywhere in r.
func (r TypeRef) MentionsTypeParam(idx int) bool {
	if r.Kind == RefTypeParam {
		return r.Index == idx
	}
	for _, a := range r.Args {
		if a.MentionsTypeParam(idx) {
			return true
		}
	}
	return false
}

// SubstituteAll applies Substitute to every reference.
func SubstituteAll(refs []TypeRef, args []TypeRef) []TypeRef {
	if len(refs) == 0 {
		return nil
	}
	out := make([]TypeRef, len(refs))
	for i, r := range refs {
		out[i] = r.Substitute(args)
	}
	return out
}

// SelfRef returns the reference a generic type uses for itself: its own name
// instantiated with its own parameters.
func SelfRef(t *TypeDecl) TypeRef {
	if t == nil {
		return TypeRef{}
	}
	ref := Named(t.Name)
	for i := range t.GenericParams {
		ref.Args = append(ref.Args, TypeParam(i))
	}
	return ref
}
