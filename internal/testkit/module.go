// Package testkit builds small declaration graphs for tests.
package testkit

import (
	"fmt"
	"strings"

	"rolecomp/internal/meta"
)

// Builder wraps a module under construction.
type Builder struct {
	Mod *meta.Module
}

// NewBuilder returns a builder over an empty module.
func NewBuilder() *Builder {
	return &Builder{Mod: meta.NewModule("testkit")}
}

// Type is a handle for adding members to a declared type.
type Type struct {
	mod *meta.Module
	ID  meta.TypeID
}

// Role declares a public role class deriving from object.
func (b *Builder) Role(name string, generics ...string) *Type {
	base := meta.Named(meta.ObjectTypeName)
	return b.declare(meta.TypeDecl{
		Name:       name,
		Attrs:      meta.TypePublic | meta.TypeBeforeFieldInit,
		Base:       &base,
		Interfaces: []meta.TypeRef{meta.Named(meta.RoleMarker)},
	}, generics)
}

// Class declares a public concrete class deriving from object.
func (b *Builder) Class(name string, generics ...string) *Type {
	base := meta.Named(meta.ObjectTypeName)
	return b.declare(meta.TypeDecl{
		Name:  name,
		Attrs: meta.TypePublic | meta.TypeBeforeFieldInit,
		Base:  &base,
	}, generics)
}

// View declares a role view interface over role.
func (b *Builder) View(name, role string, generics ...string) *Type {
	return b.declare(meta.TypeDecl{
		Name:       name,
		Attrs:      meta.TypePublic | meta.TypeInterface | meta.TypeAbstract,
		Interfaces: []meta.TypeRef{meta.Named(meta.RoleViewMarker, meta.MustParseTypeRef(role))},
	}, generics)
}

func (b *Builder) declare(decl meta.TypeDecl, generics []string) *Type {
	for _, g := range generics {
		decl.GenericParams = append(decl.GenericParams, meta.GenericParam{Name: g})
	}
	id, ok := b.Mod.AddType(decl)
	if !ok {
		panic(fmt.Sprintf("testkit: duplicate type %s", decl.Name))
	}
	return &Type{mod: b.Mod, ID: id}
}

// Decl returns the underlying declaration.
func (t *Type) Decl() *meta.TypeDecl { return t.mod.Type(t.ID) }

// Ref returns a reference to the type, instantiated with args.
func (t *Type) Ref(args ...string) meta.TypeRef {
	ref := meta.Named(t.Decl().Name)
	for _, a := range args {
		ref.Args = append(ref.Args, meta.MustParseTypeRef(a))
	}
	return ref
}

// Base sets the base type.
func (t *Type) Base(ref string) *Type {
	r := meta.MustParseTypeRef(ref)
	t.Decl().Base = &r
	return t
}

// Does adds a composition of the referenced role or role view.
func (t *Type) Does(ref string) *Type {
	d := t.Decl()
	d.Interfaces = append(d.Interfaces, meta.Named(meta.DoesMarker, meta.MustParseTypeRef(ref)))
	return t
}

// Implements adds a plain interface.
func (t *Type) Implements(ref string) *Type {
	d := t.Decl()
	d.Interfaces = append(d.Interfaces, meta.MustParseTypeRef(ref))
	return t
}

// Attr adds a custom attribute to the type.
func (t *Type) Attr(name string, args ...string) *Type {
	d := t.Decl()
	d.CustomAttrs = append(d.CustomAttrs, meta.CustomAttr{Type: name, Args: args})
	return t
}

// Impl adds a public instance method with a body. sig is "(P1,P2):R".
func (t *Type) Impl(name, sig string) meta.MethodID {
	return t.Method(name, sig, meta.MethodPublic|meta.MethodHideBySig, true)
}

// Require adds a public abstract method without a body.
func (t *Type) Require(name, sig string) meta.MethodID {
	return t.Method(name, sig, meta.MethodPublic|meta.MethodHideBySig|meta.MethodVirtual|meta.MethodAbstract|meta.MethodNewSlot, false)
}

// Method adds a method with explicit attributes.
func (t *Type) Method(name, sig string, attrs meta.MethodAttrs, body bool) meta.MethodID {
	params, ret := ParseSig(sig)
	decl := meta.MethodDecl{Name: name, Attrs: attrs, Params: params, Return: ret}
	if body {
		decl.Body = &meta.Body{Instructions: []meta.Instruction{{Op: "ret"}}}
	}
	return t.mod.AddMethod(t.ID, decl)
}

// MethodDecl adds a fully specified method.
func (t *Type) MethodDecl(decl meta.MethodDecl) meta.MethodID {
	return t.mod.AddMethod(t.ID, decl)
}

// Ctor adds an instance constructor taking the given parameter types.
func (t *Type) Ctor(params ...string) meta.MethodID {
	decl := meta.MethodDecl{
		Name:  meta.CtorName,
		Attrs: meta.MethodPublic | meta.MethodHideBySig | meta.MethodSpecialName | meta.MethodRTSpecialName,
		Body:  &meta.Body{Instructions: []meta.Instruction{{Op: "ret"}}},
	}
	for i, p := range params {
		decl.Params = append(decl.Params, meta.Param{Name: fmt.Sprintf("p%d", i), Type: meta.MustParseTypeRef(p)})
	}
	return t.mod.AddMethod(t.ID, decl)
}

// Property adds a property whose accessors use the given access tiers; a zero
// tier (meta.MethodCompilerControlled) omits that accessor.
func (t *Type) Property(name, typ string, get, set meta.MethodAttrs) meta.PropertyID {
	ref := meta.MustParseTypeRef(typ)
	var getter, setter meta.MethodID
	if get != 0 {
		getter = t.accessor("get_"+name, nil, ref, get)
	}
	if set != 0 {
		setter = t.accessor("set_"+name, []meta.Param{{Name: "value", Type: ref}}, meta.TypeRef{}, set)
	}
	return t.mod.AddProperty(t.ID, meta.PropertyDecl{Name: name, Type: ref, Getter: getter, Setter: setter})
}

// Event adds an event with add/remove accessors of the given access tier.
func (t *Type) Event(name, typ string, access meta.MethodAttrs) meta.EventID {
	ref := meta.MustParseTypeRef(typ)
	params := []meta.Param{{Name: "value", Type: ref}}
	add := t.accessor("add_"+name, params, meta.TypeRef{}, access)
	remove := t.accessor("remove_"+name, params, meta.TypeRef{}, access)
	return t.mod.AddEvent(t.ID, meta.EventDecl{Name: name, Type: ref, Adder: add, Remover: remove})
}

// Field adds a private instance field.
func (t *Type) Field(name, typ string) meta.FieldID {
	return t.mod.AddField(t.ID, meta.FieldDecl{Name: name, Type: meta.MustParseTypeRef(typ), Attrs: meta.FieldAttrs(meta.MethodPrivate)})
}

func (t *Type) accessor(name string, params []meta.Param, ret meta.TypeRef, access meta.MethodAttrs) meta.MethodID {
	return t.mod.AddMethod(t.ID, meta.MethodDecl{
		Name:   name,
		Attrs:  access | meta.MethodHideBySig | meta.MethodSpecialName,
		Params: params,
		Return: ret,
		Body:   &meta.Body{Instructions: []meta.Instruction{{Op: "ret"}}},
	})
}

// ParseSig splits "(P1,P2):R" into parameters and return type. An empty
// signature means "():void".
func ParseSig(sig string) ([]meta.Param, meta.TypeRef) {
	sig = strings.TrimSpace(sig)
	if sig == "" {
		return nil, meta.TypeRef{}
	}
	closing := strings.LastIndex(sig, "):")
	if !strings.HasPrefix(sig, "(") || closing < 0 {
		panic(fmt.Sprintf("testkit: bad signature %q", sig))
	}
	ret := meta.MustParseTypeRef(sig[closing+2:])
	inner := sig[1:closing]
	var params []meta.Param
	for i, p := range splitTopLevel(inner) {
		params = append(params, meta.Param{Name: fmt.Sprintf("a%d", i), Type: meta.MustParseTypeRef(p)})
	}
	return params, ret
}

func splitTopLevel(s string) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}
