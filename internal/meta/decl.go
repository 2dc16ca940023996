package meta

import (
	"slices"

	"rolecomp/internal/source"
)

// GenericParam declares a generic parameter of a type or method.
type GenericParam struct {
	Name        string
	Constraints []TypeRef
}

// Param is a method or indexer parameter.
type Param struct {
	Name string
	Type TypeRef
}

// CustomAttr is a custom attribute instance: the attribute type name and its
// positional arguments rendered as text.
type CustomAttr struct {
	Type string
	Args []string
}

// Instruction is one opcode of a method body. Bodies are treated as opaque
// except for scanning operands that reference other members.
type Instruction struct {
	Op      string
	Operand string
}

// Body is a method body.
type Body struct {
	Instructions []Instruction
}

// Clone returns a deep copy of the body.
func (b *Body) Clone() *Body {
	if b == nil {
		return nil
	}
	return &Body{Instructions: slices.Clone(b.Instructions)}
}

// TypeDecl is a compiled type declaration.
type TypeDecl struct {
	ID            TypeID
	Name          string
	Attrs         TypeAttrs
	Base          *TypeRef
	Interfaces    []TypeRef
	GenericParams []GenericParam
	DeclaringType TypeID
	Methods       []MethodID
	Properties    []PropertyID
	Events        []EventID
	Fields        []FieldID
	CustomAttrs   []CustomAttr
	Location      source.Location
}

// IsInterface reports whether the type is interface-shaped.
func (t *TypeDecl) IsInterface() bool { return t.Attrs.Has(TypeInterface) }

// IsAbstract reports whether the type is abstract (interfaces included).
func (t *TypeDecl) IsAbstract() bool { return t.Attrs.Has(TypeAbstract) }

// GenericParamIndex returns the position of the named generic parameter or -1.
func (t *TypeDecl) GenericParamIndex(name string) int {
	for i, gp := range t.GenericParams {
		if gp.Name == name {
			return i
		}
	}
	return -1
}

// MethodDecl is a compiled method declaration.
type MethodDecl struct {
	ID            MethodID
	Name          string
	Declaring     TypeID
	Attrs         MethodAttrs
	Params        []Param
	Return        TypeRef
	GenericParams []GenericParam
	Body          *Body
	Semantics     Semantics
	Owner         MemberRef
	Overrides     []string
	CustomAttrs   []CustomAttr
	Location      source.Location
}

const (
	CtorName       = ".ctor"
	StaticCtorName = ".cctor"
)

// IsConstructor reports whether the method is an instance or type initializer.
func (m *MethodDecl) IsConstructor() bool {
	return m.Name == CtorName || m.Name == StaticCtorName
}

// IsParameterizedConstructor reports an instance constructor taking arguments.
func (m *MethodDecl) IsParameterizedConstructor() bool {
	return m.Name == CtorName && len(m.Params) > 0
}

// IsAccessor reports whether the method implements a property or event accessor.
func (m *MethodDecl) IsAccessor() bool { return m.Semantics != SemNone }

// HasBody reports whether the method carries an implementation.
func (m *MethodDecl) HasBody() bool { return m.Body != nil }

// IsStatic reports whether the method is static.
func (m *MethodDecl) IsStatic() bool { return m.Attrs.Has(MethodStatic) }

// IsAbstract reports whether the method is abstract.
func (m *MethodDecl) IsAbstract() bool { return m.Attrs.Has(MethodAbstract) }

// PropertyDecl is a compiled property declaration.
type PropertyDecl struct {
	ID          PropertyID
	Name        string
	Declaring   TypeID
	Type        TypeRef
	Params      []Param
	Getter      MethodID
	Setter      MethodID
	CustomAttrs []CustomAttr
	Location    source.Location
}

// Accessors returns the accessor methods that are set.
func (p *PropertyDecl) Accessors() []MethodID {
	return validMethods(p.Getter, p.Setter)
}

// EventDecl is a compiled event declaration.
type EventDecl struct {
	ID          EventID
	Name        string
	Declaring   TypeID
	Type        TypeRef
	Adder       MethodID
	Remover     MethodID
	Invoker     MethodID
	CustomAttrs []CustomAttr
	Location    source.Location
}

// Accessors returns the accessor methods that are set.
func (e *EventDecl) Accessors() []MethodID {
	return validMethods(e.Adder, e.Remover, e.Invoker)
}

// FieldDecl is a compiled field declaration.
type FieldDecl struct {
	ID          FieldID
	Name        string
	Declaring   TypeID
	Type        TypeRef
	Attrs       FieldAttrs
	CustomAttrs []CustomAttr
	Location    source.Location
}

func validMethods(ids ...MethodID) []MethodID {
	out := make([]MethodID, 0, len(ids))
	for _, id := range ids {
		if id.IsValid() {
			out = append(out, id)
		}
	}
	return out
}

// FindAttr returns the first attribute of the given type.
func FindAttr(attrs []CustomAttr, typeName string) (CustomAttr, bool) {
	for _, a := range attrs {
		if a.Type == typeName {
			return a, true
		}
	}
	return CustomAttr{}, false
}

// HasAttr reports whether attrs contain an attribute of the given type.
func HasAttr(attrs []CustomAttr, typeName string) bool {
	_, ok := FindAttr(attrs, typeName)
	return ok
}

func cloneAttrs(attrs []CustomAttr) []CustomAttr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]CustomAttr, len(attrs))
	for i, a := range attrs {
		out[i] = CustomAttr{Type: a.Type, Args: slices.Clone(a.Args)}
	}
	return out
}
