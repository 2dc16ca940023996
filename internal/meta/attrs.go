package meta

import "strings"

// TypeAttrs mirrors the type flags of compiled metadata.
type TypeAttrs uint32

const (
	TypeNotPublic         TypeAttrs = 0x0
	TypePublic            TypeAttrs = 0x1
	TypeNestedPublic      TypeAttrs = 0x2
	TypeNestedPrivate     TypeAttrs = 0x3
	TypeNestedFamily      TypeAttrs = 0x4
	TypeNestedAssembly    TypeAttrs = 0x5
	TypeNestedFamANDAssem TypeAttrs = 0x6
	TypeNestedFamORAssem  TypeAttrs = 0x7
	TypeVisibilityMask    TypeAttrs = 0x7

	TypeInterface       TypeAttrs = 0x20
	TypeAbstract        TypeAttrs = 0x80
	TypeSealed          TypeAttrs = 0x100
	TypeSerializable    TypeAttrs = 0x2000
	TypeBeforeFieldInit TypeAttrs = 0x100000
)

var typeVisibilityNames = [...]string{
	"private", "public", "nested public", "nested private",
	"nested family", "nested assembly", "nested famandassem", "nested famorassem",
}

// Visibility returns only the visibility tier bits.
func (a TypeAttrs) Visibility() TypeAttrs { return a & TypeVisibilityMask }

func (a TypeAttrs) Has(flag TypeAttrs) bool { return a&flag == flag }

// IsNested reports whether the visibility tier is one of the nested tiers.
func (a TypeAttrs) IsNested() bool { return a.Visibility() >= TypeNestedPublic }

var typeFlagNames = []struct {
	flag TypeAttrs
	name string
}{
	{TypeInterface, "interface"},
	{TypeAbstract, "abstract"},
	{TypeSealed, "sealed"},
	{TypeSerializable, "serializable"},
	{TypeBeforeFieldInit, "beforefieldinit"},
}

func (a TypeAttrs) String() string {
	parts := []string{typeVisibilityNames[a.Visibility()]}
	for _, f := range typeFlagNames[:3] {
		if a.Has(f.flag) {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, " ")
}

// VisibilityName returns the textual visibility tier.
func (a TypeAttrs) VisibilityName() string { return typeVisibilityNames[a.Visibility()] }

// FlagNames lists the non-visibility flags that are set.
func (a TypeAttrs) FlagNames() []string {
	var out []string
	for _, f := range typeFlagNames {
		if a.Has(f.flag) {
			out = append(out, f.name)
		}
	}
	return out
}

// ParseTypeFlag maps a textual type modifier to its flag.
func ParseTypeFlag(s string) (TypeAttrs, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range typeFlagNames {
		if f.name == s {
			return f.flag, true
		}
	}
	return 0, false
}

// ParseTypeVisibility maps textual visibility to its tier.
func ParseTypeVisibility(s string) (TypeAttrs, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "internal" || s == "notpublic" {
		return TypeNotPublic, true
	}
	for i, name := range typeVisibilityNames {
		if name == s || strings.ReplaceAll(name, " ", "_") == s {
			return TypeAttrs(i), true
		}
	}
	return 0, false
}

// MethodAttrs mirrors the method flags of compiled metadata.
type MethodAttrs uint16

const (
	MethodCompilerControlled MethodAttrs = 0x0
	MethodPrivate            MethodAttrs = 0x1
	MethodFamANDAssem        MethodAttrs = 0x2
	MethodAssembly           MethodAttrs = 0x3
	MethodFamily             MethodAttrs = 0x4
	MethodFamORAssem         MethodAttrs = 0x5
	MethodPublic             MethodAttrs = 0x6
	MethodAccessMask         MethodAttrs = 0x7

	MethodStatic        MethodAttrs = 0x10
	MethodFinal         MethodAttrs = 0x20
	MethodVirtual       MethodAttrs = 0x40
	MethodHideBySig     MethodAttrs = 0x80
	MethodNewSlot       MethodAttrs = 0x100
	MethodAbstract      MethodAttrs = 0x400
	MethodSpecialName   MethodAttrs = 0x800
	MethodRTSpecialName MethodAttrs = 0x1000
	MethodPInvokeImpl   MethodAttrs = 0x2000
)

var accessNames = [...]string{
	"compilercontrolled", "private", "famandassem", "assembly",
	"family", "famorassem", "public", "",
}

// Access returns only the access tier bits.
func (a MethodAttrs) Access() MethodAttrs { return a & MethodAccessMask }

func (a MethodAttrs) Has(flag MethodAttrs) bool { return a&flag == flag }

// WithAccess replaces the access tier.
func (a MethodAttrs) WithAccess(access MethodAttrs) MethodAttrs {
	return a&^MethodAccessMask | access&MethodAccessMask
}

var methodFlagNames = []struct {
	flag MethodAttrs
	name string
}{
	{MethodStatic, "static"},
	{MethodFinal, "final"},
	{MethodVirtual, "virtual"},
	{MethodHideBySig, "hidebysig"},
	{MethodNewSlot, "newslot"},
	{MethodAbstract, "abstract"},
	{MethodSpecialName, "specialname"},
	{MethodRTSpecialName, "rtspecialname"},
	{MethodPInvokeImpl, "pinvokeimpl"},
}

func (a MethodAttrs) String() string {
	return strings.Join(append([]string{a.AccessName()}, a.FlagNames()...), " ")
}

// AccessName returns the metadata name of the access tier.
func (a MethodAttrs) AccessName() string { return accessNames[a.Access()] }

// FlagNames lists the non-access flags that are set.
func (a MethodAttrs) FlagNames() []string {
	var out []string
	for _, f := range methodFlagNames {
		if a.Has(f.flag) {
			out = append(out, f.name)
		}
	}
	return out
}

// ParseMemberAccess maps C#-ish or metadata access names to a tier.
func ParseMemberAccess(s string) (MethodAttrs, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "private":
		return MethodPrivate, true
	case "public":
		return MethodPublic, true
	case "internal", "assembly":
		return MethodAssembly, true
	case "protected", "family":
		return MethodFamily, true
	case "protected internal", "famorassem":
		return MethodFamORAssem, true
	case "private protected", "protected and internal", "famandassem":
		return MethodFamANDAssem, true
	case "compilercontrolled":
		return MethodCompilerControlled, true
	}
	return 0, false
}

// ParseMethodFlag maps a textual modifier to its flag.
func ParseMethodFlag(s string) (MethodAttrs, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "static":
		return MethodStatic, true
	case "final", "sealed":
		return MethodFinal, true
	case "virtual":
		return MethodVirtual, true
	case "hidebysig":
		return MethodHideBySig, true
	case "newslot":
		return MethodNewSlot, true
	case "abstract":
		return MethodAbstract, true
	case "specialname":
		return MethodSpecialName, true
	case "rtspecialname":
		return MethodRTSpecialName, true
	case "pinvoke", "pinvokeimpl", "extern":
		return MethodPInvokeImpl, true
	}
	return 0, false
}

// FieldAttrs mirrors the field flags of compiled metadata. Access tiers share
// the method encoding.
type FieldAttrs uint16

const (
	FieldStatic   FieldAttrs = 0x10
	FieldInitOnly FieldAttrs = 0x20
)

func (a FieldAttrs) Access() MethodAttrs { return MethodAttrs(a) & MethodAccessMask }

func (a FieldAttrs) Has(flag FieldAttrs) bool { return a&flag == flag }

// Semantics describes what an accessor method implements for its owner.
type Semantics uint8

const (
	SemNone Semantics = iota
	SemGetter
	SemSetter
	SemAdder
	SemRemover
	SemFire
)

func (s Semantics) String() string {
	switch s {
	case SemGetter:
		return "get"
	case SemSetter:
		return "set"
	case SemAdder:
		return "add"
	case SemRemover:
		return "remove"
	case SemFire:
		return "fire"
	}
	return "none"
}
