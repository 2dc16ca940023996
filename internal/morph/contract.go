package morph

import (
	"rolecomp/internal/meta"
)

// RemainsInInterface decides whether a role method survives into the role's
// contract. Non-public-facing tiers, constructors and static methods do not.
func RemainsInInterface(md *meta.MethodDecl) bool {
	if md == nil || md.IsConstructor() || md.IsStatic() {
		return false
	}
	switch md.Attrs.Access() {
	case meta.MethodPublic, meta.MethodFamily, meta.MethodFamORAssem:
		return true
	}
	return false
}

// contractAttrs are forced onto every retained role method.
const contractAttrs = meta.MethodPublic | meta.MethodHideBySig | meta.MethodNewSlot | meta.MethodAbstract | meta.MethodVirtual

// InterfaceShape returns the attributes a role type carries once morphed:
// visibility is kept, class-only flags are dropped.
func InterfaceShape(attrs meta.TypeAttrs) meta.TypeAttrs {
	visibility := attrs.Visibility()
	attrs &^= meta.TypeVisibilityMask | meta.TypeSealed | meta.TypeSerializable | meta.TypeBeforeFieldInit
	return attrs | visibility | meta.TypeInterface | meta.TypeAbstract
}

// ContractMethodAttrs returns the attributes of a retained role method once
// morphed.
func ContractMethodAttrs(md *meta.MethodDecl) meta.MethodAttrs {
	attrs := md.Attrs&^(meta.MethodAccessMask|meta.MethodFinal) | contractAttrs
	if md.IsAccessor() {
		attrs |= meta.MethodSpecialName
	}
	return attrs
}

// IsGuarded reports whether the access tier needs the family-access marker
// once it is widened to public.
func IsGuarded(access meta.MethodAttrs) bool {
	return access == meta.MethodFamily || access == meta.MethodFamORAssem
}

// Contract lists the members of a role that make up its contract, in member
// order: properties and events with at least one surviving accessor, then
// plain methods that remain in the interface. Accessors are represented by
// their owners and fields never take part.
//
// The answer is the same before and after the role has been morphed, so
// callers may use it while morph removals are still pending.
func Contract(mod *meta.Module, role meta.TypeID) []meta.MemberRef {
	var out []meta.MemberRef
	for _, ref := range mod.Members(role) {
		switch ref.Kind {
		case meta.MemberProperty, meta.MemberEvent:
			if len(SurvivingAccessors(mod, ref)) > 0 {
				out = append(out, ref)
			}
		case meta.MemberMethod:
			md := mod.Method(ref.Method())
			if !md.IsAccessor() && RemainsInInterface(md) {
				out = append(out, ref)
			}
		}
	}
	return out
}

// SurvivingAccessors returns the accessors of a property or event that remain
// in the contract.
func SurvivingAccessors(mod *meta.Module, ref meta.MemberRef) []meta.MethodID {
	var accessors []meta.MethodID
	switch ref.Kind {
	case meta.MemberProperty:
		if p := mod.Property(ref.Property()); p != nil {
			accessors = p.Accessors()
		}
	case meta.MemberEvent:
		if e := mod.Event(ref.Event()); e != nil {
			accessors = e.Accessors()
		}
	}
	out := accessors[:0]
	for _, id := range accessors {
		if RemainsInInterface(mod.Method(id)) {
			out = append(out, id)
		}
	}
	return out
}

// Signature renders a contract member's signature bound through args. For
// properties only surviving accessors count.
func Signature(mod *meta.Module, ref meta.MemberRef, args []meta.TypeRef) string {
	if ref.Kind == meta.MemberProperty {
		return mod.PropertySignatureWith(ref.Property(), args, func(id meta.MethodID) bool {
			return RemainsInInterface(mod.Method(id))
		})
	}
	return mod.Signature(ref, args)
}

// IsRequirement reports whether the contract member carries no implementation
// in the role: an abstract method, or a property/event with a body-less
// surviving accessor.
func IsRequirement(mod *meta.Module, ref meta.MemberRef) bool {
	switch ref.Kind {
	case meta.MemberMethod:
		return !mod.Method(ref.Method()).HasBody()
	case meta.MemberProperty, meta.MemberEvent:
		for _, id := range SurvivingAccessors(mod, ref) {
			if !mod.Method(id).HasBody() {
				return true
			}
		}
	}
	return false
}
