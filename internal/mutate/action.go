package mutate

import (
	"fmt"

	"rolecomp/internal/meta"
)

// ActionKind enumerates the deferred edits a pass may request.
type ActionKind uint8

const (
	ActInvalid ActionKind = iota
	// ActRemove detaches a member from its declaring type.
	ActRemove
	// ActClearBody drops a method implementation.
	ActClearBody
	// ActAttach appends an allocated member to Owner.
	ActAttach
	// ActAddInterface adds Interface to Owner's interface list.
	ActAddInterface
	// ActSetTypeAttrs replaces Owner's attributes with TypeAttrs.
	ActSetTypeAttrs
	// ActClearBase drops Owner's base type.
	ActClearBase
	// ActSetMethodAttrs replaces the attributes of the Member method.
	ActSetMethodAttrs
	// ActAddAttr adds the custom attribute Attr to Member.
	ActAddAttr
)

func (k ActionKind) String() string {
	switch k {
	case ActRemove:
		return "remove"
	case ActClearBody:
		return "clear-body"
	case ActAttach:
		return "attach"
	case ActAddInterface:
		return "add-interface"
	case ActSetTypeAttrs:
		return "set-type-attrs"
	case ActClearBase:
		return "clear-base"
	case ActSetMethodAttrs:
		return "set-method-attrs"
	case ActAddAttr:
		return "add-attr"
	}
	return "invalid"
}

// Action is one planned edit of the declaration graph.
type Action struct {
	Kind      ActionKind
	Member    meta.MemberRef
	Owner     meta.TypeID
	Interface meta.TypeRef

	TypeAttrs   meta.TypeAttrs
	MethodAttrs meta.MethodAttrs
	Attr        meta.CustomAttr

	// Seq is the position in the queue, assigned on scheduling.
	Seq uint32
}

// RemoveMember plans detaching ref from its declaring type.
func RemoveMember(ref meta.MemberRef) Action {
	return Action{Kind: ActRemove, Member: ref}
}

// ClearBody plans dropping the body of a method.
func ClearBody(id meta.MethodID) Action {
	return Action{Kind: ActClearBody, Member: meta.MethodRef(id)}
}

// AttachMember plans adding an allocated member to owner.
func AttachMember(owner meta.TypeID, ref meta.MemberRef) Action {
	return Action{Kind: ActAttach, Owner: owner, Member: ref}
}

// AddInterface plans making owner implement iface.
func AddInterface(owner meta.TypeID, iface meta.TypeRef) Action {
	return Action{Kind: ActAddInterface, Owner: owner, Interface: iface}
}

// SetTypeAttrs plans replacing the attributes of owner.
func SetTypeAttrs(owner meta.TypeID, attrs meta.TypeAttrs) Action {
	return Action{Kind: ActSetTypeAttrs, Owner: owner, TypeAttrs: attrs}
}

// ClearBase plans dropping the base type of owner.
func ClearBase(owner meta.TypeID) Action {
	return Action{Kind: ActClearBase, Owner: owner}
}

// SetMethodAttrs plans replacing the attributes of a method.
func SetMethodAttrs(id meta.MethodID, attrs meta.MethodAttrs) Action {
	return Action{Kind: ActSetMethodAttrs, Member: meta.MethodRef(id), MethodAttrs: attrs}
}

// AddCustomAttr plans attaching attr to ref.
func AddCustomAttr(ref meta.MemberRef, attr meta.CustomAttr) Action {
	return Action{Kind: ActAddAttr, Member: ref, Attr: attr}
}

// key identifies an action independent of its queue position.
func (a Action) key() string {
	switch a.Kind {
	case ActAddInterface:
		return fmt.Sprintf("%s:%d:%s", a.Kind, a.Owner, a.Interface)
	case ActAddAttr:
		return fmt.Sprintf("%s:%s:%s", a.Kind, a.Member, a.Attr.Type)
	default:
		return fmt.Sprintf("%s:%d:%s", a.Kind, a.Owner, a.Member)
	}
}

func (a Action) String() string {
	switch a.Kind {
	case ActAttach:
		return fmt.Sprintf("%s %s to type#%d", a.Kind, a.Member, a.Owner)
	case ActAddInterface:
		return fmt.Sprintf("%s %s to type#%d", a.Kind, a.Interface, a.Owner)
	case ActSetTypeAttrs:
		return fmt.Sprintf("%s type#%d [%s]", a.Kind, a.Owner, a.TypeAttrs)
	case ActClearBase:
		return fmt.Sprintf("%s type#%d", a.Kind, a.Owner)
	case ActSetMethodAttrs:
		return fmt.Sprintf("%s %s [%s]", a.Kind, a.Member, a.MethodAttrs)
	case ActAddAttr:
		return fmt.Sprintf("%s %s to %s", a.Kind, a.Attr.Type, a.Member)
	default:
		return fmt.Sprintf("%s %s", a.Kind, a.Member)
	}
}

func (a Action) apply(mod *meta.Module) {
	switch a.Kind {
	case ActRemove:
		mod.Remove(a.Member)
	case ActClearBody:
		mod.ClearBody(a.Member.Method())
	case ActAttach:
		mod.Attach(a.Owner, a.Member)
	case ActAddInterface:
		mod.AddInterface(a.Owner, a.Interface)
	case ActSetTypeAttrs:
		if t := mod.Type(a.Owner); t != nil {
			t.Attrs = a.TypeAttrs
		}
	case ActClearBase:
		if t := mod.Type(a.Owner); t != nil {
			t.Base = nil
		}
	case ActSetMethodAttrs:
		if md := mod.Method(a.Member.Method()); md != nil {
			md.Attrs = a.MethodAttrs
		}
	case ActAddAttr:
		mod.AddMemberAttr(a.Member, a.Attr)
	}
}
