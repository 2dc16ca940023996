package meta

import (
	"fmt"

	"fortio.org/safecast"
)

// TypeID identifies a type declaration inside a Module arena.
type TypeID uint32

// MethodID identifies a method declaration inside a Module arena.
type MethodID uint32

// PropertyID identifies a property declaration inside a Module arena.
type PropertyID uint32

// EventID identifies an event declaration inside a Module arena.
type EventID uint32

// FieldID identifies a field declaration inside a Module arena.
type FieldID uint32

const (
	NoTypeID     TypeID     = 0
	NoMethodID   MethodID   = 0
	NoPropertyID PropertyID = 0
	NoEventID    EventID    = 0
	NoFieldID    FieldID    = 0
)

func (id TypeID) IsValid() bool     { return id != NoTypeID }
func (id MethodID) IsValid() bool   { return id != NoMethodID }
func (id PropertyID) IsValid() bool { return id != NoPropertyID }
func (id EventID) IsValid() bool    { return id != NoEventID }
func (id FieldID) IsValid() bool    { return id != NoFieldID }

// MemberKind tags the variant held by a MemberRef.
type MemberKind uint8

const (
	MemberInvalid MemberKind = iota
	MemberMethod
	MemberProperty
	MemberEvent
	MemberField
)

func (k MemberKind) String() string {
	switch k {
	case MemberMethod:
		return "method"
	case MemberProperty:
		return "property"
	case MemberEvent:
		return "event"
	case MemberField:
		return "field"
	default:
		return "invalid"
	}
}

// MemberRef is a tagged reference to any member declaration.
type MemberRef struct {
	Kind  MemberKind
	Index uint32
}

// NoMember marks the absence of a member reference.
var NoMember = MemberRef{}

func MethodRef(id MethodID) MemberRef     { return MemberRef{Kind: MemberMethod, Index: uint32(id)} }
func PropertyRef(id PropertyID) MemberRef { return MemberRef{Kind: MemberProperty, Index: uint32(id)} }
func EventRef(id EventID) MemberRef       { return MemberRef{Kind: MemberEvent, Index: uint32(id)} }
func FieldRef(id FieldID) MemberRef       { return MemberRef{Kind: MemberField, Index: uint32(id)} }

func (r MemberRef) IsValid() bool { return r.Kind != MemberInvalid && r.Index != 0 }

// Method returns the method ID, or NoMethodID when r is another kind.
func (r MemberRef) Method() MethodID {
	if r.Kind != MemberMethod {
		return NoMethodID
	}
	return MethodID(r.Index)
}

func (r MemberRef) Property() PropertyID {
	if r.Kind != MemberProperty {
		return NoPropertyID
	}
	return PropertyID(r.Index)
}

func (r MemberRef) Event() EventID {
	if r.Kind != MemberEvent {
		return NoEventID
	}
	return EventID(r.Index)
}

func (r MemberRef) Field() FieldID {
	if r.Kind != MemberField {
		return NoFieldID
	}
	return FieldID(r.Index)
}

func (r MemberRef) String() string {
	return fmt.Sprintf("%s#%d", r.Kind, r.Index)
}

// nextIndex converts an arena length into the next slot index.
func nextIndex(n int, arena string) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("%s arena overflow: %w", arena, err))
	}
	return v
}
