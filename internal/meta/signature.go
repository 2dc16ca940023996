package meta

import (
	"strconv"
	"strings"
)

// MethodSignature renders the identity of a method apart from its name:
// generic arity, parameter types and return type. Type-level generic
// parameters are substituted with args first, so two methods coming from
// different generic roles compare equal once bound to the same composition.
func (m *Module) MethodSignature(id MethodID, args []TypeRef) string {
	md := m.Method(id)
	if md == nil {
		return ""
	}
	var b strings.Builder
	if n := len(md.GenericParams); n > 0 {
		b.WriteString("``")
		b.WriteString(strconv.Itoa(n))
	}
	writeParams(&b, md.Params, args, '(', ')')
	b.WriteByte(':')
	md.Return.Substitute(args).write(&b)
	return b.String()
}

// PropertySignature renders property type, index parameters and the shape of
// its accessors.
func (m *Module) PropertySignature(id PropertyID, args []TypeRef) string {
	return m.PropertySignatureWith(id, args, nil)
}

// PropertySignatureWith is PropertySignature counting only the accessors keep
// accepts. A nil keep accepts every accessor.
func (m *Module) PropertySignatureWith(id PropertyID, args []TypeRef, keep func(MethodID) bool) string {
	p := m.Property(id)
	if p == nil {
		return ""
	}
	var b strings.Builder
	p.Type.Substitute(args).write(&b)
	if len(p.Params) > 0 {
		writeParams(&b, p.Params, args, '[', ']')
	}
	b.WriteString("{")
	if p.Getter.IsValid() && (keep == nil || keep(p.Getter)) {
		b.WriteString("get;")
	}
	if p.Setter.IsValid() && (keep == nil || keep(p.Setter)) {
		b.WriteString("set;")
	}
	b.WriteString("}")
	return b.String()
}

// EventSignature renders the handler type of an event.
func (m *Module) EventSignature(id EventID, args []TypeRef) string {
	e := m.Event(id)
	if e == nil {
		return ""
	}
	return "event " + e.Type.Substitute(args).String()
}

// Signature dispatches on the member kind.
func (m *Module) Signature(ref MemberRef, args []TypeRef) string {
	switch ref.Kind {
	case MemberMethod:
		return m.MethodSignature(ref.Method(), args)
	case MemberProperty:
		return m.PropertySignature(ref.Property(), args)
	case MemberEvent:
		return m.EventSignature(ref.Event(), args)
	case MemberField:
		if f := m.Field(ref.Field()); f != nil {
			return "field " + f.Type.Substitute(args).String()
		}
	}
	return ""
}

func writeParams(b *strings.Builder, params []Param, args []TypeRef, open, closing byte) {
	b.WriteByte(open)
	for i, p := range params {
		if i > 0 {
			b.WriteByte(',')
		}
		p.Type.Substitute(args).write(b)
	}
	b.WriteByte(closing)
}
