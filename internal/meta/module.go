package meta

import (
	"slices"

	"rolecomp/internal/source"
)

// Module is the in-memory declaration graph of one compiled module. Every
// declaration kind lives in its own slice arena; slot 0 of each arena is a
// sentinel so that zero IDs never resolve. IDs stay stable for the lifetime of
// the module: removing a member detaches it from its declaring type but keeps
// the arena slot.
type Module struct {
	Name string

	types      []TypeDecl
	methods    []MethodDecl
	properties []PropertyDecl
	events     []EventDecl
	fields     []FieldDecl
	byName     map[string]TypeID
}

// NewModule allocates an empty module graph.
func NewModule(name string) *Module {
	return &Module{
		Name:       name,
		types:      make([]TypeDecl, 1, 16),
		methods:    make([]MethodDecl, 1, 64),
		properties: make([]PropertyDecl, 1, 16),
		events:     make([]EventDecl, 1, 8),
		fields:     make([]FieldDecl, 1, 16),
		byName:     make(map[string]TypeID),
	}
}

// AddType registers a type declaration. Member ID lists on decl are ignored;
// members are added through AddMethod and friends. When a type with the same
// name exists, the existing ID is returned and ok is false.
func (m *Module) AddType(decl TypeDecl) (id TypeID, ok bool) {
	if prev, exists := m.byName[decl.Name]; exists {
		return prev, false
	}
	id = TypeID(nextIndex(len(m.types), "types"))
	decl.ID = id
	decl.Methods, decl.Properties, decl.Events, decl.Fields = nil, nil, nil, nil
	m.types = append(m.types, decl)
	m.byName[decl.Name] = id
	return id, true
}

// Type returns the type declaration or nil.
func (m *Module) Type(id TypeID) *TypeDecl {
	if !id.IsValid() || int(id) >= len(m.types) {
		return nil
	}
	return &m.types[id]
}

// Method returns the method declaration or nil.
func (m *Module) Method(id MethodID) *MethodDecl {
	if !id.IsValid() || int(id) >= len(m.methods) {
		return nil
	}
	return &m.methods[id]
}

// Property returns the property declaration or nil.
func (m *Module) Property(id PropertyID) *PropertyDecl {
	if !id.IsValid() || int(id) >= len(m.properties) {
		return nil
	}
	return &m.properties[id]
}

// Event returns the event declaration or nil.
func (m *Module) Event(id EventID) *EventDecl {
	if !id.IsValid() || int(id) >= len(m.events) {
		return nil
	}
	return &m.events[id]
}

// Field returns the field declaration or nil.
func (m *Module) Field(id FieldID) *FieldDecl {
	if !id.IsValid() || int(id) >= len(m.fields) {
		return nil
	}
	return &m.fields[id]
}

// Types lists every type ID in declaration order.
func (m *Module) Types() []TypeID {
	out := make([]TypeID, 0, len(m.types)-1)
	for i := 1; i < len(m.types); i++ {
		out = append(out, TypeID(i))
	}
	return out
}

// LookupType finds a type declared in this module by its full name.
func (m *Module) LookupType(name string) (TypeID, bool) {
	id, ok := m.byName[name]
	return id, ok
}

// Resolve maps a named reference to its declaration in this module. Generic
// arguments are ignored; parameters and external types do not resolve.
func (m *Module) Resolve(ref TypeRef) (*TypeDecl, bool) {
	if ref.Kind != RefNamed {
		return nil, false
	}
	id, ok := m.byName[ref.Name]
	if !ok {
		return nil, false
	}
	return m.Type(id), true
}

// NewMethod allocates a method slot without attaching it to its declaring type.
func (m *Module) NewMethod(decl MethodDecl) MethodID {
	id := MethodID(nextIndex(len(m.methods), "methods"))
	decl.ID = id
	m.methods = append(m.methods, decl)
	return id
}

// AddMethod allocates a method and attaches it to owner.
func (m *Module) AddMethod(owner TypeID, decl MethodDecl) MethodID {
	decl.Declaring = owner
	id := m.NewMethod(decl)
	m.AttachMethod(owner, id)
	return id
}

// AttachMethod appends an allocated method to owner's method list.
func (m *Module) AttachMethod(owner TypeID, id MethodID) {
	t, md := m.Type(owner), m.Method(id)
	if t == nil || md == nil || slices.Contains(t.Methods, id) {
		return
	}
	md.Declaring = owner
	t.Methods = append(t.Methods, id)
}

// NewProperty allocates a property slot and links its accessors back to it.
func (m *Module) NewProperty(decl PropertyDecl) PropertyID {
	id := PropertyID(nextIndex(len(m.properties), "properties"))
	decl.ID = id
	m.properties = append(m.properties, decl)
	m.linkAccessor(decl.Getter, PropertyRef(id), SemGetter)
	m.linkAccessor(decl.Setter, PropertyRef(id), SemSetter)
	return id
}

// AddProperty allocates a property and attaches it to owner.
func (m *Module) AddProperty(owner TypeID, decl PropertyDecl) PropertyID {
	decl.Declaring = owner
	id := m.NewProperty(decl)
	m.AttachProperty(owner, id)
	return id
}

// AttachProperty appends an allocated property to owner's property list.
func (m *Module) AttachProperty(owner TypeID, id PropertyID) {
	t, p := m.Type(owner), m.Property(id)
	if t == nil || p == nil || slices.Contains(t.Properties, id) {
		return
	}
	p.Declaring = owner
	t.Properties = append(t.Properties, id)
}

// NewEvent allocates an event slot and links its accessors back to it.
func (m *Module) NewEvent(decl EventDecl) EventID {
	id := EventID(nextIndex(len(m.events), "events"))
	decl.ID = id
	m.events = append(m.events, decl)
	m.linkAccessor(decl.Adder, EventRef(id), SemAdder)
	m.linkAccessor(decl.Remover, EventRef(id), SemRemover)
	m.linkAccessor(decl.Invoker, EventRef(id), SemFire)
	return id
}

// AddEvent allocates an event and attaches it to owner.
func (m *Module) AddEvent(owner TypeID, decl EventDecl) EventID {
	decl.Declaring = owner
	id := m.NewEvent(decl)
	m.AttachEvent(owner, id)
	return id
}

// AttachEvent appends an allocated event to owner's event list.
func (m *Module) AttachEvent(owner TypeID, id EventID) {
	t, e := m.Type(owner), m.Event(id)
	if t == nil || e == nil || slices.Contains(t.Events, id) {
		return
	}
	e.Declaring = owner
	t.Events = append(t.Events, id)
}

// AddField allocates a field and attaches it to owner.
func (m *Module) AddField(owner TypeID, decl FieldDecl) FieldID {
	id := FieldID(nextIndex(len(m.fields), "fields"))
	decl.ID = id
	decl.Declaring = owner
	m.fields = append(m.fields, decl)
	if t := m.Type(owner); t != nil {
		t.Fields = append(t.Fields, id)
	}
	return id
}

func (m *Module) linkAccessor(id MethodID, owner MemberRef, sem Semantics) {
	if md := m.Method(id); md != nil {
		md.Owner = owner
		md.Semantics = sem
	}
}

// Attach appends an allocated member to owner. Fields are attached on
// allocation and are ignored here.
func (m *Module) Attach(owner TypeID, ref MemberRef) {
	switch ref.Kind {
	case MemberMethod:
		m.AttachMethod(owner, ref.Method())
	case MemberProperty:
		m.AttachProperty(owner, ref.Property())
	case MemberEvent:
		m.AttachEvent(owner, ref.Event())
	}
}

// Remove detaches the member from its declaring type. It reports whether the
// member was attached. Removing a property or event does not remove its
// accessors; callers decide about those separately. Removing an accessor
// clears the owner's link to it.
func (m *Module) Remove(ref MemberRef) bool {
	owner := m.Type(m.Declaring(ref))
	if owner == nil {
		return false
	}
	switch ref.Kind {
	case MemberMethod:
		m.unlinkAccessor(ref.Method())
		return removeID(&owner.Methods, ref.Method())
	case MemberProperty:
		return removeID(&owner.Properties, ref.Property())
	case MemberEvent:
		return removeID(&owner.Events, ref.Event())
	case MemberField:
		return removeID(&owner.Fields, ref.Field())
	}
	return false
}

func (m *Module) unlinkAccessor(id MethodID) {
	md := m.Method(id)
	if md == nil {
		return
	}
	switch md.Owner.Kind {
	case MemberProperty:
		if p := m.Property(md.Owner.Property()); p != nil {
			if p.Getter == id {
				p.Getter = NoMethodID
			}
			if p.Setter == id {
				p.Setter = NoMethodID
			}
		}
	case MemberEvent:
		if e := m.Event(md.Owner.Event()); e != nil {
			switch id {
			case e.Adder:
				e.Adder = NoMethodID
			case e.Remover:
				e.Remover = NoMethodID
			case e.Invoker:
				e.Invoker = NoMethodID
			}
		}
	}
}

func removeID[T comparable](list *[]T, id T) bool {
	idx := slices.Index(*list, id)
	if idx < 0 {
		return false
	}
	*list = slices.Delete(*list, idx, idx+1)
	return true
}

// IsAttached reports whether the member is currently listed on its declaring type.
func (m *Module) IsAttached(ref MemberRef) bool {
	owner := m.Type(m.Declaring(ref))
	if owner == nil {
		return false
	}
	switch ref.Kind {
	case MemberMethod:
		return slices.Contains(owner.Methods, ref.Method())
	case MemberProperty:
		return slices.Contains(owner.Properties, ref.Property())
	case MemberEvent:
		return slices.Contains(owner.Events, ref.Event())
	case MemberField:
		return slices.Contains(owner.Fields, ref.Field())
	}
	return false
}

// ClearBody drops the implementation of a method.
func (m *Module) ClearBody(id MethodID) {
	if md := m.Method(id); md != nil {
		md.Body = nil
	}
}

// AddMemberAttr attaches attr to a member unless one of the same type is
// already present.
func (m *Module) AddMemberAttr(ref MemberRef, attr CustomAttr) bool {
	var attrs *[]CustomAttr
	switch ref.Kind {
	case MemberMethod:
		if md := m.Method(ref.Method()); md != nil {
			attrs = &md.CustomAttrs
		}
	case MemberProperty:
		if p := m.Property(ref.Property()); p != nil {
			attrs = &p.CustomAttrs
		}
	case MemberEvent:
		if e := m.Event(ref.Event()); e != nil {
			attrs = &e.CustomAttrs
		}
	case MemberField:
		if f := m.Field(ref.Field()); f != nil {
			attrs = &f.CustomAttrs
		}
	}
	if attrs == nil || HasAttr(*attrs, attr.Type) {
		return false
	}
	*attrs = append(*attrs, attr)
	return true
}

// AddInterface makes owner implement iface unless it already does.
func (m *Module) AddInterface(owner TypeID, iface TypeRef) bool {
	t := m.Type(owner)
	if t == nil {
		return false
	}
	for _, existing := range t.Interfaces {
		if existing.Equal(iface) {
			return false
		}
	}
	t.Interfaces = append(t.Interfaces, iface.Clone())
	return true
}

// Declaring returns the declaring type of any member.
func (m *Module) Declaring(ref MemberRef) TypeID {
	switch ref.Kind {
	case MemberMethod:
		if md := m.Method(ref.Method()); md != nil {
			return md.Declaring
		}
	case MemberProperty:
		if p := m.Property(ref.Property()); p != nil {
			return p.Declaring
		}
	case MemberEvent:
		if e := m.Event(ref.Event()); e != nil {
			return e.Declaring
		}
	case MemberField:
		if f := m.Field(ref.Field()); f != nil {
			return f.Declaring
		}
	}
	return NoTypeID
}

// MemberName returns the simple name of any member.
func (m *Module) MemberName(ref MemberRef) string {
	switch ref.Kind {
	case MemberMethod:
		if md := m.Method(ref.Method()); md != nil {
			return md.Name
		}
	case MemberProperty:
		if p := m.Property(ref.Property()); p != nil {
			return p.Name
		}
	case MemberEvent:
		if e := m.Event(ref.Event()); e != nil {
			return e.Name
		}
	case MemberField:
		if f := m.Field(ref.Field()); f != nil {
			return f.Name
		}
	}
	return ""
}

// MemberAttrs returns the custom attributes of any member.
func (m *Module) MemberAttrs(ref MemberRef) []CustomAttr {
	switch ref.Kind {
	case MemberMethod:
		if md := m.Method(ref.Method()); md != nil {
			return md.CustomAttrs
		}
	case MemberProperty:
		if p := m.Property(ref.Property()); p != nil {
			return p.CustomAttrs
		}
	case MemberEvent:
		if e := m.Event(ref.Event()); e != nil {
			return e.CustomAttrs
		}
	case MemberField:
		if f := m.Field(ref.Field()); f != nil {
			return f.CustomAttrs
		}
	}
	return nil
}

// MemberLocation returns the best source hint for a member, falling back to
// its declaring type.
func (m *Module) MemberLocation(ref MemberRef) (loc source.Location) {
	switch ref.Kind {
	case MemberMethod:
		if md := m.Method(ref.Method()); md != nil {
			loc = md.Location
		}
	case MemberProperty:
		if p := m.Property(ref.Property()); p != nil {
			loc = p.Location
		}
	case MemberEvent:
		if e := m.Event(ref.Event()); e != nil {
			loc = e.Location
		}
	case MemberField:
		if f := m.Field(ref.Field()); f != nil {
			loc = f.Location
		}
	}
	if !loc.IsValid() {
		if t := m.Type(m.Declaring(ref)); t != nil {
			loc = t.Location
		}
	}
	return loc
}

// MemberLabel renders "Type::Name" for diagnostics.
func (m *Module) MemberLabel(ref MemberRef) string {
	owner := m.Type(m.Declaring(ref))
	if owner == nil {
		return m.MemberName(ref)
	}
	return owner.Name + "::" + m.MemberName(ref)
}

// Members lists every member attached to the type: properties, events, then
// methods and fields, each in declaration order.
func (m *Module) Members(id TypeID) []MemberRef {
	t := m.Type(id)
	if t == nil {
		return nil
	}
	out := make([]MemberRef, 0, len(t.Methods)+len(t.Properties)+len(t.Events)+len(t.Fields))
	for _, p := range t.Properties {
		out = append(out, PropertyRef(p))
	}
	for _, e := range t.Events {
		out = append(out, EventRef(e))
	}
	for _, md := range t.Methods {
		out = append(out, MethodRef(md))
	}
	for _, f := range t.Fields {
		out = append(out, FieldRef(f))
	}
	return out
}
