package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"rolecomp/internal/diag"
	"rolecomp/internal/meta"
	"rolecomp/internal/source"
)

// Build turns a description into a declaration graph. Invalid entries are
// reported as LoadError diagnostics and skipped; the graph holds everything
// that could be built. file is used as the location of entries without one.
func Build(desc *ModuleDesc, file string) (*meta.Module, *diag.Result) {
	b := &builder{
		res:  diag.NewResult(),
		file: source.Location{File: file},
	}
	// одна и та же битая ссылка может встретиться много раз
	b.rep = diag.NewDedupReporter(b.res)
	name := nfc(desc.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}
	b.mod = meta.NewModule(name)

	ids := make([]meta.TypeID, len(desc.Types))
	for i := range desc.Types {
		ids[i] = b.declareType(&desc.Types[i])
	}
	for i := range desc.Types {
		if !ids[i].IsValid() {
			continue
		}
		b.fillType(ids[i], &desc.Types[i])
	}
	return b.mod, b.res
}

type builder struct {
	mod  *meta.Module
	res  *diag.Result
	rep  diag.Reporter
	file source.Location
}

func (b *builder) errorf(loc source.Location, format string, args ...any) {
	diag.ReportError(b.rep, diag.LoadError, loc.Or(b.file), fmt.Sprintf(format, args...)).Emit()
}

func (b *builder) location(s string) source.Location {
	loc, err := source.ParseLocation(s)
	if err != nil {
		b.errorf(b.file, "%v", err)
		return source.NoLocation
	}
	return loc
}

// declareType registers the type shell so that later passes can resolve
// declaring types regardless of description order.
func (b *builder) declareType(td *TypeDesc) meta.TypeID {
	loc := b.location(td.Location)
	name := nfc(td.Name)
	if name == "" {
		b.errorf(loc, "type without a name")
		return meta.NoTypeID
	}
	decl := meta.TypeDecl{Name: name, Location: loc}

	vis, ok := meta.ParseTypeVisibility(td.Visibility)
	if !ok {
		b.errorf(loc, "type %s: unknown visibility %q", name, td.Visibility)
	}
	decl.Attrs = vis
	for _, f := range td.Flags {
		flag, ok := meta.ParseTypeFlag(f)
		if !ok {
			b.errorf(loc, "type %s: unknown flag %q", name, f)
			continue
		}
		decl.Attrs |= flag
	}

	typeGen := b.generics(&decl.GenericParams, td.Generics, nil, false, loc, name)
	ref := func(s string) (meta.TypeRef, bool) { return b.typeRef(s, typeGen, nil, loc, name) }

	if td.Base != "" {
		if base, ok := ref(td.Base); ok {
			decl.Base = &base
		}
	}
	for _, s := range td.Interfaces {
		if iface, ok := ref(s); ok {
			decl.Interfaces = append(decl.Interfaces, iface)
		}
	}

	switch strings.ToLower(strings.TrimSpace(td.Kind)) {
	case "", KindClass:
	case KindInterface:
		decl.Attrs |= meta.TypeInterface | meta.TypeAbstract
	case KindRole:
		if decl.Base == nil {
			obj := meta.Named(meta.ObjectTypeName)
			decl.Base = &obj
		}
		decl.Interfaces = appendMarker(decl.Interfaces, meta.Named(meta.RoleMarker))
	case KindView:
		decl.Attrs |= meta.TypeInterface | meta.TypeAbstract
		for _, s := range td.Views {
			if role, ok := ref(s); ok {
				decl.Interfaces = appendMarker(decl.Interfaces, meta.Named(meta.RoleViewMarker, role))
			}
		}
	default:
		b.errorf(loc, "type %s: unknown kind %q", name, td.Kind)
	}
	if len(td.Views) > 0 && !strings.EqualFold(strings.TrimSpace(td.Kind), KindView) {
		b.errorf(loc, "type %s: views are only allowed on kind %q", name, KindView)
	}
	for _, s := range td.Does {
		if role, ok := ref(s); ok {
			decl.Interfaces = appendMarker(decl.Interfaces, meta.Named(meta.DoesMarker, role))
		}
	}
	decl.CustomAttrs = attrs(td.Attrs)

	id, added := b.mod.AddType(decl)
	if !added {
		b.errorf(loc, "duplicate type %s", name)
		return meta.NoTypeID
	}
	return id
}

func (b *builder) fillType(id meta.TypeID, td *TypeDesc) {
	t := b.mod.Type(id)
	loc := t.Location
	if td.Declaring != "" {
		outer, ok := b.mod.LookupType(nfc(td.Declaring))
		if !ok {
			b.errorf(loc, "type %s: unknown declaring type %s", t.Name, td.Declaring)
		} else {
			t.DeclaringType = outer
		}
	}
	typeGen := genericNames(t.GenericParams)

	for i := range td.Properties {
		b.property(id, typeGen, &td.Properties[i])
	}
	for i := range td.Fields {
		b.field(id, typeGen, &td.Fields[i])
	}
	for i := range td.Events {
		b.event(id, typeGen, &td.Events[i])
	}
	for i := range td.Methods {
		if decl, ok := b.method(typeGen, &td.Methods[i], loc); ok {
			b.mod.AddMethod(id, decl)
		}
	}
}

func (b *builder) method(typeGen []string, md *MethodDesc, fallback source.Location) (meta.MethodDecl, bool) {
	loc := b.location(md.Location).Or(fallback)
	name := nfc(md.Name)
	if name == "" {
		b.errorf(loc, "method without a name")
		return meta.MethodDecl{}, false
	}
	decl := meta.MethodDecl{Name: name, Location: loc, Overrides: nfcAll(md.Overrides), CustomAttrs: attrs(md.Attrs)}

	access, ok := meta.ParseMemberAccess(md.Access)
	if !ok {
		b.errorf(loc, "method %s: unknown access %q", name, md.Access)
		return meta.MethodDecl{}, false
	}
	decl.Attrs = access
	for _, f := range md.Flags {
		flag, ok := meta.ParseMethodFlag(f)
		if !ok {
			b.errorf(loc, "method %s: unknown flag %q", name, f)
			return meta.MethodDecl{}, false
		}
		decl.Attrs |= flag
	}
	if decl.IsConstructor() {
		decl.Attrs |= meta.MethodSpecialName | meta.MethodRTSpecialName
	}

	methodGen := b.generics(&decl.GenericParams, md.Generics, typeGen, true, loc, name)
	params, ok := b.params(md.Params, typeGen, methodGen, loc, name)
	if !ok {
		return meta.MethodDecl{}, false
	}
	decl.Params = params
	if decl.Return, ok = b.typeRef(md.Returns, typeGen, methodGen, loc, name); !ok {
		return meta.MethodDecl{}, false
	}

	hasBody := !md.NoBody && !decl.IsAbstract() && !decl.Attrs.Has(meta.MethodPInvokeImpl)
	if len(md.Body) > 0 && !hasBody {
		b.errorf(loc, "method %s: body given for a method without an implementation", name)
		return meta.MethodDecl{}, false
	}
	if hasBody {
		decl.Body = &meta.Body{Instructions: instructions(md.Body)}
	}
	return decl, true
}

// accessor builds an accessor from its description, filling in the
// conventional name and shape when the description leaves the name out.
func (b *builder) accessor(typeGen []string, md *MethodDesc, name string, params []string, returns string, fallback source.Location) (meta.MethodDecl, bool) {
	d := *md
	if d.Name == "" {
		d.Name = name
		d.Params = params
		d.Returns = returns
	}
	decl, ok := b.method(typeGen, &d, fallback)
	if ok {
		decl.Attrs |= meta.MethodSpecialName
	}
	return decl, ok
}

func (b *builder) property(owner meta.TypeID, typeGen []string, pd *PropertyDesc) {
	loc := b.location(pd.Location).Or(b.mod.Type(owner).Location)
	name := nfc(pd.Name)
	typ, ok := b.typeRef(pd.Type, typeGen, nil, loc, name)
	if !ok {
		return
	}
	if name == "" || typ.IsZero() {
		b.errorf(loc, "property needs a name and a type")
		return
	}
	index, ok := b.params(pd.Params, typeGen, nil, loc, name)
	if !ok {
		return
	}
	decl := meta.PropertyDecl{Name: name, Type: typ, Params: index, CustomAttrs: attrs(pd.Attrs), Location: loc}
	if pd.Get != nil {
		if m, ok := b.accessor(typeGen, pd.Get, "get_"+name, pd.Params, pd.Type, loc); ok {
			decl.Getter = b.mod.AddMethod(owner, m)
		}
	}
	if pd.Set != nil {
		setParams := append(append([]string(nil), pd.Params...), "value: "+pd.Type)
		if m, ok := b.accessor(typeGen, pd.Set, "set_"+name, setParams, "", loc); ok {
			decl.Setter = b.mod.AddMethod(owner, m)
		}
	}
	b.mod.AddProperty(owner, decl)
}

func (b *builder) event(owner meta.TypeID, typeGen []string, ed *EventDesc) {
	loc := b.location(ed.Location).Or(b.mod.Type(owner).Location)
	name := nfc(ed.Name)
	typ, ok := b.typeRef(ed.Type, typeGen, nil, loc, name)
	if !ok {
		return
	}
	if name == "" || typ.IsZero() {
		b.errorf(loc, "event needs a name and a type")
		return
	}
	decl := meta.EventDecl{Name: name, Type: typ, CustomAttrs: attrs(ed.Attrs), Location: loc}
	handler := []string{"value: " + ed.Type}
	add := func(md *MethodDesc, prefix string) meta.MethodID {
		if md == nil {
			return meta.NoMethodID
		}
		m, ok := b.accessor(typeGen, md, prefix+name, handler, "", loc)
		if !ok {
			return meta.NoMethodID
		}
		return b.mod.AddMethod(owner, m)
	}
	decl.Adder = add(ed.Add, "add_")
	decl.Remover = add(ed.Remove, "remove_")
	decl.Invoker = add(ed.Raise, "raise_")
	b.mod.AddEvent(owner, decl)
}

func (b *builder) field(owner meta.TypeID, typeGen []string, fd *FieldDesc) {
	loc := b.location(fd.Location).Or(b.mod.Type(owner).Location)
	name := nfc(fd.Name)
	typ, ok := b.typeRef(fd.Type, typeGen, nil, loc, name)
	if !ok {
		return
	}
	access, ok := meta.ParseMemberAccess(fd.Access)
	if !ok {
		b.errorf(loc, "field %s: unknown access %q", name, fd.Access)
		return
	}
	decl := meta.FieldDecl{Name: name, Type: typ, Attrs: meta.FieldAttrs(access), CustomAttrs: attrs(fd.Attrs), Location: loc}
	for _, f := range fd.Flags {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "static":
			decl.Attrs |= meta.FieldStatic
		case "initonly", "readonly":
			decl.Attrs |= meta.FieldInitOnly
		default:
			b.errorf(loc, "field %s: unknown flag %q", name, f)
		}
	}
	b.mod.AddField(owner, decl)
}

// generics parses generic parameter entries into out and returns their names.
// Constraints may mention typeGen and the parameters being declared.
func (b *builder) generics(out *[]meta.GenericParam, entries []string, typeGen []string, method bool, loc source.Location, owner string) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		name, _, _ := strings.Cut(e, ":")
		names[i] = nfc(strings.TrimSpace(name))
	}
	for i, e := range entries {
		gp := meta.GenericParam{Name: names[i]}
		if _, rest, ok := strings.Cut(e, ":"); ok {
			for _, c := range splitTopLevel(rest) {
				scopeType, scopeMethod := names, []string(nil)
				if method {
					scopeType, scopeMethod = typeGen, names
				}
				if ref, good := b.typeRef(c, scopeType, scopeMethod, loc, owner); good {
					gp.Constraints = append(gp.Constraints, ref)
				}
			}
		}
		*out = append(*out, gp)
	}
	return names
}

func (b *builder) params(entries []string, typeGen, methodGen []string, loc source.Location, owner string) ([]meta.Param, bool) {
	var out []meta.Param
	for i, e := range entries {
		name, typ, ok := strings.Cut(e, ":")
		if !ok {
			name, typ = fmt.Sprintf("arg%d", i), e
		}
		ref, good := b.typeRef(typ, typeGen, methodGen, loc, owner)
		if !good {
			return nil, false
		}
		out = append(out, meta.Param{Name: nfc(strings.TrimSpace(name)), Type: ref})
	}
	return out, true
}

// typeRef parses s. Bare names that match a generic parameter in scope are
// bound to it, method parameters first.
func (b *builder) typeRef(s string, typeGen, methodGen []string, loc source.Location, owner string) (meta.TypeRef, bool) {
	ref, err := meta.ParseTypeRef(nfc(s))
	if err != nil {
		b.errorf(loc, "%s: %v", owner, err)
		return meta.TypeRef{}, false
	}
	return bindGenerics(ref, typeGen, methodGen), true
}

func bindGenerics(ref meta.TypeRef, typeGen, methodGen []string) meta.TypeRef {
	if ref.Kind != meta.RefNamed {
		return ref
	}
	if len(ref.Args) == 0 {
		if i := indexOf(methodGen, ref.Name); i >= 0 {
			return meta.MethodParam(i)
		}
		if i := indexOf(typeGen, ref.Name); i >= 0 {
			return meta.TypeParam(i)
		}
		return ref
	}
	for i, a := range ref.Args {
		ref.Args[i] = bindGenerics(a, typeGen, methodGen)
	}
	return ref
}

func appendMarker(list []meta.TypeRef, marker meta.TypeRef) []meta.TypeRef {
	for _, r := range list {
		if r.Equal(marker) {
			return list
		}
	}
	return append(list, marker)
}

func attrs(in []AttrDesc) []meta.CustomAttr {
	if len(in) == 0 {
		return nil
	}
	out := make([]meta.CustomAttr, len(in))
	for i, a := range in {
		out[i] = meta.CustomAttr{Type: nfc(a.Type), Args: nfcAll(a.Args)}
	}
	return out
}

func instructions(lines []string) []meta.Instruction {
	out := make([]meta.Instruction, 0, len(lines))
	for _, l := range lines {
		op, operand, _ := strings.Cut(strings.TrimSpace(l), " ")
		out = append(out, meta.Instruction{Op: op, Operand: nfc(strings.TrimSpace(operand))})
	}
	return out
}

func genericNames(params []meta.GenericParam) []string {
	out := make([]string, len(params))
	for i, gp := range params {
		out[i] = gp.Name
	}
	return out
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

// nfc нормализует имена: описания могут приходить из разных редакторов.
func nfc(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func nfcAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = nfc(s)
	}
	return out
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
