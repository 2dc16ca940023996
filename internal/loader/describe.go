package loader

import (
	"strings"

	"rolecomp/internal/meta"
	"rolecomp/internal/source"
)

// Describe renders the current shape of mod as a description. Markers are
// kept as plain interfaces so that the description builds back into the same
// graph.
func Describe(mod *meta.Module) *ModuleDesc {
	out := &ModuleDesc{Name: mod.Name}
	for _, id := range mod.Types() {
		out.Types = append(out.Types, describeType(mod, mod.Type(id)))
	}
	return out
}

func describeType(mod *meta.Module, t *meta.TypeDecl) TypeDesc {
	td := TypeDesc{
		Name:       t.Name,
		Visibility: t.Attrs.VisibilityName(),
		Flags:      t.Attrs.FlagNames(),
		Generics:   describeGenerics(t.GenericParams),
		Attrs:      describeAttrs(t.CustomAttrs),
		Location:   describeLocation(t.Location),
	}
	if t.Base != nil && !t.Base.IsZero() {
		td.Base = t.Base.String()
	}
	for _, iface := range t.Interfaces {
		td.Interfaces = append(td.Interfaces, iface.String())
	}
	if outer := mod.Type(t.DeclaringType); outer != nil {
		td.Declaring = outer.Name
	}

	for _, id := range t.Properties {
		p := mod.Property(id)
		pd := PropertyDesc{
			Name:     p.Name,
			Type:     p.Type.String(),
			Params:   describeParams(p.Params),
			Get:      describeAccessor(mod, p.Getter),
			Set:      describeAccessor(mod, p.Setter),
			Attrs:    describeAttrs(p.CustomAttrs),
			Location: describeLocation(p.Location),
		}
		td.Properties = append(td.Properties, pd)
	}
	for _, id := range t.Fields {
		f := mod.Field(id)
		fd := FieldDesc{
			Name:     f.Name,
			Type:     f.Type.String(),
			Access:   f.Attrs.Access().AccessName(),
			Attrs:    describeAttrs(f.CustomAttrs),
			Location: describeLocation(f.Location),
		}
		if f.Attrs.Has(meta.FieldStatic) {
			fd.Flags = append(fd.Flags, "static")
		}
		if f.Attrs.Has(meta.FieldInitOnly) {
			fd.Flags = append(fd.Flags, "initonly")
		}
		td.Fields = append(td.Fields, fd)
	}
	for _, id := range t.Events {
		e := mod.Event(id)
		td.Events = append(td.Events, EventDesc{
			Name:     e.Name,
			Type:     e.Type.String(),
			Add:      describeAccessor(mod, e.Adder),
			Remove:   describeAccessor(mod, e.Remover),
			Raise:    describeAccessor(mod, e.Invoker),
			Attrs:    describeAttrs(e.CustomAttrs),
			Location: describeLocation(e.Location),
		})
	}
	for _, id := range t.Methods {
		md := mod.Method(id)
		if md.IsAccessor() && mod.IsAttached(md.Owner) {
			continue
		}
		td.Methods = append(td.Methods, describeMethod(md))
	}
	return td
}

func describeAccessor(mod *meta.Module, id meta.MethodID) *MethodDesc {
	md := mod.Method(id)
	if md == nil || !mod.IsAttached(meta.MethodRef(id)) {
		return nil
	}
	d := describeMethod(md)
	return &d
}

func describeMethod(md *meta.MethodDecl) MethodDesc {
	d := MethodDesc{
		Name:      md.Name,
		Access:    md.Attrs.AccessName(),
		Flags:     md.Attrs.FlagNames(),
		Params:    describeParams(md.Params),
		Generics:  describeGenerics(md.GenericParams),
		Overrides: append([]string(nil), md.Overrides...),
		Attrs:     describeAttrs(md.CustomAttrs),
		Location:  describeLocation(md.Location),
	}
	if !md.Return.IsZero() {
		d.Returns = md.Return.String()
	}
	switch {
	case md.Body != nil:
		d.Body = make([]string, 0, len(md.Body.Instructions))
		for _, in := range md.Body.Instructions {
			d.Body = append(d.Body, strings.TrimSpace(in.Op+" "+in.Operand))
		}
	case !md.IsAbstract() && !md.Attrs.Has(meta.MethodPInvokeImpl):
		d.NoBody = true
	}
	return d
}

func describeParams(params []meta.Param) []string {
	if len(params) == 0 {
		return nil
	}
	out := make([]string, len(params))
	for i, p := range params {
		if p.Name == "" {
			out[i] = p.Type.String()
			continue
		}
		out[i] = p.Name + ": " + p.Type.String()
	}
	return out
}

func describeGenerics(params []meta.GenericParam) []string {
	if len(params) == 0 {
		return nil
	}
	out := make([]string, len(params))
	for i, gp := range params {
		if len(gp.Constraints) == 0 {
			out[i] = gp.Name
			continue
		}
		cs := make([]string, len(gp.Constraints))
		for j, c := range gp.Constraints {
			cs[j] = c.String()
		}
		out[i] = gp.Name + ": " + strings.Join(cs, ", ")
	}
	return out
}

func describeAttrs(in []meta.CustomAttr) []AttrDesc {
	if len(in) == 0 {
		return nil
	}
	out := make([]AttrDesc, len(in))
	for i, a := range in {
		out[i] = AttrDesc{Type: a.Type, Args: append([]string(nil), a.Args...)}
	}
	return out
}

func describeLocation(loc source.Location) string {
	if !loc.IsValid() {
		return ""
	}
	return loc.String()
}
