package meta

import "slices"

// CloneMethod copies a method declaration for insertion into another type.
// Type-level generic parameters in its signature and generic constraints are
// bound through args; method-level parameters are kept. The body is copied
// unchanged, its instruction operands are not rewritten. The clone has no ID
// and no declaring type until it is allocated.
func (m *Module) CloneMethod(id MethodID, args []TypeRef) MethodDecl {
	src := m.Method(id)
	if src == nil {
		return MethodDecl{}
	}
	out := MethodDecl{
		Name:          src.Name,
		Attrs:         src.Attrs,
		Return:        src.Return.Substitute(args),
		GenericParams: cloneGenericParams(src.GenericParams, args),
		Body:          src.Body.Clone(),
		Semantics:     src.Semantics,
		Overrides:     slices.Clone(src.Overrides),
		CustomAttrs:   cloneAttrs(src.CustomAttrs),
		Location:      src.Location,
	}
	if len(src.Params) > 0 {
		out.Params = make([]Param, len(src.Params))
		for i, p := range src.Params {
			out.Params[i] = Param{Name: p.Name, Type: p.Type.Substitute(args)}
		}
	}
	return out
}

// CloneProperty copies a property declaration without its accessors.
func (m *Module) CloneProperty(id PropertyID, args []TypeRef) PropertyDecl {
	src := m.Property(id)
	if src == nil {
		return PropertyDecl{}
	}
	out := PropertyDecl{
		Name:        src.Name,
		Type:        src.Type.Substitute(args),
		CustomAttrs: cloneAttrs(src.CustomAttrs),
		Location:    src.Location,
	}
	for _, p := range src.Params {
		out.Params = append(out.Params, Param{Name: p.Name, Type: p.Type.Substitute(args)})
	}
	return out
}

// CloneEvent copies an event declaration without its accessors.
func (m *Module) CloneEvent(id EventID, args []TypeRef) EventDecl {
	src := m.Event(id)
	if src == nil {
		return EventDecl{}
	}
	return EventDecl{
		Name:        src.Name,
		Type:        src.Type.Substitute(args),
		CustomAttrs: cloneAttrs(src.CustomAttrs),
		Location:    src.Location,
	}
}

func cloneGenericParams(params []GenericParam, args []TypeRef) []GenericParam {
	if len(params) == 0 {
		return nil
	}
	out := make([]GenericParam, len(params))
	for i, gp := range params {
		out[i] = GenericParam{Name: gp.Name, Constraints: SubstituteAll(gp.Constraints, args)}
	}
	return out
}
