package compose

import (
	"slices"
	"strconv"
	"strings"

	"rolecomp/internal/diag"
	"rolecomp/internal/meta"
	"rolecomp/internal/mutate"
)

// RoleUse is one role reached from a composing type. Generic arguments are
// bound in terms of the composing type's own parameters.
type RoleUse struct {
	Role meta.TypeID
	Ref  meta.TypeRef
	// View is the role view the role was composed through, if any.
	View meta.TypeID
	// ViewRoleArgs are the role's arguments in terms of the view's parameters.
	ViewRoleArgs []meta.TypeRef
	// Via names the composition chain, target first.
	Via []string
}

// Args returns the bound generic arguments of the role.
func (u *RoleUse) Args() []meta.TypeRef { return u.Ref.Args }

// Direct reports whether the target names the role (or its view) itself.
func (u *RoleUse) Direct() bool { return len(u.Via) == 1 }

type resolver struct {
	mod    *meta.Module
	target *meta.TypeDecl
	res    *diag.Result
	uses   []*RoleUse
	seen   map[string]struct{}
	cycles map[meta.TypeID]struct{}
}

// ResolveUses expands the compositions of target into the full transitive
// role set. Structural problems are reported in the returned result; uses
// that could be resolved are returned either way.
func ResolveUses(ctx *mutate.Context, target meta.TypeID) ([]*RoleUse, *diag.Result) {
	r := &resolver{
		mod:    ctx.Module,
		target: ctx.Module.Type(target),
		res:    diag.NewResult(),
		seen:   make(map[string]struct{}),
		cycles: make(map[meta.TypeID]struct{}),
	}
	for _, ref := range r.target.Compositions() {
		r.expand(r.target, ref, nil, []meta.TypeID{target})
	}
	return r.uses, r.res
}

// expand resolves one Does<ref> written on owner, whose own generic
// parameters are bound by args.
func (r *resolver) expand(owner *meta.TypeDecl, ref meta.TypeRef, args []meta.TypeRef, path []meta.TypeID) {
	if ref.Kind != meta.RefNamed {
		r.res.Add(diag.Errorf(diag.CompositionWithTypeParameter, owner.Location,
			"%s cannot compose the generic parameter %s; compose a role instead",
			owner.Name, r.paramName(owner, ref)))
		return
	}
	bound := ref.Substitute(args)
	decl, ok := r.mod.Resolve(bound)
	if !ok {
		r.res.Add(diag.Errorf(diag.NotARole, owner.Location,
			"%s composes %s, which is not declared in module %s", owner.Name, bound, r.mod.Name))
		return
	}

	use := &RoleUse{Via: r.names(path)}
	roleRef := bound
	if decl.IsRoleView() {
		viewed := decl.ViewedRoles()
		if len(viewed) != 1 {
			r.res.Add(diag.Errorf(diag.RoleViewWithMultipleRoles, decl.Location,
				"role view %s must name exactly one role, found %d", decl.Name, len(viewed)))
			return
		}
		if !decl.IsInterface() {
			r.res.Add(diag.Errorf(diag.RoleViewIsNotAnInterface, decl.Location,
				"role view %s must be an interface", decl.Name))
			return
		}
		use.View = decl.ID
		use.ViewRoleArgs = viewed[0].Args
		roleRef = viewed[0].Substitute(bound.Args)
		decl, ok = r.mod.Resolve(roleRef)
		if !ok || !decl.IsRole() {
			r.res.Add(diag.Errorf(diag.NotARole, r.mod.Type(use.View).Location,
				"role view %s names %s, which is not a role", r.mod.Type(use.View).Name, roleRef))
			return
		}
	} else if !decl.IsRole() {
		r.res.Add(diag.Errorf(diag.NotARole, owner.Location,
			"%s composes %s, which is neither a role nor a role view", owner.Name, decl.Name))
		return
	}

	if slices.Contains(path, decl.ID) {
		if _, done := r.cycles[decl.ID]; !done {
			r.cycles[decl.ID] = struct{}{}
			chain := append(r.names(path[slices.Index(path, decl.ID):]), decl.Name)
			r.res.Add(diag.Errorf(diag.RoleComposesItself, decl.Location,
				"role %s composes itself: %s", decl.Name, strings.Join(chain, " -> ")))
		}
		return
	}

	use.Role = decl.ID
	use.Ref = roleRef
	key := roleRef.String() + "|" + viewKey(use.View)
	if _, dup := r.seen[key]; dup {
		return
	}
	r.seen[key] = struct{}{}
	r.uses = append(r.uses, use)

	next := append(slices.Clone(path), decl.ID)
	for _, inner := range decl.Compositions() {
		r.expand(decl, inner, roleRef.Args, next)
	}
}

func (r *resolver) names(path []meta.TypeID) []string {
	out := make([]string, len(path))
	for i, id := range path {
		out[i] = r.mod.Type(id).Name
	}
	return out
}

func (r *resolver) paramName(owner *meta.TypeDecl, ref meta.TypeRef) string {
	if ref.Kind == meta.RefTypeParam && ref.Index >= 0 && ref.Index < len(owner.GenericParams) {
		return owner.GenericParams[ref.Index].Name
	}
	return ref.String()
}

func viewKey(id meta.TypeID) string {
	if !id.IsValid() {
		return ""
	}
	return strconv.FormatUint(uint64(id), 10)
}
