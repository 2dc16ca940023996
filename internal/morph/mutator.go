package morph

import (
	"fmt"
	"slices"

	"rolecomp/internal/diag"
	"rolecomp/internal/meta"
	"rolecomp/internal/mutate"
	"rolecomp/internal/trace"
)

// MorphIntoInterfaceMutator rewrites role declarations into contracts.
type MorphIntoInterfaceMutator struct {
	ctx *mutate.Context
}

// NewMutator returns a mutator scheduling its edits on ctx.
func NewMutator(ctx *mutate.Context) *MorphIntoInterfaceMutator {
	return &MorphIntoInterfaceMutator{ctx: ctx}
}

// morphRun carries the state of morphing one role.
type morphRun struct {
	ctx    *mutate.Context
	mod    *meta.Module
	role   *meta.TypeDecl
	res    *diag.Result
	span   *trace.Span
	broken bool
}

// Mutate morphs the role with the given ID. Types that are not roles are left
// alone and yield an empty successful result.
func (m *MorphIntoInterfaceMutator) Mutate(id meta.TypeID) *diag.Result {
	res := diag.NewResult()
	mod := m.ctx.Module
	role := mod.Type(id)
	if !role.IsRole() {
		return res
	}

	r := &morphRun{
		ctx:  m.ctx,
		mod:  mod,
		role: role,
		res:  res,
		span: trace.Begin(m.ctx.Tracer, trace.ScopeType, "morph:"+role.Name, 0),
	}
	defer func() {
		if r.broken {
			m.ctx.MarkBroken(id)
		}
		r.span.WithExtra("success", fmt.Sprint(res.Success())).End("")
	}()

	if !r.visitType() {
		return res
	}
	r.visitCustomAttrs()
	for _, p := range slices.Clone(role.Properties) {
		r.visitProperty(p)
	}
	for _, f := range slices.Clone(role.Fields) {
		r.schedule(mutate.RemoveMember(meta.FieldRef(f)), "field")
	}
	for _, e := range slices.Clone(role.Events) {
		r.visitEvent(e)
	}
	for _, md := range slices.Clone(role.Methods) {
		if r.mod.Method(md).IsAccessor() {
			continue
		}
		r.visitPlainMethod(md)
	}
	return res
}

func (r *morphRun) fatal(code diag.Code, ref meta.MemberRef, format string, args ...any) {
	loc := r.role.Location
	if ref.IsValid() {
		loc = r.mod.MemberLocation(ref)
	}
	r.res.Add(diag.Errorf(code, loc, format, args...))
	r.broken = true
}

func (r *morphRun) schedule(a mutate.Action, why string) {
	if r.ctx.Schedule(a) {
		trace.Point(r.ctx.Tracer, trace.ScopeMember, why, a.String(), r.span.ID(), nil)
	}
}

// visitType plans the interface shape of the type node. It reports false
// when morphing must stop.
func (r *morphRun) visitType() bool {
	if !r.role.HasObjectBase() {
		r.fatal(diag.RoleInheritsFromClass, meta.NoMember,
			"role %s cannot inherit from class %s; roles may only derive from %s",
			r.role.Name, r.role.Base, meta.ObjectTypeName)
		return false
	}
	if shape := InterfaceShape(r.role.Attrs); shape != r.role.Attrs {
		r.schedule(mutate.SetTypeAttrs(r.role.ID, shape), "type")
	}
	if r.role.Base != nil {
		r.schedule(mutate.ClearBase(r.role.ID), "base")
	}
	return true
}

func (r *morphRun) visitCustomAttrs() {
	for _, a := range slices.Clone(r.role.CustomAttrs) {
		if a.Type == meta.PlaceholderAttr {
			r.fatal(diag.RoleHasPlaceholder, meta.NoMember,
				"role %s is marked as a placeholder and cannot be composed", r.role.Name)
		}
	}
}

func (r *morphRun) visitProperty(id meta.PropertyID) {
	ref := meta.PropertyRef(id)
	p := r.mod.Property(id)
	r.checkPlaceholder(ref)
	survivors := 0
	for _, acc := range p.Accessors() {
		if r.visitMethod(acc) {
			survivors++
		}
	}
	if survivors == 0 {
		r.schedule(mutate.RemoveMember(ref), "property")
	}
}

func (r *morphRun) visitEvent(id meta.EventID) {
	ref := meta.EventRef(id)
	e := r.mod.Event(id)
	r.checkPlaceholder(ref)
	survivors := 0
	for _, acc := range e.Accessors() {
		if r.visitMethod(acc) {
			survivors++
		}
	}
	if survivors == 0 {
		r.schedule(mutate.RemoveMember(ref), "event")
	}
}

func (r *morphRun) visitPlainMethod(id meta.MethodID) {
	md := r.mod.Method(id)
	if md.IsParameterizedConstructor() {
		r.fatal(diag.RoleCannotContainParameterizedConstructor, meta.MethodRef(id),
			"role %s cannot contain a constructor with parameters", r.role.Name)
		return
	}
	r.checkPlaceholder(meta.MethodRef(id))
	r.visitMethod(id)
}

// visitMethod applies the method rule and reports whether the method stays in
// the contract.
func (r *morphRun) visitMethod(id meta.MethodID) bool {
	md := r.mod.Method(id)
	ref := meta.MethodRef(id)
	label := r.mod.MemberLabel(ref)

	if len(md.Overrides) > 0 {
		r.fatal(diag.RoleHasExplicitInterfaceImplementation, ref,
			"role method %s explicitly implements %s", label, md.Overrides[0])
		return true
	}
	if md.Attrs.Has(meta.MethodPInvokeImpl) {
		r.fatal(diag.RoleHasPInvokeMethod, ref, "role method %s is a P/Invoke method", label)
		return true
	}

	if !RemainsInInterface(md) {
		r.schedule(mutate.RemoveMember(ref), "method")
		return false
	}

	if IsGuarded(md.Attrs.Access()) && !meta.HasAttr(md.CustomAttrs, meta.GuardedAttr) {
		r.schedule(mutate.AddCustomAttr(ref, meta.CustomAttr{Type: meta.GuardedAttr}), "guard")
	}
	if attrs := ContractMethodAttrs(md); attrs != md.Attrs {
		r.schedule(mutate.SetMethodAttrs(id, attrs), "flags")
	}
	if md.HasBody() {
		r.schedule(mutate.ClearBody(id), "body")
	}
	return true
}

func (r *morphRun) checkPlaceholder(ref meta.MemberRef) {
	if meta.HasAttr(r.mod.MemberAttrs(ref), meta.PlaceholderAttr) {
		r.fatal(diag.RoleHasPlaceholder, ref,
			"role member %s is a placeholder and must be implemented by the role", r.mod.MemberLabel(ref))
	}
}
