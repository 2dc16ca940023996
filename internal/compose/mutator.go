package compose

import (
	"errors"
	"fmt"
	"runtime/debug"

	"rolecomp/internal/diag"
	"rolecomp/internal/meta"
	"rolecomp/internal/mutate"
	"rolecomp/internal/trace"
)

// ErrNoTarget is returned when a composition request names no target type.
var ErrNoTarget = errors.New("compose: no target type supplied")

// RoleComposerMutator sequences validation, conflict detection and
// composition for one target at a time.
type RoleComposerMutator struct {
	ctx *mutate.Context
}

// NewMutator returns a mutator scheduling its edits on ctx.
func NewMutator(ctx *mutate.Context) *RoleComposerMutator {
	return &RoleComposerMutator{ctx: ctx}
}

// Mutate composes the roles of target. Types that compose nothing succeed
// without diagnostics. Engine faults are reported as InternalError rather than
// propagated.
func (m *RoleComposerMutator) Mutate(target meta.TypeID) (res *diag.Result, err error) {
	if m.ctx == nil || m.ctx.Module == nil || m.ctx.Module.Type(target) == nil {
		return nil, ErrNoTarget
	}
	decl := m.ctx.Module.Type(target)
	res = diag.NewResult()
	if !decl.ComposesRoles() {
		return res, nil
	}

	span := trace.Begin(m.ctx.Tracer, trace.ScopeType, "target:"+decl.Name, 0)
	defer func() {
		if r := recover(); r != nil {
			res.Add(diag.Errorf(diag.InternalError, decl.Location,
				"internal error while composing %s: %v", decl.Name, r))
			trace.Point(m.ctx.Tracer, trace.ScopeType, "panic", string(debug.Stack()), span.ID(), nil)
		}
		span.WithExtra("success", fmt.Sprint(res.Success())).End("")
	}()

	m.compose(decl, res)
	return res, nil
}

func (m *RoleComposerMutator) compose(decl *meta.TypeDecl, res *diag.Result) {
	uses, validation := ResolveUses(m.ctx, decl.ID)
	res.AddChild(validation)
	if !validation.Success() {
		return
	}

	for _, use := range uses {
		if m.ctx.IsBroken(use.Role) {
			res.Add(diag.Infof(diag.ComposeInfo, decl.Location,
				"composition of %s skipped: role %s could not be morphed",
				decl.Name, m.ctx.Module.Type(use.Role).Name))
			return
		}
	}

	selfTypes := CheckSelfTypes(m.ctx, decl.ID, uses)
	res.AddChild(selfTypes)

	plan, conflicts := Detect(m.ctx, decl.ID, uses)
	res.AddChild(conflicts)
	if !res.Success() {
		return
	}

	if decl.IsRole() {
		// роли только объявляют составляющие контракты
		for _, use := range uses {
			m.ctx.Schedule(mutate.AddInterface(decl.ID, use.Ref))
		}
		return
	}
	Compose(m.ctx, plan)
}
