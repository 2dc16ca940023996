package compose

import (
	"strings"

	"rolecomp/internal/diag"
	"rolecomp/internal/meta"
	"rolecomp/internal/mutate"
)

// CheckSelfTypes verifies that every role in uses that declares a self-type
// parameter has it bound to the composing type. A role composing another role
// may pass its own self-type parameter along. All violations are collected.
func CheckSelfTypes(ctx *mutate.Context, target meta.TypeID, uses []*RoleUse) *diag.Result {
	res := diag.NewResult()
	mod := ctx.Module
	decl := mod.Type(target)
	want := meta.SelfRef(decl)

	passThrough := meta.TypeRef{}
	if decl.IsRole() {
		if idx := decl.GenericParamIndex(ctx.SelfTypeParam); idx >= 0 {
			passThrough = meta.TypeParam(idx)
		}
	}

	for _, use := range uses {
		role := mod.Type(use.Role)
		idx := role.GenericParamIndex(ctx.SelfTypeParam)
		if idx < 0 {
			continue
		}
		var got meta.TypeRef
		if idx < len(use.Args()) {
			got = use.Args()[idx]
		}
		if got.Equal(want) || (!passThrough.IsZero() && got.Equal(passThrough)) {
			continue
		}
		supplied := "nothing"
		if !got.IsZero() {
			supplied = describeArg(decl, got)
		}
		res.Add(diag.Errorf(diag.SelfTypeConstraintNotSetToCompositionType, decl.Location,
			"composition %s binds self type %s of role %s to %s instead of %s",
			strings.Join(use.Via, " -> "), ctx.SelfTypeParam, role.Name, supplied, decl.Name))
	}
	return res
}

// describeArg renders a bound argument with the target's parameter names.
func describeArg(target *meta.TypeDecl, ref meta.TypeRef) string {
	if ref.Kind == meta.RefTypeParam && ref.Index >= 0 && ref.Index < len(target.GenericParams) {
		return target.GenericParams[ref.Index].Name
	}
	return ref.String()
}
