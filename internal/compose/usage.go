package compose

import (
	"strings"

	"rolecomp/internal/diag"
	"rolecomp/internal/meta"
)

// CheckRoleUsage reports types deriving from roles and method bodies that
// instantiate roles. Roles are contracts after morphing, so both are errors.
func CheckRoleUsage(mod *meta.Module) *diag.Result {
	res := diag.NewResult()
	for _, id := range mod.Types() {
		t := mod.Type(id)
		if t.Base != nil {
			if base, ok := mod.Resolve(*t.Base); ok && base.IsRole() && !t.IsRole() {
				res.Add(diag.Errorf(diag.TypeCantInheritFromRole, t.Location,
					"%s cannot inherit from role %s; compose it with %s<%s> instead",
					t.Name, base.Name, meta.DoesMarker, base.Name))
			}
		}
		for _, mid := range t.Methods {
			checkInstantiations(mod, mod.Method(mid), res)
		}
	}
	return res
}

func checkInstantiations(mod *meta.Module, md *meta.MethodDecl, res *diag.Result) {
	if md.Body == nil {
		return
	}
	for _, ins := range md.Body.Instructions {
		if ins.Op != "newobj" {
			continue
		}
		typeName, member, ok := strings.Cut(ins.Operand, "::")
		if !ok || member != meta.CtorName {
			continue
		}
		ref, err := meta.ParseTypeRef(typeName)
		if err != nil {
			continue
		}
		if role, ok := mod.Resolve(ref); ok && role.IsRole() {
			res.Add(diag.Errorf(diag.RoleInstantiated, mod.MemberLocation(meta.MethodRef(md.ID)),
				"%s instantiates role %s", mod.MemberLabel(meta.MethodRef(md.ID)), role.Name))
		}
	}
}
