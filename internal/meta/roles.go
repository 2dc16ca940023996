package meta

// Names of the marker types and attributes through which compiled code
// declares roles, compositions and role views.
const (
	ObjectTypeName = "System.Object"

	RoleMarker     = "Roles.Role"
	DoesMarker     = "Roles.Does"
	RoleViewMarker = "Roles.RoleView"

	AliasingAttr    = "Roles.AliasingAttribute"
	ExcludeAttr     = "Roles.ExcludeAttribute"
	PlaceholderAttr = "Roles.PlaceholderAttribute"
	GuardedAttr     = "Roles.GuardedAttribute"

	// DefaultSelfTypeParam is the conventional name of a role's self-type parameter.
	DefaultSelfTypeParam = "S"
)

// Implements reports whether the type lists an interface with the given name,
// regardless of generic arguments.
func (t *TypeDecl) Implements(name string) bool {
	for _, iface := range t.Interfaces {
		if iface.Kind == RefNamed && iface.Name == name {
			return true
		}
	}
	return false
}

// IsRole reports whether the type is declared as a role.
func (t *TypeDecl) IsRole() bool { return t != nil && t.Implements(RoleMarker) }

// IsRoleView reports whether the type is declared as a view over some role.
func (t *TypeDecl) IsRoleView() bool { return t != nil && t.Implements(RoleViewMarker) }

// Compositions returns the roles (or role views) the type composes, in
// declaration order: the argument of every Does<X> it implements.
func (t *TypeDecl) Compositions() []TypeRef {
	return markerArgs(t, DoesMarker)
}

// ViewedRoles returns the argument of every RoleView<R> the type implements.
func (t *TypeDecl) ViewedRoles() []TypeRef {
	return markerArgs(t, RoleViewMarker)
}

// ComposesRoles reports whether the type declares any composition.
func (t *TypeDecl) ComposesRoles() bool { return len(t.Compositions()) > 0 }

func markerArgs(t *TypeDecl, marker string) []TypeRef {
	if t == nil {
		return nil
	}
	var out []TypeRef
	for _, iface := range t.Interfaces {
		if iface.Kind == RefNamed && iface.Name == marker && len(iface.Args) == 1 {
			out = append(out, iface.Args[0])
		}
	}
	return out
}

// HasObjectBase reports whether the base type is absent or the root object type.
func (t *TypeDecl) HasObjectBase() bool {
	return t.Base == nil || t.Base.IsZero() || (t.Base.Kind == RefNamed && t.Base.Name == ObjectTypeName && len(t.Base.Args) == 0)
}
