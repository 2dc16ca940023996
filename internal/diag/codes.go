package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode   Code = 0
	InternalError Code = 1

	// Морфинг роли в контракт
	MorphInfo                                 Code = 1000
	RoleInheritsFromClass                     Code = 1001
	RoleCannotContainParameterizedConstructor Code = 1002
	RoleHasExplicitInterfaceImplementation    Code = 1003
	RoleHasPlaceholder                        Code = 1004
	RoleHasPInvokeMethod                      Code = 1005

	// Композиция
	ComposeInfo                               Code = 2000
	RoleComposesItself                        Code = 2001
	CompositionWithTypeParameter              Code = 2002
	RoleViewWithMultipleRoles                 Code = 2003
	RoleViewIsNotAnInterface                  Code = 2004
	RoleViewMemberNotFoundInRole              Code = 2005
	RoleMemberAliasedAgain                    Code = 2006
	Conflict                                  Code = 2007
	AllMembersExcluded                        Code = 2008
	MethodsWithConflictingSignatures          Code = 2009
	MembersWithSameName                       Code = 2010
	DoesNotImplementAbstractRoleMember        Code = 2011
	SelfTypeConstraintNotSetToCompositionType Code = 2012
	NotARole                                  Code = 2013

	// Использование ролей в модуле
	UsageInfo               Code = 3000
	TypeCantInheritFromRole Code = 3001
	RoleInstantiated        Code = 3002

	// Внешний верификатор
	VerifyInfo          Code = 4000
	PEVerifyError       Code = 4001
	PEVerifyTimeout     Code = 4002
	PEVerifyDoesntExist Code = 4003

	// Загрузка модуля
	LoadInfo  Code = 5000
	LoadError Code = 5001

	// Наблюдаемость
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                               "Unknown error",
		InternalError:                             "Internal engine error",
		MorphInfo:                                 "Morphing information",
		RoleInheritsFromClass:                     "Role inherits from a class",
		RoleCannotContainParameterizedConstructor: "Role cannot contain a parameterized constructor",
		RoleHasExplicitInterfaceImplementation:    "Role has an explicit interface implementation",
		RoleHasPlaceholder:                        "Role has a placeholder member",
		RoleHasPInvokeMethod:                      "Role has a P/Invoke method",
		ComposeInfo:                               "Composition information",
		RoleComposesItself:                        "Role composes itself",
		CompositionWithTypeParameter:              "Composition with a type parameter",
		RoleViewWithMultipleRoles:                 "Role view names multiple roles",
		RoleViewIsNotAnInterface:                  "Role view is not an interface",
		RoleViewMemberNotFoundInRole:              "Role view member not found in role",
		RoleMemberAliasedAgain:                    "Role member aliased again",
		Conflict:                                  "Conflicting role members",
		AllMembersExcluded:                        "All members excluded",
		MethodsWithConflictingSignatures:          "Methods with conflicting signatures",
		MembersWithSameName:                       "Members with the same name",
		DoesNotImplementAbstractRoleMember:        "Abstract role member not implemented",
		SelfTypeConstraintNotSetToCompositionType: "Self-type not bound to the composition",
		NotARole:                                  "Composed type is not a role",
		UsageInfo:                                 "Role usage information",
		TypeCantInheritFromRole:                   "Type cannot inherit from a role",
		RoleInstantiated:                          "Role instantiated",
		VerifyInfo:                                "Verification information",
		PEVerifyError:                             "Verifier reported errors",
		PEVerifyTimeout:                           "Verifier timed out",
		PEVerifyDoesntExist:                       "Verifier not found",
		LoadInfo:                                  "Load information",
		LoadError:                                 "Invalid module description",
		ObsInfo:                                   "Observability information",
		ObsTimings:                                "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic == int(InternalError):
		return "E0001"
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("MRF%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("CMP%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("USE%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("VER%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
