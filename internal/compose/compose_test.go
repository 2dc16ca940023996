package compose

import (
	"errors"
	"slices"
	"testing"

	"rolecomp/internal/diag"
	"rolecomp/internal/meta"
	"rolecomp/internal/morph"
	"rolecomp/internal/mutate"
	"rolecomp/internal/testkit"
)

// runPipeline morphs every role, composes target and commits when the
// composition succeeded.
func runPipeline(t *testing.T, b *testkit.Builder, target *testkit.Type) (*mutate.Context, *diag.Result) {
	t.Helper()
	ctx := mutate.NewContext(b.Mod)
	morpher := newMutators(ctx)
	for _, id := range b.Mod.Types() {
		morpher.morph.Mutate(id)
	}
	res, err := morpher.compose.Mutate(target.ID)
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if res.Success() {
		if _, err := ctx.Commit(); err != nil {
			t.Fatalf("commit: %v", err)
		}
	}
	return ctx, res
}

// planFor morphs every role in check mode and returns the member plan of
// target without composing it.
func planFor(t *testing.T, b *testkit.Builder, target *testkit.Type) (*Plan, *diag.Result) {
	t.Helper()
	ctx := mutate.NewContext(b.Mod)
	morpher := morph.NewMutator(ctx)
	for _, id := range b.Mod.Types() {
		morpher.Mutate(id)
	}
	uses, res := ResolveUses(ctx, target.ID)
	if !res.Success() {
		t.Fatalf("ResolveUses: %v", res.Diagnostics())
	}
	return Detect(ctx, target.ID, uses)
}

type mutators struct {
	morph   *morph.MorphIntoInterfaceMutator
	compose *RoleComposerMutator
}

func newMutators(ctx *mutate.Context) mutators {
	return mutators{morph: morph.NewMutator(ctx), compose: NewMutator(ctx)}
}

func methodNames(mod *meta.Module, id meta.TypeID) []string {
	var out []string
	for _, m := range mod.Type(id).Methods {
		out = append(out, mod.Method(m).Name)
	}
	return out
}

func findMethod(mod *meta.Module, id meta.TypeID, name string) *meta.MethodDecl {
	for _, m := range mod.Type(id).Methods {
		if md := mod.Method(m); md.Name == name {
			return md
		}
	}
	return nil
}

func expectOnly(t *testing.T, res *diag.Result, code diag.Code) {
	t.Helper()
	if res.Success() {
		t.Fatalf("expected failure with %s", code.ID())
	}
	if res.Count(code) != 1 {
		t.Fatalf("expected exactly one %s, got %v", code.ID(), res.Diagnostics())
	}
}

func TestComposeUnrelatedRoles(t *testing.T) {
	b := testkit.NewBuilder()
	b.Role("Acme.A").Impl("A", "():void")
	b.Role("Acme.B").Impl("B", "(System.String):System.Int32")
	person := b.Class("Acme.Person").Does("Acme.A").Does("Acme.B")

	_, res := runPipeline(t, b, person)
	if !res.Success() {
		t.Fatalf("unexpected failure: %v", res.Diagnostics())
	}
	if got := methodNames(b.Mod, person.ID); !slices.Equal(got, []string{"A", "B"}) {
		t.Fatalf("target methods = %v", got)
	}
	a := findMethod(b.Mod, person.ID, "A")
	if !a.HasBody() || a.IsAbstract() || a.Declaring != person.ID {
		t.Fatalf("copied method not concrete: %s", a.Attrs)
	}
	if !person.Decl().Implements("Acme.A") || !person.Decl().Implements("Acme.B") {
		t.Fatalf("role contracts not added: %v", person.Decl().Interfaces)
	}
}

func TestComposeConflictingSignatures(t *testing.T) {
	b := testkit.NewBuilder()
	b.Role("Acme.A").Impl("X", "():void")
	b.Role("Acme.B").Impl("X", "(System.Int32):void")
	person := b.Class("Acme.Person").Does("Acme.A").Does("Acme.B")

	ctx, res := runPipeline(t, b, person)
	expectOnly(t, res, diag.MethodsWithConflictingSignatures)
	if len(person.Decl().Methods) != 0 || ctx.Committed() {
		t.Fatalf("failed composition must not mutate the target")
	}
}

func TestComposeIdenticalMembersCollapse(t *testing.T) {
	b := testkit.NewBuilder()
	b.Role("Acme.A").Impl("X", "(System.Int32):void")
	b.Role("Acme.B").Require("X", "(System.Int32):void")
	person := b.Class("Acme.Person").Does("Acme.B").Does("Acme.A")

	_, res := runPipeline(t, b, person)
	if !res.Success() {
		t.Fatalf("unexpected failure: %v", res.Diagnostics())
	}
	if got := methodNames(b.Mod, person.ID); !slices.Equal(got, []string{"X"}) {
		t.Fatalf("expected exactly one X, got %v", got)
	}
	if !findMethod(b.Mod, person.ID, "X").HasBody() {
		t.Fatalf("collapsed member must keep the implementation")
	}
}

func TestComposeOverloadsWithinOneRole(t *testing.T) {
	b := testkit.NewBuilder()
	role := b.Role("Acme.Printer")
	role.Impl("Print", "(System.String):void")
	role.Impl("Print", "(System.Int32):void")
	person := b.Class("Acme.Person").Does("Acme.Printer")

	_, res := runPipeline(t, b, person)
	if !res.Success() || len(person.Decl().Methods) != 2 {
		t.Fatalf("overloads should compose: %v", res.Diagnostics())
	}
}

func TestComposeMixedKindsConflict(t *testing.T) {
	b := testkit.NewBuilder()
	b.Role("Acme.A").Impl("Name", "():System.String")
	b.Role("Acme.B").Property("Name", "System.String", meta.MethodPublic, 0)
	person := b.Class("Acme.Person").Does("Acme.A").Does("Acme.B")

	_, res := runPipeline(t, b, person)
	expectOnly(t, res, diag.Conflict)
}

func TestComposeDifferentProperties(t *testing.T) {
	b := testkit.NewBuilder()
	b.Role("Acme.A").Property("Name", "System.String", meta.MethodPublic, 0)
	b.Role("Acme.B").Property("Name", "System.Int32", meta.MethodPublic, 0)
	person := b.Class("Acme.Person").Does("Acme.A").Does("Acme.B")

	_, res := runPipeline(t, b, person)
	expectOnly(t, res, diag.MembersWithSameName)
}

func TestComposeCopiesProperty(t *testing.T) {
	b := testkit.NewBuilder()
	b.Role("Acme.Named").Property("Name", "System.String", meta.MethodPublic, meta.MethodPrivate)
	person := b.Class("Acme.Person").Does("Acme.Named")

	_, res := runPipeline(t, b, person)
	if !res.Success() {
		t.Fatalf("unexpected failure: %v", res.Diagnostics())
	}
	props := person.Decl().Properties
	if len(props) != 1 {
		t.Fatalf("expected one property, got %v", props)
	}
	p := b.Mod.Property(props[0])
	if !p.Getter.IsValid() || p.Setter.IsValid() {
		t.Fatalf("expected getter-only copy")
	}
	if got := b.Mod.Method(p.Getter); got.Declaring != person.ID || got.Name != "get_Name" || !b.Mod.IsAttached(meta.MethodRef(p.Getter)) {
		t.Fatalf("getter not attached to the target: %+v", got)
	}
}

func TestTargetMemberTakesPrecedence(t *testing.T) {
	b := testkit.NewBuilder()
	b.Role("Acme.Greeter").Impl("Greet", "():void")
	person := b.Class("Acme.Person").Does("Acme.Greeter")
	own := person.Impl("Greet", "():void")

	_, res := runPipeline(t, b, person)
	if !res.Success() {
		t.Fatalf("unexpected failure: %v", res.Diagnostics())
	}
	if got := person.Decl().Methods; !slices.Equal(got, []meta.MethodID{own}) {
		t.Fatalf("target member overwritten: %v", got)
	}
}

func TestTargetSettlesConflictingSignatures(t *testing.T) {
	b := testkit.NewBuilder()
	b.Role("Acme.A").Impl("X", "():System.Int32")
	b.Role("Acme.B").Impl("X", "():System.String")
	person := b.Class("Acme.Person").Does("Acme.A").Does("Acme.B")
	own := person.Impl("X", "():System.Int32")

	plan, res := planFor(t, b, person)
	if !res.Success() {
		t.Fatalf("target member must settle the clash: %v", res.Diagnostics())
	}
	g, ok := plan.Group("X")
	if !ok || len(g.Slots) != 1 {
		t.Fatalf("expected one surviving slot, got %+v", g)
	}
	if s := g.Slots[0]; s.Target != meta.MethodRef(own) || s.Signature != "():System.Int32" {
		t.Fatalf("slot not bound to the target member: %+v", s)
	}

	_, res = runPipeline(t, b, person)
	if !res.Success() || res.Count(diag.MethodsWithConflictingSignatures) != 0 {
		t.Fatalf("unexpected failure: %v", res.Diagnostics())
	}
	if got := person.Decl().Methods; !slices.Equal(got, []meta.MethodID{own}) {
		t.Fatalf("target member overwritten: %v", got)
	}
}

func TestTargetMismatchKeepsConflict(t *testing.T) {
	b := testkit.NewBuilder()
	b.Role("Acme.A").Impl("X", "():System.Int32")
	b.Role("Acme.B").Impl("X", "():System.String")
	person := b.Class("Acme.Person").Does("Acme.A").Does("Acme.B")
	person.Impl("X", "():System.Boolean")

	plan, res := planFor(t, b, person)
	expectOnly(t, res, diag.MethodsWithConflictingSignatures)
	if g, ok := plan.Group("X"); !ok || g.Resolution != ResConflict {
		t.Fatalf("group X = %+v", g)
	}
}

func TestUnimplementedRequirement(t *testing.T) {
	b := testkit.NewBuilder()
	b.Role("Acme.Comparable").Require("CompareTo", "(System.Object):System.Int32")
	person := b.Class("Acme.Person").Does("Acme.Comparable")

	_, res := runPipeline(t, b, person)
	expectOnly(t, res, diag.DoesNotImplementAbstractRoleMember)

	b2 := testkit.NewBuilder()
	b2.Role("Acme.Comparable").Require("CompareTo", "(System.Object):System.Int32")
	person2 := b2.Class("Acme.Person").Does("Acme.Comparable")
	person2.Impl("CompareTo", "(System.Object):System.Int32")
	if _, res := runPipeline(t, b2, person2); !res.Success() {
		t.Fatalf("implemented requirement reported: %v", res.Diagnostics())
	}
}

func TestAbstractTargetKeepsRequirementAbstract(t *testing.T) {
	b := testkit.NewBuilder()
	b.Role("Acme.Comparable").Require("CompareTo", "(System.Object):System.Int32")
	base := b.Class("Acme.PersonBase").Does("Acme.Comparable")
	base.Decl().Attrs |= meta.TypeAbstract

	_, res := runPipeline(t, b, base)
	if !res.Success() {
		t.Fatalf("unexpected failure: %v", res.Diagnostics())
	}
	md := findMethod(b.Mod, base.ID, "CompareTo")
	if md == nil || !md.IsAbstract() || md.HasBody() {
		t.Fatalf("expected abstract copy, got %+v", md)
	}
}

func aliasView(b *testkit.Builder, name, role, member, alias string) *testkit.Type {
	view := b.View(name, role)
	id := view.Require(alias, "():void")
	b.Mod.Method(id).CustomAttrs = []meta.CustomAttr{{Type: meta.AliasingAttr, Args: []string{member}}}
	return view
}

func TestViewAliasRenames(t *testing.T) {
	b := testkit.NewBuilder()
	b.Role("Acme.Greeter").Impl("X", "():void")
	aliasView(b, "Acme.GreeterView", "Acme.Greeter", "X", "Y")
	person := b.Class("Acme.Person").Does("Acme.GreeterView")

	_, res := runPipeline(t, b, person)
	if !res.Success() {
		t.Fatalf("unexpected failure: %v", res.Diagnostics())
	}
	if got := methodNames(b.Mod, person.ID); !slices.Equal(got, []string{"Y"}) {
		t.Fatalf("expected aliased Y only, got %v", got)
	}
	if y := findMethod(b.Mod, person.ID, "Y"); !slices.Equal(y.Overrides, []string{"Acme.Greeter::X"}) {
		t.Fatalf("alias must implement the role member explicitly: %v", y.Overrides)
	}
}

func TestViewAliasRequiresNewName(t *testing.T) {
	b := testkit.NewBuilder()
	b.Role("Acme.Greeter").Require("X", "():void")
	aliasView(b, "Acme.GreeterView", "Acme.Greeter", "X", "Y")
	person := b.Class("Acme.Person").Does("Acme.GreeterView")
	person.Impl("X", "():void")

	_, res := runPipeline(t, b, person)
	expectOnly(t, res, diag.DoesNotImplementAbstractRoleMember)
}

func TestMemberAliasedAgain(t *testing.T) {
	b := testkit.NewBuilder()
	b.Role("Acme.Greeter").Impl("X", "():void")
	aliasView(b, "Acme.View1", "Acme.Greeter", "X", "Y")
	aliasView(b, "Acme.View2", "Acme.Greeter", "X", "Z")
	person := b.Class("Acme.Person").Does("Acme.View1").Does("Acme.View2")

	_, res := runPipeline(t, b, person)
	expectOnly(t, res, diag.RoleMemberAliasedAgain)
}

func TestViewExclusion(t *testing.T) {
	b := testkit.NewBuilder()
	role := b.Role("Acme.Greeter")
	role.Impl("Greet", "():void")
	role.Impl("Wave", "():void")
	view := b.View("Acme.QuietGreeter", "Acme.Greeter")
	id := view.Require("Wave", "():void")
	b.Mod.Method(id).CustomAttrs = []meta.CustomAttr{{Type: meta.ExcludeAttr}}
	person := b.Class("Acme.Person").Does("Acme.QuietGreeter")

	_, res := runPipeline(t, b, person)
	if !res.Success() {
		t.Fatalf("unexpected failure: %v", res.Diagnostics())
	}
	if got := methodNames(b.Mod, person.ID); !slices.Equal(got, []string{"Greet"}) {
		t.Fatalf("excluded member copied: %v", got)
	}
	if !b.Mod.IsAttached(meta.MethodRef(role.Decl().Methods[1])) {
		t.Fatalf("exclusion must not touch the role")
	}
}

func TestAllMembersExcluded(t *testing.T) {
	b := testkit.NewBuilder()
	b.Role("Acme.Greeter").Require("Greet", "():void")
	view := b.View("Acme.NoGreet", "Acme.Greeter")
	id := view.Require("Greet", "():void")
	b.Mod.Method(id).CustomAttrs = []meta.CustomAttr{{Type: meta.ExcludeAttr}}
	person := b.Class("Acme.Person").Does("Acme.NoGreet")

	_, res := runPipeline(t, b, person)
	expectOnly(t, res, diag.AllMembersExcluded)
}

func TestViewValidation(t *testing.T) {
	b := testkit.NewBuilder()
	b.Role("Acme.A").Impl("X", "():void")
	b.Role("Acme.B")
	multi := b.View("Acme.Multi", "Acme.A")
	multi.Implements("Roles.RoleView<Acme.B>")
	notIface := b.View("Acme.Concrete", "Acme.A")
	notIface.Decl().Attrs = meta.TypePublic
	missing := b.View("Acme.Missing", "Acme.A")
	missing.Require("Nope", "():void")

	cases := []struct {
		view string
		code diag.Code
	}{
		{"Acme.Multi", diag.RoleViewWithMultipleRoles},
		{"Acme.Concrete", diag.RoleViewIsNotAnInterface},
		{"Acme.Missing", diag.RoleViewMemberNotFoundInRole},
	}
	for _, c := range cases {
		target := b.Class("Acme.Target." + c.view).Does(c.view)
		ctx := mutate.NewContext(b.Mod)
		res, err := NewMutator(ctx).Mutate(target.ID)
		if err != nil {
			t.Fatalf("%s: %v", c.view, err)
		}
		expectOnly(t, res, c.code)
	}
}

func TestRoleComposesItself(t *testing.T) {
	b := testkit.NewBuilder()
	self := b.Role("Acme.Self").Does("Acme.Self")
	b.Role("Acme.A").Does("Acme.B")
	b.Role("Acme.B").Does("Acme.C")
	b.Role("Acme.C").Does("Acme.A")
	person := b.Class("Acme.Person").Does("Acme.B")

	ctx := mutate.NewContext(b.Mod)
	mut := NewMutator(ctx)
	for _, target := range []meta.TypeID{self.ID, person.ID} {
		res, err := mut.Mutate(target)
		if err != nil {
			t.Fatalf("Mutate: %v", err)
		}
		expectOnly(t, res, diag.RoleComposesItself)
	}
}

func TestCompositionWithTypeParameter(t *testing.T) {
	b := testkit.NewBuilder()
	box := b.Class("Acme.Box", "T").Does("!0")
	res, err := NewMutator(mutate.NewContext(b.Mod)).Mutate(box.ID)
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	expectOnly(t, res, diag.CompositionWithTypeParameter)
}

func TestSelfTypeBinding(t *testing.T) {
	b := testkit.NewBuilder()
	b.Role("Acme.Equatable", "S").Impl("Equals", "(!0):System.Boolean")
	b.Class("Acme.Other")
	good := b.Class("Acme.Person").Does("Acme.Equatable<Acme.Person>")
	bad := b.Class("Acme.Robot").Does("Acme.Equatable<Acme.Other>")

	_, res := runPipeline(t, b, good)
	if !res.Success() {
		t.Fatalf("unexpected failure: %v", res.Diagnostics())
	}
	eq := findMethod(b.Mod, good.ID, "Equals")
	if eq == nil || eq.Params[0].Type.String() != "Acme.Person" {
		t.Fatalf("self type not bound in copied member: %+v", eq)
	}

	res, err := NewMutator(mutate.NewContext(b.Mod)).Mutate(bad.ID)
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	expectOnly(t, res, diag.SelfTypeConstraintNotSetToCompositionType)
}

func TestRoleTargetStopsBeforeCopy(t *testing.T) {
	b := testkit.NewBuilder()
	b.Role("Acme.Base", "S").Impl("Hello", "():void")
	outer := b.Role("Acme.Outer", "S").Does("Acme.Base<!0>")

	ctx, res := runPipeline(t, b, outer)
	if !res.Success() {
		t.Fatalf("unexpected failure: %v", res.Diagnostics())
	}
	if len(outer.Decl().Methods) != 0 {
		t.Fatalf("role target must not receive members")
	}
	if !outer.Decl().Implements("Acme.Base") || !ctx.Committed() {
		t.Fatalf("role target must record the composed contract")
	}
}

func TestTransitiveComposition(t *testing.T) {
	b := testkit.NewBuilder()
	b.Role("Acme.Base", "S").Impl("Hello", "(!0):void")
	b.Role("Acme.Outer", "S").Does("Acme.Base<!0>").Impl("Bye", "():void")
	person := b.Class("Acme.Person").Does("Acme.Outer<Acme.Person>")

	_, res := runPipeline(t, b, person)
	if !res.Success() {
		t.Fatalf("unexpected failure: %v", res.Diagnostics())
	}
	if got := methodNames(b.Mod, person.ID); !slices.Equal(got, []string{"Bye", "Hello"}) {
		t.Fatalf("target methods = %v", got)
	}
	if hello := findMethod(b.Mod, person.ID, "Hello"); hello.Params[0].Type.String() != "Acme.Person" {
		t.Fatalf("transitive self type not bound: %s", hello.Params[0].Type)
	}
}

func TestTransitiveUsesRecordChain(t *testing.T) {
	b := testkit.NewBuilder()
	b.Role("Acme.Base", "S").Impl("Hello", "(!0):void")
	b.Role("Acme.Outer", "S").Does("Acme.Base<!0>").Impl("Bye", "():void")
	person := b.Class("Acme.Person").Does("Acme.Outer<Acme.Person>")

	uses, res := ResolveUses(mutate.NewContext(b.Mod), person.ID)
	if !res.Success() || len(uses) != 2 {
		t.Fatalf("uses = %v, %v", uses, res.Diagnostics())
	}
	direct := map[string]bool{}
	for _, u := range uses {
		direct[b.Mod.Type(u.Role).Name] = u.Direct()
	}
	if !direct["Acme.Outer"] || direct["Acme.Base"] {
		t.Fatalf("direct uses = %v", direct)
	}
}

func TestBrokenRoleSkipsComposition(t *testing.T) {
	b := testkit.NewBuilder()
	b.Class("Acme.Thing")
	b.Role("Acme.Bad").Base("Acme.Thing").Impl("X", "():void")
	person := b.Class("Acme.Person").Does("Acme.Bad")

	ctx := mutate.NewContext(b.Mod)
	m := newMutators(ctx)
	for _, id := range b.Mod.Types() {
		m.morph.Mutate(id)
	}
	res, err := m.compose.Mutate(person.ID)
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if !res.Has(diag.ComposeInfo) || ctx.Len() != 0 {
		t.Fatalf("expected skipped composition, got %v", res.Diagnostics())
	}
}

func TestNoTarget(t *testing.T) {
	_, err := NewMutator(mutate.NewContext(meta.NewModule("m"))).Mutate(meta.NoTypeID)
	if !errors.Is(err, ErrNoTarget) {
		t.Fatalf("expected ErrNoTarget, got %v", err)
	}
}

func TestRoleUsage(t *testing.T) {
	b := testkit.NewBuilder()
	b.Role("Acme.Greeter")
	b.Class("Acme.Derived").Base("Acme.Greeter")
	factory := b.Class("Acme.Factory")
	factory.MethodDecl(meta.MethodDecl{
		Name:  "Make",
		Attrs: meta.MethodPublic,
		Body: &meta.Body{Instructions: []meta.Instruction{
			{Op: "newobj", Operand: "Acme.Greeter::.ctor"},
			{Op: "ret"},
		}},
	})

	res := CheckRoleUsage(b.Mod)
	if res.Count(diag.TypeCantInheritFromRole) != 1 || res.Count(diag.RoleInstantiated) != 1 {
		t.Fatalf("unexpected usage diagnostics: %v", res.Diagnostics())
	}
}
