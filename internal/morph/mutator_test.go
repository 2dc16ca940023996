package morph

import (
	"reflect"
	"testing"

	"rolecomp/internal/diag"
	"rolecomp/internal/meta"
	"rolecomp/internal/mutate"
	"rolecomp/internal/testkit"
)

func morphAndCommit(t *testing.T, mod *meta.Module, id meta.TypeID) *diag.Result {
	t.Helper()
	ctx := mutate.NewContext(mod)
	res := NewMutator(ctx).Mutate(id)
	if _, err := ctx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return res
}

func TestMorphProducesInterface(t *testing.T) {
	b := testkit.NewBuilder()
	role := b.Role("Acme.Greeter")
	role.Decl().Attrs = meta.TypeNestedPrivate | meta.TypeSealed
	role.Ctor()
	role.Field("name", "System.String")
	greet := role.Impl("Greet", "(System.String):void")

	res := morphAndCommit(t, b.Mod, role.ID)
	if !res.Success() || res.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Diagnostics())
	}
	d := role.Decl()
	if !d.IsInterface() || !d.IsAbstract() || d.Base != nil {
		t.Fatalf("role not interface-shaped: attrs=%s base=%v", d.Attrs, d.Base)
	}
	if d.Attrs.Visibility() != meta.TypeNestedPrivate || d.Attrs.Has(meta.TypeSealed) {
		t.Fatalf("visibility not preserved: %s", d.Attrs)
	}
	if len(d.Fields) != 0 {
		t.Fatalf("fields survived morphing")
	}
	if !reflect.DeepEqual(d.Methods, []meta.MethodID{greet}) {
		t.Fatalf("expected only Greet to remain, got %v", d.Methods)
	}
	md := b.Mod.Method(greet)
	if md.HasBody() {
		t.Fatalf("body not cleared")
	}
	want := meta.MethodPublic | meta.MethodHideBySig | meta.MethodNewSlot | meta.MethodAbstract | meta.MethodVirtual
	if md.Attrs != want {
		t.Fatalf("attrs = %s, want %s", md.Attrs, want)
	}
}

func TestMorphRejectsClassBase(t *testing.T) {
	b := testkit.NewBuilder()
	role := b.Role("Acme.Greeter").Base("Acme.Person")
	role.Field("name", "System.String")
	before := *role.Decl()

	ctx := mutate.NewContext(b.Mod)
	res := NewMutator(ctx).Mutate(role.ID)
	if res.Success() || res.Count(diag.RoleInheritsFromClass) != 1 || res.Len() != 1 {
		t.Fatalf("expected exactly one RoleInheritsFromClass, got %v", res.Diagnostics())
	}
	if ctx.Len() != 0 {
		t.Fatalf("nothing should be scheduled, got %v", ctx.Pending())
	}
	if !ctx.IsBroken(role.ID) {
		t.Fatalf("role not marked broken")
	}
	if !reflect.DeepEqual(before, *role.Decl()) {
		t.Fatalf("declaration mutated")
	}
}

func TestMorphExcludedMethods(t *testing.T) {
	b := testkit.NewBuilder()
	role := b.Role("Acme.Greeter")
	excluded := []meta.MethodID{
		role.Method("Private", "():void", meta.MethodPrivate, true),
		role.Method("Internal", "():void", meta.MethodAssembly, true),
		role.Method("FamAndAssem", "():void", meta.MethodFamANDAssem, true),
		role.Method("Static", "():void", meta.MethodPublic|meta.MethodStatic, true),
		role.Ctor(),
	}
	kept := role.Method("Protected", "():void", meta.MethodFamily, true)
	keptOr := role.Method("ProtectedInternal", "():void", meta.MethodFamORAssem, true)

	ctx := mutate.NewContext(b.Mod)
	res := NewMutator(ctx).Mutate(role.ID)
	if !res.Success() {
		t.Fatalf("unexpected failure: %v", res.Diagnostics())
	}
	if md := b.Mod.Method(kept); md.Attrs.Access() != meta.MethodFamily || meta.HasAttr(md.CustomAttrs, meta.GuardedAttr) {
		t.Fatalf("protected method widened before commit: %s %v", md.Attrs, md.CustomAttrs)
	}
	for _, id := range excluded {
		if !ctx.IsScheduledForRemoval(meta.MethodRef(id)) {
			t.Fatalf("%s not scheduled for removal", b.Mod.Method(id).Name)
		}
	}
	for _, id := range []meta.MethodID{kept, keptOr} {
		md := b.Mod.Method(id)
		if ctx.IsScheduledForRemoval(meta.MethodRef(id)) {
			t.Fatalf("%s scheduled for removal", md.Name)
		}
	}
	if _, err := ctx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	for _, id := range []meta.MethodID{kept, keptOr} {
		md := b.Mod.Method(id)
		if md.Attrs.Access() != meta.MethodPublic || !meta.HasAttr(md.CustomAttrs, meta.GuardedAttr) {
			t.Fatalf("%s not widened with guard marker: %s %v", md.Name, md.Attrs, md.CustomAttrs)
		}
	}
}

func TestMorphProperties(t *testing.T) {
	b := testkit.NewBuilder()
	role := b.Role("Acme.Named")
	getOnly := role.Property("Name", "System.String", meta.MethodPublic, meta.MethodPrivate)
	hidden := role.Property("Secret", "System.String", meta.MethodPrivate, meta.MethodPrivate)

	res := morphAndCommit(t, b.Mod, role.ID)
	if !res.Success() {
		t.Fatalf("unexpected failure: %v", res.Diagnostics())
	}
	if !reflect.DeepEqual(role.Decl().Properties, []meta.PropertyID{getOnly}) {
		t.Fatalf("expected only Name to remain, got %v", role.Decl().Properties)
	}
	p := b.Mod.Property(getOnly)
	if !p.Getter.IsValid() || p.Setter.IsValid() {
		t.Fatalf("expected getter-only property, got get=%d set=%d", p.Getter, p.Setter)
	}
	if !b.Mod.Method(p.Getter).Attrs.Has(meta.MethodSpecialName | meta.MethodAbstract) {
		t.Fatalf("getter not a special abstract accessor")
	}
	if b.Mod.IsAttached(meta.PropertyRef(hidden)) {
		t.Fatalf("fully private property survived")
	}
	if len(role.Decl().Methods) != 1 {
		t.Fatalf("expected the getter as the only method, got %v", role.Decl().Methods)
	}
}

func TestMorphEvents(t *testing.T) {
	b := testkit.NewBuilder()
	role := b.Role("Acme.Notifier")
	pub := role.Event("Changed", "System.EventHandler", meta.MethodPublic)
	priv := role.Event("Hidden", "System.EventHandler", meta.MethodPrivate)

	morphAndCommit(t, b.Mod, role.ID)
	if !b.Mod.IsAttached(meta.EventRef(pub)) || b.Mod.IsAttached(meta.EventRef(priv)) {
		t.Fatalf("unexpected events: %v", role.Decl().Events)
	}
}

func TestMorphParameterizedConstructor(t *testing.T) {
	b := testkit.NewBuilder()
	role := b.Role("Acme.Greeter")
	ctor := role.Ctor("System.String")
	role.Impl("Greet", "():void")

	ctx := mutate.NewContext(b.Mod)
	res := NewMutator(ctx).Mutate(role.ID)
	if res.Success() || res.Count(diag.RoleCannotContainParameterizedConstructor) != 1 {
		t.Fatalf("expected parameterized constructor error, got %v", res.Diagnostics())
	}
	if ctx.IsScheduledForRemoval(meta.MethodRef(ctor)) || !b.Mod.Method(ctor).HasBody() {
		t.Fatalf("constructor must be left untouched")
	}
	if !ctx.IsBroken(role.ID) {
		t.Fatalf("role not marked broken")
	}
}

func TestMorphShapeViolations(t *testing.T) {
	b := testkit.NewBuilder()
	role := b.Role("Acme.Native")
	explicit := role.Impl("Dispose", "():void")
	b.Mod.Method(explicit).Overrides = []string{"System.IDisposable::Dispose"}
	role.Method("Beep", "():void", meta.MethodPublic|meta.MethodPInvokeImpl, false)
	ph := role.Impl("Later", "():void")
	b.Mod.Method(ph).CustomAttrs = []meta.CustomAttr{{Type: meta.PlaceholderAttr}}

	res := NewMutator(mutate.NewContext(b.Mod)).Mutate(role.ID)
	for _, code := range []diag.Code{diag.RoleHasExplicitInterfaceImplementation, diag.RoleHasPInvokeMethod, diag.RoleHasPlaceholder} {
		if res.Count(code) != 1 {
			t.Fatalf("expected one %s, got %v", code.ID(), res.Diagnostics())
		}
	}
}

func TestMorphLeavesNonRoles(t *testing.T) {
	b := testkit.NewBuilder()
	cls := b.Class("Acme.Person")
	cls.Field("name", "System.String")
	ctx := mutate.NewContext(b.Mod)
	res := NewMutator(ctx).Mutate(cls.ID)
	if !res.Success() || res.Len() != 0 || ctx.Len() != 0 {
		t.Fatalf("non-role must be left alone")
	}
}

func TestMorphIsIdempotent(t *testing.T) {
	b := testkit.NewBuilder()
	role := b.Role("Acme.Greeter")
	role.Impl("Greet", "():void")
	role.Method("Helper", "():void", meta.MethodFamily, true)
	role.Property("Name", "System.String", meta.MethodPublic, meta.MethodPrivate)

	morphAndCommit(t, b.Mod, role.ID)
	once := snapshot(b.Mod, role.ID)
	morphAndCommit(t, b.Mod, role.ID)
	twice := snapshot(b.Mod, role.ID)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("second morph changed the role:\n%+v\n%+v", once, twice)
	}
}

func TestMorphEditsNothingBeforeCommit(t *testing.T) {
	b := testkit.NewBuilder()
	role := b.Role("Acme.Greeter")
	role.Field("name", "System.String")
	role.Impl("Greet", "():void")
	role.Method("Helper", "():void", meta.MethodFamily, true)
	role.Property("Name", "System.String", meta.MethodPublic, meta.MethodPrivate)
	before := snapshot(b.Mod, role.ID)

	ctx := mutate.NewContext(b.Mod)
	res := NewMutator(ctx).Mutate(role.ID)
	if !res.Success() || ctx.Len() == 0 {
		t.Fatalf("expected planned edits, got %v", res.Diagnostics())
	}
	if ctx.Committed() {
		t.Fatalf("morph must not commit")
	}
	if !reflect.DeepEqual(before, snapshot(b.Mod, role.ID)) {
		t.Fatalf("role changed before commit:\n%+v\n%+v", before, snapshot(b.Mod, role.ID))
	}
	if d := role.Decl(); d.IsInterface() || d.Base == nil {
		t.Fatalf("type shape applied before commit: attrs=%s base=%v", d.Attrs, d.Base)
	}

	ctx.Commit()
	if d := role.Decl(); !d.IsInterface() || !d.IsAbstract() || d.Base != nil {
		t.Fatalf("type shape not applied at commit: attrs=%s base=%v", d.Attrs, d.Base)
	}
}

func TestRemovalsInvisibleUntilCommit(t *testing.T) {
	b := testkit.NewBuilder()
	role := b.Role("Acme.Greeter")
	priv := role.Method("Helper", "():void", meta.MethodPrivate, true)
	role.Impl("Greet", "():void")

	ctx := mutate.NewContext(b.Mod)
	NewMutator(ctx).Mutate(role.ID)
	if !b.Mod.IsAttached(meta.MethodRef(priv)) || len(role.Decl().Methods) != 2 {
		t.Fatalf("removal visible before commit")
	}
	if got := len(Contract(b.Mod, role.ID)); got != 1 {
		t.Fatalf("contract before commit has %d members, want 1", got)
	}
	ctx.Commit()
	if b.Mod.IsAttached(meta.MethodRef(priv)) {
		t.Fatalf("removal not applied at commit")
	}
	if got := len(Contract(b.Mod, role.ID)); got != 1 {
		t.Fatalf("contract after commit has %d members, want 1", got)
	}
}

type roleSnapshot struct {
	Type    meta.TypeDecl
	Methods []meta.MethodDecl
	Props   []meta.PropertyDecl
}

func snapshot(mod *meta.Module, id meta.TypeID) roleSnapshot {
	s := roleSnapshot{Type: *mod.Type(id)}
	for _, m := range s.Type.Methods {
		s.Methods = append(s.Methods, *mod.Method(m))
	}
	for _, p := range s.Type.Properties {
		s.Props = append(s.Props, *mod.Property(p))
	}
	return s
}
