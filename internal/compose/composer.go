package compose

import (
	"strings"

	"rolecomp/internal/meta"
	"rolecomp/internal/morph"
	"rolecomp/internal/mutate"
	"rolecomp/internal/trace"
)

const (
	implAttrs     = meta.MethodPublic | meta.MethodHideBySig | meta.MethodNewSlot | meta.MethodVirtual | meta.MethodFinal
	abstractAttrs = meta.MethodPublic | meta.MethodHideBySig | meta.MethodNewSlot | meta.MethodVirtual | meta.MethodAbstract
)

// Composer copies planned role members into the target. New members are
// allocated right away and attached to the target at commit; roles are never
// touched.
type Composer struct {
	ctx    *mutate.Context
	mod    *meta.Module
	target *meta.TypeDecl
	span   uint64
}

// Compose schedules the insertion of every planned member the target does not
// already declare, and makes the target implement each composed role.
func Compose(ctx *mutate.Context, plan *Plan) int {
	c := &Composer{ctx: ctx, mod: ctx.Module, target: ctx.Module.Type(plan.Target)}
	span := trace.Begin(ctx.Tracer, trace.ScopeType, "compose:"+c.target.Name, 0)
	c.span = span.ID()

	inserted := 0
	for _, g := range plan.Groups {
		if g.Resolution == ResConflict || g.Resolution == ResExcluded {
			continue
		}
		for _, s := range g.Slots {
			if s.Satisfied() {
				continue
			}
			if c.copy(s.Contribution()) {
				inserted++
			}
		}
	}
	c.addContracts(plan.Uses)
	span.End("")
	return inserted
}

// addContracts makes the target implement every composed role.
func (c *Composer) addContracts(uses []*RoleUse) {
	for _, use := range uses {
		c.ctx.Schedule(mutate.AddInterface(c.target.ID, use.Ref))
	}
}

func (c *Composer) copy(contrib Contribution) bool {
	var ref meta.MemberRef
	switch contrib.Kind() {
	case meta.MemberMethod:
		id := c.copyMethod(contrib.Member.Method(), contrib, contrib.Name)
		ref = meta.MethodRef(id)
	case meta.MemberProperty:
		ref = c.copyProperty(contrib)
	case meta.MemberEvent:
		ref = c.copyEvent(contrib)
	default:
		return false
	}
	c.ctx.Schedule(mutate.AttachMember(c.target.ID, ref))
	trace.Point(c.ctx.Tracer, trace.ScopeMember, "insert", c.target.Name+"::"+contrib.Name, c.span,
		map[string]string{"from": c.mod.MemberLabel(contrib.Member)})
	return true
}

// copyMethod allocates a copy of a role method bound to the target. The copy
// is concrete when the role provides a body and abstract otherwise.
func (c *Composer) copyMethod(id meta.MethodID, contrib Contribution, name string) meta.MethodID {
	src := c.mod.Method(id)
	decl := c.mod.CloneMethod(id, contrib.Use.Args())
	decl.Name = name
	decl.Declaring = c.target.ID
	decl.Overrides = nil
	if morph.IsGuarded(src.Attrs.Access()) && !meta.HasAttr(decl.CustomAttrs, meta.GuardedAttr) {
		decl.CustomAttrs = append(decl.CustomAttrs, meta.CustomAttr{Type: meta.GuardedAttr})
	}
	keep := decl.Attrs & (meta.MethodSpecialName | meta.MethodRTSpecialName)
	if src.IsAccessor() {
		keep |= meta.MethodSpecialName
	}
	if decl.Body != nil {
		decl.Attrs = implAttrs | keep
	} else {
		decl.Attrs = abstractAttrs | keep
	}
	if contrib.Aliased {
		// переименованный член реализует исходный явно
		decl.Overrides = []string{contrib.Use.Ref.String() + "::" + src.Name}
	}
	return c.mod.NewMethod(decl)
}

func (c *Composer) copyAccessor(id meta.MethodID, contrib Contribution) meta.MethodID {
	name := c.mod.Method(id).Name
	if contrib.Aliased {
		name = renameAccessor(name, c.mod.MemberName(contrib.Member), contrib.Name)
	}
	acc := c.copyMethod(id, contrib, name)
	c.ctx.Schedule(mutate.AttachMember(c.target.ID, meta.MethodRef(acc)))
	return acc
}

func (c *Composer) copyProperty(contrib Contribution) meta.MemberRef {
	decl := c.mod.CloneProperty(contrib.Member.Property(), contrib.Use.Args())
	decl.Name = contrib.Name
	decl.Declaring = c.target.ID
	for _, acc := range morph.SurvivingAccessors(c.mod, contrib.Member) {
		switch c.mod.Method(acc).Semantics {
		case meta.SemGetter:
			decl.Getter = c.copyAccessor(acc, contrib)
		case meta.SemSetter:
			decl.Setter = c.copyAccessor(acc, contrib)
		}
	}
	return meta.PropertyRef(c.mod.NewProperty(decl))
}

func (c *Composer) copyEvent(contrib Contribution) meta.MemberRef {
	decl := c.mod.CloneEvent(contrib.Member.Event(), contrib.Use.Args())
	decl.Name = contrib.Name
	decl.Declaring = c.target.ID
	for _, acc := range morph.SurvivingAccessors(c.mod, contrib.Member) {
		switch c.mod.Method(acc).Semantics {
		case meta.SemAdder:
			decl.Adder = c.copyAccessor(acc, contrib)
		case meta.SemRemover:
			decl.Remover = c.copyAccessor(acc, contrib)
		case meta.SemFire:
			decl.Invoker = c.copyAccessor(acc, contrib)
		}
	}
	return meta.EventRef(c.mod.NewEvent(decl))
}

// renameAccessor maps get_Old to get_New and leaves other names alone.
func renameAccessor(name, from, to string) string {
	prefix, rest, ok := strings.Cut(name, "_")
	if !ok || rest != from {
		return name
	}
	return prefix + "_" + to
}
