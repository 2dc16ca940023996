package compose

import (
	"fmt"
	"strings"

	"rolecomp/internal/diag"
	"rolecomp/internal/meta"
	"rolecomp/internal/morph"
	"rolecomp/internal/mutate"
	"rolecomp/internal/trace"
)

type aliasKey struct {
	role   meta.TypeID
	member meta.MemberRef
}

// viewMapping is what one role view does to its role's members.
type viewMapping struct {
	alias   map[meta.MemberRef]string
	exclude map[meta.MemberRef]bool
}

type detector struct {
	ctx     *mutate.Context
	mod     *meta.Module
	target  *meta.TypeDecl
	res     *diag.Result
	plan    *Plan
	own     map[string][]meta.MemberRef
	aliased map[aliasKey]string
	span    uint64
}

// Detect builds the composition member plan of target from its resolved
// role uses. The plan is returned even when the result failed so callers can
// inspect it.
func Detect(ctx *mutate.Context, target meta.TypeID, uses []*RoleUse) (*Plan, *diag.Result) {
	d := &detector{
		ctx:     ctx,
		mod:     ctx.Module,
		target:  ctx.Module.Type(target),
		res:     diag.NewResult(),
		plan:    newPlan(target, uses),
		own:     make(map[string][]meta.MemberRef),
		aliased: make(map[aliasKey]string),
	}
	span := trace.Begin(ctx.Tracer, trace.ScopeType, "plan:"+d.target.Name, 0)
	d.span = span.ID()
	defer func() { span.WithExtra("groups", fmt.Sprint(len(d.plan.Groups))).End("") }()

	for _, ref := range d.mod.Members(target) {
		if ref.Kind == meta.MemberMethod && d.mod.Method(ref.Method()).IsAccessor() {
			continue
		}
		name := d.mod.MemberName(ref)
		d.own[name] = append(d.own[name], ref)
	}

	for _, use := range uses {
		mapping := d.mapView(use)
		d.collect(use, mapping)
	}
	if !d.res.Success() {
		return d.plan, d.res
	}

	for _, g := range d.plan.Groups {
		d.classify(g)
	}
	if !d.target.IsRole() && !d.target.IsAbstract() {
		d.checkRequirements()
	}
	return d.plan, d.res
}

// mapView validates the members of use's role view and returns its aliases
// and exclusions.
func (d *detector) mapView(use *RoleUse) viewMapping {
	m := viewMapping{alias: map[meta.MemberRef]string{}, exclude: map[meta.MemberRef]bool{}}
	if !use.View.IsValid() {
		return m
	}
	view := d.mod.Type(use.View)
	contract := morph.Contract(d.mod, use.Role)

	for _, vref := range d.mod.Members(use.View) {
		if vref.Kind == meta.MemberField {
			continue
		}
		if vref.Kind == meta.MemberMethod && d.mod.Method(vref.Method()).IsAccessor() {
			continue
		}
		name := d.mod.MemberName(vref)
		attrs := d.mod.MemberAttrs(vref)
		original := name
		alias, isAlias := meta.FindAttr(attrs, meta.AliasingAttr)
		if isAlias && len(alias.Args) > 0 {
			original = strings.Trim(alias.Args[0], `"`)
		}

		rm, ok := d.matchRoleMember(contract, use, vref, original)
		if !ok {
			d.res.Add(diag.Errorf(diag.RoleViewMemberNotFoundInRole, d.mod.MemberLocation(vref),
				"member %s of role view %s has no counterpart %s in role %s",
				name, view.Name, original, d.mod.Type(use.Role).Name))
			continue
		}
		if meta.HasAttr(attrs, meta.ExcludeAttr) {
			m.exclude[rm] = true
			continue
		}
		if !isAlias {
			continue
		}
		key := aliasKey{role: use.Role, member: rm}
		if first, again := d.aliased[key]; again {
			d.res.Add(diag.Errorf(diag.RoleMemberAliasedAgain, d.mod.MemberLocation(vref),
				"role member %s is aliased again as %s in %s", d.mod.MemberLabel(rm), name, view.Name).
				WithNote(d.mod.Type(use.View).Location, "first aliased in "+first))
			continue
		}
		d.aliased[key] = view.Name + "::" + name
		m.alias[rm] = name
	}
	return m
}

// matchRoleMember finds the role member a view member stands for: same kind
// and name, preferring an identical signature among overloads.
func (d *detector) matchRoleMember(contract []meta.MemberRef, use *RoleUse, vref meta.MemberRef, name string) (meta.MemberRef, bool) {
	var candidates []meta.MemberRef
	for _, rm := range contract {
		if rm.Kind == vref.Kind && d.mod.MemberName(rm) == name {
			candidates = append(candidates, rm)
		}
	}
	if len(candidates) == 0 {
		return meta.NoMember, false
	}
	want := morph.Signature(d.mod, vref, nil)
	for _, rm := range candidates {
		if morph.Signature(d.mod, rm, use.ViewRoleArgs) == want {
			return rm, true
		}
	}
	return candidates[0], true
}

func (d *detector) collect(use *RoleUse, mapping viewMapping) {
	for _, ref := range morph.Contract(d.mod, use.Role) {
		c := Contribution{
			Use:       use,
			Member:    ref,
			Name:      d.mod.MemberName(ref),
			Signature: morph.Signature(d.mod, ref, use.Args()),
			Excluded:  mapping.exclude[ref],
		}
		if alias, ok := mapping.alias[ref]; ok {
			c.Name = alias
			c.Aliased = true
		}
		d.plan.add(c)
	}
}

func (d *detector) classify(g *MemberGroup) {
	own := d.own[g.Name]
	if len(g.Slots) == 0 {
		g.Resolution = ResExcluded
		for _, c := range g.Excluded {
			if len(own) == 0 && morph.IsRequirement(d.mod, c.Member) {
				d.report(g, diag.AllMembersExcluded,
					"%s is required by %s but every contribution is excluded and %s does not declare it",
					g.Name, d.mod.Type(c.Use.Role).Name, d.target.Name)
				break
			}
		}
		d.point(g)
		return
	}

	contributions := g.Contributions()
	kind := contributions[0].Kind()
	mixed := false
	for _, c := range contributions {
		mixed = mixed || c.Kind() != kind
	}
	for _, ref := range own {
		mixed = mixed || ref.Kind != kind
	}
	if mixed {
		d.report(g, diag.Conflict, "%s is contributed as members of different kinds", g.Name)
		return
	}

	clash := len(g.Slots) > 1
	if kind == meta.MemberMethod {
		clash = conflictingSignatures(contributions)
	}
	switch {
	case !clash || d.settleByTarget(g, own):
	case kind == meta.MemberMethod:
		d.report(g, diag.MethodsWithConflictingSignatures,
			"roles contribute method %s with conflicting signatures", g.Name)
		return
	default:
		d.report(g, diag.MembersWithSameName, "roles contribute %s members named %s with different signatures", kind, g.Name)
		return
	}

	for _, s := range g.Slots {
		for _, ref := range own {
			if d.satisfies(ref, s.Contribution()) {
				s.Target = ref
				break
			}
		}
		if kind != meta.MemberMethod && len(own) > 0 && !s.Satisfied() {
			d.report(g, diag.MembersWithSameName,
				"%s declares %s %s incompatible with the role member", d.target.Name, kind, g.Name)
			return
		}
		for i, c := range s.Contributions {
			if !morph.IsRequirement(d.mod, c.Member) {
				s.Chosen = i
				break
			}
		}
	}

	g.Resolution = ResUnique
	for _, s := range g.Slots {
		if len(s.Contributions) > 1 {
			g.Resolution = ResShared
			break
		}
		if s.Contribution().Aliased {
			g.Resolution = ResAliased
		}
	}
	d.point(g)
}

// settleByTarget keeps the slot one of the target's own members satisfies
// and drops the others. The target's declaration wins over the roles.
func (d *detector) settleByTarget(g *MemberGroup, own []meta.MemberRef) bool {
	for _, s := range g.Slots {
		for _, ref := range own {
			if d.satisfies(ref, s.Contribution()) {
				s.Target = ref
				g.Slots = []*Slot{s}
				return true
			}
		}
	}
	return false
}

// conflictingSignatures reports two contributions from different roles whose
// signatures differ. Overloads within one role are fine.
func conflictingSignatures(cs []Contribution) bool {
	for i := range cs {
		for j := i + 1; j < len(cs); j++ {
			if cs[i].Use.Role != cs[j].Use.Role && cs[i].Signature != cs[j].Signature {
				return true
			}
		}
	}
	return false
}

// satisfies reports whether the target's own member stands in for c.
func (d *detector) satisfies(own meta.MemberRef, c Contribution) bool {
	if own.Kind != c.Kind() {
		return false
	}
	switch own.Kind {
	case meta.MemberMethod:
		return d.mod.MethodSignature(own.Method(), nil) == c.Signature
	case meta.MemberEvent:
		return d.mod.EventSignature(own.Event(), nil) == c.Signature
	case meta.MemberProperty:
		none := func(meta.MethodID) bool { return false }
		if d.mod.PropertySignatureWith(own.Property(), nil, none) !=
			d.mod.PropertySignatureWith(c.Member.Property(), c.Use.Args(), none) {
			return false
		}
		mine := d.mod.Property(own.Property())
		for _, acc := range morph.SurvivingAccessors(d.mod, c.Member) {
			switch d.mod.Method(acc).Semantics {
			case meta.SemGetter:
				if !mine.Getter.IsValid() {
					return false
				}
			case meta.SemSetter:
				if !mine.Setter.IsValid() {
					return false
				}
			}
		}
		return true
	}
	return false
}

func (d *detector) checkRequirements() {
	for _, g := range d.plan.Groups {
		if g.Resolution == ResConflict || g.Resolution == ResExcluded {
			continue
		}
		for _, s := range g.Slots {
			c := s.Contribution()
			if s.Satisfied() || !morph.IsRequirement(d.mod, c.Member) {
				continue
			}
			d.res.Add(diag.Errorf(diag.DoesNotImplementAbstractRoleMember, d.target.Location,
				"%s does not implement %s %s%s required by role %s",
				d.target.Name, c.Kind(), g.Name, s.Signature, d.mod.Type(c.Use.Role).Name).
				WithNote(d.mod.MemberLocation(c.Member), "required by "+d.mod.MemberLabel(c.Member)))
		}
	}
}

func (d *detector) report(g *MemberGroup, code diag.Code, format string, args ...any) {
	g.Resolution = ResConflict
	dg := diag.Errorf(code, d.target.Location, "in %s: "+format, append([]any{d.target.Name}, args...)...)
	for _, c := range g.Contributions() {
		dg = dg.WithNote(d.mod.MemberLocation(c.Member), d.contributionLabel(c))
	}
	for _, c := range g.Excluded {
		dg = dg.WithNote(d.mod.MemberLocation(c.Member), "excluded: "+d.contributionLabel(c))
	}
	d.res.Add(dg)
	d.point(g)
}

func (d *detector) contributionLabel(c Contribution) string {
	label := d.mod.MemberLabel(c.Member) + " " + c.Signature
	if c.Aliased {
		label += " (aliased as " + c.Name + ")"
	}
	return label
}

func (d *detector) point(g *MemberGroup) {
	trace.Point(d.ctx.Tracer, trace.ScopeMember, "group", g.Name, d.span,
		map[string]string{"resolution": g.Resolution.String(), "slots": fmt.Sprint(len(g.Slots))})
}
