package compose

import (
	"rolecomp/internal/meta"
)

// Resolution classifies a member group of a composition plan.
type Resolution uint8

const (
	// ResUnique: one contributor, kept as is.
	ResUnique Resolution = iota + 1
	// ResShared: several contributors with identical signatures, merged into one.
	ResShared
	// ResAliased: the surviving contributor was renamed by a role view.
	ResAliased
	// ResExcluded: every contributor was excluded by role views.
	ResExcluded
	// ResConflict: the group cannot be composed.
	ResConflict
)

func (r Resolution) String() string {
	switch r {
	case ResUnique:
		return "keep-one"
	case ResShared:
		return "merge-as-identical"
	case ResAliased:
		return "alias-rename"
	case ResExcluded:
		return "excluded"
	case ResConflict:
		return "conflict"
	}
	return "unknown"
}

// Contribution is one role member offered to the target under a final name.
type Contribution struct {
	Use       *RoleUse
	Member    meta.MemberRef
	Name      string
	Signature string
	Aliased   bool
	Excluded  bool
}

// Kind returns the member kind of the contribution.
func (c Contribution) Kind() meta.MemberKind { return c.Member.Kind }

// Slot gathers the contributions sharing one signature within a group.
type Slot struct {
	Signature     string
	Contributions []Contribution
	// Chosen indexes the contribution that will be copied.
	Chosen int
	// Target is the target's own member satisfying the slot, if any.
	Target meta.MemberRef
}

// Contribution returns the chosen contribution.
func (s *Slot) Contribution() Contribution { return s.Contributions[s.Chosen] }

// Satisfied reports whether the target already declares the member.
func (s *Slot) Satisfied() bool { return s.Target.IsValid() }

// MemberGroup is every contribution sharing a final member name.
type MemberGroup struct {
	Name       string
	Slots      []*Slot
	Excluded   []Contribution
	Resolution Resolution
}

// Contributions lists the surviving contributions in discovery order.
func (g *MemberGroup) Contributions() []Contribution {
	var out []Contribution
	for _, s := range g.Slots {
		out = append(out, s.Contributions...)
	}
	return out
}

// Plan is the composition member plan of one target. It is built per run and
// never persisted.
type Plan struct {
	Target meta.TypeID
	Uses   []*RoleUse
	Groups []*MemberGroup
	byName map[string]*MemberGroup
}

func newPlan(target meta.TypeID, uses []*RoleUse) *Plan {
	return &Plan{Target: target, Uses: uses, byName: make(map[string]*MemberGroup)}
}

// Group returns the group for a final member name.
func (p *Plan) Group(name string) (*MemberGroup, bool) {
	g, ok := p.byName[name]
	return g, ok
}

func (p *Plan) add(c Contribution) {
	g, ok := p.byName[c.Name]
	if !ok {
		g = &MemberGroup{Name: c.Name}
		p.byName[c.Name] = g
		p.Groups = append(p.Groups, g)
	}
	if c.Excluded {
		g.Excluded = append(g.Excluded, c)
		return
	}
	for _, s := range g.Slots {
		if s.Signature == c.Signature && s.Contributions[0].Kind() == c.Kind() {
			s.Contributions = append(s.Contributions, c)
			return
		}
	}
	g.Slots = append(g.Slots, &Slot{Signature: c.Signature, Contributions: []Contribution{c}})
}
