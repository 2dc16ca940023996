package diag

import (
	"cmp"
	"math"
	"slices"
)

// Bag is the bounded, flat list of diagnostics the CLI renders. The tree in
// Result is what passes produce; the driver flattens it into a Bag.
type Bag struct {
	items []Diagnostic
	max   uint16
}

// NewBag returns a bag holding at most max diagnostics; max <= 0 means the
// largest supported limit.
func NewBag(max int) *Bag {
	if max <= 0 || max > math.MaxUint16 {
		max = math.MaxUint16
	}
	return &Bag{items: make([]Diagnostic, 0, min(max, 64)), max: uint16(max)}
}

// Add reports false once the limit is reached.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// AddAll adds until the limit is reached and returns how many were dropped.
func (b *Bag) AddAll(items []Diagnostic) (dropped int) {
	for _, d := range items {
		if !b.Add(d) {
			dropped++
		}
	}
	return dropped
}

func (b *Bag) Len() int { return len(b.items) }

// Items returns the backing slice; callers must not modify it.
func (b *Bag) Items() []Diagnostic { return b.items }

// Count returns how many diagnostics have exactly severity s.
func (b *Bag) Count(s Severity) int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity == s {
			n++
		}
	}
	return n
}

func (b *Bag) HasErrors() bool { return b.Count(SevError) > 0 }

// Merge appends other, raising the limit so that nothing is lost up to the
// largest supported size.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	total := min(len(b.items)+len(other.items), math.MaxUint16)
	if total > int(b.max) {
		b.max = uint16(total)
	}
	room := int(b.max) - len(b.items)
	b.items = append(b.items, other.items[:min(room, len(other.items))]...)
}

// Sort orders by location, then errors before warnings, then by code.
// Equal keys keep their emission order.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Location.File, y.Location.File),
			cmp.Compare(x.Location.Line, y.Location.Line),
			cmp.Compare(x.Location.Col, y.Location.Col),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

// Dedup drops repeats of the same code, severity, location and message,
// keeping the first occurrence.
func (b *Bag) Dedup() {
	seen := make(map[dedupKey]struct{}, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		k := keyOf(d)
		if _, dup := seen[k]; dup {
			return true
		}
		seen[k] = struct{}{}
		return false
	})
}
