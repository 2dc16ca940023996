package diag

import (
	"rolecomp/internal/source"
)

// Result is a composable outcome of a check or pass. Leaf checks add
// diagnostics; parents adopt children. A parent succeeds only when it and every
// descendant succeed, and its diagnostics are the concatenation of its own and
// its descendants' in the order they were added.
type Result struct {
	entries []resultEntry
	failed  bool
}

type resultEntry struct {
	diag  *Diagnostic
	child *Result
}

// NewResult returns an empty successful result.
func NewResult() *Result {
	return &Result{}
}

// Add appends a diagnostic. Error severity marks the result as failed.
func (r *Result) Add(d Diagnostic) *Result {
	if d.Severity >= SevError {
		r.failed = true
	}
	r.entries = append(r.entries, resultEntry{diag: &d})
	return r
}

// AddChild adopts a sub-result. Nil children are ignored.
func (r *Result) AddChild(child *Result) *Result {
	if child == nil || child == r {
		return r
	}
	r.entries = append(r.entries, resultEntry{child: child})
	return r
}

// Fail marks the result as failed without adding a diagnostic.
func (r *Result) Fail() *Result {
	r.failed = true
	return r
}

// Report implements Reporter.
func (r *Result) Report(code Code, sev Severity, loc source.Location, msg string, notes []Note) {
	r.Add(Diagnostic{Severity: sev, Code: code, Message: msg, Location: loc, Notes: notes})
}

// Success is the logical AND over the result and all its descendants.
func (r *Result) Success() bool {
	if r == nil {
		return true
	}
	if r.failed {
		return false
	}
	for _, e := range r.entries {
		if e.child != nil && !e.child.Success() {
			return false
		}
	}
	return true
}

// Diagnostics flattens the tree depth-first in insertion order.
func (r *Result) Diagnostics() []Diagnostic {
	if r == nil {
		return nil
	}
	var out []Diagnostic
	r.collect(&out)
	return out
}

func (r *Result) collect(out *[]Diagnostic) {
	for _, e := range r.entries {
		if e.diag != nil {
			*out = append(*out, *e.diag)
			continue
		}
		e.child.collect(out)
	}
}

// Len reports the number of diagnostics in the whole tree.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, e := range r.entries {
		if e.diag != nil {
			n++
		} else {
			n += e.child.Len()
		}
	}
	return n
}

// Has reports whether any diagnostic in the tree carries the code.
func (r *Result) Has(code Code) bool {
	for _, d := range r.Diagnostics() {
		if d.Code == code {
			return true
		}
	}
	return false
}

// Count returns how many diagnostics in the tree carry the code.
func (r *Result) Count(code Code) int {
	n := 0
	for _, d := range r.Diagnostics() {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Merge folds several results into a fresh parent.
func Merge(results ...*Result) *Result {
	parent := NewResult()
	for _, r := range results {
		parent.AddChild(r)
	}
	return parent
}
