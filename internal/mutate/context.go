// Package mutate holds the per-run mutation context. Passes decide against a
// stable graph and schedule their edits here; Commit applies them in one go
// after every pass of the run has finished deciding.
package mutate

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
	"github.com/google/uuid"

	"rolecomp/internal/meta"
	"rolecomp/internal/trace"
)

// ErrAlreadyCommitted is returned by a second Commit on the same context.
var ErrAlreadyCommitted = errors.New("mutation context already committed")

// Context is shared by every pass of one run over one module. It is not safe
// for concurrent use; parallel runs get their own contexts.
type Context struct {
	Module        *meta.Module
	RunID         uuid.UUID
	Tracer        trace.Tracer
	SelfTypeParam string

	actions   []Action
	keys      map[string]struct{}
	removals  map[meta.MemberRef]struct{}
	broken    map[meta.TypeID]struct{}
	committed bool
}

// Option configures a Context.
type Option func(*Context)

// WithTracer routes context events to t.
func WithTracer(t trace.Tracer) Option {
	return func(c *Context) {
		if t != nil {
			c.Tracer = t
		}
	}
}

// WithSelfTypeParam overrides the conventional self-type parameter name.
func WithSelfTypeParam(name string) Option {
	return func(c *Context) {
		if name != "" {
			c.SelfTypeParam = name
		}
	}
}

// WithRunID pins the run identifier, mostly for reproducible output.
func WithRunID(id uuid.UUID) Option {
	return func(c *Context) { c.RunID = id }
}

// NewContext starts a run over mod.
func NewContext(mod *meta.Module, opts ...Option) *Context {
	c := &Context{
		Module:        mod,
		RunID:         uuid.New(),
		Tracer:        trace.Nop,
		SelfTypeParam: meta.DefaultSelfTypeParam,
		keys:          make(map[string]struct{}),
		removals:      make(map[meta.MemberRef]struct{}),
		broken:        make(map[meta.TypeID]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Schedule queues an action. It reports false when an identical action is
// already queued or the context has been committed.
func (c *Context) Schedule(a Action) bool {
	if c.committed || a.Kind == ActInvalid {
		return false
	}
	k := a.key()
	if _, dup := c.keys[k]; dup {
		return false
	}
	seq, err := safecast.Conv[uint32](len(c.actions))
	if err != nil {
		panic(fmt.Errorf("mutation queue overflow: %w", err))
	}
	a.Seq = seq
	c.keys[k] = struct{}{}
	c.actions = append(c.actions, a)
	if a.Kind == ActRemove {
		c.removals[a.Member] = struct{}{}
	}
	trace.Point(c.Tracer, trace.ScopeMember, "schedule", a.String(), 0, nil)
	return true
}

// Pending returns a copy of the queued actions in scheduling order.
func (c *Context) Pending() []Action {
	out := make([]Action, len(c.actions))
	copy(out, c.actions)
	return out
}

// Len reports the number of queued actions.
func (c *Context) Len() int { return len(c.actions) }

// IsScheduledForRemoval reports whether a removal of ref is queued.
func (c *Context) IsScheduledForRemoval(ref meta.MemberRef) bool {
	_, ok := c.removals[ref]
	return ok
}

// Committed reports whether Commit has run.
func (c *Context) Committed() bool { return c.committed }

// Commit applies every queued action exactly once, in order, and returns how
// many were applied.
func (c *Context) Commit() (int, error) {
	if c.committed {
		return 0, ErrAlreadyCommitted
	}
	span := trace.Begin(c.Tracer, trace.ScopePass, "commit", 0).
		WithExtra("run", c.RunID.String())
	for _, a := range c.actions {
		a.apply(c.Module)
	}
	c.committed = true
	n := len(c.actions)
	span.WithExtra("actions", fmt.Sprint(n)).End("")
	return n, nil
}

// MarkBroken records a type whose morphing hit a fatal diagnostic.
func (c *Context) MarkBroken(id meta.TypeID) {
	c.broken[id] = struct{}{}
}

// IsBroken reports whether the type was marked broken in this run.
func (c *Context) IsBroken(id meta.TypeID) bool {
	_, ok := c.broken[id]
	return ok
}
