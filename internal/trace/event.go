package trace

import "time"

// Kind tells span boundaries from instant events.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

var kindNames = [...]string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent higher-level/coarser events.
type Scope uint8

const (
	// ScopeDriver represents CLI and module-run operations.
	ScopeDriver Scope = iota + 1
	// ScopePass represents passes (load, morph, compose, commit, verify).
	ScopePass
	// ScopeType represents work on a single role or target type.
	ScopeType
	// ScopeMember represents per-member decisions.
	ScopeMember
)

var scopeNames = [...]string{ScopeDriver: "driver", ScopePass: "pass", ScopeType: "type", ScopeMember: "member"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record. Seq is assigned by the tracer that stores it.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	Name     string // "morph", "target:Acme.Greeter", "schedule"
	Detail   string
	Extra    map[string]string
}
