package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a pipeline phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a timing phase boundary of one module run.
type PhaseEvent struct {
	Module  string
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events emitted during a run. Parallel runs call
// it from several goroutines.
type PhaseObserver func(PhaseEvent)
