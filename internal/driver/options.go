package driver

import (
	"io"
)

// Mode selects how far a run goes.
type Mode uint8

const (
	// ModeCompose morphs roles, composes every target and commits on success.
	ModeCompose Mode = iota
	// ModeMorph only turns roles into contracts and commits on success.
	ModeMorph
	// ModeCheck decides like ModeCompose but never commits.
	ModeCheck
)

func (m Mode) String() string {
	switch m {
	case ModeCompose:
		return "compose"
	case ModeMorph:
		return "morph"
	case ModeCheck:
		return "check"
	}
	return "unknown"
}

// Options configures module runs.
type Options struct {
	Mode           Mode
	SelfTypeParam  string
	MaxDiagnostics int
	Jobs           int
	EnableTimings  bool
	PhaseObserver  PhaseObserver
	// CrashDump receives the in-memory trace ring when a run hits an
	// internal error. Nil disables the dump.
	CrashDump io.Writer
}
