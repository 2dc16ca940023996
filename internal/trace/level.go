package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota // no tracing
	LevelError               // ring only, dumped on internal errors
	LevelPhase               // driver runs and passes
	LevelDetail              // plus one event per role and target
	LevelDebug               // plus member decisions and scheduled actions
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// widest scope each level lets through; LevelError keeps nothing live
var levelScopes = [...]Scope{0, 0, ScopePass, ScopeType, ScopeMember}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("level(%d)", uint8(l))
}

// ParseLevel accepts the names printed by Level.String; empty means off.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelOff, nil
	}
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level %q (want %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope pass the level filter.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(levelScopes) {
		return true
	}
	return scope != 0 && scope <= levelScopes[l]
}
