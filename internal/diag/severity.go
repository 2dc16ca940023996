package diag

import (
	"fmt"
	"strings"
)

// Severity orders diagnostics; only SevError fails a Result.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityNames = [...]string{"INFO", "WARNING", "ERROR"}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}

// MarshalText writes the lower-case name used in machine-readable output.
func (s Severity) MarshalText() ([]byte, error) {
	if int(s) >= len(severityNames) {
		return nil, fmt.Errorf("diag: invalid severity %d", uint8(s))
	}
	return []byte(strings.ToLower(severityNames[s])), nil
}

// UnmarshalText accepts names in any case.
func (s *Severity) UnmarshalText(text []byte) error {
	for i, name := range severityNames {
		if strings.EqualFold(name, string(text)) {
			*s = Severity(i)
			return nil
		}
	}
	return fmt.Errorf("diag: unknown severity %q", text)
}
