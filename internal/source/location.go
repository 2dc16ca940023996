package source

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Location is a best-effort source hint attached to a compiled declaration.
// Compiled metadata only carries it when debug information was available, so
// every field may be zero.
type Location struct {
	File string
	Line uint32 // 1-based, 0 when unknown
	Col  uint32 // 1-based, 0 when unknown
}

// NoLocation marks the absence of a source hint.
var NoLocation = Location{}

// IsValid reports whether the location names at least a file.
func (l Location) IsValid() bool {
	return l.File != ""
}

func (l Location) String() string {
	switch {
	case !l.IsValid():
		return "<unknown>"
	case l.Line == 0:
		return l.File
	case l.Col == 0:
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// Relative rewrites the file path relative to base when possible.
func (l Location) Relative(base string) Location {
	if !l.IsValid() || base == "" || !filepath.IsAbs(l.File) {
		return l
	}
	rel, err := filepath.Rel(base, l.File)
	if err != nil || strings.HasPrefix(rel, "..") {
		return l
	}
	l.File = filepath.ToSlash(rel)
	return l
}

// Or returns l when it is valid, otherwise fallback.
func (l Location) Or(fallback Location) Location {
	if l.IsValid() {
		return l
	}
	return fallback
}

// ParseLocation parses "file", "file:line" or "file:line:col".
func ParseLocation(s string) (Location, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoLocation, nil
	}
	parts := strings.Split(s, ":")
	// windows drive letters ("C:\...") keep their first colon
	if len(parts) > 1 && len(parts[0]) == 1 {
		parts = append([]string{parts[0] + ":" + parts[1]}, parts[2:]...)
	}
	loc := Location{File: parts[0]}
	if len(parts) > 3 {
		return NoLocation, fmt.Errorf("invalid location %q", s)
	}
	if len(parts) >= 2 {
		if _, err := fmt.Sscanf(parts[1], "%d", &loc.Line); err != nil {
			return NoLocation, fmt.Errorf("invalid line in location %q: %w", s, err)
		}
	}
	if len(parts) == 3 {
		if _, err := fmt.Sscanf(parts[2], "%d", &loc.Col); err != nil {
			return NoLocation, fmt.Errorf("invalid column in location %q: %w", s, err)
		}
	}
	return loc, nil
}
