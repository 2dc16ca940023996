package diagfmt

import (
	"path/filepath"
	"strings"

	"rolecomp/internal/source"
)

func formatLocation(loc source.Location, mode PathMode, base string) string {
	if !loc.IsValid() {
		return ""
	}
	switch mode {
	case PathModeAbsolute:
	case PathModeBasename:
		loc.File = filepath.Base(loc.File)
	case PathModeRelative:
		if abs, err := filepath.Abs(loc.File); err == nil && base != "" {
			if rel, err := filepath.Rel(base, abs); err == nil {
				loc.File = filepath.ToSlash(rel)
			}
		}
	default:
		if abs, err := filepath.Abs(loc.File); err == nil && base != "" {
			if rel, err := filepath.Rel(base, abs); err == nil && !strings.HasPrefix(rel, "..") {
				loc.File = filepath.ToSlash(rel)
			}
		}
	}
	return loc.String()
}
