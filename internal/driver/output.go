package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"rolecomp/internal/loader"
	"rolecomp/internal/project"
)

// ErrNotCommitted is returned when output is requested for a run whose
// mutations were not applied.
var ErrNotCommitted = errors.New("module was not committed")

// WriteOutput stores the committed module at path. The extension picks the
// format: .mp writes a snapshot, .toml and .yaml a description. The digest is
// only set for snapshots.
func WriteOutput(res *ModuleResult, path string) (project.Digest, error) {
	if res == nil || res.Module == nil || !res.Committed {
		return project.Digest{}, ErrNotCommitted
	}
	format, err := loader.FormatOf(path)
	if err != nil {
		return project.Digest{}, err
	}
	if format == loader.FormatSnapshot {
		return loader.WriteSnapshot(path, res.Module, res.RunID.String())
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return project.Digest{}, err
	}
	f, err := os.Create(path)
	if err != nil {
		return project.Digest{}, err
	}
	if err := loader.Encode(f, format, loader.Describe(res.Module)); err != nil {
		_ = f.Close()
		return project.Digest{}, fmt.Errorf("write %s: %w", path, err)
	}
	return project.Digest{}, f.Close()
}

// OutputPath names the output of res inside dir, keeping ext.
func OutputPath(dir string, res *ModuleResult, ext string) string {
	return filepath.Join(dir, res.Module.Name+ext)
}
