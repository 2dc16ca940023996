package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"rolecomp/internal/meta"
	"rolecomp/internal/project"
)

// Current schema version - increment when Snapshot format changes
const snapshotSchemaVersion uint16 = 1

var (
	// ErrSnapshotSchema reports a snapshot written by an incompatible version.
	ErrSnapshotSchema = errors.New("snapshot schema mismatch")
	// ErrSnapshotDigest reports a snapshot whose content does not match its digest.
	ErrSnapshotDigest = errors.New("snapshot digest mismatch")
)

// Snapshot is the binary form of a module graph.
type Snapshot struct {
	Schema uint16         `msgpack:"schema"`
	RunID  string         `msgpack:"run_id,omitempty"`
	Digest project.Digest `msgpack:"digest"`
	Module ModuleDesc     `msgpack:"module"`
}

// NewSnapshot captures the current shape of mod.
func NewSnapshot(mod *meta.Module, runID string) (*Snapshot, error) {
	snap := &Snapshot{Schema: snapshotSchemaVersion, RunID: runID, Module: *Describe(mod)}
	digest, err := digestOf(&snap.Module)
	if err != nil {
		return nil, err
	}
	snap.Digest = digest
	return snap, nil
}

func digestOf(desc *ModuleDesc) (project.Digest, error) {
	data, err := msgpack.Marshal(desc)
	if err != nil {
		return project.Digest{}, fmt.Errorf("encode module %s: %w", desc.Name, err)
	}
	return project.Sum(data), nil
}

// WriteSnapshot writes mod to path atomically and returns the content digest.
func WriteSnapshot(path string, mod *meta.Module, runID string) (project.Digest, error) {
	snap, err := NewSnapshot(mod, runID)
	if err != nil {
		return project.Digest{}, err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return project.Digest{}, err
	}
	f, err := os.CreateTemp(dir, "tmp-*.mp")
	if err != nil {
		return project.Digest{}, err
	}
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(f.Name())
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(snap); err != nil {
		_ = f.Close()
		return project.Digest{}, fmt.Errorf("write snapshot %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return project.Digest{}, err
	}
	// Атомарная замена
	if err := os.Rename(f.Name(), path); err != nil {
		return project.Digest{}, err
	}
	renamed = true
	return snap.Digest, nil
}

// ReadSnapshot decodes and validates a snapshot file.
func ReadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var snap Snapshot
	if err := msgpack.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	if snap.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("%s: %w: got %d, want %d", path, ErrSnapshotSchema, snap.Schema, snapshotSchemaVersion)
	}
	digest, err := digestOf(&snap.Module)
	if err != nil {
		return nil, err
	}
	if digest != snap.Digest {
		return nil, fmt.Errorf("%s: %w", path, ErrSnapshotDigest)
	}
	return &snap, nil
}
