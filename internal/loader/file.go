package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"rolecomp/internal/diag"
	"rolecomp/internal/meta"
)

// ErrUnknownFormat is returned for files whose extension names no known
// description format.
var ErrUnknownFormat = errors.New("unknown module description format")

// Format identifies a module description encoding.
type Format uint8

const (
	FormatTOML Format = iota + 1
	FormatYAML
	FormatSnapshot
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatSnapshot:
		return "msgpack"
	}
	return "unknown"
}

// FormatOf picks the encoding from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".mp", ".msgpack":
		return FormatSnapshot, nil
	}
	return 0, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// LoadFile reads a description or snapshot and builds its graph. I/O and
// decode failures are errors; invalid content is reported in the result.
func LoadFile(path string) (*meta.Module, *diag.Result, error) {
	desc, err := ReadDesc(path)
	if err != nil {
		return nil, nil, err
	}
	mod, res := Build(desc, path)
	return mod, res, nil
}

// ReadDesc decodes the description stored at path.
func ReadDesc(path string) (*ModuleDesc, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if format == FormatSnapshot {
		snap, err := ReadSnapshot(path)
		if err != nil {
			return nil, err
		}
		return &snap.Module, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, format, path)
}

// Decode reads a textual description. name labels errors.
func Decode(r io.Reader, format Format, name string) (*ModuleDesc, error) {
	var desc ModuleDesc
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&desc)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to parse TOML: %w", name, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%s: unknown key %s", name, undecoded[0])
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&desc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: failed to parse YAML: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownFormat)
	}
	return &desc, nil
}

// Encode writes desc in a textual format.
func Encode(w io.Writer, format Format, desc *ModuleDesc) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(desc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(desc); err != nil {
			return err
		}
		return enc.Close()
	}
	return ErrUnknownFormat
}
