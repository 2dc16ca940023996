package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ManifestName is the project manifest file name.
const ManifestName = "rolecomp.toml"

var (
	// ErrPackageSectionMissing indicates that [package] is missing in a manifest.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameMissing indicates that [package].name is missing in a manifest.
	ErrPackageNameMissing = errors.New("missing [package].name")
)

// Manifest is a parsed rolecomp.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the sections of rolecomp.toml.
type Config struct {
	Package PackageConfig `toml:"package"`
	Compose ComposeConfig `toml:"compose"`
	Verify  VerifyConfig  `toml:"verify"`
}

// PackageConfig names the project and the module descriptions it composes.
type PackageConfig struct {
	Name    string   `toml:"name"`
	Modules []string `toml:"modules"`
}

// ComposeConfig tunes the composition engine.
type ComposeConfig struct {
	SelfTypeParam  string `toml:"self_type_param"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
}

// VerifyConfig describes the external verifier.
type VerifyConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	Timeout Duration `toml:"timeout"`
}

// Duration decodes TOML strings such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// FindManifest walks up from startDir to locate rolecomp.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest finds and parses the manifest above startDir. ok is false when
// there is none.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig parses and validates one manifest file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Config{}, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, fmt.Errorf("%s: %w", path, ErrPackageNameMissing)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if meta.IsDefined("compose", "max_diagnostics") && cfg.Compose.MaxDiagnostics < 0 {
		return Config{}, fmt.Errorf("%s: [compose].max_diagnostics must not be negative", path)
	}
	if meta.IsDefined("verify") && strings.TrimSpace(cfg.Verify.Command) == "" {
		return Config{}, fmt.Errorf("%s: missing [verify].command", path)
	}
	return cfg, nil
}

// ModulePaths resolves the declared module descriptions against the project
// root. Entries may not escape the root.
func (m *Manifest) ModulePaths() ([]string, error) {
	out := make([]string, 0, len(m.Config.Package.Modules))
	for _, rel := range m.Config.Package.Modules {
		rel = strings.TrimSpace(rel)
		if rel == "" {
			continue
		}
		if filepath.IsAbs(rel) {
			return nil, fmt.Errorf("%s: module %q must be relative", m.Path, rel)
		}
		full := filepath.Join(m.Root, filepath.Clean(filepath.FromSlash(rel)))
		if !pathWithin(m.Root, full) {
			return nil, fmt.Errorf("%s: module %q escapes the project root", m.Path, rel)
		}
		out = append(out, full)
	}
	return out, nil
}

func pathWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
