package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[package]
name = "acme"
modules = ["roles.toml", "sub/people.yaml"]

[compose]
self_type_param = "TSelf"
max_diagnostics = 20

[verify]
command = "peverify"
args = ["/nologo"]
timeout = "5s"
`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	m, ok, err := LoadManifest(nested)
	if err != nil || !ok {
		t.Fatalf("LoadManifest: ok=%v err=%v", ok, err)
	}
	if m.Root != root {
		t.Fatalf("root = %q, want %q", m.Root, root)
	}
	cfg := m.Config
	if cfg.Package.Name != "acme" || cfg.Compose.SelfTypeParam != "TSelf" || cfg.Compose.MaxDiagnostics != 20 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Verify.Timeout.Duration != 5*time.Second || cfg.Verify.Command != "peverify" {
		t.Fatalf("unexpected verify config %+v", cfg.Verify)
	}
	paths, err := m.ModulePaths()
	if err != nil {
		t.Fatalf("ModulePaths: %v", err)
	}
	if len(paths) != 2 || paths[1] != filepath.Join(root, "sub", "people.yaml") {
		t.Fatalf("unexpected module paths %v", paths)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[compose]\nmax_diagnostics = 1\n")
	if _, err := LoadConfig(path); !errors.Is(err, ErrPackageSectionMissing) {
		t.Fatalf("expected missing package, got %v", err)
	}
	path = writeManifest(t, dir, "[package]\nname = \"\"\n")
	if _, err := LoadConfig(path); !errors.Is(err, ErrPackageNameMissing) {
		t.Fatalf("expected missing name, got %v", err)
	}
	path = writeManifest(t, dir, "[package]\nname = \"x\"\ncolour = true\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestModulePathsRejectEscape(t *testing.T) {
	m := &Manifest{Path: "rolecomp.toml", Root: t.TempDir(), Config: Config{Package: PackageConfig{Modules: []string{"../outside.toml"}}}}
	if _, err := m.ModulePaths(); err == nil {
		t.Fatalf("expected escape error")
	}
}

func TestNoManifest(t *testing.T) {
	if _, ok, err := LoadManifest(t.TempDir()); ok || err != nil {
		// a manifest above the temp dir would be surprising but not an error
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}
