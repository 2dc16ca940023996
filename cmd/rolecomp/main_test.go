package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rolecomp/internal/diag"
	"rolecomp/internal/diagfmt"
	"rolecomp/internal/driver"
	"rolecomp/internal/loader"
)

const peopleTOML = `
name = "people"

[[types]]
name = "Acme.Greeter"
kind = "role"

  [[types.methods]]
  name = "Greet"
  access = "public"
  returns = "System.String"
  body = ["ldstr hello", "ret"]

[[types]]
name = "Acme.Person"
does = ["Acme.Greeter"]
`

const brokenTOML = `
name = "broken"

[[types]]
name = "Acme.Plain"

[[types]]
name = "Acme.Person"
does = ["Acme.Plain"]
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestComposeWritesOutput(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "people.toml", peopleTOML)

	out, err := execute(t, "compose", "--color=off", "--format=json", "--out", "composed.yaml", "people.toml")
	if err != nil {
		t.Fatalf("compose: %v\n%s", err, out)
	}
	var payload diagfmt.DiagnosticsOutput
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("output is not json: %v\n%s", err, out)
	}
	if !payload.Success || payload.Module != "people" {
		t.Fatalf("unexpected payload %+v", payload)
	}

	mod, res, err := loader.LoadFile(filepath.Join(dir, "composed.yaml"))
	if err != nil || !res.Success() {
		t.Fatalf("reload composed module: %v %v", err, res.Diagnostics())
	}
	person, _ := mod.LookupType("Acme.Person")
	found := false
	for _, id := range mod.Type(person).Methods {
		if mod.Method(id).Name == "Greet" {
			found = true
		}
	}
	if !found {
		t.Fatalf("composed type lacks the role method")
	}
}

func TestCheckReportsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "broken.toml", brokenTOML)

	out, err := execute(t, "check", "--color=off", "--format=short", "broken.toml")
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("expected errDiagnostics, got %v", err)
	}
	if !strings.Contains(out, diag.NotARole.ID()) {
		t.Fatalf("expected %s in output:\n%s", diag.NotARole.ID(), out)
	}
}

func TestResolveSettingsFromManifest(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "rolecomp.toml", `
[package]
name = "acme"
modules = ["people.toml"]

[compose]
self_type_param = "TSelf"
max_diagnostics = 20

[verify]
command = "peverify"
timeout = "5s"
`)

	s, err := resolveSettings(checkCmd, nil, driver.ModeCheck)
	if err != nil {
		t.Fatalf("resolveSettings: %v", err)
	}
	if len(s.paths) != 1 || filepath.Base(s.paths[0]) != "people.toml" {
		t.Fatalf("module paths from manifest = %v", s.paths)
	}
	if s.driver.Mode != driver.ModeCheck || s.driver.SelfTypeParam != "TSelf" || s.driver.MaxDiagnostics != 20 {
		t.Fatalf("driver options = %+v", s.driver)
	}
	if s.verifier.Command != "peverify" || s.verifier.Timeout.Seconds() != 5 {
		t.Fatalf("verifier = %+v", s.verifier)
	}
}

func TestResolveSettingsWithoutManifest(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := resolveSettings(checkCmd, nil, driver.ModeCheck); err == nil || err.Error() != noManifestMessage {
		t.Fatalf("expected the no-manifest hint, got %v", err)
	}
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, "version", "--format", "json", "--full")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if payload.Tool != "rolecomp" || payload.Version == "" || payload.GitCommit != "unknown" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}
