package verify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"rolecomp/internal/diag"
)

func script(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not available")
	}
	path := filepath.Join(t.TempDir(), "verifier.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o700); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestVerifierAccepts(t *testing.T) {
	v := Verifier{Command: script(t, "exit 0\n")}
	res, err := v.Run(context.Background(), "acme.mp")
	if err != nil || !res.Success() || !res.Has(diag.VerifyInfo) {
		t.Fatalf("expected acceptance, got err=%v diags=%v", err, res.Diagnostics())
	}
}

func TestVerifierRejectsWithOutput(t *testing.T) {
	v := Verifier{Command: script(t, "echo \"[IL]: Error: bad stack\"\necho \"$1\"\nexit 3\n"), Args: []string{"/nologo"}}
	res, err := v.Run(context.Background(), "acme.mp")
	if err != nil || res.Success() {
		t.Fatalf("expected rejection, err=%v", err)
	}
	ds := res.Diagnostics()
	if len(ds) != 1 || ds[0].Code != diag.PEVerifyError {
		t.Fatalf("unexpected diagnostics %v", ds)
	}
	if len(ds[0].Notes) != 2 || ds[0].Notes[0].Msg != "[IL]: Error: bad stack" || ds[0].Notes[1].Msg != "/nologo" {
		t.Fatalf("verifier output not attached: %+v", ds[0].Notes)
	}
}

func TestVerifierTimeout(t *testing.T) {
	v := Verifier{Command: script(t, "exec sleep 5\n"), Timeout: 50 * time.Millisecond}
	res, err := v.Run(context.Background(), "acme.mp")
	if err != nil || !res.Has(diag.PEVerifyTimeout) {
		t.Fatalf("expected timeout diagnostic, err=%v diags=%v", err, res.Diagnostics())
	}
}

func TestVerifierTimeoutWithLingeringChild(t *testing.T) {
	v := Verifier{Command: script(t, "sleep 30 &\nwait\n"), Timeout: 50 * time.Millisecond}
	start := time.Now()
	res, err := v.Run(context.Background(), "acme.mp")
	if err != nil || !res.Has(diag.PEVerifyTimeout) {
		t.Fatalf("expected timeout diagnostic, err=%v diags=%v", err, res.Diagnostics())
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("run blocked on the child's output for %s", elapsed)
	}
}

func TestVerifierMissing(t *testing.T) {
	v := Verifier{Command: filepath.Join(t.TempDir(), "no-such-verifier")}
	if _, err := v.Lookup(); !errors.Is(err, ErrVerifierMissing) {
		t.Fatalf("expected ErrVerifierMissing, got %v", err)
	}
	res, err := v.Run(context.Background(), "acme.mp")
	if err != nil || !res.Has(diag.PEVerifyDoesntExist) {
		t.Fatalf("expected missing-verifier diagnostic, err=%v", err)
	}
}

func TestOutputLinesLimit(t *testing.T) {
	lines := outputLines([]byte("a\n\nb\nc\n"), 2)
	if len(lines) != 3 || lines[2] != "..." {
		t.Fatalf("unexpected lines %v", lines)
	}
}
