// Package verify runs an external bytecode verifier over a written module and
// maps its outcome to diagnostics.
package verify

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"rolecomp/internal/diag"
	"rolecomp/internal/source"
	"rolecomp/internal/trace"
)

// DefaultTimeout bounds a verifier run when none is configured.
const DefaultTimeout = 30 * time.Second

// waitDelay bounds how long Run waits for the verifier's output pipes after
// the process is killed. Children that inherited them may outlive it.
const waitDelay = time.Second

// maxNotes caps how many output lines are attached to a failure.
const maxNotes = 20

// ErrVerifierMissing is returned when the configured command cannot be found.
var ErrVerifierMissing = errors.New("verifier not found")

// Verifier describes the external command. The module path is appended to
// Args.
type Verifier struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// Lookup resolves the command on PATH.
func (v Verifier) Lookup() (string, error) {
	if strings.TrimSpace(v.Command) == "" {
		return "", fmt.Errorf("%w: no command configured", ErrVerifierMissing)
	}
	path, err := exec.LookPath(v.Command)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrVerifierMissing, v.Command, err)
	}
	return path, nil
}

// Run verifies the module stored at modulePath. Verifier outcomes, including
// a missing verifier and timeouts, are diagnostics; the error is reserved for
// cancellation of ctx.
func (v Verifier) Run(ctx context.Context, modulePath string) (*diag.Result, error) {
	res := diag.NewResult()
	loc := source.Location{File: modulePath}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "verify", trace.CurrentSpan(ctx)).WithExtra("module", modulePath)
	defer func() { span.WithExtra("success", fmt.Sprint(res.Success())).End(v.Command) }()

	bin, err := v.Lookup()
	if err != nil {
		res.Add(diag.Errorf(diag.PEVerifyDoesntExist, loc, "%v", err))
		return res, nil
	}

	timeout := v.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string(nil), v.Args...), modulePath)
	cmd := exec.CommandContext(runCtx, bin, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = waitDelay
	err = cmd.Run()

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		res.Add(diag.Errorf(diag.PEVerifyTimeout, loc, "%s did not finish within %s", v.Command, timeout))
	case ctx.Err() != nil:
		return res, ctx.Err()
	case err != nil:
		d := diag.Errorf(diag.PEVerifyError, loc, "%s rejected %s: %v", v.Command, modulePath, err)
		for _, line := range outputLines(out.Bytes(), maxNotes) {
			d = d.WithNote(loc, line)
		}
		res.Add(d)
	default:
		res.Add(diag.Infof(diag.VerifyInfo, loc, "%s accepted %s", v.Command, modulePath))
	}
	return res, nil
}

func outputLines(data []byte, limit int) []string {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if len(out) == limit {
			out = append(out, "...")
			break
		}
		out = append(out, line)
	}
	return out
}
