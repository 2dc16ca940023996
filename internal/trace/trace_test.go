package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelShouldEmit(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeType, false},
		{LevelDetail, ScopeType, true},
		{LevelDetail, ScopeMember, false},
		{LevelDebug, ScopeMember, true},
	}
	for _, c := range cases {
		if got := c.level.ShouldEmit(c.scope); got != c.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", c.level, c.scope, got, c.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "debug"} {
		l, err := ParseLevel(s)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
		if l.String() != s {
			t.Fatalf("round trip %q -> %q", s, l.String())
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)

	span := Begin(tr, ScopePass, "morph", 0)
	Point(tr, ScopeType, "role", "Acme.Greeter", span.ID(), map[string]string{"b": "2", "a": "1"})
	Point(tr, ScopeMember, "dropped", "below level", span.ID(), nil)
	span.WithExtra("roles", "1").End("ok")

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "→ pass morph") {
		t.Fatalf("unexpected begin line %q", lines[0])
	}
	if !strings.Contains(lines[1], "type role (Acme.Greeter) {a=1, b=2}") {
		t.Fatalf("unexpected point line %q", lines[1])
	}
	if !strings.Contains(lines[2], "← pass morph (ok) {roles=1}") {
		t.Fatalf("unexpected end line %q", lines[2])
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	Begin(tr, ScopeDriver, "compose", 0).End("")

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		if m["scope"] != "driver" || m["name"] != "compose" {
			t.Fatalf("unexpected event %v", m)
		}
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(r, ScopeMember, name, "", 0, nil)
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatText); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 2 {
		t.Fatalf("unexpected dump:\n%s", buf.String())
	}
}

func TestRingTailAndLookup(t *testing.T) {
	r := NewRingTracer(4, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		Point(r, ScopeMember, name, "", 0, nil)
	}
	tail := r.Tail(2)
	if len(tail) != 2 || tail[0].Name != "e" || tail[1].Name != "f" {
		t.Fatalf("unexpected tail %+v", tail)
	}
	if n := len(r.Tail(10)); n != 4 {
		t.Fatalf("tail beyond capacity returned %d events", n)
	}
	if RingOf(NewMultiTracer(LevelDebug, Nop, r)) != r {
		t.Fatalf("ring not found behind multi tracer")
	}
	if RingOf(Nop) != nil {
		t.Fatalf("nop tracer has no ring")
	}
}

func TestErrorLevelRingKeepsEverything(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelError, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Point(tr, ScopeMember, "schedule", "remove Acme.R::Run", 0, nil)
	if buf.Len() != 0 {
		t.Fatalf("error level must not stream events:\n%s", buf.String())
	}
	ring := RingOf(tr)
	if ring == nil || len(ring.Snapshot()) != 1 {
		t.Fatalf("ring should keep the event for crash dumps")
	}
}

func TestParseModeAndFormatResolution(t *testing.T) {
	for _, s := range []string{"stream", "ring", "both"} {
		m, err := ParseMode(s)
		if err != nil || m.String() != s {
			t.Fatalf("ParseMode(%q) = %v, %v", s, m, err)
		}
	}
	if _, err := ParseMode("tape"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	if resolveFormat(FormatAuto, "run.jsonl") != FormatNDJSON {
		t.Fatalf("jsonl output should pick ndjson")
	}
	if resolveFormat(FormatAuto, "-") != FormatText {
		t.Fatalf("stderr output should pick text")
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("expected Nop without tracer")
	}
	r := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	if FromContext(ctx) != Tracer(r) {
		t.Fatalf("tracer not propagated")
	}
	span := Begin(r, ScopePass, "compose", 0)
	ctx = WithSpan(ctx, span)
	if CurrentSpan(ctx) != span.ID() {
		t.Fatalf("span not propagated")
	}
}

func TestNewOffReturnsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.Enabled() {
		t.Fatalf("off tracer must be disabled")
	}
	// disabled spans are safe to end
	Begin(tr, ScopeDriver, "x", 0).End("")
}
