package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"rolecomp/internal/diag"
	"rolecomp/internal/source"
)

func sampleBag() *diag.Bag {
	bag := diag.NewBag(10)
	bag.Add(diag.Errorf(diag.Conflict, source.Location{File: "/home/user/project/src/person.cs", Line: 12, Col: 5},
		"roles contribute conflicting members named Greet").
		WithNote(source.Location{File: "/home/user/project/src/greeter.cs", Line: 3}, "Acme.Greeter::Greet"))
	bag.Add(diag.Infof(diag.ComposeInfo, source.NoLocation, "composition of Acme.Robot skipped"))
	return bag
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/src/person.cs:12:5"},
		{"Relative path", PathModeRelative, "src/person.cs:12:5"},
		{"Basename only", PathModeBasename, "person.cs:12:5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, sampleBag(), PrettyOpts{PathMode: tt.mode, BaseDir: "/home/user/project"})
			out := buf.String()
			if !strings.Contains(out, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, out)
			}
			if !strings.Contains(out, "ERROR CMP2007: roles contribute") {
				t.Errorf("Expected severity and code in output, got:\n%s", out)
			}
		})
	}
}

func TestPrettyNotesAndSummary(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleBag(), PrettyOpts{PathMode: PathModeBasename, ShowNotes: true, Summary: true})
	out := buf.String()
	if !strings.Contains(out, "  note: greeter.cs:3: Acme.Greeter::Greet") {
		t.Fatalf("note missing:\n%s", out)
	}
	if !strings.Contains(out, "INFO CMP2000: composition of Acme.Robot skipped") {
		t.Fatalf("location-less diagnostic malformed:\n%s", out)
	}
	if !strings.HasSuffix(out, "1 error, 0 warnings\n") {
		t.Fatalf("summary missing:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("colors leaked with Color=false")
	}
}

func TestPrettyColorAndWidth(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleBag(), PrettyOpts{Color: true, PathMode: PathModeBasename, Width: 50})
	out := buf.String()
	if !strings.Contains(out, "\x1b[") {
		t.Fatalf("expected ANSI colors:\n%q", out)
	}
	if !strings.Contains(out, "...") {
		t.Fatalf("expected truncated message:\n%s", out)
	}
}

func TestShortAlignsLocations(t *testing.T) {
	var buf bytes.Buffer
	Short(&buf, sampleBag(), PrettyOpts{PathMode: PathModeBasename})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %q", lines)
	}
	if strings.Index(lines[0], "ERROR") != strings.Index(lines[1], "INFO") {
		t.Fatalf("severity column not aligned:\n%s", buf.String())
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, "acme", sampleBag(), JSONOpts{PathMode: PathModeBasename, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Success || out.Count != 2 || out.Module != "acme" {
		t.Fatalf("unexpected header %+v", out)
	}
	first := out.Diagnostics[0]
	if first.Severity != diag.SevError || !bytes.Contains(buf.Bytes(), []byte(`"severity": "error"`)) {
		t.Fatalf("severity not written as lower-case text:\n%s", buf.String())
	}
	if first.Code != "CMP2007" || first.Location.File != "person.cs" || first.Location.Line != 12 || len(first.Notes) != 1 {
		t.Fatalf("unexpected diagnostic %+v", first)
	}
	if out.Diagnostics[1].Location != nil {
		t.Fatalf("missing location should be omitted")
	}
}
