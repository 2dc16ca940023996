package diagfmt

import (
	"encoding/json"
	"io"

	"rolecomp/internal/diag"
	"rolecomp/internal/source"
)

// LocationJSON представляет местоположение для JSON
type LocationJSON struct {
	File string `json:"file,omitempty"`
	Line uint32 `json:"line,omitempty"`
	Col  uint32 `json:"col,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string        `json:"message"`
	Location *LocationJSON `json:"location,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity diag.Severity `json:"severity"`
	Code     string        `json:"code"`
	Title    string        `json:"title"`
	Message  string        `json:"message"`
	Location *LocationJSON `json:"location,omitempty"`
	Notes    []NoteJSON    `json:"notes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Module      string           `json:"module,omitempty"`
	Success     bool             `json:"success"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(loc source.Location, opts JSONOpts) *LocationJSON {
	if !loc.IsValid() {
		return nil
	}
	out := &LocationJSON{Line: loc.Line, Col: loc.Col}
	bare := loc
	bare.Line, bare.Col = 0, 0
	out.File = formatLocation(bare, opts.PathMode, opts.BaseDir)
	return out
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(module string, bag *diag.Bag, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}

	diagnostics := make([]DiagnosticJSON, 0, maxItems)
	for i := range maxItems {
		d := items[i]
		dj := DiagnosticJSON{
			Severity: d.Severity,
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: makeLocation(d.Location, opts),
		}
		includeNotes := opts.IncludeNotes || d.Code == diag.ObsTimings
		if includeNotes && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				dj.Notes[j] = NoteJSON{Message: note.Msg, Location: makeLocation(note.Location, opts)}
			}
		}
		diagnostics = append(diagnostics, dj)
	}

	return DiagnosticsOutput{
		Module:      module,
		Success:     !bag.HasErrors(),
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
	}
}

// JSON форматирует диагностики одного модуля в JSON.
func JSON(w io.Writer, module string, bag *diag.Bag, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(module, bag, opts))
}
