package diag

import (
	"rolecomp/internal/source"
)

type Note struct {
	Location source.Location
	Msg      string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Location source.Location
	Notes    []Note
}

func (d Diagnostic) String() string {
	if d.Location.IsValid() {
		return d.Location.String() + ": " + d.Severity.String() + " " + d.Code.ID() + ": " + d.Message
	}
	return d.Severity.String() + " " + d.Code.ID() + ": " + d.Message
}
