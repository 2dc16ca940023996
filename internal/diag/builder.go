package diag

import (
	"fmt"

	"rolecomp/internal/source"
)

func New(sev Severity, code Code, loc source.Location, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Location: loc,
		Message:  msg,
		Notes:    nil,
	}
}

func NewError(code Code, loc source.Location, msg string) Diagnostic {
	return New(SevError, code, loc, msg)
}

// Errorf builds an error diagnostic with a formatted message.
func Errorf(code Code, loc source.Location, format string, args ...any) Diagnostic {
	return New(SevError, code, loc, fmt.Sprintf(format, args...))
}

// Warningf builds a warning diagnostic with a formatted message.
func Warningf(code Code, loc source.Location, format string, args ...any) Diagnostic {
	return New(SevWarning, code, loc, fmt.Sprintf(format, args...))
}

// Infof builds an informational diagnostic with a formatted message.
func Infof(code Code, loc source.Location, format string, args ...any) Diagnostic {
	return New(SevInfo, code, loc, fmt.Sprintf(format, args...))
}

func (d Diagnostic) WithNote(loc source.Location, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Location: loc, Msg: msg})
	return d
}
