package diag

import "rolecomp/internal/source"

// Reporter: минимальный контракт получения диагностик от проходов.
// Реализации: *Result и DedupReporter.
type Reporter interface {
	Report(code Code, sev Severity, loc source.Location, msg string, notes []Note)
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, sev Severity, code Code, loc source.Location, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		diag: Diagnostic{
			Severity: sev,
			Code:     code,
			Message:  msg,
			Location: loc,
		},
	}
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, loc source.Location, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, loc, msg)
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, loc source.Location, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, loc, msg)
}

// ReportInfo is a shortcut for SevInfo diagnostics.
func ReportInfo(r Reporter, code Code, loc source.Location, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevInfo, code, loc, msg)
}

// WithNote appends a note to diagnostic.
func (b *ReportBuilder) WithNote(loc source.Location, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag.Notes = append(b.diag.Notes, Note{Location: loc, Msg: msg})
	return b
}

// Emit sends diagnostic to underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag.Code, b.diag.Severity, b.diag.Location, b.diag.Message, b.diag.Notes)
	}
	b.emitted = true
}

// Diagnostic returns accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.diag
}
