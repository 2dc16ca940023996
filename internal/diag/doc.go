// Package diag defines the diagnostic model shared by all passes of the
// role composition engine.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with a stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Location – optional source hint recovered from debug information.
//   - Notes – optional secondary locations/messages for additional context.
//
// # Results
//
// Checks do not abort the run. Each check contributes to a Result, and results
// nest: the orchestrator adopts the results of validation, self-type checking
// and conflict detection as children. Success is a fold over the tree and the
// flattened diagnostic list keeps the order in which checks ran.
//
// # Emitting diagnostics
//
// Passes may use a Reporter to decouple emission from storage. *Result is a
// Reporter and DedupReporter filters repeats in front of any other Reporter.
//
// Package diag does not perform any formatting or IO. Rendering lives in
// internal/diagfmt.
package diag
