// Package trace provides the tracing and logging subsystem of rolecomp.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	rolecomp compose --trace=- --trace-level=detail module.toml
//
// # Architecture
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer dumped when the engine hits an internal error
//   - MultiTracer: combines multiple tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only crash dumps
//   - LevelPhase: driver and pass boundaries
//   - LevelDetail: per-type events (role morphed, target composed)
//   - LevelDebug: everything including per-member decisions
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "morph", parentID)
//	defer span.End("")
package trace
