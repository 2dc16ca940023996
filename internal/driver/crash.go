package driver

import (
	"fmt"
	"io"

	"rolecomp/internal/trace"
)

// dumpRing writes the events of the in-memory ring, if the tracer keeps one,
// so that internal errors come with context.
func dumpRing(t trace.Tracer, w io.Writer) {
	ring := trace.RingOf(t)
	if w == nil || ring == nil {
		return
	}
	fmt.Fprintln(w, "--- trace ring (most recent events) ---")
	if err := ring.Dump(w, trace.FormatText); err != nil {
		fmt.Fprintf(w, "trace: dump failed: %v\n", err)
	}
}
