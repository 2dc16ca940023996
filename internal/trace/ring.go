package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the most recent events in memory. Older events are
// overwritten once the buffer is full.
type RingTracer struct {
	mu     sync.RWMutex
	buf    []Event
	next   int
	filled int
	level  Level
}

// NewRingTracer returns a ring holding up to capacity events.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = defaultRingSize
	}
	return &RingTracer{buf: make([]Event, capacity), level: level}
}

// RingOf returns the ring kept by t, looking through a MultiTracer.
func RingOf(t Tracer) *RingTracer {
	switch tr := t.(type) {
	case *RingTracer:
		return tr
	case *MultiTracer:
		return tr.Ring()
	}
	return nil
}

func (t *RingTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	stored := *ev
	stored.Seq = NextSeq()

	t.mu.Lock()
	t.buf[t.next] = stored
	t.next = (t.next + 1) % len(t.buf)
	if t.filled < len(t.buf) {
		t.filled++
	}
	t.mu.Unlock()
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	return t.Tail(0)
}

// Tail returns the last n stored events, oldest first. n <= 0 means all.
func (t *RingTracer) Tail(n int) []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n <= 0 || n > t.filled {
		n = t.filled
	}
	out := make([]Event, n)
	start := t.next - n
	if start < 0 {
		start += len(t.buf)
	}
	for i := range out {
		out[i] = t.buf[(start+i)%len(t.buf)]
	}
	return out
}

// Dump writes the stored events to w, oldest first.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
