package trace

import "errors"

// MultiTracer forwards every event to each child tracer.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{tracers: tracers, level: level}
}

func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		tr.Emit(ev)
	}
}

// Flush flushes every child and joins their errors.
func (t *MultiTracer) Flush() error {
	return t.each(Tracer.Flush)
}

// Close closes every child, even after a failure.
func (t *MultiTracer) Close() error {
	return t.each(Tracer.Close)
}

func (t *MultiTracer) each(fn func(Tracer) error) error {
	errs := make([]error, 0, len(t.tracers))
	for _, tr := range t.tracers {
		errs = append(errs, fn(tr))
	}
	return errors.Join(errs...)
}

// Ring returns the first ring among the children, or nil.
func (t *MultiTracer) Ring() *RingTracer {
	for _, tr := range t.tracers {
		if r, ok := tr.(*RingTracer); ok {
			return r
		}
	}
	return nil
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }
