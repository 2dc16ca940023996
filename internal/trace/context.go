package trace

import "context"

// ctxKey is the key type for storing Tracer in context.
type ctxKey struct{}

// FromContext extracts the Tracer from context.
// If not found, returns Nop tracer.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(ctxKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches a Tracer to context.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

type spanCtxKey struct{}

// CurrentSpan returns the ID of the span stored in ctx, or 0.
func CurrentSpan(ctx context.Context) uint64 {
	if ctx == nil {
		return 0
	}
	if id, ok := ctx.Value(spanCtxKey{}).(uint64); ok {
		return id
	}
	return 0
}

// WithSpan records span as the parent for spans begun under ctx.
func WithSpan(ctx context.Context, span *Span) context.Context {
	if span == nil || span.ID() == 0 {
		return ctx
	}
	return context.WithValue(ctx, spanCtxKey{}, span.ID())
}
