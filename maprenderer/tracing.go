package maprenderer

import (
	"context"

	"github.com/jamesrr39/go-tracing"
)

// StartSpan starts a tracing span if the context carries a trace, and returns the func to end it.
// Renders outside of a traced HTTP request are not traced.
func StartSpan(ctx context.Context, name string) (end func()) {
	if ctx.Value(tracing.TracerCtxKey) == nil || ctx.Value(tracing.TraceCtxKey) == nil {
		return func() {}
	}

	span := tracing.StartSpan(ctx, name)
	return func() {
		span.End(ctx)
	}
}
