package ports

import "context"

// Tracer starts spans around long-running operations.
//
//go:generate mockgen -source=tracer.go -destination=mocks/mock_tracer.go -package=mocks
type Tracer interface {
	// Start opens a span named name as a child of any span in ctx.
	Start(ctx context.Context, name string) (context.Context, Span)

	// Shutdown flushes and stops the tracer.
	Shutdown(ctx context.Context) error
}

// Span is an in-flight traced operation.
type Span interface {
	// SetAttribute records a key/value pair on the span.
	SetAttribute(key, value string)

	// RecordError marks the span as failed.
	RecordError(err error)

	// End completes the span.
	End()
}
