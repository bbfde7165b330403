// Package telemetry traces long-running operations with OpenTelemetry and
// reports finished spans through the logger.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.trai.ch/ivpm/internal/core/ports"
)

// InstrumentationName names the tracer of this tool.
const InstrumentationName = "go.trai.ch/ivpm"

// OTelTracer implements ports.Tracer.
type OTelTracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
}

// NewOTelTracer creates a tracer whose finished spans are logged at debug
// level through logger.
func NewOTelTracer(logger ports.Logger) *OTelTracer {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSpanProcessor(NewBridge(logger)),
	)
	return &OTelTracer{tracer: tp.Tracer(InstrumentationName), provider: tp}
}

// NewNoopTracer creates a tracer that records nothing.
func NewNoopTracer() *OTelTracer {
	return &OTelTracer{tracer: noop.NewTracerProvider().Tracer(InstrumentationName)}
}

// Start implements ports.Tracer.
func (t *OTelTracer) Start(ctx context.Context, name string) (context.Context, ports.Span) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, &OTelSpan{span: span}
}

// Shutdown implements ports.Tracer.
func (t *OTelTracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// OTelSpan implements ports.Span.
type OTelSpan struct {
	span trace.Span
}

// SetAttribute implements ports.Span.
func (s *OTelSpan) SetAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

// RecordError implements ports.Span.
func (s *OTelSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// End implements ports.Span.
func (s *OTelSpan) End() {
	s.span.End()
}
