package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/ivpm/internal/core/ports"
)

// Bridge implements sdktrace.SpanProcessor by logging every finished span.
type Bridge struct {
	logger ports.Logger
}

// NewBridge returns a new Bridge.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// OnStart does nothing; spans are reported once they end.
func (b *Bridge) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd logs the span name, duration, attributes and status.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil || !s.SpanContext().IsValid() {
		return
	}
	b.logger.Debug(Format(s))
}

// Format renders a finished span as a single log line.
func Format(s sdktrace.ReadOnlySpan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "span %s %s", s.Name(), s.EndTime().Sub(s.StartTime()).Round(time.Microsecond))
	for _, kv := range s.Attributes() {
		fmt.Fprintf(&sb, " %s=%s", kv.Key, kv.Value.Emit())
	}
	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = "failed"
		}
		fmt.Fprintf(&sb, " error=%q", desc)
	}
	return sb.String()
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(context.Context) error {
	return nil
}
