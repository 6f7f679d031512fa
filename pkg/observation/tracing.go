package observation

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name.
const defaultTracerName = "github.com/vango-dev/observation"

var tracerName atomic.Value

// SetTracerName sets the name of the tracer obtained from the global
// OpenTelemetry tracer provider. Empty restores the default.
func SetTracerName(name string) {
	tracerName.Store(name)
}

func tracer() trace.Tracer {
	name, _ := tracerName.Load().(string)
	if name == "" {
		name = defaultTracerName
	}
	return otel.Tracer(name)
}

// TrackContext is Track wrapped in an OpenTelemetry span named
// "observation.track". computation receives the span's context. When the
// observation later fires, an "observation.fire" span linked to the scope
// span records the firing.
//
// The tracer comes from the global provider (otel.SetTracerProvider).
func TrackContext(ctx context.Context, computation func(context.Context), onChange func()) *Observation {
	ctx, span := tracer().Start(ctx, "observation.track",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			span.SetStatus(codes.Error, fmt.Sprint(rec))
			panic(rec)
		}
	}()

	o := track(func() { computation(ctx) }, onChange, span.SpanContext())

	span.SetAttributes(
		attribute.Int("observation.registrars", o.registrars),
		attribute.Int("observation.dependencies", o.dependencies),
		attribute.Bool("observation.active", o.Active()),
	)
	return o
}

// startFireSpan starts the fire span of an observation created by
// TrackContext and returns the function ending it.
func startFireSpan(o *Observation) func() {
	if !o.scope.IsValid() {
		return func() {}
	}
	_, span := tracer().Start(context.Background(), "observation.fire",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithLinks(trace.Link{SpanContext: o.scope}),
		trace.WithAttributes(
			attribute.Int("observation.registrars", o.registrars),
			attribute.Int("observation.dependencies", o.dependencies),
		),
	)
	return func() { span.End() }
}
