package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Observability bundles the otel meter and tracer used around tool runs and
// routed queries.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer
	queryCounter   otelmetric.Int64Counter
	queryDuration  otelmetric.Float64Histogram
	toolCounter    otelmetric.Int64Counter
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{tracer: noop.NewTracerProvider().Tracer(serviceName)}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	tracerProvider := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tracerProvider)

	meter := provider.Meter(serviceName)

	queryCounter, _ := meter.Int64Counter(
		"queries.processed",
		otelmetric.WithDescription("Number of routed queries"),
	)

	queryDuration, _ := meter.Float64Histogram(
		"queries.duration",
		otelmetric.WithDescription("Routed query duration"),
		otelmetric.WithUnit("ms"),
	)

	toolCounter, _ := meter.Int64Counter(
		"tools.invoked",
		otelmetric.WithDescription("Number of tool invocations"),
	)

	return &Observability{
		meterProvider:  provider,
		tracerProvider: tracerProvider,
		meter:          meter,
		tracer:         tracerProvider.Tracer(serviceName),
		queryCounter:   queryCounter,
		queryDuration:  queryDuration,
		toolCounter:    toolCounter,
	}
}

// NewNoop returns an Observability that records nothing.
func NewNoop() *Observability {
	return &Observability{tracer: noop.NewTracerProvider().Tracer("noop")}
}

// StartSpan opens a span named name. Callers must call End with the outcome.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, *Span) {
	tracer := o.tracerOrNoop()
	kv := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kv = append(kv, attribute.String(k, v))
	}
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(kv...))
	return ctx, &Span{span: span}
}

func (o *Observability) tracerOrNoop() trace.Tracer {
	if o == nil || o.tracer == nil {
		return noop.NewTracerProvider().Tracer("noop")
	}
	return o.tracer
}

// Span wraps an otel span.
type Span struct {
	span trace.Span
}

func (s *Span) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}

func (o *Observability) RecordQueryProcessed(ctx context.Context, strategy, status string) {
	if o != nil && o.queryCounter != nil {
		o.queryCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("strategy", strategy),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordQueryDuration(ctx context.Context, duration time.Duration, strategy string) {
	if o != nil && o.queryDuration != nil {
		o.queryDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("strategy", strategy),
		))
	}
}

func (o *Observability) RecordToolInvoked(ctx context.Context, tool string, success bool) {
	if o != nil && o.toolCounter != nil {
		o.toolCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("tool", tool),
			attribute.Bool("success", success),
		))
	}
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
