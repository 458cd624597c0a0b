package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/apikit/logger"
)

// ResourceInfo identifies the process in exported telemetry.
type ResourceInfo struct {
	Name        string
	Version     string
	Environment string
}

// resource merges the SDK defaults with the service identity. The identity
// is schemaless so it never conflicts with the default resource's schema URL.
func (r ResourceInfo) resource() (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(r.Name),
			semconv.ServiceVersion(r.Version),
			attribute.String("environment", r.Environment),
		),
	)
}

// InitTracer creates a tracer provider exporting over OTLP HTTP and installs
// the W3C trace-context propagator. The provider must be shut down on exit.
func InitTracer(ctx context.Context, cfg Config, res ResourceInfo, log *logger.Logger) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	r, err := res.resource()
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(r),
		sdktrace.WithSampler(Sampler(cfg.SampleRate)),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Debug("tracer initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.SampleRate,
	))
	return tp, nil
}

// Sampler maps a rate to a parent-based sampler.
func Sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case rate <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
	}
}

// SetSpanError records err on span and marks it failed.
func SetSpanError(span trace.Span, err error) {
	if span == nil || !span.IsRecording() || err == nil {
		return
	}
	span.RecordError(err)
	span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
}

// TraceID returns the hex trace id of the span in ctx, or "".
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// Span names.
const (
	SpanDispatch = "apikit.dispatch"
	SpanAttempt  = "apikit.attempt"
)

// Attribute keys.
const (
	AttrRequestID    = "apikit.request_id"
	AttrCapability   = "apikit.capability"
	AttrMethod       = "http.request.method"
	AttrURL          = "url.full"
	AttrAttempt      = "apikit.attempt"
	AttrOutcome      = "apikit.outcome"
	AttrCacheKey     = "apikit.cache.key"
	AttrCacheResult  = "apikit.cache.result"
	AttrErrorMessage = "error.message"
)
