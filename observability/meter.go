package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/apikit/logger"
)

// InitMeter creates a meter provider exporting over OTLP HTTP.
// The provider must be shut down on exit.
func InitMeter(ctx context.Context, cfg Config, res ResourceInfo, log *logger.Logger) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	r, err := res.resource()
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricInterval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(r),
	)

	log.Debug("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricInterval.String(),
	))
	return mp, nil
}

// Outcome labels recorded on dispatch metrics.
const (
	OutcomeSuccess        = "success"
	OutcomeTransportError = "transport_error"
	OutcomeParseError     = "parse_error"
	OutcomeInvalidRequest = "invalid_request"
	OutcomeCacheHit       = "cache_hit"
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Metrics holds the dispatcher's instruments.
type Metrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	attemptTotal    metric.Int64Counter
	retryTotal      metric.Int64Counter
	cacheLookups    metric.Int64Counter
}

// NewMetrics creates the dispatcher instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requestTotal, err := meter.Int64Counter("apikit.dispatch.requests",
		metric.WithDescription("Dispatched requests by capability and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apikit.dispatch.requests counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("apikit.dispatch.duration",
		metric.WithDescription("End-to-end dispatch duration including retries"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apikit.dispatch.duration histogram: %w", err)
	}

	attemptTotal, err := meter.Int64Counter("apikit.dispatch.attempts",
		metric.WithDescription("Transport attempts, including the first"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apikit.dispatch.attempts counter: %w", err)
	}

	retryTotal, err := meter.Int64Counter("apikit.dispatch.retries",
		metric.WithDescription("Attempts beyond the first"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apikit.dispatch.retries counter: %w", err)
	}

	cacheLookups, err := meter.Int64Counter("apikit.cache.lookups",
		metric.WithDescription("Cache lookups by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apikit.cache.lookups counter: %w", err)
	}

	return &Metrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		attemptTotal:    attemptTotal,
		retryTotal:      retryTotal,
		cacheLookups:    cacheLookups,
	}, nil
}

// RecordRequest records one completed dispatch.
func (m *Metrics) RecordRequest(ctx context.Context, capability, method, outcome string, duration time.Duration) {
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrCapability, capability),
		attribute.String(AttrMethod, method),
		attribute.String(AttrOutcome, outcome),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrCapability, capability),
		attribute.String(AttrMethod, method),
	))
}

// RecordAttempt records one transport attempt. Attempts after the first
// also count as retries.
func (m *Metrics) RecordAttempt(ctx context.Context, attempt int, outcome string) {
	m.attemptTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrOutcome, outcome)))
	if attempt > 1 {
		m.retryTotal.Add(ctx, 1)
	}
}

// RecordCacheLookup records a cache lookup result (CacheHit, CacheMiss, CacheError).
func (m *Metrics) RecordCacheLookup(ctx context.Context, result string) {
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrCacheResult, result)))
}
