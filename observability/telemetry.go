package observability

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/kbukum/apikit/component"
	"github.com/kbukum/apikit/logger"
)

// InstrumentationName names the meter and tracer apikit creates.
const InstrumentationName = "github.com/kbukum/apikit"

// Telemetry owns the meter and tracer providers for one process.
type Telemetry struct {
	cfg Config
	mp  *sdkmetric.MeterProvider
	tp  *sdktrace.TracerProvider

	meter  metric.Meter
	tracer trace.Tracer
}

// Init sets up OTLP exporters when cfg.Enabled, and no-op providers otherwise.
func Init(ctx context.Context, cfg Config, serviceName, serviceVersion string, log *logger.Logger) (*Telemetry, error) {
	if !cfg.Enabled {
		return Noop(), nil
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	res := ResourceInfo{Name: serviceName, Version: serviceVersion}

	mp, err := InitMeter(ctx, cfg, res, log)
	if err != nil {
		return nil, err
	}
	tp, err := InitTracer(ctx, cfg, res, log)
	if err != nil {
		_ = mp.Shutdown(ctx)
		return nil, err
	}

	return &Telemetry{
		cfg:    cfg,
		mp:     mp,
		tp:     tp,
		meter:  mp.Meter(InstrumentationName),
		tracer: tp.Tracer(InstrumentationName),
	}, nil
}

// Noop returns telemetry that records nothing.
func Noop() *Telemetry {
	return &Telemetry{
		meter:  metricnoop.NewMeterProvider().Meter(InstrumentationName),
		tracer: tracenoop.NewTracerProvider().Tracer(InstrumentationName),
	}
}

// Meter returns the apikit meter.
func (t *Telemetry) Meter() metric.Meter { return t.meter }

// Tracer returns the apikit tracer.
func (t *Telemetry) Tracer() trace.Tracer { return t.tracer }

// Shutdown flushes and stops both providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.tp != nil {
		errs = append(errs, t.tp.Shutdown(ctx))
	}
	if t.mp != nil {
		errs = append(errs, t.mp.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// Component adapts Telemetry to the component registry so that Stop flushes
// pending spans and metrics.
func (t *Telemetry) Component() component.Component { return telemetryComponent{t} }

type telemetryComponent struct{ t *Telemetry }

func (c telemetryComponent) Name() string { return "telemetry" }

func (c telemetryComponent) Start(context.Context) error { return nil }

func (c telemetryComponent) Stop(ctx context.Context) error { return c.t.Shutdown(ctx) }

func (c telemetryComponent) Health(context.Context) component.Health {
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c telemetryComponent) Describe() component.Description {
	details := "disabled"
	if c.t.cfg.Enabled {
		details = "otlp " + c.t.cfg.Endpoint
	}
	return component.Description{Name: "Telemetry", Type: "telemetry", Details: details}
}
