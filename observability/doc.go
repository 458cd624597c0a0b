// Package observability wires OpenTelemetry tracing and metrics for apikit.
//
//	tel, err := observability.Init(ctx, cfg, "apikit", version.Get().Version, log)
//	defer tel.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(tel.Meter())
//	d := dispatch.New(transport, dispatch.WithMetrics(metrics), dispatch.WithTracer(tel.Tracer()))
//
// With telemetry disabled, Init returns no-op providers, so callers never
// branch on whether exporting is on.
package observability
