package dispatch

import (
	"context"
	stderrors "errors"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/kbukum/apikit/cache"
	"github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
	"github.com/kbukum/apikit/resilience"
)

// Dispatcher executes descriptors against a transport. It holds only its
// collaborators and is safe for concurrent use.
type Dispatcher struct {
	transport Transport
	cache     cache.Reader
	baseURL   string
	backoff   BackoffConfig
	log       *logger.Logger
	metrics   *observability.Metrics
	tracer    trace.Tracer
	newID     func() string

	inflight sync.WaitGroup
}

// New creates a Dispatcher sending through transport.
func New(transport Transport, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		transport: transport,
		log:       logger.Nop(),
		tracer:    noop.NewTracerProvider().Tracer(observability.InstrumentationName),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// BaseURL returns the base URL used by descriptors that do not name one.
func (d *Dispatcher) BaseURL() string { return d.baseURL }

// Wait blocks until every DispatchAsync completion has run.
func (d *Dispatcher) Wait() { d.inflight.Wait() }

// exchange is the per-send state shared by every attempt of one send.
type exchange struct {
	capability string
	call       Call
	start      time.Time
	span       trace.Span
	log        *logger.Logger
}

// begin resolves the call and opens the dispatch span. The exchange is
// valid even when an error is returned so that finish can close it.
func (d *Dispatcher) begin(ctx context.Context, t Target, capability string) (context.Context, *exchange, error) {
	id := logger.RequestIDFromContext(ctx)
	if id == "" {
		id = d.newID()
		ctx = logger.ContextWithRequestID(ctx, id)
	}

	call := Call{
		URL:        URL(t, d.baseURL),
		Method:     t.Method(),
		Parameters: t.Parameters(),
		Headers:    t.Headers(),
	}

	ctx, span := d.tracer.Start(ctx, observability.SpanDispatch,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(observability.AttrRequestID, id),
			attribute.String(observability.AttrCapability, capability),
			attribute.String(observability.AttrMethod, call.Method),
			attribute.String(observability.AttrURL, call.URL),
		),
	)

	ex := &exchange{
		capability: capability,
		call:       call,
		start:      time.Now(),
		span:       span,
		log: d.log.WithContext(ctx).WithFields(logger.Fields(
			logger.FieldMethod, call.Method,
			logger.FieldURL, call.URL,
		)),
	}

	if d.transport == nil {
		return ctx, ex, errors.InvalidConfig("dispatcher has no transport")
	}
	if err := checkCall(call); err != nil {
		return ctx, ex, err
	}
	return ctx, ex, nil
}

func checkCall(call Call) error {
	if call.Method == "" {
		return errors.InvalidRequest("empty method")
	}
	u, err := url.Parse(call.URL)
	if err != nil {
		return errors.InvalidRequest("malformed url").WithDetail("url", call.URL).WithCause(err)
	}
	if u.Scheme == "" || u.Host == "" {
		return errors.InvalidRequest("url has no scheme or host").WithDetail("url", call.URL)
	}
	return nil
}

// finish closes the dispatch span and records the request. An empty
// outcome is derived from err.
func (d *Dispatcher) finish(ctx context.Context, ex *exchange, outcome string, err error) {
	if outcome == "" {
		outcome = outcomeOf(err)
	}
	elapsed := time.Since(ex.start)

	ex.span.SetAttributes(attribute.String(observability.AttrOutcome, outcome))
	observability.SetSpanError(ex.span, err)
	ex.span.End()

	if d.metrics != nil {
		d.metrics.RecordRequest(ctx, ex.capability, ex.call.Method, outcome, elapsed)
	}

	fields := logger.MergeWithDuration(logger.Fields("outcome", outcome, "capability", ex.capability), elapsed)
	if err != nil {
		ex.log.WithError(err).Debug("request failed", fields)
		return
	}
	ex.log.Debug("request completed", fields)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeSuccess
	case errors.IsParse(err):
		return observability.OutcomeParseError
	case errors.IsTransport(err):
		return observability.OutcomeTransportError
	default:
		return observability.OutcomeInvalidRequest
	}
}

func (d *Dispatcher) recordAttempt(ctx context.Context, n int, outcome string) {
	if d.metrics != nil {
		d.metrics.RecordAttempt(ctx, n, outcome)
	}
}

func (d *Dispatcher) recordLookup(ctx context.Context, ex *exchange, result string) {
	ex.span.SetAttributes(attribute.String(observability.AttrCacheResult, result))
	if d.metrics != nil {
		d.metrics.RecordCacheLookup(ctx, result)
	}
}

// attempt performs one transport call and decodes the body.
func attempt[T any](ctx context.Context, d *Dispatcher, ex *exchange, req Request[T], n int) (T, error) {
	var zero T

	ctx, span := d.tracer.Start(ctx, observability.SpanAttempt,
		trace.WithAttributes(attribute.Int(observability.AttrAttempt, n)),
	)
	defer span.End()

	ex.log.Debug("sending request", logger.Fields(logger.FieldAttempt, n))

	body, err := d.transport.Do(ctx, ex.call)
	if err != nil {
		appErr := errors.Transport(err).WithDetails(map[string]any{
			"url":     ex.call.URL,
			"method":  ex.call.Method,
			"attempt": n,
		})
		observability.SetSpanError(span, appErr)
		d.recordAttempt(ctx, n, observability.OutcomeTransportError)
		return zero, appErr
	}

	v, ok := req.Decode(body)
	if !ok {
		appErr := errors.Parse(len(body)).WithDetails(map[string]any{
			"url":    ex.call.URL,
			"method": ex.call.Method,
		})
		observability.SetSpanError(span, appErr)
		d.recordAttempt(ctx, n, observability.OutcomeParseError)
		return zero, appErr
	}

	d.recordAttempt(ctx, n, observability.OutcomeSuccess)
	return v, nil
}

// retry runs attempts until one succeeds, a non-transport failure occurs,
// the budget is spent, or CanRetry rejects the transport cause.
func retry[T any](ctx context.Context, d *Dispatcher, ex *exchange, req Request[T], r Retryable) (T, error) {
	budget := retryBudget(r)

	cfg := resilience.RetryConfig{
		MaxAttempts:    budget + 1,
		InitialBackoff: d.backoff.Initial,
		MaxBackoff:     d.backoff.Max,
		BackoffFactor:  d.backoff.Factor,
		Jitter:         d.backoff.Jitter,
		RetryIf: func(err error) bool {
			return errors.IsTransport(err) && r.CanRetry(errors.Cause(err))
		},
		OnRetry: func(n int, err error, wait time.Duration) {
			ex.log.WithError(errors.Cause(err)).Warn("retrying request", logger.Fields(
				logger.FieldAttempt, n+1,
				"max_retries", budget,
				"backoff", wait.String(),
			))
		},
	}

	return resilience.Retry(ctx, cfg, func(n int) (T, error) {
		return attempt(ctx, d, ex, req, n)
	})
}

// lookup consults the cache for an enabled cacheable descriptor. Read
// errors and undecodable values are misses.
func lookup[T any](ctx context.Context, d *Dispatcher, ex *exchange, c Cacheable) (T, bool) {
	var zero T
	if !c.CacheEnabled() {
		return zero, false
	}

	key := c.CacheKey()
	ex.span.SetAttributes(attribute.String(observability.AttrCacheKey, key))
	log := ex.log.WithFields(logger.Fields(logger.FieldCacheKey, key))

	if d.cache == nil {
		d.recordLookup(ctx, ex, observability.CacheMiss)
		return zero, false
	}

	v, ok, err := cache.Load[T](ctx, d.cache, key)
	switch {
	case err != nil && stderrors.Is(err, cache.ErrUndecodable):
		log.WithError(err).Debug("cached value undecodable, treating as miss")
		d.recordLookup(ctx, ex, observability.CacheMiss)
		return zero, false
	case err != nil:
		log.WithError(err).Warn("cache read failed, treating as miss")
		d.recordLookup(ctx, ex, observability.CacheError)
		return zero, false
	case !ok:
		log.Debug("cache miss")
		d.recordLookup(ctx, ex, observability.CacheMiss)
		return zero, false
	}

	log.Debug("cache hit")
	d.recordLookup(ctx, ex, observability.CacheHit)
	return v, true
}

// execute is the single path behind every entry point. A nil c or r
// disables that capability.
func execute[T any](ctx context.Context, d *Dispatcher, req Request[T], capability string, c Cacheable, r Retryable) (T, error) {
	var zero T

	ctx, ex, err := d.begin(ctx, req, capability)
	if err != nil {
		d.finish(ctx, ex, "", err)
		return zero, err
	}

	if c != nil {
		if v, ok := lookup[T](ctx, d, ex, c); ok {
			d.finish(ctx, ex, observability.OutcomeCacheHit, nil)
			return v, nil
		}
	}

	var v T
	if r != nil {
		v, err = retry(ctx, d, ex, req, r)
	} else {
		v, err = attempt(ctx, d, ex, req, 1)
	}
	d.finish(ctx, ex, "", err)
	return v, err
}
