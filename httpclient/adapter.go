package httpclient

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/http2"

	"github.com/kbukum/apikit/dispatch"
	"github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/resilience"
	"github.com/kbukum/apikit/version"
)

// HeaderRequestID carries the dispatch request ID to the server.
const HeaderRequestID = "X-Request-ID"

// Adapter sends dispatch calls over HTTP. It implements dispatch.Transport.
type Adapter struct {
	httpClient *http.Client
	config     Config
	cb         *resilience.CircuitBreaker
	log        *logger.Logger
}

var _ dispatch.Transport = (*Adapter)(nil)

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter's logger.
func WithLogger(l *logger.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.log = l
		}
	}
}

// WithRoundTripper replaces the underlying transport, e.g. for tests.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(a *Adapter) { a.httpClient.Transport = rt }
}

// New creates an HTTP adapter with the given configuration.
func New(cfg Config, opts ...Option) (*Adapter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.TLS != nil {
		tlsCfg, err := cfg.TLS.Build()
		if err != nil {
			return nil, errors.InvalidConfig("http: tls").WithCause(err)
		}
		if tlsCfg != nil {
			transport.TLSClientConfig = tlsCfg
		}
	}

	if cfg.HTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			return nil, errors.InvalidConfig("http: enabling http2").WithCause(err)
		}
	}

	a := &Adapter{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		config: cfg,
		log:    logger.Nop(),
	}

	if cfg.CircuitBreaker != nil {
		cbCfg := *cfg.CircuitBreaker
		if cbCfg.IsFailure == nil {
			cbCfg.IsFailure = IsRetryable
		}
		a.cb = resilience.NewCircuitBreaker(cbCfg)
	}

	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.WithComponent(cfg.Name)

	return a, nil
}

// Do performs one HTTP exchange and returns the body of a 2xx response.
// Every other outcome is an *Error.
func (a *Adapter) Do(ctx context.Context, call dispatch.Call) ([]byte, error) {
	if a.cb == nil {
		return a.roundTrip(ctx, call)
	}

	var body []byte
	err := a.cb.Execute(func() error {
		var execErr error
		body, execErr = a.roundTrip(ctx, call)
		return execErr
	})
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		return nil, NewCircuitOpenError(a.cb.Name(), err)
	}
	return body, err
}

func (a *Adapter) roundTrip(ctx context.Context, call dispatch.Call) ([]byte, error) {
	httpReq, err := a.buildRequest(ctx, call)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyDoError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	limit := min(a.config.MaxResponseBytes, math.MaxInt64-1)
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, NewConnectionError(fmt.Errorf("read response body: %w", err))
	}
	if int64(len(body)) > limit {
		return nil, NewValidationError(fmt.Sprintf("response body exceeds %d bytes", limit))
	}

	a.log.WithContext(ctx).Debug("http exchange", logger.MergeWithDuration(logger.Fields(
		logger.FieldMethod, call.Method,
		logger.FieldURL, httpReq.URL.String(),
		logger.FieldStatus, resp.StatusCode,
	), time.Since(start)))

	if classErr := ClassifyStatusCode(resp.StatusCode, body); classErr != nil {
		return nil, classErr
	}
	return body, nil
}

func classifyDoError(ctx context.Context, err error) *Error {
	var netErr interface{ Timeout() bool }
	if ctx.Err() != nil || (stderrors.As(err, &netErr) && netErr.Timeout()) {
		return NewTimeoutError(err)
	}
	return NewConnectionError(err)
}

// buildRequest turns a call into an *http.Request. Parameters go in the
// query string for GET, HEAD and DELETE and in a form body otherwise.
func (a *Adapter) buildRequest(ctx context.Context, call dispatch.Call) (*http.Request, error) {
	method := strings.ToUpper(call.Method)

	var body io.Reader
	params := EncodeParameters(call.Parameters)
	inQuery := encodesInQuery(method)
	if !inQuery && params != "" {
		body = strings.NewReader(params)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, call.URL, body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("create request: %v", err))
	}

	if inQuery && params != "" {
		if httpReq.URL.RawQuery != "" {
			httpReq.URL.RawQuery += "&" + params
		} else {
			httpReq.URL.RawQuery = params
		}
	}

	ua := a.config.UserAgent
	if ua == "" {
		ua = version.UserAgent("apikit")
	}
	httpReq.Header.Set("User-Agent", ua)
	httpReq.Header.Set("Accept", "application/json")

	for k, v := range a.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range call.Headers {
		httpReq.Header.Set(k, v)
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	}
	if id := logger.RequestIDFromContext(ctx); id != "" && httpReq.Header.Get(HeaderRequestID) == "" {
		httpReq.Header.Set(HeaderRequestID, id)
	}

	return httpReq, nil
}

func encodesInQuery(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete:
		return true
	default:
		return false
	}
}

// EncodeParameters form-encodes params with keys in sorted order. Slices
// repeat the key with a "[]" suffix and nested maps use "key[sub]".
func EncodeParameters(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	var pairs []string
	encodeInto(&pairs, "", params)
	return strings.Join(pairs, "&")
}

func encodeInto(pairs *[]string, prefix string, params map[string]any) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		name := k
		if prefix != "" {
			name = prefix + "[" + k + "]"
		}
		encodeValue(pairs, name, params[k])
	}
}

func encodeValue(pairs *[]string, name string, v any) {
	switch val := v.(type) {
	case nil:
		*pairs = append(*pairs, url.QueryEscape(name)+"=")
	case map[string]any:
		encodeInto(pairs, name, val)
	case []any:
		for _, item := range val {
			encodeValue(pairs, name+"[]", item)
		}
	case []string:
		for _, item := range val {
			encodeValue(pairs, name+"[]", item)
		}
	case bool:
		b := "0"
		if val {
			b = "1"
		}
		*pairs = append(*pairs, url.QueryEscape(name)+"="+b)
	default:
		*pairs = append(*pairs, url.QueryEscape(name)+"="+url.QueryEscape(fmt.Sprint(val)))
	}
}

// Name returns the adapter name.
func (a *Adapter) Name() string {
	return a.config.Name
}

// IsAvailable reports false while the circuit breaker is open.
func (a *Adapter) IsAvailable(_ context.Context) bool {
	if a.cb != nil {
		return a.cb.State() != resilience.StateOpen
	}
	return true
}

// CircuitBreaker returns the adapter's breaker, or nil.
func (a *Adapter) CircuitBreaker() *resilience.CircuitBreaker {
	return a.cb
}

// Close releases idle connections.
func (a *Adapter) Close(_ context.Context) error {
	a.httpClient.CloseIdleConnections()
	return nil
}

// Config returns the adapter's configuration after defaults.
func (a *Adapter) Config() Config {
	return a.config
}

// Unwrap returns the underlying *http.Client.
func (a *Adapter) Unwrap() *http.Client {
	return a.httpClient
}
