package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/apikit/dispatch"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/resilience"
	"github.com/kbukum/apikit/security"
	"github.com/kbukum/apikit/security/tlstest"
)

func newAdapter(t *testing.T, cfg Config) *Adapter {
	t.Helper()
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func TestAdapter_GET_QueryParameters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/v1/user/42" {
			t.Errorf("expected /v1/user/42, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("fields"); got != "name" {
			t.Errorf("expected fields=name, got %q", got)
		}
		if got := r.Header.Get("X-Trace"); got != "abc" {
			t.Errorf("expected descriptor header, got %q", got)
		}
		if got := r.Header.Get(HeaderRequestID); got != "req-9" {
			t.Errorf("expected request id header, got %q", got)
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "apikit/") {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		_, _ = io.WriteString(w, `{"name":"Alice"}`)
	}))
	defer srv.Close()

	a := newAdapter(t, Config{})
	ctx := logger.ContextWithRequestID(context.Background(), "req-9")
	body, err := a.Do(ctx, dispatch.Call{
		URL:        srv.URL + "/v1/user/42",
		Method:     http.MethodGet,
		Parameters: map[string]any{"fields": "name"},
		Headers:    map[string]string{"X-Trace": "abc"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"name":"Alice"}` {
		t.Errorf("unexpected body %s", body)
	}
}

func TestAdapter_POST_FormBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
			t.Errorf("expected form content type, got %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if got := r.PostForm.Get("name"); got != "Bob" {
			t.Errorf("expected name=Bob, got %q", got)
		}
		if r.URL.RawQuery != "" {
			t.Errorf("parameters should not be in the query, got %q", r.URL.RawQuery)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	a := newAdapter(t, Config{})
	if _, err := a.Do(context.Background(), dispatch.Call{
		URL:        srv.URL + "/v1/user",
		Method:     http.MethodPost,
		Parameters: map[string]any{"name": "Bob"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAdapter_DefaultHeadersOverridden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Env"); got != "descriptor" {
			t.Errorf("expected descriptor header to win, got %q", got)
		}
		if got := r.Header.Get("X-Static"); got != "yes" {
			t.Errorf("expected config header, got %q", got)
		}
	}))
	defer srv.Close()

	a := newAdapter(t, Config{Headers: map[string]string{"X-Env": "config", "X-Static": "yes"}})
	if _, err := a.Do(context.Background(), dispatch.Call{
		URL:     srv.URL,
		Method:  http.MethodGet,
		Headers: map[string]string{"X-Env": "descriptor"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAdapter_StatusClassification(t *testing.T) {
	tests := []struct {
		status    int
		code      ErrorCode
		retryable bool
	}{
		{http.StatusBadRequest, ErrCodeValidation, false},
		{http.StatusUnauthorized, ErrCodeAuth, false},
		{http.StatusNotFound, ErrCodeNotFound, false},
		{http.StatusTooManyRequests, ErrCodeRateLimit, true},
		{http.StatusBadGateway, ErrCodeServer, true},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprint(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, `{"error":"x"}`)
			}))
			defer srv.Close()

			_, err := newAdapter(t, Config{}).Do(context.Background(), dispatch.Call{URL: srv.URL, Method: http.MethodGet})
			httpErr, ok := err.(*Error)
			if !ok {
				t.Fatalf("expected *Error, got %T", err)
			}
			if httpErr.Code != tc.code || httpErr.Retryable != tc.retryable {
				t.Errorf("got %v retryable=%v, want %v retryable=%v", httpErr.Code, httpErr.Retryable, tc.code, tc.retryable)
			}
			if string(httpErr.Body) != `{"error":"x"}` {
				t.Errorf("expected body preserved, got %s", httpErr.Body)
			}
		})
	}
}

func TestAdapter_MaxResponseBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("x", 64))
	}))
	defer srv.Close()

	tests := []struct {
		name  string
		limit int64
		ok    bool
	}{
		{"under", 128, true},
		{"exact", 64, true},
		{"over", 16, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body, err := newAdapter(t, Config{MaxResponseBytes: tc.limit}).Do(context.Background(), dispatch.Call{URL: srv.URL, Method: http.MethodGet})
			if tc.ok {
				if err != nil || len(body) != 64 {
					t.Fatalf("expected full body, got %d bytes (%v)", len(body), err)
				}
				return
			}
			httpErr, ok := err.(*Error)
			if !ok || httpErr.Code != ErrCodeValidation || httpErr.Retryable {
				t.Errorf("expected non-retryable validation error, got %v", err)
			}
		})
	}
}

func TestAdapter_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newAdapter(t, Config{}).Do(context.Background(), dispatch.Call{URL: url, Method: http.MethodGet})
	if !IsConnection(err) || !IsRetryable(err) {
		t.Errorf("expected retryable connection error, got %v", err)
	}
}

func TestAdapter_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := newAdapter(t, Config{Timeout: 20 * time.Millisecond}).Do(context.Background(), dispatch.Call{URL: srv.URL, Method: http.MethodGet})
	if !IsTimeout(err) {
		t.Errorf("expected timeout, got %v", err)
	}
}

func TestAdapter_CircuitBreaker(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := newAdapter(t, Config{CircuitBreaker: &resilience.CircuitBreakerConfig{MaxFailures: 2, Timeout: time.Minute, HalfOpenMaxCalls: 1}})
	call := dispatch.Call{URL: srv.URL, Method: http.MethodGet}

	for i := 0; i < 2; i++ {
		if _, err := a.Do(context.Background(), call); !IsServerError(err) {
			t.Fatalf("attempt %d: expected server error, got %v", i, err)
		}
	}
	_, err := a.Do(context.Background(), call)
	if !IsCircuitOpen(err) || IsRetryable(err) {
		t.Fatalf("expected non-retryable circuit-open error, got %v", err)
	}
	if hits != 2 {
		t.Errorf("expected the open circuit to block the third call, got %d hits", hits)
	}
	if a.IsAvailable(context.Background()) {
		t.Error("adapter should be unavailable while open")
	}
}

func TestAdapter_CircuitIgnoresNonRetryable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	a := newAdapter(t, Config{CircuitBreaker: &resilience.CircuitBreakerConfig{MaxFailures: 1, Timeout: time.Minute, HalfOpenMaxCalls: 1}})
	for i := 0; i < 3; i++ {
		if _, err := a.Do(context.Background(), dispatch.Call{URL: srv.URL, Method: http.MethodGet}); !IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	}
	if !a.IsAvailable(context.Background()) {
		t.Error("404s should not open the circuit")
	}
}

func TestAdapter_TLS(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)

	tests := []struct {
		name  string
		http2 bool
		proto string
	}{
		{"http1", false, "HTTP/1.1"},
		{"http2", true, "HTTP/2.0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = fmt.Fprintf(w, `{"proto":%q}`, r.Proto)
			}))
			srv.EnableHTTP2 = tc.http2
			srv.TLS = &tls.Config{Certificates: []tls.Certificate{certs.ServerTLS}}
			srv.StartTLS()
			defer srv.Close()

			a := newAdapter(t, Config{TLS: &security.TLSConfig{CAFile: certs.CAFile}, HTTP2: tc.http2})
			body, err := a.Do(context.Background(), dispatch.Call{URL: srv.URL, Method: http.MethodGet})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(string(body), tc.proto) {
				t.Errorf("expected %s, got %s", tc.proto, body)
			}
		})
	}
}

func TestAdapter_UntrustedCertificate(t *testing.T) {
	srv := httptest.NewTLSServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := newAdapter(t, Config{}).Do(context.Background(), dispatch.Call{URL: srv.URL, Method: http.MethodGet})
	if !IsConnection(err) {
		t.Errorf("expected connection error for untrusted cert, got %v", err)
	}
}

func TestEncodeParameters(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		want   string
	}{
		{"empty", nil, ""},
		{"sorted scalars", map[string]any{"b": 2, "a": "x y"}, "a=x+y&b=2"},
		{"bool", map[string]any{"on": true, "off": false}, "off=0&on=1"},
		{"slice", map[string]any{"ids": []any{1, 2}}, "ids%5B%5D=1&ids%5B%5D=2"},
		{"nested", map[string]any{"f": map[string]any{"k": "v"}}, "f%5Bk%5D=v"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := EncodeParameters(tc.params); got != tc.want {
				t.Errorf("EncodeParameters() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAdapter_AsDispatchTransport(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"name":"Ada"}`)
	}))
	defer srv.Close()

	d := dispatch.New(newAdapter(t, Config{}), dispatch.WithBaseURL(srv.URL))
	got, err := dispatch.SendRetryable[profile](context.Background(), d, profileRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Ada" || hits != 3 {
		t.Errorf("expected Ada after 3 hits, got %q after %d", got.Name, hits)
	}
}

type profile struct {
	Name string `json:"name"`
}

type profileRequest struct {
	dispatch.Endpoint
	dispatch.RetryDefaults
}

func (profileRequest) Method() string { return http.MethodGet }

func (profileRequest) Path() string { return "/v1/profile" }

func (profileRequest) Decode(b []byte) (profile, bool) { return dispatch.DecodeJSON[profile](b) }

func (profileRequest) CanRetry(err error) bool { return IsRetryable(err) }
