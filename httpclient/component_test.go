package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kbukum/apikit/component"
	"github.com/kbukum/apikit/dispatch"
	"github.com/kbukum/apikit/resilience"
)

func TestComponent_Lifecycle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer srv.Close()

	comp := NewComponent(Config{Name: "test-http", BaseURL: srv.URL})

	if comp.Adapter() != nil {
		t.Error("Adapter() should be nil before Start()")
	}
	if h := comp.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before Start(), got %s", h.Status)
	}

	if err := comp.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if comp.Adapter() == nil {
		t.Fatal("Adapter() should not be nil after Start()")
	}

	health := comp.Health(context.Background())
	if health.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s", health.Status)
	}
	if health.Name != "test-http" {
		t.Errorf("expected name test-http, got %s", health.Name)
	}

	if _, err := comp.Adapter().Do(context.Background(), dispatch.Call{URL: srv.URL, Method: http.MethodGet}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	if err := comp.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}

func TestComponent_StartInvalidConfig(t *testing.T) {
	comp := NewComponent(Config{BaseURL: "::bad"})
	if err := comp.Start(context.Background()); err == nil {
		t.Fatal("expected Start to fail on invalid config")
	}
}

func TestComponent_DegradedWhenOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	comp := NewComponent(Config{CircuitBreaker: &resilience.CircuitBreakerConfig{MaxFailures: 1, Timeout: time.Minute, HalfOpenMaxCalls: 1}})
	if err := comp.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	_, _ = comp.Adapter().Do(context.Background(), dispatch.Call{URL: srv.URL, Method: http.MethodGet})

	if h := comp.Health(context.Background()); h.Status != component.StatusDegraded {
		t.Errorf("expected degraded, got %s", h.Status)
	}
}

func TestComponent_Name_Default(t *testing.T) {
	comp := NewComponent(Config{BaseURL: "http://localhost"})
	if got := comp.Name(); got != "http" {
		t.Errorf("expected default name 'http', got %q", got)
	}
}

func TestComponent_Describe(t *testing.T) {
	comp := NewComponent(Config{Name: "my-api", BaseURL: "http://example.com", HTTP2: true})
	desc := comp.Describe()
	if desc.Type != "http-adapter" {
		t.Errorf("expected type 'http-adapter', got %q", desc.Type)
	}
	if desc.Details != "http://example.com (http2)" {
		t.Errorf("unexpected details %q", desc.Details)
	}
}
