// Package apitest runs a scripted fake API on httptest for exercising the
// dispatcher over real HTTP.
//
//	srv := apitest.NewServer()
//	testutil.T(t).Setup(srv)
//	srv.Script(http.MethodGet, "/v1/keywords",
//	    apitest.Status(http.StatusServiceUnavailable),
//	    apitest.JSON(http.StatusOK, keywords),
//	)
//
// Scripted responses are served in order; the last one repeats.
package apitest

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/apikit/component"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Response is one scripted reply.
type Response struct {
	Status int
	Body   []byte
	Header map[string]string
	// Delay holds the reply back, e.g. to trigger client timeouts.
	Delay time.Duration
}

// JSON replies with v encoded as JSON.
func JSON(status int, v any) Response {
	body, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("apitest: encoding response: %v", err))
	}
	return Response{Status: status, Body: body, Header: map[string]string{"Content-Type": "application/json"}}
}

// Raw replies with body verbatim.
func Raw(status int, body string) Response {
	return Response{Status: status, Body: []byte(body)}
}

// Status replies with an empty body.
func Status(status int) Response {
	return Response{Status: status}
}

// Recorded is one request the server received.
type Recorded struct {
	Method    string
	Route     string
	Path      string
	Query     string
	Form      map[string][]string
	RequestID string
}

// Server is a fake API backed by gin and httptest. It implements
// testutil.TestComponent.
type Server struct {
	engine *gin.Engine
	ts     *httptest.Server
	log    *logger.Logger

	mu       sync.Mutex
	routes   map[string]bool
	scripts  map[string][]Response
	served   map[string]int
	requests []Recorded
}

var _ component.Component = (*Server)(nil)
var _ testutil.TestComponent = (*Server)(nil)

// NewServer creates a stopped server.
func NewServer() *Server {
	s := &Server{
		engine:  gin.New(),
		log:     logger.Nop(),
		routes:  make(map[string]bool),
		scripts: make(map[string][]Response),
		served:  make(map[string]int),
	}
	s.engine.Use(gin.Recovery())
	return s
}

// WithLogger logs every request served.
func (s *Server) WithLogger(l *logger.Logger) *Server {
	s.log = l.WithComponent(s.Name())
	return s
}

func routeKey(method, route string) string { return method + " " + route }

// Script sets the replies for method and route, a gin path pattern such as
// "/v1/user/:id". It replaces any earlier script for the same route.
func (s *Server) Script(method, route string, responses ...Response) {
	if len(responses) == 0 {
		panic("apitest: Script needs at least one response")
	}
	key := routeKey(method, route)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[key] = responses
	s.served[key] = 0
	if !s.routes[key] {
		s.routes[key] = true
		s.engine.Handle(method, route, s.handler(key, route))
	}
}

func (s *Server) handler(key, route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Request.ParseForm()

		s.mu.Lock()
		script, ok := s.scripts[key]
		n := s.served[key]
		s.served[key] = n + 1
		s.requests = append(s.requests, Recorded{
			Method:    c.Request.Method,
			Route:     route,
			Path:      c.Request.URL.Path,
			Query:     c.Request.URL.RawQuery,
			Form:      c.Request.PostForm,
			RequestID: c.GetHeader("X-Request-ID"),
		})
		s.mu.Unlock()

		if !ok {
			c.Status(http.StatusNotFound)
			return
		}
		if n >= len(script) {
			n = len(script) - 1
		}
		resp := script[n]

		s.log.Debug("serving scripted response", logger.Fields(
			logger.FieldMethod, c.Request.Method,
			logger.FieldURL, c.Request.URL.String(),
			logger.FieldStatus, resp.Status,
			"call", n+1,
		))

		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-c.Request.Context().Done():
				return
			}
		}
		for k, v := range resp.Header {
			c.Header(k, v)
		}
		c.Data(resp.Status, c.Writer.Header().Get("Content-Type"), resp.Body)
	}
}

// Calls returns how many requests method and route have received since
// they were last scripted.
func (s *Server) Calls(method, route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.served[routeKey(method, route)]
}

// TotalCalls returns the number of requests received on any route.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Requests returns the requests received, oldest first.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.requests))
	copy(out, s.requests)
	return out
}

// BaseURL returns the server URL, or "" before Start.
func (s *Server) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ts == nil {
		return ""
	}
	return s.ts.URL
}

// Name returns the component name.
func (s *Server) Name() string { return "apitest" }

// Start begins serving on a loopback port.
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ts != nil {
		return fmt.Errorf("apitest: already started")
	}
	s.ts = httptest.NewServer(s.engine)
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop(_ context.Context) error {
	s.mu.Lock()
	ts := s.ts
	s.ts = nil
	s.mu.Unlock()

	if ts != nil {
		ts.Close()
	}
	return nil
}

// Health reports whether the server is running.
func (s *Server) Health(_ context.Context) component.Health {
	if s.BaseURL() == "" {
		return component.Health{Name: s.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: s.Name(), Status: component.StatusHealthy}
}

// Reset drops every script and recorded request. Routes stay registered
// but answer 404 until scripted again.
func (s *Server) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts = make(map[string][]Response)
	s.served = make(map[string]int)
	s.requests = nil
	return nil
}

type snapshot struct {
	scripts  map[string][]Response
	served   map[string]int
	requests []Recorded
}

// Snapshot captures scripts, call counts and recorded requests.
func (s *Server) Snapshot(_ context.Context) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		scripts:  maps.Clone(s.scripts),
		served:   maps.Clone(s.served),
		requests: slices.Clone(s.requests),
	}, nil
}

// Restore returns to a Snapshot. Routes scripted after the snapshot answer 404.
func (s *Server) Restore(_ context.Context, v any) error {
	snap, ok := v.(snapshot)
	if !ok {
		return fmt.Errorf("apitest: unexpected snapshot type %T", v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts = maps.Clone(snap.scripts)
	s.served = maps.Clone(snap.served)
	s.requests = slices.Clone(snap.requests)
	return nil
}
