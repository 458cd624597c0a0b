package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/kbukum/apikit/apitest"
	"github.com/kbukum/apikit/cache"
	"github.com/kbukum/apikit/dispatch"
	"github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/httpclient"
	"github.com/kbukum/apikit/testutil"
)

const (
	userRoute     = "/v1/user/:id"
	keywordsRoute = "/v1/keywords"
)

type fixture struct {
	srv    *apitest.Server
	store  *cache.Memory
	client *Client
	d      *dispatch.Dispatcher
}

func setup(t *testing.T) *fixture {
	t.Helper()
	srv := apitest.NewServer()
	testutil.T(t).Setup(srv)

	adapter, err := httpclient.New(httpclient.Config{Timeout: time.Second})
	if err != nil {
		t.Fatalf("httpclient.New: %v", err)
	}
	store := cache.NewMemory()
	d := dispatch.New(adapter, dispatch.WithBaseURL(srv.BaseURL()), dispatch.WithCache(store))
	return &fixture{srv: srv, store: store, client: NewClient(d), d: d}
}

func TestUser_CacheMissGoesToNetwork(t *testing.T) {
	f := setup(t)
	f.srv.Script(http.MethodGet, userRoute, apitest.JSON(http.StatusOK, User{Name: "Ada"}))

	user, err := f.client.User(context.Background(), "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Name != "Ada" {
		t.Errorf("expected Ada, got %q", user.Name)
	}
	reqs := f.srv.Requests()
	if len(reqs) != 1 || reqs[0].Path != "/v1/user/42" {
		t.Fatalf("unexpected requests %+v", reqs)
	}
	if reqs[0].RequestID == "" {
		t.Error("expected a request id header")
	}
}

func TestUser_CacheHitSkipsNetwork(t *testing.T) {
	f := setup(t)
	f.srv.Script(http.MethodGet, userRoute, apitest.JSON(http.StatusOK, User{Name: "network"}))
	testutil.T(t).SeedCache(f.store, map[string]any{"42": User{Name: "cached"}})

	user, err := f.client.User(context.Background(), "42")
	if err != nil || user.Name != "cached" {
		t.Fatalf("expected cached user, got %v %v", user, err)
	}
	if f.srv.TotalCalls() != 0 {
		t.Errorf("expected no network calls, got %d", f.srv.TotalCalls())
	}

	fresh, err := f.client.FreshUser(context.Background(), "42")
	if err != nil || fresh.Name != "network" {
		t.Fatalf("expected network user, got %v %v", fresh, err)
	}
	if f.srv.TotalCalls() != 1 {
		t.Errorf("expected one network call, got %d", f.srv.TotalCalls())
	}
}

func TestUser_NoWriteBack(t *testing.T) {
	f := setup(t)
	f.srv.Script(http.MethodGet, userRoute, apitest.JSON(http.StatusOK, User{Name: "Ada"}))

	for i := 0; i < 2; i++ {
		if _, err := f.client.User(context.Background(), "1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if f.srv.TotalCalls() != 2 {
		t.Errorf("successful responses must not populate the cache, got %d calls", f.srv.TotalCalls())
	}
	if f.store.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", f.store.Len())
	}
}

func TestUser_ParseFailures(t *testing.T) {
	tests := []struct {
		name string
		resp apitest.Response
	}{
		{"not json", apitest.Raw(http.StatusOK, "<html>")},
		{"missing name", apitest.Raw(http.StatusOK, `{}`)},
		{"empty body", apitest.Status(http.StatusOK)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := setup(t)
			f.srv.Script(http.MethodGet, userRoute, tc.resp)

			_, err := f.client.User(context.Background(), "1")
			if !errors.IsParse(err) {
				t.Errorf("expected parse error, got %v", err)
			}
		})
	}
}

func TestUser_NotFoundIsTransportError(t *testing.T) {
	f := setup(t)
	f.srv.Script(http.MethodGet, userRoute, apitest.Status(http.StatusNotFound))

	_, err := f.client.User(context.Background(), "missing")
	if !errors.IsTransport(err) || !httpclient.IsNotFound(err) {
		t.Errorf("expected transport not-found, got %v", err)
	}
}

func TestKeywords_RetriesTransientFailures(t *testing.T) {
	f := setup(t)
	f.srv.Script(http.MethodGet, keywordsRoute,
		apitest.Status(http.StatusServiceUnavailable),
		apitest.Status(http.StatusTooManyRequests),
		apitest.JSON(http.StatusOK, KeywordList{Count: 2, Keywords: []string{"go", "http"}}),
	)

	list, err := f.client.Keywords(context.Background(), GetKeywordListRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Count != 2 || len(list.Keywords) != 2 {
		t.Errorf("unexpected list %+v", list)
	}
	if n := f.srv.Calls(http.MethodGet, keywordsRoute); n != 3 {
		t.Errorf("expected 3 calls, got %d", n)
	}
}

func TestKeywords_BudgetExhausted(t *testing.T) {
	f := setup(t)
	f.srv.Script(http.MethodGet, keywordsRoute, apitest.Status(http.StatusBadGateway))

	_, err := f.client.Keywords(context.Background(), GetKeywordListRequest{})
	if !errors.IsTransport(err) || !httpclient.IsServerError(err) {
		t.Fatalf("expected server transport error, got %v", err)
	}
	if n := f.srv.Calls(http.MethodGet, keywordsRoute); n != KeywordsMaxRetries+1 {
		t.Errorf("expected %d calls, got %d", KeywordsMaxRetries+1, n)
	}
}

func TestKeywords_NonRetryableStopsImmediately(t *testing.T) {
	f := setup(t)
	f.srv.Script(http.MethodGet, keywordsRoute, apitest.Status(http.StatusUnauthorized))

	_, err := f.client.Keywords(context.Background(), GetKeywordListRequest{})
	if !httpclient.IsAuth(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if n := f.srv.Calls(http.MethodGet, keywordsRoute); n != 1 {
		t.Errorf("expected 1 call, got %d", n)
	}
}

func TestKeywords_Cache(t *testing.T) {
	f := setup(t)
	f.srv.Script(http.MethodGet, keywordsRoute, apitest.JSON(http.StatusOK, KeywordList{Count: 1, Keywords: []string{"net"}}))
	testutil.T(t).SeedCache(f.store, map[string]any{KeywordsCacheKey: KeywordList{Count: 1, Keywords: []string{"cached"}}})

	list, err := f.client.Keywords(context.Background(), GetKeywordListRequest{})
	if err != nil || list.Keywords[0] != "net" {
		t.Fatalf("cache is disabled by default, got %v %v", list, err)
	}

	list, err = f.client.Keywords(context.Background(), GetKeywordListRequest{UseCache: true})
	if err != nil || list.Keywords[0] != "cached" {
		t.Fatalf("expected cached list, got %v %v", list, err)
	}
	if n := f.srv.Calls(http.MethodGet, keywordsRoute); n != 1 {
		t.Errorf("expected 1 network call, got %d", n)
	}
}

func TestKeywords_LimitParameter(t *testing.T) {
	f := setup(t)
	f.srv.Script(http.MethodGet, keywordsRoute, apitest.JSON(http.StatusOK, KeywordList{}))

	if _, err := f.client.Keywords(context.Background(), GetKeywordListRequest{Limit: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q := f.srv.Requests()[0].Query; q != "limit=5" {
		t.Errorf("expected limit=5, got %q", q)
	}
}

func TestUserAsync(t *testing.T) {
	f := setup(t)
	f.srv.Script(http.MethodGet, userRoute, apitest.JSON(http.StatusOK, User{Name: "async"}))

	results := make(chan dispatch.Result[User], 2)
	f.client.UserAsync(context.Background(), "9", func(r dispatch.Result[User]) { results <- r })
	f.d.Wait()

	if len(results) != 1 {
		t.Fatalf("expected exactly one completion, got %d", len(results))
	}
	r := <-results
	if !r.IsSuccess() || r.Value().Name != "async" {
		t.Errorf("unexpected result %v %v", r.Value(), r.Err())
	}
}

func TestRequestShapes(t *testing.T) {
	user := GetUserRequest{ID: "a b"}
	if user.Path() != "/v1/user/a%20b" {
		t.Errorf("unexpected path %q", user.Path())
	}
	if !user.CacheEnabled() || user.CacheKey() != "a b" {
		t.Error("user requests are cached by id by default")
	}
	if dispatch.URL(user, "https://api.example.com") != "https://api.example.com/v1/user/a%20b" {
		t.Errorf("unexpected url %q", dispatch.URL(user, "https://api.example.com"))
	}

	kw := GetKeywordListRequest{}
	if kw.CacheEnabled() || kw.CacheKey() != "keywords" || kw.MaxRetryCount() != 4 {
		t.Error("unexpected keyword request defaults")
	}
	if kw.Parameters() != nil {
		t.Error("expected no parameters without a limit")
	}
	if !kw.CanRetry(httpclient.NewServerError(500, nil)) || kw.CanRetry(httpclient.NewNotFoundError(nil)) {
		t.Error("CanRetry should follow httpclient.IsRetryable")
	}
}
