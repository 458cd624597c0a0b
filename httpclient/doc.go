// Package httpclient is the HTTP transport for dispatch. An Adapter turns a
// dispatch.Call into one HTTP exchange and classifies every failure as an
// *Error so that descriptors can decide what to retry.
//
//	adapter, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.example.com",
//	    Timeout: 10 * time.Second,
//	    CircuitBreaker: httpclient.DefaultCircuitBreakerConfig("api"),
//	})
//	d := dispatch.New(adapter, dispatch.WithBaseURL(adapter.Config().BaseURL))
//
// Timeouts, connection failures, 429 and 5xx responses are retryable;
// other 4xx responses and open-circuit rejections are not.
package httpclient
