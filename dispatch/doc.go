// Package dispatch executes typed API request descriptors against a
// transport, layering an optional read-through cache and optional bounded
// retry over one execution path.
//
// A descriptor describes one call and how to decode its response:
//
//	type GetUser struct {
//	    dispatch.Endpoint
//	    ID string
//	}
//
//	func (r GetUser) Method() string { return http.MethodGet }
//	func (r GetUser) Path() string   { return "/v1/user/" + r.ID }
//	func (r GetUser) Decode(b []byte) (User, bool) { return dispatch.DecodeJSON[User](b) }
//
// Capabilities are opt-in interfaces. A descriptor that also implements
// Cacheable is served from the dispatcher's cache when enabled and present;
// one that implements Retryable is re-sent on transport failures its
// CanRetry accepts, up to MaxRetryCount extra attempts. Parse failures are
// never retried.
//
// Each capability set has its own entry point, checked at compile time:
//
//	user, err := dispatch.SendCached[User](ctx, d, GetUser{ID: "42"})
//
// Dispatch picks the entry point by interface assertion and returns a Result.
package dispatch
