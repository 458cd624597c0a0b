package dispatch

import (
	"encoding/json"
)

// Target is the untyped half of a descriptor: where the call goes and what
// it carries.
type Target interface {
	// BaseURL is the scheme and host. Empty means the dispatcher's base URL.
	BaseURL() string
	Method() string
	Path() string
	Parameters() map[string]any
	Headers() map[string]string
}

// Request describes one API call whose response decodes into T.
// Decode reports false when the body is not a valid T; that is a parse
// failure, never retried.
type Request[T any] interface {
	Target
	Decode(data []byte) (T, bool)
}

// Endpoint supplies the defaults for a descriptor: the dispatcher's base
// URL, no parameters, no headers. Embed it and set Base to override the
// base URL for one descriptor.
type Endpoint struct {
	Base string
}

// BaseURL returns Base.
func (e Endpoint) BaseURL() string { return e.Base }

// Parameters returns no parameters.
func (Endpoint) Parameters() map[string]any { return nil }

// Headers returns no headers.
func (Endpoint) Headers() map[string]string { return nil }

// URL joins the descriptor's base URL, or fallback when it has none, with
// its path.
func URL(t Target, fallback string) string {
	base := t.BaseURL()
	if base == "" {
		base = fallback
	}
	return base + t.Path()
}

// DecodeJSON decodes data as a JSON document of T. Empty bodies and
// documents that do not match T report false.
func DecodeJSON[T any](data []byte) (T, bool) {
	var v T
	if len(data) == 0 {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}
