package api

import (
	"net/http"
	"net/url"

	"github.com/kbukum/apikit/dispatch"
	"github.com/kbukum/apikit/httpclient"
)

// KeywordsCacheKey is where a keyword list is looked up.
const KeywordsCacheKey = "keywords"

// KeywordsMaxRetries is the retry budget of GetKeywordListRequest.
const KeywordsMaxRetries = 4

// GetUserRequest fetches one user.
type GetUserRequest struct {
	dispatch.Endpoint
	ID string
	// SkipCache forces a network call.
	SkipCache bool
}

var _ dispatch.CacheableRequest[User] = GetUserRequest{}

func (r GetUserRequest) Method() string { return http.MethodGet }

func (r GetUserRequest) Path() string { return "/v1/user/" + url.PathEscape(r.ID) }

func (r GetUserRequest) Decode(data []byte) (User, bool) { return decode[User](data) }

func (r GetUserRequest) CacheEnabled() bool { return !r.SkipCache }

func (r GetUserRequest) CacheKey() string { return r.ID }

// GetKeywordListRequest fetches the keyword list.
type GetKeywordListRequest struct {
	dispatch.Endpoint
	// Limit caps the number of keywords returned. Zero means the server default.
	Limit int
	// UseCache allows answering from the cache.
	UseCache bool
}

var _ dispatch.CacheableRetryableRequest[KeywordList] = GetKeywordListRequest{}

func (r GetKeywordListRequest) Method() string { return http.MethodGet }

func (r GetKeywordListRequest) Path() string { return "/v1/keywords" }

func (r GetKeywordListRequest) Parameters() map[string]any {
	if r.Limit <= 0 {
		return nil
	}
	return map[string]any{"limit": r.Limit}
}

func (r GetKeywordListRequest) Decode(data []byte) (KeywordList, bool) {
	return decode[KeywordList](data)
}

func (r GetKeywordListRequest) CacheEnabled() bool { return r.UseCache }

func (r GetKeywordListRequest) CacheKey() string { return KeywordsCacheKey }

func (r GetKeywordListRequest) MaxRetryCount() int { return KeywordsMaxRetries }

// CanRetry retries timeouts, connection failures, 429 and 5xx.
func (r GetKeywordListRequest) CanRetry(err error) bool { return httpclient.IsRetryable(err) }
