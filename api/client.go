package api

import (
	"context"

	"github.com/kbukum/apikit/dispatch"
)

// Client exposes the user API over a dispatcher.
type Client struct {
	d *dispatch.Dispatcher
}

// NewClient creates a Client.
func NewClient(d *dispatch.Dispatcher) *Client {
	return &Client{d: d}
}

// User fetches a user, answering from the cache when possible.
func (c *Client) User(ctx context.Context, id string) (User, error) {
	return dispatch.SendCached[User](ctx, c.d, GetUserRequest{ID: id})
}

// FreshUser fetches a user without consulting the cache.
func (c *Client) FreshUser(ctx context.Context, id string) (User, error) {
	return dispatch.SendCached[User](ctx, c.d, GetUserRequest{ID: id, SkipCache: true})
}

// Keywords fetches the keyword list, retrying transient failures.
func (c *Client) Keywords(ctx context.Context, req GetKeywordListRequest) (KeywordList, error) {
	return dispatch.SendCachedRetryable[KeywordList](ctx, c.d, req)
}

// UserAsync fetches a user on a separate goroutine and calls done once.
func (c *Client) UserAsync(ctx context.Context, id string, done func(dispatch.Result[User])) {
	dispatch.DispatchAsync[User](ctx, c.d, GetUserRequest{ID: id}, done)
}
