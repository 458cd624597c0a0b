// Package api declares the descriptors and models of the user API.
//
//	client := api.NewClient(dispatcher)
//	user, err := client.User(ctx, "42")
//
// GetUserRequest is cacheable by user id and cached by default.
// GetKeywordListRequest is retryable with a budget of four retries on
// retryable transport failures, and cacheable under "keywords" when asked.
package api
