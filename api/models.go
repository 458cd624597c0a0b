package api

import (
	"github.com/kbukum/apikit/dispatch"
	"github.com/kbukum/apikit/validation"
)

// User is the body of GET /v1/user/{id}.
type User struct {
	Name string `json:"name" validate:"required"`
}

// KeywordList is the body of GET /v1/keywords.
type KeywordList struct {
	Count    int      `json:"count" validate:"gte=0"`
	Keywords []string `json:"keywords"`
}

// decode parses a JSON body and rejects documents that fail the model's
// validate tags.
func decode[T any](data []byte) (T, bool) {
	v, ok := dispatch.DecodeJSON[T](data)
	if !ok {
		return v, false
	}
	if err := validation.Validate(&v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}
