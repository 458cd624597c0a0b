package dispatch

import "github.com/kbukum/apikit/errors"

// Result is the outcome of one dispatched request: a value or an error,
// never both.
type Result[T any] struct {
	value T
	err   error
}

// Success wraps a value.
func Success[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Failure wraps an error. A nil error is replaced so the result still fails.
func Failure[T any](err error) Result[T] {
	if err == nil {
		err = errors.New(errors.ErrCodeInvalidRequest, "failure without a cause")
	}
	return Result[T]{err: err}
}

func resultOf[T any](v T, err error) Result[T] {
	if err != nil {
		return Failure[T](err)
	}
	return Success(v)
}

// IsSuccess reports whether the result holds a value.
func (r Result[T]) IsSuccess() bool { return r.err == nil }

// Value returns the value, or the zero T on failure.
func (r Result[T]) Value() T { return r.value }

// Err returns the failure cause, or nil on success.
func (r Result[T]) Err() error { return r.err }

// Unwrap returns the value and error in Go's usual order.
func (r Result[T]) Unwrap() (T, error) { return r.value, r.err }
