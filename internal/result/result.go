// Package result provides a tagged success-or-failure value used to chain use-case steps.
// A failed Result carries its error unchanged through every later step, and none of those
// steps' functions are invoked.
package result

// Result holds either a value or an error, never both.
type Result[T any] struct {
	value T
	err   error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail wraps a failure. A nil err is a programming error.
func Fail[T any](err error) Result[T] {
	if err == nil {
		panic("result: Fail called with nil error")
	}
	return Result[T]{err: err}
}

// From converts a conventional (value, error) pair.
func From[T any](v T, err error) Result[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Ok(v)
}

// IsOk reports whether r holds a value.
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Err returns the failure, or nil.
func (r Result[T]) Err() error {
	return r.err
}

// Unwrap converts r back to a (value, error) pair. The value is zero on failure.
func (r Result[T]) Unwrap() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}

// Then chains a step that itself returns a Result.
func Then[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return f(r.value)
}

// Try chains a conventional Go step.
func Try[T, U any](r Result[T], f func(T) (U, error)) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return From(f(r.value))
}

// Map chains a step that cannot fail.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return Ok(f(r.value))
}

// Check runs a validation step that keeps the value when it returns nil.
func Check[T any](r Result[T], f func(T) error) Result[T] {
	if r.err != nil {
		return r
	}
	if err := f(r.value); err != nil {
		return Fail[T](err)
	}
	return r
}

// Tap runs a side effect on success and passes the value through unchanged.
func Tap[T any](r Result[T], f func(T)) Result[T] {
	if r.err == nil {
		f(r.value)
	}
	return r
}
