package shared

// Result carries the outcome of one orchestration step: either a value or
// an error, never both.
type Result[T any] struct {
	value T
	err   error
}

// Ok wraps a successful value
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Fail wraps an error
func Fail[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// ResultOf builds a Result from a conventional (value, error) pair
func ResultOf[T any](value T, err error) Result[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Ok(value)
}

// IsOk reports whether the step succeeded
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Value returns the wrapped value (zero value on failure)
func (r Result[T]) Value() T {
	return r.value
}

// Err returns the wrapped error
func (r Result[T]) Err() error {
	return r.err
}

// Unwrap returns value and error as a pair
func (r Result[T]) Unwrap() (T, error) {
	return r.value, r.err
}
