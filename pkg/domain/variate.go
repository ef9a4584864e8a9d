package domain

// DefaultResult is the Variate key used when no variation-specific result matches.
const DefaultResult = "default"

// Result is either a plain value or a lazily computed one.
type Result[T any] struct {
	value T
	lazy  func() T
}

// Value wraps a plain result.
func Value[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Lazy wraps a result computed on every evaluation. No memoization is applied.
func Lazy[T any](fn func() T) Result[T] {
	return Result[T]{lazy: fn}
}

// IsLazy reports whether the result is computed on evaluation.
func (r Result[T]) IsLazy() bool {
	return r.lazy != nil
}

// Get evaluates the result.
func (r Result[T]) Get() T {
	if r.lazy != nil {
		return r.lazy()
	}
	return r.value
}

// Variate selects the result for the given variation by name, falling back to
// the "default" entry. A nil variation always selects the default.
// If neither matches, the zero value of T is returned.
func Variate[T any](results map[string]Result[T], variation *Variation) T {
	result, ok := results[DefaultResult]
	if variation != nil {
		if r, found := results[variation.Name]; found {
			result, ok = r, true
		}
	}
	if !ok {
		var zero T
		return zero
	}
	return result.Get()
}
