// Package options implements generic functional options.
//
// An Option mutates a configuration target and may reject the value it
// carries. Constructors collect options and run them in order with Apply,
// stopping at the first error.
package options

// Option configures a target of type T.
type Option[T any] interface {
	apply(T) error
}

// Func adapts a plain function to the Option interface.
type Func[T any] func(T) error

func (f Func[T]) apply(target T) error {
	if f == nil {
		return nil
	}

	return f(target)
}

// New wraps fn as an option that can fail.
func New[T any](fn func(T) error) Option[T] {
	return Func[T](fn)
}

// NoError wraps fn as an option that never fails.
func NoError[T any](fn func(T)) Option[T] {
	return Func[T](func(target T) error {
		fn(target)
		return nil
	})
}

// Apply runs opts against target in order. Nil options are skipped.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
