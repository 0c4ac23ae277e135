package signal

// Void is the result type of signals whose callbacks return nothing useful.
type Void = struct{}

// Signal0 is a signal for callbacks without arguments.
type Signal0[R any] struct {
	Signal[func() R, R]
}

func New0[R any]() *Signal0[R] {
	return &Signal0[R]{}
}

// Emit calls every unlocked callback and returns the result of the last one.
// See Signal.Dispatch.
func (s *Signal0[R]) Emit() R {
	return s.Dispatch(func(fn func() R) R {
		return fn()
	})
}

func (s *Signal0[R]) EmitCollect() []R {
	return s.Collect(func(fn func() R) R {
		return fn()
	})
}

// EmitAggregate calls every unlocked callback and reduces their results
// with agg.
func (s *Signal0[R]) EmitAggregate(agg func([]R) R) R {
	return agg(s.EmitCollect())
}

// Signal1 is a signal for callbacks with one argument.
type Signal1[A, R any] struct {
	Signal[func(A) R, R]
}

func New1[A, R any]() *Signal1[A, R] {
	return &Signal1[A, R]{}
}

// Emit calls every unlocked callback with a and returns the result of the
// last one. See Signal.Dispatch.
func (s *Signal1[A, R]) Emit(a A) R {
	return s.Dispatch(func(fn func(A) R) R {
		return fn(a)
	})
}

func (s *Signal1[A, R]) EmitCollect(a A) []R {
	return s.Collect(func(fn func(A) R) R {
		return fn(a)
	})
}

// EmitAggregate calls every unlocked callback with a and reduces their
// results with agg.
func (s *Signal1[A, R]) EmitAggregate(a A, agg func([]R) R) R {
	return agg(s.EmitCollect(a))
}

// Signal2 is a signal for callbacks with two arguments.
type Signal2[A, B, R any] struct {
	Signal[func(A, B) R, R]
}

func New2[A, B, R any]() *Signal2[A, B, R] {
	return &Signal2[A, B, R]{}
}

func (s *Signal2[A, B, R]) Emit(a A, b B) R {
	return s.Dispatch(func(fn func(A, B) R) R {
		return fn(a, b)
	})
}

func (s *Signal2[A, B, R]) EmitCollect(a A, b B) []R {
	return s.Collect(func(fn func(A, B) R) R {
		return fn(a, b)
	})
}

func (s *Signal2[A, B, R]) EmitAggregate(a A, b B, agg func([]R) R) R {
	return agg(s.EmitCollect(a, b))
}

// Signal3 is a signal for callbacks with three arguments. Signals with more
// arguments use Signal directly with their own trampoline.
type Signal3[A, B, C, R any] struct {
	Signal[func(A, B, C) R, R]
}

func New3[A, B, C, R any]() *Signal3[A, B, C, R] {
	return &Signal3[A, B, C, R]{}
}

func (s *Signal3[A, B, C, R]) Emit(a A, b B, c C) R {
	return s.Dispatch(func(fn func(A, B, C) R) R {
		return fn(a, b, c)
	})
}

func (s *Signal3[A, B, C, R]) EmitCollect(a A, b B, c C) []R {
	return s.Collect(func(fn func(A, B, C) R) R {
		return fn(a, b, c)
	})
}

func (s *Signal3[A, B, C, R]) EmitAggregate(a A, b B, c C, agg func([]R) R) R {
	return agg(s.EmitCollect(a, b, c))
}
