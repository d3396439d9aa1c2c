package specs

import (
	"context"
)

// Specification is a composable predicate over domain records.
// Evaluation stops early once ctx is done; a cancelled spec is never satisfied.
type Specification[T any] interface {
	IsSatisfiedBy(ctx context.Context, v T) bool
	And(other Specification[T]) Specification[T]
	Or(other Specification[T]) Specification[T]
	Not() Specification[T]
}

type specFunc[T any] func(ctx context.Context, v T) bool

func (f specFunc[T]) IsSatisfiedBy(ctx context.Context, v T) bool {
	if ctx.Err() != nil {
		return false
	}
	return f(ctx, v)
}

func (f specFunc[T]) And(other Specification[T]) Specification[T] {
	return specFunc[T](func(ctx context.Context, v T) bool {
		return f.IsSatisfiedBy(ctx, v) && other.IsSatisfiedBy(ctx, v)
	})
}

func (f specFunc[T]) Or(other Specification[T]) Specification[T] {
	return specFunc[T](func(ctx context.Context, v T) bool {
		return f.IsSatisfiedBy(ctx, v) || other.IsSatisfiedBy(ctx, v)
	})
}

func (f specFunc[T]) Not() Specification[T] {
	return specFunc[T](func(ctx context.Context, v T) bool {
		if ctx.Err() != nil {
			return false
		}
		return !f(ctx, v)
	})
}

// New constructs a Specification from a predicate.
func New[T any](fn func(ctx context.Context, v T) bool) Specification[T] { return specFunc[T](fn) }

// Any is satisfied by every value.
func Any[T any]() Specification[T] {
	return New(func(context.Context, T) bool { return true })
}

// All combines specs with And. An empty list behaves like Any.
func All[T any](list ...Specification[T]) Specification[T] {
	out := Any[T]()
	for _, s := range list {
		if s != nil {
			out = out.And(s)
		}
	}
	return out
}

// Filter returns the items satisfying spec, preserving order.
func Filter[T any](ctx context.Context, spec Specification[T], items []T) []T {
	if spec == nil {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if spec.IsSatisfiedBy(ctx, it) {
			out = append(out, it)
		}
	}
	return out
}
