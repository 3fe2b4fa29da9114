package registry

import (
	"context"
	"fmt"
	"reflect"
)

// KeyOf derives the capability key for type T. Interface types work the
// same way as concrete types, so a constructor may be registered under the
// interface it satisfies.
func KeyOf[T any]() Key {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Provide registers a typed constructor for T under the given lifecycle.
func Provide[T any](r *Registry, lifecycle Lifecycle, ctor func(ctx context.Context, res Resolver) (T, error)) error {
	if ctor == nil {
		return fmt.Errorf("%w: %s", ErrNilConstructor, KeyOf[T]())
	}
	return r.Register(KeyOf[T](), lifecycle, func(ctx context.Context, res Resolver) (any, error) {
		return ctor(ctx, res)
	})
}

// MustProvide is Provide for startup wiring where a failure is a programmer
// error; it panics instead of returning the error.
func MustProvide[T any](r *Registry, lifecycle Lifecycle, ctor func(ctx context.Context, res Resolver) (T, error)) {
	if err := Provide(r, lifecycle, ctor); err != nil {
		panic(fmt.Sprintf("registry: %v", err))
	}
}

// ProvideValue registers an already-constructed value for T. Only Singleton
// makes sense for a pre-built value; other lifecycles are rejected.
func ProvideValue[T any](r *Registry, value T) error {
	return Provide(r, Singleton, func(context.Context, Resolver) (T, error) {
		return value, nil
	})
}

// Resolve resolves T through res, which may be the root *Registry or a
// *Scope.
func Resolve[T any](ctx context.Context, res Resolver) (T, error) {
	var zero T
	v, err := res.Resolve(ctx, KeyOf[T]())
	if err != nil {
		return zero, err
	}
	tv, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("registry: %s constructor produced %T", KeyOf[T](), v)
	}
	return tv, nil
}
