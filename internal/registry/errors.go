package registry

import "errors"

var (
	// ErrDuplicateKey is returned when a capability key is registered twice.
	// Registration is strictly reject-on-duplicate; there is no last-wins mode.
	ErrDuplicateKey = errors.New("registry: capability key already registered")

	// ErrFrozen is returned when Register or Build is called after Build.
	ErrFrozen = errors.New("registry: registry is frozen")

	// ErrNotBuilt is returned when a value is resolved before Build.
	ErrNotBuilt = errors.New("registry: registry has not been built")

	// ErrUnknownKey is returned when resolving a key that was never registered.
	ErrUnknownKey = errors.New("registry: unknown capability key")

	// ErrNilConstructor is returned when a nil constructor is registered.
	ErrNilConstructor = errors.New("registry: constructor must not be nil")

	// ErrScopedOnRoot is returned when a Scoped key is resolved directly on
	// the root registry instead of through a Scope.
	ErrScopedOnRoot = errors.New("registry: scoped key resolved without a scope")

	// ErrScopeClosed is returned when resolving through a closed Scope.
	ErrScopeClosed = errors.New("registry: scope is closed")

	// ErrCycle is returned when constructors form a dependency cycle.
	ErrCycle = errors.New("registry: circular dependency detected")
)
