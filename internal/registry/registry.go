package registry

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
)

// Key identifies the capability a constructor provides. Keys are derived
// from Go types via KeyOf, so a capability is resolved by the type of the
// value it produces.
type Key = reflect.Type

// Constructor builds the value for a capability key. It may resolve its own
// dependencies through the provided Resolver; the resolver tracks the
// resolution path so dependency cycles are detected instead of deadlocking.
type Constructor func(ctx context.Context, res Resolver) (any, error)

// Resolver resolves a capability key to a concrete value. Both *Registry
// and *Scope implement it; constructors receive whichever one the original
// resolution started from, so Scoped dependencies stay inside their scope.
type Resolver interface {
	Resolve(ctx context.Context, key Key) (any, error)
}

// Module is the interface application modules implement to contribute
// constructors to the registry during startup.
type Module interface {
	Register(r *Registry) error
}

// Registry holds all constructor bindings for a single application instance.
type Registry struct {
	mu      sync.Mutex
	entries map[Key]*entry
	frozen  atomic.Bool
}

// New creates an empty, unfrozen Registry.
func New() *Registry {
	return &Registry{
		entries: make(map[Key]*entry),
	}
}

// Register binds a constructor to a capability key under the given
// lifecycle. Duplicate keys are rejected with ErrDuplicateKey; registering
// after Build fails with ErrFrozen. Register is only meant to be called
// during single-threaded startup, strictly before Build.
func (r *Registry) Register(key Key, lifecycle Lifecycle, ctor Constructor) error {
	if r.frozen.Load() {
		return fmt.Errorf("%w: cannot register %s", ErrFrozen, key)
	}
	if key == nil {
		return fmt.Errorf("registry: capability key must not be nil")
	}
	if ctor == nil {
		return fmt.Errorf("%w: %s", ErrNilConstructor, key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	}
	r.entries[key] = newEntry(key, lifecycle, ctor)
	return nil
}

// Build finalizes the registry. After Build the entry set is immutable and
// Resolve becomes legal; a second Build fails with ErrFrozen.
func (r *Registry) Build() error {
	if r.frozen.Swap(true) {
		return fmt.Errorf("%w: Build called twice", ErrFrozen)
	}
	return nil
}

// Built reports whether Build has been called.
func (r *Registry) Built() bool {
	return r.frozen.Load()
}

// Resolve returns the value for key. Transient keys invoke their
// constructor on every call; Singleton keys are built at most once and
// cached for the life of the registry. Scoped keys cannot be resolved on
// the root registry and fail with ErrScopedOnRoot.
func (r *Registry) Resolve(ctx context.Context, key Key) (any, error) {
	rs := &resolution{root: r, path: make(map[Key]bool)}
	return rs.Resolve(ctx, key)
}

// NewScope opens a new resolution scope for a logical request or session.
// The caller owns the scope and must Close it when the request ends.
func (r *Registry) NewScope() *Scope {
	return newScope(r)
}

// Keys returns every registered capability key, sorted by type name. This
// keeps the registry an inspectable arena rather than a hidden global.
func (r *Registry) Keys() []Key {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]Key, 0, len(r.entries))
	for key := range r.entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// LifecycleOf reports the declared lifecycle for key, and whether the key
// is registered at all.
func (r *Registry) LifecycleOf(key Key) (Lifecycle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return 0, false
	}
	return e.lifecycle, true
}

// lookup returns the entry for key, or nil when unregistered. Safe after
// Build without locking because the entry set is immutable by then; the
// lock is still taken to cover misuse during startup.
func (r *Registry) lookup(key Key) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[key]
}
