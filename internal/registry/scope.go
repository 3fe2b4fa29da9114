package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Scope caches Scoped values for one logical request or session. Scopes
// share the root registry's entries and singleton cache but keep their own
// instance cache, isolated from every other scope. A scope is owned by the
// request that opened it and must be closed when the request ends so its
// cache is released.
type Scope struct {
	id   string
	root *Registry

	mu     sync.Mutex
	cache  map[Key]any
	closed bool
}

func newScope(root *Registry) *Scope {
	return &Scope{
		id:    uuid.NewString(),
		root:  root,
		cache: make(map[Key]any),
	}
}

// ID returns the unique identifier of this scope.
func (s *Scope) ID() string {
	return s.id
}

// Resolve returns the value for key. Singleton keys read the root
// registry's cache; Scoped keys are cached in this scope; Transient keys
// are rebuilt per call. Resolving on a closed scope fails with
// ErrScopeClosed.
func (s *Scope) Resolve(ctx context.Context, key Key) (any, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("%w: resolve %s", ErrScopeClosed, key)
	}
	rs := &resolution{root: s.root, scope: s, path: make(map[Key]bool)}
	return rs.Resolve(ctx, key)
}

// Close releases the scope's cache and marks it unusable. Close is
// idempotent.
func (s *Scope) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cache = nil
}

// resolveScoped returns the scope-cached value for e, constructing it on
// first access. The scope lock is not held across construction so that a
// constructor may resolve further Scoped dependencies on the same scope.
// Scopes are owned by a single logical request, so two concurrent first
// resolutions of the same key inside one scope are not expected; should it
// happen anyway, the first cached value wins.
func (s *Scope) resolveScoped(ctx context.Context, e *entry, rs *resolution) (any, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: resolve %s", ErrScopeClosed, e.key)
	}
	if v, ok := s.cache[e.key]; ok {
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	v, err := e.construct(ctx, rs)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("%w: resolve %s", ErrScopeClosed, e.key)
	}
	if prior, ok := s.cache[e.key]; ok {
		return prior, nil
	}
	s.cache[e.key] = v
	return v, nil
}
