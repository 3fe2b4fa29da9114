package registry

import (
	"context"
	"fmt"
	"strings"
)

// resolution is the state for a single top-level Resolve call. It carries
// the originating scope (nil when resolving on the root registry) and the
// set of keys currently being constructed, so that constructors which pull
// in their own dependencies reuse the same path tracking and cycles are
// reported instead of deadlocking on an entry gate.
type resolution struct {
	root  *Registry
	scope *Scope
	path  map[Key]bool
	chain []Key
}

// Resolve implements Resolver for an in-flight resolution.
func (rs *resolution) Resolve(ctx context.Context, key Key) (any, error) {
	if !rs.root.frozen.Load() {
		return nil, fmt.Errorf("%w: resolve %s", ErrNotBuilt, key)
	}

	e := rs.root.lookup(key)
	if e == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	if rs.path[key] {
		return nil, fmt.Errorf("%w: %s", ErrCycle, rs.chainString(key))
	}
	rs.path[key] = true
	rs.chain = append(rs.chain, key)
	defer func() {
		delete(rs.path, key)
		rs.chain = rs.chain[:len(rs.chain)-1]
	}()

	switch e.lifecycle {
	case Transient:
		return e.construct(ctx, rs)

	case Singleton:
		return e.buildOnce(ctx, rs)

	case Scoped:
		if rs.scope == nil {
			return nil, fmt.Errorf("%w: %s", ErrScopedOnRoot, key)
		}
		return rs.scope.resolveScoped(ctx, e, rs)

	default:
		return nil, fmt.Errorf("registry: %s has unknown lifecycle %d", key, e.lifecycle)
	}
}

func (rs *resolution) chainString(repeated Key) string {
	parts := make([]string, 0, len(rs.chain)+1)
	for _, k := range rs.chain {
		parts = append(parts, k.String())
	}
	parts = append(parts, repeated.String())
	return strings.Join(parts, " -> ")
}
