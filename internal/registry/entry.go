package registry

import (
	"context"
	"fmt"
	"sync"
)

// buildState tracks the cached-instance state machine for Singleton
// entries: notBuilt -> building -> built, with built terminal. A failed
// construction reverts to notBuilt so a later resolution may retry.
type buildState int

const (
	stateNotBuilt buildState = iota
	stateBuilding
	stateBuilt
)

// entry binds a capability key to its constructor and lifecycle, plus the
// singleton instance cache. Entries are created during registration and
// never mutated after Build, except for the guarded cache fields.
type entry struct {
	key       Key
	lifecycle Lifecycle
	ctor      Constructor

	// Singleton cache. mu guards state and value; cond wakes goroutines
	// that observed stateBuilding while another goroutine constructs.
	mu    sync.Mutex
	cond  *sync.Cond
	state buildState
	value any
}

func newEntry(key Key, lifecycle Lifecycle, ctor Constructor) *entry {
	e := &entry{key: key, lifecycle: lifecycle, ctor: ctor}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// construct invokes the constructor without caching. Used for Transient and
// Scoped resolutions, where caching is the caller's concern.
func (e *entry) construct(ctx context.Context, res Resolver) (any, error) {
	v, err := e.ctor(ctx, res)
	if err != nil {
		return nil, fmt.Errorf("registry: constructing %s: %w", e.key, err)
	}
	return v, nil
}

// buildOnce returns the singleton value, constructing it at most once even
// under concurrent first access. A goroutine that observes stateBuilding
// blocks until the builder finishes, then reads the cached value. If the
// builder fails, the state reverts to notBuilt: the error is returned to
// the builder, and any waiter takes over as the next builder, so transient
// construction failures are retryable rather than poisoning the entry.
func (e *entry) buildOnce(ctx context.Context, res Resolver) (any, error) {
	e.mu.Lock()
	for {
		switch e.state {
		case stateBuilt:
			v := e.value
			e.mu.Unlock()
			return v, nil

		case stateBuilding:
			e.cond.Wait()

		case stateNotBuilt:
			e.state = stateBuilding
			e.mu.Unlock()

			v, err := e.ctor(ctx, res)

			e.mu.Lock()
			if err != nil {
				e.state = stateNotBuilt
				e.cond.Broadcast()
				e.mu.Unlock()
				return nil, fmt.Errorf("registry: constructing %s: %w", e.key, err)
			}
			e.state = stateBuilt
			e.value = v
			e.cond.Broadcast()
			e.mu.Unlock()
			return v, nil
		}
	}
}
