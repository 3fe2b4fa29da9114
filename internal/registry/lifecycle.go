package registry

// Lifecycle declares the caching discipline for a constructed value.
type Lifecycle int

const (
	// Transient values are rebuilt on every resolution and never cached.
	Transient Lifecycle = iota
	// Scoped values are built once per Scope and discarded when it closes.
	Scoped
	// Singleton values are built once and shared for the life of the Registry.
	Singleton
)

// String returns the lowercase name of the lifecycle.
func (l Lifecycle) String() string {
	switch l {
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	case Singleton:
		return "singleton"
	default:
		return "unknown"
	}
}
