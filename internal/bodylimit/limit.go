// Package bodylimit defines the request body size policy and enforces it
// against incoming HTTP requests.
//
// The policy is a plain immutable value: either Disabled, or Enabled with a
// byte ceiling. It is registered on the application registry as a Singleton
// constructor and resolved once per request by the enforcement middleware,
// so operators configure it in one place and every route observes the same
// ceiling unless a route group overrides it.
package bodylimit

import (
	"errors"
	"fmt"
)

// DefaultMaxBytes is the documented default ceiling: 10 MiB.
const DefaultMaxBytes int64 = 10_485_760

// ErrTooLarge is returned by ReadAll when the body exceeds the ceiling.
// The HTTP layer maps it to 413 Payload Too Large.
var ErrTooLarge = errors.New("bodylimit: request body exceeds size limit")

// SizeLimit is the enforcement policy for incoming request bodies. The zero
// value is Disabled; use Enabled, Disabled or Default to construct one.
type SizeLimit struct {
	// Enabled reports whether a ceiling is enforced at all.
	Enabled bool
	// MaxBytes is the inclusive ceiling, in bytes. Only meaningful when
	// Enabled is true. A body of exactly MaxBytes is accepted.
	MaxBytes int64
}

// Enabled returns a policy enforcing the given ceiling.
func Enabled(maxBytes int64) SizeLimit {
	return SizeLimit{Enabled: true, MaxBytes: maxBytes}
}

// Disabled returns a policy that applies no limit.
func Disabled() SizeLimit {
	return SizeLimit{}
}

// Default returns the default policy: enabled, 10 MiB.
func Default() SizeLimit {
	return Enabled(DefaultMaxBytes)
}

// Allows reports whether a body of n bytes passes the policy.
func (l SizeLimit) Allows(n int64) bool {
	if !l.Enabled {
		return true
	}
	return n <= l.MaxBytes
}

// String renders the policy for logs.
func (l SizeLimit) String() string {
	if !l.Enabled {
		return "disabled"
	}
	return fmt.Sprintf("max %d bytes", l.MaxBytes)
}
