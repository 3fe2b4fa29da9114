package registry

import "context"

type scopeCtxKey struct{}

// WithScope returns a new context carrying the scope. The HTTP layer opens
// a scope per request and embeds it here so handlers and middleware resolve
// Scoped values against the right cache.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeCtxKey{}, s)
}

// ScopeFromContext extracts the scope from a context, or nil when the
// context does not carry one.
func ScopeFromContext(ctx context.Context) *Scope {
	if s, ok := ctx.Value(scopeCtxKey{}).(*Scope); ok {
		return s
	}
	return nil
}
