// Package registry provides the central dependency registry for an
// application instance.
//
// The Registry binds capability keys (Go types) to constructor functions,
// each with a declared Lifecycle. During startup the registry is populated
// by modules, then frozen with Build. After Build it is read-only and safe
// for concurrent resolution from any number of request-handling goroutines:
// Transient values are rebuilt per call, Singleton values are built exactly
// once behind a build-state gate, and Scoped values are cached per Scope
// and released when the scope closes.
//
// Populating the registry after Build, resolving before Build, or resolving
// a key that was never registered are wiring defects and fail with sentinel
// errors rather than panicking, so they surface cleanly in startup code and
// tests.
package registry
