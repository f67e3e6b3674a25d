// Package blog implements a small blog platform API: credential storage,
// JWT session tokens, role gating and draft/published post visibility.
//
// Authentication:
//   - Users are stored through the Users repository. Raw passwords are hashed
//     by a PasswordHasher at the repository boundary, only digests persist.
//   - Auther issues HS256 tokens on register/login and resolves the current
//     identity from a bearer token. Expired and invalid tokens fail with
//     distinct errors (ErrTokenExpired, ErrTokenInvalid).
//
// Authorization:
//   - Auther.Authenticate mounts the jwtware middleware on fiber routes.
//     RequireRole (and AuthorizeAdmin) must be mounted after it.
//   - Post visibility is a decision table in visibility.go. Decide returns a
//     Scope which the Posts repository applies to its WHERE clause.
//
// Activity sinks:
//   - ActivitySink receives audit events for registration, login attempts
//     and post mutations. Sinks run best-effort, errors are logged.
package blog
