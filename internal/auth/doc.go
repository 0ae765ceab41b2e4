// Package auth implements the session-authentication and authorisation gate
// for Atlas Core.
//
// It provides:
//   - Stateless HMAC-signed session tokens (no server-side session storage)
//   - scrypt password hashing with bounded concurrent derivation
//   - Role-based permission evaluation over an injectable permission table
//   - An allow-list-gated "preview as another role" mechanism for trusted
//     operator accounts
//   - A single request-authorisation entry point (Gate) composing the above
//
// Sessions are bearer credentials: a structurally and cryptographically
// valid, non-expired token is equivalent to authentication as the embedded
// email and roles. There is no revocation list; tokens simply expire.
package auth
