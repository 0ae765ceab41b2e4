package auth

import (
	"errors"
	"strings"
	"time"
)

// maxEmailLength is the maximum accepted email address length (RFC 5321).
const maxEmailLength = 254

// AccountStatus describes whether an account may log in.
type AccountStatus string

const (
	// StatusActive accounts may log in and hold sessions.
	StatusActive AccountStatus = "active"

	// StatusSuspended accounts are refused at login. Already-issued tokens
	// remain valid until expiry (sessions are stateless), but preview
	// authority is re-checked per request and dies immediately.
	StatusSuspended AccountStatus = "suspended"
)

// Account is a persisted user account resolved from the account store.
type Account struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"` // never serialised
	Roles        []Role        `json:"roles"`
	Status       AccountStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// IsActive reports whether the account may authenticate.
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// Session is the payload embedded in a signed session token.
// It is constructed once at login/signup, immutable, and never persisted
// server-side — it exists only inside the token held by the client.
type Session struct {
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	ExpiresAt int64    `json:"exp"`
}

// NormalizeEmail lowercases and trims an email for case-insensitive identity.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail performs a minimal structural check on an email address.
// Real deliverability is the account store's concern; this only rejects
// obviously malformed input.
func IsValidEmail(email string) bool {
	if email == "" || len(email) > maxEmailLength {
		return false
	}
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}

// Sentinel errors for auth operations.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountInactive    = errors.New("account is suspended")
	ErrEmailExists        = errors.New("email already registered")
	ErrTokenInvalid       = errors.New("invalid session token")
	ErrWeakPassword       = errors.New("password does not meet minimum length")
)
