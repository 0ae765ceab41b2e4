package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Token wire format: base64url(JSON payload) + "." + hex(HMAC-SHA256).
// The two-segment shape is a compatibility contract with already-issued
// tokens; field count and non-emptiness are validated before any decoding.
const tokenSeparator = "."

// TokenCodec signs and verifies compact, tamper-evident session tokens.
// It holds only the process-wide signing secret and is safe for concurrent
// use.
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec creates a codec from the signing secret. An empty secret is
// a configuration error: callers must resolve the dev/prod distinction
// before construction (config.Validate crashes fast in production; main
// generates an ephemeral secret with a loud warning in development).
// Signature checking is never disabled.
func NewTokenCodec(secret string) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("session signing secret is required")
	}
	return &TokenCodec{secret: []byte(secret)}, nil
}

// Sign serialises and signs a session payload. Deterministic for identical
// payload and secret (acceptable: exp differs across issuances).
func (c *TokenCodec) Sign(s Session) (string, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	data := base64.RawURLEncoding.EncodeToString(payload)
	return data + tokenSeparator + c.mac(data), nil
}

// Verify checks a token's structure, signature, and expiry, returning the
// embedded session. Malformed, tampered, and expired tokens all fail with
// the single sentinel ErrTokenInvalid — callers cannot distinguish why a
// token was rejected. Verify never panics on attacker-controlled input.
func (c *TokenCodec) Verify(token string) (*Session, error) {
	parts := strings.Split(token, tokenSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, ErrTokenInvalid
	}

	// Constant-time signature comparison: never short-circuit, to avoid
	// timing side channels against the MAC.
	expected := c.mac(parts[0])
	if subtle.ConstantTimeCompare([]byte(expected), []byte(parts[1])) != 1 {
		return nil, ErrTokenInvalid
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrTokenInvalid
	}

	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, ErrTokenInvalid
	}
	if s.Email == "" || len(s.Roles) == 0 {
		return nil, ErrTokenInvalid
	}
	if s.ExpiresAt <= time.Now().Unix() {
		return nil, ErrTokenInvalid
	}

	return &s, nil
}

// mac computes the keyed MAC over the encoded payload segment.
func (c *TokenCodec) mac(data string) string {
	h := hmac.New(sha256.New, c.secret)
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
