package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
	"golang.org/x/sync/semaphore"
)

// scrypt cost parameters. These are a deliberate performance/security
// trade-off and must not be tuned down for latency — bound concurrency
// instead (see CredentialStore).
const (
	scryptN      = 1 << 14 // CPU/memory cost
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16

	// credentialSeparator joins hex(salt) and hex(derived key) in the
	// stored record.
	credentialSeparator = ":"

	// defaultMaxConcurrentKDF caps simultaneous scrypt derivations when no
	// limit is configured.
	defaultMaxConcurrentKDF = 4
)

// CredentialStore hashes and verifies passwords with scrypt. A weighted
// semaphore bounds concurrent derivations so adversarial login traffic
// cannot starve unrelated request handling.
type CredentialStore struct {
	sem *semaphore.Weighted
}

// NewCredentialStore creates a credential store allowing at most
// maxConcurrent simultaneous derivations (<= 0 selects the default).
func NewCredentialStore(maxConcurrent int64) *CredentialStore {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentKDF
	}
	return &CredentialStore{sem: semaphore.NewWeighted(maxConcurrent)}
}

// Hash derives a storable credential record "hex(salt):hex(key)" from a
// password using a fresh random salt.
func (cs *CredentialStore) Hash(ctx context.Context, password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key, err := cs.derive(ctx, password, salt)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(salt) + credentialSeparator + hex.EncodeToString(key), nil
}

// Verify re-derives the key for password under the stored salt and compares
// in constant time. Malformed stored records yield (false, nil) — Verify
// never errors on attacker-controlled or corrupt input. The only error
// paths are context cancellation while waiting for a derivation slot.
func (cs *CredentialStore) Verify(ctx context.Context, password, stored string) (bool, error) {
	saltHex, keyHex, found := strings.Cut(stored, credentialSeparator)
	if !found || saltHex == "" || keyHex == "" {
		return false, nil
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false, nil
	}
	want, err := hex.DecodeString(keyHex)
	if err != nil {
		return false, nil
	}

	got, err := cs.derive(ctx, password, salt)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// derive runs scrypt under the concurrency limit.
func (cs *CredentialStore) derive(ctx context.Context, password string, salt []byte) ([]byte, error) {
	if err := cs.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for derivation slot: %w", err)
	}
	defer cs.sem.Release(1)

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	return key, nil
}
