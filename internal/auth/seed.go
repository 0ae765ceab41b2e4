package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
)

// seedPasswordBytes is the number of random bytes for the seed operator password.
const seedPasswordBytes = 16

// seedOperatorEmail is the first-boot HQ operator identity.
const seedOperatorEmail = "ops@atlasvoyages.local"

// SeedOperator creates the initial HQ operator account on first boot if no
// accounts exist. The generated password is logged — it must be changed
// immediately. Returns the generated password (empty if seeding was skipped).
func SeedOperator(ctx context.Context, store AccountStore, creds *CredentialStore, logger *slog.Logger) (string, error) {
	count, err := store.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("checking account count: %w", err)
	}

	if count > 0 {
		logger.Info("accounts exist, skipping operator seed")
		return "", nil
	}

	passwordBytes := make([]byte, seedPasswordBytes)
	if _, err := rand.Read(passwordBytes); err != nil { //nolint:govet // shadow: err re-declared in nested scope
		return "", fmt.Errorf("generating seed password: %w", err)
	}
	password := hex.EncodeToString(passwordBytes)

	hash, err := creds.Hash(ctx, password)
	if err != nil {
		return "", fmt.Errorf("hashing seed password: %w", err)
	}

	operator := &Account{
		Email:        seedOperatorEmail,
		PasswordHash: hash,
		Roles:        []Role{RoleHQ},
		Status:       StatusActive,
	}
	if err := store.Create(ctx, operator); err != nil {
		return "", fmt.Errorf("creating seed operator: %w", err)
	}

	logger.Warn("seed operator account created",
		"email", seedOperatorEmail,
		"password", password,
		"action_required", "change this password immediately",
	)

	return password, nil
}
