package auth

import (
	"context"
	"strings"
	"testing"
)

func TestCredentialStore_RoundTrip(t *testing.T) {
	creds := testCreds()
	password := "correct-horse-battery-staple"

	stored, err := creds.Hash(context.Background(), password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// Record format is hex(salt):hex(key)
	salt, key, found := strings.Cut(stored, ":")
	if !found {
		t.Fatalf("stored record %q should contain a separator", stored)
	}
	if len(salt) != saltLen*2 {
		t.Errorf("salt hex length = %d, want %d", len(salt), saltLen*2)
	}
	if len(key) != scryptKeyLen*2 {
		t.Errorf("key hex length = %d, want %d", len(key), scryptKeyLen*2)
	}

	ok, err := creds.Verify(context.Background(), password, stored)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ok {
		t.Error("Verify() should return true for correct password")
	}
}

func TestCredentialStore_WrongPassword(t *testing.T) {
	creds := testCreds()

	stored, err := creds.Hash(context.Background(), "correct-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	ok, err := creds.Verify(context.Background(), "wrong-password", stored)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if ok {
		t.Error("Verify() should return false for wrong password")
	}
}

func TestCredentialStore_UniqueSalts(t *testing.T) {
	creds := testCreds()
	password := "same-password"

	h1, err := creds.Hash(context.Background(), password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := creds.Hash(context.Background(), password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password should have different salts")
	}
}

func TestCredentialStore_MalformedStored(t *testing.T) {
	creds := testCreds()

	cases := []struct {
		name   string
		stored string
	}{
		{"empty", ""},
		{"no separator", "deadbeef"},
		{"empty salt", ":deadbeef"},
		{"empty key", "deadbeef:"},
		{"non-hex salt", "zzzz:deadbeef"},
		{"non-hex key", "deadbeef:zzzz"},
		{"garbage", "not a credential record at all"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := creds.Verify(context.Background(), "any-password", tc.stored)
			if err != nil {
				t.Errorf("Verify() should not error on malformed input, got %v", err)
			}
			if ok {
				t.Error("Verify() should return false for malformed stored record")
			}
		})
	}
}

func TestCredentialStore_CancelledContext(t *testing.T) {
	// Weight 1 with the slot held: Acquire must fail with the context error.
	creds := NewCredentialStore(1)
	creds.sem.Acquire(context.Background(), 1) //nolint:errcheck // slot is free

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := creds.Hash(ctx, "password"); err == nil {
		t.Error("Hash() should fail when the context is cancelled")
	}
}
