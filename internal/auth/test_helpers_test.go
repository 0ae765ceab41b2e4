package auth

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the account schema
// applied. The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "auth-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE accounts (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			status        TEXT NOT NULL DEFAULT 'active',
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL
		);

		CREATE INDEX idx_accounts_email ON accounts (email);

		CREATE TABLE account_roles (
			account_id TEXT    NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
			role       TEXT    NOT NULL,
			position   INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (account_id, role)
		);

		CREATE INDEX idx_account_roles_account ON account_roles (account_id);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("applying account schema: %v", err)
	}

	return db
}

// testCreds is a shared credential store for tests. A single instance keeps
// the scrypt work bounded across parallel tests.
func testCreds() *CredentialStore {
	return NewCredentialStore(2)
}

// testCodec returns a codec with a fixed test secret.
func testCodec(t *testing.T) *TokenCodec {
	t.Helper()

	codec, err := NewTokenCodec("test-secret-0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("creating codec: %v", err)
	}
	return codec
}

// seedTestAccount inserts an account with the given roles and returns it.
func seedTestAccount(t *testing.T, store AccountStore, email string, roles ...Role) *Account {
	t.Helper()

	hash, err := testCreds().Hash(context.Background(), "test-password-123")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	acct := &Account{
		Email:        email,
		PasswordHash: hash,
		Roles:        roles,
		Status:       StatusActive,
	}
	if err := store.Create(context.Background(), acct); err != nil {
		t.Fatalf("creating test account %s: %v", email, err)
	}
	return acct
}
