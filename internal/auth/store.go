package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AccountStore defines the interface for account persistence.
type AccountStore interface {
	Create(ctx context.Context, acct *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context) ([]Account, error)
	UpdateRoles(ctx context.Context, id string, roles []Role) error
	SetStatus(ctx context.Context, id string, status AccountStatus) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Count(ctx context.Context) (int, error)
}

// SQLiteAccountStore implements AccountStore using SQLite. Roles live in
// the account_roles table, ordered by position, so the role list embedded
// in tokens is stable across logins.
type SQLiteAccountStore struct {
	db *sql.DB
}

// NewAccountStore creates a new SQLite-backed account store.
func NewAccountStore(db *sql.DB) *SQLiteAccountStore {
	return &SQLiteAccountStore{db: db}
}

// Create inserts a new account with its roles. The ID is generated if
// empty; the email is stored lowercased.
func (s *SQLiteAccountStore) Create(ctx context.Context, acct *Account) error {
	if acct.ID == "" {
		acct.ID = "acc-" + uuid.NewString()[:8]
	}
	acct.Email = NormalizeEmail(acct.Email)
	if acct.Status == "" {
		acct.Status = StatusActive
	}

	now := time.Now().UTC().Format(time.RFC3339)
	acct.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	acct.UpdatedAt = acct.CreatedAt

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx,
		`INSERT INTO accounts (id, email, password_hash, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		acct.ID, acct.Email, acct.PasswordHash, string(acct.Status), now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("creating account: %w", err)
	}

	if err := insertRoles(ctx, tx, acct.ID, acct.Roles); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by its unique ID.
func (s *SQLiteAccountStore) GetByID(ctx context.Context, id string) (*Account, error) {
	return s.getAccount(ctx,
		"SELECT id, email, password_hash, status, created_at, updated_at FROM accounts WHERE id = ?", id)
}

// GetByEmail retrieves an account by email (case-insensitive).
func (s *SQLiteAccountStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return s.getAccount(ctx,
		"SELECT id, email, password_hash, status, created_at, updated_at FROM accounts WHERE email = ?",
		NormalizeEmail(email))
}

// List returns all accounts with their roles, ordered by creation date.
func (s *SQLiteAccountStore) List(ctx context.Context) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, email, password_hash, status, created_at, updated_at FROM accounts ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	accounts := []Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}

	for i := range accounts {
		roles, err := s.rolesOf(ctx, accounts[i].ID)
		if err != nil {
			return nil, err
		}
		accounts[i].Roles = roles
	}
	return accounts, nil
}

// UpdateRoles replaces an account's role list.
func (s *SQLiteAccountStore) UpdateRoles(ctx context.Context, id string, roles []Role) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	result, err := tx.ExecContext(ctx,
		"UPDATE accounts SET updated_at = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}
	affected, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if affected == 0 {
		return ErrAccountNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM account_roles WHERE account_id = ?", id); err != nil {
		return fmt.Errorf("clearing roles: %w", err)
	}
	if err := insertRoles(ctx, tx, id, roles); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing roles: %w", err)
	}
	return nil
}

// SetStatus changes an account's status.
func (s *SQLiteAccountStore) SetStatus(ctx context.Context, id string, status AccountStatus) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE accounts SET status = ?, updated_at = ? WHERE id = ?",
		string(status), time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}
	affected, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if affected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// UpdatePassword changes an account's credential record.
func (s *SQLiteAccountStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?",
		passwordHash, time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	affected, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if affected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// Count returns the total number of accounts.
func (s *SQLiteAccountStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting accounts: %w", err)
	}
	return count, nil
}

// getAccount executes a single-row query and attaches the role list.
func (s *SQLiteAccountStore) getAccount(ctx context.Context, query string, args ...any) (*Account, error) {
	row := s.db.QueryRowContext(ctx, query, args...)
	a, err := scanAccount(row)
	if err != nil {
		return nil, err
	}

	roles, err := s.rolesOf(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.Roles = roles
	return a, nil
}

// rolesOf returns an account's roles in assignment order.
func (s *SQLiteAccountStore) rolesOf(ctx context.Context, accountID string) ([]Role, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT role FROM account_roles WHERE account_id = ? ORDER BY position ASC", accountID)
	if err != nil {
		return nil, fmt.Errorf("querying roles: %w", err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("scanning role: %w", err)
		}
		roles = append(roles, Role(role))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating roles: %w", err)
	}
	return roles, nil
}

// insertRoles writes an ordered role list inside an open transaction.
func insertRoles(ctx context.Context, tx *sql.Tx, accountID string, roles []Role) error {
	for i, role := range roles {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO account_roles (account_id, role, position) VALUES (?, ?, ?)",
			accountID, string(role), i,
		); err != nil {
			return fmt.Errorf("inserting role %q: %w", role, err)
		}
	}
	return nil
}

// scanner is an interface over sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanAccount scans an account row (roles are loaded separately).
func scanAccount(s scanner) (*Account, error) {
	var a Account
	var status, createdAt, updatedAt string

	err := s.Scan(&a.ID, &a.Email, &a.PasswordHash, &status, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("scanning account: %w", err)
	}

	a.Status = AccountStatus(status)
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled
	return &a, nil
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
