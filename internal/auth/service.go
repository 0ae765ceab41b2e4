package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// minPasswordLength is the minimum accepted password length at signup and
// password change.
const minPasswordLength = 10

// DefaultSessionTTL is how long issued sessions remain valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Service implements the login-side flows: signup, login, and password
// change. It is the only caller of the credential store; the Gate never
// touches passwords.
type Service struct {
	store      AccountStore
	creds      *CredentialStore
	codec      *TokenCodec
	sessionTTL time.Duration
}

// NewService wires the authentication flows. ttl <= 0 selects the default
// 7-day session lifetime.
func NewService(store AccountStore, creds *CredentialStore, codec *TokenCodec, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{store: store, creds: creds, codec: codec, sessionTTL: ttl}
}

// Login verifies credentials and mints a session token. Unknown email and
// wrong password both collapse to ErrInvalidCredentials so responses cannot
// be used to enumerate accounts. Suspended accounts are refused.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Session, error) {
	acct, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("resolving account: %w", err)
	}

	ok, err := s.creds.Verify(ctx, password, acct.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("verifying credentials: %w", err)
	}
	if !ok {
		return "", nil, ErrInvalidCredentials
	}

	if !acct.IsActive() {
		return "", nil, ErrAccountInactive
	}

	return s.issueSession(acct)
}

// Signup registers a new traveler account and logs it in.
func (s *Service) Signup(ctx context.Context, email, password string) (string, *Session, error) {
	email = NormalizeEmail(email)
	if !IsValidEmail(email) {
		return "", nil, fmt.Errorf("invalid email address")
	}
	if len(password) < minPasswordLength {
		return "", nil, ErrWeakPassword
	}

	hash, err := s.creds.Hash(ctx, password)
	if err != nil {
		return "", nil, fmt.Errorf("hashing password: %w", err)
	}

	acct := &Account{
		Email:        email,
		PasswordHash: hash,
		Roles:        []Role{RoleTraveler},
		Status:       StatusActive,
	}
	if err := s.store.Create(ctx, acct); err != nil {
		return "", nil, err
	}

	return s.issueSession(acct)
}

// CreateAccount provisions an account with an explicit role list, for the
// account-management surface. Unlike Signup it does not log the account in.
func (s *Service) CreateAccount(ctx context.Context, email, password string, roles []Role) (*Account, error) {
	email = NormalizeEmail(email)
	if !IsValidEmail(email) {
		return nil, fmt.Errorf("invalid email address")
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	if len(roles) == 0 {
		return nil, fmt.Errorf("at least one role is required")
	}
	for _, r := range roles {
		if !IsValidRole(r) {
			return nil, fmt.Errorf("unknown role %q", r)
		}
	}

	hash, err := s.creds.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	acct := &Account{
		Email:        email,
		PasswordHash: hash,
		Roles:        roles,
		Status:       StatusActive,
	}
	if err := s.store.Create(ctx, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

// ChangePassword replaces an account's credential record after verifying
// the current password.
func (s *Service) ChangePassword(ctx context.Context, accountID, current, next string) error {
	if len(next) < minPasswordLength {
		return ErrWeakPassword
	}

	acct, err := s.store.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	ok, err := s.creds.Verify(ctx, current, acct.PasswordHash)
	if err != nil {
		return fmt.Errorf("verifying current password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	hash, err := s.creds.Hash(ctx, next)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return s.store.UpdatePassword(ctx, accountID, hash)
}

// issueSession builds and signs the session payload for an account.
func (s *Service) issueSession(acct *Account) (string, *Session, error) {
	roles := make([]string, len(acct.Roles))
	for i, r := range acct.Roles {
		roles[i] = string(r)
	}

	session := &Session{
		Email:     acct.Email,
		Roles:     roles,
		ExpiresAt: time.Now().Add(s.sessionTTL).Unix(),
	}

	token, err := s.codec.Sign(*session)
	if err != nil {
		return "", nil, fmt.Errorf("signing session: %w", err)
	}
	return token, session, nil
}
