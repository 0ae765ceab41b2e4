package api

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/atlasvoyages/atlas-core/internal/audit"
	"github.com/atlasvoyages/atlas-core/internal/auth"
	"github.com/atlasvoyages/atlas-core/internal/infrastructure/config"
	"github.com/atlasvoyages/atlas-core/internal/infrastructure/logging"
)

const testSecret = "api-test-secret-0123456789abcdef012345"

// testEnv bundles the wired server and its collaborators for handler tests.
type testEnv struct {
	handler http.Handler
	db      *sql.DB
	codec   *auth.TokenCodec
	store   auth.AccountStore
	service *auth.Service
	audit   audit.Repository
}

// newTestEnv builds a full server on a temp SQLite database. The preview
// allow-list contains ops@atlasvoyages.com only.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	f, err := os.CreateTemp("", "api-test-*.db")
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

		CREATE TABLE account_roles (
			account_id TEXT    NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
			role       TEXT    NOT NULL,
			position   INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (account_id, role)
		);

		CREATE TABLE audit_logs (
			id         TEXT PRIMARY KEY,
			action     TEXT NOT NULL,
			account_id TEXT,
			email      TEXT,
			details    TEXT,
			created_at TEXT NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("applying schema: %v", err)
	}

	codec, err := auth.NewTokenCodec(testSecret)
	if err != nil {
		t.Fatalf("creating codec: %v", err)
	}
	eval, err := auth.NewEvaluator(auth.DefaultPermissionTable())
	if err != nil {
		t.Fatalf("creating evaluator: %v", err)
	}

	store := auth.NewAccountStore(db)
	creds := auth.NewCredentialStore(2)
	policy := auth.NewPreviewPolicy([]string{"ops@atlasvoyages.com"}, nil)
	gate := auth.NewGate(codec, eval, policy, store)
	service := auth.NewService(store, creds, codec, time.Hour)
	auditRepo := audit.NewSQLiteRepository(db)

	logger := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"}, "test")

	srv, err := New(Deps{
		Config:   config.APIConfig{Host: "127.0.0.1", Port: 8080},
		Logger:   logger,
		Gate:     gate,
		Service:  service,
		Accounts: store,
		Audit:    auditRepo,
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}

	return &testEnv{
		handler: srv.buildRouter(),
		db:      db,
		codec:   codec,
		store:   store,
		service: service,
		audit:   auditRepo,
	}
}

// createAccount provisions an account with a known password.
func (env *testEnv) createAccount(t *testing.T, email string, roles ...auth.Role) *auth.Account {
	t.Helper()

	acct, err := env.service.CreateAccount(context.Background(), email, "test-password-123", roles)
	if err != nil {
		t.Fatalf("creating account %s: %v", email, err)
	}
	return acct
}

// mintToken signs a session token for the given identity.
func (env *testEnv) mintToken(t *testing.T, email string, roles ...string) string {
	t.Helper()

	token, err := env.codec.Sign(auth.Session{
		Email:     email,
		Roles:     roles,
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

// do executes a request against the router, attaching the session and
// optional preview cookies.
func (env *testEnv) do(t *testing.T, method, path, body, token, previewRole string) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		r.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	}
	if previewRole != "" {
		r.AddCookie(&http.Cookie{Name: auth.PreviewCookieName, Value: previewRole})
	}

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, r)
	return w
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/health", "", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", w.Code)
	}
}

func TestNew_RequiredDeps(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Error("New() should reject missing dependencies")
	}
}
