package audit

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "audit-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE audit_logs (
			id         TEXT PRIMARY KEY,
			action     TEXT NOT NULL,
			account_id TEXT,
			email      TEXT,
			details    TEXT,
			created_at TEXT NOT NULL
		);

		CREATE INDEX idx_audit_logs_action ON audit_logs (action);
		CREATE INDEX idx_audit_logs_account ON audit_logs (account_id);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("applying audit schema: %v", err)
	}

	return db
}

func TestRepository_CreateAndList(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))

	entry := &Entry{
		Action:    ActionLogin,
		AccountID: "acc-123",
		Email:     "agent@example.com",
		Details:   map[string]any{"request_id": "req-1"},
	}
	if err := repo.Create(context.Background(), entry); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if entry.ID == "" {
		t.Error("Create() should generate an ID")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("Create() should set CreatedAt")
	}

	result, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 1 || len(result.Entries) != 1 {
		t.Fatalf("List() total = %d, entries = %d; want 1, 1", result.Total, len(result.Entries))
	}

	got := result.Entries[0]
	if got.Action != ActionLogin || got.Email != "agent@example.com" {
		t.Errorf("entry = %+v", got)
	}
	if got.Details["request_id"] != "req-1" {
		t.Errorf("details = %v, want request_id preserved", got.Details)
	}
}

func TestRepository_ListFilters(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))

	entries := []Entry{
		{Action: ActionLogin, AccountID: "acc-1", Email: "a@example.com"},
		{Action: ActionLoginFailed, Email: "a@example.com"},
		{Action: ActionAccessDenied, AccountID: "acc-2", Email: "b@example.com"},
		{Action: ActionPreviewGranted, AccountID: "acc-1", Email: "a@example.com"},
	}
	for i := range entries {
		if err := repo.Create(context.Background(), &entries[i]); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	byAction, err := repo.List(context.Background(), Filter{Action: ActionAccessDenied})
	if err != nil {
		t.Fatalf("List(action) error = %v", err)
	}
	if byAction.Total != 1 || byAction.Entries[0].Action != ActionAccessDenied {
		t.Errorf("List(action) = %+v", byAction)
	}

	byAccount, err := repo.List(context.Background(), Filter{AccountID: "acc-1"})
	if err != nil {
		t.Fatalf("List(account) error = %v", err)
	}
	if byAccount.Total != 2 {
		t.Errorf("List(account) total = %d, want 2", byAccount.Total)
	}

	both, err := repo.List(context.Background(), Filter{Action: ActionLogin, AccountID: "acc-1"})
	if err != nil {
		t.Fatalf("List(both) error = %v", err)
	}
	if both.Total != 1 {
		t.Errorf("List(both) total = %d, want 1", both.Total)
	}
}

func TestRepository_ListPagination(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))

	for i := 0; i < 5; i++ {
		if err := repo.Create(context.Background(), &Entry{Action: ActionLogin}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	page, err := repo.List(context.Background(), Filter{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Total != 5 || len(page.Entries) != 2 {
		t.Errorf("page: total = %d, entries = %d; want 5, 2", page.Total, len(page.Entries))
	}

	// Limit is clamped to the maximum page size
	clamped, err := repo.List(context.Background(), Filter{Limit: 10000})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if clamped.Limit != 200 {
		t.Errorf("limit = %d, want clamped to 200", clamped.Limit)
	}
}

func TestRepository_ListEmpty(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))

	result, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Entries == nil {
		t.Error("List() should return an empty slice, not nil")
	}
	if result.Total != 0 {
		t.Errorf("total = %d, want 0", result.Total)
	}
}
