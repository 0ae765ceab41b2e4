package auth

import (
	"context"
	"errors"
	"testing"
)

func TestAccountStore_CreateAndGet(t *testing.T) {
	store := NewAccountStore(testDB(t))

	acct := seedTestAccount(t, store, "Broker@Example.COM", RoleYachtBroker)

	if acct.ID == "" {
		t.Error("Create() should generate an ID")
	}
	if acct.Email != "broker@example.com" {
		t.Errorf("email = %q, want lowercased", acct.Email)
	}

	byID, err := store.GetByID(context.Background(), acct.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if byID.Email != "broker@example.com" {
		t.Errorf("GetByID email = %q", byID.Email)
	}
	if len(byID.Roles) != 1 || byID.Roles[0] != RoleYachtBroker {
		t.Errorf("roles = %v, want [yacht_broker]", byID.Roles)
	}

	// Lookup is case-insensitive
	byEmail, err := store.GetByEmail(context.Background(), "BROKER@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if byEmail.ID != acct.ID {
		t.Errorf("GetByEmail ID = %q, want %q", byEmail.ID, acct.ID)
	}
}

func TestAccountStore_GetMissing(t *testing.T) {
	store := NewAccountStore(testDB(t))

	if _, err := store.GetByID(context.Background(), "acc-nope"); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrAccountNotFound", err)
	}
	if _, err := store.GetByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("GetByEmail(missing) error = %v, want ErrAccountNotFound", err)
	}
}

func TestAccountStore_DuplicateEmail(t *testing.T) {
	store := NewAccountStore(testDB(t))
	seedTestAccount(t, store, "dup@example.com", RoleTraveler)

	err := store.Create(context.Background(), &Account{
		Email:        "DUP@example.com",
		PasswordHash: "irrelevant",
		Roles:        []Role{RoleTraveler},
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("Create(duplicate) error = %v, want ErrEmailExists", err)
	}
}

func TestAccountStore_RoleOrderPreserved(t *testing.T) {
	store := NewAccountStore(testDB(t))

	acct := seedTestAccount(t, store, "multi@example.com",
		RolePartnerOwner, RoleYachtBroker, RoleTravelAgent)

	got, err := store.GetByID(context.Background(), acct.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	want := []Role{RolePartnerOwner, RoleYachtBroker, RoleTravelAgent}
	if len(got.Roles) != len(want) {
		t.Fatalf("roles = %v, want %v", got.Roles, want)
	}
	for i := range want {
		if got.Roles[i] != want[i] {
			t.Errorf("roles[%d] = %q, want %q", i, got.Roles[i], want[i])
		}
	}
}

func TestAccountStore_UpdateRoles(t *testing.T) {
	store := NewAccountStore(testDB(t))
	acct := seedTestAccount(t, store, "promote@example.com", RoleTraveler)

	if err := store.UpdateRoles(context.Background(), acct.ID, []Role{RoleTravelAgent, RoleTraveler}); err != nil {
		t.Fatalf("UpdateRoles() error = %v", err)
	}

	got, err := store.GetByID(context.Background(), acct.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(got.Roles) != 2 || got.Roles[0] != RoleTravelAgent || got.Roles[1] != RoleTraveler {
		t.Errorf("roles = %v, want [travel_agent traveler]", got.Roles)
	}

	if err := store.UpdateRoles(context.Background(), "acc-nope", []Role{RoleTraveler}); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("UpdateRoles(missing) error = %v, want ErrAccountNotFound", err)
	}
}

func TestAccountStore_SetStatus(t *testing.T) {
	store := NewAccountStore(testDB(t))
	acct := seedTestAccount(t, store, "suspend@example.com", RoleTraveler)

	if err := store.SetStatus(context.Background(), acct.ID, StatusSuspended); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}

	got, err := store.GetByID(context.Background(), acct.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != StatusSuspended || got.IsActive() {
		t.Errorf("status = %q, want suspended", got.Status)
	}

	if err := store.SetStatus(context.Background(), "acc-nope", StatusActive); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("SetStatus(missing) error = %v, want ErrAccountNotFound", err)
	}
}

func TestAccountStore_UpdatePassword(t *testing.T) {
	store := NewAccountStore(testDB(t))
	acct := seedTestAccount(t, store, "rotate@example.com", RoleTraveler)

	if err := store.UpdatePassword(context.Background(), acct.ID, "newsalt:newkey"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}

	got, err := store.GetByID(context.Background(), acct.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.PasswordHash != "newsalt:newkey" {
		t.Errorf("password hash = %q, want new record", got.PasswordHash)
	}
}

func TestAccountStore_ListAndCount(t *testing.T) {
	store := NewAccountStore(testDB(t))

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}

	seedTestAccount(t, store, "one@example.com", RoleTraveler)
	seedTestAccount(t, store, "two@example.com", RoleTravelAgent, RoleYachtBroker)

	accounts, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("List() returned %d accounts, want 2", len(accounts))
	}
	for _, a := range accounts {
		if len(a.Roles) == 0 {
			t.Errorf("account %s listed without roles", a.Email)
		}
	}

	count, err = store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}
}
