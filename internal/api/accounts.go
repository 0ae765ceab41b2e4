package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atlasvoyages/atlas-core/internal/auth"
)

// handleListAccounts returns all accounts.
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.List(r.Context())
	if err != nil {
		s.logger.Error("listing accounts", "error", err)
		writeInternalError(w, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

// createAccountRequest is the request body for POST /accounts.
type createAccountRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

// handleCreateAccount provisions an account with explicit roles.
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	roles, ok := normalizeRoles(req.Roles)
	if !ok {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "unknown role")
		return
	}

	acct, err := s.service.CreateAccount(r.Context(), req.Email, req.Password, roles)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			writeConflict(w, "email already registered")
		case errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, "password too short")
		default:
			writeBadRequest(w, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, acct)
}

// handleGetAccount returns a single account by ID.
func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := s.accounts.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			writeNotFound(w, "account not found")
			return
		}
		s.logger.Error("getting account", "error", err)
		writeInternalError(w, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

// updateRolesRequest is the request body for PUT /accounts/{id}/roles.
type updateRolesRequest struct {
	Roles []string `json:"roles"`
}

// handleUpdateAccountRoles replaces an account's role list. This changes
// the account's real roles — already-issued tokens keep their embedded
// roles until expiry.
func (s *Server) handleUpdateAccountRoles(w http.ResponseWriter, r *http.Request) {
	var req updateRolesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if len(req.Roles) == 0 {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "at least one role is required")
		return
	}

	roles, ok := normalizeRoles(req.Roles)
	if !ok {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "unknown role")
		return
	}

	if err := s.accounts.UpdateRoles(r.Context(), chi.URLParam(r, "id"), roles); err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			writeNotFound(w, "account not found")
			return
		}
		s.logger.Error("updating roles", "error", err)
		writeInternalError(w, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// setStatusRequest is the request body for PUT /accounts/{id}/status.
type setStatusRequest struct {
	Status string `json:"status"`
}

// handleSetAccountStatus activates or suspends an account.
func (s *Server) handleSetAccountStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	status := auth.AccountStatus(req.Status)
	if status != auth.StatusActive && status != auth.StatusSuspended {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "status must be active or suspended")
		return
	}

	if err := s.accounts.SetStatus(r.Context(), chi.URLParam(r, "id"), status); err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			writeNotFound(w, "account not found")
			return
		}
		s.logger.Error("setting status", "error", err)
		writeInternalError(w, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// normalizeRoles maps raw role strings through the canonical alias table.
// ok is false if any entry fails to normalise.
func normalizeRoles(raw []string) ([]auth.Role, bool) {
	roles := make([]auth.Role, 0, len(raw))
	for _, v := range raw {
		role, ok := auth.NormalizeRole(v)
		if !ok {
			return nil, false
		}
		roles = append(roles, role)
	}
	return roles, true
}
