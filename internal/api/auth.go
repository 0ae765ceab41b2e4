package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atlasvoyages/atlas-core/internal/audit"
	"github.com/atlasvoyages/atlas-core/internal/auth"
)

// loginRequest is the request body for POST /auth/login and /auth/signup.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse is returned by login, signup, and /auth/me.
type sessionResponse struct {
	Email         string   `json:"email"`
	Roles         []string `json:"roles"`
	ExpiresAt     int64    `json:"expires_at"`
	EffectiveRole string   `json:"effective_role,omitempty"`
}

func sessionBody(s *auth.Session) sessionResponse {
	return sessionResponse{
		Email:     s.Email,
		Roles:     s.Roles,
		ExpiresAt: s.ExpiresAt,
	}
}

// handleLogin authenticates credentials and sets the session cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	token, session, err := s.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			s.recordAudit(r.Context(), &audit.Entry{
				Action: audit.ActionLoginFailed,
				Email:  auth.NormalizeEmail(req.Email),
			})
			writeUnauthorized(w, "invalid credentials")
		case errors.Is(err, auth.ErrAccountInactive):
			writeForbidden(w, "account is suspended")
		default:
			s.logger.Error("login failure", "error", err)
			writeInternalError(w, "internal server error")
		}
		return
	}

	s.recordAudit(r.Context(), &audit.Entry{
		Action: audit.ActionLogin,
		Email:  session.Email,
	})

	http.SetCookie(w, auth.NewSessionCookie(token, s.cookieDomain, 0))
	writeJSON(w, http.StatusOK, sessionBody(session))
}

// handleSignup registers a traveler account and logs it in.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	token, session, err := s.service.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			writeConflict(w, "email already registered")
		case errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, "password too short")
		default:
			writeBadRequest(w, "invalid signup request")
		}
		return
	}

	s.recordAudit(r.Context(), &audit.Entry{
		Action: audit.ActionSignup,
		Email:  session.Email,
	})

	http.SetCookie(w, auth.NewSessionCookie(token, s.cookieDomain, 0))
	writeJSON(w, http.StatusCreated, sessionBody(session))
}

// handleLogout clears the session and preview cookies. Tokens are
// stateless, so logout is purely a client-side cookie removal.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if session, ok := s.gate.Authenticate(r); ok {
		s.recordAudit(r.Context(), &audit.Entry{
			Action: audit.ActionLogout,
			Email:  session.Email,
		})
	}

	http.SetCookie(w, auth.ClearSessionCookie(s.cookieDomain))
	http.SetCookie(w, auth.ClearPreviewCookie(s.cookieDomain))
	w.WriteHeader(http.StatusNoContent)
}

// handleMe returns the verified session for the caller.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	session, ok := s.gate.Authenticate(r)
	if !ok {
		writeUnauthorized(w, auth.ReasonUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, sessionBody(session))
}

// handleAuthzCheck runs the full authorisation gate for an arbitrary
// permission, letting other platform services and the web frontend decide
// access with a single call. The response status mirrors the gate result.
func (s *Server) handleAuthzCheck(w http.ResponseWriter, r *http.Request) {
	perm := auth.Permission(r.URL.Query().Get("permission"))
	if perm == "" {
		writeBadRequest(w, "permission query parameter is required")
		return
	}

	decision, err := s.gate.Authorize(r.Context(), r, perm)
	if err != nil {
		s.logger.Error("authorisation gate failure", "error", err, "permission", string(perm))
		writeInternalError(w, "internal server error")
		return
	}

	writeJSON(w, decision.Status, decision)
}

// previewRequest is the request body for PUT /auth/preview.
type previewRequest struct {
	Role string `json:"role"`
}

// handleSetPreview sets the preview-role cookie. The cookie carries no
// authority: the gate re-validates the caller against the allow-list on
// every request, so setting it for a non-allow-listed account simply has
// no effect.
func (s *Server) handleSetPreview(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.gate.Authenticate(r); !ok {
		writeUnauthorized(w, auth.ReasonUnauthenticated)
		return
	}

	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	role, ok := auth.NormalizeRole(req.Role)
	if !ok {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "unknown role")
		return
	}

	http.SetCookie(w, auth.NewPreviewCookie(role, s.cookieDomain))
	writeJSON(w, http.StatusOK, map[string]any{"role": string(role)})
}

// handleClearPreview removes the preview-role cookie.
func (s *Server) handleClearPreview(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearPreviewCookie(s.cookieDomain))
	w.WriteHeader(http.StatusNoContent)
}

// changePasswordRequest is the request body for POST /auth/password.
type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// handleChangePassword rotates the caller's password.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	session, ok := s.gate.Authenticate(r)
	if !ok {
		writeUnauthorized(w, auth.ReasonUnauthenticated)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	acct, err := s.accounts.GetByEmail(r.Context(), session.Email)
	if err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			writeUnauthorized(w, auth.ReasonUnauthenticated)
			return
		}
		s.logger.Error("resolving account for password change", "error", err)
		writeInternalError(w, "internal server error")
		return
	}

	err = s.service.ChangePassword(r.Context(), acct.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeUnauthorized(w, "invalid credentials")
		case errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, "password too short")
		default:
			s.logger.Error("changing password", "error", err)
			writeInternalError(w, "internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
