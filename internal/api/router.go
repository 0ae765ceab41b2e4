package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atlasvoyages/atlas-core/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no session required)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/logout", s.handleLogout)

		// Session introspection and role preview (session required,
		// no specific permission)
		r.Get("/auth/me", s.handleMe)
		r.Get("/auth/check", s.handleAuthzCheck)
		r.Put("/auth/preview", s.handleSetPreview)
		r.Delete("/auth/preview", s.handleClearPreview)
		r.Post("/auth/password", s.handleChangePassword)

		// Account management (accounts:manage)
		r.Route("/accounts", func(r chi.Router) {
			r.Use(s.requirePermission(auth.PermAccountsManage))
			r.Get("/", s.handleListAccounts)
			r.Post("/", s.handleCreateAccount)
			r.Get("/{id}", s.handleGetAccount)
			r.Put("/{id}/roles", s.handleUpdateAccountRoles)
			r.Put("/{id}/status", s.handleSetAccountStatus)
		})

		// Audit trail (accounts:manage)
		r.Group(func(r chi.Router) {
			r.Use(s.requirePermission(auth.PermAccountsManage))
			r.Get("/audit", s.handleListAudit)
		})

		// Gated resource fronts for sibling platform services
		r.Group(func(r chi.Router) {
			r.Use(s.requirePermission(auth.PermBookingsAll))
			r.Get("/bookings", s.handleResourceAccess(string(auth.PermBookingsAll)))
		})
		r.Group(func(r chi.Router) {
			r.Use(s.requirePermission(auth.PermReferralsRead))
			r.Get("/referrals", s.handleResourceAccess(string(auth.PermReferralsRead)))
		})
		r.Group(func(r chi.Router) {
			r.Use(s.requirePermission(auth.PermYachtListingsManage))
			r.Get("/yacht-listings", s.handleResourceAccess(string(auth.PermYachtListingsManage)))
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
