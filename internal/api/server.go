// Package api provides the HTTP REST API for Atlas Core: the auth
// endpoints (login, signup, logout, session introspection, role preview)
// and the permission-gated management surface (accounts, audit trail).
//
// The server follows the standard component lifecycle:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread safety: all methods are safe for concurrent use.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/atlasvoyages/atlas-core/internal/audit"
	"github.com/atlasvoyages/atlas-core/internal/auth"
	"github.com/atlasvoyages/atlas-core/internal/infrastructure/config"
	"github.com/atlasvoyages/atlas-core/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config       config.APIConfig
	CookieDomain string
	Logger       *logging.Logger
	Gate         *auth.Gate
	Service      *auth.Service
	Accounts     auth.AccountStore
	Audit        audit.Repository
	Version      string
}

// Server is the HTTP API server for Atlas Core.
type Server struct {
	cfg          config.APIConfig
	cookieDomain string
	logger       *logging.Logger
	gate         *auth.Gate
	service      *auth.Service
	accounts     auth.AccountStore
	audit        audit.Repository
	version      string
	server       *http.Server
}

// New creates an API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Gate == nil {
		return nil, fmt.Errorf("authorisation gate is required")
	}
	if deps.Service == nil {
		return nil, fmt.Errorf("auth service is required")
	}
	if deps.Accounts == nil {
		return nil, fmt.Errorf("account store is required")
	}

	return &Server{
		cfg:          deps.Config,
		cookieDomain: deps.CookieDomain,
		logger:       deps.Logger,
		gate:         deps.Gate,
		service:      deps.Service,
		accounts:     deps.Accounts,
		audit:        deps.Audit,
		version:      deps.Version,
	}, nil
}

// Start begins listening for HTTP connections in a background goroutine.
// The server is stopped with Close().
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server, waiting up to 10 seconds for
// in-flight requests before closing remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
