// Atlas Core - account and session service for the Atlas Voyages platform.
//
// It owns the authentication gate protecting every privileged API route:
// stateless signed session tokens, scrypt credentials, role-based
// permission evaluation, and the allow-listed role-preview mechanism.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/atlasvoyages/atlas-core/migrations"

	"github.com/atlasvoyages/atlas-core/internal/api"
	"github.com/atlasvoyages/atlas-core/internal/audit"
	"github.com/atlasvoyages/atlas-core/internal/auth"
	"github.com/atlasvoyages/atlas-core/internal/infrastructure/config"
	"github.com/atlasvoyages/atlas-core/internal/infrastructure/database"
	"github.com/atlasvoyages/atlas-core/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
)

// defaultConfigPath is used when ATLASCORE_CONFIG is not set and no
// argument is given.
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Atlas Core", "version", version, "commit", commit)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath, "environment", cfg.Environment)

	// Reinitialise logger with config settings.
	log = logging.New(cfg.Logging, version)

	// Resolve the signing secret. Validate has already crashed fast for
	// production; in development a missing secret degrades to an ephemeral
	// one so tokens die with the process. Signature checking is never
	// disabled.
	secret := cfg.Security.Session.Secret
	if secret == "" {
		secret, err = ephemeralSecret()
		if err != nil {
			return fmt.Errorf("generating ephemeral secret: %w", err)
		}
		log.Warn("no session secret configured, generated ephemeral secret",
			"consequence", "all sessions invalidate on restart",
			"action_required", "set ATLASCORE_SESSION_SECRET before production use",
		)
	}

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations complete")

	// Auth components. All immutable after construction.
	codec, err := auth.NewTokenCodec(secret)
	if err != nil {
		return fmt.Errorf("creating token codec: %w", err)
	}

	table := auth.DefaultPermissionTable()
	if len(cfg.Security.Permissions) > 0 {
		table, err = auth.PermissionTableFromConfig(cfg.Security.Permissions)
		if err != nil {
			return fmt.Errorf("loading permission table: %w", err)
		}
	}
	evaluator, err := auth.NewEvaluator(table)
	if err != nil {
		return fmt.Errorf("building permission evaluator: %w", err)
	}

	preview := auth.NewPreviewPolicy(
		cfg.Security.Preview.AllowedEmails,
		cfg.Security.Preview.AllowedAccountIDs,
	)

	accounts := auth.NewAccountStore(db.DB)
	creds := auth.NewCredentialStore(cfg.Security.Password.MaxConcurrentHashes)
	gate := auth.NewGate(codec, evaluator, preview, accounts)
	service := auth.NewService(accounts, creds, codec, cfg.SessionTTL())

	if _, err := auth.SeedOperator(ctx, accounts, creds, log.Logger); err != nil {
		return fmt.Errorf("seeding operator account: %w", err)
	}

	auditRepo := audit.NewSQLiteRepository(db.DB)

	server, err := api.New(api.Deps{
		Config:       cfg.API,
		CookieDomain: cfg.Security.Session.CookieDomain,
		Logger:       log.With("component", "api"),
		Gate:         gate,
		Service:      service,
		Accounts:     accounts,
		Audit:        auditRepo,
		Version:      version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	log.Info("Atlas Core started", "host", cfg.API.Host, "port", cfg.API.Port)

	<-ctx.Done()
	log.Info("shutdown signal received")

	if err := server.Close(); err != nil {
		return fmt.Errorf("closing API server: %w", err)
	}
	return nil
}

// getConfigPath resolves the config file path from the command line or
// environment, falling back to the default.
func getConfigPath() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	if v := os.Getenv("ATLASCORE_CONFIG"); v != "" {
		return v
	}
	return defaultConfigPath
}

// ephemeralSecretBytes is the size of a generated development secret.
const ephemeralSecretBytes = 32

// ephemeralSecret generates a random development-only signing secret.
func ephemeralSecret() (string, error) {
	b := make([]byte, ephemeralSecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
