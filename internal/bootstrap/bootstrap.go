// Package bootstrap wires the document store, token provider, authorization
// engine and services from configuration. cmd/server and cmd/orgctl share it.
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"orgmembership/internal/audit"
	auditrepo "orgmembership/internal/audit/repository"
	"orgmembership/internal/config"
	"orgmembership/internal/db"
	"orgmembership/internal/db/migrate"
	"orgmembership/internal/docstore"
	"orgmembership/internal/docstore/memstore"
	"orgmembership/internal/docstore/mongostore"
	"orgmembership/internal/docstore/pgstore"
	identityrepo "orgmembership/internal/identity/repository"
	identityservice "orgmembership/internal/identity/service"
	membershipservice "orgmembership/internal/membership/service"
	"orgmembership/internal/policy/engine"
	"orgmembership/internal/security"
	sessionrepo "orgmembership/internal/session/repository"
	"orgmembership/internal/telemetry"
	userrepo "orgmembership/internal/user/repository"
)

// OpenStore connects the backend selected by cfg.StoreBackend. The returned
// close func releases the connection; it is a no-op for the memory backend.
func OpenStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (docstore.Store, func(context.Context) error, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		if cfg.AutoMigrate {
			if err := migrate.Run(cfg.DatabaseURL, "up"); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migrations applied")
		}
		conn, err := db.OpenContext(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		return pgstore.New(conn), func(context.Context) error { return conn.Close() }, nil
	case config.BackendMongo:
		s, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, fmt.Errorf("mongo: %w", err)
		}
		return s, s.Close, nil
	case config.BackendMemory:
		logger.Warn("using in-memory store; data is lost on exit")
		return memstore.New(), func(context.Context) error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// TokenProvider builds the session token provider from the configured key
// pair, or from a generated key when none is configured.
func TokenProvider(cfg *config.Config, logger *log.Logger) (*security.TokenProvider, error) {
	if cfg.JWTPrivateKey == "" {
		logger.Warn("JWT_PRIVATE_KEY not set; using an ephemeral signing key")
		signer, pub, err := security.GenerateKeyPair()
		if err != nil {
			return nil, err
		}
		return security.NewTokenProvider(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL()), nil
	}
	signer, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("JWT_PRIVATE_KEY: %w", err)
	}
	pub, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		return nil, fmt.Errorf("JWT_PUBLIC_KEY: %w", err)
	}
	return security.NewTokenProvider(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL()), nil
}

// Authorizer compiles the policy in path, or the built-in policy when path is empty.
func Authorizer(ctx context.Context, path string) (*engine.OPAAuthorizer, error) {
	var policy string
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read policy: %w", err)
		}
		policy = string(raw)
	}
	return engine.NewOPAAuthorizer(ctx, policy)
}

// Options are the collaborators New wires together. Store, Tokens and
// Authorizer are required.
type Options struct {
	Store           docstore.Store
	Tokens          *security.TokenProvider
	Authorizer      engine.Authorizer
	BcryptCost      int
	UseTransactions bool
	Events          telemetry.EventEmitter
	Observer        membershipservice.PrincipalObserver
	Logger          *log.Logger
}

// Services is the wired application.
type Services struct {
	Store      docstore.Store
	Users      *userrepo.DocumentRepository
	Audit      *audit.Logger
	Auth       *identityservice.AuthService
	Membership *membershipservice.Service
}

// New builds the auth and membership services on opts.Store.
func New(opts Options) (*Services, error) {
	if opts.Store == nil || opts.Tokens == nil || opts.Authorizer == nil {
		return nil, fmt.Errorf("bootstrap: store, tokens and authorizer are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = 12
	}
	users := userrepo.NewDocumentRepository(opts.Store)
	auditLogger := audit.NewLogger(auditrepo.NewDocumentRepository(opts.Store), logger)
	auth := identityservice.NewAuthService(
		users,
		identityrepo.NewDocumentRepository(opts.Store),
		sessionrepo.NewDocumentRepository(opts.Store),
		security.NewHasher(cost),
		opts.Tokens,
		auditLogger,
		opts.Events,
		logger,
	)
	membership, err := membershipservice.NewService(opts.Store, membershipservice.Config{
		Authorizer:      opts.Authorizer,
		UseTransactions: opts.UseTransactions,
		Audit:           auditLogger,
		Events:          opts.Events,
		Observer:        opts.Observer,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	return &Services{
		Store:      opts.Store,
		Users:      users,
		Audit:      auditLogger,
		Auth:       auth,
		Membership: membership,
	}, nil
}
