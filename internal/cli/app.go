package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"orgmembership/internal/bootstrap"
	"orgmembership/internal/config"
	membershipservice "orgmembership/internal/membership/service"
	orgrepo "orgmembership/internal/organization/repository"
	"orgmembership/internal/session"
	userrepo "orgmembership/internal/user/repository"
)

// App is the in-process application one orgctl invocation talks to.
type App struct {
	Services *bootstrap.Services
	Sessions *session.Store
	Logger   *log.Logger

	closeStore func(context.Context) error
}

// OpenApp connects the configured store and wires the services. Sessions
// must outlive the process, so the memory backend and ephemeral signing keys
// are refused.
func OpenApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	if cfg.StoreBackend == config.BackendMemory {
		return nil, errors.New("orgctl needs a persistent STORE_BACKEND (postgres or mongo)")
	}
	if cfg.JWTPrivateKey == "" {
		return nil, errors.New("orgctl needs JWT_PRIVATE_KEY and JWT_PUBLIC_KEY so sessions survive between runs")
	}
	store, closeStore, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	tokens, err := bootstrap.TokenProvider(cfg, logger)
	if err != nil {
		_ = closeStore(ctx)
		return nil, err
	}
	authz, err := bootstrap.Authorizer(ctx, cfg.PolicyFile)
	if err != nil {
		_ = closeStore(ctx)
		return nil, err
	}
	app, err := NewApp(bootstrap.Options{
		Store:           store,
		Tokens:          tokens,
		Authorizer:      authz,
		BcryptCost:      cfg.BcryptCost,
		UseTransactions: cfg.MembershipTransactions,
		Logger:          logger,
	}, closeStore)
	if err != nil {
		_ = closeStore(ctx)
		return nil, err
	}
	return app, nil
}

// NewApp wires the services on opts.Store with a session store observing
// sign-ins and membership changes. closeStore may be nil.
func NewApp(opts bootstrap.Options, closeStore func(context.Context) error) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	sessions := session.NewStore(userrepo.NewDocumentRepository(opts.Store), orgrepo.NewDocumentRepository(opts.Store), logger)
	opts.Observer = sessions
	svcs, err := bootstrap.New(opts)
	if err != nil {
		return nil, err
	}
	sessions.Attach(svcs.Auth)
	return &App{Services: svcs, Sessions: sessions, Logger: logger, closeStore: closeStore}, nil
}

// Close ends the session subscription and releases the store.
func (a *App) Close(ctx context.Context) error {
	a.Sessions.Detach()
	if a.closeStore == nil {
		return nil
	}
	return a.closeStore(ctx)
}

// Resume validates token and makes its principal the current session.
func (a *App) Resume(ctx context.Context, token string) (membershipservice.Actor, error) {
	claims, err := a.Services.Auth.Authenticate(ctx, token)
	if err != nil {
		return membershipservice.Actor{}, err
	}
	if err := a.Sessions.Start(ctx, claims.Subject, claims.SessionID); err != nil {
		return membershipservice.Actor{}, fmt.Errorf("load session: %w", err)
	}
	actor, ok := a.Sessions.Actor()
	if !ok {
		return membershipservice.Actor{}, errNotSignedIn
	}
	return actor, nil
}
