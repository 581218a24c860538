package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orgmembership/internal/bootstrap"
	"orgmembership/internal/config"
	"orgmembership/internal/platform/logging"
	"orgmembership/internal/server"
	"orgmembership/internal/telemetry"
	telemetryotel "orgmembership/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(logging.Options{}).Fatal("config", "err", err)
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()
	providers, err := telemetryotel.NewProviders(ctx, cfg.OTelEndpoint, cfg.OTelServiceName, cfg.OTelInsecure)
	if err != nil {
		logger.Fatal("telemetry", "err", err)
	}
	providers.SetGlobal()
	events := telemetryotel.NewEventEmitter(providers.LoggerProvider)

	store, closeStore, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store", "err", err)
	}
	tokens, err := bootstrap.TokenProvider(cfg, logger)
	if err != nil {
		logger.Fatal("tokens", "err", err)
	}
	authz, err := bootstrap.Authorizer(ctx, cfg.PolicyFile)
	if err != nil {
		logger.Fatal("policy", "err", err)
	}
	svcs, err := bootstrap.New(bootstrap.Options{
		Store:           store,
		Tokens:          tokens,
		Authorizer:      authz,
		BcryptCost:      cfg.BcryptCost,
		UseTransactions: cfg.MembershipTransactions,
		Events:          events,
		Logger:          logger,
	})
	if err != nil {
		logger.Fatal("services", "err", err)
	}
	if !svcs.Membership.Transactional() {
		logger.Info("membership writes are ordered, not transactional", "backend", cfg.StoreBackend)
	}

	deps := server.Deps{
		Auth:                svcs.Auth,
		Membership:          svcs.Membership,
		Audit:               svcs.Audit,
		Events:              events,
		HealthPolicyChecker: authz,
		Logger:              logger,
	}
	if p, ok := store.(interface{ Ping(context.Context) error }); ok {
		deps.HealthPinger = p
	}
	s := server.NewGRPCServer(deps)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("listen", "err", err)
	}
	defer lis.Close()

	go func() {
		logger.Info("gRPC server listening", "addr", cfg.GRPCAddr, "backend", cfg.StoreBackend)
		if err := s.Serve(lis); err != nil {
			logger.Fatal("serve", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down gRPC server...")
	s.GracefulStop()
	// Let in-flight async telemetry emits finish before the exporters close.
	time.Sleep(telemetry.ShutdownDrainDuration)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Warn("telemetry shutdown", "err", err)
	}
	if err := closeStore(shutdownCtx); err != nil {
		logger.Warn("store close", "err", err)
	}
	logger.Info("gRPC server stopped")
}
