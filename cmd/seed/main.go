// seed creates development sample data through the auth and membership services:
// an admin, a member, one organization and one pending invitation.
// Idempotent: skips when the dev admin (dev@example.com) already exists.
package main

import (
	"context"
	"fmt"

	"orgmembership/internal/bootstrap"
	"orgmembership/internal/config"
	membershipservice "orgmembership/internal/membership/service"
	"orgmembership/internal/platform/logging"
)

const (
	devUserEmail   = "dev@example.com"
	memberEmail    = "member@example.com"
	pendingEmail   = "invitee@example.com"
	devPassword    = "Dev-Password-123"
	devOrgName     = "Acme Dev"
	devUserName    = "Dev Admin"
	memberUserName = "Member User"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(logging.Options{}).Fatal("config", "err", err)
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if cfg.StoreBackend == config.BackendMemory {
		logger.Fatal("seed needs a persistent STORE_BACKEND (postgres or mongo)")
	}

	ctx := context.Background()
	store, closeStore, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store", "err", err)
	}
	defer closeStore(ctx)
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
		Logger:          logger,
	})
	if err != nil {
		logger.Fatal("services", "err", err)
	}

	existing, err := svcs.Users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		logger.Fatal("seed check", "err", err)
	}
	if existing != nil {
		logger.Info("seed already applied; skipping", "email", devUserEmail)
		return
	}

	admin, err := svcs.Auth.SignUp(ctx, devUserEmail, devPassword, devUserName)
	if err != nil {
		logger.Fatal("sign up dev admin", "err", err)
	}
	member, err := svcs.Auth.SignUp(ctx, memberEmail, devPassword, memberUserName)
	if err != nil {
		logger.Fatal("sign up member", "err", err)
	}
	adminActor := membershipservice.Actor{ID: admin.UserID, Email: admin.Email}
	memberActor := membershipservice.Actor{ID: member.UserID, Email: member.Email}

	orgID, err := svcs.Membership.CreateOrganization(ctx, devOrgName, adminActor)
	if err != nil {
		logger.Fatal("create organization", "err", err)
	}
	inv, err := svcs.Membership.InviteMember(ctx, memberEmail, orgID, adminActor)
	if err != nil {
		logger.Fatal("invite member", "err", err)
	}
	if err := svcs.Membership.AcceptInvitation(ctx, inv.ID, memberActor); err != nil {
		logger.Fatal("accept invitation", "err", err)
	}
	if _, err := svcs.Membership.InviteMember(ctx, pendingEmail, orgID, adminActor); err != nil {
		logger.Fatal("invite pending", "err", err)
	}
	for _, sessionID := range []string{admin.SessionID, member.SessionID} {
		if err := svcs.Auth.SignOut(ctx, sessionID); err != nil {
			logger.Warn("sign out seed session", "err", err)
		}
	}

	logger.Info("seed completed", "organization", orgID)
	fmt.Printf("Admin login: %s / %s\n", devUserEmail, devPassword)
	fmt.Printf("Member login: %s / %s\n", memberEmail, devPassword)
	fmt.Printf("Pending invitation for %s (sign up to accept)\n", pendingEmail)
}
