// Package service implements the organization membership state machine:
// creating organizations, inviting members by email, resolving invitations at
// sign-in, and managing roles and removals while keeping principals,
// organizations and invitations consistent.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"orgmembership/internal/audit"
	auditdomain "orgmembership/internal/audit/domain"
	auditrepo "orgmembership/internal/audit/repository"
	"orgmembership/internal/docstore"
	invitationrepo "orgmembership/internal/invitation/repository"
	membershipdomain "orgmembership/internal/membership/domain"
	orgdomain "orgmembership/internal/organization/domain"
	orgrepo "orgmembership/internal/organization/repository"
	"orgmembership/internal/policy/engine"
	"orgmembership/internal/telemetry"
	telemetrydomain "orgmembership/internal/telemetry/domain"
	userdomain "orgmembership/internal/user/domain"
	userrepo "orgmembership/internal/user/repository"
)

const instrumentationName = "orgmembership/membership"

// Actor identifies the authenticated caller, as carried by the session or the access token.
type Actor struct {
	ID    string
	Email string
}

// PrincipalObserver is told when a principal's organization or role was written,
// so a session holding that principal can reload it.
type PrincipalObserver interface {
	PrincipalChanged(ctx context.Context, uid string)
}

// Config carries the collaborators of a Service. Authorizer is required.
type Config struct {
	Authorizer engine.Authorizer
	// UseTransactions runs each multi-step operation in one transaction when the
	// store implements docstore.Transactor. Otherwise writes are ordered:
	// organization, then principal, then invitation.
	UseTransactions bool
	Audit           audit.AuditLogger
	Events          telemetry.EventEmitter
	Observer        PrincipalObserver
	Logger          *log.Logger
	// Clock defaults to time.Now. Member joinedAt values are taken from it
	// because they are embedded inside the members array.
	Clock func() time.Time
}

// Service is the membership state machine over a document store.
type Service struct {
	store    docstore.Store
	authz    engine.Authorizer
	useTx    bool
	audit    audit.AuditLogger
	events   telemetry.EventEmitter
	observer PrincipalObserver
	logger   *log.Logger
	now      func() time.Time
	tracer   trace.Tracer
	ops      metric.Int64Counter
}

// repos groups the repositories bound to one store (or one transaction).
type repos struct {
	users   userrepo.Repository
	orgs    orgrepo.Repository
	invites invitationrepo.Repository
}

func newRepos(store docstore.Store) repos {
	return repos{
		users:   userrepo.NewDocumentRepository(store),
		orgs:    orgrepo.NewDocumentRepository(store),
		invites: invitationrepo.NewDocumentRepository(store),
	}
}

// NewService returns a Service persisting to store.
func NewService(store docstore.Store, cfg Config) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("membership: store is required")
	}
	if cfg.Authorizer == nil {
		return nil, fmt.Errorf("membership: authorizer is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	ops, err := otel.Meter(instrumentationName).Int64Counter("membership.operations",
		metric.WithDescription("Membership operations by name and outcome"))
	if err != nil {
		return nil, err
	}
	return &Service{
		store:    store,
		authz:    cfg.Authorizer,
		useTx:    cfg.UseTransactions,
		audit:    cfg.Audit,
		events:   cfg.Events,
		observer: cfg.Observer,
		logger:   logger.WithPrefix("membership"),
		now:      func() time.Time { return now().UTC() },
		tracer:   otel.Tracer(instrumentationName),
		ops:      ops,
	}, nil
}

// Transactional reports whether operations run inside store transactions.
func (s *Service) Transactional() bool {
	_, ok := s.store.(docstore.Transactor)
	return ok && s.useTx
}

// write runs fn against repositories bound to a transaction when available,
// or directly against the store otherwise.
func (s *Service) write(ctx context.Context, fn func(r repos) error) error {
	tx, ok := s.store.(docstore.Transactor)
	if !ok || !s.useTx {
		return fn(newRepos(s.store))
	}
	var fnErr error
	err := tx.RunInTx(ctx, func(st docstore.Store) error {
		fnErr = fn(newRepos(st))
		return fnErr
	})
	if err != nil && fnErr == nil {
		return persist("transaction", err)
	}
	return err
}

// observe starts a span for op and returns a func recording the outcome.
func (s *Service) observe(ctx context.Context, op string) (context.Context, func(*error)) {
	ctx, span := s.tracer.Start(ctx, "membership."+op)
	return ctx, func(errp *error) {
		err := *errp
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		s.ops.Add(ctx, 1, metric.WithAttributes(
			attribute.String("op", op),
			attribute.String("outcome", outcome(err)),
		))
		span.End()
	}
}

// authorize evaluates action for actor against org. The actor's role comes
// from the organization's member list, not from the caller.
func (s *Service) authorize(ctx context.Context, action string, org *orgdomain.Org, actor Actor, targetID string) error {
	var role membershipdomain.Role
	if m := org.Member(actor.ID); m != nil {
		role = m.Role
	}
	ok, err := s.authz.Allowed(ctx, engine.Request{
		Action:    action,
		OrgID:     org.ID,
		ActorID:   actor.ID,
		ActorRole: role,
		TargetID:  targetID,
	})
	if err != nil {
		return fmt.Errorf("authorize %s: %w", action, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s in organization %s", ErrForbidden, action, org.ID)
	}
	return nil
}

// record writes the audit entry and emits the event for a completed operation.
func (s *Service) record(ctx context.Context, action, resource, orgID, userID string, attrs map[string]string) {
	if s.audit != nil {
		s.audit.LogEvent(ctx, orgID, userID, action, resource, attrs)
	}
	if s.events != nil {
		event := &telemetrydomain.Event{
			Type:       action,
			OrgID:      orgID,
			UserID:     userID,
			Attributes: attrs,
			OccurredAt: s.now(),
		}
		if err := s.events.Emit(ctx, event); err != nil {
			s.logger.Warn("emit event failed", "type", action, "err", err)
		}
	}
	s.logger.Debug(action, "org", orgID, "user", userID)
}

func (s *Service) principalChanged(ctx context.Context, uid string) {
	if s.observer != nil {
		s.observer.PrincipalChanged(ctx, uid)
	}
}

func loadOrg(ctx context.Context, r repos, orgID string) (*orgdomain.Org, error) {
	if orgID == "" {
		return nil, invalid("organization id is required")
	}
	org, err := r.orgs.GetOrganizationByID(ctx, orgID)
	if err != nil {
		return nil, persist("load organization", err)
	}
	if org == nil {
		return nil, notFound("organization", orgID)
	}
	return org, nil
}

func loadPrincipal(ctx context.Context, r repos, uid string) (*userdomain.User, error) {
	if uid == "" {
		return nil, invalid("principal id is required")
	}
	u, err := r.users.GetByID(ctx, uid)
	if err != nil {
		return nil, persist("load principal", err)
	}
	if u == nil {
		return nil, notFound("principal", uid)
	}
	return u, nil
}

// CreateOrganization creates an organization named name with actor as its sole
// admin and points the actor's profile at it. The organization is written
// before the principal so a failed organization write leaves nothing referenced.
func (s *Service) CreateOrganization(ctx context.Context, name string, actor Actor) (orgID string, err error) {
	ctx, done := s.observe(ctx, "CreateOrganization")
	defer done(&err)

	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("organization name is required")
	}
	now := s.now()
	err = s.write(ctx, func(r repos) error {
		principal, err := loadPrincipal(ctx, r, actor.ID)
		if err != nil {
			return err
		}
		if principal.Affiliated() {
			return fmt.Errorf("%w: principal %s belongs to organization %s", ErrAlreadyMember, principal.ID, principal.OrganizationID)
		}
		org, err := unfinishedOrganization(ctx, r, principal.ID, name)
		if err != nil {
			return err
		}
		if org == nil {
			org = &orgdomain.Org{
				Name:      name,
				CreatedBy: principal.ID,
				Members: []orgdomain.Member{{
					UID:      principal.ID,
					Email:    principal.Email,
					Role:     membershipdomain.RoleAdmin,
					JoinedAt: now,
				}},
				PendingInvites: []string{},
				CreatedAt:      now,
			}
			if err := org.Validate(); err != nil {
				return invalid("%v", err)
			}
			if err := r.orgs.CreateOrganization(ctx, org); err != nil {
				return persist("create organization", err)
			}
		}
		if err := r.users.SetAffiliation(ctx, principal.ID, org.ID, membershipdomain.RoleAdmin, now); err != nil {
			return persist("update principal", err)
		}
		orgID = org.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	s.principalChanged(ctx, actor.ID)
	s.record(ctx, audit.ActionOrganizationCreated, "organization", orgID, actor.ID, map[string]string{"name": name})
	return orgID, nil
}

// unfinishedOrganization finds an organization named name that uid created and
// administers but whose principal pointer was never written, so a retried
// create completes it instead of creating a second one.
func unfinishedOrganization(ctx context.Context, r repos, uid, name string) (*orgdomain.Org, error) {
	orgs, err := r.orgs.ListOrganizationsByCreator(ctx, uid)
	if err != nil {
		return nil, persist("list organizations by creator", err)
	}
	for _, o := range orgs {
		if m := o.Member(uid); o.Name == name && m != nil && m.Role == membershipdomain.RoleAdmin {
			return o, nil
		}
	}
	return nil, nil
}

// GetOrganization returns the organization if actor is one of its members.
func (s *Service) GetOrganization(ctx context.Context, orgID string, actor Actor) (org *orgdomain.Org, err error) {
	ctx, done := s.observe(ctx, "GetOrganization")
	defer done(&err)

	org, err = loadOrg(ctx, newRepos(s.store), orgID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, engine.ActionViewOrganization, org, actor, ""); err != nil {
		return nil, err
	}
	return org, nil
}

// History returns the most recent audit entries of the organization, newest first. Admins only.
func (s *Service) History(ctx context.Context, orgID string, actor Actor, limit int) (entries []*auditdomain.AuditLog, err error) {
	ctx, done := s.observe(ctx, "History")
	defer done(&err)

	org, err := loadOrg(ctx, newRepos(s.store), orgID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, engine.ActionViewAudit, org, actor, ""); err != nil {
		return nil, err
	}
	entries, err = auditrepo.NewDocumentRepository(s.store).ListByOrg(ctx, orgID, limit)
	if err != nil {
		return nil, persist("list audit entries", err)
	}
	return entries, nil
}
