// Package audit records membership events for later review.
package audit

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"orgmembership/internal/audit/domain"
	auditrepo "orgmembership/internal/audit/repository"
)

// SentinelOrgID is the org id recorded for events that have no organization, such as a failed sign-in.
const SentinelOrgID = "_system"

// Actions recorded by the membership service, the auth service and the gRPC audit interceptor.
const (
	ActionOrganizationCreated = "organization_created"
	ActionMemberInvited       = "member_invited"
	ActionInvitationAccepted  = "invitation_accepted"
	ActionInvitationDeclined  = "invitation_declined"
	ActionRoleChanged         = "role_changed"
	ActionMemberRemoved       = "member_removed"
	ActionSignUp              = "sign_up"
	ActionSignIn              = "sign_in"
	ActionSignInFailure       = "sign_in_failure"
	ActionSignOut             = "sign_out"
	ActionAccessDenied        = "access_denied"
)

// AuditLogger writes a single audit event. LogEvent is best-effort: failures
// are logged and never reach the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, orgID, userID, action, resource string, metadata map[string]string)
}

// Logger implements AuditLogger on the audit repository.
type Logger struct {
	repo   auditrepo.Repository
	logger *log.Logger
	now    func() time.Time
}

// NewLogger returns an AuditLogger that persists to repo. A nil logger uses the process default.
func NewLogger(repo auditrepo.Repository, logger *log.Logger) *Logger {
	if logger == nil {
		logger = log.Default()
	}
	return &Logger{repo: repo, logger: logger.WithPrefix("audit"), now: time.Now}
}

// LogEvent writes one audit log entry.
func (l *Logger) LogEvent(ctx context.Context, orgID, userID, action, resource string, metadata map[string]string) {
	if l == nil || l.repo == nil {
		return
	}
	if orgID == "" {
		orgID = SentinelOrgID
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		Metadata:  metadata,
		CreatedAt: l.now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		l.logger.Warn("failed to record event", "action", action, "resource", resource, "err", err)
	}
}
