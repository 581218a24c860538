// Package engine decides membership authorization with an OPA Rego policy.
package engine

import (
	"context"

	membershipdomain "orgmembership/internal/membership/domain"
)

// Actions evaluated by the policy.
const (
	ActionViewOrganization = "view_organization"
	ActionInviteMember     = "invite_member"
	ActionChangeRole       = "change_role"
	ActionRemoveMember     = "remove_member"
	ActionViewAudit        = "view_audit"
)

// Request is the policy input: what the actor wants to do, with the actor's
// role in the target organization ("" when not a member).
type Request struct {
	Action    string
	OrgID     string
	ActorID   string
	ActorRole membershipdomain.Role
	TargetID  string
}

// Authorizer decides whether a membership request is allowed.
type Authorizer interface {
	Allowed(ctx context.Context, req Request) (bool, error)
}
