package engine

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
)

const policyQuery = "data.orgmembership.authz.allow"

// DefaultPolicy allows admins to manage members and read the audit trail, and any member to view the organization.
const DefaultPolicy = `package orgmembership.authz

default allow := false

admin_actions := {"invite_member", "change_role", "remove_member", "view_audit"}

member_roles := {"admin", "member"}

allow if {
	input.action in admin_actions
	input.actor.role == "admin"
}

allow if {
	input.action == "view_organization"
	input.actor.role in member_roles
}
`

// OPAAuthorizer evaluates a Rego policy prepared once at construction.
type OPAAuthorizer struct {
	query rego.PreparedEvalQuery
}

var _ Authorizer = (*OPAAuthorizer)(nil)

// NewOPAAuthorizer compiles policy (DefaultPolicy when empty). The policy must
// define data.orgmembership.authz.allow.
func NewOPAAuthorizer(ctx context.Context, policy string) (*OPAAuthorizer, error) {
	if policy == "" {
		policy = DefaultPolicy
	}
	pq, err := rego.New(
		rego.Query(policyQuery),
		rego.Module("authz.rego", policy),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile authorization policy: %w", err)
	}
	return &OPAAuthorizer{query: pq}, nil
}

// Allowed evaluates req against the policy. An undefined result is a denial.
func (a *OPAAuthorizer) Allowed(ctx context.Context, req Request) (bool, error) {
	rs, err := a.query.Eval(ctx, rego.EvalInput(toInput(req)))
	if err != nil {
		return false, fmt.Errorf("eval authorization policy: %w", err)
	}
	return rs.Allowed(), nil
}

// HealthCheck evaluates a request the policy must allow, verifying the engine
// is usable without touching any store.
func (a *OPAAuthorizer) HealthCheck(ctx context.Context) error {
	ok, err := a.Allowed(ctx, Request{Action: ActionViewOrganization, ActorRole: "admin"})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("authorization policy denied health probe")
	}
	return nil
}

func toInput(req Request) map[string]any {
	return map[string]any{
		"action": req.Action,
		"org_id": req.OrgID,
		"actor": map[string]any{
			"id":   req.ActorID,
			"role": string(req.ActorRole),
		},
		"target": map[string]any{
			"id": req.TargetID,
		},
	}
}
