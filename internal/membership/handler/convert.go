package handler

import (
	membershipv1 "orgmembership/api/membership/v1"
	auditdomain "orgmembership/internal/audit/domain"
	invitationdomain "orgmembership/internal/invitation/domain"
	orgdomain "orgmembership/internal/organization/domain"
)

// OrganizationToMap renders org as Struct fields.
func OrganizationToMap(org *orgdomain.Org) map[string]any {
	if org == nil {
		return nil
	}
	members := make([]any, 0, len(org.Members))
	for _, m := range org.Members {
		members = append(members, map[string]any{
			membershipv1.FieldUserID: m.UID,
			membershipv1.FieldEmail:  m.Email,
			membershipv1.FieldRole:   string(m.Role),
			"joined_at":              membershipv1.FormatTime(m.JoinedAt),
		})
	}
	pending := make([]any, 0, len(org.PendingInvites))
	for _, e := range org.PendingInvites {
		pending = append(pending, e)
	}
	return map[string]any{
		membershipv1.FieldOrganizationID: org.ID,
		membershipv1.FieldName:           org.Name,
		"created_by":                     org.CreatedBy,
		"created_at":                     membershipv1.FormatTime(org.CreatedAt),
		"members":                        members,
		"pending_invites":                pending,
	}
}

// InvitationToMap renders inv as Struct fields.
func InvitationToMap(inv *invitationdomain.Invitation) map[string]any {
	if inv == nil {
		return nil
	}
	out := map[string]any{
		membershipv1.FieldInvitationID:   inv.ID,
		membershipv1.FieldEmail:          inv.Email,
		membershipv1.FieldOrganizationID: inv.OrganizationID,
		"organization_name":              inv.OrganizationName,
		"invited_by":                     inv.InvitedBy,
		"invited_by_email":               inv.InvitedByEmail,
		"status":                         string(inv.Status),
		"created_at":                     membershipv1.FormatTime(inv.CreatedAt),
	}
	if inv.AcceptedAt != nil {
		out["accepted_at"] = membershipv1.FormatTime(*inv.AcceptedAt)
	}
	if inv.DeclinedAt != nil {
		out["declined_at"] = membershipv1.FormatTime(*inv.DeclinedAt)
	}
	return out
}

// InvitationsToList renders invs as a Struct list value.
func InvitationsToList(invs []*invitationdomain.Invitation) []any {
	out := make([]any, 0, len(invs))
	for _, inv := range invs {
		out = append(out, InvitationToMap(inv))
	}
	return out
}

// AuditLogToMap renders an audit entry as Struct fields.
func AuditLogToMap(e *auditdomain.AuditLog) map[string]any {
	meta := make(map[string]any, len(e.Metadata))
	for k, v := range e.Metadata {
		meta[k] = v
	}
	return map[string]any{
		"id":                             e.ID,
		membershipv1.FieldOrganizationID: e.OrgID,
		membershipv1.FieldUserID:         e.UserID,
		"action":                         e.Action,
		"resource":                       e.Resource,
		"metadata":                       meta,
		"created_at":                     membershipv1.FormatTime(e.CreatedAt),
	}
}
