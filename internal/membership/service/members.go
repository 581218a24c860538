package service

import (
	"context"
	"fmt"

	"orgmembership/internal/audit"
	membershipdomain "orgmembership/internal/membership/domain"
	"orgmembership/internal/policy/engine"
)

// ChangeRole sets the role of targetUID in the organization and on the
// target's profile. Admins only; an admin cannot change their own role.
func (s *Service) ChangeRole(ctx context.Context, targetUID string, role membershipdomain.Role, orgID string, actor Actor) (err error) {
	ctx, done := s.observe(ctx, "ChangeRole")
	defer done(&err)

	if !role.Valid() {
		return invalid("role %q is not admin or member", role)
	}
	if targetUID == "" {
		return invalid("member id is required")
	}
	if targetUID == actor.ID {
		return ErrSelfRoleChange
	}
	var previous membershipdomain.Role
	err = s.write(ctx, func(r repos) error {
		org, err := loadOrg(ctx, r, orgID)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, engine.ActionChangeRole, org, actor, targetUID); err != nil {
			return err
		}
		member := org.Member(targetUID)
		if member == nil {
			return notFound("member", targetUID)
		}
		previous = member.Role
		if role != membershipdomain.RoleAdmin && org.IsLastAdmin(targetUID) {
			return fmt.Errorf("%w: %s is the only admin of %s", ErrLastAdmin, targetUID, org.ID)
		}
		member.Role = role
		if err := r.orgs.UpdateOrganization(ctx, org); err != nil {
			return persist("update organization", err)
		}
		target, err := r.users.GetByID(ctx, targetUID)
		if err != nil {
			return persist("load principal", err)
		}
		if target == nil || (target.Affiliated() && target.OrganizationID != org.ID) {
			return nil
		}
		if err := r.users.SetAffiliation(ctx, targetUID, org.ID, role, s.now()); err != nil {
			return persist("update principal", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.principalChanged(ctx, targetUID)
	s.record(ctx, audit.ActionRoleChanged, "member", orgID, actor.ID, map[string]string{
		"target": targetUID,
		"from":   string(previous),
		"to":     string(role),
	})
	return nil
}

// RemoveMember drops targetUID from the organization and clears the target's
// organization and role. Admins only. The last admin cannot be removed,
// including by themselves. A principal still pointing at the organization
// after its member record is gone is cleared, which completes an earlier
// attempt that failed between the two writes.
func (s *Service) RemoveMember(ctx context.Context, targetUID, orgID string, actor Actor) (err error) {
	ctx, done := s.observe(ctx, "RemoveMember")
	defer done(&err)

	if targetUID == "" {
		return invalid("member id is required")
	}
	err = s.write(ctx, func(r repos) error {
		org, err := loadOrg(ctx, r, orgID)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, engine.ActionRemoveMember, org, actor, targetUID); err != nil {
			return err
		}
		if org.IsLastAdmin(targetUID) {
			return fmt.Errorf("%w: %s is the only admin of %s", ErrLastAdmin, targetUID, org.ID)
		}
		wasMember := org.RemoveMember(targetUID)
		if wasMember {
			if err := r.orgs.UpdateOrganization(ctx, org); err != nil {
				return persist("update organization", err)
			}
		}
		target, err := r.users.GetByID(ctx, targetUID)
		if err != nil {
			return persist("load principal", err)
		}
		if target == nil || target.OrganizationID != org.ID {
			if !wasMember {
				return notFound("member", targetUID)
			}
			// Profile already points elsewhere; nothing to clear.
			return nil
		}
		if err := r.users.ClearAffiliation(ctx, targetUID, s.now()); err != nil {
			return persist("update principal", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.principalChanged(ctx, targetUID)
	s.record(ctx, audit.ActionMemberRemoved, "member", orgID, actor.ID, map[string]string{"target": targetUID})
	return nil
}
