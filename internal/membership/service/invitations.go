package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"orgmembership/internal/audit"
	invitationdomain "orgmembership/internal/invitation/domain"
	membershipdomain "orgmembership/internal/membership/domain"
	orgdomain "orgmembership/internal/organization/domain"
	"orgmembership/internal/policy/engine"
	userdomain "orgmembership/internal/user/domain"
)

// sweepConcurrency bounds parallel organization updates during a decline sweep.
const sweepConcurrency = 4

func normalizeEmail(email string) (string, error) {
	email = userdomain.NormalizeEmail(email)
	if err := userdomain.ValidateEmail(email); err != nil {
		return "", invalid("%v", err)
	}
	return email, nil
}

// InviteMember records email as pending in the organization and creates a
// pending invitation. The organization is written before the invitation; when
// a previous attempt stopped between the two, only the invitation is created.
func (s *Service) InviteMember(ctx context.Context, email, orgID string, actor Actor) (inv *invitationdomain.Invitation, err error) {
	ctx, done := s.observe(ctx, "InviteMember")
	defer done(&err)

	email, err = normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	err = s.write(ctx, func(r repos) error {
		org, err := loadOrg(ctx, r, orgID)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, engine.ActionInviteMember, org, actor, ""); err != nil {
			return err
		}
		if org.MemberByEmail(email) != nil {
			return fmt.Errorf("%w: %s is a member of %s", ErrAlreadyMember, email, org.ID)
		}
		pending, err := r.invites.ListPendingByEmail(ctx, email)
		if err != nil {
			return persist("list pending invitations", err)
		}
		if len(pending) > 0 {
			return fmt.Errorf("%w: %s has a pending invitation to %s", ErrDuplicateInvite, email, pending[0].OrganizationID)
		}
		elsewhere, err := r.orgs.ListOrganizationsByPendingInvite(ctx, email)
		if err != nil {
			return persist("list organizations by pending invite", err)
		}
		for _, o := range elsewhere {
			if o.ID != org.ID {
				return fmt.Errorf("%w: %s is pending in %s", ErrDuplicateInvite, email, o.ID)
			}
		}

		if org.AddPendingInvite(email) {
			if err := r.orgs.UpdateOrganization(ctx, org); err != nil {
				return persist("update organization", err)
			}
		}
		inviterEmail := actor.Email
		if inviterEmail == "" {
			if m := org.Member(actor.ID); m != nil {
				inviterEmail = m.Email
			}
		}
		inv = &invitationdomain.Invitation{
			Email:            email,
			OrganizationID:   org.ID,
			OrganizationName: org.Name,
			InvitedBy:        actor.ID,
			InvitedByEmail:   inviterEmail,
			Status:           invitationdomain.StatusPending,
			CreatedAt:        s.now(),
		}
		if err := r.invites.Create(ctx, inv); err != nil {
			return persist("create invitation", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, audit.ActionMemberInvited, "invitation", orgID, actor.ID, map[string]string{
		"email":         email,
		"invitation_id": inv.ID,
	})
	return inv, nil
}

// PendingInvitations returns the pending invitations addressed to email,
// oldest first. Matching is case-insensitive. Called after sign-in and sign-up.
func (s *Service) PendingInvitations(ctx context.Context, email string) (invs []*invitationdomain.Invitation, err error) {
	ctx, done := s.observe(ctx, "PendingInvitations")
	defer done(&err)

	email = userdomain.NormalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	invs, err = newRepos(s.store).invites.ListPendingByEmail(ctx, email)
	if err != nil {
		return nil, persist("list pending invitations", err)
	}
	return invs, nil
}

// OrganizationInvitations returns the organization's pending invitations. Admins only.
func (s *Service) OrganizationInvitations(ctx context.Context, orgID string, actor Actor) (invs []*invitationdomain.Invitation, err error) {
	ctx, done := s.observe(ctx, "OrganizationInvitations")
	defer done(&err)

	r := newRepos(s.store)
	org, err := loadOrg(ctx, r, orgID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, engine.ActionInviteMember, org, actor, ""); err != nil {
		return nil, err
	}
	invs, err = r.invites.ListPendingByOrganization(ctx, orgID)
	if err != nil {
		return nil, persist("list organization invitations", err)
	}
	return invs, nil
}

func checkResolvable(inv *invitationdomain.Invitation, id, email string) error {
	if inv == nil {
		return notFound("invitation", id)
	}
	if !inv.IsPending() {
		return fmt.Errorf("%w: invitation %s is %s", ErrInvitationResolved, inv.ID, inv.Status)
	}
	if !strings.EqualFold(inv.Email, email) {
		return fmt.Errorf("%w: invitation %s", ErrEmailMismatch, inv.ID)
	}
	return nil
}

// AcceptInvitation adds actor to the invitation's organization as a member,
// drops the email from pendingInvites, points the actor's profile at the
// organization and marks the invitation accepted, in that order. A retry after
// a partial failure skips the steps already applied.
func (s *Service) AcceptInvitation(ctx context.Context, invitationID string, actor Actor) (err error) {
	ctx, done := s.observe(ctx, "AcceptInvitation")
	defer done(&err)

	if invitationID == "" {
		return invalid("invitation id is required")
	}
	var orgID string
	err = s.write(ctx, func(r repos) error {
		inv, err := r.invites.GetByID(ctx, invitationID)
		if err != nil {
			return persist("load invitation", err)
		}
		if err := checkResolvable(inv, invitationID, actor.Email); err != nil {
			return err
		}
		principal, err := loadPrincipal(ctx, r, actor.ID)
		if err != nil {
			return err
		}
		if principal.Affiliated() && principal.OrganizationID != inv.OrganizationID {
			return fmt.Errorf("%w: principal %s belongs to organization %s", ErrAlreadyMember, principal.ID, principal.OrganizationID)
		}
		org, err := loadOrg(ctx, r, inv.OrganizationID)
		if err != nil {
			return err
		}

		role := membershipdomain.RoleMember
		if existing := org.Member(principal.ID); existing != nil {
			role = existing.Role
		} else {
			org.AddMember(orgdomain.Member{
				UID:      principal.ID,
				Email:    inv.Email,
				Role:     role,
				JoinedAt: s.now(),
			})
		}
		org.RemovePendingInvite(inv.Email)
		if err := r.orgs.UpdateOrganization(ctx, org); err != nil {
			return persist("update organization", err)
		}
		if err := r.users.SetAffiliation(ctx, principal.ID, org.ID, role, s.now()); err != nil {
			return persist("update principal", err)
		}
		if err := r.invites.MarkAccepted(ctx, inv.ID, s.now()); err != nil {
			return persist("mark invitation accepted", err)
		}
		orgID = org.ID
		return nil
	})
	if err != nil {
		return err
	}
	s.principalChanged(ctx, actor.ID)
	s.record(ctx, audit.ActionInvitationAccepted, "invitation", orgID, actor.ID, map[string]string{
		"invitation_id": invitationID,
	})
	return nil
}

// DeclineInvitation removes email from the pendingInvites of every organization
// listing it, including the one the invitation names, then marks the
// invitation declined. The sweep runs first so a retry after a partial failure
// finds the invitation still pending and finishes the job.
func (s *Service) DeclineInvitation(ctx context.Context, invitationID, email string) (err error) {
	ctx, done := s.observe(ctx, "DeclineInvitation")
	defer done(&err)

	if invitationID == "" {
		return invalid("invitation id is required")
	}
	email = userdomain.NormalizeEmail(email)
	var orgID string
	err = s.write(ctx, func(r repos) error {
		inv, err := r.invites.GetByID(ctx, invitationID)
		if err != nil {
			return persist("load invitation", err)
		}
		if err := checkResolvable(inv, invitationID, email); err != nil {
			return err
		}
		orgID = inv.OrganizationID

		listing, err := r.orgs.ListOrganizationsByPendingInvite(ctx, inv.Email)
		if err != nil {
			return persist("list organizations by pending invite", err)
		}
		seen := make(map[string]bool, len(listing)+1)
		for _, o := range listing {
			seen[o.ID] = true
		}
		if !seen[inv.OrganizationID] {
			named, err := r.orgs.GetOrganizationByID(ctx, inv.OrganizationID)
			if err != nil {
				return persist("load organization", err)
			}
			if named != nil && named.HasPendingInvite(inv.Email) {
				listing = append(listing, named)
			}
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(sweepConcurrency)
		for _, o := range listing {
			g.Go(func() error {
				if !o.RemovePendingInvite(inv.Email) {
					return nil
				}
				if err := r.orgs.UpdateOrganization(gctx, o); err != nil {
					return persist("update organization "+o.ID, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		if err := r.invites.MarkDeclined(ctx, inv.ID, s.now()); err != nil {
			return persist("mark invitation declined", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.record(ctx, audit.ActionInvitationDeclined, "invitation", orgID, "", map[string]string{
		"invitation_id": invitationID,
		"email":         email,
	})
	return nil
}
