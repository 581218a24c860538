package service

import (
	"context"
	"slices"
	"testing"

	"orgmembership/internal/docstore/memstore"
	membershipdomain "orgmembership/internal/membership/domain"
)

func TestChangeRole(t *testing.T) {
	modes(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		orgID, a := h.createOrg(t, "Acme", "ua", "a@x.com")
		h.join(t, orgID, a, "ub", "b@x.com")
		h.observer.uids = nil

		if err := h.svc.ChangeRole(ctx, "ub", membershipdomain.RoleAdmin, orgID, a); err != nil {
			t.Fatalf("ChangeRole: %v", err)
		}
		org := h.org(t, orgID)
		if m := org.Member("ub"); m == nil || m.Role != membershipdomain.RoleAdmin {
			t.Errorf("member = %+v, want admin", m)
		}
		if org.AdminCount() != 2 {
			t.Errorf("AdminCount = %d, want 2", org.AdminCount())
		}
		if u := h.user(t, "ub"); u.Role != membershipdomain.RoleAdmin || u.OrganizationID != orgID {
			t.Errorf("principal = %q/%q", u.OrganizationID, u.Role)
		}
		if !slices.Equal(h.observer.uids, []string{"ub"}) {
			t.Errorf("observer = %v, want [ub]", h.observer.uids)
		}

		// Setting the current role again is accepted.
		if err := h.svc.ChangeRole(ctx, "ub", membershipdomain.RoleAdmin, orgID, a); err != nil {
			t.Errorf("ChangeRole to same role: %v", err)
		}
		h.checkConsistency(t, orgID, []string{"ua", "ub"})
	})
}

func TestChangeRole_Errors(t *testing.T) {
	modes(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		orgID, a := h.createOrg(t, "Acme", "ua", "a@x.com")
		b := h.join(t, orgID, a, "ub", "b@x.com")
		h.join(t, orgID, a, "uc", "c@x.com")
		_, z := h.createOrg(t, "Zeta", "uz", "z@x.com")

		tests := []struct {
			name   string
			target string
			role   membershipdomain.Role
			orgID  string
			actor  Actor
			want   error
		}{
			{name: "invalid role", target: "ub", role: "owner", orgID: orgID, actor: a, want: ErrValidation},
			{name: "empty target", target: "", role: membershipdomain.RoleAdmin, orgID: orgID, actor: a, want: ErrValidation},
			{name: "own role", target: "ua", role: membershipdomain.RoleMember, orgID: orgID, actor: a, want: ErrSelfRoleChange},
			{name: "member actor", target: "uc", role: membershipdomain.RoleAdmin, orgID: orgID, actor: b, want: ErrForbidden},
			{name: "admin of another organization", target: "ub", role: membershipdomain.RoleAdmin, orgID: orgID, actor: z, want: ErrForbidden},
			{name: "target not a member", target: "uz", role: membershipdomain.RoleAdmin, orgID: orgID, actor: a, want: ErrNotFound},
			{name: "unknown organization", target: "ub", role: membershipdomain.RoleAdmin, orgID: "missing", actor: a, want: ErrNotFound},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				mustErr(t, h.svc.ChangeRole(ctx, tc.target, tc.role, tc.orgID, tc.actor), tc.want)
			})
		}
		org := h.org(t, orgID)
		if org.AdminCount() != 1 || org.Member("ua").Role != membershipdomain.RoleAdmin {
			t.Errorf("rejected changes altered roles: %+v", org.Members)
		}
		h.checkConsistency(t, orgID, []string{"ua", "ub", "uc", "uz"})
	})
}

func TestChangeRole_DemoteOtherAdmin(t *testing.T) {
	modes(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		orgID, a := h.createOrg(t, "Acme", "ua", "a@x.com")
		b := h.join(t, orgID, a, "ub", "b@x.com")
		if err := h.svc.ChangeRole(ctx, "ub", membershipdomain.RoleAdmin, orgID, a); err != nil {
			t.Fatalf("promote: %v", err)
		}
		// b demotes a; b stays the only admin.
		if err := h.svc.ChangeRole(ctx, "ua", membershipdomain.RoleMember, orgID, b); err != nil {
			t.Fatalf("demote: %v", err)
		}
		org := h.org(t, orgID)
		if org.AdminCount() != 1 || !org.IsLastAdmin("ub") {
			t.Errorf("members = %+v, want ub as sole admin", org.Members)
		}
		// a is now a member and can no longer manage roles.
		mustErr(t, h.svc.ChangeRole(ctx, "ub", membershipdomain.RoleMember, orgID, a), ErrForbidden)
		h.checkConsistency(t, orgID, []string{"ua", "ub"})
	})
}

func TestRemoveMember(t *testing.T) {
	modes(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		orgID, a := h.createOrg(t, "Acme", "ua", "a@x.com")
		h.join(t, orgID, a, "ub", "b@x.com")
		h.observer.uids = nil

		if err := h.svc.RemoveMember(ctx, "ub", orgID, a); err != nil {
			t.Fatalf("RemoveMember: %v", err)
		}
		org := h.org(t, orgID)
		if org.Member("ub") != nil || len(org.Members) != 1 {
			t.Errorf("members = %+v", org.Members)
		}
		u := h.user(t, "ub")
		if u.Affiliated() || u.Role != "" {
			t.Errorf("principal still affiliated: %q/%q", u.OrganizationID, u.Role)
		}
		if !slices.Equal(h.observer.uids, []string{"ub"}) {
			t.Errorf("observer = %v, want [ub]", h.observer.uids)
		}
		mustErr(t, h.svc.RemoveMember(ctx, "ub", orgID, a), ErrNotFound)

		// The removed principal can found a new organization.
		if _, err := h.svc.CreateOrganization(ctx, "Beta", Actor{ID: "ub", Email: "b@x.com"}); err != nil {
			t.Errorf("CreateOrganization after removal: %v", err)
		}
		h.checkConsistency(t, orgID, []string{"ua", "ub"})
	})
}

func TestRemoveMember_LastAdmin(t *testing.T) {
	modes(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		orgID, a := h.createOrg(t, "Acme", "ua", "a@x.com")
		h.join(t, orgID, a, "ub", "b@x.com")

		mustErr(t, h.svc.RemoveMember(ctx, "ua", orgID, a), ErrLastAdmin)
		if org := h.org(t, orgID); org.Member("ua") == nil || org.AdminCount() != 1 {
			t.Errorf("last admin removed: %+v", org.Members)
		}
		if u := h.user(t, "ua"); u.OrganizationID != orgID {
			t.Errorf("last admin principal cleared: %q", u.OrganizationID)
		}

		// With a second admin the first may leave.
		if err := h.svc.ChangeRole(ctx, "ub", membershipdomain.RoleAdmin, orgID, a); err != nil {
			t.Fatalf("ChangeRole: %v", err)
		}
		if err := h.svc.RemoveMember(ctx, "ua", orgID, a); err != nil {
			t.Fatalf("self removal with another admin: %v", err)
		}
		org := h.org(t, orgID)
		if org.Member("ua") != nil || !org.IsLastAdmin("ub") {
			t.Errorf("members = %+v", org.Members)
		}
		h.checkConsistency(t, orgID, []string{"ua", "ub"})
	})
}

func TestRemoveMember_Errors(t *testing.T) {
	modes(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		orgID, a := h.createOrg(t, "Acme", "ua", "a@x.com")
		b := h.join(t, orgID, a, "ub", "b@x.com")
		h.join(t, orgID, a, "uc", "c@x.com")

		mustErr(t, h.svc.RemoveMember(ctx, "", orgID, a), ErrValidation)
		mustErr(t, h.svc.RemoveMember(ctx, "uc", orgID, b), ErrForbidden)
		// Leaving is an admin action too.
		mustErr(t, h.svc.RemoveMember(ctx, "ub", orgID, b), ErrForbidden)
		mustErr(t, h.svc.RemoveMember(ctx, "ub", "missing", a), ErrNotFound)
		mustErr(t, h.svc.RemoveMember(ctx, "nobody", orgID, a), ErrNotFound)
		if org := h.org(t, orgID); len(org.Members) != 3 {
			t.Errorf("members = %+v", org.Members)
		}
	})
}

func TestRemoveMember_ProfileAlreadyElsewhere(t *testing.T) {
	h := newHarness(t, memstore.New(), false)
	ctx := context.Background()
	orgID, a := h.createOrg(t, "Acme", "ua", "a@x.com")
	h.join(t, orgID, a, "ub", "b@x.com")

	// Simulate a profile that has moved on while the member record lingered.
	if err := h.users.SetAffiliation(ctx, "ub", "other-org", membershipdomain.RoleAdmin, testTime); err != nil {
		t.Fatalf("SetAffiliation: %v", err)
	}
	if err := h.svc.RemoveMember(ctx, "ub", orgID, a); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if u := h.user(t, "ub"); u.OrganizationID != "other-org" {
		t.Errorf("RemoveMember cleared a profile pointing at %q", u.OrganizationID)
	}
}
