package service

import (
	"context"
	"slices"
	"testing"

	"orgmembership/internal/audit"
	"orgmembership/internal/docstore/memstore"
	invitationdomain "orgmembership/internal/invitation/domain"
	membershipdomain "orgmembership/internal/membership/domain"
)

func TestInviteMember(t *testing.T) {
	modes(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		orgID, a := h.createOrg(t, "Acme", "ua", "a@x.com")

		inv, err := h.svc.InviteMember(ctx, "  New.Person@X.com ", orgID, a)
		if err != nil {
			t.Fatalf("InviteMember: %v", err)
		}
		if inv.ID == "" {
			t.Fatal("invitation has no id")
		}
		if inv.Email != "new.person@x.com" {
			t.Errorf("email = %q, want normalized", inv.Email)
		}
		if inv.Status != invitationdomain.StatusPending || inv.OrganizationName != "Acme" || inv.InvitedBy != "ua" || inv.InvitedByEmail != "a@x.com" {
			t.Errorf("invitation = %+v", inv)
		}
		stored := h.invitation(t, inv.ID)
		if stored.OrganizationID != orgID || !stored.IsPending() {
			t.Errorf("stored invitation = %+v", stored)
		}
		if org := h.org(t, orgID); !slices.Equal(org.PendingInvites, []string{"new.person@x.com"}) {
			t.Errorf("pendingInvites = %v", org.PendingInvites)
		}
		if got := h.eventTypes(); !slices.Contains(got, audit.ActionMemberInvited) {
			t.Errorf("events = %v", got)
		}
		h.checkConsistency(t, orgID, []string{"ua"})
	})
}

func TestInviteMember_Errors(t *testing.T) {
	modes(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		orgID, a := h.createOrg(t, "Acme", "ua", "a@x.com")
		otherID, z := h.createOrg(t, "Zeta", "uz", "z@x.com")
		b := h.join(t, orgID, a, "ub", "b@x.com")
		if _, err := h.svc.InviteMember(ctx, "c@x.com", orgID, a); err != nil {
			t.Fatalf("InviteMember: %v", err)
		}

		tests := []struct {
			name  string
			email string
			orgID string
			actor Actor
			want  error
		}{
			{name: "malformed email", email: "not-an-email", orgID: orgID, actor: a, want: ErrValidation},
			{name: "empty email", email: "  ", orgID: orgID, actor: a, want: ErrValidation},
			{name: "existing member", email: "B@X.COM", orgID: orgID, actor: a, want: ErrAlreadyMember},
			{name: "pending in same organization", email: "c@x.com", orgID: orgID, actor: a, want: ErrDuplicateInvite},
			{name: "pending in another organization", email: "C@x.com", orgID: otherID, actor: z, want: ErrDuplicateInvite},
			{name: "member cannot invite", email: "d@x.com", orgID: orgID, actor: b, want: ErrForbidden},
			{name: "admin of another organization", email: "d@x.com", orgID: orgID, actor: z, want: ErrForbidden},
			{name: "unknown organization", email: "d@x.com", orgID: "missing", actor: a, want: ErrNotFound},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				_, err := h.svc.InviteMember(ctx, tc.email, tc.orgID, tc.actor)
				mustErr(t, err, tc.want)
			})
		}
		if org := h.org(t, orgID); !slices.Equal(org.PendingInvites, []string{"c@x.com"}) {
			t.Errorf("pendingInvites after rejected invites = %v", org.PendingInvites)
		}
		if org := h.org(t, otherID); len(org.PendingInvites) != 0 {
			t.Errorf("other organization pendingInvites = %v", org.PendingInvites)
		}
		h.checkConsistency(t, orgID, []string{"ua", "ub"})
		h.checkConsistency(t, otherID, []string{"uz"})
	})
}

func TestInviteMember_EmailListedElsewhereWithoutInvitation(t *testing.T) {
	h := newHarness(t, memstore.New(), false)
	ctx := context.Background()
	orgID, a := h.createOrg(t, "Acme", "ua", "a@x.com")
	otherID, _ := h.createOrg(t, "Zeta", "uz", "z@x.com")

	// A stray pendingInvites entry with no invitation record still blocks a second invite.
	other := h.org(t, otherID)
	other.AddPendingInvite("c@x.com")
	if err := h.orgs.UpdateOrganization(ctx, other); err != nil {
		t.Fatalf("UpdateOrganization: %v", err)
	}
	_, err := h.svc.InviteMember(ctx, "c@x.com", orgID, a)
	mustErr(t, err, ErrDuplicateInvite)
}

func TestPendingInvitations_CaseInsensitive(t *testing.T) {
	modes(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		orgID, a := h.createOrg(t, "Acme", "ua", "a@x.com")
		inv, err := h.svc.InviteMember(ctx, "Foo@Bar.com", orgID, a)
		if err != nil {
			t.Fatalf("InviteMember: %v", err)
		}
		for _, query := range []string{"foo@bar.com", "FOO@BAR.COM", " Foo@Bar.com "} {
			got, err := h.svc.PendingInvitations(ctx, query)
			if err != nil {
				t.Fatalf("PendingInvitations(%q): %v", query, err)
			}
			if len(got) != 1 || got[0].ID != inv.ID {
				t.Errorf("PendingInvitations(%q) = %+v, want [%s]", query, got, inv.ID)
			}
		}
		got, err := h.svc.PendingInvitations(ctx, "")
		if err != nil || len(got) != 0 {
			t.Errorf("PendingInvitations(\"\") = %v, %v", got, err)
		}
	})
}

func TestOrganizationInvitations(t *testing.T) {
	modes(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		orgID, a := h.createOrg(t, "Acme", "ua", "a@x.com")
		b := h.join(t, orgID, a, "ub", "b@x.com")
		for _, e := range []string{"c@x.com", "d@x.com"} {
			if _, err := h.svc.InviteMember(ctx, e, orgID, a); err != nil {
				t.Fatalf("InviteMember(%s): %v", e, err)
			}
		}
		invs, err := h.svc.OrganizationInvitations(ctx, orgID, a)
		if err != nil {
			t.Fatalf("OrganizationInvitations: %v", err)
		}
		var emails []string
		for _, inv := range invs {
			emails = append(emails, inv.Email)
		}
		if !slices.Equal(emails, []string{"c@x.com", "d@x.com"}) {
			t.Errorf("emails = %v, want oldest first", emails)
		}
		_, err = h.svc.OrganizationInvitations(ctx, orgID, b)
		mustErr(t, err, ErrForbidden)
	})
}

func TestAcceptInvitation(t *testing.T) {
	modes(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		orgID, a := h.createOrg(t, "Acme", "ua", "a@x.com")
		inv, err := h.svc.InviteMember(ctx, "b@x.com", orgID, a)
		if err != nil {
			t.Fatalf("InviteMember: %v", err)
		}
		b := h.addPrincipal(t, "ub", "B@x.com")

		pending, err := h.svc.PendingInvitations(ctx, b.Email)
		if err != nil || len(pending) != 1 || pending[0].ID != inv.ID {
			t.Fatalf("PendingInvitations = %v, %v", pending, err)
		}
		if err := h.svc.AcceptInvitation(ctx, inv.ID, b); err != nil {
			t.Fatalf("AcceptInvitation: %v", err)
		}

		u := h.user(t, "ub")
		if u.OrganizationID != orgID || u.Role != membershipdomain.RoleMember {
			t.Errorf("principal = %q/%q, want %q/member", u.OrganizationID, u.Role, orgID)
		}
		org := h.org(t, orgID)
		m := org.Member("ub")
		if m == nil || m.Role != membershipdomain.RoleMember || m.Email != "b@x.com" {
			t.Errorf("member = %+v", m)
		}
		if len(org.Members) != 2 || org.AdminCount() != 1 {
			t.Errorf("members = %+v", org.Members)
		}
		if len(org.PendingInvites) != 0 {
			t.Errorf("pendingInvites = %v, want empty", org.PendingInvites)
		}
		stored := h.invitation(t, inv.ID)
		if stored.Status != invitationdomain.StatusAccepted || stored.AcceptedAt == nil {
			t.Errorf("invitation = %+v", stored)
		}
		if !slices.Contains(h.observer.uids, "ub") {
			t.Errorf("observer not told about ub: %v", h.observer.uids)
		}
		if pending, _ := h.svc.PendingInvitations(ctx, b.Email); len(pending) != 0 {
			t.Errorf("pending after accept = %v", pending)
		}
		h.checkConsistency(t, orgID, []string{"ua", "ub"})
	})
}

func TestAcceptInvitation_Errors(t *testing.T) {
	modes(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		orgID, a := h.createOrg(t, "Acme", "ua", "a@x.com")
		_, z := h.createOrg(t, "Zeta", "uz", "z@x.com")
		invB, err := h.svc.InviteMember(ctx, "b@x.com", orgID, a)
		if err != nil {
			t.Fatalf("InviteMember: %v", err)
		}
		invZ, err := h.svc.InviteMember(ctx, "z@x.com", orgID, a)
		if err != nil {
			t.Fatalf("InviteMember: %v", err)
		}
		invD, err := h.svc.InviteMember(ctx, "d@x.com", orgID, a)
		if err != nil {
			t.Fatalf("InviteMember: %v", err)
		}
		b := h.addPrincipal(t, "ub", "b@x.com")
		c := h.addPrincipal(t, "uc", "c@x.com")
		d := h.addPrincipal(t, "ud", "d@x.com")
		if err := h.svc.DeclineInvitation(ctx, invD.ID, d.Email); err != nil {
			t.Fatalf("DeclineInvitation: %v", err)
		}

		tests := []struct {
			name  string
			id    string
			actor Actor
			want  error
		}{
			{name: "empty id", id: "", actor: b, want: ErrValidation},
			{name: "unknown invitation", id: "missing", actor: b, want: ErrNotFound},
			{name: "different email", id: invB.ID, actor: c, want: ErrEmailMismatch},
			{name: "declined invitation", id: invD.ID, actor: d, want: ErrInvitationResolved},
			{name: "principal in another organization", id: invZ.ID, actor: z, want: ErrAlreadyMember},
			{name: "principal without profile", id: invB.ID, actor: Actor{ID: "ghost", Email: "b@x.com"}, want: ErrNotFound},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				mustErr(t, h.svc.AcceptInvitation(ctx, tc.id, tc.actor), tc.want)
			})
		}
		if !h.invitation(t, invB.ID).IsPending() {
			t.Error("rejected accept resolved the invitation")
		}

		if err := h.svc.AcceptInvitation(ctx, invB.ID, b); err != nil {
			t.Fatalf("AcceptInvitation: %v", err)
		}
		mustErr(t, h.svc.AcceptInvitation(ctx, invB.ID, b), ErrInvitationResolved)
		h.checkConsistency(t, orgID, []string{"ua", "ub", "uc", "ud", "uz"})
	})
}

func TestDeclineInvitation(t *testing.T) {
	modes(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		orgID, a := h.createOrg(t, "Acme", "ua", "a@x.com")
		inv, err := h.svc.InviteMember(ctx, "b@x.com", orgID, a)
		if err != nil {
			t.Fatalf("InviteMember: %v", err)
		}

		if err := h.svc.DeclineInvitation(ctx, inv.ID, "B@X.com"); err != nil {
			t.Fatalf("DeclineInvitation: %v", err)
		}
		stored := h.invitation(t, inv.ID)
		if stored.Status != invitationdomain.StatusDeclined || stored.DeclinedAt == nil {
			t.Errorf("invitation = %+v", stored)
		}
		if org := h.org(t, orgID); len(org.PendingInvites) != 0 || len(org.Members) != 1 {
			t.Errorf("org after decline = %+v", org)
		}
		mustErr(t, h.svc.DeclineInvitation(ctx, inv.ID, "b@x.com"), ErrInvitationResolved)
		if got := h.eventTypes(); !slices.Contains(got, audit.ActionInvitationDeclined) {
			t.Errorf("events = %v", got)
		}

		// The email can be invited again once the invitation is declined.
		if _, err := h.svc.InviteMember(ctx, "b@x.com", orgID, a); err != nil {
			t.Errorf("re-invite after decline: %v", err)
		}
		h.checkConsistency(t, orgID, []string{"ua"})
	})
}

func TestDeclineInvitation_SweepsEveryListingOrganization(t *testing.T) {
	modes(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		orgID, a := h.createOrg(t, "Acme", "ua", "a@x.com")
		otherID, _ := h.createOrg(t, "Zeta", "uz", "z@x.com")
		thirdID, _ := h.createOrg(t, "Eta", "ue", "e@x.com")
		inv, err := h.svc.InviteMember(ctx, "b@x.com", orgID, a)
		if err != nil {
			t.Fatalf("InviteMember: %v", err)
		}
		for _, id := range []string{otherID, thirdID} {
			o := h.org(t, id)
			o.AddPendingInvite("b@x.com")
			if err := h.orgs.UpdateOrganization(ctx, o); err != nil {
				t.Fatalf("UpdateOrganization: %v", err)
			}
		}

		if err := h.svc.DeclineInvitation(ctx, inv.ID, "b@x.com"); err != nil {
			t.Fatalf("DeclineInvitation: %v", err)
		}
		for _, id := range []string{orgID, otherID, thirdID} {
			if org := h.org(t, id); org.HasPendingInvite("b@x.com") {
				t.Errorf("organization %s still lists b@x.com: %v", id, org.PendingInvites)
			}
		}
	})
}

func TestDeclineInvitation_Errors(t *testing.T) {
	modes(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		orgID, a := h.createOrg(t, "Acme", "ua", "a@x.com")
		inv, err := h.svc.InviteMember(ctx, "b@x.com", orgID, a)
		if err != nil {
			t.Fatalf("InviteMember: %v", err)
		}
		mustErr(t, h.svc.DeclineInvitation(ctx, "", "b@x.com"), ErrValidation)
		mustErr(t, h.svc.DeclineInvitation(ctx, "missing", "b@x.com"), ErrNotFound)
		mustErr(t, h.svc.DeclineInvitation(ctx, inv.ID, "c@x.com"), ErrEmailMismatch)
		if !h.invitation(t, inv.ID).IsPending() {
			t.Error("rejected decline resolved the invitation")
		}
		if org := h.org(t, orgID); !org.HasPendingInvite("b@x.com") {
			t.Error("rejected decline swept pendingInvites")
		}
	})
}
