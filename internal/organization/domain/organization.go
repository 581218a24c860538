package domain

import (
	"errors"
	"strings"
	"time"

	membershipdomain "orgmembership/internal/membership/domain"
)

// Org is a tenant grouping of principals. Members is ordered by join time and
// unique by UID; PendingInvites holds normalized emails that are not members.
type Org struct {
	ID             string
	Name           string
	CreatedBy      string
	Members        []Member
	PendingInvites []string
	CreatedAt      time.Time
}

// Member is the embedded member record inside an organization, distinct from the principal.
type Member struct {
	UID      string
	Email    string
	Role     membershipdomain.Role
	JoinedAt time.Time
}

// Validate validates the organization for persistence. Returns an error describing the first validation failure.
func (o *Org) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return errors.New("name is required")
	}
	seen := make(map[string]bool, len(o.Members))
	for _, m := range o.Members {
		if seen[m.UID] {
			return errors.New("duplicate member " + m.UID)
		}
		seen[m.UID] = true
	}
	return nil
}

// Member returns the member record for uid, or nil.
func (o *Org) Member(uid string) *Member {
	for i := range o.Members {
		if o.Members[i].UID == uid {
			return &o.Members[i]
		}
	}
	return nil
}

// MemberByEmail returns the member whose email matches case-insensitively, or nil.
func (o *Org) MemberByEmail(email string) *Member {
	for i := range o.Members {
		if strings.EqualFold(o.Members[i].Email, email) {
			return &o.Members[i]
		}
	}
	return nil
}

// AdminCount returns the number of members with the admin role.
func (o *Org) AdminCount() int {
	n := 0
	for _, m := range o.Members {
		if m.Role == membershipdomain.RoleAdmin {
			n++
		}
	}
	return n
}

// IsLastAdmin reports whether uid is the only admin of the organization.
func (o *Org) IsLastAdmin(uid string) bool {
	m := o.Member(uid)
	return m != nil && m.Role == membershipdomain.RoleAdmin && o.AdminCount() == 1
}

// AddMember appends m unless a member with the same UID exists. Returns false when it was already present.
func (o *Org) AddMember(m Member) bool {
	if o.Member(m.UID) != nil {
		return false
	}
	o.Members = append(o.Members, m)
	return true
}

// RemoveMember drops the member with uid. Returns false when no such member exists.
func (o *Org) RemoveMember(uid string) bool {
	for i := range o.Members {
		if o.Members[i].UID == uid {
			o.Members = append(o.Members[:i:i], o.Members[i+1:]...)
			return true
		}
	}
	return false
}

// HasPendingInvite reports whether email is in PendingInvites.
func (o *Org) HasPendingInvite(email string) bool {
	for _, e := range o.PendingInvites {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

// AddPendingInvite records email as pending. Returns false when it was already pending.
func (o *Org) AddPendingInvite(email string) bool {
	if o.HasPendingInvite(email) {
		return false
	}
	o.PendingInvites = append(o.PendingInvites, email)
	return true
}

// RemovePendingInvite drops every occurrence of email. Returns false when it was not pending.
func (o *Org) RemovePendingInvite(email string) bool {
	kept := o.PendingInvites[:0:0]
	removed := false
	for _, e := range o.PendingInvites {
		if strings.EqualFold(e, email) {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	o.PendingInvites = kept
	return removed
}
