package domain

import (
	"errors"
	"time"
)

// Invitation is a request for the holder of Email to join an organization.
// It moves once from pending to accepted or declined; resolved invitations are immutable.
type Invitation struct {
	ID               string
	Email            string
	OrganizationID   string
	OrganizationName string
	InvitedBy        string
	InvitedByEmail   string
	Status           Status
	CreatedAt        time.Time
	AcceptedAt       *time.Time
	DeclinedAt       *time.Time
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

// IsPending reports whether the invitation is still unresolved.
func (i *Invitation) IsPending() bool {
	return i.Status == StatusPending
}

// Validate validates the invitation for persistence. Returns an error describing the first validation failure.
func (i *Invitation) Validate() error {
	if i.Email == "" {
		return errors.New("email is required")
	}
	if i.OrganizationID == "" {
		return errors.New("organization id is required")
	}
	switch i.Status {
	case StatusPending:
	case StatusAccepted:
		if i.AcceptedAt == nil {
			return errors.New("accepted invitation requires acceptedAt")
		}
	case StatusDeclined:
		if i.DeclinedAt == nil {
			return errors.New("declined invitation requires declinedAt")
		}
	default:
		return errors.New("invalid status")
	}
	return nil
}
