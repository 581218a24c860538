package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for the membership service; handlers map them to gRPC codes.
// Detailed errors wrap one of these and are matched with errors.Is.
var (
	// ErrValidation is returned for malformed input before any write.
	ErrValidation = errors.New("validation failed")
	// ErrAlreadyMember is returned when the email or principal already belongs to an organization.
	ErrAlreadyMember = errors.New("already a member")
	// ErrDuplicateInvite is returned when the email already has a pending invitation.
	ErrDuplicateInvite = errors.New("invitation already pending")
	// ErrLastAdmin is returned when an operation would leave an organization without an admin.
	ErrLastAdmin = errors.New("organization must keep at least one admin")
	// ErrNotFound is returned when a referenced principal, organization, invitation or member is missing.
	ErrNotFound = errors.New("not found")
	// ErrPersistence wraps a failed store call. No retry is attempted.
	ErrPersistence = errors.New("persistence failure")
	// ErrForbidden is returned when the authorization policy denies the actor.
	ErrForbidden = errors.New("not permitted")
	// ErrInvitationResolved is returned when accepting or declining an invitation that is no longer pending.
	ErrInvitationResolved = errors.New("invitation already resolved")
	// ErrEmailMismatch is returned when the caller's email is not the invitation's recipient.
	ErrEmailMismatch = errors.New("invitation addressed to a different email")
	// ErrSelfRoleChange is returned when an admin tries to change their own role.
	ErrSelfRoleChange = errors.New("cannot change own role")
)

var businessErrors = []error{
	ErrValidation, ErrAlreadyMember, ErrDuplicateInvite, ErrLastAdmin, ErrNotFound,
	ErrPersistence, ErrForbidden, ErrInvitationResolved, ErrEmailMismatch, ErrSelfRoleChange,
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(what, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, what, id)
}

// persist wraps a store failure, keeping the cause reachable through errors.Is/As.
func persist(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// outcome names err for metrics: "ok", a sentinel label, or "error".
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	for _, e := range businessErrors {
		if errors.Is(err, e) {
			return e.Error()
		}
	}
	return "error"
}
