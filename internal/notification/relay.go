// Package notification offers a signed-in principal its pending invitation and
// forwards the answer to the membership service. It reads and writes nothing
// itself.
package notification

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	identityservice "orgmembership/internal/identity/service"
	invitationdomain "orgmembership/internal/invitation/domain"
	membershipservice "orgmembership/internal/membership/service"
)

// Choice is the principal's answer to an invitation prompt.
type Choice int

const (
	// Dismiss leaves the invitation pending; it is offered again at the next sign-in.
	Dismiss Choice = iota
	Accept
	Decline
)

func (c Choice) String() string {
	switch c {
	case Accept:
		return "accept"
	case Decline:
		return "decline"
	default:
		return "dismiss"
	}
}

// Prompter presents an invitation and reports the principal's choice. Alert
// shows a one-line message, such as a failure to resolve the invitation.
type Prompter interface {
	Confirm(ctx context.Context, inv *invitationdomain.Invitation) (Choice, error)
	Alert(ctx context.Context, message string)
}

// Resolver is the part of the membership service the relay forwards to.
type Resolver interface {
	PendingInvitations(ctx context.Context, email string) ([]*invitationdomain.Invitation, error)
	AcceptInvitation(ctx context.Context, invitationID string, actor membershipservice.Actor) error
	DeclineInvitation(ctx context.Context, invitationID, email string) error
}

// SessionSource publishes sign-in events.
type SessionSource interface {
	OnSessionChange(fn func(context.Context, identityservice.SessionEvent)) (unsubscribe func())
}

// Outcome describes what happened at one sign-in.
type Outcome struct {
	Invitation *invitationdomain.Invitation // nil when nothing was pending
	Choice     Choice
	// Remaining counts pending invitations that were not offered.
	Remaining int
}

// Relay connects a Prompter to a Resolver.
type Relay struct {
	resolver Resolver
	prompter Prompter
	logger   *log.Logger
}

// NewRelay returns a Relay forwarding prompter answers to resolver.
func NewRelay(resolver Resolver, prompter Prompter, logger *log.Logger) *Relay {
	if logger == nil {
		logger = log.Default()
	}
	return &Relay{resolver: resolver, prompter: prompter, logger: logger.WithPrefix("notification")}
}

// Attach offers pending invitations on every sign-in published by src.
func (r *Relay) Attach(src SessionSource) (unsubscribe func()) {
	return src.OnSessionChange(func(ctx context.Context, ev identityservice.SessionEvent) {
		if ev.Kind != identityservice.SignedIn {
			return
		}
		if _, err := r.OnSignedIn(ctx, membershipservice.Actor{ID: ev.UserID, Email: ev.Email}); err != nil {
			r.logger.Warn("invitation prompt failed", "user", ev.UserID, "err", err)
		}
	})
}

// OnSignedIn looks up invitations pending for actor's email and offers the
// oldest one. Accept and decline are forwarded to the resolver; dismissing
// leaves the invitation pending.
func (r *Relay) OnSignedIn(ctx context.Context, actor membershipservice.Actor) (Outcome, error) {
	invs, err := r.resolver.PendingInvitations(ctx, actor.Email)
	if err != nil {
		return Outcome{}, fmt.Errorf("list pending invitations: %w", err)
	}
	if len(invs) == 0 {
		return Outcome{}, nil
	}
	inv := invs[0]
	out := Outcome{Invitation: inv, Remaining: len(invs) - 1}
	choice, err := r.prompter.Confirm(ctx, inv)
	if err != nil {
		return out, fmt.Errorf("prompt: %w", err)
	}
	out.Choice = choice
	switch choice {
	case Accept:
		err = r.resolver.AcceptInvitation(ctx, inv.ID, actor)
	case Decline:
		err = r.resolver.DeclineInvitation(ctx, inv.ID, actor.Email)
	default:
		return out, nil
	}
	if err != nil {
		r.prompter.Alert(ctx, fmt.Sprintf("Could not %s the invitation to %s: %v", choice, inv.OrganizationName, err))
		return out, err
	}
	r.logger.Debug("invitation resolved", "invitation", inv.ID, "choice", choice)
	return out, nil
}
