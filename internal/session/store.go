// Package session holds the signed-in principal and its organization for one
// client. A Store is created explicitly and passed to whatever needs it; it is
// filled on sign-in and emptied on sign-out.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	identityservice "orgmembership/internal/identity/service"
	membershipservice "orgmembership/internal/membership/service"
	orgdomain "orgmembership/internal/organization/domain"
	userdomain "orgmembership/internal/user/domain"
)

// PrincipalLoader loads principal profiles.
type PrincipalLoader interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// OrganizationLoader loads organizations.
type OrganizationLoader interface {
	GetOrganizationByID(ctx context.Context, id string) (*orgdomain.Org, error)
}

// SessionSource publishes sign-in and sign-out events.
type SessionSource interface {
	OnSessionChange(fn func(context.Context, identityservice.SessionEvent)) (unsubscribe func())
}

// Store is the session state of one client.
type Store struct {
	users  PrincipalLoader
	orgs   OrganizationLoader
	logger *log.Logger

	mu          sync.RWMutex
	gen         uint64
	sessionID   string
	principal   *userdomain.User
	org         *orgdomain.Org
	unsubscribe func()
}

var _ membershipservice.PrincipalObserver = (*Store)(nil)

// NewStore returns an empty Store.
func NewStore(users PrincipalLoader, orgs OrganizationLoader, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{users: users, orgs: orgs, logger: logger.WithPrefix("session")}
}

// Attach subscribes the store to src: a sign-in starts the session, a sign-out
// of the current session or of all the principal's sessions clears it.
// Attaching again replaces the previous subscription.
func (s *Store) Attach(src SessionSource) {
	unsubscribe := src.OnSessionChange(func(ctx context.Context, ev identityservice.SessionEvent) {
		switch ev.Kind {
		case identityservice.SignedIn:
			if err := s.Start(ctx, ev.UserID, ev.SessionID); err != nil {
				s.logger.Error("start session failed", "user", ev.UserID, "err", err)
			}
		case identityservice.SignedOut:
			if s.endedBy(ev) {
				s.Clear()
			}
		}
	})
	s.mu.Lock()
	previous := s.unsubscribe
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
	if previous != nil {
		previous()
	}
}

// endedBy reports whether ev ends the current session. An event without a
// session id ends every session of its principal.
func (s *Store) endedBy(ev identityservice.SessionEvent) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ev.SessionID != "" {
		return s.sessionID == ev.SessionID
	}
	return s.principal != nil && s.principal.ID == ev.UserID
}

// Detach drops the subscription made by Attach and clears the session.
func (s *Store) Detach() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
	s.Clear()
}

// Start loads the principal uid and, when it belongs to an organization, the
// organization too, and makes them the current session.
func (s *Store) Start(ctx context.Context, uid, sessionID string) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	principal, org, err := s.load(ctx, uid)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// Cleared or restarted while loading.
		return nil
	}
	s.sessionID = sessionID
	s.principal = principal
	s.org = org
	s.logger.Debug("session started", "user", uid, "org", principal.OrganizationID)
	return nil
}

func (s *Store) load(ctx context.Context, uid string) (*userdomain.User, *orgdomain.Org, error) {
	principal, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return nil, nil, fmt.Errorf("load principal %s: %w", uid, err)
	}
	if principal == nil {
		return nil, nil, fmt.Errorf("principal %s: %w", uid, membershipservice.ErrNotFound)
	}
	if !principal.Affiliated() {
		return principal, nil, nil
	}
	org, err := s.orgs.GetOrganizationByID(ctx, principal.OrganizationID)
	if err != nil {
		return nil, nil, fmt.Errorf("load organization %s: %w", principal.OrganizationID, err)
	}
	if org == nil {
		s.logger.Warn("principal points at a missing organization", "user", uid, "org", principal.OrganizationID)
	}
	return principal, org, nil
}

// Clear drops all session state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.sessionID = ""
	s.principal = nil
	s.org = nil
}

// Refresh reloads the current principal and organization. It is a no-op when signed out.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.RLock()
	uid, sessionID := "", s.sessionID
	if s.principal != nil {
		uid = s.principal.ID
	}
	s.mu.RUnlock()
	if uid == "" {
		return nil
	}
	return s.Start(ctx, uid, sessionID)
}

// PrincipalChanged reloads the session when uid is the current principal.
func (s *Store) PrincipalChanged(ctx context.Context, uid string) {
	s.mu.RLock()
	current := s.principal != nil && s.principal.ID == uid
	s.mu.RUnlock()
	if !current {
		return
	}
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("refresh after principal change failed", "user", uid, "err", err)
	}
}

// SignedIn reports whether a principal is loaded.
func (s *Store) SignedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.principal != nil
}

// SessionID returns the current session id, or "".
func (s *Store) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// Principal returns a copy of the current principal, or nil.
func (s *Store) Principal() *userdomain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return nil
	}
	p := *s.principal
	return &p
}

// Organization returns a copy of the current organization, or nil when signed
// out or unaffiliated.
func (s *Store) Organization() *orgdomain.Org {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.org == nil {
		return nil
	}
	o := *s.org
	o.Members = append([]orgdomain.Member(nil), s.org.Members...)
	o.PendingInvites = append([]string(nil), s.org.PendingInvites...)
	return &o
}

// Actor returns the membership actor for the current principal.
func (s *Store) Actor() (membershipservice.Actor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return membershipservice.Actor{}, false
	}
	return membershipservice.Actor{ID: s.principal.ID, Email: s.principal.Email}, true
}
