// Package service implements the authentication provider: local email and
// password sign-up and sign-in, revocable sessions backed by signed access
// tokens, and session change notifications.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"orgmembership/internal/audit"
	identitydomain "orgmembership/internal/identity/domain"
	"orgmembership/internal/security"
	sessiondomain "orgmembership/internal/session/domain"
	"orgmembership/internal/telemetry"
	telemetrydomain "orgmembership/internal/telemetry/domain"
	userdomain "orgmembership/internal/user/domain"
)

// AuthResult holds the outcome of SignUp or SignIn.
type AuthResult struct {
	AccessToken string
	ExpiresAt   time.Time
	SessionID   string
	UserID      string
	Email       string
}

// SessionEventKind tells listeners whether a session started or ended.
type SessionEventKind int

const (
	SignedIn SessionEventKind = iota + 1
	SignedOut
)

func (k SessionEventKind) String() string {
	switch k {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	default:
		return "unknown"
	}
}

// SessionEvent is delivered to OnSessionChange listeners.
type SessionEvent struct {
	Kind      SessionEventKind
	UserID    string
	Email     string
	SessionID string
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// IdentityRepo is the minimal identity repository needed by the auth service.
type IdentityRepo interface {
	GetByUserAndProvider(ctx context.Context, userID string, provider identitydomain.IdentityProvider) (*identitydomain.Identity, error)
	Create(ctx context.Context, i *identitydomain.Identity) error
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
	Create(ctx context.Context, s *sessiondomain.Session) error
	Revoke(ctx context.Context, id string, at time.Time) error
	RevokeAllByUser(ctx context.Context, userID string, at time.Time) error
	UpdateLastSeen(ctx context.Context, id string, at time.Time) error
}

// AuthService implements password sign-up, sign-in and sign-out.
type AuthService struct {
	userRepo     UserRepo
	identityRepo IdentityRepo
	sessionRepo  SessionRepo
	hasher       *security.Hasher
	tokens       *security.TokenProvider
	audit        audit.AuditLogger
	events       telemetry.EventEmitter
	logger       *log.Logger
	now          func() time.Time

	mu        sync.Mutex
	nextID    int
	listeners map[int]func(context.Context, SessionEvent)
}

// NewAuthService returns an AuthService with the given dependencies.
// auditLogger and events may be nil.
func NewAuthService(
	userRepo UserRepo,
	identityRepo IdentityRepo,
	sessionRepo SessionRepo,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	auditLogger audit.AuditLogger,
	events telemetry.EventEmitter,
	logger *log.Logger,
) *AuthService {
	if logger == nil {
		logger = log.Default()
	}
	return &AuthService{
		userRepo:     userRepo,
		identityRepo: identityRepo,
		sessionRepo:  sessionRepo,
		hasher:       hasher,
		tokens:       tokens,
		audit:        auditLogger,
		events:       events,
		logger:       logger.WithPrefix("auth"),
		now:          func() time.Time { return time.Now().UTC() },
		listeners:    make(map[int]func(context.Context, SessionEvent)),
	}
}

// OnSessionChange registers fn for sign-in and sign-out events and returns a
// func that removes it. Listeners run synchronously in registration order.
func (s *AuthService) OnSessionChange(fn func(context.Context, SessionEvent)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *AuthService) notify(ctx context.Context, ev SessionEvent) {
	s.mu.Lock()
	fns := make([]func(context.Context, SessionEvent), 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ctx, ev)
	}
}

// SignUp creates a principal with no organization and a local identity, then
// starts a session for it. The identity is written before the principal so an
// interrupted sign-up never leaves a principal that cannot sign in.
func (s *AuthService) SignUp(ctx context.Context, email, password, displayName string) (*AuthResult, error) {
	email = userdomain.NormalizeEmail(email)
	if err := userdomain.ValidateEmail(email); err != nil {
		return nil, authError(CodeInvalidEmail, err)
	}
	if err := validatePassword(password); err != nil {
		return nil, authError(CodeWeakPassword, err)
	}
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if existing != nil {
		return nil, authError(CodeEmailAlreadyInUse, nil)
	}
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	user := &userdomain.User{
		ID:          uuid.New().String(),
		Email:       email,
		DisplayName: strings.TrimSpace(displayName),
		Status:      userdomain.UserStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	identity := &identitydomain.Identity{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		Provider:     identitydomain.IdentityProviderLocal,
		ProviderID:   email,
		PasswordHash: hashed,
		CreatedAt:    now,
	}
	if err := s.identityRepo.Create(ctx, identity); err != nil {
		return nil, fmt.Errorf("create identity: %w", err)
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	res, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.record(ctx, audit.ActionSignUp, user.ID, map[string]string{"email": email})
	s.notify(ctx, SessionEvent{Kind: SignedIn, UserID: user.ID, Email: email, SessionID: res.SessionID})
	return res, nil
}

// SignIn verifies email and password and starts a session.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	email = userdomain.NormalizeEmail(email)
	if err := userdomain.ValidateEmail(email); err != nil {
		return nil, authError(CodeInvalidEmail, err)
	}
	user, err := s.verify(ctx, email, password)
	if err != nil {
		if IsAuthError(err, CodeInvalidCredential) || IsAuthError(err, CodeUserDisabled) {
			s.record(ctx, audit.ActionSignInFailure, "", map[string]string{"email": email})
		}
		return nil, err
	}
	res, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.record(ctx, audit.ActionSignIn, user.ID, map[string]string{"session_id": res.SessionID})
	s.notify(ctx, SessionEvent{Kind: SignedIn, UserID: user.ID, Email: email, SessionID: res.SessionID})
	return res, nil
}

func (s *AuthService) verify(ctx context.Context, email, password string) (*userdomain.User, error) {
	if password == "" {
		return nil, authError(CodeInvalidCredential, nil)
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, authError(CodeInvalidCredential, nil)
	}
	ident, err := s.identityRepo.GetByUserAndProvider(ctx, user.ID, identitydomain.IdentityProviderLocal)
	if err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}
	if ident == nil || ident.PasswordHash == "" {
		return nil, authError(CodeInvalidCredential, nil)
	}
	ok, err := s.hasher.Verify(ident.PasswordHash, password)
	if err != nil || !ok {
		return nil, authError(CodeInvalidCredential, err)
	}
	if user.Status != userdomain.UserStatusActive {
		return nil, authError(CodeUserDisabled, nil)
	}
	return user, nil
}

func (s *AuthService) startSession(ctx context.Context, user *userdomain.User) (*AuthResult, error) {
	sessionID := uuid.New().String()
	token, err := s.tokens.Issue(sessionID, user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	sess := &sessiondomain.Session{
		ID:        sessionID,
		UserID:    user.ID,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: s.now(),
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &AuthResult{
		AccessToken: token.Value,
		ExpiresAt:   token.ExpiresAt,
		SessionID:   sessionID,
		UserID:      user.ID,
		Email:       user.Email,
	}, nil
}

// SignOut revokes the session. Unknown or already revoked sessions are a no-op.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if sess == nil || sess.RevokedAt != nil {
		return nil
	}
	if err := s.sessionRepo.Revoke(ctx, sessionID, s.now()); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.record(ctx, audit.ActionSignOut, sess.UserID, map[string]string{"session_id": sessionID})
	s.notify(ctx, SessionEvent{Kind: SignedOut, UserID: sess.UserID, SessionID: sessionID})
	return nil
}

// SignOutAll revokes every live session of userID. Listeners get one
// signed-out event with an empty SessionID.
func (s *AuthService) SignOutAll(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	if err := s.sessionRepo.RevokeAllByUser(ctx, userID, s.now()); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	s.record(ctx, audit.ActionSignOut, userID, map[string]string{"scope": "all"})
	s.notify(ctx, SessionEvent{Kind: SignedOut, UserID: userID})
	return nil
}

// Authenticate validates an access token and checks its session is still live.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*security.SessionClaims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, authError(CodeInvalidCredential, err)
	}
	sess, err := s.sessionRepo.GetByID(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	now := s.now()
	if sess == nil || sess.UserID != claims.Subject || !sess.Active(now) {
		return nil, authError(CodeSessionExpired, nil)
	}
	if err := s.sessionRepo.UpdateLastSeen(ctx, sess.ID, now); err != nil {
		s.logger.Warn("update last seen failed", "session", sess.ID, "err", err)
	}
	return claims, nil
}

// record audits the event and emits it without blocking the caller.
func (s *AuthService) record(ctx context.Context, action, userID string, attrs map[string]string) {
	if s.audit != nil {
		s.audit.LogEvent(ctx, "", userID, action, "session", attrs)
	}
	if s.events != nil {
		telemetry.EmitAsync(ctx, s.events, &telemetrydomain.Event{
			Type:       action,
			UserID:     userID,
			Attributes: attrs,
			OccurredAt: s.now(),
		})
	}
}

var errPasswordLength = errors.New("password must be at least 12 characters")

func validatePassword(password string) error {
	if len(password) < 12 {
		return errPasswordLength
	}
	var hasUpper, hasLower, hasNumber, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasNumber = true
		default:
			hasSymbol = true
		}
	}
	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return errors.New("password must contain at least one number")
	}
	if !hasSymbol {
		return errors.New("password must contain at least one symbol")
	}
	return nil
}
