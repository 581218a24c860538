package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"orgmembership/internal/audit"
	auditrepo "orgmembership/internal/audit/repository"
	"orgmembership/internal/docstore"
	"orgmembership/internal/docstore/memstore"
	identitydomain "orgmembership/internal/identity/domain"
	identityrepo "orgmembership/internal/identity/repository"
	"orgmembership/internal/platform/logging"
	"orgmembership/internal/security"
	sessionrepo "orgmembership/internal/session/repository"
	userdomain "orgmembership/internal/user/domain"
	userrepo "orgmembership/internal/user/repository"
)

const goodPassword = "Correct-Horse-9"

type authFixture struct {
	svc      *AuthService
	store    docstore.Store
	users    *userrepo.DocumentRepository
	sessions *sessionrepo.DocumentRepository
	audits   *auditrepo.DocumentRepository
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	store := memstore.New()
	audits := auditrepo.NewDocumentRepository(store)
	users := userrepo.NewDocumentRepository(store)
	sessions := sessionrepo.NewDocumentRepository(store)
	svc := NewAuthService(
		users,
		identityrepo.NewDocumentRepository(store),
		sessions,
		security.NewHasher(4),
		tokens,
		audit.NewLogger(audits, logging.Discard()),
		nil,
		logging.Discard(),
	)
	return &authFixture{svc: svc, store: store, users: users, sessions: sessions, audits: audits}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []SessionEvent
}

func (r *eventRecorder) record(ctx context.Context, ev SessionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) kinds() []SessionEventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SessionEventKind, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

func TestSignUp(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	rec := &eventRecorder{}
	f.svc.OnSessionChange(rec.record)

	res, err := f.svc.SignUp(ctx, "  Foo@Bar.com ", goodPassword, " Foo ")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if res.UserID == "" || res.SessionID == "" || res.AccessToken == "" {
		t.Fatalf("result = %+v", res)
	}
	if res.Email != "foo@bar.com" {
		t.Errorf("email = %q, want normalized", res.Email)
	}
	u, err := f.users.GetByID(ctx, res.UserID)
	if err != nil || u == nil {
		t.Fatalf("GetByID: %v, %v", u, err)
	}
	if u.DisplayName != "Foo" || u.Affiliated() || u.Status != userdomain.UserStatusActive {
		t.Errorf("user = %+v", u)
	}
	ident, err := identityrepo.NewDocumentRepository(f.store).GetByUserAndProvider(ctx, res.UserID, identitydomain.IdentityProviderLocal)
	if err != nil || ident == nil {
		t.Fatalf("identity = %v, %v", ident, err)
	}
	if ident.PasswordHash == goodPassword || ident.PasswordHash == "" {
		t.Error("password stored in clear or missing")
	}
	if got := rec.kinds(); !slices.Equal(got, []SessionEventKind{SignedIn}) {
		t.Errorf("events = %v", got)
	}
	claims, err := f.svc.Authenticate(ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if claims.Subject != res.UserID || claims.SessionID != res.SessionID || claims.Email != "foo@bar.com" {
		t.Errorf("claims = %+v", claims)
	}
	entries, _ := f.audits.ListByOrg(ctx, audit.SentinelOrgID, 0)
	if len(entries) != 1 || entries[0].Action != audit.ActionSignUp {
		t.Errorf("audit entries = %+v", entries)
	}
}

func TestSignUp_Errors(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	if _, err := f.svc.SignUp(ctx, "taken@x.com", goodPassword, ""); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	testCases := []struct {
		name     string
		email    string
		password string
		want     AuthErrorCode
	}{
		{"invalid email", "nope", goodPassword, CodeInvalidEmail},
		{"empty email", "", goodPassword, CodeInvalidEmail},
		{"short password", "a@x.com", "Sh0rt!", CodeWeakPassword},
		{"no uppercase", "a@x.com", "correct-horse-9", CodeWeakPassword},
		{"no symbol", "a@x.com", "CorrectHorse99", CodeWeakPassword},
		{"no number", "a@x.com", "Correct-Horse-", CodeWeakPassword},
		{"email in use", "TAKEN@x.com", goodPassword, CodeEmailAlreadyInUse},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.SignUp(ctx, tc.email, tc.password, "")
			if !IsAuthError(err, tc.want) {
				t.Errorf("err = %v, want %s", err, tc.want)
			}
		})
	}
}

func TestSignIn(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	up, err := f.svc.SignUp(ctx, "a@x.com", goodPassword, "")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	rec := &eventRecorder{}
	f.svc.OnSessionChange(rec.record)

	res, err := f.svc.SignIn(ctx, "A@X.COM", goodPassword)
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if res.UserID != up.UserID || res.SessionID == up.SessionID {
		t.Errorf("SignIn = %+v, want same user with a new session", res)
	}
	if got := rec.kinds(); !slices.Equal(got, []SessionEventKind{SignedIn}) {
		t.Errorf("events = %v", got)
	}
	if rec.events[0].Email != "a@x.com" {
		t.Errorf("event email = %q", rec.events[0].Email)
	}
}

func TestSignIn_Errors(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	up, err := f.svc.SignUp(ctx, "a@x.com", goodPassword, "")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	rec := &eventRecorder{}
	f.svc.OnSessionChange(rec.record)

	testCases := []struct {
		name     string
		email    string
		password string
		want     AuthErrorCode
	}{
		{"malformed email", "a-at-x", goodPassword, CodeInvalidEmail},
		{"unknown email", "b@x.com", goodPassword, CodeInvalidCredential},
		{"wrong password", "a@x.com", "Wrong-Horse-99", CodeInvalidCredential},
		{"empty password", "a@x.com", "", CodeInvalidCredential},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.SignIn(ctx, tc.email, tc.password)
			if !IsAuthError(err, tc.want) {
				t.Errorf("err = %v, want %s", err, tc.want)
			}
		})
	}

	u, _ := f.users.GetByID(ctx, up.UserID)
	u.Status = userdomain.UserStatusDisabled
	if err := f.users.Create(ctx, u); err != nil {
		t.Fatalf("disable user: %v", err)
	}
	if _, err := f.svc.SignIn(ctx, "a@x.com", goodPassword); !IsAuthError(err, CodeUserDisabled) {
		t.Errorf("disabled user err = %v", err)
	}
	if len(rec.kinds()) != 0 {
		t.Errorf("failed sign-ins fired events: %v", rec.kinds())
	}
	entries, _ := f.audits.ListByOrg(ctx, audit.SentinelOrgID, 0)
	failures := 0
	for _, e := range entries {
		if e.Action == audit.ActionSignInFailure {
			failures++
		}
	}
	if failures != 4 {
		t.Errorf("sign-in failures audited = %d, want 4", failures)
	}
}

func TestSignOut(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	res, err := f.svc.SignUp(ctx, "a@x.com", goodPassword, "")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	rec := &eventRecorder{}
	unsubscribe := f.svc.OnSessionChange(rec.record)

	if err := f.svc.SignOut(ctx, res.SessionID); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if got := rec.kinds(); !slices.Equal(got, []SessionEventKind{SignedOut}) {
		t.Errorf("events = %v", got)
	}
	if rec.events[0].UserID != res.UserID {
		t.Errorf("signed-out user = %q", rec.events[0].UserID)
	}
	if _, err := f.svc.Authenticate(ctx, res.AccessToken); !IsAuthError(err, CodeSessionExpired) {
		t.Errorf("Authenticate after sign-out err = %v", err)
	}

	// Repeated sign-out is a no-op and fires nothing.
	if err := f.svc.SignOut(ctx, res.SessionID); err != nil {
		t.Errorf("second SignOut: %v", err)
	}
	if err := f.svc.SignOut(ctx, ""); err != nil {
		t.Errorf("SignOut empty: %v", err)
	}
	if len(rec.kinds()) != 1 {
		t.Errorf("events = %v", rec.kinds())
	}

	unsubscribe()
	again, err := f.svc.SignIn(ctx, "a@x.com", goodPassword)
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	_ = f.svc.SignOut(ctx, again.SessionID)
	if len(rec.kinds()) != 1 {
		t.Errorf("unsubscribed listener still called: %v", rec.kinds())
	}
}

func TestSignOutAll(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	first, err := f.svc.SignUp(ctx, "a@x.com", goodPassword, "")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	second, err := f.svc.SignIn(ctx, "a@x.com", goodPassword)
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	other, err := f.svc.SignUp(ctx, "b@x.com", goodPassword, "")
	if err != nil {
		t.Fatalf("SignUp other: %v", err)
	}
	rec := &eventRecorder{}
	f.svc.OnSessionChange(rec.record)

	if err := f.svc.SignOutAll(ctx, first.UserID); err != nil {
		t.Fatalf("SignOutAll: %v", err)
	}
	for _, res := range []*AuthResult{first, second} {
		if _, err := f.svc.Authenticate(ctx, res.AccessToken); !IsAuthError(err, CodeSessionExpired) {
			t.Errorf("session %s still live: %v", res.SessionID, err)
		}
	}
	if _, err := f.svc.Authenticate(ctx, other.AccessToken); err != nil {
		t.Errorf("other principal signed out: %v", err)
	}
	if len(rec.events) != 1 || rec.events[0].Kind != SignedOut || rec.events[0].SessionID != "" {
		t.Errorf("events = %+v", rec.events)
	}
	if err := f.svc.SignOutAll(ctx, ""); err != nil {
		t.Errorf("SignOutAll empty: %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	res, err := f.svc.SignUp(ctx, "a@x.com", goodPassword, "")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	if _, err := f.svc.Authenticate(ctx, "not-a-token"); !IsAuthError(err, CodeInvalidCredential) {
		t.Errorf("garbage token err = %v", err)
	}
	var ae *AuthError
	if _, err := f.svc.Authenticate(ctx, ""); !errors.As(err, &ae) {
		t.Errorf("empty token err = %v, want AuthError", err)
	}

	if _, err := f.svc.Authenticate(ctx, res.AccessToken); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	sess, _ := f.sessions.GetByID(ctx, res.SessionID)
	if sess.LastSeenAt == nil {
		t.Error("Authenticate did not record activity")
	}

	f.svc.now = func() time.Time { return time.Now().UTC().Add(time.Hour) }
	if _, err := f.svc.Authenticate(ctx, res.AccessToken); !IsAuthError(err, CodeSessionExpired) {
		t.Errorf("expired session err = %v", err)
	}
}

func TestOnSessionChange_Order(t *testing.T) {
	f := newAuthFixture(t)
	var order []string
	f.svc.OnSessionChange(func(context.Context, SessionEvent) { order = append(order, "first") })
	f.svc.OnSessionChange(func(context.Context, SessionEvent) { order = append(order, "second") })
	if _, err := f.svc.SignUp(context.Background(), "a@x.com", goodPassword, ""); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if !slices.Equal(order, []string{"first", "second"}) {
		t.Errorf("order = %v", order)
	}
}

func TestAuthError(t *testing.T) {
	cause := errors.New("boom")
	err := error(authError(CodeInvalidCredential, cause))
	if !errors.Is(err, cause) {
		t.Error("AuthError does not unwrap its cause")
	}
	if got := authError(CodeWeakPassword, nil).Error(); got != "auth: weak-password" {
		t.Errorf("Error() = %q", got)
	}
	if IsAuthError(cause, CodeInvalidCredential) {
		t.Error("plain error reported as AuthError")
	}
}

func TestSessionEventKind_String(t *testing.T) {
	if SignedIn.String() != "signed_in" || SignedOut.String() != "signed_out" || SessionEventKind(0).String() != "unknown" {
		t.Error("unexpected SessionEventKind strings")
	}
}
