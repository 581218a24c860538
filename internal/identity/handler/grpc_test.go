package handler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	membershipv1 "orgmembership/api/membership/v1"
	"orgmembership/internal/docstore/memstore"
	identityrepo "orgmembership/internal/identity/repository"
	identityservice "orgmembership/internal/identity/service"
	invitationdomain "orgmembership/internal/invitation/domain"
	"orgmembership/internal/platform/logging"
	"orgmembership/internal/security"
	"orgmembership/internal/server/interceptors"
	sessionrepo "orgmembership/internal/session/repository"
	userrepo "orgmembership/internal/user/repository"
)

const goodPassword = "Correct-Horse-9"

// fakeInvitations implements InvitationLister.
type fakeInvitations struct {
	byEmail map[string][]*invitationdomain.Invitation
	err     error
}

func (f *fakeInvitations) PendingInvitations(ctx context.Context, email string) ([]*invitationdomain.Invitation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byEmail[email], nil
}

func newAuthService(t *testing.T) (*identityservice.AuthService, *sessionrepo.DocumentRepository) {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	store := memstore.New()
	sessions := sessionrepo.NewDocumentRepository(store)
	svc := identityservice.NewAuthService(
		userrepo.NewDocumentRepository(store),
		identityrepo.NewDocumentRepository(store),
		sessions,
		security.NewHasher(4),
		tokens,
		nil,
		nil,
		logging.Discard(),
	)
	return svc, sessions
}

func credentials(t *testing.T, email, password string) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(map[string]any{"email": email, "password": password, "display_name": "Bob"})
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	return s
}

func TestAuthServer_SignUpSignInSignOut(t *testing.T) {
	auth, sessions := newAuthService(t)
	invites := &fakeInvitations{byEmail: map[string][]*invitationdomain.Invitation{
		"bob@x.com": {{ID: "inv-1", Email: "bob@x.com", OrganizationID: "org-1", OrganizationName: "Acme", Status: invitationdomain.StatusPending}},
	}}
	srv := NewAuthServer(auth, invites, logging.Discard())
	ctx := context.Background()

	up, err := srv.SignUp(ctx, credentials(t, "Bob@X.com", goodPassword))
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if membershipv1.String(up, membershipv1.FieldEmail) != "bob@x.com" || membershipv1.String(up, membershipv1.FieldAccessToken) == "" {
		t.Fatalf("sign-up response = %v", up)
	}
	if membershipv1.Time(up, membershipv1.FieldExpiresAt).IsZero() {
		t.Error("expires_at missing")
	}

	in, err := srv.SignIn(ctx, credentials(t, "bob@x.com", goodPassword))
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	invs := membershipv1.Objects(in, membershipv1.FieldInvitations)
	if len(invs) != 1 || membershipv1.String(invs[0], membershipv1.FieldInvitationID) != "inv-1" {
		t.Fatalf("invitations = %v", invs)
	}

	sessionID := membershipv1.String(in, membershipv1.FieldSessionID)
	userID := membershipv1.String(in, membershipv1.FieldUserID)
	authed := interceptors.WithIdentity(ctx, userID, "bob@x.com", sessionID)
	if _, err := srv.SignOut(authed, &structpb.Struct{}); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	sess, err := sessions.GetByID(ctx, sessionID)
	if err != nil || sess == nil || sess.RevokedAt == nil {
		t.Fatalf("session after sign-out = %+v, %v", sess, err)
	}
}

func TestAuthServer_Errors(t *testing.T) {
	auth, _ := newAuthService(t)
	srv := NewAuthServer(auth, nil, logging.Discard())
	ctx := context.Background()
	if _, err := srv.SignUp(ctx, credentials(t, "taken@x.com", goodPassword)); err != nil {
		t.Fatalf("seed SignUp: %v", err)
	}

	tests := []struct {
		name string
		call func() error
		want codes.Code
	}{
		{"sign-up missing password", func() error { _, err := srv.SignUp(ctx, credentials(t, "a@x.com", "")); return err }, codes.InvalidArgument},
		{"sign-up bad email", func() error { _, err := srv.SignUp(ctx, credentials(t, "nope", goodPassword)); return err }, codes.InvalidArgument},
		{"sign-up weak password", func() error { _, err := srv.SignUp(ctx, credentials(t, "a@x.com", "short")); return err }, codes.InvalidArgument},
		{"sign-up taken", func() error { _, err := srv.SignUp(ctx, credentials(t, "taken@x.com", goodPassword)); return err }, codes.AlreadyExists},
		{"sign-in missing email", func() error { _, err := srv.SignIn(ctx, credentials(t, "", goodPassword)); return err }, codes.InvalidArgument},
		{"sign-in wrong password", func() error { _, err := srv.SignIn(ctx, credentials(t, "taken@x.com", "Wrong-Horse-99")); return err }, codes.Unauthenticated},
		{"sign-in unknown email", func() error { _, err := srv.SignIn(ctx, credentials(t, "ghost@x.com", goodPassword)); return err }, codes.Unauthenticated},
		{"sign-out without session", func() error { _, err := srv.SignOut(ctx, &structpb.Struct{}); return err }, codes.Unauthenticated},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := status.Code(tc.call()); got != tc.want {
				t.Errorf("code = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAuthServer_SignInSurvivesInvitationFailure(t *testing.T) {
	auth, _ := newAuthService(t)
	srv := NewAuthServer(auth, &fakeInvitations{err: errors.New("store down")}, logging.Discard())
	resp, err := srv.SignUp(context.Background(), credentials(t, "bob@x.com", goodPassword))
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if membershipv1.String(resp, membershipv1.FieldAccessToken) == "" {
		t.Error("no access token")
	}
	if invs := membershipv1.Objects(resp, membershipv1.FieldInvitations); len(invs) != 0 {
		t.Errorf("invitations = %v, want none", invs)
	}
}

func TestAuthServer_NilServiceUnimplemented(t *testing.T) {
	srv := NewAuthServer(nil, nil, nil)
	ctx := context.Background()
	for name, call := range map[string]func() error{
		"SignUp":  func() error { _, err := srv.SignUp(ctx, nil); return err },
		"SignIn":  func() error { _, err := srv.SignIn(ctx, nil); return err },
		"SignOut": func() error { _, err := srv.SignOut(ctx, nil); return err },
	} {
		if code := status.Code(call()); code != codes.Unimplemented {
			t.Errorf("%s code = %v, want Unimplemented", name, code)
		}
	}
}

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{&identityservice.AuthError{Code: identityservice.CodeInvalidEmail}, codes.InvalidArgument},
		{&identityservice.AuthError{Code: identityservice.CodeWeakPassword}, codes.InvalidArgument},
		{&identityservice.AuthError{Code: identityservice.CodeEmailAlreadyInUse}, codes.AlreadyExists},
		{fmt.Errorf("wrapped: %w", &identityservice.AuthError{Code: identityservice.CodeInvalidCredential}), codes.Unauthenticated},
		{&identityservice.AuthError{Code: identityservice.CodeUserDisabled}, codes.PermissionDenied},
		{&identityservice.AuthError{Code: identityservice.CodeSessionExpired}, codes.Unauthenticated},
		{errors.New("load user: boom"), codes.Internal},
	}
	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			if got := StatusFromError(tc.err).Code(); got != tc.want {
				t.Errorf("code = %v, want %v", got, tc.want)
			}
		})
	}
}
