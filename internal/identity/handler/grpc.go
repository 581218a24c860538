package handler

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	membershipv1 "orgmembership/api/membership/v1"
	identityservice "orgmembership/internal/identity/service"
	invitationdomain "orgmembership/internal/invitation/domain"
	membershiphandler "orgmembership/internal/membership/handler"
	"orgmembership/internal/platform/rbac"
)

// Authenticator is the authentication provider served by AuthServer.
// *identityservice.AuthService implements it.
type Authenticator interface {
	SignUp(ctx context.Context, email, password, displayName string) (*identityservice.AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*identityservice.AuthResult, error)
	SignOut(ctx context.Context, sessionID string) error
}

// InvitationLister lists invitations pending for an email.
type InvitationLister interface {
	PendingInvitations(ctx context.Context, email string) ([]*invitationdomain.Invitation, error)
}

// AuthServer implements AuthService (gRPC) for sign-up, sign-in and sign-out.
type AuthServer struct {
	membershipv1.UnimplementedAuthServiceServer
	auth    Authenticator
	invites InvitationLister
	logger  *log.Logger
}

// NewAuthServer returns an Auth gRPC server. auth may be nil; then all RPCs return Unimplemented.
// invites may be nil; then sign-in responses carry no invitations.
func NewAuthServer(auth Authenticator, invites InvitationLister, logger *log.Logger) *AuthServer {
	if logger == nil {
		logger = log.Default()
	}
	return &AuthServer{auth: auth, invites: invites, logger: logger.WithPrefix("auth")}
}

// SignUp creates a principal for req.email and req.password and starts a session.
func (s *AuthServer) SignUp(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method SignUp not implemented")
	}
	email := membershipv1.String(req, membershipv1.FieldEmail)
	password := req.GetFields()[membershipv1.FieldPassword].GetStringValue()
	if email == "" || password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password required")
	}
	res, err := s.auth.SignUp(ctx, email, password, membershipv1.String(req, membershipv1.FieldDisplayName))
	if err != nil {
		return nil, s.toStatus("SignUp", err)
	}
	return s.sessionResponse(ctx, res)
}

// SignIn verifies req.email and req.password and starts a session. The
// response lists invitations pending for the email so the client can offer them.
func (s *AuthServer) SignIn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method SignIn not implemented")
	}
	email := membershipv1.String(req, membershipv1.FieldEmail)
	password := req.GetFields()[membershipv1.FieldPassword].GetStringValue()
	if email == "" || password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password required")
	}
	res, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		return nil, s.toStatus("SignIn", err)
	}
	return s.sessionResponse(ctx, res)
}

// SignOut revokes the caller's session.
func (s *AuthServer) SignOut(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method SignOut not implemented")
	}
	sessionID, err := rbac.RequireSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.auth.SignOut(ctx, sessionID); err != nil {
		return nil, s.toStatus("SignOut", err)
	}
	return &structpb.Struct{}, nil
}

func (s *AuthServer) sessionResponse(ctx context.Context, res *identityservice.AuthResult) (*structpb.Struct, error) {
	fields := map[string]any{
		membershipv1.FieldAccessToken: res.AccessToken,
		membershipv1.FieldExpiresAt:   membershipv1.FormatTime(res.ExpiresAt),
		membershipv1.FieldSessionID:   res.SessionID,
		membershipv1.FieldUserID:      res.UserID,
		membershipv1.FieldEmail:       res.Email,
		membershipv1.FieldInvitations: []any{},
	}
	if s.invites != nil {
		invs, err := s.invites.PendingInvitations(ctx, res.Email)
		if err != nil {
			// The session exists; the client can list invitations again later.
			s.logger.Warn("list pending invitations failed", "user", res.UserID, "err", err)
		} else {
			fields[membershipv1.FieldInvitations] = membershiphandler.InvitationsToList(invs)
		}
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		s.logger.Error("encode response", "err", err)
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

func (s *AuthServer) toStatus(method string, err error) error {
	st := StatusFromError(err)
	if st.Code() == codes.Internal {
		s.logger.Error("rpc failed", "method", method, "err", err)
	}
	return st.Err()
}

// StatusFromError maps an authentication error to a gRPC status. Credential
// failures share one message so callers cannot probe which emails exist.
func StatusFromError(err error) *status.Status {
	var ae *identityservice.AuthError
	if !errors.As(err, &ae) {
		return status.New(codes.Internal, "internal error")
	}
	switch ae.Code {
	case identityservice.CodeInvalidEmail:
		return status.New(codes.InvalidArgument, "invalid email")
	case identityservice.CodeWeakPassword:
		return status.New(codes.InvalidArgument, ae.Error())
	case identityservice.CodeEmailAlreadyInUse:
		return status.New(codes.AlreadyExists, "email already in use")
	case identityservice.CodeInvalidCredential:
		return status.New(codes.Unauthenticated, "invalid email or password")
	case identityservice.CodeUserDisabled:
		return status.New(codes.PermissionDenied, "user disabled")
	case identityservice.CodeSessionExpired:
		return status.New(codes.Unauthenticated, "session expired")
	default:
		return status.New(codes.Internal, "internal error")
	}
}
