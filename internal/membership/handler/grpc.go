package handler

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	membershipv1 "orgmembership/api/membership/v1"
	auditdomain "orgmembership/internal/audit/domain"
	invitationdomain "orgmembership/internal/invitation/domain"
	membershipdomain "orgmembership/internal/membership/domain"
	membershipservice "orgmembership/internal/membership/service"
	orgdomain "orgmembership/internal/organization/domain"
	"orgmembership/internal/platform/rbac"
)

// defaultHistoryLimit applies when ListAuditLog is called without a limit.
const defaultHistoryLimit = 50

// Membership is the membership state machine served by Server.
// *membershipservice.Service implements it.
type Membership interface {
	CreateOrganization(ctx context.Context, name string, actor membershipservice.Actor) (string, error)
	GetOrganization(ctx context.Context, orgID string, actor membershipservice.Actor) (*orgdomain.Org, error)
	InviteMember(ctx context.Context, email, orgID string, actor membershipservice.Actor) (*invitationdomain.Invitation, error)
	PendingInvitations(ctx context.Context, email string) ([]*invitationdomain.Invitation, error)
	OrganizationInvitations(ctx context.Context, orgID string, actor membershipservice.Actor) ([]*invitationdomain.Invitation, error)
	AcceptInvitation(ctx context.Context, invitationID string, actor membershipservice.Actor) error
	DeclineInvitation(ctx context.Context, invitationID, email string) error
	ChangeRole(ctx context.Context, targetUID string, role membershipdomain.Role, orgID string, actor membershipservice.Actor) error
	RemoveMember(ctx context.Context, targetUID, orgID string, actor membershipservice.Actor) error
	History(ctx context.Context, orgID string, actor membershipservice.Actor, limit int) ([]*auditdomain.AuditLog, error)
}

var _ Membership = (*membershipservice.Service)(nil)

// Server implements MembershipService (gRPC) on the membership service.
// Every RPC acts as the caller set by the auth interceptor.
type Server struct {
	membershipv1.UnimplementedMembershipServiceServer
	svc    Membership
	logger *log.Logger
}

// NewServer returns a Membership gRPC server. svc may be nil; then all RPCs return Unimplemented.
func NewServer(svc Membership, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{svc: svc, logger: logger.WithPrefix("membership")}
}

// CreateOrganization creates an organization named req.name with the caller as admin.
func (s *Server) CreateOrganization(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method CreateOrganization not implemented")
	}
	actor, err := rbac.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	name := membershipv1.String(req, membershipv1.FieldName)
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "name required")
	}
	orgID, err := s.svc.CreateOrganization(ctx, name, actor)
	if err != nil {
		return nil, s.toStatus("CreateOrganization", err)
	}
	return s.respond(map[string]any{membershipv1.FieldOrganizationID: orgID})
}

// GetOrganization returns req.organization_id to one of its members.
func (s *Server) GetOrganization(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method GetOrganization not implemented")
	}
	actor, orgID, err := s.orgRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	org, err := s.svc.GetOrganization(ctx, orgID, actor)
	if err != nil {
		return nil, s.toStatus("GetOrganization", err)
	}
	return s.respond(map[string]any{membershipv1.FieldOrganization: OrganizationToMap(org)})
}

// InviteMember invites req.email into req.organization_id.
func (s *Server) InviteMember(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method InviteMember not implemented")
	}
	actor, orgID, err := s.orgRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	email := membershipv1.String(req, membershipv1.FieldEmail)
	if email == "" {
		return nil, status.Error(codes.InvalidArgument, "email required")
	}
	inv, err := s.svc.InviteMember(ctx, email, orgID, actor)
	if err != nil {
		return nil, s.toStatus("InviteMember", err)
	}
	return s.respond(map[string]any{membershipv1.FieldInvitation: InvitationToMap(inv)})
}

// ListPendingInvitations returns the invitations pending for the caller's email.
func (s *Server) ListPendingInvitations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method ListPendingInvitations not implemented")
	}
	actor, err := rbac.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	invs, err := s.svc.PendingInvitations(ctx, actor.Email)
	if err != nil {
		return nil, s.toStatus("ListPendingInvitations", err)
	}
	return s.respond(map[string]any{membershipv1.FieldInvitations: InvitationsToList(invs)})
}

// ListOrganizationInvitations returns the pending invitations of req.organization_id.
func (s *Server) ListOrganizationInvitations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method ListOrganizationInvitations not implemented")
	}
	actor, orgID, err := s.orgRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	invs, err := s.svc.OrganizationInvitations(ctx, orgID, actor)
	if err != nil {
		return nil, s.toStatus("ListOrganizationInvitations", err)
	}
	return s.respond(map[string]any{membershipv1.FieldInvitations: InvitationsToList(invs)})
}

// AcceptInvitation joins the caller to the organization of req.invitation_id.
func (s *Server) AcceptInvitation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method AcceptInvitation not implemented")
	}
	actor, invitationID, err := s.invitationRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.svc.AcceptInvitation(ctx, invitationID, actor); err != nil {
		return nil, s.toStatus("AcceptInvitation", err)
	}
	return &structpb.Struct{}, nil
}

// DeclineInvitation declines req.invitation_id on behalf of the caller's email.
func (s *Server) DeclineInvitation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method DeclineInvitation not implemented")
	}
	actor, invitationID, err := s.invitationRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.svc.DeclineInvitation(ctx, invitationID, actor.Email); err != nil {
		return nil, s.toStatus("DeclineInvitation", err)
	}
	return &structpb.Struct{}, nil
}

// ChangeRole sets req.user_id's role in req.organization_id to req.role.
func (s *Server) ChangeRole(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method ChangeRole not implemented")
	}
	actor, orgID, err := s.orgRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	target := membershipv1.String(req, membershipv1.FieldUserID)
	if target == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id required")
	}
	role := membershipdomain.Role(membershipv1.String(req, membershipv1.FieldRole))
	if !role.Valid() {
		return nil, status.Error(codes.InvalidArgument, "role must be admin or member")
	}
	if err := s.svc.ChangeRole(ctx, target, role, orgID, actor); err != nil {
		return nil, s.toStatus("ChangeRole", err)
	}
	return &structpb.Struct{}, nil
}

// RemoveMember removes req.user_id from req.organization_id.
func (s *Server) RemoveMember(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method RemoveMember not implemented")
	}
	actor, orgID, err := s.orgRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	target := membershipv1.String(req, membershipv1.FieldUserID)
	if target == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id required")
	}
	if err := s.svc.RemoveMember(ctx, target, orgID, actor); err != nil {
		return nil, s.toStatus("RemoveMember", err)
	}
	return &structpb.Struct{}, nil
}

// ListAuditLog returns up to req.limit recent membership events of req.organization_id.
func (s *Server) ListAuditLog(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method ListAuditLog not implemented")
	}
	actor, orgID, err := s.orgRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	limit := membershipv1.Int(req, membershipv1.FieldLimit)
	if limit < 0 {
		return nil, status.Error(codes.InvalidArgument, "limit must not be negative")
	}
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	entries, err := s.svc.History(ctx, orgID, actor, limit)
	if err != nil {
		return nil, s.toStatus("ListAuditLog", err)
	}
	list := make([]any, 0, len(entries))
	for _, e := range entries {
		list = append(list, AuditLogToMap(e))
	}
	return s.respond(map[string]any{membershipv1.FieldEntries: list})
}

func (s *Server) orgRequest(ctx context.Context, req *structpb.Struct) (membershipservice.Actor, string, error) {
	actor, err := rbac.RequireActor(ctx)
	if err != nil {
		return actor, "", err
	}
	orgID := membershipv1.String(req, membershipv1.FieldOrganizationID)
	if orgID == "" {
		return actor, "", status.Error(codes.InvalidArgument, "organization_id required")
	}
	return actor, orgID, nil
}

func (s *Server) invitationRequest(ctx context.Context, req *structpb.Struct) (membershipservice.Actor, string, error) {
	actor, err := rbac.RequireActor(ctx)
	if err != nil {
		return actor, "", err
	}
	id := membershipv1.String(req, membershipv1.FieldInvitationID)
	if id == "" {
		return actor, "", status.Error(codes.InvalidArgument, "invitation_id required")
	}
	return actor, id, nil
}

func (s *Server) respond(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		s.logger.Error("encode response", "err", err)
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

func (s *Server) toStatus(method string, err error) error {
	st := StatusFromError(err)
	if st.Code() == codes.Internal || st.Code() == codes.Unavailable {
		s.logger.Error("rpc failed", "method", method, "err", err)
	}
	return st.Err()
}

// StatusFromError maps a membership service error to a gRPC status. Business
// errors carry their message; anything unrecognized becomes Internal.
func StatusFromError(err error) *status.Status {
	switch {
	case errors.Is(err, membershipservice.ErrValidation):
		return status.New(codes.InvalidArgument, err.Error())
	case errors.Is(err, membershipservice.ErrAlreadyMember),
		errors.Is(err, membershipservice.ErrDuplicateInvite):
		return status.New(codes.AlreadyExists, err.Error())
	case errors.Is(err, membershipservice.ErrLastAdmin),
		errors.Is(err, membershipservice.ErrInvitationResolved),
		errors.Is(err, membershipservice.ErrSelfRoleChange):
		return status.New(codes.FailedPrecondition, err.Error())
	case errors.Is(err, membershipservice.ErrNotFound):
		return status.New(codes.NotFound, err.Error())
	case errors.Is(err, membershipservice.ErrForbidden),
		errors.Is(err, membershipservice.ErrEmailMismatch):
		return status.New(codes.PermissionDenied, err.Error())
	case errors.Is(err, membershipservice.ErrPersistence):
		return status.New(codes.Unavailable, "storage unavailable")
	case errors.Is(err, context.Canceled):
		return status.New(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.New(codes.DeadlineExceeded, err.Error())
	default:
		return status.New(codes.Internal, "internal error")
	}
}
