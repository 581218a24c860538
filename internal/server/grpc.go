package server

import (
	"github.com/charmbracelet/log"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	membershipv1 "orgmembership/api/membership/v1"
	"orgmembership/internal/audit"
	healthhandler "orgmembership/internal/health/handler"
	identityhandler "orgmembership/internal/identity/handler"
	identityservice "orgmembership/internal/identity/service"
	membershiphandler "orgmembership/internal/membership/handler"
	membershipservice "orgmembership/internal/membership/service"
	"orgmembership/internal/server/interceptors"
	"orgmembership/internal/telemetry"
)

// Deps holds optional service dependencies for gRPC handlers.
type Deps struct {
	// Auth is the auth service for SignUp/SignIn/SignOut and token authentication. If nil, auth RPCs return Unimplemented.
	Auth *identityservice.AuthService
	// Membership is the membership service. If nil, membership RPCs return Unimplemented.
	Membership *membershipservice.Service
	// Audit records access-denied RPCs. If nil, the audit interceptor is not installed.
	Audit audit.AuditLogger
	// Events receives one grpc_request event per RPC. If nil, the telemetry interceptor is not installed.
	Events telemetry.EventEmitter
	// HealthPinger is used by the health service for readiness (the document store). If nil, Check skips the store ping.
	HealthPinger healthhandler.Pinger
	// HealthPolicyChecker is used by the health service for readiness (the OPA authorizer). If nil, Check skips the policy check.
	HealthPolicyChecker healthhandler.PolicyChecker
	Logger              *log.Logger
}

const healthListMethod = "/grpc.health.v1.Health/List"

// PublicMethods do not require a Bearer token.
var PublicMethods = map[string]bool{
	membershipv1.AuthService_SignUp_FullMethodName: true,
	membershipv1.AuthService_SignIn_FullMethodName: true,
	grpc_health_v1.Health_Check_FullMethodName:     true,
	grpc_health_v1.Health_Watch_FullMethodName:     true,
	healthListMethod:                               true,
}

// quietMethods are excluded from audit and telemetry.
var quietMethods = map[string]bool{
	grpc_health_v1.Health_Check_FullMethodName: true,
	grpc_health_v1.Health_Watch_FullMethodName: true,
	healthListMethod:                           true,
}

// RegisterServices registers all gRPC services with the given server.
//
// Service → handler mapping:
//   - orgmembership.v1.AuthService       → internal/identity/handler
//   - orgmembership.v1.MembershipService → internal/membership/handler
//   - grpc.health.v1.Health              → internal/health/handler
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	var (
		auth       identityhandler.Authenticator
		membership membershiphandler.Membership
		invites    identityhandler.InvitationLister
	)
	if deps.Auth != nil {
		auth = deps.Auth
	}
	if deps.Membership != nil {
		membership = deps.Membership
		invites = deps.Membership
	}
	membershipv1.RegisterAuthServiceServer(s, identityhandler.NewAuthServer(auth, invites, logger))
	membershipv1.RegisterMembershipServiceServer(s, membershiphandler.NewServer(membership, logger))
	grpc_health_v1.RegisterHealthServer(s, healthhandler.NewServer(
		deps.HealthPinger,
		deps.HealthPolicyChecker,
		logger,
		membershipv1.AuthService_ServiceDesc.ServiceName,
		membershipv1.MembershipService_ServiceDesc.ServiceName,
	))
}

// NewGRPCServer returns a server with the OpenTelemetry stats handler and the
// auth, audit and telemetry interceptors installed, and all services registered.
// Interceptors run in that order, so audit and telemetry see the caller identity.
func NewGRPCServer(deps Deps, opts ...grpc.ServerOption) *grpc.Server {
	var chain []grpc.UnaryServerInterceptor
	if deps.Auth != nil {
		chain = append(chain, interceptors.AuthUnary(deps.Auth, PublicMethods))
	}
	if deps.Audit != nil {
		chain = append(chain, interceptors.AuditUnary(deps.Audit, quietMethods))
	}
	if deps.Events != nil {
		chain = append(chain, interceptors.TelemetryUnary(deps.Events, quietMethods))
	}
	opts = append([]grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(chain...),
	}, opts...)
	s := grpc.NewServer(opts...)
	RegisterServices(s, deps)
	return s
}
