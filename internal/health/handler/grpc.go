package handler

import (
	"context"

	"github.com/charmbracelet/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Pinger checks the document store is reachable. docstore backends implement it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PolicyChecker checks the authorization engine is ready, e.g. *engine.OPAAuthorizer.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server implements grpc.health.v1.Health as a readiness probe over the store and the policy engine.
type Server struct {
	grpc_health_v1.UnimplementedHealthServer
	pinger   Pinger
	policy   PolicyChecker
	services map[string]bool
	logger   *log.Logger
}

// NewServer returns a Health server. pinger and policy may be nil; then that check is skipped.
// services names the gRPC services Check answers for besides the overall "" service.
func NewServer(pinger Pinger, policy PolicyChecker, logger *log.Logger, services ...string) *Server {
	if logger == nil {
		logger = log.Default()
	}
	known := map[string]bool{"": true}
	for _, s := range services {
		known[s] = true
	}
	return &Server{pinger: pinger, policy: policy, services: known, logger: logger.WithPrefix("health")}
}

// Check reports SERVING when the store answers a ping and the policy engine is ready.
func (s *Server) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	if !s.services[req.GetService()] {
		return nil, status.Error(codes.NotFound, "unknown service")
	}
	if s.pinger != nil {
		if err := s.pinger.Ping(ctx); err != nil {
			s.logger.Warn("store ping failed", "err", err)
			return notServing(), nil
		}
	}
	if s.policy != nil {
		if err := s.policy.HealthCheck(ctx); err != nil {
			s.logger.Warn("policy engine not ready", "err", err)
			return notServing(), nil
		}
	}
	return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING}, nil
}

func notServing() *grpc_health_v1.HealthCheckResponse {
	return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_NOT_SERVING}
}
