package interceptors

import (
	"context"
	"net"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"orgmembership/internal/audit"
)

// AuditUnary returns a unary server interceptor that records an access_denied audit
// entry when an RPC fails with Unauthenticated or PermissionDenied. Successful
// membership changes are audited by the services themselves.
// skipMethods is the set of full method names to not audit (e.g. the health check).
func AuditUnary(logger audit.AuditLogger, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if logger == nil || err == nil || skipMethods[info.FullMethod] {
			return resp, err
		}
		code := status.Code(err)
		if code != codes.Unauthenticated && code != codes.PermissionDenied {
			return resp, err
		}
		userID, _ := GetUserID(ctx)
		logger.LogEvent(ctx, "", userID, audit.ActionAccessDenied, info.FullMethod, map[string]string{
			"code":      code.String(),
			"client_ip": ClientIP(ctx),
		})
		return resp, err
	}
}

// ClientIP returns the client IP from gRPC metadata (x-forwarded-for, x-real-ip) or peer, or "unknown".
func ClientIP(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get("x-forwarded-for"); len(vals) > 0 {
			if s := strings.TrimSpace(vals[0]); s != "" {
				if i := strings.Index(s, ","); i > 0 {
					s = strings.TrimSpace(s[:i])
				}
				return s
			}
		}
		if vals := md.Get("x-real-ip"); len(vals) > 0 {
			if s := strings.TrimSpace(vals[0]); s != "" {
				return s
			}
		}
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
			return host
		}
		return p.Addr.String()
	}
	return "unknown"
}
