package interceptors

import (
	"context"
	"strconv"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"orgmembership/internal/telemetry"
	"orgmembership/internal/telemetry/domain"
)

// EventGRPCRequest is the telemetry event type emitted once per RPC.
const EventGRPCRequest = "grpc_request"

// TelemetryUnary returns a unary server interceptor that emits a grpc_request event after each RPC.
// Best-effort: the emit runs asynchronously and never fails the RPC. A nil emitter no-ops.
// skipMethods is the set of full method names to not emit (e.g. the health check).
func TelemetryUnary(emitter telemetry.EventEmitter, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if emitter == nil || skipMethods[info.FullMethod] {
			return resp, err
		}
		userID, _ := GetUserID(ctx)
		sessionID, _ := GetSessionID(ctx)
		telemetry.EmitAsync(ctx, emitter, &domain.Event{
			Type:   EventGRPCRequest,
			UserID: userID,
			Attributes: map[string]string{
				"full_method": info.FullMethod,
				"status_code": status.Code(err).String(),
				"duration_ms": strconv.FormatInt(time.Since(start).Milliseconds(), 10),
				"client_ip":   ClientIP(ctx),
				"session_id":  sessionID,
			},
			OccurredAt: start.UTC(),
		})
		return resp, err
	}
}
