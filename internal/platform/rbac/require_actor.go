// Package rbac resolves the authenticated caller for gRPC handlers. Role checks
// themselves are policy decisions made by the membership service.
package rbac

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	membershipservice "orgmembership/internal/membership/service"
	"orgmembership/internal/server/interceptors"
)

// RequireActor returns the caller set by the auth interceptor as a membership Actor.
// Returns a gRPC Unauthenticated error when user or email is missing.
func RequireActor(ctx context.Context) (membershipservice.Actor, error) {
	userID, okUser := interceptors.GetUserID(ctx)
	email, okEmail := interceptors.GetEmail(ctx)
	if !okUser || userID == "" || !okEmail || email == "" {
		return membershipservice.Actor{}, status.Error(codes.Unauthenticated, "user context required")
	}
	return membershipservice.Actor{ID: userID, Email: email}, nil
}

// RequireSession returns the caller's session id set by the auth interceptor.
func RequireSession(ctx context.Context) (string, error) {
	sessionID, ok := interceptors.GetSessionID(ctx)
	if !ok || sessionID == "" {
		return "", status.Error(codes.Unauthenticated, "session context required")
	}
	return sessionID, nil
}
