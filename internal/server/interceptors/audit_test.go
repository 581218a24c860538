package interceptors

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"orgmembership/internal/audit"
)

type loggedEvent struct {
	orgID, userID, action, resource string
	metadata                        map[string]string
}

// recordingAuditLogger implements audit.AuditLogger for interceptor tests.
type recordingAuditLogger struct {
	mu     sync.Mutex
	events []loggedEvent
}

func (r *recordingAuditLogger) LogEvent(ctx context.Context, orgID, userID, action, resource string, metadata map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, loggedEvent{orgID, userID, action, resource, metadata})
}

func TestAuditUnary(t *testing.T) {
	const method = "/orgmembership.v1.MembershipService/RemoveMember"
	tests := []struct {
		name    string
		method  string
		skip    bool
		err     error
		wantLog bool
	}{
		{"success not audited", method, false, nil, false},
		{"permission denied", method, false, status.Error(codes.PermissionDenied, "admin required"), true},
		{"unauthenticated", method, false, status.Error(codes.Unauthenticated, "missing"), true},
		{"other failure not audited", method, false, status.Error(codes.NotFound, "gone"), false},
		{"plain error not audited", method, false, errors.New("boom"), false},
		{"skipped method", method, true, status.Error(codes.PermissionDenied, "no"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logger := &recordingAuditLogger{}
			skip := map[string]bool{}
			if tc.skip {
				skip[tc.method] = true
			}
			interceptor := AuditUnary(logger, skip)
			ctx := WithIdentity(context.Background(), "user-1", "a@x.com", "session-1")
			ctx = metadata.NewIncomingContext(ctx, metadata.Pairs("x-real-ip", "10.0.0.9"))
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return "resp", tc.err
			}
			resp, err := interceptor(ctx, "request", &grpc.UnaryServerInfo{FullMethod: tc.method}, handler)
			if !errors.Is(err, tc.err) && status.Code(err) != status.Code(tc.err) {
				t.Errorf("err = %v, want %v", err, tc.err)
			}
			if resp != "resp" {
				t.Errorf("resp = %v, want passthrough", resp)
			}
			if got := len(logger.events) == 1; got != tc.wantLog {
				t.Fatalf("audited = %v (%d events), want %v", got, len(logger.events), tc.wantLog)
			}
			if !tc.wantLog {
				return
			}
			ev := logger.events[0]
			if ev.action != audit.ActionAccessDenied || ev.resource != tc.method || ev.userID != "user-1" {
				t.Errorf("event = %+v", ev)
			}
			if ev.metadata["code"] != status.Code(tc.err).String() || ev.metadata["client_ip"] != "10.0.0.9" {
				t.Errorf("metadata = %v", ev.metadata)
			}
		})
	}
}

func TestAuditUnary_NilLogger(t *testing.T) {
	interceptor := AuditUnary(nil, nil)
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.PermissionDenied, "no")
	}
	_, err := interceptor(context.Background(), "request", &grpc.UnaryServerInfo{FullMethod: "/x/y"}, handler)
	if status.Code(err) != codes.PermissionDenied {
		t.Errorf("code = %v, want PermissionDenied", status.Code(err))
	}
}

func TestClientIP(t *testing.T) {
	md := func(kv map[string]string) context.Context {
		return metadata.NewIncomingContext(context.Background(), metadata.New(kv))
	}
	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{"x-forwarded-for", md(map[string]string{"x-forwarded-for": "192.168.1.1"}), "192.168.1.1"},
		{"x-forwarded-for list", md(map[string]string{"x-forwarded-for": "192.168.1.1, 10.0.0.1"}), "192.168.1.1"},
		{"x-forwarded-for whitespace", md(map[string]string{"x-forwarded-for": "  192.168.1.1  "}), "192.168.1.1"},
		{"x-real-ip", md(map[string]string{"x-real-ip": "192.168.1.2"}), "192.168.1.2"},
		{"forwarded wins", md(map[string]string{"x-forwarded-for": "192.168.1.1", "x-real-ip": "192.168.1.2"}), "192.168.1.1"},
		{"peer", peer.NewContext(context.Background(), &peer.Peer{
			Addr: &net.TCPAddr{IP: net.ParseIP("192.168.1.3"), Port: 12345},
		}), "192.168.1.3"},
		{"unknown", context.Background(), "unknown"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClientIP(tc.ctx); got != tc.want {
				t.Errorf("ip = %q, want %q", got, tc.want)
			}
		})
	}
}
