package telemetry

import (
	"context"

	"orgmembership/internal/telemetry/domain"
)

// EventEmitter exports events (e.g. as OTel log records). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *domain.Event) error
}

// EmitterFunc adapts a function to EventEmitter.
type EmitterFunc func(ctx context.Context, event *domain.Event) error

// Emit calls f.
func (f EmitterFunc) Emit(ctx context.Context, event *domain.Event) error {
	return f(ctx, event)
}
