package telemetry

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"orgmembership/internal/telemetry/domain"
)

// emitTimeout bounds a single async emit.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long to wait after GracefulStop before shutting
// down OTel providers so in-flight async emits can finish. Must be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

// EmitAsync emits event in a goroutine detached from ctx cancellation.
// A nil emitter or event is a no-op.
func EmitAsync(ctx context.Context, emitter EventEmitter, event *domain.Event) {
	if emitter == nil || event == nil {
		return
	}
	logger := log.FromContext(ctx)
	go func() {
		emitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), emitTimeout)
		defer cancel()
		if err := emitter.Emit(emitCtx, event); err != nil {
			logger.Warn("telemetry: async emit failed", "type", event.Type, "err", err)
		}
	}()
}
