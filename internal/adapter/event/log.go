package event

import (
	"context"
	"errors"

	"bloodbank-service/internal/domain/event"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// LogEmitter writes events to the log; used when no broker is configured.
type LogEmitter struct {
	log *zap.Logger
}

func NewLogEmitter(l *zap.Logger) *LogEmitter {
	if l == nil {
		l = zap.NewNop()
	}
	return &LogEmitter{log: l}
}

// Emit logs the event with the trace id of the operation that raised it, if any.
func (l *LogEmitter) Emit(ctx context.Context, e event.Event) error {
	fields := []zap.Field{
		zap.String("event_id", e.ID),
		zap.String("type", string(e.Type)),
		zap.String("key", e.Key()),
		zap.Time("occurred_at", e.OccurredAt),
		zap.Any("payload", e.Payload),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
	}
	l.log.Info("event", fields...)
	return nil
}

// FanOut hands every event to each emitter and joins their errors.
type FanOut []event.Emitter

func (f FanOut) Emit(ctx context.Context, e event.Event) error {
	var errs []error
	for _, em := range f {
		if err := em.Emit(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
