package event

import (
	"context"
	"encoding/json"
	"fmt"

	"bloodbank-service/internal/domain/event"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Producer is the part of *kafka.Writer the emitter uses.
type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaEmitter publishes each event as one JSON message keyed by its
// aggregate id, with the trace context in the headers.
type KafkaEmitter struct {
	producer Producer
}

func NewKafkaEmitter(p Producer) *KafkaEmitter { return &KafkaEmitter{producer: p} }

func (k *KafkaEmitter) Emit(ctx context.Context, e event.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", e.Type, err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := []kafka.Header{{Key: "event_type", Value: []byte(e.Type)}}
	for _, key := range carrier.Keys() {
		headers = append(headers, kafka.Header{Key: key, Value: []byte(carrier.Get(key))})
	}

	msg := kafka.Message{
		Key:     []byte(e.Key()),
		Value:   body,
		Headers: headers,
		Time:    e.OccurredAt,
	}
	if err := k.producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish event %s: %w", e.Type, err)
	}
	return nil
}
