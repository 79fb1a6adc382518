package messaging

import (
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

type WriterOptions struct {
	Brokers []string
	Topic   string
}

// NewWriter builds a low-latency producer for domain events. Messages with
// the same key land on the same partition.
func NewWriter(o WriterOptions) (*kafka.Writer, error) {
	if len(o.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if o.Topic == "" {
		return nil, errors.New("kafka: no topic configured")
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(o.Brokers...),
		Topic:                  o.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		BatchSize:              100,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}, nil
}
