package eventstream

import (
	"context"
	"errors"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// HeaderEvent carries the event name next to the raw payload.
const HeaderEvent = "event"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer streams channel events to a Kafka topic. Messages are keyed by
// channel so one conversation stays ordered within a partition.
type Producer struct {
	writer messageWriter
	now    func() time.Time
}

func NewProducer(brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("eventstream: no brokers configured")
	}
	if topic == "" {
		return nil, errors.New("eventstream: topic is required")
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: w, now: time.Now}, nil
}

func (p *Producer) Publish(ctx context.Context, channel, event string, payload []byte) error {
	return p.writer.WriteMessages(ctx, kafkago.Message{
		Key:     []byte(channel),
		Value:   payload,
		Headers: []kafkago.Header{{Key: HeaderEvent, Value: []byte(event)}},
		Time:    p.now(),
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
