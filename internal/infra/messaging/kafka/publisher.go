// Package kafka publishes catalog events to a Kafka topic so external
// workers can react to uploads and analysis runs.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/bryanwahyu/interpretlab/internal/domain/events"
)

type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher implements events.Publisher on a single kafka.Writer.
type Publisher struct {
	w       writer
	timeout time.Duration
	log     *zap.Logger
}

func NewPublisher(cfg Config, log *zap.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, fmt.Errorf("kafka brokers and topic are required")
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	// async: request writes are already committed, delivery must not hold them
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		Async:                  true,
	}
	p := newPublisher(w, cfg.WriteTimeout, log)
	w.Completion = p.completed
	return p, nil
}

func newPublisher(w writer, timeout time.Duration, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{w: w, timeout: timeout, log: log}
}

// Publish hands e to the writer keyed by "<entity>/<id>" so one entity's
// events stay on one partition, in order. With the async writer it returns
// once the message is queued; delivery failures are logged by completed.
func (p *Publisher) Publish(ctx context.Context, e events.Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}
	key := fmt.Sprintf("%s/%d", e.Entity, e.ID)
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  e.At,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "event-type", Value: []byte(e.Type)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", e.Type, err)
	}
	p.log.Debug("event queued", zap.String("type", string(e.Type)), zap.String("key", key))
	return nil
}

// completed is the async writer's delivery callback.
func (p *Publisher) completed(msgs []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range msgs {
		p.log.Error("event delivery failed",
			zap.String("key", string(m.Key)),
			zap.String("type", eventType(m)),
			zap.Error(err),
		)
	}
}

func eventType(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == "event-type" {
			return string(h.Value)
		}
	}
	return ""
}

func (p *Publisher) Close() error { return p.w.Close() }
