package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/events"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublishEncodesEvent(t *testing.T) {
	fw := &fakeWriter{}
	p := newPublisher(fw, time.Second, zaptest.NewLogger(t))
	at := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), events.Event{
		Type:   events.TypeOf(core.EntityAnalysis, events.StatusChanged),
		Entity: core.EntityAnalysis,
		ID:     12,
		Status: "completed",
		From:   "running",
		At:     at,
	})
	require.NoError(t, err)
	require.Len(t, fw.msgs, 1)

	msg := fw.msgs[0]
	assert.Equal(t, "analysis/12", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	assert.Equal(t, kafka.Header{Key: "event-type", Value: []byte("analysis.status_changed")}, msg.Headers[1])

	var got events.Event
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, core.ID(12), got.ID)
	assert.Equal(t, "running", got.From)

	require.NoError(t, p.Close())
	assert.True(t, fw.closed)
}

func TestPublishWrapsWriterError(t *testing.T) {
	boom := errors.New("leader not available")
	p := newPublisher(&fakeWriter{err: boom}, time.Second, nil)
	err := p.Publish(context.Background(), events.Event{Type: "model.created", Entity: core.EntityModel, ID: 1})
	assert.ErrorIs(t, err, boom)
}

func TestNewPublisherRequiresTopic(t *testing.T) {
	_, err := NewPublisher(Config{Brokers: []string{"localhost:9092"}}, nil)
	assert.Error(t, err)
}

func TestNewPublisherDoesNotBlockOnDelivery(t *testing.T) {
	p, err := NewPublisher(Config{Brokers: []string{"localhost:9092"}, Topic: "interpretlab.events"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	w, ok := p.w.(*kafka.Writer)
	require.True(t, ok)
	assert.True(t, w.Async)
	assert.NotNil(t, w.Completion)
}

func TestDeliveryFailuresAreLogged(t *testing.T) {
	obs, logs := observer.New(zap.ErrorLevel)
	p := newPublisher(&fakeWriter{}, time.Second, zap.New(obs))

	msg := kafka.Message{
		Key:     []byte("model/3"),
		Headers: []kafka.Header{{Key: "event-type", Value: []byte("model.created")}},
	}
	p.completed([]kafka.Message{msg}, nil)
	assert.Zero(t, logs.Len())

	p.completed([]kafka.Message{msg}, errors.New("broker down"))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "event delivery failed", entry.Message)
	assert.Equal(t, "model/3", entry.ContextMap()["key"])
	assert.Equal(t, "model.created", entry.ContextMap()["type"])
}
