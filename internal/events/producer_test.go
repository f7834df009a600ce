package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kafkaMock struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (k *kafkaMock) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if k.err != nil {
		return k.err
	}
	k.msgs = append(k.msgs, msgs...)
	return nil
}

func (k *kafkaMock) Close() error {
	k.closed = true
	return nil
}

func TestProducer_Publish(t *testing.T) {
	t.Parallel()

	w := &kafkaMock{}
	p := NewWithWriter(w, "dev.", "recipe")

	err := p.Publish(context.Background(), "recipe_events", "42", map[string]any{"type": "recipe_created", "recipe_id": 42})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "dev.recipe_events", msg.Topic)
	assert.Equal(t, "42", string(msg.Key))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	_, err = uuid.Parse(env.EventID)
	assert.NoError(t, err)
	assert.Equal(t, "recipe", env.Source)
	assert.False(t, env.OccurredAt.IsZero())

	var payload map[string]any
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "recipe_created", payload["type"])
	assert.EqualValues(t, 42, payload["recipe_id"])
}

func TestProducer_PublishError(t *testing.T) {
	t.Parallel()

	w := &kafkaMock{err: errors.New("leader not available")}
	p := NewWithWriter(w, "", "recipe")

	err := p.Publish(context.Background(), "user_events", "a@b.c", map[string]string{"type": "user_registered"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducer_BadPayload(t *testing.T) {
	t.Parallel()

	p := NewWithWriter(&kafkaMock{}, "", "recipe")
	err := p.Publish(context.Background(), "user_events", "k", func() {})
	assert.Error(t, err)
}

func TestNewProducer_NoBrokers(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NewProducer(nil, "", "recipe"))

	p := NewProducer([]string{"localhost:9092"}, "x.", "recipe")
	require.NotNil(t, p)
	assert.Equal(t, "x.user_events", p.Topic("user_events"))
	require.NoError(t, p.Close())
}
