package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/queue"
)

type fakeChannel struct {
	key      string
	msg      amqp.Publishing
	deadline bool
	err      error
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	_, c.deadline = ctx.Deadline()
	c.key = key
	c.msg = msg
	return c.err
}

func TestPublisherPublish(t *testing.T) {
	ch := &fakeChannel{}
	p := queue.NewPublisher(ch, "solve_queue", time.Second)

	require.NoError(t, p.Publish(context.Background(), map[string]int{"answer": 42}))

	assert.Equal(t, "solve_queue", ch.key)
	assert.True(t, ch.deadline)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

	var body map[string]int
	require.NoError(t, json.Unmarshal(ch.msg.Body, &body))
	assert.Equal(t, 42, body["answer"])
}

func TestPublisherPublishError(t *testing.T) {
	want := errors.New("channel closed")
	p := queue.NewPublisher(&fakeChannel{err: want}, "q", time.Second)

	assert.ErrorIs(t, p.Publish(context.Background(), "x"), want)
}

func TestPublisherPublishUnencodable(t *testing.T) {
	ch := &fakeChannel{}
	p := queue.NewPublisher(ch, "q", time.Second)

	assert.Error(t, p.Publish(context.Background(), make(chan int)))
	assert.Empty(t, ch.key)
}
