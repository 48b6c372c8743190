package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/lesson-scheduler/internal/queue"
)

type fakeChannel struct {
	declared   []string
	published  []amqp.Publishing
	keys       []string
	publishErr error
	closed     bool
}

func (f *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	if !durable {
		return amqp.Queue{}, errors.New("queue must be durable")
	}
	f.declared = append(f.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error { f.closed = true; return nil }

func TestPublishLessonEvent(t *testing.T) {
	ch := &fakeChannel{}
	connClosed := false
	p := NewPublisherWithDialer(func() (Channel, func(), error) {
		return ch, func() { connClosed = true }, nil
	}, zap.NewNop())

	ev := queue.LessonEvent{
		Action:    queue.ActionCreated,
		TeacherID: "t1",
		StudentID: "s1",
		LessonIDs: []string{"l1", "l1_1"},
		Dates:     []string{"2025-01-06", "2025-01-13"},
		TimeSlot:  "16:00",
	}
	require.NoError(t, p.PublishLessonEvent(context.Background(), ev))

	assert.Equal(t, []string{queue.LessonsQueueName}, ch.declared)
	assert.Equal(t, []string{queue.LessonsQueueName}, ch.keys)
	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)

	var got queue.LessonEvent
	require.NoError(t, json.Unmarshal(msg.Body, &got))
	assert.Equal(t, ev, got)
	assert.True(t, ch.closed)
	assert.True(t, connClosed)
}

func TestPublishLessonEventErrors(t *testing.T) {
	p := NewPublisherWithDialer(func() (Channel, func(), error) {
		return nil, nil, errors.New("broker down")
	}, nil)
	assert.EqualError(t, p.PublishLessonEvent(context.Background(), queue.LessonEvent{}), "broker down")

	ch := &fakeChannel{publishErr: errors.New("nack")}
	p = NewPublisherWithDialer(func() (Channel, func(), error) { return ch, func() {}, nil }, nil)
	err := p.PublishLessonEvent(context.Background(), queue.LessonEvent{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nack")
	assert.True(t, ch.closed)
}

func TestDiscard(t *testing.T) {
	assert.NoError(t, Discard{}.PublishLessonEvent(context.Background(), queue.LessonEvent{}))
}
