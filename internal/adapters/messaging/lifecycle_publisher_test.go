package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/ports"
)

type fakeChannel struct {
	published []amqp.Publishing
	keys      []string
	err       error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublishStatusChanged(t *testing.T) {
	ch := &fakeChannel{}
	broker := newBroker(ch, "lifecycle-events", zap.NewNop())

	occurred := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	evt := ports.StatusChangedEvent{
		Entity:         domain.EntityRequest,
		EntityID:       "r1",
		From:           "pending",
		To:             "matched",
		MatchedDonorID: "d1",
		OccurredAt:     occurred,
	}

	require.NoError(t, broker.PublishStatusChanged(context.Background(), evt))
	require.Len(t, ch.published, 1)

	msg := ch.published[0]
	assert.Equal(t, "lifecycle-events", ch.keys[0])
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "request.status_changed", msg.Type)
	assert.Equal(t, occurred, msg.Timestamp)

	var decoded ports.StatusChangedEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, evt, decoded)
}

func TestPublishStatusChanged_ExpiredContext(t *testing.T) {
	ch := &fakeChannel{}
	broker := newBroker(ch, "q", zap.NewNop())

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	err := broker.PublishStatusChanged(ctx, ports.StatusChangedEvent{Entity: domain.EntityDonor})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, ch.published)
}

func TestPublishStatusChanged_ChannelError(t *testing.T) {
	chErr := errors.New("channel closed")
	broker := newBroker(&fakeChannel{err: chErr}, "q", zap.NewNop())

	err := broker.PublishStatusChanged(context.Background(), ports.StatusChangedEvent{
		Entity:   domain.EntityDonor,
		EntityID: "d1",
	})
	assert.ErrorIs(t, err, chErr)
	assert.Contains(t, err.Error(), "donor d1")
}

func TestBrokerClose(t *testing.T) {
	ch := &fakeChannel{}
	broker := newBroker(ch, "q", zap.NewNop())

	require.NoError(t, broker.Close())
	assert.True(t, ch.closed)
}
