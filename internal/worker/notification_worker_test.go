package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/offering-registry/internal/config"
	"github.com/spec-kit/offering-registry/internal/events"
	"github.com/spec-kit/offering-registry/internal/service"
)

func TestNotificationWorker_DeliversQueuedEvents(t *testing.T) {
	w := NewNotificationWorker(events.NewInMemoryDispatcher(), 8, zap.NewNop())

	var mu sync.Mutex
	var got []string
	w.Subscribe(events.EventOfferingsRegistered, func(ctx context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.SubmissionID)
		return nil
	})
	w.Start(2)

	require.NoError(t, w.Publish(context.Background(), events.Event{Type: events.EventOfferingsRegistered, SubmissionID: "a"}))
	require.NoError(t, w.Publish(context.Background(), events.Event{Type: events.EventOfferingsRegistered, SubmissionID: "b"}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a", "b"}, got)
}

func TestNotificationWorker_QueueFull(t *testing.T) {
	w := NewNotificationWorker(events.NewInMemoryDispatcher(), 1, zap.NewNop())

	require.NoError(t, w.Publish(context.Background(), events.Event{Type: events.EventOfferingsRegistered}))
	assert.ErrorIs(t, w.Publish(context.Background(), events.Event{Type: events.EventOfferingsRegistered}), ErrQueueFull)
}

func TestNotificationWorker_PublishAfterStop(t *testing.T) {
	w := NewNotificationWorker(events.NewInMemoryDispatcher(), 1, zap.NewNop())
	w.Start(1)
	require.NoError(t, w.Stop(context.Background()))
	require.NoError(t, w.Stop(context.Background()))

	assert.ErrorIs(t, w.Publish(context.Background(), events.Event{}), ErrStopped)
}

func TestStartNotificationWorker_RegistersHandlers(t *testing.T) {
	w := NewNotificationWorker(events.NewInMemoryDispatcher(), 4, zap.NewNop())
	ns := service.NewNotificationService(w, zap.NewNop(), config.NotificationConfig{})

	StartNotificationWorker(ns, w, 1)
	require.NoError(t, w.Publish(context.Background(), events.Event{Type: events.EventOfferingsRegistered}))
	require.NoError(t, w.Stop(context.Background()))
}
