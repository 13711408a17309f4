package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/prudhvinik1/foodbridge/internal/models"
	"github.com/prudhvinik1/foodbridge/internal/obs"
	"github.com/prudhvinik1/foodbridge/internal/presence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	event   string
	payload any
}

type recordingConn struct {
	mu   sync.Mutex
	got  []sent
	fail error
}

func (c *recordingConn) Send(event string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	c.got = append(c.got, sent{event, payload})
	return nil
}

func (c *recordingConn) received() []sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sent(nil), c.got...)
}

func newTestDispatcher(buffer int) (*Dispatcher, *presence.Registry, *obs.Metrics) {
	registry := presence.NewRegistry()
	metrics := obs.NewMetrics(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDispatcher(registry, buffer, logger, metrics), registry, metrics
}

func TestDispatcher_NotifyConnectedUser(t *testing.T) {
	d, registry, metrics := newTestDispatcher(1)
	user := uuid.New()
	conn := &recordingConn{}
	registry.Register(user, conn)

	payload := models.PickupConfirmedPayload{Message: "Your pickup has been confirmed!", ListingID: uuid.New()}
	delivered := d.Notify(user, models.EventPickupConfirmed, payload)

	assert.True(t, delivered)
	require.Len(t, conn.received(), 1)
	assert.Equal(t, models.EventPickupConfirmed, conn.received()[0].event)
	assert.Equal(t, payload, conn.received()[0].payload)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues(models.EventPickupConfirmed, "delivered")))
}

// Offline recipients are a silent no-op.
func TestDispatcher_NotifyOfflineUserIsNoop(t *testing.T) {
	d, registry, metrics := newTestDispatcher(1)
	other := &recordingConn{}
	registry.Register(uuid.New(), other)

	delivered := d.Notify(uuid.New(), models.EventListingClaimed, nil)

	assert.False(t, delivered)
	assert.Empty(t, other.received())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues(models.EventListingClaimed, "dropped")))
}

func TestDispatcher_NotifySendFailure(t *testing.T) {
	d, registry, metrics := newTestDispatcher(1)
	user := uuid.New()
	registry.Register(user, &recordingConn{fail: errors.New("buffer full")})

	assert.False(t, d.Notify(user, models.EventListingClaimed, nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues(models.EventListingClaimed, "failed")))
}

func TestDispatcher_RunDeliversPublishedEvents(t *testing.T) {
	d, registry, _ := newTestDispatcher(8)
	user := uuid.New()
	conn := &recordingConn{}
	registry.Register(user, conn)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	d.Publish(models.Event{Recipient: user, Name: models.EventListingClaimed, Payload: "first"})
	d.Publish(models.Event{Recipient: user, Name: models.EventPickupConfirmed, Payload: "second"})

	assert.Eventually(t, func() bool { return len(conn.received()) == 2 }, time.Second, 10*time.Millisecond)
	got := conn.received()
	assert.Equal(t, models.EventListingClaimed, got[0].event)
	assert.Equal(t, models.EventPickupConfirmed, got[1].event)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestDispatcher_PublishDropsWhenQueueFull(t *testing.T) {
	d, _, metrics := newTestDispatcher(1)

	d.Publish(models.Event{Recipient: uuid.New(), Name: models.EventListingClaimed})
	d.Publish(models.Event{Recipient: uuid.New(), Name: models.EventListingClaimed})

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsDroppedTotal))
}
