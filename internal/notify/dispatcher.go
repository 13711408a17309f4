// Package notify delivers listing events to connected users.
//
// Delivery is best-effort and at-most-once: an event for a user without a
// live connection is dropped, and nothing is queued for later.
package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prudhvinik1/foodbridge/internal/models"
	"github.com/prudhvinik1/foodbridge/internal/obs"
	"github.com/prudhvinik1/foodbridge/internal/presence"
)

type Dispatcher struct {
	registry *presence.Registry
	events   chan models.Event
	logger   *slog.Logger
	metrics  *obs.Metrics
}

// NewDispatcher creates a dispatcher with a queue of the given capacity.
// metrics may be nil.
func NewDispatcher(registry *presence.Registry, buffer int, logger *slog.Logger, metrics *obs.Metrics) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		events:   make(chan models.Event, buffer),
		logger:   logger,
		metrics:  metrics,
	}
}

// Publish hands an event to the dispatcher goroutine. It never blocks the
// caller; when the queue is full the event is dropped.
func (d *Dispatcher) Publish(ev models.Event) {
	select {
	case d.events <- ev:
	default:
		d.logger.Warn("event queue full, dropping event", "event", ev.Name, "recipient", ev.Recipient)
		if d.metrics != nil {
			d.metrics.EventsDroppedTotal.Inc()
		}
	}
}

// Run consumes published events until ctx is cancelled. Events still queued
// at that point are discarded.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-d.events:
			d.Notify(ev.Recipient, ev.Name, ev.Payload)
		}
	}
}

// Notify pushes one event to userID if they are connected and reports
// whether it was handed to the connection.
func (d *Dispatcher) Notify(userID uuid.UUID, event string, payload any) bool {
	conn, ok := d.registry.Lookup(userID)
	if !ok {
		d.logger.Debug("recipient offline, dropping event", "event", event, "user_id", userID)
		d.count(event, "dropped")
		return false
	}

	if err := conn.Send(event, payload); err != nil {
		d.logger.Warn("failed to deliver event", "event", event, "user_id", userID, "error", err)
		d.count(event, "failed")
		return false
	}

	d.count(event, "delivered")
	return true
}

func (d *Dispatcher) count(event, result string) {
	if d.metrics == nil {
		return
	}
	d.metrics.NotificationsTotal.WithLabelValues(event, result).Inc()
}
