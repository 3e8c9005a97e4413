package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/obs"
)

// Payload is the event body handed to notifiers.
type Payload map[string]any

// Event is one emitted domain event.
type Event struct {
	Topic      string
	Payload    Payload
	OccurredAt time.Time
}

// Notifier reacts to emitted events (logging, metrics, future webhooks).
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Bus fans emitted events out to the configured notifiers in process.
type Bus struct {
	Notifiers []Notifier
	Now       func() time.Time
}

// Emit dispatches the event to all notifiers, joining their errors.
func (b *Bus) Emit(ctx context.Context, topic string, payload Payload) error {
	if b == nil {
		return errors.New("events: bus not configured")
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return errors.New("events: topic is required")
	}
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	event := Event{Topic: topic, Payload: payload, OccurredAt: now()}

	var joined error
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, event); err != nil {
			joined = errors.Join(joined, fmt.Errorf("events: notifier: %w", err))
		}
	}
	return joined
}

// MetricsNotifier counts emitted events by topic.
type MetricsNotifier struct{}

// Notify implements Notifier.
func (MetricsNotifier) Notify(_ context.Context, event Event) error {
	if obs.EventsEmittedTotal != nil {
		obs.EventsEmittedTotal.WithLabelValues(event.Topic).Inc()
	}
	return nil
}

// LogNotifier writes each event as a structured log line.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(_ context.Context, event Event) error {
	n.Logger.Info().
		Str("topic", event.Topic).
		Time("occurred_at", event.OccurredAt).
		Interface("payload", event.Payload).
		Msg("domain_event")
	return nil
}
