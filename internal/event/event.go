// Package event carries domain events from the services to the event bus.
package event

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope written to the bus.
type Event struct {
	ID            string          `json:"id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	EventType     string          `json:"event_type"`
	Data          json.RawMessage `json:"data"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Publisher sends an event keyed by aggregate id.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// New builds an envelope around payload.
func New(aggregateID, aggregateType, eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          data,
		Timestamp:     time.Now().UTC(),
	}, nil
}

// Emit publishes an event after the write it describes has succeeded.
// Failures are logged and never returned.
func Emit(ctx context.Context, p Publisher, aggregateID, aggregateType, eventType string, payload any) {
	if p == nil {
		return
	}
	e, err := New(aggregateID, aggregateType, eventType, payload)
	if err != nil {
		log.Printf("[Event] Failed to encode %s for %s: %v", eventType, aggregateID, err)
		return
	}
	if err := p.Publish(ctx, aggregateID, e); err != nil {
		log.Printf("[Event] Failed to publish %s for %s: %v", eventType, aggregateID, err)
	}
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
