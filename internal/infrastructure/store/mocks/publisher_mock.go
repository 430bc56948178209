package mocks

import (
	"context"
	"sync"

	"github.com/example/ec-storefront/internal/event"
)

// MockPublisher records published events.
type MockPublisher struct {
	mu sync.Mutex

	PublishCalls []PublishCall
	PublishErr   error
}

// PublishCall records parameters passed to Publish
type PublishCall struct {
	Key   string
	Event any
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{PublishCalls: make([]PublishCall, 0)}
}

func (m *MockPublisher) Publish(_ context.Context, key string, e any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCalls = append(m.PublishCalls, PublishCall{Key: key, Event: e})
	return m.PublishErr
}

// EventTypes lists the types of published envelopes in order.
func (m *MockPublisher) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	types := make([]string, 0, len(m.PublishCalls))
	for _, call := range m.PublishCalls {
		if e, ok := call.Event.(event.Event); ok {
			types = append(types, e.EventType)
		}
	}
	return types
}

// Events returns the published envelopes.
func (m *MockPublisher) Events() []event.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := make([]event.Event, 0, len(m.PublishCalls))
	for _, call := range m.PublishCalls {
		if e, ok := call.Event.(event.Event); ok {
			events = append(events, e)
		}
	}
	return events
}
