package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventSessionEstablished = "session_established"
	EventSessionCleared     = "session_cleared"
	EventBookingCreated     = "booking_created"
	EventBookingCancelled   = "booking_cancelled"
	EventBookingAccepted    = "booking_accepted"
	EventBookingRejected    = "booking_rejected"
	EventBookingCompleted   = "booking_completed"
	EventReviewSubmitted    = "review_submitted"
)

// BookingEventPayload is the minimal booking snapshot carried by
// booking lifecycle events.
type BookingEventPayload struct {
	BookingID    string `json:"booking_id"`
	ServiceID    string `json:"service_id,omitempty"`
	ServiceTitle string `json:"service_title,omitempty"`
	Status       string `json:"status,omitempty"`
	Date         string `json:"date,omitempty"`
	ActorID      string `json:"actor_id,omitempty"`
	ActorRole    string `json:"actor_role,omitempty"`
}

// ReviewEventPayload accompanies review_submitted.
type ReviewEventPayload struct {
	ReservationID string `json:"reservation_id"`
	CustomerID    string `json:"customer_id"`
	Rating        int    `json:"rating"`
}

// SessionEventPayload accompanies the session events.
type SessionEventPayload struct {
	UserID string `json:"user_id,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Event is a lightweight in-process domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type. Handlers run
// synchronously; the caller decides the concurrency model.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event. A nil bus
// is a no-op so callers can leave eventing unwired.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
