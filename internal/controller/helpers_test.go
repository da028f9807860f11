package controller

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"khidma/internal/events"
	"khidma/internal/session"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func testSession(userID, role string) *session.Manager {
	manager := session.NewManager(events.NewEventBus())
	manager.Establish(session.Session{UserID: userID, Role: role})
	return manager
}

// record subscribes and funnels every event into a buffered channel.
func record(sub func(func(Event)) func()) (<-chan Event, func()) {
	ch := make(chan Event, 32)
	unsubscribe := sub(func(ev Event) { ch <- ev })
	return ch, unsubscribe
}

// waitKind blocks until an event of the kind arrives.
func waitKind(t *testing.T, ch <-chan Event, kind Kind) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", kind)
		}
	}
}

// drainQuiet asserts nothing but loading events arrive within the
// window.
func drainQuiet(t *testing.T, ch <-chan Event, window time.Duration) {
	t.Helper()
	timer := time.After(window)
	for {
		select {
		case ev := <-ch:
			if ev.Kind != KindLoading {
				t.Fatalf("unexpected event %+v", ev)
			}
		case <-timer:
			return
		}
	}
}
