// Package controller holds the role-scoped view-state controllers:
// they own the latest fetched snapshots, sequence loading and failure
// signaling, and enforce pull-after-write on booking mutations. All
// gateway calls run asynchronously on goroutines bound to the
// controller's lifetime; results arriving after Close, or superseded by
// a newer fetch of the same topic, are discarded silently.
package controller

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Kind classifies events delivered to presentation subscribers.
type Kind string

const (
	KindLoading Kind = "loading"
	KindLoaded  Kind = "loaded"
	KindFailure Kind = "failure"
	KindStatus  Kind = "status"
)

// Topics name the snapshots a controller maintains.
const (
	TopicAuth       Topic = "auth"
	TopicCategories Topic = "categories"
	TopicServices   Topic = "services"
	TopicCatalog    Topic = "catalog"
	TopicBookings   Topic = "bookings"
	TopicReviews    Topic = "reviews"
)

type Topic string

// Event is the one-shot signal consumed by presentation: which snapshot
// changed, or a human-readable status/failure message.
type Event struct {
	Kind    Kind
	Topic   Topic
	Message string
}

// base carries the machinery shared by every controller: lifetime
// context, subscriber registry, and per-topic fetch sequencing.
type base struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger zerolog.Logger

	mu          sync.Mutex
	subscribers map[int]func(Event)
	nextSubID   int
	issued      map[Topic]uint64
	applied     map[Topic]uint64
	inflight    map[Topic]int
	closed      bool
}

func newBase(logger zerolog.Logger) *base {
	ctx, cancel := context.WithCancel(context.Background())
	return &base{
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
		subscribers: make(map[int]func(Event)),
		issued:      make(map[Topic]uint64),
		applied:     make(map[Topic]uint64),
		inflight:    make(map[Topic]int),
	}
}

// Subscribe registers a listener and returns its unsubscribe func.
// Listeners are invoked synchronously, outside the controller lock.
func (b *base) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	id := b.nextSubID
	b.nextSubID++
	b.subscribers[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subscribers, id)
		b.mu.Unlock()
	}
}

// Close ends the controller's lifetime: in-flight results are dropped
// when they arrive and no further events are delivered.
func (b *base) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.cancel()
}

func (b *base) notify(ev Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	listeners := make([]func(Event), 0, len(b.subscribers))
	for _, fn := range b.subscribers {
		listeners = append(listeners, fn)
	}
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
}

// beginFetch stamps a new fetch of the topic and emits the loading
// signal. The returned sequence must be passed to endFetch.
func (b *base) beginFetch(topic Topic) uint64 {
	b.mu.Lock()
	b.issued[topic]++
	seq := b.issued[topic]
	b.inflight[topic]++
	b.mu.Unlock()

	b.notify(Event{Kind: KindLoading, Topic: topic})
	return seq
}

// endFetch applies the fetch result under the controller lock unless
// the controller is closed or a newer fetch of the same topic has
// already been applied. mutate runs with the lock held.
func (b *base) endFetch(topic Topic, seq uint64, mutate func()) bool {
	b.mu.Lock()
	if b.inflight[topic] > 0 {
		b.inflight[topic]--
	}
	if b.closed || seq < b.applied[topic] {
		b.mu.Unlock()
		return false
	}
	b.applied[topic] = seq
	if mutate != nil {
		mutate()
	}
	b.mu.Unlock()
	return true
}

// Loading reports whether any fetch of the topic is still in flight.
func (b *base) Loading(topic Topic) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inflight[topic] > 0
}

// run launches an action goroutine scoped to the controller lifetime.
func (b *base) run(fn func(ctx context.Context)) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return
	}
	go fn(b.ctx)
}
