package session

import (
	"errors"
	"slices"
	"sync"
	"time"
)

var ErrNoSession = errors.New("no active session")

// Session identifies the signed-in user for a single request. It is passed
// explicitly to every operation that needs the current user.
type Session struct {
	UserID    uint
	Email     string
	ExpiresAt time.Time
}

func (s Session) Valid(now time.Time) bool {
	return s.UserID != 0 && (s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt))
}

type EventKind string

const (
	SignedIn       EventKind = "signed_in"
	SignedOut      EventKind = "signed_out"
	AccountDeleted EventKind = "account_deleted"
)

type Event struct {
	Kind   EventKind
	UserID uint
	Email  string
	At     time.Time
}

// Tracker fans auth state changes out to subscribers.
type Tracker struct {
	mu          sync.RWMutex
	nextID      int
	subscribers map[int]func(Event)
	closed      bool
}

func NewTracker() *Tracker {
	return &Tracker{subscribers: make(map[int]func(Event))}
}

// Subscribe registers fn and returns the function that removes it.
// Subscribing to a closed tracker is a no-op.
func (tracker *Tracker) Subscribe(fn func(Event)) func() {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	if tracker.closed || fn == nil {
		return func() {}
	}

	id := tracker.nextID
	tracker.nextID++
	tracker.subscribers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			tracker.mu.Lock()
			defer tracker.mu.Unlock()
			delete(tracker.subscribers, id)
		})
	}
}

// Publish calls every subscriber synchronously in registration order.
func (tracker *Tracker) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	tracker.mu.RLock()
	ids := make([]int, 0, len(tracker.subscribers))
	for id := range tracker.subscribers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	handlers := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, tracker.subscribers[id])
	}
	tracker.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// Close drops all subscribers and ignores later subscriptions.
func (tracker *Tracker) Close() {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	tracker.closed = true
	clear(tracker.subscribers)
}
