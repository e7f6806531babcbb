package service

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// EventType names a state-change notification.
type EventType string

const (
	EventDocumentCreated    EventType = "document.created"
	EventDocumentDeleted    EventType = "document.deleted"
	EventSessionProgress    EventType = "session.progress"
	EventSessionPrepared    EventType = "session.prepared"
	EventSessionOpened      EventType = "session.opened"
	EventAnswerSubmitted    EventType = "answer.submitted"
	EventReviewsRescheduled EventType = "reviews.rescheduled"
	EventSessionFinished    EventType = "session.finished"
	EventSessionAbandoned   EventType = "session.abandoned"
	EventSessionDiscarded   EventType = "session.discarded"
)

// Event is emitted after a mutating operation so presentation layers can re-render.
type Event struct {
	Type       EventType              `json:"type"`
	DocumentID string                 `json:"documentId,omitempty"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	At         time.Time              `json:"at"`
}

func newEvent(t EventType, documentID string, payload map[string]interface{}) Event {
	return Event{Type: t, DocumentID: documentID, Payload: payload}
}

// EventBus fans events out to channel subscribers. Slow subscribers lose events rather than
// stalling the publisher.
type EventBus struct {
	mu      sync.RWMutex
	subs    map[int]chan Event
	nextID  int
	buffer  int
	logger  *zap.Logger
	now     func() time.Time
	dropped uint64
}

// NewEventBus constructs a bus whose subscriptions buffer up to buffer events.
func NewEventBus(buffer int, logger *zap.Logger) *EventBus {
	if buffer <= 0 {
		buffer = 32
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBus{
		subs:   make(map[int]chan Event),
		buffer: buffer,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Subscribe registers a listener. The returned cancel func closes the channel.
func (b *EventBus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	ch := make(chan Event, b.buffer)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers events to every subscriber without blocking.
func (b *EventBus) Publish(events ...Event) {
	if b == nil || len(events) == 0 {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, evt := range events {
		if evt.At.IsZero() {
			evt.At = b.now()
		}
		for id, ch := range b.subs {
			select {
			case ch <- evt:
			default:
				atomic.AddUint64(&b.dropped, 1)
				b.logger.Warn("event dropped for slow subscriber", zap.Int("subscriber", id), zap.String("type", string(evt.Type)))
			}
		}
	}
}

// Subscribers returns the current listener count.
func (b *EventBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (b *EventBus) Dropped() uint64 {
	return atomic.LoadUint64(&b.dropped)
}
