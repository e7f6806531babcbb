package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusFanOut(t *testing.T) {
	bus := NewEventBus(4, nil)
	a, cancelA := bus.Subscribe()
	b, cancelB := bus.Subscribe()
	defer cancelB()
	assert.Equal(t, 2, bus.Subscribers())

	bus.Publish(newEvent(EventDocumentCreated, "d1", nil))

	evt := <-a
	assert.Equal(t, EventDocumentCreated, evt.Type)
	assert.False(t, evt.At.IsZero())
	assert.Equal(t, "d1", (<-b).DocumentID)

	cancelA()
	cancelA()
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 1, bus.Subscribers())
}

func TestEventBusDropsForSlowSubscriber(t *testing.T) {
	bus := NewEventBus(1, nil)
	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish(newEvent(EventSessionOpened, "d", nil), newEvent(EventAnswerSubmitted, "d", nil))

	require.Len(t, ch, 1)
	assert.Equal(t, EventSessionOpened, (<-ch).Type)
	assert.Equal(t, uint64(1), bus.Dropped())
}

func TestNilEventBusPublishIsNoop(t *testing.T) {
	var bus *EventBus
	assert.NotPanics(t, func() { bus.Publish(newEvent(EventSessionOpened, "d", nil)) })
}
