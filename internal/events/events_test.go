package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var got []string
	bus.Subscribe(EventBookingCreated, func(event *Event) error {
		var payload BookingEventPayload
		require.NoError(t, json.Unmarshal(event.Payload, &payload))
		got = append(got, payload.BookingRef)
		return nil
	})

	require.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{BookingRef: "BKEVENT00001"}))
	require.NoError(t, bus.PublishJSON(EventBookingUpdated, BookingEventPayload{BookingRef: "BKEVENT00002"}))

	// Only the subscribed type reaches the handler.
	assert.Equal(t, []string{"BKEVENT00001"}, got)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	handler := func(event *Event) error {
		calls++
		return nil
	}
	bus.Subscribe(EventBookingsAssigned, handler)
	bus.Subscribe(EventBookingsAssigned, handler)

	require.NoError(t, bus.PublishJSON(EventBookingsAssigned, AssignmentEventPayload{AssignedCount: 2}))
	assert.Equal(t, 2, calls)
}

func TestNilBusPublishIsSafe(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventBookingDeleted, nil))
}
