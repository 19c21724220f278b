package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcherRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []Event
	boom := errors.New("boom")

	d.Subscribe(EventEnquiryCreated, func(_ context.Context, e Event) error {
		seen = append(seen, e)
		return boom
	})
	d.Subscribe(EventEnquiryCreated, func(_ context.Context, e Event) error {
		seen = append(seen, e)
		return nil
	})
	d.Subscribe(EventUserDeleted, func(_ context.Context, e Event) error {
		t.Fatal("unexpected handler")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventEnquiryCreated, SubjectID: "e1"})
	require.ErrorIs(t, err, boom)
	require.Len(t, seen, 2)
	require.NotEmpty(t, seen[0].ID)
	require.False(t, seen[0].Timestamp.IsZero())
	require.Equal(t, seen[0].ID, seen[1].ID)
}
