package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/enquirydesk/enquiry-service/internal/domain"
	"github.com/enquirydesk/enquiry-service/internal/events"
)

type forwarderFunc func(ctx context.Context, event events.Event) error

func (f forwarderFunc) Forward(ctx context.Context, event events.Event) error {
	return f(ctx, event)
}

func TestAuditServiceForwardsEveryEventType(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var forwarded []events.EventType
	audit := NewAuditService(dispatcher, forwarderFunc(func(_ context.Context, event events.Event) error {
		require.NotEmpty(t, event.ID)
		forwarded = append(forwarded, event.Type)
		return nil
	}), zap.NewNop())
	audit.RegisterHandlers()

	for _, eventType := range events.AllEventTypes {
		err := dispatcher.Publish(context.Background(), events.Event{
			Type:  eventType,
			Actor: events.ActorFrom(domain.Identity{ID: "u1", Role: domain.RoleAdmin}),
		})
		require.NoError(t, err)
	}
	require.Equal(t, events.AllEventTypes, forwarded)
}

func TestAuditServiceSurfacesForwardFailure(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	broken := errors.New("broker down")
	NewAuditService(dispatcher, forwarderFunc(func(context.Context, events.Event) error {
		return broken
	}), zap.NewNop()).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventEnquiryCreated})
	require.ErrorIs(t, err, broken)
}

func TestAuditServiceWithoutForwarder(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, nil, zap.NewNop()).RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventUserDeleted}))
}
