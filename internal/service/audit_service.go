package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/enquirydesk/enquiry-service/internal/events"
)

// EventForwarder ships events to an external broker.
type EventForwarder interface {
	Forward(ctx context.Context, event events.Event) error
}

// AuditService records every domain event in the log and optionally
// forwards it to a broker.
type AuditService struct {
	dispatcher events.Dispatcher
	forwarder  EventForwarder
	logger     *zap.Logger
}

// NewAuditService creates the service. forwarder may be nil.
func NewAuditService(dispatcher events.Dispatcher, forwarder EventForwarder, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		forwarder:  forwarder,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to every event type.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *AuditService) handle(ctx context.Context, event events.Event) error {
	a.logger.Info("audit",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("subject_id", event.SubjectID),
		zap.String("actor_id", event.Actor.UserID),
		zap.Any("payload", event.Payload))

	if a.forwarder == nil {
		return nil
	}
	if err := a.forwarder.Forward(ctx, event); err != nil {
		a.logger.Warn("forward event failed", zap.String("event_id", event.ID), zap.Error(err))
		return err
	}
	return nil
}
