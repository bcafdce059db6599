package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/contactkeeper/contact-service/internal/config"
	"github.com/contactkeeper/contact-service/internal/events"
)

// NotificationService turns domain events into an audit log and notification stubs.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger, cfg: cfg}
}

// Subscriptions lists the event types Handle understands.
func (n *NotificationService) Subscriptions() []events.EventType {
	return []events.EventType{
		events.EventUserRegistered,
		events.EventContactCreated,
		events.EventContactUpdated,
		events.EventContactDeleted,
	}
}

// Handle processes a single event.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventUserRegistered:
		n.logger.Info("user registered",
			zap.String("event_id", event.ID),
			zap.String("user_id", event.ResourceID))
		n.sendEmailStub(ctx, event)
	case events.EventContactCreated, events.EventContactUpdated, events.EventContactDeleted:
		n.logger.Info("contact changed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.String("contact_id", event.ResourceID),
			zap.String("actor_id", event.ActorID))
		n.sendWebhookStub(ctx, event)
	default:
		return fmt.Errorf("unsupported event type %q", event.Type)
	}
	return nil
}

func (n *NotificationService) sendEmailStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	payload, ok := event.Payload.(events.UserRegisteredPayload)
	if !ok {
		return
	}
	n.logger.Debug("welcome email queued",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", payload.Email))
}

func (n *NotificationService) sendWebhookStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("webhook queued",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)),
		zap.String("resource_id", event.ResourceID))
}
