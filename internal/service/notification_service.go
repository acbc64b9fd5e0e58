package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront-api/internal/config"
	"github.com/spec-kit/storefront-api/internal/events"
)

// NotificationService delivers notifications for domain events. SMS and email
// delivery are stubbed and only logged.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events and returns the types now handled.
func (n *NotificationService) RegisterHandlers() []events.EventType {
	if n.dispatcher == nil {
		return nil
	}
	n.dispatcher.Subscribe(events.EventOTPIssued, n.handleOTPIssued)
	n.dispatcher.Subscribe(events.EventRegistrationCompleted, n.handleRegistrationCompleted)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
	n.dispatcher.Subscribe(events.EventOrderPlaced, n.handleOrderPlaced)
	return n.dispatcher.Subscribed()
}

func (n *NotificationService) handleOTPIssued(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OTPIssuedPayload)
	if !ok {
		return nil
	}
	n.sendSMSStub(ctx, payload.Phone, "Your verification code is "+payload.Code, event)
	return nil
}

func (n *NotificationService) handleRegistrationCompleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RegistrationCompletedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("RegistrationCompleted", zap.String("user_id", event.UserID))
	n.sendEmailStub(ctx, payload.Email, "Welcome, "+payload.Name, event)
	return nil
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		return nil
	}
	n.sendEmailStub(ctx, payload.Email, "Your password reset token is "+payload.Token, event)
	return nil
}

func (n *NotificationService) handleOrderPlaced(ctx context.Context, event events.Event) error {
	n.logger.Info("OrderPlaced", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendSMSStub(_ context.Context, phone, body string, event events.Event) {
	n.logger.Info("sendSMSStub",
		zap.String("sender_id", n.cfg.SMSSenderID),
		zap.String("to", phone),
		zap.String("body", body),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendEmailStub(_ context.Context, to, body string, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || to == "" {
		return
	}
	n.logger.Info("sendEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("body", body),
		zap.String("event_type", string(event.Type)))
}
