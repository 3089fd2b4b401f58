package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/offering-registry/internal/config"
	"github.com/spec-kit/offering-registry/internal/events"
)

// NotificationService fans registration events out to the log and an optional webhook.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventOfferingsRegistered, n.handleOfferingsRegistered)
	n.dispatcher.Subscribe(events.EventOfferingRegistrationFailed, n.handleRegistrationFailed)
}

func (n *NotificationService) handleOfferingsRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("OfferingsRegistered", zap.String("submission_id", event.SubmissionID), zap.Any("payload", event.Payload))
	return n.sendWebhook(ctx, event)
}

func (n *NotificationService) handleRegistrationFailed(ctx context.Context, event events.Event) error {
	n.logger.Info("OfferingRegistrationFailed", zap.String("submission_id", event.SubmissionID), zap.Any("payload", event.Payload))
	return n.sendWebhook(ctx, event)
}

func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event) error {
	url := strings.TrimSpace(n.cfg.WebhookURL)
	if url == "" {
		return nil
	}

	agent := fiber.Post(url).
		JSON(event).
		Set("X-Event-Type", string(event.Type)).
		Timeout(n.cfg.Timeout())
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return fmt.Errorf("webhook %s: %w", event.Type, err)
	}
	status, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("webhook %s: %w", event.Type, errs[0])
	}
	if status >= fiber.StatusMultipleChoices {
		return fmt.Errorf("webhook %s: unexpected status %d", event.Type, status)
	}

	n.logger.Debug("webhook delivered",
		zap.String("url", url),
		zap.String("submission_id", event.SubmissionID),
		zap.String("event_type", string(event.Type)),
		zap.Int("status", status))
	return nil
}
