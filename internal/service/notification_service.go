package service

import (
	"context"
	"fmt"
	"strings"

	"myinco-admin-be/internal/pkg/logger"
	"myinco-admin-be/internal/pkg/mailer"
	"myinco-admin-be/pkg/events"
	pktNats "myinco-admin-be/pkg/nats" // Renamed to avoid collision
)

// NotificationService mails policy notices to the configured recipients when
// policy events arrive.
type NotificationService struct {
	mailer     mailer.IEmailService
	recipients []string
	adminURL   string
	logger     logger.ILogger
}

func NewNotificationService(mailer mailer.IEmailService, recipients []string, adminURL string, log logger.ILogger) *NotificationService {
	return &NotificationService{
		mailer:     mailer,
		recipients: recipients,
		adminURL:   strings.TrimRight(adminURL, "/"),
		logger:     log,
	}
}

// Start subscribes durable consumers for the policy events.
func (s *NotificationService) Start(ctx context.Context, sub *pktNats.Subscriber) error {
	for eventType, durable := range map[string]string{
		events.PolicyCreated:         "policy-mail-created",
		events.HomepagePolicyChanged: "policy-mail-homepage",
	} {
		if err := sub.Subscribe(ctx, eventType, durable, s.HandleEvent); err != nil {
			return fmt.Errorf("subscribe %s: %w", eventType, err)
		}
	}
	s.logger.Info("NotificationService", "Notification service started, listening to policy events", nil)
	return nil
}

// HandleEvent sends the mail matching the event. A failed send is returned so
// the bus can redeliver.
func (s *NotificationService) HandleEvent(ctx context.Context, event events.Event) error {
	if len(s.recipients) == 0 {
		return nil
	}

	payload := event.Payload()
	notice := mailer.PolicyNotice{
		PolicyId:     stringField(payload, "policy_id"),
		CategoryName: stringField(payload, "category_name"),
		Version:      stringField(payload, "version"),
		OptionCount:  intField(payload, "option_count"),
		Actor:        stringField(payload, "actor"),
	}
	notice.AdminURL = fmt.Sprintf("%s/policies/%s", s.adminURL, notice.PolicyId)

	var err error
	switch event.EventType() {
	case events.PolicyCreated:
		err = s.mailer.SendPolicyCreated(s.recipients, notice)
	case events.HomepagePolicyChanged:
		err = s.mailer.SendHomepagePolicyChanged(s.recipients, notice)
	default:
		s.logger.Debug("NotificationService", "Ignoring event", map[string]interface{}{"type": event.EventType()})
		return nil
	}
	if err != nil {
		s.logger.Error("NotificationService", "Failed to send policy notice", map[string]interface{}{
			"type":      event.EventType(),
			"policy_id": notice.PolicyId,
			"error":     err.Error(),
		})
		return err
	}

	s.logger.Info("NotificationService", fmt.Sprintf("Sent %s notice", event.EventType()), map[string]interface{}{
		"policy_id":  notice.PolicyId,
		"recipients": len(s.recipients),
	})
	return nil
}

func stringField(payload map[string]interface{}, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

// intField accepts ints from in-process events and float64 from decoded JSON.
func intField(payload map[string]interface{}, key string) int {
	switch v := payload[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
