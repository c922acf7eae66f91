package service

import (
	"context"
	"errors"
	"testing"

	"myinco-admin-be/internal/pkg/logger"
	"myinco-admin-be/internal/pkg/mailer"
	"myinco-admin-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	kind   string
	to     []string
	notice mailer.PolicyNotice
}

type captureMailer struct {
	sent []sentMail
	err  error
}

func (m *captureMailer) SendPolicyCreated(to []string, notice mailer.PolicyNotice) error {
	m.sent = append(m.sent, sentMail{kind: "created", to: to, notice: notice})
	return m.err
}

func (m *captureMailer) SendHomepagePolicyChanged(to []string, notice mailer.PolicyNotice) error {
	m.sent = append(m.sent, sentMail{kind: "homepage", to: to, notice: notice})
	return m.err
}

func policyEvent(eventType string, optionCount interface{}) events.BaseEvent {
	return events.BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"policy_id":     "4b0c",
			"category_name": "HGMD",
			"version":       "v21.1",
			"option_count":  optionCount,
			"actor":         "admin-1",
		},
	}
}

func TestNotificationService_HandleEvent(t *testing.T) {
	recipients := []string{"ops@myinco.test"}

	tests := []struct {
		name     string
		event    events.Event
		wantKind string
		wantOpts int
	}{
		{"created from process", policyEvent(events.PolicyCreated, 12), "created", 12},
		{"created from json", policyEvent(events.PolicyCreated, float64(3)), "created", 3},
		{"homepage", policyEvent(events.HomepagePolicyChanged, nil), "homepage", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &captureMailer{}
			svc := NewNotificationService(m, recipients, "https://admin.myinco.test/", logger.NewNopLogger())

			require.NoError(t, svc.HandleEvent(context.Background(), tt.event))
			require.Len(t, m.sent, 1)
			assert.Equal(t, tt.wantKind, m.sent[0].kind)
			assert.Equal(t, recipients, m.sent[0].to)
			assert.Equal(t, mailer.PolicyNotice{
				PolicyId:     "4b0c",
				CategoryName: "HGMD",
				Version:      "v21.1",
				OptionCount:  tt.wantOpts,
				Actor:        "admin-1",
				AdminURL:     "https://admin.myinco.test/policies/4b0c",
			}, m.sent[0].notice)
		})
	}
}

func TestNotificationService_SkipsAndFailures(t *testing.T) {
	ctx := context.Background()

	m := &captureMailer{}
	noRecipients := NewNotificationService(m, nil, "", logger.NewNopLogger())
	require.NoError(t, noRecipients.HandleEvent(ctx, policyEvent(events.PolicyCreated, 1)))
	assert.Empty(t, m.sent)

	svc := NewNotificationService(m, []string{"ops@myinco.test"}, "", logger.NewNopLogger())
	require.NoError(t, svc.HandleEvent(ctx, policyEvent("USER_CREATED", 1)))
	assert.Empty(t, m.sent)

	m.err = errors.New("smtp down")
	err := svc.HandleEvent(ctx, policyEvent(events.HomepagePolicyChanged, nil))
	assert.EqualError(t, err, "smtp down")
}
