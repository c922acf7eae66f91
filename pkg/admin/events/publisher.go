package events

import (
	"context"
	"time"

	"myinco-admin-be/internal/pkg/logger"
	pkgEvents "myinco-admin-be/pkg/events"
	pktNats "myinco-admin-be/pkg/nats"

	"github.com/google/uuid"
)

// Publisher abstracts event publishing for policy operations
type Publisher interface {
	PublishPolicyCreated(ctx context.Context, policyId, categoryId uuid.UUID, categoryName, version string, optionCount int, actor string)
	PublishHomepagePolicyChanged(ctx context.Context, policyId, categoryId uuid.UUID, categoryName, version string, actor string)
}

func policyCreated(policyId, categoryId uuid.UUID, categoryName, version string, optionCount int, actor string) pkgEvents.BaseEvent {
	return pkgEvents.BaseEvent{
		Type: pkgEvents.PolicyCreated,
		Data: map[string]interface{}{
			"policy_id":     policyId.String(),
			"category_id":   categoryId.String(),
			"category_name": categoryName,
			"version":       version,
			"option_count":  optionCount,
			"actor":         actor,
			"entity_type":   "service_policy",
			"entity_id":     policyId.String(),
		},
		OccurredAt: time.Now(),
	}
}

func homepagePolicyChanged(policyId, categoryId uuid.UUID, categoryName, version string, actor string) pkgEvents.BaseEvent {
	return pkgEvents.BaseEvent{
		Type: pkgEvents.HomepagePolicyChanged,
		Data: map[string]interface{}{
			"policy_id":     policyId.String(),
			"category_id":   categoryId.String(),
			"category_name": categoryName,
			"version":       version,
			"actor":         actor,
			"entity_type":   "service_policy",
			"entity_id":     policyId.String(),
		},
		OccurredAt: time.Now(),
	}
}

// NatsPublisher implements Publisher using NATS
type NatsPublisher struct {
	publisher *pktNats.Publisher
	logger    logger.ILogger
}

func NewNatsPublisher(publisher *pktNats.Publisher, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishPolicyCreated emits POLICY_CREATED after a batch or each create commits
func (p *NatsPublisher) PublishPolicyCreated(ctx context.Context, policyId, categoryId uuid.UUID, categoryName, version string, optionCount int, actor string) {
	p.publish(ctx, policyCreated(policyId, categoryId, categoryName, version, optionCount, actor))
}

// PublishHomepagePolicyChanged emits HOMEPAGE_POLICY_CHANGED when a policy
// becomes the homepage policy of its category
func (p *NatsPublisher) PublishHomepagePolicyChanged(ctx context.Context, policyId, categoryId uuid.UUID, categoryName, version string, actor string) {
	p.publish(ctx, homepagePolicyChanged(policyId, categoryId, categoryName, version, actor))
}

func (p *NatsPublisher) publish(ctx context.Context, evt pkgEvents.BaseEvent) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("POLICY", "Failed to publish "+evt.Type+" event", map[string]interface{}{"error": err.Error()})
	}
}

// LocalPublisher hands events straight to in-process handlers when no NATS
// server is configured. Each handler runs on its own goroutine.
type LocalPublisher struct {
	handlers []pktNats.EventHandler
	logger   logger.ILogger
}

func NewLocalPublisher(logger logger.ILogger, handlers ...pktNats.EventHandler) *LocalPublisher {
	return &LocalPublisher{handlers: handlers, logger: logger}
}

func (p *LocalPublisher) PublishPolicyCreated(ctx context.Context, policyId, categoryId uuid.UUID, categoryName, version string, optionCount int, actor string) {
	p.dispatch(ctx, policyCreated(policyId, categoryId, categoryName, version, optionCount, actor))
}

func (p *LocalPublisher) PublishHomepagePolicyChanged(ctx context.Context, policyId, categoryId uuid.UUID, categoryName, version string, actor string) {
	p.dispatch(ctx, homepagePolicyChanged(policyId, categoryId, categoryName, version, actor))
}

func (p *LocalPublisher) dispatch(ctx context.Context, evt pkgEvents.BaseEvent) {
	ctx = context.WithoutCancel(ctx)
	for _, handle := range p.handlers {
		go func(handle pktNats.EventHandler) {
			if err := handle(ctx, evt); err != nil {
				p.logger.Error("POLICY", "Event handler failed for "+evt.Type, map[string]interface{}{"error": err.Error()})
			}
		}(handle)
	}
}
