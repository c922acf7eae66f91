package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Topic is the in-process topic audit records travel on.
const Topic = "audit.system_log"

const (
	MethodCreate = "create"
	MethodUpdate = "update"
	MethodDelete = "delete"
)

// Record is one audit entry before it is persisted.
type Record struct {
	Model           string    `json:"model"`
	ModelIdentifier string    `json:"model_identifier"`
	PageName        string    `json:"page_name"`
	URL             string    `json:"url"`
	Method          string    `json:"method"`
	UserId          string    `json:"user_id"`
	Diff            []Change  `json:"diff"`
	ExtraContent    string    `json:"extra_content,omitempty"`
	StatusCode      int       `json:"status_code"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Publisher hands records to whatever persists them.
type Publisher interface {
	Publish(ctx context.Context, rec Record) error
}

// Sink persists a record.
type Sink interface {
	Save(ctx context.Context, rec Record) error
}

// BusPublisher publishes records as JSON watermill messages.
type BusPublisher struct {
	pub   message.Publisher
	topic string
}

func NewBusPublisher(pub message.Publisher) *BusPublisher {
	return &BusPublisher{pub: pub, topic: Topic}
}

func (p *BusPublisher) Publish(ctx context.Context, rec Record) error {
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now()
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return p.pub.Publish(p.topic, msg)
}

// Consumer drains the audit topic into a Sink.
type Consumer struct {
	sub     message.Subscriber
	sink    Sink
	onError func(rec *Record, err error)
}

// NewConsumer builds a consumer; onError is called for records that could not
// be decoded (rec is nil) or saved.
func NewConsumer(sub message.Subscriber, sink Sink, onError func(rec *Record, err error)) *Consumer {
	if onError == nil {
		onError = func(*Record, error) {}
	}
	return &Consumer{sub: sub, sink: sink, onError: onError}
}

// Run subscribes and processes messages until ctx is done. It returns once
// the subscription is established.
func (c *Consumer) Run(ctx context.Context) error {
	messages, err := c.sub.Subscribe(ctx, Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			c.handle(ctx, msg)
		}
	}()
	return nil
}

// handle always acks; failed records are reported, not redelivered.
func (c *Consumer) handle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var rec Record
	if err := json.Unmarshal(msg.Payload, &rec); err != nil {
		c.onError(nil, err)
		return
	}
	if err := c.sink.Save(ctx, rec); err != nil {
		c.onError(&rec, err)
	}
}
