// Package publisher drains the checkout outbox into kafka. Events
// are written to the ledger in the same transaction as the checkout
// completion, so a crash between the two never loses a receipt.
package publisher

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/deadpool750/list7/internal/checkout"
)

const completedTopic = "checkout-completed"

// MessageWriter is the slice of kafka.Writer the poller needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type OutboxPoller struct {
	tick   time.Duration
	ledger checkout.Ledger
	writer MessageWriter
}

func NewOutboxPoller(ledger checkout.Ledger, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  completedTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{tick: time.Second, ledger: ledger, writer: w}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.ledger.GetUnprocessedEvents(ctx, 100)
	if err != nil {
		log.Printf("failed to fetch outbox events: %v", err)
		return
	}

	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			log.Printf("failed to publish event id = %v: %v", event.ID, err)
			continue
		}
		if err := p.ledger.MarkEventProcessed(ctx, event.ID); err != nil {
			log.Printf("failed to mark event processed id = %v: %v", event.ID, err)
		}
	}
}

func (p *OutboxPoller) publish(ctx context.Context, event *checkout.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // checkout_id for ordering
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
