package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"
)

// KafkaNotifier publishes each channel to its own topic. Downstream
// consumers (the mobile push bridge) subscribe per channel.
type KafkaNotifier struct {
	brokers []string

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

func NewKafkaNotifier(brokers ...string) *KafkaNotifier {
	return &KafkaNotifier{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

func (n *KafkaNotifier) CreateChannel(id, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.writers[id]; ok {
		return nil
	}
	n.writers[id] = &kafka.Writer{
		Addr:                   kafka.TCP(n.brokers...),
		Topic:                  fmt.Sprintf("notifications-%s", id),
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return nil
}

func (n *KafkaNotifier) Notify(ctx context.Context, channelID string, msg Message) error {
	n.mu.Lock()
	w, ok := n.writers[channelID]
	n.mu.Unlock()
	if !ok {
		return ErrUnknownChannel
	}

	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	err = w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(channelID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// Close shuts down all channel writers.
func (n *KafkaNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	var firstErr error
	for _, w := range n.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
