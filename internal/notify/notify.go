// Package notify is the notification collaborator. Channels are
// declared up front; messages on an undeclared channel are rejected.
package notify

import (
	"context"
	"errors"
	"sync"
)

var ErrUnknownChannel = errors.New("notification channel not registered")

// Message is one user-facing notification.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Notifier delivers messages on named channels.
type Notifier interface {
	CreateChannel(id, name string) error
	Notify(ctx context.Context, channelID string, msg Message) error
}

// MemoryNotifier records messages in memory. Used in tests and as a
// fallback when no broker is configured.
type MemoryNotifier struct {
	mu       sync.Mutex
	channels map[string]string
	sent     map[string][]Message
}

func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{
		channels: make(map[string]string),
		sent:     make(map[string][]Message),
	}
}

func (n *MemoryNotifier) CreateChannel(id, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.channels[id] = name
	return nil
}

func (n *MemoryNotifier) Notify(_ context.Context, channelID string, msg Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.channels[channelID]; !ok {
		return ErrUnknownChannel
	}
	n.sent[channelID] = append(n.sent[channelID], msg)
	return nil
}

// Sent returns the messages delivered on a channel, in order.
func (n *MemoryNotifier) Sent(channelID string) []Message {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Message, len(n.sent[channelID]))
	copy(out, n.sent[channelID])
	return out
}
