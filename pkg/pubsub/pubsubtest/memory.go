// Package pubsubtest provides an in-process broker for tests of code that
// talks to pubsub.
package pubsubtest

import (
	"context"
	"sync"

	"github.com/Alwanly/forkauthority-polls/pkg/pubsub"
)

// MemoryBroker routes messages between in-process clients. Each client behaves
// like a separate Redis connection: it only receives messages for channels it
// subscribed to.
type MemoryBroker struct {
	mu      sync.RWMutex
	clients map[*memoryClient]struct{}
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{clients: make(map[*memoryClient]struct{})}
}

// Client returns a new PubSub connected to the broker.
func (b *MemoryBroker) Client() pubsub.PubSub {
	c := &memoryClient{
		broker:    b,
		channels:  make(map[string]bool),
		messageCh: make(chan pubsub.Message, 64),
	}
	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()
	return c
}

func (b *MemoryBroker) remove(c *memoryClient) {
	b.mu.Lock()
	delete(b.clients, c)
	b.mu.Unlock()
}

type memoryClient struct {
	broker    *MemoryBroker
	mu        sync.Mutex
	channels  map[string]bool
	messageCh chan pubsub.Message
	closed    bool
}

func (c *memoryClient) Publish(ctx context.Context, channel string, message string) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return pubsub.ErrClosed
	}

	c.broker.mu.RLock()
	defer c.broker.mu.RUnlock()
	for client := range c.broker.clients {
		client.deliver(pubsub.Message{Channel: channel, Payload: message})
	}
	return nil
}

// deliver drops the message when the subscriber is not keeping up, the same
// way a slow Redis subscriber loses messages.
func (c *memoryClient) deliver(m pubsub.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.channels[m.Channel] {
		return
	}
	select {
	case c.messageCh <- m:
	default:
	}
}

func (c *memoryClient) Subscribe(ctx context.Context, channels ...string) (<-chan pubsub.Message, error) {
	if len(channels) == 0 {
		return nil, pubsub.ErrNoChannels
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, pubsub.ErrClosed
	}
	for _, ch := range channels {
		c.channels[ch] = true
	}
	return c.messageCh, nil
}

func (c *memoryClient) Unsubscribe(ctx context.Context, channels ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range channels {
		delete(c.channels, ch)
	}
	return nil
}

func (c *memoryClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.messageCh)
	c.mu.Unlock()

	c.broker.remove(c)
	return nil
}
