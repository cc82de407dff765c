package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// LocalBus delivers events to in-process subscribers when no broker is configured.
// Handlers run on their own goroutines so a slow subscriber never delays the publisher.
type LocalBus struct {
	mu       sync.RWMutex
	handlers map[string][]func(msg *Message)
	wg       sync.WaitGroup
	closed   bool
}

func NewLocalBus() *LocalBus {
	return &LocalBus{handlers: make(map[string][]func(msg *Message))}
}

func (b *LocalBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("event bus closed")
	}

	msg := &Message{Subject: subject, Data: payload, Timestamp: time.Now()}
	for _, h := range b.handlers[subject] {
		b.wg.Add(1)
		go func(h func(msg *Message)) {
			defer b.wg.Done()
			h(msg)
		}(h)
	}
	return nil
}

func (b *LocalBus) Subscribe(subject string, handler func(msg *Message)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[subject] = append(b.handlers[subject], handler)
	return nil
}

// Close waits for running handlers; later publishes fail
func (b *LocalBus) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}
