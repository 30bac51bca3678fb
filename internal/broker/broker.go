// Package broker defines the publish-only messaging port the domain
// services depend on. The core never observes an acknowledgment contract;
// publishing is fire-and-forget from its perspective.
package broker

import (
	"context"
	"sync"
)

// Publisher hands a payload to the message broker.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Record is a published message captured by the in-memory publisher.
type Record struct {
	Topic   string
	Payload []byte
}

// InMemoryPublisher records publishes for tests and broker-less development.
type InMemoryPublisher struct {
	mu      sync.Mutex
	records []Record

	// Err, when set, is returned from every Publish call. Lets tests
	// exercise the best-effort failure path.
	Err error
}

func NewInMemory() *InMemoryPublisher {
	return &InMemoryPublisher{}
}

func (p *InMemoryPublisher) Publish(_ context.Context, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return p.Err
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	p.records = append(p.records, Record{Topic: topic, Payload: cp})
	return nil
}

// Records returns a snapshot of everything published so far.
func (p *InMemoryPublisher) Records() []Record {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Record, len(p.records))
	copy(out, p.records)
	return out
}
