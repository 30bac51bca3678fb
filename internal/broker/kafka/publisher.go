package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher publishes registration-event payloads to Kafka. Delivery is
// synchronous per call; the caller decides whether failures matter.
type Publisher struct {
	client *kgo.Client
}

// New connects to the brokers and makes sure the topic exists so the first
// publish does not race topic auto-creation.
func New(ctx context.Context, brokers []string, topic string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	if _, err := adm.CreateTopic(ctx, 1, 1, nil, topic); err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
		client.Close()
		return nil, fmt.Errorf("create topic %q: %w", topic, err)
	}

	return &Publisher{client: client}, nil
}

func (p *Publisher) Publish(ctx context.Context, topic string, payload []byte) error {
	record := &kgo.Record{Topic: topic, Value: payload}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %q: %w", topic, err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Close()
}
