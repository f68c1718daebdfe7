// Package events publishes a record of every committed mutation so an outside
// consumer (say, a back-office sync) can follow along. With no brokers
// configured the producer is a no-op and the service runs fully offline.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

const (
	TopicCatalog = "catalog_events"
	TopicPOS     = "pos_events"
)

type Producer interface {
	Publish(ctx context.Context, topic, key string, event map[string]any) error
	Close() error
}

func New(brokers []string) Producer {
	if len(brokers) == 0 {
		return Noop{}
	}
	return &Kafka{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Balancer: &kafka.Hash{},
		},
	}
}

type Kafka struct {
	writer *kafka.Writer
}

func (p *Kafka) Publish(ctx context.Context, topic, key string, event map[string]any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal failed: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("events: publish failed: %w", err)
	}
	return nil
}

func (p *Kafka) Close() error { return p.writer.Close() }

type Noop struct{}

func (Noop) Publish(ctx context.Context, topic, key string, event map[string]any) error {
	return nil
}

func (Noop) Close() error { return nil }
