// Package kafka wraps franz-go with a small JSON-first producer.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// ProducerConfig holds Kafka producer settings.
type ProducerConfig struct {
	Brokers       []string
	ClientID      string
	MaxRetries    int
	RetryInterval time.Duration
}

// Producer is a synchronous Kafka producer.
type Producer struct {
	client *kgo.Client
}

// NewProducer creates a producer and verifies broker connectivity.
func NewProducer(ctx context.Context, cfg *ProducerConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, kgo.RecordRetries(cfg.MaxRetries))
	}
	if cfg.RetryInterval > 0 {
		opts = append(opts, kgo.RetryBackoffFn(func(int) time.Duration { return cfg.RetryInterval }))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping kafka brokers: %w", err)
	}
	return &Producer{client: client}, nil
}

// Produce sends a raw record and waits for the broker acknowledgement.
func (p *Producer) Produce(ctx context.Context, topic, key string, value []byte, headers map[string]string) error {
	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}
	for k, v := range headers {
		record.Headers = append(record.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

// ProduceJSON marshals the value and sends it as a record.
func (p *Producer) ProduceJSON(ctx context.Context, topic, key string, value any, headers map[string]string) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal record for %s: %w", topic, err)
	}
	return p.Produce(ctx, topic, key, payload, headers)
}

// Close flushes pending records and releases the client.
func (p *Producer) Close() error {
	p.client.Close()
	return nil
}
