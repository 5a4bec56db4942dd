package repository

import (
	"context"
	"fmt"

	"TAPull/internal/domain/models"
	domrepo "TAPull/internal/domain/repository"
	pkgkafka "TAPull/pkg/kafka"
)

// BatchWriter is the subset of pkg/kafka.Producer the publisher needs.
type BatchWriter interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaPublisher emits one message per bar, keyed by symbol so a symbol's
// rows stay ordered within a partition.
type KafkaPublisher struct {
	producer BatchWriter
	topic    string
}

var _ domrepo.Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer BatchWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishIndicators(ctx context.Context, it *models.IndicatorTable) error {
	if it == nil || it.Len() == 0 {
		return nil
	}
	cols := it.Columns()
	key := []byte(it.Table.Symbol)
	msgs := make([]pkgkafka.Message, 0, it.Len())
	for _, row := range it.Rows() {
		msgs = append(msgs, pkgkafka.Message{Key: key, Value: indicatorRow(it, cols, row)})
	}
	if err := p.producer.PublishBatch(ctx, p.topic, msgs); err != nil {
		return fmt.Errorf("publish indicators %s: %w", it.Table.Symbol, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
