// Package audit implements the run audit trail: a database sink that is
// part of the run's success criteria, and an optional Kafka emitter for
// downstream consumers.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/CSingh26/ReliScore/internal/config"
	"github.com/CSingh26/ReliScore/internal/domain/models"
	"github.com/CSingh26/ReliScore/pkg/logger"
)

// KafkaProducer publishes audit records to a Kafka topic.
type KafkaProducer struct {
	writer *kafka.Writer
	logger logger.Logger
}

// NewKafkaProducer creates a producer for the configured brokers and topic.
func NewKafkaProducer(cfg *config.KafkaConfig, log logger.Logger) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.AuditTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}
	return &KafkaProducer{
		writer: writer,
		logger: log.WithComponent("audit_kafka"),
	}
}

// Publish sends one audit record to the topic.
func (p *KafkaProducer) Publish(ctx context.Context, record *models.AuditRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(record.ID.String()),
		Value: payload,
	})
}

// Close closes the underlying writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
