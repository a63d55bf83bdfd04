// Package auditsink delivers payroll record changes to slog, Kafka or several
// sinks at once.
package auditsink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
	"github.com/segmentio/kafka-go"
)

// LogSink writes each change as one structured log line.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) RecordChange(ctx context.Context, change audit.RecordChange) error {
	s.logger.InfoContext(ctx, "payroll audit",
		"audit_id", change.ID,
		"action", string(change.Action),
		"entity_type", change.EntityType,
		"entity_id", change.EntityID,
		"occurred_at", change.OccurredAt.Format(time.RFC3339),
	)
	return nil
}

// MessageWriter is the subset of *kafka.Writer used by KafkaSink.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaSink publishes changes keyed by entity ID so one record's history stays
// on one partition.
type KafkaSink struct {
	writer MessageWriter
	topic  string
}

func NewKafkaSink(writer MessageWriter, topic string) *KafkaSink {
	return &KafkaSink{writer: writer, topic: topic}
}

// NewKafkaWriter builds the writer used in production. Topic is set per message.
func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

type changeMessage struct {
	ID         string          `json:"id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func (s *KafkaSink) RecordChange(ctx context.Context, change audit.RecordChange) error {
	payload, err := json.Marshal(changeMessage{
		ID:         change.ID,
		Action:     string(change.Action),
		EntityType: change.EntityType,
		EntityID:   change.EntityID,
		Before:     change.Before,
		After:      change.After,
		OccurredAt: change.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("marshal audit change: %w", err)
	}

	msg := kafka.Message{
		Topic: s.topic,
		Key:   []byte(change.EntityID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(change.Action)},
			{Key: "entity_type", Value: []byte(change.EntityType)},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish audit change %s: %w", change.ID, err)
	}
	return nil
}

// MultiSink fans a change out to every sink and joins their errors.
type MultiSink []audit.Sink

func (m MultiSink) RecordChange(ctx context.Context, change audit.RecordChange) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.RecordChange(ctx, change); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
