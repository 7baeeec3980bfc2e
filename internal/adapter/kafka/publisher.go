// Package kafka publishes consolidated records to a Kafka topic. The
// publisher is feature-flagged; batch runs without Kafka never touch it.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/MHBws/dengue-climate-etl/internal/config"
	"github.com/MHBws/dengue-climate-etl/internal/domain"
)

// Publisher produces consolidated records to the configured topic.
// It implements pipeline.RecordSink.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishBatch serializes and publishes the records in a single
// WriteMessages call.
func (p *Publisher) PublishBatch(ctx context.Context, records []*domain.ConsolidatedRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a record into a Kafka message keyed by its
// (year, month, region) identity so compacted topics keep the latest value.
func serializeToMessage(rec *domain.ConsolidatedRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize record: %w", err)
	}
	key := fmt.Sprintf("%d-%s-%s", rec.Year, rec.Month, rec.Region)
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("dengue-climate-etl")},
			{Key: "produced_at", Value: []byte(domain.Now().UTC().Format(time.RFC3339))},
		},
	}, nil
}
