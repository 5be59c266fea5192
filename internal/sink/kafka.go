package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/metaharbor/ingest/internal/catalog"
	"github.com/metaharbor/ingest/internal/config"
)

// Kafka publishes each record to a topic, keyed by the table's fully
// qualified name so updates for one table stay on one partition.
type Kafka struct {
	writer *kafka.Writer
	logger *zap.Logger
}

var _ Sink = (*Kafka)(nil)

// NewKafka builds a Kafka sink.
func NewKafka(cfg config.KafkaSinkConfig, logger *zap.Logger) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka sink requires at least one broker")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka sink requires a topic")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return &Kafka{writer: writer, logger: logger}, nil
}

func (k *Kafka) WriteTable(ctx context.Context, rec catalog.TableRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding %s for kafka: %w", rec.FullyQualifiedName(), err)
	}
	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(rec.FullyQualifiedName()),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publishing %s: %w", rec.FullyQualifiedName(), err)
	}
	k.logger.Debug("published table record",
		zap.String("table", rec.FullyQualifiedName()),
		zap.String("topic", k.writer.Topic))
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
