package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-seeder/internal/config"
	"github.com/couchcryptid/weather-seeder/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the sink uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces record rows to one Kafka topic per table.
// It implements pipeline.RecordSink.
type Writer struct {
	writer messageWriter
	topics map[string]string // table name -> topic
	logger *slog.Logger
}

// NewWriter creates a Kafka producer routing observations and fires to their
// configured topics.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchFlushInterval,
	}
	return newWriter(w, map[string]string{
		domain.ObservationsTable.Name: cfg.KafkaObservationsTopic,
		domain.FiresTable.Name:        cfg.KafkaFiresTopic,
	}, logger)
}

func newWriter(w messageWriter, topics map[string]string, logger *slog.Logger) *Writer {
	return &Writer{writer: w, topics: topics, logger: logger}
}

// Append serializes rows and publishes them to the table's topic in a single
// WriteMessages call.
func (w *Writer) Append(ctx context.Context, table domain.Table, rows []domain.Row) error {
	if len(rows) == 0 {
		return nil
	}
	topic, ok := w.topics[table.Name]
	if !ok {
		return fmt.Errorf("no kafka topic configured for table %s", table.Name)
	}

	generatedAt := domain.Now().Format(time.RFC3339)
	msgs := make([]kafkago.Message, len(rows))
	for i := range rows {
		msg, err := serializeToMessage(table, rows[i], generatedAt)
		if err != nil {
			return err
		}
		msg.Topic = topic
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages to %s: %w", len(msgs), topic, err)
	}
	w.logger.Debug("rows published", "topic", topic, "rows", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a row into a Kafka message keyed by the
// table's key column.
func serializeToMessage(table domain.Table, row domain.Row, generatedAt string) (kafkago.Message, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s row: %w", table.Name, err)
	}
	return kafkago.Message{
		Key:   []byte(table.KeyOf(row)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "table", Value: []byte(table.Name)},
			{Key: "generated_at", Value: []byte(generatedAt)},
		},
	}, nil
}
