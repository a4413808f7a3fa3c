package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/climate-normals-etl/internal/config"
	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces messages to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes multiple station reports to the sink
// Kafka topic in a single WriteMessages call. Reports are keyed by station
// ID so all versions of a station land on one partition.
func (w *Writer) LoadBatch(ctx context.Context, reports []domain.StationReport) error {
	if len(reports) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(reports))
	for i := range reports {
		msg, err := serializeToMessage(reports[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a StationReport into a Kafka message.
func serializeToMessage(report domain.StationReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize station report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "station_id", Value: []byte(report.ID)},
			{Key: "series_count", Value: []byte(strconv.Itoa(report.SeriesCount))},
			{Key: "processed_at", Value: []byte(report.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
