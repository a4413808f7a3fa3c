package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/climate-normals-etl/internal/config"
	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Reader consumes station report messages from a Kafka topic.
// It implements pipeline.BatchExtractor.
type Reader struct {
	reader        *kafkago.Reader
	flushInterval time.Duration
	logger        *slog.Logger
}

// NewReader creates a Kafka consumer group reader for the configured source topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		GroupID:  cfg.KafkaGroupID,
		Topic:    cfg.KafkaSourceTopic,
		MinBytes: 1,
		MaxBytes: 10e6, // station reports are up to a few hundred KiB
	})
	return &Reader{reader: r, flushInterval: cfg.BatchFlushInterval, logger: logger}
}

// ExtractBatch blocks for the first message, then collects up to batchSize
// messages or until the flush interval elapses, whichever comes first.
// Offsets are not committed here; each RawEvent carries its own Commit.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	msg, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}
	batch := make([]domain.RawEvent, 0, batchSize)
	batch = append(batch, r.toRawEvent(msg))

	flushCtx, cancel := context.WithTimeout(ctx, r.flushInterval)
	defer cancel()

	for len(batch) < batchSize {
		msg, err := r.reader.FetchMessage(flushCtx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				break
			}
			return nil, err
		}
		batch = append(batch, r.toRawEvent(msg))
	}

	r.logger.Debug("batch extracted", "size", len(batch))
	return batch, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

func (r *Reader) toRawEvent(msg kafkago.Message) domain.RawEvent {
	raw := mapMessageToRawEvent(msg)
	raw.Commit = func(ctx context.Context) error {
		return r.reader.CommitMessages(ctx, msg)
	}
	return raw
}

// mapMessageToRawEvent converts a kafka-go message into a domain RawEvent.
func mapMessageToRawEvent(msg kafkago.Message) domain.RawEvent {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return domain.RawEvent{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
	}
}
