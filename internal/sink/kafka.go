package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"elexon"
	"elexon/internal/chunk"
	"elexon/internal/frame"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const kafkaBatchSize = 500

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes one JSON message per row, keyed by dataset name so the
// rows of a dataset stay on one partition.
type KafkaSink struct {
	writer messageWriter
	logger zerolog.Logger
}

func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		logger: elexon.Logger,
	}, nil
}

func (s *KafkaSink) Write(ctx context.Context, name string, f *frame.Frame) error {
	msgs, err := rowMessages(name, f)
	if err != nil {
		return err
	}
	for i, batch := range chunk.SplitList(msgs, kafkaBatchSize) {
		if len(batch) == 0 {
			continue
		}
		if err := s.writer.WriteMessages(ctx, batch...); err != nil {
			return fmt.Errorf("kafka batch %d failed: %w", i, err)
		}
	}
	s.logger.Info().Str("dataset", name).Int("messages", len(msgs)).Msg("Rows published")
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

func rowMessages(name string, f *frame.Frame) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(f.Rows))
	for i, row := range f.Rows {
		value, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("failed to encode row %d: %w", i, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(name),
			Value: value,
			Headers: []kafka.Header{
				{Key: "dataset", Value: []byte(name)},
			},
		})
	}
	return msgs, nil
}
