package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alimikegami/pos-microservices/catalog-federation/internal/dto"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher writes dto.KafkaMessage envelopes. A failed write is retried
// maxRetries times, waiting one second longer before each attempt.
type Publisher struct {
	writer     MessageWriter
	maxRetries int
	backoff    time.Duration
}

func CreatePublisher(writer MessageWriter) *Publisher {
	return &Publisher{writer: writer, maxRetries: 3, backoff: time.Second}
}

func (p *Publisher) Publish(ctx context.Context, eventType string, data interface{}) (err error) {
	kafkaMsg := dto.KafkaMessage{
		EventID:   ulid.Make().String(),
		EventType: eventType,
		Data:      data,
	}

	jsonMsg, err := json.Marshal(kafkaMsg)
	if err != nil {
		return fmt.Errorf("failed to marshal Kafka message: %w", err)
	}

	msg := kafka.Message{Value: jsonMsg}
	if keyed, ok := data.(interface{ EventKey() string }); ok {
		msg.Key = []byte(keyed.EventKey())
	}

	for i := 0; i < p.maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.backoff * time.Duration(i)):
			}
		}

		err = p.writer.WriteMessages(ctx, msg)
		if err == nil {
			log.Ctx(ctx).Info().Str("component", "Publish").Str("event_id", kafkaMsg.EventID).Str("event_type", eventType).Msg("event published")
			return nil
		}
		log.Ctx(ctx).Error().Err(err).Str("component", "Publish").Int("attempt", i+1).Int("max_attempts", p.maxRetries).Msg("")
	}

	return fmt.Errorf("failed to write Kafka message after %d attempts: %w", p.maxRetries, err)
}
