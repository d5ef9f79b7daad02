package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alimikegami/pos-microservices/catalog-federation/internal/dto"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	failures int
	messages []kafka.Message
	attempts int
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.attempts++
	if w.attempts <= w.failures {
		return errors.New("broker not available")
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func TestPublisher(t *testing.T) {
	t.Run("writes an envelope keyed by product", func(t *testing.T) {
		writer := &fakeWriter{}
		p := CreatePublisher(writer)

		require.NoError(t, p.Publish(context.Background(), dto.EventProductDeleted, dto.ProductDeleted{ProductID: 42}))
		require.Len(t, writer.messages, 1)
		assert.Equal(t, "42", string(writer.messages[0].Key))

		var got struct {
			EventID   string             `json:"event_id"`
			EventType string             `json:"event_type"`
			Data      dto.ProductDeleted `json:"data"`
		}
		require.NoError(t, json.Unmarshal(writer.messages[0].Value, &got))
		assert.Len(t, got.EventID, 26)
		assert.Equal(t, dto.EventProductDeleted, got.EventType)
		assert.Equal(t, int64(42), got.Data.ProductID)
	})

	t.Run("retries failed writes", func(t *testing.T) {
		writer := &fakeWriter{failures: 2}
		p := CreatePublisher(writer)
		p.backoff = time.Millisecond

		require.NoError(t, p.Publish(context.Background(), dto.EventProductDeleted, dto.ProductDeleted{ProductID: 1}))
		assert.Equal(t, 3, writer.attempts)
		assert.Len(t, writer.messages, 1)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		writer := &fakeWriter{failures: 10}
		p := CreatePublisher(writer)
		p.backoff = time.Millisecond

		err := p.Publish(context.Background(), dto.EventProductDeleted, dto.ProductDeleted{ProductID: 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 3 attempts")
		assert.Equal(t, 3, writer.attempts)
	})
}
