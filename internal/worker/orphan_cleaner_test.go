package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alimikegami/pos-microservices/catalog-federation/internal/dto"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/repository/memory"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/service"
	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/errs"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	known map[int64]bool
	err   error
}

func (d *fakeDirectory) ProductsExist(ctx context.Context, ids []int64) (map[int64]bool, error) {
	if d.err != nil {
		return nil, d.err
	}
	out := map[int64]bool{}
	for _, id := range ids {
		out[id] = d.known[id]
	}
	return out, nil
}

type fakeReader struct {
	messages  []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.messages) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func seedImages(t *testing.T, images service.ImageService, productIDs ...int64) {
	t.Helper()
	for _, id := range productIDs {
		for _, url := range []string{"http://x/a.jpg", "http://x/b.jpg"} {
			_, err := images.CreateImage(context.Background(), dto.ImageRequest{URL: url, ProductID: id})
			require.NoError(t, err)
		}
	}
}

func event(t *testing.T, eventType string, data interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(dto.KafkaMessage{EventID: "01J0000000000000000000000", EventType: eventType, Data: data})
	require.NoError(t, err)
	return raw
}

func TestOrphanCleaner_HandleEvent(t *testing.T) {
	ctx := context.Background()
	images := service.CreateImageService(memory.NewImagesStore().Images(), nil)
	seedImages(t, images, 1, 2)
	w := CreateOrphanCleaner(images, &fakeDirectory{}, nil, time.Minute)

	require.NoError(t, w.HandleEvent(ctx, event(t, dto.EventProductDeleted, dto.ProductDeleted{ProductID: 1})))

	left, err := images.GetAllImages(ctx)
	require.NoError(t, err)
	require.Len(t, left, 2)
	for _, img := range left {
		assert.Equal(t, int64(2), img.ProductID)
	}

	assert.NoError(t, w.HandleEvent(ctx, event(t, "product_created", map[string]int{"product_id": 2})))
	assert.ErrorIs(t, w.HandleEvent(ctx, []byte("{")), errs.ErrValidation)
	assert.ErrorIs(t, w.HandleEvent(ctx, event(t, dto.EventProductDeleted, map[string]int{})), errs.ErrValidation)
}

func TestOrphanCleaner_ConsumeEvents(t *testing.T) {
	images := service.CreateImageService(memory.NewImagesStore().Images(), nil)
	seedImages(t, images, 1, 2, 3)

	reader := &fakeReader{messages: []kafka.Message{
		{Offset: 10, Value: event(t, dto.EventProductDeleted, dto.ProductDeleted{ProductID: 1})},
		{Offset: 11, Value: []byte("not json")},
		{Offset: 12, Value: event(t, dto.EventProductDeleted, dto.ProductDeleted{ProductID: 3})},
	}}
	w := CreateOrphanCleaner(images, &fakeDirectory{}, reader, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.ConsumeEvents(ctx) }()

	require.Eventually(t, func() bool {
		ids, err := images.DistinctProductIDs(context.Background())
		return err == nil && len(ids) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []int64{10, 11, 12}, reader.committed)

	ids, err := images.DistinctProductIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)
}

func TestOrphanCleaner_Reconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("removes images of unknown products", func(t *testing.T) {
		images := service.CreateImageService(memory.NewImagesStore().Images(), nil)
		seedImages(t, images, 1, 2, 3)
		w := CreateOrphanCleaner(images, &fakeDirectory{known: map[int64]bool{2: true}}, nil, time.Minute)

		removed, err := w.Reconcile(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), removed)

		ids, err := images.DistinctProductIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{2}, ids)
	})

	t.Run("keeps everything when the directory fails", func(t *testing.T) {
		images := service.CreateImageService(memory.NewImagesStore().Images(), nil)
		seedImages(t, images, 1)
		w := CreateOrphanCleaner(images, &fakeDirectory{err: errors.New("products unavailable")}, nil, time.Minute)

		_, err := w.Reconcile(ctx)
		require.Error(t, err)

		all, err := images.GetAllImages(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestOrphanCleaner_Schedule(t *testing.T) {
	images := service.CreateImageService(memory.NewImagesStore().Images(), nil)
	seedImages(t, images, 7)
	w := CreateOrphanCleaner(images, &fakeDirectory{}, nil, 20*time.Millisecond)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.Eventually(t, func() bool {
		all, err := images.GetAllImages(context.Background())
		return err == nil && len(all) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
