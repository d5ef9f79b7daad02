// Package worker removes images whose product no longer exists in the
// products subgraph.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/alimikegami/pos-microservices/catalog-federation/internal/domain"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/dto"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/service"
	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/errs"
	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

const reconcileChunk = 100

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// OrphanCleaner deletes images of deleted products, either as product_deleted
// events arrive or by periodically comparing image product ids with the
// products subgraph.
type OrphanCleaner struct {
	images    service.ImageService
	directory service.ProductDirectory
	reader    MessageReader
	interval  time.Duration
	scheduler gocron.Scheduler
}

func CreateOrphanCleaner(images service.ImageService, directory service.ProductDirectory, reader MessageReader, interval time.Duration) *OrphanCleaner {
	return &OrphanCleaner{
		images:    images,
		directory: directory,
		reader:    reader,
		interval:  interval,
	}
}

func (w *OrphanCleaner) HandleEvent(ctx context.Context, value []byte) error {
	var msg struct {
		EventID   string          `json:"event_id"`
		EventType string          `json:"event_type"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(value, &msg); err != nil {
		return errs.NewValidation("event", err.Error())
	}

	if msg.EventType != dto.EventProductDeleted {
		return nil
	}

	var event dto.ProductDeleted
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return errs.NewValidation("event.data", err.Error())
	}
	if event.ProductID <= 0 {
		return errs.NewValidation("product_id", "must be positive")
	}

	removed, err := w.images.DeleteImagesByProductID(ctx, event.ProductID)
	if err != nil {
		return err
	}

	log.Ctx(ctx).Info().Str("component", "HandleEvent").Str("event_id", msg.EventID).
		Int64("product_id", event.ProductID).Int64("removed", removed).Msg("images of deleted product removed")
	return nil
}

// ConsumeEvents reads until ctx is cancelled or the reader is closed. A
// message that cannot be handled is logged and committed anyway; the
// reconciler picks up whatever it left behind.
func (w *OrphanCleaner) ConsumeEvents(ctx context.Context) error {
	for {
		msg, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			log.Ctx(ctx).Error().Err(err).Str("component", "ConsumeEvents").Msg("")
			return err
		}

		if err := w.HandleEvent(ctx, msg.Value); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("component", "ConsumeEvents").Int64("offset", msg.Offset).Msg("")
		}

		if err := w.reader.CommitMessages(ctx, msg); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("component", "ConsumeEvents").Int64("offset", msg.Offset).Msg("")
		}
	}
}

// Reconcile deletes the images of every product the directory no longer
// knows. Nothing is deleted for a chunk the directory could not answer.
func (w *OrphanCleaner) Reconcile(ctx context.Context) (int64, error) {
	ids, err := w.images.DistinctProductIDs(ctx)
	if err != nil {
		return 0, err
	}

	var removed int64
	for start := 0; start < len(ids); start += reconcileChunk {
		end := min(start+reconcileChunk, len(ids))
		chunk := ids[start:end]

		exists, err := w.directory.ProductsExist(ctx, chunk)
		if err != nil {
			return removed, err
		}

		for _, id := range chunk {
			if exists[id] {
				continue
			}
			n, err := w.images.DeleteImagesByProductID(ctx, id)
			if err != nil {
				return removed, err
			}
			removed += n
			log.Ctx(ctx).Info().Str("component", "Reconcile").Str("entity", domain.ProductEntity).
				Int64("product_id", id).Int64("removed", n).Msg("orphaned images removed")
		}
	}

	return removed, nil
}

// Start schedules Reconcile every interval. Runs never overlap.
func (w *OrphanCleaner) Start(ctx context.Context) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = s.NewJob(
		gocron.DurationJob(
			w.interval,
		),
		gocron.NewTask(
			func() {
				if _, err := w.Reconcile(ctx); err != nil {
					log.Ctx(ctx).Error().Err(err).Str("component", "Reconcile").Msg("")
				}
			},
		),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	s.Start()
	w.scheduler = s
	return nil
}

func (w *OrphanCleaner) Stop() error {
	if w.scheduler == nil {
		return nil
	}
	return w.scheduler.Shutdown()
}
