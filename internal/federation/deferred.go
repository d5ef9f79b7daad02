package federation

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader/v7"
)

// BatchFunc fetches values for a batch of keys. Keys absent from the result
// resolve to the zero value of V; an error fails every key of the batch.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) (map[K]V, error)

// Deferred is a request scoped field placeholder. Resolve registers a key
// and returns a thunk; the executor runs thunks only after every sibling
// has registered its key, so one query produces one batch per resolver.
type Deferred[K comparable, V any] struct {
	name   string
	loader *dataloader.Loader[K, V]
}

type DeferredOptions struct {
	// BatchCapacity splits very large result sets into several batches.
	BatchCapacity int
	Wait          time.Duration
}

func NewDeferred[K comparable, V any](name string, fetch BatchFunc[K, V], opts DeferredOptions) *Deferred[K, V] {
	batch := func(ctx context.Context, keys []K) []*dataloader.Result[V] {
		batchSize.WithLabelValues(name).Observe(float64(len(keys)))

		found, err := fetch(ctx, keys)
		results := make([]*dataloader.Result[V], len(keys))
		for i, key := range keys {
			if err != nil {
				results[i] = &dataloader.Result[V]{Error: err}
				continue
			}
			results[i] = &dataloader.Result[V]{Data: found[key]}
		}
		return results
	}

	options := []dataloader.Option[K, V]{}
	if opts.BatchCapacity > 0 {
		options = append(options, dataloader.WithBatchCapacity[K, V](opts.BatchCapacity))
	}
	if opts.Wait > 0 {
		options = append(options, dataloader.WithWait[K, V](opts.Wait))
	}

	return &Deferred[K, V]{name: name, loader: dataloader.NewBatchedLoader(batch, options...)}
}

// Resolve returns a thunk in the shape graphql-go defers.
func (d *Deferred[K, V]) Resolve(ctx context.Context, key K, wrap func(error) error) func() (interface{}, error) {
	thunk := d.loader.Load(ctx, key)
	return func() (interface{}, error) {
		v, err := thunk()
		if err != nil {
			if wrap != nil {
				err = wrap(err)
			}
			return nil, err
		}
		return v, nil
	}
}

func (d *Deferred[K, V]) Load(ctx context.Context, key K) (V, error) {
	return d.loader.Load(ctx, key)()
}

// Reset drops cached values, used after a mutation changed what they hold.
func (d *Deferred[K, V]) Reset() {
	d.loader.ClearAll()
}
