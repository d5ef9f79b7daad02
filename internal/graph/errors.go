package graph

import (
	"context"
	"fmt"
	"sync"

	"github.com/alimikegami/pos-microservices/catalog-federation/internal/federation"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
)

type deferredErrorsKey struct{}

// deferredErrors keeps the extensions of errors returned by deferred fields.
// graphql-go formats a failed thunk into a FormattedError before locating
// it, which drops extensions, so they are put back by response path once
// execution is over.
type deferredErrors struct {
	mu         sync.Mutex
	extensions map[string]map[string]interface{}
}

func withDeferredErrors(ctx context.Context) (context.Context, *deferredErrors) {
	d := &deferredErrors{extensions: map[string]map[string]interface{}{}}
	return context.WithValue(ctx, deferredErrorsKey{}, d), d
}

func pathKey(path []interface{}) string {
	return fmt.Sprintf("%v", path)
}

func (d *deferredErrors) record(path []interface{}, err error) {
	extended, ok := err.(gqlerrors.ExtendedError)
	if !ok {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.extensions[pathKey(path)] = extended.Extensions()
}

func (d *deferredErrors) restore(res *graphql.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.extensions) == 0 {
		return
	}
	for i := range res.Errors {
		if res.Errors[i].Extensions != nil {
			continue
		}
		if ext, ok := d.extensions[pathKey(res.Errors[i].Path)]; ok {
			res.Errors[i].Extensions = ext
		}
	}
}

// deferredField registers key with the loader and returns the thunk for the
// field being resolved. A failure keeps its extensions.code.
func deferredField[K comparable, V any](p graphql.ResolveParams, loader *federation.Deferred[K, V], key K) func() (interface{}, error) {
	thunk := loader.Resolve(p.Context, key, resolveErr)
	return func() (interface{}, error) {
		v, err := thunk()
		if err != nil {
			if d, ok := p.Context.Value(deferredErrorsKey{}).(*deferredErrors); ok {
				d.record(p.Info.Path.AsArray(), err)
			}
		}
		return v, err
	}
}
