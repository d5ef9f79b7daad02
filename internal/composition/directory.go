package composition

import (
	"context"

	"github.com/alimikegami/pos-microservices/catalog-federation/internal/federation"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/service"
)

// ProductDirectory lets the images subgraph check product ids against the
// products subgraph before it writes.
type ProductDirectory struct {
	products *federation.Client
}

func CreateProductDirectory(products *federation.Client) service.ProductDirectory {
	return &ProductDirectory{products: products}
}

func (d *ProductDirectory) ProductsExist(ctx context.Context, ids []int64) (map[int64]bool, error) {
	exists := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return exists, nil
	}

	found, err := lookupProducts(ctx, d.products, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		_, exists[id] = found[id]
	}
	return exists, nil
}
