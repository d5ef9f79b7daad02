package repository

import (
	"context"

	"github.com/alimikegami/pos-microservices/catalog-federation/internal/domain"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/dto"
)

type ProductRepository interface {
	SearchActiveProductsByName(ctx context.Context, search string) ([]domain.Product, error)
	GetActiveProductsSortedByID(ctx context.Context) ([]domain.Product, error)
	GetActiveProductsSortedByPrice(ctx context.Context, order domain.SortOrder) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id int64) (domain.Product, error)
	GetProductByName(ctx context.Context, name string) (data domain.Product, found bool, err error)
	GetProductsByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	AddProduct(ctx context.Context, data domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, data domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type ImageRepository interface {
	AddImage(ctx context.Context, data domain.Image) (domain.Image, error)
	GetImageByID(ctx context.Context, id int64) (domain.Image, error)
	GetImages(ctx context.Context) ([]domain.Image, error)
	GetImagesByIDs(ctx context.Context, ids []int64) ([]domain.Image, error)
	GetImagesByProductIDs(ctx context.Context, productIDs []int64) ([]domain.Image, error)
	UpdateImage(ctx context.Context, id int64, data dto.ImageUpdate) (domain.Image, error)
	DeleteImage(ctx context.Context, id int64) error
	DeleteImagesByProductID(ctx context.Context, productID int64) (int64, error)
	DistinctProductIDs(ctx context.Context) ([]int64, error)
}

// Store groups the repositories sharing one database so the monolith can
// write products and images in a single transaction.
type Store interface {
	Products() ProductRepository
	Images() ImageRepository
	HandleTrx(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}
