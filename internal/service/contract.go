package service

import (
	"context"

	"github.com/alimikegami/pos-microservices/catalog-federation/internal/domain"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/dto"
)

type ProductService interface {
	SearchActiveProductsByName(ctx context.Context, search string) ([]domain.Product, error)
	GetActiveProductsSortedByID(ctx context.Context) ([]domain.Product, error)
	GetActiveProductsSortedByPrice(ctx context.Context, order string) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	ProductsExist(ctx context.Context, ids []int64) (map[int64]bool, error)
	CreateProduct(ctx context.Context, data dto.ProductRequest) (domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, data dto.ProductRequest) (domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type ImageService interface {
	CreateImage(ctx context.Context, data dto.ImageRequest) (domain.Image, error)
	GetImage(ctx context.Context, id int64) (domain.Image, error)
	GetAllImages(ctx context.Context) ([]domain.Image, error)
	GetImagesByIDs(ctx context.Context, ids []int64) ([]domain.Image, error)
	GetImagesByProductIDs(ctx context.Context, productIDs []int64) (map[int64][]domain.Image, error)
	UpdateImage(ctx context.Context, id int64, data dto.ImageUpdate) (domain.Image, error)
	DeleteImage(ctx context.Context, id int64) error
	DeleteImagesByProductID(ctx context.Context, productID int64) (int64, error)
	DistinctProductIDs(ctx context.Context) ([]int64, error)
}

// ProductDirectory answers whether products exist. Image writes use it to
// keep product_id pointing at a real product.
type ProductDirectory interface {
	ProductsExist(ctx context.Context, ids []int64) (map[int64]bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// Catalog is the unified product and image graph. The monolith serves it
// from one store, the gateway composes it from the two subgraphs.
type Catalog interface {
	SearchActiveProductsByName(ctx context.Context, search string) ([]domain.Product, error)
	GetActiveProductsSortedByID(ctx context.Context) ([]domain.Product, error)
	GetActiveProductsSortedByPrice(ctx context.Context, order string) ([]domain.Product, error)
	ImagesByProductIDs(ctx context.Context, productIDs []int64) (map[int64][]domain.Image, error)
	GetImage(ctx context.Context, id int64) (domain.Image, error)
	GetAllImages(ctx context.Context) ([]domain.Image, error)

	CreateProduct(ctx context.Context, data dto.ProductRequest, images []dto.ImageRequest) (domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, data dto.ProductRequest) (domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	AddImageToProduct(ctx context.Context, productID int64, data dto.ImageRequest) (domain.Product, error)
	CreateImage(ctx context.Context, data dto.ImageRequest) (domain.Image, error)
	UpdateImage(ctx context.Context, id int64, data dto.ImageUpdate) (domain.Image, error)
	DeleteImage(ctx context.Context, id int64) error
}
