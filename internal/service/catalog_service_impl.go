package service

import (
	"context"

	"github.com/alimikegami/pos-microservices/catalog-federation/internal/domain"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/dto"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/repository"
)

// CatalogServiceImpl is the monolith: products own their images and every
// write touching both runs in one transaction.
type CatalogServiceImpl struct {
	store    repository.Store
	products ProductService
	images   ImageService
}

func CreateCatalogService(store repository.Store) Catalog {
	products, images := bind(store)
	return &CatalogServiceImpl{store: store, products: products, images: images}
}

func bind(store repository.Store) (ProductService, ImageService) {
	products := CreateProductService(store.Products(), nil)
	return products, CreateImageService(store.Images(), products)
}

func (s *CatalogServiceImpl) SearchActiveProductsByName(ctx context.Context, search string) ([]domain.Product, error) {
	return s.products.SearchActiveProductsByName(ctx, search)
}

func (s *CatalogServiceImpl) GetActiveProductsSortedByID(ctx context.Context) ([]domain.Product, error) {
	return s.products.GetActiveProductsSortedByID(ctx)
}

func (s *CatalogServiceImpl) GetActiveProductsSortedByPrice(ctx context.Context, order string) ([]domain.Product, error) {
	return s.products.GetActiveProductsSortedByPrice(ctx, order)
}

func (s *CatalogServiceImpl) ImagesByProductIDs(ctx context.Context, productIDs []int64) (map[int64][]domain.Image, error) {
	return s.images.GetImagesByProductIDs(ctx, productIDs)
}

func (s *CatalogServiceImpl) GetImage(ctx context.Context, id int64) (domain.Image, error) {
	return s.images.GetImage(ctx, id)
}

func (s *CatalogServiceImpl) GetAllImages(ctx context.Context) ([]domain.Image, error) {
	return s.images.GetAllImages(ctx)
}

func (s *CatalogServiceImpl) CreateProduct(ctx context.Context, data dto.ProductRequest, images []dto.ImageRequest) (product domain.Product, err error) {
	err = s.store.HandleTrx(ctx, func(ctx context.Context, tx repository.Store) error {
		products, imageSvc := bind(tx)

		product, err = products.CreateProduct(ctx, data)
		if err != nil {
			return err
		}

		for _, img := range images {
			img.ProductID = product.ID
			if _, err := imageSvc.CreateImage(ctx, img); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	return product, nil
}

func (s *CatalogServiceImpl) UpdateProduct(ctx context.Context, id int64, data dto.ProductRequest) (domain.Product, error) {
	return s.products.UpdateProduct(ctx, id, data)
}

// DeleteProduct removes the product together with its images.
func (s *CatalogServiceImpl) DeleteProduct(ctx context.Context, id int64) error {
	return s.store.HandleTrx(ctx, func(ctx context.Context, tx repository.Store) error {
		products, images := bind(tx)

		if _, err := products.GetProduct(ctx, id); err != nil {
			return err
		}
		if _, err := images.DeleteImagesByProductID(ctx, id); err != nil {
			return err
		}
		return products.DeleteProduct(ctx, id)
	})
}

func (s *CatalogServiceImpl) AddImageToProduct(ctx context.Context, productID int64, data dto.ImageRequest) (product domain.Product, err error) {
	err = s.store.HandleTrx(ctx, func(ctx context.Context, tx repository.Store) error {
		products, images := bind(tx)

		product, err = products.GetProduct(ctx, productID)
		if err != nil {
			return err
		}

		data.ProductID = productID
		_, err = images.CreateImage(ctx, data)
		return err
	})
	if err != nil {
		return domain.Product{}, err
	}

	return product, nil
}

func (s *CatalogServiceImpl) CreateImage(ctx context.Context, data dto.ImageRequest) (domain.Image, error) {
	return s.images.CreateImage(ctx, data)
}

func (s *CatalogServiceImpl) UpdateImage(ctx context.Context, id int64, data dto.ImageUpdate) (domain.Image, error) {
	return s.images.UpdateImage(ctx, id, data)
}

func (s *CatalogServiceImpl) DeleteImage(ctx context.Context, id int64) error {
	return s.images.DeleteImage(ctx, id)
}
