package service

import (
	"context"

	"github.com/alimikegami/pos-microservices/catalog-federation/internal/domain"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/dto"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/repository"
	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/errs"
	"github.com/rs/zerolog/log"
)

type ProductServiceImpl struct {
	repo      repository.ProductRepository
	publisher EventPublisher
}

// CreateProductService builds the Product Store service. publisher may be
// nil, in which case deletions are not announced.
func CreateProductService(repo repository.ProductRepository, publisher EventPublisher) ProductService {
	return &ProductServiceImpl{repo: repo, publisher: publisher}
}

func (s *ProductServiceImpl) SearchActiveProductsByName(ctx context.Context, search string) ([]domain.Product, error) {
	return s.repo.SearchActiveProductsByName(ctx, search)
}

func (s *ProductServiceImpl) GetActiveProductsSortedByID(ctx context.Context) ([]domain.Product, error) {
	return s.repo.GetActiveProductsSortedByID(ctx)
}

func (s *ProductServiceImpl) GetActiveProductsSortedByPrice(ctx context.Context, order string) ([]domain.Product, error) {
	sortOrder, err := domain.ParseSortOrder(order)
	if err != nil {
		return nil, err
	}

	return s.repo.GetActiveProductsSortedByPrice(ctx, sortOrder)
}

func (s *ProductServiceImpl) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return s.repo.GetProductByID(ctx, id)
}

func (s *ProductServiceImpl) GetProductsByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	return s.repo.GetProductsByIDs(ctx, ids)
}

func (s *ProductServiceImpl) ProductsExist(ctx context.Context, ids []int64) (map[int64]bool, error) {
	products, err := s.repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	exists := make(map[int64]bool, len(ids))
	for _, id := range ids {
		exists[id] = false
	}
	for _, p := range products {
		exists[p.ID] = true
	}

	return exists, nil
}

func toProduct(data dto.ProductRequest) (domain.Product, error) {
	status := domain.StatusActive
	if data.Status != "" {
		parsed, err := domain.ParseProductStatus(data.Status)
		if err != nil {
			return domain.Product{}, err
		}
		status = parsed
	}

	p := domain.Product{Name: data.Name, Price: data.Price, Status: status}
	return p, p.Validate()
}

func (s *ProductServiceImpl) CreateProduct(ctx context.Context, data dto.ProductRequest) (domain.Product, error) {
	p, err := toProduct(data)
	if err != nil {
		return domain.Product{}, err
	}

	_, found, err := s.repo.GetProductByName(ctx, p.Name)
	if err != nil {
		return domain.Product{}, err
	}
	if found {
		return domain.Product{}, errs.NewConflict(domain.ProductEntity, "name", p.Name)
	}

	return s.repo.AddProduct(ctx, p)
}

func (s *ProductServiceImpl) UpdateProduct(ctx context.Context, id int64, data dto.ProductRequest) (domain.Product, error) {
	p, err := toProduct(data)
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = id

	existing, found, err := s.repo.GetProductByName(ctx, p.Name)
	if err != nil {
		return domain.Product{}, err
	}
	if found && existing.ID != id {
		return domain.Product{}, errs.NewConflict(domain.ProductEntity, "name", p.Name)
	}

	return s.repo.UpdateProduct(ctx, p)
}

// DeleteProduct removes only the product row. Images owned by another store
// learn about it through the product_deleted event, when a publisher is set.
func (s *ProductServiceImpl) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	if s.publisher == nil {
		return nil
	}

	err := s.publisher.Publish(ctx, dto.EventProductDeleted, dto.ProductDeleted{ProductID: id})
	if err != nil {
		// the row is gone either way; reconciliation picks up missed events
		log.Ctx(ctx).Error().Err(err).Str("component", "DeleteProduct").Int64("product_id", id).Msg("publishing product_deleted failed")
	}

	return nil
}
