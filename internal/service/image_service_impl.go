package service

import (
	"context"

	"github.com/alimikegami/pos-microservices/catalog-federation/internal/domain"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/dto"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/repository"
	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/errs"
	"github.com/rs/zerolog/log"
)

type ImageServiceImpl struct {
	repo      repository.ImageRepository
	directory ProductDirectory
}

// CreateImageService builds the Image Store service. Without a directory
// product references are stored unchecked.
func CreateImageService(repo repository.ImageRepository, directory ProductDirectory) ImageService {
	return &ImageServiceImpl{repo: repo, directory: directory}
}

func (s *ImageServiceImpl) checkProduct(ctx context.Context, productID int64) error {
	if s.directory == nil {
		log.Ctx(ctx).Warn().Str("component", "checkProduct").Int64("product_id", productID).Msg("no product directory, reference not verified")
		return nil
	}

	exists, err := s.directory.ProductsExist(ctx, []int64{productID})
	if err != nil {
		return err
	}
	if !exists[productID] {
		return errs.NewNotFound(domain.ProductEntity, productID)
	}

	return nil
}

func (s *ImageServiceImpl) CreateImage(ctx context.Context, data dto.ImageRequest) (domain.Image, error) {
	img := domain.Image{URL: data.URL, Priority: domain.DefaultImagePriority, ProductID: data.ProductID}
	if data.Priority != nil {
		img.Priority = *data.Priority
	}

	if err := img.Validate(); err != nil {
		return domain.Image{}, err
	}
	if err := s.checkProduct(ctx, img.ProductID); err != nil {
		return domain.Image{}, err
	}

	return s.repo.AddImage(ctx, img)
}

func (s *ImageServiceImpl) GetImage(ctx context.Context, id int64) (domain.Image, error) {
	return s.repo.GetImageByID(ctx, id)
}

func (s *ImageServiceImpl) GetAllImages(ctx context.Context) ([]domain.Image, error) {
	return s.repo.GetImages(ctx)
}

func (s *ImageServiceImpl) GetImagesByIDs(ctx context.Context, ids []int64) ([]domain.Image, error) {
	return s.repo.GetImagesByIDs(ctx, ids)
}

// GetImagesByProductIDs answers a whole batch of products with one store
// call. Every requested product gets an entry, empty when it has no images.
func (s *ImageServiceImpl) GetImagesByProductIDs(ctx context.Context, productIDs []int64) (map[int64][]domain.Image, error) {
	images, err := s.repo.GetImagesByProductIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	grouped := make(map[int64][]domain.Image, len(productIDs))
	for _, id := range productIDs {
		grouped[id] = []domain.Image{}
	}
	for _, img := range images {
		grouped[img.ProductID] = append(grouped[img.ProductID], img)
	}

	return grouped, nil
}

func (s *ImageServiceImpl) UpdateImage(ctx context.Context, id int64, data dto.ImageUpdate) (domain.Image, error) {
	img, err := s.repo.GetImageByID(ctx, id)
	if err != nil {
		return domain.Image{}, err
	}

	if data.URL != nil {
		img.URL = *data.URL
	}
	if data.Priority != nil {
		img.Priority = *data.Priority
	}
	moved := data.ProductID != nil && *data.ProductID != img.ProductID
	if data.ProductID != nil {
		img.ProductID = *data.ProductID
	}

	if err := img.Validate(); err != nil {
		return domain.Image{}, err
	}
	if moved {
		if err := s.checkProduct(ctx, img.ProductID); err != nil {
			return domain.Image{}, err
		}
	}

	return s.repo.UpdateImage(ctx, id, data)
}

func (s *ImageServiceImpl) DeleteImage(ctx context.Context, id int64) error {
	return s.repo.DeleteImage(ctx, id)
}

func (s *ImageServiceImpl) DeleteImagesByProductID(ctx context.Context, productID int64) (int64, error) {
	return s.repo.DeleteImagesByProductID(ctx, productID)
}

func (s *ImageServiceImpl) DistinctProductIDs(ctx context.Context) ([]int64, error) {
	return s.repo.DistinctProductIDs(ctx)
}
