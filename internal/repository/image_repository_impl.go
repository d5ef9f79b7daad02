package repository

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/domain"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/dto"
	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/errs"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

var imageColumns = []string{"id", "url", "priority", "product_id"}

type ImageRepositoryImpl struct {
	db sqlx.ExtContext
}

func CreateImageRepository(db sqlx.ExtContext) ImageRepository {
	return &ImageRepositoryImpl{db: db}
}

func (r *ImageRepositoryImpl) list(ctx context.Context, component string, b sq.SelectBuilder) (data []domain.Image, err error) {
	query, args, err := b.ToSql()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", component).Msg("")
		return nil, err
	}

	data = []domain.Image{}
	err = sqlx.SelectContext(ctx, r.db, &data, query, args...)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", component).Msg("")
		return nil, err
	}

	return data, nil
}

func (r *ImageRepositoryImpl) AddImage(ctx context.Context, data domain.Image) (domain.Image, error) {
	query, args, err := psql.Insert("images").
		Columns("url", "priority", "product_id").
		Values(data.URL, data.Priority, data.ProductID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return data, err
	}

	err = r.db.QueryRowxContext(ctx, query, args...).Scan(&data.ID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "AddImage").Msg("")
		return data, translateImageError(err, data.ProductID, data.URL)
	}

	return data, nil
}

func (r *ImageRepositoryImpl) GetImageByID(ctx context.Context, id int64) (data domain.Image, err error) {
	query, args, err := psql.Select(imageColumns...).From("images").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return data, err
	}

	err = sqlx.GetContext(ctx, r.db, &data, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return data, errs.NewNotFound(domain.ImageEntity, id)
	}
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetImageByID").Msg("")
		return data, err
	}

	return data, nil
}

func (r *ImageRepositoryImpl) GetImages(ctx context.Context) ([]domain.Image, error) {
	return r.list(ctx, "GetImages", psql.Select(imageColumns...).From("images").OrderBy("id"))
}

func (r *ImageRepositoryImpl) GetImagesByIDs(ctx context.Context, ids []int64) ([]domain.Image, error) {
	if len(ids) == 0 {
		return []domain.Image{}, nil
	}

	b := psql.Select(imageColumns...).From("images").Where(sq.Eq{"id": ids}).OrderBy("id")
	return r.list(ctx, "GetImagesByIDs", b)
}

// GetImagesByProductIDs returns the images of every given product in one
// query, ordered by product, priority and id.
func (r *ImageRepositoryImpl) GetImagesByProductIDs(ctx context.Context, productIDs []int64) ([]domain.Image, error) {
	if len(productIDs) == 0 {
		return []domain.Image{}, nil
	}

	b := psql.Select(imageColumns...).
		From("images").
		Where(sq.Eq{"product_id": productIDs}).
		OrderBy("product_id", "priority", "id")
	return r.list(ctx, "GetImagesByProductIDs", b)
}

func (r *ImageRepositoryImpl) UpdateImage(ctx context.Context, id int64, data dto.ImageUpdate) (updated domain.Image, err error) {
	if data.IsEmpty() {
		return r.GetImageByID(ctx, id)
	}

	set := map[string]interface{}{}
	if data.URL != nil {
		set["url"] = *data.URL
	}
	if data.Priority != nil {
		set["priority"] = *data.Priority
	}
	if data.ProductID != nil {
		set["product_id"] = *data.ProductID
	}

	query, args, err := psql.Update("images").
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, url, priority, product_id").
		ToSql()
	if err != nil {
		return updated, err
	}

	err = sqlx.GetContext(ctx, r.db, &updated, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return updated, errs.NewNotFound(domain.ImageEntity, id)
	}
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "UpdateImage").Msg("")
		var productID int64
		var url string
		if data.ProductID != nil {
			productID = *data.ProductID
		}
		if data.URL != nil {
			url = *data.URL
		}
		return updated, translateImageError(err, productID, url)
	}

	return updated, nil
}

func (r *ImageRepositoryImpl) DeleteImage(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("images").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "DeleteImage").Msg("")
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.NewNotFound(domain.ImageEntity, id)
	}

	return nil
}

func (r *ImageRepositoryImpl) DeleteImagesByProductID(ctx context.Context, productID int64) (int64, error) {
	query, args, err := psql.Delete("images").Where(sq.Eq{"product_id": productID}).ToSql()
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "DeleteImagesByProductID").Msg("")
		return 0, err
	}

	return res.RowsAffected()
}

func (r *ImageRepositoryImpl) DistinctProductIDs(ctx context.Context) (ids []int64, err error) {
	query, args, err := psql.Select("DISTINCT product_id").From("images").OrderBy("product_id").ToSql()
	if err != nil {
		return nil, err
	}

	ids = []int64{}
	err = sqlx.SelectContext(ctx, r.db, &ids, query, args...)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "DistinctProductIDs").Msg("")
		return nil, err
	}

	return ids, nil
}
