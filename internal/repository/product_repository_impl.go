package repository

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/domain"
	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/errs"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var productColumns = []string{"id", "name", "price", "status"}

type ProductRepositoryImpl struct {
	db sqlx.ExtContext
}

func CreateProductRepository(db sqlx.ExtContext) ProductRepository {
	return &ProductRepositoryImpl{db: db}
}

func (r *ProductRepositoryImpl) selectActive() sq.SelectBuilder {
	return psql.Select(productColumns...).From("products").Where(sq.Eq{"status": domain.StatusActive})
}

func (r *ProductRepositoryImpl) list(ctx context.Context, component string, b sq.SelectBuilder) (data []domain.Product, err error) {
	query, args, err := b.ToSql()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", component).Msg("")
		return nil, err
	}

	data = []domain.Product{}
	err = sqlx.SelectContext(ctx, r.db, &data, query, args...)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", component).Msg("")
		return nil, err
	}

	return data, nil
}

func (r *ProductRepositoryImpl) SearchActiveProductsByName(ctx context.Context, search string) ([]domain.Product, error) {
	b := r.selectActive().
		Where("to_tsvector('english', name) @@ plainto_tsquery('english', ?)", search).
		OrderBy("id")

	return r.list(ctx, "SearchActiveProductsByName", b)
}

func (r *ProductRepositoryImpl) GetActiveProductsSortedByID(ctx context.Context) ([]domain.Product, error) {
	return r.list(ctx, "GetActiveProductsSortedByID", r.selectActive().OrderBy("id ASC"))
}

func (r *ProductRepositoryImpl) GetActiveProductsSortedByPrice(ctx context.Context, order domain.SortOrder) ([]domain.Product, error) {
	direction := "ASC"
	if order == domain.SortDesc {
		direction = "DESC"
	}

	return r.list(ctx, "GetActiveProductsSortedByPrice", r.selectActive().OrderBy("price "+direction, "id ASC"))
}

func (r *ProductRepositoryImpl) GetProductByID(ctx context.Context, id int64) (data domain.Product, err error) {
	query, args, err := psql.Select(productColumns...).From("products").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return data, err
	}

	err = sqlx.GetContext(ctx, r.db, &data, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return data, errs.NewNotFound(domain.ProductEntity, id)
	}
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetProductByID").Msg("")
		return data, err
	}

	return data, nil
}

func (r *ProductRepositoryImpl) GetProductByName(ctx context.Context, name string) (data domain.Product, found bool, err error) {
	query, args, err := psql.Select(productColumns...).From("products").Where(sq.Eq{"name": name}).ToSql()
	if err != nil {
		return data, false, err
	}

	err = sqlx.GetContext(ctx, r.db, &data, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return data, false, nil
	}
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetProductByName").Msg("")
		return data, false, err
	}

	return data, true, nil
}

func (r *ProductRepositoryImpl) GetProductsByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	b := psql.Select(productColumns...).From("products").Where(sq.Eq{"id": ids}).OrderBy("id")
	return r.list(ctx, "GetProductsByIDs", b)
}

func (r *ProductRepositoryImpl) AddProduct(ctx context.Context, data domain.Product) (domain.Product, error) {
	query, args, err := psql.Insert("products").
		Columns("name", "price", "status").
		Values(data.Name, data.Price, data.Status).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return data, err
	}

	err = r.db.QueryRowxContext(ctx, query, args...).Scan(&data.ID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "AddProduct").Msg("")
		return data, translateProductError(err, data)
	}

	return data, nil
}

func (r *ProductRepositoryImpl) UpdateProduct(ctx context.Context, data domain.Product) (updated domain.Product, err error) {
	query, args, err := psql.Update("products").
		Set("name", data.Name).
		Set("price", data.Price).
		Set("status", data.Status).
		Where(sq.Eq{"id": data.ID}).
		Suffix("RETURNING id, name, price, status").
		ToSql()
	if err != nil {
		return updated, err
	}

	err = sqlx.GetContext(ctx, r.db, &updated, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return updated, errs.NewNotFound(domain.ProductEntity, data.ID)
	}
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "UpdateProduct").Msg("")
		return updated, translateProductError(err, data)
	}

	return updated, nil
}

func (r *ProductRepositoryImpl) DeleteProduct(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("products").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "DeleteProduct").Msg("")
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.NewNotFound(domain.ProductEntity, id)
	}

	return nil
}
