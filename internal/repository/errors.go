package repository

import (
	"errors"
	"strconv"

	"github.com/alimikegami/pos-microservices/catalog-federation/internal/domain"
	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/errs"
	"github.com/lib/pq"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

func translateProductError(err error, data domain.Product) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case pqUniqueViolation:
		return errs.NewConflict(domain.ProductEntity, "name", data.Name)
	case pqCheckViolation:
		return errs.NewValidation(pqErr.Constraint, "violates product constraint")
	}
	return err
}

func translateImageError(err error, productID int64, url string) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case pqUniqueViolation:
		return errs.NewConflict(domain.ImageEntity, "url", url+" for product "+strconv.FormatInt(productID, 10))
	case pqForeignKeyViolation:
		return errs.NewNotFound(domain.ProductEntity, productID)
	case pqCheckViolation:
		return errs.NewValidation(pqErr.Constraint, "violates image constraint")
	}
	return err
}
