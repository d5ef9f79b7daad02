package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/errs"
	"github.com/shopspring/decimal"
)

const (
	ProductEntity = "product"

	ProductNameMinLength = 3
	ProductNameMaxLength = 500
)

type ProductStatus string

const (
	StatusActive   ProductStatus = "active"
	StatusInactive ProductStatus = "inactive"
)

// ParseProductStatus accepts both the stored form and the GraphQL enum name.
func ParseProductStatus(s string) (ProductStatus, error) {
	switch ProductStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusActive:
		return StatusActive, nil
	case StatusInactive:
		return StatusInactive, nil
	}
	return "", errs.NewValidation("status", "must be ACTIVE or INACTIVE")
}

type Product struct {
	ID     int64           `db:"id"`
	Name   string          `db:"name"`
	Price  decimal.Decimal `db:"price"`
	Status ProductStatus   `db:"status"`
}

// Validate enforces the Product Store's own constraints.
func (p Product) Validate() error {
	n := utf8.RuneCountInString(p.Name)
	if n < ProductNameMinLength || n > ProductNameMaxLength {
		return errs.NewValidation("name", "length must be between 3 and 500 characters")
	}
	if p.Price.IsNegative() {
		return errs.NewValidation("price", "must not be negative")
	}
	if p.Status != StatusActive && p.Status != StatusInactive {
		return errs.NewValidation("status", "must be ACTIVE or INACTIVE")
	}
	return nil
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortAsc:
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	}
	return "", errs.NewValidation("order", `must be "asc" or "desc"`)
}
