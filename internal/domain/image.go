package domain

import (
	"strings"

	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/errs"
)

const (
	ImageEntity = "image"

	DefaultImagePriority = 100
	MinImagePriority     = 0
	MaxImagePriority     = 100
)

// Image belongs to the Image Store. ProductID is a reference by value; the
// image side knows nothing else about products.
type Image struct {
	ID        int64  `db:"id" json:"id"`
	URL       string `db:"url" json:"url"`
	Priority  int    `db:"priority" json:"priority"`
	ProductID int64  `db:"product_id" json:"productId"`
}

func (i Image) Validate() error {
	if strings.TrimSpace(i.URL) == "" {
		return errs.NewValidation("url", "must not be empty")
	}
	if i.Priority < MinImagePriority || i.Priority > MaxImagePriority {
		return errs.NewValidation("priority", "must be between 0 and 100")
	}
	if i.ProductID <= 0 {
		return errs.NewValidation("productId", "must reference a product")
	}
	return nil
}
