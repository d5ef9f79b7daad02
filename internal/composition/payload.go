package composition

import (
	"strings"

	"github.com/alimikegami/pos-microservices/catalog-federation/internal/domain"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/dto"
	"github.com/shopspring/decimal"
)

// productPayload is a Product as the products subgraph serialises it: the
// status is the enum name and the price a JSON number.
type productPayload struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Status string          `json:"status"`
}

func (p productPayload) toDomain() (domain.Product, error) {
	status, err := domain.ParseProductStatus(p.Status)
	if err != nil {
		return domain.Product{}, err
	}
	return domain.Product{ID: p.ID, Name: p.Name, Price: p.Price, Status: status}, nil
}

func toProducts(payloads []productPayload) ([]domain.Product, error) {
	products := make([]domain.Product, 0, len(payloads))
	for _, p := range payloads {
		product, err := p.toDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

type productImagesPayload struct {
	ID     int64          `json:"id"`
	Images []domain.Image `json:"images"`
}

func productInput(data dto.ProductRequest) (map[string]interface{}, error) {
	inp := map[string]interface{}{
		"name":  data.Name,
		"price": data.Price.InexactFloat64(),
	}
	if data.Status != "" {
		status, err := domain.ParseProductStatus(data.Status)
		if err != nil {
			return nil, err
		}
		inp["status"] = strings.ToUpper(string(status))
	}
	return inp, nil
}

func imageInput(data dto.ImageRequest) map[string]interface{} {
	inp := map[string]interface{}{
		"url":       data.URL,
		"productId": data.ProductID,
	}
	if data.Priority != nil {
		inp["priority"] = *data.Priority
	}
	return inp
}

func imageUpdates(data dto.ImageUpdate) map[string]interface{} {
	updates := map[string]interface{}{}
	if data.URL != nil {
		updates["url"] = *data.URL
	}
	if data.Priority != nil {
		updates["priority"] = *data.Priority
	}
	if data.ProductID != nil {
		updates["productId"] = *data.ProductID
	}
	return updates
}
