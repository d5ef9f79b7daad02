package graph

import (
	"fmt"

	"github.com/alimikegami/pos-microservices/catalog-federation/internal/domain"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/dto"
	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/errs"
	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"
)

// The constructors below return fresh type instances. Product and _Entity
// differ between the three schemas, so nothing here is shared.

func newStatusEnum() *graphql.Enum {
	return graphql.NewEnum(graphql.EnumConfig{
		Name: "ProductStatus",
		Values: graphql.EnumValueConfigMap{
			"ACTIVE":   &graphql.EnumValueConfig{Value: domain.StatusActive},
			"INACTIVE": &graphql.EnumValueConfig{Value: domain.StatusInactive},
		},
	})
}

func newImageType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Image",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.Int),
				Resolve: imageField(func(img domain.Image) interface{} { return img.ID }),
			},
			"url": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.String),
				Resolve: imageField(func(img domain.Image) interface{} { return img.URL }),
			},
			"priority": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.Int),
				Resolve: imageField(func(img domain.Image) interface{} { return img.Priority }),
			},
			"productId": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.Int),
				Resolve: imageField(func(img domain.Image) interface{} { return img.ProductID }),
			},
		},
	})
}

// productFields are the Product fields owned by the Product Store.
func productFields(status *graphql.Enum) graphql.Fields {
	return graphql.Fields{
		"id": &graphql.Field{
			Type:    graphql.NewNonNull(graphql.Int),
			Resolve: productField(func(p domain.Product) interface{} { return p.ID }),
		},
		"name": &graphql.Field{
			Type:    graphql.NewNonNull(graphql.String),
			Resolve: productField(func(p domain.Product) interface{} { return p.Name }),
		},
		"price": &graphql.Field{
			Type:    graphql.NewNonNull(graphql.Float),
			Resolve: productField(func(p domain.Product) interface{} { return p.Price.InexactFloat64() }),
		},
		"status": &graphql.Field{
			Type:    graphql.NewNonNull(status),
			Resolve: productField(func(p domain.Product) interface{} { return p.Status }),
		},
	}
}

func newProductInput(status *graphql.Enum) *graphql.InputObject {
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "ProductInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"price":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"status": &graphql.InputObjectFieldConfig{Type: status, DefaultValue: domain.StatusActive},
		},
	})
}

// newProductImageInput is an image attached through its product, so it
// carries no productId.
func newProductImageInput() *graphql.InputObject {
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "ProductImageInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"url":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"priority": &graphql.InputObjectFieldConfig{Type: graphql.Int, DefaultValue: domain.DefaultImagePriority},
		},
	})
}

func newImageInput() *graphql.InputObject {
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "ImageInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"url":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"priority":  &graphql.InputObjectFieldConfig{Type: graphql.Int, DefaultValue: domain.DefaultImagePriority},
			"productId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
	})
}

func newImageUpdateInput() *graphql.InputObject {
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "ImageUpdateInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"url":       &graphql.InputObjectFieldConfig{Type: graphql.String},
			"priority":  &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"productId": &graphql.InputObjectFieldConfig{Type: graphql.Int},
		},
	})
}

func asProduct(source interface{}) (domain.Product, bool) {
	switch p := source.(type) {
	case domain.Product:
		return p, true
	case *domain.Product:
		if p != nil {
			return *p, true
		}
	}
	return domain.Product{}, false
}

func asImage(source interface{}) (domain.Image, bool) {
	switch img := source.(type) {
	case domain.Image:
		return img, true
	case *domain.Image:
		if img != nil {
			return *img, true
		}
	}
	return domain.Image{}, false
}

func productField(get func(domain.Product) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		product, ok := asProduct(p.Source)
		if !ok {
			return nil, fmt.Errorf("unexpected product source %T", p.Source)
		}
		return get(product), nil
	}
}

func imageField(get func(domain.Image) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		img, ok := asImage(p.Source)
		if !ok {
			return nil, fmt.Errorf("unexpected image source %T", p.Source)
		}
		return get(img), nil
	}
}

func idArg(p graphql.ResolveParams, name string) int64 {
	switch v := p.Args[name].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}

func stringArg(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case float32:
		return decimal.NewFromFloat32(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero, errs.NewValidation("price", "must be a number")
		}
		return d, nil
	}
	return decimal.Zero, errs.NewValidation("price", "is required")
}

func productRequestFrom(v interface{}) (dto.ProductRequest, error) {
	m, _ := v.(map[string]interface{})
	if m == nil {
		return dto.ProductRequest{}, errs.NewValidation("input", "is required")
	}

	price, err := toDecimal(m["price"])
	if err != nil {
		return dto.ProductRequest{}, err
	}

	req := dto.ProductRequest{Price: price}
	req.Name, _ = m["name"].(string)
	switch s := m["status"].(type) {
	case domain.ProductStatus:
		req.Status = string(s)
	case string:
		req.Status = s
	}
	return req, nil
}

func imageRequestFrom(v interface{}) dto.ImageRequest {
	m, _ := v.(map[string]interface{})
	var req dto.ImageRequest
	req.URL, _ = m["url"].(string)
	if n, ok := toInt(m["priority"]); ok {
		req.Priority = &n
	}
	if n, ok := toInt(m["productId"]); ok {
		req.ProductID = int64(n)
	}
	return req
}

func imageUpdateFrom(v interface{}) dto.ImageUpdate {
	m, _ := v.(map[string]interface{})
	var upd dto.ImageUpdate
	if s, ok := m["url"].(string); ok {
		upd.URL = &s
	}
	if n, ok := toInt(m["priority"]); ok {
		upd.Priority = &n
	}
	if n, ok := toInt(m["productId"]); ok {
		id := int64(n)
		upd.ProductID = &id
	}
	return upd
}

// resolveErr gives every resolver error an extensions.code.
func resolveErr(err error) error {
	return errs.WithCode(err)
}
