// Package composition serves the unified catalog graph from the products and
// images subgraphs.
package composition

import (
	"context"
	"fmt"

	"github.com/alimikegami/pos-microservices/catalog-federation/internal/domain"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/dto"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/federation"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/service"
	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/errs"
	"github.com/rs/zerolog/log"
)

// Gateway implements the catalog over two subgraphs. Product fields come
// from the products subgraph; Product.images is resolved by handing product
// stubs to the images subgraph's _entities. There is no transaction across
// the two, so a deleted product leaves its images behind.
type Gateway struct {
	products *federation.Client
	images   *federation.Client
}

func CreateGateway(products, images *federation.Client) service.Catalog {
	return &Gateway{products: products, images: images}
}

func (g *Gateway) SearchActiveProductsByName(ctx context.Context, search string) ([]domain.Product, error) {
	var data struct {
		Products []productPayload `json:"searchActiveProductsByName"`
	}
	if err := g.products.Query(ctx, searchProductsQuery, map[string]interface{}{"search": search}, &data); err != nil {
		return nil, err
	}
	return toProducts(data.Products)
}

func (g *Gateway) GetActiveProductsSortedByID(ctx context.Context) ([]domain.Product, error) {
	var data struct {
		Products []productPayload `json:"getActiveProductsSortedById"`
	}
	if err := g.products.Query(ctx, productsByIDQuery, nil, &data); err != nil {
		return nil, err
	}
	return toProducts(data.Products)
}

func (g *Gateway) GetActiveProductsSortedByPrice(ctx context.Context, order string) ([]domain.Product, error) {
	sortOrder, err := domain.ParseSortOrder(order)
	if err != nil {
		return nil, err
	}

	var data struct {
		Products []productPayload `json:"getActiveProductsSortedByPrice"`
	}
	if err := g.products.Query(ctx, productsByPriceQuery, map[string]interface{}{"order": string(sortOrder)}, &data); err != nil {
		return nil, err
	}
	return toProducts(data.Products)
}

// ImagesByProductIDs resolves the images of every product in one _entities
// request. Products unknown to the images subgraph get an empty list.
func (g *Gateway) ImagesByProductIDs(ctx context.Context, productIDs []int64) (map[int64][]domain.Image, error) {
	grouped := make(map[int64][]domain.Image, len(productIDs))
	if len(productIDs) == 0 {
		return grouped, nil
	}

	reps := make([]federation.Representation, len(productIDs))
	for i, id := range productIDs {
		reps[i] = federation.Representation{Typename: "Product", ID: id}
		grouped[id] = []domain.Image{}
	}

	var entities []*productImagesPayload
	if err := g.images.Entities(ctx, reps, productImagesSelection, &entities); err != nil {
		return nil, err
	}

	for _, e := range entities {
		if e != nil && e.Images != nil {
			grouped[e.ID] = e.Images
		}
	}
	return grouped, nil
}

func (g *Gateway) GetImage(ctx context.Context, id int64) (domain.Image, error) {
	var data struct {
		Image *domain.Image `json:"getImage"`
	}
	if err := g.images.Query(ctx, getImageQuery, map[string]interface{}{"imageId": id}, &data); err != nil {
		return domain.Image{}, err
	}
	if data.Image == nil {
		return domain.Image{}, errs.NewNotFound(domain.ImageEntity, id)
	}
	return *data.Image, nil
}

func (g *Gateway) GetAllImages(ctx context.Context) ([]domain.Image, error) {
	var data struct {
		Images []domain.Image `json:"getAllImages"`
	}
	if err := g.images.Query(ctx, allImagesQuery, nil, &data); err != nil {
		return nil, err
	}
	return data.Images, nil
}

// CreateProduct creates the product and then each image in turn. An image
// failure is returned after the product already exists; nothing is rolled
// back.
func (g *Gateway) CreateProduct(ctx context.Context, data dto.ProductRequest, images []dto.ImageRequest) (domain.Product, error) {
	inp, err := productInput(data)
	if err != nil {
		return domain.Product{}, err
	}

	var created struct {
		Product *productPayload `json:"createProduct"`
	}
	if err := g.products.Mutate(ctx, createProductMutation, map[string]interface{}{"inp": inp}, &created); err != nil {
		return domain.Product{}, err
	}
	if created.Product == nil {
		return domain.Product{}, fmt.Errorf("products subgraph returned no product")
	}

	product, err := created.Product.toDomain()
	if err != nil {
		return domain.Product{}, err
	}

	for _, img := range images {
		img.ProductID = product.ID
		if _, err := g.CreateImage(ctx, img); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("component", "Gateway.CreateProduct").Int64("product_id", product.ID).Msg("image not attached")
			return domain.Product{}, fmt.Errorf("product %d was created but image %q was not: %w", product.ID, img.URL, err)
		}
	}

	return product, nil
}

func (g *Gateway) UpdateProduct(ctx context.Context, id int64, data dto.ProductRequest) (domain.Product, error) {
	inp, err := productInput(data)
	if err != nil {
		return domain.Product{}, err
	}

	var updated struct {
		Product *productPayload `json:"updateProduct"`
	}
	vars := map[string]interface{}{"productId": id, "input": inp}
	if err := g.products.Mutate(ctx, updateProductMutation, vars, &updated); err != nil {
		return domain.Product{}, err
	}
	if updated.Product == nil {
		return domain.Product{}, errs.NewNotFound(domain.ProductEntity, id)
	}
	return updated.Product.toDomain()
}

// DeleteProduct removes the product only. Its images stay in the images
// subgraph until a cleanup consumer or reconciler removes them.
func (g *Gateway) DeleteProduct(ctx context.Context, id int64) error {
	return g.products.Mutate(ctx, deleteProductMutation, map[string]interface{}{"productId": id}, nil)
}

func (g *Gateway) AddImageToProduct(ctx context.Context, productID int64, data dto.ImageRequest) (domain.Product, error) {
	found, err := lookupProducts(ctx, g.products, []int64{productID})
	if err != nil {
		return domain.Product{}, err
	}
	product, ok := found[productID]
	if !ok {
		return domain.Product{}, errs.NewNotFound(domain.ProductEntity, productID)
	}

	data.ProductID = productID
	if _, err := g.CreateImage(ctx, data); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (g *Gateway) CreateImage(ctx context.Context, data dto.ImageRequest) (domain.Image, error) {
	var created struct {
		Image *domain.Image `json:"createImage"`
	}
	if err := g.images.Mutate(ctx, createImageMutation, map[string]interface{}{"inp": imageInput(data)}, &created); err != nil {
		return domain.Image{}, err
	}
	if created.Image == nil {
		return domain.Image{}, fmt.Errorf("images subgraph returned no image")
	}
	return *created.Image, nil
}

func (g *Gateway) UpdateImage(ctx context.Context, id int64, data dto.ImageUpdate) (domain.Image, error) {
	var updated struct {
		Image *domain.Image `json:"updateImage"`
	}
	vars := map[string]interface{}{"imageId": id, "updates": imageUpdates(data)}
	if err := g.images.Mutate(ctx, updateImageMutation, vars, &updated); err != nil {
		return domain.Image{}, err
	}
	if updated.Image == nil {
		return domain.Image{}, errs.NewNotFound(domain.ImageEntity, id)
	}
	return *updated.Image, nil
}

func (g *Gateway) DeleteImage(ctx context.Context, id int64) error {
	return g.images.Mutate(ctx, deleteImageMutation, map[string]interface{}{"imageId": id}, nil)
}

// lookupProducts resolves product stubs against the products subgraph.
// Missing products are absent from the result.
func lookupProducts(ctx context.Context, products *federation.Client, ids []int64) (map[int64]domain.Product, error) {
	reps := make([]federation.Representation, len(ids))
	for i, id := range ids {
		reps[i] = federation.Representation{Typename: "Product", ID: id}
	}

	var entities []*productPayload
	if err := products.Entities(ctx, reps, productSelection, &entities); err != nil {
		return nil, err
	}

	found := make(map[int64]domain.Product, len(entities))
	for _, e := range entities {
		if e == nil {
			continue
		}
		product, err := e.toDomain()
		if err != nil {
			return nil, err
		}
		found[product.ID] = product
	}
	return found, nil
}
