package graph

import (
	"context"
	"errors"

	"github.com/alimikegami/pos-microservices/catalog-federation/internal/domain"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/dto"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/federation"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/service"
	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/errs"
	"github.com/graphql-go/graphql"
)

type catalogLoadersKey struct{}

type catalogLoaders struct {
	images *federation.Deferred[int64, []domain.Image]
}

func catalogLoadersFrom(ctx context.Context) *catalogLoaders {
	l, _ := ctx.Value(catalogLoadersKey{}).(*catalogLoaders)
	return l
}

// resetLoaders forgets cached image lists once a mutation may have changed
// them.
func resetLoaders(ctx context.Context) {
	if l := catalogLoadersFrom(ctx); l != nil {
		l.images.Reset()
	}
}

// NewCatalogGraph builds the unified graph. Product.images is a deferred
// field: every product in a response registers its id and the image lists
// are fetched with one Catalog.ImagesByProductIDs call per query. A failure
// of that call nulls images on the affected products and leaves every other
// field intact.
func NewCatalogGraph(catalog service.Catalog, opts Options) (*Graph, error) {
	status := newStatusEnum()
	imageType := newImageType()
	productInput := newProductInput(status)
	productImageInput := newProductImageInput()

	fields := productFields(status)
	fields["images"] = &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(imageType)),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			product, ok := asProduct(p.Source)
			if !ok {
				return nil, nil
			}

			if l := catalogLoadersFrom(p.Context); l != nil {
				return deferredField(p, l.images, product.ID), nil
			}

			images, err := catalog.ImagesByProductIDs(p.Context, []int64{product.ID})
			if err != nil {
				return nil, resolveErr(err)
			}
			return images[product.ID], nil
		},
	}

	productType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Product",
		Fields: fields,
	})

	products := graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(productType)))

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"searchActiveProductsByName": &graphql.Field{
				Type: products,
				Args: graphql.FieldConfigArgument{
					"search": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					data, err := catalog.SearchActiveProductsByName(p.Context, stringArg(p, "search"))
					if err != nil {
						return nil, resolveErr(err)
					}
					return data, nil
				},
			},
			"getActiveProductsSortedById": &graphql.Field{
				Type: products,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					data, err := catalog.GetActiveProductsSortedByID(p.Context)
					if err != nil {
						return nil, resolveErr(err)
					}
					return data, nil
				},
			},
			"getActiveProductsSortedByPrice": &graphql.Field{
				Type: products,
				Args: graphql.FieldConfigArgument{
					"order": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(domain.SortAsc)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					data, err := catalog.GetActiveProductsSortedByPrice(p.Context, stringArg(p, "order"))
					if err != nil {
						return nil, resolveErr(err)
					}
					return data, nil
				},
			},
			"getImage":     getImageField(imageType, catalog.GetImage),
			"getAllImages": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(imageType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					data, err := catalog.GetAllImages(p.Context)
					if err != nil {
						return nil, resolveErr(err)
					}
					return data, nil
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createProduct": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"inp":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(productInput)},
					"images": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(productImageInput))},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					defer resetLoaders(p.Context)

					req, err := productRequestFrom(p.Args["inp"])
					if err != nil {
						return nil, resolveErr(err)
					}

					raw, _ := p.Args["images"].([]interface{})
					images := make([]dto.ImageRequest, 0, len(raw))
					for _, v := range raw {
						images = append(images, imageRequestFrom(v))
					}

					product, err := catalog.CreateProduct(p.Context, req, images)
					if err != nil {
						return nil, resolveErr(err)
					}
					return product, nil
				},
			},
			"updateProduct": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"productId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"input":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(productInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					defer resetLoaders(p.Context)

					req, err := productRequestFrom(p.Args["input"])
					if err != nil {
						return nil, resolveErr(err)
					}

					product, err := catalog.UpdateProduct(p.Context, idArg(p, "productId"), req)
					if err != nil {
						return nil, resolveErr(err)
					}
					return product, nil
				},
			},
			"deleteProduct": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"productId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					defer resetLoaders(p.Context)

					if err := catalog.DeleteProduct(p.Context, idArg(p, "productId")); err != nil {
						return nil, resolveErr(err)
					}
					return true, nil
				},
			},
			"addImageToProduct": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"productId":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"imageInput": &graphql.ArgumentConfig{Type: graphql.NewNonNull(productImageInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					defer resetLoaders(p.Context)

					product, err := catalog.AddImageToProduct(p.Context, idArg(p, "productId"), imageRequestFrom(p.Args["imageInput"]))
					if err != nil {
						return nil, resolveErr(err)
					}
					return product, nil
				},
			},
			"createImage": createImageField(imageType, catalog.CreateImage, resetLoaders),
			"updateImage": updateImageField(imageType, catalog.UpdateImage, resetLoaders),
			"deleteImage": deleteImageField(catalog.DeleteImage, resetLoaders),
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
	if err != nil {
		return nil, err
	}

	return &Graph{
		schema: schema,
		sdl:    CatalogSDL,
		prepare: func(ctx context.Context) context.Context {
			return context.WithValue(ctx, catalogLoadersKey{}, &catalogLoaders{
				images: federation.NewDeferred("product_images", catalog.ImagesByProductIDs, federation.DeferredOptions{
					BatchCapacity: opts.BatchCapacity,
					Wait:          opts.BatchWait,
				}),
			})
		},
	}, nil
}

func getImageField(imageType *graphql.Object, get func(ctx context.Context, id int64) (domain.Image, error)) *graphql.Field {
	return &graphql.Field{
		Type: imageType,
		Args: graphql.FieldConfigArgument{
			"imageId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			img, err := get(p.Context, idArg(p, "imageId"))
			if errors.Is(err, errs.ErrNotFound) {
				return nil, nil
			}
			if err != nil {
				return nil, resolveErr(err)
			}
			return img, nil
		},
	}
}

func createImageField(imageType *graphql.Object, create func(ctx context.Context, data dto.ImageRequest) (domain.Image, error), after func(context.Context)) *graphql.Field {
	return &graphql.Field{
		Type: imageType,
		Args: graphql.FieldConfigArgument{
			"inp": &graphql.ArgumentConfig{Type: graphql.NewNonNull(newImageInput())},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if after != nil {
				defer after(p.Context)
			}

			img, err := create(p.Context, imageRequestFrom(p.Args["inp"]))
			if err != nil {
				return nil, resolveErr(err)
			}
			return img, nil
		},
	}
}

func updateImageField(imageType *graphql.Object, update func(ctx context.Context, id int64, data dto.ImageUpdate) (domain.Image, error), after func(context.Context)) *graphql.Field {
	return &graphql.Field{
		Type: imageType,
		Args: graphql.FieldConfigArgument{
			"imageId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			"updates": &graphql.ArgumentConfig{Type: graphql.NewNonNull(newImageUpdateInput())},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if after != nil {
				defer after(p.Context)
			}

			img, err := update(p.Context, idArg(p, "imageId"), imageUpdateFrom(p.Args["updates"]))
			if err != nil {
				return nil, resolveErr(err)
			}
			return img, nil
		},
	}
}

func deleteImageField(remove func(ctx context.Context, id int64) error, after func(context.Context)) *graphql.Field {
	return &graphql.Field{
		Type: graphql.Boolean,
		Args: graphql.FieldConfigArgument{
			"imageId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if after != nil {
				defer after(p.Context)
			}

			if err := remove(p.Context, idArg(p, "imageId")); err != nil {
				return nil, resolveErr(err)
			}
			return true, nil
		},
	}
}
