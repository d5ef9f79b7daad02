package graph

import (
	"context"
	"fmt"

	"github.com/alimikegami/pos-microservices/catalog-federation/internal/domain"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/federation"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/service"
	"github.com/graphql-go/graphql"
)

// ProductReference is the images subgraph's view of a product: its key and
// nothing else.
type ProductReference struct {
	ID int64
}

type imagesLoadersKey struct{}

type imagesLoaders struct {
	byProduct *federation.Deferred[int64, []domain.Image]
}

// NewImagesGraph builds the images subgraph. It owns Image and extends
// Product with images. A Product representation resolves to a
// ProductReference whose images are fetched lazily; all references of one
// _entities call share a single GetImagesByProductIDs batch.
func NewImagesGraph(images service.ImageService, opts Options) (*Graph, error) {
	imageType := newImageType()

	productRef := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					ref, ok := p.Source.(ProductReference)
					if !ok {
						return nil, fmt.Errorf("unexpected product source %T", p.Source)
					}
					return ref.ID, nil
				},
			},
			"images": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(imageType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					ref, ok := p.Source.(ProductReference)
					if !ok {
						return nil, fmt.Errorf("unexpected product source %T", p.Source)
					}

					if l, ok := p.Context.Value(imagesLoadersKey{}).(*imagesLoaders); ok {
						return deferredField(p, l.byProduct, ref.ID), nil
					}

					grouped, err := images.GetImagesByProductIDs(p.Context, []int64{ref.ID})
					if err != nil {
						return nil, resolveErr(err)
					}
					return grouped[ref.ID], nil
				},
			},
		},
	})

	entity := graphql.NewUnion(graphql.UnionConfig{
		Name:  "_Entity",
		Types: []*graphql.Object{productRef, imageType},
		ResolveType: func(p graphql.ResolveTypeParams) *graphql.Object {
			switch p.Value.(type) {
			case ProductReference:
				return productRef
			case domain.Image:
				return imageType
			}
			return nil
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"getImage":     getImageField(imageType, images.GetImage),
			"getAllImages": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(imageType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					data, err := images.GetAllImages(p.Context)
					if err != nil {
						return nil, resolveErr(err)
					}
					return data, nil
				},
			},
			"_service": federation.ServiceField(ImagesSDL),
			"_entities": federation.EntitiesField(entity, map[string]federation.EntityResolver{
				"Product": func(p graphql.ResolveParams, ids []int64) (map[int64]interface{}, error) {
					out := make(map[int64]interface{}, len(ids))
					for _, id := range ids {
						out[id] = ProductReference{ID: id}
					}
					return out, nil
				},
				"Image": func(p graphql.ResolveParams, ids []int64) (map[int64]interface{}, error) {
					found, err := images.GetImagesByIDs(p.Context, ids)
					if err != nil {
						return nil, err
					}
					out := make(map[int64]interface{}, len(found))
					for _, img := range found {
						out[img.ID] = img
					}
					return out, nil
				},
			}),
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createImage": createImageField(imageType, images.CreateImage, nil),
			"updateImage": updateImageField(imageType, images.UpdateImage, nil),
			"deleteImage": deleteImageField(images.DeleteImage, nil),
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
		Types:    []graphql.Type{entity},
	})
	if err != nil {
		return nil, err
	}

	return &Graph{
		schema: schema,
		sdl:    ImagesSDL,
		prepare: func(ctx context.Context) context.Context {
			return context.WithValue(ctx, imagesLoadersKey{}, &imagesLoaders{
				byProduct: federation.NewDeferred("reference_images", images.GetImagesByProductIDs, federation.DeferredOptions{
					BatchCapacity: opts.BatchCapacity,
					Wait:          opts.BatchWait,
				}),
			})
		},
	}, nil
}
