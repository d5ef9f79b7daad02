package graph

import (
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/domain"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/federation"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/service"
	"github.com/graphql-go/graphql"
)

// NewProductsGraph builds the products subgraph. Product is an entity keyed
// by id; the images field is contributed by the images subgraph.
func NewProductsGraph(products service.ProductService) (*Graph, error) {
	status := newStatusEnum()
	productInput := newProductInput(status)

	productType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Product",
		Fields: productFields(status),
	})

	entity := graphql.NewUnion(graphql.UnionConfig{
		Name:  "_Entity",
		Types: []*graphql.Object{productType},
		ResolveType: func(p graphql.ResolveTypeParams) *graphql.Object {
			return productType
		},
	})

	list := graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(productType)))

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"searchActiveProductsByName": &graphql.Field{
				Type: list,
				Args: graphql.FieldConfigArgument{
					"search": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					data, err := products.SearchActiveProductsByName(p.Context, stringArg(p, "search"))
					if err != nil {
						return nil, resolveErr(err)
					}
					return data, nil
				},
			},
			"getActiveProductsSortedById": &graphql.Field{
				Type: list,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					data, err := products.GetActiveProductsSortedByID(p.Context)
					if err != nil {
						return nil, resolveErr(err)
					}
					return data, nil
				},
			},
			"getActiveProductsSortedByPrice": &graphql.Field{
				Type: list,
				Args: graphql.FieldConfigArgument{
					"order": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(domain.SortAsc)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					data, err := products.GetActiveProductsSortedByPrice(p.Context, stringArg(p, "order"))
					if err != nil {
						return nil, resolveErr(err)
					}
					return data, nil
				},
			},
			"_service": federation.ServiceField(ProductsSDL),
			"_entities": federation.EntitiesField(entity, map[string]federation.EntityResolver{
				"Product": func(p graphql.ResolveParams, ids []int64) (map[int64]interface{}, error) {
					found, err := products.GetProductsByIDs(p.Context, ids)
					if err != nil {
						return nil, err
					}
					out := make(map[int64]interface{}, len(found))
					for _, product := range found {
						out[product.ID] = product
					}
					return out, nil
				},
			}),
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createProduct": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"inp": &graphql.ArgumentConfig{Type: graphql.NewNonNull(productInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					req, err := productRequestFrom(p.Args["inp"])
					if err != nil {
						return nil, resolveErr(err)
					}
					product, err := products.CreateProduct(p.Context, req)
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
					req, err := productRequestFrom(p.Args["input"])
					if err != nil {
						return nil, resolveErr(err)
					}
					product, err := products.UpdateProduct(p.Context, idArg(p, "productId"), req)
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
					if err := products.DeleteProduct(p.Context, idArg(p, "productId")); err != nil {
						return nil, resolveErr(err)
					}
					return true, nil
				},
			},
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

	return &Graph{schema: schema, sdl: ProductsSDL}, nil
}
