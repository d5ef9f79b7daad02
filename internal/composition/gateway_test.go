package composition_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alimikegami/pos-microservices/catalog-federation/config"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/composition"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/controller"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/federation"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/graph"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/repository/memory"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/service"
	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/errs"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

// subgraph is a real subgraph handler behind httptest with a switch to make
// it fail and a counter of _entities requests.
type subgraph struct {
	server   *httptest.Server
	entities atomic.Int32
	down     atomic.Bool
}

func startSubgraph(g *graph.Graph) *subgraph {
	sg := &subgraph{}

	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			body, _ := io.ReadAll(c.Request().Body)
			c.Request().Body = io.NopCloser(bytes.NewReader(body))

			if bytes.Contains(body, []byte("_entities")) {
				sg.entities.Add(1)
			}
			if sg.down.Load() {
				return c.NoContent(http.StatusInternalServerError)
			}
			return next(c)
		}
	})
	controller.CreateGraphQLController(e.Group(""), g)

	sg.server = httptest.NewServer(e)
	return sg
}

func (sg *subgraph) url() string { return sg.server.URL + "/graphql" }

func subgraphClient(name, url string) *federation.Client {
	return composition.CreateSubgraphClient(name, url, config.FederationConfig{
		Timeout:        time.Second,
		MaxRetries:     2,
		BreakerTimeout: time.Second,
	})
}

type GatewayTestSuite struct {
	suite.Suite
	products *subgraph
	images   *subgraph
	graph    *graph.Graph

	productsClient *federation.Client
	imagesClient   *federation.Client
}

func (s *GatewayTestSuite) SetupTest() {
	productsGraph, err := graph.NewProductsGraph(service.CreateProductService(memory.NewProductsStore().Products(), nil))
	s.Require().NoError(err)
	s.products = startSubgraph(productsGraph)
	s.productsClient = subgraphClient("products", s.products.url())

	imageService := service.CreateImageService(memory.NewImagesStore().Images(), composition.CreateProductDirectory(s.productsClient))
	imagesGraph, err := graph.NewImagesGraph(imageService, graph.Options{BatchWait: 2 * time.Millisecond})
	s.Require().NoError(err)
	s.images = startSubgraph(imagesGraph)
	s.imagesClient = subgraphClient("images", s.images.url())

	s.graph, err = graph.NewCatalogGraph(composition.CreateGateway(s.productsClient, s.imagesClient), graph.Options{BatchWait: 5 * time.Millisecond})
	s.Require().NoError(err)
}

func (s *GatewayTestSuite) TearDownTest() {
	s.products.server.Close()
	s.images.server.Close()
}

func (s *GatewayTestSuite) run(query string, vars map[string]interface{}) (map[string]interface{}, []gqlerrors.FormattedError) {
	res := s.graph.Execute(context.Background(), graph.Request{Query: query, Variables: vars})

	raw, err := json.Marshal(res.Data)
	s.Require().NoError(err)
	var data map[string]interface{}
	s.Require().NoError(json.Unmarshal(raw, &data))
	return data, res.Errors
}

func (s *GatewayTestSuite) mustRun(query string, vars map[string]interface{}) map[string]interface{} {
	data, gqlErrs := s.run(query, vars)
	s.Require().Empty(gqlErrs)
	return data
}

func (s *GatewayTestSuite) createProduct(name string, price float64, status string, urls ...string) (int64, []int64) {
	inp := map[string]interface{}{"name": name, "price": price}
	if status != "" {
		inp["status"] = status
	}
	images := []interface{}{}
	for _, url := range urls {
		images = append(images, map[string]interface{}{"url": url})
	}

	data := s.mustRun(`mutation($inp: ProductInput!, $images: [ProductImageInput!]) {
  createProduct(inp: $inp, images: $images) { id images { id } }
}`, map[string]interface{}{"inp": inp, "images": images})

	product := data["createProduct"].(map[string]interface{})
	imageIDs := []int64{}
	for _, img := range product["images"].([]interface{}) {
		imageIDs = append(imageIDs, int64(img.(map[string]interface{})["id"].(float64)))
	}
	return int64(product["id"].(float64)), imageIDs
}

func code(err gqlerrors.FormattedError) string {
	c, _ := err.Extensions["code"].(string)
	return c
}

func (s *GatewayTestSuite) Test_Widget() {
	data := s.mustRun(`mutation { createProduct(inp: {name: "Widget", price: 9.99, status: ACTIVE}) { id name price } }`, nil)
	created := data["createProduct"].(map[string]interface{})
	s.NotZero(created["id"])

	data = s.mustRun(`{ getActiveProductsSortedById { id name price status } }`, nil)
	products := data["getActiveProductsSortedById"].([]interface{})
	s.Require().Len(products, 1)
	widget := products[0].(map[string]interface{})
	s.Equal("Widget", widget["name"])
	s.Equal(9.99, widget["price"])
	s.Equal("ACTIVE", widget["status"])
	s.Equal(created["id"], widget["id"])
}

func (s *GatewayTestSuite) Test_ImagesResolvedInOneEntitiesCall() {
	for i, name := range []string{"Alpha", "Bravo", "Charlie", "Delta"} {
		s.createProduct(name, float64(i+1), "", "http://x/"+name+"/1.jpg", "http://x/"+name+"/2.jpg")
	}
	s.createProduct("Echo", 9, "")
	s.images.entities.Store(0)

	data := s.mustRun(`{ getActiveProductsSortedById { id name images { productId url } } }`, nil)
	products := data["getActiveProductsSortedById"].([]interface{})
	s.Require().Len(products, 5)
	s.Equal(int32(1), s.images.entities.Load())

	for _, raw := range products {
		p := raw.(map[string]interface{})
		images := p["images"].([]interface{})
		if p["name"] == "Echo" {
			s.Empty(images)
			continue
		}
		s.Len(images, 2)
		for _, img := range images {
			s.Equal(p["id"], img.(map[string]interface{})["productId"])
		}
	}
}

func (s *GatewayTestSuite) Test_SearchAndOrdering() {
	s.createProduct("Blue Widget", 9.99, "")
	s.createProduct("Red Widget", 1.5, "ACTIVE")
	s.createProduct("Hidden Widget", 0.1, "INACTIVE")

	data := s.mustRun(`{ searchActiveProductsByName(search: "widget") { name status } }`, nil)
	found := data["searchActiveProductsByName"].([]interface{})
	s.Len(found, 2)
	for _, p := range found {
		s.Equal("ACTIVE", p.(map[string]interface{})["status"])
	}

	data = s.mustRun(`{ getActiveProductsSortedByPrice(order: "desc") { name } }`, nil)
	sorted := data["getActiveProductsSortedByPrice"].([]interface{})
	s.Require().Len(sorted, 2)
	s.Equal("Blue Widget", sorted[0].(map[string]interface{})["name"])
}

func (s *GatewayTestSuite) Test_ImagesUnavailable() {
	s.createProduct("Widget", 9.99, "", "http://x/1.jpg")
	s.createProduct("Gadget", 5, "")
	s.images.down.Store(true)

	data, gqlErrs := s.run(`{ getActiveProductsSortedById { name images { id } } }`, nil)
	products := data["getActiveProductsSortedById"].([]interface{})
	s.Require().Len(products, 2)
	for _, raw := range products {
		p := raw.(map[string]interface{})
		s.NotEmpty(p["name"])
		s.Nil(p["images"])
	}

	s.Require().NotEmpty(gqlErrs)
	for _, e := range gqlErrs {
		s.Equal(errs.CodeDownstreamUnavailable, code(e))
	}
}

func (s *GatewayTestSuite) Test_DeleteProductLeavesOrphans() {
	productID, imageIDs := s.createProduct("Widget", 9.99, "", "http://x/1.jpg")
	s.Require().Len(imageIDs, 1)

	data := s.mustRun(`mutation($id: Int!) { deleteProduct(productId: $id) }`, map[string]interface{}{"id": productID})
	s.Equal(true, data["deleteProduct"])

	data = s.mustRun(`query($id: Int!) {
  getImage(imageId: $id) { id productId }
  getAllImages { id }
  getActiveProductsSortedById { id images { id } }
}`, map[string]interface{}{"id": imageIDs[0]})

	orphan := data["getImage"].(map[string]interface{})
	s.Equal(float64(productID), orphan["productId"])
	s.Len(data["getAllImages"], 1)
	s.Empty(data["getActiveProductsSortedById"])

	_, gqlErrs := s.run(`mutation($id: Int!) { deleteProduct(productId: $id) }`, map[string]interface{}{"id": productID})
	s.Require().Len(gqlErrs, 1)
	s.Equal(errs.CodeNotFound, code(gqlErrs[0]))
}

func (s *GatewayTestSuite) Test_ImageWrites() {
	type TestCase struct {
		Name         string
		Query        string
		ExpectedCode string
		Contains     string
	}

	productID, _ := s.createProduct("Widget", 9.99, "")

	testCases := []TestCase{
		{
			Name:         "add image to missing product",
			Query:        `mutation { addImageToProduct(productId: 999, imageInput: {url: "http://x/1.jpg"}) { id } }`,
			ExpectedCode: errs.CodeNotFound,
			Contains:     "999",
		},
		{
			Name:         "priority out of range",
			Query:        `mutation { createImage(inp: {url: "http://x/1.jpg", priority: 150, productId: 1}) { id } }`,
			ExpectedCode: errs.CodeValidation,
		},
		{
			Name:         "image for missing product",
			Query:        `mutation { createImage(inp: {url: "http://x/1.jpg", productId: 404}) { id } }`,
			ExpectedCode: errs.CodeNotFound,
			Contains:     "404",
		},
		{
			Name:         "update missing image",
			Query:        `mutation { updateImage(imageId: 77, updates: {priority: 1}) { id } }`,
			ExpectedCode: errs.CodeNotFound,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.Name, func() {
			_, gqlErrs := s.run(tc.Query, nil)
			s.Require().Len(gqlErrs, 1)
			s.Equal(tc.ExpectedCode, code(gqlErrs[0]))
			if tc.Contains != "" {
				s.Contains(gqlErrs[0].Message, tc.Contains)
			}
		})
	}

	s.Run("add image and update it", func() {
		data := s.mustRun(`mutation($id: Int!) {
  addImageToProduct(productId: $id, imageInput: {url: "http://x/1.jpg", priority: 20}) { id images { id priority } }
}`, map[string]interface{}{"id": productID})
		images := data["addImageToProduct"].(map[string]interface{})["images"].([]interface{})
		s.Require().Len(images, 1)
		imageID := images[0].(map[string]interface{})["id"]

		data = s.mustRun(`mutation($id: Int!) { updateImage(imageId: $id, updates: {url: "http://x/2.jpg"}) { url priority } }`,
			map[string]interface{}{"id": imageID})
		updated := data["updateImage"].(map[string]interface{})
		s.Equal("http://x/2.jpg", updated["url"])
		s.Equal(float64(20), updated["priority"])

		data = s.mustRun(`mutation($id: Int!) { deleteImage(imageId: $id) }`, map[string]interface{}{"id": imageID})
		s.Equal(true, data["deleteImage"])
		s.Empty(s.mustRun(`{ getAllImages { id } }`, nil)["getAllImages"])
	})
}

func (s *GatewayTestSuite) Test_CreateProductWithBadImageKeepsProduct() {
	_, gqlErrs := s.run(`mutation {
  createProduct(inp: {name: "Widget", price: 2}, images: [{url: "http://x/1.jpg", priority: 500}]) { id }
}`, nil)
	s.Require().Len(gqlErrs, 1)
	s.Equal(errs.CodeValidation, code(gqlErrs[0]))

	data := s.mustRun(`{ getActiveProductsSortedById { name images { id } } }`, nil)
	products := data["getActiveProductsSortedById"].([]interface{})
	s.Require().Len(products, 1)
	s.Empty(products[0].(map[string]interface{})["images"])
}

func (s *GatewayTestSuite) Test_VerifySubgraphs() {
	s.NoError(composition.VerifySubgraphs(context.Background(), s.productsClient, s.imagesClient))
	s.Error(composition.VerifySubgraphs(context.Background(), s.imagesClient, s.productsClient))
}

func TestGatewayTestSuite(t *testing.T) {
	suite.Run(t, new(GatewayTestSuite))
}
