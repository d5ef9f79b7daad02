package graph_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alimikegami/pos-microservices/catalog-federation/internal/domain"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/graph"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/repository/memory"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/service"
	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/errs"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOptions = graph.Options{BatchWait: 5 * time.Millisecond}

// countingCatalog records every image batch the graph asks for.
type countingCatalog struct {
	service.Catalog

	mu      sync.Mutex
	batches [][]int64
	fail    error
}

func (c *countingCatalog) ImagesByProductIDs(ctx context.Context, productIDs []int64) (map[int64][]domain.Image, error) {
	c.mu.Lock()
	ids := append([]int64(nil), productIDs...)
	c.batches = append(c.batches, ids)
	fail := c.fail
	c.mu.Unlock()

	if fail != nil {
		return nil, fail
	}
	return c.Catalog.ImagesByProductIDs(ctx, productIDs)
}

func (c *countingCatalog) batchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func newCatalogGraph(t *testing.T) (*graph.Graph, *countingCatalog) {
	t.Helper()
	catalog := &countingCatalog{Catalog: service.CreateCatalogService(memory.NewCatalogStore())}
	g, err := graph.NewCatalogGraph(catalog, testOptions)
	require.NoError(t, err)
	return g, catalog
}

func run(t *testing.T, g *graph.Graph, query string, vars map[string]interface{}) (map[string]interface{}, []gqlerrors.FormattedError) {
	t.Helper()
	res := g.Execute(context.Background(), graph.Request{Query: query, Variables: vars})

	raw, err := json.Marshal(res.Data)
	require.NoError(t, err)
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &data))
	return data, res.Errors
}

func mustRun(t *testing.T, g *graph.Graph, query string, vars map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, gqlErrs := run(t, g, query, vars)
	require.Empty(t, gqlErrs)
	return data
}

func code(err gqlerrors.FormattedError) string {
	c, _ := err.Extensions["code"].(string)
	return c
}

func list(data map[string]interface{}, field string) []map[string]interface{} {
	raw, _ := data[field].([]interface{})
	out := make([]map[string]interface{}, 0, len(raw))
	for _, v := range raw {
		m, _ := v.(map[string]interface{})
		out = append(out, m)
	}
	return out
}

const createProduct = `mutation($inp: ProductInput!, $images: [ProductImageInput!]) {
  createProduct(inp: $inp, images: $images) { id name price status images { id url priority productId } }
}`

func create(t *testing.T, g *graph.Graph, name string, price float64, status string, images ...string) int64 {
	t.Helper()
	inp := map[string]interface{}{"name": name, "price": price}
	if status != "" {
		inp["status"] = status
	}
	imgs := make([]interface{}, 0, len(images))
	for i, url := range images {
		imgs = append(imgs, map[string]interface{}{"url": url, "priority": 10 * (i + 1)})
	}

	data := mustRun(t, g, createProduct, map[string]interface{}{"inp": inp, "images": imgs})
	product, _ := data["createProduct"].(map[string]interface{})
	require.NotNil(t, product)
	id, _ := product["id"].(float64)
	require.NotZero(t, id)
	return int64(id)
}

func TestCatalogGraph_Widget(t *testing.T) {
	g, _ := newCatalogGraph(t)

	data := mustRun(t, g, createProduct, map[string]interface{}{
		"inp": map[string]interface{}{"name": "Widget", "price": 9.99, "status": "ACTIVE"},
	})
	created := data["createProduct"].(map[string]interface{})
	assert.NotZero(t, created["id"])
	assert.Equal(t, "ACTIVE", created["status"])
	assert.Equal(t, []interface{}{}, created["images"])

	data = mustRun(t, g, `{ getActiveProductsSortedById { id name price } }`, nil)
	products := list(data, "getActiveProductsSortedById")
	require.Len(t, products, 1)
	assert.Equal(t, "Widget", products[0]["name"])
	assert.Equal(t, 9.99, products[0]["price"])
	assert.Equal(t, created["id"], products[0]["id"])
}

func TestCatalogGraph_ProductQueries(t *testing.T) {
	g, _ := newCatalogGraph(t)
	create(t, g, "Blue Widget", 9.99, "")
	create(t, g, "Red Widget", 1.5, "ACTIVE")
	create(t, g, "Hidden Widget", 0.1, "INACTIVE")
	create(t, g, "Gadget", 25, "ACTIVE")

	t.Run("search returns only active matches", func(t *testing.T) {
		data := mustRun(t, g, `query($s: String!) { searchActiveProductsByName(search: $s) { name status } }`,
			map[string]interface{}{"s": "widget"})
		found := list(data, "searchActiveProductsByName")
		require.Len(t, found, 2)
		for _, p := range found {
			assert.Equal(t, "ACTIVE", p["status"])
			assert.NotEqual(t, "Hidden Widget", p["name"])
		}
	})

	t.Run("price ascending by default", func(t *testing.T) {
		data := mustRun(t, g, `{ getActiveProductsSortedByPrice { price } }`, nil)
		prices := list(data, "getActiveProductsSortedByPrice")
		require.Len(t, prices, 3)
		assert.True(t, sort.SliceIsSorted(prices, func(i, j int) bool {
			return prices[i]["price"].(float64) < prices[j]["price"].(float64)
		}))
	})

	t.Run("price descending", func(t *testing.T) {
		data := mustRun(t, g, `{ getActiveProductsSortedByPrice(order: "desc") { price } }`, nil)
		prices := list(data, "getActiveProductsSortedByPrice")
		require.Len(t, prices, 3)
		for i := 1; i < len(prices); i++ {
			assert.GreaterOrEqual(t, prices[i-1]["price"].(float64), prices[i]["price"].(float64))
		}
	})

	t.Run("invalid order", func(t *testing.T) {
		_, gqlErrs := run(t, g, `{ getActiveProductsSortedByPrice(order: "sideways") { id } }`, nil)
		require.Len(t, gqlErrs, 1)
		assert.Equal(t, errs.CodeValidation, code(gqlErrs[0]))
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		_, gqlErrs := run(t, g, createProduct, map[string]interface{}{
			"inp": map[string]interface{}{"name": "Gadget", "price": 1},
		})
		require.Len(t, gqlErrs, 1)
		assert.Equal(t, errs.CodeConflict, code(gqlErrs[0]))
	})
}

func TestCatalogGraph_ImagesAreBatched(t *testing.T) {
	g, catalog := newCatalogGraph(t)

	ids := map[int64]bool{}
	for i := 0; i < 6; i++ {
		id := create(t, g, fmt.Sprintf("Product %d", i), float64(i+1), "ACTIVE",
			fmt.Sprintf("http://x/%d/a.jpg", i), fmt.Sprintf("http://x/%d/b.jpg", i))
		ids[id] = true
	}
	empty := create(t, g, "Bare Product", 3, "ACTIVE")
	before := catalog.batchCount()

	data := mustRun(t, g, `{ getActiveProductsSortedById { id images { id productId url } } }`, nil)
	products := list(data, "getActiveProductsSortedById")
	require.Len(t, products, 7)

	assert.Equal(t, 1, catalog.batchCount()-before)
	assert.Len(t, catalog.batches[len(catalog.batches)-1], 7)

	for _, p := range products {
		id := int64(p["id"].(float64))
		images := p["images"].([]interface{})
		if id == empty {
			assert.Empty(t, images)
			continue
		}
		require.Len(t, images, 2)
		for _, raw := range images {
			img := raw.(map[string]interface{})
			assert.Equal(t, float64(id), img["productId"])
			assert.True(t, strings.HasPrefix(img["url"].(string), "http://x/"))
		}
	}
}

func TestCatalogGraph_ImageMutations(t *testing.T) {
	g, _ := newCatalogGraph(t)
	productID := create(t, g, "Widget", 9.99, "ACTIVE")

	t.Run("priority out of range", func(t *testing.T) {
		data, gqlErrs := run(t, g, `mutation($inp: ImageInput!) { createImage(inp: $inp) { id } }`, map[string]interface{}{
			"inp": map[string]interface{}{"url": "http://x/1.jpg", "priority": 150, "productId": productID},
		})
		require.Len(t, gqlErrs, 1)
		assert.Equal(t, errs.CodeValidation, code(gqlErrs[0]))
		assert.Nil(t, data["createImage"])
	})

	t.Run("add image to missing product", func(t *testing.T) {
		_, gqlErrs := run(t, g, `mutation { addImageToProduct(productId: 999, imageInput: {url: "http://x/1.jpg"}) { id } }`, nil)
		require.Len(t, gqlErrs, 1)
		assert.Equal(t, errs.CodeNotFound, code(gqlErrs[0]))
		assert.Contains(t, gqlErrs[0].Message, "999")
	})

	var imageID float64
	t.Run("add image returns refreshed product", func(t *testing.T) {
		data := mustRun(t, g, `mutation($id: Int!) {
  addImageToProduct(productId: $id, imageInput: {url: "http://x/1.jpg"}) { id images { id priority } }
}`, map[string]interface{}{"id": productID})
		product := data["addImageToProduct"].(map[string]interface{})
		images := product["images"].([]interface{})
		require.Len(t, images, 1)
		img := images[0].(map[string]interface{})
		assert.Equal(t, float64(domain.DefaultImagePriority), img["priority"])
		imageID = img["id"].(float64)
	})

	t.Run("update image keeps unspecified fields", func(t *testing.T) {
		data := mustRun(t, g, `mutation($id: Int!) { updateImage(imageId: $id, updates: {priority: 5}) { url priority } }`,
			map[string]interface{}{"id": imageID})
		img := data["updateImage"].(map[string]interface{})
		assert.Equal(t, "http://x/1.jpg", img["url"])
		assert.Equal(t, float64(5), img["priority"])
	})

	t.Run("delete image", func(t *testing.T) {
		data := mustRun(t, g, `mutation($id: Int!) { deleteImage(imageId: $id) }`, map[string]interface{}{"id": imageID})
		assert.Equal(t, true, data["deleteImage"])

		data = mustRun(t, g, `query($id: Int!) {
  getAllImages { id }
  getImage(imageId: $id) { id }
  getActiveProductsSortedById { images { id } }
}`, map[string]interface{}{"id": imageID})
		assert.Empty(t, data["getAllImages"])
		assert.Nil(t, data["getImage"])
		products := list(data, "getActiveProductsSortedById")
		require.Len(t, products, 1)
		assert.Empty(t, products[0]["images"])
	})

	t.Run("delete missing image", func(t *testing.T) {
		_, gqlErrs := run(t, g, `mutation { deleteImage(imageId: 12345) }`, nil)
		require.Len(t, gqlErrs, 1)
		assert.Equal(t, errs.CodeNotFound, code(gqlErrs[0]))
	})
}

func TestCatalogGraph_DeleteProductCascades(t *testing.T) {
	g, _ := newCatalogGraph(t)
	productID := create(t, g, "Widget", 9.99, "ACTIVE", "http://x/1.jpg", "http://x/2.jpg")
	other := create(t, g, "Gadget", 5, "ACTIVE", "http://x/3.jpg")

	data := mustRun(t, g, `mutation($id: Int!) { deleteProduct(productId: $id) }`, map[string]interface{}{"id": productID})
	assert.Equal(t, true, data["deleteProduct"])

	data = mustRun(t, g, `{ getAllImages { productId } }`, nil)
	images := list(data, "getAllImages")
	require.Len(t, images, 1)
	assert.Equal(t, float64(other), images[0]["productId"])

	_, gqlErrs := run(t, g, `mutation($id: Int!) { updateProduct(productId: $id, input: {name: "Widget", price: 1}) { id } }`,
		map[string]interface{}{"id": productID})
	require.Len(t, gqlErrs, 1)
	assert.Equal(t, errs.CodeNotFound, code(gqlErrs[0]))
}

func TestCatalogGraph_ImagesDegradeOnFailure(t *testing.T) {
	g, catalog := newCatalogGraph(t)
	create(t, g, "Widget", 9.99, "ACTIVE", "http://x/1.jpg")
	create(t, g, "Gadget", 5, "ACTIVE")

	catalog.fail = &errs.DownstreamError{Service: "images", Err: context.DeadlineExceeded}
	before := catalog.batchCount()

	data, gqlErrs := run(t, g, `{ getActiveProductsSortedById { id name images { id } } }`, nil)
	products := list(data, "getActiveProductsSortedById")
	require.Len(t, products, 2)
	for _, p := range products {
		assert.NotEmpty(t, p["name"])
		assert.Nil(t, p["images"])
	}

	require.Len(t, gqlErrs, 2)
	for _, e := range gqlErrs {
		assert.Equal(t, errs.CodeDownstreamUnavailable, code(e))
		assert.Equal(t, "images", e.Path[len(e.Path)-1])
	}
	assert.Equal(t, 1, catalog.batchCount()-before)
}

func TestCatalogGraph_SDLDescribesSchema(t *testing.T) {
	g, _ := newCatalogGraph(t)
	assertSDLCovers(t, g)
}

func assertSDLCovers(t *testing.T, g *graph.Graph) {
	t.Helper()
	schema := g.Schema()
	for name := range schema.QueryType().Fields() {
		if strings.HasPrefix(name, "_") {
			continue
		}
		assert.Contains(t, g.SDL(), " "+name, "query field %s", name)
	}
	for name := range schema.MutationType().Fields() {
		assert.Contains(t, g.SDL(), " "+name+"(", "mutation field %s", name)
	}
}
