// Package memory holds map backed repositories that enforce the same
// constraints as the Postgres schemas. They back unit tests and
// DB_DRIVER=memory deployments.
package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/alimikegami/pos-microservices/catalog-federation/internal/domain"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/dto"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/repository"
	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/errs"
)

type Options struct {
	// LinkedImages mirrors CatalogSchema: image writes require an existing
	// product and deleting a product deletes its images.
	LinkedImages bool
	// UniqueProductURL mirrors the (product_id, url) constraint of ImagesSchema.
	UniqueProductURL bool
}

type Store struct {
	opts Options

	trx sync.Mutex
	mu  sync.RWMutex

	products   map[int64]domain.Product
	images     map[int64]domain.Image
	productSeq int64
	imageSeq   int64
}

func NewStore(opts Options) *Store {
	return &Store{
		opts:     opts,
		products: map[int64]domain.Product{},
		images:   map[int64]domain.Image{},
	}
}

// NewProductsStore matches ProductsSchema.
func NewProductsStore() *Store { return NewStore(Options{}) }

// NewImagesStore matches ImagesSchema.
func NewImagesStore() *Store { return NewStore(Options{UniqueProductURL: true}) }

// NewCatalogStore matches CatalogSchema.
func NewCatalogStore() *Store { return NewStore(Options{LinkedImages: true}) }

func (s *Store) Products() repository.ProductRepository { return productRepo{s} }

func (s *Store) Images() repository.ImageRepository { return imageRepo{s} }

// HandleTrx serializes transactions. A failing fn restores the state seen
// when the transaction began.
func (s *Store) HandleTrx(ctx context.Context, fn func(ctx context.Context, store repository.Store) error) (err error) {
	s.trx.Lock()
	defer s.trx.Unlock()

	s.mu.RLock()
	products := make(map[int64]domain.Product, len(s.products))
	for k, v := range s.products {
		products[k] = v
	}
	images := make(map[int64]domain.Image, len(s.images))
	for k, v := range s.images {
		images[k] = v
	}
	s.mu.RUnlock()

	rollback := func() {
		s.mu.Lock()
		s.products = products
		s.images = images
		s.mu.Unlock()
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err = fn(ctx, s); err != nil {
		rollback()
	}
	return err
}

type productRepo struct{ s *Store }

func (r productRepo) filterActive(match func(domain.Product) bool) []domain.Product {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	data := []domain.Product{}
	for _, p := range r.s.products {
		if p.Status == domain.StatusActive && match(p) {
			data = append(data, p)
		}
	}
	sort.Slice(data, func(i, j int) bool { return data[i].ID < data[j].ID })
	return data
}

func tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// SearchActiveProductsByName requires every search token to appear as a
// whole word of the name, ignoring case.
func (r productRepo) SearchActiveProductsByName(ctx context.Context, search string) ([]domain.Product, error) {
	want := tokens(search)
	if len(want) == 0 {
		return []domain.Product{}, nil
	}

	return r.filterActive(func(p domain.Product) bool {
		have := map[string]bool{}
		for _, t := range tokens(p.Name) {
			have[t] = true
		}
		for _, t := range want {
			if !have[t] {
				return false
			}
		}
		return true
	}), nil
}

func (r productRepo) GetActiveProductsSortedByID(ctx context.Context) ([]domain.Product, error) {
	return r.filterActive(func(domain.Product) bool { return true }), nil
}

func (r productRepo) GetActiveProductsSortedByPrice(ctx context.Context, order domain.SortOrder) ([]domain.Product, error) {
	data := r.filterActive(func(domain.Product) bool { return true })
	sort.SliceStable(data, func(i, j int) bool {
		if order == domain.SortDesc {
			return data[i].Price.GreaterThan(data[j].Price)
		}
		return data[i].Price.LessThan(data[j].Price)
	})
	return data, nil
}

func (r productRepo) GetProductByID(ctx context.Context, id int64) (domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return domain.Product{}, errs.NewNotFound(domain.ProductEntity, id)
	}
	return p, nil
}

func (r productRepo) GetProductByName(ctx context.Context, name string) (domain.Product, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.products {
		if p.Name == name {
			return p, true, nil
		}
	}
	return domain.Product{}, false, nil
}

func (r productRepo) GetProductsByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	data := []domain.Product{}
	seen := map[int64]bool{}
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok && !seen[id] {
			seen[id] = true
			data = append(data, p)
		}
	}
	sort.Slice(data, func(i, j int) bool { return data[i].ID < data[j].ID })
	return data, nil
}

func (r productRepo) checkProduct(p domain.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	for _, other := range r.s.products {
		if other.Name == p.Name && other.ID != p.ID {
			return errs.NewConflict(domain.ProductEntity, "name", p.Name)
		}
	}
	return nil
}

func (r productRepo) AddProduct(ctx context.Context, data domain.Product) (domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	data.ID = 0
	if err := r.checkProduct(data); err != nil {
		return data, err
	}

	r.s.productSeq++
	data.ID = r.s.productSeq
	r.s.products[data.ID] = data
	return data, nil
}

func (r productRepo) UpdateProduct(ctx context.Context, data domain.Product) (domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[data.ID]; !ok {
		return domain.Product{}, errs.NewNotFound(domain.ProductEntity, data.ID)
	}
	if err := r.checkProduct(data); err != nil {
		return domain.Product{}, err
	}

	r.s.products[data.ID] = data
	return data, nil
}

func (r productRepo) DeleteProduct(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return errs.NewNotFound(domain.ProductEntity, id)
	}
	delete(r.s.products, id)

	if r.s.opts.LinkedImages {
		for imageID, img := range r.s.images {
			if img.ProductID == id {
				delete(r.s.images, imageID)
			}
		}
	}
	return nil
}

type imageRepo struct{ s *Store }

func (r imageRepo) checkImage(img domain.Image) error {
	if err := img.Validate(); err != nil {
		return err
	}
	if r.s.opts.LinkedImages {
		if _, ok := r.s.products[img.ProductID]; !ok {
			return errs.NewNotFound(domain.ProductEntity, img.ProductID)
		}
	}
	if r.s.opts.UniqueProductURL {
		for _, other := range r.s.images {
			if other.ID != img.ID && other.ProductID == img.ProductID && other.URL == img.URL {
				return errs.NewConflict(domain.ImageEntity, "url", img.URL+" for product "+strconv.FormatInt(img.ProductID, 10))
			}
		}
	}
	return nil
}

func (r imageRepo) sorted(match func(domain.Image) bool, less func(a, b domain.Image) bool) []domain.Image {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	data := []domain.Image{}
	for _, img := range r.s.images {
		if match(img) {
			data = append(data, img)
		}
	}
	sort.Slice(data, func(i, j int) bool { return less(data[i], data[j]) })
	return data
}

func byID(a, b domain.Image) bool { return a.ID < b.ID }

func (r imageRepo) AddImage(ctx context.Context, data domain.Image) (domain.Image, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	data.ID = 0
	if err := r.checkImage(data); err != nil {
		return data, err
	}

	r.s.imageSeq++
	data.ID = r.s.imageSeq
	r.s.images[data.ID] = data
	return data, nil
}

func (r imageRepo) GetImageByID(ctx context.Context, id int64) (domain.Image, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	img, ok := r.s.images[id]
	if !ok {
		return domain.Image{}, errs.NewNotFound(domain.ImageEntity, id)
	}
	return img, nil
}

func (r imageRepo) GetImages(ctx context.Context) ([]domain.Image, error) {
	return r.sorted(func(domain.Image) bool { return true }, byID), nil
}

func (r imageRepo) GetImagesByIDs(ctx context.Context, ids []int64) ([]domain.Image, error) {
	want := map[int64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	return r.sorted(func(img domain.Image) bool { return want[img.ID] }, byID), nil
}

func (r imageRepo) GetImagesByProductIDs(ctx context.Context, productIDs []int64) ([]domain.Image, error) {
	want := map[int64]bool{}
	for _, id := range productIDs {
		want[id] = true
	}
	return r.sorted(func(img domain.Image) bool { return want[img.ProductID] }, func(a, b domain.Image) bool {
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.ID < b.ID
	}), nil
}

func (r imageRepo) UpdateImage(ctx context.Context, id int64, data dto.ImageUpdate) (domain.Image, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	img, ok := r.s.images[id]
	if !ok {
		return domain.Image{}, errs.NewNotFound(domain.ImageEntity, id)
	}
	if data.URL != nil {
		img.URL = *data.URL
	}
	if data.Priority != nil {
		img.Priority = *data.Priority
	}
	if data.ProductID != nil {
		img.ProductID = *data.ProductID
	}
	if err := r.checkImage(img); err != nil {
		return domain.Image{}, err
	}

	r.s.images[id] = img
	return img, nil
}

func (r imageRepo) DeleteImage(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.images[id]; !ok {
		return errs.NewNotFound(domain.ImageEntity, id)
	}
	delete(r.s.images, id)
	return nil
}

func (r imageRepo) DeleteImagesByProductID(ctx context.Context, productID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, img := range r.s.images {
		if img.ProductID == productID {
			delete(r.s.images, id)
			n++
		}
	}
	return n, nil
}

func (r imageRepo) DistinctProductIDs(ctx context.Context) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := map[int64]bool{}
	ids := []int64{}
	for _, img := range r.s.images {
		if !seen[img.ProductID] {
			seen[img.ProductID] = true
			ids = append(ids, img.ProductID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
