package stores

import (
	"context"
	"strings"
	"sync"

	"craft-storefront/internal/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type productSlice int

const (
	sliceList productSlice = iota
	sliceCurrent
	sliceFeatured
	sliceTopRated
	sliceSearch
	sliceCount
)

// ProductState holds one result set per query kind. Each fetch replaces its own slice.
type ProductState struct {
	Products   []models.Product
	Pagination *models.Pagination
	Filter     models.ProductFilter

	Current *models.Product

	Featured []models.Product
	TopRated []models.Product

	Categories []models.Category

	SearchQuery   string
	SearchResults []models.Product

	Loading bool
	Error   string
}

func (s ProductState) clone() ProductState {
	s.Products = models.CloneProducts(s.Products)
	s.Featured = models.CloneProducts(s.Featured)
	s.TopRated = models.CloneProducts(s.TopRated)
	s.Categories = append([]models.Category(nil), s.Categories...)
	s.SearchResults = models.CloneProducts(s.SearchResults)
	if s.Pagination != nil {
		p := *s.Pagination
		s.Pagination = &p
	}
	if s.Current != nil {
		c := s.Current.Clone()
		s.Current = &c
	}
	return s
}

// ProductStore caches catalog queries. Every slice carries a request sequence
// number; a response is applied only if no newer request for that slice was issued.
type ProductStore struct {
	api ProductAPI
	log *logrus.Entry

	// categories are read through once per store lifetime.
	categoriesGroup singleflight.Group

	mu               sync.RWMutex
	state            ProductState
	seq              [sliceCount]uint64
	inflight         int
	categoriesLoaded bool
}

func NewProductStore(api ProductAPI, logger *logrus.Entry) *ProductStore {
	return &ProductStore{api: api, log: componentLogger(logger, "product_store")}
}

func (s *ProductStore) Snapshot() ProductState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *ProductStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = ""
}

func (s *ProductStore) begin(slice productSlice) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[slice]++
	s.inflight++
	s.state.Loading = true
	return s.seq[slice]
}

// finish applies the outcome of request tok for slice. apply runs under the lock.
func (s *ProductStore) finish(slice productSlice, tok uint64, err error, apply func(*ProductState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	s.state.Loading = s.inflight > 0

	if s.seq[slice] != tok {
		s.log.WithField("slice", int(slice)).Debug("dropping stale product response")
		return ErrSuperseded
	}
	if err != nil {
		if slot, ok := slotFor(err); ok {
			s.state.Error = slot.Message
		}
		return err
	}
	apply(&s.state)
	s.state.Error = ""
	return nil
}

func (s *ProductStore) FetchProducts(ctx context.Context, f models.ProductFilter) error {
	tok := s.begin(sliceList)
	resp, err := s.api.List(ctx, f)
	return s.finish(sliceList, tok, err, func(st *ProductState) {
		st.Products = append([]models.Product{}, resp.Products...)
		st.Pagination = resp.Pagination
		st.Filter = f
	})
}

func (s *ProductStore) FetchProduct(ctx context.Context, id string) error {
	tok := s.begin(sliceCurrent)
	p, err := s.api.Get(ctx, id)
	if err == nil && p == nil {
		err = models.ErrNotFound
	}
	return s.finish(sliceCurrent, tok, err, func(st *ProductState) {
		st.Current = p
	})
}

func (s *ProductStore) FetchFeatured(ctx context.Context, limit int) error {
	tok := s.begin(sliceFeatured)
	list, err := s.api.Featured(ctx, limit)
	return s.finish(sliceFeatured, tok, err, func(st *ProductState) {
		st.Featured = append([]models.Product{}, list...)
	})
}

func (s *ProductStore) FetchTopRated(ctx context.Context, limit int) error {
	tok := s.begin(sliceTopRated)
	list, err := s.api.TopRated(ctx, limit)
	return s.finish(sliceTopRated, tok, err, func(st *ProductState) {
		st.TopRated = append([]models.Product{}, list...)
	})
}

// Search runs a catalog search. A blank query clears the results without a call.
func (s *ProductStore) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	tok := s.begin(sliceSearch)
	if query == "" {
		return s.finish(sliceSearch, tok, nil, func(st *ProductState) {
			st.SearchQuery = ""
			st.SearchResults = nil
		})
	}
	resp, err := s.api.List(ctx, models.ProductFilter{Search: query})
	return s.finish(sliceSearch, tok, err, func(st *ProductState) {
		st.SearchQuery = query
		st.SearchResults = append([]models.Product{}, resp.Products...)
	})
}

// FetchCategories loads the category list at most once per store lifetime;
// concurrent first calls share one request. Categories changed on the server
// during a session stay stale until InvalidateCategories is called.
func (s *ProductStore) FetchCategories(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.categoriesLoaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	_, err, _ := s.categoriesGroup.Do("categories", func() (any, error) {
		s.mu.Lock()
		if s.categoriesLoaded {
			s.mu.Unlock()
			return nil, nil
		}
		s.inflight++
		s.state.Loading = true
		s.mu.Unlock()

		cats, err := s.api.Categories(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.inflight--
		s.state.Loading = s.inflight > 0
		if err != nil {
			if slot, ok := slotFor(err); ok {
				s.state.Error = slot.Message
			}
			return nil, err
		}
		s.state.Categories = append([]models.Category{}, cats...)
		s.categoriesLoaded = true
		return nil, nil
	})
	return err
}

// InvalidateCategories lets the next FetchCategories hit the server again.
func (s *ProductStore) InvalidateCategories() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categoriesLoaded = false
}
