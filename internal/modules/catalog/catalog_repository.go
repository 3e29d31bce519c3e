package catalog

import (
	"context"
	"sync"

	"craft-storefront/internal/models"
)

// StockDelta is a change to one size's stock count. Negative deltas reserve.
type StockDelta struct {
	ProductID string
	Size      string
	Delta     int
}

// RepositoryInterface defines methods for interacting with product storage.
type RepositoryInterface interface {
	List(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, productID string) (*models.Product, error)
	// ApplyStock applies all deltas or none of them.
	ApplyStock(ctx context.Context, deltas []StockDelta) error
}

// Repository keeps the catalog in memory in insertion order.
type Repository struct {
	mu       sync.RWMutex
	order    []string
	products map[string]*models.Product
}

func NewRepository(seed []models.Product) RepositoryInterface {
	r := &Repository{products: make(map[string]*models.Product, len(seed))}
	for i := range seed {
		p := cloneProduct(&seed[i])
		r.order = append(r.order, p.ID)
		r.products[p.ID] = p
	}
	return r
}

func cloneProduct(p *models.Product) *models.Product {
	c := *p
	c.Images = append([]string(nil), p.Images...)
	c.Sizes = append([]models.Size(nil), p.Sizes...)
	if p.CompareAtPrice != nil {
		v := *p.CompareAtPrice
		c.CompareAtPrice = &v
	}
	return &c
}

func (r *Repository) List(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Product, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *cloneProduct(r.products[id]))
	}
	return out, nil
}

func (r *Repository) FindByID(_ context.Context, productID string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[productID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneProduct(p), nil
}

func (r *Repository) ApplyStock(_ context.Context, deltas []StockDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Sum per size first so two lines for the same size are checked together.
	type key struct{ id, size string }
	totals := make(map[key]int)
	for _, d := range deltas {
		totals[key{d.ProductID, d.Size}] += d.Delta
	}

	for k, delta := range totals {
		p, ok := r.products[k.id]
		if !ok {
			return models.ErrNotFound
		}
		stock, ok := p.StockFor(k.size)
		if !ok {
			return models.ErrSizeNotAvailable
		}
		if stock+delta < 0 {
			if stock <= 0 {
				return models.ErrOutOfStock
			}
			return models.ErrQuantityExceedsStock
		}
	}

	for k, delta := range totals {
		p := r.products[k.id]
		for i := range p.Sizes {
			if p.Sizes[i].Label == k.size {
				p.Sizes[i].Stock += delta
			}
		}
	}
	return nil
}
