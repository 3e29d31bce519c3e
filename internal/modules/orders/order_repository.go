package order

import (
	"context"
	"sort"
	"sync"

	"craft-storefront/internal/models"
)

// RepositoryInterface defines the contract for the order repository.
type RepositoryInterface interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	ListByUserID(ctx context.Context, userID string, page, limit int) ([]models.Order, int, error)
	// Update loads the order, applies fn and stores the result atomically.
	// An error from fn aborts the update and is returned unchanged.
	Update(ctx context.Context, orderID string, fn func(o *models.Order) error) (*models.Order, error)
}

// Repository keeps orders in memory.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
}

// NewRepository creates a new order repository.
func NewRepository() RepositoryInterface {
	return &Repository{orders: make(map[string]*models.Order)}
}

func cloneOrder(o *models.Order) *models.Order {
	c := *o
	c.Items = append([]models.OrderItem(nil), o.Items...)
	if o.PaymentResult != nil {
		pr := *o.PaymentResult
		c.PaymentResult = &pr
	}
	if o.PaidAt != nil {
		t := *o.PaidAt
		c.PaidAt = &t
	}
	if o.CancelledAt != nil {
		t := *o.CancelledAt
		c.CancelledAt = &t
	}
	return &c
}

func (r *Repository) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[order.ID]; exists {
		return nil, models.ErrConflict
	}
	r.orders[order.ID] = cloneOrder(order)
	return cloneOrder(order), nil
}

func (r *Repository) FindByID(_ context.Context, orderID string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneOrder(o), nil
}

// ListByUserID returns one page of the user's orders, newest first, and the total count.
func (r *Repository) ListByUserID(_ context.Context, userID string, page, limit int) ([]models.Order, int, error) {
	r.mu.RLock()
	mine := make([]models.Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID {
			mine = append(mine, *cloneOrder(o))
		}
	}
	r.mu.RUnlock()

	sort.Slice(mine, func(i, j int) bool {
		if !mine[i].CreatedAt.Equal(mine[j].CreatedAt) {
			return mine[i].CreatedAt.After(mine[j].CreatedAt)
		}
		return mine[i].ID > mine[j].ID
	})

	total := len(mine)
	offset := (page - 1) * limit
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return mine[offset:end], total, nil
}

func (r *Repository) Update(_ context.Context, orderID string, fn func(o *models.Order) error) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	next := cloneOrder(o)
	if err := fn(next); err != nil {
		return nil, err
	}
	r.orders[orderID] = next
	return cloneOrder(next), nil
}
