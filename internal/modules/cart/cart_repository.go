package cart

import (
	"context"
	"sync"

	"craft-storefront/internal/models"
)

// RepositoryInterface stores each user's cart lines.
type RepositoryInterface interface {
	Items(ctx context.Context, userID string) ([]models.CartItem, error)
	Save(ctx context.Context, userID string, items []models.CartItem) error
	Clear(ctx context.Context, userID string) error
}

type Repository struct {
	mu    sync.RWMutex
	carts map[string][]models.CartItem
}

func NewRepository() RepositoryInterface {
	return &Repository{carts: make(map[string][]models.CartItem)}
}

func (r *Repository) Items(_ context.Context, userID string) ([]models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.CartItem(nil), r.carts[userID]...), nil
}

func (r *Repository) Save(_ context.Context, userID string, items []models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[userID] = append([]models.CartItem(nil), items...)
	return nil
}

func (r *Repository) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}
