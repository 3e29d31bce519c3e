package cart

import (
	"context"
	"fmt"
	"math"
	"sync"

	"craft-storefront/internal/models"
	"craft-storefront/internal/modules/catalog"
	"craft-storefront/pkg/utils"
)

// ServiceInterface defines the cart operations. Every mutation returns the
// full cart with freshly computed totals.
type ServiceInterface interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	AddItem(ctx context.Context, userID string, req models.AddToCartRequest) (*models.Cart, error)
	UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*models.Cart, error)
	Clear(ctx context.Context, userID string) (*models.Cart, error)
	Count(ctx context.Context, userID string) (int, error)
}

type Service struct {
	repo    RepositoryInterface
	catalog catalog.ServiceInterface
	// Serializes read-modify-write on a cart.
	mu sync.Mutex
}

func NewService(repo RepositoryInterface, catalogSvc catalog.ServiceInterface) ServiceInterface {
	return &Service{repo: repo, catalog: catalogSvc}
}

// Totals builds the cart view of items.
func Totals(items []models.CartItem) *models.Cart {
	cart := &models.Cart{Items: items}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	var total float64
	for _, it := range items {
		cart.TotalItems += it.Quantity
		total += it.Price * float64(it.Quantity)
	}
	cart.TotalPrice = math.Round(total*100) / 100
	return cart
}

func (s *Service) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	items, err := s.repo.Items(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.GetCart: %w", err)
	}
	return Totals(items), nil
}

func (s *Service) AddItem(ctx context.Context, userID string, req models.AddToCartRequest) (*models.Cart, error) {
	if req.Quantity < 1 {
		return nil, models.ErrInvalidQuantity
	}
	product, err := s.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("service.AddItem: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.Items(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.AddItem: %w", err)
	}

	idx := -1
	key := models.CartItem{ProductID: req.ProductID, Size: req.Size}.Key()
	for i, it := range items {
		if it.Key() == key {
			idx = i
			break
		}
	}
	wanted := req.Quantity
	if idx >= 0 {
		wanted += items[idx].Quantity
	}
	if err := product.CheckStock(req.Size, wanted); err != nil {
		return nil, err
	}

	if idx >= 0 {
		items[idx].Quantity = wanted
	} else {
		items = append(items, models.CartItem{
			ID:        utils.NewID(),
			ProductID: product.ID,
			Size:      req.Size,
			Color:     req.Color,
			Quantity:  req.Quantity,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
		})
	}
	if err := s.repo.Save(ctx, userID, items); err != nil {
		return nil, fmt.Errorf("service.AddItem: %w", err)
	}
	return Totals(items), nil
}

func (s *Service) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, models.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.Items(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateItem: %w", err)
	}
	idx := indexOf(items, itemID)
	if idx < 0 {
		return nil, models.ErrNotFound
	}

	product, err := s.catalog.GetProduct(ctx, items[idx].ProductID)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateItem: %w", err)
	}
	if err := product.CheckStock(items[idx].Size, quantity); err != nil {
		return nil, err
	}

	items[idx].Quantity = quantity
	if err := s.repo.Save(ctx, userID, items); err != nil {
		return nil, fmt.Errorf("service.UpdateItem: %w", err)
	}
	return Totals(items), nil
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.Items(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.RemoveItem: %w", err)
	}
	idx := indexOf(items, itemID)
	if idx < 0 {
		return nil, models.ErrNotFound
	}
	items = append(items[:idx], items[idx+1:]...)
	if err := s.repo.Save(ctx, userID, items); err != nil {
		return nil, fmt.Errorf("service.RemoveItem: %w", err)
	}
	return Totals(items), nil
}

func (s *Service) Clear(ctx context.Context, userID string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Clear(ctx, userID); err != nil {
		return nil, fmt.Errorf("service.Clear: %w", err)
	}
	return Totals(nil), nil
}

func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return 0, err
	}
	return cart.TotalItems, nil
}

func indexOf(items []models.CartItem, itemID string) int {
	for i, it := range items {
		if it.ID == itemID {
			return i
		}
	}
	return -1
}
