package stores

import (
	"context"
	"sync"

	"craft-storefront/internal/models"
	"craft-storefront/internal/session"

	"github.com/sirupsen/logrus"
)

// CartState mirrors the server cart. Totals are never computed locally.
type CartState struct {
	Items      []models.CartItem
	TotalItems int
	TotalPrice float64

	Loading bool
	Error   string
}

func (s CartState) clone() CartState {
	s.Items = append([]models.CartItem(nil), s.Items...)
	return s
}

// Find returns the line for a product and size.
func (s CartState) Find(productID, size string) (models.CartItem, bool) {
	return models.Cart{Items: s.Items}.Find(productID, size)
}

// CartStore keeps the signed-in user's server cart. Mutations are serialized:
// a mutation issued later is always applied later.
type CartStore struct {
	api     CartAPI
	storage session.Storage
	log     *logrus.Entry

	opMu sync.Mutex

	mu    sync.RWMutex
	state CartState
	// gen counts resets; a response issued under an older generation is dropped.
	gen uint64
}

func NewCartStore(api CartAPI, storage session.Storage, logger *logrus.Entry) *CartStore {
	return &CartStore{
		api:     api,
		storage: storage,
		log:     componentLogger(logger, "cart_store"),
		state:   CartState{Items: []models.CartItem{}},
	}
}

func (s *CartStore) Snapshot() CartState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *CartStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = ""
}

// Reset drops the local cart, used on logout and on forced sign-out.
func (s *CartStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.state = CartState{Items: []models.CartItem{}}
}

// Init loads the cart when a session token exists. Anonymous carts are not supported.
func (s *CartStore) Init(ctx context.Context) error {
	if session.Token(ctx, s.storage) == "" {
		return nil
	}
	return s.FetchCart(ctx)
}

func (s *CartStore) FetchCart(ctx context.Context) error {
	return s.mutate(ctx, "fetch", s.api.Get)
}

// AddToCart checks stock locally when the product is known, counting what is
// already in the cart, and then asks the server. The server check still applies.
func (s *CartStore) AddToCart(ctx context.Context, product *models.Product, size string, quantity int) error {
	if quantity < 1 {
		return s.reject(models.ErrInvalidQuantity)
	}
	if product == nil || product.ID == "" {
		return s.reject(models.ErrNotFound)
	}

	s.mu.RLock()
	existing, _ := s.state.Find(product.ID, size)
	s.mu.RUnlock()
	if len(product.Sizes) > 0 {
		if err := product.CheckStock(size, existing.Quantity+quantity); err != nil {
			return s.reject(err)
		}
	}

	req := models.AddToCartRequest{ProductID: product.ID, Size: size, Quantity: quantity}
	return s.mutate(ctx, "add", func(ctx context.Context) (*models.Cart, error) {
		return s.api.Add(ctx, req)
	})
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line through
// the same path as RemoveFromCart; such quantities are never sent to the server.
func (s *CartStore) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, itemID)
	}
	return s.mutate(ctx, "update", func(ctx context.Context) (*models.Cart, error) {
		return s.api.UpdateItem(ctx, itemID, quantity)
	})
}

func (s *CartStore) RemoveFromCart(ctx context.Context, itemID string) error {
	return s.mutate(ctx, "remove", func(ctx context.Context) (*models.Cart, error) {
		return s.api.RemoveItem(ctx, itemID)
	})
}

func (s *CartStore) ClearCart(ctx context.Context) error {
	return s.mutate(ctx, "clear", s.api.Clear)
}

// FetchCount asks the server for the badge count without touching the cart.
func (s *CartStore) FetchCount(ctx context.Context) (int, error) {
	n, err := s.api.Count(ctx)
	if err != nil {
		s.log.WithError(err).Debug("cart count failed")
		return 0, err
	}
	return n, nil
}

func (s *CartStore) reject(err error) error {
	s.mu.Lock()
	s.state.Error = err.Error()
	s.mu.Unlock()
	return err
}

// mutate runs one cart call. Success replaces items and totals with the server's
// cart; failure only sets the error.
func (s *CartStore) mutate(ctx context.Context, op string, call func(context.Context) (*models.Cart, error)) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	s.state.Loading = true
	gen := s.gen
	s.mu.Unlock()

	cart, err := call(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false

	if s.gen != gen {
		s.log.WithField("op", op).Debug("dropping cart response issued before reset")
		return ErrSuperseded
	}

	if err != nil {
		s.log.WithError(err).WithField("op", op).Info("cart operation failed")
		if slot, ok := slotFor(err); ok {
			s.state.Error = slot.Message
		}
		return err
	}

	if cart == nil {
		cart = &models.Cart{}
	}
	s.state.Items = append([]models.CartItem{}, cart.Items...)
	s.state.TotalItems = cart.TotalItems
	s.state.TotalPrice = cart.TotalPrice
	s.state.Error = ""
	return nil
}
