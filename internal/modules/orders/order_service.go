package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"craft-storefront/internal/models"
	"craft-storefront/internal/modules/cart"
	"craft-storefront/internal/modules/catalog"
	emailSvc "craft-storefront/pkg/email"
	"craft-storefront/pkg/utils"

	"github.com/sirupsen/logrus"
)

const (
	// FreeShippingThreshold is the items subtotal from which shipping is free.
	FreeShippingThreshold = 1999.0
	FlatShippingPrice     = 99.0
	TaxRate               = 0.05
)

// ServiceInterface defines the contract for the order service.
type ServiceInterface interface {
	CreateOrder(ctx context.Context, userID string, req models.CreateOrderRequest) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID string, page, limit int) ([]models.Order, int, error)
	GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error)
	PayOrder(ctx context.Context, userID, orderID string, req models.PayOrderRequest) (*models.Order, error)
	CancelOrder(ctx context.Context, userID, orderID string) (*models.Order, error)
	Invoice(ctx context.Context, userID, orderID string) (*models.Invoice, error)
}

// UserLookup resolves the customer an order confirmation goes to.
type UserLookup interface {
	GetUserProfile(ctx context.Context, userID string) (*models.User, error)
}

// Service implements the order service logic.
type Service struct {
	repo            RepositoryInterface
	cart            cart.ServiceInterface
	catalog         catalog.ServiceInterface
	users           UserLookup
	emailer         emailSvc.ServiceInterface
	templateManager *emailSvc.TemplateManager
	clientOrigin    string
	now             func() time.Time
	log             *logrus.Entry
}

// NewService creates a new order service. users, emailer and tm may be nil,
// in which case no confirmation email is sent.
func NewService(
	repo RepositoryInterface,
	cartSvc cart.ServiceInterface,
	catalogSvc catalog.ServiceInterface,
	users UserLookup,
	emailer emailSvc.ServiceInterface,
	tm *emailSvc.TemplateManager,
	clientOrigin string,
) ServiceInterface {
	return &Service{
		repo:            repo,
		cart:            cartSvc,
		catalog:         catalogSvc,
		users:           users,
		emailer:         emailer,
		templateManager: tm,
		clientOrigin:    clientOrigin,
		now:             func() time.Time { return time.Now().UTC() },
		log:             logrus.WithField("module", "order"),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Prices computes the order amounts for a list of items.
func Prices(items []models.OrderItem) (itemsPrice, shipping, tax, total float64) {
	for _, it := range items {
		itemsPrice += it.Price * float64(it.Quantity)
	}
	itemsPrice = round2(itemsPrice)
	if itemsPrice < FreeShippingThreshold {
		shipping = FlatShippingPrice
	}
	tax = round2(itemsPrice * TaxRate)
	total = round2(itemsPrice + shipping + tax)
	return itemsPrice, shipping, tax, total
}

// CreateOrder turns the user's server cart into a pending order. Stock is
// reserved before the order is stored and the cart is emptied afterwards.
func (s *Service) CreateOrder(ctx context.Context, userID string, req models.CreateOrderRequest) (*models.Order, error) {
	c, err := s.cart.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.CreateOrder.GetCart: %w", err)
	}
	if len(c.Items) == 0 {
		return nil, models.ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Size:      it.Size,
		})
	}

	if err := s.catalog.ReserveStock(ctx, items); err != nil {
		return nil, fmt.Errorf("service.CreateOrder.ReserveStock: %w", err)
	}

	itemsPrice, shipping, tax, total := Prices(items)
	order, err := s.repo.Create(ctx, &models.Order{
		ID:              utils.NewID(),
		UserID:          userID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      itemsPrice,
		ShippingPrice:   shipping,
		TaxPrice:        tax,
		TotalPrice:      total,
		Status:          models.OrderPending,
		CreatedAt:       s.now(),
	})
	if err != nil {
		if relErr := s.catalog.ReleaseStock(ctx, items); relErr != nil {
			s.log.WithError(relErr).Error("failed to release stock after order create failure")
		}
		return nil, fmt.Errorf("service.CreateOrder.Create: %w", err)
	}

	if _, err := s.cart.Clear(ctx, userID); err != nil {
		// The order stands; a stale cart is recoverable by the customer.
		s.log.WithError(err).WithField("order_id", order.ID).Warn("failed to clear cart after checkout")
	}

	s.sendConfirmation(ctx, order)
	return order, nil
}

func (s *Service) sendConfirmation(ctx context.Context, order *models.Order) {
	if s.users == nil || s.emailer == nil || s.templateManager == nil {
		return
	}
	user, err := s.users.GetUserProfile(ctx, order.UserID)
	if err != nil {
		s.log.WithError(err).WithField("order_id", order.ID).Warn("no recipient for order confirmation")
		return
	}

	data := emailSvc.OrderTemplateData{
		Name:          user.Name,
		OrderID:       order.ID,
		Link:          s.clientOrigin + "/orders/" + order.ID,
		ItemsPrice:    order.ItemsPrice,
		ShippingPrice: order.ShippingPrice,
		TaxPrice:      order.TaxPrice,
		TotalPrice:    order.TotalPrice,
		PaymentMethod: strings.ToUpper(order.PaymentMethod),
	}
	for _, it := range order.Items {
		data.Lines = append(data.Lines, emailSvc.OrderLine{
			Name:     it.Name,
			Size:     it.Size,
			Quantity: it.Quantity,
			Amount:   round2(it.Price * float64(it.Quantity)),
		})
	}
	htmlContent, err := s.templateManager.GenerateOrderConfirmationHTML(data)
	if err != nil {
		s.log.WithError(err).Error("failed to render order confirmation")
		return
	}
	plainText := fmt.Sprintf("Thank you, %s! Order %s totalling %s has been placed.",
		user.Name, order.ID, emailSvc.FormatMoney(order.TotalPrice))

	go func() {
		if err := s.emailer.SendEmail(context.Background(), user.Email, "Your order has been placed", plainText, htmlContent); err != nil {
			s.log.WithError(err).WithField("order_id", order.ID).Warn("failed to send order confirmation")
		}
	}()
}

func (s *Service) ListUserOrders(ctx context.Context, userID string, page, limit int) ([]models.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = utils.DefaultPageLimit
	}
	orders, total, err := s.repo.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ListUserOrders: %w", err)
	}
	return orders, total, nil
}

// GetOrder returns the order if it belongs to userID. Other users' orders
// are reported as not found.
func (s *Service) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.GetOrder: %w", err)
	}
	if order.UserID != userID {
		return nil, models.ErrNotFound
	}
	return order, nil
}

func (s *Service) PayOrder(ctx context.Context, userID, orderID string, req models.PayOrderRequest) (*models.Order, error) {
	order, err := s.repo.Update(ctx, orderID, func(o *models.Order) error {
		if o.UserID != userID {
			return models.ErrNotFound
		}
		if o.IsPaid || o.Status == models.OrderCancelled {
			return models.ErrOrderCannotBePaid
		}
		paidAt := s.now()
		result := req.PaymentResult
		o.IsPaid = true
		o.PaidAt = &paidAt
		o.PaymentResult = &result
		if o.Status == models.OrderPending {
			o.Status = models.OrderConfirmed
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service.PayOrder: %w", err)
	}
	return order, nil
}

func (s *Service) CancelOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.repo.Update(ctx, orderID, func(o *models.Order) error {
		if o.UserID != userID {
			return models.ErrNotFound
		}
		if !o.Status.CanTransitionTo(models.OrderCancelled) {
			return models.ErrOrderCannotBeCancelled
		}
		cancelledAt := s.now()
		o.Status = models.OrderCancelled
		o.CancelledAt = &cancelledAt
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service.CancelOrder: %w", err)
	}

	if err := s.catalog.ReleaseStock(ctx, order.Items); err != nil && !errors.Is(err, models.ErrNotFound) {
		s.log.WithError(err).WithField("order_id", order.ID).Error("failed to release stock for cancelled order")
	}
	return order, nil
}

func (s *Service) Invoice(ctx context.Context, userID, orderID string) (*models.Invoice, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	issuedAt := order.CreatedAt
	if order.PaidAt != nil {
		issuedAt = *order.PaidAt
	}
	inv := &models.Invoice{
		Number:        utils.InvoiceNumber(order.ID),
		OrderID:       order.ID,
		IssuedAt:      issuedAt,
		BilledTo:      order.ShippingAddress,
		Lines:         make([]models.InvoiceLine, 0, len(order.Items)),
		PaymentMethod: order.PaymentMethod,
		ItemsPrice:    order.ItemsPrice,
		ShippingPrice: order.ShippingPrice,
		TaxPrice:      order.TaxPrice,
		TotalPrice:    order.TotalPrice,
	}
	for _, it := range order.Items {
		inv.Lines = append(inv.Lines, models.InvoiceLine{
			Description: fmt.Sprintf("%s (%s)", it.Name, it.Size),
			Quantity:    it.Quantity,
			UnitPrice:   it.Price,
			Amount:      round2(it.Price * float64(it.Quantity)),
		})
	}
	return inv, nil
}
