package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"craft-storefront/internal/client"
	"craft-storefront/internal/models"

	"github.com/sirupsen/logrus"
)

// OrderState is the order history and the order currently being viewed.
type OrderState struct {
	Orders     []models.Order
	Pagination *models.Pagination
	Current    *models.Order
	Invoice    *models.Invoice

	Loading     bool
	Error       string
	FieldErrors []models.FieldError
}

func (s OrderState) clone() OrderState {
	s.Orders = models.CloneOrders(s.Orders)
	s.FieldErrors = append([]models.FieldError(nil), s.FieldErrors...)
	if s.Pagination != nil {
		p := *s.Pagination
		s.Pagination = &p
	}
	if s.Current != nil {
		o := s.Current.Clone()
		s.Current = &o
	}
	if s.Invoice != nil {
		inv := s.Invoice.Clone()
		s.Invoice = &inv
	}
	return s
}

type orderSlice int

const (
	orderSliceList orderSlice = iota
	orderSliceCurrent
	orderSliceInvoice
	orderSliceCount
)

// OrderStore creates orders and keeps the signed-in user's history.
type OrderStore struct {
	api OrderAPI
	log *logrus.Entry

	// opMu serializes create, pay and cancel.
	opMu sync.Mutex

	mu       sync.RWMutex
	state    OrderState
	seq      [orderSliceCount]uint64
	inflight int
	created  []func(context.Context, *models.Order)
	// gen counts resets. Create, pay and cancel results from an older
	// generation are not applied.
	gen uint64
}

func NewOrderStore(api OrderAPI, logger *logrus.Entry) *OrderStore {
	return &OrderStore{api: api, log: componentLogger(logger, "order_store")}
}

func (s *OrderStore) Snapshot() OrderState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *OrderStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = ""
	s.state.FieldErrors = nil
}

// Reset drops all order state, used on logout.
func (s *OrderStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.seq {
		s.seq[i]++
	}
	s.gen++
	s.state = OrderState{Loading: s.inflight > 0}
}

// OnCreated registers fn to run after an order has been created. The server
// empties the cart at that point, so the composition root refreshes it here.
func (s *OrderStore) OnCreated(fn func(context.Context, *models.Order)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, fn)
}

func (s *OrderStore) begin(slice orderSlice) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[slice]++
	s.inflight++
	s.state.Loading = true
	return s.seq[slice]
}

func (s *OrderStore) finish(slice orderSlice, tok uint64, err error, apply func(*OrderState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	s.state.Loading = s.inflight > 0

	if s.seq[slice] != tok {
		return ErrSuperseded
	}
	if err != nil {
		s.setError(err)
		return err
	}
	apply(&s.state)
	s.state.Error = ""
	s.state.FieldErrors = nil
	return nil
}

// setError writes the error slot. Caller holds s.mu.
func (s *OrderStore) setError(err error) {
	if slot, ok := slotFor(err); ok {
		s.state.Error = slot.Message
		s.state.FieldErrors = slot.Fields
	}
}

// CreateOrder places an order from the server cart. When the call fails but the
// error body still carries the created order, the order is treated as placed:
// reporting a failure there would invite a duplicate order on retry.
func (s *OrderStore) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := models.Validate(req); err != nil {
		s.mu.Lock()
		s.setError(err)
		s.mu.Unlock()
		return nil, err
	}

	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()
	tok := s.begin(orderSliceCurrent)
	order, err := s.api.Create(ctx, req)
	if err != nil {
		if recovered := recoverOrder(err); recovered != nil {
			s.log.WithError(err).WithField("order_id", recovered.ID).Warn("order create failed after the order was written, using returned order")
			order, err = recovered, nil
		}
	}
	if err == nil && order == nil {
		err = errors.New("empty order response")
	}

	// The created order is always applied, even if a read of another order was
	// issued meanwhile.
	s.mu.Lock()
	s.inflight--
	s.state.Loading = s.inflight > 0
	if err != nil {
		if s.gen == gen {
			s.setError(err)
		}
		s.mu.Unlock()
		s.log.WithError(err).Info("create order failed")
		return nil, err
	}
	if s.gen != gen {
		// The order exists on the server but belongs to a session that has ended.
		s.mu.Unlock()
		s.log.WithField("order_id", order.ID).Info("order created after reset, not applied")
		cp := order.Clone()
		return &cp, nil
	}
	if s.seq[orderSliceCurrent] == tok {
		s.state.Current = order
	}
	s.state.Orders = append([]models.Order{*order}, s.state.Orders...)
	s.state.Error = ""
	s.state.FieldErrors = nil
	listeners := append([]func(context.Context, *models.Order){}, s.created...)
	s.mu.Unlock()

	for _, fn := range listeners {
		cp := order.Clone()
		fn(ctx, &cp)
	}
	cp := order.Clone()
	return &cp, nil
}

// recoverOrder pulls an order object out of a failed create response.
func recoverOrder(err error) *models.Order {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return nil
	}
	raw := apiErr.Payload("order")
	if !raw.IsObject() {
		return nil
	}
	var o models.Order
	if jerr := json.Unmarshal([]byte(raw.Raw), &o); jerr != nil || o.ID == "" {
		return nil
	}
	return &o
}

func (s *OrderStore) FetchOrders(ctx context.Context, page, limit int) error {
	tok := s.begin(orderSliceList)
	resp, err := s.api.Mine(ctx, page, limit)
	if err == nil && resp == nil {
		err = errors.New("empty orders response")
	}
	return s.finish(orderSliceList, tok, err, func(st *OrderState) {
		st.Orders = append([]models.Order{}, resp.Orders...)
		st.Pagination = resp.Pagination
	})
}

func (s *OrderStore) FetchOrder(ctx context.Context, id string) error {
	tok := s.begin(orderSliceCurrent)
	order, err := s.api.Get(ctx, id)
	if err == nil && order == nil {
		err = models.ErrNotFound
	}
	return s.finish(orderSliceCurrent, tok, err, func(st *OrderState) {
		st.Current = order
	})
}

func (s *OrderStore) FetchInvoice(ctx context.Context, id string) error {
	tok := s.begin(orderSliceInvoice)
	inv, err := s.api.Invoice(ctx, id)
	if err == nil && inv == nil {
		err = models.ErrNotFound
	}
	return s.finish(orderSliceInvoice, tok, err, func(st *OrderState) {
		st.Invoice = inv
	})
}

// PayOrder relays a payment result for an unpaid order.
func (s *OrderStore) PayOrder(ctx context.Context, id string, result models.PaymentResult) error {
	return s.transition(ctx, "pay", id, func(o *models.Order) error {
		if o.IsPaid || o.Status == models.OrderCancelled {
			return models.ErrOrderCannotBePaid
		}
		return nil
	}, func(ctx context.Context) (*models.Order, error) {
		req := models.PayOrderRequest{PaymentResult: result}
		if err := models.Validate(req); err != nil {
			return nil, err
		}
		return s.api.Pay(ctx, id, req)
	})
}

// CancelOrder cancels an order. A known order that can no longer be cancelled
// is refused without a call.
func (s *OrderStore) CancelOrder(ctx context.Context, id string) error {
	return s.transition(ctx, "cancel", id, func(o *models.Order) error {
		if !o.Status.CanTransitionTo(models.OrderCancelled) {
			return models.ErrOrderCannotBeCancelled
		}
		return nil
	}, func(ctx context.Context) (*models.Order, error) {
		return s.api.Cancel(ctx, id)
	})
}

// transition runs a status-changing call. check sees the locally known copy of
// the order, if any. The server's order replaces Current and the list entry.
func (s *OrderStore) transition(ctx context.Context, op, id string, check func(*models.Order) error, call func(context.Context) (*models.Order, error)) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	if known := s.lookup(id); known != nil {
		if err := check(known); err != nil {
			s.state.Error = err.Error()
			s.mu.Unlock()
			return err
		}
	}
	// A pending read of Current would otherwise overwrite the new status.
	s.seq[orderSliceCurrent]++
	s.inflight++
	s.state.Loading = true
	gen := s.gen
	s.mu.Unlock()

	order, err := call(ctx)
	if err == nil && order == nil {
		err = fmt.Errorf("%s order: empty response", op)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	s.state.Loading = s.inflight > 0
	if s.gen != gen {
		return ErrSuperseded
	}
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"op": op, "order_id": id}).Info("order operation failed")
		s.setError(err)
		return err
	}
	s.state.Current = order
	for i := range s.state.Orders {
		if s.state.Orders[i].ID == order.ID {
			s.state.Orders[i] = *order
		}
	}
	s.state.Error = ""
	s.state.FieldErrors = nil
	return nil
}

// lookup finds an order in local state. Caller holds s.mu.
func (s *OrderStore) lookup(id string) *models.Order {
	if s.state.Current != nil && s.state.Current.ID == id {
		return s.state.Current
	}
	for i := range s.state.Orders {
		if s.state.Orders[i].ID == id {
			return &s.state.Orders[i]
		}
	}
	return nil
}
