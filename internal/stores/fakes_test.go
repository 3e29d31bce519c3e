package stores

import (
	"context"
	"errors"
	"sync"
	"time"

	"craft-storefront/internal/client"
	"craft-storefront/internal/models"
)

var errBoom = &client.APIError{Kind: client.KindServer, Status: 500, Message: client.MsgServer}

func businessErr(msg string) error {
	return &client.APIError{Kind: client.KindBusiness, Status: 400, Message: msg}
}

type fakeAuthAPI struct {
	mu    sync.Mutex
	calls map[string]int

	login          func(models.LoginRequest) (*models.AuthResponse, error)
	register       func(models.RegisterRequest) (*models.AuthResponse, error)
	logoutErr      error
	me             func() (*models.User, error)
	updateProfile  func(models.ProfileUpdateRequest) (*models.User, error)
	changePassword func(models.ChangePasswordRequest) error
	addresses      func(op string) ([]models.Address, error)
}

func (f *fakeAuthAPI) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeAuthAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAuthAPI) Register(_ context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	f.hit("register")
	return f.register(req)
}

func (f *fakeAuthAPI) Login(_ context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	f.hit("login")
	return f.login(req)
}

func (f *fakeAuthAPI) Logout(context.Context) error {
	f.hit("logout")
	return f.logoutErr
}

func (f *fakeAuthAPI) Me(context.Context) (*models.User, error) {
	f.hit("me")
	if f.me == nil {
		return nil, errors.New("me not configured")
	}
	return f.me()
}

func (f *fakeAuthAPI) UpdateProfile(_ context.Context, req models.ProfileUpdateRequest) (*models.User, error) {
	f.hit("update_profile")
	return f.updateProfile(req)
}

func (f *fakeAuthAPI) ChangePassword(_ context.Context, req models.ChangePasswordRequest) error {
	f.hit("change_password")
	return f.changePassword(req)
}

func (f *fakeAuthAPI) AddAddress(context.Context, models.AddressRequest) ([]models.Address, error) {
	f.hit("add_address")
	return f.addresses("add")
}

func (f *fakeAuthAPI) UpdateAddress(context.Context, string, models.AddressRequest) ([]models.Address, error) {
	f.hit("update_address")
	return f.addresses("update")
}

func (f *fakeAuthAPI) DeleteAddress(context.Context, string) ([]models.Address, error) {
	f.hit("delete_address")
	return f.addresses("delete")
}

func (f *fakeAuthAPI) SetDefaultAddress(context.Context, string) ([]models.Address, error) {
	f.hit("default_address")
	return f.addresses("default")
}

// fakeCartAPI keeps a server-side cart and lets a test fail the next call.
type fakeCartAPI struct {
	mu      sync.Mutex
	cart    models.Cart
	fail    error
	removed []string
	updated map[string]int
	// gate blocks UpdateItem for a quantity until the channel is closed; started
	// reports that such a call has reached the server.
	gate    map[int]chan struct{}
	started chan int
}

func (f *fakeCartAPI) result() (*models.Cart, error) {
	if f.fail != nil {
		err := f.fail
		f.fail = nil
		return nil, err
	}
	c := f.cart.Clone()
	return &c, nil
}

func (f *fakeCartAPI) Get(context.Context) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result()
}

func (f *fakeCartAPI) Add(_ context.Context, req models.AddToCartRequest) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail == nil {
		f.cart.Items = append(f.cart.Items, models.CartItem{ID: req.ProductID + "-" + req.Size, ProductID: req.ProductID, Size: req.Size, Quantity: req.Quantity})
	}
	return f.result()
}

func (f *fakeCartAPI) UpdateItem(_ context.Context, itemID string, quantity int) (*models.Cart, error) {
	if ch, ok := f.gate[quantity]; ok {
		if f.started != nil {
			f.started <- quantity
		}
		<-ch
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updated == nil {
		f.updated = map[string]int{}
	}
	f.updated[itemID] = quantity
	if f.fail == nil {
		for i := range f.cart.Items {
			if f.cart.Items[i].ID == itemID {
				f.cart.Items[i].Quantity = quantity
			}
		}
	}
	return f.result()
}

func (f *fakeCartAPI) RemoveItem(_ context.Context, itemID string) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, itemID)
	if f.fail == nil {
		kept := f.cart.Items[:0:0]
		for _, it := range f.cart.Items {
			if it.ID != itemID {
				kept = append(kept, it)
			}
		}
		f.cart.Items = kept
		f.cart.TotalItems = 0
		for _, it := range kept {
			f.cart.TotalItems += it.Quantity
		}
	}
	return f.result()
}

func (f *fakeCartAPI) Clear(context.Context) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail == nil {
		f.cart = models.Cart{Items: []models.CartItem{}}
	}
	return f.result()
}

func (f *fakeCartAPI) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cart.TotalItems, nil
}

type fakeProductAPI struct {
	mu             sync.Mutex
	categoryCalls  int
	categoriesGate chan struct{}
	list           func(models.ProductFilter) (*models.ProductListResponse, error)
	get            func(string) (*models.Product, error)
	categories     []models.Category
	categoriesErr  error
}

func (f *fakeProductAPI) List(_ context.Context, flt models.ProductFilter) (*models.ProductListResponse, error) {
	return f.list(flt)
}

func (f *fakeProductAPI) Get(_ context.Context, id string) (*models.Product, error) {
	return f.get(id)
}

func (f *fakeProductAPI) Featured(context.Context, int) ([]models.Product, error) {
	return []models.Product{{ID: "f1", Featured: true}}, nil
}

func (f *fakeProductAPI) TopRated(context.Context, int) ([]models.Product, error) {
	return []models.Product{{ID: "t1", Rating: 4.9}}, nil
}

func (f *fakeProductAPI) Categories(context.Context) ([]models.Category, error) {
	f.mu.Lock()
	f.categoryCalls++
	gate := f.categoriesGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.categoriesErr != nil {
		err := f.categoriesErr
		f.categoriesErr = nil
		return nil, err
	}
	return append([]models.Category(nil), f.categories...), nil
}

func (f *fakeProductAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.categoryCalls
}

type fakeOrderAPI struct {
	create  func(models.CreateOrderRequest) (*models.Order, error)
	mine    func(page, limit int) (*models.OrderListResponse, error)
	get     func(string) (*models.Order, error)
	pay     func(string, models.PayOrderRequest) (*models.Order, error)
	cancel  func(string) (*models.Order, error)
	invoice func(string) (*models.Invoice, error)

	mu          sync.Mutex
	cancelCalls int
}

func (f *fakeOrderAPI) Create(_ context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	return f.create(req)
}

func (f *fakeOrderAPI) Mine(_ context.Context, page, limit int) (*models.OrderListResponse, error) {
	return f.mine(page, limit)
}

func (f *fakeOrderAPI) Get(_ context.Context, id string) (*models.Order, error) {
	return f.get(id)
}

func (f *fakeOrderAPI) Pay(_ context.Context, id string, req models.PayOrderRequest) (*models.Order, error) {
	return f.pay(id, req)
}

func (f *fakeOrderAPI) Cancel(_ context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	f.cancelCalls++
	f.mu.Unlock()
	return f.cancel(id)
}

func (f *fakeOrderAPI) Invoice(_ context.Context, id string) (*models.Invoice, error) {
	return f.invoice(id)
}

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)
