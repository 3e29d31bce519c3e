package models

import "time"

// OrderStatus is a step of the order lifecycle:
// pending -> confirmed -> shipped -> delivered, with cancelled reachable from
// pending and confirmed.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderDelivered},
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// OrderItem is a snapshot of a purchased line, not a live product reference.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size"`
}

type ShippingAddress struct {
	FullName   string `json:"fullName" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country,omitempty"`
}

// ShippingFrom copies an address book entry into an order snapshot.
func ShippingFrom(a Address) ShippingAddress {
	return ShippingAddress{
		FullName:   a.FullName,
		Phone:      a.Phone,
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// PaymentResult is whatever the payment provider reported; the client only relays it.
type PaymentResult struct {
	ID         string `json:"id" validate:"required"`
	Status     string `json:"status" validate:"required"`
	UpdateTime string `json:"updateTime,omitempty"`
	Email      string `json:"email,omitempty"`
}

// Order is immutable once created apart from its status and payment fields.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentResult   *PaymentResult  `json:"paymentResult,omitempty"`
	ItemsPrice      float64         `json:"itemsPrice"`
	ShippingPrice   float64         `json:"shippingPrice"`
	TaxPrice        float64         `json:"taxPrice"`
	TotalPrice      float64         `json:"totalPrice"`
	Status          OrderStatus     `json:"status"`
	IsPaid          bool            `json:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	CancelledAt     *time.Time      `json:"cancelledAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// CreateOrderRequest turns the caller's current server cart into an order.
type CreateOrderRequest struct {
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod" validate:"required,oneof=cod card upi netbanking"`
	Notes           string          `json:"notes,omitempty" validate:"max=500"`
}

type PayOrderRequest struct {
	PaymentResult PaymentResult `json:"paymentResult"`
}

type OrderResponse struct {
	Order *Order `json:"order"`
}

type OrderListResponse struct {
	Orders     []Order     `json:"orders"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type InvoiceLine struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Amount      float64 `json:"amount"`
}

type Invoice struct {
	Number        string          `json:"number"`
	OrderID       string          `json:"orderId"`
	IssuedAt      time.Time       `json:"issuedAt"`
	BilledTo      ShippingAddress `json:"billedTo"`
	Lines         []InvoiceLine   `json:"lines"`
	PaymentMethod string          `json:"paymentMethod"`
	ItemsPrice    float64         `json:"itemsPrice"`
	ShippingPrice float64         `json:"shippingPrice"`
	TaxPrice      float64         `json:"taxPrice"`
	TotalPrice    float64         `json:"totalPrice"`
}

type InvoiceResponse struct {
	Invoice *Invoice `json:"invoice"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination fills in the page count for a listing.
func NewPagination(page, limit, total int) *Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return &Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// Clone returns a copy that shares no slices or pointers with o.
func (o Order) Clone() Order {
	o.Items = append([]OrderItem(nil), o.Items...)
	if o.PaymentResult != nil {
		pr := *o.PaymentResult
		o.PaymentResult = &pr
	}
	if o.PaidAt != nil {
		t := *o.PaidAt
		o.PaidAt = &t
	}
	if o.CancelledAt != nil {
		t := *o.CancelledAt
		o.CancelledAt = &t
	}
	return o
}

func CloneOrders(in []Order) []Order {
	if in == nil {
		return nil
	}
	out := make([]Order, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

func (inv Invoice) Clone() Invoice {
	inv.Lines = append([]InvoiceLine(nil), inv.Lines...)
	return inv
}
