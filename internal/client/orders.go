package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"craft-storefront/internal/models"
)

// OrdersAPI covers /orders.
type OrdersAPI struct{ c *Client }

func (o *OrdersAPI) Create(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	return o.order(ctx, http.MethodPost, "/orders", req)
}

func (o *OrdersAPI) Mine(ctx context.Context, page, limit int) (*models.OrderListResponse, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out models.OrderListResponse
	if err := o.c.do(ctx, "orders", http.MethodGet, "/orders/my", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (o *OrdersAPI) Get(ctx context.Context, id string) (*models.Order, error) {
	return o.order(ctx, http.MethodGet, "/orders/"+escape(id), nil)
}

func (o *OrdersAPI) Pay(ctx context.Context, id string, req models.PayOrderRequest) (*models.Order, error) {
	return o.order(ctx, http.MethodPut, "/orders/"+escape(id)+"/pay", req)
}

func (o *OrdersAPI) Cancel(ctx context.Context, id string) (*models.Order, error) {
	return o.order(ctx, http.MethodPut, "/orders/"+escape(id)+"/cancel", nil)
}

func (o *OrdersAPI) Invoice(ctx context.Context, id string) (*models.Invoice, error) {
	var out models.InvoiceResponse
	if err := o.c.do(ctx, "orders", http.MethodGet, "/orders/"+escape(id)+"/invoice", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Invoice, nil
}

func (o *OrdersAPI) order(ctx context.Context, method, path string, in any) (*models.Order, error) {
	var out models.OrderResponse
	if err := o.c.do(ctx, "orders", method, path, nil, in, &out); err != nil {
		return nil, err
	}
	return out.Order, nil
}
