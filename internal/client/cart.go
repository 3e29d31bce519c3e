package client

import (
	"context"
	"net/http"

	"craft-storefront/internal/models"
)

// CartAPI covers /cart. Every mutation answers with the whole cart.
type CartAPI struct{ c *Client }

func (a *CartAPI) Get(ctx context.Context) (*models.Cart, error) {
	return a.call(ctx, http.MethodGet, "/cart", nil)
}

func (a *CartAPI) Add(ctx context.Context, req models.AddToCartRequest) (*models.Cart, error) {
	return a.call(ctx, http.MethodPost, "/cart/add", req)
}

func (a *CartAPI) UpdateItem(ctx context.Context, itemID string, quantity int) (*models.Cart, error) {
	return a.call(ctx, http.MethodPut, "/cart/item/"+escape(itemID), models.UpdateCartItemRequest{Quantity: quantity})
}

func (a *CartAPI) RemoveItem(ctx context.Context, itemID string) (*models.Cart, error) {
	return a.call(ctx, http.MethodDelete, "/cart/item/"+escape(itemID), nil)
}

func (a *CartAPI) Clear(ctx context.Context) (*models.Cart, error) {
	return a.call(ctx, http.MethodDelete, "/cart/clear", nil)
}

func (a *CartAPI) Count(ctx context.Context) (int, error) {
	var out models.CartCountResponse
	if err := a.c.do(ctx, "cart", http.MethodGet, "/cart/count", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (a *CartAPI) call(ctx context.Context, method, path string, in any) (*models.Cart, error) {
	var out models.CartResponse
	if err := a.c.do(ctx, "cart", method, path, nil, in, &out); err != nil {
		return nil, err
	}
	if out.Cart.Items == nil {
		out.Cart.Items = []models.CartItem{}
	}
	return &out.Cart, nil
}
