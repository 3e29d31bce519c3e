package models

import "fmt"

// CartItem carries a snapshot of the product taken when it was added.
type CartItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Size      string  `json:"size"`
	Color     string  `json:"color,omitempty"`
	Quantity  int     `json:"quantity"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
}

// Key is the item identity inside a cart: one line per product and size.
func (i CartItem) Key() string {
	return fmt.Sprintf("%s:%s", i.ProductID, i.Size)
}

// Cart totals are computed by the server only.
type Cart struct {
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"totalItems"`
	TotalPrice float64    `json:"totalPrice"`
}

// Clone returns a copy that shares nothing with c.
func (c Cart) Clone() Cart {
	c.Items = append([]CartItem(nil), c.Items...)
	return c
}

// Find returns the line for a product and size.
func (c Cart) Find(productID, size string) (CartItem, bool) {
	key := CartItem{ProductID: productID, Size: size}.Key()
	for _, it := range c.Items {
		if it.Key() == key {
			return it, true
		}
	}
	return CartItem{}, false
}

type AddToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size" validate:"required"`
	Color     string `json:"color,omitempty"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type CartResponse struct {
	Cart Cart `json:"cart"`
}

type CartCountResponse struct {
	Count int `json:"count"`
}
