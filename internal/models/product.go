package models

import "time"

// Size is one purchasable size of a product with its own stock count.
type Size struct {
	Label string `json:"size"`
	Stock int    `json:"stock"`
}

type Product struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Price          float64   `json:"price"`
	CompareAtPrice *float64  `json:"compareAtPrice,omitempty"`
	Category       string    `json:"category"`
	Image          string    `json:"image"`
	Images         []string  `json:"images"`
	Sizes          []Size    `json:"sizes"`
	Description    string    `json:"description"`
	Care           string    `json:"care,omitempty"`
	Shipping       string    `json:"shipping,omitempty"`
	Rating         float64   `json:"rating"`
	NumReviews     int       `json:"numReviews"`
	Featured       bool      `json:"featured"`
	CreatedAt      time.Time `json:"createdAt"`
}

// StockFor returns the stock count of the given size and whether the size exists.
func (p *Product) StockFor(size string) (int, bool) {
	for _, s := range p.Sizes {
		if s.Label == size {
			return s.Stock, true
		}
	}
	return 0, false
}

// CheckStock reports whether qty units of size can be ordered.
func (p *Product) CheckStock(size string, qty int) error {
	stock, ok := p.StockFor(size)
	if !ok {
		return ErrSizeNotAvailable
	}
	if stock <= 0 {
		return ErrOutOfStock
	}
	if qty > stock {
		return ErrQuantityExceedsStock
	}
	return nil
}

type Category struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// ProductFilter holds the listing query parameters accepted by /products-enhanced.
type ProductFilter struct {
	Category string  `query:"category"`
	Size     string  `query:"size"`
	MinPrice float64 `query:"minPrice"`
	MaxPrice float64 `query:"maxPrice"`
	Sort     string  `query:"sort"`
	Search   string  `query:"search"`
	Page     int     `query:"page"`
	Limit    int     `query:"limit"`
}

type ProductListResponse struct {
	Products   []Product   `json:"products"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type ProductResponse struct {
	Product *Product `json:"product"`
}

type CategoriesResponse struct {
	Categories []Category `json:"categories"`
}

// Clone returns a copy that shares no slices or pointers with p.
func (p Product) Clone() Product {
	p.Images = append([]string(nil), p.Images...)
	p.Sizes = append([]Size(nil), p.Sizes...)
	if p.CompareAtPrice != nil {
		v := *p.CompareAtPrice
		p.CompareAtPrice = &v
	}
	return p
}

// CloneProducts deep-copies a product list.
func CloneProducts(in []Product) []Product {
	if in == nil {
		return nil
	}
	out := make([]Product, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
