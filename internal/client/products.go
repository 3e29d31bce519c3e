package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"craft-storefront/internal/models"
)

// ProductsAPI covers /products-enhanced.
type ProductsAPI struct{ c *Client }

func (p *ProductsAPI) List(ctx context.Context, f models.ProductFilter) (*models.ProductListResponse, error) {
	var out models.ProductListResponse
	if err := p.c.do(ctx, "products", http.MethodGet, "/products-enhanced", filterQuery(f), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *ProductsAPI) Get(ctx context.Context, id string) (*models.Product, error) {
	var out models.ProductResponse
	if err := p.c.do(ctx, "products", http.MethodGet, "/products-enhanced/"+escape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Product, nil
}

func (p *ProductsAPI) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	return p.collection(ctx, "/products-enhanced/featured", limit)
}

func (p *ProductsAPI) TopRated(ctx context.Context, limit int) ([]models.Product, error) {
	return p.collection(ctx, "/products-enhanced/top/rated", limit)
}

func (p *ProductsAPI) Categories(ctx context.Context) ([]models.Category, error) {
	var out models.CategoriesResponse
	if err := p.c.do(ctx, "products", http.MethodGet, "/products-enhanced/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (p *ProductsAPI) collection(ctx context.Context, path string, limit int) ([]models.Product, error) {
	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	var out models.ProductListResponse
	if err := p.c.do(ctx, "products", http.MethodGet, path, q, nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func filterQuery(f models.ProductFilter) url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("category", f.Category)
	set("size", f.Size)
	set("sort", f.Sort)
	set("search", f.Search)
	if f.MinPrice > 0 {
		q.Set("minPrice", strconv.FormatFloat(f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice > 0 {
		q.Set("maxPrice", strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}
