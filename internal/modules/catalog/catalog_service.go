package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"craft-storefront/internal/models"
)

const (
	DefaultPageLimit       = 12
	DefaultCollectionLimit = 8
)

// ServiceInterface defines the catalog queries and the stock operations the
// cart and order modules rely on.
type ServiceInterface interface {
	ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, *models.Pagination, error)
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	Featured(ctx context.Context, limit int) ([]models.Product, error)
	TopRated(ctx context.Context, limit int) ([]models.Product, error)
	Categories(ctx context.Context) ([]models.Category, error)

	ReserveStock(ctx context.Context, items []models.OrderItem) error
	ReleaseStock(ctx context.Context, items []models.OrderItem) error
}

type Service struct {
	repo RepositoryInterface
}

func NewService(repo RepositoryInterface) ServiceInterface {
	return &Service{repo: repo}
}

// Slugify turns a category name into its URL form.
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

func (s *Service) ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, *models.Pagination, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("service.ListProducts: %w", err)
	}

	matched := make([]models.Product, 0, len(all))
	for _, p := range all {
		if matches(p, f) {
			matched = append(matched, p)
		}
	}
	sortProducts(matched, f.Sort)

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], models.NewPagination(page, limit, len(matched)), nil
}

func matches(p models.Product, f models.ProductFilter) bool {
	if f.Category != "" && Slugify(p.Category) != Slugify(f.Category) {
		return false
	}
	if f.Size != "" {
		stock, ok := p.StockFor(f.Size)
		if !ok || stock <= 0 {
			return false
		}
	}
	if f.MinPrice > 0 && p.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && p.Price > f.MaxPrice {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		haystack := strings.ToLower(p.Name + " " + p.Description + " " + p.Category)
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}

// sortProducts orders by the sort key; unknown keys fall back to newest first.
func sortProducts(list []models.Product, key string) {
	var less func(a, b models.Product) bool
	switch key {
	case "price_asc":
		less = func(a, b models.Product) bool { return a.Price < b.Price }
	case "price_desc":
		less = func(a, b models.Product) bool { return a.Price > b.Price }
	case "rating":
		less = func(a, b models.Product) bool { return a.Rating > b.Rating }
	case "name":
		less = func(a, b models.Product) bool { return a.Name < b.Name }
	default:
		less = func(a, b models.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })
}

func (s *Service) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("service.GetProduct: %w", err)
	}
	return p, nil
}

func (s *Service) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.Featured: %w", err)
	}
	out := make([]models.Product, 0, len(all))
	for _, p := range all {
		if p.Featured {
			out = append(out, p)
		}
	}
	return capList(out, limit), nil
}

func (s *Service) TopRated(ctx context.Context, limit int) ([]models.Product, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TopRated: %w", err)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Rating != all[j].Rating {
			return all[i].Rating > all[j].Rating
		}
		return all[i].NumReviews > all[j].NumReviews
	})
	return capList(all, limit), nil
}

func capList(list []models.Product, limit int) []models.Product {
	if limit < 1 {
		limit = DefaultCollectionLimit
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list
}

// Categories lists every category with its product count, in name order.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.Categories: %w", err)
	}
	bySlug := make(map[string]*models.Category)
	for _, p := range all {
		slug := Slugify(p.Category)
		if c, ok := bySlug[slug]; ok {
			c.Count++
			continue
		}
		bySlug[slug] = &models.Category{Name: p.Category, Slug: slug, Count: 1}
	}
	out := make([]models.Category, 0, len(bySlug))
	for _, c := range bySlug {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Service) ReserveStock(ctx context.Context, items []models.OrderItem) error {
	return s.applyStock(ctx, items, -1)
}

func (s *Service) ReleaseStock(ctx context.Context, items []models.OrderItem) error {
	return s.applyStock(ctx, items, 1)
}

func (s *Service) applyStock(ctx context.Context, items []models.OrderItem, sign int) error {
	deltas := make([]StockDelta, 0, len(items))
	for _, it := range items {
		deltas = append(deltas, StockDelta{ProductID: it.ProductID, Size: it.Size, Delta: sign * it.Quantity})
	}
	if err := s.repo.ApplyStock(ctx, deltas); err != nil {
		return fmt.Errorf("service.applyStock: %w", err)
	}
	return nil
}
